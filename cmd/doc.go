// Package cmd implements the command-line interface of dSlot. It provides
// tools to benchmark, inspect and snapshot the slot tables.
//
// The package is organized into several subpackages:
//
//   - perf: Concurrent benchmarks over every table kind in both regimes
//   - inspect: Fills a table and prints its statistics (and event counters)
//   - snapshot: Saves a table with one of the codecs, reloads and verifies it
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set as an environment variable DSLOT_<FLAG>, .env and
// .env.local files are loaded on start. See dslot -help for a list of all commands.
package cmd
