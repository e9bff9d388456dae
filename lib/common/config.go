package common

import (
	"fmt"
	"strconv"
	"strings"
)

// Config is the runtime configuration shared by the dslot commands
type Config struct {
	LogLevel        string // debug, info, warn, error
	Table           string // embedded or ordered
	ThreadSafe      bool   // build tables for the shared regime
	InitialCapacity int    // capacity hint for new tables (0 = lazy)
	LargeHashSize   int    // slot count at which tables switch to the hashed representation
	Threads         int    // goroutines used by perf
	Keys            int    // distinct keys used by perf and inspect
	Codec           string // snapshot codec
}

// String renders the configuration as an aligned table
func (c *Config) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString(fmt.Sprintf("\n%s\n", title))
		sb.WriteString(strings.Repeat("-", len(title)) + "\n")
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s %s\n", name+":", value))
	}

	addSection("Tables")
	addField("Table", c.Table)
	addField("Thread Safe", strconv.FormatBool(c.ThreadSafe))
	addField("Initial Capacity", strconv.Itoa(c.InitialCapacity))
	addField("Large Hash Size", strconv.Itoa(c.LargeHashSize))

	addSection("Workload")
	addField("Threads", strconv.Itoa(c.Threads))
	addField("Keys", strconv.Itoa(c.Keys))
	addField("Codec", c.Codec)

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
