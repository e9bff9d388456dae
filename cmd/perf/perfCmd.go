package perf

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/ValentinKolb/dSlot/cmd/util"
	"github.com/ValentinKolb/dSlot/lib/common"
	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/ValentinKolb/dSlot/lib/slotmap/container"
	"github.com/ValentinKolb/dSlot/lib/slotmap/events"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// operation is one benchmarked call against a container
type operation func(c *container.Container, key slot.Key, counter int)

var operations = []struct {
	name string
	fill bool // whether the keys are inserted before the timer starts
	op   operation
}{
	{"query", true, func(c *container.Container, key slot.Key, _ int) {
		c.Query(key)
	}},
	{"modify", false, func(c *container.Container, key slot.Key, _ int) {
		_, _ = c.Modify(key, slot.Empty)
	}},
	{"compute", true, func(c *container.Container, key slot.Key, _ int) {
		_, _ = c.Compute(key, slotmap.WithAttributes(slot.DontEnum))
	}},
	{"remove", true, func(c *container.Container, key slot.Key, _ int) {
		if !c.Remove(key) {
			_, _ = c.Modify(key, slot.Empty)
		}
	}},
	{"mixed", true, func(c *container.Container, key slot.Key, counter int) {
		switch counter % 4 {
		case 0:
			_, _ = c.Modify(key, slot.Empty)
		case 1:
			c.Query(key)
		case 2:
			c.Remove(key)
		case 3:
			_, _ = c.Compute(key, slotmap.EnsureAccessor(slot.Empty))
		}
	}},
}

// result is the outcome of one benchmark
type result struct {
	test      string
	table     slotmap.Implementation
	regime    string
	bench     testing.BenchmarkResult
	timer     metrics.Timer
	final     slotmap.Implementation
	fallbacks uint64
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for the slot tables")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(perfConfig.String())
	fmt.Println()

	fmt.Println("starting tests...")

	keys := makeKeys(perfConfig.Keys)
	registry := metrics.NewRegistry()
	results := make([]result, 0)

	for _, table := range []slotmap.Implementation{slotmap.ImplEmbedded, slotmap.ImplOrdered} {
		for _, threadSafe := range []bool{false, true} {
			regime := "uncontended"
			if threadSafe {
				regime = "shared"
			}
			fmt.Printf("\n%s (%s)\n", table, regime)

			for _, o := range operations {
				if shouldSkip(o.name) {
					fmt.Printf("%-20sskipped\n", o.name)
					continue
				}

				config := *perfConfig
				config.Table = string(table)
				config.ThreadSafe = threadSafe

				name := fmt.Sprintf("%s/%s/%s", table, regime, o.name)
				timer := metrics.GetOrRegisterTimer(name, registry)
				res, err := benchmark(&config, keys, o.fill, o.op, timer)
				if err != nil {
					return err
				}
				res.test, res.table, res.regime = o.name, table, regime

				results = append(results, res)
				printResult(res)
			}
		}
	}

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// benchmark runs op against a fresh container. Shared containers are driven by
// perfConfig.Threads goroutines, uncontended ones by a single goroutine.
func benchmark(config *common.Config, keys []slot.Key, fill bool, op operation, timer metrics.Timer) (result, error) {
	// reject an invalid configuration before benchmarking
	c, err := util.NewContainer(config)
	if err != nil {
		return result{}, err
	}
	before := events.OptimisticFallbacks()

	bench := testing.Benchmark(func(b *testing.B) {
		c, _ = util.NewContainer(config)
		if fill {
			for _, k := range keys {
				_, _ = c.Modify(k, slot.Empty)
			}
		}

		b.ResetTimer()

		if !config.ThreadSafe {
			for i := 0; i < b.N; i++ {
				timed(c, keys, op, timer, i)
			}
			return
		}

		b.SetParallelism(config.Threads)
		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				timed(c, keys, op, timer, counter)
				counter++
			}
		})
	})

	return result{
		bench:     bench,
		timer:     timer,
		final:     c.Implementation(),
		fallbacks: events.OptimisticFallbacks() - before,
	}, nil
}

// timed runs op and records every perfSampleRate-th latency in timer
func timed(c *container.Container, keys []slot.Key, op operation, timer metrics.Timer, counter int) {
	key := keys[counter%len(keys)]
	if counter%perfSampleRate != 0 {
		op(c, key, counter)
		return
	}
	start := time.Now()
	op(c, key, counter)
	timer.UpdateSince(start)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// makeKeys creates a mix of string and index keys
func makeKeys(n int) []slot.Key {
	keys := make([]slot.Key, n)
	for i := range keys {
		if i%2 == 0 {
			keys[i] = slot.StringKey(fmt.Sprintf("__perf-%d", i))
		} else {
			keys[i] = slot.IndexKey(int32(i))
		}
	}
	return keys
}

func opsPerSec(bench testing.BenchmarkResult) (float64, float64) {
	if bench.NsPerOp() == 0 {
		return 0, 0
	}
	nsPerOp := math.Max(float64(bench.NsPerOp()), 1) // prevent division by zero
	return nsPerOp, 1.0 / (nsPerOp / 1e9)
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(res result) {
	nsPerOp, ops := opsPerSec(res.bench)
	if nsPerOp == 0 {
		fmt.Printf("%-20sskipped\n", res.test)
		return
	}

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50 %s\tp99 %s\t-> %s",
		res.test, nsPerOp, time.Duration(nsPerOp), ops,
		time.Duration(res.timer.Percentile(0.5)), time.Duration(res.timer.Percentile(0.99)), res.final)
	if res.fallbacks > 0 {
		fmt.Printf("\t(%d optimistic fallbacks)", res.fallbacks)
	}
	fmt.Println()
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []result) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "Table", "Regime", "NsPerOp", "DurationPerOp", "OpsPerSec",
		"MeanNs", "P50Ns", "P99Ns", "Samples", "FinalImplementation", "OptimisticFallbacks",
		"Threads", "Keys", "LargeHashSize", "InitialCapacity",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, res := range results {
		nsPerOp, ops := opsPerSec(res.bench)
		row := []string{
			res.test,
			string(res.table),
			res.regime,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", ops),
			fmt.Sprintf("%.0f", res.timer.Mean()),
			fmt.Sprintf("%.0f", res.timer.Percentile(0.5)),
			fmt.Sprintf("%.0f", res.timer.Percentile(0.99)),
			strconv.FormatInt(res.timer.Count(), 10),
			string(res.final),
			strconv.FormatUint(res.fallbacks, 10),
			strconv.Itoa(perfConfig.Threads),
			strconv.Itoa(perfConfig.Keys),
			strconv.Itoa(perfConfig.LargeHashSize),
			strconv.Itoa(perfConfig.InitialCapacity),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", res.test, err)
		}
	}

	return nil
}
