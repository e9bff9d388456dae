package perf

import (
	"github.com/ValentinKolb/dSlot/cmd/util"
	"github.com/ValentinKolb/dSlot/lib/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

var (
	perfConfig     = &common.Config{}
	perfSkip       = make([]string, 0)
	perfSampleRate = 16

	// PerfCmd benchmarks the tables
	PerfCmd = &cobra.Command{
		Use:   "perf",
		Short: "Performance testing tool for the slot tables",
		Long: `Runs concurrent benchmarks of query, modify, compute, remove and a mixed
workload against every table kind (embedded, ordered) in both regimes
(uncontended, shared). The configuration can be set via command line flags or
environment variables in the format DSLOT_<flag> (e.g. DSLOT_LARGE_HASH_SIZE=500).`,
		PreRunE: processPerfConfig,
		RunE:    run,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	util.SetupTableFlags(PerfCmd)

	// add flags
	key := "skip"
	PerfCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. modify,remove)"))
	key = "threads"
	PerfCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines to use for the shared benchmarks"))
	key = "sample-rate"
	PerfCmd.Flags().Int(key, 16, util.WrapString("Record the latency of every n-th operation in the latency timers"))
	key = "csv"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	config, err := util.Setup(cmd)
	if err != nil {
		return err
	}
	perfConfig = config

	if perfConfig.Keys <= 0 {
		perfConfig.Keys = 1
	}
	if perfConfig.Threads <= 0 {
		perfConfig.Threads = 1
	}
	perfSampleRate = max(viper.GetInt("sample-rate"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")
	return nil
}
