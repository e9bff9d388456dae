package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dSlot/cmd/inspect"
	"github.com/ValentinKolb/dSlot/cmd/perf"
	"github.com/ValentinKolb/dSlot/cmd/snapshot"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dslot",
		Short: "property slot tables",
		Long: fmt.Sprintf(`dSlot (v%s)

Insertion-ordered property tables for dynamic objects written in Go. Tables
start as a single entry, grow into bucket tables and are promoted to a hashed
representation once they get large.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dSlot",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dSlot v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(inspect.InspectCmd)
	RootCmd.AddCommand(snapshot.SnapshotCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
