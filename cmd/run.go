package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tiered-scheduler/internal/report"
	"tiered-scheduler/internal/requests"
	"tiered-scheduler/internal/schedulers"
)

var (
	workloadPath string
	showDetails  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single workload file to completion.",
	Long: `Reads a workload file with one process per line, ` +
		`"pid, arrival, priority, cpu, io, cpu, ...", and prints the run summary. ` +
		`Use "-" to read from standard input.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, logger, err := setup()
		if err != nil {
			return err
		}

		var in io.Reader = cmd.InOrStdin()
		if workloadPath != "-" {
			f, err := os.Open(workloadPath)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		request, err := requests.ParseWorkload(in)
		if err != nil {
			return fmt.Errorf("%s: %w", workloadPath, err)
		}

		opts := c.SchedulerOptions()
		opts.Logger = logger
		summary, err := schedulers.ScheduleTieredRoundRobin(cmd.Context(), request, opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		report.Summary(out, summary)
		if showDetails {
			report.Details(out, summary.Details)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&workloadPath, "workload", "w", "", "workload file, or - for stdin")
	runCmd.Flags().BoolVar(&showDetails, "details", false, "print per-process times")
	_ = runCmd.MarkFlagRequired("workload")
	rootCmd.AddCommand(runCmd)
}
