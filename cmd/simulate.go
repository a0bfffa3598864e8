package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"tiered-scheduler/internal/report"
	"tiered-scheduler/internal/simulation"
	"tiered-scheduler/internal/store"
)

var (
	simRuns    int
	simSeed    int64
	simWorkers int
	simVerbose bool
	simStore   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Average a batch of random workloads.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, logger, err := setup()
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		runs, seed, workers := c.Simulation.RunCount, c.Simulation.Seed, c.Simulation.Workers
		verbose, storePath := c.Simulation.Verbose, c.Store.Path
		if flags.Changed("runs") {
			runs = simRuns
		}
		if flags.Changed("seed") {
			seed = simSeed
		}
		if flags.Changed("workers") {
			workers = simWorkers
		}
		if flags.Changed("verbose") {
			verbose = simVerbose
		}
		if flags.Changed("store") {
			storePath = simStore
		}

		opts := c.SchedulerOptions()
		opts.Logger = logger
		b := simulation.MakeBuilder().
			WithOptions(opts).
			WithWorkload(c.Workload).
			WithWorkers(workers).
			WithSeed(seed).
			WithLogger(logger)

		if storePath != "" {
			s, err := store.New(storePath)
			if err != nil {
				return err
			}
			defer s.Close()
			b = b.WithRecorder(s)
			logger.Info("recording batch", slog.String("path", s.Path()))
		}

		sim, err := b.Build()
		if err != nil {
			return err
		}
		r, err := sim.Run(cmd.Context(), runs)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if verbose {
			report.Runs(out, r.Summaries)
		}
		report.Average(out, r)
		return nil
	},
}

func init() {
	simulateCmd.Flags().IntVarP(&simRuns, "runs", "n", 0, "number of runs (overrides the config file)")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "base seed, run i uses seed+i (overrides the config file)")
	simulateCmd.Flags().IntVar(&simWorkers, "workers", 0, "runs executed at the same time (overrides the config file)")
	simulateCmd.Flags().BoolVarP(&simVerbose, "verbose", "v", false, "print every run")
	simulateCmd.Flags().StringVar(&simStore, "store", "", "sqlite file to record run summaries in")
	rootCmd.AddCommand(simulateCmd)
}
