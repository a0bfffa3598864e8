package cmd

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tiered-scheduler/internal/requests"
	"tiered-scheduler/internal/workload"
)

var (
	generateOut  string
	generateSeed int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a random workload file.",
	Long:  `Writes a random workload in the format "run" reads. Without --seed the current time is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := setup()
		if err != nil {
			return err
		}

		seed := time.Now().UnixNano()
		if cmd.Flags().Changed("seed") {
			seed = generateSeed
		}
		request := workload.NewGenerator(c.Workload, seed).Generate()

		var out io.Writer = cmd.OutOrStdout()
		if generateOut != "" && generateOut != "-" {
			f, err := os.Create(generateOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return requests.WriteWorkload(out, request.Jobs)
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "output file (default stdout)")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0, "generator seed")
	rootCmd.AddCommand(generateCmd)
}
