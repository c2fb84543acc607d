package cli

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/geo-explorer/internal/app"
	"github.com/heartmarshall/geo-explorer/internal/app/seeder"
)

var (
	seedConfigPath  string
	seedConcurrency int
	seedDryRun      bool
)

func init() {
	seedCmd.Flags().StringVar(&seedConfigPath, "seed-config", "", "path to seeder YAML config")
	seedCmd.Flags().IntVar(&seedConcurrency, "concurrency", 0, "parallel country imports per region (overrides config)")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "fetch regions without importing")
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed [region...]",
	Short: "Import every country of the given regions",
	RunE: func(cmd *cobra.Command, args []string) error {
		scfg, err := seeder.LoadConfig(seedConfigPath)
		if err != nil {
			return err
		}
		if seedConcurrency > 0 {
			scfg.Concurrency = seedConcurrency
		}
		if seedDryRun {
			scfg.DryRun = true
		}

		return withComponents(cmd, func(c *app.Components, logger *slog.Logger) error {
			p := seeder.NewPipeline(logger, c.Countries, c.Importer, *scfg)
			runErr := p.Run(cmd.Context(), args)

			printSeedResults(cmd, p.Results())
			if runErr != nil {
				return runErr
			}
			if p.HasErrors() {
				return fmt.Errorf("seeding finished with errors")
			}
			return nil
		})
	},
}

func printSeedResults(cmd *cobra.Command, results map[string]seeder.PhaseResult) {
	regions := make([]string, 0, len(results))
	for r := range results {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	w := cmd.OutOrStdout()
	for _, r := range regions {
		res := results[r]
		if res.Err != nil {
			fmt.Fprintf(w, "%-10s failed: %v\n", r, res.Err)
			continue
		}
		fmt.Fprintf(w, "%-10s inserted=%d skipped=%d errors=%d (%s)\n", r, res.Inserted, res.Skipped, res.Errors, res.Duration.Round(time.Millisecond))
	}
}
