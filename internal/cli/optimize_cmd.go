package cli

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/optimizer"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/providers"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/services"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/logger"
)

type optimizeOptions struct {
	csvPath  string
	outPath  string
	format   string
	lock     []string
	exclude  []string
	newsMode string
	seed     int64
	settings models.Settings
}

func newOptimizeCmd() *cobra.Command {
	opts := optimizeOptions{settings: models.DefaultSettings()}

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Generate a lineup portfolio from a FanDuel player CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				seed := opts.seed
				opts.settings.Seed = &seed
			}
			opts.settings.NewsMode = models.NewsMode(opts.newsMode)
			return runOptimize(opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.csvPath, "csv", "", "FanDuel player list CSV (required)")
	f.StringVar(&opts.outPath, "out", "", "Write the export CSV to this path")
	f.StringVar(&opts.format, "format", services.ExportFormatFanDuel, "Export format (fanduel, detailed)")
	f.StringSliceVar(&opts.lock, "lock", nil, "Player ids to force into every lineup")
	f.StringSliceVar(&opts.exclude, "exclude", nil, "Player ids to leave out")
	f.StringVar(&opts.newsMode, "news", string(models.NewsModeAuto), "News mode (auto, suggested, off)")
	f.Int64Var(&opts.seed, "seed", 0, "Seed for a reproducible run")
	f.IntVar(&opts.settings.NumberOfLineups, "lineups", opts.settings.NumberOfLineups, "Number of lineups to build")
	f.Float64Var(&opts.settings.Randomness, "randomness", opts.settings.Randomness, "Projection jitter in percent (0-20)")
	f.IntVar(&opts.settings.MinUniquePlayers, "min-unique", opts.settings.MinUniquePlayers, "Minimum players each lineup must not share with any other")
	f.Float64Var(&opts.settings.MaxPlayerExposure, "max-exposure", opts.settings.MaxPlayerExposure, "Default exposure cap in percent")
	f.IntVar(&opts.settings.MinSalaryUsed, "min-salary", opts.settings.MinSalaryUsed, "Salary floor, used with --enforce-min-salary")
	f.BoolVar(&opts.settings.EnforceMinSalary, "enforce-min-salary", false, "Reject lineups under --min-salary")
	_ = cmd.MarkFlagRequired("csv")

	return cmd
}

func runOptimize(opts optimizeOptions, out io.Writer) error {
	if err := opts.settings.Validate(); err != nil {
		return err
	}

	file, err := os.Open(opts.csvPath)
	if err != nil {
		return fmt.Errorf("opening player csv: %w", err)
	}
	defer file.Close()

	pool, err := providers.ParsePlayerCSV(file)
	if err != nil {
		return err
	}
	if err := markPlayers(pool, opts.lock, opts.exclude); err != nil {
		return err
	}

	var rng *rand.Rand
	if opts.settings.Seed != nil {
		rng = rand.New(rand.NewSource(*opts.settings.Seed))
	}
	pool = services.NewNewsAnalyzer(rng, logger.GetLogger()).Analyze(pool, opts.settings.NewsMode)

	result := optimizer.NewGenerator(
		optimizer.WithLogger(logger.WithService("cli")),
	).Generate(pool, opts.settings)

	printResult(out, result)

	if opts.outPath != "" {
		data, err := services.NewExportService().ExportLineups(result.Lineups, opts.format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.outPath, data, 0o644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		fmt.Fprintf(out, "\nWrote %d lineups to %s\n", len(result.Lineups), opts.outPath)
	}
	return nil
}

// markPlayers applies --lock and --exclude. Unknown ids are an error so typos surface.
func markPlayers(pool []models.Player, lock, exclude []string) error {
	index := make(map[string]int, len(pool))
	for i, p := range pool {
		index[p.ID] = i
	}
	for _, id := range lock {
		i, ok := index[strings.TrimSpace(id)]
		if !ok {
			return fmt.Errorf("--lock: no player with id %q", id)
		}
		pool[i].IsLocked = true
	}
	for _, id := range exclude {
		i, ok := index[strings.TrimSpace(id)]
		if !ok {
			return fmt.Errorf("--exclude: no player with id %q", id)
		}
		pool[i].IsExcluded = true
	}
	return nil
}

func printResult(out io.Writer, result *optimizer.Result) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tQB\tRB\tRB\tWR\tWR\tWR\tTE\tFLEX\tDEF\tSALARY\tPROJ")
	for i, lineup := range result.Lineups {
		row := []string{fmt.Sprint(i + 1)}
		for _, p := range lineup.Players() {
			row = append(row, p.Name())
		}
		row = append(row, fmt.Sprint(lineup.TotalSalary), fmt.Sprintf("%.1f", lineup.TotalProjection))
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()

	summary := services.SummarizePortfolio(result.Lineups)
	fmt.Fprintf(out, "\nBuilt %d of %d lineups in %d attempts", len(result.Lineups), result.Requested, result.Attempts)
	if summary.Lineups > 0 {
		fmt.Fprintf(out, " (projection avg %.1f, min %.1f, max %.1f)", summary.AvgProjection, summary.MinProjection, summary.MaxProjection)
	}
	fmt.Fprintln(out)

	for _, w := range result.Feasibility.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	for _, c := range result.Feasibility.LockConflicts {
		fmt.Fprintf(out, "warning: locked %s %s has no open slot; its salary still counts\n", c.Position, c.Name)
	}
}
