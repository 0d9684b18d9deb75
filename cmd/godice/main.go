package main

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"godice/app"
	"godice/domain/dist"
	"godice/domain/pool"
	"godice/internal/cache"
	"godice/internal/config"
	"godice/internal/evals"
	"godice/internal/export"
)

func main() {
	// Optional .env for LOG_LEVEL, parallelism, cache bounds.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "godice",
		Short: "Exact probability distributions over dice pools",
	}
	rootCmd.AddCommand(newEvalCmd(), newSampleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newEvalCmd() *cobra.Command {
	var evaluator string
	var keepHighest, keepLowest, dropHighest, dropLowest int
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "eval [pool]",
		Short: "Compute the exact distribution of an evaluator over a pool",
		Long: `Compute the exact distribution of an evaluator over a dice pool.

Example: godice eval 4d6 --keep-highest 3 --evaluator sum`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPool(args[0], keepHighest, keepLowest, dropHighest, dropLowest)
			if err != nil {
				return err
			}
			opts, err := loadOptions()
			if err != nil {
				return err
			}

			result, err := runEvaluator(evaluator, opts, p)
			if err != nil {
				return err
			}
			printDie(cmd, result)

			if summary, err := app.Summarize(result); err == nil {
				cmd.Printf("mean %.4f  stddev %.4f  median %d\n",
					summary.Mean, summary.StdDev, summary.Median)
			}
			if xlsxPath != "" {
				if err := export.WriteXLSX(xlsxPath, result); err != nil {
					return err
				}
				cmd.Printf("wrote %s\n", xlsxPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&evaluator, "evaluator", "e", "sum",
		"evaluator: sum, largest-set, straight, highest")
	cmd.Flags().IntVar(&keepHighest, "keep-highest", 0, "keep only the n highest dice")
	cmd.Flags().IntVar(&keepLowest, "keep-lowest", 0, "keep only the n lowest dice")
	cmd.Flags().IntVar(&dropHighest, "drop-highest", 0, "drop the n highest dice")
	cmd.Flags().IntVar(&dropLowest, "drop-lowest", 0, "drop the n lowest dice")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the distribution table to an .xlsx file")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var n int
	var seed int64

	cmd := &cobra.Command{
		Use:   "sample [pool]",
		Short: "Monte Carlo cross-check of the exact sum distribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPool(args[0], 0, 0, 0, 0)
			if err != nil {
				return err
			}
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			exact, err := app.Evaluate[int, int](evals.NewSum[int](), opts, p)
			if err != nil {
				return err
			}
			sampler, err := app.NewSampler(exact, seed)
			if err != nil {
				return err
			}
			empirical, err := app.SampleSummary(sampler, n)
			if err != nil {
				return err
			}
			summary, err := app.Summarize(exact)
			if err != nil {
				return err
			}
			cmd.Printf("exact:     mean %.4f  stddev %.4f\n", summary.Mean, summary.StdDev)
			cmd.Printf("empirical: mean %.4f  stddev %.4f  (n=%d)\n",
				empirical.Mean, empirical.StdDev, empirical.N)
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "rolls", "n", 10000, "number of Monte Carlo rolls")
	cmd.Flags().Int64Var(&seed, "seed", 1, "sampler seed")
	return cmd
}

// buildPool parses an NdX pool spec and applies at most one keep/drop rule.
func buildPool(spec string, keepHighest, keepLowest, dropHighest, dropLowest int) (*pool.Pool[int], error) {
	parts := strings.SplitN(strings.ToLower(spec), "d", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("pool spec %q is not of the form NdX", spec)
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 0 {
		return nil, fmt.Errorf("pool spec %q: bad die count", spec)
	}
	sides, err := strconv.Atoi(parts[1])
	if err != nil || sides < 1 {
		return nil, fmt.Errorf("pool spec %q: bad side count", spec)
	}

	faces := make([]int, sides)
	for i := range sides {
		faces[i] = i + 1
	}
	die, err := dist.Uniform(faces...)
	if err != nil {
		return nil, err
	}
	dice := make([]*dist.Die[int], n)
	for i := range n {
		dice[i] = die
	}
	p, err := pool.NewPool(dice...)
	if err != nil {
		return nil, err
	}

	switch {
	case keepHighest > 0:
		return p.KeepHighest(keepHighest)
	case keepLowest > 0:
		return p.KeepLowest(keepLowest)
	case dropHighest > 0:
		return p.DropHighest(dropHighest)
	case dropLowest > 0:
		return p.DropLowest(dropLowest)
	default:
		return p, nil
	}
}

func loadOptions() (app.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		return app.Options{}, err
	}
	opts := app.Options{
		Parallelism:         cfg.Engine.Parallelism,
		MaxFixedPointStates: cfg.FixedPoint.MaxStates,
	}
	if cfg.Cache.Enabled {
		opts.Cache = cache.New(cfg.Cache.MaxEntries)
	}
	return opts, nil
}

func runEvaluator(name string, opts app.Options, p *pool.Pool[int]) (*dist.Die[int], error) {
	switch name {
	case "sum":
		return app.Evaluate[int, int](evals.NewSum[int](), opts, p)
	case "largest-set":
		return app.Evaluate[int, int](evals.NewLargestMatchingSet[int](), opts, p)
	case "straight":
		return app.Evaluate[int, int](evals.NewLargestStraight[int](), opts, p)
	case "highest":
		return app.Evaluate[int, int](evals.NewHighestOutcome[int](), opts, p)
	default:
		return nil, fmt.Errorf("unknown evaluator %q", name)
	}
}

func printDie(cmd *cobra.Command, d *dist.Die[int]) {
	if d.IsEmpty() {
		cmd.Println("empty distribution (all branches rerolled)")
		return
	}
	denom := d.Denominator()
	d.Each(func(o int, w *big.Int) {
		p, _ := d.Probability(o).Float64()
		cmd.Printf("%4d  %s/%s  %.6f\n", o, w.String(), denom.String(), p)
	})
}
