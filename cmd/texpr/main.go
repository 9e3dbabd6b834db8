package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/texpr-go/texpr"
	"github.com/texpr-go/texpr/internal/adapters/cli"
	"github.com/texpr-go/texpr/internal/adapters/output"
	"github.com/texpr-go/texpr/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "texpr",
	Short: "texpr parses, evaluates, and differentiates LaTeX math expressions",
	Long: `texpr is a CLI tool that takes a LaTeX mathematical expression
and evaluates, validates, differentiates, or integrates it.`,
	Run: func(cmd *cobra.Command, args []string) {
		outputFilePath, _ := cmd.Flags().GetString("output")

		// --- Dependency Injection ---
		engine := texpr.New(texpr.DefaultConfig())
		service := app.NewService(engine)

		inputAdapter := cli.NewAdapter(cmd)
		outputAdapter := output.NewWriterAdapter(outputFilePath)

		appService := app.NewApplicationService(inputAdapter, outputAdapter, service)

		if err := appService.Run(); err != nil {
			log.Fatalf("Error: %v\n", err)
		}
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "cache-stats",
	Short: "Run a small workload and report cache statistics",
	Long: `cache-stats evaluates and differentiates a handful of sample
expressions against a fresh, statistics-collecting engine, then prints the
aggregate hit/miss/eviction counts across every cache layer. Since the
engine's caches are not persisted across CLI invocations, this is a
demonstration of cache behavior within one process rather than a report on
the caches used by other texpr invocations.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := texpr.DefaultConfig()
		cfg.CacheConfig = texpr.WithStatisticsCache()
		engine := texpr.New(cfg)

		workload := []string{
			`x^2 + 2x + 1`,
			`x^2 + 2x + 1`,
			`\sin{x} + \cos{x}`,
			`\sin{x} + \cos{x}`,
		}
		for _, source := range workload {
			if _, err := engine.Evaluate(source, map[string]float64{"x": 1}); err != nil {
				log.Printf("evaluate %q failed: %v", source, err)
			}
		}
		if _, err := engine.Differentiate(`x^3`, "x", 1); err != nil {
			log.Printf("differentiate failed: %v", err)
		}

		stats := engine.CacheStatistics()
		fmt.Printf("parse:        hits=%d misses=%d evictions=%d size=%d\n",
			stats.Parse.Hits, stats.Parse.Misses, stats.Parse.Evictions, stats.Parse.Size)
		fmt.Printf("eval-const:   hits=%d misses=%d evictions=%d size=%d\n",
			stats.EvalConstant.Hits, stats.EvalConstant.Misses, stats.EvalConstant.Evictions, stats.EvalConstant.Size)
		fmt.Printf("eval-general: hits=%d misses=%d evictions=%d size=%d\n",
			stats.EvalGeneral.Hits, stats.EvalGeneral.Misses, stats.EvalGeneral.Evictions, stats.EvalGeneral.Size)
		fmt.Printf("derivative:   hits=%d misses=%d evictions=%d size=%d\n",
			stats.Differential.Hits, stats.Differential.Misses, stats.Differential.Evictions, stats.Differential.Size)
		fmt.Printf("sub-expr:     hits=%d misses=%d evictions=%d size=%d\n",
			stats.SubExpr.Hits, stats.SubExpr.Misses, stats.SubExpr.Evictions, stats.SubExpr.Size)
		fmt.Printf("total:        hits=%d misses=%d evictions=%d size=%d\n",
			stats.Total.Hits, stats.Total.Misses, stats.Total.Evictions, stats.Total.Size)
	},
}

func init() {
	rootCmd.Flags().String("expr", "", "LaTeX expression source")
	rootCmd.Flags().String("operation", "evaluate", "operation to perform: evaluate, validate, differentiate, integrate")
	rootCmd.Flags().StringToString("vars", nil, "variable bindings for evaluate, e.g. x=1,y=2")
	rootCmd.Flags().String("variable", "", "variable to differentiate/integrate with respect to")
	rootCmd.Flags().Uint32("order", 1, "derivative order")
	rootCmd.Flags().String("output", "", "file to write the result to (default: stdout)")

	rootCmd.AddCommand(cacheStatsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
