// Package main provides the market-radar CLI.
// Uses Cobra for command parsing.
//
// Run with: go run ./cmd/cli analyze "Gaming Laptops"
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fleveque/market-radar/internal/chart"
	"github.com/fleveque/market-radar/internal/config"
	"github.com/fleveque/market-radar/internal/extract"
	"github.com/fleveque/market-radar/internal/llm"
	"github.com/fleveque/market-radar/internal/model"
	"github.com/fleveque/market-radar/internal/provider"
	"github.com/fleveque/market-radar/internal/service"
	"github.com/fleveque/market-radar/internal/storage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCmd builds the command tree:
// market-cli analyze "Gaming Laptops"
// market-cli prompt "Gaming Laptops"
// market-cli stats
func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "market-cli",
		Short: "Market competitive-analysis tools",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	root.AddCommand(analyzeCmd(), promptCmd(), statsCmd())
	return root
}

func analyzeCmd() *cobra.Command {
	var (
		ungrounded bool
		chartPath  string
	)

	cmd := &cobra.Command{
		Use:   "analyze <segment>",
		Short: "Run a competitive analysis and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0], ungrounded, chartPath)
		},
	}

	cmd.Flags().BoolVar(&ungrounded, "no-search", false, "Disable web-search grounding")
	cmd.Flags().StringVar(&chartPath, "chart", "", "Also write the market-share pie chart to this PNG file")
	return cmd
}

func promptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt <segment>",
		Short: "Print the prompt that would be sent for a segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := model.NewMarketSegmentQuery(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), llm.BuildAnalysisPrompt(q))
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show generation-call counters per provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd)
		},
	}
}

func runAnalyze(segment string, ungrounded bool, chartPath string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// Ctrl+C cancels the in-flight generation call.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.LLM.Timeout)
	defer cancel()

	clients, err := llm.NewClients(ctx, cfg.LLM, logger)
	if err != nil {
		return fmt.Errorf("creating generation clients: %w", err)
	}

	generator := provider.NewLLMProvider(clients, cfg.LLM.RatePerMinute, storage.NewGenerationCallRepository(db), logger)
	analyzer := service.NewAnalysisService(generator, extract.New(), cfg.LLM.Grounded && !ungrounded, logger)

	result, err := analyzer.Analyze(ctx, segment)
	if err != nil {
		return err
	}

	if chartPath != "" {
		img, err := chart.RenderSharePie(&result.Analysis)
		if err != nil {
			return err
		}
		if err := os.WriteFile(chartPath, img, 0644); err != nil {
			return fmt.Errorf("writing chart: %w", err)
		}
		logger.Info("chart written", zap.String("path", chartPath))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runStats(cmd *cobra.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := storage.NewGenerationCallRepository(db).StatsByProvider(ctx)
	if err != nil {
		return fmt.Errorf("loading stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(stats) == 0 {
		fmt.Fprintln(out, "no generation calls recorded")
		return nil
	}
	fmt.Fprintf(out, "%-12s %8s %10s %12s\n", "PROVIDER", "CALLS", "SUCCEEDED", "AVG MS")
	for _, s := range stats {
		fmt.Fprintf(out, "%-12s %8d %10d %12d\n", s.Provider, s.Calls, s.Succeeded, s.AvgDurationMs)
	}
	return nil
}

// setup loads config and a logger (always development mode for the CLI).
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(os.Getenv("MARKET_CONFIG_PATH"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, logger, nil
}

func openDatabase(cfg *config.Config) (*sqlx.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}
