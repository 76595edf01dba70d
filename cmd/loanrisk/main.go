// cmd/loanrisk/main.go
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/charted-solutions/loanrisk/pkg/aggregate"
	"github.com/charted-solutions/loanrisk/pkg/config"
	"github.com/charted-solutions/loanrisk/pkg/export"
	"github.com/charted-solutions/loanrisk/pkg/ingest"
	"github.com/charted-solutions/loanrisk/pkg/merge"
	"github.com/charted-solutions/loanrisk/pkg/model"
	"github.com/charted-solutions/loanrisk/pkg/risk"
	"github.com/charted-solutions/loanrisk/pkg/server"
	"github.com/charted-solutions/loanrisk/pkg/session"
)

func main() {
	root := &cobra.Command{
		Use:   "loanrisk",
		Short: "Student loan risk management pipeline",
		Long:  "Ingests NSLDS and SIS extracts, joins them, scores delinquency risk, and serves program-level analytics.",
	}

	root.AddCommand(serveCommand())
	root.AddCommand(runCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// serveCommand starts the dashboard API.
func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Missing .env is fine; the environment may be set directly.
			_ = godotenv.Load()

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()
			zap.ReplaceGlobals(logger)

			var src rand.Source
			if cfg.ScoreSeed != 0 {
				src = rand.NewSource(cfg.ScoreSeed)
			}

			srv := server.New(
				cfg,
				logger,
				session.NewStore(logger),
				ingest.NewIngestor(logger),
				risk.NewScorer(src, logger),
			)
			return srv.ListenAndServe()
		},
	}
}

// runCommand executes the pipeline once over two local files and writes the
// derived tables as CSV.
func runCommand() *cobra.Command {
	var (
		nsldsPath string
		sisPath   string
		outDir    string
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline over two local files",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger("info", "console")
			if err != nil {
				return err
			}
			defer logger.Sync()
			zap.ReplaceGlobals(logger)

			var src rand.Source
			if seed != 0 {
				src = rand.NewSource(seed)
			}

			ingestor := ingest.NewIngestor(logger)
			scorer := risk.NewScorer(src, logger)

			nslds, err := readFile(ingestor.ReadNSLDS, nsldsPath)
			if err != nil {
				return err
			}
			scorer.ScoreTable(nslds)

			sis, err := readFile(ingestor.ReadSIS, sisPath)
			if err != nil {
				return err
			}

			merged, err := merge.NewMerger(logger).Merge(nslds, sis)
			if err != nil {
				return err
			}
			// Academic penalties need the joined attributes.
			scorer.ApplyPredictive(merged)

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			if err := writeCSV(filepath.Join(outDir, "merged.csv"), func(f *os.File) error {
				return export.WriteTable(f, merged)
			}); err != nil {
				return err
			}
			if err := writeCSV(filepath.Join(outDir, "high_risk.csv"), func(f *os.File) error {
				return export.WriteHighRisk(f, merged)
			}); err != nil {
				return err
			}

			aggs, err := aggregate.NewAggregator(logger).ByProgram(merged)
			if err != nil {
				logger.Warn("Program analysis unavailable", zap.Error(err))
			} else if err := writeCSV(filepath.Join(outDir, "programs.csv"), func(f *os.File) error {
				return export.WritePrograms(f, aggs)
			}); err != nil {
				return err
			}

			logger.Info("Pipeline complete",
				zap.Int("merged_rows", merged.Len()),
				zap.String("out_dir", outDir))
			return nil
		},
	}

	cmd.Flags().StringVar(&nsldsPath, "nslds", "", "path to the NSLDS delinquent-borrower report (.csv or .xlsx)")
	cmd.Flags().StringVar(&sisPath, "sis", "", "path to the SIS extract (.csv or .xlsx)")
	cmd.Flags().StringVar(&outDir, "out", "out", "directory for derived CSV tables")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for reproducible scoring (0 = time-seeded)")
	cmd.MarkFlagRequired("nslds")
	cmd.MarkFlagRequired("sis")

	return cmd
}

func readFile(read func(r io.Reader, filename string) (*model.Table, error), path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return read(f, filepath.Base(path))
}

func writeCSV(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return write(f)
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}
