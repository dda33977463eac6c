// retaildw - Retail data warehouse pipeline
// Loads online retail transactions into a Postgres star schema and scores
// the result for quality and anomalies.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/retaildw/pipeline/pkg/config"
	"github.com/retaildw/pipeline/pkg/connector"
	"github.com/retaildw/pipeline/pkg/model"
	"github.com/retaildw/pipeline/pkg/monitor"
	"github.com/retaildw/pipeline/pkg/pipeline"
	"github.com/retaildw/pipeline/pkg/quality"
	"github.com/retaildw/pipeline/pkg/report"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	envFile    string
	sourcePath string
	reportDir  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var failure *model.ValidationFailure
		if errors.As(err, &failure) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "retaildw",
	Short:   "Retail data warehouse ETL pipeline",
	Long:    `retaildw extracts online retail transactions from an Excel workbook, loads them into a Postgres star schema, and produces data quality and anomaly reports.`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline",
	Long: `Run the full pipeline: extract, clean, load the star schema, execute
quality checks, score anomalies, and export the Excel quality report.

Exits 2 when the load succeeds but the quality verdict is not PASS.`,
	RunE: runPipeline,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run quality checks against the loaded warehouse",
	RunE:  runChecks,
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Score anomalies and export the quality report",
	RunE:  runMonitor,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default: .env in working directory)")
	runCmd.Flags().StringVarP(&sourcePath, "source", "s", "", "path to the source Excel workbook (overrides DATA_SOURCE_PATH)")
	runCmd.Flags().StringVar(&reportDir, "report-dir", "", "directory for exported reports (overrides QUALITY_REPORT_DIR)")
	monitorCmd.Flags().StringVar(&reportDir, "report-dir", "", "directory for exported reports (overrides QUALITY_REPORT_DIR)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(monitorCmd)
}

// setup loads configuration, builds the logger, and opens the warehouse
// connection shared by every subcommand.
func setup(ctx context.Context) (*config.Config, *zap.Logger, *connector.PostgresConnector, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, nil, nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else {
		// Best effort: a missing default .env is fine.
		_ = godotenv.Load()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	if sourcePath != "" {
		cfg.SourcePath = sourcePath
	}
	if reportDir != "" {
		cfg.ReportDir = reportDir
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building logger: %w", err)
	}

	conn, err := connector.NewPostgresConnector(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to warehouse: %w", err)
	}
	if err := conn.Validate(ctx); err != nil {
		conn.Close()
		return nil, nil, nil, fmt.Errorf("validating warehouse: %w", err)
	}
	return cfg, logger, conn, nil
}

// buildLogger constructs a zap logger from the configured level and format.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var zapCfg zap.Config
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, logger, conn, err := setup(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer logger.Sync()

	p, err := pipeline.New(cfg, conn, logger)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx)
	if result != nil && result.ReportPath != "" {
		fmt.Printf("Quality report: %s\n", result.ReportPath)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Pipeline run %s completed in %s\n", result.RunID, result.Duration)
	fmt.Printf("  extracted: %d  staged: %d  facts: %d\n",
		result.ExtractedRows, result.StagedRows, result.FactRows)
	fmt.Printf("  quality: %s (%s)\n",
		result.QualityReport.OverallStatus, result.QualityReport.Summary.String())
	return nil
}

func runChecks(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	_, logger, conn, err := setup(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer logger.Sync()

	engine, err := quality.NewEngine(conn.DB(), logger)
	if err != nil {
		return err
	}
	rep, err := engine.RunAll(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Overall status: %s\n", rep.OverallStatus)
	fmt.Printf("Checks: %s\n", rep.Summary.String())
	for _, name := range rep.FailedCheckNames() {
		fmt.Printf("  FAILED: %s\n", name)
	}
	return rep.Validate()
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, logger, conn, err := setup(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer logger.Sync()

	mon, err := monitor.NewMonitor(conn.DB(), logger)
	if err != nil {
		return err
	}
	monReport, err := mon.Run(ctx)
	if err != nil {
		return err
	}

	engine, err := quality.NewEngine(conn.DB(), logger)
	if err != nil {
		return err
	}
	qualReport, err := engine.RunAll(ctx)
	if err != nil {
		return err
	}

	exporter, err := report.NewExporter(cfg.ReportDir, logger)
	if err != nil {
		return err
	}
	path, err := exporter.Export(monReport, qualReport)
	if err != nil {
		return err
	}

	fmt.Printf("Quality report: %s\n", path)
	return nil
}
