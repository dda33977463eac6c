// pkg/pipeline/pipeline.go
//
// End-to-end orchestration: extract, clean, stage, build and load the star
// schema, then run quality checks and anomaly scoring over the result. The
// pipeline runs its stages strictly in order on a single goroutine because
// every stage consumes the previous stage's full output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/retaildw/pipeline/pkg/cleaner"
	"github.com/retaildw/pipeline/pkg/config"
	"github.com/retaildw/pipeline/pkg/connector"
	"github.com/retaildw/pipeline/pkg/extract"
	"github.com/retaildw/pipeline/pkg/loader"
	"github.com/retaildw/pipeline/pkg/model"
	"github.com/retaildw/pipeline/pkg/monitor"
	"github.com/retaildw/pipeline/pkg/quality"
	"github.com/retaildw/pipeline/pkg/report"
	"github.com/retaildw/pipeline/pkg/transform"
)

// Pipeline wires the pipeline components against one warehouse connection.
type Pipeline struct {
	cfg       *config.Config
	logger    *zap.Logger
	extractor *extract.Extractor
	cleaner   *cleaner.StagingCleaner
	dims      *transform.DimensionBuilder
	facts     *transform.FactBuilder
	loader    *loader.Loader
	quality   *quality.Engine
	monitor   *monitor.Monitor
	exporter  *report.Exporter
}

// New assembles a pipeline from configuration and an open connector.
func New(cfg *config.Config, conn *connector.PostgresConnector, logger *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if conn == nil {
		return nil, errors.New("connector cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	extractor, err := extract.NewExtractor(logger)
	if err != nil {
		return nil, fmt.Errorf("creating extractor: %w", err)
	}
	cln, err := cleaner.NewStagingCleaner(logger)
	if err != nil {
		return nil, fmt.Errorf("creating cleaner: %w", err)
	}
	dims, err := transform.NewDimensionBuilder(logger)
	if err != nil {
		return nil, fmt.Errorf("creating dimension builder: %w", err)
	}
	facts, err := transform.NewFactBuilder(logger)
	if err != nil {
		return nil, fmt.Errorf("creating fact builder: %w", err)
	}
	ldr, err := loader.NewLoader(conn.DB(), logger, cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("creating loader: %w", err)
	}
	qual, err := quality.NewEngine(conn.DB(), logger)
	if err != nil {
		return nil, fmt.Errorf("creating quality engine: %w", err)
	}
	mon, err := monitor.NewMonitor(conn.DB(), logger)
	if err != nil {
		return nil, fmt.Errorf("creating monitor: %w", err)
	}
	exporter, err := report.NewExporter(cfg.ReportDir, logger)
	if err != nil {
		return nil, fmt.Errorf("creating report exporter: %w", err)
	}

	return &Pipeline{
		cfg:       cfg,
		logger:    logger,
		extractor: extractor,
		cleaner:   cln,
		dims:      dims,
		facts:     facts,
		loader:    ldr,
		quality:   qual,
		monitor:   mon,
		exporter:  exporter,
	}, nil
}

// Run executes the full pipeline. The returned RunResult is populated as far
// as the run got, even when an error is returned. A quality verdict other
// than PASS surfaces as a model.ValidationFailure after all reports are
// generated and exported, so a failing run still leaves a report behind.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	result := NewRunResult()
	p.logger.Info("pipeline run starting",
		zap.String("run_id", result.RunID),
		zap.String("source", p.cfg.SourcePath))

	// Extract.
	stageStart := time.Now()
	records, err := p.extractor.ReadSource(p.cfg.SourcePath)
	if err != nil {
		result.Complete(false)
		return result, fmt.Errorf("extracting source data: %w", err)
	}
	result.ExtractedRows = len(records)
	result.AddStage("extract", time.Since(stageStart))

	// Clean.
	stageStart = time.Now()
	cleaned, stats, err := p.cleaner.Clean(records)
	if err != nil {
		result.Complete(false)
		return result, fmt.Errorf("cleaning staging rows: %w", err)
	}
	result.CleanStats = stats
	result.AddStage("clean", time.Since(stageStart))

	// Stage.
	stageStart = time.Now()
	staged, err := p.loader.LoadStaging(ctx, cleaned)
	if err != nil {
		result.Complete(false)
		return result, fmt.Errorf("loading staging table: %w", err)
	}
	result.StagedRows = staged
	result.AddStage("stage", time.Since(stageStart))

	// Dimensions. Country loads before customer so customer rows can
	// resolve their country keys from the registry.
	stageStart = time.Now()
	reg := model.NewKeyRegistry()

	timeDims := p.dims.BuildTimeDimension(cleaned)
	if result.Dimensions.Time, err = p.loader.LoadTimeDimension(ctx, timeDims, reg); err != nil {
		result.Complete(false)
		return result, fmt.Errorf("loading time dimension: %w", err)
	}

	countryDims := p.dims.BuildCountryDimension(cleaned)
	if result.Dimensions.Country, err = p.loader.LoadCountryDimension(ctx, countryDims, reg); err != nil {
		result.Complete(false)
		return result, fmt.Errorf("loading country dimension: %w", err)
	}

	productDims := p.dims.BuildProductDimension(cleaned)
	if result.Dimensions.Product, err = p.loader.LoadProductDimension(ctx, productDims, reg); err != nil {
		result.Complete(false)
		return result, fmt.Errorf("loading product dimension: %w", err)
	}

	customerDims := p.dims.BuildCustomerDimension(cleaned, reg)
	if result.Dimensions.Customer, err = p.loader.LoadCustomerDimension(ctx, customerDims, reg); err != nil {
		result.Complete(false)
		return result, fmt.Errorf("loading customer dimension: %w", err)
	}
	result.AddStage("dimensions", time.Since(stageStart))

	// Facts.
	stageStart = time.Now()
	factRows, factStats := p.facts.Build(cleaned, reg)
	result.FactStats = factStats
	if result.FactRows, err = p.loader.LoadFactSales(ctx, factRows); err != nil {
		result.Complete(false)
		return result, fmt.Errorf("loading fact table: %w", err)
	}
	result.AddStage("facts", time.Since(stageStart))

	// Quality checks and anomaly scoring read the warehouse just loaded.
	stageStart = time.Now()
	if result.QualityReport, err = p.quality.RunAll(ctx); err != nil {
		result.Complete(false)
		return result, fmt.Errorf("running quality checks: %w", err)
	}
	if result.DataSummary, err = p.quality.DataSummary(ctx); err != nil {
		result.Complete(false)
		return result, fmt.Errorf("summarizing warehouse: %w", err)
	}
	if result.TopMetrics, err = p.quality.TopMetrics(ctx); err != nil {
		result.Complete(false)
		return result, fmt.Errorf("computing top metrics: %w", err)
	}
	if result.MonitorReport, err = p.monitor.Run(ctx); err != nil {
		result.Complete(false)
		return result, fmt.Errorf("running anomaly scoring: %w", err)
	}
	result.AddStage("quality", time.Since(stageStart))

	// Export the report regardless of the quality verdict.
	stageStart = time.Now()
	if result.ReportPath, err = p.exporter.Export(result.MonitorReport, result.QualityReport); err != nil {
		result.Complete(false)
		return result, fmt.Errorf("exporting quality report: %w", err)
	}
	result.AddStage("export", time.Since(stageStart))

	if err := result.QualityReport.Validate(); err != nil {
		result.Complete(false)
		p.logger.Warn("pipeline run finished with quality failures",
			zap.String("run_id", result.RunID),
			zap.String("status", string(result.QualityReport.OverallStatus)),
			zap.Strings("failed_checks", result.QualityReport.FailedCheckNames()))
		return result, err
	}

	result.Complete(true)
	p.logger.Info("pipeline run complete",
		zap.String("run_id", result.RunID),
		zap.Duration("duration", result.Duration),
		zap.Int("extracted_rows", result.ExtractedRows),
		zap.Int("staged_rows", result.StagedRows),
		zap.Int("fact_rows", result.FactRows),
		zap.Float64("quality_score", result.QualityReport.QualityScore()))
	return result, nil
}
