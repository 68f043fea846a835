// Package pipeline runs a whole resolution: collect inputs, resolve
// relationships, then persist what the configuration asks for.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"doclink/internal/config"
	"doclink/internal/crawler"
	"doclink/internal/extractor"
	"doclink/internal/graph"
	"doclink/internal/logfields"
	"doclink/internal/metrics"
	"doclink/internal/resolver"
	"doclink/internal/storage"
)

type Runner struct {
	cfg    *config.Config
	fs     afero.Fs
	logger *slog.Logger
}

// Report is what one run produced.
type Report struct {
	Crawl  *crawler.Result
	Result *resolver.Result
	// Run is zero when no database is configured.
	Run      storage.Run
	DumpPath string
	Duration time.Duration
}

func NewRunner(cfg *config.Config, fs afero.Fs, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{cfg: cfg, fs: fs, logger: logger}
}

func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	var prom *metrics.PrometheusRecorder
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if r.cfg.Output.Metrics != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	crawl, err := r.collectStage(ctx)
	if err != nil {
		return nil, err
	}

	result := r.resolveStage(crawl, recorder)

	report := &Report{Crawl: crawl, Result: result}
	if err := r.persistStage(ctx, report); err != nil {
		return nil, err
	}

	if prom != nil {
		if err := prom.WriteTextfile(r.cfg.Output.Metrics); err != nil {
			return nil, fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	report.Duration = time.Since(start)
	r.logger.Info("run complete",
		logfields.Count(result.Collection.Len()),
		slog.Int("diagnostics", result.Diagnostics.Len()),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000),
	)
	return report, nil
}

func (r *Runner) collectStage(ctx context.Context) (*crawler.Result, error) {
	ext, err := extractor.NewExtractor("javascript")
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	opts := []crawler.Option{
		crawler.WithJobs(r.cfg.Project.Jobs),
		crawler.WithLogger(r.logger.With(logfields.Stage("collect"))),
	}
	if len(r.cfg.Project.Ignore) > 0 {
		opts = append(opts, crawler.WithIgnored(r.cfg.Project.Ignore...))
	}
	c := crawler.NewCrawler(r.fs, ext, opts...)

	roots := append([]string{r.cfg.Project.Root}, r.cfg.Project.Inputs...)
	res, err := c.Collect(ctx, roots...)
	if err != nil {
		return nil, fmt.Errorf("failed to collect doclets: %w", err)
	}
	return res, nil
}

func (r *Runner) resolveStage(crawl *crawler.Result, recorder metrics.Recorder) *resolver.Result {
	return resolver.Resolve(crawl.Doclets, resolver.Options{
		InheritUndocumented: r.cfg.Resolve.InheritUndocumented,
		MaxDiagnostics:      r.cfg.Resolve.MaxDiagnostics,
		Recorder:            recorder,
		Logger:              r.logger,
	})
}

func (r *Runner) persistStage(ctx context.Context, report *Report) error {
	out := report.Result.Collection

	if path := r.cfg.Output.Dump; path != "" {
		if err := r.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create dump directory: %w", err)
		}
		if err := graph.SaveFile(r.fs, path, out); err != nil {
			return err
		}
		report.DumpPath = path
		r.logger.Info("wrote doclet dump", logfields.Path(path))
	}

	if path := r.cfg.Output.Database; path != "" {
		store, err := storage.NewSQLiteStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		run, err := store.SaveRun(ctx, r.cfg.Project.Root, out, report.Result.Diagnostics.Items())
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		report.Run = run
		r.logger.Info("saved run", logfields.RunID(run.ID), logfields.Path(path))
	}
	return nil
}
