package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/statement-extractor/internal/domain/categorization"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/service"
	"github.com/FACorreiaa/statement-extractor/pkg/config"
	"github.com/FACorreiaa/statement-extractor/pkg/metrics"
)

// Dependencies holds everything a run needs.
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Registry *prometheus.Registry
	Metrics  *metrics.Extraction

	Extractor   *service.Extractor
	Categorizer *categorization.Categorizer
}

// InitDependencies builds the extractor and its collaborators from cfg.
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Observability.MetricsEnabled {
		deps.Registry = prometheus.NewRegistry()
		deps.Metrics = metrics.New(deps.Registry)
	}

	opts, err := service.OptionsFromConfig(cfg.Extraction)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction options: %w", err)
	}
	extractor, err := service.NewExtractor(opts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init extractor: %w", err)
	}
	deps.Extractor = extractor.WithMetrics(deps.Metrics)
	deps.Categorizer = categorization.NewCategorizer(categorization.DefaultBuckets())

	logger.Debug("dependencies initialized",
		"amount_policy", opts.AmountPolicy.String(),
		"workers", opts.Workers,
		"metrics", cfg.Observability.MetricsEnabled,
	)
	return deps, nil
}
