// Package service orchestrates the extraction strategies over a document's pages.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/sniffer"
	"github.com/FACorreiaa/statement-extractor/pkg/logger"
	"github.com/FACorreiaa/statement-extractor/pkg/metrics"
)

const tracerName = "github.com/FACorreiaa/statement-extractor/internal/domain/statement/service"

// PageSummary describes what one page contributed to a run.
type PageSummary struct {
	Index      int                `json:"index"`
	Strategy   statement.Strategy `json:"strategy"`
	Tables     int                `json:"tables"`
	Candidates int                `json:"candidates"`
	Skipped    int                `json:"skipped"`
}

// Result is the full outcome of an extraction run.
type Result struct {
	RunID             uuid.UUID                        `json:"run_id"`
	Transactions      []statement.CandidateTransaction `json:"transactions"`
	Skipped           []statement.RecordError          `json:"-"`
	DuplicatesDropped int                              `json:"duplicates_dropped"`
	Pages             []PageSummary                    `json:"pages"`
}

type pageResult struct {
	summary    PageSummary
	layouts    []sniffer.Layout
	candidates []statement.CandidateTransaction
	skipped    []statement.RecordError
}

// Extractor turns decoded pages into ordered, deduplicated candidates.
// It holds no per-run state and is safe for concurrent use.
type Extractor struct {
	opts     Options
	rows     parser.RowBuilder
	cascade  *parser.Cascade
	fallback *parser.ContextExtractor
	logger   *slog.Logger
	metrics  *metrics.Extraction
	tracer   trace.Tracer
}

// NewExtractor validates opts and builds an Extractor.
func NewExtractor(opts Options, log *slog.Logger) (*Extractor, error) {
	if !opts.AmountPolicy.Valid() {
		return nil, fmt.Errorf("new extractor: %w", normalizer.ErrUnknownAmountPolicy)
	}
	if log == nil {
		log = slog.Default()
	}
	opts = opts.withDefaults()
	return &Extractor{
		opts:     opts,
		rows:     parser.RowBuilder{Policy: opts.AmountPolicy, PaymentMethod: opts.TablePaymentMethod},
		cascade:  parser.NewCascade(opts.AmountPolicy, opts.TextPaymentMethod),
		fallback: parser.NewContextExtractor(opts.AmountPolicy, opts.TextPaymentMethod, opts.ContextWindow),
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}, nil
}

// WithMetrics sets the collectors updated after each run.
func (e *Extractor) WithMetrics(m *metrics.Extraction) *Extractor {
	e.metrics = m
	return e
}

// WithTracerProvider sets the provider the run and page spans are started
// from. The global provider is used otherwise.
func (e *Extractor) WithTracerProvider(tp trace.TracerProvider) *Extractor {
	if tp != nil {
		e.tracer = tp.Tracer(tracerName)
	}
	return e
}

// Options returns the effective options.
func (e *Extractor) Options() Options {
	return e.opts
}

// Extract returns the ordered candidate list for doc.
func (e *Extractor) Extract(ctx context.Context, doc statement.Document) ([]statement.CandidateTransaction, error) {
	res, err := e.ExtractWithReport(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res.Transactions, nil
}

// ExtractWithReport runs the extraction and also returns per-page summaries and
// the record-level failures that were skipped.
func (e *Extractor) ExtractWithReport(ctx context.Context, doc statement.Document) (*Result, error) {
	start := time.Now()
	runID := uuid.New()
	ctx = logger.WithRunID(ctx, runID.String())
	log := logger.FromContext(ctx, e.logger)

	ctx, span := e.tracer.Start(ctx, "statement.Extract", trace.WithAttributes(
		attribute.String("run_id", runID.String()),
		attribute.String("amount_policy", e.opts.AmountPolicy.String()),
	))
	defer span.End()

	pages, err := e.pages(ctx, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "document unreadable")
		log.Error("failed to read document", "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("pages", len(pages)))

	results, err := e.processPages(ctx, pages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction interrupted")
		return nil, err
	}

	res := &Result{RunID: runID, Pages: make([]PageSummary, 0, len(results))}
	var all []statement.CandidateTransaction
	for _, pr := range results {
		for ti, layout := range pr.layouts {
			log.Debug("table interpreted",
				"page", pr.summary.Index,
				"table", ti,
				"mapping", string(layout.Source),
				"fingerprint", layout.Fingerprint,
				"roles", layout.Roles,
			)
		}
		for _, rec := range pr.skipped {
			e.logSkipped(log, rec)
			e.metrics.RecordSkipped(SkipReason(rec))
		}
		log.Info("page processed",
			"page", pr.summary.Index,
			"strategy", string(pr.summary.Strategy),
			"candidates", pr.summary.Candidates,
		)
		e.metrics.PageProcessed(string(pr.summary.Strategy), pr.summary.Candidates)

		res.Pages = append(res.Pages, pr.summary)
		res.Skipped = append(res.Skipped, pr.skipped...)
		all = append(all, pr.candidates...)
	}

	kept, dropped := Deduplicate(all)
	SortByDate(kept)
	res.Transactions = kept
	res.DuplicatesDropped = dropped

	elapsed := time.Since(start)
	e.metrics.DuplicatesDropped(dropped)
	e.metrics.ObserveRun(elapsed)
	span.SetAttributes(
		attribute.Int("transactions", len(kept)),
		attribute.Int("skipped", len(res.Skipped)),
	)
	log.Info("extraction finished",
		"pages", len(pages),
		"transactions", len(kept),
		"skipped", len(res.Skipped),
		"duplicates_dropped", dropped,
		"duration", elapsed,
	)
	return res, nil
}

func (e *Extractor) pages(ctx context.Context, doc statement.Document) ([]statement.RawPage, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", statement.ErrDocumentUnreadable)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pages, err := doc.Pages(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, statement.ErrDocumentUnreadable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", statement.ErrDocumentUnreadable, err)
	}
	return pages, nil
}

// processPages runs pages on up to Workers goroutines. Results keep page order.
func (e *Extractor) processPages(ctx context.Context, pages []statement.RawPage) ([]pageResult, error) {
	results := make([]pageResult, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, page := range pages {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.processPage(gctx, page)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// processPage applies the table strategy when the page has tables, otherwise the
// line cascade, and the contextual fallback only if the cascade found nothing.
func (e *Extractor) processPage(ctx context.Context, page statement.RawPage) pageResult {
	_, span := e.tracer.Start(ctx, "statement.page", trace.WithAttributes(
		attribute.Int("page", page.Index),
		attribute.Int("tables", len(page.Tables)),
	))
	defer span.End()

	pr := pageResult{summary: PageSummary{Index: page.Index, Tables: len(page.Tables)}}
	switch {
	case len(page.Tables) > 0:
		pr.summary.Strategy = statement.StrategyTable
		for ti, table := range page.Tables {
			layout := sniffer.Interpret(table, e.opts.SampleRows)
			pr.layouts = append(pr.layouts, layout)
			cands, skipped := e.rows.BuildTable(layout, page.Index, ti)
			pr.candidates = append(pr.candidates, cands...)
			pr.skipped = append(pr.skipped, skipped...)
		}
	default:
		pr.summary.Strategy = statement.StrategyCascade
		pr.candidates, pr.skipped = e.cascade.ParsePage(page.Text, page.Index)
		if len(pr.candidates) == 0 {
			pr.summary.Strategy = statement.StrategyFallback
			cands, skipped := e.fallback.ParsePage(page.Text, page.Index)
			pr.candidates = cands
			pr.skipped = append(pr.skipped, skipped...)
		}
	}
	pr.summary.Candidates = len(pr.candidates)
	pr.summary.Skipped = len(pr.skipped)
	span.SetAttributes(
		attribute.String("strategy", string(pr.summary.Strategy)),
		attribute.Int("candidates", pr.summary.Candidates),
	)
	return pr
}

func (e *Extractor) logSkipped(log *slog.Logger, rec statement.RecordError) {
	attrs := []any{"page", rec.Page}
	if rec.Table != nil {
		attrs = append(attrs, "table", *rec.Table)
	}
	if rec.Row != nil {
		attrs = append(attrs, "row", *rec.Row)
	}
	if rec.Line != nil {
		attrs = append(attrs, "line", *rec.Line)
	}
	attrs = append(attrs,
		"field", rec.Field,
		"reason", SkipReason(rec),
		"message", rec.Message,
		"raw", rec.RawData,
	)
	log.Debug("record skipped", attrs...)
}

// SkipReason classifies a record-level failure for logs and metrics.
func SkipReason(rec statement.RecordError) string {
	switch {
	case errors.Is(rec.Err, normalizer.ErrInvalidDateFormat):
		return "invalid_date"
	case errors.Is(rec.Err, normalizer.ErrInvalidAmountFormat):
		return "invalid_amount"
	case errors.Is(rec.Err, statement.ErrMissingField):
		return "missing_field"
	case errors.Is(rec.Err, statement.ErrInvalidCandidate):
		return "invalid_candidate"
	default:
		return "other"
	}
}
