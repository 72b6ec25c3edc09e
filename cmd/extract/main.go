// Command extract reads a bank or wallet statement export and prints the
// transactions found in it, one categorized record per transaction.
//
//	extract [-format json|csv] [-policy simple|heuristic] FILE
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/document"
	"github.com/FACorreiaa/statement-extractor/pkg/config"
	"github.com/FACorreiaa/statement-extractor/pkg/logger"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "json", "output format: json or csv")
	policy := fs.String("policy", "", "amount policy: simple or heuristic (overrides AMOUNT_POLICY)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: extract [-format json|csv] [-policy simple|heuristic] FILE")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	if *format != "json" && *format != "csv" {
		fmt.Fprintf(stderr, "unknown format %q\n", *format)
		return exitUsage
	}

	cfg, err := config.Read()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return exitUsage
	}
	if *policy != "" {
		cfg.Extraction.AmountPolicy = strings.ToLower(*policy)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return exitUsage
	}
	log := logger.New(stderr, cfg.Logging.Level, cfg.Logging.Format)

	deps, err := InitDependencies(cfg, log)
	if err != nil {
		log.Error("failed to initialize", "error", err)
		return exitFailure
	}

	path := fs.Arg(0)
	doc, err := document.Open(path)
	if err != nil {
		log.Error("failed to open statement", "path", path, "error", err)
		return exitFailure
	}

	txs, err := deps.Extractor.Extract(ctx, doc)
	if err != nil {
		if errors.Is(err, statement.ErrDocumentUnreadable) {
			log.Error("statement unreadable", "path", path, "error", err)
		} else {
			log.Error("extraction failed", "path", path, "error", err)
		}
		return exitFailure
	}

	if deps.Registry != nil {
		defer func() {
			if err := writeMetrics(stderr, deps.Registry); err != nil {
				log.Warn("failed to write metrics", "error", err)
			}
		}()
	}

	if len(txs) == 0 {
		fmt.Fprintln(stderr, "no transactions found")
		return exitOK
	}

	records := toRecords(txs, deps.Categorizer, cfg.Extraction.Currency)
	if err := writeRecords(stdout, *format, records); err != nil {
		log.Error("failed to write output", "error", err)
		return exitFailure
	}
	return exitOK
}
