package service

import (
	"fmt"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/sniffer"
	"github.com/FACorreiaa/statement-extractor/pkg/config"
)

// Options tunes an Extractor. AmountPolicy has no default and must be set.
type Options struct {
	AmountPolicy       normalizer.AmountPolicy
	Workers            int
	ContextWindow      int
	SampleRows         int
	TablePaymentMethod string
	TextPaymentMethod  string
}

// DefaultOptions returns the stock settings for the given policy.
func DefaultOptions(policy normalizer.AmountPolicy) Options {
	return Options{
		AmountPolicy:       policy,
		Workers:            1,
		ContextWindow:      parser.DefaultContextWindow,
		SampleRows:         sniffer.DefaultSampleRows,
		TablePaymentMethod: parser.DefaultTablePaymentMethod,
		TextPaymentMethod:  parser.DefaultTextPaymentMethod,
	}
}

// OptionsFromConfig converts the environment configuration into engine options.
func OptionsFromConfig(cfg config.ExtractionConfig) (Options, error) {
	policy, err := normalizer.ParseAmountPolicy(cfg.AmountPolicy)
	if err != nil {
		return Options{}, fmt.Errorf("amount policy: %w", err)
	}
	return Options{
		AmountPolicy:       policy,
		Workers:            cfg.Workers,
		ContextWindow:      cfg.ContextWindow,
		SampleRows:         cfg.SampleRows,
		TablePaymentMethod: cfg.TablePaymentMethod,
		TextPaymentMethod:  cfg.TextPaymentMethod,
	}, nil
}

// withDefaults fills zero values, leaving the policy untouched.
func (o Options) withDefaults() Options {
	d := DefaultOptions(o.AmountPolicy)
	if o.Workers < 1 {
		o.Workers = d.Workers
	}
	if o.ContextWindow <= 0 {
		o.ContextWindow = d.ContextWindow
	}
	if o.SampleRows <= 0 {
		o.SampleRows = d.SampleRows
	}
	if o.TablePaymentMethod == "" {
		o.TablePaymentMethod = d.TablePaymentMethod
	}
	if o.TextPaymentMethod == "" {
		o.TextPaymentMethod = d.TextPaymentMethod
	}
	return o
}
