package analyzer

import (
	"context"
	"fmt"

	"github.com/ccollicutt/wareader/pkg/parser"
)

// checkEvery is the number of records between cancellation checks.
const checkEvery = 1000

// Analyzer runs a set of collectors over a transcript.
type Analyzer struct {
	collectors []Collector
	filter     map[string]bool // nil means all collectors
}

// Option configures analyzer behavior.
type Option func(*Analyzer)

// WithCollectors limits analysis to the named collectors.
func WithCollectors(names []string) Option {
	return func(a *Analyzer) {
		if len(names) > 0 {
			a.filter = make(map[string]bool)
			for _, n := range names {
				a.filter[n] = true
			}
		}
	}
}

// New creates an analyzer with the built-in collectors.
func New(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}

	for _, c := range []Collector{NewTotalsCollector(), NewParticipantCollector(), NewActivityCollector()} {
		if a.filter != nil && !a.filter[c.Name()] {
			continue
		}
		a.collectors = append(a.collectors, c)
	}

	if len(a.collectors) == 0 {
		return nil, fmt.Errorf("no collectors to run (check collector filter)")
	}

	return a, nil
}

// Analyze feeds every record of t through the collectors. An Analyzer is not
// safe for concurrent use because collectors keep state between calls.
func (a *Analyzer) Analyze(ctx context.Context, t *parser.Transcript) (*Result, error) {
	result := &Result{
		Participants: []ParticipantStats{},
		Days:         []DayStats{},
	}

	for _, c := range a.collectors {
		c.Reset()
		result.Collectors = append(result.Collectors, c.Name())
	}

	for i, r := range t.Records {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for _, c := range a.collectors {
			if err := c.Process(ctx, r); err != nil {
				return nil, fmt.Errorf("processing record with collector %q: %w", c.Name(), err)
			}
		}
	}

	for _, c := range a.collectors {
		if err := c.Finalize(ctx, result); err != nil {
			return nil, fmt.Errorf("finalizing collector %q: %w", c.Name(), err)
		}
	}

	return result, nil
}
