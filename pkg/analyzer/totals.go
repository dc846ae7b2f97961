package analyzer

import (
	"context"
	"strings"

	"github.com/ccollicutt/wareader/pkg/parser"
)

// TotalsCollector counts records by kind and flag.
type TotalsCollector struct {
	totals Totals
}

// NewTotalsCollector creates a TotalsCollector.
func NewTotalsCollector() *TotalsCollector {
	return &TotalsCollector{}
}

// Name implements Collector.
func (c *TotalsCollector) Name() string { return "totals" }

// Process implements Collector.
func (c *TotalsCollector) Process(_ context.Context, record parser.Record) error {
	c.totals.Records++

	m, ok := record.(*parser.UserMessage)
	if !ok {
		c.totals.SystemNotices++
		return nil
	}

	c.totals.UserMessages++
	if m.IsMedia {
		c.totals.Media++
	}
	if m.IsDeleted {
		c.totals.Deleted++
	}
	if m.IsEdited {
		c.totals.Edited++
	}
	if strings.Contains(m.Content, "\n") {
		c.totals.MultiLine++
	}
	if m.Outgoing {
		c.totals.Outgoing++
	} else {
		c.totals.Incoming++
	}
	return nil
}

// Finalize implements Collector.
func (c *TotalsCollector) Finalize(_ context.Context, result *Result) error {
	result.Totals = c.totals
	return nil
}

// Reset implements Collector.
func (c *TotalsCollector) Reset() {
	c.totals = Totals{}
}
