package analyzer

import (
	"context"

	"github.com/ccollicutt/wareader/pkg/parser"
)

// ActivityCollector counts records per day. Records without a date are
// attributed to the most recent dated record, or skipped before the first.
type ActivityCollector struct {
	days  []*DayStats
	index map[string]*DayStats
	last  *DayStats
}

// NewActivityCollector creates an ActivityCollector.
func NewActivityCollector() *ActivityCollector {
	c := &ActivityCollector{}
	c.Reset()
	return c
}

// Name implements Collector.
func (c *ActivityCollector) Name() string { return "activity" }

// Process implements Collector.
func (c *ActivityCollector) Process(_ context.Context, record parser.Record) error {
	day := c.last
	if date := record.Day(); date != "" {
		day = c.index[date]
		if day == nil {
			day = &DayStats{Date: date}
			c.index[date] = day
			c.days = append(c.days, day)
		}
		c.last = day
	}
	if day == nil {
		return nil
	}

	if record.Type() == parser.RecordTypeUser {
		day.Messages++
	} else {
		day.Notices++
	}
	return nil
}

// Finalize implements Collector.
func (c *ActivityCollector) Finalize(_ context.Context, result *Result) error {
	var busiest *DayStats
	for _, d := range c.days {
		result.Days = append(result.Days, *d)
		if d.Messages > 0 && (busiest == nil || d.Messages > busiest.Messages) {
			busiest = d
		}
	}
	if busiest != nil {
		b := *busiest
		result.BusiestDay = &b
	}
	return nil
}

// Reset implements Collector.
func (c *ActivityCollector) Reset() {
	c.days = nil
	c.index = make(map[string]*DayStats)
	c.last = nil
}
