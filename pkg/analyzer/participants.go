package analyzer

import (
	"context"
	"strings"

	"github.com/ccollicutt/wareader/pkg/parser"
)

// ParticipantCollector tallies per-sender activity.
type ParticipantCollector struct {
	order []string
	stats map[string]*ParticipantStats
}

// NewParticipantCollector creates a ParticipantCollector.
func NewParticipantCollector() *ParticipantCollector {
	c := &ParticipantCollector{}
	c.Reset()
	return c
}

// Name implements Collector.
func (c *ParticipantCollector) Name() string { return "participants" }

// Process implements Collector.
func (c *ParticipantCollector) Process(_ context.Context, record parser.Record) error {
	m, ok := record.(*parser.UserMessage)
	if !ok {
		return nil
	}

	s := c.stats[m.Sender]
	if s == nil {
		s = &ParticipantStats{Name: m.Sender, FirstDate: m.Date}
		c.stats[m.Sender] = s
		c.order = append(c.order, m.Sender)
	}

	s.Messages++
	s.LastDate = m.Date
	switch {
	case m.IsDeleted:
		s.Deleted++
	case m.IsMedia:
		s.Media++
	default:
		s.Words += wordCount(m.Content)
	}
	if m.IsEdited {
		s.Edited++
	}
	return nil
}

// Finalize implements Collector.
func (c *ParticipantCollector) Finalize(_ context.Context, result *Result) error {
	for _, name := range c.order {
		result.Participants = append(result.Participants, *c.stats[name])
	}
	return nil
}

// Reset implements Collector.
func (c *ParticipantCollector) Reset() {
	c.order = nil
	c.stats = make(map[string]*ParticipantStats)
}

// wordCount counts words of escaped content, ignoring the edit marker.
func wordCount(content string) int {
	raw := parser.UnescapeContent(content)
	raw = strings.ReplaceAll(raw, parser.EditedMarker, "")
	return len(strings.Fields(raw))
}
