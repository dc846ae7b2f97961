// Package detector identifies which export header family a chat export uses.
package detector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ccollicutt/wareader/pkg/parser"
)

// DetectionResult holds the result of analyzing an export.
type DetectionResult struct {
	Matches       []FamilyMatch // Families that matched, sorted by lines won descending
	SampledLines  int           // Number of non-blank lines sampled
	MessageLines  int           // Lines classified as user message headers
	SystemLines   int           // Lines classified as system notices
	OtherLines    int           // Continuations and discarded lines
	DateOrder     DateOrder     // Day/month ordering inferred from header dates
	ShadowNote    string        // Set when a family matched lines but never won one
	AmbiguityNote string        // Set when day/month ordering cannot be decided
}

// FamilyMatch is one header family's showing over the sample.
type FamilyMatch struct {
	Pattern    *parser.HeaderPattern
	Confidence float64       // Share of message lines this family won, 0.0 to 1.0
	MatchCount int           // Lines the pattern matches on its own
	WonCount   int           // Lines where this pattern was the first to match
	SampleLine string        // Example line that matched
	ClaimedBy  parser.Family // Earlier family that took a matching line, if any
}

// Shadowed reports whether the family matched lines but an earlier family
// always took precedence.
func (m FamilyMatch) Shadowed() bool {
	return m.MatchCount > 0 && m.WonCount == 0
}

// Detector samples exports and classifies their lines.
type Detector struct {
	patterns   []*parser.HeaderPattern
	classifier *parser.Classifier
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 200).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithSystemPhrases replaces the phrases used to recognize system notices.
func WithSystemPhrases(phrases []string) Option {
	return func(d *Detector) {
		d.classifier = parser.NewClassifier(phrases)
	}
}

// New creates a new Detector over the parser's header table.
func New(opts ...Option) *Detector {
	d := &Detector{
		patterns:   parser.HeaderPatterns(),
		classifier: parser.NewClassifier(parser.DefaultSystemPhrases),
		sampleSize: 200,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples an export file and analyzes it.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines analyzes a slice of export lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{}

	type familyStats struct {
		pattern    *parser.HeaderPattern
		matchCount int
		wonCount   int
		sampleLine string
		claimedBy  parser.Family
	}
	stats := make(map[parser.Family]*familyStats)

	var dates []string
	var last parser.Record

	for _, raw := range lines {
		line := parser.SanitizeLine(raw)
		if line == "" {
			continue
		}
		result.SampledLines++

		class, fields := d.classifier.Classify(line, last)
		switch class {
		case parser.ClassUserMessage:
			result.MessageLines++
			dates = append(dates, fields.Date)
			last = &parser.UserMessage{}
		case parser.ClassSystemNotice:
			result.SystemLines++
			last = &parser.SystemNotice{}
		default:
			result.OtherLines++
		}
		if class != parser.ClassUserMessage {
			continue
		}

		for _, p := range d.patterns {
			if !p.Pattern.MatchString(line) {
				continue
			}
			s := stats[p.Family]
			if s == nil {
				s = &familyStats{pattern: p, sampleLine: line}
				stats[p.Family] = s
			}
			s.matchCount++
			if p.Family == fields.Family {
				s.wonCount++
			} else if s.claimedBy == parser.FamilyNone {
				s.claimedBy = fields.Family
			}
		}
	}

	for _, s := range stats {
		confidence := 0.0
		if result.MessageLines > 0 {
			confidence = float64(s.wonCount) / float64(result.MessageLines)
		}
		result.Matches = append(result.Matches, FamilyMatch{
			Pattern:    s.pattern,
			Confidence: confidence,
			MatchCount: s.matchCount,
			WonCount:   s.wonCount,
			SampleLine: s.sampleLine,
			ClaimedBy:  s.claimedBy,
		})
	}

	// Most lines won first; ties go to the family tried earlier.
	sort.Slice(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.WonCount != b.WonCount {
			return a.WonCount > b.WonCount
		}
		return a.Pattern.Family < b.Pattern.Family
	})

	var notes []string
	for _, m := range result.Matches {
		if m.Shadowed() && d.unreachable(m.Pattern) {
			notes = append(notes, fmt.Sprintf("%s pattern matched %d line(s), all read by the earlier %s pattern",
				m.Pattern.Family, m.MatchCount, m.ClaimedBy))
		}
	}
	result.ShadowNote = strings.Join(notes, "; ")

	result.DateOrder = InferDateOrder(dates)
	if result.DateOrder == DateOrderAmbiguous {
		result.AmbiguityNote = "Header dates never exceed 12 in the first or second field, so " +
			"month/day and day/month ordering cannot be told apart. Dates are kept in the order written."
	}

	return result
}

// unreachable reports whether an earlier pattern in the table matches every
// example of p, so p can never read a line. A general family that loses lines
// to a more specific earlier one is not unreachable.
func (d *Detector) unreachable(p *parser.HeaderPattern) bool {
	if len(p.Examples) == 0 {
		return false
	}
	for _, ex := range p.Examples {
		claimed := false
		for _, earlier := range d.patterns {
			if earlier.Family >= p.Family {
				break
			}
			if earlier.Pattern.MatchString(ex) {
				claimed = true
				break
			}
		}
		if !claimed {
			return false
		}
	}
	return true
}

// sampleFile reads up to sampleSize non-blank lines from a file.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() && len(lines) < d.sampleSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if line := parser.SanitizeLine(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// BestMatch returns the family that won the most lines, or nil if none did.
func (r *DetectionResult) BestMatch() *FamilyMatch {
	if len(r.Matches) == 0 || r.Matches[0].WonCount == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one family matched.
func (r *DetectionResult) HasMatch() bool {
	return r.BestMatch() != nil
}
