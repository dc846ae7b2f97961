package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnreadableInput is returned when the export text cannot be obtained.
// Individual lines that match nothing are never an error.
var ErrUnreadableInput = errors.New("unreadable input")

// DefaultYieldEvery is the number of non-blank lines between cooperative
// yields.
const DefaultYieldEvery = 1000

// maxLineSize is how much of a single export line is kept. The remainder of
// a longer line is read and dropped.
const maxLineSize = 1024 * 1024

// Parser converts export text into transcripts. A Parser holds no per-parse
// state and is safe for concurrent use.
type Parser struct {
	classifier *Classifier
	yieldEvery int
	progress   func(lines int)
}

// Option configures a Parser.
type Option func(*Parser)

// WithSystemPhrases replaces the phrase table used to recognize system
// notices.
func WithSystemPhrases(phrases []string) Option {
	return func(p *Parser) {
		p.classifier = NewClassifier(phrases)
	}
}

// WithYieldEvery sets how many lines are processed between yields and
// cancellation checks. Values below 1 keep the default.
func WithYieldEvery(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.yieldEvery = n
		}
	}
}

// WithProgress registers a callback invoked at every yield point and once at
// the end with the number of non-blank lines processed so far.
func WithProgress(fn func(lines int)) Option {
	return func(p *Parser) {
		p.progress = fn
	}
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		classifier: NewClassifier(DefaultSystemPhrases),
		yieldEvery: DefaultYieldEvery,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads the whole export from r in a single forward pass. source labels
// the result. On cancellation the partial transcript is discarded and
// ctx.Err() is returned.
func (p *Parser) Parse(ctx context.Context, r io.Reader, source string) (*Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	br := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))

	s := newSession(p.classifier)
	stats := &Stats{}

	for {
		raw, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: reading %s: %w", ErrUnreadableInput, source, err)
		}

		line := SanitizeLine(raw)
		if line == "" {
			continue
		}

		stats.Lines++
		switch s.feed(line) {
		case ClassContinuation:
			stats.Continuations++
		case ClassDiscard:
			stats.Discarded++
		}

		if stats.Lines%p.yieldEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			p.report(stats.Lines)
			runtime.Gosched()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.report(stats.Lines)

	t := s.transcript(source)
	t.Stats = stats
	return t, nil
}

// ParseFile opens path and parses it. The path is used as the source label.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Transcript, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableInput, err)
	}
	defer func() { _ = f.Close() }()

	return p.Parse(ctx, f, path)
}

// ParseString parses an in-memory export.
func (p *Parser) ParseString(ctx context.Context, text, source string) (*Transcript, error) {
	return p.Parse(ctx, strings.NewReader(text), source)
}

// readLine returns the next line without its line ending, keeping at most
// maxLineSize bytes of it. io.EOF is only returned once no data is left.
func readLine(br *bufio.Reader) (string, error) {
	var buf []byte
	truncated := false
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if len(buf) > 0 {
				break
			}
			return "", err
		}
		if room := maxLineSize - len(buf); len(chunk) > room {
			chunk = chunk[:room]
			truncated = true
		}
		buf = append(buf, chunk...)
		if !isPrefix {
			break
		}
	}
	if truncated {
		return strings.ToValidUTF8(string(buf), ""), nil
	}
	return string(buf), nil
}

func (p *Parser) report(lines int) {
	if p.progress != nil {
		p.progress(lines)
	}
}
