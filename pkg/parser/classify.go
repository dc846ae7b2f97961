package parser

import "strings"

// LineClass is the classifier's verdict for one non-blank line.
type LineClass int

const (
	ClassDiscard LineClass = iota
	ClassUserMessage
	ClassSystemNotice
	ClassContinuation
)

// String returns a short name for logs and tests.
func (c LineClass) String() string {
	switch c {
	case ClassUserMessage:
		return "user"
	case ClassSystemNotice:
		return "system"
	case ClassContinuation:
		return "continuation"
	default:
		return "discard"
	}
}

// Fields are the raw header captures of a user message line.
type Fields struct {
	Family  Family
	Date    string
	Time    string
	Sender  string
	Content string
}

// Extract tries the header table in order and returns the captures of the
// first pattern that matches with a non-blank sender. ok is false when none
// of them does.
func Extract(line string) (Fields, bool) {
	for _, p := range headerPatterns {
		m := p.Pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		sender := strings.TrimSpace(m[3])
		if sender == "" {
			continue
		}
		return Fields{
			Family:  p.Family,
			Date:    m[1],
			Time:    m[2],
			Sender:  sender,
			Content: m[4],
		}, true
	}
	return Fields{}, false
}

// matchesTimestampShape reports whether the line opens with a date and time
// followed by a dash separator.
func matchesTimestampShape(line string) bool {
	return modernPrefix.MatchString(line) || legacyPrefix.MatchString(line)
}

// hasColonDelimitedSender reports whether the text after the timestamp
// prefix carries a "name:" token. Lines without a prefix never do.
func hasColonDelimitedSender(line string) bool {
	loc := modernPrefix.FindStringIndex(line)
	if loc == nil {
		loc = legacyPrefix.FindStringIndex(line)
	}
	if loc == nil {
		return false
	}
	return strings.Contains(line[loc[1]:], ":")
}

// isHeaderlessSystemLine is a timestamped line whose text names no sender.
func isHeaderlessSystemLine(line string) bool {
	return matchesTimestampShape(line) && !hasColonDelimitedSender(line)
}

// Classifier decides what each line contributes to the transcript.
type Classifier struct {
	phrases []string // lower-cased
}

// NewClassifier creates a classifier recognizing the given system phrases.
func NewClassifier(phrases []string) *Classifier {
	lower := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lower = append(lower, p)
		}
	}
	return &Classifier{phrases: lower}
}

// Classify returns the class of a trimmed, non-blank line. last is the most
// recent record of the transcript under construction, or nil.
func (c *Classifier) Classify(line string, last Record) (LineClass, Fields) {
	headerless := isHeaderlessSystemLine(line)

	if f, ok := Extract(line); ok && !headerless {
		return ClassUserMessage, f
	}

	if headerless || c.hasSystemPhrase(line) {
		return ClassSystemNotice, Fields{}
	}

	if _, ok := last.(*UserMessage); ok {
		return ClassContinuation, Fields{}
	}

	return ClassDiscard, Fields{}
}

func (c *Classifier) hasSystemPhrase(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range c.phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
