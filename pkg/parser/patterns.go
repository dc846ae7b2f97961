package parser

import "regexp"

// Family identifies one of the supported export header shapes.
type Family int

const (
	FamilyNone Family = iota
	// FamilyModern: "9/10/22, 10:30 AM - Alice: Hello"
	FamilyModern
	// FamilyLegacy: "12/01/2020, 14:30 - Alice: Hello" (seconds, meridiem, en dash optional)
	FamilyLegacy
	// FamilyBracketed: "[9/10/22, 10:30:15 AM] Alice: Hello"
	FamilyBracketed
	// FamilyRegional: "01/12/2020 14:30 - Alice: Hello" (4-digit year, no meridiem)
	FamilyRegional
)

// String returns the family name used in reports.
func (f Family) String() string {
	switch f {
	case FamilyModern:
		return "modern"
	case FamilyLegacy:
		return "legacy"
	case FamilyBracketed:
		return "bracketed"
	case FamilyRegional:
		return "regional"
	default:
		return "none"
	}
}

// HeaderPattern is one entry of the ordered header table.
type HeaderPattern struct {
	Family     Family
	Name       string
	PatternStr string
	Pattern    *regexp.Regexp
	Examples   []string
}

// headerPatterns is tried in order; the first match wins. Every pattern
// anchors at line start and captures date, time, sender, content.
var headerPatterns = compileHeaders([]*HeaderPattern{
	{
		Family:     FamilyModern,
		Name:       "Slash date, 12h time, spaced dash",
		PatternStr: `^(\d{1,2}/\d{1,2}/\d{2,4}),\s+(\d{1,2}:\d{2}\s+(?:AM|PM))\s+-\s+([^:]+?):\s*(.*)$`,
		Examples:   []string{"9/10/22, 10:30 AM - Alice: Hello"},
	},
	{
		Family:     FamilyLegacy,
		Name:       "Slash date, optional comma, time, dash",
		PatternStr: `^(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM|am|pm)?)\s*[-–]\s*([^:]+?):\s*(.*)$`,
		Examples:   []string{"12/01/2020, 14:30 - Alice: Hello", "12/01/20 2:30:05 pm – Alice: Hello"},
	},
	{
		Family:     FamilyBracketed,
		Name:       "Bracketed date and time",
		PatternStr: `^\[(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}(?::\d{2})?(?:\s*(?:AM|PM|am|pm))?)\]\s*([^:]+?):\s*(.*)$`,
		Examples:   []string{"[9/10/22, 10:30:15 AM] Alice: Hello"},
	},
	{
		Family:     FamilyRegional,
		Name:       "4-digit year, 24h time, dash",
		PatternStr: `^(\d{1,2}/\d{1,2}/\d{4}),?\s+(\d{1,2}:\d{2}(?::\d{2})?)\s*[-–]\s*([^:]+?):\s*(.*)$`,
		Examples:   []string{"01/12/2020 14:30 - Alice: Hello"},
	},
})

// HeaderPatterns returns the ordered header table. Callers must not modify it.
func HeaderPatterns() []*HeaderPattern {
	return headerPatterns
}

func compileHeaders(patterns []*HeaderPattern) []*HeaderPattern {
	for _, p := range patterns {
		p.Pattern = regexp.MustCompile(p.PatternStr)
	}
	return patterns
}

// Timestamp prefixes without a sender, used for headerless system lines and
// for stripping notice content.
var (
	modernPrefix    = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}),\s+(\d{1,2}:\d{2}\s+(?:AM|PM))\s+-\s+`)
	legacyPrefix    = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM|am|pm)?)\s*[-–]\s*`)
	bracketedPrefix = regexp.MustCompile(`^\[(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}(?::\d{2})?(?:\s*(?:AM|PM|am|pm))?)\]\s*`)
)

// noticePrefixes are tried in order when cleaning system notices.
var noticePrefixes = []*regexp.Regexp{modernPrefix, legacyPrefix, bracketedPrefix}

// DefaultSystemPhrases are matched case-insensitively anywhere in a line.
var DefaultSystemPhrases = []string{
	"Messages and calls are end-to-end encrypted",
	"Your security code with",
	"security code changed",
	"left",
	"You're no longer",
	"changed to",
	"You removed",
	"added",
	"changed this group's",
	"created group",
	"You're now an admin",
	"You created group",
	"was added",
	"changed the group description",
	"joined using this group's",
	"changed the subject",
	"changed the group",
	"started a call",
	"Missed voice call",
	"Missed video call",
	"started calling",
	"Calling...",
	"was removed",
	"You left",
	"changed their phone number",
	"This chat is with a business account",
}

// Content markers.
const (
	MediaPlaceholder = "<Media omitted>"
	EditedMarker     = "<This message was edited>"
	DeletedSentinel  = "null"
)

// deletedSentinels are exact (trimmed) bodies that mark a deleted message.
var deletedSentinels = []string{
	DeletedSentinel,
	"This message was deleted",
	"You deleted this message",
}
