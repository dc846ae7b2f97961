package output

import (
	"regexp"
	"strings"
	"time"

	"github.com/ccollicutt/wareader/pkg/parser"
)

// Display strings for flagged messages.
const (
	MediaLabel   = "📎 Media"
	DeletedLabel = "🚫 This message was deleted"
	EditedLabel  = "✏️ edited"
)

// dayLayout parses canonical month/day/yyyy dates.
const dayLayout = "1/2/2006"

// FormatDay renders a canonical date as "Today", "Yesterday" or
// "January 2, 2006" relative to now. Dates that do not parse as month/day
// are returned unchanged.
func FormatDay(date string, now time.Time) string {
	d, err := time.ParseInLocation(dayLayout, date, now.Location())
	if err != nil {
		return date
	}

	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	switch {
	case d.Equal(today):
		return "Today"
	case d.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return d.Format("January 2, 2006")
	}
}

// DisplayContent returns the unescaped body of m as shown to a reader:
// media and deleted messages collapse to a label and the edit marker becomes
// an "edited" tag.
func DisplayContent(m *parser.UserMessage) string {
	switch {
	case m.IsMedia && strings.TrimSpace(parser.UnescapeContent(m.Content)) == parser.MediaPlaceholder:
		return MediaLabel
	case m.IsDeleted:
		return DeletedLabel
	}

	content := parser.UnescapeContent(m.Content)
	content = strings.Replace(content, parser.MediaPlaceholder, MediaLabel, 1)
	if m.IsEdited {
		content = strings.Replace(content, parser.EditedMarker, EditedLabel, 1)
	}
	return content
}

// ShowSender reports whether an incoming message should carry its sender's
// name: in group chats, or whenever no perspective is chosen.
func ShowSender(m *parser.UserMessage, participants int, self string) bool {
	return !m.Outgoing && (participants > 2 || self == "")
}

var linkPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// Links returns the URLs found in content, in order.
func Links(content string) []string {
	return linkPattern.FindAllString(content, -1)
}

// linkify wraps each URL in angle brackets so Markdown renders it as a link.
func linkify(content string) string {
	return linkPattern.ReplaceAllString(content, "<$0>")
}
