package parser

import (
	"strconv"
	"strings"
)

// NormalizeDate converts a slash date to month/day/yyyy. Two-digit years
// below 50 map to the 2000s, the rest to the 1900s. The result is composed
// from the original parts; no calendar parsing takes place.
func NormalizeDate(date string) string {
	parts := strings.Split(strings.TrimSpace(date), "/")
	if len(parts) != 3 {
		return date
	}

	year := parts[2]
	if len(year) <= 2 {
		n, err := strconv.Atoi(year)
		if err != nil {
			return date
		}
		if n < 50 {
			n += 2000
		} else {
			n += 1900
		}
		year = strconv.Itoa(n)
	}

	return parts[0] + "/" + parts[1] + "/" + year
}

// NormalizeTime trims surrounding whitespace. The authored form (12h with
// meridiem, 24h, with or without seconds) is kept as is.
func NormalizeTime(t string) string {
	return strings.TrimSpace(t)
}

// escapes lists replacements in application order. The ampersand goes first
// so the entities introduced afterwards are not escaped again.
var escapes = []struct{ char, entity string }{
	{"&", "&amp;"},
	{"<", "&lt;"},
	{">", "&gt;"},
	{`"`, "&quot;"},
	{"'", "&#x27;"},
}

// EscapeContent escapes & < > " ' for safe embedding and trims the result.
// An ampersand that already starts one of the produced entities is kept,
// so escaping an escaped string is a no-op.
func EscapeContent(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, `&<>"'`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '&':
			if startsEntity(s[i:]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&amp;")
			}
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#x27;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func startsEntity(s string) bool {
	for _, e := range escapes {
		if strings.HasPrefix(s, e.entity) {
			return true
		}
	}
	return false
}

// UnescapeContent reverses EscapeContent.
func UnescapeContent(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	for i := len(escapes) - 1; i >= 0; i-- {
		s = strings.ReplaceAll(s, escapes[i].entity, escapes[i].char)
	}
	return s
}

// Flags are the content markers detected on a message body.
type Flags struct {
	IsMedia   bool
	IsDeleted bool
	IsEdited  bool
}

// DetectFlags inspects raw or already-escaped content for the media
// placeholder, the deletion sentinels and the edit marker. Content is never
// modified.
func DetectFlags(content string) Flags {
	raw := UnescapeContent(strings.TrimSpace(content))

	var f Flags
	f.IsMedia = strings.Contains(raw, MediaPlaceholder)
	f.IsEdited = strings.Contains(raw, EditedMarker)
	for _, s := range deletedSentinels {
		if raw == s {
			f.IsDeleted = true
			break
		}
	}
	return f
}

// CleanSystemNotice strips the leading timestamp prefix (newest format first,
// then legacy, then bracketed) and escapes the remainder.
func CleanSystemNotice(line string) string {
	for _, p := range noticePrefixes {
		if loc := p.FindStringIndex(line); loc != nil {
			line = line[loc[1]:]
			break
		}
	}
	return EscapeContent(line)
}

// noticeStamp recovers the date and display time from a notice's prefix.
// Either value is "" when the line has no recognizable prefix.
func noticeStamp(line string) (date, timestamp string) {
	for _, p := range noticePrefixes {
		if m := p.FindStringSubmatch(line); m != nil {
			return NormalizeDate(m[1]), NormalizeTime(m[2])
		}
	}
	return "", ""
}

var lineReplacer = strings.NewReplacer(
	"\u202f", " ",
	"\u00a0", " ",
	"\u200e", "",
	"\u200f", "",
	"\ufeff", "",
)

// SanitizeLine folds the no-break spaces newer exports place around the
// meridiem into plain spaces, drops direction and byte-order marks, and trims.
func SanitizeLine(line string) string {
	return strings.TrimSpace(lineReplacer.Replace(line))
}
