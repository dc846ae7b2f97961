// Package palette assigns stable display colours to chat participants.
package palette

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Default is the built-in colour cycle.
var Default = []string{
	"#e91e63", "#9c27b0", "#673ab7", "#3f51b5", "#2196f3",
	"#03a9f4", "#00bcd4", "#009688", "#4caf50", "#8bc34a",
	"#cddc39", "#ffc107", "#ff9800", "#ff5722", "#795548",
}

// Assign maps each participant to colors[i % len(colors)], where i is the
// participant's first-seen position. The same participant order always yields
// the same assignment. An empty palette falls back to Default.
func Assign(participants []string, colors []string) map[string]string {
	if len(colors) == 0 {
		colors = Default
	}

	result := make(map[string]string, len(participants))
	next := 0
	for _, p := range participants {
		if _, ok := result[p]; ok {
			continue
		}
		result[p] = colors[next%len(colors)]
		next++
	}
	return result
}

// Initials returns up to two upper-case initials of a display name.
func Initials(name string) string {
	var b strings.Builder
	n := 0
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		if n++; n == 2 {
			break
		}
	}
	return b.String()
}

// Sorted returns the participants in alphabetical order for listings. The
// input is left in first-seen order.
func Sorted(participants []string) []string {
	out := append([]string(nil), participants...)
	sort.Strings(out)
	return out
}
