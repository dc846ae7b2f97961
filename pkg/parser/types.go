// Package parser turns exported chat-log text into an ordered transcript.
package parser

import "encoding/json"

// RecordType discriminates the two kinds of transcript records.
type RecordType string

const (
	RecordTypeUser   RecordType = "user"
	RecordTypeSystem RecordType = "system"
)

// Record is a single transcript entry: either a *UserMessage or a *SystemNotice.
type Record interface {
	// Type returns the record discriminator.
	Type() RecordType

	// Day returns the canonical date of the record, or "" when unknown.
	Day() string
}

// UserMessage is a message authored by a participant.
type UserMessage struct {
	// Date is the canonical month/day/yyyy date.
	Date string `json:"date"`

	// Time is the display time exactly as authored (12h or 24h).
	Time string `json:"time"`

	// Sender is the participant display name.
	Sender string `json:"sender"`

	// Content is the escaped message body. Continuation lines are joined with "\n".
	Content string `json:"content"`

	IsMedia   bool `json:"is_media"`
	IsDeleted bool `json:"is_deleted"`
	IsEdited  bool `json:"is_edited"`

	// Outgoing is only ever set by Relabel.
	Outgoing bool `json:"outgoing"`
}

// Type implements Record.
func (m *UserMessage) Type() RecordType { return RecordTypeUser }

// Day implements Record.
func (m *UserMessage) Day() string { return m.Date }

// MarshalJSON adds the record discriminator.
func (m *UserMessage) MarshalJSON() ([]byte, error) {
	type alias UserMessage
	return json.Marshal(struct {
		Type RecordType `json:"type"`
		*alias
	}{RecordTypeUser, (*alias)(m)})
}

// SystemNotice is a chat-state event such as a membership change or call.
type SystemNotice struct {
	// Date is the canonical date, or "" when the line carried none.
	Date string `json:"date,omitempty"`

	// Timestamp is the display time, or "" when the line carried none.
	Timestamp string `json:"timestamp,omitempty"`

	// Content is the escaped notice text with the timestamp prefix removed.
	Content string `json:"content"`
}

// Type implements Record.
func (n *SystemNotice) Type() RecordType { return RecordTypeSystem }

// Day implements Record.
func (n *SystemNotice) Day() string { return n.Date }

// MarshalJSON adds the record discriminator.
func (n *SystemNotice) MarshalJSON() ([]byte, error) {
	type alias SystemNotice
	return json.Marshal(struct {
		Type RecordType `json:"type"`
		*alias
	}{RecordTypeSystem, (*alias)(n)})
}

// Transcript is the result of one parse.
type Transcript struct {
	// Source names the input (file path or caller-supplied label).
	Source string `json:"source"`

	// Records are in file order. They are never re-sorted.
	Records []Record `json:"records"`

	// Participants are the distinct senders in first-appearance order.
	Participants []string `json:"participants"`

	// Stats describes the pass that produced the transcript. It is nil for
	// transcripts that were not parsed in this process (loaded from a store).
	Stats *Stats `json:"stats,omitempty"`
}

// Stats counts non-blank input lines by classification.
type Stats struct {
	Lines         int `json:"lines"`
	Continuations int `json:"continuations"`
	Discarded     int `json:"discarded"`
}

// UserMessages returns the number of user messages in the transcript.
func (t *Transcript) UserMessages() int {
	n := 0
	for _, r := range t.Records {
		if r.Type() == RecordTypeUser {
			n++
		}
	}
	return n
}

// SystemNotices returns the number of system notices in the transcript.
func (t *Transcript) SystemNotices() int {
	return len(t.Records) - t.UserMessages()
}

// Participants derives the participant set from records: distinct senders of
// user messages in first-appearance order.
func Participants(records []Record) []string {
	seen := make(map[string]bool)
	result := []string{}
	for _, r := range records {
		m, ok := r.(*UserMessage)
		if !ok || seen[m.Sender] {
			continue
		}
		seen[m.Sender] = true
		result = append(result, m.Sender)
	}
	return result
}
