// Package analyzer computes conversation statistics over parsed transcripts.
package analyzer

// Totals are transcript-wide counts.
type Totals struct {
	Records       int `json:"records"`
	UserMessages  int `json:"user_messages"`
	SystemNotices int `json:"system_notices"`
	Media         int `json:"media"`
	Deleted       int `json:"deleted"`
	Edited        int `json:"edited"`
	MultiLine     int `json:"multi_line"`
	Outgoing      int `json:"outgoing"`
	Incoming      int `json:"incoming"`
}

// ParticipantStats summarizes one sender.
type ParticipantStats struct {
	Name      string `json:"name"`
	Messages  int    `json:"messages"`
	Words     int    `json:"words"`
	Media     int    `json:"media"`
	Deleted   int    `json:"deleted"`
	Edited    int    `json:"edited"`
	FirstDate string `json:"first_date"`
	LastDate  string `json:"last_date"`
}

// Share returns the participant's fraction of all user messages.
func (p ParticipantStats) Share(total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(p.Messages) / float64(total)
}

// DayStats counts records on one canonical date.
type DayStats struct {
	Date     string `json:"date"`
	Messages int    `json:"messages"`
	Notices  int    `json:"notices"`
}

// Result is the combined output of all collectors.
type Result struct {
	Totals Totals `json:"totals"`

	// Participants are in first-appearance order.
	Participants []ParticipantStats `json:"participants"`

	// Days are in order of first appearance in the transcript.
	Days []DayStats `json:"days"`

	// BusiestDay is the day with the most user messages, nil without any.
	BusiestDay *DayStats `json:"busiest_day,omitempty"`

	// Collectors names the collectors that ran.
	Collectors []string `json:"collectors"`
}
