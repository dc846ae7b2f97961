package parser

// Relabel returns a copy of t with Outgoing recomputed on every user message:
// true exactly when the sender equals self. An empty self marks every message
// incoming. t is not modified.
func Relabel(t *Transcript, self string) *Transcript {
	if t == nil {
		return nil
	}

	records := make([]Record, len(t.Records))
	for i, r := range t.Records {
		switch v := r.(type) {
		case *UserMessage:
			m := *v
			m.Outgoing = self != "" && m.Sender == self
			records[i] = &m
		case *SystemNotice:
			n := *v
			records[i] = &n
		default:
			records[i] = r
		}
	}

	out := *t
	out.Records = records
	out.Participants = Participants(records)
	if t.Stats != nil {
		stats := *t.Stats
		out.Stats = &stats
	}
	return &out
}

// Outgoing counts user messages marked outgoing.
func (t *Transcript) Outgoing() int {
	n := 0
	for _, r := range t.Records {
		if m, ok := r.(*UserMessage); ok && m.Outgoing {
			n++
		}
	}
	return n
}
