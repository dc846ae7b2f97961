package parser

// session is the state of one parse: the records emitted so far, the
// participant set and the last record. It is owned by a single Parse call and
// handed out only as a finished Transcript.
type session struct {
	classifier   *Classifier
	records      []Record
	participants []string
	seen         map[string]struct{}
	last         Record
}

func newSession(c *Classifier) *session {
	return &session{
		classifier:   c,
		participants: []string{},
		seen:         make(map[string]struct{}),
	}
}

// feed classifies one sanitized, non-blank line and applies it.
func (s *session) feed(line string) LineClass {
	class, f := s.classifier.Classify(line, s.last)
	switch class {
	case ClassUserMessage:
		s.addMessage(f)
	case ClassSystemNotice:
		s.addNotice(line)
	case ClassContinuation:
		s.extend(line)
	}
	return class
}

func (s *session) addMessage(f Fields) {
	content := EscapeContent(f.Content)
	flags := DetectFlags(content)
	m := &UserMessage{
		Date:      NormalizeDate(f.Date),
		Time:      NormalizeTime(f.Time),
		Sender:    f.Sender,
		Content:   content,
		IsMedia:   flags.IsMedia,
		IsDeleted: flags.IsDeleted,
		IsEdited:  flags.IsEdited,
	}
	s.append(m)

	if _, ok := s.seen[m.Sender]; !ok {
		s.seen[m.Sender] = struct{}{}
		s.participants = append(s.participants, m.Sender)
	}
}

func (s *session) addNotice(line string) {
	date, ts := noticeStamp(line)
	s.append(&SystemNotice{
		Date:      date,
		Timestamp: ts,
		Content:   CleanSystemNotice(line),
	})
}

// extend merges a continuation line into the last user message. The
// classifier only yields ClassContinuation when one exists.
func (s *session) extend(line string) {
	m, ok := s.last.(*UserMessage)
	if !ok {
		return
	}
	content := EscapeContent(line)
	m.Content += "\n" + content

	flags := DetectFlags(content)
	m.IsMedia = m.IsMedia || flags.IsMedia
	m.IsEdited = m.IsEdited || flags.IsEdited
}

func (s *session) append(r Record) {
	s.records = append(s.records, r)
	s.last = r
}

func (s *session) transcript(source string) *Transcript {
	records := s.records
	if records == nil {
		records = []Record{}
	}
	return &Transcript{
		Source:       source,
		Records:      records,
		Participants: s.participants,
	}
}
