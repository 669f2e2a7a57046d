package speech

import "time"

// Segment is one diarized utterance span. Immutable once produced; the
// recognizer returns segments ordered by Start non-decreasing.
type Segment struct {
	SpeakerTag string
	Start      time.Duration
	End        time.Duration
	Text       string
}

// Result is the recognizer output for one pass. Transcript is the plain-text
// fallback used when no segments are available.
type Result struct {
	Transcript string
	Segments   []Segment
}

// Empty reports whether the pass produced neither text nor segments, which is
// the valid outcome for silent audio.
func (r *Result) Empty() bool {
	return r == nil || (r.Transcript == "" && len(r.Segments) == 0)
}

type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxSpeakers int
	Language    string
}
