package transcript

import (
	"strings"

	"github.com/praxisnote/transcription/internal/speech"
)

// Merge collapses a diarized segment list into a display transcript. Segments
// arrive ordered by start offset and are walked in a single pass: a new
// "tag: text" line starts whenever the speaker changes, otherwise the text is
// appended to the current line with a single space. Two separated turns by
// the same speaker stay two separate lines. An empty segment list returns
// fallback verbatim.
func Merge(segments []speech.Segment, fallback string) string {
	if len(segments) == 0 {
		return fallback
	}

	var b strings.Builder
	prevTag := ""
	for i, seg := range segments {
		if i == 0 || seg.SpeakerTag != prevTag {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(seg.SpeakerTag)
			b.WriteString(": ")
			b.WriteString(seg.Text)
		} else {
			b.WriteByte(' ')
			b.WriteString(seg.Text)
		}
		prevTag = seg.SpeakerTag
	}
	return b.String()
}

// SegmentsFromResult converts recognizer segments to persistable rows,
// keeping the recognizer's order.
func SegmentsFromResult(segments []speech.Segment) []Segment {
	if len(segments) == 0 {
		return nil
	}

	rows := make([]Segment, len(segments))
	for i, s := range segments {
		rows[i] = Segment{
			Position:   i,
			SpeakerTag: s.SpeakerTag,
			StartMs:    s.Start.Milliseconds(),
			EndMs:      s.End.Milliseconds(),
			Text:       s.Text,
		}
	}
	return rows
}
