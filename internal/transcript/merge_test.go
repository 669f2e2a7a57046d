package transcript

import (
	"testing"
	"time"

	"github.com/praxisnote/transcription/internal/speech"
)

func seg(tag string, startSec, endSec int, text string) speech.Segment {
	return speech.Segment{
		SpeakerTag: tag,
		Start:      time.Duration(startSec) * time.Second,
		End:        time.Duration(endSec) * time.Second,
		Text:       text,
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		segments []speech.Segment
		fallback string
		want     string
	}{
		{
			name:     "empty segments return fallback verbatim",
			segments: nil,
			fallback: "plain transcript",
			want:     "plain transcript",
		},
		{
			name:     "empty segments with empty fallback",
			segments: []speech.Segment{},
			fallback: "",
			want:     "",
		},
		{
			name:     "single segment",
			segments: []speech.Segment{seg("S1", 0, 3, "Hello")},
			fallback: "ignored",
			want:     "S1: Hello",
		},
		{
			name: "consecutive same speaker joined with a space",
			segments: []speech.Segment{
				seg("S1", 0, 3, "Hello"),
				seg("S1", 3, 5, "there"),
			},
			want: "S1: Hello there",
		},
		{
			name: "alternating speakers stay separate lines",
			segments: []speech.Segment{
				seg("S1", 0, 3, "Cześć"),
				seg("S1", 3, 5, "jak się masz"),
				seg("S2", 5, 8, "W porządku"),
				seg("S1", 8, 11, "Świetnie to słyszeć"),
				seg("S2", 11, 15, "Do zobaczenia jutro"),
			},
			want: "S1: Cześć jak się masz\nS2: W porządku\nS1: Świetnie to słyszeć\nS2: Do zobaczenia jutro",
		},
		{
			name: "same speaker turns separated by another are not coalesced",
			segments: []speech.Segment{
				seg("S1", 0, 1, "one"),
				seg("S2", 1, 2, "two"),
				seg("S1", 2, 3, "three"),
			},
			want: "S1: one\nS2: two\nS1: three",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Merge(tt.segments, tt.fallback); got != tt.want {
				t.Errorf("Merge() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMerge_IdempotentOnMergedOutput(t *testing.T) {
	segments := []speech.Segment{
		seg("S1", 0, 3, "Cześć"),
		seg("S1", 3, 5, "jak się masz"),
	}

	merged := Merge(segments, "")
	if merged != "S1: Cześć jak się masz" {
		t.Fatalf("merged = %q", merged)
	}

	// A single-speaker, single-segment list carrying the already-joined text
	// merges to the same string.
	remerged := Merge([]speech.Segment{seg("S1", 0, 5, "Cześć jak się masz")}, "")
	if remerged != merged {
		t.Errorf("remerged = %q, want %q", remerged, merged)
	}
}

func TestSegmentsFromResult(t *testing.T) {
	segments := []speech.Segment{
		seg("S2", 1, 2, "b"),
		seg("S1", 0, 1, "a"),
	}

	rows := SegmentsFromResult(segments)

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	// Recognizer order is preserved, never re-sorted.
	if rows[0].SpeakerTag != "S2" || rows[0].Position != 0 {
		t.Errorf("row 0 = %+v, want S2 at position 0", rows[0])
	}
	if rows[1].SpeakerTag != "S1" || rows[1].Position != 1 {
		t.Errorf("row 1 = %+v, want S1 at position 1", rows[1])
	}
	if rows[0].StartMs != 1000 || rows[0].EndMs != 2000 {
		t.Errorf("row 0 offsets = %d-%d, want 1000-2000", rows[0].StartMs, rows[0].EndMs)
	}

	if rows := SegmentsFromResult(nil); rows != nil {
		t.Errorf("nil segments should produce nil rows, got %v", rows)
	}
}
