package transcript

import (
	"context"
	"errors"
	"testing"

	"github.com/praxisnote/transcription/internal/shared"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	store := NewStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return store
}

func sampleTranscription(sessionID string) *Transcription {
	return &Transcription{
		SessionID:  sessionID,
		Source:     SourceUploadedAudio,
		Transcript: "S1: hello\nS2: hi",
		CreatedBy:  "user_1",
		Segments: []Segment{
			{SpeakerTag: "S1", StartMs: 0, EndMs: 1000, Text: "hello"},
			{SpeakerTag: "S2", StartMs: 1000, EndMs: 2000, Text: "hi"},
		},
	}
}

func TestStore_Replace_Creates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tr := sampleTranscription("ses_1")
	if err := store.Replace(ctx, tr); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if tr.ID == "" {
		t.Error("transcription ID should be generated")
	}

	got, err := store.Current(ctx, "ses_1")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if got.Transcript != tr.Transcript {
		t.Errorf("transcript = %q, want %q", got.Transcript, tr.Transcript)
	}
	if len(got.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(got.Segments))
	}
	if got.Segments[0].Position != 0 || got.Segments[1].Position != 1 {
		t.Error("segment positions should follow recognizer order")
	}
}

func TestStore_Replace_ReplacesExisting(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := sampleTranscription("ses_1")
	if err := store.Replace(ctx, first); err != nil {
		t.Fatalf("first Replace() error = %v", err)
	}

	second := &Transcription{
		SessionID:  "ses_1",
		Source:     SourceFinalTranscript,
		Transcript: "already final",
		CreatedBy:  "user_2",
	}
	if err := store.Replace(ctx, second); err != nil {
		t.Fatalf("second Replace() error = %v", err)
	}

	list, err := store.ListBySession(ctx, "ses_1")
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("transcriptions = %d, want exactly 1 current", len(list))
	}
	if list[0].ID != second.ID || list[0].Source != SourceFinalTranscript {
		t.Errorf("current = %s/%s, want the replacement", list[0].ID, list[0].Source)
	}

	// The old transcription's segments must be gone, not orphaned.
	var orphans int64
	store.db.Model(&Segment{}).Where("transcription_id = ?", first.ID).Count(&orphans)
	if orphans != 0 {
		t.Errorf("orphaned segments = %d, want 0", orphans)
	}

	var total int64
	store.db.Model(&Segment{}).Count(&total)
	if total != 0 {
		t.Errorf("total segments = %d, want 0 (replacement had none)", total)
	}
}

func TestStore_Replace_IsolatesSessions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a := sampleTranscription("ses_a")
	b := sampleTranscription("ses_b")
	if err := store.Replace(ctx, a); err != nil {
		t.Fatalf("Replace(a) error = %v", err)
	}
	if err := store.Replace(ctx, b); err != nil {
		t.Fatalf("Replace(b) error = %v", err)
	}

	gotA, err := store.Current(ctx, "ses_a")
	if err != nil {
		t.Fatalf("Current(ses_a) error = %v", err)
	}
	if gotA.ID != a.ID {
		t.Error("replacing ses_b must not touch ses_a")
	}
}

func TestStore_Current_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Current(context.Background(), "ses_missing")
	if !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("Current() error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListBySession_Empty(t *testing.T) {
	store := setupTestStore(t)

	list, err := store.ListBySession(context.Background(), "ses_missing")
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("list = %d entries, want 0", len(list))
	}
}
