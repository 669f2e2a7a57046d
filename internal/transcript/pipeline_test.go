package transcript

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/praxisnote/transcription/internal/shared"
	"github.com/praxisnote/transcription/internal/speech"
)

type fakeRecognizer struct {
	batchResult *speech.Result
	batchErr    error
	batchCalls  int
	videoCalls  int
}

func (f *fakeRecognizer) TranscribeIncremental(_ context.Context, _ []byte) (*speech.Result, error) {
	return f.batchResult, f.batchErr
}

func (f *fakeRecognizer) TranscribeBatch(_ context.Context, _ []byte, _ string) (*speech.Result, error) {
	f.batchCalls++
	return f.batchResult, f.batchErr
}

func (f *fakeRecognizer) TranscribeVideo(_ context.Context, _ []byte, _ string) (*speech.Result, error) {
	f.videoCalls++
	return f.batchResult, f.batchErr
}

func diarizedResult() *speech.Result {
	return &speech.Result{
		Transcript: "hello there hi",
		Segments: []speech.Segment{
			{SpeakerTag: "S1", Start: 0, End: time.Second, Text: "hello there"},
			{SpeakerTag: "S2", Start: time.Second, End: 2 * time.Second, Text: "hi"},
		},
	}
}

func TestPipeline_SubmitAudio(t *testing.T) {
	store := setupTestStore(t)
	rec := &fakeRecognizer{batchResult: diarizedResult()}
	p := NewPipeline(rec, store, nil)

	got, err := p.SubmitAudio(context.Background(), Submission{
		SessionID:   "ses_1",
		FileName:    "visit.mp3",
		ContentType: "audio/mpeg",
		Data:        []byte{1, 2, 3},
		CreatedBy:   "user_1",
	})
	if err != nil {
		t.Fatalf("SubmitAudio() error = %v", err)
	}

	if got.Source != SourceUploadedAudio {
		t.Errorf("source = %s, want %s", got.Source, SourceUploadedAudio)
	}
	if got.Transcript != "S1: hello there\nS2: hi" {
		t.Errorf("transcript = %q", got.Transcript)
	}
	if got.SourceFileName != "visit.mp3" || got.SourceContentType != "audio/mpeg" {
		t.Errorf("source file reference not recorded: %+v", got)
	}
	if got.CreatedBy != "user_1" {
		t.Errorf("created by = %q, want user_1", got.CreatedBy)
	}
	if rec.batchCalls != 1 {
		t.Errorf("batch calls = %d, want 1", rec.batchCalls)
	}
}

func TestPipeline_SubmitAudio_CallerErrors(t *testing.T) {
	store := setupTestStore(t)
	rec := &fakeRecognizer{batchResult: diarizedResult()}
	p := NewPipeline(rec, store, nil)

	tests := []struct {
		name string
		sub  Submission
	}{
		{"empty file", Submission{SessionID: "ses_1", ContentType: "audio/mpeg"}},
		{"wrong content type", Submission{SessionID: "ses_1", ContentType: "application/pdf", Data: []byte{1}}},
		{"video into audio path", Submission{SessionID: "ses_1", ContentType: "video/mp4", Data: []byte{1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.SubmitAudio(context.Background(), tt.sub)
			if !errors.Is(err, shared.ErrUnsupportedMedia) {
				t.Errorf("error = %v, want ErrUnsupportedMedia", err)
			}
		})
	}

	if rec.batchCalls != 0 {
		t.Errorf("recognizer called %d times for rejected submissions", rec.batchCalls)
	}
	if list, _ := store.ListBySession(context.Background(), "ses_1"); len(list) != 0 {
		t.Errorf("rejected submissions must persist nothing, found %d", len(list))
	}
}

func TestPipeline_SubmitVideo(t *testing.T) {
	store := setupTestStore(t)
	rec := &fakeRecognizer{batchResult: diarizedResult()}
	p := NewPipeline(rec, store, nil)

	got, err := p.SubmitVideo(context.Background(), Submission{
		SessionID:   "ses_1",
		FileName:    "visit.mp4",
		ContentType: "video/mp4",
		Data:        []byte{1, 2, 3},
		CreatedBy:   "user_1",
	})
	if err != nil {
		t.Fatalf("SubmitVideo() error = %v", err)
	}

	if got.Source != SourceUploadedVideo {
		t.Errorf("source = %s, want %s", got.Source, SourceUploadedVideo)
	}
	if rec.videoCalls != 1 || rec.batchCalls != 0 {
		t.Errorf("video calls = %d, batch calls = %d; want 1, 0", rec.videoCalls, rec.batchCalls)
	}
}

func TestPipeline_SubmitFinalTranscript(t *testing.T) {
	store := setupTestStore(t)
	rec := &fakeRecognizer{batchResult: diarizedResult()}
	p := NewPipeline(rec, store, nil)

	text := "Therapist: how are you?\nPatient: fine, thanks.\n"
	got, err := p.SubmitFinalTranscript(context.Background(), Submission{
		SessionID:   "ses_1",
		FileName:    "final.txt",
		ContentType: "text/plain",
		Data:        []byte(text),
		CreatedBy:   "user_1",
	})
	if err != nil {
		t.Fatalf("SubmitFinalTranscript() error = %v", err)
	}

	if got.Transcript != text {
		t.Errorf("transcript must be stored verbatim, got %q", got.Transcript)
	}
	if len(got.Segments) != 0 {
		t.Errorf("segments = %d, want 0", len(got.Segments))
	}
	if got.Source != SourceFinalTranscript {
		t.Errorf("source = %s, want %s", got.Source, SourceFinalTranscript)
	}
	if rec.batchCalls != 0 || rec.videoCalls != 0 {
		t.Error("final transcript uploads must not be reprocessed")
	}
}

func TestPipeline_SubmitManualText(t *testing.T) {
	store := setupTestStore(t)
	p := NewPipeline(&fakeRecognizer{}, store, nil)

	got, err := p.SubmitManualText(context.Background(), "ses_1", "typed note", "user_1")
	if err != nil {
		t.Fatalf("SubmitManualText() error = %v", err)
	}
	if got.Source != SourceManualText || got.Transcript != "typed note" {
		t.Errorf("got %s %q", got.Source, got.Transcript)
	}
}

func TestPipeline_SecondSubmissionReplaces(t *testing.T) {
	store := setupTestStore(t)
	rec := &fakeRecognizer{batchResult: diarizedResult()}
	p := NewPipeline(rec, store, nil)
	ctx := context.Background()

	if _, err := p.SubmitAudio(ctx, Submission{
		SessionID: "ses_1", ContentType: "audio/wav", Data: []byte{1}, CreatedBy: "user_1",
	}); err != nil {
		t.Fatalf("first submission error = %v", err)
	}

	second, err := p.SubmitFinalTranscript(ctx, Submission{
		SessionID: "ses_1", ContentType: "text/plain", Data: []byte("final"), CreatedBy: "user_2",
	})
	if err != nil {
		t.Fatalf("second submission error = %v", err)
	}

	list, err := store.ListBySession(ctx, "ses_1")
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("transcriptions = %d, want exactly 1", len(list))
	}
	if list[0].ID != second.ID {
		t.Error("the replacement should be the current transcription")
	}
}

func TestPipeline_ProviderFailureNothingPersisted(t *testing.T) {
	store := setupTestStore(t)
	rec := &fakeRecognizer{batchErr: errors.New("provider down")}
	p := NewPipeline(rec, store, nil)

	_, err := p.SubmitAudio(context.Background(), Submission{
		SessionID: "ses_1", ContentType: "audio/wav", Data: []byte{1}, CreatedBy: "user_1",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if list, _ := store.ListBySession(context.Background(), "ses_1"); len(list) != 0 {
		t.Errorf("failed submission must persist nothing, found %d", len(list))
	}
}
