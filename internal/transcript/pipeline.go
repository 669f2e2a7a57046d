package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/praxisnote/transcription/internal/shared"
	"github.com/praxisnote/transcription/internal/speech"
)

// Submission is one non-realtime artifact for a clinical session.
type Submission struct {
	SessionID   string
	FileName    string
	ContentType string
	Data        []byte
	CreatedBy   string
}

// Pipeline routes uploaded artifacts to the recognizer or directly to
// storage. Every path replaces the session's current transcription.
type Pipeline struct {
	recognizer speech.Recognizer
	store      *Store
	log        *slog.Logger
}

func NewPipeline(recognizer speech.Recognizer, store *Store, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		recognizer: recognizer,
		store:      store,
		log:        log.With("component", "file_pipeline"),
	}
}

// SubmitAudio batch-recognizes an uploaded audio file and persists the merged
// transcript.
func (p *Pipeline) SubmitAudio(ctx context.Context, sub Submission) (*Transcription, error) {
	if err := validateSubmission(sub, "audio/"); err != nil {
		return nil, err
	}

	result, err := p.recognizer.TranscribeBatch(ctx, sub.Data, sub.ContentType)
	if err != nil {
		return nil, fmt.Errorf("batch transcription: %w", err)
	}

	return p.persist(ctx, sub, SourceUploadedAudio, result)
}

// SubmitVideo batch-recognizes the audio track of an uploaded video file.
func (p *Pipeline) SubmitVideo(ctx context.Context, sub Submission) (*Transcription, error) {
	if err := validateSubmission(sub, "video/"); err != nil {
		return nil, err
	}

	result, err := p.recognizer.TranscribeVideo(ctx, sub.Data, sub.ContentType)
	if err != nil {
		return nil, fmt.Errorf("video transcription: %w", err)
	}

	return p.persist(ctx, sub, SourceUploadedVideo, result)
}

// SubmitFinalTranscript stores an already-finalized transcript file verbatim.
// No recognizer call, no merging: the file already carries the
// speaker-labeled prose.
func (p *Pipeline) SubmitFinalTranscript(ctx context.Context, sub Submission) (*Transcription, error) {
	if len(sub.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", shared.ErrUnsupportedMedia)
	}

	return p.persist(ctx, sub, SourceFinalTranscript, &speech.Result{
		Transcript: string(sub.Data),
	})
}

// SubmitManualText stores a manually typed note verbatim.
func (p *Pipeline) SubmitManualText(ctx context.Context, sessionID, text, createdBy string) (*Transcription, error) {
	sub := Submission{SessionID: sessionID, CreatedBy: createdBy}
	return p.persist(ctx, sub, SourceManualText, &speech.Result{Transcript: text})
}

func (p *Pipeline) persist(ctx context.Context, sub Submission, source Source, result *speech.Result) (*Transcription, error) {
	t := &Transcription{
		SessionID:         sub.SessionID,
		Source:            source,
		Transcript:        Merge(result.Segments, result.Transcript),
		SourceFileName:    sub.FileName,
		SourceContentType: sub.ContentType,
		CreatedBy:         sub.CreatedBy,
		Segments:          SegmentsFromResult(result.Segments),
	}

	if err := p.store.Replace(ctx, t); err != nil {
		return nil, fmt.Errorf("persist transcription: %w", err)
	}

	p.log.Info("transcription persisted",
		"session_id", sub.SessionID,
		"source", source,
		"segments", len(t.Segments))
	return t, nil
}

func validateSubmission(sub Submission, wantPrefix string) error {
	if len(sub.Data) == 0 {
		return fmt.Errorf("%w: empty file", shared.ErrUnsupportedMedia)
	}
	if !strings.HasPrefix(strings.ToLower(sub.ContentType), wantPrefix) {
		return fmt.Errorf("%w: %s", shared.ErrUnsupportedMedia, sub.ContentType)
	}
	return nil
}
