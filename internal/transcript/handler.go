package transcript

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/praxisnote/transcription/internal/dto"
	"github.com/praxisnote/transcription/internal/shared"
	"github.com/praxisnote/transcription/internal/speech"
)

// SourceType is the upload discriminator carried in the multipart form.
const (
	sourceTypeAudio           = "AudioFile"
	sourceTypeVideo           = "VideoFile"
	sourceTypeFinalTranscript = "FinalTranscriptUpload"
)

const maxUploadBytes = 512 << 20

type Handler struct {
	pipeline *Pipeline
	store    *Store
	logger   *slog.Logger
}

func NewHandler(pipeline *Pipeline, store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		store:    store,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/sessions/:id/transcriptions", h.Submit)
	g.POST("/sessions/:id/transcriptions/text", h.SubmitText)
	g.GET("/sessions/:id/transcriptions", h.List)
	g.GET("/sessions/:id/transcriptions/current", h.Current)
}

func (h *Handler) Submit(c echo.Context) error {
	sessionID := c.Param("id")
	userID, err := shared.RequireUser(c)
	if err != nil {
		return err
	}

	sourceType := c.FormValue("sourceType")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return shared.BadRequest("missing_file", "file part is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return shared.BadRequest("file_too_large", "uploaded file exceeds the size limit")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return shared.BadRequest("unreadable_file", "uploaded file could not be read")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return shared.BadRequest("unreadable_file", "uploaded file could not be read")
	}

	sub := Submission{
		SessionID:   sessionID,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
		CreatedBy:   userID,
	}

	ctx := c.Request().Context()
	var t *Transcription
	switch sourceType {
	case sourceTypeAudio:
		t, err = h.pipeline.SubmitAudio(ctx, sub)
	case sourceTypeVideo:
		t, err = h.pipeline.SubmitVideo(ctx, sub)
	case sourceTypeFinalTranscript:
		t, err = h.pipeline.SubmitFinalTranscript(ctx, sub)
	default:
		return shared.BadRequest("invalid_source_type", "sourceType must be AudioFile, VideoFile or FinalTranscriptUpload")
	}

	if err != nil {
		return h.submissionError(c, sessionID, sourceType, err)
	}

	return c.JSON(http.StatusCreated, toResponse(t))
}

func (h *Handler) SubmitText(c echo.Context) error {
	sessionID := c.Param("id")
	userID, err := shared.RequireUser(c)
	if err != nil {
		return err
	}

	var req dto.ManualTextRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "request body must be JSON with a text field")
	}
	if req.Text == "" {
		return shared.BadRequest("empty_text", "text must not be empty")
	}

	t, err := h.pipeline.SubmitManualText(c.Request().Context(), sessionID, req.Text, userID)
	if err != nil {
		h.logger.Error("manual text submission failed", "error", err, "session_id", sessionID)
		return shared.InternalError("submission_failed", "failed to store transcription")
	}

	return c.JSON(http.StatusCreated, toResponse(t))
}

func (h *Handler) List(c echo.Context) error {
	sessionID := c.Param("id")
	if _, err := shared.RequireUser(c); err != nil {
		return err
	}

	list, err := h.store.ListBySession(c.Request().Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to list transcriptions", "error", err, "session_id", sessionID)
		return shared.InternalError("list_failed", "failed to list transcriptions")
	}

	resp := dto.TranscriptionListResponse{
		SessionID:      sessionID,
		Transcriptions: make([]dto.TranscriptionResponse, len(list)),
	}
	for i, t := range list {
		resp.Transcriptions[i] = toResponse(t)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Current(c echo.Context) error {
	sessionID := c.Param("id")
	if _, err := shared.RequireUser(c); err != nil {
		return err
	}

	t, err := h.store.Current(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("no_transcription", "session has no transcription")
		}
		h.logger.Error("failed to load current transcription", "error", err, "session_id", sessionID)
		return shared.InternalError("get_failed", "failed to load transcription")
	}

	return c.JSON(http.StatusOK, toResponse(t))
}

func (h *Handler) submissionError(c echo.Context, sessionID, sourceType string, err error) error {
	switch {
	case errors.Is(err, shared.ErrUnsupportedMedia), errors.Is(err, speech.ErrUnsupportedContentType):
		return shared.UnsupportedMedia("unsupported_content_type", "the uploaded file type is not supported")
	case errors.Is(err, speech.ErrRateLimited):
		return shared.NewAPIError("provider_busy", "transcription provider is busy, try again").ToHTTP(http.StatusServiceUnavailable)
	default:
		h.logger.Error("submission failed", "error", err, "session_id", sessionID, "source_type", sourceType)
		return shared.InternalError("submission_failed", "failed to transcribe the uploaded file")
	}
}

func toResponse(t *Transcription) dto.TranscriptionResponse {
	segments := make([]dto.SegmentResponse, len(t.Segments))
	for i, s := range t.Segments {
		segments[i] = dto.SegmentResponse{
			SpeakerTag: s.SpeakerTag,
			StartMs:    s.StartMs,
			EndMs:      s.EndMs,
			Text:       s.Text,
		}
	}

	return dto.TranscriptionResponse{
		ID:                t.ID,
		SessionID:         t.SessionID,
		Source:            string(t.Source),
		Transcript:        t.Transcript,
		SourceFileName:    t.SourceFileName,
		SourceContentType: t.SourceContentType,
		CreatedBy:         t.CreatedBy,
		CreatedAt:         t.CreatedAt,
		Segments:          segments,
	}
}
