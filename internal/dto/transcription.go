package dto

import "time"

type SegmentResponse struct {
	SpeakerTag string `json:"speaker_tag" example:"1"`
	StartMs    int64  `json:"start_ms" example:"0"`
	EndMs      int64  `json:"end_ms" example:"3000"`
	Text       string `json:"text" example:"Hello there"`
}

type TranscriptionResponse struct {
	ID                string            `json:"id" example:"tr_abc123"`
	SessionID         string            `json:"session_id" example:"ses_xyz789"`
	Source            string            `json:"source" example:"uploaded_audio"`
	Transcript        string            `json:"transcript"`
	SourceFileName    string            `json:"source_file_name,omitempty" example:"visit.mp3"`
	SourceContentType string            `json:"source_content_type,omitempty" example:"audio/mpeg"`
	CreatedBy         string            `json:"created_by" example:"user_42"`
	CreatedAt         time.Time         `json:"created_at"`
	Segments          []SegmentResponse `json:"segments"`
}

type TranscriptionListResponse struct {
	SessionID      string                  `json:"session_id" example:"ses_xyz789"`
	Transcriptions []TranscriptionResponse `json:"transcriptions"`
}

type ManualTextRequest struct {
	Text string `json:"text"`
}
