package transcript

import "time"

// Source identifies how a transcription entered the system.
type Source string

const (
	SourceManualText        Source = "manual_text"
	SourceTextFile          Source = "text_file"
	SourceMicrophone        Source = "microphone_recording"
	SourceUploadedAudio     Source = "uploaded_audio"
	SourceUploadedVideo     Source = "uploaded_video"
	SourceRealtimeRecording Source = "realtime_recording"
	SourceFinalTranscript   Source = "final_transcript_upload"
)

// Transcription is the persisted transcript for a clinical session. At most
// one row is current per session; writing a new one replaces the old row and
// its segments entirely.
type Transcription struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	SessionID         string    `gorm:"not null;index" json:"session_id"`
	Source            Source    `gorm:"not null" json:"source"`
	Transcript        string    `gorm:"type:text" json:"transcript"`
	SourceFileName    string    `json:"source_file_name,omitempty"`
	SourceContentType string    `json:"source_content_type,omitempty"`
	CreatedBy         string    `gorm:"not null" json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	Segments          []Segment `gorm:"foreignKey:TranscriptionID;constraint:OnDelete:CASCADE" json:"segments"`
}

// Segment is one diarized utterance row. Position preserves recognizer order.
type Segment struct {
	ID              uint   `gorm:"primaryKey" json:"-"`
	TranscriptionID string `gorm:"not null;index" json:"-"`
	Position        int    `gorm:"not null" json:"position"`
	SpeakerTag      string `json:"speaker_tag"`
	StartMs         int64  `json:"start_ms"`
	EndMs           int64  `json:"end_ms"`
	Text            string `gorm:"type:text" json:"text"`
}
