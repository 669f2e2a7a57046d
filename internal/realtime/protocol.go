package realtime

import "github.com/praxisnote/transcription/internal/speech"

// Client to server message types.
const (
	MessageTypeStart = "start"
	MessageTypeChunk = "chunk"
	MessageTypeStop  = "stop"
)

// Server to client message types.
const (
	MessageTypeUpdate    = "update"
	MessageTypeStatus    = "status"
	MessageTypePersisted = "persisted"
)

type Status string

const (
	StatusConnecting Status = "connecting"
	StatusRecording  Status = "recording"
	StatusStopping   Status = "stopping"
	StatusError      Status = "error"
	StatusStopped    Status = "stopped"
)

type ClientMessage struct {
	Type string `json:"type"`
	// Audio carries one base64-encoded 16 kHz PCM16 chunk for "chunk"
	// messages.
	Audio string `json:"audio,omitempty"`
}

type SegmentPayload struct {
	SpeakerTag string `json:"speaker_tag"`
	StartMs    int64  `json:"start_ms"`
	EndMs      int64  `json:"end_ms"`
	Text       string `json:"text"`
}

type ServerMessage struct {
	Type       string           `json:"type"`
	Transcript string           `json:"transcript,omitempty"`
	Segments   []SegmentPayload `json:"segments,omitempty"`
	Status     Status           `json:"status,omitempty"`
	Message    string           `json:"message,omitempty"`
}

func updateMessage(result *speech.Result) *ServerMessage {
	msg := &ServerMessage{
		Type:       MessageTypeUpdate,
		Transcript: result.Transcript,
	}
	for _, s := range result.Segments {
		msg.Segments = append(msg.Segments, SegmentPayload{
			SpeakerTag: s.SpeakerTag,
			StartMs:    s.Start.Milliseconds(),
			EndMs:      s.End.Milliseconds(),
			Text:       s.Text,
		})
	}
	return msg
}

func statusMessage(status Status, message string) *ServerMessage {
	return &ServerMessage{Type: MessageTypeStatus, Status: status, Message: message}
}
