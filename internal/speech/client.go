package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

var (
	ErrRateLimited            = errors.New("speech: provider rate limited")
	ErrUnsupportedContentType = errors.New("speech: unsupported content type")
)

const (
	defaultTimeout     = 60 * time.Second
	defaultMaxSpeakers = 3

	pcmContentType = "audio/l16;rate=16000"
)

// Client talks to the speech provider over HTTP. All provider response
// variability is absorbed here: handlers and the session manager only ever
// see Result and Segment.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	maxSpeakers int
	language    string
	log         *slog.Logger
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxSpeakers := cfg.MaxSpeakers
	if maxSpeakers <= 0 {
		maxSpeakers = defaultMaxSpeakers
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		maxSpeakers: maxSpeakers,
		language:    cfg.Language,
		log:         log.With("component", "speech_client"),
	}
}

type recognizeRequest struct {
	Audio       string `json:"audio"`
	ContentType string `json:"contentType"`
	Language    string `json:"language,omitempty"`
	Diarization struct {
		Enabled     bool `json:"enabled"`
		MaxSpeakers int  `json:"maxSpeakers"`
	} `json:"diarization"`
	Partial bool `json:"partial"`
}

// wireResponse is the single decode point for provider payloads. Go's JSON
// decoder matches field names case-insensitively, so "speakerTag" and
// "SpeakerTag" both land in the same field; no casing variability leaks past
// this type.
type wireResponse struct {
	Transcript string        `json:"transcript"`
	Segments   []wireSegment `json:"segments"`
}

type wireSegment struct {
	SpeakerTag string `json:"speakerTag"`
	StartMs    int64  `json:"startMs"`
	EndMs      int64  `json:"endMs"`
	Text       string `json:"text"`
}

func (c *Client) TranscribeIncremental(ctx context.Context, pcm []byte) (*Result, error) {
	return c.recognize(ctx, "/v1/recognize", pcm, pcmContentType, true)
}

func (c *Client) TranscribeBatch(ctx context.Context, data []byte, contentType string) (*Result, error) {
	return c.recognize(ctx, "/v1/recognize", data, contentType, false)
}

func (c *Client) TranscribeVideo(ctx context.Context, data []byte, contentType string) (*Result, error) {
	return c.recognize(ctx, "/v1/recognize/video", data, contentType, false)
}

func (c *Client) recognize(ctx context.Context, path string, data []byte, contentType string, partial bool) (*Result, error) {
	req := recognizeRequest{
		Audio:       base64.StdEncoding.EncodeToString(data),
		ContentType: contentType,
		Language:    c.language,
		Partial:     partial,
	}
	req.Diarization.Enabled = true
	req.Diarization.MaxSpeakers = c.maxSpeakers

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusUnsupportedMediaType, http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	default:
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return wire.toResult(), nil
}

func (w *wireResponse) toResult() *Result {
	result := &Result{Transcript: w.Transcript}
	if len(w.Segments) == 0 {
		return result
	}

	result.Segments = make([]Segment, len(w.Segments))
	for i, s := range w.Segments {
		result.Segments[i] = Segment{
			SpeakerTag: s.SpeakerTag,
			Start:      time.Duration(s.StartMs) * time.Millisecond,
			End:        time.Duration(s.EndMs) * time.Millisecond,
			Text:       s.Text,
		}
	}
	return result
}
