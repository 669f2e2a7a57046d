package speech

import "context"

type Recognizer interface {
	// TranscribeIncremental recognizes a still-growing PCM16 buffer. Safe to
	// call repeatedly with more audio appended.
	TranscribeIncremental(ctx context.Context, pcm []byte) (*Result, error)

	// TranscribeBatch recognizes a complete audio artifact.
	TranscribeBatch(ctx context.Context, data []byte, contentType string) (*Result, error)

	// TranscribeVideo recognizes the audio track of a complete video artifact.
	TranscribeVideo(ctx context.Context, data []byte, contentType string) (*Result, error)
}
