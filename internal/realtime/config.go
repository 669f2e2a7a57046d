package realtime

import "time"

// Config tunes the realtime session manager. The incremental recognition
// cadence is a performance knob, not a correctness property.
type Config struct {
	// RecognitionInterval is how often the streaming recognizer is invoked
	// against the buffer-so-far.
	RecognitionInterval time.Duration

	// MinBytesPerPass skips an incremental pass until at least this much new
	// audio arrived since the previous one.
	MinBytesPerPass int

	// FinalizeTimeout bounds the final batch recognition and the persist
	// write. Finalization runs on its own deadline because the connection
	// that triggered it may already be gone.
	FinalizeTimeout time.Duration

	// MailboxSize is the per-session command buffer. Appends beyond it block
	// until the in-flight recognition step finishes.
	MailboxSize int
}

func (c Config) withDefaults() Config {
	if c.RecognitionInterval <= 0 {
		c.RecognitionInterval = 3 * time.Second
	}
	if c.MinBytesPerPass <= 0 {
		c.MinBytesPerPass = 8192
	}
	if c.FinalizeTimeout <= 0 {
		c.FinalizeTimeout = 90 * time.Second
	}
	if c.MailboxSize <= 0 {
		c.MailboxSize = 256
	}
	return c
}
