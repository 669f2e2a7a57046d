package audio

import (
	"encoding/base64"
	"log/slog"
	"sync"
)

// DefaultChunkSize is the number of native samples buffered before a chunk
// is emitted, matching the capture callback size of typical browser audio
// processors.
const DefaultChunkSize = 4096

// Sink receives one base64-encoded PCM16 chunk. Returning an error means the
// downstream channel is not available; the encoder drops the chunk and keeps
// going.
type Sink func(chunk string) error

type EncoderConfig struct {
	NativeRate int
	ChunkSize  int
}

// CaptureEncoder turns a live stream of mono float samples into fixed-size,
// base64-encoded 16 kHz PCM16 chunks. Chunks are independent of each other:
// each buffered frame is resampled and encoded on its own.
type CaptureEncoder struct {
	cfg  EncoderConfig
	sink Sink
	log  *slog.Logger

	mu      sync.Mutex
	pending []float32
	closed  bool
}

func NewCaptureEncoder(cfg EncoderConfig, sink Sink, log *slog.Logger) *CaptureEncoder {
	if log == nil {
		log = slog.Default()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.NativeRate <= 0 {
		cfg.NativeRate = TargetRate
	}

	return &CaptureEncoder{
		cfg:  cfg,
		sink: sink,
		log:  log.With("component", "capture_encoder"),
	}
}

// Push appends captured samples and emits every complete chunk they fill.
// Samples pushed after Close are discarded.
func (e *CaptureEncoder) Push(samples []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.pending = append(e.pending, samples...)
	for len(e.pending) >= e.cfg.ChunkSize {
		frame := e.pending[:e.cfg.ChunkSize]
		e.emit(frame)
		e.pending = e.pending[e.cfg.ChunkSize:]
	}
}

// Flush emits whatever partial frame is still buffered.
func (e *CaptureEncoder) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || len(e.pending) == 0 {
		return
	}
	e.emit(e.pending)
	e.pending = nil
}

// Close flushes the remainder and releases the buffer. Safe to call on every
// exit path; subsequent calls are no-ops.
func (e *CaptureEncoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	if len(e.pending) > 0 {
		e.emit(e.pending)
	}
	e.pending = nil
	e.closed = true
}

func (e *CaptureEncoder) emit(frame []float32) {
	pcm := Resample(frame, e.cfg.NativeRate)
	chunk := base64.StdEncoding.EncodeToString(PCMBytes(pcm))
	if err := e.sink(chunk); err != nil {
		e.log.Debug("chunk dropped, sink unavailable", "error", err)
	}
}
