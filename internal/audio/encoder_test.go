package audio

import (
	"encoding/base64"
	"errors"
	"testing"
)

func collectSink(chunks *[]string) Sink {
	return func(chunk string) error {
		*chunks = append(*chunks, chunk)
		return nil
	}
}

func TestCaptureEncoder_EmitsFixedSizeChunks(t *testing.T) {
	var chunks []string
	enc := NewCaptureEncoder(EncoderConfig{NativeRate: TargetRate, ChunkSize: 4}, collectSink(&chunks), nil)

	enc.Push(make([]float32, 10))

	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	for i, c := range chunks {
		raw, err := base64.StdEncoding.DecodeString(c)
		if err != nil {
			t.Fatalf("chunk %d is not valid base64: %v", i, err)
		}
		if len(raw) != 4*2 {
			t.Errorf("chunk %d = %d bytes, want 8", i, len(raw))
		}
	}

	enc.Flush()
	if len(chunks) != 3 {
		t.Fatalf("chunks after flush = %d, want 3", len(chunks))
	}
	raw, _ := base64.StdEncoding.DecodeString(chunks[2])
	if len(raw) != 2*2 {
		t.Errorf("flushed chunk = %d bytes, want 4", len(raw))
	}
}

func TestCaptureEncoder_ResamplesNativeRate(t *testing.T) {
	var chunks []string
	enc := NewCaptureEncoder(EncoderConfig{NativeRate: 32000, ChunkSize: 8}, collectSink(&chunks), nil)

	enc.Push(make([]float32, 8))

	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	raw, _ := base64.StdEncoding.DecodeString(chunks[0])
	// 8 native samples at 32 kHz become 4 samples at 16 kHz.
	if len(raw) != 4*2 {
		t.Errorf("chunk = %d bytes, want 8", len(raw))
	}
}

func TestCaptureEncoder_SinkErrorIsDropped(t *testing.T) {
	calls := 0
	enc := NewCaptureEncoder(EncoderConfig{NativeRate: TargetRate, ChunkSize: 2}, func(string) error {
		calls++
		if calls == 1 {
			return errors.New("channel not open")
		}
		return nil
	}, nil)

	enc.Push(make([]float32, 2))
	enc.Push(make([]float32, 2))

	if calls != 2 {
		t.Fatalf("sink calls = %d, want 2 (encoder keeps going after a drop)", calls)
	}
}

func TestCaptureEncoder_Close(t *testing.T) {
	var chunks []string
	enc := NewCaptureEncoder(EncoderConfig{NativeRate: TargetRate, ChunkSize: 4}, collectSink(&chunks), nil)

	enc.Push(make([]float32, 3))
	enc.Close()

	if len(chunks) != 1 {
		t.Fatalf("chunks after close = %d, want 1 (partial frame flushed)", len(chunks))
	}

	enc.Push(make([]float32, 8))
	enc.Close()

	if len(chunks) != 1 {
		t.Errorf("pushes after close must be discarded, got %d chunks", len(chunks))
	}
}
