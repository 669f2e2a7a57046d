package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/praxisnote/transcription/internal/speech"
	"github.com/praxisnote/transcription/internal/transcript"
)

type State string

const (
	StateInitializing State = "initializing"
	StateStreaming    State = "streaming"
	StateFinalizing   State = "finalizing"
	StatePersisted    State = "persisted"
	StateError        State = "error"
)

// Notifier pushes incremental results and lifecycle signals back to the
// connection that owns the session.
type Notifier interface {
	SendUpdate(result *speech.Result)
	SendStatus(status Status, message string)
	SendPersisted()
}

// Store is the persistence sink. Replace must atomically swap the session's
// current transcription.
type Store interface {
	Replace(ctx context.Context, t *transcript.Transcription) error
}

type msgKind int

const (
	msgAppend msgKind = iota
	msgStop
)

type message struct {
	kind msgKind
	data []byte
}

// Session owns one realtime transcription attempt. All mutable state (the
// audio buffer, the provisional result) belongs to the run goroutine;
// AppendAudio and Stop are messages into it, so buffer mutation is race-free
// and at most one recognition step is in flight at a time.
type Session struct {
	sessionID string
	connID    string
	userID    string

	cfg        Config
	recognizer speech.Recognizer
	store      Store
	arbiter    SlotArbiter
	notifier   Notifier
	log        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	msgs   chan message
	done   chan struct{}

	stateMu sync.RWMutex
	state   State

	// owned by run
	buffer        []byte
	lastResult    *speech.Result
	lastCoverage  int
	sinceLastPass int
}

type SessionParams struct {
	SessionID  string
	ConnID     string
	UserID     string
	Config     Config
	Recognizer speech.Recognizer
	Store      Store
	Arbiter    SlotArbiter
	Notifier   Notifier
	Logger     *slog.Logger
}

// newSession claims the session's recording slot and starts the run loop.
// A conflicting live recording surfaces as shared.ErrConflict before any
// state is created, so the caller's connection can stay open for a retry.
func newSession(ctx context.Context, p SessionParams) (*Session, error) {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}

	if err := p.Arbiter.Acquire(ctx, p.SessionID, p.ConnID); err != nil {
		return nil, err
	}

	cfg := p.Config.withDefaults()
	runCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		sessionID:  p.SessionID,
		connID:     p.ConnID,
		userID:     p.UserID,
		cfg:        cfg,
		recognizer: p.Recognizer,
		store:      p.Store,
		arbiter:    p.Arbiter,
		notifier:   p.Notifier,
		log:        p.Logger.With("session_id", p.SessionID, "conn_id", p.ConnID),
		ctx:        runCtx,
		cancel:     cancel,
		msgs:       make(chan message, cfg.MailboxSize),
		state:      StateStreaming,
		done:       make(chan struct{}),
	}

	go s.run()
	return s, nil
}

func (s *Session) SessionID() string { return s.sessionID }
func (s *Session) ConnID() string    { return s.connID }

func (s *Session) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

// Done is closed once the session reached a terminal state and released its
// resources.
func (s *Session) Done() <-chan struct{} { return s.done }

// AppendAudio hands one PCM16 chunk to the session. A call whose context is
// already cancelled is silently dropped: a cancelled append is not a fault
// and must not corrupt the buffer for later valid calls.
func (s *Session) AppendAudio(ctx context.Context, chunk []byte) error {
	if ctx.Err() != nil {
		return nil
	}
	if len(chunk) == 0 {
		return nil
	}

	data := make([]byte, len(chunk))
	copy(data, chunk)

	select {
	case s.msgs <- message{kind: msgAppend, data: data}:
	case <-s.done:
	case <-ctx.Done():
	}
	return nil
}

// Stop requests finalization. Idempotent; further audio is ignored.
func (s *Session) Stop() {
	select {
	case s.msgs <- message{kind: msgStop}:
	case <-s.done:
	}
}

// Disconnect is the implicit stop: an abrupt connection loss drives the same
// finalize-and-persist path as an explicit stop.
func (s *Session) Disconnect() {
	s.cancel()
}

func (s *Session) run() {
	defer close(s.done)
	defer s.cancel()

	ticker := time.NewTicker(s.cfg.RecognitionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.finalize()
			return
		case m := <-s.msgs:
			switch m.kind {
			case msgAppend:
				s.buffer = append(s.buffer, m.data...)
				s.sinceLastPass += len(m.data)
			case msgStop:
				s.finalize()
				return
			}
		case <-ticker.C:
			s.incrementalPass()
		}
	}
}

// incrementalPass runs the streaming recognizer against the buffer-so-far and
// broadcasts the result if it changed. Failures here are logged and
// swallowed; the session keeps streaming and retries on the next tick.
func (s *Session) incrementalPass() {
	if s.sinceLastPass < s.cfg.MinBytesPerPass {
		return
	}

	coverage := len(s.buffer)
	result, err := s.recognizer.TranscribeIncremental(s.ctx, s.buffer)
	if err != nil {
		s.log.Warn("incremental recognition failed", "error", err, "buffered_bytes", coverage)
		return
	}
	s.sinceLastPass = 0

	if coverage < s.lastCoverage {
		return
	}
	if s.lastResult != nil && resultsEqual(s.lastResult, result) {
		return
	}

	s.lastResult = result
	s.lastCoverage = coverage
	s.notifier.SendUpdate(result)
}

// finalize runs one batch pass over the complete buffer and persists the
// authoritative result. It uses its own deadline because the connection that
// triggered it may already be gone.
func (s *Session) finalize() {
	s.setState(StateFinalizing)
	s.notifier.SendStatus(StatusStopping, "")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.FinalizeTimeout)
	defer cancel()
	defer s.arbiter.Release(ctx, s.sessionID, s.connID)

	if len(s.buffer) == 0 {
		// Nothing was ever captured; there is nothing to transcribe and no
		// empty transcription is persisted.
		s.setState(StatePersisted)
		s.notifier.SendStatus(StatusStopped, "")
		s.log.Info("session ended without audio, nothing persisted")
		return
	}

	result, err := s.recognizer.TranscribeBatch(ctx, s.buffer, "audio/l16;rate=16000")
	if err != nil {
		// Only a cancelled or timed-out final pass falls back to the last
		// incremental result. A provider failure means the recording attempt
		// failed and nothing is persisted.
		if isCancellation(err) && s.lastResult != nil && !s.lastResult.Empty() {
			s.log.Warn("final recognition cancelled, persisting last incremental result", "error", err)
			result = s.lastResult
		} else {
			s.fail("final recognition failed", err)
			return
		}
	}

	t := &transcript.Transcription{
		SessionID:  s.sessionID,
		Source:     transcript.SourceRealtimeRecording,
		Transcript: transcript.Merge(result.Segments, result.Transcript),
		CreatedBy:  s.userID,
		Segments:   transcript.SegmentsFromResult(result.Segments),
	}

	if err := s.store.Replace(ctx, t); err != nil {
		// The result stays in lastResult so a retry does not require
		// re-recording.
		s.lastResult = result
		s.fail("failed to persist transcription", err)
		return
	}

	s.setState(StatePersisted)
	s.notifier.SendPersisted()
	s.notifier.SendStatus(StatusStopped, "")
	s.log.Info("realtime transcription persisted",
		"buffered_bytes", len(s.buffer),
		"segments", len(t.Segments))
}

func (s *Session) fail(message string, err error) {
	s.setState(StateError)
	s.log.Error(message, "error", err)
	s.notifier.SendStatus(StatusError, message)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func resultsEqual(a, b *speech.Result) bool {
	if a.Transcript != b.Transcript || len(a.Segments) != len(b.Segments) {
		return false
	}
	for i := range a.Segments {
		if a.Segments[i] != b.Segments[i] {
			return false
		}
	}
	return true
}
