package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/praxisnote/transcription/internal/shared"
)

// Handler exposes the recording protocol: one websocket per browser tab and
// recording attempt.
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/sessions/:id/record", h.Record)
}

func (h *Handler) Record(c echo.Context) error {
	sessionID := c.Param("id")
	userID, err := shared.RequireUser(c)
	if err != nil {
		return err
	}

	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err, "session_id", sessionID)
		return err
	}

	connID := uuid.New().String()
	log := h.logger.With("session_id", sessionID, "conn_id", connID)
	conn := newWSConn(ws, log)

	go conn.writePump()
	conn.SendStatus(StatusConnecting, "")

	h.readLoop(c.Request().Context(), conn, sessionID, connID, userID, log)
	return nil
}

// readLoop is the wire side of the session: it delivers chunks in order and
// turns an abrupt disconnect into the same finalize path as an explicit stop.
func (h *Handler) readLoop(ctx context.Context, conn *wsConn, sessionID, connID, userID string, log *slog.Logger) {
	var session *Session

	defer func() {
		if session != nil {
			session.Disconnect()
			<-session.Done()
			h.manager.RemoveSession(connID)
		}
		conn.Close()
	}()

	conn.ws.SetReadLimit(maxMessageSize)
	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Error("websocket read error", "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn("malformed client message", "error", err)
			continue
		}

		switch msg.Type {
		case MessageTypeStart:
			if session != nil {
				continue
			}
			s, err := h.manager.StartSession(ctx, sessionID, connID, userID, conn)
			if err != nil {
				if errors.Is(err, shared.ErrConflict) {
					conn.SendStatus(StatusError, "session is already being recorded")
				} else {
					log.Error("failed to start recording session", "error", err)
					conn.SendStatus(StatusError, "failed to start recording")
				}
				continue
			}
			session = s
			conn.SendStatus(StatusRecording, "")

		case MessageTypeChunk:
			if session == nil {
				conn.SendStatus(StatusError, "no active recording to append to")
				continue
			}
			pcm, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				log.Warn("chunk is not valid base64", "error", err)
				continue
			}
			_ = session.AppendAudio(ctx, pcm)

		case MessageTypeStop:
			if session != nil {
				session.Stop()
			}

		default:
			log.Warn("unknown message type", "type", msg.Type)
		}
	}
}
