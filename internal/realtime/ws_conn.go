package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/praxisnote/transcription/internal/speech"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024 * 1024
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsConn adapts one websocket connection to the session's Notifier. Outbound
// messages go through a buffered channel drained by writePump; a full buffer
// drops the message rather than blocking the session.
type wsConn struct {
	ws  *websocket.Conn
	log *slog.Logger

	send chan *ServerMessage
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

func newWSConn(ws *websocket.Conn, log *slog.Logger) *wsConn {
	return &wsConn{
		ws:   ws,
		log:  log,
		send: make(chan *ServerMessage, 64),
		done: make(chan struct{}),
	}
}

func (c *wsConn) SendUpdate(result *speech.Result) {
	c.enqueue(updateMessage(result))
}

func (c *wsConn) SendStatus(status Status, message string) {
	c.enqueue(statusMessage(status, message))
}

func (c *wsConn) SendPersisted() {
	c.enqueue(&ServerMessage{Type: MessageTypePersisted})
}

func (c *wsConn) enqueue(msg *ServerMessage) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	select {
	case c.send <- msg:
	case <-c.done:
	default:
		c.log.Warn("send buffer full, dropping message", "type", msg.Type)
	}
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	return c.ws.Close()
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(msg)
			if err != nil {
				c.log.Error("failed to marshal message", "error", err)
				continue
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			// Drain anything already queued so the persisted notification
			// reaches the client before the socket goes away.
			for {
				select {
				case msg := <-c.send:
					_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
					if data, err := json.Marshal(msg); err == nil {
						_ = c.ws.WriteMessage(websocket.TextMessage, data)
					}
				default:
					return
				}
			}
		}
	}
}
