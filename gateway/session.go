package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"snappy/domain/event"
	"snappy/runtime"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxFrameSize = 4096
)

// OutboundFrame is what a connected client receives when a peer pushes a
// message through the relay.
type OutboundFrame struct {
	Type    string    `json:"type"`
	From    string    `json:"from"`
	Message string    `json:"message"`
	Lang    string    `json:"lang,omitempty"`
	At      time.Time `json:"at"`
}

// Session owns one websocket connection. It is the connection's EventSink:
// events pushed by peers land in the buffered send channel and are written
// to the socket by writePump. When the buffer is full the event is dropped,
// never blocking the sender.
type Session struct {
	conn *websocket.Conn
	send chan []byte
	log  *slog.Logger

	mu     sync.Mutex
	closed bool
}

func NewSession(conn *websocket.Conn, sendBufferSize int, log *slog.Logger) *Session {
	return &Session{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		log:  log,
	}
}

// Consume implements contract.EventSink. It never blocks: a full buffer or
// a closed session drops the event.
func (s *Session) Consume(e event.DomainEvent) {
	dm, ok := e.(event.DirectMessage)
	if !ok {
		return
	}

	payload, err := json.Marshal(OutboundFrame{
		Type:    "message",
		From:    dm.From,
		Message: dm.Content,
		Lang:    dm.Lang,
		At:      dm.At,
	})
	if err != nil {
		s.log.Error("Outbound frame encoding failed", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- payload:
	default:
		s.log.Debug("Send buffer full, dropping frame", "to_conn", s.conn.RemoteAddr())
	}
}

// ReadPump pumps frames from the websocket into the relay. It runs in the
// connection's goroutine and owns all reads. On exit the relay is closed,
// which releases the presence entry.
func (s *Session) ReadPump(relay *runtime.Relay) {
	defer func() {
		relay.Close()
		s.shutdown()
	}()

	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Websocket closed unexpectedly", "err", err)
			}
			return
		}

		var frame runtime.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.log.Debug("Dropping undecodable frame", "err", err)
			continue
		}
		relay.Handle(frame)
	}
}

// WritePump drains the send channel to the websocket and keeps the
// connection alive with periodic pings. One writer per connection.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// shutdown marks the session closed and closes the send channel, letting
// writePump flush and terminate. The closed flag keeps a concurrent
// Consume from writing to a closed channel.
func (s *Session) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}
