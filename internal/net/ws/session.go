package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultWriteTimeout = 5 * time.Second

// session serialises writes to one websocket connection.
type session struct {
	mu           sync.Mutex
	conn         *websocket.Conn
	writeTimeout time.Duration
	sent         int
}

func newSession(conn *websocket.Conn, writeTimeout time.Duration) *session {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &session{conn: conn, writeTimeout: writeTimeout}
}

func (s *session) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		return err
	}
	s.sent++
	return nil
}

// Close sends a close frame with code and reason, then drops the connection.
func (s *session) Close(code int, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message := websocket.FormatCloseMessage(code, reason)
	deadline := time.Now().Add(s.writeTimeout)
	_ = s.conn.WriteControl(websocket.CloseMessage, message, deadline)
	return s.conn.Close()
}

func (s *session) Sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}
