// Package tap serves the live decision feed over websocket so thresholds
// can be tuned while watching real motion. Slow clients get messages
// dropped rather than stalling the event path.
package tap

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/snapscroll/snapscroll/input"
	"github.com/snapscroll/snapscroll/snap"
)

// Message is one decision as sent to tap clients.
type Message struct {
	snap.Decision
	Axis      string `json:"axis"`
	Detected  string `json:"detected"`
	Effective string `json:"effective"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// Server broadcasts decisions to connected websocket clients.
type Server struct {
	addr   string
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}

	httpSrv *http.Server
}

func NewServer(addr string, logger *slog.Logger) *Server {
	return &Server{
		addr:    addr,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

var upgrader = websocket.Upgrader{
	// The tap is a localhost debugging aid; any origin may watch.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ListenAndServe serves /watch until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", s.handleWatch)

	s.httpSrv = &http.Server{Addr: s.addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = s.httpSrv.Close()
	}()

	s.logger.Info("tap listening", "addr", s.addr)
	err := s.httpSrv.ListenAndServe()
	if ctx.Err() != nil || err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("tap upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 64)}
	go c.writePump()

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("tap client connected", "remote", conn.RemoteAddr().String())

	// Reads only serve to notice disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.remove(c)
				return
			}
		}
	}()
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
}

// Broadcast queues a decision to every client. Never blocks; clients that
// cannot keep up lose messages.
func (s *Server) Broadcast(d snap.Decision) {
	msg := Message{
		Decision:  d,
		Axis:      axisName(d.Code),
		Detected:  d.Detected.String(),
		Effective: d.Effective.String(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.Lock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
	s.mu.Unlock()
}

func axisName(code uint16) string {
	switch code {
	case input.RelHWheel:
		return "x"
	case input.RelWheel:
		return "y"
	default:
		return "?"
	}
}
