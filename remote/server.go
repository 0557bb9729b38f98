package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/snapscroll/snapscroll/input"
)

// ServerConfig represents the remote source configuration.
type ServerConfig struct {
	Addr    string `help:"Remote wheel listen address; empty disables the remote source" default:"" env:"SNAPSCROLL_REMOTE_ADDR"`
	KeyFile string `help:"Pre-shared key file (auto-generated when missing; defaults into the config dir)" env:"SNAPSCROLL_REMOTE_KEY_FILE"`
}

// Server accepts remote wheel clients and forwards their deltas as input
// events on the pipeline's source channel. Every delta is tagged as a
// report of its own (Sync set), since remote clients batch nothing.
type Server struct {
	addr   string
	key    string
	logger *slog.Logger
	events chan<- input.Event
}

func NewServer(addr, key string, logger *slog.Logger, events chan<- input.Event) *Server {
	return &Server{addr: addr, key: key, logger: logger, events: events}
}

// ListenAndServe accepts clients until ctx is cancelled. Client failures
// are logged and never fatal to the server.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.logger.Info("remote wheel source listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	logger := s.logger.With("remote", conn.RemoteAddr().String())

	sc, err := handshake(conn, s.key, true)
	if err != nil {
		logger.Warn("handshake failed", "error", err)
		return
	}

	// The first record must be the hello; a key mismatch shows up here
	// as a decrypt error.
	buf := make([]byte, len(hello))
	if _, err := io.ReadFull(sc, buf); err != nil {
		logger.Warn("client rejected", "error", err)
		return
	}
	if string(buf) != string(hello) {
		logger.Warn("client rejected", "error", "bad hello")
		return
	}
	logger.Info("remote wheel client connected")

	frameBuf := make([]byte, FrameSize)
	for {
		if _, err := io.ReadFull(sc, frameBuf); err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("remote wheel client disconnected")
			} else {
				logger.Warn("read frame", "error", err)
			}
			return
		}
		var f Frame
		if err := f.UnmarshalBinary(frameBuf); err != nil {
			logger.Warn("bad frame", "error", err)
			return
		}
		ev := input.Event{Type: input.EvRel, Code: f.Code, Value: f.Value, Sync: true}
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
