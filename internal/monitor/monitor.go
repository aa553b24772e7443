// Package monitor streams per-tick lighting snapshots to websocket
// subscribers so an external viewer can observe the pipeline live. Slow or
// dead subscribers are dropped; the tick loop never blocks on them.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"codeberg.org/mutker/lightctl/internal/errors"
	"codeberg.org/mutker/lightctl/internal/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait       = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Server is the websocket broadcast hub.
type Server struct {
	log        logger.Logger
	addr       string
	httpServer *http.Server
	upgrader   websocket.Upgrader

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
}

func NewServer(addr string, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}

	s := &Server{
		log:         log,
		addr:        addr,
		subscribers: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler exposes the endpoint mux so it can be mounted on an existing
// server.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving in the background.
func (s *Server) Start() {
	s.log.Info().Str("addr", s.addr).Msg("Monitor endpoint listening")

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.ErrorWithCode(errors.New().Wrap(errors.ErrInitMonitor, err)).Msg("Monitor server stopped")
		}
	}()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("Monitor upgrade failed")
		return
	}

	sub := &subscriber{conn: conn}
	s.mu.Lock()
	s.subscribers[sub] = struct{}{}
	count := len(s.subscribers)
	s.mu.Unlock()

	s.log.Debug().Int("subscribers", count).Msg("Monitor subscriber connected")

	// Reads are discarded; the read loop only detects disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(sub)
				return
			}
		}
	}()
}

func (s *Server) drop(sub *subscriber) {
	s.mu.Lock()
	_, ok := s.subscribers[sub]
	delete(s.subscribers, sub)
	s.mu.Unlock()

	if ok {
		sub.conn.Close()
		s.log.Debug().Msg("Monitor subscriber dropped")
	}
}

// Broadcast sends a JSON snapshot to every subscriber.
func (s *Server) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Debug().Err(err).Msg("Failed to marshal monitor snapshot")
		return
	}

	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			s.drop(sub)
		}
	}
}

// Close shuts down the endpoint and all subscriber connections.
func (s *Server) Close() error {
	errFactory := errors.New()

	s.mu.Lock()
	for sub := range s.subscribers {
		sub.conn.Close()
	}
	s.subscribers = make(map[*subscriber]struct{})
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errFactory.Wrap(errors.ErrCloseMonitor, err)
	}

	return nil
}
