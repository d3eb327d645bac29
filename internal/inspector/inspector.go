// Package inspector streams engine events to websocket clients.
package inspector

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/scenebridge/internal/core/events/bus"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	writeWait   = 5 * time.Second
	clientQueue = 256
)

// Message is the JSON frame sent for every bus event.
type Message struct {
	Type   string    `json:"type"`
	Source string    `json:"source"`
	Time   time.Time `json:"time"`
	Data   any       `json:"data,omitempty"`
}

// Server is an http.Handler upgrading each request to a websocket fed with
// bus events. Slow clients drop events instead of blocking the publisher.
type Server struct {
	events bus.EventBus
	logger log.Log

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

func New(events bus.EventBus, logger log.Log) *Server {
	return &Server{
		events:  events,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := &client{send: make(chan Message, clientQueue)}
	sub, err := s.events.SubscribeAll(func(e bus.Event) error {
		s.enqueue(c, e)
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer func() { _ = s.events.Unsubscribe(sub) }()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("inspector upgrade failed", log.Error(err))
		return
	}
	c.conn = conn
	defer conn.Close()

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
	}()

	s.logger.Debug("inspector client connected", log.String("remote", conn.RemoteAddr().String()))
	done := make(chan struct{})
	go s.readLoop(c, done)
	s.writeLoop(c, done)
}

func (s *Server) enqueue(c *client, e bus.Event) {
	msg := Message{Type: e.Type(), Source: e.Source(), Time: e.Timestamp(), Data: e.Data()}
	select {
	case c.send <- msg:
	default:
		s.logger.Warn("inspector client lagging, event dropped", log.String("event", e.Type()))
	}
}

// readLoop drains client frames so close messages are processed.
func (s *Server) readLoop(c *client, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(c *client, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				s.logger.Debug("inspector write failed", log.Error(err))
				return
			}
		}
	}
}
