// Package push fans event notifications out to websocket clients.
package push

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/eventfeed/internal/logging"
	"github.com/dmitrijs2005/eventfeed/internal/rpc"
	"github.com/dmitrijs2005/eventfeed/internal/server/models"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	sendQueue    = 32
)

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) stop() {
	c.once.Do(func() { close(c.send) })
}

// Hub keeps the connected clients. Every published notification gets a
// ULID that increases across the hub's lifetime, and every client receives
// frames in id order.
type Hub struct {
	upgrader websocket.Upgrader
	logger   logging.Logger
	queue    int

	// mu guards clients and entropy. Ids are taken and frames queued in
	// one critical section.
	mu      sync.Mutex
	clients map[*client]struct{}
	entropy io.Reader
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		logger:   logger,
		queue:    sendQueue,
		clients:  make(map[*client]struct{}),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// ServeHTTP upgrades the request and serves the connection until the
// client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.queue)}
	h.add(c)
	h.logger.Debug(r.Context(), "push client connected", "remote", r.RemoteAddr)

	go h.write(c)
	h.read(c)

	h.remove(c)
	h.logger.Debug(r.Context(), "push client disconnected", "remote", r.RemoteAddr)
}

// read discards inbound frames; it only notices the disconnect.
func (h *Hub) read(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) write(c *client) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	defer c.conn.Close()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-t.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.stop()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// nextID must be called with h.mu held.
func (h *Hub) nextID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), h.entropy).String()
}

// Publish stamps n and queues it for every client. A client whose queue
// is full is disconnected rather than allowed to stall the others.
func (h *Hub) Publish(ctx context.Context, n models.Notification) {
	frame := rpc.Notification{Kind: string(n.Kind), EventID: n.EventID}
	if n.Event != nil {
		e := n.Event.ToRPC()
		frame.Event = &e
		frame.EventID = 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	frame.ID = h.nextID()
	msg, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error(ctx, "notification encoding failed", "error", err)
		return
	}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			c.stop()
			h.logger.Warn(ctx, "dropping slow push client")
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.stop()
	}
}

// Run serves the hub at /ws on addr until ctx is done.
func (h *Hub) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		h.logger.Info(ctx, "Stopping push server...")
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	h.logger.Info(ctx, "Starting push server", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
