// Package net is the transport collaborator: it owns the websocket
// connections and the HTTP surface, mints opaque connection identifiers,
// and shuttles commands and broadcasts between clients and the hub.
package net

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

// write marshals event and sends it under the per-connection write lock,
// returning the payload size.
func (c *client) write(event any) (int, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (c *client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// Gateway tracks live connections and implements the hub's Broadcaster.
type Gateway struct {
	mu      sync.Mutex
	clients map[string]*client
	log     *logrus.Entry

	// bytesSent, when set, receives the payload size of each successful
	// write. The hub feeds it into telemetry and metrics.
	bytesSent func(int)
}

func NewGateway(log *logrus.Entry) *Gateway {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Gateway{
		clients: make(map[string]*client),
		log:     log,
	}
}

// OnBytesSent installs the write-size callback. Set once during startup,
// before any connection is accepted.
func (g *Gateway) OnBytesSent(fn func(int)) {
	g.bytesSent = fn
}

func (g *Gateway) register(conn *websocket.Conn) *client {
	c := &client{id: uuid.NewString(), conn: conn}
	g.mu.Lock()
	g.clients[c.id] = c
	g.mu.Unlock()
	return c
}

func (g *Gateway) unregister(id string) {
	g.mu.Lock()
	c, ok := g.clients[id]
	if ok {
		delete(g.clients, id)
	}
	g.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

func (g *Gateway) lookup(id string) (*client, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.clients[id]
	return c, ok
}

// Send delivers an event to one connection. Unknown or dead connections
// are dropped silently; the read loop handles the actual disconnect.
func (g *Gateway) Send(clientID string, event any) {
	c, ok := g.lookup(clientID)
	if !ok {
		return
	}
	n, err := c.write(event)
	if err != nil {
		g.log.WithField("client", clientID).WithError(err).Debug("send failed")
		return
	}
	if g.bytesSent != nil {
		g.bytesSent(n)
	}
}

// SendRoom fans an event out to every listed participant.
func (g *Gateway) SendRoom(code string, clientIDs []string, event any) {
	for _, id := range clientIDs {
		g.Send(id, event)
	}
}
