package net

import (
	"encoding/json"
	nethttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	server "pong-duel/server"
)

type HTTPHandlerConfig struct {
	// PublicDir serves the landing/game pages when non-empty.
	PublicDir string
	Logger    *logrus.Entry
}

// clientMessage is the inbound wire envelope. Room and Y are meaningful
// only for the command types that carry them.
type clientMessage struct {
	Type   string  `json:"type"`
	Room   string  `json:"room"`
	Y      float64 `json:"y"`
	SentAt int64   `json:"sentAt"`
}

func NewHTTPHandler(hub *server.Hub, gateway *Gateway, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	r := chi.NewRouter()

	r.Get("/healthz", func(w nethttp.ResponseWriter, req *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	r.Get("/diagnostics", func(w nethttp.ResponseWriter, req *nethttp.Request) {
		payload := struct {
			Status     string                   `json:"status"`
			ServerTime int64                    `json:"serverTime"`
			TickMillis int64                    `json:"tickMillis"`
			Hub        server.DiagnosticsStatus `json:"hub"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			TickMillis: server.TickInterval().Milliseconds(),
			Hub:        hub.DiagnosticsSnapshot(),
		}

		data, err := json.Marshal(payload)
		if err != nil {
			nethttp.Error(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	r.Method(nethttp.MethodGet, "/metrics", promhttp.Handler())

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(req *nethttp.Request) bool {
			return true
		},
	}

	r.Get("/ws", func(w nethttp.ResponseWriter, req *nethttp.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			logger.WithError(err).Warn("websocket upgrade failed")
			return
		}
		c := gateway.register(conn)
		logger.WithField("client", c.id).Info("client connected")
		go keepAlive(c, logger)
		readLoop(hub, gateway, c, logger)
	})

	if cfg.PublicDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.PublicDir))
		r.Handle("/*", fs)
	}

	return r
}

// readLoop parses inbound envelopes and dispatches hub commands until the
// connection dies, then runs the disconnect path.
func readLoop(hub *server.Hub, gateway *Gateway, c *client, logger *logrus.Entry) {
	defer func() {
		gateway.unregister(c.id)
		hub.Disconnect(c.id)
		logger.WithField("client", c.id).Info("client disconnected")
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			logger.WithField("client", c.id).WithError(err).Debug("discarding malformed message")
			continue
		}

		switch msg.Type {
		case "createRoom":
			hub.CreateRoom(c.id)
		case "joinRoom":
			hub.JoinRoom(c.id, msg.Room)
		case "findRandomMatch":
			hub.FindRandomMatch(c.id)
		case "cancelMatchmaking":
			hub.CancelMatchmaking(c.id)
		case "paddleMove":
			hub.PaddleMove(c.id, msg.Room, msg.Y)
		case "startGame":
			hub.StartGame(c.id, msg.Room)
		case "resetGame":
			hub.ResetGame(c.id, msg.Room)
		case "togglePause":
			hub.TogglePause(c.id, msg.Room)
		default:
			logger.WithFields(logrus.Fields{"client": c.id, "type": msg.Type}).Debug("unknown message type")
		}
	}
}

// keepAlive pings on an interval; a missed pong trips the read deadline.
func keepAlive(c *client, logger *logrus.Entry) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := c.ping(); err != nil {
			return
		}
	}
}
