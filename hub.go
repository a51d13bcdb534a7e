package server

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Broadcaster is the outbound half of the transport collaborator. The hub
// never touches sockets; it hands fully-formed events to the broadcaster
// addressed either to one connection or to a room's current roster.
type Broadcaster interface {
	Send(clientID string, event any)
	SendRoom(code string, clientIDs []string, event any)
}

// HubConfig carries the tunables the session controller needs. Zero values
// fall back to the historical constants.
type HubConfig struct {
	WinningScore     int
	SessionTimeout   time.Duration
	PauseMaxDuration time.Duration
	LockTimeout      time.Duration
	TickInterval     time.Duration
	MaxBallSpeed     float64

	Logger  *logrus.Entry
	Metrics *Metrics
	// NewServeRand builds the per-room serve randomness. Tests inject a
	// deterministic source here.
	NewServeRand func() serveRand
}

func DefaultHubConfig() HubConfig {
	return HubConfig{
		WinningScore:     winningScore,
		SessionTimeout:   sessionTimeout,
		PauseMaxDuration: pauseMaxDuration,
		LockTimeout:      lockTimeout,
		TickInterval:     tickInterval,
		MaxBallSpeed:     defaultMaxBallSpeed,
	}
}

// Hub is the session controller. It owns the room directory, serializes
// conflicting commands through each room's lock, drives the fixed-tick
// simulation, and emits every broadcast the clients see.
type Hub struct {
	cfg       HubConfig
	registry  *Registry
	b         Broadcaster
	log       *logrus.Entry
	telemetry *telemetryCounters
	metrics   *Metrics

	mu       sync.Mutex // guards waiting and codeRand
	waiting  string
	codeRand *rand.Rand
}

func NewHub(b Broadcaster) *Hub {
	return NewHubWithConfig(DefaultHubConfig(), b)
}

func NewHubWithConfig(cfg HubConfig, b Broadcaster) *Hub {
	base := DefaultHubConfig()
	if cfg.WinningScore <= 0 {
		cfg.WinningScore = base.WinningScore
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = base.SessionTimeout
	}
	if cfg.PauseMaxDuration <= 0 {
		cfg.PauseMaxDuration = base.PauseMaxDuration
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = base.LockTimeout
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = base.TickInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Hub{
		cfg:       cfg,
		registry:  NewRegistry(),
		b:         b,
		log:       logger,
		telemetry: newTelemetryCounters(),
		metrics:   cfg.Metrics,
		codeRand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Registry exposes the room directory, mainly for the transport layer's
// diagnostics and for tests.
func (h *Hub) Registry() *Registry { return h.registry }

// CreateRoom builds a room under a server-generated numeric code and tells
// the creator. A code collision fails silently apart from a log line; the
// client retries by issuing another createRoom.
func (h *Hub) CreateRoom(senderID string) {
	h.countCommand("createRoom")

	code := h.generateRoomCode()
	room := h.buildRoom(code)
	if err := h.registry.Create(room); err != nil {
		h.log.WithField("room", code).WithError(err).Warn("room creation collided")
		return
	}
	h.roomsGauge()
	h.touchActivity(room)
	h.b.Send(senderID, newRoomCreated(code))
	h.log.WithFields(logrus.Fields{"room": code, "client": senderID}).Info("room created")
}

// JoinRoom seats the sender in an existing room.
func (h *Hub) JoinRoom(senderID, code string) {
	h.countCommand("joinRoom")

	room, ok := h.registry.Get(code)
	if !ok {
		h.b.Send(senderID, newRoomJoinError("Unable to join room"))
		return
	}

	room.lock.Acquire(senderID, func(acquired bool) {
		if acquired {
			defer room.lock.Release(senderID)
		}

		number, err := h.registry.Join(code, senderID)
		if err != nil {
			h.b.Send(senderID, newRoomJoinError("Unable to join room"))
			return
		}

		roster := h.registry.Roster(code)
		h.b.Send(senderID, newUpdatePaddles(roster))
		h.b.Send(senderID, newJoinedRoom(code, number))
		if h.registry.IsFull(code) {
			h.sendRoom(code, newRoomReady())
		}
		h.touchActivity(room)
		h.log.WithFields(logrus.Fields{"room": code, "client": senderID, "seat": number}).Info("player joined")
	})
}

// FindRandomMatch pairs the sender with the waiting player, or parks them
// in the single waiting slot. Idempotent for a sender already waiting or
// already seated somewhere.
func (h *Hub) FindRandomMatch(senderID string) {
	h.countCommand("findRandomMatch")

	if len(h.registry.RoomsWith(senderID)) > 0 {
		h.b.Send(senderID, newWaitingForMatch())
		return
	}

	h.mu.Lock()
	if h.waiting == senderID {
		h.mu.Unlock()
		h.b.Send(senderID, newWaitingForMatch())
		return
	}
	if h.waiting == "" {
		h.waiting = senderID
		h.mu.Unlock()
		h.b.Send(senderID, newWaitingForMatch())
		return
	}
	partner := h.waiting
	h.waiting = ""
	h.mu.Unlock()

	code := h.generateRoomCode()
	room := h.buildRoom(code)
	if err := h.registry.Create(room); err != nil {
		// Put the partner back and let the sender retry.
		h.log.WithField("room", code).WithError(err).Warn("match room collided")
		h.mu.Lock()
		if h.waiting == "" {
			h.waiting = partner
		}
		h.mu.Unlock()
		h.b.Send(senderID, newWaitingForMatch())
		return
	}
	h.roomsGauge()

	n1, err1 := h.registry.Join(code, partner)
	n2, err2 := h.registry.Join(code, senderID)
	if err1 != nil || err2 != nil {
		h.log.WithField("room", code).Error("match seating failed")
		h.destroyRoom(room)
		return
	}

	h.touchActivity(room)
	h.b.Send(partner, newJoinedRoom(code, n1))
	h.b.Send(senderID, newJoinedRoom(code, n2))
	h.sendRoom(code, newRoomReady())
	h.log.WithFields(logrus.Fields{"room": code, "p1": partner, "p2": senderID}).Info("random match created")
}

// CancelMatchmaking releases the waiting slot if the sender holds it.
func (h *Hub) CancelMatchmaking(senderID string) {
	h.countCommand("cancelMatchmaking")

	h.mu.Lock()
	held := h.waiting == senderID
	if held {
		h.waiting = ""
	}
	h.mu.Unlock()

	if held {
		h.b.Send(senderID, newMatchmakingCancelled())
	}
}

// PaddleMove overwrites the sender's paddle offset and rebroadcasts the
// roster. It never queues on the room lock: each move fully replaces the
// previous position, so running unserialized is safe and keeps input
// latency low.
func (h *Hub) PaddleMove(senderID, code string, y float64) {
	h.countCommand("paddleMove")

	room, ok := h.registry.Get(code)
	if !ok {
		return
	}

	room.lock.Acquire(lockRequesterPaddlePrefix+senderID, func(acquired bool) {
		if acquired {
			defer room.lock.Release(lockRequesterPaddlePrefix + senderID)
		}

		if !h.registry.UpdatePaddle(code, senderID, y) {
			return
		}
		h.sendRoom(code, newUpdatePaddles(h.registry.Roster(code)))
		h.touchActivity(room)
	})
}

// StartGame begins a fresh game for a full room that is not mid-game:
// scores to zero, random serve, simulation running.
func (h *Hub) StartGame(senderID, code string) {
	h.countCommand("startGame")

	room, ok := h.registry.Get(code)
	if !ok {
		return
	}

	room.lock.Acquire(senderID, func(acquired bool) {
		if acquired {
			defer room.lock.Release(senderID)
		}

		if !h.registry.IsFull(code) || room.game.isRunning() {
			return
		}

		h.registry.SetStarted(code, true)
		ball, scores := room.game.start(time.Now())
		h.sendRoom(code, newUpdateScores(scores))
		h.sendRoom(code, newGameStarted())
		h.sendRoom(code, newUpdateBall(ball))
		h.touchActivity(room)
		h.log.WithFields(logrus.Fields{"room": code, "client": senderID}).Info("game started")
	})
}

// ResetGame stops the simulation, zeroes the scores, and recenters a dead
// ball. Valid from any state.
func (h *Hub) ResetGame(senderID, code string) {
	h.countCommand("resetGame")

	room, ok := h.registry.Get(code)
	if !ok {
		return
	}

	room.lock.Acquire(senderID, func(acquired bool) {
		if acquired {
			defer room.lock.Release(senderID)
		}

		ball, scores := room.game.reset(time.Now())
		room.timers.disarmPause()
		h.registry.SetStarted(code, false)
		h.sendRoom(code, newGameReset(h.registry.Roster(code), ball, scores))
		h.touchActivity(room)
	})
}

// TogglePause flips the pause flag of a running game. Pausing arms the
// maximum-pause deadline; resuming disarms it and rebases the physics
// clock so the pause is not replayed as travel time.
func (h *Hub) TogglePause(senderID, code string) {
	h.countCommand("togglePause")

	room, ok := h.registry.Get(code)
	if !ok {
		return
	}

	room.lock.Acquire(senderID, func(acquired bool) {
		if acquired {
			defer room.lock.Release(senderID)
		}

		paused, running := room.game.togglePause(time.Now())
		if !running {
			return
		}
		if paused {
			room.timers.armPause(h.cfg.PauseMaxDuration, func() {
				h.expireRoom(code, "pause", newPauseTimeout("Game ended due to extended pause"))
			})
			h.sendRoom(code, newGamePaused())
		} else {
			room.timers.disarmPause()
			h.sendRoom(code, newGameResumed())
		}
		h.touchActivity(room)
	})
}

// Disconnect detaches a departed connection: frees the waiting slot, vacates
// any seats, force-releases a lock the sender still holds, and destroys
// rooms left empty.
func (h *Hub) Disconnect(senderID string) {
	h.countCommand("disconnect")

	h.mu.Lock()
	if h.waiting == senderID {
		h.waiting = ""
	}
	h.mu.Unlock()

	for _, code := range h.registry.RoomsWith(senderID) {
		room, ok := h.registry.Get(code)
		if !ok {
			continue
		}
		if !h.registry.Leave(code, senderID) {
			continue
		}
		if room.lock.Owner() == senderID {
			room.lock.Release(senderID)
		}

		if len(h.registry.Roster(code)) == 0 {
			h.destroyRoom(room)
			h.log.WithField("room", code).Info("room emptied and destroyed")
			continue
		}
		h.sendRoom(code, newPlayerLeft())
	}
}

// RunSimulation drives the fixed-rate tick loop until the stop channel
// closes.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(h.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			started := time.Now()
			for _, code := range h.registry.Codes() {
				h.stepRoom(code, now)
			}
			h.telemetry.RecordTick(time.Since(started))
			h.metrics.ObserveTick(time.Since(started))
		}
	}
}

// stepRoom advances one room's physics under non-blocking lock semantics.
func (h *Hub) stepRoom(code string, now time.Time) {
	room, ok := h.registry.Get(code)
	if !ok {
		return
	}

	room.lock.Acquire(lockRequesterTick, func(acquired bool) {
		if acquired {
			defer room.lock.Release(lockRequesterTick)
		}

		if !h.registry.Started(code) {
			return
		}
		outcome, ok := room.game.advance(now, h.registry.Roster(code))
		if !ok {
			return
		}

		h.sendRoom(code, newUpdateBall(outcome.Ball))
		h.sendRoom(code, newUpdateScores(outcome.Scores))
		if outcome.GameOver {
			h.sendRoom(code, newGameOver(outcome.Winner, outcome.Scores))
			h.log.WithFields(logrus.Fields{"room": code, "winner": outcome.Winner}).Info("game over")
		}
	})
}

// expireRoom is the landing point for both lifecycle deadlines. The room is
// notified, then every resource keyed by the code is dropped as one unit.
// A room already torn down is left alone.
func (h *Hub) expireRoom(code, reason string, notice any) {
	room, ok := h.registry.Get(code)
	if !ok {
		return
	}

	h.sendRoom(code, notice)
	h.destroyRoom(room)
	h.metrics.CountTimeout(reason)
	h.log.WithFields(logrus.Fields{"room": code, "reason": reason}).Info("room timed out")
}

func (h *Hub) destroyRoom(room *Room) {
	room.timers.stop()
	h.registry.Close(room.Code)
	h.roomsGauge()
}

// touchActivity re-arms the inactivity deadline; every accepted command
// lands here.
func (h *Hub) touchActivity(room *Room) {
	code := room.Code
	room.timers.touch(h.cfg.SessionTimeout, func() {
		h.expireRoom(code, "inactivity", newSessionTimeout("Game ended due to inactivity"))
	})
}

func (h *Hub) buildRoom(code string) *Room {
	var rng serveRand
	if h.cfg.NewServeRand != nil {
		rng = h.cfg.NewServeRand()
	}
	return &Room{
		Code:   code,
		game:   newGameState(rng, h.cfg.MaxBallSpeed, h.cfg.WinningScore, time.Now()),
		lock:   newRoomLock(h.cfg.LockTimeout),
		timers: newLifecycleTimers(),
	}
}

func (h *Hub) generateRoomCode() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return strconv.Itoa(roomCodeMin + h.codeRand.Intn(roomCodeSpan))
}

func (h *Hub) sendRoom(code string, event any) {
	roster := h.registry.Roster(code)
	ids := make([]string, 0, len(roster))
	for _, p := range roster {
		ids = append(ids, p.ID)
	}
	h.b.SendRoom(code, ids, event)
	h.telemetry.RecordBroadcast()
}

// CountBroadcastBytes is called by the transport layer after each
// successful client write.
func (h *Hub) CountBroadcastBytes(n int) {
	h.telemetry.RecordBroadcastBytes(n)
	h.metrics.CountBroadcastBytes(n)
}

func (h *Hub) countCommand(name string) {
	h.telemetry.RecordCommand()
	h.metrics.CountCommand(name)
}

func (h *Hub) roomsGauge() {
	h.metrics.SetRoomsActive(h.registry.Len())
}

// DiagnosticsSnapshot feeds the /diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() DiagnosticsStatus {
	h.mu.Lock()
	waiting := h.waiting != ""
	h.mu.Unlock()

	return DiagnosticsStatus{
		Rooms:           h.registry.Len(),
		MatchmakingBusy: waiting,
		Telemetry:       h.telemetry.Snapshot(),
	}
}

// DiagnosticsStatus is the hub half of the diagnostics payload.
type DiagnosticsStatus struct {
	Rooms           int               `json:"rooms"`
	MatchmakingBusy bool              `json:"matchmakingBusy"`
	Telemetry       telemetrySnapshot `json:"telemetry"`
}
