package server

import (
	"sync"
	"time"
)

// Ball is the authoritative ball position and velocity.
type Ball struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// Scores holds both players' points.
type Scores struct {
	P1 int `json:"p1"`
	P2 int `json:"p2"`
}

// gameState is the simulation state of one room. All fields are guarded by
// mu; the tick loop and command handlers touch it concurrently.
type gameState struct {
	mu         sync.Mutex
	ball       Ball
	scores     Scores
	running    bool
	paused     bool
	pauseStart time.Time
	totalPause time.Duration
	lastTick   time.Time

	rng      serveRand
	maxSpeed float64
	winScore int
}

func newGameState(rng serveRand, maxSpeed float64, winScore int, now time.Time) *gameState {
	if winScore <= 0 {
		winScore = winningScore
	}
	return &gameState{
		ball:     Ball{X: ballCenterX, Y: ballCenterY},
		rng:      rng,
		maxSpeed: maxSpeed,
		winScore: winScore,
		lastTick: now,
	}
}

// start arms a fresh game: scores to zero, axis-aligned serve with random
// signs, simulation running.
func (g *gameState) start(now time.Time) (Ball, Scores) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.scores = Scores{}
	g.running = true
	g.paused = false
	g.totalPause = 0
	g.ball = Ball{
		X:  ballCenterX,
		Y:  ballCenterY,
		VX: ballServeSpeed * g.randomSign(),
		VY: 2 * g.randomSign(),
	}
	g.lastTick = now
	return g.ball, g.scores
}

// reset stops the simulation and recenters a dead ball.
func (g *gameState) reset(now time.Time) (Ball, Scores) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.scores = Scores{}
	g.running = false
	g.paused = false
	g.totalPause = 0
	g.ball = Ball{X: ballCenterX, Y: ballCenterY}
	g.lastTick = now
	return g.ball, g.scores
}

// togglePause flips the paused flag while a game is running. Returns the
// new paused state; ok is false when no game is in progress. Resuming
// rebases lastTick so the pause never shows up as physics travel time.
func (g *gameState) togglePause(now time.Time) (paused bool, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.running {
		return false, false
	}
	if g.paused {
		g.totalPause += now.Sub(g.pauseStart)
		g.paused = false
		g.lastTick = now
		return false, true
	}
	g.paused = true
	g.pauseStart = now
	return true, true
}

func (g *gameState) snapshot() (Ball, Scores) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ball, g.scores
}

func (g *gameState) isRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

func (g *gameState) isPaused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}
