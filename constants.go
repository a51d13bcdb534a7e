package server

import "time"

const (
	tickInterval = 16 * time.Millisecond // ~60 Hz game loop
	nominalFrame = 16.67                 // milliseconds per nominal frame, deltaTime divisor

	fieldWidth   = 600.0
	fieldHeight  = 400.0
	paddleHeight = 60.0
	paddleWidth  = 10.0
	paddle1X     = 10.0
	paddle2X     = 580.0
	paddleHomeY  = 150.0

	ballCenterX = 300.0
	ballCenterY = 200.0

	ballSpeedFactor     = 2.0
	ballServeSpeed      = 3.0
	paddleBounceGain    = 1.1
	serveAngleSpread    = 0.39269908169872414 // pi/8, ±22.5° around horizontal
	defaultMaxBallSpeed = 0.0                 // 0 keeps the historical uncapped escalation

	winningScore = 5
	maxSeats     = 2

	sessionTimeout   = 120 * time.Second
	pauseMaxDuration = 300 * time.Second
	lockTimeout      = time.Second

	roomCodeMin  = 1000
	roomCodeSpan = 9000
)

// Lock requester classes. The game loop and paddle updates bypass the queue
// when the lock is held; everything else waits its turn.
const (
	lockRequesterTick         = "gameLoop"
	lockRequesterPaddlePrefix = "paddle_"
	lockRequesterTimeout      = "timeout"
)

// TickInterval reports the simulation cadence for diagnostics.
func TickInterval() time.Duration { return tickInterval }
