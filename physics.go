package server

import (
	"math"
	"time"
)

// tickOutcome is what one physics step produced, ready for broadcast.
type tickOutcome struct {
	Ball     Ball
	Scores   Scores
	Scored   bool
	GameOver bool
	Winner   int
}

// advance runs one fixed-tick physics step: move the ball by wall-clock
// delta, reflect off the horizontal walls, bounce off paddles with the
// escalation gain, detect goals, and check the win condition. Returns
// ok=false when the room has nothing to simulate.
func (g *gameState) advance(now time.Time, roster []Participant) (tickOutcome, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.running || g.paused {
		return tickOutcome{}, false
	}

	// Normalized so deltaTime ≈ 1.0 at the nominal 16.67 ms cadence.
	deltaTime := now.Sub(g.lastTick).Seconds() * 1000 / nominalFrame

	g.ball.X += g.ball.VX * ballSpeedFactor * deltaTime
	g.ball.Y += g.ball.VY * ballSpeedFactor * deltaTime

	if g.ball.Y <= 0 || g.ball.Y >= fieldHeight {
		g.ball.VY = -g.ball.VY
	}

	// Bands go by arrival order: the first joiner guards the left side.
	// Seat numbers can collide after a mid-game departure; order cannot.
	for i, p := range roster {
		x := paddle1X
		if i > 0 {
			x = paddle2X
		}
		if g.ball.X >= x && g.ball.X <= x+paddleWidth &&
			g.ball.Y >= p.Y && g.ball.Y <= p.Y+paddleHeight {
			g.ball.VX = -g.ball.VX * paddleBounceGain
			if g.maxSpeed > 0 && math.Abs(g.ball.VX) > g.maxSpeed {
				g.ball.VX = math.Copysign(g.maxSpeed, g.ball.VX)
			}
		}
	}

	out := tickOutcome{}
	if g.ball.X <= 0 {
		g.scores.P2++
		g.resetBallLocked(now)
		out.Scored = true
	} else if g.ball.X >= fieldWidth {
		g.scores.P1++
		g.resetBallLocked(now)
		out.Scored = true
	}

	if out.Scored {
		if g.scores.P1 >= g.winScore {
			g.running = false
			out.GameOver = true
			out.Winner = 1
		} else if g.scores.P2 >= g.winScore {
			g.running = false
			out.GameOver = true
			out.Winner = 2
		}
	}

	g.lastTick = now
	out.Ball = g.ball
	out.Scores = g.scores
	return out, true
}

// resetBallLocked recenters the ball and deals a randomized serve: fixed
// base speed, random left/right and up/down, and a small perturbation
// around the horizontal. Caller holds g.mu.
func (g *gameState) resetBallLocked(now time.Time) {
	angle := g.randomFloat()*(math.Pi/4) - serveAngleSpread
	g.ball = Ball{
		X:  ballCenterX,
		Y:  ballCenterY,
		VX: ballServeSpeed * math.Cos(angle) * g.randomSign(),
		VY: ballServeSpeed * math.Sin(angle) * g.randomSign(),
	}
	g.lastTick = now
}
