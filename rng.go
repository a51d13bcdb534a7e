package server

import "math/rand"

// serveRand isolates the randomness behind serves so tests can inject a
// deterministic sequence.
type serveRand interface {
	Float64() float64
}

func (g *gameState) randomFloat() float64 {
	if g != nil && g.rng != nil {
		return g.rng.Float64()
	}
	return rand.Float64()
}

// randomSign returns +1 or -1 with equal probability.
func (g *gameState) randomSign() float64 {
	if g.randomFloat() > 0.5 {
		return 1
	}
	return -1
}
