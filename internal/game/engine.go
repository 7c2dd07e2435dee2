// Package game implements the authoritative match engine: the pong physics
// simulation and the per-match session actor that ticks it, scores it and
// streams state to the participants.
package game

import (
	"math"

	"github.com/pongarena/api/internal/wire"
)

// World geometry and speeds, in the normalized [0,1] coordinate space the
// wire codec carries. Clients scale to pixels.
const (
	paddleWidth  = 0.02
	paddleHeight = 0.2
	ballSize     = 0.02

	paddleSpeed = 0.75 // world units per second
	ballSpeed   = 0.42 // world units per second

	launchAngleDeg = 55
)

// engine is the pure physics state of one match. It is owned by a single
// match goroutine and is not safe for concurrent use.
type engine struct {
	paddleY [2]float64 // top edge
	dir     [2]int     // -1, 0, 1
	ballX   float64    // top-left corner
	ballY   float64
	ballVX  float64
	ballVY  float64
}

func newEngine() *engine {
	e := &engine{}
	e.paddleY[0] = 0.5 - paddleHeight/2
	e.paddleY[1] = 0.5 - paddleHeight/2
	e.resetBall(1)
	return e
}

// resetBall centers the ball and serves it toward the given player slot.
func (e *engine) resetBall(toward int) {
	e.ballX = 0.5 - ballSize/2
	e.ballY = 0.5 - ballSize/2

	angle := launchAngleDeg * math.Pi / 180
	e.ballVX = math.Cos(angle) * ballSpeed
	e.ballVY = math.Sin(angle) * ballSpeed
	if toward == 0 {
		e.ballVX = -e.ballVX
	}
}

// setDirection updates a paddle's movement intent. Out-of-range values are
// dropped by the caller before they reach the engine.
func (e *engine) setDirection(player, dir int) {
	e.dir[player] = dir
}

// step advances the simulation by dt seconds and returns the slot of the
// player who scored this step, or -1.
func (e *engine) step(dt float64) int {
	for i := range e.paddleY {
		e.paddleY[i] += float64(e.dir[i]) * paddleSpeed * dt
		e.paddleY[i] = clamp(e.paddleY[i], 0, 1-paddleHeight)
	}

	e.ballX += e.ballVX * dt
	e.ballY += e.ballVY * dt

	// Top and bottom walls reflect vertically.
	if e.ballY < 0 {
		e.ballY = 0
		e.ballVY = -e.ballVY
	} else if e.ballY+ballSize > 1 {
		e.ballY = 1 - ballSize
		e.ballVY = -e.ballVY
	}

	// Paddle faces reflect horizontally, only when the ball is moving
	// toward the paddle so a clipped ball cannot bounce twice.
	if e.ballVX < 0 && e.overlaps(0) {
		e.ballX = paddleWidth
		e.ballVX = -e.ballVX
	} else if e.ballVX > 0 && e.overlaps(1) {
		e.ballX = 1 - paddleWidth - ballSize
		e.ballVX = -e.ballVX
	}

	// Goals: the defender's edge was crossed, the opponent scores and the
	// ball is served toward the conceding side.
	if e.ballX < 0 {
		e.resetBall(0)
		return 1
	}
	if e.ballX+ballSize > 1 {
		e.resetBall(1)
		return 0
	}
	return -1
}

func (e *engine) overlaps(player int) bool {
	px := 0.0
	if player == 1 {
		px = 1 - paddleWidth
	}
	py := e.paddleY[player]
	return e.ballX < px+paddleWidth &&
		e.ballX+ballSize > px &&
		e.ballY < py+paddleHeight &&
		e.ballY+ballSize > py
}

// frame snapshots the renderable state for one tick.
func (e *engine) frame() wire.Frame {
	return wire.Frame{
		P1:   wire.Vec2{X: 0, Y: float32(e.paddleY[0])},
		P2:   wire.Vec2{X: 1 - paddleWidth, Y: float32(e.paddleY[1])},
		Ball: wire.Vec2{X: float32(e.ballX), Y: float32(e.ballY)},
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
