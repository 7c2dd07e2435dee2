package game

import (
	"math"
	"testing"
)

func TestPaddleStopsAtWalls(t *testing.T) {
	e := newEngine()

	e.setDirection(0, -1)
	for i := 0; i < 200; i++ {
		e.step(1.0 / tickRate)
	}
	if e.paddleY[0] != 0 {
		t.Fatalf("paddle 1 top = %v, want 0", e.paddleY[0])
	}

	e.setDirection(0, 1)
	for i := 0; i < 200; i++ {
		e.step(1.0 / tickRate)
	}
	if want := 1 - paddleHeight; e.paddleY[0] != want {
		t.Fatalf("paddle 1 top = %v, want %v", e.paddleY[0], want)
	}
}

func TestBallBouncesOffWalls(t *testing.T) {
	e := newEngine()
	e.ballY = 0.001
	e.ballVY = -0.3
	e.ballVX = 0

	e.step(1.0 / tickRate)
	if e.ballVY <= 0 {
		t.Fatalf("vertical velocity after top bounce = %v, want positive", e.ballVY)
	}

	e.ballY = 1 - ballSize - 0.001
	e.ballVY = 0.3
	e.step(1.0 / tickRate)
	if e.ballVY >= 0 {
		t.Fatalf("vertical velocity after bottom bounce = %v, want negative", e.ballVY)
	}
}

func TestBallReflectsOffPaddle(t *testing.T) {
	e := newEngine()
	e.paddleY[0] = 0.4
	e.ballX = 0.025
	e.ballY = 0.5
	e.ballVX = -ballSpeed
	e.ballVY = 0

	if scorer := e.step(0.05); scorer != -1 {
		t.Fatalf("scorer = %d, want -1", scorer)
	}
	if e.ballVX <= 0 {
		t.Fatalf("horizontal velocity after paddle hit = %v, want positive", e.ballVX)
	}
	if e.ballX < paddleWidth {
		t.Fatalf("ball x = %v, still inside paddle", e.ballX)
	}
}

func TestGoalScoresOpponentAndServesAtConceder(t *testing.T) {
	e := newEngine()
	// Move the defending paddle out of the ball's path.
	e.paddleY[0] = 0.8
	e.ballX = 0.005
	e.ballY = 0.1
	e.ballVX = -ballSpeed
	e.ballVY = 0

	scorer := e.step(0.05)
	if scorer != 1 {
		t.Fatalf("scorer = %d, want 1", scorer)
	}
	if e.ballX != 0.5-ballSize/2 || e.ballY != 0.5-ballSize/2 {
		t.Fatalf("ball not recentered: (%v, %v)", e.ballX, e.ballY)
	}
	if e.ballVX >= 0 {
		t.Fatalf("serve velocity = %v, want toward conceding side", e.ballVX)
	}

	e.paddleY[1] = 0.8
	e.ballX = 1 - ballSize - 0.005
	e.ballY = 0.1
	e.ballVX = ballSpeed
	e.ballVY = 0
	if scorer := e.step(0.05); scorer != 0 {
		t.Fatalf("scorer = %d, want 0", scorer)
	}
}

func TestServeSpeedMatchesBallSpeed(t *testing.T) {
	e := newEngine()
	speed := math.Hypot(e.ballVX, e.ballVY)
	if math.Abs(speed-ballSpeed) > 1e-9 {
		t.Fatalf("serve speed = %v, want %v", speed, ballSpeed)
	}
}

func TestFramePinsPaddleColumns(t *testing.T) {
	e := newEngine()
	f := e.frame()
	if f.P1.X != 0 {
		t.Fatalf("p1 x = %v, want 0", f.P1.X)
	}
	if want := float32(1 - paddleWidth); f.P2.X != want {
		t.Fatalf("p2 x = %v, want %v", f.P2.X, want)
	}
}
