// Package wire implements the socket protocol: the 24-byte binary state
// frame broadcast every simulation tick, and the JSON control envelopes
// exchanged on the hub and match sockets.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// FrameSize is the exact length of a binary state frame: six little-endian
// 32-bit floats with no length prefix. One websocket binary message is one
// frame.
const FrameSize = 24

// ErrFrameSize is returned when a binary payload is not exactly FrameSize
// bytes. Receiving one is a protocol error and the connection is closed.
var ErrFrameSize = errors.New("wire: binary frame must be 24 bytes")

// Vec2 is a point in the normalized [0,1] coordinate space. Clients scale
// to pixels; the engine never emits pixel values.
type Vec2 struct {
	X float32
	Y float32
}

// Frame is one tick's worth of renderable state: both paddle positions and
// the ball position, in field order paddle1, paddle2, ball.
type Frame struct {
	P1   Vec2
	P2   Vec2
	Ball Vec2
}

// MarshalBinary encodes the frame as six little-endian float32 values.
func (f Frame) MarshalBinary() ([]byte, error) {
	buf := make([]byte, FrameSize)
	for i, v := range [6]float32{f.P1.X, f.P1.Y, f.P2.X, f.P2.Y, f.Ball.X, f.Ball.Y} {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf, nil
}

// UnmarshalBinary decodes a frame, rejecting any payload whose length is
// not exactly FrameSize.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) != FrameSize {
		return fmt.Errorf("%w, got %d", ErrFrameSize, len(data))
	}
	var vals [6]float32
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	f.P1 = Vec2{vals[0], vals[1]}
	f.P2 = Vec2{vals[2], vals[3]}
	f.Ball = Vec2{vals[4], vals[5]}
	return nil
}
