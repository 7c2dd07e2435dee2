package wire

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	frames := []Frame{
		{},
		{P1: Vec2{0, 0.5}, P2: Vec2{0.98, 0.5}, Ball: Vec2{0.5, 0.5}},
		{P1: Vec2{0.123456, 0.654321}, P2: Vec2{1, 0}, Ball: Vec2{0.001, 0.999}},
		{P1: Vec2{float32(math.Pi), -1}, P2: Vec2{2, 3}, Ball: Vec2{-0.25, 1.5}},
	}

	for _, want := range frames {
		data, err := want.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if len(data) != FrameSize {
			t.Fatalf("frame length = %d, want %d", len(data), FrameSize)
		}

		var got Frame
		if err := got.UnmarshalBinary(data); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got != want {
			t.Errorf("round trip = %+v, want %+v", got, want)
		}
	}
}

func TestFrameFieldOrder(t *testing.T) {
	f := Frame{P1: Vec2{1, 2}, P2: Vec2{3, 4}, Ball: Vec2{5, 6}}
	data, err := f.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for i, want := range []float32{1, 2, 3, 4, 5, 6} {
		got := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		if got != want {
			t.Errorf("float %d = %v, want %v", i, got, want)
		}
	}
}

func TestFrameBadLength(t *testing.T) {
	for _, n := range []int{0, 1, 23, 25, 48} {
		var f Frame
		err := f.UnmarshalBinary(make([]byte, n))
		if !errors.Is(err, ErrFrameSize) {
			t.Errorf("length %d: err = %v, want ErrFrameSize", n, err)
		}
	}
}
