// Package detector adapts an external hand-landmark detector into per-frame
// landmark sets consumed by the gesture processors.
package detector

import (
	"math"
	"time"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// MaxHands is the most hands a Frame carries.
const MaxHands = 2

// Fingertips lists the five fingertip landmarks, thumb first.
var Fingertips = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// PalmBase lists the wrist and the five finger-base landmarks. Their mean is
// insensitive to finger flexion.
var PalmBase = [6]int{Wrist, ThumbCMC, IndexMCP, MiddleMCP, RingMCP, PinkyMCP}

// Point3D is a landmark position in the detector's normalized image space:
// x and y in [0,1] from the top-left corner, z relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Distance2D is the Euclidean distance between a and b in the image plane.
func Distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PalmCenter returns the mean of the PalmBase landmarks.
func (h *HandLandmarks) PalmCenter() Point3D {
	var c Point3D
	for _, i := range PalmBase {
		c.X += h.Points[i].X
		c.Y += h.Points[i].Y
		c.Z += h.Points[i].Z
	}
	n := float64(len(PalmBase))
	return Point3D{X: c.X / n, Y: c.Y / n, Z: c.Z / n}
}

// Finite reports whether every landmark coordinate is a finite number.
func (h *HandLandmarks) Finite() bool {
	for _, p := range h.Points {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return false
		}
	}
	return true
}

// Mirror returns a copy flipped horizontally (x -> 1-x), matching a mirrored
// camera image. Handedness is swapped as well.
func (h HandLandmarks) Mirror() HandLandmarks {
	for i := range h.Points {
		h.Points[i].X = 1 - h.Points[i].X
	}
	switch h.Handedness {
	case "Left":
		h.Handedness = "Right"
	case "Right":
		h.Handedness = "Left"
	}
	return h
}

// Translate returns a copy with every landmark shifted by (dx, dy).
func (h HandLandmarks) Translate(dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// Frame is the detector output for one processed video frame.
type Frame struct {
	Hands     []HandLandmarks `json:"hands"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewFrame builds a Frame from raw detector output. Hands with non-finite
// coordinates are dropped and at most MaxHands are kept, in detector order.
func NewFrame(hands []HandLandmarks, ts time.Time) Frame {
	f := Frame{Timestamp: ts}
	for i := range hands {
		if len(f.Hands) == MaxHands {
			break
		}
		if hands[i].Finite() {
			f.Hands = append(f.Hands, hands[i])
		}
	}
	return f
}

// Primary returns the first hand, or nil when the frame is empty.
func (f Frame) Primary() *HandLandmarks {
	if len(f.Hands) == 0 {
		return nil
	}
	return &f.Hands[0]
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
