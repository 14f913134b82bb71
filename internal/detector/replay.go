package detector

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// ScriptHand is one hand in a replay script: either a named pose shifted by
// (dx, dy) or an explicit set of 21 points.
type ScriptHand struct {
	Pose   string    `json:"pose,omitempty"`
	DX     float64   `json:"dx,omitempty"`
	DY     float64   `json:"dy,omitempty"`
	Points []Point3D `json:"points,omitempty"`
}

// ScriptFrame lists the hands visible in one captured frame.
type ScriptFrame struct {
	Hands []ScriptHand `json:"hands"`
}

func (h ScriptHand) landmarks() (HandLandmarks, error) {
	if len(h.Points) > 0 {
		if len(h.Points) != NumLandmarks {
			return HandLandmarks{}, fmt.Errorf("hand has %d points, want %d", len(h.Points), NumLandmarks)
		}
		var out HandLandmarks
		copy(out.Points[:], h.Points)
		out.Handedness = "Right"
		out.Score = 1
		return out.Translate(h.DX, h.DY), nil
	}

	switch h.Pose {
	case "open", "":
		return OpenPalmLandmarks().Translate(h.DX, h.DY), nil
	case "fist":
		return FistLandmarks().Translate(h.DX, h.DY), nil
	default:
		return HandLandmarks{}, fmt.Errorf("unknown pose %q", h.Pose)
	}
}

// ParseScript decodes a JSON array of ScriptFrame into per-frame hands.
func ParseScript(r io.Reader) ([][]HandLandmarks, error) {
	var script []ScriptFrame
	if err := json.NewDecoder(r).Decode(&script); err != nil {
		return nil, fmt.Errorf("decode replay script: %w", err)
	}

	frames := make([][]HandLandmarks, len(script))
	for i, f := range script {
		for j, h := range f.Hands {
			lm, err := h.landmarks()
			if err != nil {
				return nil, fmt.Errorf("frame %d hand %d: %w", i, j, err)
			}
			frames[i] = append(frames[i], lm)
		}
	}
	return frames, nil
}

// LoadScript reads a replay script from path.
func LoadScript(path string) ([][]HandLandmarks, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseScript(f)
}

// ReplayDetector plays back scripted hands, one script frame per Detect call,
// regardless of the image. It drives the app without a camera or MediaPipe.
type ReplayDetector struct {
	mu     sync.Mutex
	frames [][]HandLandmarks
	next   int
	loop   bool
	closed bool
}

// NewReplayDetector plays frames once, or forever when loop is set.
func NewReplayDetector(frames [][]HandLandmarks, loop bool) *ReplayDetector {
	return &ReplayDetector{frames: frames, loop: loop}
}

// Detect returns the next scripted frame. After the script ends (without
// loop) it reports no hands.
func (d *ReplayDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrUnavailable
	}
	if d.next >= len(d.frames) {
		if !d.loop || len(d.frames) == 0 {
			return nil, nil
		}
		d.next = 0
	}
	hands := d.frames[d.next]
	d.next++

	out := make([]HandLandmarks, len(hands))
	copy(out, hands)
	return out, nil
}

// Done reports whether a non-looping script has been fully played.
func (d *ReplayDetector) Done() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.loop && d.next >= len(d.frames)
}

func (d *ReplayDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
