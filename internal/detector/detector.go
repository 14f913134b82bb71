package detector

import (
	"errors"
	"time"

	"gocv.io/x/gocv"
)

// ErrUnavailable is returned when the landmark detector cannot be brought up.
// It is a terminal setup failure: no control signal can be produced without it.
var ErrUnavailable = errors.New("hand detector unavailable")

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ScriptPath overrides the lookup of mediapipe_service.py.
	ScriptPath string

	// PythonPath overrides the interpreter; empty means a venv python or python3.
	PythonPath string

	// IdleTimeout stops the detector process after this long without frames.
	// It is restarted on the next Detect call.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        MaxHands,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}
