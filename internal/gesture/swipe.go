package gesture

import (
	"math"
	"time"
)

// SwipeDetector is an edge-triggered Idle/Cooling state machine over the
// primary hand's horizontal position. Cooling ends by timestamp, not by frame
// count.
type SwipeDetector struct {
	cfg       Config
	lastX     float64
	hasLast   bool
	coolUntil time.Time
}

// NewSwipeDetector creates an idle detector.
func NewSwipeDetector(cfg Config) *SwipeDetector {
	return &SwipeDetector{cfg: cfg}
}

// Observe feeds one detector frame. When present is false the previous
// position is forgotten so no delta spans a tracking gap; the cooldown keeps
// running. At most one swipe is reported per cooldown window.
func (s *SwipeDetector) Observe(x float64, present bool, now time.Time) (Direction, bool) {
	if !present || !finite(x) {
		s.hasLast = false
		return "", false
	}

	prev, had := s.lastX, s.hasLast
	s.lastX = x
	s.hasLast = true

	if !had || s.Cooling(now) {
		return "", false
	}

	deltaX := x - prev
	if math.Abs(deltaX) <= s.cfg.SwipeThreshold {
		return "", false
	}

	s.coolUntil = now.Add(s.cfg.SwipeCooldown)
	return s.cfg.Convention.Direction(deltaX), true
}

// Cooling reports whether a swipe was emitted less than one cooldown ago.
func (s *SwipeDetector) Cooling(now time.Time) bool {
	return now.Before(s.coolUntil)
}

// SetConfig swaps the calibration. The last position and any running
// cooldown are kept.
func (s *SwipeDetector) SetConfig(cfg Config) {
	s.cfg = cfg
}

// Reset forgets the last position and ends any cooldown.
func (s *SwipeDetector) Reset() {
	*s = SwipeDetector{cfg: s.cfg}
}
