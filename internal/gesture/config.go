// Package gesture turns noisy per-frame hand landmarks into stable control
// channels: an openness scalar, a smoothed cursor with velocity, and
// debounced left/right swipes.
package gesture

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Config holds the calibration constants for all three processors. The values
// are tuned heuristics and are meant to be adjusted per camera and user.
type Config struct {
	// FistSpread and OpenSpread bound the mean wrist-to-fingertip distance
	// that maps to openness 0 and 1.
	FistSpread float64 `json:"fist_spread"`
	OpenSpread float64 `json:"open_spread"`

	// HandsNear and HandsFar bound the wrist-to-wrist distance that maps to a
	// two-hand distance factor of 0 and 1.
	HandsNear float64 `json:"hands_near"`
	HandsFar  float64 `json:"hands_far"`

	Deadzone    float64 `json:"deadzone"`
	Smoothing   float64 `json:"smoothing"`
	MaxVelocity float64 `json:"max_velocity"`
	LossDamping float64 `json:"loss_damping"`
	SnapEpsilon float64 `json:"snap_epsilon"`

	SwipeThreshold float64         `json:"swipe_threshold"`
	SwipeCooldown  time.Duration   `json:"swipe_cooldown"`
	Convention     SwipeConvention `json:"convention"`
}

// DefaultConfig returns the reference calibration.
func DefaultConfig() Config {
	return Config{
		FistSpread:     0.05,
		OpenSpread:     0.25,
		HandsNear:      0.1,
		HandsFar:       0.6,
		Deadzone:       0.02,
		Smoothing:      0.3,
		MaxVelocity:    5,
		LossDamping:    0.9,
		SnapEpsilon:    0.01,
		SwipeThreshold: 0.05,
		SwipeCooldown:  500 * time.Millisecond,
		Convention:     PositiveIsLeft,
	}
}

// Validate reports calibration values that would make a processor misbehave.
func (c Config) Validate() error {
	switch {
	case !(c.OpenSpread > c.FistSpread):
		return fmt.Errorf("open spread %v must exceed fist spread %v", c.OpenSpread, c.FistSpread)
	case !(c.HandsFar > c.HandsNear):
		return fmt.Errorf("hands far %v must exceed hands near %v", c.HandsFar, c.HandsNear)
	case c.Smoothing <= 0 || c.Smoothing > 1:
		return fmt.Errorf("smoothing %v outside (0, 1]", c.Smoothing)
	case c.LossDamping < 0 || c.LossDamping >= 1:
		return fmt.Errorf("loss damping %v outside [0, 1)", c.LossDamping)
	case c.Deadzone < 0, c.MaxVelocity <= 0, c.SnapEpsilon < 0:
		return fmt.Errorf("deadzone, max velocity and snap epsilon must be non-negative")
	case c.SwipeThreshold <= 0:
		return fmt.Errorf("swipe threshold %v must be positive", c.SwipeThreshold)
	case c.SwipeCooldown < 0:
		return fmt.Errorf("swipe cooldown %v must not be negative", c.SwipeCooldown)
	}
	return nil
}

// Direction is a discrete swipe event.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

// SwipeConvention maps the sign of a horizontal landmark delta to a direction.
// Detector x grows to the right of the raw (un-mirrored) image, so which sign
// reads as "left" depends on whether the user sees a mirrored preview.
type SwipeConvention int

const (
	// PositiveIsLeft reports a positive x delta as Left.
	PositiveIsLeft SwipeConvention = iota
	// PositiveIsRight reports a positive x delta as Right.
	PositiveIsRight
)

func (c SwipeConvention) String() string {
	if c == PositiveIsRight {
		return "positive-right"
	}
	return "positive-left"
}

// Direction maps a delta that already crossed the threshold to a direction.
func (c SwipeConvention) Direction(deltaX float64) Direction {
	positive := deltaX > 0
	if c == PositiveIsRight {
		positive = !positive
	}
	if positive {
		return Left
	}
	return Right
}

// ParseSwipeConvention accepts "positive-left" or "positive-right".
func ParseSwipeConvention(s string) (SwipeConvention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "positive-left":
		return PositiveIsLeft, nil
	case "positive-right":
		return PositiveIsRight, nil
	}
	return PositiveIsLeft, fmt.Errorf("unknown swipe convention %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c SwipeConvention) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *SwipeConvention) UnmarshalText(text []byte) error {
	parsed, err := ParseSwipeConvention(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// remap maps v from [lo, hi] onto [0, 1], clamped.
func remap(v, lo, hi float64) float64 {
	return clamp((v-lo)/(hi-lo), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
