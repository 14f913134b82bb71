package gesture

import (
	"math"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// Vec2 is a 2D control value.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// PositionTracker smooths the primary hand's palm center into a cursor in
// [-1,1]x[-1,1] with up positive, and derives a clamped velocity.
type PositionTracker struct {
	cfg      Config
	cursor   Vec2
	velocity Vec2
	last     time.Time
	hasLast  bool
	active   bool
}

// NewPositionTracker creates a tracker at the origin.
func NewPositionTracker(cfg Config) *PositionTracker {
	return &PositionTracker{cfg: cfg}
}

// Update advances the tracker by one detector frame. A nil hand means tracking
// was lost: the cursor decays toward the origin and velocity drops to zero.
func (p *PositionTracker) Update(hand *detector.HandLandmarks, ts time.Time) (cursor, velocity Vec2) {
	if hand == nil {
		p.lose()
		return p.cursor, p.velocity
	}

	c := hand.PalmCenter()
	raw := Vec2{
		X: clamp((c.X-0.5)*2, -1, 1),
		Y: clamp(-(c.Y-0.5)*2, -1, 1),
	}
	if !finite(raw.X) || !finite(raw.Y) {
		p.lose()
		return p.cursor, p.velocity
	}

	prev := p.cursor
	delta := raw.sub(p.cursor)
	if math.Abs(delta.X) > p.cfg.Deadzone || math.Abs(delta.Y) > p.cfg.Deadzone {
		p.cursor.X += delta.X * p.cfg.Smoothing
		p.cursor.Y += delta.Y * p.cfg.Smoothing
	}

	p.velocity = Vec2{}
	if p.hasLast {
		if dt := ts.Sub(p.last).Seconds(); dt > 0 {
			moved := p.cursor.sub(prev)
			p.velocity = Vec2{
				X: clamp(moved.X/dt, -p.cfg.MaxVelocity, p.cfg.MaxVelocity),
				Y: clamp(moved.Y/dt, -p.cfg.MaxVelocity, p.cfg.MaxVelocity),
			}
		}
	}

	p.last = ts
	p.hasLast = true
	p.active = true
	return p.cursor, p.velocity
}

func (p *PositionTracker) lose() {
	p.cursor.X *= p.cfg.LossDamping
	p.cursor.Y *= p.cfg.LossDamping
	if math.Abs(p.cursor.X) < p.cfg.SnapEpsilon && math.Abs(p.cursor.Y) < p.cfg.SnapEpsilon {
		p.cursor = Vec2{}
	}
	p.velocity = Vec2{}
	p.hasLast = false
	p.active = false
}

// Cursor returns the smoothed cursor.
func (p *PositionTracker) Cursor() Vec2 { return p.cursor }

// Velocity returns the last computed velocity, in cursor units per second.
func (p *PositionTracker) Velocity() Vec2 { return p.velocity }

// Active reports whether the last update saw a hand.
func (p *PositionTracker) Active() bool { return p.active }

// SetConfig swaps the calibration and keeps the cursor, so a recalibration
// does not make it jump.
func (p *PositionTracker) SetConfig(cfg Config) {
	p.cfg = cfg
}

// Reset returns the tracker to the origin with no history.
func (p *PositionTracker) Reset() {
	*p = PositionTracker{cfg: p.cfg}
}
