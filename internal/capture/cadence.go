package capture

import "time"

// Cadence picks the capture rate: ActiveFPS as soon as motion or a hand is
// seen, IdleFPS once nothing has happened for IdleAfter.
type Cadence struct {
	idleFPS      int
	activeFPS    int
	idleAfter    time.Duration
	active       bool
	lastActivity time.Time
}

// NewCadence starts in idle mode.
func NewCadence(cfg Config) *Cadence {
	d := DefaultConfig()
	if cfg.IdleFPS <= 0 {
		cfg.IdleFPS = d.IdleFPS
	}
	if cfg.ActiveFPS <= 0 {
		cfg.ActiveFPS = d.ActiveFPS
	}
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = d.IdleAfter
	}
	return &Cadence{idleFPS: cfg.IdleFPS, activeFPS: cfg.ActiveFPS, idleAfter: cfg.IdleAfter}
}

// Observe records one captured frame and returns the rate to use next and
// whether it changed.
func (c *Cadence) Observe(motion, hands bool, now time.Time) (fps int, changed bool) {
	switch {
	case motion || hands:
		c.lastActivity = now
		if !c.active {
			c.active = true
			return c.activeFPS, true
		}
	case c.active && now.Sub(c.lastActivity) > c.idleAfter:
		c.active = false
		return c.idleFPS, true
	}
	return c.FPS(), false
}

// FPS returns the current rate.
func (c *Cadence) FPS() int {
	if c.active {
		return c.activeFPS
	}
	return c.idleFPS
}

// Active reports whether the cadence is in active mode.
func (c *Cadence) Active() bool {
	return c.active
}

// Interval returns the frame period for the current rate.
func (c *Cadence) Interval() time.Duration {
	return time.Second / time.Duration(c.FPS())
}
