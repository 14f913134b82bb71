// Package control composes the gesture processors, the morph buffer and the
// camera rig behind one mutex-guarded ControlState.
package control

import (
	"log"
	"math"
	"sync"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/morph"
	"github.com/ayusman/mudra/internal/rig"
	"github.com/ayusman/mudra/internal/shape"
	"github.com/ayusman/mudra/internal/starfield"
)

// Config bundles the configuration of every component the controller drives.
type Config struct {
	Gesture   gesture.Config
	Morph     morph.Config
	Rig       rig.Config
	Starfield starfield.Config

	// SwipeStep is the rotation added per swipe, in radians.
	SwipeStep float64

	Shape shape.Kind
	Color string
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Gesture:   gesture.DefaultConfig(),
		Morph:     morph.DefaultConfig(),
		Rig:       rig.DefaultConfig(),
		Starfield: starfield.DefaultConfig(),
		SwipeStep: math.Pi / 2,
		Shape:     shape.Sphere,
		Color:     DefaultColor,
	}
}

// State is the snapshot of every control channel.
type State struct {
	Shape      shape.Kind        `json:"shape"`
	Color      string            `json:"color"`
	Expansion  float64           `json:"expansion"`
	Rotation   float64           `json:"rotation"`
	Smoothed   float64           `json:"smoothed_rotation"`
	Cursor     gesture.Vec2      `json:"cursor"`
	Velocity   gesture.Vec2      `json:"velocity"`
	HandActive bool              `json:"hand_active"`
	Hands      int               `json:"hands"`
	LastSwipe  gesture.Direction `json:"last_swipe,omitempty"`
	Camera     rig.Pose          `json:"camera"`
	Elapsed    float64           `json:"elapsed"`
	Frames     uint64            `json:"frames"`
	Ticks      uint64            `json:"ticks"`
}

// Controller owns the control state. Detector frames and render ticks may
// arrive from different goroutines; all mutation happens under one mutex.
type Controller struct {
	mu sync.Mutex

	cfg      Config
	openness *gesture.OpennessEstimator
	tracker  *gesture.PositionTracker
	swipe    *gesture.SwipeDetector
	buffer   *morph.Buffer
	rig      *rig.Rig
	stars    *starfield.Field
	state    State

	onSwipe []func(gesture.Direction, State)
	onShape []func(shape.Kind, State)
}

// New creates a controller and samples the initial shape.
func New(cfg Config) (*Controller, error) {
	if err := cfg.Gesture.Validate(); err != nil {
		return nil, err
	}
	color := DefaultColor
	if cfg.Color != "" {
		c, err := NormalizeColor(cfg.Color)
		if err != nil {
			return nil, err
		}
		color = c
	}

	c := &Controller{
		cfg:      cfg,
		openness: gesture.NewOpennessEstimator(cfg.Gesture),
		tracker:  gesture.NewPositionTracker(cfg.Gesture),
		swipe:    gesture.NewSwipeDetector(cfg.Gesture),
		buffer:   morph.New(cfg.Morph),
		rig:      rig.New(cfg.Rig),
		stars:    starfield.New(cfg.Starfield),
	}
	c.state.Shape = c.buffer.RecomputeTargets(cfg.Shape)
	c.state.Color = color
	c.state.Camera = c.rig.Pose()
	return c, nil
}

// OnSwipe registers fn to be called after every swipe. Callbacks run on the
// detector goroutine after the state lock is released and must not block.
func (c *Controller) OnSwipe(fn func(gesture.Direction, State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSwipe = append(c.onSwipe, fn)
}

// OnShape registers fn to be called after every shape change.
func (c *Controller) OnShape(fn func(shape.Kind, State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onShape = append(c.onShape, fn)
}

// OnDetectorFrame feeds one landmark frame through the gesture processors.
// A swipe adds +SwipeStep (left) or -SwipeStep (right) to the rotation target.
func (c *Controller) OnDetectorFrame(f detector.Frame) (gesture.Direction, bool) {
	c.mu.Lock()

	hand := f.Primary()
	c.state.Frames++
	c.state.Hands = len(f.Hands)
	c.state.Expansion = c.openness.Estimate(f.Hands)
	c.state.Cursor, c.state.Velocity = c.tracker.Update(hand, f.Timestamp)
	c.state.HandActive = hand != nil

	var x float64
	if hand != nil {
		x = hand.Points[detector.MiddleMCP].X
	}
	dir, swiped := c.swipe.Observe(x, hand != nil, f.Timestamp)
	if swiped {
		if dir == gesture.Left {
			c.state.Rotation += c.cfg.SwipeStep
		} else {
			c.state.Rotation -= c.cfg.SwipeStep
		}
		c.state.LastSwipe = dir
	}

	snapshot := c.state
	callbacks := c.onSwipe
	c.mu.Unlock()

	if swiped {
		log.Printf("control: swipe %s, rotation target %.3f", dir, snapshot.Rotation)
		for _, fn := range callbacks {
			fn(dir, snapshot)
		}
	}
	return dir, swiped
}

// Tick advances the particle buffer, the starfield and, in galaxy mode, the
// camera rig by dt seconds. A stalled or invalid dt leaves particles where they
// are; Tick reports whether the particles moved.
func (c *Controller) Tick(dt float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := c.state.Elapsed + dt
	if !c.buffer.Advance(dt, c.state.Expansion, c.state.Rotation, elapsed) {
		return false
	}
	c.state.Elapsed = elapsed
	c.state.Smoothed = c.buffer.Rotation()
	c.state.Ticks++

	if c.state.Shape == shape.Galaxy {
		c.state.Camera = c.rig.Update(dt, c.state.Cursor.X, c.state.Cursor.Y, c.state.Expansion)
		c.stars.Advance(dt, c.state.HandActive)
	}
	return true
}

// SelectShape switches the target silhouette. Targets are resampled exactly
// once, synchronously, so the next Tick already morphs toward the new shape.
// Selecting the current shape is a no-op. The applied kind is returned.
func (c *Controller) SelectShape(k shape.Kind) shape.Kind {
	c.mu.Lock()

	k = shape.Normalize(k)
	if k == c.state.Shape {
		c.mu.Unlock()
		return k
	}

	c.state.Shape = c.buffer.RecomputeTargets(k)
	if c.state.Shape != shape.Galaxy {
		c.rig.Reset()
		c.state.Camera = c.rig.Pose()
	}

	snapshot := c.state
	callbacks := c.onShape
	c.mu.Unlock()

	log.Printf("control: shape %s", snapshot.Shape)
	for _, fn := range callbacks {
		fn(snapshot.Shape, snapshot)
	}
	return snapshot.Shape
}

// SetColor sets the particle colour; it must be #rrggbb.
func (c *Controller) SetColor(color string) error {
	normalized, err := NormalizeColor(color)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Color = normalized
	return nil
}

// SetCalibration replaces the gesture calibration. The processors keep their
// history, so the cursor continues from where it is.
func (c *Controller) SetCalibration(g gesture.Config) error {
	if err := g.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Gesture = g
	c.openness.SetConfig(g)
	c.tracker.SetConfig(g)
	c.swipe.SetConfig(g)
	return nil
}

// Calibration returns the active gesture calibration.
func (c *Controller) Calibration() gesture.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Gesture
}

// Snapshot returns a copy of the control state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// WithPositions calls fn with the live particle buffer (flat x,y,z) and the
// smoothed rotation. The buffer is only valid for the duration of fn.
func (c *Controller) WithPositions(fn func(positions []float32, rotation float64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.buffer.Positions(), c.buffer.Rotation())
}

// WithStars calls fn with the starfield under the state lock.
func (c *Controller) WithStars(fn func(f *starfield.Field)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.stars)
}
