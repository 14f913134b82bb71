// Package rig flies a free camera through the galaxy scene from the hand
// control channels: cursor steers laterally, expansion pushes forward or back.
package rig

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/golang/geo/r3"
)

// Config holds flight tuning.
type Config struct {
	LateralSpeed float64 // cursor unit -> world units per second on x/y
	ForwardSpeed float64 // full expansion swing -> world units per second on z
	Drag         float64 // velocity multiplier applied every tick
	MaxDistance  float64 // camera is pulled back inside this radius
	LookRate     float64 // heading lerp factor per tick
	LookAhead    float64 // distance of the look-at point

	// Spring parameters for velocity following its target.
	FPS       int
	Frequency float64
	Damping   float64

	Start r3.Vector
}

// DefaultConfig returns the reference flight tuning.
func DefaultConfig() Config {
	return Config{
		LateralSpeed: 25,
		ForwardSpeed: 40,
		Drag:         0.92,
		MaxDistance:  500,
		LookRate:     0.05,
		LookAhead:    20,
		FPS:          60,
		Frequency:    6,
		Damping:      1,
		Start:        r3.Vector{Z: 40},
	}
}

// Pose is the camera state handed to the renderer.
type Pose struct {
	Position r3.Vector `json:"position"`
	Velocity r3.Vector `json:"velocity"`
	LookAt   r3.Vector `json:"look_at"`
}

// Rig integrates camera flight. It is not safe for concurrent use.
type Rig struct {
	cfg     Config
	spring  harmonica.Spring
	pos     r3.Vector
	vel     r3.Vector
	accel   r3.Vector
	heading r3.Vector
}

// New creates a rig at cfg.Start facing -Z.
func New(cfg Config) *Rig {
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultConfig().FPS
	}
	return &Rig{
		cfg:     cfg,
		spring:  harmonica.NewSpring(harmonica.FPS(cfg.FPS), cfg.Frequency, cfg.Damping),
		pos:     cfg.Start,
		heading: r3.Vector{Z: -1},
	}
}

// Update advances flight by dt seconds. cursorX/cursorY are in [-1,1];
// expansion 0.5 hovers, above flies forward (-Z), below flies back.
// Non-finite or non-positive dt leaves the rig untouched.
func (r *Rig) Update(dt, cursorX, cursorY, expansion float64) Pose {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return r.Pose()
	}

	forward := (expansion - 0.5) * 2
	target := r3.Vector{
		X: cursorX * r.cfg.LateralSpeed,
		Y: cursorY * r.cfg.LateralSpeed,
		Z: -forward * r.cfg.ForwardSpeed,
	}
	if !finite(target) {
		return r.Pose()
	}

	r.vel.X, r.accel.X = r.spring.Update(r.vel.X, r.accel.X, target.X)
	r.vel.Y, r.accel.Y = r.spring.Update(r.vel.Y, r.accel.Y, target.Y)
	r.vel.Z, r.accel.Z = r.spring.Update(r.vel.Z, r.accel.Z, target.Z)
	r.vel = r.vel.Mul(r.cfg.Drag)

	r.pos = r.pos.Add(r.vel.Mul(dt))
	if d := r.pos.Norm(); d > r.cfg.MaxDistance {
		r.pos = r.pos.Mul(r.cfg.MaxDistance / d)
	}

	if r.vel.Norm() > 0.1 {
		r.heading = r.heading.Add(r.vel.Normalize().Sub(r.heading).Mul(r.cfg.LookRate))
		if r.heading.Norm() > 0 {
			r.heading = r.heading.Normalize()
		}
	}

	return r.Pose()
}

// Pose returns the current camera pose.
func (r *Rig) Pose() Pose {
	return Pose{
		Position: r.pos,
		Velocity: r.vel,
		LookAt:   r.pos.Add(r.heading.Mul(r.cfg.LookAhead)),
	}
}

// Reset returns the rig to its start position at rest.
func (r *Rig) Reset() {
	r.pos = r.cfg.Start
	r.vel = r3.Vector{}
	r.accel = r3.Vector{}
	r.heading = r3.Vector{Z: -1}
}

func finite(v r3.Vector) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
