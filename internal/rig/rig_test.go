package rig

import (
	"math"
	"testing"
)

const dt = 1.0 / 60

func TestRig_HoverStaysPut(t *testing.T) {
	r := New(DefaultConfig())
	start := r.Pose().Position

	for i := 0; i < 120; i++ {
		r.Update(dt, 0, 0, 0.5)
	}

	if got := r.Pose().Position; got.Sub(start).Norm() > 1e-9 {
		t.Errorf("hovering rig drifted from %v to %v", start, got)
	}
}

func TestRig_Directions(t *testing.T) {
	tests := []struct {
		name      string
		cursorX   float64
		cursorY   float64
		expansion float64
		check     func(dx, dy, dz float64) bool
	}{
		{name: "open hand flies forward", expansion: 1, check: func(_, _, dz float64) bool { return dz < -1 }},
		{name: "fist flies back", expansion: 0, check: func(_, _, dz float64) bool { return dz > 1 }},
		{name: "cursor right strafes right", cursorX: 1, expansion: 0.5, check: func(dx, _, _ float64) bool { return dx > 1 }},
		{name: "cursor up climbs", cursorY: 1, expansion: 0.5, check: func(_, dy, _ float64) bool { return dy > 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(DefaultConfig())
			start := r.Pose().Position
			for i := 0; i < 60; i++ {
				r.Update(dt, tt.cursorX, tt.cursorY, tt.expansion)
			}
			d := r.Pose().Position.Sub(start)
			if !tt.check(d.X, d.Y, d.Z) {
				t.Errorf("unexpected displacement %v", d)
			}
		})
	}
}

func TestRig_VelocityBelowTarget(t *testing.T) {
	cfg := DefaultConfig()
	r := New(cfg)
	for i := 0; i < 600; i++ {
		r.Update(dt, 1, 0, 0.5)
	}
	if v := r.Pose().Velocity.X; v <= 0 || v > cfg.LateralSpeed {
		t.Errorf("velocity %f outside (0, %f]", v, cfg.LateralSpeed)
	}
}

func TestRig_MaxDistance(t *testing.T) {
	cfg := DefaultConfig()
	r := New(cfg)

	for i := 0; i < 3000; i++ {
		r.Update(dt, 1, 1, 0)
		if d := r.Pose().Position.Norm(); d > cfg.MaxDistance+1e-9 {
			t.Fatalf("tick %d: distance %f exceeds %f", i, d, cfg.MaxDistance)
		}
	}
	if d := r.Pose().Position.Norm(); math.Abs(d-cfg.MaxDistance) > 1e-6 {
		t.Errorf("expected rig pinned at max distance, got %f", d)
	}
}

func TestRig_InvalidInputs(t *testing.T) {
	r := New(DefaultConfig())
	r.Update(dt, 0.5, 0.5, 0.8)
	before := r.Pose()

	r.Update(math.NaN(), 1, 1, 1)
	r.Update(-dt, 1, 1, 1)
	r.Update(0, 1, 1, 1)
	r.Update(dt, math.Inf(1), 0, 0.5)
	r.Update(dt, 0, 0, math.NaN())

	if r.Pose() != before {
		t.Errorf("pose changed on invalid input: %v -> %v", before, r.Pose())
	}
}

func TestRig_LookAtFollowsFlight(t *testing.T) {
	r := New(DefaultConfig())
	for i := 0; i < 600; i++ {
		r.Update(dt, 1, 0, 0.5)
	}
	p := r.Pose()
	heading := p.LookAt.Sub(p.Position).Normalize()
	if heading.X < 0.9 {
		t.Errorf("expected heading to turn toward +X, got %v", heading)
	}

	r.Reset()
	if r.Pose().Position != DefaultConfig().Start {
		t.Errorf("Reset did not restore start position")
	}
}
