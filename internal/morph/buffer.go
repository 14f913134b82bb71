// Package morph owns the live particle positions and advances them toward the
// active silhouette once per rendered frame.
package morph

import (
	"math"
	"math/rand/v2"

	"github.com/ayusman/mudra/internal/shape"
)

// DefaultCount is the number of particles in a cloud.
const DefaultCount = 8000

// Config holds the tuning constants for the morph step.
type Config struct {
	// Count is the fixed number of particles (default: 8000).
	Count int

	// LerpRate scales frame delta into the per-frame interpolation factor.
	LerpRate float64

	// MaxLerp caps the interpolation factor so a late frame cannot jump.
	MaxLerp float64

	// MaxFrameDelta is the largest delta in seconds that is still advanced.
	// Anything above is treated as a stall and skipped.
	MaxFrameDelta float64

	// RotationRate scales delta into the rotation smoothing factor.
	RotationRate float64

	// ExpansionGain scales targets by (1 + ExpansionGain*expansion).
	ExpansionGain float64

	// BurstGain replaces ExpansionGain for the Explosion silhouette.
	BurstGain float64

	// JitterAmplitude is the per-particle x/y oscillation amplitude.
	JitterAmplitude float64

	// PhaseSpread multiplies the random phase inside the oscillation.
	PhaseSpread float64

	// InitialSpread is the edge of the cube the live positions start in.
	InitialSpread float64

	// Seed makes target sampling and random phases reproducible. Zero picks a random seed.
	Seed uint64
}

// DefaultConfig returns a Config with the reference tuning.
func DefaultConfig() Config {
	return Config{
		Count:           DefaultCount,
		LerpRate:        3,
		MaxLerp:         0.1,
		MaxFrameDelta:   1,
		RotationRate:    2,
		ExpansionGain:   1.5,
		BurstGain:       2,
		JitterAmplitude: 0.05,
		PhaseSpread:     10,
		InitialSpread:   10,
	}
}

// Buffer is the particle set: live positions, target positions and random phases.
// It is not safe for concurrent use; callers serialize access.
type Buffer struct {
	cfg     Config
	rng     *rand.Rand
	kind    shape.Kind
	live    []float32
	targets []shape.Point3
	phases  []float64

	rotation      float64
	lastExpansion float64
	lastRotation  float64
	lastElapsed   float64
}

// New creates a Buffer with randomized live positions and sphere targets.
// Non-positive tuning fields take their DefaultConfig value.
func New(cfg Config) *Buffer {
	defaults := DefaultConfig()
	if cfg.Count <= 0 {
		cfg.Count = defaults.Count
	}
	if cfg.MaxLerp <= 0 || cfg.MaxLerp >= 1 {
		cfg.MaxLerp = defaults.MaxLerp
	}
	orDefault(&cfg.LerpRate, defaults.LerpRate)
	orDefault(&cfg.MaxFrameDelta, defaults.MaxFrameDelta)
	orDefault(&cfg.RotationRate, defaults.RotationRate)
	orDefault(&cfg.ExpansionGain, defaults.ExpansionGain)
	orDefault(&cfg.BurstGain, defaults.BurstGain)
	orDefault(&cfg.JitterAmplitude, defaults.JitterAmplitude)
	orDefault(&cfg.PhaseSpread, defaults.PhaseSpread)
	orDefault(&cfg.InitialSpread, defaults.InitialSpread)

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	b := &Buffer{
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		live:    make([]float32, cfg.Count*3),
		targets: make([]shape.Point3, cfg.Count),
		phases:  make([]float64, cfg.Count),
	}

	for i := range b.live {
		v := float32((b.rng.Float64() - 0.5) * cfg.InitialSpread)
		if v == 0 {
			v = 0.1
		}
		b.live[i] = v
	}
	for i := range b.phases {
		b.phases[i] = b.rng.Float64()
	}

	b.RecomputeTargets(shape.Sphere)
	return b
}

// RecomputeTargets resamples every target point for kind. Live positions are
// left where they are so the cloud morphs instead of cutting. Out-of-range kinds
// fall back to the sphere; the kind actually applied is returned.
func (b *Buffer) RecomputeTargets(kind shape.Kind) shape.Kind {
	b.kind = shape.Normalize(kind)
	shape.Fill(b.rng, b.kind, b.targets)
	return b.kind
}

// Advance moves every live particle toward its modulated target and eases the
// cloud rotation toward rotation. delta and elapsed are in seconds. A non-finite,
// negative or stalled delta skips the frame entirely; Advance reports whether the
// frame was applied.
func (b *Buffer) Advance(delta, expansion, rotation, elapsed float64) bool {
	if !finite(delta) || delta < 0 || delta > b.cfg.MaxFrameDelta {
		return false
	}

	if finite(expansion) {
		b.lastExpansion = clamp(expansion, 0, 1)
	}
	if finite(rotation) {
		b.lastRotation = rotation
	}
	if finite(elapsed) {
		b.lastElapsed = elapsed
	}
	expansion, rotation, elapsed = b.lastExpansion, b.lastRotation, b.lastElapsed

	b.rotation += (rotation - b.rotation) * math.Min(delta*b.cfg.RotationRate, 1)

	lerp := math.Min(b.cfg.LerpRate*delta, b.cfg.MaxLerp)

	burst := b.kind == shape.Explosion
	scale := 1 + b.cfg.ExpansionGain*expansion
	if burst {
		scale = 1 + b.cfg.BurstGain*expansion
	}

	for i, target := range b.targets {
		t := target.Mul(scale)
		if !burst {
			phase := elapsed + b.phases[i]*b.cfg.PhaseSpread
			t.X += math.Sin(phase) * b.cfg.JitterAmplitude
			t.Y += math.Cos(phase) * b.cfg.JitterAmplitude
		}

		ix := i * 3
		b.live[ix] += float32((t.X - float64(b.live[ix])) * lerp)
		b.live[ix+1] += float32((t.Y - float64(b.live[ix+1])) * lerp)
		b.live[ix+2] += float32((t.Z - float64(b.live[ix+2])) * lerp)
	}

	return true
}

// Positions returns the live buffer as flat x,y,z triples. The slice is updated
// in place by Advance; it is not a copy.
func (b *Buffer) Positions() []float32 {
	return b.live
}

// Live returns the live position of particle i.
func (b *Buffer) Live(i int) shape.Point3 {
	ix := i * 3
	return shape.Point3{X: float64(b.live[ix]), Y: float64(b.live[ix+1]), Z: float64(b.live[ix+2])}
}

// Target returns the unmodulated target of particle i.
func (b *Buffer) Target(i int) shape.Point3 {
	return b.targets[i]
}

// Phase returns the random phase of particle i, in [0, 1).
func (b *Buffer) Phase(i int) float64 {
	return b.phases[i]
}

// Len returns the particle count.
func (b *Buffer) Len() int {
	return len(b.targets)
}

// Kind returns the silhouette the targets were last sampled for.
func (b *Buffer) Kind() shape.Kind {
	return b.kind
}

// Rotation returns the smoothed rotation about the vertical axis, in radians.
func (b *Buffer) Rotation() float64 {
	return b.rotation
}

func orDefault(v *float64, d float64) {
	if *v <= 0 || !finite(*v) {
		*v = d
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
