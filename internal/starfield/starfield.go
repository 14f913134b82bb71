// Package starfield generates the background stars shown behind the galaxy
// silhouette and animates their twinkle and slow drift.
package starfield

import (
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r3"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/ayusman/mudra/internal/shape"
)

// Config holds starfield parameters.
type Config struct {
	Count        int
	MinRadius    float64
	RadiusSpread float64

	// TwinkleAmplitude is the largest opacity swing around a star's base.
	TwinkleAmplitude float64
	// TwinkleRate scales time into the noise domain.
	TwinkleRate float64
	// OpacityFloor is the dimmest a star ever gets.
	OpacityFloor float64

	// Drift is the field rotation in radians per second about (x, y).
	DriftX, DriftY float64
	// IdleDrift scales drift while no hand is tracked.
	IdleDrift float64

	Seed uint64
}

// DefaultConfig returns the reference starfield.
func DefaultConfig() Config {
	return Config{
		Count:            10000,
		MinRadius:        80,
		RadiusSpread:     150,
		TwinkleAmplitude: 0.15,
		TwinkleRate:      0.5,
		OpacityFloor:     0.2,
		DriftX:           0.0003,
		DriftY:           0.0005,
		IdleDrift:        0.2,
		Seed:             1,
	}
}

// Star is one background star. Color is linear RGB in [0,1].
type Star struct {
	Position r3.Vector  `json:"position"`
	Color    [3]float64 `json:"color"`
	Size     float64    `json:"size"`
	Base     float64    `json:"base_opacity"`
}

// Field is a fixed set of stars plus animation state. It is not safe for
// concurrent use.
type Field struct {
	cfg      Config
	stars    []Star
	noise    opensimplex.Noise
	clock    float64
	rotation r3.Vector
}

// New generates cfg.Count stars on a thick shell around the origin.
func New(cfg Config) *Field {
	if cfg.Count < 0 {
		cfg.Count = 0
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1))

	f := &Field{
		cfg:   cfg,
		stars: make([]Star, cfg.Count),
		noise: opensimplex.NewNormalized(int64(cfg.Seed)),
	}
	for i := range f.stars {
		f.stars[i] = newStar(rng, cfg)
	}
	return f
}

func newStar(rng *rand.Rand, cfg Config) Star {
	radius := cfg.MinRadius + rng.Float64()*cfg.RadiusSpread
	s := Star{Position: shape.UnitDirection(rng).Mul(radius)}

	// Spectral class, most common first.
	switch class := rng.Float64(); {
	case class < 0.60:
		s.Color = [3]float64{1, 0.95 + rng.Float64()*0.05, 0.85 + rng.Float64()*0.15}
	case class < 0.75:
		s.Color = [3]float64{0.7 + rng.Float64()*0.3, 0.8 + rng.Float64()*0.2, 1}
	case class < 0.85:
		s.Color = [3]float64{1, 0.5 + rng.Float64()*0.3, 0.3 + rng.Float64()*0.2}
	case class < 0.95:
		s.Color = [3]float64{1, 1, 1}
	default:
		s.Color = [3]float64{0.6, 0.7, 1}
	}

	switch size := rng.Float64(); {
	case size < 0.70:
		s.Size = 0.5 + rng.Float64()
		s.Base = 0.4 + rng.Float64()*0.3
	case size < 0.90:
		s.Size = 1.5 + rng.Float64()*2
		s.Base = 0.6 + rng.Float64()*0.3
	case size < 0.97:
		s.Size = 3 + rng.Float64()*2
		s.Base = 0.8 + rng.Float64()*0.2
	default:
		s.Size = 5 + rng.Float64()*3
		s.Base = 0.9 + rng.Float64()*0.1
	}
	return s
}

// Advance moves the twinkle clock and the field drift by dt seconds. Twinkle
// always runs; drift slows while no hand is active.
func (f *Field) Advance(dt float64, handActive bool) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return
	}
	f.clock += dt

	speed := 1.0
	if !handActive {
		speed = f.cfg.IdleDrift
	}
	f.rotation.X += dt * f.cfg.DriftX * speed
	f.rotation.Y += dt * f.cfg.DriftY * speed
}

// Opacity returns the current opacity of star i.
func (f *Field) Opacity(i int) float64 {
	n := f.noise.Eval2(float64(i)*0.37, f.clock*f.cfg.TwinkleRate)
	twinkle := (n*2 - 1) * f.cfg.TwinkleAmplitude
	return math.Min(1, math.Max(f.cfg.OpacityFloor, f.stars[i].Base+twinkle))
}

// Opacities fills dst (resized as needed) with every star's current opacity.
func (f *Field) Opacities(dst []float64) []float64 {
	dst = dst[:0]
	for i := range f.stars {
		dst = append(dst, f.Opacity(i))
	}
	return dst
}

// Stars returns the generated stars. The slice must not be modified.
func (f *Field) Stars() []Star {
	return f.stars
}

// Rotation returns the accumulated field drift in radians about x and y.
func (f *Field) Rotation() (x, y float64) {
	return f.rotation.X, f.rotation.Y
}

// Clock returns the twinkle time in seconds.
func (f *Field) Clock() float64 {
	return f.clock
}
