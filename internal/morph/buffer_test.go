package morph

import (
	"math"
	"slices"
	"testing"

	"github.com/ayusman/mudra/internal/shape"
)

func newTestBuffer(count int) *Buffer {
	cfg := DefaultConfig()
	cfg.Count = count
	cfg.Seed = 42
	return New(cfg)
}

func maxGap(b *Buffer, scale float64) float64 {
	worst := 0.0
	for i := 0; i < b.Len(); i++ {
		worst = math.Max(worst, b.Live(i).Sub(b.Target(i).Mul(scale)).Norm())
	}
	return worst
}

func TestNew_Defaults(t *testing.T) {
	b := New(Config{Seed: 1})

	if b.Len() != DefaultCount {
		t.Fatalf("expected %d particles, got %d", DefaultCount, b.Len())
	}
	if len(b.Positions()) != DefaultCount*3 {
		t.Fatalf("expected %d floats, got %d", DefaultCount*3, len(b.Positions()))
	}
	if b.Kind() != shape.Sphere {
		t.Errorf("expected initial kind sphere, got %v", b.Kind())
	}
	for i := 0; i < b.Len(); i++ {
		if p := b.Phase(i); p < 0 || p >= 1 {
			t.Fatalf("phase %d = %f outside [0, 1)", i, p)
		}
		if r := b.Target(i).Norm(); math.Abs(r-shape.SphereRadius) > 1e-9 {
			t.Fatalf("target %d radius %f, want sphere", i, r)
		}
	}
}

func TestNew_PartialConfig(t *testing.T) {
	b := New(Config{Count: 16, Seed: 3})

	want := DefaultConfig()
	want.Count = 16
	want.Seed = 3
	if b.cfg != want {
		t.Errorf("config = %+v, want %+v", b.cfg, want)
	}

	start := maxGap(b, 1)
	for i := 0; i < 100; i++ {
		b.Advance(0.016, 0, 0, float64(i)*0.016)
	}
	if gap := maxGap(b, 1); gap >= start/2 {
		t.Errorf("gap went from %f to %f, particles should move toward their targets", start, gap)
	}
}

func TestAdvance_ConvergesGeometrically(t *testing.T) {
	b := newTestBuffer(500)
	b.RecomputeTargets(shape.Explosion)

	prev := maxGap(b, 1)
	for step := 0; step < 300; step++ {
		if !b.Advance(1.0/60, 0, 0, 0) {
			t.Fatalf("step %d unexpectedly skipped", step)
		}
		gap := maxGap(b, 1)
		if gap > prev+1e-6 {
			t.Fatalf("step %d: gap grew from %f to %f", step, prev, gap)
		}
		prev = gap
	}

	if prev > 1e-3 {
		t.Errorf("expected convergence below 1e-3, gap is %f", prev)
	}
}

func TestAdvance_LerpIsCapped(t *testing.T) {
	b := newTestBuffer(10)
	b.RecomputeTargets(shape.Explosion)

	before := b.Live(0)
	target := b.Target(0)

	// 3 * 0.5 = 1.5 would overshoot; the factor is capped at 0.1.
	b.Advance(0.5, 0, 0, 0)

	want := before.Add(target.Sub(before).Mul(0.1))
	if got := b.Live(0); got.Sub(want).Norm() > 1e-5 {
		t.Errorf("expected %v after capped step, got %v", want, got)
	}
}

func TestAdvance_SkipsInvalidDelta(t *testing.T) {
	tests := []struct {
		name  string
		delta float64
	}{
		{name: "nan", delta: math.NaN()},
		{name: "inf", delta: math.Inf(1)},
		{name: "negative", delta: -0.016},
		{name: "stall", delta: 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuffer(100)
			b.Advance(1.0/60, 0.3, 1, 0)
			before := slices.Clone(b.Positions())
			rotation := b.Rotation()

			if b.Advance(tt.delta, 0.5, 2, 1) {
				t.Fatal("expected frame to be skipped")
			}
			if !slices.Equal(before, b.Positions()) {
				t.Error("live positions changed on skipped frame")
			}
			if b.Rotation() != rotation {
				t.Errorf("rotation changed on skipped frame: %f -> %f", rotation, b.Rotation())
			}
		})
	}
}

func TestAdvance_NonFiniteInputsHoldLastGood(t *testing.T) {
	a := newTestBuffer(200)
	b := newTestBuffer(200)

	a.Advance(1.0/60, 0.5, 1, 0.25)
	b.Advance(1.0/60, 0.5, 1, 0.25)

	a.Advance(1.0/60, 0.5, 1, 0.25)
	b.Advance(1.0/60, math.NaN(), math.Inf(-1), math.NaN())

	if !slices.Equal(a.Positions(), b.Positions()) {
		t.Error("non-finite expansion should reuse the last good value")
	}
	if a.Rotation() != b.Rotation() {
		t.Errorf("rotation %f != %f", a.Rotation(), b.Rotation())
	}
	for _, v := range b.Positions() {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatal("live buffer contains a non-finite value")
		}
	}
}

func TestAdvance_RotationSmoothing(t *testing.T) {
	b := newTestBuffer(10)

	b.Advance(0.1, 0, math.Pi/2, 0)
	if want := math.Pi / 2 * 0.2; math.Abs(b.Rotation()-want) > 1e-12 {
		t.Errorf("rotation after one step = %f, want %f", b.Rotation(), want)
	}

	// delta*2 is clamped to 1, so a long frame lands on the target.
	b.Advance(0.9, 0, math.Pi/2, 0)
	if math.Abs(b.Rotation()-math.Pi/2) > 1e-12 {
		t.Errorf("rotation = %f, want %f", b.Rotation(), math.Pi/2)
	}
}

func TestAdvance_ExpansionScalesTargets(t *testing.T) {
	tests := []struct {
		kind      shape.Kind
		expansion float64
		scale     float64
	}{
		{kind: shape.Explosion, expansion: 1, scale: 3},
		{kind: shape.Explosion, expansion: 0.5, scale: 2},
		{kind: shape.Explosion, expansion: 7, scale: 3},
		{kind: shape.Explosion, expansion: -1, scale: 1},
	}

	for _, tt := range tests {
		b := newTestBuffer(100)
		b.RecomputeTargets(tt.kind)
		for step := 0; step < 400; step++ {
			b.Advance(1.0/30, tt.expansion, 0, 0)
		}
		if gap := maxGap(b, tt.scale); gap > 1e-3 {
			t.Errorf("%v expansion %.1f: expected scale %.1f, gap %f", tt.kind, tt.expansion, tt.scale, gap)
		}
	}
}

func TestAdvance_JitterOnNonBurstShapes(t *testing.T) {
	b := newTestBuffer(50)
	b.RecomputeTargets(shape.Heart)

	const elapsed = 1.3
	for step := 0; step < 400; step++ {
		b.Advance(1.0/30, 0, 0, elapsed)
	}

	for i := 0; i < b.Len(); i++ {
		phase := elapsed + b.Phase(i)*10
		want := b.Target(i)
		want.X += math.Sin(phase) * 0.05
		want.Y += math.Cos(phase) * 0.05
		if d := b.Live(i).Sub(want).Norm(); d > 1e-3 {
			t.Fatalf("particle %d: %f away from jittered target", i, d)
		}
	}
}

func TestRecomputeTargets_LiveStaysContinuous(t *testing.T) {
	b := newTestBuffer(300)
	b.RecomputeTargets(shape.Heart)
	for step := 0; step < 20; step++ {
		b.Advance(1.0/60, 0.2, 0, float64(step)/60)
	}

	heart := make([]shape.Point3, b.Len())
	for i := range heart {
		heart[i] = b.Target(i)
	}
	before := slices.Clone(b.Positions())

	if got := b.RecomputeTargets(shape.Flower); got != shape.Flower {
		t.Fatalf("expected flower, got %v", got)
	}
	if !slices.Equal(before, b.Positions()) {
		t.Fatal("recomputing targets must not move live particles")
	}

	changed := 0
	for i := range heart {
		if b.Target(i) != heart[i] {
			changed++
		}
	}
	if changed == 0 {
		t.Fatal("targets were not resampled")
	}

	// One frame moves each particle by at most the capped fraction of its gap.
	gaps := make([]float64, b.Len())
	for i := range gaps {
		gaps[i] = b.Live(i).Sub(b.Target(i)).Norm()
	}
	b.Advance(1.0/60, 0, 0, 0)
	for i := range gaps {
		moved := b.Live(i).Sub(shape.Point3{
			X: float64(before[i*3]), Y: float64(before[i*3+1]), Z: float64(before[i*3+2]),
		}).Norm()
		if moved > 0.1*(gaps[i]+0.1)+1e-5 {
			t.Fatalf("particle %d jumped %f with gap %f", i, moved, gaps[i])
		}
	}
}

func TestRecomputeTargets_InvalidKind(t *testing.T) {
	b := newTestBuffer(10)
	if got := b.RecomputeTargets(shape.Kind(42)); got != shape.Sphere {
		t.Errorf("expected fallback to sphere, got %v", got)
	}
}
