package shape

import (
	"math"
	"math/rand/v2"
	"testing"
)

const testCount = 8000

func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func TestFill_AllShapesFiniteAndBounded(t *testing.T) {
	tests := []struct {
		kind      Kind
		maxRadius float64
	}{
		{kind: Sphere, maxRadius: SphereRadius + 1e-9},
		{kind: Heart, maxRadius: 3},
		{kind: Flower, maxRadius: 3.8},
		{kind: RingedPlanet, maxRadius: 3.6},
		{kind: SeatedFigure, maxRadius: 2.5},
		{kind: Explosion, maxRadius: 2.5 + 1e-9},
		{kind: Galaxy, maxRadius: 6},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			points := make([]Point3, testCount)
			Fill(newTestRand(), tt.kind, points)

			if len(points) != testCount {
				t.Fatalf("expected %d points, got %d", testCount, len(points))
			}

			for i, p := range points {
				if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) ||
					math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) || math.IsInf(p.Z, 0) {
					t.Fatalf("point %d is not finite: %v", i, p)
				}
				if r := p.Norm(); r > tt.maxRadius {
					t.Fatalf("point %d at radius %f exceeds bound %f", i, r, tt.maxRadius)
				}
			}
		})
	}
}

func TestSamplePoint_InvalidKindFallsBackToSphere(t *testing.T) {
	rng := newTestRand()

	for _, k := range []Kind{-1, numKinds, 99} {
		p := SamplePoint(rng, k, 0, 1)
		if math.Abs(p.Norm()-SphereRadius) > 1e-9 {
			t.Errorf("kind %d: expected point on default sphere, got radius %f", int(k), p.Norm())
		}
	}
}

func TestRingedPlanet_IndexSplit(t *testing.T) {
	points := make([]Point3, 1000)
	Fill(newTestRand(), RingedPlanet, points)

	for i, p := range points {
		if i < 400 {
			if math.Abs(p.Norm()-SphereRadius*0.8) > 1e-9 {
				t.Fatalf("index %d should be on the planet body, radius %f", i, p.Norm())
			}
			continue
		}
		ringRadius := math.Hypot(p.X, p.Z)
		if ringRadius < 2.0 || ringRadius > 3.5 {
			t.Fatalf("index %d ring radius %f outside [2.0, 3.5]", i, ringRadius)
		}
		if math.Abs(p.Y) > 0.05 {
			t.Fatalf("index %d ring thickness %f too large", i, p.Y)
		}
	}
}

func TestGalaxy_OrbitalRings(t *testing.T) {
	const total = 10000
	points := make([]Point3, total)
	Fill(newTestRand(), Galaxy, points)

	// Indices 100..1099 form eight concentric rings of 125 particles each.
	for i := 100; i < 1100; i++ {
		ring := (i - 100) / 125
		want := 0.5 + float64(ring)*0.4
		got := math.Hypot(points[i].X, points[i].Z)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("index %d: ring radius %f, want %f", i, got, want)
		}
	}

	for i := 0; i < 100; i++ {
		if points[i].Norm() > 0.3 {
			t.Fatalf("core index %d at radius %f", i, points[i].Norm())
		}
	}
}

// polarUniformity returns the largest relative deviation of cos(phi) histogram bins
// from the uniform expectation.
func polarUniformity(dirs []Point3, bins int) float64 {
	counts := make([]int, bins)
	for _, d := range dirs {
		cosPhi := d.Z / d.Norm()
		b := int((cosPhi + 1) / 2 * float64(bins))
		if b == bins {
			b--
		}
		counts[b]++
	}

	expected := float64(len(dirs)) / float64(bins)
	worst := 0.0
	for _, c := range counts {
		worst = math.Max(worst, math.Abs(float64(c)-expected)/expected)
	}
	return worst
}

func TestUnitDirection_UniformInCosPhi(t *testing.T) {
	const draws = 20000
	rng := newTestRand()

	dirs := make([]Point3, draws)
	naive := make([]Point3, draws)
	for i := range dirs {
		dirs[i] = UnitDirection(rng)
		naive[i] = Spherical(1, rng.Float64()*math.Pi, rng.Float64()*2*math.Pi)
	}

	if dev := polarUniformity(dirs, 10); dev > 0.1 {
		t.Errorf("inverse-CDF sampling deviates %.3f from uniform cos(phi)", dev)
	}

	// Naive phi=pi*u clusters at the poles; the check above must catch it.
	if dev := polarUniformity(naive, 10); dev < 0.2 {
		t.Errorf("naive sampling unexpectedly passed uniformity check (deviation %.3f)", dev)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		want   Kind
		wantOK bool
	}{
		{name: "heart", want: Heart, wantOK: true},
		{name: " Flower ", want: Flower, wantOK: true},
		{name: "saturn", want: RingedPlanet, wantOK: true},
		{name: "seated-figure", want: SeatedFigure, wantOK: true},
		{name: "fireworks", want: Explosion, wantOK: true},
		{name: "solarsystem", want: Galaxy, wantOK: true},
		{name: "cube", want: Sphere, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Parse(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestKind_TextRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		text, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error = %v", k, err)
		}
		var got Kind
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", text, err)
		}
		if got != k {
			t.Errorf("round trip of %v produced %v", k, got)
		}
	}

	var k Kind
	if err := k.UnmarshalText([]byte("dodecahedron")); err == nil {
		t.Error("expected error for unknown shape name")
	}
}
