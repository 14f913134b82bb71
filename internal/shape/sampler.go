package shape

import (
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r3"
)

// Point3 is a position in the particle cloud's working space.
type Point3 = r3.Vector

// SphereRadius is the common working radius every silhouette is normalized to.
const SphereRadius = 1.5

// Galaxy layout, as percentages of the particle count.
const (
	galaxyCorePct   = 1
	galaxyRingsPct  = 10
	galaxyBeltPct   = 15
	galaxyRingCount = 8
	galaxyArmCount  = 3
	galaxySpiralA   = 0.5
	galaxySpiralB   = 0.3
	galaxyArmTurns  = 2.5 * math.Pi
	galaxyEdge      = 5.5
)

// sampleFunc maps one particle index to a point on a silhouette.
// Each call may draw fresh numbers from rng.
type sampleFunc func(rng *rand.Rand, index, total int) Point3

var samplers = [numKinds]sampleFunc{
	Sphere:       sampleSphere,
	Heart:        sampleHeart,
	Flower:       sampleFlower,
	RingedPlanet: sampleRingedPlanet,
	SeatedFigure: sampleSeatedFigure,
	Explosion:    sampleExplosion,
	Galaxy:       sampleGalaxy,
}

// SamplePoint returns the point for index (of total) on the silhouette of kind k.
// Invalid kinds sample the default sphere.
func SamplePoint(rng *rand.Rand, k Kind, index, total int) Point3 {
	return samplers[Normalize(k)](rng, index, total)
}

// Fill resamples every entry of dst for kind k.
func Fill(rng *rand.Rand, k Kind, dst []Point3) {
	sample := samplers[Normalize(k)]
	for i := range dst {
		dst[i] = sample(rng, i, len(dst))
	}
}

// Spherical converts spherical coordinates to a point. Phi is the polar angle
// measured from +Z, theta the azimuth in the XY plane.
func Spherical(radius, phi, theta float64) Point3 {
	sinPhi := math.Sin(phi) * radius
	return Point3{
		X: sinPhi * math.Cos(theta),
		Y: sinPhi * math.Sin(theta),
		Z: math.Cos(phi) * radius,
	}
}

// UnitDirection draws a direction uniformly over the unit sphere. The polar angle
// uses the inverse CDF acos(2u-1) so the poles are not oversampled.
func UnitDirection(rng *rand.Rand) Point3 {
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(rng.Float64()*2 - 1)
	return Spherical(1, phi, theta)
}

func sampleSphere(rng *rand.Rand, _, _ int) Point3 {
	return UnitDirection(rng).Mul(SphereRadius)
}

func sampleHeart(rng *rand.Rand, _, _ int) Point3 {
	t := rng.Float64() * 2 * math.Pi
	s := math.Sin(t)
	x := 16 * s * s * s
	y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
	z := (rng.Float64()*2 - 1) * 4
	return Point3{X: x * 0.1, Y: y * 0.1, Z: z * 0.5}
}

func sampleFlower(rng *rand.Rand, _, _ int) Point3 {
	const (
		petals = 4
		base   = 1.5
		scale  = 1.5
		spread = math.Pi / 4
	)
	theta := rng.Float64() * 2 * math.Pi
	phi := (rng.Float64() - 0.5) * spread
	r := math.Cos(petals*theta) + base
	return Point3{
		X: scale * r * math.Cos(theta) * math.Cos(phi),
		Y: scale * r * math.Sin(theta) * math.Cos(phi),
		Z: scale * r * math.Sin(phi),
	}
}

func sampleRingedPlanet(rng *rand.Rand, index, total int) Point3 {
	if index < total*4/10 {
		return sampleSphere(rng, index, total).Mul(0.8)
	}
	theta := rng.Float64() * 2 * math.Pi
	r := 2.0 + rng.Float64()*1.5
	return Point3{
		X: r * math.Cos(theta),
		Y: 0.1 * (rng.Float64() - 0.5),
		Z: r * math.Sin(theta),
	}
}

func sampleSeatedFigure(rng *rand.Rand, index, total int) Point3 {
	region := rng.Float64()
	switch {
	case region < 0.15:
		p := sampleSphere(rng, index, total).Mul(0.4)
		p.Y += 1.2
		return p
	case region < 0.5:
		return sampleSphere(rng, index, total).Mul(0.7)
	}
	t := rng.Float64() * 2 * math.Pi
	rad := 1.2 * math.Sqrt(rng.Float64())
	return Point3{
		X: rad * math.Cos(t),
		Y: -0.8 + rng.Float64()*0.4,
		Z: rad * math.Sin(t) * 0.6,
	}
}

func sampleExplosion(rng *rand.Rand, _, _ int) Point3 {
	return UnitDirection(rng).Mul(0.5 + rng.Float64()*2)
}

func sampleGalaxy(rng *rand.Rand, index, total int) Point3 {
	coreEnd := total * galaxyCorePct / 100
	ringsEnd := total * (galaxyCorePct + galaxyRingsPct) / 100
	beltEnd := total * (galaxyCorePct + galaxyRingsPct + galaxyBeltPct) / 100

	switch {
	case index < coreEnd:
		return UnitDirection(rng).Mul(0.3 * math.Cbrt(rng.Float64()))

	case index < ringsEnd:
		ring := (index - coreEnd) * galaxyRingCount / (ringsEnd - coreEnd)
		r := 0.5 + float64(ring)*0.4
		theta := rng.Float64() * 2 * math.Pi
		return Point3{
			X: r * math.Cos(theta),
			Y: 0.02 * (rng.Float64() - 0.5),
			Z: r * math.Sin(theta),
		}

	case index < beltEnd:
		r := 3.6 + rng.Float64()*0.6
		theta := rng.Float64() * 2 * math.Pi
		return Point3{
			X: r * math.Cos(theta),
			Y: 0.1 * (rng.Float64() - 0.5),
			Z: r * math.Sin(theta),
		}
	}

	arm := index % galaxyArmCount
	theta := rng.Float64() * galaxyArmTurns
	r := galaxySpiralA*math.Exp(galaxySpiralB*theta) + (rng.Float64()-0.5)*0.4
	angle := theta + 2*math.Pi/galaxyArmCount*float64(arm)
	taper := math.Max(0, 1-r/galaxyEdge)
	return Point3{
		X: r * math.Cos(angle),
		Y: (rng.Float64() - 0.5) * 0.5 * taper,
		Z: r * math.Sin(angle),
	}
}
