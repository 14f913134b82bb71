package gesture

import "github.com/ayusman/mudra/internal/detector"

// OpennessEstimator derives the expansion scalar from up to two hands.
type OpennessEstimator struct {
	cfg Config
}

// NewOpennessEstimator creates an estimator with the given calibration.
func NewOpennessEstimator(cfg Config) *OpennessEstimator {
	return &OpennessEstimator{cfg: cfg}
}

// SetConfig swaps the calibration.
func (e *OpennessEstimator) SetConfig(cfg Config) {
	e.cfg = cfg
}

// HandOpenness returns how extended one hand's fingers are, in [0,1]. It is the
// mean image-plane distance from the wrist to the five fingertips, remapped
// from the fist-to-open range.
func (e *OpennessEstimator) HandOpenness(h *detector.HandLandmarks) float64 {
	wrist := h.Points[detector.Wrist]
	sum := 0.0
	for _, tip := range detector.Fingertips {
		sum += detector.Distance2D(wrist, h.Points[tip])
	}
	mean := sum / float64(len(detector.Fingertips))
	return remap(mean, e.cfg.FistSpread, e.cfg.OpenSpread)
}

// Estimate returns the expansion scalar in [0,1]. No hands gives exactly 0.
// With two hands the wrist separation dominates and openness modulates it:
// distance * (0.5 + 0.5*meanOpenness). Hands beyond the second are ignored.
func (e *OpennessEstimator) Estimate(hands []detector.HandLandmarks) float64 {
	var result float64
	switch len(hands) {
	case 0:
		return 0
	case 1:
		result = e.HandOpenness(&hands[0])
	default:
		a, b := &hands[0], &hands[1]
		spread := detector.Distance2D(a.Points[detector.Wrist], b.Points[detector.Wrist])
		distance := remap(spread, e.cfg.HandsNear, e.cfg.HandsFar)
		mean := (e.HandOpenness(a) + e.HandOpenness(b)) / 2
		result = distance * (0.5 + 0.5*mean)
	}

	if !finite(result) {
		return 0
	}
	return clamp(result, 0, 1)
}
