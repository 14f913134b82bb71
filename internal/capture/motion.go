package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// MotionConfig tunes frame-difference motion detection.
type MotionConfig struct {
	// BlurSize is the odd Gaussian kernel edge applied before differencing.
	BlurSize int
	// PixelDelta is the grey-level difference that marks a pixel as changed.
	PixelDelta float32
	// ChangePercent is the share of changed pixels, in percent, that counts as motion.
	ChangePercent float64
}

// DefaultMotionConfig returns a 21x21 blur, 25 grey levels and 1% of pixels.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{BlurSize: 21, PixelDelta: 25, ChangePercent: 1}
}

// MotionDetector reports whether consecutive frames differ enough to wake the
// capture loop from idle cadence.
type MotionDetector struct {
	mu       sync.Mutex
	cfg      MotionConfig
	prevGray gocv.Mat
	primed   bool
}

// NewMotionDetector creates a detector with no baseline frame.
func NewMotionDetector(cfg MotionConfig) *MotionDetector {
	d := DefaultMotionConfig()
	if cfg.BlurSize <= 0 || cfg.BlurSize%2 == 0 {
		cfg.BlurSize = d.BlurSize
	}
	if cfg.PixelDelta <= 0 {
		cfg.PixelDelta = d.PixelDelta
	}
	if cfg.ChangePercent <= 0 {
		cfg.ChangePercent = d.ChangePercent
	}
	return &MotionDetector{cfg: cfg, prevGray: gocv.NewMat()}
}

// Detect compares frame against the previous one and returns whether motion
// was seen and the changed-pixel percentage. The first frame only primes the
// baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := image.Point{X: m.cfg.BlurSize, Y: m.cfg.BlurSize}
	gocv.GaussianBlur(gray, &blurred, k, 0, 0, gocv.BorderDefault)

	if !m.primed || blurred.Rows() != m.prevGray.Rows() || blurred.Cols() != m.prevGray.Cols() {
		blurred.CopyTo(&m.prevGray)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)
	gocv.Threshold(diff, &diff, m.cfg.PixelDelta, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	blurred.CopyTo(&m.prevGray)

	return changed > m.cfg.ChangePercent, changed
}

// Reset drops the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primed = false
}

// Close releases the baseline Mat.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prevGray.Close()
	m.prevGray = gocv.NewMat()
	m.primed = false
}
