// Package capture reads video frames for the landmark detector using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Config holds camera settings.
type Config struct {
	DeviceID int
	Width    int
	Height   int

	// IdleFPS is used while nothing moves in front of the camera, ActiveFPS
	// while a hand or motion is seen.
	IdleFPS   int
	ActiveFPS int

	// IdleAfter is how long without activity before dropping to IdleFPS.
	IdleAfter time.Duration

	// Mirror flips frames horizontally so the preview behaves like a mirror.
	Mirror bool
}

// DefaultConfig returns 640x480 capture from device 0, 5 FPS idle and 15 FPS active.
func DefaultConfig() Config {
	return Config{
		DeviceID:  0,
		Width:     640,
		Height:    480,
		IdleFPS:   5,
		ActiveFPS: 15,
		IdleAfter: 2 * time.Second,
	}
}

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// cameraImpl captures from a device through gocv.VideoCapture.
type cameraImpl struct {
	cfg     Config
	mu      sync.Mutex
	capture *gocv.VideoCapture
	fps     int
}

// NewCamera creates a closed Camera starting at the idle frame rate.
func NewCamera(cfg Config) Camera {
	fps := cfg.IdleFPS
	if fps <= 0 {
		fps = DefaultConfig().IdleFPS
	}
	return &cameraImpl{cfg: cfg, fps: fps}
}

// Open opens the capture device. Opening an open camera is a no-op.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.cfg.DeviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.cfg.DeviceID, err)
	}

	if c.cfg.Width > 0 && c.cfg.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.cfg.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.cfg.Height))
	}
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	return nil
}

// Close releases the capture device.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	return err
}

// ReadFrame reads a single frame, mirrored if configured.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if c.cfg.Mirror {
		Mirror(&mat)
	}
	return &mat, nil
}

// SetFPS sets the capture rate. Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current capture rate.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// IsOpen reports whether the device is open.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}

// Mirror flips mat around the vertical axis in place.
func Mirror(mat *gocv.Mat) {
	gocv.Flip(*mat, mat, 1)
}
