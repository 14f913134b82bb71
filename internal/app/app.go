// Package app wires capture, detection and the particle controller into a
// running Mudra instance.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/shape"
	"github.com/ayusman/mudra/internal/starfield"
	"github.com/ayusman/mudra/internal/store"
)

// ErrDetectorUnavailable is returned by New when no hand detector can be started.
var ErrDetectorUnavailable = errors.New("hand detector unavailable")

// Config holds configuration options for the application.
type Config struct {
	Store       *store.Store
	HookDir     string
	HookTimeout time.Duration
	// Camera.Mirror means frames reach the detector flipped; landmarks are
	// flipped back before gesture processing.
	Camera capture.Config
	Motion      capture.MotionConfig
	Detector    detector.Config
	Control     control.Config
	// RenderFPS is the rate of the particle tick loop.
	RenderFPS int
}

// DefaultConfig returns the configuration used by the mudra command.
func DefaultConfig() Config {
	return Config{
		HookTimeout: hook.DefaultTimeout,
		Camera:      capture.DefaultConfig(),
		Motion:      capture.DefaultMotionConfig(),
		Detector:    detector.DefaultConfig(),
		Control:     control.DefaultConfig(),
		RenderFPS:   60,
	}
}

// Option overrides a collaborator New would otherwise construct.
type Option func(*App)

// WithCamera uses cam instead of opening a device camera.
func WithCamera(cam capture.Camera) Option {
	return func(a *App) { a.camera = cam }
}

// WithDetector uses d instead of starting the MediaPipe service.
func WithDetector(d detector.Detector) Option {
	return func(a *App) { a.detector = d }
}

// App runs the detection pipeline and the render tick on their own goroutines.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	cadence    *capture.Cadence
	latest     *capture.Latest
	detector   detector.Detector
	controller *control.Controller
	hooks      *hook.Manager
	dispatcher *hook.Dispatcher

	enabled   bool
	lastError string
	// motionPct is the last changed-pixel share; pipeline goroutine only.
	motionPct float64
	mu        sync.RWMutex
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// New creates an App. Shape, colour and calibration saved in the store are
// restored. A detector that cannot start is a setup failure wrapped in
// ErrDetectorUnavailable.
func New(config Config, opts ...Option) (*App, error) {
	if config.RenderFPS <= 0 {
		config.RenderFPS = 60
	}

	a := &App{config: config}
	for _, opt := range opts {
		opt(a)
	}

	if a.detector == nil {
		mp, err := detector.NewMediaPipeDetector(config.Detector)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDetectorUnavailable, err)
		}
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	}
	if a.camera == nil {
		a.camera = capture.NewCamera(config.Camera)
	}

	ctrlCfg := config.Control
	if config.Store != nil {
		restoreSettings(config.Store, &ctrlCfg)
	}
	ctrl, err := control.New(ctrlCfg)
	if err != nil {
		a.detector.Close()
		return nil, fmt.Errorf("invalid control config: %w", err)
	}

	a.controller = ctrl
	a.motion = capture.NewMotionDetector(config.Motion)
	a.cadence = capture.NewCadence(config.Camera)
	a.latest = capture.NewLatest()
	a.hooks = hook.NewManager(config.HookDir)
	a.dispatcher = hook.NewDispatcher(a.hooks, hook.NewExecutor(config.HookTimeout), 32)

	ctrl.OnSwipe(a.handleSwipe)
	ctrl.OnShape(a.handleShape)

	return a, nil
}

// restoreSettings applies the persisted shape, colour and active profile to cfg.
// Unreadable values are logged and skipped.
func restoreSettings(s *store.Store, cfg *control.Config) {
	settings := s.Settings()

	if v, err := settings.Get(store.KeyShape); err == nil {
		if k, ok := shape.Parse(v); ok {
			cfg.Shape = k
		} else {
			log.Printf("Ignoring saved shape %q", v)
		}
	}
	if v, err := settings.Get(store.KeyColor); err == nil {
		if c, err := control.NormalizeColor(v); err == nil {
			cfg.Color = c
		} else {
			log.Printf("Ignoring saved color %q: %v", v, err)
		}
	}
	if id, err := settings.Get(store.KeyActiveProfile); err == nil {
		p, err := s.Profiles().GetByID(id)
		switch {
		case err != nil:
			log.Printf("Ignoring active profile %s: %v", id, err)
		case p.Config.Validate() != nil:
			log.Printf("Ignoring active profile %s: %v", p.Name, p.Config.Validate())
		default:
			cfg.Gesture = p.Config
			log.Printf("Loaded calibration profile %s", p.Name)
		}
	}
}

// DiscoverHooks scans the hook directory.
func (a *App) DiscoverHooks() error {
	if err := a.hooks.Discover(); err != nil {
		return err
	}
	log.Printf("Discovered %d hooks in %s", len(a.hooks.List()), a.hooks.Dir())
	return nil
}

// SetEnabled enables or disables hand detection. Rendering continues either
// way; while disabled the controller sees empty frames, as if the hand left.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether hand detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// IsRunning reports whether Start has been called without a matching Stop.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// LastError returns the most recent per-frame capture or detector error.
func (a *App) LastError() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastError
}

func (a *App) setLastError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err == nil {
		a.lastError = ""
		return
	}
	a.lastError = err.Error()
}

// Start opens the camera and launches the detection and render loops.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.cadence.FPS())
	a.motion.Reset()
	a.dispatcher.Start()

	a.stopCh = make(chan struct{})
	a.wg.Add(2)
	go a.runPipeline(a.stopCh)
	go a.runRender(a.stopCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts both loops and closes the camera. When Stop returns no further
// frames are consumed and no controller callbacks fire from the pipeline.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh == nil {
		a.mu.Unlock()
		return
	}
	close(a.stopCh)
	a.stopCh = nil
	a.mu.Unlock()

	a.wg.Wait()
	a.dispatcher.Stop()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	log.Println("Detection pipeline stopped")
}

// Close stops the app and releases the detector and OpenCV buffers.
func (a *App) Close() error {
	a.Stop()
	a.motion.Close()
	a.latest.Close()
	return a.detector.Close()
}

// SelectShape switches the target shape. The change is persisted and
// announced to hooks by the shape callback.
func (a *App) SelectShape(k shape.Kind) shape.Kind {
	return a.controller.SelectShape(k)
}

// SetColor validates, applies and persists the particle colour.
func (a *App) SetColor(color string) error {
	if err := a.controller.SetColor(color); err != nil {
		return err
	}
	a.saveSetting(store.KeyColor, a.controller.Snapshot().Color)
	return nil
}

// ApplyProfile loads a calibration profile and makes it the active one.
func (a *App) ApplyProfile(id string) (*store.Profile, error) {
	if a.config.Store == nil {
		return nil, store.ErrNotFound
	}
	p, err := a.config.Store.Profiles().GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := a.controller.SetCalibration(p.Config); err != nil {
		return nil, err
	}
	a.saveSetting(store.KeyActiveProfile, p.ID)
	log.Printf("Applied calibration profile %s", p.Name)
	return p, nil
}

// SetCalibration applies thresholds without saving them as a profile.
func (a *App) SetCalibration(cfg gesture.Config) error {
	return a.controller.SetCalibration(cfg)
}

func (a *App) handleSwipe(dir gesture.Direction, st control.State) {
	a.dispatcher.Dispatch(hook.Event{
		Type:      hook.EventSwipe,
		Direction: string(dir),
		Shape:     st.Shape.String(),
		Color:     st.Color,
		Expansion: st.Expansion,
	})
}

func (a *App) handleShape(k shape.Kind, st control.State) {
	a.saveSetting(store.KeyShape, k.String())
	a.dispatcher.Dispatch(hook.Event{
		Type:      hook.EventShape,
		Shape:     k.String(),
		Color:     st.Color,
		Expansion: st.Expansion,
	})
}

func (a *App) saveSetting(key, value string) {
	if a.config.Store == nil {
		return
	}
	if err := a.config.Store.Settings().Set(key, value); err != nil {
		log.Printf("Failed to save %s: %v", key, err)
	}
}

// Snapshot returns a copy of the control state.
func (a *App) Snapshot() control.State {
	return a.controller.Snapshot()
}

// WithPositions exposes the live particle buffer; see control.Controller.
func (a *App) WithPositions(fn func(positions []float32, rotation float64)) {
	a.controller.WithPositions(fn)
}

// WithStars exposes the starfield; see control.Controller.
func (a *App) WithStars(fn func(f *starfield.Field)) {
	a.controller.WithStars(fn)
}

// Controller returns the particle controller.
func (a *App) Controller() *control.Controller {
	return a.controller
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Preview returns the holder of the most recent captured frame.
func (a *App) Preview() *capture.Latest {
	return a.latest
}

// Hooks returns the hook manager.
func (a *App) Hooks() *hook.Manager {
	return a.hooks
}

// Dispatcher returns the hook dispatcher.
func (a *App) Dispatcher() *hook.Dispatcher {
	return a.dispatcher
}

// Store returns the configured store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}
