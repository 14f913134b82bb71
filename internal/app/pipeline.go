package app

import (
	"log"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"gocv.io/x/gocv"
)

// runPipeline is the detection loop. It reads frames at the cadence's rate,
// which switches between idle and active as motion and hands come and go,
// and feeds every frame's landmarks to the controller.
func (a *App) runPipeline(stopCh <-chan struct{}) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cadence.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			if !a.IsEnabled() {
				a.controller.OnDetectorFrame(detector.NewFrame(nil, now))
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				a.setLastError(err)
				continue
			}

			fps, changed := a.processFrame(frame, now)
			if !changed {
				continue
			}
			a.camera.SetFPS(fps)
			ticker.Reset(a.cadence.Interval())
			if a.cadence.Active() {
				log.Printf("Switched to active mode (%d FPS, motion %.1f%%)", fps, a.motionPct)
			} else {
				a.motion.Reset()
				log.Printf("Switched to idle mode (%d FPS)", fps)
			}
		}
	}
}

// processFrame runs motion and hand detection on one frame, closes it, and
// returns the capture rate to use next. A detector error skips the frame;
// the controller keeps its last state.
func (a *App) processFrame(frame *gocv.Mat, now time.Time) (int, bool) {
	a.latest.Put(frame)
	motion, pct := a.motion.Detect(frame)
	a.motionPct = pct

	hands, err := a.detector.Detect(frame)
	frame.Close()
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		a.setLastError(err)
		return a.cadence.Observe(motion, false, now)
	}
	a.setLastError(nil)

	f := a.landmarkFrame(hands, now)
	a.controller.OnDetectorFrame(f)
	return a.cadence.Observe(motion, len(f.Hands) > 0, now)
}

// landmarkFrame builds the controller frame in the camera's own orientation.
// Swipe direction and cursor x are defined on un-mirrored coordinates.
func (a *App) landmarkFrame(hands []detector.HandLandmarks, now time.Time) detector.Frame {
	if a.config.Camera.Mirror {
		flipped := make([]detector.HandLandmarks, len(hands))
		for i := range hands {
			flipped[i] = hands[i].Mirror()
		}
		hands = flipped
	}
	return detector.NewFrame(hands, now)
}

// runRender ticks the controller at RenderFPS with the measured frame delta.
func (a *App) runRender(stopCh <-chan struct{}) {
	defer a.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.RenderFPS))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			a.controller.Tick(now.Sub(last).Seconds())
			last = now
		}
	}
}
