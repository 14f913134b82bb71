package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/shape"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		dbPath     = flag.String("db", "", "SQLite database path (default ~/.mudra/mudra.db)")
		cameraID   = flag.Int("camera", 0, "camera device ID")
		mirror     = flag.Bool("mirror", true, "mirror the camera image horizontally; landmarks are flipped back")
		particles  = flag.Int("particles", 8000, "particle count")
		script     = flag.String("script", "", "path to mediapipe_service.py")
		hookDir    = flag.String("hooks", "", "hook directory (default ~/.mudra/hooks)")
		webDir     = flag.String("web", "", "static web directory")
		useTray    = flag.Bool("tray", true, "show the system tray menu")
		seed       = flag.Uint64("seed", 0, "particle RNG seed (0 picks one at random)")
		convention = flag.String("convention", "positive-left", "swipe sign convention: positive-left or positive-right")
		replay     = flag.String("replay", "", "play a landmark script in a loop instead of using the camera")
	)
	flag.Parse()

	fmt.Println("Mudra - hand-controlled particle shapes")

	dataDir, err := dataDir()
	if err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	if *dbPath == "" {
		*dbPath = filepath.Join(dataDir, "mudra.db")
	}
	if *hookDir == "" {
		*hookDir = filepath.Join(dataDir, "hooks")
	}

	st, err := store.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	conv, err := gesture.ParseSwipeConvention(*convention)
	if err != nil {
		log.Fatalf("Invalid -convention: %v", err)
	}

	cfg := app.DefaultConfig()
	cfg.Store = st
	cfg.HookDir = *hookDir
	cfg.Camera.DeviceID = *cameraID
	cfg.Camera.Mirror = *mirror
	cfg.Detector.ScriptPath = *script
	cfg.Control.Morph.Count = *particles
	cfg.Control.Morph.Seed = *seed
	cfg.Control.Gesture.Convention = conv

	var opts []app.Option
	if *replay != "" {
		frames, err := detector.LoadScript(*replay)
		if err != nil {
			log.Fatalf("Failed to load replay script: %v", err)
		}
		// Scripts hold raw detector coordinates.
		cfg.Camera.Mirror = false
		opts = append(opts,
			app.WithDetector(detector.NewReplayDetector(frames, true)),
			app.WithCamera(capture.NewBlankCamera(cfg.Camera.Width, cfg.Camera.Height)))
		log.Printf("Replaying %d frames from %s", len(frames), *replay)
	}

	a, err := app.New(cfg, opts...)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	if err := a.DiscoverHooks(); err != nil {
		log.Printf("Hook discovery failed: %v", err)
	}

	a.SetEnabled(true)
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	if *webDir == "" {
		*webDir = findWebDir(dataDir)
	}
	if *webDir != "" {
		fmt.Printf("Serving static files from: %s\n", *webDir)
	}

	srv := server.New(server.Config{
		StaticDir: *webDir,
		Store:     st,
		Engine:    a,
		Preview:   a.Preview(),
	})

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
		a.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	if !*useTray {
		<-sigCh
		shutdown()
		return
	}

	t := tray.New(a.Snapshot().Shape)
	t.OnToggle(a.SetEnabled)
	t.OnShape(func(k shape.Kind) { a.SelectShape(k) })
	t.OnSettings(func() { openBrowser("http://localhost" + *addr) })
	a.Controller().OnShape(func(k shape.Kind, _ control.State) { t.SetShape(k) })
	a.Controller().OnSwipe(func(d gesture.Direction, _ control.State) { t.SetLastSwipe(string(d)) })

	go func() {
		<-sigCh
		t.Quit()
	}()
	t.Run()
	shutdown()
}

// dataDir returns ~/.mudra, creating it if needed.
func dataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(homeDir, ".mudra")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
