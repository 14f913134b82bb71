// Package tray provides the system tray menu for Mudra.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/shape"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onShape    func(k shape.Kind)
	onSettings func()
	onQuit     func()
	enabled    bool
	current    shape.Kind
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuLastSwipe *systray.MenuItem
	menuShapes    map[shape.Kind]*systray.MenuItem
}

// New creates a new Tray with detection enabled and current as the checked shape.
func New(current shape.Kind) *Tray {
	return &Tray{
		enabled: true,
		current: shape.Normalize(current),
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnShape sets the callback for shape menu clicks.
func (t *Tray) OnShape(fn func(k shape.Kind)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onShape = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand-controlled particles")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand detection")
	systray.AddSeparator()

	menuShape := systray.AddMenuItem("Shape", "Target shape")
	t.menuShapes = make(map[shape.Kind]*systray.MenuItem)
	for _, k := range shape.Kinds() {
		item := menuShape.AddSubMenuItemCheckbox(k.String(), "Morph to "+k.String(), k == t.current)
		t.menuShapes[k] = item
		go t.watchShape(k, item)
	}

	t.menuLastSwipe = systray.AddMenuItem("Last swipe: none", "Last detected swipe")
	t.menuLastSwipe.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) watchShape(k shape.Kind, item *systray.MenuItem) {
	for range item.ClickedCh {
		t.handleShape(k)
	}
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleShape handles a shape submenu click.
func (t *Tray) handleShape(k shape.Kind) {
	t.SetShape(k)

	t.mu.RLock()
	callback := t.onShape
	t.mu.RUnlock()

	if callback != nil {
		callback(k)
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// SetShape moves the check mark to k, e.g. after a change made over HTTP.
func (t *Tray) SetShape(k shape.Kind) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = shape.Normalize(k)
	for kind, item := range t.menuShapes {
		if kind == t.current {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// SetLastSwipe updates the last swipe display in the menu.
func (t *Tray) SetLastSwipe(direction string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastSwipe != nil {
		if direction == "" {
			t.menuLastSwipe.SetTitle("Last swipe: none")
		} else {
			t.menuLastSwipe.SetTitle("Last swipe: " + direction)
		}
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Shape returns the checked shape.
func (t *Tray) Shape() shape.Kind {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}
