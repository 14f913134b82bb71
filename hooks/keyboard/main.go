// Package main is a hook that turns swipes into arrow-key presses, so a
// swipe can flip slides or pages in the focused application.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Event is the subset of the hook event this hook reads.
type Event struct {
	Type      string          `json:"type"`
	Direction string          `json:"direction"`
	Params    json.RawMessage `json:"params"`
}

// Response is written to stdout for the dispatcher.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Params optionally remaps which keys each direction presses.
type Params struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// macKeyCodes maps key names to System Events key codes.
var macKeyCodes = map[string]int{
	"left":     123,
	"right":    124,
	"down":     125,
	"up":       126,
	"pageup":   116,
	"pagedown": 121,
	"space":    49,
}

// xdotoolKeys maps key names to xdotool keysyms.
var xdotoolKeys = map[string]string{
	"left":     "Left",
	"right":    "Right",
	"down":     "Down",
	"up":       "Up",
	"pageup":   "Prior",
	"pagedown": "Next",
	"space":    "space",
}

func main() {
	var evt Event
	if err := json.NewDecoder(os.Stdin).Decode(&evt); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode event: %v", err))
		return
	}

	if evt.Type != "swipe" {
		writeSuccessResponse()
		return
	}

	key, err := keyFor(evt.Direction, evt.Params)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}
	if err := press(key); err != nil {
		writeErrorResponse(fmt.Sprintf("press %s failed: %v", key, err))
		return
	}
	writeSuccessResponse()
}

// keyFor resolves the key name for a swipe direction.
func keyFor(direction string, raw json.RawMessage) (string, error) {
	p := Params{Left: "left", Right: "right"}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return "", fmt.Errorf("failed to parse params: %w", err)
		}
	}

	switch direction {
	case "left":
		return p.Left, nil
	case "right":
		return p.Right, nil
	default:
		return "", fmt.Errorf("unknown direction: %q", direction)
	}
}

func press(key string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		code, ok := macKeyCodes[key]
		if !ok {
			return fmt.Errorf("unsupported key %q", key)
		}
		cmd = exec.Command("osascript", "-e", fmt.Sprintf(`tell application "System Events" to key code %d`, code))
	case "linux":
		sym, ok := xdotoolKeys[key]
		if !ok {
			return fmt.Errorf("unsupported key %q", key)
		}
		cmd = exec.Command("xdotool", "key", sym)
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
