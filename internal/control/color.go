package control

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultColor is the particle colour before any selection.
const DefaultColor = "#ff0055"

// ColorPresets are the colours offered by the UI surfaces.
var ColorPresets = []string{"#ff0055", "#00ffaa", "#00aaff", "#ffaa00", "#ffffff"}

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// NormalizeColor lowercases and validates a #rrggbb colour.
func NormalizeColor(s string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(s))
	if !hexColor.MatchString(c) {
		return "", fmt.Errorf("invalid colour %q: want #rrggbb", s)
	}
	return c, nil
}
