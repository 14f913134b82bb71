// Package shape samples the procedural silhouettes the particle cloud morphs between.
package shape

import (
	"fmt"
	"strings"
)

// Kind identifies a target silhouette.
type Kind int

// Supported silhouettes. Sphere is the default for anything out of range.
const (
	Sphere Kind = iota
	Heart
	Flower
	RingedPlanet
	SeatedFigure
	Explosion
	Galaxy
	numKinds
)

var kindNames = [numKinds]string{
	Sphere:       "sphere",
	Heart:        "heart",
	Flower:       "flower",
	RingedPlanet: "saturn",
	SeatedFigure: "buddha",
	Explosion:    "fireworks",
	Galaxy:       "galaxy",
}

// aliases accepted by Parse in addition to the canonical names.
var kindAliases = map[string]Kind{
	"ringed-planet": RingedPlanet,
	"seated-figure": SeatedFigure,
	"explosion":     Explosion,
	"solarsystem":   Galaxy,
	"default":       Sphere,
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// String returns the canonical lowercase name of the kind.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Normalize maps out-of-range kinds to Sphere.
func Normalize(k Kind) Kind {
	if !k.Valid() {
		return Sphere
	}
	return k
}

// Parse looks up a kind by canonical name or alias, case-insensitively.
func Parse(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	if k, ok := kindAliases[name]; ok {
		return k, true
	}
	return Sphere, false
}

// Kinds returns every selectable kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(Normalize(k).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("unknown shape %q", string(text))
	}
	*k = parsed
	return nil
}
