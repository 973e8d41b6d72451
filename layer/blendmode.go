package layer

import (
	"fmt"

	"github.com/gogpu/layerforge"
)

// BlendMode selects the operator used to composite a layer onto the layers
// below it. The zero value is Normal.
type BlendMode uint8

const (
	Normal BlendMode = iota
	Multiply
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion

	blendModeCount
)

var blendModeNames = [blendModeCount]string{
	Normal:     "normal",
	Multiply:   "multiply",
	Screen:     "screen",
	Overlay:    "overlay",
	Darken:     "darken",
	Lighten:    "lighten",
	ColorDodge: "color-dodge",
	ColorBurn:  "color-burn",
	HardLight:  "hard-light",
	SoftLight:  "soft-light",
	Difference: "difference",
	Exclusion:  "exclusion",
}

// BlendModes returns every mode in menu order.
func BlendModes() []BlendMode {
	modes := make([]BlendMode, blendModeCount)
	for i := range modes {
		modes[i] = BlendMode(i)
	}
	return modes
}

// Valid reports whether m is one of the defined modes.
func (m BlendMode) Valid() bool { return m < blendModeCount }

// String returns the lowercase wire name, e.g. "color-dodge".
func (m BlendMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("BlendMode(%d)", uint8(m))
	}
	return blendModeNames[m]
}

// ParseBlendMode returns the mode with the given wire name.
func ParseBlendMode(s string) (BlendMode, error) {
	for i, name := range blendModeNames {
		if name == s {
			return BlendMode(i), nil
		}
	}
	return Normal, fmt.Errorf("unknown blend mode %q: %w", s, layerforge.ErrValidation)
}

// MarshalText implements encoding.TextMarshaler.
func (m BlendMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("blend mode %d: %w", uint8(m), layerforge.ErrValidation)
	}
	return []byte(blendModeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty string
// decodes as Normal.
func (m *BlendMode) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = Normal
		return nil
	}
	v, err := ParseBlendMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
