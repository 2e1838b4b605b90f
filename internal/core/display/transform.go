package display

import "fmt"

// Transform is the rotation and reflection applied to a logical monitor,
// using the compositor's wire numbering.
type Transform uint32

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

var transformNames = [...]string{
	TransformNormal:     "normal",
	Transform90:         "90",
	Transform180:        "180",
	Transform270:        "270",
	TransformFlipped:    "flipped",
	TransformFlipped90:  "flipped-90",
	TransformFlipped180: "flipped-180",
	TransformFlipped270: "flipped-270",
}

// NewTransform validates a wire transform value.
func NewTransform(value uint32) (Transform, error) {
	if int(value) >= len(transformNames) {
		return 0, fmt.Errorf("transform must be between 0 and %d, got %d", len(transformNames)-1, value)
	}
	return Transform(value), nil
}

// String returns the transform name.
func (t Transform) String() string {
	if int(t) < len(transformNames) {
		return transformNames[t]
	}
	return fmt.Sprintf("transform(%d)", uint32(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t Transform) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// LayoutMode tells how logical monitor sizes relate to physical modes.
type LayoutMode uint32

const (
	LayoutModeUnknown LayoutMode = iota
	LayoutModeLogical
	LayoutModePhysical
)

// String returns the layout mode name.
func (l LayoutMode) String() string {
	switch l {
	case LayoutModeLogical:
		return "logical"
	case LayoutModePhysical:
		return "physical"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l LayoutMode) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}
