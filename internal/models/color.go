package models

// Color is the fixed event palette.
type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorPurple Color = "purple"
)

// DefaultColor is used when a stored or submitted value is unset or invalid.
const DefaultColor = ColorBlue

// Valid reports whether c is a member of the palette.
func (c Color) Valid() bool {
	switch c {
	case ColorRed, ColorBlue, ColorGreen, ColorOrange, ColorPurple:
		return true
	}
	return false
}

// ParseColor maps a raw value onto the palette, falling back to the default.
func ParseColor(raw string) Color {
	c := Color(raw)
	if !c.Valid() {
		return DefaultColor
	}
	return c
}
