package model

// Color identifies one of the two fixed seats in a room
type Color string

const (
	ColorWhite Color = "white"
	ColorBlack Color = "black"
)

// Opponent returns the other seat color
func (c Color) Opponent() Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// Valid reports whether c names one of the two seats
func (c Color) Valid() bool {
	return c == ColorWhite || c == ColorBlack
}

// Colors lists both seats in canonical order
func Colors() []Color {
	return []Color{ColorWhite, ColorBlack}
}
