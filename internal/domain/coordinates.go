package domain

import (
	"math"
	"strconv"
)

// Immutable geographic coordinates in provider order (x = longitude, y = latitude).
type Coordinates struct {
	X float64
	Y float64
}

// Valid reports whether both axes are finite numbers.
func (c Coordinates) Valid() bool {
	return !math.IsNaN(c.X) && !math.IsInf(c.X, 0) &&
		!math.IsNaN(c.Y) && !math.IsInf(c.Y, 0)
}

// Format the pair as "x,y" using the shortest exact decimal representation.
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.X, 'f', -1, 64) + "," + strconv.FormatFloat(c.Y, 'f', -1, 64)
}
