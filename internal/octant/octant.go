// Package octant holds the 8-directional facing arithmetic shared by the
// furniture registry (seat/door facing) and the avatar state machine
// (movement direction): E=0, SE=1, S=2, SW=3, W=4, NW=5, N=6, NE=7.
package octant

import "math"

const Count = 8

// Offset returns the unit step (dx,dy) for octant o, used to derive an
// interaction tile one step opposite a facing direction.
func Offset(o int) (dx, dy int) {
	switch Normalize(o) {
	case 0:
		return 1, 0
	case 1:
		return 1, 1
	case 2:
		return 0, 1
	case 3:
		return -1, 1
	case 4:
		return -1, 0
	case 5:
		return -1, -1
	case 6:
		return 0, -1
	case 7:
		return 1, -1
	default:
		return 0, 0
	}
}

// Normalize wraps o into [0,8).
func Normalize(o int) int {
	o %= Count
	if o < 0 {
		o += Count
	}
	return o
}

// Rotate adds rotationSteps octants (each step is 45 degrees) to base and
// normalizes the result. Used to turn a FurnitureDefinition's base facing
// (e.g. a seat's SitFacingDir) by the instance's current rotation.
func Rotate(base, rotationSteps int) int {
	return Normalize(base + rotationSteps)
}

// Opposite returns the octant pointing the opposite way.
func Opposite(o int) int {
	return Normalize(o + Count/2)
}

// FromDelta quantizes a (dx,dy) direction vector into an octant using
// atan2 bisected into 8 equal slices of pi/4: E=0, S=2, W=4,
// N=6, with the diagonals in between.
func FromDelta(dx, dy float64) int {
	if dx == 0 && dy == 0 {
		return 0
	}
	angle := math.Atan2(dy, dx) // screen-space: +x east, +y south
	// Shift by half a slice so each octant is centered on its cardinal/
	// diagonal direction, then divide into 8 slices of pi/4.
	const slice = math.Pi / 4
	idx := int(math.Floor((angle+slice/2)/slice)) % 8
	if idx < 0 {
		idx += 8
	}
	return idx
}
