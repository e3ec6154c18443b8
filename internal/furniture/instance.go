package furniture

// Instance is a mutable, placed furniture item owned by exactly one room.
type Instance struct {
	InstanceID   string
	DefinitionID string
	X, Y         int
	Z            float64
	Rotation     int // 0..7, see package octant
	OwnerUserID  string
	State        string // e.g. "on"/"off"; empty means unset
	ColorOverride string // empty means unset
}

// Clone returns a deep copy (Instance has no reference fields, so this is
// a plain value copy, named for clarity at call sites that mutate a
// registry entry in place vs. a detached copy).
func (i Instance) Clone() Instance {
	return i
}

// Footprint returns the set of tiles an instance of the given definition,
// placed at (x,y) with the given footprint (w,h), occupies. The footprint
// is centered on (x,y) with the half-extent floored, per the Glossary.
func Footprint(x, y, w, h int) []Point {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	x0 := x - (w-1)/2
	y0 := y - (h-1)/2
	tiles := make([]Point, 0, w*h)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			tiles = append(tiles, Point{X: x0 + dx, Y: y0 + dy})
		}
	}
	return tiles
}

// Point is an integer grid coordinate, duplicated from pathfind.Point to
// avoid an import cycle (furniture is a leaf package the pathfinder-facing
// registry and the kernel both depend on).
type Point struct {
	X, Y int
}
