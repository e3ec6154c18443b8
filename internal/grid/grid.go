// Package grid implements C1: the static tile map for one room. A Layout is
// immutable for the lifetime of a running room; furniture and avatars sit on
// top of it and are tracked elsewhere.
package grid

import "fmt"

// TileKind is the terrain classification of a single cell.
type TileKind int

const (
	// Floor is ordinary walkable terrain.
	Floor TileKind = iota
	// Wall blocks all movement.
	Wall
	// AltFloor is walkable terrain rendered with an alternate texture; it
	// behaves identically to Floor for simulation purposes.
	AltFloor
	// Hole is a gap in the floor: in bounds, but not valid terrain.
	Hole
	// OutOfBounds is returned by TileKind for coordinates outside the
	// layout; it is never stored in a cell.
	OutOfBounds
)

// Layout is a dense 2D tile map for one room. Cols/Rows must equal the
// dimensions of Cells; callers that build a Layout by hand should use
// New, which enforces this.
type Layout struct {
	Cols  int
	Rows  int
	Cells [][]TileKind // indexed [y][x]
}

// New builds a Layout from a row-major cell matrix, validating that every
// row has the same width and that Cols/Rows agree with the matrix shape.
func New(cells [][]TileKind) (Layout, error) {
	rows := len(cells)
	if rows == 0 {
		return Layout{}, fmt.Errorf("grid: layout has zero rows")
	}
	cols := len(cells[0])
	if cols == 0 {
		return Layout{}, fmt.Errorf("grid: layout has zero columns")
	}
	for y, row := range cells {
		if len(row) != cols {
			return Layout{}, fmt.Errorf("grid: row %d has width %d, want %d", y, len(row), cols)
		}
	}
	return Layout{Cols: cols, Rows: rows, Cells: cells}, nil
}

// Fallback1x1Wall is the layout the kernel falls back to when no layout can
// be resolved from either the persistence store or the bundled defaults. It
// is deliberately unwalkable everywhere: a broken room should not silently
// accept avatars.
func Fallback1x1Wall() Layout {
	return Layout{Cols: 1, Rows: 1, Cells: [][]TileKind{{Wall}}}
}

// IsInBounds reports whether (x,y) is within the layout's dimensions.
func (l Layout) IsInBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < l.Cols && y < l.Rows
}

// TileKind returns the terrain kind at (x,y), or OutOfBounds if outside the
// layout.
func (l Layout) TileKind(x, y int) TileKind {
	if !l.IsInBounds(x, y) {
		return OutOfBounds
	}
	return l.Cells[y][x]
}

// IsValidTerrain reports whether (x,y) is Floor or AltFloor.
func (l Layout) IsValidTerrain(x, y int) bool {
	k := l.TileKind(x, y)
	return k == Floor || k == AltFloor
}
