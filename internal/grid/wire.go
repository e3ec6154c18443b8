package grid

import (
	"encoding/json"
	"fmt"
)

// WireCell round-trips a single cell through the mixed numeric/string wire
// format: 0 (Floor), 1 (Wall), 2 (AltFloor), "X" (Hole).
type WireCell struct {
	Kind TileKind
}

func (c WireCell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case Floor:
		return json.Marshal(0)
	case Wall:
		return json.Marshal(1)
	case AltFloor:
		return json.Marshal(2)
	case Hole:
		return json.Marshal("X")
	default:
		return nil, fmt.Errorf("grid: cannot marshal tile kind %d to wire", c.Kind)
	}
}

func (c *WireCell) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if asString == "X" || asString == "x" {
			c.Kind = Hole
			return nil
		}
		return fmt.Errorf("grid: unrecognized string cell %q", asString)
	}

	var asNumber int
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return fmt.Errorf("grid: cell is neither number nor string: %w", err)
	}
	switch asNumber {
	case 0:
		c.Kind = Floor
	case 1:
		c.Kind = Wall
	case 2:
		c.Kind = AltFloor
	default:
		return fmt.Errorf("grid: unrecognized numeric cell %d", asNumber)
	}
	return nil
}

// ToWire converts a Layout into its wire-shaped [][]WireCell form for
// inclusion in a RoomState DTO.
func (l Layout) ToWire() [][]WireCell {
	out := make([][]WireCell, l.Rows)
	for y := range out {
		out[y] = make([]WireCell, l.Cols)
		for x := range out[y] {
			out[y][x] = WireCell{Kind: l.Cells[y][x]}
		}
	}
	return out
}

// FromWire builds a Layout from its wire-shaped form, as read from the
// persistence store or a bundled default resource.
func FromWire(cells [][]WireCell) (Layout, error) {
	if len(cells) == 0 {
		return Layout{}, fmt.Errorf("grid: empty wire layout")
	}
	rows := make([][]TileKind, len(cells))
	for y, row := range cells {
		if len(row) == 0 {
			return Layout{}, fmt.Errorf("grid: empty row %d in wire layout", y)
		}
		rows[y] = make([]TileKind, len(row))
		for x, c := range row {
			rows[y][x] = c.Kind
		}
	}
	return New(rows)
}
