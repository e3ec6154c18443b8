package grid

import (
	"embed"
	"encoding/json"
)

//go:embed bundled/*.json
var bundledRooms embed.FS

type bundledLayoutFile struct {
	RoomID string       `json:"roomId"`
	Layout [][]WireCell `json:"layout"`
}

// DefaultLayout loads the bundled default layout for roomID, if one ships
// with the binary. The Room Kernel only consults this when the persistence
// store has no row for the room.
func DefaultLayout(roomID string) (Layout, bool) {
	data, err := bundledRooms.ReadFile("bundled/" + roomID + ".json")
	if err != nil {
		return Layout{}, false
	}
	var file bundledLayoutFile
	if err := json.Unmarshal(data, &file); err != nil {
		return Layout{}, false
	}
	layout, err := FromWire(file.Layout)
	if err != nil {
		return Layout{}, false
	}
	return layout, true
}
