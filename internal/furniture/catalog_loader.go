package furniture

import "encoding/json"

// wireDefinition mirrors Definition's JSON shape as shipped in the bundled
// furniture catalog file. Stackable is a pointer so the loader can apply
// the !IsFlat default when the field is omitted.
type wireDefinition struct {
	DefinitionID    string   `json:"definitionId"`
	DisplayName     string   `json:"displayName"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	IsWalkable      bool     `json:"isWalkable"`
	IsFlat          bool     `json:"isFlat"`
	Stackable       *bool    `json:"stackable,omitempty"`
	StackHeight     float64  `json:"stackHeight"`
	ZOffset         float64  `json:"zOffset"`
	CanSit          bool     `json:"canSit"`
	SitFacingDir    int      `json:"sitFacingDir"`
	SitHeightOffset float64  `json:"sitHeightOffset"`
	CanUse          bool     `json:"canUse"`
	IsToggle        bool     `json:"isToggle"`
	DefaultState    string   `json:"defaultState"`
	CanRecolor      bool     `json:"canRecolor"`
	IsDoor          bool     `json:"isDoor"`
	TargetRoomID    string   `json:"targetRoomId,omitempty"`
	TargetX         int      `json:"targetX,omitempty"`
	TargetY         int      `json:"targetY,omitempty"`
}

// LoadCatalogJSON parses a furniture catalog document, applying the
// Stackable default (!IsFlat) wherever the wire document omits it.
func LoadCatalogJSON(data []byte) (*Catalog, error) {
	var wire []wireDefinition
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	defs := make([]Definition, 0, len(wire))
	for _, w := range wire {
		stackable := !w.IsFlat
		if w.Stackable != nil {
			stackable = *w.Stackable
		}
		defs = append(defs, Definition{
			DefinitionID:    w.DefinitionID,
			DisplayName:     w.DisplayName,
			Width:           maxInt(w.Width, 1),
			Height:          maxInt(w.Height, 1),
			IsWalkable:      w.IsWalkable,
			IsFlat:          w.IsFlat,
			Stackable:       stackable,
			StackHeight:     w.StackHeight,
			ZOffset:         w.ZOffset,
			CanSit:          w.CanSit,
			SitFacingDir:    w.SitFacingDir,
			SitHeightOffset: w.SitHeightOffset,
			CanUse:          w.CanUse,
			IsToggle:        w.IsToggle,
			DefaultState:    w.DefaultState,
			CanRecolor:      w.CanRecolor,
			IsDoor:          w.IsDoor,
			TargetRoomID:    w.TargetRoomID,
			TargetX:         w.TargetX,
			TargetY:         w.TargetY,
		})
	}
	return NewCatalog(defs), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
