// Package catalog holds the small read-only catalogs that round out the
// furniture catalog: emotes and shop prices. Both load once at startup
// from embedded JSON, exactly like internal/furniture's bundled catalog.
package catalog

import (
	"embed"
	"encoding/json"
)

// EmoteDefinition is one playable emote: its catalog id and how long it
// holds the avatar in the Emoting state.
type EmoteDefinition struct {
	EmoteID         string  `json:"emoteId"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// EmoteCatalog is the read-only, process-wide emote catalog.
type EmoteCatalog struct {
	byID map[string]EmoteDefinition
}

// NewEmoteCatalog builds a catalog from a slice of definitions.
func NewEmoteCatalog(defs []EmoteDefinition) *EmoteCatalog {
	m := make(map[string]EmoteDefinition, len(defs))
	for _, d := range defs {
		m[d.EmoteID] = d
	}
	return &EmoteCatalog{byID: m}
}

// Lookup returns the emote definition for id, if known.
func (c *EmoteCatalog) Lookup(id string) (EmoteDefinition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

//go:embed bundled/emotes.json
var bundledEmotes embed.FS

// LoadBundledEmoteCatalog loads the emote catalog shipped inside the
// binary.
func LoadBundledEmoteCatalog() (*EmoteCatalog, error) {
	data, err := bundledEmotes.ReadFile("bundled/emotes.json")
	if err != nil {
		return nil, err
	}
	var defs []EmoteDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, err
	}
	return NewEmoteCatalog(defs), nil
}
