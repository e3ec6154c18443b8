package furniture

import (
	"math"

	"github.com/tilehaven/roomserver/internal/octant"
)

// DefaultStackFactor scales a non-flat item's logical stack height into a
// z contribution: z_contribution = stackHeight * DefaultStackFactor. It is
// overridable at the registry level since deployments may tune it.
const DefaultStackFactor = 1.0

// ActorOccupant reports whether a non-player actor (an avatar standing,
// not sitting) occupies (x,y). The registry's IsSolidBlocked optionally
// consults this so a walking avatar blocks the tile under it; the Room
// Kernel supplies the real implementation, since avatar state lives in
// package avatar, not here.
type ActorOccupant func(x, y int) bool

// Registry holds the insertion-ordered list of FurnitureInstances for one
// room and answers its spatial queries.
type Registry struct {
	catalog     *Catalog
	stackFactor float64
	order       []string // insertion order of instance ids
	byID        map[string]*Instance
}

// NewRegistry builds an empty registry bound to catalog.
func NewRegistry(catalog *Catalog, stackFactor float64) *Registry {
	if stackFactor <= 0 {
		stackFactor = DefaultStackFactor
	}
	return &Registry{
		catalog:     catalog,
		stackFactor: stackFactor,
		byID:        make(map[string]*Instance),
	}
}

// Add inserts instance into the registry. Re-adding an id that already
// exists is a no-op (mutations are idempotent).
func (r *Registry) Add(inst Instance) {
	if _, exists := r.byID[inst.InstanceID]; exists {
		return
	}
	cp := inst
	r.byID[inst.InstanceID] = &cp
	r.order = append(r.order, inst.InstanceID)
}

// Remove deletes instance id from the registry. Removing an id that is
// already absent is a no-op.
func (r *Registry) Remove(id string) (Instance, bool) {
	inst, ok := r.byID[id]
	if !ok {
		return Instance{}, false
	}
	removed := *inst
	delete(r.byID, id)
	for i, existingID := range r.order {
		if existingID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return removed, true
}

// Get returns a copy of the instance, if present.
func (r *Registry) Get(id string) (Instance, bool) {
	inst, ok := r.byID[id]
	if !ok {
		return Instance{}, false
	}
	return *inst, true
}

// Update applies mutate to the stored instance in place, returning the
// updated copy. No-op (returns false) if id is absent.
func (r *Registry) Update(id string, mutate func(*Instance)) (Instance, bool) {
	inst, ok := r.byID[id]
	if !ok {
		return Instance{}, false
	}
	mutate(inst)
	return *inst, true
}

// All returns every instance in insertion order.
func (r *Registry) All() []Instance {
	out := make([]Instance, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

func (r *Registry) definitionOf(inst *Instance) (Definition, bool) {
	return r.catalog.Lookup(inst.DefinitionID)
}

// occupiesTile reports whether inst's footprint covers (x,y).
func (r *Registry) occupiesTile(inst *Instance, def Definition, x, y int) bool {
	for _, p := range Footprint(inst.X, inst.Y, def.Width, def.Height) {
		if p.X == x && p.Y == y {
			return true
		}
	}
	return false
}

// StackAt returns all instances whose footprint includes (x,y), in
// insertion order.
func (r *Registry) StackAt(x, y int) []Instance {
	var out []Instance
	for _, id := range r.order {
		inst := r.byID[id]
		def, ok := r.definitionOf(inst)
		if !ok {
			continue
		}
		if r.occupiesTile(inst, def, x, y) {
			out = append(out, *inst)
		}
	}
	return out
}

// TopmostStackable returns the stackable instance with the greatest z at
// (x,y), excluding excludeID, or false if none.
func (r *Registry) TopmostStackable(x, y int, excludeID string) (Instance, bool) {
	var top Instance
	found := false
	for _, inst := range r.StackAt(x, y) {
		if inst.InstanceID == excludeID {
			continue
		}
		def, ok := r.definitionOf(&inst)
		if !ok || !def.Stackable {
			continue
		}
		if !found || inst.Z > top.Z {
			top = inst
			found = true
		}
	}
	return top, found
}

// StackHeightAt returns the z of the next available resting surface on
// (x,y): max(0, max over stackable items of z + (isFlat ? 0 :
// stackHeight*factor)). Non-stackable items are ignored for height
// purposes but still count toward occupation.
func (r *Registry) StackHeightAt(x, y int, excludeID string) float64 {
	height := 0.0
	for _, inst := range r.StackAt(x, y) {
		if inst.InstanceID == excludeID {
			continue
		}
		def, ok := r.definitionOf(&inst)
		if !ok || !def.Stackable {
			continue
		}
		contribution := inst.Z
		if !def.IsFlat {
			contribution += def.StackHeight * r.stackFactor
		}
		if contribution > height {
			height = contribution
		}
	}
	return math.Max(0, height)
}

// IsSolidBlocked reports whether any non-walkable, non-flat instance's
// footprint covers (x,y), or (if actorAt is non-nil) a non-player actor
// occupies it.
func (r *Registry) IsSolidBlocked(x, y int, excludeID string, actorAt ActorOccupant) bool {
	for _, inst := range r.StackAt(x, y) {
		if inst.InstanceID == excludeID {
			continue
		}
		def, ok := r.definitionOf(&inst)
		if !ok {
			continue
		}
		if !def.IsWalkable && !def.IsFlat {
			return true
		}
	}
	if actorAt != nil && actorAt(x, y) {
		return true
	}
	return false
}

// TopNonStackableBlocksPlacement reports whether the topmost item on
// (x,y) is present and not stackable, which blocks a non-flat placement
// (used by placement validation).
func (r *Registry) TopNonStackableBlocksPlacement(x, y int) bool {
	stack := r.StackAt(x, y)
	if len(stack) == 0 {
		return false
	}
	var top Instance
	found := false
	for _, inst := range stack {
		if !found || inst.Z > top.Z {
			top = inst
			found = true
		}
	}
	if !found {
		return false
	}
	def, ok := r.definitionOf(&top)
	if !ok {
		return false
	}
	return !def.Stackable
}

// IsWalkable reports whether (x,y) is valid terrain and not blocked by a
// solid instance or actor. terrainOK is the result of the room's grid
// lookup (grid.Layout.IsValidTerrain), passed in so this package stays
// independent of the grid package.
func (r *Registry) IsWalkable(x, y int, terrainOK bool, actorAt ActorOccupant) bool {
	return terrainOK && !r.IsSolidBlocked(x, y, "", actorAt)
}

// GetInteractionTile derives the cell an avatar must stand on to interact
// with inst: rotate the definition's SitFacingDir by the instance's
// rotation, then step one cell opposite that facing from the instance's
// base cell. Doors reuse the same derivation.
func (r *Registry) GetInteractionTile(inst Instance) (Point, bool) {
	def, ok := r.definitionOf(&inst)
	if !ok {
		return Point{}, false
	}
	facing := octant.Rotate(def.SitFacingDir, inst.Rotation)
	opposite := octant.Opposite(facing)
	dx, dy := octant.Offset(opposite)
	return Point{X: inst.X + dx, Y: inst.Y + dy}, true
}
