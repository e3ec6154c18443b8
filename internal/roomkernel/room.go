// Package roomkernel implements C5: one room's simulation loop. A Room
// owns its grid, furniture registry, and resident avatars; every mutation
// is serialized through its single goroutine-confined call path (the
// World Director guarantees only one goroutine drives a given Room at a
// time; Room itself does not lock).
package roomkernel

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/tilehaven/roomserver/internal/apperrors"
	"github.com/tilehaven/roomserver/internal/avatar"
	"github.com/tilehaven/roomserver/internal/catalog"
	"github.com/tilehaven/roomserver/internal/delivery/dto"
	"github.com/tilehaven/roomserver/internal/furniture"
	"github.com/tilehaven/roomserver/internal/grid"
	"github.com/tilehaven/roomserver/internal/octant"
	"github.com/tilehaven/roomserver/internal/pathfind"
	"github.com/tilehaven/roomserver/internal/persistence"
)

// Emitter delivers outbound events either to one session or to every
// subscriber of a room. The websocket Hub implements this; kernel tests
// use a recording fake.
type Emitter interface {
	Unicast(runtimeID string, event any)
	Broadcast(roomID string, event any)
}

// Limits bundles the subset of process configuration the kernel needs,
// kept narrow so tests can construct one without internal/config.
type Limits struct {
	MaxStackZ      float64
	StackFactor    float64
	AvatarDefaultZ float64
	RecolorWhitelist map[string]bool
}

// Room is one simulated room: its static layout, its furniture registry,
// and its currently-resident avatars.
type Room struct {
	ID       string
	layout   grid.Layout
	catalog  *furniture.Catalog
	registry *furniture.Registry
	emotes   *catalog.EmoteCatalog

	avatars     map[string]*avatar.Avatar // keyed by runtimeID
	avatarOrder []string

	store   persistence.Facade
	limits  Limits
	log     *zap.Logger
	emitter Emitter
}

// New builds a Room. registry should already be populated (e.g. loaded
// from the persistence facade by the World Director before Join-ing
// anyone).
func New(id string, layout grid.Layout, cat *furniture.Catalog, registry *furniture.Registry, emotes *catalog.EmoteCatalog, store persistence.Facade, limits Limits, log *zap.Logger, emitter Emitter) *Room {
	return &Room{
		ID:       id,
		layout:   layout,
		catalog:  cat,
		registry: registry,
		emotes:   emotes,
		avatars:  make(map[string]*avatar.Avatar),
		store:    store,
		limits:   limits,
		log:      log,
		emitter:  emitter,
	}
}

// actorOccupant returns a furniture.ActorOccupant that treats every
// standing (non-sitting) avatar except excludeRuntimeID as a solid body.
func (r *Room) actorOccupant(excludeRuntimeID string) furniture.ActorOccupant {
	return func(x, y int) bool {
		for id, av := range r.avatars {
			if id == excludeRuntimeID || av.State == avatar.Sitting {
				continue
			}
			if int(math.Round(av.X)) == x && int(math.Round(av.Y)) == y {
				return true
			}
		}
		return false
	}
}

// IsWalkable reports whether (x,y) may be entered, ignoring
// excludeRuntimeID's own body.
func (r *Room) IsWalkable(x, y int, excludeRuntimeID string) bool {
	return r.registry.IsWalkable(x, y, r.layout.IsValidTerrain(x, y), r.actorOccupant(excludeRuntimeID))
}

// Cols reports the room's grid width, used by the World Director's spawn
// search.
func (r *Room) Cols() int { return r.layout.Cols }

// Rows reports the room's grid height, used by the World Director's spawn
// search.
func (r *Room) Rows() int { return r.layout.Rows }

func (r *Room) walkableFor(excludeRuntimeID string) pathfind.Walkable {
	return func(x, y int) bool {
		return r.IsWalkable(x, y, excludeRuntimeID)
	}
}

// Join adds a prepared avatar to the room at its current (X,Y), as-is (the
// World Director resolves a spawn cell via its spiral-search fallback
// before calling Join).
func (r *Room) Join(av *avatar.Avatar) {
	av.RoomID = r.ID
	r.avatars[av.RuntimeID] = av
	r.avatarOrder = append(r.avatarOrder, av.RuntimeID)
	r.emitter.Broadcast(r.ID, dto.AvatarAdded{Avatar: r.avatarDTO(av)})
	r.emitter.Broadcast(r.ID, r.userListUpdate())
}

// Leave removes runtimeID's avatar from the room, if present.
func (r *Room) Leave(runtimeID string) (*avatar.Avatar, bool) {
	av, ok := r.avatars[runtimeID]
	if !ok {
		return nil, false
	}
	delete(r.avatars, runtimeID)
	for i, id := range r.avatarOrder {
		if id == runtimeID {
			r.avatarOrder = append(r.avatarOrder[:i], r.avatarOrder[i+1:]...)
			break
		}
	}
	r.emitter.Broadcast(r.ID, dto.AvatarRemoved{ID: runtimeID})
	r.emitter.Broadcast(r.ID, r.userListUpdate())
	return av, true
}

// Avatar returns the live avatar for runtimeID, if it is currently in this
// room. Used by the Ingress layer for chat/profile/shop reads that don't
// warrant their own Room Kernel operation.
func (r *Room) Avatar(runtimeID string) (*avatar.Avatar, bool) {
	av, ok := r.avatars[runtimeID]
	return av, ok
}

// UserList returns the room's current user list snapshot.
func (r *Room) UserList() dto.UserListUpdate {
	return r.userListUpdate()
}

// Profile returns the wire projection of runtimeID's avatar, for the
// RequestProfile intent.
func (r *Room) Profile(runtimeID string) (dto.AvatarDTO, bool) {
	av, ok := r.avatars[runtimeID]
	if !ok {
		return dto.AvatarDTO{}, false
	}
	return r.avatarDTO(av), true
}

// SetAvatarColor validates hex against whitelist and applies it as the
// avatar's cosmetic body color, broadcasting the change. Empty hex is
// rejected; "reset to default" is not a supported chat command.
func (r *Room) SetAvatarColor(runtimeID, hex string, whitelist map[string]bool) error {
	av, ok := r.avatars[runtimeID]
	if !ok {
		return apperrors.Validation("SetColor", "unknown_avatar")
	}
	if !whitelist[hex] {
		return apperrors.Validation("SetColor", "invalid_color")
	}
	av.BodyColor = hex
	r.emitter.Broadcast(r.ID, r.avatarUpdateFull(av))
	return nil
}

func (r *Room) userListUpdate() dto.UserListUpdate {
	entries := make([]dto.UserListEntry, 0, len(r.avatarOrder))
	for _, id := range r.avatarOrder {
		av := r.avatars[id]
		entries = append(entries, dto.UserListEntry{ID: av.RuntimeID, Name: av.Name})
	}
	return dto.UserListUpdate{Users: entries}
}

// RequestMove validates and starts a walk toward (x,y).
func (r *Room) RequestMove(runtimeID string, x, y int) error {
	av, ok := r.avatars[runtimeID]
	if !ok {
		return apperrors.Validation("Move", "unknown_avatar")
	}
	if av.State == avatar.Sitting {
		return apperrors.Validation("Move", "sitting")
	}
	if !r.IsWalkable(x, y, runtimeID) {
		return apperrors.Validation("Move", "not_walkable")
	}

	start := pathfind.Point{X: int(math.Round(av.X)), Y: int(math.Round(av.Y))}
	goal := pathfind.Point{X: x, Y: y}
	path, ok := pathfind.FindPath(start, goal, r.layout.Cols, r.layout.Rows, r.walkableFor(runtimeID))
	if !ok {
		return apperrors.Validation("Move", "unreachable")
	}

	waypoints := toAvatarPath(path)
	if err := av.MoveTo(waypoints, nil); err != nil {
		return apperrors.StateConflict("Move", "cannot_move")
	}
	return nil
}

func toAvatarPath(path []pathfind.Point) []avatar.Point {
	if len(path) <= 1 {
		return nil
	}
	out := make([]avatar.Point, 0, len(path)-1)
	for _, p := range path[1:] {
		out = append(out, avatar.Point{X: p.X, Y: p.Y})
	}
	return out
}

// RequestSit validates and either resolves immediately or paths to the
// target's interaction tile with a deferred action. A door instance
// reuses the same seat-approach geometry but resolves to a PortalAction
// instead of SitAction — the original's door activation rode the same
// moveTo endpoint as sitting, and this is that behavior done properly: a
// typed action selected once, by catalog shape, never by an unbound
// identifier at arrival.
//
// The returned *ArrivalOutcome is non-nil only when the avatar was
// already standing on the interaction tile and the target was a door;
// the caller (the Dispatcher, via World Director's ChangeRoom) must
// perform the room change. For every
// other outcome (deferred path, immediate seat, any failure) it is nil.
func (r *Room) RequestSit(runtimeID, instanceID string) (*ArrivalOutcome, error) {
	av, ok := r.avatars[runtimeID]
	if !ok {
		return nil, apperrors.Validation("Sit", "unknown_avatar")
	}
	if av.State == avatar.Sitting {
		return nil, apperrors.Validation("Sit", "already_sitting")
	}
	inst, ok := r.registry.Get(instanceID)
	if !ok {
		return nil, apperrors.Validation("Sit", "unknown_instance")
	}
	def, ok := r.catalog.Lookup(inst.DefinitionID)
	if !ok || (!def.CanSit && !def.IsDoor) {
		return nil, apperrors.Validation("Sit", "cannot_sit")
	}
	if def.IsDoor && def.TargetRoomID == "" {
		return nil, apperrors.StateConflict("Sit", "door_no_target")
	}
	if !def.IsDoor && r.seatOccupant(instanceID) != "" {
		return nil, apperrors.Validation("Sit", "seat_occupied")
	}
	tile, ok := r.registry.GetInteractionTile(inst)
	if !ok {
		return nil, apperrors.Internal("Sit", "interaction tile undeterminable")
	}

	pending := r.pendingActionFor(instanceID, def)

	cur := pathfind.Point{X: int(math.Round(av.X)), Y: int(math.Round(av.Y))}
	if cur.X == tile.X && cur.Y == tile.Y {
		if def.IsDoor {
			portal := pending.(avatar.PortalAction)
			return &ArrivalOutcome{RuntimeID: runtimeID, PortalTarget: portal, IsPortal: true}, nil
		}
		return nil, r.trySit(av, inst, def)
	}

	if !r.IsWalkable(tile.X, tile.Y, runtimeID) {
		return nil, apperrors.Validation("Sit", "seat_unreachable")
	}
	goal := pathfind.Point{X: tile.X, Y: tile.Y}
	path, ok := pathfind.FindPath(cur, goal, r.layout.Cols, r.layout.Rows, r.walkableFor(runtimeID))
	if !ok {
		return nil, apperrors.Validation("Sit", "seat_unreachable")
	}
	if err := av.MoveTo(toAvatarPath(path), pending); err != nil {
		return nil, apperrors.StateConflict("Sit", "cannot_move")
	}
	return nil, nil
}

func (r *Room) pendingActionFor(instanceID string, def furniture.Definition) avatar.DeferredAction {
	if def.IsDoor {
		return avatar.PortalAction{
			TargetRoomID: def.TargetRoomID,
			TargetX:      def.TargetX,
			TargetY:      def.TargetY,
			HasTarget:    true,
		}
	}
	return avatar.SitAction{InstanceID: instanceID}
}

// seatOccupant returns the runtimeID of whichever avatar (if any) is
// sitting on instanceID.
func (r *Room) seatOccupant(instanceID string) string {
	for id, av := range r.avatars {
		if av.State == avatar.Sitting && av.SittingOnInstanceID == instanceID {
			return id
		}
	}
	return ""
}

func (r *Room) trySit(av *avatar.Avatar, inst furniture.Instance, def furniture.Definition) error {
	facing := octant.Rotate(def.SitFacingDir, inst.Rotation)
	av.SnapSit(inst.X, inst.Y, inst.Z+def.SitHeightOffset, facing, inst.InstanceID)
	r.emitter.Broadcast(r.ID, r.avatarUpdateFull(av))
	return nil
}

// RequestStand stands runtimeID up, relocating it to a walkable cell
// adjacent to the seat if one exists.
func (r *Room) RequestStand(runtimeID string) error {
	av, ok := r.avatars[runtimeID]
	if !ok {
		return apperrors.Validation("Stand", "unknown_avatar")
	}
	seatX, seatY := int(math.Round(av.X)), int(math.Round(av.Y))
	if err := av.Stand(r.limits.AvatarDefaultZ); err != nil {
		return apperrors.Validation("Stand", "not_sitting")
	}
	if cell, ok := r.firstWalkableAdjacent(seatX, seatY, runtimeID); ok {
		av.RelocateTo(cell.X, cell.Y)
	}
	r.emitter.Broadcast(r.ID, r.avatarUpdateFull(av))
	return nil
}

func (r *Room) firstWalkableAdjacent(x, y int, excludeRuntimeID string) (pathfind.Point, bool) {
	offsets := [4]pathfind.Point{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}
	for _, off := range offsets {
		cand := pathfind.Point{X: x + off.X, Y: y + off.Y}
		if r.IsWalkable(cand.X, cand.Y, excludeRuntimeID) {
			return cand, true
		}
	}
	return pathfind.Point{}, false
}

// RequestPlace validates and places a new furniture instance, persisting
// it before the room acknowledges success.
func (r *Room) RequestPlace(ctx context.Context, runtimeID, definitionID string, x, y, rotation int) error {
	av, ok := r.avatars[runtimeID]
	if !ok {
		return apperrors.Validation("PlaceFurni", "unknown_avatar")
	}
	if av.Inventory[definitionID] <= 0 {
		return apperrors.Validation("PlaceFurni", "not_in_inventory")
	}
	def, ok := r.catalog.Lookup(definitionID)
	if !ok {
		return apperrors.Validation("PlaceFurni", "unknown_definition")
	}

	for _, tile := range furniture.Footprint(x, y, def.Width, def.Height) {
		if !r.layout.IsValidTerrain(tile.X, tile.Y) {
			return apperrors.Validation("PlaceFurni", "invalid_terrain")
		}
		if !def.IsFlat && r.registry.TopNonStackableBlocksPlacement(tile.X, tile.Y) {
			return apperrors.Validation("PlaceFurni", "blocked")
		}
	}

	z := r.registry.StackHeightAt(x, y, "") + def.ZOffset
	if z >= r.limits.MaxStackZ {
		return apperrors.Validation("PlaceFurni", "stack_overflow")
	}

	row := persistence.FurnitureRow{
		RoomID:       r.ID,
		DefinitionID: definitionID,
		X:            x,
		Y:            y,
		Z:            z,
		Rotation:     rotation,
		OwnerUserID:  av.UserID,
		State:        def.DefaultState,
	}
	instanceID, err := r.store.InsertFurniture(ctx, row)
	if err != nil {
		return apperrors.Persistence("PlaceFurni", "insert_failed")
	}

	av.Inventory[definitionID]--
	if av.Inventory[definitionID] <= 0 {
		delete(av.Inventory, definitionID)
	}

	inst := furniture.Instance{
		InstanceID:   instanceID,
		DefinitionID: definitionID,
		X:            x,
		Y:            y,
		Z:            z,
		Rotation:     rotation,
		OwnerUserID:  av.UserID,
		State:        def.DefaultState,
	}
	r.registry.Add(inst)
	r.emitter.Broadcast(r.ID, dto.FurniAdded{Furni: r.furniDTO(inst, def)})
	r.emitter.Unicast(runtimeID, dto.InventoryUpdate{Inventory: av.Inventory})
	return nil
}

// RequestPickup validates ownership and occlusion, then removes the
// instance. The persistence delete runs first; if it fails, nothing else
// changes (apperrors.Persistence below). Once it succeeds the instance
// leaves the registry and the inventory credit is an in-memory increment
// with no failure path, so no reinsertion is done.
func (r *Room) RequestPickup(ctx context.Context, runtimeID, instanceID string) error {
	av, ok := r.avatars[runtimeID]
	if !ok {
		return apperrors.Validation("PickupFurni", "unknown_avatar")
	}
	inst, ok := r.registry.Get(instanceID)
	if !ok {
		return apperrors.Validation("PickupFurni", "unknown_instance")
	}
	if inst.OwnerUserID != "" && inst.OwnerUserID != av.UserID {
		return apperrors.Validation("PickupFurni", "not_owner")
	}
	def, ok := r.catalog.Lookup(inst.DefinitionID)
	if !ok {
		return apperrors.Internal("PickupFurni", "instance references unknown definition")
	}
	if r.anyInstanceOverlapsAbove(inst) {
		return apperrors.Validation("PickupFurni", "obstructed")
	}
	if r.seatOccupant(instanceID) != "" {
		return apperrors.Validation("PickupFurni", "occupied")
	}

	if err := r.store.DeleteFurniture(ctx, instanceID); err != nil {
		return apperrors.Persistence("PickupFurni", "delete_failed")
	}
	r.registry.Remove(instanceID)
	av.Inventory[def.DefinitionID]++
	r.emitter.Broadcast(r.ID, dto.FurniRemoved{ID: instanceID})
	r.emitter.Unicast(runtimeID, dto.InventoryUpdate{Inventory: av.Inventory})
	return nil
}

func (r *Room) anyInstanceOverlapsAbove(inst furniture.Instance) bool {
	for _, tile := range furniture.Footprint(inst.X, inst.Y, 1, 1) {
		for _, other := range r.registry.StackAt(tile.X, tile.Y) {
			if other.InstanceID != inst.InstanceID && other.Z > inst.Z {
				return true
			}
		}
	}
	return false
}

// RequestRotate rotates instanceID by 90 degrees (two octant steps) and
// recomputes the facing of any avatar sitting on it.
func (r *Room) RequestRotate(ctx context.Context, runtimeID, instanceID string) error {
	av, ok := r.avatars[runtimeID]
	if !ok {
		return apperrors.Validation("RotateFurni", "unknown_avatar")
	}
	inst, ok := r.registry.Get(instanceID)
	if !ok {
		return apperrors.Validation("RotateFurni", "unknown_instance")
	}
	if inst.OwnerUserID != "" && inst.OwnerUserID != av.UserID {
		return apperrors.Validation("RotateFurni", "not_owner")
	}
	def, ok := r.catalog.Lookup(inst.DefinitionID)
	if !ok {
		return apperrors.Internal("RotateFurni", "instance references unknown definition")
	}

	newRotation := octant.Normalize(inst.Rotation + 2)
	if err := r.store.UpdateFurniture(ctx, instanceID, persistence.FurniturePatch{Rotation: &newRotation}); err != nil {
		return apperrors.Persistence("RotateFurni", "update_failed")
	}
	updated, _ := r.registry.Update(instanceID, func(i *furniture.Instance) { i.Rotation = newRotation })

	r.emitter.Broadcast(r.ID, dto.FurniUpdated{ID: instanceID, Rotation: &newRotation})

	if seated := r.seatOccupant(instanceID); seated != "" {
		seatedAv := r.avatars[seated]
		seatedAv.Direction = octant.Rotate(def.SitFacingDir, updated.Rotation)
		r.emitter.Broadcast(r.ID, r.avatarUpdateFull(seatedAv))
	}
	return nil
}

// RequestUse toggles a usable, non-door instance's on/off state and
// recomputes its z with a small state-dependent bias.
func (r *Room) RequestUse(ctx context.Context, runtimeID, instanceID string) error {
	if _, ok := r.avatars[runtimeID]; !ok {
		return apperrors.Validation("UseFurni", "unknown_avatar")
	}
	inst, ok := r.registry.Get(instanceID)
	if !ok {
		return apperrors.Validation("UseFurni", "unknown_instance")
	}
	def, ok := r.catalog.Lookup(inst.DefinitionID)
	if !ok || !def.CanUse || def.IsDoor {
		return apperrors.Validation("UseFurni", "cannot_use")
	}

	newState := inst.State
	if def.IsToggle {
		if inst.State == "on" {
			newState = "off"
		} else {
			newState = "on"
		}
	}

	epsilon := 0.0
	if newState == "on" {
		epsilon = 0.01
	}
	newZ := r.registry.StackHeightAt(inst.X, inst.Y, instanceID) + def.ZOffset + epsilon

	patch := persistence.FurniturePatch{State: &newState, Z: &newZ}
	if err := r.store.UpdateFurniture(ctx, instanceID, patch); err != nil {
		return apperrors.Persistence("UseFurni", "update_failed")
	}
	r.registry.Update(instanceID, func(i *furniture.Instance) {
		i.State = newState
		i.Z = newZ
	})
	r.emitter.Broadcast(r.ID, dto.FurniUpdated{ID: instanceID, State: &newState, Z: &newZ})
	return nil
}

// RequestRecolor validates ownership, canRecolor, and whitelist
// membership before applying a color override (nil/empty resets it).
func (r *Room) RequestRecolor(ctx context.Context, runtimeID, instanceID string, hex *string) error {
	av, ok := r.avatars[runtimeID]
	if !ok {
		return apperrors.Validation("RecolorFurni", "unknown_avatar")
	}
	inst, ok := r.registry.Get(instanceID)
	if !ok {
		return apperrors.Validation("RecolorFurni", "unknown_instance")
	}
	if inst.OwnerUserID != "" && inst.OwnerUserID != av.UserID {
		return apperrors.Validation("RecolorFurni", "not_owner")
	}
	def, ok := r.catalog.Lookup(inst.DefinitionID)
	if !ok || !def.CanRecolor {
		return apperrors.Validation("RecolorFurni", "cannot_recolor")
	}

	newColor := ""
	if hex != nil && *hex != "" {
		if !r.limits.RecolorWhitelist[*hex] {
			return apperrors.Validation("RecolorFurni", "invalid_color")
		}
		newColor = *hex
	}

	if err := r.store.UpdateFurniture(ctx, instanceID, persistence.FurniturePatch{ColorOverride: &newColor}); err != nil {
		return apperrors.Persistence("RecolorFurni", "update_failed")
	}
	r.registry.Update(instanceID, func(i *furniture.Instance) { i.ColorOverride = newColor })
	r.emitter.Broadcast(r.ID, dto.FurniUpdated{ID: instanceID, ColorOverride: &newColor})
	return nil
}

// ArrivalOutcome reports what a Tick's path-arrival dispatch resolved to,
// so the World Director can act on a portal arrival (it alone decides the
// avatar's next room).
type ArrivalOutcome struct {
	RuntimeID    string
	PortalTarget avatar.PortalAction
	IsPortal     bool
}

// Tick advances every Walking avatar, resolves arrivals (Sit rechecked
// in-room; Portal collected for the caller to hand to the World
// Director), and emits AvatarUpdate deltas only for avatars that actually
// changed.
func (r *Room) Tick(dt float64, now float64) []ArrivalOutcome {
	var arrivals []ArrivalOutcome
	for _, runtimeID := range r.avatarOrder {
		av := r.avatars[runtimeID]
		result := av.Tick(dt, now)
		if !result.Changed {
			continue
		}

		if result.Arrived && av.ActionAfterPath != nil {
			switch action := av.ActionAfterPath.(type) {
			case avatar.SitAction:
				r.resolveDeferredSit(av, action)
			case avatar.PortalAction:
				arrivals = append(arrivals, ArrivalOutcome{RuntimeID: runtimeID, PortalTarget: action, IsPortal: true})
				av.ActionAfterPath = nil
				continue // Director owns the AvatarUpdate/removal for a portal arrival
			}
		}

		r.emitter.Broadcast(r.ID, r.avatarUpdateFull(av))
	}
	return arrivals
}

func (r *Room) resolveDeferredSit(av *avatar.Avatar, action avatar.SitAction) {
	inst, ok := r.registry.Get(action.InstanceID)
	if !ok {
		av.AbandonDeferredAction()
		return
	}
	def, ok := r.catalog.Lookup(inst.DefinitionID)
	if !ok || !def.CanSit || r.seatOccupant(action.InstanceID) != "" {
		av.AbandonDeferredAction()
		return
	}
	_ = r.trySit(av, inst, def)
}

// StateSnapshot returns the full room DTO used by Ingress on join or room
// change.
func (r *Room) StateSnapshot() dto.RoomState {
	furnis := make([]dto.FurniDTO, 0, len(r.registry.All()))
	for _, inst := range r.registry.All() {
		def, ok := r.catalog.Lookup(inst.DefinitionID)
		if !ok {
			continue
		}
		furnis = append(furnis, r.furniDTO(inst, def))
	}
	avs := make([]dto.AvatarDTO, 0, len(r.avatarOrder))
	for _, id := range r.avatarOrder {
		avs = append(avs, r.avatarDTO(r.avatars[id]))
	}
	return dto.RoomState{
		Layout:    r.layout.ToWire(),
		Cols:      r.layout.Cols,
		Rows:      r.layout.Rows,
		Furniture: furnis,
		Avatars:   avs,
	}
}

func (r *Room) furniDTO(inst furniture.Instance, def furniture.Definition) dto.FurniDTO {
	return dto.FurniDTO{
		ID:            inst.InstanceID,
		X:             inst.X,
		Y:             inst.Y,
		Z:             inst.Z,
		DefinitionID:  inst.DefinitionID,
		Rotation:      inst.Rotation,
		State:         inst.State,
		ColorOverride: inst.ColorOverride,
		IsDoor:        def.IsDoor,
		TargetRoomID:  def.TargetRoomID,
		OwnerID:       inst.OwnerUserID,
	}
}

func (r *Room) avatarDTO(av *avatar.Avatar) dto.AvatarDTO {
	return dto.AvatarDTO{
		ID:               av.RuntimeID,
		X:                av.X,
		Y:                av.Y,
		Z:                av.Z,
		Name:             av.Name,
		RoomID:           av.RoomID,
		State:            string(av.State),
		Direction:        av.Direction,
		SittingOnFurniID: av.SittingOnInstanceID,
		BodyColor:        av.BodyColor,
		EmoteID:          av.EmoteID,
	}
}

func (r *Room) avatarUpdateFull(av *avatar.Avatar) dto.AvatarUpdate {
	x, y, z, direction := av.X, av.Y, av.Z, av.Direction
	state := string(av.State)
	return dto.AvatarUpdate{ID: av.RuntimeID, X: &x, Y: &y, Z: &z, Direction: &direction, State: &state}
}

// RequestEmote starts or rejects an emote for runtimeID.
func (r *Room) RequestEmote(runtimeID, emoteID string, now float64) error {
	av, ok := r.avatars[runtimeID]
	if !ok {
		return apperrors.Validation("Emote", "unknown_avatar")
	}
	def, ok := r.emotes.Lookup(emoteID)
	if !ok {
		return apperrors.Validation("Emote", "unknown_emote")
	}
	if err := av.Emote(emoteID, def.DurationSeconds, now); err != nil {
		if avatar.IsSittingError(err) {
			return apperrors.Validation("Emote", "sitting")
		}
		return apperrors.Validation("Emote", "already_emoting")
	}
	r.emitter.Broadcast(r.ID, r.avatarUpdateFull(av))
	return nil
}
