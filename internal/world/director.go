// Package world implements the World Director: the process-wide registry
// of live Rooms, session-to-avatar binding, spawn-cell resolution, and the
// cross-room moves (ChangeRoom intents and portal arrivals) that a single
// Room Kernel is deliberately forbidden from performing itself.
package world

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tilehaven/roomserver/internal/apperrors"
	"github.com/tilehaven/roomserver/internal/avatar"
	"github.com/tilehaven/roomserver/internal/catalog"
	"github.com/tilehaven/roomserver/internal/delivery/dto"
	"github.com/tilehaven/roomserver/internal/furniture"
	"github.com/tilehaven/roomserver/internal/grid"
	"github.com/tilehaven/roomserver/internal/persistence"
	"github.com/tilehaven/roomserver/internal/roomkernel"
)

// Disconnector lets the Director force-close whatever transport session
// currently owns a runtimeID, without the Director needing to know
// anything about websockets. The Hub implements this.
type Disconnector interface {
	ForceDisconnect(runtimeID, reason string)
}

// Limits is the process-wide set of room-kernel limits the Director hands
// to every Room it creates.
type Limits = roomkernel.Limits

// Director owns every live Room and the session bookkeeping that spans
// them. Callers (the websocket Hub, the HTTP layer) only ever go through
// the Director — never straight to a Room — for anything that might move
// an avatar between rooms.
type Director struct {
	mu sync.Mutex

	rooms map[string]*roomkernel.Room

	avatarRoom  map[string]string // runtimeID -> current roomID
	userRuntime map[string]string // userID -> the one live runtimeID for that user

	store            persistence.Facade
	furnitureCatalog *furniture.Catalog
	emotes           *catalog.EmoteCatalog
	limits           Limits
	defaultSpeed     float64
	defaultRoomID    string

	emitter      roomkernel.Emitter
	disconnector Disconnector
	log          *zap.Logger
}

// New builds a Director with no rooms loaded yet; rooms are created
// lazily on first bind/visit via loadOrCreateRoom.
func New(store persistence.Facade, furnitureCatalog *furniture.Catalog, emotes *catalog.EmoteCatalog, limits Limits, defaultSpeed float64, defaultRoomID string, emitter roomkernel.Emitter, log *zap.Logger) *Director {
	return &Director{
		rooms:            make(map[string]*roomkernel.Room),
		avatarRoom:       make(map[string]string),
		userRuntime:      make(map[string]string),
		store:            store,
		furnitureCatalog: furnitureCatalog,
		emotes:           emotes,
		limits:           limits,
		defaultSpeed:     defaultSpeed,
		defaultRoomID:    defaultRoomID,
		emitter:          emitter,
		log:              log,
	}
}

// SetDisconnector wires the transport layer's force-disconnect hook. Must
// be called before the first Bind (cmd/server does this right after
// constructing both the Hub and the Director, since each needs the other).
func (d *Director) SetDisconnector(disc Disconnector) {
	d.disconnector = disc
}

// Room returns the live Room for roomID, loading/creating it first if
// this is the first reference to it this process.
func (d *Director) Room(ctx context.Context, roomID string) (*roomkernel.Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadOrCreateRoomLocked(ctx, roomID)
}

func (d *Director) loadOrCreateRoomLocked(ctx context.Context, roomID string) (*roomkernel.Room, error) {
	if room, ok := d.rooms[roomID]; ok {
		return room, nil
	}

	layout, ok, err := d.store.LoadRoomLayout(ctx, roomID)
	if err != nil {
		return nil, apperrors.Persistence("LoadRoom", "layout_read_failed")
	}
	if !ok {
		if def, found := grid.DefaultLayout(roomID); found {
			layout = def
		} else {
			d.log.Error("no layout for room in store or bundled defaults, falling back to 1x1 wall",
				zap.String("room_id", roomID))
			layout = grid.Fallback1x1Wall()
		}
	}

	registry := furniture.NewRegistry(d.furnitureCatalog, d.limits.StackFactor)
	rows, err := d.store.LoadFurniture(ctx, roomID)
	if err != nil {
		return nil, apperrors.Persistence("LoadRoom", "furniture_read_failed")
	}
	for _, row := range rows {
		registry.Add(furniture.Instance{
			InstanceID:    row.InstanceID,
			DefinitionID:  row.DefinitionID,
			X:             row.X,
			Y:             row.Y,
			Z:             row.Z,
			Rotation:      row.Rotation,
			OwnerUserID:   row.OwnerUserID,
			State:         row.State,
			ColorOverride: row.ColorOverride,
		})
	}

	room := roomkernel.New(roomID, layout, d.furnitureCatalog, registry, d.emotes, d.store, d.limits, d.log.With(zap.String("room_id", roomID)), d.emitter)
	d.rooms[roomID] = room
	return room, nil
}

// spawnPoint is a resolved (x,y) inside a room.
type spawnPoint struct {
	X, Y int
}

// resolveSpawn implements the avatar arrival search: a requested cell,
// then the room's center, then an outward spiral from the center, then a
// row-major scan for the first walkable tile, then (0,0) as an
// unwalkable-but-defined last resort (logged at error level, since it
// means the room has no walkable tile at all).
func (d *Director) resolveSpawn(room *roomkernel.Room, requested *spawnPoint, excludeRuntimeID string) spawnPoint {
	if requested != nil && room.IsWalkable(requested.X, requested.Y, excludeRuntimeID) {
		return *requested
	}

	cols, rows := room.Cols(), room.Rows()
	cx, cy := cols/2, rows/2
	if room.IsWalkable(cx, cy, excludeRuntimeID) {
		return spawnPoint{X: cx, Y: cy}
	}

	maxRadius := cols + rows
	for radius := 1; radius <= maxRadius; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if abs(dx) != radius && abs(dy) != radius {
					continue // only the ring at exactly this radius
				}
				x, y := cx+dx, cy+dy
				if room.IsWalkable(x, y, excludeRuntimeID) {
					return spawnPoint{X: x, Y: y}
				}
			}
		}
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if room.IsWalkable(x, y, excludeRuntimeID) {
				return spawnPoint{X: x, Y: y}
			}
		}
	}

	d.log.Error("room has no walkable spawn cell anywhere, spawning at (0,0)",
		zap.String("room_id", room.ID))
	return spawnPoint{X: 0, Y: 0}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Bind attaches userID to a fresh runtimeID, evicting any session the
// same user already had open, loads their profile (defaults when none is
// stored; the row is first written at Unbind), and joins them into their
// last room (or the process default). It sends the new session its full
// room snapshot and avatar id through the emitter.
func (d *Director) Bind(ctx context.Context, userID, runtimeID, name string) (*avatar.Avatar, error) {
	d.mu.Lock()
	if prevRuntimeID, ok := d.userRuntime[userID]; ok && prevRuntimeID != runtimeID {
		d.mu.Unlock()
		d.evict(ctx, prevRuntimeID, "replaced_by_new_session")
		d.mu.Lock()
	}
	d.userRuntime[userID] = runtimeID
	d.mu.Unlock()

	row, found, err := d.store.LoadUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Persistence("Bind", "user_read_failed")
	}

	roomID := d.defaultRoomID
	startX, startY := 0, 0
	currency := 0
	inventory := map[string]int{}
	bodyColor := ""
	if found {
		if row.LastRoomID != "" {
			roomID = row.LastRoomID
		}
		startX, startY = row.LastX, row.LastY
		currency = row.Currency
		inventory = row.Inventory
		bodyColor = row.BodyColor
	}
	if inventory == nil {
		inventory = map[string]int{}
	}

	room, err := d.Room(ctx, roomID)
	if err != nil {
		return nil, err
	}

	spawn := d.resolveSpawn(room, &spawnPoint{X: startX, Y: startY}, runtimeID)

	av := avatar.New(runtimeID, userID, name, roomID, spawn.X, spawn.Y, d.defaultSpeed)
	av.Currency = currency
	av.Inventory = inventory
	av.BodyColor = bodyColor

	d.mu.Lock()
	d.avatarRoom[runtimeID] = roomID
	d.mu.Unlock()

	room.Join(av)
	d.emitter.Unicast(runtimeID, dto.YourAvatarID{ID: runtimeID})
	d.emitter.Unicast(runtimeID, room.StateSnapshot())
	return av, nil
}

// evict force-disconnects a runtimeID's transport session and cleans up
// its simulation state, used when a user opens a second session.
func (d *Director) evict(ctx context.Context, runtimeID, reason string) {
	if d.disconnector != nil {
		d.disconnector.ForceDisconnect(runtimeID, reason)
	}
	d.Unbind(ctx, runtimeID)
}

// Unbind removes runtimeID's avatar from its current room and persists
// its profile back to the store. Safe to call more than once.
func (d *Director) Unbind(ctx context.Context, runtimeID string) {
	d.mu.Lock()
	roomID, ok := d.avatarRoom[runtimeID]
	if !ok {
		d.mu.Unlock()
		return
	}
	room := d.rooms[roomID]
	delete(d.avatarRoom, runtimeID)
	d.mu.Unlock()

	if room == nil {
		return
	}
	av, ok := room.Leave(runtimeID)
	if !ok {
		return
	}

	d.mu.Lock()
	if d.userRuntime[av.UserID] == runtimeID {
		delete(d.userRuntime, av.UserID)
	}
	d.mu.Unlock()

	lastRoomID := av.RoomID
	lastX, lastY := int(av.X), int(av.Y)
	currency := av.Currency
	bodyColor := av.BodyColor
	if err := d.store.UpdateUser(ctx, av.UserID, persistence.UserPatch{
		LastRoomID: &lastRoomID,
		LastX:      &lastX,
		LastY:      &lastY,
		Currency:   &currency,
		Inventory:  av.Inventory,
		BodyColor:  &bodyColor,
	}); err != nil {
		d.log.Error("failed to persist avatar on unbind", zap.String("user_id", av.UserID), zap.Error(err))
	}
}

// ChangeRoom moves runtimeID's avatar from its current room into
// targetRoomID, at an explicitly requested cell if given, otherwise at a
// resolved spawn point. Used for the ChangeRoom intent and for portal
// arrivals collected from Room.Tick/Room.RequestSit.
func (d *Director) ChangeRoom(ctx context.Context, runtimeID, targetRoomID string, requestedX, requestedY *int, hasRequested bool) error {
	d.mu.Lock()
	currentRoomID, ok := d.avatarRoom[runtimeID]
	d.mu.Unlock()
	if !ok {
		return apperrors.Validation("ChangeRoom", "unknown_avatar")
	}

	d.mu.Lock()
	currentRoom := d.rooms[currentRoomID]
	d.mu.Unlock()
	if currentRoom == nil {
		return apperrors.Internal("ChangeRoom", "current room not loaded")
	}

	targetRoom, err := d.Room(ctx, targetRoomID)
	if err != nil {
		return err
	}

	av, ok := currentRoom.Leave(runtimeID)
	if !ok {
		return apperrors.Validation("ChangeRoom", "unknown_avatar")
	}

	var requested *spawnPoint
	if hasRequested && requestedX != nil && requestedY != nil {
		requested = &spawnPoint{X: *requestedX, Y: *requestedY}
	}
	spawn := d.resolveSpawn(targetRoom, requested, runtimeID)

	av.PrepareRoomChange(targetRoomID, spawn.X, spawn.Y, d.limits.AvatarDefaultZ)

	d.mu.Lock()
	d.avatarRoom[runtimeID] = targetRoomID
	d.mu.Unlock()

	targetRoom.Join(av)
	d.emitter.Unicast(runtimeID, targetRoom.StateSnapshot())
	return nil
}

// Tick advances every live room by dt and resolves any portal arrivals
// each produced. now is a monotonic seconds clock, threaded through to
// Room.Tick for emote-expiry comparisons.
func (d *Director) Tick(ctx context.Context, dt, now float64) {
	d.mu.Lock()
	rooms := make([]*roomkernel.Room, 0, len(d.rooms))
	for _, room := range d.rooms {
		rooms = append(rooms, room)
	}
	d.mu.Unlock()

	for _, room := range rooms {
		arrivals := room.Tick(dt, now)
		for _, arrival := range arrivals {
			target := arrival.PortalTarget
			var x, y *int
			hasRequested := target.HasTarget
			if hasRequested {
				x, y = &target.TargetX, &target.TargetY
			}
			if err := d.ChangeRoom(ctx, arrival.RuntimeID, target.TargetRoomID, x, y, hasRequested); err != nil {
				d.log.Error("portal arrival failed to resolve",
					zap.String("runtime_id", arrival.RuntimeID),
					zap.String("target_room_id", target.TargetRoomID),
					zap.Error(err))
			}
		}
	}
}

// RoomIDFor returns the room a live runtimeID currently occupies.
func (d *Director) RoomIDFor(runtimeID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	roomID, ok := d.avatarRoom[runtimeID]
	return roomID, ok
}
