// Package avatar implements C4: the per-avatar state machine, its path
// follower, and deferred-action dispatch on arrival. A Room Kernel owns
// many Avatars; this package knows nothing about rooms, registries, or
// pathfinding — it only advances the state it is given.
package avatar

import "github.com/tilehaven/roomserver/internal/octant"

// State is the avatar's coarse activity.
type State string

const (
	Idle    State = "idle"
	Walking State = "walking"
	Sitting State = "sitting"
	Emoting State = "emoting"
)

// Point is an integer grid coordinate, duplicated locally (as in package
// furniture) to keep avatar a leaf package independent of pathfind.
type Point struct {
	X, Y int
}

// DeferredAction is the closed sum type evaluated when a Walking avatar
// reaches the end of its path. A nil DeferredAction means plain arrival:
// go Idle, nothing further to dispatch. The unexported marker method
// closes the set to this package's two variants; callers (the Room Kernel
// and World Director) dispatch with a type switch.
type DeferredAction interface {
	isDeferredAction()
}

// SitAction re-checks the named seat at arrival: it must still exist,
// allow sitting, and be unoccupied.
type SitAction struct {
	InstanceID string
}

func (SitAction) isDeferredAction() {}

// PortalAction hands arrival off to the World Director, which alone
// decides the avatar's new room and position; the avatar does not set its
// own state for this case.
type PortalAction struct {
	TargetRoomID string
	TargetX      int
	TargetY      int
	HasTarget    bool // whether TargetX/TargetY were provided by the door
}

func (PortalAction) isDeferredAction() {}

// Avatar is one resident's live simulation state. RuntimeID is ephemeral
// (assigned at join); UserID is the persistent identity.
type Avatar struct {
	RuntimeID string
	UserID    string
	Name      string
	RoomID    string

	X, Y, Z float64
	Direction int // 0..7, see package octant

	State              State
	SittingOnInstanceID string // empty means not sitting

	Path            []Point // remaining waypoints, nearest first
	ActionAfterPath DeferredAction // nil means no pending action

	Speed float64 // tiles/sec

	Currency  int
	Inventory map[string]int // definitionId -> count

	BodyColor string

	EmoteID     string
	EmoteExpiry float64 // seconds on the caller's clock (the now passed to Emote/Tick); zero means no active emote
}

// New builds an Idle avatar at (x,y) with no pending path or action.
func New(runtimeID, userID, name, roomID string, x, y int, speed float64) *Avatar {
	return &Avatar{
		RuntimeID: runtimeID,
		UserID:    userID,
		Name:      name,
		RoomID:    roomID,
		X:         float64(x),
		Y:         float64(y),
		State:     Idle,
		Speed:     speed,
		Inventory: make(map[string]int),
	}
}

// HasActiveEmote reports whether now is still within the avatar's emote
// window.
func (a *Avatar) HasActiveEmote(now float64) bool {
	return a.State == Emoting && now < a.EmoteExpiry
}

// CancelEmote clears emote state without changing State; callers that
// start movement while Emoting call this to implicitly cancel it.
func (a *Avatar) CancelEmote() {
	a.EmoteID = ""
	a.EmoteExpiry = 0
}

// facingToward returns the octant from (fromX,fromY) toward (toX,toY).
func facingToward(fromX, fromY, toX, toY float64) int {
	return octant.FromDelta(toX-fromX, toY-fromY)
}
