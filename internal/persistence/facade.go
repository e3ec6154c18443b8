// Package persistence implements C8: the narrow store-facing contract the
// Room Kernel and World Director depend on. The core never talks to a
// database directly; every store operation goes through Facade so a real
// backend can replace the in-memory implementation without touching
// simulation code.
package persistence

import (
	"context"

	"github.com/tilehaven/roomserver/internal/grid"
)

// FurnitureRow is the persisted shape of one placed furniture instance.
type FurnitureRow struct {
	InstanceID    string
	RoomID        string
	DefinitionID  string
	X, Y          int
	Z             float64
	Rotation      int
	OwnerUserID   string
	State         string
	ColorOverride string
}

// FurniturePatch carries only the fields a partial update should change;
// nil means "leave as-is".
type FurniturePatch struct {
	X, Y          *int
	Z             *float64
	Rotation      *int
	State         *string
	ColorOverride *string
}

// UserRow is the persisted shape of one account's profile and simulation
// state, reloaded on session bind and written back on unbind.
type UserRow struct {
	UserID      string
	LastRoomID  string
	LastX       int
	LastY       int
	Currency    int
	Inventory   map[string]int
	BodyColor   string
}

// UserPatch carries only the fields a partial update should change.
type UserPatch struct {
	LastRoomID *string
	LastX      *int
	LastY      *int
	Currency   *int
	Inventory  map[string]int
	BodyColor  *string
}

// Facade is the full persistence contract. Every method can fail; a
// Persistence failure during Place or Pickup is fatal to that Room Kernel
// operation — in-memory state must never diverge from a failed write.
type Facade interface {
	LoadRoomLayout(ctx context.Context, roomID string) (grid.Layout, bool, error)
	SaveRoomLayout(ctx context.Context, roomID string, layout grid.Layout) error

	LoadFurniture(ctx context.Context, roomID string) ([]FurnitureRow, error)
	InsertFurniture(ctx context.Context, row FurnitureRow) (string, error)
	UpdateFurniture(ctx context.Context, instanceID string, patch FurniturePatch) error
	DeleteFurniture(ctx context.Context, instanceID string) error

	LoadUser(ctx context.Context, userID string) (UserRow, bool, error)
	UpdateUser(ctx context.Context, userID string, patch UserPatch) error
}
