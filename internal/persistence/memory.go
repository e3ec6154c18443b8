package persistence

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tilehaven/roomserver/internal/apperrors"
	"github.com/tilehaven/roomserver/internal/grid"
)

// InMemory is a process-local Facade backed by mutex-protected maps. It is
// the default store wired by cmd/server: durable enough for development
// and for the test suite, swappable for a real database later without any
// change to Room Kernel or World Director code.
type InMemory struct {
	mu sync.RWMutex

	layouts   map[string]grid.Layout
	furniture map[string]FurnitureRow // keyed by instanceID
	users     map[string]UserRow
}

// NewInMemory builds an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		layouts:   make(map[string]grid.Layout),
		furniture: make(map[string]FurnitureRow),
		users:     make(map[string]UserRow),
	}
}

func (s *InMemory) LoadRoomLayout(_ context.Context, roomID string) (grid.Layout, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	layout, ok := s.layouts[roomID]
	return layout, ok, nil
}

func (s *InMemory) SaveRoomLayout(_ context.Context, roomID string, layout grid.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[roomID] = layout
	return nil
}

func (s *InMemory) LoadFurniture(_ context.Context, roomID string) ([]FurnitureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []FurnitureRow
	for _, row := range s.furniture {
		if row.RoomID == roomID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *InMemory) InsertFurniture(_ context.Context, row FurnitureRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row.InstanceID == "" {
		row.InstanceID = uuid.New().String()
	}
	s.furniture[row.InstanceID] = row
	return row.InstanceID, nil
}

func (s *InMemory) UpdateFurniture(_ context.Context, instanceID string, patch FurniturePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.furniture[instanceID]
	if !ok {
		return &apperrors.NotFoundError{Resource: "furniture", ID: instanceID}
	}
	if patch.X != nil {
		row.X = *patch.X
	}
	if patch.Y != nil {
		row.Y = *patch.Y
	}
	if patch.Z != nil {
		row.Z = *patch.Z
	}
	if patch.Rotation != nil {
		row.Rotation = *patch.Rotation
	}
	if patch.State != nil {
		row.State = *patch.State
	}
	if patch.ColorOverride != nil {
		row.ColorOverride = *patch.ColorOverride
	}
	s.furniture[instanceID] = row
	return nil
}

func (s *InMemory) DeleteFurniture(_ context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.furniture, instanceID)
	return nil
}

func (s *InMemory) LoadUser(_ context.Context, userID string) (UserRow, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.users[userID]
	return row, ok, nil
}

func (s *InMemory) UpdateUser(_ context.Context, userID string, patch UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.users[userID]
	if !ok {
		row = UserRow{UserID: userID, Inventory: make(map[string]int)}
	}
	if patch.LastRoomID != nil {
		row.LastRoomID = *patch.LastRoomID
	}
	if patch.LastX != nil {
		row.LastX = *patch.LastX
	}
	if patch.LastY != nil {
		row.LastY = *patch.LastY
	}
	if patch.Currency != nil {
		row.Currency = *patch.Currency
	}
	if patch.Inventory != nil {
		row.Inventory = patch.Inventory
	}
	if patch.BodyColor != nil {
		row.BodyColor = *patch.BodyColor
	}
	s.users[userID] = row
	return nil
}
