package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilehaven/roomserver/internal/apperrors"
	"github.com/tilehaven/roomserver/internal/grid"
)

func TestInMemoryRoomLayoutRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	_, ok, err := s.LoadRoomLayout(ctx, "main_lobby")
	require.NoError(t, err)
	assert.False(t, ok)

	layout, err := grid.New([][]grid.TileKind{{grid.Floor, grid.Wall}})
	require.NoError(t, err)
	require.NoError(t, s.SaveRoomLayout(ctx, "main_lobby", layout))

	got, ok, err := s.LoadRoomLayout(ctx, "main_lobby")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, layout, got)
}

func TestInMemoryInsertFurnitureMintsIDWhenEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	id, err := s.InsertFurniture(ctx, FurnitureRow{RoomID: "main_lobby", DefinitionID: "chair_basic"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	rows, err := s.LoadFurniture(ctx, "main_lobby")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].InstanceID)
}

func TestInMemoryUpdateFurniturePatchesOnlySetFields(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	id, err := s.InsertFurniture(ctx, FurnitureRow{RoomID: "main_lobby", DefinitionID: "chair_basic", X: 1, Y: 1, State: "off"})
	require.NoError(t, err)

	newX := 5
	require.NoError(t, s.UpdateFurniture(ctx, id, FurniturePatch{X: &newX}))

	rows, err := s.LoadFurniture(ctx, "main_lobby")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].X)
	assert.Equal(t, 1, rows[0].Y)    // untouched
	assert.Equal(t, "off", rows[0].State) // untouched
}

func TestInMemoryUpdateFurnitureMissingIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	err := s.UpdateFurniture(ctx, "missing", FurniturePatch{})
	require.Error(t, err)
	var notFound *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestInMemoryDeleteFurnitureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	id, err := s.InsertFurniture(ctx, FurnitureRow{RoomID: "main_lobby", DefinitionID: "chair_basic"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteFurniture(ctx, id))
	require.NoError(t, s.DeleteFurniture(ctx, id)) // second delete is a no-op, not an error

	rows, err := s.LoadFurniture(ctx, "main_lobby")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestInMemoryUpdateUserCreatesRowIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	currency := 50
	require.NoError(t, s.UpdateUser(ctx, "user1", UserPatch{Currency: &currency}))

	row, ok, err := s.LoadUser(ctx, "user1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 50, row.Currency)
}
