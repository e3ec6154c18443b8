package world

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilehaven/roomserver/internal/catalog"
	"github.com/tilehaven/roomserver/internal/furniture"
	"github.com/tilehaven/roomserver/internal/grid"
	"github.com/tilehaven/roomserver/internal/logger"
	"github.com/tilehaven/roomserver/internal/persistence"
	"github.com/tilehaven/roomserver/internal/roomkernel"
)

func init() {
	_ = logger.Init(nil)
}

type recordingEmitter struct {
	unicasts   []recordedEvent
	broadcasts []recordedEvent
}

type recordedEvent struct {
	runtimeID string
	roomID    string
	event     any
}

func (e *recordingEmitter) Unicast(runtimeID string, event any) {
	e.unicasts = append(e.unicasts, recordedEvent{runtimeID: runtimeID, event: event})
}

func (e *recordingEmitter) Broadcast(roomID string, event any) {
	e.broadcasts = append(e.broadcasts, recordedEvent{roomID: roomID, event: event})
}

type recordingDisconnector struct {
	disconnected []string
}

func (d *recordingDisconnector) ForceDisconnect(runtimeID, reason string) {
	d.disconnected = append(d.disconnected, runtimeID)
}

func floorLayout(cols, rows int) grid.Layout {
	cells := make([][]grid.TileKind, rows)
	for y := range cells {
		cells[y] = make([]grid.TileKind, cols)
	}
	layout, _ := grid.New(cells)
	return layout
}

func newTestDirector(t *testing.T) (*Director, *recordingEmitter, persistence.Facade) {
	t.Helper()
	store := persistence.NewInMemory()
	require.NoError(t, store.SaveRoomLayout(context.Background(), "main_lobby", floorLayout(6, 6)))
	require.NoError(t, store.SaveRoomLayout(context.Background(), "lounge", floorLayout(6, 6)))

	cat := furniture.NewCatalog(nil)
	emotes := catalog.NewEmoteCatalog(nil)
	emitter := &recordingEmitter{}
	limits := roomkernel.Limits{MaxStackZ: 20, StackFactor: 1, AvatarDefaultZ: 0}
	dir := New(store, cat, emotes, limits, 4.0, "main_lobby", emitter, logger.Get())
	return dir, emitter, store
}

func TestBindJoinsDefaultRoomAndSendsSnapshot(t *testing.T) {
	dir, emitter, _ := newTestDirector(t)
	ctx := context.Background()

	av, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "main_lobby", av.RoomID)

	roomID, ok := dir.RoomIDFor("rt1")
	require.True(t, ok)
	assert.Equal(t, "main_lobby", roomID)

	foundSnapshot := false
	for _, e := range emitter.unicasts {
		if e.runtimeID == "rt1" {
			foundSnapshot = true
		}
	}
	assert.True(t, foundSnapshot)
}

func TestBindResumesLastRoomFromStore(t *testing.T) {
	dir, _, store := newTestDirector(t)
	ctx := context.Background()
	roomID := "lounge"
	require.NoError(t, store.UpdateUser(ctx, "user2", persistence.UserPatch{LastRoomID: &roomID}))

	av, err := dir.Bind(ctx, "user2", "rt2", "Bob")
	require.NoError(t, err)
	assert.Equal(t, "lounge", av.RoomID)
}

func TestBindEvictsPriorSessionForSameUser(t *testing.T) {
	dir, _, _ := newTestDirector(t)
	disc := &recordingDisconnector{}
	dir.SetDisconnector(disc)
	ctx := context.Background()

	_, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)
	_, err = dir.Bind(ctx, "user1", "rt2", "Alice")
	require.NoError(t, err)

	assert.Contains(t, disc.disconnected, "rt1")
	_, stillBound := dir.RoomIDFor("rt1")
	assert.False(t, stillBound)
	roomID, ok := dir.RoomIDFor("rt2")
	require.True(t, ok)
	assert.Equal(t, "main_lobby", roomID)
}

func TestUnbindPersistsLastKnownPosition(t *testing.T) {
	dir, _, store := newTestDirector(t)
	ctx := context.Background()
	av, err := dir.Bind(ctx, "user3", "rt3", "Carol")
	require.NoError(t, err)
	av.Currency = 42

	dir.Unbind(ctx, "rt3")

	row, found, err := store.LoadUser(ctx, "user3")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "main_lobby", row.LastRoomID)
	assert.Equal(t, 42, row.Currency)

	_, stillBound := dir.RoomIDFor("rt3")
	assert.False(t, stillBound)
}

func TestChangeRoomMovesAvatarBetweenRooms(t *testing.T) {
	dir, _, _ := newTestDirector(t)
	ctx := context.Background()
	_, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)

	require.NoError(t, dir.ChangeRoom(ctx, "rt1", "lounge", nil, nil, false))

	roomID, ok := dir.RoomIDFor("rt1")
	require.True(t, ok)
	assert.Equal(t, "lounge", roomID)
}

func TestResolveSpawnFallsBackWhenRequestedCellBlocked(t *testing.T) {
	dir, _, store := newTestDirector(t)
	ctx := context.Background()

	blocked := grid.Layout{Cols: 2, Rows: 2, Cells: [][]grid.TileKind{
		{grid.Wall, grid.Wall},
		{grid.Wall, grid.Floor},
	}}
	require.NoError(t, store.SaveRoomLayout(ctx, "main_lobby", blocked))

	av, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 1.0, av.X)
	assert.Equal(t, 1.0, av.Y)
}

func TestResolveSpawnLogsAndDefaultsWhenNoWalkableTileExists(t *testing.T) {
	dir, _, store := newTestDirector(t)
	ctx := context.Background()

	allWalls := grid.Layout{Cols: 2, Rows: 2, Cells: [][]grid.TileKind{
		{grid.Wall, grid.Wall},
		{grid.Wall, grid.Wall},
	}}
	require.NoError(t, store.SaveRoomLayout(ctx, "main_lobby", allWalls))

	av, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 0.0, av.X)
	assert.Equal(t, 0.0, av.Y)
}
