package avatar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveToSetsWalkingAndDirection(t *testing.T) {
	a := New("r1", "u1", "Alice", "main_lobby", 0, 0, 4.0)
	err := a.MoveTo([]Point{{X: 1, Y: 0}, {X: 2, Y: 0}}, nil)
	require.NoError(t, err)
	assert.Equal(t, Walking, a.State)
	assert.Equal(t, 0, a.Direction) // east
}

func TestMoveToFailsWhileSitting(t *testing.T) {
	a := New("r1", "u1", "Alice", "main_lobby", 0, 0, 4.0)
	a.SnapSit(0, 0, 4.2, 2, "chair1")
	err := a.MoveTo([]Point{{X: 1, Y: 0}}, nil)
	require.Error(t, err)
	assert.True(t, IsSittingError(err))
	assert.Equal(t, Sitting, a.State) // unchanged
}

func TestMoveToCancelsEmote(t *testing.T) {
	a := New("r1", "u1", "Alice", "main_lobby", 0, 0, 4.0)
	require.NoError(t, a.Emote("wave", 3.0, 0))
	require.NoError(t, a.MoveTo([]Point{{X: 1, Y: 0}}, nil))
	assert.Empty(t, a.EmoteID)
	assert.Equal(t, Walking, a.State)
}

func TestTickSnapsToWaypointAndDispatchesArrival(t *testing.T) {
	a := New("r1", "u1", "Alice", "main_lobby", 0, 0, 4.0)
	a.Speed = 4.0
	action := SitAction{InstanceID: "chair1"}
	require.NoError(t, a.MoveTo([]Point{{X: 1, Y: 0}}, action))

	result := a.Tick(1.0, 0) // moveAmount = 4, distance = 1: overshoots in one tick
	assert.True(t, result.Changed)
	assert.True(t, result.Arrived)
	assert.Equal(t, 1.0, a.X)
	assert.Equal(t, action, a.ActionAfterPath)
}

func TestTickInterpolatesPartialStep(t *testing.T) {
	a := New("r1", "u1", "Alice", "main_lobby", 0, 0, 1.0)
	require.NoError(t, a.MoveTo([]Point{{X: 4, Y: 0}}, nil))

	result := a.Tick(1.0, 0) // moveAmount = 1 tile of 4: interpolates, doesn't arrive
	assert.True(t, result.Changed)
	assert.False(t, result.Arrived)
	assert.Equal(t, 1.0, a.X)
	assert.Len(t, a.Path, 1)
}

func TestTickExpiresEmoteToIdleWhenNoPath(t *testing.T) {
	a := New("r1", "u1", "Alice", "main_lobby", 0, 0, 4.0)
	require.NoError(t, a.Emote("wave", 1.0, 0))

	result := a.Tick(0.1, 0.5) // not yet expired
	assert.False(t, result.EmoteExpired)
	assert.Equal(t, Emoting, a.State)

	result = a.Tick(0.1, 1.5) // expired
	assert.True(t, result.EmoteExpired)
	assert.Equal(t, Idle, a.State)
}

func TestTickExpiresEmoteToWalkingWhenPathPending(t *testing.T) {
	a := New("r1", "u1", "Alice", "main_lobby", 0, 0, 4.0)
	require.NoError(t, a.Emote("wave", 1.0, 0))
	a.Path = []Point{{X: 5, Y: 5}} // simulate a path queued while emoting

	result := a.Tick(0.1, 2.0)
	assert.True(t, result.EmoteExpired)
	assert.Equal(t, Walking, a.State)
}

func TestEmoteFailsWhileSittingOrAlreadyEmoting(t *testing.T) {
	a := New("r1", "u1", "Alice", "main_lobby", 0, 0, 4.0)
	a.SnapSit(0, 0, 4.2, 2, "chair1")
	err := a.Emote("wave", 1.0, 0)
	require.Error(t, err)
	assert.True(t, IsSittingError(err))

	b := New("r2", "u2", "Bob", "main_lobby", 0, 0, 4.0)
	require.NoError(t, b.Emote("wave", 1.0, 0))
	err = b.Emote("dance", 1.0, 0)
	require.Error(t, err)
	assert.True(t, IsAlreadyEmotingError(err))
}

func TestSnapSitAndStand(t *testing.T) {
	a := New("r1", "u1", "Alice", "main_lobby", 5, 5, 4.0)
	a.SnapSit(5, 5, 4.2, 2, "chair1")
	assert.Equal(t, Sitting, a.State)
	assert.Equal(t, "chair1", a.SittingOnInstanceID)
	assert.Equal(t, 4.2, a.Z)

	err := a.Stand(0.0)
	require.NoError(t, err)
	assert.Equal(t, Idle, a.State)
	assert.Empty(t, a.SittingOnInstanceID)
	assert.Equal(t, 0.0, a.Z)
}

func TestStandFailsWhenNotSitting(t *testing.T) {
	a := New("r1", "u1", "Alice", "main_lobby", 0, 0, 4.0)
	err := a.Stand(0.0)
	require.Error(t, err)
	assert.True(t, IsNotSittingError(err))
}

func TestPrepareRoomChangeResetsTransientState(t *testing.T) {
	a := New("r1", "u1", "Alice", "main_lobby", 0, 0, 4.0)
	a.SnapSit(0, 0, 4.2, 2, "chair1")
	a.PrepareRoomChange("lounge", 1, 4, 0.0)

	assert.Equal(t, "lounge", a.RoomID)
	assert.Equal(t, 1.0, a.X)
	assert.Equal(t, 4.0, a.Y)
	assert.Equal(t, Idle, a.State)
	assert.Empty(t, a.SittingOnInstanceID)
	assert.Empty(t, a.Path)
}

func TestMoveToWithEmptyPathKeepsActionForImmediateEvaluation(t *testing.T) {
	a := New("r1", "u1", "Alice", "main_lobby", 3, 3, 4.0)
	action := SitAction{InstanceID: "chair1"}
	err := a.MoveTo(nil, action)
	require.NoError(t, err)
	assert.Equal(t, action, a.ActionAfterPath)
	assert.Empty(t, a.Path)
}

func TestPortalActionDispatchedByTypeSwitch(t *testing.T) {
	a := New("r1", "u1", "Alice", "main_lobby", 0, 0, 4.0)
	action := PortalAction{TargetRoomID: "lounge", TargetX: 1, TargetY: 4, HasTarget: true}
	require.NoError(t, a.MoveTo([]Point{{X: 13, Y: 2}}, action))
	result := a.Tick(10.0, 0)
	require.True(t, result.Arrived)

	switch pending := a.ActionAfterPath.(type) {
	case PortalAction:
		assert.Equal(t, "lounge", pending.TargetRoomID)
	default:
		t.Fatalf("expected PortalAction, got %T", pending)
	}
}
