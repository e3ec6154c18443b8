package websocket

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilehaven/roomserver/internal/catalog"
	"github.com/tilehaven/roomserver/internal/delivery/dto"
	"github.com/tilehaven/roomserver/internal/furniture"
	"github.com/tilehaven/roomserver/internal/grid"
	"github.com/tilehaven/roomserver/internal/logger"
	"github.com/tilehaven/roomserver/internal/persistence"
	"github.com/tilehaven/roomserver/internal/roomkernel"
	"github.com/tilehaven/roomserver/internal/world"
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

func (e *recordingEmitter) lastUnicast(runtimeID string) (any, bool) {
	for i := len(e.unicasts) - 1; i >= 0; i-- {
		if e.unicasts[i].runtimeID == runtimeID {
			return e.unicasts[i].event, true
		}
	}
	return nil, false
}

func floorLayout(cols, rows int) grid.Layout {
	cells := make([][]grid.TileKind, rows)
	for y := range cells {
		cells[y] = make([]grid.TileKind, cols)
	}
	layout, _ := grid.New(cells)
	return layout
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *world.Director, *recordingEmitter) {
	t.Helper()
	store := persistence.NewInMemory()
	require.NoError(t, store.SaveRoomLayout(context.Background(), "main_lobby", floorLayout(6, 6)))
	require.NoError(t, store.SaveRoomLayout(context.Background(), "lounge", floorLayout(6, 6)))

	furnCat := furniture.NewCatalog([]furniture.Definition{
		{DefinitionID: "chair_basic", Width: 1, Height: 1, Stackable: true, StackHeight: 4, CanSit: true, SitFacingDir: 2, SitHeightOffset: 0.4},
	})
	emotes := catalog.NewEmoteCatalog([]catalog.EmoteDefinition{{EmoteID: "wave", DurationSeconds: 2.0}})
	shopCatalog := catalog.NewShopCatalog([]catalog.ShopItem{{ItemID: "chair_basic", Price: 10}})
	emitter := &recordingEmitter{}
	limits := roomkernel.Limits{MaxStackZ: 20, StackFactor: 1, AvatarDefaultZ: 0}

	dir := world.New(store, furnCat, emotes, limits, 4.0, "main_lobby", emitter, logger.Get())
	whitelist := map[string]bool{"#FFFFFF": true}
	disp := NewDispatcher(dir, emitter, shopCatalog, whitelist)
	return disp, dir, emitter
}

func envelope(t *testing.T, mtype dto.MessageType, payload any) dto.InboundEnvelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return dto.InboundEnvelope{Type: mtype, Payload: raw}
}

func TestDispatchMoveWalksAvatar(t *testing.T) {
	disp, dir, _ := newTestDispatcher(t)
	ctx := context.Background()
	_, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)

	disp.Handle(ctx, "rt1", envelope(t, dto.TypeMove, dto.Move{X: 3, Y: 3}))

	room, err := dir.Room(ctx, "main_lobby")
	require.NoError(t, err)
	av, ok := room.Avatar("rt1")
	require.True(t, ok)
	assert.NotEmpty(t, av.Path)
}

func TestDispatchChatBroadcastsPlainText(t *testing.T) {
	disp, dir, emitter := newTestDispatcher(t)
	ctx := context.Background()
	_, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)
	emitter.broadcasts = nil

	disp.Handle(ctx, "rt1", envelope(t, dto.TypeSendChat, dto.SendChat{Text: "hello there"}))

	require.Len(t, emitter.broadcasts, 1)
	chat, ok := emitter.broadcasts[0].event.(dto.Chat)
	require.True(t, ok)
	assert.Equal(t, "hello there", chat.Text)
	assert.Equal(t, "Alice", chat.FromName)
}

func TestDispatchChatTruncatesOverLongText(t *testing.T) {
	disp, dir, emitter := newTestDispatcher(t)
	ctx := context.Background()
	_, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)
	emitter.broadcasts = nil

	long := ""
	for i := 0; i < 150; i++ {
		long += "a"
	}
	disp.Handle(ctx, "rt1", envelope(t, dto.TypeSendChat, dto.SendChat{Text: long}))

	require.Len(t, emitter.broadcasts, 1)
	chat := emitter.broadcasts[0].event.(dto.Chat)
	assert.Len(t, chat.Text, maxChatLen)
}

func TestDispatchSlashEmoteCommand(t *testing.T) {
	disp, dir, emitter := newTestDispatcher(t)
	ctx := context.Background()
	_, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)
	emitter.broadcasts = nil

	disp.Handle(ctx, "rt1", envelope(t, dto.TypeSendChat, dto.SendChat{Text: "/emote wave"}))

	found := false
	for _, e := range emitter.broadcasts {
		if _, ok := e.event.(dto.AvatarUpdate); ok {
			found = true
		}
	}
	assert.True(t, found, "emote should broadcast an AvatarUpdate")
}

func TestDispatchSlashAliasEmote(t *testing.T) {
	disp, dir, emitter := newTestDispatcher(t)
	ctx := context.Background()
	_, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)
	emitter.broadcasts = nil

	disp.Handle(ctx, "rt1", envelope(t, dto.TypeSendChat, dto.SendChat{Text: "/wave"}))

	found := false
	for _, e := range emitter.broadcasts {
		if _, ok := e.event.(dto.AvatarUpdate); ok {
			found = true
		}
	}
	assert.True(t, found, "bare slash word should alias to an emote")
}

func TestDispatchSlashSetColorCommand(t *testing.T) {
	disp, dir, _ := newTestDispatcher(t)
	ctx := context.Background()
	_, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)

	disp.Handle(ctx, "rt1", envelope(t, dto.TypeSendChat, dto.SendChat{Text: "/setcolor #FFFFFF"}))

	room, err := dir.Room(ctx, "main_lobby")
	require.NoError(t, err)
	av, _ := room.Avatar("rt1")
	assert.Equal(t, "#FFFFFF", av.BodyColor)
}

func TestDispatchSlashSetColorRejectsOffWhitelist(t *testing.T) {
	disp, dir, emitter := newTestDispatcher(t)
	ctx := context.Background()
	_, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)

	disp.Handle(ctx, "rt1", envelope(t, dto.TypeSendChat, dto.SendChat{Text: "/setcolor #123456"}))

	failure, ok := emitter.lastUnicast("rt1")
	require.True(t, ok)
	af, ok := failure.(dto.ActionFailed)
	require.True(t, ok)
	assert.Equal(t, "SetColor", af.Action)
}

func TestDispatchBuyDebitsCurrencyAndCreditsInventory(t *testing.T) {
	disp, dir, emitter := newTestDispatcher(t)
	ctx := context.Background()
	av, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)
	av.Currency = 50

	disp.Handle(ctx, "rt1", envelope(t, dto.TypeBuyItem, dto.BuyItem{ItemID: "chair_basic"}))

	assert.Equal(t, 40, av.Currency)
	assert.Equal(t, 1, av.Inventory["chair_basic"])

	// handleBuy sends CurrencyUpdate and then InventoryUpdate, so look for
	// the CurrencyUpdate among rt1's unicasts rather than taking the last.
	var event any
	for _, u := range emitter.unicasts {
		if _, isCurrency := u.event.(dto.CurrencyUpdate); isCurrency && u.runtimeID == "rt1" {
			event = u.event
		}
	}
	require.NotNil(t, event)
	cu, ok := event.(dto.CurrencyUpdate)
	require.True(t, ok)
	assert.Equal(t, 40, cu.Value)
}

func TestDispatchBuyInsufficientFundsFails(t *testing.T) {
	disp, dir, emitter := newTestDispatcher(t)
	ctx := context.Background()
	av, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)
	av.Currency = 1

	disp.Handle(ctx, "rt1", envelope(t, dto.TypeBuyItem, dto.BuyItem{ItemID: "chair_basic"}))

	assert.Equal(t, 1, av.Currency)
	event, ok := emitter.lastUnicast("rt1")
	require.True(t, ok)
	af, ok := event.(dto.ActionFailed)
	require.True(t, ok)
	assert.Equal(t, "insufficient_funds", af.Reason)
}

func TestDispatchChangeRoomMovesAvatar(t *testing.T) {
	disp, dir, _ := newTestDispatcher(t)
	ctx := context.Background()
	_, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)

	disp.Handle(ctx, "rt1", envelope(t, dto.TypeChangeRoom, dto.ChangeRoom{TargetRoomID: "lounge"}))

	roomID, ok := dir.RoomIDFor("rt1")
	require.True(t, ok)
	assert.Equal(t, "lounge", roomID)
}

func TestDispatchRequestUserListUnicastsSnapshot(t *testing.T) {
	disp, dir, emitter := newTestDispatcher(t)
	ctx := context.Background()
	_, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)

	disp.Handle(ctx, "rt1", envelope(t, dto.TypeRequestUserList, dto.RequestUserList{}))

	event, ok := emitter.lastUnicast("rt1")
	require.True(t, ok)
	list, ok := event.(dto.UserListUpdate)
	require.True(t, ok)
	assert.Len(t, list.Users, 1)
}

func TestDispatchUnknownMessageTypeFailsProtocol(t *testing.T) {
	disp, dir, emitter := newTestDispatcher(t)
	ctx := context.Background()
	_, err := dir.Bind(ctx, "user1", "rt1", "Alice")
	require.NoError(t, err)

	disp.Handle(ctx, "rt1", dto.InboundEnvelope{Type: "bogus", Payload: json.RawMessage(`{}`)})

	event, ok := emitter.lastUnicast("rt1")
	require.True(t, ok)
	af, ok := event.(dto.ActionFailed)
	require.True(t, ok)
	assert.Equal(t, "protocol", af.Kind)
}

func TestDispatchMoveBeforeBindFailsValidation(t *testing.T) {
	disp, _, emitter := newTestDispatcher(t)
	ctx := context.Background()

	disp.Handle(ctx, "rt-unbound", envelope(t, dto.TypeMove, dto.Move{X: 1, Y: 1}))

	event, ok := emitter.lastUnicast("rt-unbound")
	require.True(t, ok)
	af, ok := event.(dto.ActionFailed)
	require.True(t, ok)
	assert.Equal(t, "validation", af.Kind)
	assert.Equal(t, "unknown_avatar", af.Reason)
}
