package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tilehaven/roomserver/internal/apperrors"
	"github.com/tilehaven/roomserver/internal/catalog"
	"github.com/tilehaven/roomserver/internal/delivery/dto"
	"github.com/tilehaven/roomserver/internal/logger"
	"github.com/tilehaven/roomserver/internal/roomkernel"
	"github.com/tilehaven/roomserver/internal/shop"
	"github.com/tilehaven/roomserver/internal/world"
)

const maxChatLen = 100

// Dispatcher implements IntentHandler: it decodes each inbound envelope and
// routes it to the World Director or to whichever Room the sender
// currently occupies. It also owns the two concerns too small to earn
// their own Room Kernel operation: chat (including the "/" command
// prefix) and the shop buy flow.
type Dispatcher struct {
	director         *world.Director
	emitter          roomkernel.Emitter
	shopCatalog      *catalog.ShopCatalog
	recolorWhitelist map[string]bool
	start            time.Time
	log              *zap.Logger
}

// NewDispatcher builds a Dispatcher. recolorWhitelist is shared with every
// Room's Limits so "/setcolor" and RecolorFurni agree on what's allowed.
func NewDispatcher(director *world.Director, emitter roomkernel.Emitter, shopCatalog *catalog.ShopCatalog, recolorWhitelist map[string]bool) *Dispatcher {
	return &Dispatcher{
		director:         director,
		emitter:          emitter,
		shopCatalog:      shopCatalog,
		recolorWhitelist: recolorWhitelist,
		start:            time.Now(),
		log:              logger.Get(),
	}
}

func (d *Dispatcher) now() float64 {
	return time.Since(d.start).Seconds()
}

// Bind implements IntentHandler, delegating straight to the Director.
func (d *Dispatcher) Bind(ctx context.Context, runtimeID, userID, name string) error {
	_, err := d.director.Bind(ctx, userID, runtimeID, name)
	return err
}

// Unbind implements IntentHandler.
func (d *Dispatcher) Unbind(ctx context.Context, runtimeID string) {
	d.director.Unbind(ctx, runtimeID)
}

// Handle implements IntentHandler: decode, route, and on failure turn the
// typed *apperrors.ActionFailure into a wire ActionFailed event.
func (d *Dispatcher) Handle(ctx context.Context, runtimeID string, envelope dto.InboundEnvelope) {
	err := d.dispatch(ctx, runtimeID, envelope)
	if err == nil {
		return
	}
	failure, ok := err.(*apperrors.ActionFailure)
	if !ok {
		d.log.Error("unhandled intent error", zap.String("runtime_id", runtimeID), zap.String("type", string(envelope.Type)), zap.Error(err))
		d.emitter.Unicast(runtimeID, dto.ActionFailed{Action: string(envelope.Type), Kind: string(apperrors.KindInternal), Reason: "internal_error"})
		return
	}
	d.emitter.Unicast(runtimeID, dto.ActionFailed{Action: failure.Action, Kind: string(failure.Kind), Reason: failure.Reason})
}

func (d *Dispatcher) dispatch(ctx context.Context, runtimeID string, envelope dto.InboundEnvelope) error {
	switch envelope.Type {
	case dto.TypeMove:
		var in dto.Move
		if err := decode(envelope.Payload, &in); err != nil {
			return err
		}
		room, err := d.roomFor(ctx, runtimeID, "Move")
		if err != nil {
			return err
		}
		return room.RequestMove(runtimeID, in.X, in.Y)

	case dto.TypeSendChat:
		var in dto.SendChat
		if err := decode(envelope.Payload, &in); err != nil {
			return err
		}
		room, err := d.roomFor(ctx, runtimeID, "SendChat")
		if err != nil {
			return err
		}
		return d.handleChat(ctx, runtimeID, room, in.Text)

	case dto.TypePlaceFurni:
		var in dto.PlaceFurni
		if err := decode(envelope.Payload, &in); err != nil {
			return err
		}
		room, err := d.roomFor(ctx, runtimeID, "PlaceFurni")
		if err != nil {
			return err
		}
		return room.RequestPlace(ctx, runtimeID, in.DefinitionID, in.X, in.Y, in.Rotation)

	case dto.TypeRotateFurni:
		var in dto.RotateFurni
		if err := decode(envelope.Payload, &in); err != nil {
			return err
		}
		room, err := d.roomFor(ctx, runtimeID, "RotateFurni")
		if err != nil {
			return err
		}
		return room.RequestRotate(ctx, runtimeID, in.InstanceID)

	case dto.TypePickupFurni:
		var in dto.PickupFurni
		if err := decode(envelope.Payload, &in); err != nil {
			return err
		}
		room, err := d.roomFor(ctx, runtimeID, "PickupFurni")
		if err != nil {
			return err
		}
		return room.RequestPickup(ctx, runtimeID, in.InstanceID)

	case dto.TypeSit:
		var in dto.Sit
		if err := decode(envelope.Payload, &in); err != nil {
			return err
		}
		room, err := d.roomFor(ctx, runtimeID, "Sit")
		if err != nil {
			return err
		}
		return d.handleSit(ctx, runtimeID, room, in.InstanceID)

	case dto.TypeStand:
		room, err := d.roomFor(ctx, runtimeID, "Stand")
		if err != nil {
			return err
		}
		return room.RequestStand(runtimeID)

	case dto.TypeUseFurni:
		var in dto.UseFurni
		if err := decode(envelope.Payload, &in); err != nil {
			return err
		}
		room, err := d.roomFor(ctx, runtimeID, "UseFurni")
		if err != nil {
			return err
		}
		return room.RequestUse(ctx, runtimeID, in.InstanceID)

	case dto.TypeRecolorFurni:
		var in dto.RecolorFurni
		if err := decode(envelope.Payload, &in); err != nil {
			return err
		}
		room, err := d.roomFor(ctx, runtimeID, "RecolorFurni")
		if err != nil {
			return err
		}
		return room.RequestRecolor(ctx, runtimeID, in.InstanceID, in.Hex)

	case dto.TypeBuyItem:
		var in dto.BuyItem
		if err := decode(envelope.Payload, &in); err != nil {
			return err
		}
		room, err := d.roomFor(ctx, runtimeID, "Buy")
		if err != nil {
			return err
		}
		return d.handleBuy(runtimeID, room, in.ItemID)

	case dto.TypeChangeRoom:
		var in dto.ChangeRoom
		if err := decode(envelope.Payload, &in); err != nil {
			return err
		}
		hasRequested := in.X != nil && in.Y != nil
		return d.director.ChangeRoom(ctx, runtimeID, in.TargetRoomID, in.X, in.Y, hasRequested)

	case dto.TypeRequestProfile:
		var in dto.RequestProfile
		if err := decode(envelope.Payload, &in); err != nil {
			return err
		}
		room, err := d.roomFor(ctx, runtimeID, "RequestProfile")
		if err != nil {
			return err
		}
		return d.handleProfile(runtimeID, room, in.RuntimeID)

	case dto.TypeRequestUserList:
		room, err := d.roomFor(ctx, runtimeID, "RequestUserList")
		if err != nil {
			return err
		}
		d.emitter.Unicast(runtimeID, room.UserList())
		return nil

	case dto.TypeEmote:
		var in dto.Emote
		if err := decode(envelope.Payload, &in); err != nil {
			return err
		}
		room, err := d.roomFor(ctx, runtimeID, "Emote")
		if err != nil {
			return err
		}
		return room.RequestEmote(runtimeID, in.EmoteID, d.now())

	default:
		return apperrors.Protocol(string(envelope.Type), "unknown_message_type")
	}
}

// handleSit resolves an immediate door arrival into a Director.ChangeRoom
// call; every other Sit outcome (deferred path, immediate seat) is already
// fully handled inside Room.RequestSit.
func (d *Dispatcher) handleSit(ctx context.Context, runtimeID string, room *roomkernel.Room, instanceID string) error {
	outcome, err := room.RequestSit(runtimeID, instanceID)
	if err != nil {
		return err
	}
	if outcome == nil || !outcome.IsPortal {
		return nil
	}
	target := outcome.PortalTarget
	var x, y *int
	if target.HasTarget {
		x, y = &target.TargetX, &target.TargetY
	}
	return d.director.ChangeRoom(ctx, runtimeID, target.TargetRoomID, x, y, target.HasTarget)
}

// handleChat trims and length-caps the text, then either broadcasts it or,
// for a "/" prefix, reroutes to the command parser.
func (d *Dispatcher) handleChat(ctx context.Context, runtimeID string, room *roomkernel.Room, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return apperrors.Validation("SendChat", "empty")
	}
	if len(text) > maxChatLen {
		text = text[:maxChatLen]
	}
	if strings.HasPrefix(text, "/") {
		return d.handleCommand(ctx, runtimeID, room, text[1:])
	}

	av, ok := room.Avatar(runtimeID)
	if !ok {
		return apperrors.Validation("SendChat", "unknown_avatar")
	}
	d.emitter.Broadcast(room.ID, dto.Chat{FromID: runtimeID, FromName: av.Name, Text: text})
	return nil
}

// handleCommand parses the text after a "/" prefix: "emote <id>",
// "setcolor <hex>", "join <roomId>", or a bare word treated as a
// per-emote alias ("/wave" is shorthand for "/emote wave").
func (d *Dispatcher) handleCommand(ctx context.Context, runtimeID string, room *roomkernel.Room, rest string) error {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return apperrors.Validation("SendChat", "empty_command")
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "emote":
		if len(args) < 1 {
			return apperrors.Validation("Emote", "missing_emote_id")
		}
		return room.RequestEmote(runtimeID, args[0], d.now())
	case "setcolor":
		if len(args) < 1 {
			return apperrors.Validation("SetColor", "missing_hex")
		}
		return room.SetAvatarColor(runtimeID, args[0], d.recolorWhitelist)
	case "join":
		if len(args) < 1 {
			return apperrors.Validation("ChangeRoom", "missing_target")
		}
		return d.director.ChangeRoom(ctx, runtimeID, args[0], nil, nil, false)
	default:
		return room.RequestEmote(runtimeID, cmd, d.now())
	}
}

func (d *Dispatcher) handleBuy(runtimeID string, room *roomkernel.Room, itemID string) error {
	av, ok := room.Avatar(runtimeID)
	if !ok {
		return apperrors.Validation("Buy", "unknown_avatar")
	}
	if d.shopCatalog == nil {
		return apperrors.Internal("Buy", "shop_catalog_unavailable")
	}
	if err := shop.Buy(av, itemID, d.shopCatalog); err != nil {
		return err
	}
	d.emitter.Unicast(runtimeID, dto.CurrencyUpdate{Value: av.Currency})
	d.emitter.Unicast(runtimeID, dto.InventoryUpdate{Inventory: av.Inventory})
	return nil
}

func (d *Dispatcher) handleProfile(runtimeID string, room *roomkernel.Room, targetRuntimeID string) error {
	if targetRuntimeID == "" {
		targetRuntimeID = runtimeID
	}
	profile, ok := room.Profile(targetRuntimeID)
	if !ok {
		return apperrors.Validation("RequestProfile", "unknown_avatar")
	}
	d.emitter.Unicast(runtimeID, dto.ProfileResponse{Avatar: profile})
	return nil
}

// roomFor resolves the caller's current room, translating "not bound yet"
// into the same ActionFailure shape every other validation failure uses.
func (d *Dispatcher) roomFor(ctx context.Context, runtimeID, action string) (*roomkernel.Room, error) {
	roomID, ok := d.director.RoomIDFor(runtimeID)
	if !ok {
		return nil, apperrors.Validation(action, "unknown_avatar")
	}
	room, err := d.director.Room(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return room, nil
}

func decode(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.Protocol("Decode", "malformed_payload")
	}
	return nil
}
