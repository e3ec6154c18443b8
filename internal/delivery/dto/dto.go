// Package dto holds the wire-facing shapes exchanged with sessions: typed
// inbound intents, typed outbound events, and the FurniDTO/AvatarDTO
// projections the Room Kernel builds from its internal state. Nothing in
// this package knows how to decode/encode JSON beyond plain struct tags —
// that stays in the websocket transport.
package dto

import (
	"encoding/json"

	"github.com/tilehaven/roomserver/internal/grid"
)

// MessageType tags an envelope's payload shape, the same "type string +
// generic payload" wire convention the websocket transport always uses.
type MessageType string

const (
	TypeRoomState       MessageType = "room_state"
	TypeYourAvatarID    MessageType = "your_avatar_id"
	TypeInventoryUpdate MessageType = "inventory_update"
	TypeCurrencyUpdate  MessageType = "currency_update"
	TypeAvatarAdded     MessageType = "avatar_added"
	TypeAvatarRemoved   MessageType = "avatar_removed"
	TypeAvatarUpdate    MessageType = "avatar_update"
	TypeFurniAdded      MessageType = "furni_added"
	TypeFurniRemoved    MessageType = "furni_removed"
	TypeFurniUpdated    MessageType = "furni_updated"
	TypeChat            MessageType = "chat"
	TypeUserListUpdate  MessageType = "user_list_update"
	TypeActionFailed    MessageType = "action_failed"
	TypeForceDisconnect MessageType = "force_disconnect"
	TypeProfileResponse MessageType = "profile_response"

	TypeMove            MessageType = "move"
	TypeSendChat        MessageType = "send_chat"
	TypePlaceFurni      MessageType = "place_furni"
	TypeRotateFurni     MessageType = "rotate_furni"
	TypePickupFurni     MessageType = "pickup_furni"
	TypeSit             MessageType = "sit"
	TypeStand           MessageType = "stand"
	TypeUseFurni        MessageType = "use_furni"
	TypeRecolorFurni    MessageType = "recolor_furni"
	TypeBuyItem         MessageType = "buy_item"
	TypeChangeRoom      MessageType = "change_room"
	TypeRequestProfile  MessageType = "request_profile"
	TypeRequestUserList MessageType = "request_user_list"
	TypeEmote           MessageType = "emote"
)

// InboundEnvelope is the wire shape of every client->server frame: a type
// tag plus a raw payload the dispatcher decodes once it knows the type.
type InboundEnvelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// OutboundEnvelope is the wire shape of every server->client frame.
type OutboundEnvelope struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload"`
}

// Emote is the inbound intent to start a named emote.
type Emote struct {
	EmoteID string `json:"emoteId"`
}

// FurniDTO is the wire projection of one furniture instance.
type FurniDTO struct {
	ID            string  `json:"id"`
	X             int     `json:"x"`
	Y             int     `json:"y"`
	Z             float64 `json:"z"`
	DefinitionID  string  `json:"definitionId"`
	Rotation      int     `json:"rotation"`
	State         string  `json:"state,omitempty"`
	ColorOverride string  `json:"colorOverride,omitempty"`
	IsDoor        bool    `json:"isDoor,omitempty"`
	TargetRoomID  string  `json:"targetRoomId,omitempty"`
	OwnerID       string  `json:"ownerId,omitempty"`
}

// AvatarDTO is the wire projection of one avatar.
type AvatarDTO struct {
	ID                string  `json:"id"`
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	Z                 float64 `json:"z"`
	Name              string  `json:"name"`
	RoomID            string  `json:"roomId"`
	State             string  `json:"state"`
	Direction         int     `json:"direction"`
	SittingOnFurniID  string  `json:"sittingOnFurniId,omitempty"`
	BodyColor         string  `json:"bodyColor,omitempty"`
	EmoteID           string  `json:"emoteId,omitempty"`
}

// ---- Outbound events ----

type RoomState struct {
	Layout    [][]grid.WireCell `json:"layout"`
	Cols      int               `json:"cols"`
	Rows      int               `json:"rows"`
	Furniture []FurniDTO        `json:"furniture"`
	Avatars   []AvatarDTO       `json:"avatars"`
}

type YourAvatarID struct {
	ID string `json:"id"`
}

type InventoryUpdate struct {
	Inventory map[string]int `json:"inventory"`
}

type CurrencyUpdate struct {
	Value int `json:"value"`
}

type AvatarAdded struct {
	Avatar AvatarDTO `json:"avatar"`
}

type AvatarRemoved struct {
	ID string `json:"id"`
}

// AvatarUpdate carries only the fields that changed this tick; zero value
// fields mean "unchanged", which is why ID is required and everything
// else is a pointer.
type AvatarUpdate struct {
	ID        string   `json:"id"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Z         *float64 `json:"z,omitempty"`
	Direction *int     `json:"direction,omitempty"`
	State     *string  `json:"state,omitempty"`
	EmoteID   *string  `json:"emoteId,omitempty"`
}

type FurniAdded struct {
	Furni FurniDTO `json:"furni"`
}

type FurniRemoved struct {
	ID string `json:"id"`
}

// FurniUpdated carries only the changed fields, same convention as
// AvatarUpdate.
type FurniUpdated struct {
	ID            string   `json:"id"`
	Z             *float64 `json:"z,omitempty"`
	Rotation      *int     `json:"rotation,omitempty"`
	State         *string  `json:"state,omitempty"`
	ColorOverride *string  `json:"colorOverride,omitempty"`
}

type Chat struct {
	FromID   string `json:"fromId,omitempty"`
	FromName string `json:"fromName"`
	Text     string `json:"text"`
	Class    string `json:"class,omitempty"`
}

type UserListEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserListUpdate struct {
	Users []UserListEntry `json:"users"`
}

type ActionFailed struct {
	Action string `json:"action"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

type ForceDisconnect struct {
	Reason string `json:"reason"`
}

// ProfileResponse answers a RequestProfile intent.
type ProfileResponse struct {
	Avatar AvatarDTO `json:"avatar"`
}

// ---- Inbound intents ----

type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type SendChat struct {
	Text string `json:"text"`
}

type PlaceFurni struct {
	DefinitionID string `json:"definitionId"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Rotation     int    `json:"rotation"`
}

type RotateFurni struct {
	InstanceID string `json:"instanceId"`
}

type PickupFurni struct {
	InstanceID string `json:"instanceId"`
}

type Sit struct {
	InstanceID string `json:"instanceId"`
}

type Stand struct{}

type UseFurni struct {
	InstanceID string `json:"instanceId"`
}

type RecolorFurni struct {
	InstanceID string  `json:"instanceId"`
	Hex        *string `json:"hex"`
}

type BuyItem struct {
	ItemID string `json:"itemId"`
}

type ChangeRoom struct {
	TargetRoomID string `json:"targetRoomId"`
	X            *int   `json:"x,omitempty"`
	Y            *int   `json:"y,omitempty"`
}

type RequestProfile struct {
	RuntimeID string `json:"runtimeId"`
}

type RequestUserList struct{}
