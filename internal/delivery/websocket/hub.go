// Package websocket implements C7's transport half: the Hub fans inbound
// frames out to the World Director/Room Kernel and fans outbound events
// back to whichever connections care, and each Connection pumps one
// underlying gorilla/websocket socket.
package websocket

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tilehaven/roomserver/internal/delivery/dto"
	"github.com/tilehaven/roomserver/internal/logger"
)

// RoomLocator is the subset of the World Director the Hub needs to route
// broadcasts: which room a runtimeID currently occupies. Intents are
// dispatched through IntentHandler.
type RoomLocator interface {
	RoomIDFor(runtimeID string) (string, bool)
}

// IntentHandler processes one decoded inbound intent for a bound
// connection. Implemented by Dispatcher (dispatch.go), kept as an
// interface here so hub.go has no direct dependency on apperrors/roomkernel
// decoding details.
type IntentHandler interface {
	Handle(ctx context.Context, runtimeID string, envelope dto.InboundEnvelope)
	Bind(ctx context.Context, runtimeID, userID, name string) error
	Unbind(ctx context.Context, runtimeID string)
}

// hubMessage pairs a raw inbound frame with the connection it arrived on.
type hubMessage struct {
	conn     *Connection
	envelope dto.InboundEnvelope
}

// Hub owns every live Connection, keyed by its bound runtimeID, and routes
// Unicast/Broadcast calls from the simulation back out to sockets. It
// implements roomkernel.Emitter and world.Disconnector.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*Connection // runtimeID -> connection

	register   chan *Connection
	unregister chan *Connection
	inbound    chan hubMessage

	locator RoomLocator
	handler IntentHandler
	log     *zap.Logger
}

// NewHub builds a Hub with no handler wired yet. Call SetHandler once the
// World Director and Dispatcher exist (they are constructed in a cycle: the
// Director needs the Hub as its Emitter, the Hub needs the Director as its
// RoomLocator and the Dispatcher as its IntentHandler).
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		inbound:     make(chan hubMessage, 256),
		log:         logger.Get(),
	}
}

// SetHandler wires in the World Director (as locator) and the Dispatcher
// (as handler) once they have been constructed with this Hub as their
// Emitter.
func (h *Hub) SetHandler(locator RoomLocator, handler IntentHandler) {
	h.locator = locator
	h.handler = handler
}

// Register hands a freshly upgraded connection to the hub's Run loop.
// Blocks until Run picks it up off the channel.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Run drives connection registration and inbound dispatch until ctx is
// canceled, at which point every connection is closed.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("websocket hub starting")
	for {
		select {
		case <-ctx.Done():
			h.log.Info("websocket hub stopping")
			h.closeAll()
			return
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			h.mu.Unlock()
			h.log.Info("connection registered", zap.String("runtime_id", conn.ID))
		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				close(conn.send)
			}
			h.mu.Unlock()
			if h.handler != nil {
				h.handler.Unbind(ctx, conn.ID)
			}
			h.log.Info("connection unregistered", zap.String("runtime_id", conn.ID))
		case msg := <-h.inbound:
			if h.handler != nil {
				h.handler.Handle(ctx, msg.conn.ID, msg.envelope)
			}
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.connections {
		close(conn.send)
		conn.conn.Close()
		delete(h.connections, id)
	}
}

// Unicast implements roomkernel.Emitter.
func (h *Hub) Unicast(runtimeID string, event any) {
	h.mu.RLock()
	conn, ok := h.connections[runtimeID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	conn.deliver(envelopeFor(event))
}

// Broadcast implements roomkernel.Emitter.
func (h *Hub) Broadcast(roomID string, event any) {
	envelope := envelopeFor(event)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for runtimeID, conn := range h.connections {
		if h.locator == nil {
			continue
		}
		connRoomID, ok := h.locator.RoomIDFor(runtimeID)
		if !ok || connRoomID != roomID {
			continue
		}
		conn.deliver(envelope)
	}
}

// ForceDisconnect implements world.Disconnector.
func (h *Hub) ForceDisconnect(runtimeID, reason string) {
	h.mu.RLock()
	conn, ok := h.connections[runtimeID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	conn.deliver(dto.OutboundEnvelope{Type: dto.TypeForceDisconnect, Payload: dto.ForceDisconnect{Reason: reason}})
	conn.conn.Close()
}

// envelopeFor tags a concrete outbound DTO with its wire MessageType.
func envelopeFor(event any) dto.OutboundEnvelope {
	t := dto.TypeActionFailed
	switch event.(type) {
	case dto.RoomState:
		t = dto.TypeRoomState
	case dto.YourAvatarID:
		t = dto.TypeYourAvatarID
	case dto.InventoryUpdate:
		t = dto.TypeInventoryUpdate
	case dto.CurrencyUpdate:
		t = dto.TypeCurrencyUpdate
	case dto.AvatarAdded:
		t = dto.TypeAvatarAdded
	case dto.AvatarRemoved:
		t = dto.TypeAvatarRemoved
	case dto.AvatarUpdate:
		t = dto.TypeAvatarUpdate
	case dto.FurniAdded:
		t = dto.TypeFurniAdded
	case dto.FurniRemoved:
		t = dto.TypeFurniRemoved
	case dto.FurniUpdated:
		t = dto.TypeFurniUpdated
	case dto.Chat:
		t = dto.TypeChat
	case dto.UserListUpdate:
		t = dto.TypeUserListUpdate
	case dto.ForceDisconnect:
		t = dto.TypeForceDisconnect
	case dto.ActionFailed:
		t = dto.TypeActionFailed
	case dto.ProfileResponse:
		t = dto.TypeProfileResponse
	}
	return dto.OutboundEnvelope{Type: t, Payload: event}
}
