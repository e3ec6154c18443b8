package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tilehaven/roomserver/internal/delivery/dto"
	"github.com/tilehaven/roomserver/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 256
)

// Connection pumps one underlying socket: ReadPump decodes inbound frames
// and forwards them to the Hub; WritePump drains outbound frames the Hub
// (or the simulation, via Unicast/Broadcast) queued onto send.
type Connection struct {
	ID   string // runtimeID, assigned at construction
	conn *websocket.Conn
	hub  *Hub
	send chan dto.OutboundEnvelope
	log  *zap.Logger
}

// NewConnection wraps an upgraded socket. The runtimeID is generated by
// the caller (serveWS in internal/delivery/http) before the connection is
// registered, since Bind needs it to exist before the first Unicast.
func NewConnection(runtimeID string, conn *websocket.Conn, hub *Hub) *Connection {
	return &Connection{
		ID:   runtimeID,
		conn: conn,
		hub:  hub,
		send: make(chan dto.OutboundEnvelope, sendBuffer),
		log:  logger.Get(),
	}
}

func (c *Connection) deliver(envelope dto.OutboundEnvelope) {
	select {
	case c.send <- envelope:
	default:
		c.log.Warn("connection send buffer full, dropping connection", zap.String("runtime_id", c.ID))
		c.conn.Close()
	}
}

// ReadPump decodes inbound frames until the socket closes or ctx is
// canceled, then unregisters itself from the hub.
func (c *Connection) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var raw json.RawMessage
		if err := c.conn.ReadJSON(&raw); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read error", zap.Error(err), zap.String("runtime_id", c.ID))
			}
			return
		}

		var envelope dto.InboundEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			c.log.Warn("malformed inbound frame", zap.Error(err), zap.String("runtime_id", c.ID))
			continue
		}

		select {
		case c.hub.inbound <- hubMessage{conn: c, envelope: envelope}:
		default:
			c.log.Warn("hub inbound queue full, dropping frame", zap.String("runtime_id", c.ID))
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// WritePump drains send onto the socket, with a periodic ping to detect a
// dead peer, until the channel closes or ctx is canceled.
func (c *Connection) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case envelope, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(envelope); err != nil {
				c.log.Warn("websocket write error", zap.Error(err), zap.String("runtime_id", c.ID))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
