package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tilehaven/roomserver/internal/catalog"
	wsocket "github.com/tilehaven/roomserver/internal/delivery/websocket"
	"github.com/tilehaven/roomserver/internal/logger"
	"github.com/tilehaven/roomserver/internal/persistence"
	"github.com/tilehaven/roomserver/internal/session"
)

type handler struct {
	hub           *wsocket.Hub
	intentHandler wsocket.IntentHandler
	store         persistence.Facade
	shopCatalog   *catalog.ShopCatalog
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (h *handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) getUserProfile(c *gin.Context) {
	userID := c.Param("id")
	row, found, err := h.store.LoadUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile_read_failed"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *handler) listShopItems(c *gin.Context) {
	c.JSON(http.StatusOK, h.shopCatalog.All())
}

// serveWS upgrades the HTTP connection, mints a runtime id, binds it to
// the World Director, and hands the live socket to the hub's pumps.
// Credential verification is assumed to live ahead of this handler (a
// bearer-token middleware in front of production deployments); here we
// trust the caller-supplied user_id/name query params.
func (h *handler) serveWS(c *gin.Context) {
	userID := c.Query("user_id")
	name := c.Query("name")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_user_id"})
		return
	}
	if name == "" {
		name = userID
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Get().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	runtimeID := session.NewRuntimeID()
	wsConn := wsocket.NewConnection(runtimeID, conn, h.hub)
	h.hub.Register(wsConn)

	ctx := c.Request.Context()
	if err := h.intentHandler.Bind(ctx, runtimeID, userID, name); err != nil {
		logger.Get().Error("bind failed", zap.String("runtime_id", runtimeID), zap.Error(err))
		conn.Close()
		return
	}

	go wsConn.WritePump(ctx)
	wsConn.ReadPump(ctx)
}
