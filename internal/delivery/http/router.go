// Package http wires gin up as C7's request/response half: health check,
// thin profile/shop read endpoints, and the /ws upgrade handler that hands
// a fresh socket to the websocket Hub.
package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tilehaven/roomserver/internal/catalog"
	wsocket "github.com/tilehaven/roomserver/internal/delivery/websocket"
	"github.com/tilehaven/roomserver/internal/middleware"
	"github.com/tilehaven/roomserver/internal/persistence"
)

// New builds the gin engine: middleware chain, health check, the thin
// profile/shop reads, and the websocket upgrade endpoint. intentHandler is
// the same Dispatcher wired into hub.SetHandler, called directly here for
// Bind since a brand new connection isn't registered with the hub yet.
func New(hub *wsocket.Hub, intentHandler wsocket.IntentHandler, store persistence.Facade, shopCatalog *catalog.ShopCatalog, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ZapLogger(), middleware.ZapRecovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	h := &handler{hub: hub, intentHandler: intentHandler, store: store, shopCatalog: shopCatalog}

	r.GET("/health", h.healthCheck)

	api := r.Group("/api/v1")
	{
		api.GET("/users/:id", h.getUserProfile)
		api.GET("/shop", h.listShopItems)
	}

	r.GET("/ws", h.serveWS)

	return r
}
