// @title Room Server API
// @version 1.0
// @description Realtime multi-room tile-based social-world server
// @license.name MIT
// @host localhost:3001
// @BasePath /api/v1
// @schemes http https
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tilehaven/roomserver/internal/catalog"
	"github.com/tilehaven/roomserver/internal/config"
	roomhttp "github.com/tilehaven/roomserver/internal/delivery/http"
	wsocket "github.com/tilehaven/roomserver/internal/delivery/websocket"
	"github.com/tilehaven/roomserver/internal/furniture"
	"github.com/tilehaven/roomserver/internal/logger"
	"github.com/tilehaven/roomserver/internal/persistence"
	"github.com/tilehaven/roomserver/internal/roomkernel"
	"github.com/tilehaven/roomserver/internal/world"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(&cfg.LogLevel); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()
	log := logger.Get()

	furnitureCatalog, err := furniture.LoadBundledCatalog()
	if err != nil {
		log.Fatal("failed to load furniture catalog", zap.Error(err))
	}
	emoteCatalog, err := catalog.LoadBundledEmoteCatalog()
	if err != nil {
		log.Fatal("failed to load emote catalog", zap.Error(err))
	}
	shopCatalog, err := catalog.LoadBundledShopCatalog()
	if err != nil {
		log.Fatal("failed to load shop catalog", zap.Error(err))
	}

	whitelist := make(map[string]bool, len(cfg.RecolorWhitelist))
	for _, hex := range cfg.RecolorWhitelist {
		whitelist[hex] = true
	}
	limits := roomkernel.Limits{
		MaxStackZ:        cfg.MaxStackZ,
		StackFactor:      cfg.DefaultStackFactor,
		AvatarDefaultZ:   cfg.AvatarDefaultZ,
		RecolorWhitelist: whitelist,
	}

	store := persistence.NewInMemory()

	// The Director needs the Hub as its Emitter; the Hub needs the Director
	// (via the Dispatcher) as its RoomLocator/IntentHandler. Build the Hub
	// first, wire SetHandler once both exist.
	hub := wsocket.NewHub()
	director := world.New(store, furnitureCatalog, emoteCatalog, limits, cfg.AvatarSpeed, cfg.DefaultRoomID, hub, log)
	director.SetDisconnector(hub)

	dispatcher := wsocket.NewDispatcher(director, hub, shopCatalog, whitelist)
	hub.SetHandler(director, dispatcher)

	router := roomhttp.New(hub, dispatcher, store, shopCatalog, []string{"http://localhost:3000"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)
	go runTickLoop(ctx, director, cfg)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: router}
	go func() {
		log.Info("room server starting", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	cancel() // stops the tick loop and the hub's Run loop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("room server stopped")
}

// runTickLoop drives the World Director at the configured tick rate until
// ctx is canceled. now is a monotonic seconds clock seeded at startup,
// independent of wall-clock jumps.
func runTickLoop(ctx context.Context, director *world.Director, cfg config.Config) {
	interval := time.Second / time.Duration(cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	last := start
	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-ticker.C:
			dt := tick.Sub(last).Seconds()
			if tick.Sub(last) > cfg.MaxTickDelta {
				dt = cfg.MaxTickDelta.Seconds()
			}
			last = tick
			director.Tick(ctx, dt, tick.Sub(start).Seconds())
		}
	}
}
