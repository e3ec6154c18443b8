// Package config holds the process-wide, read-only configuration surface
// named below: tick rate, avatar speed, default emote duration, the
// default room, max stack height, the recolor whitelist, and so on.
// Everything is loaded once in main and never re-read afterward.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full configuration surface. All fields are read-only after
// Load returns.
type Config struct {
	ListenAddr string
	LogLevel   string

	TickRate            int // Hz
	MaxTickDelta        time.Duration
	AvatarSpeed         float64 // tiles/sec
	DefaultEmoteSeconds  float64
	DefaultRoomID       string
	InitialRoomIDs      []string
	MaxStackZ           float64
	DefaultStackFactor  float64
	AvatarDefaultZ      float64

	FurnitureCatalogPath string
	EmoteCatalogPath     string
	ShopCatalogPath      string
	RecolorWhitelist     []string
}

// Load builds a Config from environment variables, falling back to the
// defaults below for anything unset.
func Load() Config {
	cfg := Config{
		ListenAddr:           getEnv("ROOM_LISTEN_ADDR", ":3001"),
		LogLevel:             getEnv("ROOM_LOG_LEVEL", "info"),
		TickRate:             getEnvInt("ROOM_TICK_RATE", 20),
		MaxTickDelta:         time.Duration(getEnvInt("ROOM_MAX_TICK_MS", 100)) * time.Millisecond,
		AvatarSpeed:          getEnvFloat("ROOM_AVATAR_SPEED", 4.0),
		DefaultEmoteSeconds:  getEnvFloat("ROOM_DEFAULT_EMOTE_SECONDS", 3.0),
		DefaultRoomID:        getEnv("ROOM_DEFAULT_ROOM_ID", "main_lobby"),
		InitialRoomIDs:       getEnvList("ROOM_INITIAL_ROOM_IDS", []string{"main_lobby", "lounge"}),
		MaxStackZ:            getEnvFloat("ROOM_MAX_STACK_Z", 20.0),
		DefaultStackFactor:   getEnvFloat("ROOM_DEFAULT_STACK_FACTOR", 1.0),
		AvatarDefaultZ:       getEnvFloat("ROOM_AVATAR_DEFAULT_Z", 0.0),
		FurnitureCatalogPath: getEnv("ROOM_FURNITURE_CATALOG", "catalog/furniture.json"),
		EmoteCatalogPath:     getEnv("ROOM_EMOTE_CATALOG", "catalog/emotes.json"),
		ShopCatalogPath:      getEnv("ROOM_SHOP_CATALOG", "catalog/shop.json"),
		RecolorWhitelist:     getEnvList("ROOM_RECOLOR_WHITELIST", defaultRecolorWhitelist),
	}
	return cfg
}

var defaultRecolorWhitelist = []string{
	"#FFFFFF", "#000000", "#E53E3E", "#38A169", "#3182CE", "#D69E2E", "#805AD5", "#DD6B20",
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
