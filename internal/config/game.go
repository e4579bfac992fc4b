package config

import (
	"fmt"
	"time"
)

// Game bounds what clients may ask for and how long idle sessions live.
type Game struct {
	MaxRows       int
	MaxCols       int
	DefaultRatio  float64
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

func NewGame() (*Game, error) {
	cfg := &Game{}
	var err error

	if cfg.MaxRows, err = lookupInt("GAME_MAX_ROWS", 100); err != nil {
		return nil, err
	}
	if cfg.MaxCols, err = lookupInt("GAME_MAX_COLS", 100); err != nil {
		return nil, err
	}
	if cfg.DefaultRatio, err = lookupFloat("GAME_DEFAULT_RATIO", 0.15); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = lookupDuration("GAME_SESSION_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = lookupDuration("GAME_SWEEP_INTERVAL", time.Minute); err != nil {
		return nil, err
	}

	if cfg.MaxRows <= 0 || cfg.MaxCols <= 0 {
		return nil, fmt.Errorf("GAME_MAX_ROWS and GAME_MAX_COLS must be positive")
	}
	if cfg.DefaultRatio <= 0 || cfg.DefaultRatio >= 1 {
		return nil, fmt.Errorf("GAME_DEFAULT_RATIO must be in (0, 1), got %v", cfg.DefaultRatio)
	}
	if cfg.SessionTTL <= 0 || cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("GAME_SESSION_TTL and GAME_SWEEP_INTERVAL must be positive")
	}

	return cfg, nil
}
