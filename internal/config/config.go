// Package config holds the immutable runtime configuration and the small
// persisted settings file the admin screen writes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sweeney/reaction-arcade/internal/logic"
	"github.com/sweeney/reaction-arcade/internal/viewport"
)

// AppName names the user data directory.
const AppName = "reaction-arcade"

// Environment variables consulted when the matching flag is unset.
const (
	EnvDataDir     = "REACTION_ARCADE_DATA_DIR"
	EnvDatabaseURL = "DATABASE_URL"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is built once at startup and passed by value to constructors.
type Config struct {
	Thresholds logic.Thresholds

	BaseW, BaseH int // logical canvas
	MinW, MinH   int // smallest physical window

	FrameRate  int // render/input loop, Hz
	CameraRate int // camera capture target, Hz

	SerialPort  string // empty: probe candidates
	SerialBaud  int
	CameraIndex int

	DataDir     string
	DatabaseURL string // empty: JSON file leaderboard

	Broker    string // empty: MQTT disabled
	Heartbeat time.Duration
	HTTPAddr  string // empty: status server disabled

	GPIOChip string
	GPIOPin  int // negative: no proximity switch

	Sound    bool
	Headless bool
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Thresholds:  logic.DefaultThresholds(),
		BaseW:       viewport.BaseWidth,
		BaseH:       viewport.BaseHeight,
		MinW:        viewport.MinWidth,
		MinH:        viewport.MinHeight,
		FrameRate:   60,
		CameraRate:  30,
		SerialBaud:  9600,
		DataDir:     getEnv(EnvDataDir, UserDataDir()),
		DatabaseURL: os.Getenv(EnvDatabaseURL),
		Heartbeat:   15 * time.Minute,
		GPIOChip:    "gpiochip0",
		GPIOPin:     -1,
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch {
	case c.Thresholds.ArmZoneCM <= 0:
		return fmt.Errorf("%w: arm zone must be positive, got %v", ErrInvalid, c.Thresholds.ArmZoneCM)
	case c.Thresholds.NearCooldown < 0:
		return fmt.Errorf("%w: near cooldown must not be negative", ErrInvalid)
	case c.Thresholds.AttemptGap <= 0:
		return fmt.Errorf("%w: attempt gap must be positive", ErrInvalid)
	case c.BaseW <= 0 || c.BaseH <= 0:
		return fmt.Errorf("%w: base size %dx%d", ErrInvalid, c.BaseW, c.BaseH)
	case c.MinW <= 0 || c.MinH <= 0:
		return fmt.Errorf("%w: minimum size %dx%d", ErrInvalid, c.MinW, c.MinH)
	case c.FrameRate <= 0 || c.CameraRate <= 0:
		return fmt.Errorf("%w: rates must be positive", ErrInvalid)
	case c.SerialBaud <= 0:
		return fmt.Errorf("%w: baud rate %d", ErrInvalid, c.SerialBaud)
	case c.DataDir == "":
		return fmt.Errorf("%w: data dir is empty", ErrInvalid)
	}
	return nil
}

// FrameInterval is the period of the main loop.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

// CameraInterval is the minimum period between camera reads.
func (c Config) CameraInterval() time.Duration {
	return time.Second / time.Duration(c.CameraRate)
}

// LeaderboardPath is the JSON leaderboard file.
func (c Config) LeaderboardPath() string { return filepath.Join(c.DataDir, "leaderboard.json") }

// SessionPath records the most recent player name.
func (c Config) SessionPath() string { return filepath.Join(c.DataDir, "session.json") }

// SettingsPath holds the persisted device choices.
func (c Config) SettingsPath() string { return filepath.Join(c.DataDir, "settings.json") }

// LogPath receives log output while the terminal UI owns the screen.
func (c Config) LogPath() string { return filepath.Join(c.DataDir, AppName+".log") }

// UserDataDir returns the per-user data directory for the platform.
// It falls back to the working directory when no home is known.
func UserDataDir() string {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, "Library", "Application Support")
		}
	default:
		if dir, err := os.UserConfigDir(); err == nil {
			base = dir
		}
	}
	if base == "" {
		return "."
	}
	return filepath.Join(base, AppName)
}

// EnsureDataDir creates the data directory if needed.
func (c Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
