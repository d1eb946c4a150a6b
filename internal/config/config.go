// Package config provides configuration management for the PromoForge agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort     = 8790
	DefaultLogLevel = "info"
	DefaultDataDir  = ".promoforge"

	// Environment variable names
	EnvPort     = "PROMOFORGE_PORT"
	EnvLogLevel = "PROMOFORGE_LOG_LEVEL"
	EnvDataDir  = "PROMOFORGE_DATA_DIR"

	// Upstream service credentials
	EnvSceneAPIKey  = "SORA_2_API_KEY"
	EnvSceneBaseURL = "VIDGO_BASE_URL"
	EnvRenderAPIKey = "SHOTSTACK_API_KEY"
	EnvRenderEnv    = "SHOTSTACK_ENV"
	EnvGeminiAPIKey = "GEMINI_API_KEY"

	// Pipeline tuning
	EnvPollInterval     = "PROMOFORGE_POLL_INTERVAL_SECONDS"
	EnvSceneDeadline    = "PROMOFORGE_SCENE_TIMEOUT_SECONDS"
	EnvAssemblyDeadline = "PROMOFORGE_ASSEMBLY_TIMEOUT_SECONDS"

	// Database filename
	DBFilename = "promoforge.db"

	// Pipeline defaults
	DefaultPollIntervalSeconds    = 5
	DefaultSceneTimeoutSeconds    = 600 // 10 minutes
	DefaultAssemblyTimeoutSeconds = 900 // 15 minutes
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	AssetDir() string
	SceneAPIKey() string
	SceneBaseURL() string
	RenderAPIKey() string
	RenderEnv() string
	GeminiAPIKey() string
	PollInterval() time.Duration
	SceneDeadline() time.Duration
	AssemblyDeadline() time.Duration
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string

	sceneAPIKey  string
	sceneBaseURL string
	renderAPIKey string
	renderEnv    string
	geminiAPIKey string

	pollIntervalSeconds    int
	sceneTimeoutSeconds    int
	assemblyTimeoutSeconds int
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:                   DefaultPort,
		logLevel:               DefaultLogLevel,
		dataDir:                defaultDataDir(),
		pollIntervalSeconds:    DefaultPollIntervalSeconds,
		sceneTimeoutSeconds:    DefaultSceneTimeoutSeconds,
		assemblyTimeoutSeconds: DefaultAssemblyTimeoutSeconds,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.sceneAPIKey = os.Getenv(EnvSceneAPIKey)
	cfg.sceneBaseURL = os.Getenv(EnvSceneBaseURL)
	cfg.renderAPIKey = os.Getenv(EnvRenderAPIKey)
	cfg.renderEnv = os.Getenv(EnvRenderEnv)
	cfg.geminiAPIKey = os.Getenv(EnvGeminiAPIKey)

	for _, tune := range []struct {
		env  string
		dest *int
	}{
		{EnvPollInterval, &cfg.pollIntervalSeconds},
		{EnvSceneDeadline, &cfg.sceneTimeoutSeconds},
		{EnvAssemblyDeadline, &cfg.assemblyTimeoutSeconds},
	} {
		if v := os.Getenv(tune.env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid %s: must be a positive integer", tune.env)
			}
			*tune.dest = n
		}
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// AssetDir returns the directory local asset references resolve against
func (c *EnvConfig) AssetDir() string {
	return filepath.Join(c.dataDir, "assets")
}

func (c *EnvConfig) SceneAPIKey() string {
	return c.sceneAPIKey
}

func (c *EnvConfig) SceneBaseURL() string {
	return c.sceneBaseURL
}

func (c *EnvConfig) RenderAPIKey() string {
	return c.renderAPIKey
}

// RenderEnv selects the Shotstack environment ("production" or "sandbox")
func (c *EnvConfig) RenderEnv() string {
	return c.renderEnv
}

func (c *EnvConfig) GeminiAPIKey() string {
	return c.geminiAPIKey
}

func (c *EnvConfig) PollInterval() time.Duration {
	return time.Duration(c.pollIntervalSeconds) * time.Second
}

func (c *EnvConfig) SceneDeadline() time.Duration {
	return time.Duration(c.sceneTimeoutSeconds) * time.Second
}

func (c *EnvConfig) AssemblyDeadline() time.Duration {
	return time.Duration(c.assemblyTimeoutSeconds) * time.Second
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
