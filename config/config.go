// Package config loads runtime settings from the environment, reading a local
// .env file first outside production.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort          = "8080"
	defaultModelsDir     = "static/models"
	defaultCacheDir      = "cache/swatches"
	defaultTemplatesDir  = "templates"
	defaultStorefrontURL = "http://localhost:8080"
	defaultMeshPath      = "/models/creme/together.stl"
	defaultCycle         = 3 * time.Second
	defaultFrame         = 16 * time.Millisecond
	defaultEnvFile       = ".env"
)

// Config captures both programs' settings, grouped by concern
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Drive    DriveConfig
	Assets   AssetConfig
	Viewer   ViewerConfig
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Port    string
	BaseURL string
}

// DatabaseConfig holds either a DSN or its parts
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DriveConfig points at the Drive folder holding mesh files
type DriveConfig struct {
	CredentialsFile string
	FolderID        string
}

// AssetConfig locates files served or produced by the server
type AssetConfig struct {
	ModelsDir    string
	CacheDir     string
	TemplatesDir string
	ChromePath   string
}

// ViewerConfig configures the terminal viewer
type ViewerConfig struct {
	StorefrontURL string
	MeshPath      string
	CycleInterval time.Duration
	FrameInterval time.Duration
}

// Load reads .env (unless ENV=production) and then the process environment.
func Load() (Config, error) {
	if os.Getenv("ENV") != "production" {
		// a missing .env is fine; variables may come from the environment
		_ = godotenv.Load(defaultEnvFile)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	port := strings.TrimPrefix(get("PORT", defaultPort), ":")
	cfg := Config{
		Server: ServerConfig{
			Port:    port,
			BaseURL: strings.TrimRight(get("BASE_URL", "http://localhost:"+port), "/"),
		},
		Database: DatabaseConfig{
			URL:      get("DATABASE_URL", ""),
			Host:     get("DB_HOST", ""),
			Port:     get("DB_PORT", "5432"),
			User:     get("DB_USER", ""),
			Password: getenv("DB_PASSWORD"),
			Name:     get("DB_NAME", ""),
			SSLMode:  get("DB_SSLMODE", "disable"),
		},
		Drive: DriveConfig{
			CredentialsFile: get("GOOGLE_APPLICATION_CREDENTIALS", ""),
			FolderID:        get("MODELS_DRIVE_FOLDER_ID", ""),
		},
		Assets: AssetConfig{
			ModelsDir:    get("MODELS_DIR", defaultModelsDir),
			CacheDir:     get("CACHE_DIR", defaultCacheDir),
			TemplatesDir: get("TEMPLATES_DIR", defaultTemplatesDir),
			ChromePath:   get("CHROME_PATH", ""),
		},
		Viewer: ViewerConfig{
			StorefrontURL: strings.TrimRight(get("STOREFRONT_URL", defaultStorefrontURL), "/"),
			MeshPath:      get("MESH_PATH", defaultMeshPath),
		},
	}

	var err error
	if cfg.Viewer.CycleInterval, err = parseDuration(get("CYCLE_INTERVAL", ""), defaultCycle); err != nil {
		return Config{}, fmt.Errorf("invalid CYCLE_INTERVAL: %w", err)
	}
	if cfg.Viewer.FrameInterval, err = parseDuration(get("FRAME_INTERVAL", ""), defaultFrame); err != nil {
		return Config{}, fmt.Errorf("invalid FRAME_INTERVAL: %w", err)
	}
	return cfg, nil
}

// DSN returns the connection string, building it from parts when DATABASE_URL is unset.
func (d DatabaseConfig) DSN() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return "", fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode), nil
}

// parseDuration accepts Go durations ("3s") or plain milliseconds ("3000")
func parseDuration(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("must be positive, got %d", ms)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}
