package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Values come from the environment (optionally via a .env file) with
// simple defaults suitable for a local deck.
type Config struct {
	ServerAddr string // Listen address for the HTTP server
	WebAppDir  string // Path to the web UI files
	DropDir    string // Directory watched for dropped .mp3 files ("" disables the watcher)

	// Object store for uploaded track bytes.
	StoreBackend   string // "memory" (default) or "minio"
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// Audio output: "beep" (real device) or "silent" (headless clock).
	AudioEngine string

	// Spectrum sampling.
	FrameRate int // Sampler frames per second

	// Playback.
	Volume float64 // Initial volume, 0.0..1.0

	// Logging.
	LogLevel      string
	LogPath       string // "" logs to stdout only
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	ShutdownTimeout time.Duration
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvFloat gets an environment variable as float64 or returns a default value.
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override variables already set in the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	frameRate := getEnvInt("FRAME_RATE", 60)
	if frameRate < 1 {
		frameRate = 1
	}

	volume := getEnvFloat("VOLUME", 1.0)
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		WebAppDir:  getEnv("WEBAPP_DIR", filepath.Join("web", "ui")),
		DropDir:    getEnv("DROP_DIR", ""),

		StoreBackend:   getEnv("STORE_BACKEND", "memory"),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"), // no hardcoded default for secrets
		MinioBucket:    getEnv("MINIO_BUCKET", "spectrafm"),
		MinioRegion:    getEnv("MINIO_REGION", ""),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		AudioEngine: getEnv("AUDIO_ENGINE", "beep"),
		FrameRate:   frameRate,
		Volume:      volume,

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       getEnv("LOG_PATH", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 14),

		ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 5)) * time.Second,
	}
}
