package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Scrub ambient environment; t.Setenv registers the restore.
	for _, key := range []string{
		"SERVER_ADDR", "STORE_BACKEND", "AUDIO_ENGINE",
		"FRAME_RATE", "VOLUME", "LOG_LEVEL", "DROP_DIR",
		"SHUTDOWN_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.ServerAddr != ":8080" {
		t.Errorf("ServerAddr = %q, want :8080", cfg.ServerAddr)
	}
	if cfg.StoreBackend != "memory" {
		t.Errorf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
	if cfg.AudioEngine != "beep" {
		t.Errorf("AudioEngine = %q, want beep", cfg.AudioEngine)
	}
	if cfg.FrameRate < 1 {
		t.Errorf("FrameRate = %d, want >= 1", cfg.FrameRate)
	}
	if cfg.Volume < 0 || cfg.Volume > 1 {
		t.Errorf("Volume = %v, want within [0,1]", cfg.Volume)
	}
	if cfg.ShutdownTimeout <= 0 {
		t.Errorf("ShutdownTimeout = %v, want positive", cfg.ShutdownTimeout)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("STORE_BACKEND", "minio")
	t.Setenv("AUDIO_ENGINE", "silent")
	t.Setenv("FRAME_RATE", "30")
	t.Setenv("VOLUME", "0.5")
	t.Setenv("DROP_DIR", "/tmp/drop")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "9")

	cfg := Load()

	if cfg.ServerAddr != ":9999" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr)
	}
	if cfg.StoreBackend != "minio" {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
	if cfg.AudioEngine != "silent" {
		t.Errorf("AudioEngine = %q", cfg.AudioEngine)
	}
	if cfg.FrameRate != 30 {
		t.Errorf("FrameRate = %d", cfg.FrameRate)
	}
	if cfg.Volume != 0.5 {
		t.Errorf("Volume = %v", cfg.Volume)
	}
	if cfg.DropDir != "/tmp/drop" {
		t.Errorf("DropDir = %q", cfg.DropDir)
	}
	if !cfg.MinioUseSSL {
		t.Errorf("MinioUseSSL = false, want true")
	}
	if cfg.ShutdownTimeout != 9*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
}

func TestLoadClampsOutOfRangeValues(t *testing.T) {
	t.Setenv("FRAME_RATE", "-10")
	t.Setenv("VOLUME", "2.5")

	cfg := Load()
	if cfg.FrameRate != 1 {
		t.Errorf("FrameRate = %d, want clamp to 1", cfg.FrameRate)
	}
	if cfg.Volume != 1 {
		t.Errorf("Volume = %v, want clamp to 1", cfg.Volume)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("FRAME_RATE", "sixty")
	t.Setenv("VOLUME", "loud")

	cfg := Load()
	if cfg.FrameRate != 60 {
		t.Errorf("FrameRate = %d, want the default 60", cfg.FrameRate)
	}
	if cfg.Volume != 1.0 {
		t.Errorf("Volume = %v, want the default 1.0", cfg.Volume)
	}
}
