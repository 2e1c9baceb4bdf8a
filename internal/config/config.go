package config

import (
	"os"
	"strconv"
)

type Config struct {
	ListenAddr          string
	DataDir             string
	FontPath            string // empty selects the embedded fallback face
	FFmpegPath          string
	FFprobePath         string
	MaxUploadBytes      int64
	WorkerCount         int
	LogLevel            string
	CleanupIntervalMins int
	JobMaxAgeHours      int
}

func Load() *Config {
	return &Config{
		ListenAddr:          envOr("LISTEN_ADDR", ":8080"),
		DataDir:             envOr("DATA_DIR", "./data"),
		FontPath:            envOr("FONT_PATH", ""),
		FFmpegPath:          envOr("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:         envOr("FFPROBE_PATH", "ffprobe"),
		MaxUploadBytes:      envInt64Or("MAX_UPLOAD_BYTES", 2*1024*1024*1024),
		WorkerCount:         envIntOr("WORKER_COUNT", 2),
		LogLevel:            envOr("LOG_LEVEL", "info"),
		CleanupIntervalMins: envIntOr("CLEANUP_INTERVAL_MINS", 30),
		JobMaxAgeHours:      envIntOr("JOB_MAX_AGE_HOURS", 24),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
