package config

import (
	"os"
	"strconv"
	"strings"

	"vidsparrow/internal/model"

	"github.com/joho/godotenv"
)

// Load loads configuration from environment variables
func Load() *model.Config {
	godotenv.Load()

	return &model.Config{
		Remote: model.RemoteConfig{
			BaseURL:   strings.TrimRight(getEnvStr("REMOTE_BASE_URL", "http://localhost:5000"), "/"),
			Timeout:   getEnvInt("REMOTE_TIMEOUT", 0),
			Transport: parseTransport(getEnvStr("REMOTE_TRANSPORT", "std")),
		},
		Session: model.SessionConfig{
			DefaultPlatform:     parsePlatform(getEnvStr("DEFAULT_PLATFORM", "youtube")),
			DefaultMediaType:    parseMediaType(getEnvStr("DEFAULT_MEDIA_TYPE", "mp4")),
			RetrievalDelayMilli: getEnvInt("FILE_RETRIEVAL_DELAY_MS", 1000),
			ToastSeconds:        getEnvInt("TOAST_SECONDS", 5),
			HistoryLimit:        getEnvInt("HISTORY_LIMIT", 10),
		},
		Storage: model.StorageConfig{
			DownloadDir:     getEnvStr("DOWNLOAD_DIR", "./downloads"),
			MaxFileSizeMB:   getEnvInt("MAX_FILE_SIZE_MB", 0),
			CleanupInterval: getEnvInt("STORAGE_CLEANUP_INTERVAL", 3600),
			FileTTLSeconds:  getEnvInt("FILE_TTL_SECONDS", 0),
		},
		Panel: model.PanelConfig{
			Host:    getEnvStr("PANEL_HOST", "127.0.0.1"),
			Port:    getEnvInt("PANEL_PORT", 8090),
			Timeout: getEnvInt("PANEL_TIMEOUT", 60),
		},
		Logging: model.LoggingConfig{
			Level:    getEnvStr("LOG_LEVEL", "info"),
			FilePath: getEnvStr("LOG_FILE", "./log/app.log"),
			Console:  getEnvBool("LOG_CONSOLE", true),
		},
	}
}

// parsePlatform falls back to youtube for unknown platforms
func parsePlatform(value string) model.Platform {
	p := model.Platform(strings.ToLower(strings.TrimSpace(value)))
	if !p.IsKnown() {
		return model.PlatformYouTube
	}
	return p
}

// parseMediaType falls back to video for unknown media types
func parseMediaType(value string) model.MediaType {
	m := model.MediaType(strings.ToLower(strings.TrimSpace(value)))
	if !m.IsValid() {
		return model.MediaTypeVideo
	}
	return m
}

func parseTransport(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "browser":
		return "browser"
	default:
		return "std"
	}
}

func getEnvStr(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	valStr := getEnvStr(key, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	valStr := strings.ToLower(getEnvStr(key, ""))
	if valStr == "true" || valStr == "1" || valStr == "yes" {
		return true
	}
	if valStr == "false" || valStr == "0" || valStr == "no" {
		return false
	}
	return defaultVal
}
