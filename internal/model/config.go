package model

// Config holds application configuration
type Config struct {
	Remote  RemoteConfig
	Session SessionConfig
	Storage StorageConfig
	Panel   PanelConfig
	Logging LoggingConfig
}

// RemoteConfig holds the media service connection settings
type RemoteConfig struct {
	BaseURL   string
	Timeout   int    // seconds, 0 disables the client timeout
	Transport string // "std" or "browser"
}

// SessionConfig holds controller defaults
type SessionConfig struct {
	DefaultPlatform     Platform
	DefaultMediaType    MediaType
	RetrievalDelayMilli int // pause between the success report and file retrieval
	ToastSeconds        int
	HistoryLimit        int
}

// StorageConfig holds storage configuration for retrieved files
type StorageConfig struct {
	DownloadDir     string
	MaxFileSizeMB   int // 0 means unlimited
	CleanupInterval int // seconds
	FileTTLSeconds  int // 0 keeps files forever
}

// PanelConfig holds the local control panel server configuration
type PanelConfig struct {
	Host    string
	Port    int
	Timeout int // seconds
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string
	FilePath string
	Console  bool // also write to stdout/stderr
}
