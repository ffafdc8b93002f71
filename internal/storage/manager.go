package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"vidsparrow/internal/model"
	"vidsparrow/pkg/logger"
	"vidsparrow/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrFileTooLarge is returned when a retrieved file exceeds MAX_FILE_SIZE_MB
var ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

// Manager stores retrieved files on disk and expires them
type Manager struct {
	cfg      *model.StorageConfig
	files    map[string]*model.RetrievedFile
	mu       sync.RWMutex
	quitChan chan struct{}
	stopOnce sync.Once
}

// NewManager creates a new storage manager
func NewManager(cfg *model.StorageConfig) *Manager {
	return &Manager{
		cfg:      cfg,
		files:    make(map[string]*model.RetrievedFile),
		quitChan: make(chan struct{}),
	}
}

// Start starts the cleanup routine when files expire
func (m *Manager) Start() {
	if m.cfg.FileTTLSeconds <= 0 || m.cfg.CleanupInterval <= 0 {
		logger.LogInfo("Storage cleanup disabled", zap.Int("file_ttl_seconds", m.cfg.FileTTLSeconds))
		return
	}
	go m.cleanupRoutine()
}

// Stop stops the cleanup routine
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.quitChan) })
}

// Save writes r into the download directory under a sanitized name
func (m *Manager) Save(name string, r io.Reader) (*model.RetrievedFile, error) {
	if err := m.EnsureDownloadDir(); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	path, f, err := m.createUnique(validator.TruncateFilename(validator.SanitizeFilename(name), 200))
	if err != nil {
		return nil, err
	}

	src := r
	maxBytes := m.maxBytes()
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}

	written, err := io.Copy(f, src)
	closeErr := f.Close()
	if err == nil && maxBytes > 0 && written > maxBytes {
		err = ErrFileTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		logger.LogError("Failed to store retrieved file", err, zap.String("path", path))
		return nil, err
	}

	now := time.Now()
	file := &model.RetrievedFile{
		ID:        uuid.NewString(),
		Filename:  filepath.Base(path),
		FilePath:  path,
		Size:      written,
		CreatedAt: now,
	}
	if m.cfg.FileTTLSeconds > 0 {
		file.ExpiresAt = now.Add(time.Duration(m.cfg.FileTTLSeconds) * time.Second)
	}

	m.mu.Lock()
	m.files[file.ID] = file
	m.mu.Unlock()

	logger.LogInfo("File saved", zap.String("id", file.ID), zap.String("filename", file.Filename), zap.Int64("size", written))
	return file, nil
}

// createUnique opens a new file, appending " (n)" when the name is taken
func (m *Manager) createUnique(name string) (string, *os.File, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, i, ext)
		}
		path := m.GetDownloadPath(candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return path, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, err
		}
	}
	return "", nil, fmt.Errorf("no free filename for %q", name)
}

func (m *Manager) maxBytes() int64 {
	return int64(m.cfg.MaxFileSizeMB) * 1024 * 1024
}

// cleanupRoutine periodically removes expired files
func (m *Manager) cleanupRoutine() {
	ticker := time.NewTicker(time.Duration(m.cfg.CleanupInterval) * time.Second)
	defer ticker.Stop()

	logger.LogInfo("Storage cleanup routine started",
		zap.Int("cleanup_interval_seconds", m.cfg.CleanupInterval),
		zap.Int("file_ttl_seconds", m.cfg.FileTTLSeconds))

	for {
		select {
		case <-m.quitChan:
			logger.LogInfo("Storage cleanup routine stopped")
			return
		case <-ticker.C:
			m.cleanupExpiredFiles(time.Now())
		}
	}
}

// cleanupExpiredFiles removes files that have expired at now
func (m *Manager) cleanupExpiredFiles(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deletedCount := 0
	errorCount := 0

	for id, file := range m.files {
		if file.ExpiresAt.IsZero() || !now.After(file.ExpiresAt) {
			continue
		}
		if err := os.Remove(file.FilePath); err != nil {
			if !os.IsNotExist(err) {
				logger.LogError("Failed to remove file", err, zap.String("id", id), zap.String("path", file.FilePath))
				errorCount++
			} else {
				logger.LogDebug("File already deleted", zap.String("id", id), zap.String("path", file.FilePath))
			}
		} else {
			logger.LogInfo("File removed by cleanup", zap.String("id", id), zap.String("path", file.FilePath))
			deletedCount++
		}
		// untrack regardless of deletion success
		delete(m.files, id)
	}

	if deletedCount > 0 || errorCount > 0 {
		logger.LogInfo("Storage cleanup completed",
			zap.Int("deleted_count", deletedCount),
			zap.Int("error_count", errorCount),
			zap.Int("remaining_tracked_files", len(m.files)))
	}
}

// GetFile gets file info by ID
func (m *Manager) GetFile(id string) *model.RetrievedFile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.files[id]
}

// Files returns the tracked files, oldest first
func (m *Manager) Files() []model.RetrievedFile {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]model.RetrievedFile, 0, len(m.files))
	for _, f := range m.files {
		result = append(result, *f)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// EnsureDownloadDir ensures download directory exists
func (m *Manager) EnsureDownloadDir() error {
	return os.MkdirAll(m.cfg.DownloadDir, 0755)
}

// GetDownloadPath returns the path where file should be stored
func (m *Manager) GetDownloadPath(filename string) string {
	return filepath.Join(m.cfg.DownloadDir, filename)
}

// ManualCleanup triggers a cleanup run against the given time
func (m *Manager) ManualCleanup(now time.Time) {
	m.cleanupExpiredFiles(now)
}
