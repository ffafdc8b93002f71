package storage

import (
	"context"

	"vidsparrow/internal/model"
	"vidsparrow/internal/service"
	"vidsparrow/pkg/logger"

	"go.uber.org/zap"
)

// Fetcher opens a file served by the media service
type Fetcher interface {
	FetchFile(ctx context.Context, filename string) (*service.FileStream, error)
}

// Retriever downloads finished files from the media service into the manager
type Retriever struct {
	fetcher Fetcher
	manager *Manager
}

// NewRetriever creates a retriever writing into m
func NewRetriever(fetcher Fetcher, m *Manager) *Retriever {
	return &Retriever{fetcher: fetcher, manager: m}
}

// Retrieve fetches filename and stores it locally
func (r *Retriever) Retrieve(ctx context.Context, filename string) (*model.RetrievedFile, error) {
	stream, err := r.fetcher.FetchFile(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer stream.Body.Close()

	if limit := r.manager.maxBytes(); limit > 0 && stream.Size > limit {
		logger.LogWarn("Retrieved file too large", zap.String("filename", filename), zap.Int64("size", stream.Size))
		return nil, ErrFileTooLarge
	}

	file, err := r.manager.Save(stream.Name, stream.Body)
	if err != nil {
		return nil, err
	}

	logger.LogInfo("File retrieved", zap.String("filename", filename), zap.String("path", file.FilePath))
	return file, nil
}
