package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"vidsparrow/internal/model"
	"vidsparrow/pkg/logger"

	"go.uber.org/zap"
)

// HTTPDoer is the transport used to reach the media service
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RemoteService is the typed client of the media service endpoints
type RemoteService struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewRemoteService creates a client for the service at baseURL
func NewRemoteService(baseURL string, client HTTPDoer) *RemoteService {
	return &RemoteService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// NewStdClient returns a net/http client; timeout 0 means no timeout
func NewStdClient(timeout int) *http.Client {
	return &http.Client{
		Timeout: time.Duration(timeout) * time.Second,
	}
}

// FileStream is an open file body served by the media service
type FileStream struct {
	Name string
	Size int64 // -1 when unknown
	Body io.ReadCloser
}

// GetVideoInfo fetches preview metadata for a URL
func (s *RemoteService) GetVideoInfo(ctx context.Context, req model.PreviewRequest) (*model.PreviewInfo, error) {
	resp, err := s.do(ctx, http.MethodPost, "/get-video-info", req)
	if err != nil {
		return nil, model.NewTransportError("preview request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.LogWarn("Non-OK status from media service", zap.String("endpoint", "/get-video-info"), zap.Int("status", resp.StatusCode))
		return nil, model.NewTransportError("preview request failed", fmt.Errorf("status %d", resp.StatusCode))
	}

	var body model.PreviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		logger.LogError("Failed to decode preview response", err)
		return nil, model.NewTransportError("malformed preview response", err)
	}

	if !body.Success {
		msg := body.Error
		if msg == "" {
			msg = "Failed to get video information"
		}
		return nil, model.NewServerError(msg)
	}

	logger.LogInfo("Video info retrieved", zap.String("title", body.Title), zap.String("platform", string(req.Platform)))
	return body.Info(), nil
}

// StartDownload asks the service to run a download job
func (s *RemoteService) StartDownload(ctx context.Context, req model.DownloadRequest) (*model.DownloadResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/download", req)
	if err != nil {
		return nil, model.NewTransportError("download request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.LogWarn("Failed download response", zap.Int("status", resp.StatusCode))
		return nil, model.NewTransportError("download request failed", fmt.Errorf("status %d", resp.StatusCode))
	}

	var body model.DownloadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		logger.LogError("Failed to decode download response", err)
		return nil, model.NewTransportError("malformed download response", err)
	}

	if !body.Success {
		msg := body.Error
		if msg == "" {
			msg = "Download failed"
		}
		return nil, model.NewServerError(msg)
	}

	logger.LogInfo("Download job finished", zap.String("filename", body.Filename), zap.String("quality", req.Quality))
	return &body, nil
}

// FilePath returns the service path that serves filename
func FilePath(filename string) string {
	return "/download-file/" + url.PathEscape(filename)
}

// FetchFile opens the file stream for a finished download.
// The caller must close the returned body.
func (s *RemoteService) FetchFile(ctx context.Context, filename string) (*FileStream, error) {
	resp, err := s.do(ctx, http.MethodGet, FilePath(filename), nil)
	if err != nil {
		return nil, model.NewTransportError("file retrieval failed", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		logger.LogWarn("File retrieval rejected", zap.String("filename", filename), zap.Int("status", resp.StatusCode))
		return nil, model.NewTransportError("file retrieval failed", fmt.Errorf("status %d", resp.StatusCode))
	}

	name := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = filename
	}

	return &FileStream{
		Name: name,
		Size: resp.ContentLength,
		Body: resp.Body,
	}, nil
}

// ListDownloads returns the server's history, newest first
func (s *RemoteService) ListDownloads(ctx context.Context) ([]model.DownloadRecord, error) {
	resp, err := s.do(ctx, http.MethodGet, "/api/downloads", nil)
	if err != nil {
		return nil, model.NewTransportError("history request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, model.NewTransportError("history request failed", fmt.Errorf("status %d", resp.StatusCode))
	}

	records := []model.DownloadRecord{}
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		logger.LogError("Failed to decode history", err)
		return nil, model.NewTransportError("malformed history response", err)
	}
	if records == nil {
		records = []model.DownloadRecord{}
	}

	logger.LogDebug("History retrieved", zap.Int("records", len(records)))
	return records, nil
}

// DeleteDownload removes one history record
func (s *RemoteService) DeleteDownload(ctx context.Context, id string) error {
	return s.mutate(ctx, "/delete-download/"+url.PathEscape(id), "Failed to delete download")
}

// ClearAllDownloads removes the whole history
func (s *RemoteService) ClearAllDownloads(ctx context.Context) error {
	return s.mutate(ctx, "/clear-all-downloads", "Failed to clear downloads")
}

// mutate issues a DELETE and interprets the success envelope. The service
// reports logical failures with a JSON body even on 4xx/5xx statuses.
func (s *RemoteService) mutate(ctx context.Context, path, fallback string) error {
	resp, err := s.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return model.NewTransportError("history mutation failed", err)
	}
	defer resp.Body.Close()

	var env model.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return model.NewTransportError("history mutation failed", fmt.Errorf("status %d: %w", resp.StatusCode, err))
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fallback
		}
		logger.LogWarn("History mutation rejected", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.String("error", msg))
		return model.NewServerError(msg)
	}
	return nil
}

func (s *RemoteService) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		logger.LogError("Failed to create request", err, zap.String("path", path))
		return nil, err
	}

	requestID := logger.NewRequestID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(logger.RequestIDHeader, requestID)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.LogError("Media service call failed", err,
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID))
		return nil, err
	}

	logger.LogDebug("Media service call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID))
	return resp, nil
}

// filenameFromDisposition parses RFC 2183/5987 Content-Disposition headers
func filenameFromDisposition(cd string) string {
	if cd == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		parts := strings.Split(cd, "filename=")
		if len(parts) > 1 {
			return filepath.Base(strings.Trim(parts[1], "\""))
		}
		return ""
	}

	// mime.ParseMediaType already decodes filename* into "filename"
	if fn, ok := params["filename*"]; ok && strings.HasPrefix(fn, "UTF-8''") {
		if decoded, err := url.PathUnescape(fn[len("UTF-8''"):]); err == nil && decoded != "" {
			return filepath.Base(decoded)
		}
	}
	if fn := params["filename"]; fn != "" {
		return filepath.Base(fn)
	}
	return ""
}
