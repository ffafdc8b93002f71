// Package session holds the controller that sequences preview, quality
// selection, download and history refresh for one panel session.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"vidsparrow/internal/catalog"
	"vidsparrow/internal/model"
	"vidsparrow/internal/notify"
	"vidsparrow/pkg/logger"
	"vidsparrow/pkg/validator"

	"go.uber.org/zap"
)

const (
	DefaultRetrievalDelay = time.Second

	msgEmptyURL          = "Please enter a video URL"
	msgInvalidURL        = "Please enter a valid URL starting with http:// or https://"
	msgPreviewFailed     = "Failed to get video information"
	msgPreviewFirst      = "Please preview the video first"
	msgDownloadBusy      = "A download is already in progress"
	msgStartingDownload  = "Starting download..."
	msgPreparingFile     = "Download completed! Preparing file..."
	msgNoFilename        = "Download completed but no filename returned"
	msgRetrievalFailed   = "Download finished but the file could not be retrieved"
	msgConversionMissing = "FFmpeg is required for audio conversion. " +
		"Please install FFmpeg on your system or download as MP4 video instead. " +
		"Check the documentation for installation instructions."
)

// Remote is the media service as seen by the controller
type Remote interface {
	GetVideoInfo(ctx context.Context, req model.PreviewRequest) (*model.PreviewInfo, error)
	StartDownload(ctx context.Context, req model.DownloadRequest) (*model.DownloadResponse, error)
}

// FileSink retrieves a finished download by its server filename
type FileSink interface {
	Retrieve(ctx context.Context, filename string) (*model.RetrievedFile, error)
}

// History is the history surface the controller refreshes and renders
type History interface {
	Refresh(ctx context.Context) error
	View() model.HistoryView
}

// Controller owns the session state. All mutations go through its mutex;
// network calls run outside it.
type Controller struct {
	remote   Remote
	sink     FileSink
	history  History
	reporter *notify.Reporter

	retrievalDelay time.Duration

	mu          sync.Mutex
	state       model.SessionState
	generation  uint64
	downloading bool
	onChange    func()
}

// NewController creates a controller starting on the configured platform and media type
func NewController(cfg *model.SessionConfig, remote Remote, sink FileSink, history History, reporter *notify.Reporter) *Controller {
	platform := cfg.DefaultPlatform
	if !platform.IsKnown() {
		platform = model.PlatformYouTube
	}
	mediaType := cfg.DefaultMediaType
	if !mediaType.IsValid() {
		mediaType = model.MediaTypeVideo
	}

	delay := time.Duration(cfg.RetrievalDelayMilli) * time.Millisecond
	if delay < 0 {
		delay = DefaultRetrievalDelay
	}

	return &Controller{
		remote:         remote,
		sink:           sink,
		history:        history,
		reporter:       reporter,
		retrievalDelay: delay,
		state: model.SessionState{
			Platform:  platform,
			MediaType: mediaType,
			Quality:   catalog.DefaultQuality,
		},
	}
}

// OnChange registers fn to run after every state change
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// SetPlatform switches platform, dropping the preview and resetting quality
func (c *Controller) SetPlatform(p model.Platform) error {
	if !p.IsKnown() {
		return model.NewValidationError("Unsupported platform: " + string(p))
	}

	c.mu.Lock()
	c.state.Platform = p
	c.resetSelectionLocked()
	c.mu.Unlock()

	logger.LogDebug("Platform selected", zap.String("platform", string(p)))
	c.changed()
	return nil
}

// SetMediaType switches media type, dropping the preview and resetting quality
func (c *Controller) SetMediaType(m model.MediaType) error {
	if !m.IsValid() {
		return model.NewValidationError("Unsupported media type: " + string(m))
	}

	c.mu.Lock()
	c.state.MediaType = m
	c.resetSelectionLocked()
	c.mu.Unlock()

	logger.LogDebug("Media type selected", zap.String("media_type", string(m)))
	c.changed()
	return nil
}

// resetSelectionLocked drops the preview and invalidates in-flight previews
func (c *Controller) resetSelectionLocked() {
	c.state.Preview = nil
	c.state.Quality = catalog.Default(c.state.MediaType, c.state.Platform).Value
	c.generation++
}

// AutoDetect switches platform when text names a different known platform.
// It reports whether the platform changed.
func (c *Controller) AutoDetect(text string) bool {
	detected, ok := validator.DetectPlatform(text)
	if !ok {
		return false
	}

	c.mu.Lock()
	same := detected == c.state.Platform
	c.mu.Unlock()
	if same {
		return false
	}

	return c.SetPlatform(detected) == nil
}

// EditURL records an edit of the URL field
func (c *Controller) EditURL(text string) {
	c.mu.Lock()
	c.state.URL = text
	c.state.Preview = nil
	c.generation++
	c.mu.Unlock()

	if !c.AutoDetect(text) {
		c.changed()
	}
}

// Preview fetches metadata for rawURL. Responses that arrive after a newer
// preview or a selection change are discarded.
func (c *Controller) Preview(ctx context.Context, rawURL string) error {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return c.fail(model.NewValidationError(msgEmptyURL))
	}
	if !validator.ValidateURL(url) {
		return c.fail(model.NewValidationError(msgInvalidURL))
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	urlChanged := url != c.state.URL
	if urlChanged {
		c.state.URL = url
		c.state.Preview = nil
	}
	req := model.PreviewRequest{URL: url, Platform: c.state.Platform}
	c.mu.Unlock()
	if urlChanged {
		c.changed()
	}

	c.reporter.BeginLoading()
	defer c.reporter.EndLoading()

	info, err := c.remote.GetVideoInfo(ctx, req)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		logger.LogInfo("Discarding stale preview response", zap.String("url", url), zap.Uint64("generation", gen))
		return nil
	}
	if err != nil {
		c.state.Preview = nil
		c.mu.Unlock()
		c.changed()
		var appErr *model.AppError
		if errors.As(err, &appErr) && appErr.Kind == model.KindServer && appErr.Message == "" {
			err = model.NewServerError(msgPreviewFailed)
		}
		return c.fail(err)
	}
	c.state.Preview = info.Clone()
	c.state.Quality = catalog.Default(c.state.MediaType, c.state.Platform).Value
	c.mu.Unlock()

	logger.LogInfo("Preview loaded", zap.String("url", url), zap.String("title", info.Title))
	c.changed()
	return nil
}

// SelectQuality sets the quality; value must be in the current catalog
func (c *Controller) SelectQuality(value string) error {
	c.mu.Lock()
	if !catalog.Contains(c.state.MediaType, c.state.Platform, value) {
		c.mu.Unlock()
		return model.NewValidationError("Unknown quality: " + value)
	}
	c.state.Quality = value
	c.mu.Unlock()

	c.changed()
	return nil
}

// Download runs the server job for the previewed URL, retrieves the file,
// refreshes history and resets the form.
func (c *Controller) Download(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Preview == nil {
		c.mu.Unlock()
		return c.fail(model.NewUsageError(msgPreviewFirst))
	}
	if c.downloading {
		c.mu.Unlock()
		return c.fail(model.NewUsageError(msgDownloadBusy))
	}
	c.downloading = true
	req := model.DownloadRequest{
		URL:       strings.TrimSpace(c.state.URL),
		Platform:  c.state.Platform,
		MediaType: c.state.MediaType,
		Quality:   c.state.Quality,
	}
	qualityLabel := catalog.Label(req.MediaType, req.Platform, req.Quality)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.downloading = false
		c.mu.Unlock()
	}()
	c.reporter.StartProgress(msgStartingDownload)
	defer c.reporter.EndProgress()

	resp, err := c.remote.StartDownload(ctx, req)
	if err != nil {
		logger.LogWarn("Download failed", zap.String("url", req.URL), zap.Error(err))
		c.reporter.Error(downloadErrorMessage(err))
		return err
	}

	c.reporter.UpdateProgress(msgPreparingFile, 100)
	if err := sleepContext(ctx, c.retrievalDelay); err != nil {
		return err
	}

	var result error
	if resp.Filename == "" {
		logger.LogWarn("Download finished without filename", zap.String("url", req.URL))
		c.reporter.Error(msgNoFilename)
	} else if _, err := c.sink.Retrieve(ctx, resp.Filename); err != nil {
		logger.LogError("File retrieval failed", err, zap.String("filename", resp.Filename))
		c.reporter.Error(msgRetrievalFailed)
		result = err
	} else {
		c.reporter.Success("Download started successfully! (Quality: " + qualityLabel + ")")
	}

	// the server recorded the job either way
	_ = c.history.Refresh(ctx)
	c.ResetForm()
	return result
}

// ResetForm clears the URL and preview
func (c *Controller) ResetForm() {
	c.mu.Lock()
	c.state.URL = ""
	c.resetSelectionLocked()
	c.mu.Unlock()
	c.changed()
}

// State returns a copy of the session state
func (c *Controller) State() model.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Preview = c.state.Preview.Clone()
	return s
}

// Snapshot returns everything a binding renders
func (c *Controller) Snapshot() model.Snapshot {
	state := c.State()
	notifyState := c.reporter.Snapshot()

	controls := model.Controls{
		PreviewEnabled:  !notifyState.Loading,
		PreviewLabel:    notify.PreviewLabel,
		QualityVisible:  state.Preview != nil,
		DownloadEnabled: state.Preview != nil && !notifyState.Progress.Visible,
		Placeholder:     validator.Placeholder(state.Platform),
	}
	if notifyState.Loading {
		controls.PreviewLabel = notify.LoadingLabel
	}

	return model.Snapshot{
		State:    state,
		Controls: controls,
		Catalog:  catalog.Options(state.MediaType, state.Platform),
		Notify:   notifyState,
		History:  c.history.View(),
	}
}

// fail surfaces err on the toast and returns it
func (c *Controller) fail(err error) error {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		c.reporter.Error(appErr.UserMessage())
	} else {
		c.reporter.Error(model.GenericNetworkMessage)
	}
	return err
}

func (c *Controller) changed() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// downloadErrorMessage maps a download failure to its toast text
func downloadErrorMessage(err error) string {
	var appErr *model.AppError
	if !errors.As(err, &appErr) || appErr.Kind == model.KindTransport {
		return model.GenericNetworkMessage
	}
	if isConversionToolError(appErr.Message) {
		return msgConversionMissing
	}
	return appErr.Message
}

func isConversionToolError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "ffmpeg") || strings.Contains(lower, "ffprobe")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
