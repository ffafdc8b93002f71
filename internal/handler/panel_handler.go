package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"vidsparrow/internal/catalog"
	"vidsparrow/internal/model"
	"vidsparrow/internal/session"
	"vidsparrow/pkg/logger"
	"vidsparrow/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PanelHandler exposes the session dispatcher over HTTP
type PanelHandler struct {
	dispatcher *session.Dispatcher
	baseCtx    context.Context
	wg         sync.WaitGroup
}

// NewPanelHandler creates a panel handler; background intents run under ctx
func NewPanelHandler(ctx context.Context, d *session.Dispatcher) *PanelHandler {
	return &PanelHandler{
		dispatcher: d,
		baseCtx:    ctx,
	}
}

// Register mounts the panel routes on router
func (h *PanelHandler) Register(router gin.IRouter) {
	router.GET("/health", h.HealthCheck)

	panel := router.Group("/panel")
	{
		panel.GET("/state", h.GetState)
		panel.GET("/catalog", h.GetCatalog)
		panel.POST("/intents", h.PostIntent)
	}
}

// HealthCheck handles GET /health
func (h *PanelHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "vidsparrow-panel",
	})
}

// GetState handles GET /panel/state
func (h *PanelHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.dispatcher.Snapshot())
}

// GetCatalog handles GET /panel/catalog
func (h *PanelHandler) GetCatalog(c *gin.Context) {
	state := h.dispatcher.Snapshot().State

	mediaType := state.MediaType
	if v := c.Query("media_type"); v != "" {
		mediaType = model.MediaType(strings.ToLower(v))
	}
	platform := state.Platform
	if v := c.Query("platform"); v != "" {
		platform = model.Platform(strings.ToLower(v))
	}

	if !mediaType.IsValid() {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_media_type",
			Message: "media_type must be mp4 or mp3",
			Code:    http.StatusBadRequest,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"media_type": mediaType,
		"platform":   platform,
		"options":    catalog.Options(mediaType, platform),
	})
}

// PostIntent handles POST /panel/intents
func (h *PanelHandler) PostIntent(c *gin.Context) {
	var intent session.Intent
	if err := c.ShouldBindJSON(&intent); err != nil {
		logger.LogWarn("Invalid intent body", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_request",
			Message: "Body must be {\"action\": ..., \"value\": ...}",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if err := h.dispatcher.Check(intent); err != nil {
		h.writeError(c, h.dispatcher.Report(err))
		return
	}

	if h.runsInBackground(intent) {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			if err := h.dispatcher.Dispatch(h.baseCtx, intent); err != nil {
				logger.LogDebug("Background intent finished with error",
					zap.String("action", string(intent.Action)),
					zap.Error(err))
			}
		}()
		c.JSON(http.StatusAccepted, h.dispatcher.Snapshot())
		return
	}

	if err := h.dispatcher.Dispatch(c.Request.Context(), intent); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.dispatcher.Snapshot())
}

// runsInBackground reports whether intent will wait on the media service.
// Intents that fail locally run inline so the caller sees the error.
func (h *PanelHandler) runsInBackground(intent session.Intent) bool {
	if !intent.Action.IsLong() {
		return false
	}

	snap := h.dispatcher.Snapshot()
	switch intent.Action {
	case session.ActionPreview:
		url := strings.TrimSpace(intent.Value)
		if url == "" {
			url = strings.TrimSpace(snap.State.URL)
		}
		return validator.ValidateURL(url)
	case session.ActionDownload:
		return snap.State.Preview != nil
	case session.ActionConfirm:
		return snap.History.Pending != nil
	}
	return true
}

// Wait blocks until background intents have finished
func (h *PanelHandler) Wait() {
	h.wg.Wait()
}

func (h *PanelHandler) writeError(c *gin.Context, err error) {
	var appErr *model.AppError
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	status := http.StatusBadRequest
	if appErr.Kind == model.KindTransport || appErr.Kind == model.KindServer {
		status = http.StatusBadGateway
	}
	c.JSON(status, model.ErrorResponse{
		Error:   string(appErr.Kind),
		Message: appErr.UserMessage(),
		Code:    status,
	})
}
