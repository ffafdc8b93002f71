package session

import (
	"context"
	"strings"

	"vidsparrow/internal/model"
	"vidsparrow/internal/notify"
	"vidsparrow/pkg/logger"

	"go.uber.org/zap"
)

// Action names a user intent
type Action string

const (
	ActionSetPlatform    Action = "set_platform"
	ActionSetMediaType   Action = "set_media_type"
	ActionEditURL        Action = "edit_url"
	ActionPreview        Action = "preview"
	ActionSelectQuality  Action = "select_quality"
	ActionDownload       Action = "download"
	ActionRefreshHistory Action = "refresh_history"
	ActionDeleteRecord   Action = "delete_record"
	ActionClearAll       Action = "clear_all"
	ActionConfirm        Action = "confirm"
	ActionCancel         Action = "cancel"
	ActionDismissToast   Action = "dismiss_toast"
)

// Intent is one user action with its argument
type Intent struct {
	Action Action `json:"action" binding:"required"`
	Value  string `json:"value"`
}

// IsLong reports whether the action waits on the media service
func (a Action) IsLong() bool {
	switch a {
	case ActionPreview, ActionDownload, ActionConfirm, ActionRefreshHistory:
		return true
	}
	return false
}

// HistoryActions is the history surface driven by intents
type HistoryActions interface {
	Refresh(ctx context.Context) error
	RequestDelete(id string) model.Confirmation
	RequestClearAll() model.Confirmation
	Resolve(ctx context.Context, affirmative bool) error
}

// Dispatcher maps intents to controller and history operations. Intents
// for disabled controls are refused.
type Dispatcher struct {
	controller *Controller
	history    HistoryActions
	reporter   *notify.Reporter
}

// NewDispatcher creates a dispatcher over the session's components
func NewDispatcher(controller *Controller, history HistoryActions, reporter *notify.Reporter) *Dispatcher {
	return &Dispatcher{
		controller: controller,
		history:    history,
		reporter:   reporter,
	}
}

// Controller returns the controller behind the dispatcher
func (d *Dispatcher) Controller() *Controller {
	return d.controller
}

// Check refuses intents whose control is currently disabled
func (d *Dispatcher) Check(intent Intent) error {
	switch intent.Action {
	case ActionPreview:
		if d.reporter.Loading() {
			return model.NewUsageError("A preview is already loading")
		}
	case ActionDownload:
		if d.reporter.InProgress() {
			return model.NewUsageError(msgDownloadBusy)
		}
	case ActionSetPlatform, ActionSetMediaType, ActionEditURL, ActionSelectQuality,
		ActionRefreshHistory, ActionDeleteRecord, ActionClearAll, ActionConfirm,
		ActionCancel, ActionDismissToast:
	default:
		return model.NewValidationError("Unknown action: " + string(intent.Action))
	}
	return nil
}

// Report shows err on the toast surface and returns it
func (d *Dispatcher) Report(err error) error {
	if err == nil {
		return nil
	}
	return d.controller.fail(err)
}

// Dispatch runs intent to completion
func (d *Dispatcher) Dispatch(ctx context.Context, intent Intent) error {
	if err := d.Check(intent); err != nil {
		return d.Report(err)
	}
	logger.LogDebug("Dispatching intent", zap.String("action", string(intent.Action)))

	value := strings.TrimSpace(intent.Value)
	switch intent.Action {
	case ActionSetPlatform:
		return d.Report(d.controller.SetPlatform(model.Platform(strings.ToLower(value))))
	case ActionSetMediaType:
		return d.Report(d.controller.SetMediaType(model.MediaType(strings.ToLower(value))))
	case ActionEditURL:
		d.controller.EditURL(intent.Value)
		return nil
	case ActionPreview:
		if intent.Value == "" {
			value = d.controller.State().URL
		}
		return d.controller.Preview(ctx, value)
	case ActionSelectQuality:
		return d.Report(d.controller.SelectQuality(value))
	case ActionDownload:
		return d.controller.Download(ctx)
	case ActionRefreshHistory:
		return d.history.Refresh(ctx)
	case ActionDeleteRecord:
		if value == "" {
			return d.Report(model.NewValidationError("Missing download id"))
		}
		d.history.RequestDelete(value)
		return nil
	case ActionClearAll:
		d.history.RequestClearAll()
		return nil
	case ActionConfirm:
		return d.resolve(ctx, true)
	case ActionCancel:
		return d.resolve(ctx, false)
	case ActionDismissToast:
		d.reporter.Dismiss()
		return nil
	}
	return nil
}

// resolve answers the pending confirmation. Mutation failures are already
// toasted by the history surface.
func (d *Dispatcher) resolve(ctx context.Context, affirmative bool) error {
	err := d.history.Resolve(ctx, affirmative)
	if model.IsKind(err, model.KindUsage) {
		return d.Report(err)
	}
	return err
}

// Snapshot returns the current rendered session
func (d *Dispatcher) Snapshot() model.Snapshot {
	return d.controller.Snapshot()
}
