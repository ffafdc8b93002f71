// Package notify owns the toast, progress and loading surfaces.
package notify

import (
	"sync"
	"time"

	"vidsparrow/internal/model"
	"vidsparrow/pkg/logger"

	"go.uber.org/zap"
)

const (
	DefaultToastDuration = 5 * time.Second

	LoadingLabel = "Loading..."
	PreviewLabel = "Preview"
)

// Timer is the part of *time.Timer the reporter needs
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Reporter shows at most one toast, one progress bar and the loading toggle
type Reporter struct {
	mu          sync.Mutex
	toast       *model.Notification
	toastSeq    uint64
	timer       Timer
	progress    model.ProgressState
	loading     int
	duration    time.Duration
	afterFunc   AfterFunc
	subscribers []func()
}

// NewReporter creates a reporter whose toasts disappear after duration
func NewReporter(duration time.Duration) *Reporter {
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	return &Reporter{
		duration:  duration,
		afterFunc: realAfterFunc,
	}
}

// WithAfterFunc replaces the timer factory
func (r *Reporter) WithAfterFunc(fn AfterFunc) *Reporter {
	r.mu.Lock()
	r.afterFunc = fn
	r.mu.Unlock()
	return r
}

// Subscribe registers fn to run after every change
func (r *Reporter) Subscribe(fn func()) {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, fn)
	r.mu.Unlock()
}

// Notify replaces the current toast and restarts the dismiss timer
func (r *Reporter) Notify(message string, severity model.Severity) {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.toastSeq++
	seq := r.toastSeq
	r.toast = &model.Notification{Message: message, Severity: severity}
	r.timer = r.afterFunc(r.duration, func() { r.expire(seq) })
	r.mu.Unlock()

	logger.LogDebug("Toast shown", zap.String("severity", string(severity)), zap.String("message", message))
	r.changed()
}

// Info shows an info toast
func (r *Reporter) Info(message string) { r.Notify(message, model.SeverityInfo) }

// Error shows an error toast
func (r *Reporter) Error(message string) { r.Notify(message, model.SeverityError) }

// Success shows a success toast
func (r *Reporter) Success(message string) { r.Notify(message, model.SeveritySuccess) }

// expire dismisses the toast only if it is still the one the timer was armed for
func (r *Reporter) expire(seq uint64) {
	r.mu.Lock()
	if seq != r.toastSeq || r.toast == nil {
		r.mu.Unlock()
		return
	}
	r.toast = nil
	r.timer = nil
	r.mu.Unlock()
	r.changed()
}

// Dismiss removes the current toast
func (r *Reporter) Dismiss() {
	r.mu.Lock()
	if r.toast == nil {
		r.mu.Unlock()
		return
	}
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.toastSeq++
	r.toast = nil
	r.mu.Unlock()
	r.changed()
}

// StartProgress shows the progress surface at 0%
func (r *Reporter) StartProgress(message string) {
	r.setProgress(model.ProgressState{Visible: true, Message: message, Percent: 0})
}

// UpdateProgress sets the progress message and percentage
func (r *Reporter) UpdateProgress(message string, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	r.setProgress(model.ProgressState{Visible: true, Message: message, Percent: percent})
}

// EndProgress hides the progress surface and resets its fill
func (r *Reporter) EndProgress() {
	r.setProgress(model.ProgressState{})
}

func (r *Reporter) setProgress(p model.ProgressState) {
	r.mu.Lock()
	r.progress = p
	r.mu.Unlock()
	r.changed()
}

// InProgress reports whether the progress surface is shown
func (r *Reporter) InProgress() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress.Visible
}

// BeginLoading marks one preview as in flight
func (r *Reporter) BeginLoading() {
	r.mu.Lock()
	r.loading++
	r.mu.Unlock()
	r.changed()
}

// EndLoading releases one BeginLoading
func (r *Reporter) EndLoading() {
	r.mu.Lock()
	if r.loading > 0 {
		r.loading--
	}
	r.mu.Unlock()
	r.changed()
}

// Loading reports whether any preview is in flight
func (r *Reporter) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading > 0
}

// PreviewButtonLabel returns the label of the preview control
func (r *Reporter) PreviewButtonLabel() string {
	if r.Loading() {
		return LoadingLabel
	}
	return PreviewLabel
}

// Snapshot returns a copy of what is currently shown
func (r *Reporter) Snapshot() model.NotifyState {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := model.NotifyState{
		Progress: r.progress,
		Loading:  r.loading > 0,
	}
	if r.toast != nil {
		t := *r.toast
		state.Toast = &t
	}
	return state
}

func (r *Reporter) changed() {
	r.mu.Lock()
	subs := make([]func(), len(r.subscribers))
	copy(subs, r.subscribers)
	r.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
