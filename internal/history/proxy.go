// Package history mirrors the server's download history and runs the
// confirm-then-mutate flow for deleting records.
package history

import (
	"context"
	"errors"
	"sync"

	"vidsparrow/internal/model"
	"vidsparrow/pkg/logger"

	"go.uber.org/zap"
)

const (
	DefaultLimit      = 10
	TitleLimit        = 50
	EmptyMessage      = "No recent downloads"
	NetworkErrMessage = "Network error. Please try again."

	DeletePrompt   = "Are you sure you want to delete this download from history?"
	ClearAllPrompt = "Are you sure you want to clear ALL download history? This action cannot be undone."

	deletedMessage      = "Download deleted successfully"
	clearedMessage      = "All downloads cleared successfully"
	deleteFailedMessage = "Failed to delete download"
	clearFailedMessage  = "Failed to clear downloads"
)

// Store is the server side of the history
type Store interface {
	ListDownloads(ctx context.Context) ([]model.DownloadRecord, error)
	DeleteDownload(ctx context.Context, id string) error
	ClearAllDownloads(ctx context.Context) error
}

// Notifier receives the outcome toasts of mutations
type Notifier interface {
	Error(message string)
	Success(message string)
}

// Proxy is the local view of the server history
type Proxy struct {
	store    Store
	notifier Notifier
	limit    int

	mu       sync.Mutex
	entries  []model.HistoryEntry
	pending  *model.Confirmation
	onChange func()
}

// NewProxy creates a proxy that renders at most limit records
func NewProxy(store Store, notifier Notifier, limit int) *Proxy {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Proxy{
		store:    store,
		notifier: notifier,
		limit:    limit,
		entries:  []model.HistoryEntry{},
	}
}

// OnChange registers fn to run after the view changes
func (p *Proxy) OnChange(fn func()) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// Refresh replaces the rendered list with the server's newest records.
// On failure the previous list stays in place.
func (p *Proxy) Refresh(ctx context.Context) error {
	records, err := p.store.ListDownloads(ctx)
	if err != nil {
		logger.LogWarn("Failed to refresh history", zap.Error(err))
		return err
	}

	if len(records) > p.limit {
		records = records[:p.limit]
	}
	entries := make([]model.HistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, model.NewHistoryEntry(rec, TitleLimit))
	}

	p.mu.Lock()
	p.entries = entries
	p.mu.Unlock()

	logger.LogDebug("History refreshed", zap.Int("entries", len(entries)))
	p.changed()
	return nil
}

// RequestDelete asks for confirmation before deleting id
func (p *Proxy) RequestDelete(id string) model.Confirmation {
	return p.request(model.Confirmation{Kind: model.ConfirmDeleteOne, ID: id, Prompt: DeletePrompt})
}

// RequestClearAll asks for confirmation before clearing the history
func (p *Proxy) RequestClearAll() model.Confirmation {
	return p.request(model.Confirmation{Kind: model.ConfirmClearAll, Prompt: ClearAllPrompt})
}

func (p *Proxy) request(c model.Confirmation) model.Confirmation {
	p.mu.Lock()
	p.pending = &c
	p.mu.Unlock()
	p.changed()
	return c
}

// Pending returns the confirmation waiting for an answer, if any
func (p *Proxy) Pending() *model.Confirmation {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return nil
	}
	c := *p.pending
	return &c
}

// Resolve answers the pending confirmation. A negative answer drops it
// without contacting the server.
func (p *Proxy) Resolve(ctx context.Context, affirmative bool) error {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	if pending == nil {
		return model.NewUsageError("Nothing to confirm")
	}
	p.changed()
	if !affirmative {
		logger.LogDebug("History mutation cancelled", zap.String("kind", string(pending.Kind)))
		return nil
	}

	switch pending.Kind {
	case model.ConfirmDeleteOne:
		return p.apply(ctx, p.store.DeleteDownload(ctx, pending.ID), deletedMessage, deleteFailedMessage)
	default:
		return p.apply(ctx, p.store.ClearAllDownloads(ctx), clearedMessage, clearFailedMessage)
	}
}

// DeleteRecord removes id without asking for confirmation
func (p *Proxy) DeleteRecord(ctx context.Context, id string) error {
	return p.apply(ctx, p.store.DeleteDownload(ctx, id), deletedMessage, deleteFailedMessage)
}

// ClearAll removes every record without asking for confirmation
func (p *Proxy) ClearAll(ctx context.Context) error {
	return p.apply(ctx, p.store.ClearAllDownloads(ctx), clearedMessage, clearFailedMessage)
}

func (p *Proxy) apply(ctx context.Context, err error, okMessage, failMessage string) error {
	if err != nil {
		var appErr *model.AppError
		switch {
		case errors.As(err, &appErr) && appErr.Kind == model.KindTransport:
			p.notifier.Error(NetworkErrMessage)
		case appErr != nil && appErr.Kind == model.KindServer && appErr.Message != "":
			p.notifier.Error(appErr.Message)
		default:
			p.notifier.Error(failMessage)
		}
		logger.LogWarn("History mutation failed", zap.Error(err))
		return err
	}

	p.notifier.Success(okMessage)
	// a failed refresh keeps the old list and is only logged
	_ = p.Refresh(ctx)
	return nil
}

// View returns the rendered history
func (p *Proxy) View() model.HistoryView {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := make([]model.HistoryEntry, len(p.entries))
	copy(entries, p.entries)

	view := model.HistoryView{
		Entries:      entries,
		Empty:        len(entries) == 0,
		ShowClearAll: len(entries) > 0,
	}
	if view.Empty {
		view.EmptyMessage = EmptyMessage
	}
	if p.pending != nil {
		c := *p.pending
		view.Pending = &c
	}
	return view
}

func (p *Proxy) changed() {
	p.mu.Lock()
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}
