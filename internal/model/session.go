package model

import (
	"strings"
	"unicode/utf8"
)

// Severity of a toast notification
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Notification is a transient toast message
type Notification struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ProgressState mirrors the download progress surface
type ProgressState struct {
	Visible bool   `json:"visible"`
	Message string `json:"message,omitempty"`
	Percent int    `json:"percent"`
}

// NotifyState is what the reporter currently displays
type NotifyState struct {
	Toast    *Notification `json:"toast,omitempty"`
	Progress ProgressState `json:"progress"`
	Loading  bool          `json:"loading"`
}

// SessionState is the controller's current selection
type SessionState struct {
	Platform  Platform     `json:"platform"`
	MediaType MediaType    `json:"media_type"`
	Quality   string       `json:"quality"`
	URL       string       `json:"url"`
	Preview   *PreviewInfo `json:"preview,omitempty"`
}

// Controls is the enabled/visible state of the panel controls
type Controls struct {
	PreviewEnabled  bool   `json:"preview_enabled"`
	PreviewLabel    string `json:"preview_label"`
	QualityVisible  bool   `json:"quality_visible"`
	DownloadEnabled bool   `json:"download_enabled"`
	Placeholder     string `json:"placeholder"`
}

// HistoryEntry is a rendered history row
type HistoryEntry struct {
	DownloadRecord
	DisplayTitle string `json:"display_title"`
	MediaLabel   string `json:"media_label"`
}

// DefaultThumbnail is used when a record has no thumbnail
const DefaultThumbnail = "/static/images/default-thumbnail.jpg"

// ThumbnailOrDefault returns the record thumbnail or the placeholder image
func (e HistoryEntry) ThumbnailOrDefault() string {
	if e.ThumbnailURL == "" {
		return DefaultThumbnail
	}
	return e.ThumbnailURL
}

// NewHistoryEntry builds the rendered form of a record
func NewHistoryEntry(rec DownloadRecord, titleLimit int) HistoryEntry {
	return HistoryEntry{
		DownloadRecord: rec,
		DisplayTitle:   TruncateText(rec.VideoTitle, titleLimit),
		MediaLabel:     strings.ToUpper(string(rec.MediaType)),
	}
}

// ConfirmationKind identifies what a pending confirmation will do
type ConfirmationKind string

const (
	ConfirmDeleteOne ConfirmationKind = "delete_one"
	ConfirmClearAll  ConfirmationKind = "clear_all"
)

// Confirmation is a mutation waiting for the user's answer
type Confirmation struct {
	Kind   ConfirmationKind `json:"kind"`
	ID     string           `json:"id,omitempty"`
	Prompt string           `json:"prompt"`
}

// HistoryView is the rendered history surface
type HistoryView struct {
	Entries      []HistoryEntry `json:"entries"`
	Empty        bool           `json:"empty"`
	EmptyMessage string         `json:"empty_message,omitempty"`
	ShowClearAll bool           `json:"show_clear_all"`
	Pending      *Confirmation  `json:"pending,omitempty"`
}

// Snapshot is a consistent view of everything a binding renders
type Snapshot struct {
	State    SessionState    `json:"state"`
	Controls Controls        `json:"controls"`
	Catalog  []QualityOption `json:"catalog"`
	Notify   NotifyState     `json:"notify"`
	History  HistoryView     `json:"history"`
}

// TruncateText shortens text to maxLen runes and appends an ellipsis
func TruncateText(text string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLen]) + "..."
}
