package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func float(v float64) *float64 { return &v }
func count(v int64) *int64     { return &v }

func TestPreviewInfo_DurationText(t *testing.T) {
	tests := []struct {
		duration *float64
		expected string
	}{
		{nil, "Unknown"},
		{float(0), "Unknown"},
		{float(59), "0:59"},
		{float(90.7), "1:30"},
		{float(3600), "1:00:00"},
		{float(3725), "1:02:05"},
	}

	for _, test := range tests {
		info := &PreviewInfo{Duration: test.duration}
		if got := info.DurationText(); got != test.expected {
			t.Errorf("DurationText() = %s, expected %s", got, test.expected)
		}
	}
}

func TestPreviewInfo_ViewsText(t *testing.T) {
	tests := []struct {
		views    *int64
		expected string
	}{
		{nil, "Unknown"},
		{count(0), "Unknown"},
		{count(999), "999"},
		{count(1500), "1.5K"},
		{count(2345678), "2.3M"},
	}

	for _, test := range tests {
		info := &PreviewInfo{ViewCount: test.views}
		if got := info.ViewsText(); got != test.expected {
			t.Errorf("ViewsText() = %s, expected %s", got, test.expected)
		}
	}
}

func TestPreviewInfo_Clone(t *testing.T) {
	orig := &PreviewInfo{Title: "a", Duration: float(10), ViewCount: count(5)}
	c := orig.Clone()
	*c.Duration = 99
	*c.ViewCount = 1
	c.Title = "b"

	if orig.Title != "a" || *orig.Duration != 10 || *orig.ViewCount != 5 {
		t.Errorf("Clone shares state with original: %+v", orig)
	}

	var nilInfo *PreviewInfo
	if nilInfo.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestPreviewInfo_Placeholders(t *testing.T) {
	info := &PreviewInfo{}
	if info.DisplayTitle() != "Unknown Title" {
		t.Errorf("DisplayTitle() = %q", info.DisplayTitle())
	}
	if info.DisplayUploader() != "Unknown" {
		t.Errorf("DisplayUploader() = %q", info.DisplayUploader())
	}
}

func TestQualityOption_ShortLabel(t *testing.T) {
	tests := map[string]string{
		"Best Quality (320kbps)": "Best Quality",
		"Best Available":         "Best Available",
		"HD (720p)":              "HD",
	}
	for label, expected := range tests {
		opt := QualityOption{Value: "x", Label: label}
		if got := opt.ShortLabel(); got != expected {
			t.Errorf("ShortLabel(%q) = %q, expected %q", label, got, expected)
		}
	}
}

func TestDownloadRecord_DecodeTimestamps(t *testing.T) {
	payload := `[
		{"id":"1","video_title":"naive","platform":"youtube","media_type":"mp4","downloaded_at":"2024-03-05T10:20:30.123456"},
		{"id":"2","video_title":"zoned","platform":"instagram","media_type":"mp3","downloaded_at":"2024-03-05T10:20:30Z"},
		{"id":"3","video_title":"missing","platform":"youtube","media_type":"mp4","downloaded_at":null}
	]`

	var records []DownloadRecord
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	expected := time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC)
	if !records[0].DownloadedAt.Truncate(time.Second).Equal(expected) {
		t.Errorf("naive timestamp = %v, expected %v", records[0].DownloadedAt.Time, expected)
	}
	if !records[1].DownloadedAt.Equal(expected) {
		t.Errorf("zoned timestamp = %v, expected %v", records[1].DownloadedAt.Time, expected)
	}
	if !records[2].DownloadedAt.IsZero() {
		t.Errorf("null timestamp = %v, expected zero", records[2].DownloadedAt.Time)
	}
	if records[1].MediaType != MediaTypeAudio {
		t.Errorf("media type = %q", records[1].MediaType)
	}
}

func TestTimestamp_Rejects(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestNewHistoryEntry(t *testing.T) {
	rec := DownloadRecord{ID: "7", VideoTitle: "abcdefghij", MediaType: MediaTypeAudio}
	entry := NewHistoryEntry(rec, 4)

	if entry.DisplayTitle != "abcd..." {
		t.Errorf("DisplayTitle = %q", entry.DisplayTitle)
	}
	if entry.MediaLabel != "MP3" {
		t.Errorf("MediaLabel = %q", entry.MediaLabel)
	}
	if entry.ThumbnailOrDefault() != DefaultThumbnail {
		t.Errorf("ThumbnailOrDefault = %q", entry.ThumbnailOrDefault())
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 50); got != "short" {
		t.Errorf("TruncateText kept %q", got)
	}
	if got := TruncateText("ünïcödé", 3); got != "ünï..." {
		t.Errorf("TruncateText rune handling = %q", got)
	}
}

func TestAppError(t *testing.T) {
	transport := NewTransportError("preview request failed", fmt.Errorf("dial tcp: refused"))
	wrapped := fmt.Errorf("preview: %w", transport)

	if KindOf(wrapped) != KindTransport {
		t.Errorf("KindOf = %q, expected transport", KindOf(wrapped))
	}
	if transport.UserMessage() != GenericNetworkMessage {
		t.Errorf("transport UserMessage = %q", transport.UserMessage())
	}
	if !errors.Is(wrapped, transport.Err) {
		t.Error("AppError should unwrap to its cause")
	}

	server := NewServerError("Video unavailable")
	if server.UserMessage() != "Video unavailable" {
		t.Errorf("server UserMessage = %q", server.UserMessage())
	}
	if IsKind(errors.New("plain"), KindUsage) {
		t.Error("plain error reported as usage")
	}
}
