package model

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies the source site of a media URL
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
)

// KnownPlatforms lists selectable platforms in tab order
var KnownPlatforms = []Platform{PlatformYouTube, PlatformInstagram}

// IsKnown reports whether p is one of KnownPlatforms
func (p Platform) IsKnown() bool {
	for _, known := range KnownPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// MediaType is the output container requested from the server
type MediaType string

const (
	MediaTypeVideo MediaType = "mp4"
	MediaTypeAudio MediaType = "mp3"
)

// IsAudio reports whether the media type is audio-only
func (m MediaType) IsAudio() bool {
	return m == MediaTypeAudio
}

// IsValid reports whether m is a supported media type
func (m MediaType) IsValid() bool {
	return m == MediaTypeVideo || m == MediaTypeAudio
}

// QualityOption is one selectable entry of the quality catalog
type QualityOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ShortLabel returns the label without its parenthesised detail
func (q QualityOption) ShortLabel() string {
	if idx := strings.Index(q.Label, "("); idx >= 0 {
		return strings.TrimSpace(q.Label[:idx])
	}
	return q.Label
}

// PreviewInfo is the metadata fetched for a media URL before download
type PreviewInfo struct {
	Title     string   `json:"title"`
	Uploader  string   `json:"uploader"`
	Duration  *float64 `json:"duration,omitempty"`
	ViewCount *int64   `json:"view_count,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
}

// DisplayTitle returns the title or a placeholder
func (p *PreviewInfo) DisplayTitle() string {
	if p.Title == "" {
		return "Unknown Title"
	}
	return p.Title
}

// DisplayUploader returns the uploader or a placeholder
func (p *PreviewInfo) DisplayUploader() string {
	if p.Uploader == "" {
		return "Unknown"
	}
	return p.Uploader
}

// DurationText formats the duration as h:mm:ss or m:ss
func (p *PreviewInfo) DurationText() string {
	if p.Duration == nil || *p.Duration <= 0 {
		return "Unknown"
	}

	total := int(*p.Duration)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// ViewsText formats the view count in compact form (1.2M, 3.4K)
func (p *PreviewInfo) ViewsText() string {
	if p.ViewCount == nil || *p.ViewCount <= 0 {
		return "Unknown"
	}

	count := *p.ViewCount
	switch {
	case count >= 1000000:
		return fmt.Sprintf("%.1fM", float64(count)/1000000)
	case count >= 1000:
		return fmt.Sprintf("%.1fK", float64(count)/1000)
	default:
		return fmt.Sprintf("%d", count)
	}
}

// Clone returns a deep copy so callers cannot mutate stored state
func (p *PreviewInfo) Clone() *PreviewInfo {
	if p == nil {
		return nil
	}
	c := *p
	if p.Duration != nil {
		d := *p.Duration
		c.Duration = &d
	}
	if p.ViewCount != nil {
		v := *p.ViewCount
		c.ViewCount = &v
	}
	return &c
}

// timestampLayouts are accepted for server timestamps; the history service
// emits naive isoformat without a zone
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp decodes server timestamps with or without a zone
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", raw)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// DownloadRecord is one server-owned history entry
type DownloadRecord struct {
	ID           string    `json:"id"`
	VideoTitle   string    `json:"video_title"`
	Platform     Platform  `json:"platform"`
	MediaType    MediaType `json:"media_type"`
	VideoURL     string    `json:"video_url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	DownloadedAt Timestamp `json:"downloaded_at"`
}

// RetrievedFile tracks a file fetched from the server into the local store
type RetrievedFile struct {
	ID        string
	Filename  string
	FilePath  string
	Size      int64
	CreatedAt time.Time
	ExpiresAt time.Time // zero when files never expire
}
