package model

// PreviewRequest is the body of POST /get-video-info
type PreviewRequest struct {
	URL      string   `json:"url"`
	Platform Platform `json:"platform"`
}

// PreviewResponse is the reply of POST /get-video-info
type PreviewResponse struct {
	Success   bool     `json:"success"`
	Error     string   `json:"error,omitempty"`
	Title     string   `json:"title"`
	Uploader  string   `json:"uploader"`
	Duration  *float64 `json:"duration"`
	ViewCount *int64   `json:"view_count"`
	Thumbnail string   `json:"thumbnail"`
}

// Info extracts the preview metadata from a successful reply
func (r *PreviewResponse) Info() *PreviewInfo {
	return &PreviewInfo{
		Title:     r.Title,
		Uploader:  r.Uploader,
		Duration:  r.Duration,
		ViewCount: r.ViewCount,
		Thumbnail: r.Thumbnail,
	}
}

// DownloadRequest is the body of POST /download
type DownloadRequest struct {
	URL       string    `json:"url"`
	Platform  Platform  `json:"platform"`
	MediaType MediaType `json:"media_type"`
	Quality   string    `json:"quality"`
}

// DownloadResponse is the reply of POST /download
type DownloadResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Filename string `json:"filename,omitempty"`
	Title    string `json:"title,omitempty"`
}

// Envelope is the reply of the history mutation endpoints
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse represents a panel API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
