package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"vidsparrow/internal/model"

	tls_client "github.com/bogdanfinn/tls-client"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*RemoteService, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewRemoteService(srv.URL+"/", srv.Client()), &calls
}

func TestGetVideoInfo(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/get-video-info" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		if !strings.HasPrefix(r.Header.Get("X-Request-ID"), "req_") {
			t.Errorf("missing request id header")
		}

		var req model.PreviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if req.URL != "https://youtu.be/abc" || req.Platform != model.PlatformYouTube {
			t.Errorf("request = %+v", req)
		}

		io.WriteString(w, `{"success":true,"title":"Clip","uploader":"Chan","duration":125,"view_count":1500,"thumbnail":"t.jpg"}`)
	})

	info, err := svc.GetVideoInfo(context.Background(), model.PreviewRequest{URL: "https://youtu.be/abc", Platform: model.PlatformYouTube})
	if err != nil {
		t.Fatalf("GetVideoInfo failed: %v", err)
	}
	if info.Title != "Clip" || info.DurationText() != "2:05" || info.ViewsText() != "1.5K" {
		t.Errorf("info = %+v", info)
	}
}

func TestGetVideoInfoErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    model.ErrorKind
		message string
	}{
		{"server failure", 200, `{"success":false,"error":"Video unavailable"}`, model.KindServer, "Video unavailable"},
		{"server failure without text", 200, `{"success":false}`, model.KindServer, "Failed to get video information"},
		{"bad status", 500, `{"success":false,"error":"boom"}`, model.KindTransport, model.GenericNetworkMessage},
		{"malformed body", 200, `<html>`, model.KindTransport, model.GenericNetworkMessage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})

			_, err := svc.GetVideoInfo(context.Background(), model.PreviewRequest{URL: "https://x.com/"})
			appErr, ok := err.(*model.AppError)
			if !ok {
				t.Fatalf("error = %v, expected AppError", err)
			}
			if appErr.Kind != tc.kind || appErr.UserMessage() != tc.message {
				t.Errorf("got (%s, %q), expected (%s, %q)", appErr.Kind, appErr.UserMessage(), tc.kind, tc.message)
			}
		})
	}
}

func TestGetVideoInfoUnreachable(t *testing.T) {
	svc := NewRemoteService("http://127.0.0.1:1", NewStdClient(1))
	_, err := svc.GetVideoInfo(context.Background(), model.PreviewRequest{URL: "https://x.com/"})
	if !model.IsKind(err, model.KindTransport) {
		t.Errorf("error = %v, expected transport", err)
	}
}

func TestStartDownload(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req model.DownloadRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.MediaType != model.MediaTypeAudio || req.Quality != "192k" {
			t.Errorf("request = %+v", req)
		}
		io.WriteString(w, `{"success":true,"filename":"song.mp3","title":"Song"}`)
	})

	resp, err := svc.StartDownload(context.Background(), model.DownloadRequest{
		URL: "https://youtu.be/abc", Platform: model.PlatformYouTube, MediaType: model.MediaTypeAudio, Quality: "192k",
	})
	if err != nil {
		t.Fatalf("StartDownload failed: %v", err)
	}
	if resp.Filename != "song.mp3" {
		t.Errorf("filename = %q", resp.Filename)
	}
}

func TestStartDownloadServerError(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"error":"ffprobe not found"}`)
	})

	_, err := svc.StartDownload(context.Background(), model.DownloadRequest{})
	if !model.IsKind(err, model.KindServer) || !strings.Contains(err.Error(), "ffprobe") {
		t.Errorf("error = %v", err)
	}
}

func TestFetchFile(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/download-file/my%20clip.mp4" {
			t.Errorf("path = %q", r.URL.EscapedPath())
		}
		w.Header().Set("Content-Disposition", `attachment; filename*=UTF-8''caf%C3%A9.mp4`)
		io.WriteString(w, "data")
	})

	stream, err := svc.FetchFile(context.Background(), "my clip.mp4")
	if err != nil {
		t.Fatalf("FetchFile failed: %v", err)
	}
	defer stream.Body.Close()

	body, _ := io.ReadAll(stream.Body)
	if string(body) != "data" {
		t.Errorf("body = %q", body)
	}
	if stream.Name != "café.mp4" {
		t.Errorf("name = %q", stream.Name)
	}
}

func TestFetchFileNotFound(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	if _, err := svc.FetchFile(context.Background(), "gone.mp4"); !model.IsKind(err, model.KindTransport) {
		t.Errorf("error = %v, expected transport", err)
	}
}

func TestListDownloads(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/downloads" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `[{"id":"2","video_title":"B","downloaded_at":"2024-01-02T00:00:00"},{"id":"1","video_title":"A"}]`)
	})

	records, err := svc.ListDownloads(context.Background())
	if err != nil {
		t.Fatalf("ListDownloads failed: %v", err)
	}
	if len(records) != 2 || records[0].ID != "2" || records[1].ID != "1" {
		t.Errorf("records = %+v", records)
	}
}

func TestListDownloadsNull(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `null`)
	})

	records, err := svc.ListDownloads(context.Background())
	if err != nil || records == nil || len(records) != 0 {
		t.Errorf("records = %v, err = %v", records, err)
	}
}

func TestDeleteDownload(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    model.ErrorKind
		message string
	}{
		{"ok", 200, `{"success":true,"message":"deleted"}`, "", ""},
		{"not found envelope", 404, `{"success":false,"error":"Download not found"}`, model.KindServer, "Download not found"},
		{"empty failure", 500, `{"success":false}`, model.KindServer, "Failed to delete download"},
		{"non json", 502, `Bad Gateway`, model.KindTransport, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete || r.URL.Path != "/delete-download/42" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})

			err := svc.DeleteDownload(context.Background(), "42")
			if tc.kind == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if model.KindOf(err) != tc.kind {
				t.Fatalf("kind = %q, expected %q", model.KindOf(err), tc.kind)
			}
			if tc.message != "" && err.(*model.AppError).Message != tc.message {
				t.Errorf("message = %q, expected %q", err.(*model.AppError).Message, tc.message)
			}
		})
	}
}

func TestClearAllDownloads(t *testing.T) {
	svc, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/clear-all-downloads" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `{"success":true}`)
	})

	if err := svc.ClearAllDownloads(context.Background()); err != nil {
		t.Fatalf("ClearAllDownloads failed: %v", err)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("calls = %d", *calls)
	}
}

func TestFilenameFromDisposition(t *testing.T) {
	tests := map[string]string{
		"":                                        "",
		`attachment; filename="clip.mp4"`:         "clip.mp4",
		`attachment; filename="../../etc/passwd"`: "passwd",
		`attachment; filename*=UTF-8''a%20b.mp3`:  "a b.mp3",
	}
	for header, expected := range tests {
		if got := filenameFromDisposition(header); got != expected {
			t.Errorf("filenameFromDisposition(%q) = %q, expected %q", header, got, expected)
		}
	}
}

func TestNewTransport(t *testing.T) {
	doer, err := NewTransport(TransportStd, 5)
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	if _, ok := doer.(*http.Client); !ok {
		t.Errorf("std transport = %T", doer)
	}
}

func TestBrowserTransportRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/echo" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-Test"); got != "abc" {
			t.Errorf("X-Test = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Reply", "ok")
		w.WriteHeader(http.StatusTeapot)
		w.Write(append([]byte("echo:"), body...))
	}))
	defer srv.Close()

	doer, err := NewTransport(TransportBrowser, 5)
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	if _, ok := doer.(*browserTransport); !ok {
		t.Fatalf("browser transport = %T", doer)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/echo", strings.NewReader("hello"))
	req.Header.Set("X-Test", "abc")
	resp, err := doer.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Reply") != "ok" {
		t.Errorf("headers = %v", resp.Header)
	}
	if string(body) != "echo:hello" {
		t.Errorf("body = %q", body)
	}
}

func TestBrowserTransportUnbounded(t *testing.T) {
	saved := tls_client.DefaultTimeoutSeconds
	tls_client.DefaultTimeoutSeconds = 1
	defer func() { tls_client.DefaultTimeoutSeconds = saved }()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		json.NewEncoder(w).Encode(model.DownloadResponse{Success: true, Filename: "slow.mp4"})
	}))
	defer srv.Close()

	doer, err := NewTransport(TransportBrowser, 0)
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	resp, err := NewRemoteService(srv.URL, doer).StartDownload(context.Background(), model.DownloadRequest{URL: "https://youtu.be/x"})
	if err != nil {
		t.Fatalf("StartDownload failed: %v", err)
	}
	if resp.Filename != "slow.mp4" {
		t.Errorf("filename = %q", resp.Filename)
	}
}
