package validator

import (
	"strings"
	"testing"

	"vidsparrow/internal/model"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"https link", "https://www.youtube.com/watch?v=abc", true},
		{"http link", "http://instagram.com/p/xyz/", true},
		{"surrounding spaces", "  https://youtu.be/abc  ", true},
		{"plain text", "not-a-url", false},
		{"ftp scheme", "ftp://example.com/file", false},
		{"javascript scheme", "javascript:alert(1)", false},
		{"missing host", "https://", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateURL(tc.input); got != tc.valid {
				t.Errorf("ValidateURL(%q) = %v, expected %v", tc.input, got, tc.valid)
			}
		})
	}
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		input    string
		expected model.Platform
		found    bool
	}{
		{"https://www.youtube.com/watch?v=abc", model.PlatformYouTube, true},
		{"youtu.be/abc", model.PlatformYouTube, true},
		{"HTTPS://WWW.INSTAGRAM.COM/reel/abc", model.PlatformInstagram, true},
		{"https://vimeo.com/123", "", false},
		{"   ", "", false},
	}

	for _, tc := range tests {
		got, found := DetectPlatform(tc.input)
		if found != tc.found || got != tc.expected {
			t.Errorf("DetectPlatform(%q) = (%q, %v), expected (%q, %v)", tc.input, got, found, tc.expected, tc.found)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	hint := Placeholder(model.PlatformInstagram)
	if !strings.HasPrefix(hint, "Paste instagram link here...") {
		t.Errorf("unexpected placeholder %q", hint)
	}
	if !strings.Contains(hint, "instagram.com/p/") {
		t.Errorf("placeholder %q lacks example", hint)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"clip.mp4":          "clip.mp4",
		"../../etc/passwd":  ".._.._etc_passwd",
		`a:b*c?"d".mp3`:     "a_b_c__d_.mp3",
		"  ":                "download",
		"..":                "download",
	}
	for input, expected := range tests {
		if got := SanitizeFilename(input); got != expected {
			t.Errorf("SanitizeFilename(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestTruncateFilename(t *testing.T) {
	if got := TruncateFilename("short.mp4", 20); got != "short.mp4" {
		t.Errorf("unexpected truncation %q", got)
	}
	if got := TruncateFilename("abcdefghij.mp4", 8); got != "abcd.mp4" {
		t.Errorf("TruncateFilename kept %q, expected abcd.mp4", got)
	}
	if got := TruncateFilename("日本語のタイトル.mp3", 6); got != "日本.mp3" {
		t.Errorf("TruncateFilename rune handling = %q", got)
	}
}
