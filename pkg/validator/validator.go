package validator

import (
	"net/url"
	"strings"

	"vidsparrow/internal/model"
)

// platformRule maps a platform to URL fragments that identify it
type platformRule struct {
	Platform  model.Platform
	Fragments []string
	Example   string
}

// platformRules is checked in order; the first matching rule wins
var platformRules = []platformRule{
	{
		Platform:  model.PlatformYouTube,
		Fragments: []string{"youtube.com", "youtu.be"},
		Example:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	},
	{
		Platform:  model.PlatformInstagram,
		Fragments: []string{"instagram.com"},
		Example:   "https://www.instagram.com/p/Cxyz123456/",
	},
}

// ValidateURL reports whether raw is an absolute http or https URL
func ValidateURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}

	return u.Host != ""
}

// DetectPlatform returns the platform named by the URL text, if any
func DetectPlatform(text string) (model.Platform, bool) {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return "", false
	}

	for _, rule := range platformRules {
		for _, fragment := range rule.Fragments {
			if strings.Contains(lowered, fragment) {
				return rule.Platform, true
			}
		}
	}
	return "", false
}

// Placeholder returns the URL field hint for a platform
func Placeholder(p model.Platform) string {
	for _, rule := range platformRules {
		if rule.Platform == p {
			return "Paste " + string(p) + " link here... e.g., " + rule.Example
		}
	}
	return "Paste " + string(p) + " link here..."
}

// SanitizeFilename removes dangerous characters from filename
func SanitizeFilename(filename string) string {
	dangerousChars := []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*", "\x00"}
	result := filename
	for _, char := range dangerousChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if result == "" || result == "." || result == ".." {
		return "download"
	}
	return result
}

// TruncateFilename truncates filename to max length while preserving extension
// Uses rune-level truncation to properly handle UTF-8 multi-byte characters
func TruncateFilename(filename string, maxLen int) string {
	runes := []rune(filename)

	if len(runes) <= maxLen {
		return filename
	}

	lastDot := strings.LastIndex(filename, ".")
	if lastDot == -1 {
		return string(runes[:maxLen])
	}

	ext := filename[lastDot:]
	extRunes := []rune(ext)

	availableLen := maxLen - len(extRunes)
	if availableLen <= 0 {
		return string(runes[:maxLen])
	}

	return string(runes[:availableLen]) + ext
}
