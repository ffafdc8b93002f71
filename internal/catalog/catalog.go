// Package catalog holds the static table of selectable output qualities.
// The first entry of every list is the recommended default, "best".
package catalog

import "vidsparrow/internal/model"

// DefaultQuality is the value of the first entry of every catalog list
const DefaultQuality = "best"

var audioOptions = []model.QualityOption{
	{Value: "best", Label: "Best Quality (320kbps)"},
	{Value: "192k", Label: "High Quality (192kbps)"},
	{Value: "128k", Label: "Good Quality (128kbps)"},
	{Value: "64k", Label: "Standard Quality (64kbps)"},
}

var primaryVideoOptions = []model.QualityOption{
	{Value: "best", Label: "Best Available (up to 1080p)"},
	{Value: "1080p", Label: "Full HD (1080p)"},
	{Value: "720p", Label: "HD (720p)"},
	{Value: "480p", Label: "Standard (480p)"},
	{Value: "360p", Label: "Low (360p)"},
}

var videoOptions = []model.QualityOption{
	{Value: "best", Label: "Best Available"},
	{Value: "720p", Label: "HD (720p)"},
	{Value: "480p", Label: "Standard (480p)"},
}

// Options returns the ordered quality list for a media type and platform.
// The returned slice is a fresh copy.
func Options(mediaType model.MediaType, platform model.Platform) []model.QualityOption {
	var src []model.QualityOption
	switch {
	case mediaType.IsAudio():
		src = audioOptions
	case platform == model.PlatformYouTube:
		src = primaryVideoOptions
	default:
		src = videoOptions
	}

	out := make([]model.QualityOption, len(src))
	copy(out, src)
	return out
}

// Default returns the first catalog entry for the pair
func Default(mediaType model.MediaType, platform model.Platform) model.QualityOption {
	return Options(mediaType, platform)[0]
}

// Contains reports whether value is selectable for the pair
func Contains(mediaType model.MediaType, platform model.Platform, value string) bool {
	_, ok := Find(mediaType, platform, value)
	return ok
}

// Find looks up the option with the given value
func Find(mediaType model.MediaType, platform model.Platform, value string) (model.QualityOption, bool) {
	for _, opt := range Options(mediaType, platform) {
		if opt.Value == value {
			return opt, true
		}
	}
	return model.QualityOption{}, false
}

// Label returns the short label of value, or value itself when unknown
func Label(mediaType model.MediaType, platform model.Platform, value string) string {
	if opt, ok := Find(mediaType, platform, value); ok {
		return opt.ShortLabel()
	}
	return value
}
