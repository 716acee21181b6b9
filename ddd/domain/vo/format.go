package vo

import (
	"path/filepath"
	"strings"
)

// MediaKind distinguishes timed media with a visual stream from pure audio.
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
)

// TargetFormat is the requested output container/codec family.
type TargetFormat string

const (
	FormatMP4  TargetFormat = "mp4"
	FormatMOV  TargetFormat = "mov"
	FormatMP3  TargetFormat = "mp3"
	FormatWAV  TargetFormat = "wav"
	FormatAAC  TargetFormat = "aac"
	FormatFLAC TargetFormat = "flac"
)

// SupportedFormats lists the recognized target formats in a stable order for
// presentation layers.
func SupportedFormats() []TargetFormat {
	return []TargetFormat{FormatMP4, FormatMOV, FormatMP3, FormatWAV, FormatAAC, FormatFLAC}
}

// ParseTargetFormat normalizes a format string; ok is false for unrecognized values.
func ParseTargetFormat(s string) (TargetFormat, bool) {
	f := TargetFormat(strings.ToLower(strings.TrimSpace(s)))
	return f, f.IsValid()
}

// IsValid reports whether the format is one of the six recognized targets.
func (f TargetFormat) IsValid() bool {
	switch f {
	case FormatMP4, FormatMOV, FormatMP3, FormatWAV, FormatAAC, FormatFLAC:
		return true
	default:
		return false
	}
}

// Kind returns the media kind produced by this target format.
func (f TargetFormat) Kind() MediaKind {
	switch f {
	case FormatMP4, FormatMOV:
		return KindVideo
	default:
		return KindAudio
	}
}

// IsLossless reports whether the format preserves the source signal exactly.
func (f TargetFormat) IsLossless() bool {
	return f == FormatFLAC || f == FormatWAV
}

func (f TargetFormat) String() string {
	return string(f)
}

// Extension returns the output file extension including the dot.
func (f TargetFormat) Extension() string {
	return "." + string(f)
}

// videoExtensions is the fixed set of recognized video container extensions.
// Anything outside this set is treated as audio input.
var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".avi":  {},
	".webm": {},
	".flv":  {},
	".wmv":  {},
	".m4v":  {},
	".mpg":  {},
	".mpeg": {},
	".ts":   {},
	".3gp":  {},
}

// ClassifyInputKind determines the input media kind from its locator extension.
func ClassifyInputKind(path string) MediaKind {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo
	}
	return KindAudio
}
