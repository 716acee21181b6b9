package vo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTargetFormat(t *testing.T) {
	for _, s := range []string{"mp4", "MOV", " mp3 ", "wav", "aac", "FLAC"} {
		f, ok := ParseTargetFormat(s)
		assert.True(t, ok, s)
		assert.True(t, f.IsValid())
	}

	for _, s := range []string{"", "mkv", "ogg", "webm", "avi"} {
		_, ok := ParseTargetFormat(s)
		assert.False(t, ok, s)
	}
}

func TestTargetFormatKind(t *testing.T) {
	assert.Equal(t, KindVideo, FormatMP4.Kind())
	assert.Equal(t, KindVideo, FormatMOV.Kind())
	assert.Equal(t, KindAudio, FormatMP3.Kind())
	assert.Equal(t, KindAudio, FormatWAV.Kind())
	assert.Equal(t, KindAudio, FormatAAC.Kind())
	assert.Equal(t, KindAudio, FormatFLAC.Kind())
}

func TestClassifyInputKind(t *testing.T) {
	assert.Equal(t, KindVideo, ClassifyInputKind("/media/in.mp4"))
	assert.Equal(t, KindVideo, ClassifyInputKind("clip.MKV"))
	assert.Equal(t, KindVideo, ClassifyInputKind("show.webm"))

	assert.Equal(t, KindAudio, ClassifyInputKind("track.mp3"))
	assert.Equal(t, KindAudio, ClassifyInputKind("voice.wav"))
	// Unknown extensions classify as audio, not video.
	assert.Equal(t, KindAudio, ClassifyInputKind("mystery.bin"))
	assert.Equal(t, KindAudio, ClassifyInputKind("noext"))
}

func TestIsLossless(t *testing.T) {
	assert.True(t, FormatFLAC.IsLossless())
	assert.True(t, FormatWAV.IsLossless())
	assert.False(t, FormatMP3.IsLossless())
	assert.False(t, FormatMP4.IsLossless())
}
