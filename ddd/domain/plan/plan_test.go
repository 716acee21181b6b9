package plan

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convert-service/ddd/domain/vo"
	"convert-service/pkg/errno"
)

func mustRequest(t *testing.T, in, out, format, tier string, clip *vo.ClipWindow) *vo.ConversionRequest {
	t.Helper()
	req, err := vo.NewConversionRequest(in, out, format, tier, clip)
	require.NoError(t, err)
	return req
}

func indexOf(args []string, token string) int {
	for i, a := range args {
		if a == token {
			return i
		}
	}
	return -1
}

func TestBuildVideoToVideo(t *testing.T) {
	req := mustRequest(t, "in.mkv", "out.mp4", "mp4", "high", nil)
	p, err := Build(req, Options{VideoPreset: "fast", Threads: 4})
	require.NoError(t, err)
	args := p.Args()
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-i in.mkv")
	assert.Contains(t, joined, "-c:v libx264")
	assert.Contains(t, joined, "-preset fast")
	assert.Contains(t, joined, "-crf 18")
	assert.Contains(t, joined, "-c:a aac -b:a 128k")
	assert.Contains(t, joined, "-movflags +faststart")
	assert.Contains(t, joined, "-progress pipe:2")
	assert.Contains(t, joined, "-nostats")
	assert.Contains(t, joined, "-threads 4")

	// Output path is last, preceded by the overwrite flag.
	assert.Equal(t, "out.mp4", args[len(args)-1])
	assert.Equal(t, "-y", args[len(args)-2])
}

func TestBuildMOVHasNoFaststart(t *testing.T) {
	req := mustRequest(t, "in.mp4", "out.mov", "mov", "medium", nil)
	p, err := Build(req, Options{})
	require.NoError(t, err)
	assert.NotContains(t, strings.Join(p.Args(), " "), "-movflags")
}

func TestBuildVideoToAudioStripsVideo(t *testing.T) {
	req := mustRequest(t, "in.mp4", "out.mp3", "mp3", "low", nil)
	p, err := Build(req, Options{})
	require.NoError(t, err)
	joined := strings.Join(p.Args(), " ")

	assert.Contains(t, joined, "-vn")
	assert.Contains(t, joined, "-c:a libmp3lame")
	assert.Contains(t, joined, "-b:a 128k")
	assert.NotContains(t, joined, "libx264")
}

func TestBuildAudioToAudio(t *testing.T) {
	cases := []struct {
		format string
		want   []string
	}{
		{"mp3", []string{"-c:a", "libmp3lame", "-b:a", "192k"}},
		{"aac", []string{"-c:a", "aac", "-b:a", "160k"}},
		{"flac", []string{"-c:a", "flac", "-compression_level", "8"}},
		{"wav", []string{"-c:a", "pcm_s16le"}},
	}
	for _, tc := range cases {
		req := mustRequest(t, "in.mp3", "out."+tc.format, tc.format, "medium", nil)
		p, err := Build(req, Options{})
		require.NoError(t, err, tc.format)
		joined := strings.Join(p.Args(), " ")
		assert.Contains(t, joined, strings.Join(tc.want, " "), tc.format)
		// Pure audio input never gets -vn.
		assert.NotContains(t, joined, "-vn", tc.format)
	}
}

func TestBuildAudioToVideoRejected(t *testing.T) {
	req := mustRequest(t, "track.mp3", "out.mp4", "mp4", "medium", nil)
	_, err := Build(req, Options{})
	assert.ErrorIs(t, err, errno.ErrUnsupportedConversion)

	req = mustRequest(t, "voice.flac", "out.mov", "mov", "high", nil)
	_, err = Build(req, Options{})
	assert.ErrorIs(t, err, errno.ErrUnsupportedConversion)
}

func TestBuildUnsupportedFormatRejected(t *testing.T) {
	_, err := Build(nil, Options{})
	assert.ErrorIs(t, err, errno.ErrUnsupportedFormat)

	req := &vo.ConversionRequest{InputPath: "in.mp4", OutputPath: "out.ogg", Format: vo.TargetFormat("ogg")}
	_, err = Build(req, Options{})
	assert.ErrorIs(t, err, errno.ErrUnsupportedFormat)
}

func TestBuildClipSeekPlacedAfterInput(t *testing.T) {
	clip := &vo.ClipWindow{Start: 1500 * time.Millisecond, End: 4 * time.Second}
	req := mustRequest(t, "in.mp4", "out.mp4", "mp4", "medium", clip)
	p, err := Build(req, Options{})
	require.NoError(t, err)
	args := p.Args()

	iIdx := indexOf(args, "-i")
	ssIdx := indexOf(args, "-ss")
	tIdx := indexOf(args, "-t")
	require.GreaterOrEqual(t, iIdx, 0)
	require.Greater(t, ssIdx, iIdx, "seek must follow the input for frame accuracy")
	require.Greater(t, tIdx, ssIdx)

	assert.Equal(t, "1.500", args[ssIdx+1])
	assert.Equal(t, "2.500", args[tIdx+1])
}

func TestBuildRejectsInvalidClip(t *testing.T) {
	req := &vo.ConversionRequest{
		InputPath:  "in.mp4",
		OutputPath: "out.mp4",
		Format:     vo.FormatMP4,
		Tier:       vo.TierMedium,
		Clip:       &vo.ClipWindow{Start: 5 * time.Second, End: 2 * time.Second},
	}
	_, err := Build(req, Options{})
	assert.ErrorIs(t, err, errno.ErrInvalidClipWindow)
}

func TestArgsReturnsCopy(t *testing.T) {
	req := mustRequest(t, "in.mp4", "out.mp4", "mp4", "medium", nil)
	p, err := Build(req, Options{})
	require.NoError(t, err)

	a := p.Args()
	a[0] = "mutated"
	assert.NotEqual(t, "mutated", p.Args()[0])
}
