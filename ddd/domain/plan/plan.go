package plan

import (
	"fmt"
	"strconv"

	"convert-service/ddd/domain/vo"
	"convert-service/pkg/errno"
)

// EncodePlan is the ordered argument list handed to the encoding engine.
// Derived deterministically from a request; never mutated after construction.
type EncodePlan struct {
	args []string
}

// Args returns a copy of the argument tokens.
func (p EncodePlan) Args() []string {
	out := make([]string, len(p.args))
	copy(out, p.args)
	return out
}

// Options carries engine tuning knobs that are not part of the request itself.
type Options struct {
	// VideoPreset is the x264 preset for video targets, e.g. "medium".
	VideoPreset string
	// Threads limits encoder threads; 0 lets the engine decide.
	Threads int
}

// Build translates a conversion request into the full engine argument plan.
// It fails with errno.ErrUnsupportedFormat for unrecognized targets and with
// errno.ErrUnsupportedConversion when the source kind cannot produce the target
// kind. Both rejections happen before any process is spawned.
func Build(req *vo.ConversionRequest, opts Options) (EncodePlan, error) {
	if req == nil || !req.Format.IsValid() {
		return EncodePlan{}, errno.ErrUnsupportedFormat
	}
	if req.Clip != nil {
		if err := req.Clip.Validate(); err != nil {
			return EncodePlan{}, err
		}
	}

	inKind := req.InputKind()
	outKind := req.Format.Kind()
	if inKind == vo.KindAudio && outKind == vo.KindVideo {
		return EncodePlan{}, errno.ErrUnsupportedConversion
	}

	profile := vo.ResolveProfile(req.Format, req.Tier)

	args := make([]string, 0, 24)
	args = append(args, "-i", req.InputPath)

	// Seek directives placed after the input open: slower than input-side
	// seeking but frame-accurate, which matters more for clip extraction.
	if req.Clip != nil {
		args = append(args,
			"-ss", formatSeconds(req.Clip.Start.Seconds()),
			"-t", formatSeconds(req.Clip.Length().Seconds()),
		)
	}

	args = append(args, "-progress", "pipe:2", "-nostats")

	switch {
	case inKind == vo.KindVideo && outKind == vo.KindVideo:
		args = append(args, videoArgs(profile, opts)...)
		args = append(args, "-c:a", "aac", "-b:a", "128k")
		if req.Format == vo.FormatMP4 {
			args = append(args, "-movflags", "+faststart")
		}
	case inKind == vo.KindVideo && outKind == vo.KindAudio:
		// Strip the visual stream, then encode audio like audio-to-audio.
		args = append(args, "-vn")
		args = append(args, audioArgs(req.Format, profile)...)
	default:
		args = append(args, audioArgs(req.Format, profile)...)
	}

	if opts.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(opts.Threads))
	}

	// Overwrite an existing artifact at the destination rather than fail.
	args = append(args, "-y", req.OutputPath)

	return EncodePlan{args: args}, nil
}

func videoArgs(profile vo.QualityProfile, opts Options) []string {
	preset := opts.VideoPreset
	if preset == "" {
		preset = "medium"
	}
	return []string{
		"-c:v", "libx264",
		"-preset", preset,
		"-crf", strconv.Itoa(profile.VideoCRF),
	}
}

func audioArgs(format vo.TargetFormat, profile vo.QualityProfile) []string {
	switch format {
	case vo.FormatMP3:
		return []string{"-c:a", "libmp3lame", "-b:a", profile.AudioBitrate}
	case vo.FormatAAC:
		return []string{"-c:a", "aac", "-b:a", profile.AudioBitrate}
	case vo.FormatFLAC:
		return []string{"-c:a", "flac", "-compression_level", strconv.Itoa(profile.CompressionLevel)}
	case vo.FormatWAV:
		return []string{"-c:a", "pcm_s16le"}
	default:
		return nil
	}
}

func formatSeconds(sec float64) string {
	return fmt.Sprintf("%.3f", sec)
}
