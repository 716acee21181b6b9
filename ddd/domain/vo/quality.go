package vo

import "strings"

// QualityTier is the coarse user-facing quality setting.
type QualityTier string

const (
	TierLow    QualityTier = "low"
	TierMedium QualityTier = "medium"
	TierHigh   QualityTier = "high"
)

// ParseQualityTier normalizes a tier string case-insensitively. Unrecognized
// values fall back to the medium tier rather than failing.
func ParseQualityTier(s string) QualityTier {
	switch QualityTier(strings.ToLower(strings.TrimSpace(s))) {
	case TierLow:
		return TierLow
	case TierHigh:
		return TierHigh
	default:
		return TierMedium
	}
}

func (t QualityTier) String() string {
	return string(t)
}

// QualityProfile carries the engine parameters mapped from a (format, tier) pair.
// Only the fields relevant to the target format are populated.
type QualityProfile struct {
	// VideoCRF is the constant-rate factor for video targets. Lower means
	// finer compression, so the scale is inverse to the quality tier.
	VideoCRF int
	// AudioBitrate is the bitrate token for lossy audio targets, e.g. "192k".
	AudioBitrate string
	// CompressionLevel is the fixed flac effort level, independent of tier.
	CompressionLevel int
}

// flacCompressionLevel is constant for every tier; flac is lossless so the tier
// can only affect encode effort, not fidelity.
const flacCompressionLevel = 8

// ResolveProfile maps a target format and quality tier to engine parameters.
// It is total: every valid format resolves for every tier string, and unknown
// tiers resolve as medium.
func ResolveProfile(format TargetFormat, tier QualityTier) QualityProfile {
	tier = ParseQualityTier(tier.String())

	switch format {
	case FormatMP4, FormatMOV:
		switch tier {
		case TierLow:
			return QualityProfile{VideoCRF: 28}
		case TierHigh:
			return QualityProfile{VideoCRF: 18}
		default:
			return QualityProfile{VideoCRF: 23}
		}
	case FormatMP3:
		switch tier {
		case TierLow:
			return QualityProfile{AudioBitrate: "128k"}
		case TierHigh:
			return QualityProfile{AudioBitrate: "320k"}
		default:
			return QualityProfile{AudioBitrate: "192k"}
		}
	case FormatAAC:
		switch tier {
		case TierLow:
			return QualityProfile{AudioBitrate: "96k"}
		case TierHigh:
			return QualityProfile{AudioBitrate: "256k"}
		default:
			return QualityProfile{AudioBitrate: "160k"}
		}
	case FormatFLAC:
		return QualityProfile{CompressionLevel: flacCompressionLevel}
	case FormatWAV:
		// Uncompressed PCM: neither tier nor bitrate applies.
		return QualityProfile{}
	default:
		return QualityProfile{}
	}
}
