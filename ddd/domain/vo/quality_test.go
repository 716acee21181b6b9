package vo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQualityTier(t *testing.T) {
	assert.Equal(t, TierLow, ParseQualityTier("low"))
	assert.Equal(t, TierHigh, ParseQualityTier("HIGH"))
	assert.Equal(t, TierMedium, ParseQualityTier(" Medium "))

	// Unknown and empty inputs fall back to medium instead of failing.
	assert.Equal(t, TierMedium, ParseQualityTier(""))
	assert.Equal(t, TierMedium, ParseQualityTier("ultra"))
	assert.Equal(t, TierMedium, ParseQualityTier("42"))
}

func TestResolveProfileVideoCRFIsInverse(t *testing.T) {
	low := ResolveProfile(FormatMP4, TierLow)
	med := ResolveProfile(FormatMP4, TierMedium)
	high := ResolveProfile(FormatMP4, TierHigh)

	assert.Equal(t, 28, low.VideoCRF)
	assert.Equal(t, 23, med.VideoCRF)
	assert.Equal(t, 18, high.VideoCRF)

	// Higher tier means lower CRF.
	assert.Greater(t, low.VideoCRF, med.VideoCRF)
	assert.Greater(t, med.VideoCRF, high.VideoCRF)

	// mov shares the video mapping.
	assert.Equal(t, ResolveProfile(FormatMP4, TierHigh), ResolveProfile(FormatMOV, TierHigh))
}

func TestResolveProfileAudioBitrates(t *testing.T) {
	assert.Equal(t, "128k", ResolveProfile(FormatMP3, TierLow).AudioBitrate)
	assert.Equal(t, "192k", ResolveProfile(FormatMP3, TierMedium).AudioBitrate)
	assert.Equal(t, "320k", ResolveProfile(FormatMP3, TierHigh).AudioBitrate)

	assert.Equal(t, "96k", ResolveProfile(FormatAAC, TierLow).AudioBitrate)
	assert.Equal(t, "160k", ResolveProfile(FormatAAC, TierMedium).AudioBitrate)
	assert.Equal(t, "256k", ResolveProfile(FormatAAC, TierHigh).AudioBitrate)
}

func TestResolveProfileLossless(t *testing.T) {
	// flac ignores the tier: fixed compression effort for every tier.
	for _, tier := range []QualityTier{TierLow, TierMedium, TierHigh} {
		p := ResolveProfile(FormatFLAC, tier)
		assert.Equal(t, 8, p.CompressionLevel)
		assert.Empty(t, p.AudioBitrate)
	}

	// wav carries no quality parameters at all.
	assert.Equal(t, QualityProfile{}, ResolveProfile(FormatWAV, TierHigh))
}

func TestResolveProfileIsTotal(t *testing.T) {
	// Every format resolves for an unparsed garbage tier.
	for _, f := range SupportedFormats() {
		assert.NotPanics(t, func() {
			ResolveProfile(f, QualityTier("nonsense"))
		})
	}
	// Garbage tier resolves as medium.
	assert.Equal(t, 23, ResolveProfile(FormatMP4, QualityTier("nonsense")).VideoCRF)
}
