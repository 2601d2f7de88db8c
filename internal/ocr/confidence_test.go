package ocr

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestMeanConfidence(t *testing.T) {
	tokens := []Token{
		{Text: "CARTA", Confidence: 80},
		{Text: "IDENTITA", Confidence: 60},
		{Text: "   ", Confidence: 90}, // blank text is skipped
		{Text: "noise", Confidence: -1}, // negative confidence is skipped
	}
	assert.InDelta(t, 70.0, MeanConfidence(tokens), 1e-9)
	assert.Zero(t, MeanConfidence(nil))
	assert.Zero(t, MeanConfidence([]Token{{Text: " ", Confidence: 50}}))
}

func TestBlendedConfidence_NoArtifacts(t *testing.T) {
	tokens := []Token{
		{Text: "ROSSI", Confidence: 80},
		{Text: "MARIO", Confidence: 60},
	}
	// All tokens survive filtering, so the plain filtered mean is used.
	assert.InDelta(t, 70.0, BlendedConfidence(tokens), 1e-9)
}

func TestBlendedConfidence_SparseTextBlends(t *testing.T) {
	tokens := []Token{
		{Text: "ROSSI", Confidence: 90},
		{Text: "screenshot.png", Confidence: 10},
		{Text: "https://example.com/x", Confidence: 10},
		{Text: "(1280x802)", Confidence: 10},
	}
	// One of four text tokens survives: blend applies, and since only
	// one token remains both averages equal its confidence.
	assert.InDelta(t, 90.0, BlendedConfidence(tokens), 1e-9)
}

func TestBlendedConfidence_AllArtifacts(t *testing.T) {
	tokens := []Token{
		{Text: "screenshot.png", Confidence: 95},
		{Text: "https://example.com", Confidence: 95},
	}
	assert.Zero(t, BlendedConfidence(tokens))
}

func TestMeasure_SuperfastUsesSingleLine(t *testing.T) {
	fake := NewFakeEngine("CARTA DI IDENTITA", 75)
	engine := NewConfidenceEngine(fake, "eng", nil)

	score := engine.Measure(context.Background(), testImage(600, 600), TierSuperfast, "ita")
	assert.InDelta(t, 75.0, score.Confidence, 1e-9)
	assert.Equal(t, "ita", score.Language)

	require.Len(t, fake.Requests, 1)
	assert.Equal(t, LayoutSingleLine, fake.Requests[0].Layout)
	// Superfast downsizes to at most 400px per side.
	bounds := fake.Requests[0].Image.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), 400)
	assert.LessOrEqual(t, bounds.Dy(), 400)
}

func TestMeasure_FastKeepsFullResolution(t *testing.T) {
	fake := NewFakeEngine("CARTA DI IDENTITA ROSSI", 55)
	engine := NewConfidenceEngine(fake, "eng", nil)

	score := engine.Measure(context.Background(), testImage(1200, 900), TierFast, "eng")
	assert.InDelta(t, 55.0, score.Confidence, 1e-9)

	require.Len(t, fake.Requests, 1)
	assert.Equal(t, LayoutUniformBlock, fake.Requests[0].Layout)
	assert.Equal(t, 1200, fake.Requests[0].Image.Bounds().Dx())
}

func TestMeasure_BalancedRetriesOnLowConfidence(t *testing.T) {
	fake := NewFakeEngine("x y", 5)
	engine := NewConfidenceEngine(fake, "eng", nil)

	score := engine.Measure(context.Background(), testImage(1000, 1000), TierBalanced, "eng")
	assert.InDelta(t, 5.0, score.Confidence, 1e-9)

	// First pass plus one enhancement retry.
	layouts := fake.SeenLayouts()
	require.Len(t, layouts, 2)
	assert.Equal(t, LayoutUniformBlock, layouts[0])
	assert.Equal(t, LayoutSingleColumn, layouts[1])
	assert.NotEmpty(t, fake.Requests[1].Whitelist)
}

func TestMeasure_BalancedSkipsRetryWhenConfident(t *testing.T) {
	fake := NewFakeEngine("CARTA DI IDENTITA", 80)
	engine := NewConfidenceEngine(fake, "eng", nil)

	engine.Measure(context.Background(), testImage(500, 500), TierBalanced, "eng")
	assert.Len(t, fake.Requests, 1)
}

func TestMeasure_AccurateTriesMultipleLayouts(t *testing.T) {
	fake := NewFakeEngine("x", 2)
	engine := NewConfidenceEngine(fake, "eng", nil)

	engine.Measure(context.Background(), testImage(500, 500), TierAccurate, "eng")

	layouts := fake.SeenLayouts()
	require.Len(t, layouts, 3)
	assert.Equal(t, LayoutUniformBlock, layouts[0])
	assert.Equal(t, LayoutSingleColumn, layouts[1])
	assert.Equal(t, LayoutAuto, layouts[2])
}

func TestMeasure_LanguageFallback(t *testing.T) {
	fake := NewFakeEngine("REPUBLIC IDENTITY CARD", 65)
	fake.FailLanguages = []string{"xyz"}
	engine := NewConfidenceEngine(fake, "eng", nil)

	score := engine.Measure(context.Background(), testImage(500, 500), TierSuperfast, "xyz")
	assert.InDelta(t, 65.0, score.Confidence, 1e-9)
	assert.Equal(t, "eng", score.Language)
}

func TestMeasure_FallbackAlsoFailsYieldsZero(t *testing.T) {
	fake := NewFakeEngine("text", 50)
	fake.FailLanguages = []string{"xyz", "eng"}
	engine := NewConfidenceEngine(fake, "eng", nil)

	score := engine.Measure(context.Background(), testImage(500, 500), TierSuperfast, "xyz")
	assert.Zero(t, score.Confidence)
	assert.Empty(t, score.Tokens)
}

func TestExtractText_RetriesShortText(t *testing.T) {
	fake := &FakeEngine{
		TokensByLanguage: map[string][]Token{
			"": TokensFromText("SHORT", 20),
		},
	}
	engine := NewConfidenceEngine(fake, "eng", nil)

	text, _ := engine.ExtractText(context.Background(), testImage(500, 500), "eng")
	assert.Equal(t, "SHORT", text)
	// Fast pass plus an accurate retry burst for the short text.
	assert.Greater(t, len(fake.Requests), 1)
}

func TestExtractText_KeepsLongFastResult(t *testing.T) {
	longText := "CARTA DI IDENTITA COMUNE DI ROMA ROSSI MARIO NATO IL"
	fake := NewFakeEngine(longText, 70)
	engine := NewConfidenceEngine(fake, "eng", nil)

	text, score := engine.ExtractText(context.Background(), testImage(500, 500), "eng")
	assert.Equal(t, longText, text)
	assert.Equal(t, TierFast, score.Tier)
	assert.Len(t, fake.Requests, 1)
}

func TestParseSpeedTier(t *testing.T) {
	assert.Equal(t, TierSuperfast, ParseSpeedTier("superfast"))
	assert.Equal(t, TierFast, ParseSpeedTier("FAST"))
	assert.Equal(t, TierBalanced, ParseSpeedTier("nonsense"))
	assert.Equal(t, TierAccurate, ParseSpeedTier("accurate"))
}
