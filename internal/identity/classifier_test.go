package identity

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/idscan/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())
	return &cfg
}

func TestClassifyTypeFromKeywords(t *testing.T) {
	c := NewClassifier(testConfig(t))

	tests := []struct {
		name string
		text string
		want string
	}{
		{"english keyword", "Identity Card of the Republic", "residential_id"},
		{"italian keyword", "carta d'identita n. 12345", "residential_id"},
		{"aadhaar keyword", "AADHAAR - Government of India", "aadhaar"},
		{"no keywords", "quarterly sales report 2023", ""},
		{"empty text", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := c.Classify("1", tt.text, 0.2, 75)
			if tt.want == "" {
				assert.True(t, cls.Type.IsUnknown())
			} else {
				assert.Equal(t, tt.want, cls.Type.Key())
			}
		})
	}
}

func TestClassifySide(t *testing.T) {
	c := NewClassifier(testConfig(t))

	tests := []struct {
		name string
		text string
		want DocumentSide
	}{
		{"front keywords", "Surname ROSSI Nationality ITA Sex F", SideFront},
		{"back keywords", "Signature of holder, expiry 2030, issued by questura", SideBack},
		{"no side keywords", "random page content", SideUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := c.Classify("1", tt.text, 0.2, 75)
			assert.Equal(t, tt.want, cls.Side)
		})
	}
}

func TestClassifySideTiebreakDefaultsToFront(t *testing.T) {
	cfg := testConfig(t)
	// One keyword per side so the scores tie exactly, with no strong
	// indicator phrase present.
	cfg.DocumentSides = map[string]config.DocumentClass{
		"front": {Enabled: true, Keywords: map[string][]string{"en": {"alpha"}}},
		"back":  {Enabled: true, Keywords: map[string][]string{"en": {"beta"}}},
	}
	cfg.SideTiebreak = config.SideTiebreak{}
	c := NewClassifier(cfg)

	cls := c.Classify("1", "alpha beta", 0.2, 90)
	assert.Equal(t, SideFront, cls.Side)
}

func TestClassifySideScoreGapWins(t *testing.T) {
	cfg := testConfig(t)
	cfg.DocumentSides = map[string]config.DocumentClass{
		"front": {Enabled: true, Keywords: map[string][]string{"en": {"alpha"}}},
		"back":  {Enabled: true, Keywords: map[string][]string{"en": {"beta", "gamma", "delta"}}},
	}
	c := NewClassifier(cfg)

	cls := c.Classify("1", "alpha beta gamma delta", 0.2, 90)
	assert.Equal(t, SideBack, cls.Side)
}

func TestBaseConfidenceComposition(t *testing.T) {
	c := NewClassifier(testConfig(t))

	// 0.3*80 OCR + 30 type match + 25 side match + 15 normal ink, text
	// too short for the length bonus.
	cls := c.Classify("1", "identity card surname", 0.3, 80)
	require.Equal(t, "residential_id", cls.Type.Key())
	require.Equal(t, SideFront, cls.Side)
	assert.InDelta(t, 94.0, cls.Confidence, 1e-9)
}

func TestBaseConfidenceClamps(t *testing.T) {
	c := NewClassifier(testConfig(t))

	t.Run("floor at zero", func(t *testing.T) {
		cls := c.Classify("1", "", 0.0, 0)
		assert.Zero(t, cls.Confidence)
		assert.True(t, cls.Type.IsUnknown())
	})

	t.Run("ceiling at hundred", func(t *testing.T) {
		text := "identity card surname date of birth " + strings.Repeat("x ", 20)
		cls := c.Classify("1", text, 0.3, 100)
		assert.Equal(t, 100.0, cls.Confidence)
	})
}

func TestClassifyFeatures(t *testing.T) {
	c := NewClassifier(testConfig(t))

	cls := c.Classify("2-1", "identity card with signature", 0.15, 60)
	assert.Equal(t, "2-1", cls.PageLabel)
	assert.Equal(t, "2", cls.PageKey())
	assert.Equal(t, 28, cls.Features.TextLength)
	assert.Equal(t, 4, cls.Features.WordCount)
	assert.True(t, cls.Features.TypeMatches["residential_id"])
	assert.False(t, cls.Features.TypeMatches["aadhaar"])
	assert.True(t, cls.Features.SideMatches["back"])
}

func TestDocumentSideVocabulary(t *testing.T) {
	data, err := json.Marshal(Classification{PageLabel: "1", Side: SideBoth})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"document_side":"both"`)

	assert.Equal(t, []DocumentSide{"front", "back", "both", "unknown"},
		[]DocumentSide{SideFront, SideBack, SideBoth, SideUnknown})
}

func TestDocumentTypeJSON(t *testing.T) {
	cls := KnownType("aadhaar")
	data, err := cls.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"aadhaar"`, string(data))

	var unknown DocumentType
	data, err = unknown.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"unknown"`, string(data))
}
