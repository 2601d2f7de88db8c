package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "eng", cfg.OCR.Language)
	assert.Equal(t, 0.005, cfg.Quality.EmptinessInkRatio)
	assert.Equal(t, []string{"aadhaar", "residential_id"}, cfg.EnabledDocumentTypes())
	assert.Equal(t, []string{"back", "front"}, cfg.EnabledDocumentSides())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.LogLevel = "trace" },
			want:   "invalid log level",
		},
		{
			name:   "negative min area",
			mutate: func(c *Config) { c.Detection.MinAreaPercent = -1 },
			want:   "min_document_area_percent",
		},
		{
			name:   "max area below min",
			mutate: func(c *Config) { c.Detection.MaxAreaPercent = 1 },
			want:   "max_document_area_percent",
		},
		{
			name:   "inverted aspect bounds",
			mutate: func(c *Config) { c.Detection.MaxAspectRatio = 0.5 },
			want:   "aspect ratio",
		},
		{
			name:   "no document types",
			mutate: func(c *Config) { c.DocumentTypes = nil },
			want:   "document_types",
		},
		{
			name: "reserved class key",
			mutate: func(c *Config) {
				c.DocumentTypes["unknown"] = DocumentClass{Enabled: true}
			},
			want: "reserved",
		},
		{
			name: "enabled class without keywords",
			mutate: func(c *Config) {
				c.DocumentTypes["passport"] = DocumentClass{Enabled: true}
			},
			want: "no keywords",
		},
		{
			name:   "zero confidence cap",
			mutate: func(c *Config) { c.Boost.MaxConfidenceCap = 0 },
			want:   "max_confidence_cap",
		},
		{
			name:   "quality factor above one",
			mutate: func(c *Config) { c.Boost.Factors.PoorOCRFactor = 1.5 },
			want:   "quality factor",
		},
		{
			name:   "empty ocr language",
			mutate: func(c *Config) { c.OCR.Language = "" },
			want:   "ocr.language",
		},
		{
			name:   "bad server port",
			mutate: func(c *Config) { c.Server.Port = 0 },
			want:   "server port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OCR.Language = "ita"
	cfg.Server.Port = 9090

	data, err := yaml.Marshal(&cfg)
	require.NoError(t, err)

	var loaded Config
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	require.NoError(t, loaded.Validate())

	assert.Equal(t, "ita", loaded.OCR.Language)
	assert.Equal(t, 9090, loaded.Server.Port)
	assert.Equal(t, cfg.Detection, loaded.Detection)
	assert.Equal(t, cfg.Boost, loaded.Boost)
}

func TestLoaderWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idscan.yaml")

	overrides := map[string]any{
		"log_level": "debug",
		"ocr": map[string]any{
			"language":    "ita",
			"timeout_sec": 30,
		},
		"server": map[string]any{
			"port": 9191,
		},
	}
	data, err := yaml.Marshal(overrides)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ita", cfg.OCR.Language)
	assert.Equal(t, 30, cfg.OCR.TimeoutSec)
	assert.Equal(t, 9191, cfg.Server.Port)
	// Untouched sections keep their defaults.
	assert.Equal(t, "eng", cfg.OCR.FallbackLanguage)
	assert.NotEmpty(t, cfg.DocumentTypes)
}

func TestLoaderRejectsMissingFile(t *testing.T) {
	_, err := NewLoader().LoadWithFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
