package config

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultConfig returns the built-in configuration. Deployments are
// expected to override the document classes and thresholds; these
// defaults mirror the values the classifier was tuned with.
func DefaultConfig() Config {
	return Config{
		LogLevel:      "info",
		OCR:           defaultOCRConfig(),
		Detection:     defaultDetectionConfig(),
		DocumentTypes: defaultDocumentTypes(),
		DocumentSides: defaultDocumentSides(),
		SideWeights:   defaultSideWeights(),
		SideTiebreak:  defaultSideTiebreak(),
		Boost:         defaultBoostConfig(),
		Quality: QualityConfig{
			EmptinessInkRatio:     0.005,
			ReadabilityConfidence: 40,
		},
		Languages: LanguageConfig{
			Primary: "eng",
			Keywords: map[string][]string{
				"ita": {"carta d'identita", "cognome", "nascita", "cittadinanza", "comune", "rilascio", "scadenza"},
				"eng": {"identity card", "surname", "date of birth", "nationality", "issued", "expiry"},
			},
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      120,
			ShutdownTimeout: 10,
		},
	}
}

func defaultOCRConfig() OCRConfig {
	return OCRConfig{
		Language:         "eng",
		FallbackLanguage: "eng",
		TimeoutSec:       60,
	}
}

func defaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		MinAreaPercent: 5.0,
		MaxAreaPercent: 80.0,
		MinAspectRatio: 1.4,
		MaxAspectRatio: 2.0,
		PaddingPercent: 5.0,
		IoUThreshold:   0.3,
	}
}

func defaultDocumentTypes() map[string]DocumentClass {
	return map[string]DocumentClass{
		"residential_id": {
			Label:       "RES-ID",
			DisplayName: "Residential ID Card",
			Color:       []int{46, 134, 193},
			Enabled:     true,
			Keywords: map[string][]string{
				"en":    {"identity card", "residence permit", "national id"},
				"other": {"carta d'identita", "carta di identita", "permesso di soggiorno"},
			},
		},
		"aadhaar": {
			Label:       "AADHAAR",
			DisplayName: "Aadhaar Card",
			Color:       []int{231, 76, 60},
			Enabled:     true,
			Keywords: map[string][]string{
				"en":    {"aadhaar", "unique identification", "government of india"},
				"other": {"adhaar"},
			},
		},
	}
}

func defaultDocumentSides() map[string]DocumentClass {
	return map[string]DocumentClass{
		"front": {
			Label:       "FRONT",
			DisplayName: "Front Side",
			Enabled:     true,
			Keywords: map[string][]string{
				"en":    {"surname", "date of birth", "place of birth", "nationality", "sex"},
				"other": {"cognome", "nome", "data di nascita", "luogo di nascita", "cittadinanza", "sesso"},
			},
		},
		"back": {
			Label:       "BACK",
			DisplayName: "Back Side",
			Enabled:     true,
			Keywords: map[string][]string{
				"en":    {"signature", "expiry", "valid until", "issued by"},
				"other": {"firma", "scadenza", "rilascio", "questura", "timbro"},
			},
		},
	}
}

func defaultSideWeights() SideWeights {
	return SideWeights{
		ENWeight:           2.0,
		OtherWeight:        1.0,
		FeatureWeight:      3.0,
		ModerateOCRMin:     30.0,
		ModerateOCRMax:     70.0,
		ModerateMultiplier: 1.5,
	}
}

func defaultSideTiebreak() SideTiebreak {
	return SideTiebreak{
		StrongFront: []string{"luogo di nascita", "luogo d", "nome e cognome", "sesso", "cittadinanza", "numero di"},
		StrongBack:  []string{"firma", "scadenza", "valido", "codice qr", "qr code", "mrz"},
	}
}

func defaultBoostConfig() BoostConfig {
	return BoostConfig{
		SingleMatchBoost:     5.0,
		DoubleMatchBoost:     10.0,
		TriplePlusMatchBoost: 15.0,
		MaxSpecificityBonus:  10.0,
		MaxConfidenceCap:     100.0,
		Specificity: SpecificityBonus{
			SingleWord:    1.0,
			TwoWords:      2.0,
			ThreePlusWord: 3.0,
		},
		Consistency: ConsistencyBonus{
			TwoMatches:       3.0,
			ThreePlusMatches: 5.0,
		},
		Factors: QualityFactors{
			PoorOCRThreshold:   30.0,
			PoorOCRFactor:      0.5,
			MediumOCRThreshold: 50.0,
			MediumOCRFactor:    0.75,
			PoorInkRatioMin:    0.05,
			PoorInkRatioMax:    0.8,
			PoorInkFactor:      0.8,
		},
	}
}

// Validate checks the configuration for consistency. All classification
// thresholds originate here, so a malformed configuration is fatal at
// startup.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateClasses(); err != nil {
		return err
	}
	if err := c.validateBoost(); err != nil {
		return err
	}

	if c.OCR.Language == "" {
		return fmt.Errorf("ocr.language must not be empty")
	}
	if c.OCR.FallbackLanguage == "" {
		return fmt.Errorf("ocr.fallback_language must not be empty")
	}
	if c.OCR.TimeoutSec <= 0 {
		return fmt.Errorf("invalid ocr timeout: %d (must be positive)", c.OCR.TimeoutSec)
	}
	if c.Languages.Primary == "" {
		return fmt.Errorf("languages.primary must not be empty")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid server timeout: %d (must be positive)", c.Server.TimeoutSec)
	}

	return nil
}

func (c *Config) validateDetection() error {
	d := c.Detection
	if d.MinAreaPercent <= 0 || d.MinAreaPercent >= 100 {
		return fmt.Errorf("invalid detection.min_document_area_percent: %.2f", d.MinAreaPercent)
	}
	if d.MaxAreaPercent <= d.MinAreaPercent || d.MaxAreaPercent > 100 {
		return fmt.Errorf("invalid detection.max_document_area_percent: %.2f", d.MaxAreaPercent)
	}
	if d.MinAspectRatio <= 0 || d.MaxAspectRatio <= d.MinAspectRatio {
		return fmt.Errorf("invalid detection aspect ratio bounds: [%.2f, %.2f]", d.MinAspectRatio, d.MaxAspectRatio)
	}
	if d.PaddingPercent < 0 || d.PaddingPercent > 50 {
		return fmt.Errorf("invalid detection.padding_percent: %.2f", d.PaddingPercent)
	}
	if d.IoUThreshold <= 0 || d.IoUThreshold >= 1 {
		return fmt.Errorf("invalid detection.iou_threshold: %.2f (must be in (0, 1))", d.IoUThreshold)
	}
	return nil
}

func (c *Config) validateClasses() error {
	if len(c.DocumentTypes) == 0 {
		return fmt.Errorf("document_types must declare at least one type")
	}
	for key, class := range c.DocumentTypes {
		if err := validateClass("document_types", key, class); err != nil {
			return err
		}
	}
	if len(c.DocumentSides) == 0 {
		return fmt.Errorf("document_sides must declare at least one side")
	}
	for key, class := range c.DocumentSides {
		if err := validateClass("document_sides", key, class); err != nil {
			return err
		}
	}
	return nil
}

func validateClass(section, key string, class DocumentClass) error {
	if key == "" {
		return fmt.Errorf("%s contains an empty key", section)
	}
	if key == "unknown" {
		return fmt.Errorf("%s.%s: \"unknown\" is reserved", section, key)
	}
	total := 0
	for _, kws := range class.Keywords {
		total += len(kws)
	}
	if class.Enabled && total == 0 {
		return fmt.Errorf("%s.%s is enabled but declares no keywords", section, key)
	}
	return nil
}

func (c *Config) validateBoost() error {
	b := c.Boost
	if b.MaxConfidenceCap <= 0 || b.MaxConfidenceCap > 100 {
		return fmt.Errorf("invalid boost max_confidence_cap: %.2f", b.MaxConfidenceCap)
	}
	if b.MaxSpecificityBonus < 0 {
		return fmt.Errorf("invalid boost max_specificity_bonus: %.2f", b.MaxSpecificityBonus)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"poor_ocr_factor", b.Factors.PoorOCRFactor},
		{"medium_ocr_factor", b.Factors.MediumOCRFactor},
		{"poor_ink_factor", b.Factors.PoorInkFactor},
	} {
		if f.value <= 0 || f.value > 1 {
			return fmt.Errorf("invalid boost quality factor %s: %.2f (must be in (0, 1])", f.name, f.value)
		}
	}
	return nil
}

// EnabledDocumentTypes returns the keys of all enabled document types in
// deterministic (sorted) order.
func (c *Config) EnabledDocumentTypes() []string {
	return enabledKeys(c.DocumentTypes)
}

// EnabledDocumentSides returns the keys of all enabled document sides in
// deterministic (sorted) order.
func (c *Config) EnabledDocumentSides() []string {
	return enabledKeys(c.DocumentSides)
}

func enabledKeys(classes map[string]DocumentClass) []string {
	keys := make([]string, 0, len(classes))
	for key, class := range classes {
		if class.Enabled {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
