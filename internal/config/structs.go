//nolint:lll
package config

// Config represents the complete configuration for the idscan application.
// It is loaded once at startup and passed by pointer into every component
// constructor; components treat it as read-only.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// OCR engine settings
	OCR OCRConfig `mapstructure:"ocr" yaml:"ocr" json:"ocr"`

	// Document segmentation thresholds
	Detection DetectionConfig `mapstructure:"detection" yaml:"detection" json:"detection"`

	// Configured document types and sides, keyed by their identifier
	// (e.g. "residential_id", "aadhaar" / "front", "back").
	DocumentTypes map[string]DocumentClass `mapstructure:"document_types" yaml:"document_types" json:"document_types"`
	DocumentSides map[string]DocumentClass `mapstructure:"document_sides" yaml:"document_sides" json:"document_sides"`

	// Side classification weights
	SideWeights SideWeights `mapstructure:"side_detection_weights" yaml:"side_detection_weights" json:"side_detection_weights"`

	// Side tie-break phrase lists
	SideTiebreak SideTiebreak `mapstructure:"side_tiebreak" yaml:"side_tiebreak" json:"side_tiebreak"`

	// Cross-document confidence boost settings
	Boost BoostConfig `mapstructure:"confidence_boost_settings" yaml:"confidence_boost_settings" json:"confidence_boost_settings"`

	// Page-level quality thresholds
	Quality QualityConfig `mapstructure:"quality" yaml:"quality" json:"quality"`

	// Language detection keyword sets, keyed by OCR language code
	// (e.g. "eng", "ita").
	Languages LanguageConfig `mapstructure:"languages" yaml:"languages" json:"languages"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// DocumentClass describes a configured document type or side: its display
// metadata and the keyword lists used for classification, grouped per
// language ("en" plus any others).
type DocumentClass struct {
	Label       string              `mapstructure:"label" yaml:"label" json:"label"`
	DisplayName string              `mapstructure:"display_name" yaml:"display_name" json:"display_name"`
	Aliases     []string            `mapstructure:"aliases" yaml:"aliases" json:"aliases"`
	Color       []int               `mapstructure:"color" yaml:"color" json:"color"`
	Enabled     bool                `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Keywords    map[string][]string `mapstructure:"keywords" yaml:"keywords" json:"keywords"`
}

// OCRConfig contains OCR engine settings.
type OCRConfig struct {
	// Language is the primary OCR language (Tesseract code, e.g. "ita").
	Language string `mapstructure:"language" yaml:"language" json:"language"`
	// FallbackLanguage is used when the requested language pack is absent.
	FallbackLanguage string `mapstructure:"fallback_language" yaml:"fallback_language" json:"fallback_language"`
	// TimeoutSec bounds a single OCR call; malformed images can make
	// layout analysis pathologically slow.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// DetectionConfig contains document segmentation thresholds, tuned for
// ID-card-like rectangles.
type DetectionConfig struct {
	MinAreaPercent float64 `mapstructure:"min_document_area_percent" yaml:"min_document_area_percent" json:"min_document_area_percent"`
	MaxAreaPercent float64 `mapstructure:"max_document_area_percent" yaml:"max_document_area_percent" json:"max_document_area_percent"`
	MinAspectRatio float64 `mapstructure:"min_aspect_ratio" yaml:"min_aspect_ratio" json:"min_aspect_ratio"`
	MaxAspectRatio float64 `mapstructure:"max_aspect_ratio" yaml:"max_aspect_ratio" json:"max_aspect_ratio"`
	PaddingPercent float64 `mapstructure:"padding_percent" yaml:"padding_percent" json:"padding_percent"`
	IoUThreshold   float64 `mapstructure:"iou_threshold" yaml:"iou_threshold" json:"iou_threshold"`
}

// SideWeights contains the weighted-scoring parameters for front/back
// classification.
type SideWeights struct {
	ENWeight      float64 `mapstructure:"en_weight" yaml:"en_weight" json:"en_weight"`
	OtherWeight   float64 `mapstructure:"other_weight" yaml:"other_weight" json:"other_weight"`
	FeatureWeight float64 `mapstructure:"feature_weight" yaml:"feature_weight" json:"feature_weight"`
	// Keyword weights are multiplied by ModerateMultiplier when OCR
	// confidence falls inside [ModerateOCRMin, ModerateOCRMax].
	ModerateOCRMin     float64 `mapstructure:"moderate_ocr_min" yaml:"moderate_ocr_min" json:"moderate_ocr_min"`
	ModerateOCRMax     float64 `mapstructure:"moderate_ocr_max" yaml:"moderate_ocr_max" json:"moderate_ocr_max"`
	ModerateMultiplier float64 `mapstructure:"moderate_ocr_side_multiplier" yaml:"moderate_ocr_side_multiplier" json:"moderate_ocr_side_multiplier"`
}

// SideTiebreak holds the indicator phrases used when front and back scores
// are within 10% of each other.
type SideTiebreak struct {
	StrongFront []string `mapstructure:"strong_front" yaml:"strong_front" json:"strong_front"`
	StrongBack  []string `mapstructure:"strong_back" yaml:"strong_back" json:"strong_back"`
}

// BoostConfig contains parameters for the cross-document confidence
// adjustment pass.
type BoostConfig struct {
	SingleMatchBoost     float64 `mapstructure:"single_match_boost" yaml:"single_match_boost" json:"single_match_boost"`
	DoubleMatchBoost     float64 `mapstructure:"double_match_boost" yaml:"double_match_boost" json:"double_match_boost"`
	TriplePlusMatchBoost float64 `mapstructure:"triple_plus_match_boost" yaml:"triple_plus_match_boost" json:"triple_plus_match_boost"`
	MaxSpecificityBonus  float64 `mapstructure:"max_specificity_bonus" yaml:"max_specificity_bonus" json:"max_specificity_bonus"`
	MaxConfidenceCap     float64 `mapstructure:"max_confidence_cap" yaml:"max_confidence_cap" json:"max_confidence_cap"`

	Specificity SpecificityBonus   `mapstructure:"specificity_bonus_per_word" yaml:"specificity_bonus_per_word" json:"specificity_bonus_per_word"`
	Consistency ConsistencyBonus   `mapstructure:"consistency_bonus" yaml:"consistency_bonus" json:"consistency_bonus"`
	Factors     QualityFactors     `mapstructure:"quality_factors" yaml:"quality_factors" json:"quality_factors"`
}

// SpecificityBonus awards more points for longer (multi-word) keywords.
type SpecificityBonus struct {
	SingleWord    float64 `mapstructure:"single_word" yaml:"single_word" json:"single_word"`
	TwoWords      float64 `mapstructure:"two_words" yaml:"two_words" json:"two_words"`
	ThreePlusWord float64 `mapstructure:"three_plus_words" yaml:"three_plus_words" json:"three_plus_words"`
}

// ConsistencyBonus rewards segments matching multiple distinct keyword
// categories.
type ConsistencyBonus struct {
	TwoMatches       float64 `mapstructure:"two_matches" yaml:"two_matches" json:"two_matches"`
	ThreePlusMatches float64 `mapstructure:"three_plus_matches" yaml:"three_plus_matches" json:"three_plus_matches"`
}

// QualityFactors scale the boost down when OCR or ink quality is poor.
type QualityFactors struct {
	PoorOCRThreshold   float64 `mapstructure:"poor_ocr_threshold" yaml:"poor_ocr_threshold" json:"poor_ocr_threshold"`
	PoorOCRFactor      float64 `mapstructure:"poor_ocr_factor" yaml:"poor_ocr_factor" json:"poor_ocr_factor"`
	MediumOCRThreshold float64 `mapstructure:"medium_ocr_threshold" yaml:"medium_ocr_threshold" json:"medium_ocr_threshold"`
	MediumOCRFactor    float64 `mapstructure:"medium_ocr_factor" yaml:"medium_ocr_factor" json:"medium_ocr_factor"`
	PoorInkRatioMin    float64 `mapstructure:"poor_ink_ratio_min" yaml:"poor_ink_ratio_min" json:"poor_ink_ratio_min"`
	PoorInkRatioMax    float64 `mapstructure:"poor_ink_ratio_max" yaml:"poor_ink_ratio_max" json:"poor_ink_ratio_max"`
	PoorInkFactor      float64 `mapstructure:"poor_ink_factor" yaml:"poor_ink_factor" json:"poor_ink_factor"`
}

// QualityConfig contains the page-level emptiness and readability
// thresholds applied by collaborators on top of the core metrics.
type QualityConfig struct {
	// EmptinessInkRatio is the minimum ink ratio for a page to count as
	// non-empty (fraction, not percent).
	EmptinessInkRatio float64 `mapstructure:"emptiness_ink_ratio" yaml:"emptiness_ink_ratio" json:"emptiness_ink_ratio"`
	// ReadabilityConfidence is the minimum OCR confidence for a page to
	// count as readable.
	ReadabilityConfidence float64 `mapstructure:"readability_confidence" yaml:"readability_confidence" json:"readability_confidence"`
}

// LanguageConfig drives keyword-evidence language detection.
type LanguageConfig struct {
	// Primary is the language used for first-pass OCR and as the
	// fallback when detection is inconclusive.
	Primary string `mapstructure:"primary" yaml:"primary" json:"primary"`
	// Keywords maps an OCR language code to evidence words for it.
	Keywords map[string][]string `mapstructure:"keywords" yaml:"keywords" json:"keywords"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}
