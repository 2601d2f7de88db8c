// Package identity classifies document segments into type and side and
// refines the results with cross-document evidence.
package identity

import (
	"encoding/json"
	"strings"
)

const unknownKey = "unknown"

// DocumentType is a tagged variant: either a type key declared in the
// configuration or Unknown. The zero value is Unknown.
type DocumentType struct {
	key string
}

// KnownType wraps a config-declared type key. Callers validate the key
// against the configuration before constructing one; ParseDocumentType
// does this for external input.
func KnownType(key string) DocumentType {
	if key == "" || strings.EqualFold(key, unknownKey) {
		return DocumentType{}
	}
	return DocumentType{key: strings.ToLower(key)}
}

// UnknownType is the absent classification.
func UnknownType() DocumentType { return DocumentType{} }

// ParseDocumentType resolves a key against the set of configured types.
// Keys not in the set map to Unknown.
func ParseDocumentType(key string, known []string) DocumentType {
	lowered := strings.ToLower(key)
	for _, k := range known {
		if k == lowered {
			return DocumentType{key: k}
		}
	}
	return DocumentType{}
}

func (t DocumentType) IsUnknown() bool { return t.key == "" }

// Key returns the config key, or "unknown".
func (t DocumentType) Key() string {
	if t.key == "" {
		return unknownKey
	}
	return t.key
}

func (t DocumentType) String() string { return t.Key() }

func (t DocumentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Key())
}

func (t *DocumentType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = KnownType(s)
	return nil
}

// DocumentSide is which face of a two-sided document a segment shows.
type DocumentSide string

const (
	SideFront DocumentSide = "front"
	SideBack  DocumentSide = "back"
	// SideBoth is part of the record vocabulary for documents that show
	// both faces in one segment; no current scoring rule assigns it.
	SideBoth    DocumentSide = "both"
	SideUnknown DocumentSide = "unknown"
)

// ContentAnalysis is the corrector's view of a segment's text.
type ContentAnalysis struct {
	HasMRZ     bool `json:"has_mrz"`
	MRZScore   int  `json:"mrz_score"`
	FrontScore int  `json:"front_score"`
	BackScore  int  `json:"back_score"`
	HasFront   bool `json:"has_front_keywords"`
	HasBack    bool `json:"has_back_keywords"`
}

// Adjustment is the cross-document confidence breakdown, stored for
// explainability.
type Adjustment struct {
	FrequencyBoost       float64 `json:"frequency_boost"`
	SpecificityBonus     float64 `json:"specificity_bonus"`
	ConsistencyBonus     float64 `json:"consistency_bonus"`
	QualityFactor        float64 `json:"quality_factor"`
	TotalAdjustment      float64 `json:"total_adjustment"`
	MatchedKeywordCount  int     `json:"matched_keyword_count"`
	CrossDocumentMatches int     `json:"cross_document_matches"`
}

// Features collects the signals extracted for one segment.
type Features struct {
	InkRatio      float64         `json:"ink_ratio"`
	OCRConfidence float64         `json:"ocr_confidence"`
	TextLength    int             `json:"text_length"`
	WordCount     int             `json:"word_count"`
	TypeMatches   map[string]bool `json:"document_type_keyword_matches"`
	SideMatches   map[string]bool `json:"document_side_keyword_matches"`

	ContentAnalysis  *ContentAnalysis `json:"content_analysis,omitempty"`
	Adjustment       *Adjustment      `json:"confidence_adjustment,omitempty"`
	DetectionMethod  string           `json:"detection_method,omitempty"`
	HeuristicApplied string           `json:"heuristic_applied,omitempty"`
}

// Classification is the result for one document segment.
type Classification struct {
	// PageLabel is the page number, with a "-<n>" suffix when several
	// documents share a page (e.g. "2-1").
	PageLabel  string       `json:"page_number"`
	Type       DocumentType `json:"document_type"`
	Side       DocumentSide `json:"document_side"`
	Confidence float64      `json:"confidence"`
	Text       string       `json:"text_content"`
	Features   Features     `json:"features"`
}

// PageKey strips the sub-document suffix so segments from the same
// physical page group together.
func (c Classification) PageKey() string {
	if i := strings.IndexByte(c.PageLabel, '-'); i >= 0 {
		return c.PageLabel[:i]
	}
	return c.PageLabel
}

func (c Classification) clone() Classification {
	out := c
	out.Features.TypeMatches = cloneBoolMap(c.Features.TypeMatches)
	out.Features.SideMatches = cloneBoolMap(c.Features.SideMatches)
	if c.Features.ContentAnalysis != nil {
		ca := *c.Features.ContentAnalysis
		out.Features.ContentAnalysis = &ca
	}
	if c.Features.Adjustment != nil {
		adj := *c.Features.Adjustment
		out.Features.Adjustment = &adj
	}
	return out
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	if m == nil {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
