package identity

import (
	"sort"
	"strings"

	"github.com/MeKo-Tech/idscan/internal/config"
)

// Type scoring weights. Side weights are configurable; type weights are
// fixed.
const (
	typeENWeight      = 2.0
	typeOtherWeight   = 1.0
	typeFeatureWeight = 3.0

	// Percent difference above which the higher side score wins
	// outright.
	sideScoreGapPercent = 10.0
)

// Base-confidence contributions.
const (
	ocrWeight        = 0.3
	typeKeywordBoost = 30.0
	sideKeywordBoost = 25.0

	inkNormalMin   = 0.05
	inkNormalMax   = 0.8
	inkNormalBoost = 15.0
	inkSparseMax   = 0.01
	inkSparseDrop  = 20.0
	inkDenseMin    = 0.9
	inkDenseDrop   = 10.0

	textLenMin     = 50
	textLenMax     = 2000
	textLenBoost   = 10.0
	emptyTextDrop  = 30.0
	primaryLangKey = "en"
)

// Classifier scores segments against the configured document types and
// sides.
type Classifier struct {
	cfg      *config.Config
	typeKeys []string
	sideKeys []string
}

// NewClassifier builds a classifier over the enabled document classes.
func NewClassifier(cfg *config.Config) *Classifier {
	return &Classifier{
		cfg:      cfg,
		typeKeys: cfg.EnabledDocumentTypes(),
		sideKeys: cfg.EnabledDocumentSides(),
	}
}

// KnownTypes returns the config-declared type keys in stable order.
func (c *Classifier) KnownTypes() []string { return c.typeKeys }

// Classify scores a segment and returns its classification. The ink
// ratio and OCR confidence come from the caller's earlier measurements.
func (c *Classifier) Classify(pageLabel, text string, inkRatio, ocrConfidence float64) Classification {
	feats := c.extractFeatures(text, inkRatio, ocrConfidence)
	docType := c.classifyType(text, feats)
	docSide := c.classifySide(text, feats)
	confidence := c.baseConfidence(feats, docType, docSide)

	return Classification{
		PageLabel:  pageLabel,
		Type:       docType,
		Side:       docSide,
		Confidence: confidence,
		Text:       text,
		Features:   feats,
	}
}

func (c *Classifier) extractFeatures(text string, inkRatio, ocrConfidence float64) Features {
	feats := Features{
		InkRatio:      inkRatio,
		OCRConfidence: ocrConfidence,
		TextLength:    len(text),
		WordCount:     len(strings.Fields(text)),
		TypeMatches:   make(map[string]bool, len(c.typeKeys)),
		SideMatches:   make(map[string]bool, len(c.sideKeys)),
	}
	lowered := strings.ToLower(text)
	for _, key := range c.typeKeys {
		feats.TypeMatches[key] = hasAnyKeyword(lowered, c.cfg.DocumentTypes[key].Keywords)
	}
	for _, key := range c.sideKeys {
		feats.SideMatches[key] = hasAnyKeyword(lowered, c.cfg.DocumentSides[key].Keywords)
	}
	return feats
}

func hasAnyKeyword(lowered string, groups map[string][]string) bool {
	for _, keywords := range groups {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}

// countKeywordMatches returns how many keywords of the group appear in
// the text.
func countKeywordMatches(lowered string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
			count++
		}
	}
	return count
}

// classifyType picks the highest-scoring configured type; ties keep the
// first-seen key, zero everywhere yields Unknown.
func (c *Classifier) classifyType(text string, feats Features) DocumentType {
	lowered := strings.ToLower(text)

	best := ""
	bestScore := 0.0
	for _, key := range c.typeKeys {
		keywords := c.cfg.DocumentTypes[key].Keywords
		score := typeENWeight * float64(countKeywordMatches(lowered, keywords[primaryLangKey]))
		for lang, list := range keywords {
			if lang == primaryLangKey {
				continue
			}
			score += typeOtherWeight * float64(countKeywordMatches(lowered, list))
		}
		if feats.TypeMatches[key] {
			score += typeFeatureWeight
		}
		if score > bestScore {
			bestScore = score
			best = key
		}
	}
	if bestScore <= 0 {
		return UnknownType()
	}
	return KnownType(best)
}

// classifySide scores front vs back with configurable weights. In the
// moderate OCR band keyword evidence outweighs layout noise, so all
// weights scale up.
func (c *Classifier) classifySide(text string, feats Features) DocumentSide {
	lowered := strings.ToLower(text)
	weights := c.cfg.SideWeights

	multiplier := 1.0
	if feats.OCRConfidence >= weights.ModerateOCRMin && feats.OCRConfidence <= weights.ModerateOCRMax {
		multiplier = weights.ModerateMultiplier
	}

	scores := make(map[string]float64, len(c.sideKeys))
	for _, key := range c.sideKeys {
		keywords := c.cfg.DocumentSides[key].Keywords
		score := weights.ENWeight * multiplier * float64(countKeywordMatches(lowered, keywords[primaryLangKey]))
		for lang, list := range keywords {
			if lang == primaryLangKey {
				continue
			}
			score += weights.OtherWeight * multiplier * float64(countKeywordMatches(lowered, list))
		}
		if feats.SideMatches[key] {
			score += weights.FeatureWeight * multiplier
		}
		scores[key] = score
	}

	frontScore := scores[string(SideFront)]
	backScore := scores[string(SideBack)]

	switch {
	case frontScore > 0 && backScore > 0:
		higher := frontScore
		if backScore > higher {
			higher = backScore
		}
		diffPercent := (frontScore - backScore) / higher * 100
		if diffPercent < 0 {
			diffPercent = -diffPercent
		}
		if diffPercent > sideScoreGapPercent {
			if frontScore > backScore {
				return SideFront
			}
			return SideBack
		}
		return c.tiebreakSide(lowered)
	case frontScore > 0:
		return SideFront
	case backScore > 0:
		return SideBack
	default:
		return SideUnknown
	}
}

// tiebreakSide resolves close scores with the strong-indicator phrase
// lists, defaulting to front: identity cards showing personal data are
// front faces.
func (c *Classifier) tiebreakSide(lowered string) DocumentSide {
	strongFront := containsAny(lowered, c.cfg.SideTiebreak.StrongFront)
	strongBack := containsAny(lowered, c.cfg.SideTiebreak.StrongBack)

	switch {
	case strongFront && !strongBack:
		return SideFront
	case strongBack && !strongFront:
		return SideBack
	default:
		return SideFront
	}
}

func containsAny(lowered string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(lowered, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// baseConfidence combines OCR quality, keyword evidence, ink density
// and text volume into a 0-100 score.
func (c *Classifier) baseConfidence(feats Features, docType DocumentType, docSide DocumentSide) float64 {
	confidence := feats.OCRConfidence * ocrWeight

	if !docType.IsUnknown() && feats.TypeMatches[docType.Key()] {
		confidence += typeKeywordBoost
	}
	if docSide == SideFront || docSide == SideBack {
		if feats.SideMatches[string(docSide)] {
			confidence += sideKeywordBoost
		}
	}

	switch {
	case feats.InkRatio >= inkNormalMin && feats.InkRatio <= inkNormalMax:
		confidence += inkNormalBoost
	case feats.InkRatio < inkSparseMax:
		confidence -= inkSparseDrop
	case feats.InkRatio > inkDenseMin:
		confidence -= inkDenseDrop
	}

	switch {
	case feats.TextLength >= textLenMin && feats.TextLength <= textLenMax:
		confidence += textLenBoost
	case feats.TextLength == 0:
		confidence -= emptyTextDrop
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}

// sortedKeys gives deterministic iteration over match maps.
func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
