package identity

import (
	"strings"

	"github.com/MeKo-Tech/idscan/internal/config"
)

// categoryStats tracks how often a keyword category matched across one
// file's segments and which keyword strings were responsible.
type categoryStats struct {
	Count    int
	Keywords map[string]struct{}
}

// FrequencyTable aggregates keyword evidence across all segments of a
// single file. Cross-file state never exists; each file builds its own
// table.
type FrequencyTable struct {
	Types map[string]*categoryStats
	Sides map[string]*categoryStats
	Total int
}

// BuildFrequencyTable counts matched categories and collects their
// matched keyword strings over the given classifications.
func BuildFrequencyTable(cfg *config.Config, classifications []Classification) FrequencyTable {
	table := FrequencyTable{
		Types: make(map[string]*categoryStats),
		Sides: make(map[string]*categoryStats),
		Total: len(classifications),
	}

	for _, cls := range classifications {
		lowered := strings.ToLower(cls.Text)
		for _, key := range sortedKeys(cls.Features.TypeMatches) {
			if !cls.Features.TypeMatches[key] {
				continue
			}
			stats := table.Types[key]
			if stats == nil {
				stats = &categoryStats{Keywords: make(map[string]struct{})}
				table.Types[key] = stats
			}
			stats.Count++
			collectMatchedKeywords(lowered, cfg.DocumentTypes[key].Keywords, stats.Keywords)
		}
		for _, key := range sortedKeys(cls.Features.SideMatches) {
			if !cls.Features.SideMatches[key] {
				continue
			}
			stats := table.Sides[key]
			if stats == nil {
				stats = &categoryStats{Keywords: make(map[string]struct{})}
				table.Sides[key] = stats
			}
			stats.Count++
			collectMatchedKeywords(lowered, cfg.DocumentSides[key].Keywords, stats.Keywords)
		}
	}
	return table
}

func collectMatchedKeywords(lowered string, groups map[string][]string, into map[string]struct{}) {
	for _, keywords := range groups {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
				into[kw] = struct{}{}
			}
		}
	}
}

// Adjust applies the cross-document confidence boost and returns new
// classification records; inputs are never mutated.
func Adjust(boost config.BoostConfig, table FrequencyTable, classifications []Classification) []Classification {
	out := make([]Classification, 0, len(classifications))
	for _, cls := range classifications {
		out = append(out, adjustOne(boost, table, cls))
	}
	return out
}

func adjustOne(boost config.BoostConfig, table FrequencyTable, cls Classification) Classification {
	next := cls.clone()

	adj := Adjustment{QualityFactor: 1.0}

	matchedTypes := matchedCategories(cls.Features.TypeMatches)
	matchedSides := matchedCategories(cls.Features.SideMatches)
	adj.MatchedKeywordCount = len(matchedTypes) + len(matchedSides)

	// Evidence recurring across pages of one submission outweighs a
	// one-off hit.
	for _, key := range matchedTypes {
		if stats, ok := table.Types[key]; ok && stats.Count > adj.CrossDocumentMatches {
			adj.CrossDocumentMatches = stats.Count
		}
	}
	switch {
	case adj.CrossDocumentMatches >= 3:
		adj.FrequencyBoost = boost.TriplePlusMatchBoost
	case adj.CrossDocumentMatches == 2:
		adj.FrequencyBoost = boost.DoubleMatchBoost
	case adj.CrossDocumentMatches == 1:
		adj.FrequencyBoost = boost.SingleMatchBoost
	}

	// Multi-word keywords are more specific evidence.
	specificity := 0.0
	for _, key := range matchedTypes {
		stats, ok := table.Types[key]
		if !ok {
			continue
		}
		for kw := range stats.Keywords {
			switch wordCount := len(strings.Fields(kw)); {
			case wordCount >= 3:
				specificity += boost.Specificity.ThreePlusWord
			case wordCount == 2:
				specificity += boost.Specificity.TwoWords
			default:
				specificity += boost.Specificity.SingleWord
			}
		}
	}
	if specificity > boost.MaxSpecificityBonus {
		specificity = boost.MaxSpecificityBonus
	}
	adj.SpecificityBonus = specificity

	switch {
	case adj.MatchedKeywordCount >= 3:
		adj.ConsistencyBonus = boost.Consistency.ThreePlusMatches
	case adj.MatchedKeywordCount >= 2:
		adj.ConsistencyBonus = boost.Consistency.TwoMatches
	}

	// Keyword matches from garbled OCR are less trustworthy.
	factors := boost.Factors
	switch {
	case cls.Features.OCRConfidence < factors.PoorOCRThreshold:
		adj.QualityFactor = factors.PoorOCRFactor
	case cls.Features.OCRConfidence < factors.MediumOCRThreshold:
		adj.QualityFactor = factors.MediumOCRFactor
	}
	if cls.Features.InkRatio < factors.PoorInkRatioMin || cls.Features.InkRatio > factors.PoorInkRatioMax {
		adj.QualityFactor *= factors.PoorInkFactor
	}

	adj.TotalAdjustment = (adj.FrequencyBoost + adj.SpecificityBonus + adj.ConsistencyBonus) * adj.QualityFactor

	next.Confidence = cls.Confidence + adj.TotalAdjustment
	if next.Confidence > boost.MaxConfidenceCap {
		next.Confidence = boost.MaxConfidenceCap
	}
	next.Features.Adjustment = &adj
	return next
}

func matchedCategories(matches map[string]bool) []string {
	var keys []string
	for _, key := range sortedKeys(matches) {
		if matches[key] {
			keys = append(keys, key)
		}
	}
	return keys
}
