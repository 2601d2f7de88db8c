package identity

import (
	"strings"
)

const (
	mrzMinChevrons    = 5
	frontShortTextLen = 200
	pairPromoteConf   = 65.0
)

// Curated phrases that strongly indicate one side of an identity card.
// These are fixed heuristics, independent of the configured keyword sets.
var (
	backPhrases = []string{
		"firma", "signature", "scadenza", "expiry", "valid until",
		"issued by", "rilasciato", "sigillo", "timbro", "qr code",
		"barcode", "mrz", "rilascio", "questura", "luogo d",
		"place of birth",
	}
	frontPhrases = []string{
		"identity card", "carta d", "nome", "cognome", "name",
		"surname", "data di nascita", "date of birth",
		"luogo di nascita", "place of birth", "foto", "photo",
		"immagine", "image", "sesso", "gender", "cittadinanza",
		"nationality", "genere", "domicilio", "residenza",
	}
)

// AnalyzeContent inspects raw segment text for structural side evidence:
// an MRZ block and the curated front/back phrase lists.
func AnalyzeContent(text string) ContentAnalysis {
	lowered := strings.ToLower(text)

	analysis := ContentAnalysis{
		MRZScore: strings.Count(text, "<"),
	}
	analysis.HasMRZ = analysis.MRZScore >= mrzMinChevrons

	for _, phrase := range backPhrases {
		if strings.Contains(lowered, phrase) {
			analysis.BackScore++
		}
	}
	for _, phrase := range frontPhrases {
		if strings.Contains(lowered, phrase) {
			analysis.FrontScore++
		}
	}
	analysis.HasBack = analysis.BackScore > 0
	analysis.HasFront = analysis.FrontScore > 0
	return analysis
}

// Correct applies content-based side overrides and two-segment page
// pairing rules. It returns new records; inputs are never mutated.
func Correct(classifications []Classification) []Classification {
	out := make([]Classification, 0, len(classifications))
	for _, cls := range classifications {
		out = append(out, correctSide(cls))
	}
	correctPairs(out)
	return out
}

// correctSide overrides the keyword-scored side when the text itself
// carries stronger structural evidence.
func correctSide(cls Classification) Classification {
	next := cls.clone()
	analysis := AnalyzeContent(cls.Text)
	next.Features.ContentAnalysis = &analysis

	switch {
	case analysis.HasMRZ:
		// MRZ only ever appears on the back; it outranks keywords.
		next.Side = SideBack
		next.Features.DetectionMethod = "mrz_pattern"
	case analysis.HasBack && analysis.BackScore > analysis.FrontScore:
		next.Side = SideBack
		next.Features.DetectionMethod = "back_keywords"
	case analysis.HasFront && analysis.FrontScore > analysis.BackScore:
		next.Side = SideFront
		next.Features.DetectionMethod = "front_keywords"
	case analysis.HasFront && analysis.HasBack:
		// Tied scores: fronts are dense with labels but short on
		// prose, so short text suggests the front of the card.
		if len(cls.Text) < frontShortTextLen {
			next.Side = SideFront
			next.Features.DetectionMethod = "front_keywords_priority"
		} else {
			next.Side = SideBack
			next.Features.DetectionMethod = "back_keywords_priority"
		}
	}
	return next
}

// correctPairs reconciles the two segments cropped from one physical
// page: they are two sides of the same card, so their type and side
// should agree as a front/back pair.
func correctPairs(classifications []Classification) {
	byPage := make(map[string][]int)
	var order []string
	for i, cls := range classifications {
		key := cls.PageKey()
		if _, seen := byPage[key]; !seen {
			order = append(order, key)
		}
		byPage[key] = append(byPage[key], i)
	}

	for _, key := range order {
		idx := byPage[key]
		if len(idx) != 2 {
			continue
		}
		first, second := &classifications[idx[0]], &classifications[idx[1]]
		pairTypes(first, second)
		pairSides(first, second)
	}
}

func contentScore(cls *Classification) int {
	if cls.Features.ContentAnalysis == nil {
		return 0
	}
	return cls.Features.ContentAnalysis.FrontScore + cls.Features.ContentAnalysis.BackScore
}

func pairTypes(first, second *Classification) {
	firstUnknown := first.Type.IsUnknown()
	secondUnknown := second.Type.IsUnknown()

	switch {
	case firstUnknown && secondUnknown:
		// Two card-shaped crops on one page with any identity wording
		// are almost certainly an ID, even when no type keyword
		// survived OCR.
		if contentScore(first) > 0 || contentScore(second) > 0 {
			promoted := KnownType("residential_id")
			first.Type = promoted
			second.Type = promoted
		}
	case firstUnknown:
		first.Type = second.Type
		if first.Confidence < pairPromoteConf {
			first.Confidence = pairPromoteConf
		}
		first.Features.HeuristicApplied = "matched_with_pair"
	case secondUnknown:
		second.Type = first.Type
		if second.Confidence < pairPromoteConf {
			second.Confidence = pairPromoteConf
		}
		second.Features.HeuristicApplied = "matched_with_pair"
	}
}

func pairSides(first, second *Classification) {
	switch {
	case first.Side == SideFront && second.Side == SideUnknown:
		second.Side = SideBack
		second.Features.HeuristicApplied = "paired_front_back"
	case second.Side == SideFront && first.Side == SideUnknown:
		first.Side = SideBack
		first.Features.HeuristicApplied = "paired_front_back"
	case first.Side == SideBack && second.Side == SideUnknown:
		second.Side = SideFront
		second.Features.HeuristicApplied = "paired_back_front"
	case second.Side == SideBack && first.Side == SideUnknown:
		first.Side = SideFront
		first.Features.HeuristicApplied = "paired_back_front"
	case first.Side == SideBack && second.Side == SideBack:
		// Both scored as backs; keep the one with real MRZ evidence
		// and flip the other to the front.
		firstMRZ := first.Features.ContentAnalysis != nil && first.Features.ContentAnalysis.HasMRZ
		secondMRZ := second.Features.ContentAnalysis != nil && second.Features.ContentAnalysis.HasMRZ
		if firstMRZ && !secondMRZ {
			second.Side = SideFront
			second.Features.HeuristicApplied = "mrz_side_correction"
		} else if secondMRZ && !firstMRZ {
			first.Side = SideFront
			first.Features.HeuristicApplied = "mrz_side_correction"
		}
	}
}
