package ocr

import (
	"sort"
	"strings"
)

// LanguageDetector guesses the document language from keyword hits in a
// first-pass OCR text. Keyword sets come from configuration; detection
// is a cheap substring count, not a statistical model.
type LanguageDetector struct {
	primary  string
	keywords map[string][]string
}

// NewLanguageDetector builds a detector with per-language keyword sets
// and the language used when nothing matches.
func NewLanguageDetector(primary string, keywords map[string][]string) *LanguageDetector {
	return &LanguageDetector{primary: primary, keywords: keywords}
}

// Detect returns the language whose keywords match the artifact-filtered
// text most often. Ties and zero matches fall back to the primary
// language.
func (d *LanguageDetector) Detect(text string) string {
	filtered := strings.ToLower(FilterArtifacts(text))
	if filtered == "" {
		return d.primary
	}

	// Deterministic iteration so ties resolve the same way every run.
	langs := make([]string, 0, len(d.keywords))
	for lang := range d.keywords {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	best := d.primary
	bestCount := 0
	tied := false
	for _, lang := range langs {
		count := 0
		for _, kw := range d.keywords[lang] {
			if kw == "" {
				continue
			}
			count += strings.Count(filtered, strings.ToLower(kw))
		}
		switch {
		case count > bestCount:
			best = lang
			bestCount = count
			tied = false
		case count == bestCount && count > 0:
			tied = true
		}
	}
	if bestCount == 0 || tied {
		return d.primary
	}
	return best
}
