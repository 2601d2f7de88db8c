package ocr

import (
	"regexp"
	"strings"
)

var (
	controlCharsRe = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f\x{FFFD}]`)
	garbageRunsRe  = regexp.MustCompile(`[?\x{2022}]{4,}`)
	spacesRe       = regexp.MustCompile(` {2,}`)
	tabsRe         = regexp.MustCompile(`\t+`)
	newlinesRe     = regexp.MustCompile(`\n{3,}`)
)

// CleanText strips control characters, replacement glyphs and OCR
// garbage runs, then normalizes whitespace line by line.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\x00", "")
	text = controlCharsRe.ReplaceAllString(text, "")
	text = garbageRunsRe.ReplaceAllString(text, "")
	text = spacesRe.ReplaceAllString(text, " ")
	text = tabsRe.ReplaceAllString(text, " ")
	text = newlinesRe.ReplaceAllString(text, "\n")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
