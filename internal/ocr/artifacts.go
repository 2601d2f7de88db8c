package ocr

import (
	"regexp"
	"strings"
	"unicode"
)

// Screenshot noise that leaks into scans of re-photographed documents:
// browser chrome, file paths, timestamps, image dimension labels. These
// tokens would drag confidence scores toward UI text instead of document
// content.
var artifactPatterns = []string{
	// File paths (Windows, Mac, Linux)
	`file:///[A-Za-z]:/\S+`,
	`file:///\S+`,
	`[A-Za-z]:\\\S+`,
	`/Users/\S+`,
	`/home/\S+`,

	// URLs
	`https?://\S+`,
	`www\.\S+`,

	// Timestamps
	`\d{1,2}/\d{1,2}/\d{2,4},?\s*\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM|am|pm)?`,
	`\d{4}-\d{2}-\d{2}[T\s]\d{2}:\d{2}`,
	`\d{2}-\d{2}-\d{4}\s+\d{2}:\d{2}`,

	// File names with extensions, optionally followed by dimensions
	`[A-Za-z0-9_-]+\.(?:png|jpg|jpeg|gif|bmp|pdf|txt|doc|docx)(?:\s*\(\d+x\d+\))?`,

	// Known web-asset hostnames and titles
	`storyblok\.png`,
	`Italian_electronic_ID_card`,
	`wikimedia\.org`,
	`upload\.`,

	// Dimension labels
	`\(\d+x\d+\)`,
	`\d{3,4}\*\d{3,4}`,

	// Application window titles
	`Adobe Acrobat`,
	`PDF Reader`,
	`Microsoft Edge`,
	`Google Chrome`,
	`Preview`,
}

var (
	compiledArtifacts = compileArtifacts()
	multiSpaceRe      = regexp.MustCompile(`\s{2,}`)
	blankLinesRe      = regexp.MustCompile(`\n\s*\n`)
	noiseLineRe       = regexp.MustCompile(`^[\d\s\W]+$`)
)

func compileArtifacts() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(artifactPatterns))
	for i, p := range artifactPatterns {
		res[i] = regexp.MustCompile(`(?i)` + p)
	}
	return res
}

// FilterArtifacts removes screenshot noise from OCR text and normalizes
// the remaining whitespace.
func FilterArtifacts(text string) string {
	if text == "" {
		return text
	}
	cleaned := text
	for _, re := range compiledArtifacts {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = multiSpaceRe.ReplaceAllString(cleaned, " ")
	cleaned = blankLinesRe.ReplaceAllString(cleaned, "\n")
	return strings.TrimSpace(cleaned)
}

// FilterForConfidence is the aggressive variant used before confidence
// scoring: after artifact removal it additionally drops lines that are
// mostly non-letter noise.
func FilterForConfidence(text string) string {
	if text == "" {
		return text
	}
	cleaned := FilterArtifacts(text)

	var meaningful []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		alpha := 0
		for _, r := range line {
			if unicode.IsLetter(r) {
				alpha++
			}
		}
		if float64(alpha)/float64(len([]rune(line))) < 0.3 {
			continue
		}
		if noiseLineRe.MatchString(line) && len(line) < 10 {
			continue
		}
		meaningful = append(meaningful, line)
	}
	return strings.Join(meaningful, "\n")
}

// HasArtifacts reports whether text matches any known artifact pattern.
func HasArtifacts(text string) bool {
	if text == "" {
		return false
	}
	for _, re := range compiledArtifacts {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsArtifactToken reports whether a single OCR token is screenshot
// noise rather than document content.
func IsArtifactToken(token string) bool {
	return HasArtifacts(token)
}
