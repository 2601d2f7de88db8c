package pipeline

import (
	"time"

	"github.com/MeKo-Tech/idscan/internal/identity"
)

// PageResult carries the quality metrics for one extracted page.
type PageResult struct {
	Number       int     `json:"page"`
	InkRatio     float64 `json:"ink_ratio"`
	Confidence   float64 `json:"confidence"`
	Language     string  `json:"language"`
	Text         string  `json:"text_content"`
	Empty        bool    `json:"empty"`
	Readable     bool    `json:"readable"`
	Synthetic    bool    `json:"synthetic,omitempty"`
	SegmentCount int     `json:"segment_count"`
}

// FileResult is the complete analysis of one input file.
type FileResult struct {
	Source          string                    `json:"file"`
	Pages           []PageResult              `json:"pages"`
	Classifications []identity.Classification `json:"classifications"`
	Elapsed         time.Duration             `json:"-"`
	ElapsedMS       int64                     `json:"elapsed_ms"`
}

// ReadablePages counts pages whose OCR confidence cleared the
// readability threshold.
func (r *FileResult) ReadablePages() int {
	n := 0
	for _, p := range r.Pages {
		if p.Readable {
			n++
		}
	}
	return n
}

// EmptyPages counts pages below the emptiness ink-ratio threshold.
func (r *FileResult) EmptyPages() int {
	n := 0
	for _, p := range r.Pages {
		if p.Empty {
			n++
		}
	}
	return n
}

// IdentifiedDocuments counts classifications with a known document
// type.
func (r *FileResult) IdentifiedDocuments() int {
	n := 0
	for _, c := range r.Classifications {
		if !c.Type.IsUnknown() {
			n++
		}
	}
	return n
}
