package ocr

import (
	"context"
	"strings"
	"sync"
)

// FakeEngine is a scripted Engine for tests and dry runs. It returns
// canned tokens per language without touching a real OCR backend.
type FakeEngine struct {
	mu sync.Mutex

	// TokensByLanguage maps language code to the tokens returned for it.
	// The empty-string key is the default script.
	TokensByLanguage map[string][]Token

	// FailLanguages lists languages whose requests fail, simulating a
	// missing traineddata file.
	FailLanguages []string

	// Requests records every request seen, in order.
	Requests []Request
}

// NewFakeEngine builds a fake whose default script tokenizes text into
// words with the given uniform confidence.
func NewFakeEngine(text string, confidence float64) *FakeEngine {
	return &FakeEngine{
		TokensByLanguage: map[string][]Token{"": TokensFromText(text, confidence)},
	}
}

// TokensFromText splits text on whitespace into tokens with a uniform
// confidence. Useful for scripting fakes.
func TokensFromText(text string, confidence float64) []Token {
	fields := strings.Fields(text)
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, Token{Text: f, Confidence: confidence})
	}
	return tokens
}

func (e *FakeEngine) Recognize(ctx context.Context, req Request) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.Requests = append(e.Requests, req)

	for _, lang := range e.FailLanguages {
		if lang == req.Language {
			return nil, &RecognitionError{Language: req.Language, Err: ErrEngineUnavailable}
		}
	}

	if tokens, ok := e.TokensByLanguage[req.Language]; ok {
		return tokens, nil
	}
	return e.TokensByLanguage[""], nil
}

func (e *FakeEngine) Close() error { return nil }

// SeenLayouts returns the layout mode of every recorded request.
func (e *FakeEngine) SeenLayouts() []LayoutMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	modes := make([]LayoutMode, len(e.Requests))
	for i, r := range e.Requests {
		modes[i] = r.Layout
	}
	return modes
}
