package ocr

import (
	"context"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/MeKo-Tech/idscan/internal/utils"
)

// SpeedTier selects the accuracy/latency tradeoff for a confidence
// measurement.
type SpeedTier string

const (
	// TierSuperfast downsizes aggressively and assumes one text line.
	TierSuperfast SpeedTier = "superfast"
	// TierFast keeps full resolution, one pass, artifact-aware scoring.
	TierFast SpeedTier = "fast"
	// TierBalanced downsizes moderately with one enhancement retry.
	TierBalanced SpeedTier = "balanced"
	// TierAccurate keeps full resolution and retries across layouts.
	TierAccurate SpeedTier = "accurate"
)

// ParseSpeedTier validates a tier name, defaulting to balanced.
func ParseSpeedTier(s string) SpeedTier {
	switch SpeedTier(strings.ToLower(s)) {
	case TierSuperfast, TierFast, TierBalanced, TierAccurate:
		return SpeedTier(strings.ToLower(s))
	default:
		return TierBalanced
	}
}

const (
	superfastMaxDim = 400
	balancedMaxDim  = 800

	// Below this confidence the balanced and accurate tiers try again
	// on an enhanced image.
	retryThreshold = 15.0

	// Accurate tier stops retrying layouts once it reaches this score.
	accurateEarlyExit = 20.0

	alnumWhitelist = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Score is the outcome of a confidence measurement.
type Score struct {
	Confidence float64
	Tokens     []Token
	Text       string
	Language   string
	Tier       SpeedTier
	Elapsed    time.Duration
}

// ConfidenceEngine measures how confidently a page can be read, at a
// chosen speed tier. Language-not-installed failures retry once on the
// fallback language before surfacing a zero score.
type ConfidenceEngine struct {
	engine       Engine
	fallbackLang string
	logger       *slog.Logger
}

// NewConfidenceEngine wires a recognition engine with a fallback
// language for retries.
func NewConfidenceEngine(engine Engine, fallbackLang string, logger *slog.Logger) *ConfidenceEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfidenceEngine{engine: engine, fallbackLang: fallbackLang, logger: logger}
}

// Measure runs the tier's recognition strategy and returns the score.
func (e *ConfidenceEngine) Measure(ctx context.Context, img image.Image, tier SpeedTier, lang string) Score {
	start := time.Now()
	var score Score
	switch tier {
	case TierSuperfast:
		score = e.measureSuperfast(ctx, img, lang)
	case TierFast:
		score = e.measureFast(ctx, img, lang)
	case TierAccurate:
		score = e.measureAccurate(ctx, img, lang)
	case TierBalanced:
		score = e.measureBalanced(ctx, img, lang)
	default:
		score = e.measureBalanced(ctx, img, lang)
	}
	score.Tier = tier
	score.Elapsed = time.Since(start)
	return score
}

func (e *ConfidenceEngine) measureSuperfast(ctx context.Context, img image.Image, lang string) Score {
	small := downscale(img, superfastMaxDim)
	tokens, usedLang, ok := e.recognizeWithFallback(ctx, Request{
		Image:    small,
		Language: lang,
		Layout:   LayoutSingleLine,
	})
	if !ok {
		return Score{Language: usedLang}
	}
	return Score{
		Confidence: MeanConfidence(tokens),
		Tokens:     tokens,
		Text:       JoinTokens(tokens),
		Language:   usedLang,
	}
}

func (e *ConfidenceEngine) measureFast(ctx context.Context, img image.Image, lang string) Score {
	// Full resolution: ID-card text is small and downscaling costs
	// recognition accuracy.
	tokens, usedLang, ok := e.recognizeWithFallback(ctx, Request{
		Image:    img,
		Language: lang,
		Layout:   LayoutUniformBlock,
	})
	if !ok {
		return Score{Language: usedLang}
	}
	return Score{
		Confidence: BlendedConfidence(tokens),
		Tokens:     tokens,
		Text:       JoinTokens(tokens),
		Language:   usedLang,
	}
}

func (e *ConfidenceEngine) measureBalanced(ctx context.Context, img image.Image, lang string) Score {
	small := downscale(img, balancedMaxDim)
	tokens, usedLang, ok := e.recognizeWithFallback(ctx, Request{
		Image:    small,
		Language: lang,
		Layout:   LayoutUniformBlock,
	})
	score := Score{Language: usedLang}
	if ok {
		score.Confidence = MeanConfidence(tokens)
		score.Tokens = tokens
		score.Text = JoinTokens(tokens)
	}
	if score.Confidence >= retryThreshold {
		return score
	}

	enhanced := EnhanceForRetry(small)
	retryTokens, _, retryOK := e.recognizeWithFallback(ctx, Request{
		Image:     enhanced,
		Language:  usedLang,
		Layout:    LayoutSingleColumn,
		Whitelist: alnumWhitelist,
	})
	if retryOK {
		if conf := MeanConfidence(retryTokens); conf > score.Confidence {
			score.Confidence = conf
			score.Tokens = retryTokens
			score.Text = JoinTokens(retryTokens)
		}
	}
	return score
}

func (e *ConfidenceEngine) measureAccurate(ctx context.Context, img image.Image, lang string) Score {
	tokens, usedLang, ok := e.recognizeWithFallback(ctx, Request{
		Image:    img,
		Language: lang,
		Layout:   LayoutUniformBlock,
	})
	score := Score{Language: usedLang}
	if ok {
		score.Confidence = MeanConfidence(tokens)
		score.Tokens = tokens
		score.Text = JoinTokens(tokens)
	}
	if score.Confidence >= retryThreshold {
		return score
	}

	enhanced := EnhanceForRetry(img)
	for _, layout := range []LayoutMode{LayoutSingleColumn, LayoutAuto} {
		retryTokens, _, retryOK := e.recognizeWithFallback(ctx, Request{
			Image:     enhanced,
			Language:  usedLang,
			Layout:    layout,
			Whitelist: alnumWhitelist,
		})
		if !retryOK {
			continue
		}
		if conf := MeanConfidence(retryTokens); conf > score.Confidence {
			score.Confidence = conf
			score.Tokens = retryTokens
			score.Text = JoinTokens(retryTokens)
		}
		if score.Confidence >= accurateEarlyExit {
			break
		}
	}
	return score
}

// recognizeWithFallback runs the request, retrying once on the fallback
// language when the requested one fails. The returned bool is false
// when even the fallback could not produce tokens.
func (e *ConfidenceEngine) recognizeWithFallback(ctx context.Context, req Request) ([]Token, string, bool) {
	tokens, err := e.engine.Recognize(ctx, req)
	if err == nil {
		return tokens, req.Language, true
	}
	if ctx.Err() != nil {
		return nil, req.Language, false
	}
	if req.Language == e.fallbackLang || e.fallbackLang == "" {
		e.logger.Warn("ocr pass failed", "language", req.Language, "error", err)
		return nil, req.Language, false
	}

	e.logger.Warn("ocr language unavailable, retrying with fallback",
		"language", req.Language, "fallback", e.fallbackLang, "error", err)
	req.Language = e.fallbackLang
	tokens, err = e.engine.Recognize(ctx, req)
	if err != nil {
		e.logger.Warn("fallback ocr pass failed", "language", req.Language, "error", err)
		return nil, req.Language, false
	}
	return tokens, req.Language, true
}

// MeanConfidence averages token confidences over tokens with non-empty
// trimmed text and a non-negative confidence. No such tokens yields 0.
func MeanConfidence(tokens []Token) float64 {
	var sum float64
	count := 0
	for _, t := range tokens {
		if strings.TrimSpace(t.Text) == "" || t.Confidence < 0 {
			continue
		}
		sum += t.Confidence
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// BlendedConfidence is the fast-tier score: artifact tokens are dropped
// from the average, and when fewer than half the text tokens survive
// (sparse-text documents such as ID cards) the result blends 70% of the
// length-weighted average with 30% of the plain filtered average.
func BlendedConfidence(tokens []Token) float64 {
	textCount := 0
	var filtered []Token
	for _, t := range tokens {
		if strings.TrimSpace(t.Text) == "" || t.Confidence < 0 {
			continue
		}
		textCount++
		if !IsArtifactToken(t.Text) {
			filtered = append(filtered, t)
		}
	}
	if textCount == 0 || len(filtered) == 0 {
		return 0
	}

	var confSum float64
	var weightedSum, weightTotal float64
	for _, t := range filtered {
		confSum += t.Confidence
		w := float64(len(strings.TrimSpace(t.Text)))
		weightedSum += t.Confidence * w
		weightTotal += w
	}
	filteredAvg := confSum / float64(len(filtered))
	textWeighted := filteredAvg
	if weightTotal > 0 {
		textWeighted = weightedSum / weightTotal
	}

	if len(filtered)*2 < textCount {
		return 0.7*textWeighted + 0.3*filteredAvg
	}
	return filteredAvg
}

func downscale(img image.Image, maxDim int) image.Image {
	if img == nil {
		return nil
	}
	return utils.DownscaleToFit(img, maxDim, maxDim)
}
