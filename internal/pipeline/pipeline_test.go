package pipeline

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/idscan/internal/config"
	"github.com/MeKo-Tech/idscan/internal/ocr"
	"github.com/MeKo-Tech/idscan/internal/testutil"
	"github.com/MeKo-Tech/idscan/internal/utils"
)

var darkFill = color.RGBA{40, 40, 40, 255}

type stubRasterizer struct {
	count int
	pages map[int]image.Image
}

func (s *stubRasterizer) Rasterize(context.Context, string) (int, map[int]image.Image, error) {
	return s.count, s.pages, nil
}

func buildTestPipeline(t *testing.T, engine ocr.Engine) *Pipeline {
	t.Helper()
	p, err := NewBuilder().WithEngine(engine).Build()
	require.NoError(t, err)
	return p
}

func TestBuilderDefaults(t *testing.T) {
	p, err := NewBuilder().WithEngine(ocr.NewFakeEngine("x", 50)).WithSpeedTier("accurate").Build()
	require.NoError(t, err)
	assert.Equal(t, ocr.TierAccurate, p.tier)
	assert.NotNil(t, p.Config())
	assert.NoError(t, p.Close())
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Detection.MinAreaPercent = -1

	_, err := NewBuilder().WithConfig(&cfg).WithEngine(ocr.NewFakeEngine("x", 50)).Build()
	assert.Error(t, err)
}

func TestClassifyBytesImage(t *testing.T) {
	engine := ocr.NewFakeEngine("identity card surname rossi", 82)
	p := buildTestPipeline(t, engine)

	page := testutil.Page(400, 600, testutil.Card{Box: utils.NewRect(40, 50, 320, 200), Fill: darkFill})
	data, err := utils.EncodePNG(page)
	require.NoError(t, err)

	result, err := p.ClassifyBytes(context.Background(), data, "scan.png")
	require.NoError(t, err)

	require.Len(t, result.Pages, 1)
	pg := result.Pages[0]
	assert.Equal(t, 1, pg.Number)
	assert.False(t, pg.Empty)
	assert.True(t, pg.Readable)
	assert.Equal(t, "eng", pg.Language)
	assert.Positive(t, pg.InkRatio)
	assert.Equal(t, 1, pg.SegmentCount)

	require.Len(t, result.Classifications, 1)
	cls := result.Classifications[0]
	assert.Equal(t, "1", cls.PageLabel)
	assert.Equal(t, "residential_id", cls.Type.Key())
	assert.Positive(t, cls.Confidence)
	require.NotNil(t, cls.Features.Adjustment)
	require.NotNil(t, cls.Features.ContentAnalysis)
}

func TestClassifyBytesEmptyPage(t *testing.T) {
	engine := ocr.NewFakeEngine("", 0)
	p := buildTestPipeline(t, engine)

	data, err := utils.EncodePNG(testutil.NewPage(200, 300))
	require.NoError(t, err)

	result, err := p.ClassifyBytes(context.Background(), data, "blank.png")
	require.NoError(t, err)

	require.Len(t, result.Pages, 1)
	assert.True(t, result.Pages[0].Empty)
	assert.False(t, result.Pages[0].Readable)
	assert.Equal(t, 1, result.EmptyPages())
	assert.Zero(t, result.ReadablePages())
	assert.Zero(t, result.IdentifiedDocuments())
}

func TestClassifyZeroPagePDF(t *testing.T) {
	engine := ocr.NewFakeEngine("ignored", 50)
	p, err := NewBuilder().
		WithEngine(engine).
		WithRasterizer(&stubRasterizer{}).
		Build()
	require.NoError(t, err)

	result, err := p.ClassifyBytes(context.Background(), []byte("%PDF-1.4"), "empty.pdf")
	require.NoError(t, err)

	require.Len(t, result.Pages, 1)
	page := result.Pages[0]
	assert.True(t, page.Synthetic)
	assert.True(t, page.Empty)
	assert.Zero(t, page.Confidence)

	require.Len(t, result.Classifications, 1)
	assert.True(t, result.Classifications[0].Type.IsUnknown())
}

func TestClassifyPDFBlankThenTextPages(t *testing.T) {
	textPage := testutil.NewPage(300, 400)
	for i, line := range []string{
		"identity card",
		"surname rossi",
		"date of birth 01/01/1990",
		"nationality italian",
	} {
		testutil.DrawText(textPage, line, 20, 40+i*30)
	}

	engine := ocr.NewFakeEngine("identity card surname rossi", 75)
	p, err := NewBuilder().
		WithEngine(engine).
		WithRasterizer(&stubRasterizer{
			count: 2,
			pages: map[int]image.Image{
				1: testutil.NewPage(300, 400),
				2: textPage,
			},
		}).
		Build()
	require.NoError(t, err)

	result, err := p.ClassifyBytes(context.Background(), []byte("%PDF-1.4"), "mixed.pdf")
	require.NoError(t, err)

	require.Len(t, result.Pages, 2)
	assert.Equal(t, 1, result.Pages[0].Number)
	assert.Equal(t, 2, result.Pages[1].Number)

	assert.Less(t, result.Pages[0].InkRatio, 0.01)
	assert.Less(t, result.Pages[0].InkRatio, result.Pages[1].InkRatio)
	assert.True(t, result.Pages[0].Empty)
	assert.False(t, result.Pages[1].Empty)
}

func TestClassifyMultiSegmentLabels(t *testing.T) {
	engine := ocr.NewFakeEngine("carta d'identita nome cognome", 60)
	p := buildTestPipeline(t, engine)

	page := testutil.Page(400, 600,
		testutil.Card{Box: utils.NewRect(40, 50, 320, 200), Fill: darkFill},
		testutil.Card{Box: utils.NewRect(40, 350, 320, 200), Fill: darkFill},
	)
	data, err := utils.EncodePNG(page)
	require.NoError(t, err)

	result, err := p.ClassifyBytes(context.Background(), data, "two_cards.png")
	require.NoError(t, err)

	require.Len(t, result.Pages, 1)
	assert.Equal(t, 2, result.Pages[0].SegmentCount)

	require.Len(t, result.Classifications, 2)
	assert.Equal(t, "1-1", result.Classifications[0].PageLabel)
	assert.Equal(t, "1-2", result.Classifications[1].PageLabel)
	assert.Equal(t, "1", result.Classifications[0].PageKey())
}

func TestClassifyCancelled(t *testing.T) {
	engine := ocr.NewFakeEngine("x", 50)
	p := buildTestPipeline(t, engine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data, err := utils.EncodePNG(testutil.NewPage(100, 100))
	require.NoError(t, err)

	_, err = p.ClassifyBytes(ctx, data, "scan.png")
	assert.Error(t, err)
}
