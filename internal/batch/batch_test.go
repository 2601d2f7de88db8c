package batch

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/idscan/internal/identity"
	"github.com/MeKo-Tech/idscan/internal/ocr"
	"github.com/MeKo-Tech/idscan/internal/pipeline"
	"github.com/MeKo-Tech/idscan/internal/testutil"
	"github.com/MeKo-Tech/idscan/internal/utils"
)

func writeTestPNG(t *testing.T, dir, name string) string {
	t.Helper()
	page := testutil.Page(120, 160, testutil.Card{
		Box:  utils.NewRect(20, 40, 80, 80),
		Fill: color.RGBA{30, 30, 30, 255},
	})
	return testutil.SavePNG(t, page, dir, name)
}

func TestDiscoverFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o750))

	writeTestPNG(t, dir, "a.png")
	writeTestPNG(t, sub, "b.png")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.pdf"), []byte("%PDF-1.4"), 0o600))

	t.Run("top level only", func(t *testing.T) {
		files, err := discoverFiles([]string{dir}, false, nil, nil)
		require.NoError(t, err)
		assert.Len(t, files, 2) // a.png and doc.pdf
	})

	t.Run("recursive", func(t *testing.T) {
		files, err := discoverFiles([]string{dir}, true, nil, nil)
		require.NoError(t, err)
		assert.Len(t, files, 3)
	})

	t.Run("include pattern", func(t *testing.T) {
		files, err := discoverFiles([]string{dir}, true, []string{"*.pdf"}, nil)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "doc.pdf", filepath.Base(files[0]))
	})

	t.Run("exclude pattern", func(t *testing.T) {
		files, err := discoverFiles([]string{dir}, true, nil, []string{"*.pdf"})
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := discoverFiles([]string{filepath.Join(dir, "gone")}, false, nil, nil)
		assert.Error(t, err)
	})
}

func TestProcessFilesIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeTestPNG(t, dir, "good.png")
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o600))

	p, err := pipeline.NewBuilder().
		WithEngine(ocr.NewFakeEngine("identity card surname", 70)).
		Build()
	require.NoError(t, err)

	results, errs := processFiles(context.Background(), p, []string{good, bad}, 2, pipeline.NoOpProgress{})

	require.Len(t, results, 1)
	assert.Equal(t, good, results[0].Source)
	require.Len(t, errs, 1)
	assert.Equal(t, bad, errs[0].Path)
}

func TestProcessBatchEndToEnd(t *testing.T) {
	// ProcessBatch builds a Tesseract-backed pipeline, so exercise the
	// discovery failure path only.
	_, err := ProcessBatch(context.Background(), []string{t.TempDir()}, &Config{})
	assert.Error(t, err)
}

func sampleResult() *Result {
	return &Result{
		Results: []*pipeline.FileResult{
			{
				Source: "scan.png",
				Pages: []pipeline.PageResult{
					{Number: 1, InkRatio: 0.2, Confidence: 75, Readable: true, SegmentCount: 1},
				},
				Classifications: []identity.Classification{
					{
						PageLabel:  "1",
						Type:       identity.KnownType("residential_id"),
						Side:       identity.SideFront,
						Confidence: 82.5,
					},
				},
			},
		},
		Errors:      []FileError{{Path: "broken.pdf", Err: os.ErrNotExist}},
		Duration:    1200 * time.Millisecond,
		WorkerCount: 2,
	}
}

func TestFormatJSON(t *testing.T) {
	out, err := sampleResult().FormatResults("json")
	require.NoError(t, err)
	assert.Contains(t, out, `"residential_id"`)
	assert.Contains(t, out, `"broken.pdf"`)
	assert.Contains(t, out, `"workers": 2`)
}

func TestFormatCSV(t *testing.T) {
	out, err := sampleResult().FormatResults("csv")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
	assert.Contains(t, out, "residential_id,front,82.5")
}

func TestFormatText(t *testing.T) {
	out, err := sampleResult().FormatResults("text")
	require.NoError(t, err)
	assert.Contains(t, out, "scan.png: 1 page(s), 1 readable, 0 empty, 1 document(s)")
	assert.Contains(t, out, "FAILED broken.pdf")
}

func TestSaveResultsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, sampleResult().SaveResults("json", path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "residential_id")
}
