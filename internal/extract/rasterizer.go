package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/MeKo-Tech/idscan/internal/utils"
)

// Rasterizer turns a PDF file into one raster image per page. It is an
// injected capability so processing pipelines can swap in a renderer or
// a test double.
type Rasterizer interface {
	// Rasterize returns the page count and a map of 1-based page number
	// to page image. Pages without a usable image are absent from the
	// map.
	Rasterize(ctx context.Context, path string) (int, map[int]image.Image, error)
}

const (
	// Pages narrower than this are upscaled before OCR; small embedded
	// scans lose too much glyph detail otherwise.
	minPageWidth = 1000
	// Upscale factor for small pages.
	pageUpscale = 2
)

// ImageRasterizer extracts the embedded scan image of each PDF page
// using pdfcpu. Scanned-document PDFs carry one full-page image per
// page, so extraction doubles as rasterization without a renderer.
type ImageRasterizer struct{}

func NewImageRasterizer() *ImageRasterizer { return &ImageRasterizer{} }

func (r *ImageRasterizer) Rasterize(ctx context.Context, path string) (int, map[int]image.Image, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return 0, nil, &DecodeError{Source: path, Err: fmt.Errorf("page count: %w", err)}
	}
	if pageCount == 0 {
		return 0, nil, nil
	}

	tempDir, err := os.MkdirTemp("", "idscan-extract-*")
	if err != nil {
		return 0, nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	if err := api.ExtractImagesFile(path, tempDir, nil, nil); err != nil {
		return 0, nil, &DecodeError{Source: path, Err: fmt.Errorf("extract images: %w", err)}
	}

	pages, err := collectPageImages(tempDir)
	if err != nil {
		return 0, nil, &DecodeError{Source: path, Err: err}
	}
	for num, img := range pages {
		pages[num] = upscaleSmallPage(img)
	}
	return pageCount, pages, nil
}

// collectPageImages walks the extraction directory and keeps the
// largest image per page. pdfcpu names files page_<num>_<id>.<ext>.
func collectPageImages(dir string) (map[int]image.Image, error) {
	type candidate struct {
		img  image.Image
		area int
	}
	best := make(map[int]candidate)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		pageNum, err := parsePageFromFilename(name)
		if err != nil {
			continue
		}
		img, err := utils.LoadImage(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		area := img.Bounds().Dx() * img.Bounds().Dy()
		if cur, ok := best[pageNum]; !ok || area > cur.area {
			best[pageNum] = candidate{img: img, area: area}
		}
	}

	pages := make(map[int]image.Image, len(best))
	for num, c := range best {
		pages[num] = c.img
	}
	return pages, nil
}

// parsePageFromFilename pulls the page number out of a pdfcpu extract
// filename like page_3_Im1.png.
func parsePageFromFilename(filename string) (int, error) {
	if !strings.HasPrefix(filename, "page_") {
		return 0, errors.New("not a page file")
	}
	parts := strings.Split(filename, "_")
	if len(parts) < 2 {
		return 0, errors.New("invalid filename format")
	}
	pageNum, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.New("invalid page number")
	}
	return pageNum, nil
}

func upscaleSmallPage(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	if img.Bounds().Dx() >= minPageWidth {
		return img
	}
	return imaging.Resize(img, img.Bounds().Dx()*pageUpscale, 0, imaging.Lanczos)
}
