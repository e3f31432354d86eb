package recognize

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// PageLoader converts uploaded document bodies into JPEG page images
// suitable for vision extraction.
type PageLoader struct {
	maxPages int
	logger   *zap.Logger
}

// NewPageLoader creates a new page loader. maxPages caps how many pages of
// a PDF are sent to the vision model per document.
func NewPageLoader(maxPages int, logger *zap.Logger) *PageLoader {
	return &PageLoader{maxPages: maxPages, logger: logger}
}

// Expand converts one uploaded document body into JPEG page images. PDF
// bodies are rendered page by page; anything else is passed through as a
// single image.
func (l *PageLoader) Expand(data []byte) ([][]byte, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return [][]byte{data}, nil
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount > l.maxPages {
		pageCount = l.maxPages
	}

	var pages [][]byte
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		img, err := doc.Image(pageNum)
		if err != nil {
			l.logger.Warn("Failed to render PDF page",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			l.logger.Warn("Failed to encode PDF page",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		pages = append(pages, buf.Bytes())
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages rendered from PDF")
	}
	return pages, nil
}
