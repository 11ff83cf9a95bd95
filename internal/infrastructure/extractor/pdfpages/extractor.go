package pdfpages

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/finsight/finsight/internal/core/domain"
	"github.com/finsight/finsight/internal/core/ports"
)

// Extractor pulls per-page plain text out of a stored PDF.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) ExtractPages(ctx context.Context, doc *domain.Document) ([]domain.Page, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf %s: %w", doc.Filename, err)
	}

	numPages := pdfReader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf %s has no pages", doc.Filename)
	}

	pages := make([]domain.Page, 0, numPages)
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := pageText(page)
		if err != nil {
			return nil, fmt.Errorf("extract page %d of %s: %w", pageNum, doc.Filename, err)
		}

		pages = append(pages, domain.Page{
			PageNumber: pageNum,
			Text:       text,
		})
	}
	return pages, nil
}

// pageText reassembles row-grouped text so table rows survive as lines.
func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for i, row := range rows {
		if i > 0 {
			builder.WriteString("\n")
		}
		for j, word := range row.Content {
			if j > 0 {
				builder.WriteString(" ")
			}
			builder.WriteString(word.S)
		}
	}
	return builder.String(), nil
}
