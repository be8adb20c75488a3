package converter

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// DefaultDPI разрешение рендеринга страницы. Воркер переводит пиксели в сантиметры,
// поэтому разрешение должно быть постоянным.
const DefaultDPI = 300

// PDFConverter рендерит страницы PDF в PNG
type PDFConverter struct {
	dpi float64
}

// NewPDFConverter создаёт новый конвертер. dpi <= 0 означает DefaultDPI.
func NewPDFConverter(dpi float64) *PDFConverter {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &PDFConverter{dpi: dpi}
}

// ConvertFirstPage конвертирует первую страницу PDF в PNG
func (c *PDFConverter) ConvertFirstPage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	img, err := doc.ImageDPI(0, c.dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	return buf.Bytes(), nil
}
