package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPDFConverter_DefaultDPI(t *testing.T) {
	assert.Equal(t, float64(DefaultDPI), NewPDFConverter(0).dpi)
	assert.Equal(t, 150.0, NewPDFConverter(150).dpi)
}

func TestConvertFirstPage_InvalidPDF(t *testing.T) {
	_, err := NewPDFConverter(0).ConvertFirstPage([]byte("not a pdf"))

	assert.Error(t, err)
}
