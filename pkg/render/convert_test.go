package render

import (
	"testing"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

func TestToPNGRejectsBadScale(t *testing.T) {
	_, err := ToPNG([]byte("<svg/>"), 0)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("ToPNG(scale=0) error = %v, want INVALID_INPUT", err)
	}
}

func TestConvertWithoutConverter(t *testing.T) {
	if Available() {
		t.Skip(Converter + " installed")
	}
	_, err := ToPDF([]byte("<svg/>"))
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Fatalf("ToPDF error = %v, want UNSUPPORTED", err)
	}
}
