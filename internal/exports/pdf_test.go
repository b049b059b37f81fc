package exports

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/signintech/gopdf"
)

func TestPageSpecNormalized(t *testing.T) {
	tests := []struct {
		in   PageSpec
		w, h float64
	}{
		{PageSpec{Orientation: Landscape, Width: 900, Height: 1440}, 1440, 900},
		{PageSpec{Orientation: Landscape, Width: 1440, Height: 900}, 1440, 900},
		{PageSpec{Orientation: Portrait, Width: 1440, Height: 900}, 900, 1440},
	}
	for _, tt := range tests {
		got := tt.in.normalized()
		if got.Width != tt.w || got.Height != tt.h {
			t.Fatalf("normalized(%+v)=%gx%g, want %gx%g", tt.in, got.Width, got.Height, tt.w, tt.h)
		}
	}
}

func TestPDFGenerator(t *testing.T) {
	doc := NewPDFGenerator(PageSpec{Orientation: Landscape, Unit: gopdf.UnitPX, Width: 1440, Height: 900})
	defer doc.Close()

	if err := doc.AddFullPageImage(nil); err == nil {
		t.Fatalf("AddFullPageImage(nil) err=nil")
	}
	if err := doc.AddFullPageImage([]byte("garbage")); err == nil {
		t.Fatalf("AddFullPageImage(garbage) err=nil")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 20))); err != nil {
		t.Fatalf("png.Encode err=%v", err)
	}
	if err := doc.AddFullPageImage(buf.Bytes()); err != nil {
		t.Fatalf("AddFullPageImage() err=%v", err)
	}
	if doc.Pages() != 1 {
		t.Fatalf("Pages()=%d, want 1", doc.Pages())
	}
	want := []Placement{{X: 0, Y: 0, W: 1440, H: 900}}
	if got := doc.Placements(); len(got) != 1 || got[0] != want[0] {
		t.Fatalf("Placements()=%v, want %v", got, want)
	}

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes() err=%v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
	assertSingleCanvasPage(t, out)
}

// assertSingleCanvasPage checks for exactly one 1440x900 px page (0.75 pt/px).
func assertSingleCanvasPage(t *testing.T, pdf []byte) {
	t.Helper()
	if n := bytes.Count(pdf, []byte("/MediaBox")); n != 1 {
		t.Fatalf("MediaBox count=%d, want 1", n)
	}
	if !bytes.Contains(pdf, []byte("/MediaBox [ 0 0 1080.00 675.00 ]")) {
		t.Fatalf("page is not 1440x900 px landscape")
	}
}
