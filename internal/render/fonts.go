package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var parsedFonts = sync.OnceValues(func() (*fontPair, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	return &fontPair{regular: regular, bold: bold}, nil
})

type fontPair struct {
	regular *opentype.Font
	bold    *opentype.Font
}

// faceSet holds the faces used by the card at one pixel density.
type faceSet struct {
	brand   font.Face
	caption font.Face
	title   font.Face
	label   font.Face
	value   font.Face
	footer  font.Face
}

func newFaceSet(density int) (*faceSet, error) {
	fp, err := parsedFonts()
	if err != nil {
		return nil, err
	}

	scale := float64(density)
	face := func(f *opentype.Font, size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size * scale,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	fs := &faceSet{}
	for _, spec := range []struct {
		dst  *font.Face
		f    *opentype.Font
		size float64
	}{
		{&fs.brand, fp.bold, 28},
		{&fs.caption, fp.bold, 14},
		{&fs.title, fp.bold, 56},
		{&fs.label, fp.bold, 16},
		{&fs.value, fp.regular, 40},
		{&fs.footer, fp.regular, 18},
	} {
		f, err := face(spec.f, spec.size)
		if err != nil {
			return nil, fmt.Errorf("failed to create font face: %w", err)
		}
		*spec.dst = f
	}
	return fs, nil
}
