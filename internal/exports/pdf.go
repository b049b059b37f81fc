package exports

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/signintech/gopdf"

	"github.com/pwnholic/taskcard/internal"
)

type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
)

// PageSpec describes the single fixed page of a generated document.
// Width and Height are expressed in Unit (a gopdf unit constant).
type PageSpec struct {
	Orientation Orientation
	Unit        int
	Width       float64
	Height      float64
}

// normalized swaps the sides so that they agree with the orientation.
func (s PageSpec) normalized() PageSpec {
	if (s.Orientation == Landscape && s.Width < s.Height) ||
		(s.Orientation == Portrait && s.Width > s.Height) {
		s.Width, s.Height = s.Height, s.Width
	}
	return s
}

// Placement is where an image was drawn on its page, in page units.
type Placement struct {
	X, Y, W, H float64
}

type PDFGenerator struct {
	pdf    *gopdf.GoPdf
	spec   PageSpec
	pages  int
	placed []Placement
	mutex  sync.Mutex
}

func NewPDFGenerator(spec PageSpec) *PDFGenerator {
	spec = spec.normalized()
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		Unit:     spec.Unit,
		PageSize: gopdf.Rect{W: spec.Width, H: spec.Height},
	})
	return &PDFGenerator{pdf: pdf, spec: spec}
}

// AddFullPageImage adds a page and places the encoded image at the origin,
// stretched over the whole page with no margins.
func (p *PDFGenerator) AddFullPageImage(imgBytes []byte) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.pdf == nil {
		return errors.New("PDF not initialized")
	}
	if len(imgBytes) == 0 {
		return errors.New("empty image data")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(imgBytes))
	if err != nil {
		return fmt.Errorf("failed to decode image config: %w", err)
	}
	if cfg.Width < 1 || cfg.Height < 1 {
		return fmt.Errorf("invalid image dimensions: %dx%d", cfg.Width, cfg.Height)
	}

	imageHolder, err := gopdf.ImageHolderByBytes(imgBytes)
	if err != nil {
		return fmt.Errorf("failed to create image holder: %w", err)
	}

	p.pdf.AddPage()
	pageRect := &gopdf.Rect{W: p.spec.Width, H: p.spec.Height}
	if err := p.pdf.ImageByHolder(imageHolder, 0, 0, pageRect); err != nil {
		return fmt.Errorf("failed to add image to PDF: %w", err)
	}
	p.pages++
	p.placed = append(p.placed, Placement{X: 0, Y: 0, W: pageRect.W, H: pageRect.H})

	internal.Debug("format: (%s), size: (%dx%d), page: (%gx%g)", format, cfg.Width, cfg.Height, p.spec.Width, p.spec.Height)
	return nil
}

func (p *PDFGenerator) Pages() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.pages
}

// Placements lists every drawn image, one per page.
func (p *PDFGenerator) Placements() []Placement {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]Placement(nil), p.placed...)
}

func (p *PDFGenerator) Bytes() ([]byte, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.pdf == nil {
		return nil, errors.New("PDF not initialized")
	}

	var buf bytes.Buffer
	if err := p.pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *PDFGenerator) SavePDF(outputPath string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.pdf == nil {
		return errors.New("PDF not initialized")
	}
	return p.pdf.WritePdf(outputPath)
}

func (p *PDFGenerator) Close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.pdf != nil {
		_ = p.pdf.Close()
		p.pdf = nil
	}
}
