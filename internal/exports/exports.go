package exports

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"time"

	"github.com/signintech/gopdf"

	"github.com/pwnholic/taskcard/internal"
	"github.com/pwnholic/taskcard/internal/render"
)

const (
	CanvasWidth  = 1440
	CanvasHeight = 900
	PixelDensity = 2

	DefaultSettleDelay = 200 * time.Millisecond
	DefaultTimeout     = 30 * time.Second

	ImagePrefix    = "GUCCI_DESKTOP_TASK_"
	DocumentPrefix = "GUCCI_DESKTOP_PDF_"
)

// Canvas is the fixed export size in logical pixels.
var Canvas = render.Style{Width: CanvasWidth, Height: CanvasHeight}

// Region is a renderable surface whose size can be forced for capture.
// Implementations must be comparable (pointer types) so the pipeline can
// track in-flight exports per region.
type Region interface {
	Style() render.Style
	SetStyle(render.Style)
	Rasterize(ctx context.Context, opts render.RasterOptions) (*image.RGBA, error)
}

type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

type Artifact struct {
	Kind        Kind
	Name        string
	ContentType string
	Data        []byte
}

func ImageFilename(seed string) string {
	return ImagePrefix + seed + ".png"
}

func DocumentFilename(seed string) string {
	return DocumentPrefix + seed + ".pdf"
}

// Pipeline turns a region into downloadable artifacts. Only one export may
// run per region at a time; a second caller gets ErrExportInProgress.
type Pipeline struct {
	sink    Sink
	settle  time.Duration
	timeout time.Duration

	mu       sync.Mutex
	inFlight map[Region]struct{}
}

type Option func(*Pipeline)

func WithSettleDelay(d time.Duration) Option {
	return func(p *Pipeline) {
		if d >= 0 {
			p.settle = d
		}
	}
}

// WithTimeout bounds one whole export, capture and delivery included.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewPipeline(sink Sink, opts ...Option) *Pipeline {
	p := &Pipeline{
		sink:     sink,
		settle:   DefaultSettleDelay,
		timeout:  DefaultTimeout,
		inFlight: make(map[Region]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Busy reports whether an export is currently running on region.
func (p *Pipeline) Busy(region Region) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.inFlight[region]
	return ok
}

// Hold reserves region as if an export were running, so callers can mutate
// it without racing one. The returned func releases the reservation.
func (p *Pipeline) Hold(region Region) (func(), error) {
	if region == nil {
		return nil, ErrNilRegion
	}
	return p.acquire(region)
}

func (p *Pipeline) acquire(region Region) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.inFlight[region]; ok {
		return nil, ErrExportInProgress
	}
	p.inFlight[region] = struct{}{}
	return func() {
		p.mu.Lock()
		delete(p.inFlight, region)
		p.mu.Unlock()
	}, nil
}

// ExportImage captures region at the fixed canvas and delivers it as
// GUCCI_DESKTOP_TASK_<seed>.png.
func (p *Pipeline) ExportImage(ctx context.Context, region Region, seed string) (Artifact, error) {
	return p.export(ctx, region, seed, KindImage)
}

// ExportDocument captures region at the fixed canvas and delivers it as a
// single landscape page PDF named GUCCI_DESKTOP_PDF_<seed>.pdf.
func (p *Pipeline) ExportDocument(ctx context.Context, region Region, seed string) (Artifact, error) {
	return p.export(ctx, region, seed, KindDocument)
}

// ExportAll runs the image export and then the document export. They
// share the region so they never run concurrently.
func (p *Pipeline) ExportAll(ctx context.Context, region Region, seed string) ([]Artifact, error) {
	img, err := p.ExportImage(ctx, region, seed)
	if err != nil {
		return nil, err
	}
	doc, err := p.ExportDocument(ctx, region, seed)
	if err != nil {
		return []Artifact{img}, err
	}
	return []Artifact{img, doc}, nil
}

func (p *Pipeline) export(ctx context.Context, region Region, seed string, kind Kind) (Artifact, error) {
	if region == nil {
		return Artifact{}, ErrNilRegion
	}
	if strings.TrimSpace(seed) == "" {
		return Artifact{}, ErrEmptySeed
	}

	release, err := p.acquire(region)
	if err != nil {
		return Artifact{}, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	var art Artifact
	err = WithFixedCanvas(ctx, region, Canvas, func(ctx context.Context) error {
		if err := sleep(ctx, p.settle); err != nil {
			return &CaptureError{Err: err}
		}

		bitmap, err := capture(ctx, region)
		if err != nil {
			return &CaptureError{Err: err}
		}

		switch kind {
		case KindDocument:
			art, err = encodeDocument(bitmap, seed)
		default:
			art, err = encodeImage(bitmap, seed)
		}
		if err != nil {
			return &SaveError{Name: art.Name, Err: err}
		}

		if err := p.sink.Save(ctx, art); err != nil {
			return &SaveError{Name: art.Name, Err: err}
		}
		return nil
	})
	if err != nil {
		internal.Error("%s export for %s failed: %v", kind, seed, err)
		return Artifact{}, err
	}

	internal.Success("exported %s (%d bytes) in %v", art.Name, len(art.Data), time.Since(start))
	return art, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// capture rasterizes region in its own goroutine so that a hung
// rasterizer cannot hold the caller past ctx's deadline.
func capture(ctx context.Context, region Region) (*image.RGBA, error) {
	type result struct {
		img *image.RGBA
		err error
	}
	ch := make(chan result, 1)
	go func() {
		img, err := region.Rasterize(ctx, render.RasterOptions{
			PixelDensity: PixelDensity,
			Background:   color.Black,
			Width:        CanvasWidth,
			Height:       CanvasHeight,
			BypassCache:  true,
		})
		ch <- result{img: img, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		b := r.img.Bounds()
		if b.Dx() != CanvasWidth*PixelDensity || b.Dy() != CanvasHeight*PixelDensity {
			return nil, fmt.Errorf("%w: %dx%d", ErrUnexpectedSize, b.Dx(), b.Dy())
		}
		return r.img, nil
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeImage(bitmap *image.RGBA, seed string) (Artifact, error) {
	art := Artifact{Kind: KindImage, Name: ImageFilename(seed), ContentType: "image/png"}
	data, err := encodePNG(bitmap)
	if err != nil {
		return art, err
	}
	art.Data = data
	return art, nil
}

func encodeDocument(bitmap *image.RGBA, seed string) (Artifact, error) {
	art := Artifact{Kind: KindDocument, Name: DocumentFilename(seed), ContentType: "application/pdf"}
	data, err := encodePNG(bitmap)
	if err != nil {
		return art, err
	}

	doc := NewPDFGenerator(PageSpec{
		Orientation: Landscape,
		Unit:        gopdf.UnitPX,
		Width:       CanvasWidth,
		Height:      CanvasHeight,
	})
	defer doc.Close()

	if err := doc.AddFullPageImage(data); err != nil {
		return art, err
	}
	pdfBytes, err := doc.Bytes()
	if err != nil {
		return art, err
	}
	art.Data = pdfBytes
	return art, nil
}
