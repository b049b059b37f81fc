package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/pwnholic/taskcard/internal/task"
)

// maxSide bounds a single raster dimension in device pixels.
const maxSide = 8192

// Style is the card's layout size in logical pixels.
type Style struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultStyle is the natural on-screen size of the card.
var DefaultStyle = Style{Width: 960, Height: 600}

type RasterOptions struct {
	PixelDensity int
	Background   color.Color
	Width        int
	Height       int
	BypassCache  bool
}

var (
	colorText   = color.RGBA{0xf4, 0xf4, 0xf5, 0xff}
	colorMuted  = color.RGBA{0x71, 0x71, 0x7a, 0xff}
	colorBorder = color.RGBA{0x18, 0x18, 0x1b, 0xff}
	colorPurple = color.RGBA{0x93, 0x33, 0xea, 0xff}
	colorGreen  = color.RGBA{0x22, 0xc5, 0x5e, 0xff}
)

// Card is the result region: it displays one TaskData and can be
// rasterized at any size. Style mirrors the element's inline size and is
// what the export pipeline forces and restores.
type Card struct {
	mu    sync.Mutex
	style Style
	data  *task.TaskData
	logo  image.Image

	drawMu sync.Mutex
	faces  map[int]*faceSet
	cache  *cached
	draws  int
}

type cacheKey struct {
	data    task.TaskData
	style   Style
	width   int
	height  int
	density int
	bg      color.RGBA
}

type cached struct {
	key cacheKey
	img *image.RGBA
}

type CardOption func(*Card)

func WithStyle(s Style) CardOption {
	return func(c *Card) { c.style = s }
}

func WithLogo(img image.Image) CardOption {
	return func(c *Card) { c.logo = img }
}

func NewCard(opts ...CardOption) *Card {
	c := &Card{
		style: DefaultStyle,
		faces: make(map[int]*faceSet),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount displays data on the card, replacing whatever was shown.
func (c *Card) Mount(data task.TaskData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = &data
}

func (c *Card) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
}

func (c *Card) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data != nil
}

func (c *Card) Data() (task.TaskData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return task.TaskData{}, false
	}
	return *c.data, true
}

func (c *Card) Style() Style {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.style
}

func (c *Card) SetStyle(s Style) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.style = s
}

// Draws reports how many times the card was actually painted (cache misses).
func (c *Card) Draws() int {
	c.drawMu.Lock()
	defer c.drawMu.Unlock()
	return c.draws
}

// Rasterize captures a Width x Height viewport at PixelDensity. The card is
// laid out at its current Style from the viewport origin; whatever the
// layout does not cover is filled with the opaque background and whatever
// overflows the viewport is cropped.
func (c *Card) Rasterize(ctx context.Context, opts RasterOptions) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.PixelDensity < 1 {
		opts.PixelDensity = 1
	}
	if opts.Background == nil {
		opts.Background = color.Black
	}
	w, h := opts.Width*opts.PixelDensity, opts.Height*opts.PixelDensity
	if opts.Width <= 0 || opts.Height <= 0 || w > maxSide || h > maxSide {
		return nil, fmt.Errorf("%w: %dx%d at %dx", ErrInvalidSize, opts.Width, opts.Height, opts.PixelDensity)
	}

	c.mu.Lock()
	if c.data == nil {
		c.mu.Unlock()
		return nil, ErrNotMounted
	}
	data := *c.data
	logo := c.logo
	style := c.style
	c.mu.Unlock()

	if style.Width <= 0 || style.Height <= 0 {
		return nil, fmt.Errorf("%w: style %dx%d", ErrInvalidSize, style.Width, style.Height)
	}

	bg := opaque(opts.Background)
	key := cacheKey{data: data, style: style, width: opts.Width, height: opts.Height, density: opts.PixelDensity, bg: bg}

	c.drawMu.Lock()
	defer c.drawMu.Unlock()

	if !opts.BypassCache && c.cache != nil && c.cache.key == key {
		return cloneRGBA(c.cache.img), nil
	}

	faces, ok := c.faces[opts.PixelDensity]
	if !ok {
		var err error
		faces, err = newFaceSet(opts.PixelDensity)
		if err != nil {
			return nil, err
		}
		c.faces[opts.PixelDensity] = faces
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	p := &painter{dst: img, scale: opts.PixelDensity, faces: faces}
	p.paint(data, style.Width, style.Height, bg, logo)
	c.draws++

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.cache = &cached{key: key, img: img}
	return cloneRGBA(img), nil
}

func opaque(c color.Color) color.RGBA {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	rgba.A = 0xff
	return rgba
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

type painter struct {
	dst   *image.RGBA
	scale int
	faces *faceSet
}

func (p *painter) rect(x0, y0, x1, y1 int, c color.Color) {
	r := image.Rect(x0*p.scale, y0*p.scale, x1*p.scale, y1*p.scale)
	draw.Draw(p.dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func (p *painter) text(s string, face font.Face, c color.Color, x, y int) {
	d := &font.Drawer{
		Dst:  p.dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x*p.scale, y*p.scale),
	}
	d.DrawString(s)
}

// textRight draws s so that it ends at logical x.
func (p *painter) textRight(s string, face font.Face, c color.Color, x, y int) {
	adv := font.MeasureString(face, s).Ceil()
	d := &font.Drawer{
		Dst:  p.dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x*p.scale-adv, y*p.scale),
	}
	d.DrawString(s)
}

func (p *painter) paint(data task.TaskData, w, h int, bg color.RGBA, logo image.Image) {
	const pad = 40

	// 1px border
	p.rect(0, 0, w, h, colorBorder)
	p.rect(1, 1, w-1, h-1, bg)

	p.text("GUCCI SYSTEM", p.faces.brand, colorText, pad, pad+32)
	p.textRight("DESKTOP TASK", p.faces.caption, colorMuted, w-pad, pad+28)
	if logo != nil {
		lr := image.Rect((w-pad-64-140)*p.scale, pad*p.scale, (w-pad-140)*p.scale, (pad+64)*p.scale)
		drawLogo(p.dst, lr, logo)
	}
	p.rect(pad, pad+56, w-pad, pad+60, colorPurple)

	p.text("DETAIL TUGAS", p.faces.title, colorText, pad, pad+150)

	rows := []struct{ label, value string }{
		{"NOMOR TELEPON", data.PhoneNumber},
		{"JENIS TUGAS", data.JobType.Label()},
		{"JUMLAH PRODUK", strconv.Itoa(data.JobType.ProductCount())},
		{"HARGA PRODUK", task.FormatIDR(data.ProductPrice)},
	}
	colW := (w - 2*pad) / 2
	top := pad + 230
	for i, row := range rows {
		x := pad + (i%2)*colW
		y := top + (i/2)*120
		p.text(row.label, p.faces.label, colorMuted, x, y)
		p.text(row.value, p.faces.value, colorText, x, y+50)
	}

	totalY := top + 2*120 + 20
	p.rect(pad, totalY-40, w-pad, totalY-39, colorBorder)
	p.text("TOTAL PESANAN", p.faces.label, colorMuted, pad, totalY)
	p.text(task.FormatIDR(data.Total()), p.faces.value, colorGreen, pad, totalY+50)

	p.text("Dibuat: "+strings.TrimSpace(data.GeneratedAt), p.faces.footer, colorMuted, pad, h-pad)
}
