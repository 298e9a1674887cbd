package canopy

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Align positions label lines horizontally within the text block.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Label is a Drawable rendering text centred on the entity. Text is
// rasterized once into an image and re-rendered only when Text, Color,
// Align or Face change. Glyphs are drawn at their natural pixel size in
// local space, so entity scale applies but the initial size does not
// stretch the text.
//
// Use a *Label so the raster cache survives between frames.
type Label struct {
	Text  string
	Color Color
	Align Align
	// Face defaults to basicfont.Face7x13.
	Face font.Face

	img  *image.RGBA
	key  labelKey
	prev image.Image
}

type labelKey struct {
	text  string
	color Color
	align Align
	face  font.Face
}

// imageReleaser is implemented by canvases that cache uploads of
// image.Image sources.
type imageReleaser interface {
	ReleaseImage(img image.Image)
}

func (l *Label) Draw(c Canvas, _ *Entity) {
	if l.render() && l.prev != nil {
		if r, ok := c.(imageReleaser); ok {
			r.ReleaseImage(l.prev)
		}
		l.prev = nil
	}
	if l.img == nil {
		return
	}
	b := l.img.Bounds()
	c.DrawImage(l.img, -float64(b.Dx())/2, -float64(b.Dy())/2)
}

// Size returns the rasterized text size in pixels.
func (l *Label) Size() (w, h int) {
	l.render()
	if l.img == nil {
		return 0, 0
	}
	b := l.img.Bounds()
	return b.Dx(), b.Dy()
}

func (l *Label) face() font.Face {
	if l.Face != nil {
		return l.Face
	}
	return basicfont.Face7x13
}

// render refreshes the raster if its inputs changed and reports whether
// it did.
func (l *Label) render() bool {
	key := labelKey{l.Text, l.Color, l.Align, l.face()}
	if l.img != nil && key == l.key || l.img == nil && l.Text == "" {
		return false
	}
	if l.img != nil {
		l.prev = l.img
	}
	l.key = key
	l.img = rasterizeText(key)
	return true
}

// rasterizeText draws the lines of k.text top to bottom.
func rasterizeText(k labelKey) *image.RGBA {
	if k.text == "" {
		return nil
	}
	lines := strings.Split(k.text, "\n")
	m := k.face.Metrics()
	lineH := m.Height
	if lineH == 0 {
		lineH = m.Ascent + m.Descent
	}
	widths := make([]fixed.Int26_6, len(lines))
	var maxW fixed.Int26_6
	for i, line := range lines {
		widths[i] = font.MeasureString(k.face, line)
		maxW = max(maxW, widths[i])
	}
	w := max(maxW.Ceil(), 1)
	h := max((lineH*fixed.Int26_6(len(lines)-1) + m.Ascent + m.Descent).Ceil(), 1)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	col := color.NRGBA{
		R: uint8(clamp01(k.color.R)*255 + 0.5),
		G: uint8(clamp01(k.color.G)*255 + 0.5),
		B: uint8(clamp01(k.color.B)*255 + 0.5),
		A: uint8(clamp01(k.color.A)*255 + 0.5),
	}
	d := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: k.face}
	for i, line := range lines {
		var x fixed.Int26_6
		switch k.align {
		case AlignCenter:
			x = (maxW - widths[i]) / 2
		case AlignRight:
			x = maxW - widths[i]
		}
		d.Dot = fixed.Point26_6{X: x, Y: m.Ascent + lineH*fixed.Int26_6(i)}
		d.DrawString(line)
	}
	return img
}

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// GoRegularFace returns the Go Regular font at size points (72 DPI).
func GoRegularFace(size float64) (font.Face, error) {
	f, err := goRegular()
	if err != nil {
		return nil, fmt.Errorf("parse go regular: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("go regular face: %w", err)
	}
	return face, nil
}
