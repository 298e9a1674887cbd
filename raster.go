package canopy

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// RasterCanvas is a software Canvas over an *image.RGBA. Rectangles are
// filled by pixel-centre sampling: a pixel is covered when its centre maps
// into [x, x+w) x [y, y+h). Images are sampled nearest-neighbour.
//
// RasterCanvas needs no GPU or window, which makes it the canvas of choice
// for headless rendering and for tests.
type RasterCanvas struct {
	transformStack
	img *image.RGBA
}

// NewRasterCanvas allocates a w x h transparent canvas.
func NewRasterCanvas(w, h int) *RasterCanvas {
	return NewRasterCanvasFor(image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1))))
}

// NewRasterCanvasFor draws onto an existing image. Returns nil if img is nil.
func NewRasterCanvasFor(img *image.RGBA) *RasterCanvas {
	if img == nil {
		return nil
	}
	return &RasterCanvas{transformStack: newTransformStack(), img: img}
}

// RGBA returns the backing image.
func (c *RasterCanvas) RGBA() *image.RGBA {
	return c.img
}

// Image returns the backing image.
func (c *RasterCanvas) Image() image.Image {
	return c.img
}

func (c *RasterCanvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *RasterCanvas) Clear() {
	clear(c.img.Pix)
}

func (c *RasterCanvas) ClearRect(x, y, w, h float64) {
	c.cover(x, y, w, h, func(i int) {
		clear(c.img.Pix[i : i+4])
	})
}

func (c *RasterCanvas) FillRect(x, y, w, h float64, col Color) {
	src := col.toRGBA()
	if src.A == 0 {
		return
	}
	c.cover(x, y, w, h, func(i int) {
		blendOver(c.img.Pix[i:i+4], src)
	})
}

// cover calls fn with the pixel offset of every pixel whose centre falls in
// the local rectangle (x, y, w, h).
func (c *RasterCanvas) cover(x, y, w, h float64, fn func(i int)) {
	m := c.cur.Multiply(Translation(x, y)).Multiply(Scaling(w, h))
	inv, err := m.Invert()
	if err != nil {
		return
	}
	corners := []Vec2{
		m.Apply(Vec2{0, 0}), m.Apply(Vec2{1, 0}),
		m.Apply(Vec2{1, 1}), m.Apply(Vec2{0, 1}),
	}
	r := boundsOf(corners)
	b := c.img.Bounds()
	x0 := max(int(math.Floor(r.X)), b.Min.X)
	y0 := max(int(math.Floor(r.Y)), b.Min.Y)
	x1 := min(int(math.Ceil(r.X+r.Width)), b.Max.X)
	y1 := min(int(math.Ceil(r.Y+r.Height)), b.Max.Y)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			u := inv.Apply(Vec2{float64(px) + 0.5, float64(py) + 0.5})
			if u.X < 0 || u.X >= 1 || u.Y < 0 || u.Y >= 1 {
				continue
			}
			fn(c.img.PixOffset(px, py))
		}
	}
}

// blendOver composites premultiplied src over the 4-byte pixel dst.
func blendOver(dst []uint8, src color.RGBA) {
	if src.A == 0xff {
		dst[0], dst[1], dst[2], dst[3] = src.R, src.G, src.B, src.A
		return
	}
	inv := uint32(0xff - src.A)
	dst[0] = src.R + uint8((uint32(dst[0])*inv+127)/0xff)
	dst[1] = src.G + uint8((uint32(dst[1])*inv+127)/0xff)
	dst[2] = src.B + uint8((uint32(dst[2])*inv+127)/0xff)
	dst[3] = src.A + uint8((uint32(dst[3])*inv+127)/0xff)
}

func (c *RasterCanvas) DrawImage(img image.Image, x, y float64) {
	if img == nil {
		return
	}
	sr := img.Bounds()
	m := c.cur.Multiply(Translation(x, y))
	if m.IsTranslation() && m[4] == math.Trunc(m[4]) && m[5] == math.Trunc(m[5]) {
		xdraw.Copy(c.img, image.Pt(int(m[4]), int(m[5])), img, sr, xdraw.Over, nil)
		return
	}
	// Source pixel coordinates start at sr.Min; local (0, 0) is sr.Min.
	m = m.Multiply(Translation(-float64(sr.Min.X), -float64(sr.Min.Y)))
	s2d := f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
	xdraw.NearestNeighbor.Transform(c.img, s2d, img, sr, xdraw.Over, nil)
}

func (c *RasterCanvas) NewSurface(w, h int) Surface {
	return NewRasterCanvas(w, h)
}

func (c *RasterCanvas) DrawSurface(s Surface, x, y float64) {
	if s == nil {
		return
	}
	c.DrawImage(s.Image(), x, y)
}

// Dispose is a no-op; the backing image is garbage collected.
func (c *RasterCanvas) Dispose() {}
