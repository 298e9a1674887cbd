package canopy

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Canvas is the drawing context the render pipeline draws through. It keeps a
// current transform that Translate, Rotate and Scale post-multiply (so they
// act in the current local space) and that Save/Restore push and pop.
//
// canopy only consumes this interface. ImageCanvas (GPU, ebiten) and
// RasterCanvas (software, image.RGBA) are the bundled implementations.
type Canvas interface {
	Save()
	Restore()
	Translate(x, y float64)
	Rotate(rad float64)
	Scale(x, y float64)
	// Transform returns the current transform.
	Transform() Matrix
	// Size returns the pixel size of the backing surface.
	Size() (w, h int)
	// Clear erases the whole surface to transparent, ignoring the transform.
	Clear()
	// ClearRect erases the device-space rectangle covered by (x, y, w, h)
	// under the current transform.
	ClearRect(x, y, w, h float64)
	FillRect(x, y, w, h float64, c Color)
	// DrawImage draws img with its top-left bound at local (x, y).
	DrawImage(img image.Image, x, y float64)
	// NewSurface allocates an offscreen surface compatible with this canvas.
	NewSurface(w, h int) Surface
	// DrawSurface blits s with its top-left pixel at local (x, y).
	DrawSurface(s Surface, x, y float64)
}

// Surface is an offscreen Canvas that can be blitted onto its parent canvas.
type Surface interface {
	Canvas
	Image() image.Image
	Dispose()
}

// transformStack is the Save/Restore state shared by the bundled canvases.
type transformStack struct {
	cur   Matrix
	stack []Matrix
}

func newTransformStack() transformStack {
	return transformStack{cur: Identity()}
}

func (t *transformStack) Save() {
	t.stack = append(t.stack, t.cur)
}

// Restore pops the last saved transform. Unbalanced calls are ignored.
func (t *transformStack) Restore() {
	n := len(t.stack)
	if n == 0 {
		return
	}
	t.cur = t.stack[n-1]
	t.stack = t.stack[:n-1]
}

func (t *transformStack) Translate(x, y float64) {
	t.cur = t.cur.Multiply(Translation(x, y))
}

func (t *transformStack) Rotate(rad float64) {
	if rad == 0 {
		return
	}
	t.cur = t.cur.Multiply(Rotation(rad))
}

func (t *transformStack) Scale(x, y float64) {
	if x == 1 && y == 1 {
		return
	}
	t.cur = t.cur.Multiply(Scaling(x, y))
}

func (t *transformStack) Transform() Matrix {
	return t.cur
}

// --- ebiten-backed canvas ---

// ImageCanvas draws onto an *ebiten.Image.
type ImageCanvas struct {
	transformStack
	target *ebiten.Image
	images map[image.Image]*ebiten.Image
	op     ebiten.DrawImageOptions
}

// NewImageCanvas wraps target. Returns nil if target is nil.
func NewImageCanvas(target *ebiten.Image) *ImageCanvas {
	if target == nil {
		return nil
	}
	return &ImageCanvas{transformStack: newTransformStack(), target: target}
}

// Target returns the wrapped image.
func (c *ImageCanvas) Target() *ebiten.Image {
	return c.target
}

// Image returns the wrapped image as an image.Image.
func (c *ImageCanvas) Image() image.Image {
	return c.target
}

func (c *ImageCanvas) Size() (int, int) {
	b := c.target.Bounds()
	return b.Dx(), b.Dy()
}

func (c *ImageCanvas) Clear() {
	c.target.Clear()
}

func (c *ImageCanvas) ClearRect(x, y, w, h float64) {
	c.drawPixel(x, y, w, h, ColorWhite, ebiten.BlendClear)
}

func (c *ImageCanvas) FillRect(x, y, w, h float64, col Color) {
	c.drawPixel(x, y, w, h, col, ebiten.BlendSourceOver)
}

// drawPixel stretches WhitePixel over (x, y, w, h) in local space.
func (c *ImageCanvas) drawPixel(x, y, w, h float64, col Color, blend ebiten.Blend) {
	if w == 0 || h == 0 {
		return
	}
	m := c.cur.Multiply(Translation(x, y)).Multiply(Scaling(w, h))
	c.op.GeoM = geoM(m)
	c.op.ColorScale.Reset()
	a := float32(col.A)
	c.op.ColorScale.Scale(float32(col.R)*a, float32(col.G)*a, float32(col.B)*a, a)
	c.op.Blend = blend
	c.target.DrawImage(WhitePixel, &c.op)
}

func (c *ImageCanvas) DrawImage(img image.Image, x, y float64) {
	src := c.ebitenImage(img)
	if src == nil {
		return
	}
	b := src.Bounds()
	m := c.cur.Multiply(Translation(x-float64(b.Min.X), y-float64(b.Min.Y)))
	c.op.GeoM = geoM(m)
	c.op.ColorScale.Reset()
	c.op.Blend = ebiten.BlendSourceOver
	c.target.DrawImage(src, &c.op)
}

// ebitenImage returns img as an *ebiten.Image, uploading and caching
// non-ebiten images on first use.
func (c *ImageCanvas) ebitenImage(img image.Image) *ebiten.Image {
	switch v := img.(type) {
	case nil:
		return nil
	case *ebiten.Image:
		return v
	}
	if c.images == nil {
		c.images = make(map[image.Image]*ebiten.Image)
	}
	if e, ok := c.images[img]; ok {
		return e
	}
	e := ebiten.NewImageFromImage(img)
	c.images[img] = e
	return e
}

// ReleaseImage drops and deallocates the cached upload of img, if any.
func (c *ImageCanvas) ReleaseImage(img image.Image) {
	if e, ok := c.images[img]; ok {
		e.Deallocate()
		delete(c.images, img)
	}
}

func (c *ImageCanvas) NewSurface(w, h int) Surface {
	return NewImageCanvas(ebiten.NewImage(max(w, 1), max(h, 1)))
}

func (c *ImageCanvas) DrawSurface(s Surface, x, y float64) {
	if s == nil {
		return
	}
	c.DrawImage(s.Image(), x, y)
}

// Dispose releases the GPU memory behind the canvas and its upload cache.
func (c *ImageCanvas) Dispose() {
	for _, img := range c.images {
		img.Deallocate()
	}
	c.images = nil
	c.target.Deallocate()
}

// geoM converts a Matrix into an ebiten.GeoM.
func geoM(m Matrix) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}
