package canopy

import "image"

// DrawKind classifies what an entity draws. The pipeline treats every kind
// the same way; the kind is carried for snapshots and for DrawableFactory.
type DrawKind uint8

const (
	DrawKindGroup  DrawKind = iota // draws nothing; a container for children
	DrawKindFill                   // solid rectangle (Fill)
	DrawKindImage                  // raster image (Picture)
	DrawKindCustom                 // any other Drawable
)

var drawKindNames = [...]string{"group", "fill", "image", "custom"}

func (k DrawKind) String() string {
	if int(k) < len(drawKindNames) {
		return drawKindNames[k]
	}
	return "unknown"
}

// ParseDrawKind is the inverse of DrawKind.String.
func ParseDrawKind(s string) (DrawKind, bool) {
	for i, name := range drawKindNames {
		if name == s {
			return DrawKind(i), true
		}
	}
	return DrawKindGroup, false
}

// Drawable renders an entity. Draw is called with the canvas already
// transformed into the entity's local space: the entity's initial size is
// centred on the origin, so the drawable should cover
// (-InitialSize/2, InitialSize/2). Current size is applied as a scale.
type Drawable interface {
	Draw(c Canvas, e *Entity)
}

// ViewportTester lets a Drawable override the default culling test (the
// world AABB of the entity's rectangle against the viewport).
type ViewportTester interface {
	InViewport(e *Entity, viewport Rect) bool
}

// DrawFunc adapts a plain function to the Drawable interface.
type DrawFunc func(c Canvas, e *Entity)

// Draw calls f(c, e).
func (f DrawFunc) Draw(c Canvas, e *Entity) { f(c, e) }

// Fill draws a solid rectangle covering the entity.
type Fill struct {
	Color Color
}

func (f Fill) Draw(c Canvas, e *Entity) {
	s := e.initialSize
	c.FillRect(-s.X/2, -s.Y/2, s.X, s.Y, f.Color)
}

// Picture draws an image stretched over the entity.
type Picture struct {
	Image image.Image
}

func (p Picture) Draw(c Canvas, e *Entity) {
	if p.Image == nil {
		return
	}
	b := p.Image.Bounds()
	if b.Empty() {
		return
	}
	s := e.initialSize
	c.Save()
	c.Translate(-s.X/2, -s.Y/2)
	c.Scale(s.X/float64(b.Dx()), s.Y/float64(b.Dy()))
	c.DrawImage(p.Image, 0, 0)
	c.Restore()
}

// kindOf infers the DrawKind of d.
func kindOf(d Drawable) DrawKind {
	switch d.(type) {
	case nil:
		return DrawKindGroup
	case Fill, *Fill:
		return DrawKindFill
	case Picture, *Picture:
		return DrawKindImage
	default:
		return DrawKindCustom
	}
}
