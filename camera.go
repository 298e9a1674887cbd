package canopy

import (
	"fmt"
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// panAnim holds active pan-to tweens for the camera offset.
type panAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// ZoomHandler is notified after the zoom factor changes.
type ZoomHandler func(oldZoom, newZoom float64)

type zoomSub struct {
	id uint32
	fn ZoomHandler
}

// Camera is the world camera: screen = world*Zoom + Offset. It is applied
// once at the root of the render traversal and inverted for pointer input.
type Camera struct {
	zoom   float64
	offset Vec2

	subs   []zoomSub
	nextID uint32

	zoomTween *gween.Tween
	panTween  *panAnim
}

func newCamera() *Camera {
	return &Camera{zoom: 1}
}

// Zoom returns the zoom factor.
func (c *Camera) Zoom() float64 { return c.zoom }

// Offset returns the screen-space pan offset.
func (c *Camera) Offset() Vec2 { return c.offset }

// SetZoom sets the zoom factor and notifies zoom subscribers if it changed.
// Returns ErrInvalidZoom unless z is finite and positive.
func (c *Camera) SetZoom(z float64) error {
	if !(z > 0) || math.IsInf(z, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidZoom, z)
	}
	old := c.zoom
	if old == z {
		return nil
	}
	c.zoom = z
	for _, s := range append([]zoomSub(nil), c.subs...) {
		s.fn(old, z)
	}
	return nil
}

// SetOffset sets the pan offset.
func (c *Camera) SetOffset(o Vec2) { c.offset = o }

// Pan moves the offset by (dx, dy) screen pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.offset = Vec2{c.offset.X + dx, c.offset.Y + dy}
}

// ZoomAt zooms to z keeping the world point under screen fixed.
func (c *Camera) ZoomAt(z float64, screen Vec2) error {
	anchor := c.ScreenToWorld(screen)
	if err := c.SetZoom(z); err != nil {
		return err
	}
	c.offset = Vec2{screen.X - anchor.X*c.zoom, screen.Y - anchor.Y*c.zoom}
	return nil
}

// OnZoom subscribes fn to zoom changes.
func (c *Camera) OnZoom(fn ZoomHandler) ZoomHandle {
	if fn == nil {
		panic("canopy: nil zoom handler")
	}
	c.nextID++
	c.subs = append(c.subs, zoomSub{id: c.nextID, fn: fn})
	return ZoomHandle{id: c.nextID, cam: c}
}

// ZoomHandle unsubscribes a zoom handler.
type ZoomHandle struct {
	id  uint32
	cam *Camera
}

// Remove unsubscribes the handler. Safe to call more than once.
func (h ZoomHandle) Remove() {
	if h.cam == nil {
		return
	}
	subs := h.cam.subs
	for i, s := range subs {
		if s.id == h.id {
			h.cam.subs = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Reset cancels animations and restores zoom 1 and offset (0, 0).
func (c *Camera) Reset() {
	c.zoomTween = nil
	c.panTween = nil
	c.offset = Vec2{}
	_ = c.SetZoom(1)
}

// ZoomTo animates the zoom factor to z over duration seconds.
func (c *Camera) ZoomTo(z float64, duration float32, easeFn ease.TweenFunc) error {
	if !(z > 0) || math.IsInf(z, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidZoom, z)
	}
	c.zoomTween = gween.New(float32(c.zoom), float32(z), duration, easeFn)
	return nil
}

// PanTo animates the offset to o over duration seconds.
func (c *Camera) PanTo(o Vec2, duration float32, easeFn ease.TweenFunc) {
	c.panTween = &panAnim{
		tweenX: gween.New(float32(c.offset.X), float32(o.X), duration, easeFn),
		tweenY: gween.New(float32(c.offset.Y), float32(o.Y), duration, easeFn),
	}
}

// Animating reports whether a ZoomTo or PanTo is in progress.
func (c *Camera) Animating() bool {
	return c.zoomTween != nil || c.panTween != nil
}

// update advances camera animations. Called from Scene.Update.
func (c *Camera) update(dt float32) {
	if c.zoomTween != nil {
		val, done := c.zoomTween.Update(dt)
		if val > 0 {
			_ = c.SetZoom(float64(val))
		}
		if done {
			c.zoomTween = nil
		}
	}
	if c.panTween != nil {
		if !c.panTween.doneX {
			val, done := c.panTween.tweenX.Update(dt)
			c.offset.X = float64(val)
			c.panTween.doneX = done
		}
		if !c.panTween.doneY {
			val, done := c.panTween.tweenY.Update(dt)
			c.offset.Y = float64(val)
			c.panTween.doneY = done
		}
		if c.panTween.doneX && c.panTween.doneY {
			c.panTween = nil
		}
	}
}

// ViewMatrix returns Translate(Offset) * Scale(Zoom).
func (c *Camera) ViewMatrix() Matrix {
	return Matrix{c.zoom, 0, 0, c.zoom, c.offset.X, c.offset.Y}
}

// WorldToScreen maps a world point to screen space.
func (c *Camera) WorldToScreen(p Vec2) Vec2 {
	return Vec2{p.X*c.zoom + c.offset.X, p.Y*c.zoom + c.offset.Y}
}

// ScreenToWorld maps a screen point to world space.
func (c *Camera) ScreenToWorld(p Vec2) Vec2 {
	return Vec2{(p.X - c.offset.X) / c.zoom, (p.Y - c.offset.Y) / c.zoom}
}

// VisibleBounds returns the world-space rectangle visible on a w x h screen.
func (c *Camera) VisibleBounds(w, h float64) Rect {
	tl := c.ScreenToWorld(Vec2{})
	return Rect{X: tl.X, Y: tl.Y, Width: w / c.zoom, Height: h / c.zoom}
}

// apply pushes the camera transform onto a canvas.
func (c *Camera) apply(cv Canvas) {
	cv.Translate(c.offset.X, c.offset.Y)
	cv.Scale(c.zoom, c.zoom)
}
