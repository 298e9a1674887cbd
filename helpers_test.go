package canopy

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// newTestScene returns a scene over a w x h RasterCanvas with a FrameQueue.
func newTestScene(t *testing.T, w, h int) (*Scene, *RasterCanvas, *FrameQueue) {
	t.Helper()
	canvas := NewRasterCanvas(w, h)
	frames := &FrameQueue{}
	s, err := NewScene(canvas, frames, DefaultConfig())
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	return s, canvas, frames
}

// mustEntity creates an entity or fails the test.
func mustEntity(t *testing.T, s *Scene, id string, g Geometry) *Entity {
	t.Helper()
	e, err := s.NewEntity(id, g)
	if err != nil {
		t.Fatalf("NewEntity(%q): %v", id, err)
	}
	return e
}

// box returns the geometry of a w x h rectangle centred on (x, y).
func box(x, y, w, h float64) Geometry {
	return Geometry{Position: Vec2{x, y}, Size: Vec2{w, h}}
}

// drawLog is a Drawable that appends its entity's id to a shared log.
type drawLog struct {
	log *[]string
}

func (d drawLog) Draw(_ Canvas, e *Entity) {
	*d.log = append(*d.log, e.ID())
}

// stubScenePlugin records its lifecycle calls.
type stubScenePlugin struct {
	calls    []string
	startErr error
	renders  int
}

func (p *stubScenePlugin) Start(*Scene) error {
	p.calls = append(p.calls, "start")
	return p.startErr
}
func (p *stubScenePlugin) Stop()         { p.calls = append(p.calls, "stop") }
func (p *stubScenePlugin) Render(Canvas) { p.renders++ }
func (p *stubScenePlugin) Destroy()      { p.calls = append(p.calls, "destroy") }

// stubEntityPlugin records renders and destruction into a shared log.
type stubEntityPlugin struct {
	name string
	log  *[]string
}

func (p stubEntityPlugin) Render(_ Canvas, e *Entity) {
	*p.log = append(*p.log, p.name+".render:"+e.ID())
}
func (p stubEntityPlugin) Destroy() { *p.log = append(*p.log, p.name+".destroy") }
