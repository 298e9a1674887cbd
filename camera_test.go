package canopy

import (
	"errors"
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestCameraDefaults(t *testing.T) {
	cam := newCamera()
	if cam.Zoom() != 1.0 {
		t.Errorf("Zoom = %f, want 1.0", cam.Zoom())
	}
	if cam.Offset() != (Vec2{}) {
		t.Errorf("Offset = %v, want origin", cam.Offset())
	}
	assertMatrix(t, "view", cam.ViewMatrix(), Identity())
}

func TestCameraRoundTrip(t *testing.T) {
	cam := newCamera()
	_ = cam.SetZoom(2.5)
	cam.SetOffset(Vec2{30, -12})
	p := Vec2{17, 44}
	s := cam.WorldToScreen(p)
	assertVec(t, "view matrix", cam.ViewMatrix().Apply(p), s)
	assertVec(t, "round trip", cam.ScreenToWorld(s), p)
}

func TestCameraVisibleBounds(t *testing.T) {
	cam := newCamera()
	_ = cam.SetZoom(2)
	cam.SetOffset(Vec2{100, 50})
	b := cam.VisibleBounds(800, 600)
	if !approxEqual(b.X, -50, epsilon) || !approxEqual(b.Y, -25, epsilon) ||
		!approxEqual(b.Width, 400, epsilon) || !approxEqual(b.Height, 300, epsilon) {
		t.Errorf("VisibleBounds = %+v", b)
	}
}

func TestCameraInvalidZoom(t *testing.T) {
	cam := newCamera()
	for _, z := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := cam.SetZoom(z); !errors.Is(err, ErrInvalidZoom) {
			t.Errorf("SetZoom(%v) err = %v", z, err)
		}
	}
	if cam.Zoom() != 1 {
		t.Errorf("rejected zoom changed Zoom to %v", cam.Zoom())
	}
}

func TestCameraZoomSubscribers(t *testing.T) {
	cam := newCamera()
	var calls [][2]float64
	h := cam.OnZoom(func(o, n float64) { calls = append(calls, [2]float64{o, n}) })

	_ = cam.SetZoom(2)
	_ = cam.SetZoom(2) // unchanged: no notification
	_ = cam.SetZoom(0.5)
	h.Remove()
	_ = cam.SetZoom(3)

	want := [][2]float64{{1, 2}, {2, 0.5}}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestCameraZoomAtKeepsAnchor(t *testing.T) {
	cam := newCamera()
	cam.SetOffset(Vec2{10, 20})
	anchor := Vec2{200, 150}
	before := cam.ScreenToWorld(anchor)
	if err := cam.ZoomAt(3, anchor); err != nil {
		t.Fatal(err)
	}
	assertVec(t, "anchor", cam.ScreenToWorld(anchor), before)
}

func TestCameraPan(t *testing.T) {
	cam := newCamera()
	cam.Pan(5, -3)
	cam.Pan(1, 1)
	assertVec(t, "offset", cam.Offset(), Vec2{6, -2})
}

func TestCameraReset(t *testing.T) {
	cam := newCamera()
	notified := false
	_ = cam.SetZoom(4)
	cam.SetOffset(Vec2{9, 9})
	cam.OnZoom(func(_, n float64) { notified = n == 1 })
	cam.Reset()
	if cam.Zoom() != 1 || cam.Offset() != (Vec2{}) {
		t.Errorf("after Reset zoom=%v offset=%v", cam.Zoom(), cam.Offset())
	}
	if !notified {
		t.Error("Reset should notify zoom subscribers")
	}
}

func TestCameraZoomTo(t *testing.T) {
	cam := newCamera()
	var last float64
	cam.OnZoom(func(_, n float64) { last = n })
	if err := cam.ZoomTo(3, 1.0, ease.Linear); err != nil {
		t.Fatal(err)
	}
	cam.update(0.5)
	if !approxEqual(cam.Zoom(), 2, 1e-5) {
		t.Errorf("mid-tween zoom = %v, want ~2", cam.Zoom())
	}
	cam.update(0.6)
	if !approxEqual(cam.Zoom(), 3, 1e-5) {
		t.Errorf("final zoom = %v, want 3", cam.Zoom())
	}
	if cam.Animating() {
		t.Error("tween should be finished")
	}
	if !approxEqual(last, 3, 1e-5) {
		t.Errorf("subscriber saw %v, want 3", last)
	}
	if err := cam.ZoomTo(0, 1, ease.Linear); !errors.Is(err, ErrInvalidZoom) {
		t.Errorf("ZoomTo(0) err = %v", err)
	}
}

func TestCameraPanTo(t *testing.T) {
	cam := newCamera()
	cam.PanTo(Vec2{100, -40}, 1.0, ease.Linear)
	cam.update(0.25)
	if !approxEqual(cam.Offset().X, 25, 1e-4) || !approxEqual(cam.Offset().Y, -10, 1e-4) {
		t.Errorf("quarter offset = %v", cam.Offset())
	}
	cam.update(1)
	if !approxEqual(cam.Offset().X, 100, 1e-4) || !approxEqual(cam.Offset().Y, -40, 1e-4) {
		t.Errorf("final offset = %v", cam.Offset())
	}
	if cam.Animating() {
		t.Error("pan should be finished")
	}
}

func TestSceneUpdateAdvancesCamera(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	s.Camera().PanTo(Vec2{10, 0}, 0.1, ease.Linear)
	s.Update(0.2)
	if !approxEqual(s.Camera().Offset().X, 10, 1e-4) {
		t.Errorf("offset = %v", s.Camera().Offset())
	}
}
