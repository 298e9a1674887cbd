package canopy

import (
	"errors"
	"math"
	"testing"
)

func TestNewEntityDefaults(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	e := mustEntity(t, s, "a", box(10, 20, 30, 40))
	if e.ID() != "a" {
		t.Errorf("ID = %q, want a", e.ID())
	}
	if e.Parent() != nil {
		t.Error("new entity should be a root")
	}
	if e.Kind() != DrawKindGroup {
		t.Errorf("Kind = %v, want group", e.Kind())
	}
	if e.RenderIndex() != -1 {
		t.Errorf("RenderIndex = %d, want -1", e.RenderIndex())
	}
	if e.InitialSize() != (Vec2{30, 40}) {
		t.Errorf("InitialSize = %v", e.InitialSize())
	}
	if len(s.Grid().CellsOf(e)) == 0 {
		t.Error("entity should be indexed at construction")
	}
}

func TestNewEntityDuplicateID(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	mustEntity(t, s, "a", box(0, 0, 1, 1))
	if _, err := s.NewEntity("a", box(0, 0, 1, 1)); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
}

func TestNewEntityGeneratedIDs(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	mustEntity(t, s, "entity-1", box(0, 0, 1, 1))
	e := mustEntity(t, s, "", box(0, 0, 1, 1))
	if e.ID() == "" || e.ID() == "entity-1" {
		t.Errorf("generated id = %q", e.ID())
	}
}

func TestKindInference(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	tests := []struct {
		name string
		d    Drawable
		want DrawKind
	}{
		{"group", nil, DrawKindGroup},
		{"fill", Fill{Color: ColorWhite}, DrawKindFill},
		{"image", Picture{}, DrawKindImage},
		{"custom", DrawFunc(func(Canvas, *Entity) {}), DrawKindCustom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustEntity(t, s, tt.name, Geometry{Drawable: tt.d})
			if e.Kind() != tt.want {
				t.Errorf("Kind = %v, want %v", e.Kind(), tt.want)
			}
			k, ok := ParseDrawKind(tt.want.String())
			if !ok || k != tt.want {
				t.Errorf("ParseDrawKind(%q) = %v, %v", tt.want.String(), k, ok)
			}
		})
	}
}

// --- Geometry ---

func TestContainsPointScenario(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	e := mustEntity(t, s, "e", box(100, 100, 100, 100))
	tests := []struct {
		name string
		p    Vec2
		want bool
	}{
		{"centre", Vec2{100, 100}, true},
		{"outside", Vec2{200, 100}, false},
		{"right edge", Vec2{150, 100}, true},
		{"corner", Vec2{50, 50}, true},
		{"just outside", Vec2{150.001, 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.ContainsPoint(tt.p); got != tt.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestContainsPointRotated(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	e := mustEntity(t, s, "e", Geometry{Position: Vec2{0, 0}, Size: Vec2{100, 20}, Rotation: 90})
	// Rotated 90°: the long axis is vertical.
	if !e.ContainsPoint(Vec2{0, 45}) {
		t.Error("(0,45) should be inside the rotated rectangle")
	}
	if e.ContainsPoint(Vec2{45, 0}) {
		t.Error("(45,0) should be outside the rotated rectangle")
	}
}

func TestContainsPointMatchesCorners(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	parent := mustEntity(t, s, "p", Geometry{Position: Vec2{50, 30}, Size: Vec2{10, 10}, Rotation: 30})
	child := mustEntity(t, s, "c", Geometry{Position: Vec2{20, 0}, Size: Vec2{40, 20}, Rotation: 15})
	if err := parent.AddChild(child); err != nil {
		t.Fatal(err)
	}
	child.SetSize(Vec2{80, 10})

	c := child.WorldCorners()
	centre := Vec2{(c[0].X + c[2].X) / 2, (c[0].Y + c[2].Y) / 2}
	if !child.ContainsPoint(centre) {
		t.Error("centre of world corners should be inside")
	}
	for i, corner := range c {
		if !child.ContainsPoint(corner) {
			t.Errorf("corner %d %v should be inside (edge-inclusive)", i, corner)
		}
		// Push the corner outward from the centre.
		out := Vec2{corner.X + (corner.X-centre.X)*0.01, corner.Y + (corner.Y-centre.Y)*0.01}
		if child.ContainsPoint(out) {
			t.Errorf("point %v just past corner %d should be outside", out, i)
		}
	}
}

func TestContainsPointSingular(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	e := mustEntity(t, s, "e", box(0, 0, 10, 10))
	e.SetSize(Vec2{0, 10})
	if e.ContainsPoint(Vec2{0, 0}) {
		t.Error("zero-scale entity should contain nothing")
	}
	if _, err := e.WorldToLocal(Vec2{}); !errors.Is(err, ErrSingularTransform) {
		t.Errorf("WorldToLocal err = %v, want ErrSingularTransform", err)
	}
}

func TestSizeAppliesAsScale(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	e := mustEntity(t, s, "e", box(0, 0, 10, 20))
	e.SetSize(Vec2{30, 10})
	assertVec(t, "scale", e.Scale(), Vec2{3, 0.5})
	b := e.Bounds()
	assertNear(t, "width", b.Width, 30)
	assertNear(t, "height", b.Height, 10)

	zero := mustEntity(t, s, "z", Geometry{})
	assertVec(t, "zero initial scale", zero.Scale(), Vec2{1, 1})
}

func TestWorldTransformComposesParentFirst(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	parent := mustEntity(t, s, "p", Geometry{Position: Vec2{100, 0}, Size: Vec2{10, 10}, Rotation: 90})
	child := mustEntity(t, s, "c", box(10, 0, 10, 10))
	if err := parent.AddChild(child); err != nil {
		t.Fatal(err)
	}
	want := parent.LocalTransform().Multiply(child.LocalTransform())
	assertMatrix(t, "world", child.WorldTransform(), want)
	// Child offset (10,0) rotated 90° lands at (0,10) relative to the parent.
	assertVec(t, "origin", child.LocalToWorld(Vec2{}), Vec2{100, 10})
}

func TestIsInViewport(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	e := mustEntity(t, s, "e", box(0, 0, 10, 10))
	if !e.IsInViewport(Rect{0, 0, 100, 100}) {
		t.Error("entity overlapping viewport corner should be visible")
	}
	if e.IsInViewport(Rect{20, 20, 100, 100}) {
		t.Error("entity away from viewport should not be visible")
	}
}

type alwaysVisible struct{ Fill }

func (alwaysVisible) InViewport(*Entity, Rect) bool { return true }

func TestViewportTesterOverride(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	e := mustEntity(t, s, "e", Geometry{Position: Vec2{1e6, 1e6}, Size: Vec2{1, 1}, Drawable: alwaysVisible{}})
	if !e.IsInViewport(Rect{0, 0, 10, 10}) {
		t.Error("ViewportTester should override culling")
	}
}

// --- Tree ---

func TestAddChildReparents(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	a := mustEntity(t, s, "a", Geometry{})
	b := mustEntity(t, s, "b", Geometry{})
	c := mustEntity(t, s, "c", Geometry{})
	if err := a.AddChild(c); err != nil {
		t.Fatal(err)
	}
	if err := b.AddChild(c); err != nil {
		t.Fatal(err)
	}
	if a.NumChildren() != 0 {
		t.Errorf("old parent still has %d children", a.NumChildren())
	}
	if c.Parent() != b {
		t.Error("child should be under b")
	}
	if len(s.Roots()) != 2 {
		t.Errorf("roots = %d, want 2", len(s.Roots()))
	}
}

func TestAddChildRejectsCycles(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	a := mustEntity(t, s, "a", Geometry{})
	b := mustEntity(t, s, "b", Geometry{})
	c := mustEntity(t, s, "c", Geometry{})
	if err := a.AddChild(b); err != nil {
		t.Fatal(err)
	}
	if err := b.AddChild(c); err != nil {
		t.Fatal(err)
	}
	if err := c.AddChild(a); !errors.Is(err, ErrCycle) {
		t.Errorf("c.AddChild(a) err = %v, want ErrCycle", err)
	}
	if err := a.AddChild(a); !errors.Is(err, ErrCycle) {
		t.Errorf("a.AddChild(a) err = %v, want ErrCycle", err)
	}
	if a.Parent() != nil || c.Parent() != b {
		t.Error("rejected AddChild must not change the tree")
	}
}

func TestAddChildForeignAndDestroyed(t *testing.T) {
	s1, _, _ := newTestScene(t, 10, 10)
	s2, _, _ := newTestScene(t, 10, 10)
	a := mustEntity(t, s1, "a", Geometry{})
	b := mustEntity(t, s2, "b", Geometry{})
	if err := a.AddChild(b); !errors.Is(err, ErrForeignEntity) {
		t.Errorf("err = %v, want ErrForeignEntity", err)
	}
	c := mustEntity(t, s1, "c", Geometry{})
	c.Destroy()
	if err := a.AddChild(c); !errors.Is(err, ErrDestroyed) {
		t.Errorf("err = %v, want ErrDestroyed", err)
	}
}

func TestAddChildNilPanics(t *testing.T) {
	s, _, _ := newTestScene(t, 10, 10)
	a := mustEntity(t, s, "a", Geometry{})
	defer func() {
		if recover() == nil {
			t.Error("AddChild(nil) should panic")
		}
	}()
	_ = a.AddChild(nil)
}

func TestRemoveChild(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	a := mustEntity(t, s, "a", box(50, 50, 10, 10))
	b := mustEntity(t, s, "b", box(10, 0, 10, 10))
	if err := a.AddChild(b); err != nil {
		t.Fatal(err)
	}
	if err := a.RemoveChild("b"); err != nil {
		t.Fatal(err)
	}
	if b.Parent() != nil {
		t.Error("removed child should be a root")
	}
	assertVec(t, "world position", b.WorldTransform().Position(), Vec2{10, 0})
	if err := a.RemoveChild("b"); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("second RemoveChild err = %v, want ErrEntityNotFound", err)
	}
}

func TestDestroyOrder(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	var log []string
	parent := mustEntity(t, s, "parent", Geometry{})
	child := mustEntity(t, s, "child", Geometry{})
	if err := parent.AddChild(child); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"p1", "p2"} {
		if err := parent.AttachPlugin(key, stubEntityPlugin{name: key, log: &log}); err != nil {
			t.Fatal(err)
		}
	}
	if err := child.AttachPlugin("c1", stubEntityPlugin{name: "c1", log: &log}); err != nil {
		t.Fatal(err)
	}

	parent.Destroy()

	want := []string{"c1.destroy", "p1.destroy", "p2.destroy"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
	if s.Len() != 0 {
		t.Errorf("scene still has %d entities", s.Len())
	}
	if !parent.IsDestroyed() || !child.IsDestroyed() {
		t.Error("both entities should be destroyed")
	}
	parent.Destroy() // no-op
}

func TestDestroyDetachesFromParent(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	parent := mustEntity(t, s, "parent", Geometry{})
	child := mustEntity(t, s, "child", box(0, 0, 10, 10))
	if err := parent.AddChild(child); err != nil {
		t.Fatal(err)
	}
	child.Destroy()
	if parent.NumChildren() != 0 {
		t.Errorf("parent has %d children", parent.NumChildren())
	}
	for _, e := range s.Grid().QueryPoint(Vec2{}) {
		if e == child {
			t.Error("destroyed entity still indexed")
		}
	}
}

func TestSiblingsSortByLayerStable(t *testing.T) {
	s, _, _ := newTestScene(t, 100, 100)
	p := mustEntity(t, s, "p", Geometry{})
	for _, tc := range []struct {
		id    string
		layer int
	}{{"a", 2}, {"b", 1}, {"c", 2}, {"d", 0}} {
		e := mustEntity(t, s, tc.id, Geometry{Layer: tc.layer})
		if err := p.AddChild(e); err != nil {
			t.Fatal(err)
		}
	}
	var got []string
	for _, e := range p.sortedChildEntities() {
		got = append(got, e.ID())
	}
	want := []string{"d", "b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	e, _ := s.Entity("d")
	e.SetLayer(5)
	last := p.sortedChildEntities()[3]
	if last.ID() != "d" {
		t.Errorf("after SetLayer last = %q, want d", last.ID())
	}
}

func TestEventTable(t *testing.T) {
	s, _, _ := newTestScene(t, 10, 10)
	e := mustEntity(t, s, "e", Geometry{})
	e.On(EventClick, func(PointerEvent) {})
	if !e.HasHandler(EventClick) {
		t.Error("handler not registered")
	}
	e.Off(EventClick)
	if e.HasHandler(EventClick) {
		t.Error("handler not removed")
	}
}

func TestDegToRad(t *testing.T) {
	assertNear(t, "180", degToRad(180), math.Pi)
}
