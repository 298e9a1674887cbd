package canopy

import "math"

// containsTolerance absorbs float error at rectangle edges in local space.
const containsTolerance = 1e-9

// Scale returns Size / InitialSize per axis. An axis with a zero initial size
// has scale 1.
func (e *Entity) Scale() Vec2 {
	s := Vec2{1, 1}
	if e.initialSize.X != 0 {
		s.X = e.size.X / e.initialSize.X
	}
	if e.initialSize.Y != 0 {
		s.Y = e.size.Y / e.initialSize.Y
	}
	return s
}

// LocalTransform returns Translate(Position) * Rotate(Rotation) * Scale.
func (e *Entity) LocalTransform() Matrix {
	return Compose(e.position, degToRad(e.rotation), e.Scale())
}

// WorldTransform composes the local transforms from the root down to e.
func (e *Entity) WorldTransform() Matrix {
	m := e.LocalTransform()
	for p := e.Parent(); p != nil; p = p.Parent() {
		m = p.LocalTransform().Multiply(m)
	}
	return m
}

// halfExtents returns half the initial size. Local geometry is the
// rectangle (-half, half); Size only enters through the scale.
func (e *Entity) halfExtents() Vec2 {
	return Vec2{math.Abs(e.initialSize.X) / 2, math.Abs(e.initialSize.Y) / 2}
}

// cornersFor returns the four corners of the entity's rectangle under m in
// the order top-left, top-right, bottom-right, bottom-left.
func (e *Entity) cornersFor(m Matrix) [4]Vec2 {
	h := e.halfExtents()
	return [4]Vec2{
		m.Apply(Vec2{-h.X, -h.Y}),
		m.Apply(Vec2{h.X, -h.Y}),
		m.Apply(Vec2{h.X, h.Y}),
		m.Apply(Vec2{-h.X, h.Y}),
	}
}

// WorldCorners returns the entity's corners in world space.
func (e *Entity) WorldCorners() [4]Vec2 {
	return e.cornersFor(e.WorldTransform())
}

// Bounds returns the world-space axis-aligned bounding box.
func (e *Entity) Bounds() Rect {
	c := e.WorldCorners()
	return boundsOf(c[:])
}

// subtreeBounds returns the union of the world bounds of e and all of its
// descendants.
func (e *Entity) subtreeBounds() Rect {
	r := e.Bounds()
	for _, c := range e.Children() {
		r = r.union(c.subtreeBounds())
	}
	return r
}

// WorldToLocal maps a world point into the entity's local space.
func (e *Entity) WorldToLocal(p Vec2) (Vec2, error) {
	return e.WorldTransform().InverseApply(p)
}

// LocalToWorld maps a local point into world space.
func (e *Entity) LocalToWorld(p Vec2) Vec2 {
	return e.WorldTransform().Apply(p)
}

// ContainsPoint reports whether the world point p lies inside the entity's
// rotated rectangle. Edges count as inside. An entity whose transform cannot
// be inverted (zero scale) contains nothing.
func (e *Entity) ContainsPoint(p Vec2) bool {
	l, err := e.WorldToLocal(p)
	if err != nil {
		Logger().Warn("containment test on singular transform", "entity", e.id)
		return false
	}
	h := e.halfExtents()
	return math.Abs(l.X) <= h.X+containsTolerance && math.Abs(l.Y) <= h.Y+containsTolerance
}

// IsInViewport reports whether the entity overlaps the world-space viewport.
// A drawable implementing ViewportTester decides for itself.
func (e *Entity) IsInViewport(viewport Rect) bool {
	return e.inViewport(e.WorldTransform(), viewport)
}

func (e *Entity) inViewport(world Matrix, viewport Rect) bool {
	if vt, ok := e.drawable.(ViewportTester); ok {
		return vt.InViewport(e, viewport)
	}
	c := e.cornersFor(world)
	return boundsOf(c[:]).Intersects(viewport)
}
