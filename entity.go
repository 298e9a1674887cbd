package canopy

import "fmt"

// Geometry is the construction-time state of an entity. Size becomes the
// entity's immutable initial size; later size changes are applied as scale.
type Geometry struct {
	Position Vec2
	Size     Vec2
	Rotation float64 // degrees
	Layer    int
	Static   bool
	Drawable Drawable
}

// Entity is a node in the scene tree. Entities live in their scene's arena
// and refer to their parent and children by id.
type Entity struct {
	id    string
	scene *Scene

	parent         string
	children       []string
	sortedChildren []*Entity
	childrenSorted bool

	position    Vec2
	size        Vec2
	initialSize Vec2
	rotation    float64
	layer       int
	static      bool

	kind     DrawKind
	drawable Drawable

	events     [eventTypeCount]func(PointerEvent)
	pluginKeys []string
	plugins    map[string]EntityPlugin

	// Spatial index membership.
	cells      []CellKey
	indexSnap  indexSnapshot
	indexDirty bool

	renderIndex int
	hitStamp    uint64
	destroyed   bool
}

// NewEntity creates a root entity in the scene. An empty id is replaced by a
// generated one. The entity is registered with the spatial index at once.
func (s *Scene) NewEntity(id string, g Geometry) (*Entity, error) {
	if id == "" {
		id = s.nextEntityID()
	}
	if _, ok := s.entities[id]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	e := &Entity{
		id:          id,
		scene:       s,
		position:    g.Position,
		size:        g.Size,
		initialSize: g.Size,
		rotation:    g.Rotation,
		layer:       g.Layer,
		static:      g.Static,
		kind:        kindOf(g.Drawable),
		drawable:    g.Drawable,
		renderIndex: -1,
	}
	s.entities[id] = e
	s.addRoot(e)
	s.grid.Update(e)
	return e, nil
}

func (s *Scene) nextEntityID() string {
	for {
		s.idCounter++
		id := fmt.Sprintf("entity-%d", s.idCounter)
		if _, taken := s.entities[id]; !taken {
			return id
		}
	}
}

// ID returns the entity's unique id.
func (e *Entity) ID() string { return e.id }

// Scene returns the owning scene.
func (e *Entity) Scene() *Scene { return e.scene }

// Kind returns the draw kind inferred from the entity's drawable.
func (e *Entity) Kind() DrawKind { return e.kind }

// Drawable returns the entity's drawable, or nil for a group.
func (e *Entity) Drawable() Drawable { return e.drawable }

// SetDrawable replaces the drawable and updates Kind.
func (e *Entity) SetDrawable(d Drawable) {
	e.drawable = d
	e.kind = kindOf(d)
}

// IsDestroyed reports whether Destroy has been called.
func (e *Entity) IsDestroyed() bool { return e.destroyed }

// RenderIndex returns the entity's position in the last frame's draw order
// counted from the top: 0 is the last entity drawn. -1 means the entity was
// not drawn in the last frame.
func (e *Entity) RenderIndex() int { return e.renderIndex }

// --- Geometry accessors ---

// Position returns the entity's centre in parent space.
func (e *Entity) Position() Vec2 { return e.position }

// Size returns the current size.
func (e *Entity) Size() Vec2 { return e.size }

// InitialSize returns the size at creation; Size/InitialSize is the scale.
func (e *Entity) InitialSize() Vec2 { return e.initialSize }

// Rotation returns the rotation in degrees.
func (e *Entity) Rotation() float64 { return e.rotation }

// Layer returns the draw layer. Roots are ordered by layer.
func (e *Entity) Layer() int { return e.layer }

// Static reports whether the entity may be baked into a static batch.
func (e *Entity) Static() bool { return e.static }

// SetPosition moves the entity's centre, in parent space.
func (e *Entity) SetPosition(p Vec2) {
	if e.position == p {
		return
	}
	e.position = p
	e.markMoved()
}

// SetSize resizes the entity. The drawable is scaled by Size/InitialSize.
func (e *Entity) SetSize(s Vec2) {
	if e.size == s {
		return
	}
	e.size = s
	e.markMoved()
}

// SetRotation sets the rotation in degrees.
func (e *Entity) SetRotation(deg float64) {
	if e.rotation == deg {
		return
	}
	e.rotation = deg
	e.markMoved()
}

// SetLocalTransform sets position, size and rotation together.
func (e *Entity) SetLocalTransform(position, size Vec2, rotationDeg float64) {
	e.position = position
	e.size = size
	e.rotation = rotationDeg
	e.markMoved()
}

// SetLayer changes the draw layer among siblings. Lower layers draw first.
func (e *Entity) SetLayer(layer int) {
	if e.layer == layer {
		return
	}
	e.layer = layer
	if p := e.Parent(); p != nil {
		p.childrenSorted = false
	} else {
		e.scene.rootsSorted = false
	}
}

// SetStatic flags the entity for static batching. Existing batches are not
// rebuilt; call InvalidateStaticBatch for the affected layer.
func (e *Entity) SetStatic(static bool) {
	e.static = static
}

// markMoved queues the entity and its descendants for re-indexing.
func (e *Entity) markMoved() {
	if e.destroyed {
		return
	}
	e.scene.grid.markSubtreeDirty(e)
}

// --- Tree ---

// Parent returns the parent entity, or nil for a root.
func (e *Entity) Parent() *Entity {
	if e.parent == "" {
		return nil
	}
	return e.scene.entities[e.parent]
}

// Children returns the children in insertion order.
func (e *Entity) Children() []*Entity {
	out := make([]*Entity, 0, len(e.children))
	for _, id := range e.children {
		if c, ok := e.scene.entities[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// NumChildren returns the number of children.
func (e *Entity) NumChildren() int {
	return len(e.children)
}

// AddChild makes child a child of e, detaching it from its current parent.
// Re-adding an existing child moves it to the end of the child list.
// Panics if child is nil.
func (e *Entity) AddChild(child *Entity) error {
	if child == nil {
		panic("canopy: cannot add nil child")
	}
	if e.destroyed || child.destroyed {
		return ErrDestroyed
	}
	if child.scene != e.scene {
		return fmt.Errorf("%w: %q", ErrForeignEntity, child.id)
	}
	if isAncestor(child, e) {
		return fmt.Errorf("%w: %q under %q", ErrCycle, child.id, e.id)
	}
	e.scene.detach(child)
	child.parent = e.id
	e.children = append(e.children, child.id)
	e.childrenSorted = false
	child.markMoved()
	if e.scene.debug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(e)
	}
	return nil
}

// RemoveChild detaches the child with the given id. The child becomes a root
// of the scene; it is not destroyed.
func (e *Entity) RemoveChild(id string) error {
	if !e.hasChild(id) {
		return fmt.Errorf("%w: %q is not a child of %q", ErrEntityNotFound, id, e.id)
	}
	child := e.scene.entities[id]
	e.scene.detach(child)
	e.scene.addRoot(child)
	child.markMoved()
	return nil
}

func (e *Entity) hasChild(id string) bool {
	for _, c := range e.children {
		if c == id {
			return true
		}
	}
	return false
}

// removeChildID removes id from e.children without touching the child.
func (e *Entity) removeChildID(id string) {
	for i, c := range e.children {
		if c == id {
			copy(e.children[i:], e.children[i+1:])
			e.children[len(e.children)-1] = ""
			e.children = e.children[:len(e.children)-1]
			e.childrenSorted = false
			return
		}
	}
}

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *Entity) bool {
	for p := node; p != nil; p = p.Parent() {
		if p == candidate {
			return true
		}
	}
	return false
}

// sortedChildEntities returns the children ordered by layer, stable on
// insertion order.
func (e *Entity) sortedChildEntities() []*Entity {
	if !e.childrenSorted {
		e.sortedChildren = sortByLayer(e.sortedChildren[:0], e.Children())
		e.childrenSorted = true
	}
	return e.sortedChildren
}

// sortByLayer copies src into dst and stable-sorts it by layer with an
// insertion sort. Sibling lists are short and usually already sorted.
func sortByLayer(dst, src []*Entity) []*Entity {
	dst = append(dst, src...)
	for i := 1; i < len(dst); i++ {
		key := dst[i]
		j := i - 1
		for j >= 0 && dst[j].layer > key.layer {
			dst[j+1] = dst[j]
			j--
		}
		dst[j+1] = key
	}
	return dst
}

// ancestors returns e's ancestors, root first.
func (e *Entity) ancestors() []*Entity {
	var out []*Entity
	for p := e.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// hasStaticAncestor reports whether any ancestor is static.
func (e *Entity) hasStaticAncestor() bool {
	for p := e.Parent(); p != nil; p = p.Parent() {
		if p.static {
			return true
		}
	}
	return false
}

// Destroy removes the entity and its whole subtree from the scene. Children
// are destroyed first, then the entity is detached from its parent, then its
// plugins are torn down in attach order. Destroying twice is a no-op.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	for len(e.children) > 0 {
		id := e.children[len(e.children)-1]
		child, ok := e.scene.entities[id]
		if !ok {
			e.removeChildID(id)
			continue
		}
		child.Destroy()
	}
	e.scene.detach(e)
	for _, key := range e.pluginKeys {
		e.plugins[key].Destroy()
	}
	e.pluginKeys = nil
	e.plugins = nil
	e.scene.forget(e)
	e.destroyed = true
	e.events = [eventTypeCount]func(PointerEvent){}
	e.drawable = nil
	e.sortedChildren = nil
	e.renderIndex = -1
}

// --- Events ---

// On registers fn as the entity's handler for evt, replacing any previous
// handler. Pass nil to remove it.
func (e *Entity) On(evt EventType, fn func(PointerEvent)) {
	if evt >= eventTypeCount {
		panic(fmt.Sprintf("canopy: unknown event type %d", evt))
	}
	e.events[evt] = fn
}

// Off removes the entity's handler for evt.
func (e *Entity) Off(evt EventType) {
	e.On(evt, nil)
}

// HasHandler reports whether a handler is registered for evt.
func (e *Entity) HasHandler(evt EventType) bool {
	return evt < eventTypeCount && e.events[evt] != nil
}
