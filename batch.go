package canopy

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// StaticBatch is a pre-rendered offscreen surface holding every static
// entity of one layer. Per frame it costs one blit instead of one draw per
// entity.
type StaticBatch struct {
	key     string
	layer   int
	origin  Vec2
	surface Surface
	members []*Entity
}

// Key returns the batch key, "static-layer-<layer>".
func (b *StaticBatch) Key() string { return b.key }

// Layer returns the batched layer.
func (b *StaticBatch) Layer() int { return b.layer }

// Origin returns the world position of the surface's top-left pixel.
func (b *StaticBatch) Origin() Vec2 { return b.origin }

// Surface returns the offscreen surface, or nil for an empty batch.
func (b *StaticBatch) Surface() Surface { return b.surface }

// Members returns the static entities baked into the batch.
func (b *StaticBatch) Members() []*Entity {
	out := make([]*Entity, len(b.members))
	copy(out, b.members)
	return out
}

// Draw blits the batch surface at its world origin.
func (b *StaticBatch) Draw(c Canvas) {
	if b.surface == nil {
		return
	}
	c.DrawSurface(b.surface, b.origin.X, b.origin.Y)
}

func (b *StaticBatch) dispose() {
	if b.surface != nil {
		b.surface.Dispose()
		b.surface = nil
	}
	b.members = nil
}

// batchKey returns the key of the static batch for layer.
func batchKey(layer int) string {
	return "static-layer-" + strconv.Itoa(layer)
}

// batchSet holds the scene's static batches.
type batchSet struct {
	byKey   map[string]*StaticBatch
	ordered []*StaticBatch
	sorted  bool
}

// BatchStaticObjects bakes the given static entities into one offscreen
// surface per layer. Entities that are not static, belong to another scene,
// are destroyed, or sit under a static ancestor (they are drawn as part of
// that ancestor's subtree) are ignored. A layer that already has a batch is
// left untouched, so calling this twice with the same input is a no-op.
// Members are drawn onto the surface in the order given, each with its whole
// subtree.
func (s *Scene) BatchStaticObjects(entities []*Entity) error {
	groups := make(map[int][]*Entity)
	var layers []int
	for _, e := range entities {
		if e == nil || e.destroyed || !e.static || e.scene != s || e.hasStaticAncestor() {
			continue
		}
		if _, ok := groups[e.layer]; !ok {
			layers = append(layers, e.layer)
		}
		groups[e.layer] = append(groups[e.layer], e)
	}
	sort.Ints(layers)
	s.grid.Flush()
	for _, layer := range layers {
		key := batchKey(layer)
		if _, ok := s.batches.byKey[key]; ok {
			continue
		}
		b, err := s.buildBatch(layer, groups[layer])
		if err != nil {
			return err
		}
		if s.batches.byKey == nil {
			s.batches.byKey = make(map[string]*StaticBatch)
		}
		s.batches.byKey[key] = b
		s.batches.ordered = append(s.batches.ordered, b)
		s.batches.sorted = false
	}
	return nil
}

// maxBatchSurface bounds the edge of a batch surface in pixels.
const maxBatchSurface = 1 << 14

func (s *Scene) buildBatch(layer int, members []*Entity) (*StaticBatch, error) {
	b := &StaticBatch{key: batchKey(layer), layer: layer, members: members}
	bounds := members[0].subtreeBounds()
	for _, e := range members[1:] {
		bounds = bounds.union(e.subtreeBounds())
	}
	if !finiteRect(bounds) {
		return nil, fmt.Errorf("batch %s: non-finite bounds", b.key)
	}
	ox := math.Floor(bounds.X)
	oy := math.Floor(bounds.Y)
	w := int(math.Ceil(bounds.X+bounds.Width) - ox)
	h := int(math.Ceil(bounds.Y+bounds.Height) - oy)
	b.origin = Vec2{ox, oy}
	if w <= 0 || h <= 0 {
		return b, nil
	}
	if w > maxBatchSurface || h > maxBatchSurface {
		return nil, fmt.Errorf("batch %s: surface %dx%d exceeds %d", b.key, w, h, maxBatchSurface)
	}

	surf := s.canvas.NewSurface(w, h)
	surf.Save()
	surf.Translate(-ox, -oy)
	for _, e := range members {
		surf.Save()
		for _, a := range e.ancestors() {
			applyLocal(surf, a)
		}
		drawSubtree(surf, e)
		surf.Restore()
	}
	surf.Restore()
	b.surface = surf

	Logger().Info("static batch built",
		"key", b.key, "members", len(members), "width", w, "height", h)
	return b, nil
}

// drawSubtree draws e and all of its descendants without culling.
func drawSubtree(c Canvas, e *Entity) {
	c.Save()
	applyLocal(c, e)
	if e.drawable != nil {
		e.drawable.Draw(c, e)
	}
	e.renderPlugins(c)
	for _, child := range e.sortedChildEntities() {
		drawSubtree(c, child)
	}
	c.Restore()
}

// StaticBatch returns the batch for layer, if one exists.
func (s *Scene) StaticBatch(layer int) (*StaticBatch, bool) {
	b, ok := s.batches.byKey[batchKey(layer)]
	return b, ok
}

// StaticBatches returns the batches ordered by layer.
func (s *Scene) StaticBatches() []*StaticBatch {
	ordered := s.orderedBatches()
	out := make([]*StaticBatch, len(ordered))
	copy(out, ordered)
	return out
}

// InvalidateStaticBatch disposes the batch for layer so the next
// BatchStaticObjects call rebuilds it. It reports whether a batch existed.
func (s *Scene) InvalidateStaticBatch(layer int) bool {
	key := batchKey(layer)
	b, ok := s.batches.byKey[key]
	if !ok {
		return false
	}
	delete(s.batches.byKey, key)
	for i, o := range s.batches.ordered {
		if o == b {
			s.batches.ordered = append(s.batches.ordered[:i], s.batches.ordered[i+1:]...)
			break
		}
	}
	b.dispose()
	return true
}

// ClearStaticBatches disposes every batch.
func (s *Scene) ClearStaticBatches() {
	for _, b := range s.batches.ordered {
		b.dispose()
	}
	s.batches = batchSet{}
}

func (s *Scene) orderedBatches() []*StaticBatch {
	if !s.batches.sorted {
		sort.SliceStable(s.batches.ordered, func(i, j int) bool {
			return s.batches.ordered[i].layer < s.batches.ordered[j].layer
		})
		s.batches.sorted = true
	}
	return s.batches.ordered
}
