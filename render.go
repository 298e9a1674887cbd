package canopy

import "time"

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Frame    uint64
	Drawn    int // live entities drawn
	Culled   int // live entities skipped by culling
	Batches  int // static batches blitted
	Plugins  int // scene plugins rendered
	Duration time.Duration
}

// Stats returns the stats of the last rendered frame.
func (s *Scene) Stats() FrameStats { return s.stats }

// DrawOrder returns the entities drawn in the last frame, bottom first.
func (s *Scene) DrawOrder() []*Entity {
	out := make([]*Entity, len(s.drawOrder))
	copy(out, s.drawOrder)
	return out
}

// RenderFrame renders one frame onto the scene's canvas regardless of the
// pipeline state. The frame loop calls it once per scheduled frame:
//
//  1. clear the canvas and flush pending spatial-index updates
//  2. draw the live (non-static) tree depth-first, roots and siblings by
//     layer, skipping entities outside the viewport
//  3. blit the static batches in layer order
//  4. record every drawn entity's render index
//  5. render the running scene plugins
func (s *Scene) RenderFrame() {
	start := time.Now()
	s.frameNo++
	stats := FrameStats{Frame: s.frameNo}

	c := s.canvas
	c.Clear()
	s.grid.Flush()

	w, h := c.Size()
	viewport := s.camera.VisibleBounds(float64(w), float64(h))
	s.prevOrder, s.drawOrder = s.drawOrder, s.prevOrder[:0]

	for _, root := range append([]*Entity(nil), s.orderedRoots()...) {
		c.Save()
		s.camera.apply(c)
		s.renderEntity(c, root, Identity(), viewport, &stats)
		c.Restore()
	}

	for _, b := range s.orderedBatches() {
		c.Save()
		s.camera.apply(c)
		b.Draw(c)
		c.Restore()
		for _, m := range b.members {
			if !m.destroyed {
				s.drawOrder = append(s.drawOrder, m)
			}
		}
		stats.Batches++
	}

	s.assignRenderIndices()
	stats.Plugins = s.renderPlugins(c)
	stats.Duration = time.Since(start)
	s.stats = stats
	if s.debug {
		s.debugLog(stats)
	}
}

// renderEntity draws e and its subtree. Static entities are skipped with
// their subtree; they are drawn by their layer's batch. Children are visited
// even when e itself is culled.
func (s *Scene) renderEntity(c Canvas, e *Entity, parentWorld Matrix, viewport Rect, stats *FrameStats) {
	if e.destroyed || e.static {
		return
	}
	world := parentWorld.Multiply(e.LocalTransform())

	c.Save()
	applyLocal(c, e)
	if s.cfg.DisableCulling || e.inViewport(world, viewport) {
		if e.drawable != nil {
			e.drawable.Draw(c, e)
		}
		e.renderPlugins(c)
		s.drawOrder = append(s.drawOrder, e)
		stats.Drawn++
	} else {
		stats.Culled++
	}
	for _, child := range append([]*Entity(nil), e.sortedChildEntities()...) {
		s.renderEntity(c, child, world, viewport, stats)
	}
	c.Restore()
}

// applyLocal pushes e's local transform onto c.
func applyLocal(c Canvas, e *Entity) {
	c.Translate(e.position.X, e.position.Y)
	c.Rotate(degToRad(e.rotation))
	sc := e.Scale()
	c.Scale(sc.X, sc.Y)
}

// assignRenderIndices numbers this frame's draw order from the top and
// resets entities that were drawn last frame but not this one.
func (s *Scene) assignRenderIndices() {
	for _, e := range s.prevOrder {
		e.renderIndex = -1
	}
	n := len(s.drawOrder)
	for i, e := range s.drawOrder {
		e.renderIndex = n - 1 - i
	}
	clear(s.prevOrder)
}
