package canopy

import (
	"math"
	"sort"
)

// DefaultCellSize is the edge length of a spatial grid cell in world units.
const DefaultCellSize = 300.0

// maxCellsPerEntity caps how many cells one entity may occupy. Larger
// entities are kept in an oversized set that every point query includes.
const maxCellsPerEntity = 4096

// CellKey identifies a grid cell: floor(coord / cellSize) per axis.
type CellKey struct {
	X, Y int
}

// indexSnapshot is the geometry an entity was last indexed with.
type indexSnapshot struct {
	world Matrix
	half  Vec2
	valid bool
}

// SpatialGrid is a uniform grid over world space mapping cells to the
// entities whose world AABB overlaps them. It narrows pointer hit-testing to
// a few candidates.
//
// Re-indexing is lazy: mutations only mark entities dirty, and Flush (run at
// the start of every frame and every pointer dispatch) re-indexes the dirty
// entities whose geometry actually changed.
type SpatialGrid struct {
	cellSize float64
	cells    map[CellKey]map[string]*Entity
	dirty    []*Entity

	// oversized holds entities whose AABB spans more than maxCellsPerEntity
	// cells. They are candidates for every point.
	oversized map[string]*Entity
}

// NewSpatialGrid creates an empty grid. A non-positive cell size selects
// DefaultCellSize.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if !(cellSize > 0) {
		cellSize = DefaultCellSize
	}
	return &SpatialGrid{
		cellSize:  cellSize,
		cells:     make(map[CellKey]map[string]*Entity),
		oversized: make(map[string]*Entity),
	}
}

// CellSize returns the cell edge length.
func (g *SpatialGrid) CellSize() float64 { return g.cellSize }

// CellOf returns the key of the cell containing p.
func (g *SpatialGrid) CellOf(p Vec2) CellKey {
	return CellKey{
		X: int(math.Floor(p.X / g.cellSize)),
		Y: int(math.Floor(p.Y / g.cellSize)),
	}
}

// Update re-indexes e unconditionally: it is removed from all of its cells
// and inserted into every cell its world AABB overlaps.
func (g *SpatialGrid) Update(e *Entity) {
	g.removeCells(e)
	world := e.WorldTransform()
	e.indexSnap = indexSnapshot{world: world, half: e.halfExtents(), valid: true}
	e.indexDirty = false

	c := e.cornersFor(world)
	r := boundsOf(c[:])
	if !finiteRect(r) {
		return
	}
	lo := g.CellOf(Vec2{r.X, r.Y})
	hi := g.CellOf(Vec2{r.X + r.Width, r.Y + r.Height})
	nx, ny := hi.X-lo.X+1, hi.Y-lo.Y+1
	if nx <= 0 || ny <= 0 || nx > maxCellsPerEntity/ny {
		g.oversized[e.id] = e
		return
	}
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			g.insert(CellKey{x, y}, e)
		}
	}
}

// Refresh re-indexes e only if its world transform or extents changed since
// it was last indexed. It reports whether e was re-indexed.
func (g *SpatialGrid) Refresh(e *Entity) bool {
	if e.destroyed {
		return false
	}
	snap := indexSnapshot{world: e.WorldTransform(), half: e.halfExtents(), valid: true}
	if e.indexSnap == snap {
		e.indexDirty = false
		return false
	}
	g.Update(e)
	return true
}

// Flush refreshes every entity marked dirty since the last flush and returns
// how many were re-indexed.
func (g *SpatialGrid) Flush() int {
	n := 0
	for i, e := range g.dirty {
		if e.indexDirty && g.Refresh(e) {
			n++
		}
		g.dirty[i] = nil
	}
	g.dirty = g.dirty[:0]
	return n
}

// Remove drops e from every cell.
func (g *SpatialGrid) Remove(e *Entity) {
	g.removeCells(e)
	e.indexSnap = indexSnapshot{}
	e.indexDirty = false
}

// QueryCell returns the entities registered in cell k, ordered by id.
func (g *SpatialGrid) QueryCell(k CellKey) []*Entity {
	bucket := g.cells[k]
	out := make([]*Entity, 0, len(bucket))
	for _, e := range bucket {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// QueryPoint returns the candidates for a hit test at p: the entities in the
// cell containing p plus every oversized entity, ordered by id.
func (g *SpatialGrid) QueryPoint(p Vec2) []*Entity {
	out := g.QueryCell(g.CellOf(p))
	if len(g.oversized) == 0 {
		return out
	}
	for _, e := range g.oversized {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Oversized reports whether e spans too many cells to be registered per
// cell. Such entities have no cells and match every point query.
func (g *SpatialGrid) Oversized(e *Entity) bool {
	return g.oversized[e.id] == e
}

// CellsOf returns the cells e is registered in.
func (g *SpatialGrid) CellsOf(e *Entity) []CellKey {
	out := make([]CellKey, len(e.cells))
	copy(out, e.cells)
	return out
}

// Len returns the number of non-empty cells.
func (g *SpatialGrid) Len() int {
	return len(g.cells)
}

// markDirty queues e for the next Flush.
func (g *SpatialGrid) markDirty(e *Entity) {
	if e.indexDirty {
		return
	}
	e.indexDirty = true
	g.dirty = append(g.dirty, e)
}

// markSubtreeDirty queues e and all of its descendants; a moved ancestor
// moves every descendant's world rectangle.
func (g *SpatialGrid) markSubtreeDirty(e *Entity) {
	g.markDirty(e)
	for _, c := range e.Children() {
		g.markSubtreeDirty(c)
	}
}

func (g *SpatialGrid) insert(k CellKey, e *Entity) {
	bucket := g.cells[k]
	if bucket == nil {
		bucket = make(map[string]*Entity)
		g.cells[k] = bucket
	}
	bucket[e.id] = e
	e.cells = append(e.cells, k)
}

func (g *SpatialGrid) removeCells(e *Entity) {
	if g.oversized[e.id] == e {
		delete(g.oversized, e.id)
	}
	for _, k := range e.cells {
		bucket := g.cells[k]
		delete(bucket, e.id)
		if len(bucket) == 0 {
			delete(g.cells, k)
		}
	}
	e.cells = e.cells[:0]
}

// reset empties the grid.
func (g *SpatialGrid) reset() {
	clear(g.cells)
	clear(g.oversized)
	for i := range g.dirty {
		g.dirty[i] = nil
	}
	g.dirty = g.dirty[:0]
}

func finiteRect(r Rect) bool {
	for _, v := range [...]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
