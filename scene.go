package canopy

import "fmt"

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, entity-targeted pointer events are forwarded to it.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type      EventType
	EntityID  string
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// Scene owns the entity arena, the spatial index, the camera, the static
// batches, the plugins and the render pipeline for one canvas.
//
// A Scene is not safe for concurrent use. All calls, including frame
// callbacks, must happen on the host's main loop.
type Scene struct {
	cfg       Config
	canvas    Canvas
	scheduler FrameScheduler
	store     EntityStore
	debug     bool

	// Entity arena
	entities    map[string]*Entity
	roots       []*Entity
	sortedRoots []*Entity
	rootsSorted bool
	idCounter   uint64

	grid    *SpatialGrid
	camera  *Camera
	batches batchSet
	plugins []*scenePlugin

	// Render state
	state        RenderState
	framePending bool
	frameNo      uint64
	drawOrder    []*Entity
	prevOrder    []*Entity
	stats        FrameStats

	// Input state
	handlers    handlerRegistry
	pointer     pointerState
	injectQueue []injectedPointer
	script      *ScriptRunner
}

// NewScene creates a stopped scene drawing onto canvas and scheduling frames
// through scheduler.
func NewScene(canvas Canvas, scheduler FrameScheduler, cfg Config) (*Scene, error) {
	if canvas == nil {
		return nil, ErrNilCanvas
	}
	if scheduler == nil {
		return nil, ErrNilScheduler
	}
	if cfg.CellSize == 0 {
		cfg.CellSize = DefaultCellSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scene{
		cfg:         cfg,
		canvas:      canvas,
		scheduler:   scheduler,
		entities:    make(map[string]*Entity),
		rootsSorted: true,
		grid:        NewSpatialGrid(cfg.CellSize),
		camera:      newCamera(),
		state:       StateStopped,
	}
	s.SetDebugMode(cfg.Debug)
	return s, nil
}

// Config returns the configuration the scene was created with.
func (s *Scene) Config() Config { return s.cfg }

// Canvas returns the scene's drawing surface.
func (s *Scene) Canvas() Canvas { return s.canvas }

// Camera returns the world camera.
func (s *Scene) Camera() *Camera { return s.camera }

// Grid returns the spatial index.
func (s *Scene) Grid() *SpatialGrid { return s.grid }

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// SetDebugMode enables or disables debug mode. When enabled, tree depth and
// child count warnings and per-frame stats are logged.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// Entity returns the entity with the given id.
func (s *Scene) Entity(id string) (*Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// Len returns the number of live entities.
func (s *Scene) Len() int {
	return len(s.entities)
}

// Roots returns the root entities ordered by layer.
func (s *Scene) Roots() []*Entity {
	roots := s.orderedRoots()
	out := make([]*Entity, len(roots))
	copy(out, roots)
	return out
}

// Update advances camera animations, steps an attached script runner and
// processes polled and injected pointer input. Hosts call it once per tick
// with the tick duration in seconds.
func (s *Scene) Update(dt float64) {
	s.camera.update(float32(dt))
	if s.script != nil {
		s.script.step(s)
	}
	s.processInput()
}

// orderedRoots returns the roots sorted by layer, stable on creation order.
func (s *Scene) orderedRoots() []*Entity {
	if !s.rootsSorted {
		s.sortedRoots = sortByLayer(s.sortedRoots[:0], s.roots)
		s.rootsSorted = true
	}
	return s.sortedRoots
}

func (s *Scene) addRoot(e *Entity) {
	e.parent = ""
	s.roots = append(s.roots, e)
	s.rootsSorted = false
}

// detach unlinks e from its parent, or from the root list.
func (s *Scene) detach(e *Entity) {
	if p := e.Parent(); p != nil {
		p.removeChildID(e.id)
		e.parent = ""
		return
	}
	e.parent = ""
	for i, r := range s.roots {
		if r == e {
			copy(s.roots[i:], s.roots[i+1:])
			s.roots[len(s.roots)-1] = nil
			s.roots = s.roots[:len(s.roots)-1]
			s.rootsSorted = false
			return
		}
	}
}

// forget drops a destroyed entity from the arena and every scene index.
func (s *Scene) forget(e *Entity) {
	delete(s.entities, e.id)
	s.grid.Remove(e)
	s.pointer.forget(e)
}

// destroyAll destroys every entity.
func (s *Scene) destroyAll() {
	for len(s.roots) > 0 {
		s.roots[len(s.roots)-1].Destroy()
	}
	// Anything left is unreachable from the roots; drop it all the same.
	for id, e := range s.entities {
		if e.destroyed {
			delete(s.entities, id)
			continue
		}
		e.Destroy()
	}
	s.sortedRoots = s.sortedRoots[:0]
	s.rootsSorted = true
	s.grid.reset()
}

func (s *Scene) String() string {
	return fmt.Sprintf("Scene{entities: %d, state: %s}", len(s.entities), s.state)
}
