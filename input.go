package canopy

import (
	"fmt"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// PointerEvent carries pointer event data. Entity is nil for events
// delivered to canvas subscribers.
type PointerEvent struct {
	Type      EventType
	Entity    *Entity
	EntityID  string
	Screen    Vec2 // device coordinates
	World     Vec2 // after inverting the camera
	Local     Vec2 // in the target entity's local space
	Button    MouseButton
	Modifiers KeyModifiers
}

// --- Pointer state ---

type pointerState struct {
	hovered    []*Entity
	downTarget *Entity
	downOnBare bool // last press hit no entity
	pressed    bool // polled button state
	button     MouseButton
	lastScreen Vec2
	polled     bool
	stamp      uint64
	cands      []*Entity
}

func (p *pointerState) isHovered(e *Entity) bool {
	for _, h := range p.hovered {
		if h == e {
			return true
		}
	}
	return false
}

func (p *pointerState) removeHovered(e *Entity) {
	for i, h := range p.hovered {
		if h == e {
			copy(p.hovered[i:], p.hovered[i+1:])
			p.hovered[len(p.hovered)-1] = nil
			p.hovered = p.hovered[:len(p.hovered)-1]
			return
		}
	}
}

// forget drops every reference to a destroyed entity.
func (p *pointerState) forget(e *Entity) {
	p.removeHovered(e)
	if p.downTarget == e {
		p.downTarget = nil
	}
}

func (p *pointerState) reset() {
	clear(p.hovered)
	p.hovered = p.hovered[:0]
	p.downTarget = nil
	p.downOnBare = false
	p.pressed = false
	p.polled = false
	clear(p.cands)
	p.cands = p.cands[:0]
}

// Hovered returns the entities currently under the pointer, in the order
// they were entered.
func (s *Scene) Hovered() []*Entity {
	out := make([]*Entity, len(s.pointer.hovered))
	copy(out, s.pointer.hovered)
	return out
}

// --- Canvas handler registry ---

type canvasHandler struct {
	id uint32
	fn func(PointerEvent)
}

type handlerRegistry struct {
	byType [eventTypeCount][]canvasHandler
	nextID uint32
}

// CallbackHandle allows removing a registered canvas-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil || h.event >= eventTypeCount {
		return
	}
	list := h.reg.byType[h.event]
	for i, c := range list {
		if c.id == h.id {
			h.reg.byType[h.event] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// OnCanvas registers a canvas-level callback. EventPointerMove subscribers
// see every move. EventPointerDown, EventPointerUp and EventClick
// subscribers see presses and releases that hit no entity. Canvas
// subscribers never see enter, leave or hover.
func (s *Scene) OnCanvas(evt EventType, fn func(PointerEvent)) CallbackHandle {
	if evt >= eventTypeCount {
		panic(fmt.Sprintf("canopy: unknown event type %d", evt))
	}
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.byType[evt] = append(s.handlers.byType[evt], canvasHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: evt}
}

func (s *Scene) fireCanvas(evt EventType, screen, world Vec2, button MouseButton, mods KeyModifiers) {
	list := s.handlers.byType[evt]
	if len(list) == 0 {
		return
	}
	ev := PointerEvent{Type: evt, Screen: screen, World: world, Button: button, Modifiers: mods}
	for _, h := range append([]canvasHandler(nil), list...) {
		h.fn(ev)
	}
}

// --- Dispatch ---

// PointerMove dispatches a pointer move at device coordinates (x, y).
func (s *Scene) PointerMove(x, y float64) {
	s.pointerMove(Vec2{x, y}, 0)
}

// PointerDown dispatches a button press at device coordinates (x, y).
func (s *Scene) PointerDown(x, y float64, button MouseButton) {
	s.pointerDown(Vec2{x, y}, button, 0)
}

// PointerUp dispatches a button release at device coordinates (x, y).
func (s *Scene) PointerUp(x, y float64, button MouseButton) {
	s.pointerUp(Vec2{x, y}, button, 0)
}

// pointerMove updates the hover set. Candidates from the spatial grid are
// tested topmost first; every containing entity gets enter (if newly
// hovered) or hover, and every previously hovered entity no longer under
// the pointer gets leave.
func (s *Scene) pointerMove(screen Vec2, mods KeyModifiers) {
	world := s.camera.ScreenToWorld(screen)
	s.grid.Flush()

	p := &s.pointer
	p.stamp++
	stamp := p.stamp
	p.cands = append(p.cands[:0], s.grid.QueryPoint(world)...)
	sortTopmostFirst(p.cands)

	for _, e := range p.cands {
		if e.destroyed || !e.ContainsPoint(world) {
			continue
		}
		e.hitStamp = stamp
		if p.isHovered(e) {
			s.fireEntity(e, EventPointerHover, screen, world, p.button, mods)
		} else {
			p.hovered = append(p.hovered, e)
			s.fireEntity(e, EventPointerEnter, screen, world, p.button, mods)
		}
	}
	for _, e := range append([]*Entity(nil), p.hovered...) {
		if e.hitStamp == stamp {
			continue
		}
		p.removeHovered(e)
		if !e.destroyed {
			s.fireEntity(e, EventPointerLeave, screen, world, p.button, mods)
		}
	}
	clear(p.cands)

	s.fireCanvas(EventPointerMove, screen, world, p.button, mods)
}

// pointerDown targets the topmost hovered entity, or the canvas when
// nothing is hovered.
func (s *Scene) pointerDown(screen Vec2, button MouseButton, mods KeyModifiers) {
	world := s.camera.ScreenToWorld(screen)
	p := &s.pointer
	p.button = button
	target := s.topmostHovered()
	p.downTarget = target
	p.downOnBare = target == nil
	if target == nil {
		s.fireCanvas(EventPointerDown, screen, world, button, mods)
		return
	}
	s.fireEntity(target, EventPointerDown, screen, world, button, mods)
}

// pointerUp targets the topmost hovered entity, or the canvas when nothing
// is hovered. A release on the entity that took the press also clicks it.
func (s *Scene) pointerUp(screen Vec2, button MouseButton, mods KeyModifiers) {
	world := s.camera.ScreenToWorld(screen)
	p := &s.pointer
	target := s.topmostHovered()
	down, bare := p.downTarget, p.downOnBare
	p.downTarget, p.downOnBare = nil, false
	if target == nil {
		s.fireCanvas(EventPointerUp, screen, world, button, mods)
		if bare {
			s.fireCanvas(EventClick, screen, world, button, mods)
		}
		return
	}
	s.fireEntity(target, EventPointerUp, screen, world, button, mods)
	if target == down && !target.destroyed {
		s.fireEntity(target, EventClick, screen, world, button, mods)
	}
}

// topmostHovered returns the hovered entity with the lowest render index.
// Entities not drawn in the last frame rank below every drawn one.
func (s *Scene) topmostHovered() *Entity {
	var best *Entity
	for _, e := range s.pointer.hovered {
		if e.destroyed {
			continue
		}
		if best == nil || above(e, best) {
			best = e
		}
	}
	return best
}

// above reports whether a is drawn on top of b.
func above(a, b *Entity) bool {
	ai, bi := a.renderIndex, b.renderIndex
	switch {
	case ai < 0 && bi < 0:
		return a.id < b.id
	case ai < 0:
		return false
	case bi < 0:
		return true
	case ai != bi:
		return ai < bi
	}
	return a.id < b.id
}

func sortTopmostFirst(es []*Entity) {
	sort.SliceStable(es, func(i, j int) bool { return above(es[i], es[j]) })
}

// fireEntity delivers an event to e's handler and to the entity store.
func (s *Scene) fireEntity(e *Entity, evt EventType, screen, world Vec2, button MouseButton, mods KeyModifiers) {
	local, err := e.WorldToLocal(world)
	if err != nil {
		local = Vec2{}
	}
	ev := PointerEvent{
		Type:      evt,
		Entity:    e,
		EntityID:  e.id,
		Screen:    screen,
		World:     world,
		Local:     local,
		Button:    button,
		Modifiers: mods,
	}
	if fn := e.events[evt]; fn != nil {
		fn(ev)
	}
	s.emitInteractionEvent(ev)
}

// --- Polling ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// readMouse reads the cursor position and the first pressed button.
func readMouse() (Vec2, bool, MouseButton) {
	mx, my := ebiten.CursorPosition()
	pos := Vec2{float64(mx), float64(my)}
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		return pos, true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		return pos, true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		return pos, true, MouseButtonMiddle
	}
	return pos, false, MouseButtonLeft
}

// processInput is called from Scene.Update. Injected events take priority
// over the real mouse, one per call.
func (s *Scene) processInput() {
	mods := readModifiers()
	if s.consumeInjected(mods) {
		return
	}
	pos, pressed, button := readMouse()
	s.pollPointer(pos, pressed, button, mods)
}

// pollPointer turns a sampled pointer state into move, down and up events.
func (s *Scene) pollPointer(screen Vec2, pressed bool, button MouseButton, mods KeyModifiers) {
	p := &s.pointer
	if !p.polled || screen != p.lastScreen {
		p.polled = true
		p.lastScreen = screen
		s.pointerMove(screen, mods)
	}
	switch {
	case pressed && !p.pressed:
		p.pressed = true
		s.pointerDown(screen, button, mods)
	case !pressed && p.pressed:
		p.pressed = false
		s.pointerUp(screen, p.button, mods)
	}
}

// --- ECS bridge ---

func (s *Scene) emitInteractionEvent(ev PointerEvent) {
	if s.store == nil || ev.Entity == nil {
		return
	}
	s.store.EmitEvent(InteractionEvent{
		Type:      ev.Type,
		EntityID:  ev.EntityID,
		GlobalX:   ev.World.X,
		GlobalY:   ev.World.Y,
		LocalX:    ev.Local.X,
		LocalY:    ev.Local.Y,
		Button:    ev.Button,
		Modifiers: ev.Modifiers,
	})
}
