package ecs

import (
	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// InteractionEventType is the Donburi event type for canopy interaction
// events. Events are queued on publish; call ProcessEvents to deliver them.
var InteractionEventType = events.NewEventType[canopy.InteractionEvent]()

// EntityRef names the canopy entity a Donburi entity mirrors.
type EntityRef struct {
	ID string
}

// Ref is the component holding an EntityRef.
var Ref = donburi.NewComponentType[EntityRef]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore that publishes to
// InteractionEventType on world.
func NewDonburiStore(world donburi.World) canopy.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event canopy.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

// Bind creates a Donburi entity referencing e.
func Bind(world donburi.World, e *canopy.Entity) donburi.Entity {
	ent := world.Create(Ref)
	Ref.SetValue(world.Entry(ent), EntityRef{ID: e.ID()})
	return ent
}

// Find returns the first entry bound to the canopy entity id.
func Find(world donburi.World, id string) (*donburi.Entry, bool) {
	var found *donburi.Entry
	donburi.NewQuery(filter.Contains(Ref)).Each(world, func(entry *donburi.Entry) {
		if found == nil && Ref.Get(entry).ID == id {
			found = entry
		}
	})
	return found, found != nil
}
