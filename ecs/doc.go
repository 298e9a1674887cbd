// Package ecs bridges canopy pointer events into a [Donburi] world.
//
// [NewDonburiStore] publishes every entity-targeted interaction event as a
// typed Donburi event. [Bind] tags a Donburi entity with the id of the
// canopy entity it mirrors so systems can resolve event targets.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//	ecs.InteractionEventType.Subscribe(world, func(w donburi.World, ev canopy.InteractionEvent) {
//	    if entry, ok := ecs.Find(w, ev.EntityID); ok {
//	        // ...
//	    }
//	})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
