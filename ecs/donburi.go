// Package ecs mirrors shoal scene membership into a Donburi world.
package ecs

import (
	"github.com/phanxgames/shoal"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// LifecycleEventType is the Donburi event type for scene lifecycle events.
// Subscribe to it in your ECS systems to react to entities entering or
// leaving the scene.
var LifecycleEventType = events.NewEventType[shoal.LifecycleEvent]()

// EntityRef links a Donburi entity to the shoal entity it mirrors.
type EntityRef struct {
	Entity *shoal.Entity
}

// EntityComponent is attached to every mirrored entity. Query it to iterate
// the scene from ECS systems.
var EntityComponent = donburi.NewComponentType[EntityRef]()

// DonburiStore implements shoal.EntityStore on a Donburi world.
type DonburiStore struct {
	world donburi.World
	ids   map[*shoal.Entity]donburi.Entity
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Lifecycle events are published to LifecycleEventType and can be consumed
// with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) *DonburiStore {
	return &DonburiStore{world: world, ids: make(map[*shoal.Entity]donburi.Entity)}
}

var _ shoal.EntityStore = (*DonburiStore)(nil)

// Publish creates or removes the mirror entity and queues the event.
func (s *DonburiStore) Publish(ev shoal.LifecycleEvent) {
	switch ev.Kind {
	case shoal.LifecycleAdded:
		if _, ok := s.ids[ev.Entity]; !ok {
			id := s.world.Create(EntityComponent)
			EntityComponent.SetValue(s.world.Entry(id), EntityRef{Entity: ev.Entity})
			s.ids[ev.Entity] = id
		}
	case shoal.LifecycleRemoved:
		if id, ok := s.ids[ev.Entity]; ok {
			if s.world.Valid(id) {
				s.world.Remove(id)
			}
			delete(s.ids, ev.Entity)
		}
	}
	LifecycleEventType.Publish(s.world, ev)
}

// Lookup returns the Donburi entity mirroring e.
func (s *DonburiStore) Lookup(e *shoal.Entity) (donburi.Entity, bool) {
	id, ok := s.ids[e]
	return id, ok
}

// Len returns the number of mirrored entities.
func (s *DonburiStore) Len() int {
	return len(s.ids)
}
