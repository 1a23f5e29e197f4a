// Package ecs provides ECS adapters for shoal scenes.
//
// The primary adapter is [NewDonburiStore], which mirrors every entity added
// to a [shoal.Scene] as a [Donburi] entity carrying an [EntityRef], and
// publishes the add and remove transitions as typed events. Subscribe to
// [LifecycleEventType] in your ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
