// Package events provides types and interfaces for an event-driven architecture.
//
// Services emit account lifecycle events without knowing which handlers will
// process them. The mail package registers a handler that turns these events
// into queued notification emails.
//
// The primary components are:
// - AccountEvent: something that happened to a user account
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
