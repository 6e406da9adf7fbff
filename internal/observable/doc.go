// Package observable provides the change-notifying containers the hybrid
// editor is built on: List (indexed add/remove/set events), Property (a
// single value with old/new change events) and Signal (a bare "something
// changed" notification).
//
// Delivery is synchronous and happens on the goroutine performing the
// mutation, after the mutation is visible. Observers are invoked in
// subscription order. None of the types are safe for concurrent use; an
// editing session owns its containers and drives them from one goroutine.
package observable
