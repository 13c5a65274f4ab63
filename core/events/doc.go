// Package events defines the dispatch related events emitted on the event bus.
//
// Available event types:
//   - JobEvent / ProviderEvent: entity changes from the push channel or the
//     engine itself
//   - AssignmentEvent: outcome of one manual or batch provider binding
//   - StatusEvent: a job lifecycle transition
//   - BatchEvent: summary of one auto-assign run
package events
