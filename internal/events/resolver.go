package events

import "time"

// ResolverStart is emitted before a custom field resolver runs. Property
// lookups do not emit events.
type ResolverStart struct {
	ParentType string
	Field      string
	Path       string
}

// ResolverFinish is emitted after a custom field resolver returns.
type ResolverFinish struct {
	ParentType string
	Field      string
	Path       string
	Err        error
	Duration   time.Duration
}
