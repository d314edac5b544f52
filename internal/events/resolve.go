package events

import "time"

// ResolveStart is emitted before a field resolver is invoked.
type ResolveStart struct {
	ObjectType string
	Field      string
}

// ResolveFinish is emitted after a field resolver returns.
type ResolveFinish struct {
	ObjectType string
	Field      string
	Err        error
	Duration   time.Duration
}
