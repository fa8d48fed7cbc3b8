package model

import "time"

// Editable holds a property value twice: Committed is what the engine last
// confirmed, Pending is what the user last asked for. Readers that render the
// timeline use Pending, engine-facing code uses Committed.
type Editable[T comparable] struct {
	Committed T `json:"committed"`
	Pending   T `json:"pending"`
}

// NewEditable returns a settled value.
func NewEditable[T comparable](v T) Editable[T] {
	return Editable[T]{Committed: v, Pending: v}
}

// Request records an optimistic value ahead of engine confirmation.
func (e *Editable[T]) Request(v T) {
	e.Pending = v
}

// Apply records a value confirmed by the engine. A newer outstanding request
// is left in Pending.
func (e *Editable[T]) Apply(v T) {
	e.Committed = v
}

// Rollback discards the optimistic value.
func (e *Editable[T]) Rollback() {
	e.Pending = e.Committed
}

// Settled reports whether no request is outstanding.
func (e Editable[T]) Settled() bool {
	return e.Committed == e.Pending
}

// Settle applies v when err is nil and rolls back otherwise.
func Settle[T comparable](e *Editable[T], v T, err error) {
	if err != nil {
		e.Rollback()
		return
	}
	e.Apply(v)
}

// Span is a half-open [Begin, End) range of source time.
type Span struct {
	Begin time.Duration `json:"begin"`
	End   time.Duration `json:"end"`
}

// Len returns the length of the span, never negative.
func (s Span) Len() time.Duration {
	if s.End < s.Begin {
		return 0
	}
	return s.End - s.Begin
}
