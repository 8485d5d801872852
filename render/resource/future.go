// Package resource tracks the resolution state of every device object the
// renderer has asked for.
package resource

import "github.com/devblok/korender/device"

// State is the resolution state of a single request.
type State int

// Resolution states
const (
	Pending State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Future holds a value the device has not necessarily produced yet.
// It leaves Pending exactly once.
type Future[T any] struct {
	state State
	value T
	err   error
}

// State returns the current resolution state.
func (f *Future[T]) State() State {
	return f.state
}

// IsPending reports whether the device has yet to answer.
func (f *Future[T]) IsPending() bool {
	return f.state == Pending
}

// Value returns the loaded value, ok is false unless the state is Loaded.
func (f *Future[T]) Value() (value T, ok bool) {
	return f.value, f.state == Loaded
}

// Err returns the failure reported by the device, if any.
func (f *Future[T]) Err() error {
	return f.err
}

func (f *Future[T]) load(v T) bool {
	if f.state != Pending {
		return false
	}
	f.state, f.value = Loaded, v
	return true
}

func (f *Future[T]) fail(err error) bool {
	if f.state != Pending {
		return false
	}
	f.state, f.err = Failed, err
	return true
}

// Table is an append-only list of futures of one kind, indexed by token.
type Table[T any] struct {
	kind  Kind
	slots []Future[T]
}

// Alloc appends a pending slot and returns its token.
func (t *Table[T]) Alloc() device.Token {
	t.slots = append(t.slots, Future[T]{})
	return device.Token(len(t.slots) - 1)
}

// Len returns the number of allocated tokens, which is also the next token.
func (t *Table[T]) Len() int {
	return len(t.slots)
}

// Has reports whether token has been allocated.
func (t *Table[T]) Has(token device.Token) bool {
	return int(token) < len(t.slots)
}

// Get returns the slot for token. Asking for a token that was never
// allocated is a programming error and panics.
func (t *Table[T]) Get(token device.Token) *Future[T] {
	if !t.Has(token) {
		panic(&ProtocolError{Kind: t.kind, Token: token, Reason: "token out of range"})
	}
	return &t.slots[token]
}

func (t *Table[T]) resolve(token device.Token, v T, err error) {
	slot := t.Get(token)
	var ok bool
	if err != nil {
		ok = slot.fail(err)
	} else {
		ok = slot.load(v)
	}
	if !ok {
		panic(&ProtocolError{Kind: t.kind, Token: token, Reason: "token resolved twice"})
	}
}
