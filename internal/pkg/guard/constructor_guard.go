// Package guard detects zero-value structs that bypassed their constructor.
package guard

import "errors"

var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded by commands, queries and aggregates. Its zero
// value reports "not constructed"; only NewConstructorGuard sets the flag.
type ConstructorGuard struct {
	isConstructed bool
}

func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a constructed guard, otherwise err (or
// ErrDefaultConstructorGuard when err is nil).
func (g ConstructorGuard) Validate(err error) error {
	if g.isConstructed {
		return nil
	}
	if err == nil {
		return ErrDefaultConstructorGuard
	}
	return err
}
