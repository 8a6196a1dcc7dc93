package view

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnresolvedKeyFunc is returned when a Named key function cannot be
	// found on the view.
	ErrUnresolvedKeyFunc = errors.New("unresolved key function")

	// ErrUnresolvedTimeout is returned when an Attr timeout cannot be found
	// on the view.
	ErrUnresolvedTimeout = errors.New("unresolved timeout attribute")
)

// KeyFunc computes a cache key or entity tag for a call.
type KeyFunc interface {
	Key(call *Call) (string, error)
}

// KeyFuncFunc adapts a function to KeyFunc.
type KeyFuncFunc func(call *Call) (string, error)

// Key implements KeyFunc.
func (f KeyFuncFunc) Key(call *Call) (string, error) {
	return f(call)
}

// KeyFuncProvider views resolve Named key functions.
type KeyFuncProvider interface {
	KeyFunc(name string) (KeyFunc, bool)
}

// Named selects a key function the view provides under name.
type Named string

// Key implements KeyFunc by delegating to the view's function.
func (n Named) Key(call *Call) (string, error) {
	p, ok := call.View.(KeyFuncProvider)
	if !ok {
		return "", fmt.Errorf("%w: %s does not provide key functions", ErrUnresolvedKeyFunc, ID(call.View))
	}
	fn, ok := p.KeyFunc(string(n))
	if !ok || fn == nil {
		return "", fmt.Errorf("%w: %s has no %q", ErrUnresolvedKeyFunc, ID(call.View), string(n))
	}
	return fn.Key(call)
}

// Timeout resolves the TTL of a stored response.
type Timeout interface {
	Resolve(call *Call) (time.Duration, error)
}

// Fixed is a constant timeout.
type Fixed time.Duration

// Resolve implements Timeout.
func (f Fixed) Resolve(*Call) (time.Duration, error) {
	return time.Duration(f), nil
}

// TimeoutProvider views resolve Attr timeouts at call time.
type TimeoutProvider interface {
	CacheTimeout(name string) (time.Duration, bool)
}

// Attr reads a timeout from the view at call time.
type Attr string

// Resolve implements Timeout.
func (a Attr) Resolve(call *Call) (time.Duration, error) {
	p, ok := call.View.(TimeoutProvider)
	if !ok {
		return 0, fmt.Errorf("%w: %s does not provide timeouts", ErrUnresolvedTimeout, ID(call.View))
	}
	d, ok := p.CacheTimeout(string(a))
	if !ok {
		return 0, fmt.Errorf("%w: %s has no %q", ErrUnresolvedTimeout, ID(call.View), string(a))
	}
	return d, nil
}
