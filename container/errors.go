package container

import (
	"errors"
	"strconv"
	"strings"
)

// Sentinel errors. Resolution failures are returned as the typed errors
// below; each matches its sentinel through errors.Is, so callers can branch
// on the kind without caring about the concrete type:
//
//	_, err := c.Resolve("mailer")
//	if errors.Is(err, container.ErrNotRegistered) { ... }
var (
	// ErrNotRegistered — no binding and no mock fallback for the key.
	ErrNotRegistered = errors.New("container: service not registered")

	// ErrCircularDependency — a key depends, directly or transitively,
	// on itself within a single resolution call.
	ErrCircularDependency = errors.New("container: circular dependency")

	// ErrInstantiation — a constructor or factory failed while running.
	ErrInstantiation = errors.New("container: instantiation failed")

	// ErrUnresolvableDependency — a required constructor parameter had no
	// caller-supplied value, no binding, and no mock.
	ErrUnresolvableDependency = errors.New("container: unresolvable dependency")

	// ErrNoMock — a key was explicitly marked "use mock" but the mock
	// registry has no stand-in for it.
	ErrNoMock = errors.New("container: no mock available")
)

// ── NotRegisteredError ────────────────────────────────────────────────────────

// NotRegisteredError reports resolution of a key with no binding and no
// mock fallback.
type NotRegisteredError struct {
	Key ServiceKey
}

func (e NotRegisteredError) Error() string {
	return "container: service " + strconv.Quote(string(e.Key)) + " not registered"
}

func (e NotRegisteredError) Is(target error) bool { return target == ErrNotRegistered }

// ── CircularDependencyError ───────────────────────────────────────────────────

// CircularDependencyError reports a resolution cycle. Path holds every key
// on the cycle, in resolution order, ending with the repeated key.
type CircularDependencyError struct {
	Path []ServiceKey
}

func (e CircularDependencyError) Error() string {
	names := make([]string, len(e.Path))
	for i, k := range e.Path {
		names[i] = string(k)
	}
	return "container: circular dependency: " + strings.Join(names, " -> ")
}

func (e CircularDependencyError) Is(target error) bool { return target == ErrCircularDependency }

// ── InstantiationError ────────────────────────────────────────────────────────

// InstantiationError reports that the binding for Key failed while being
// constructed. Cause is the underlying failure — a factory error, a
// recovered panic, or an UnresolvableDependencyError from auto-wiring.
type InstantiationError struct {
	Key   ServiceKey
	Cause error
}

func (e InstantiationError) Error() string {
	return "container: instantiating " + strconv.Quote(string(e.Key)) + ": " + e.Cause.Error()
}

func (e InstantiationError) Is(target error) bool { return target == ErrInstantiation }

func (e InstantiationError) Unwrap() error { return e.Cause }

// ── UnresolvableDependencyError ───────────────────────────────────────────────

// UnresolvableDependencyError reports a constructor parameter that could not
// be filled: the caller did not supply it, no binding or mock covers its
// key, and the parameter is not optional.
type UnresolvableDependencyError struct {
	Param string     // declared parameter name
	Key   ServiceKey // the key auto-wiring tried to resolve
	Cause error
}

func (e UnresolvableDependencyError) Error() string {
	return "container: parameter " + strconv.Quote(e.Param) +
		" (key " + strconv.Quote(string(e.Key)) + "): " + e.Cause.Error()
}

func (e UnresolvableDependencyError) Is(target error) bool {
	return target == ErrUnresolvableDependency
}

func (e UnresolvableDependencyError) Unwrap() error { return e.Cause }

// ── NoMockError ───────────────────────────────────────────────────────────────

// NoMockError reports an explicitly-mocked key for which the mock registry
// holds no stand-in.
type NoMockError struct {
	Key ServiceKey
}

func (e NoMockError) Error() string {
	return "container: no mock available for " + strconv.Quote(string(e.Key))
}

func (e NoMockError) Is(target error) bool { return target == ErrNoMock }
