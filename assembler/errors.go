package assembler

import (
	"fmt"
	"reflect"
	"strings"
)

// ErrInvalidDefinition is returned when a unit's [Definition] fails
// validation at Assemblage or registration time.
//
// Example:
//
//	err := assembler.Assemblage[Foo](assembler.Definition{Tags: []string{""}}, NewFoo)
//	var invalid assembler.ErrInvalidDefinition
//	if errors.As(err, &invalid) {
//		fmt.Println(invalid.Option)
//	}
type ErrInvalidDefinition struct {
	// Type is the unit whose definition was rejected.
	Type reflect.Type
	// Option names the offending definition field.
	Option string
	// Reason describes why the option failed validation.
	Reason string
}

func (e ErrInvalidDefinition) Error() string {
	return fmt.Sprintf("assembler: invalid definition for %s: option %q: %s", e.Type, e.Option, e.Reason)
}

// ErrDuplicateRegistration is returned when an identifier is registered
// twice with two different concretes. Re-registering the same identifier
// with the same concrete is a no-op, not an error — see [Assembler.register].
type ErrDuplicateRegistration struct {
	// Identifier is the identifier that was already registered.
	Identifier reflect.Type
	// Existing is the concrete already bound to Identifier.
	Existing reflect.Type
	// Attempted is the conflicting concrete the second registration tried to bind.
	Attempted reflect.Type
}

func (e ErrDuplicateRegistration) Error() string {
	return fmt.Sprintf("assembler: %s already registered with concrete %s, cannot rebind to %s",
		e.Identifier, e.Existing, e.Attempted)
}

// ErrUnknownDependency is returned by [Assembler.Require] when the
// identifier is absent from the registry and not on the resolution stack.
type ErrUnknownDependency struct {
	// Requester is the identifier that asked for Requested, if known.
	Requester reflect.Type
	// Requested is the identifier that could not be found.
	Requested reflect.Type
	// ParamIndex is the constructor parameter index that requested it, when known.
	ParamIndex int
	// HasParamIndex reports whether ParamIndex is meaningful.
	HasParamIndex bool
}

func (e ErrUnknownDependency) Error() string {
	var b strings.Builder
	b.WriteString("assembler: unknown dependency ")
	b.WriteString(e.Requested.String())
	if e.Requester != nil {
		fmt.Fprintf(&b, " requested by %s", e.Requester)
	}
	if e.HasParamIndex {
		fmt.Fprintf(&b, " at parameter index %d", e.ParamIndex)
	}
	return b.String()
}

// ErrCircularResolution is returned by [Assembler.Require] when the
// requested identifier is already on the resolution stack.
type ErrCircularResolution struct {
	// Chain is the dependency path that closes the cycle, in resolution order.
	Chain []reflect.Type
}

func (e ErrCircularResolution) Error() string {
	names := make([]string, len(e.Chain))
	for i, t := range e.Chain {
		names[i] = t.String()
	}
	return fmt.Sprintf("assembler: circular resolution: %s", strings.Join(names, " -> "))
}

// ErrDuplicateObject is returned by the object store when a key is used
// twice with [Assembler.Use] or [Assembler.AddGlobal].
type ErrDuplicateObject struct {
	// Key is the object-store or global key already present.
	Key any
	// Global reports whether this was a duplicate global rather than a duplicate object.
	Global bool
}

func (e ErrDuplicateObject) Error() string {
	if e.Global {
		return fmt.Sprintf("assembler: global %v already registered", e.Key)
	}
	return fmt.Sprintf("assembler: object %v already registered", e.Key)
}

// ErrUnknownObject is returned by the object store when [Assembler.Require]
// is called (indirectly, via a string/symbol identifier) for a key that was
// never registered with [Assembler.Use].
type ErrUnknownObject struct {
	// Key is the object-store key that was not found.
	Key any
}

func (e ErrUnknownObject) Error() string {
	return fmt.Sprintf("assembler: object %v not registered", e.Key)
}

// ErrMissingRoot is returned by [Build] if the root instance unexpectedly
// disappears from the init-queue between phases. This should never happen
// in practice; it exists as a defensive invariant check.
type ErrMissingRoot struct {
	// Identifier is the root identifier that could not be found in the init-queue.
	Identifier reflect.Type
}

func (e ErrMissingRoot) Error() string {
	return fmt.Sprintf("assembler: root %s missing from init-queue", e.Identifier)
}

// ErrInvalidFactory is returned by [Assemblage] when the supplied factory
// is not a function, or returns a signature [Build] cannot use.
type ErrInvalidFactory struct {
	// Type is the unit the factory was supposed to construct.
	Type reflect.Type
	// Message describes why the factory is invalid.
	Message string
}

func (e ErrInvalidFactory) Error() string {
	return fmt.Sprintf("assembler: invalid factory for %s: %s", e.Type, e.Message)
}

// ErrConcurrentMutation is returned by [Assembler.register] when a new
// identifier is registered while a resolution (a [Build] or [Assembler.Require]
// call already walking the registry) is in progress. spec.md §5 asks the
// runtime to surface concurrent registry mutation during resolution rather
// than silently serialize or allow it.
type ErrConcurrentMutation struct {
	// Identifier is the identifier whose registration was rejected.
	Identifier reflect.Type
}

func (e ErrConcurrentMutation) Error() string {
	return fmt.Sprintf("assembler: cannot register %s while a resolution is in progress", e.Identifier)
}

// ErrResolutionFailed wraps a factory or dependency error encountered while
// building an instance, preserving the identifier that failed.
type ErrResolutionFailed struct {
	// Type is the identifier that failed to build.
	Type reflect.Type
	// Cause is the underlying error.
	Cause error
}

func (e ErrResolutionFailed) Error() string {
	return fmt.Sprintf("assembler: failed to resolve %s: %v", e.Type, e.Cause)
}

// Unwrap returns the underlying cause, enabling use with errors.Is/errors.As.
func (e ErrResolutionFailed) Unwrap() error {
	return e.Cause
}
