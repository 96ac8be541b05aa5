package assembler

import "reflect"

// Context is the restricted facade handed to a constructor parameter typed
// Context — the Go stand-in for the `@Context` parameter decorator. It
// exposes only the read/subscribe surface spec.md §4.8 grants to units;
// Register/Use/AddGlobal/Emit/AddChannels/RemoveChannels remain private to
// the assembler itself.
type Context interface {
	Has(identifier any) bool
	Require(identifier any) (any, error)
	Concrete(identifier any) (reflect.Type, bool)
	Tagged(tags ...string) []any
	Global(key string) (any, bool)
	Dispose() error
	On(channel string, fn func(args ...any))
	Once(channel string, fn func(args ...any))
	Off(channel string)
	Events() []string
}

// Configuration is the marker type for a constructor parameter that should
// receive the unit's effective configuration — the Go stand-in for the
// `@Configuration` parameter decorator.
type Configuration map[string]any

// Dispose is the marker type for a constructor parameter that should
// receive a zero-argument closure equivalent to the container's own
// Dispose — the Go stand-in for the `@Dispose` parameter decorator.
type Dispose func()

// paramHintKind enumerates the parameter-decorator-equivalent roles a
// constructor parameter index can be pinned to via a RegistrationOption.
type paramHintKind int

const (
	hintUse paramHintKind = iota
	hintGlobal
	hintOptional
)

type paramHint struct {
	kind paramHintKind
	key  any
}

// RegistrationOption pins one constructor parameter position of a unit
// passed to [Assemblage] to a specific role. UseParam and GlobalParam carry
// the runtime key a plain marker type cannot express (see SPEC_FULL.md §0);
// OptionalParam marks a parameter that should resolve to its zero value
// instead of erroring when its identifier is absent from the registry.
type RegistrationOption func(*definitionRecord)

// UseParam marks constructor parameter index as resolving from the object
// store under key, the Go stand-in for `@Use(key)`.
func UseParam(index int, key any) RegistrationOption {
	return func(r *definitionRecord) {
		r.hints[index] = paramHint{kind: hintUse, key: key}
	}
}

// GlobalParam marks constructor parameter index as resolving from the
// assembler's global map under key, the Go stand-in for `@Global(key)`.
func GlobalParam(index int, key string) RegistrationOption {
	return func(r *definitionRecord) {
		r.hints[index] = paramHint{kind: hintGlobal, key: key}
	}
}

// OptionalParam marks constructor parameter index as optional: if its
// identifier is absent from the registry, the parameter resolves to its
// zero value instead of failing the build.
func OptionalParam(index int) RegistrationOption {
	return func(r *definitionRecord) {
		r.hints[index] = paramHint{kind: hintOptional}
	}
}

// Registrar attaches a static registration hook — the Go stand-in for the
// distilled source's `static onRegister(context, configuration)` class
// method — invoked once, during registration, with no constructed instance
// available. fn runs after this unit's own Inject/Use contributions have
// been recursively registered, satisfying the D.onRegister < P.onRegister
// hook ordering law from spec.md §7.
func Registrar(fn func(Context, Configuration) error) RegistrationOption {
	return func(r *definitionRecord) {
		r.onRegister = fn
	}
}
