package assembler

import "reflect"

// Buildable is the canonical (identifier, concrete, configuration, instance)
// tuple every injection declaration resolves to. Concrete is always the
// constructible class; Identifier may bind to a distinct Concrete for
// abstract (interface) bindings. Instance is set only for Use bindings: the
// keyed value of a [UseValue], or the pre-built instance of a [UseInstance],
// which skips construction entirely.
type Buildable struct {
	Identifier    reflect.Type
	Concrete      reflect.Type
	Configuration any
	Instance      any
	hasInstance   bool
}

// InjectionTuple is one entry of a Definition's Inject list: a dependency a
// unit declares for itself, to be recursively registered the first time the
// unit carrying it is registered. Build it with [Inject], [InjectAs],
// [InjectWith], or [InjectAsWith].
type InjectionTuple struct {
	buildable Buildable
}

// Inject declares a dependency whose identifier and concrete are the same
// type T — the `[C]` tuple shape from spec.md §4.3.
func Inject[T any]() InjectionTuple {
	return InjectionTuple{buildable: Buildable{Identifier: typeOf[T](), Concrete: typeOf[T]()}}
}

// InjectAs declares an abstract-to-concrete binding: Abstract is the
// identifier, Concrete is what actually gets constructed — the `[A, C]`
// tuple shape from spec.md §4.3. Abstract must be an interface type.
func InjectAs[Abstract, Concrete any]() InjectionTuple {
	return InjectionTuple{buildable: Buildable{Identifier: typeOf[Abstract](), Concrete: typeOf[Concrete]()}}
}

// InjectWith declares a dependency on T with a per-dependency configuration
// value — the `[C, cfg]` tuple shape.
func InjectWith[T any](cfg any) InjectionTuple {
	return InjectionTuple{buildable: Buildable{Identifier: typeOf[T](), Concrete: typeOf[T](), Configuration: cfg}}
}

// InjectAsWith combines InjectAs and InjectWith — the `[A, C, cfg]` tuple shape.
func InjectAsWith[Abstract, Concrete any](cfg any) InjectionTuple {
	return InjectionTuple{buildable: Buildable{Identifier: typeOf[Abstract](), Concrete: typeOf[Concrete](), Configuration: cfg}}
}

// UseBinding is one entry of a Definition's Use list: either a keyed
// object-store value, or an instance bound to a class identifier.
type UseBinding struct {
	key       any
	keyed     bool
	buildable Buildable
}

// UseValue registers value under key in the object store when the owning
// unit is registered. key must be a string or a [Symbol].
func UseValue(key any, value any) UseBinding {
	return UseBinding{key: key, keyed: true, buildable: Buildable{Instance: value, hasInstance: true}}
}

// UseInstance binds a pre-built instance to class identifier T, skipping
// construction entirely whenever T is required.
func UseInstance[T any](instance T) UseBinding {
	return UseBinding{buildable: Buildable{
		Identifier:  typeOf[T](),
		Concrete:    typeOf[T](),
		Instance:    instance,
		hasInstance: true,
	}}
}

// Symbol is a unique, non-string identifier for the object store, the Go
// stand-in for a JavaScript Symbol used as a registration key.
type Symbol struct {
	name string
}

// NewSymbol creates a Symbol. Two symbols with the same name are still
// distinct identifiers, exactly like a JS Symbol — name is for diagnostics only.
func NewSymbol(name string) *Symbol {
	return &Symbol{name: name}
}

func (s *Symbol) String() string {
	return "Symbol(" + s.name + ")"
}

func typeOf[T any]() reflect.Type {
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	return t
}

// resolveTuple performs the runtime part of the Injection Tuple Resolver's
// contract: the compile-time generics above already fix the tuple's arity
// and field identities, so all that remains is confirming Concrete carries
// an Assemblage registration and, for abstract bindings, that Identifier is
// actually an interface distinct from Concrete.
func resolveTuple(tuple InjectionTuple) (Buildable, error) {
	b := tuple.buildable
	if b.Identifier != b.Concrete && b.Identifier.Kind() != reflect.Interface {
		return Buildable{}, ErrInvalidDefinition{
			Type:   b.Concrete,
			Option: "inject",
			Reason: "abstract identifier " + b.Identifier.String() + " must be an interface type",
		}
	}
	if _, ok := facade.getClass(b.Concrete); !ok {
		return Buildable{}, ErrInvalidDefinition{
			Type:   b.Concrete,
			Option: "inject",
			Reason: "concrete " + b.Concrete.String() + " has no Assemblage registration",
		}
	}
	return b, nil
}
