package assembler

import "reflect"

// Initializer is the optional hook a unit implements to run logic once its
// own dependencies (and every other unit's, across the whole build) have
// finished constructing — Phase I of spec.md §4.9. It receives the unit's
// effective configuration, mirroring the `@Configuration` parameter marker.
type Initializer interface {
	OnInit(Configuration) error
}

// PostInitializer runs after every unit's OnInit has returned — Phase I2.
// Use it for wiring that assumes the whole graph, not just its own
// dependencies, is already initialized.
type PostInitializer interface {
	OnInited() error
}

// Disposer is the optional hook a unit implements to release resources
// when [Assembler.Dispose] tears the build down, in reverse construction
// order.
type Disposer interface {
	OnDispose() error
}

// Assemblage registers T's [Definition] and factory under the process-wide
// metadata facade — the Go stand-in for the distilled source's
// `@Assemblage` class decorator. factory must be a function whose
// parameters are resolved per the marker-type and RegistrationOption rules
// in SPEC_FULL.md §0, returning either T or (T, error).
//
// Assemblage only records the definition; it has no effect on any running
// build. Call it from an init function or before the first [Build] call.
func Assemblage[T any](def Definition, factory any, opts ...RegistrationOption) error {
	t := typeOf[T]()

	ft := reflect.TypeOf(factory)
	if ft == nil || ft.Kind() != reflect.Func {
		return ErrInvalidFactory{Type: t, Message: "factory must be a function"}
	}
	if ft.NumOut() != 1 && ft.NumOut() != 2 {
		return ErrInvalidFactory{Type: t, Message: "factory must return (T) or (T, error)"}
	}
	if ft.NumOut() == 2 && !ft.Out(1).Implements(errorType) {
		return ErrInvalidFactory{Type: t, Message: "factory's second return value must be error"}
	}

	if err := validateDefinition(t, def); err != nil {
		return err
	}

	record := &definitionRecord{
		identifier: t,
		definition: def,
		factory:    factory,
		paramTypes: paramTypes(factory),
		hints:      make(map[int]paramHint),
	}
	for _, opt := range opts {
		opt(record)
	}

	facade.setClass(t, record)
	return nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Build constructs T from its Assemblage registration, running the full
// Registration -> Cycle Detection -> Resolve -> Init -> PostInit pipeline
// from spec.md §4.9. config, when supplied, becomes T's root configuration,
// overriding whatever [Definition] or [InjectWith]/[InjectAsWith] value it
// would otherwise receive; only the first map is used.
func Build[T any](config ...map[string]any) (T, error) {
	var zero T
	resultType := typeOf[T]()

	// T is conventionally the pointer type a constructor returns (Build is
	// called as Build[*Foo] against an Assemblage[Foo] registration), so the
	// registry identifier is resultType's element, not resultType itself.
	t := resultType
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if _, ok := facade.getClass(t); !ok {
		return zero, ErrInvalidDefinition{Type: t, Option: "build", Reason: "no Assemblage registration"}
	}

	var rootConfig any
	if len(config) > 0 {
		rootConfig = Configuration(config[0])
	}

	a := newAssembler()

	activeLogger().phase("register")
	root, err := a.register(t, t, rootConfig, true)
	if err != nil {
		return zero, err
	}

	activeLogger().phase("detect-cycles")
	for _, cycle := range activeDetector().detect(a.dependencyGraph()) {
		activeLogger().cycle(cycle)
	}

	activeLogger().phase("resolve")
	instance, err := strategyForInjectable(root).resolve(a, root, rootConfig)
	if err != nil {
		return zero, err
	}

	rootQueued := false
	for _, e := range a.initQueue {
		if e.identifier == t {
			rootQueued = true
			break
		}
	}
	if !rootQueued {
		return zero, ErrMissingRoot{Identifier: t}
	}

	activeLogger().phase("init")
	if err := a.drainInit(); err != nil {
		return zero, err
	}

	result, ok := instance.(T)
	if !ok {
		return zero, ErrResolutionFailed{
			Type:  t,
			Cause: ErrInvalidFactory{Type: t, Message: "factory did not produce a " + t.String()},
		}
	}
	return result, nil
}
