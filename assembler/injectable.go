package assembler

import "reflect"

var (
	contextType       = reflect.TypeOf((*Context)(nil)).Elem()
	configurationType = reflect.TypeOf(Configuration(nil))
	definitionType    = reflect.TypeOf(Definition{})
	disposeType       = reflect.TypeOf(Dispose(nil))
)

type slotKind int

const (
	slotDependency slotKind = iota
	slotContext
	slotConfiguration
	slotDefinition
	slotDispose
	slotUse
	slotGlobal
	slotOptional
)

// paramSlot is the resolved construction plan for one constructor
// parameter: either one of the four marker-type roles (§4.11), a
// Use/Global/Optional hint attached via a RegistrationOption, or an
// ordinary constructor-dependency identifier to resolve from the registry.
type paramSlot struct {
	kind       slotKind
	identifier reflect.Type
	key        any
}

// Injectable is one registered identifier's full record: identity, the
// concrete class, its declared tags/events, the resolved per-parameter
// construction plan, and (once built, for singletons) the cached instance.
// It implements the build() contract from spec.md §4.6.
type Injectable struct {
	Identifier reflect.Type
	Concrete   reflect.Type

	configuration any
	tags          []string
	events        []string
	plan          []paramSlot
	factory       any
	record        *definitionRecord

	instance    any
	hasInstance bool
	singleton   bool

	singletonInstance any
}

// newInjectable builds the per-parameter construction plan for rec once,
// at registration time, deriving constructor-dependency identifiers from
// the factory's compile-time parameter types minus whatever a marker type
// or RegistrationOption claims for that position — spec.md §4.6 point 4.
func newInjectable(identifier, concrete reflect.Type, configuration any, record *definitionRecord) *Injectable {
	plan := make([]paramSlot, len(record.paramTypes))
	for i, pt := range record.paramTypes {
		// A *Foo parameter resolves the unit registered as Foo, the same
		// pointer-to-pointee convention Build applies to its type parameter.
		id := pt
		if id.Kind() == reflect.Pointer {
			id = id.Elem()
		}

		if hint, ok := record.hints[i]; ok {
			switch hint.kind {
			case hintUse:
				plan[i] = paramSlot{kind: slotUse, key: hint.key}
			case hintGlobal:
				plan[i] = paramSlot{kind: slotGlobal, key: hint.key}
			case hintOptional:
				plan[i] = paramSlot{kind: slotOptional, identifier: id}
			}
			continue
		}

		switch pt {
		case contextType:
			plan[i] = paramSlot{kind: slotContext}
		case configurationType:
			plan[i] = paramSlot{kind: slotConfiguration}
		case definitionType:
			plan[i] = paramSlot{kind: slotDefinition}
		case disposeType:
			plan[i] = paramSlot{kind: slotDispose}
		default:
			plan[i] = paramSlot{kind: slotDependency, identifier: id}
		}
	}

	return &Injectable{
		Identifier:    identifier,
		Concrete:      concrete,
		configuration: configuration,
		tags:          append([]string(nil), record.definition.Tags...),
		events:        append([]string(nil), record.definition.Events...),
		plan:          plan,
		factory:       record.factory,
		record:        record,
		singleton:     record.definition.isSingleton(),
	}
}

// newInstanceInjectable builds an Injectable for a use-instance binding:
// build() always returns the pre-built instance, skipping construction.
func newInstanceInjectable(identifier reflect.Type, instance any) *Injectable {
	return &Injectable{
		Identifier:  identifier,
		Concrete:    identifier,
		instance:    instance,
		hasInstance: true,
		singleton:   true,
	}
}

// build constructs (or, for instance bindings, simply returns) this
// Injectable's instance, per spec.md §4.6's build(configuration?) contract.
// config, when non-nil, overrides the Injectable's own configuration for
// this call only (used by the orchestrator's root-config merge).
func (inj *Injectable) build(a *Assembler, config any) (any, error) {
	if inj.hasInstance {
		return inj.instance, nil
	}

	effectiveConfig := inj.configuration
	if config != nil {
		effectiveConfig = config
	}

	factoryValue := reflect.ValueOf(inj.factory)
	args := make([]reflect.Value, len(inj.plan))

	for i, slot := range inj.plan {
		switch slot.kind {
		case slotContext:
			args[i] = reflect.ValueOf(newPublicContext(a))
		case slotConfiguration:
			cfg, _ := effectiveConfig.(Configuration)
			if cfg == nil {
				cfg = Configuration{}
			}
			args[i] = reflect.ValueOf(cfg)
		case slotDefinition:
			def := Definition{}
			if inj.record != nil {
				def = inj.record.definition
			}
			args[i] = reflect.ValueOf(def)
		case slotDispose:
			var disposeFn Dispose = func() { _ = a.Dispose() }
			args[i] = reflect.ValueOf(disposeFn)
		case slotUse:
			v, err := a.store.require(slot.key)
			if err != nil {
				return nil, ErrResolutionFailed{Type: inj.Concrete, Cause: err}
			}
			args[i] = reflectValueFor(v, factoryValue.Type().In(i))
		case slotGlobal:
			v, _ := a.store.global(slot.key.(string))
			args[i] = reflectValueFor(v, factoryValue.Type().In(i))
		case slotOptional:
			v, err := a.requireType(inj.Concrete, i, slot.identifier)
			if err != nil {
				args[i] = reflect.Zero(factoryValue.Type().In(i))
				continue
			}
			args[i] = reflectValueFor(v, factoryValue.Type().In(i))
		case slotDependency:
			v, err := a.requireType(inj.Concrete, i, slot.identifier)
			if err != nil {
				return nil, err
			}
			args[i] = reflectValueFor(v, factoryValue.Type().In(i))
		}
	}

	results := factoryValue.Call(args)
	if len(results) == 0 {
		return nil, ErrInvalidFactory{Type: inj.Concrete, Message: "factory must return a value"}
	}
	if len(results) == 2 && !results[1].IsNil() {
		return nil, ErrResolutionFailed{Type: inj.Concrete, Cause: results[1].Interface().(error)}
	}

	instance := results[0].Interface()

	if len(inj.events) > 0 {
		a.installForwarding(inj, instance)
	}

	a.enqueueInit(inj.Identifier, instance, effectiveConfig)

	return instance, nil
}

// reflectValueFor wraps v as a reflect.Value for a parameter of type t,
// converting it when it is convertible but not assignable, and substituting
// a properly-typed zero value for a nil v (e.g. an absent global), since
// reflect.ValueOf(nil) cannot be used as a call argument. A v that is
// neither assignable nor convertible to t is returned unconverted.
func reflectValueFor(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t)
	}
	return rv
}
