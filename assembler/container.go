package assembler

import "reflect"

// initEntry is one completed build awaiting the Init and PostInit
// orchestrator sweeps, per spec.md §4.9's Phase I / Phase I2 split.
type initEntry struct {
	identifier    reflect.Type
	instance      any
	configuration any
}

// Assembler is one Build call's private runtime: the registry of
// Injectables reachable from the root, the object store, the shared event
// bus, the active resolution stack (for cycle/unknown-dependency errors),
// and the pending init-queue. spec.md §5 declares the runtime
// single-threaded cooperative, so unlike the teacher's container, Assembler
// carries no mutex — resolving makes register fail while a resolution is
// in progress instead of serializing concurrent callers.
type Assembler struct {
	registry map[reflect.Type]*Injectable
	order    []reflect.Type

	// built records identifiers in construction-completion order (an
	// instance-bound Use is "complete" at registration; a built Injectable
	// is complete when Injectable.build enqueues it for Init) — the order
	// Dispose walks in reverse, per spec.md §4.9's hook ordering law
	// (D.construct < P.construct implies P.onDispose < D.onDispose).
	built []reflect.Type

	store  *objectStore
	events *EventManager

	stack     []reflect.Type
	resolving bool

	initQueue []initEntry
	disposed  bool
}

func newAssembler() *Assembler {
	return &Assembler{
		registry: make(map[reflect.Type]*Injectable),
		store:    newObjectStore(),
		events:   NewEventManager(),
	}
}

// register resolves identifier's definitionRecord (via concrete's
// Assemblage registration) into an Injectable, recursively registering its
// declared Inject and Use contributions first. Re-registering an identifier
// already bound to the same concrete is a no-op; rebinding it to a
// different concrete is [ErrDuplicateRegistration] — spec.md §9's resolved
// Open Question on duplicate registration. root is true only for [Build]'s
// own top-level call, and coerces the definition to singleton per spec.md
// §4.9 step 1 without mutating the shared metadata-facade record.
func (a *Assembler) register(identifier, concrete reflect.Type, configuration any, root bool) (*Injectable, error) {
	if a.resolving {
		return nil, ErrConcurrentMutation{Identifier: identifier}
	}

	if existing, ok := a.registry[identifier]; ok {
		if existing.Concrete == concrete {
			return existing, nil
		}
		return nil, ErrDuplicateRegistration{Identifier: identifier, Existing: existing.Concrete, Attempted: concrete}
	}

	record, ok := facade.getClass(concrete)
	if !ok {
		return nil, ErrInvalidDefinition{Type: concrete, Option: "inject", Reason: "concrete " + concrete.String() + " has no Assemblage registration"}
	}

	if err := validateDefinition(concrete, record.definition); err != nil {
		return nil, err
	}

	if root {
		forced := *record
		forced.definition = forced.definition.forceSingleton()
		record = &forced
	}

	inj := newInjectable(identifier, concrete, configuration, record)
	a.registry[identifier] = inj
	a.order = append(a.order, identifier)

	if len(inj.events) > 0 {
		a.events.AddChannels(inj.events...)
	}

	// Recurse into this unit's own contributions before its onRegister
	// hook runs, so D.onRegister < P.onRegister falls out of call order.
	for _, tuple := range record.definition.Inject {
		b, err := resolveTuple(tuple)
		if err != nil {
			return nil, err
		}
		if _, err := a.register(b.Identifier, b.Concrete, b.Configuration, false); err != nil {
			return nil, err
		}
	}

	for _, use := range record.definition.Use {
		if err := a.registerUse(use); err != nil {
			return nil, err
		}
	}

	for key, value := range record.definition.Global {
		if err := a.store.addGlobal(key, value); err != nil {
			return nil, err
		}
	}

	if record.onRegister != nil {
		cfg, _ := configuration.(Configuration)
		if cfg == nil {
			cfg = Configuration{}
		}
		if err := record.onRegister(newPublicContext(a), cfg); err != nil {
			return nil, ErrResolutionFailed{Type: concrete, Cause: err}
		}
	}

	return inj, nil
}

func (a *Assembler) registerUse(u UseBinding) error {
	if u.keyed {
		return a.store.use(u.key, u.buildable.Instance)
	}

	b := u.buildable
	if existing, ok := a.registry[b.Identifier]; ok {
		if existing.hasInstance && existing.instance == b.Instance {
			return nil
		}
		return ErrDuplicateRegistration{Identifier: b.Identifier, Existing: existing.Concrete, Attempted: b.Concrete}
	}

	a.registry[b.Identifier] = newInstanceInjectable(b.Identifier, b.Instance)
	a.order = append(a.order, b.Identifier)
	a.built = append(a.built, b.Identifier)
	return nil
}

// requireType resolves identifier through the registry, detecting a cycle
// against the active resolution stack before delegating to the Injectable's
// strategy. requester and paramIndex are carried only for error messages;
// pass nil/-1 when resolving on behalf of a caller outside a constructor.
func (a *Assembler) requireType(requester reflect.Type, paramIndex int, identifier reflect.Type) (any, error) {
	for _, t := range a.stack {
		if t == identifier {
			chain := append(append([]reflect.Type(nil), a.stack...), identifier)
			return nil, ErrCircularResolution{Chain: chain}
		}
	}

	inj, ok := a.registry[identifier]
	if !ok {
		return nil, ErrUnknownDependency{
			Requester:     requester,
			Requested:     identifier,
			ParamIndex:    paramIndex,
			HasParamIndex: requester != nil,
		}
	}

	topLevel := len(a.stack) == 0
	if topLevel {
		a.resolving = true
	}
	a.stack = append(a.stack, identifier)
	instance, err := strategyForInjectable(inj).resolve(a, inj, nil)
	a.stack = a.stack[:len(a.stack)-1]
	if topLevel {
		a.resolving = false
	}
	return instance, err
}

// Require resolves identifier, which is either a reflect.Type registered
// via Assemblage/InjectAs, or a string/[Symbol] key registered via
// [UseValue]. It is the runtime counterpart of [Context.Require].
func (a *Assembler) Require(identifier any) (any, error) {
	if t, ok := identifier.(reflect.Type); ok {
		return a.requireType(nil, -1, t)
	}
	return a.store.require(identifier)
}

// Has reports whether identifier is resolvable, without building it.
func (a *Assembler) Has(identifier any) bool {
	if t, ok := identifier.(reflect.Type); ok {
		_, ok := a.registry[t]
		return ok
	}
	return a.store.has(identifier)
}

// Concrete returns the concrete type bound to identifier, if registered.
func (a *Assembler) Concrete(identifier any) (reflect.Type, bool) {
	t, ok := identifier.(reflect.Type)
	if !ok {
		return nil, false
	}
	inj, ok := a.registry[t]
	if !ok {
		return nil, false
	}
	return inj.Concrete, true
}

// Tagged resolves and returns every registered unit carrying at least one
// of tags: for each requested tag in turn, the matching units in
// registration order. A unit matching more than one requested
// tag appears once per matching tag — the resolved-duplicates behavior
// spec.md §8 scenario 6 exercises.
func (a *Assembler) Tagged(tags ...string) []any {
	var results []any
	for _, tag := range tags {
		for _, id := range a.order {
			inj, ok := a.registry[id]
			if !ok || !hasTag(inj.tags, tag) {
				continue
			}
			instance, err := a.requireType(nil, -1, id)
			if err != nil {
				continue
			}
			results = append(results, instance)
		}
	}
	return results
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddGlobal registers value under key in the cross-cutting global store.
func (a *Assembler) AddGlobal(key string, value any) error {
	return a.store.addGlobal(key, value)
}

// Global returns the value registered under key, if any.
func (a *Assembler) Global(key string) (any, bool) {
	return a.store.global(key)
}

// Use registers value under key in the object store.
func (a *Assembler) Use(key any, value any) error {
	return a.store.use(key, value)
}

// installForwarding gives a unit embedding [Emitter] its own per-unit event
// bus, with its declared channels pre-registered, and installs one listener
// per channel that re-emits the same payload on the container's own bus —
// spec.md's Forwarding rule. Units that do not embed Emitter are untouched.
func (a *Assembler) installForwarding(inj *Injectable, instance any) {
	setter, ok := instance.(emitterSetter)
	if !ok {
		return
	}

	own := NewEventManager()
	own.AddChannels(inj.events...)
	setter.setEvents(own)

	for _, channel := range inj.events {
		ch := channel
		own.On(ch, func(args ...any) {
			a.events.Emit(ch, args...)
		})
	}
}

// enqueueInit appends a freshly built instance to the pending init-queue.
// It is called unconditionally by Injectable.build, per spec.md §9's
// preserved (not fixed) quirk: a transient built outside an active Build
// call is still constructed correctly, but nothing ever drains the
// init-queue for it, so it never receives onInit/onInited.
func (a *Assembler) enqueueInit(identifier reflect.Type, instance any, configuration any) {
	a.initQueue = append(a.initQueue, initEntry{identifier: identifier, instance: instance, configuration: configuration})
	a.built = append(a.built, identifier)
}

// drainInit runs Phase I then Phase I2 over the entire pending init-queue:
// every instance's OnInit runs before any instance's OnInited, matching the
// hook ordering law from spec.md §7. Hooks are optional; an instance that
// implements neither is silently skipped.
func (a *Assembler) drainInit() error {
	for _, e := range a.initQueue {
		init, ok := e.instance.(Initializer)
		if !ok {
			continue
		}
		cfg, _ := e.configuration.(Configuration)
		if cfg == nil {
			cfg = Configuration{}
		}
		if err := init.OnInit(cfg); err != nil {
			return ErrResolutionFailed{Type: e.identifier, Cause: err}
		}
	}

	for i := len(a.initQueue) - 1; i >= 0; i-- {
		e := a.initQueue[i]
		post, ok := e.instance.(PostInitializer)
		if !ok {
			continue
		}
		if err := post.OnInited(); err != nil {
			return ErrResolutionFailed{Type: e.identifier, Cause: err}
		}
	}

	a.initQueue = a.initQueue[:0]
	return nil
}

// dependencyGraph flattens the registry into the adjacency form the
// cycleDetector walks: one edge per constructor-dependency or optional
// parameter slot.
func (a *Assembler) dependencyGraph() map[reflect.Type][]reflect.Type {
	graph := make(map[reflect.Type][]reflect.Type, len(a.registry))
	for id, inj := range a.registry {
		var deps []reflect.Type
		for _, slot := range inj.plan {
			if slot.kind == slotDependency || slot.kind == slotOptional {
				deps = append(deps, slot.identifier)
			}
		}
		graph[id] = deps
	}
	return graph
}

// Dispose tears down every built instance in reverse construction-completion
// order — the order recorded in a.built, not a.order (registration order,
// which runs parent-before-children and so is backwards for this purpose).
// Reversing construction-completion order disposes a parent before any
// dependency it constructed, matching spec.md §4.9's hook ordering law
// (P.onDispose < D.onDispose). OnDispose runs on any instance implementing
// [Disposer]; afterward every internal collection is reset to empty, per
// spec.md's "after dispose, the container's internal maps are empty"
// invariant. Dispose is idempotent: a second call is a no-op.
func (a *Assembler) Dispose() error {
	if a.disposed {
		return nil
	}
	a.disposed = true

	for i := len(a.built) - 1; i >= 0; i-- {
		inj, ok := a.registry[a.built[i]]
		if !ok {
			continue
		}
		instance := inj.singletonInstance
		if instance == nil && inj.hasInstance {
			instance = inj.instance
		}
		if instance == nil {
			continue
		}
		if d, ok := instance.(Disposer); ok {
			if err := d.OnDispose(); err != nil {
				return ErrResolutionFailed{Type: inj.Concrete, Cause: err}
			}
		}
	}

	a.events.Dispose()
	a.registry = make(map[reflect.Type]*Injectable)
	a.order = nil
	a.built = nil
	a.store = newObjectStore()
	return nil
}
