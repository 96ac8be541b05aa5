package assembler

import (
	"reflect"
	"sync"
)

// definitionRecord is the Go stand-in for the distilled source's per-class
// side table: identity, the normalized Definition, the registered factory,
// and the parameter-decorator index maps populated by the RegistrationOptions
// passed to Assemblage.
type definitionRecord struct {
	identifier reflect.Type
	definition Definition
	factory    any
	paramTypes []reflect.Type
	hints      map[int]paramHint

	// onRegister is the Go stand-in for the distilled source's static
	// `onRegister(context, configuration)` class hook, which runs without
	// a constructed instance. Attached via [Registrar].
	onRegister func(Context, Configuration) error
}

// metadataFacade is the process-global, class-keyed registry that backs
// Assemblage. spec.md describes this as an external collaborator consumed
// through a reflection facade; Go has no such library in this corpus, so the
// facade is implemented directly as the minimal process-global map the
// design notes ask for (see SPEC_FULL.md §0).
type metadataFacade struct {
	mu      sync.RWMutex
	classes map[reflect.Type]*definitionRecord
	keyed   map[reflect.Type]map[string]any
}

var facade = &metadataFacade{
	classes: make(map[reflect.Type]*definitionRecord),
	keyed:   make(map[reflect.Type]map[string]any),
}

func (f *metadataFacade) setClass(t reflect.Type, rec *definitionRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classes[t] = rec
}

func (f *metadataFacade) getClass(t reflect.Type) (*definitionRecord, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	rec, ok := f.classes[t]
	return rec, ok
}

// setMeta stores an opaque key/value pair against a class. Go structs have
// no prototype chain, so there is nothing for inheritance to walk; getMeta
// and getOwnMeta therefore observe the same values. Both are kept so call
// sites read the same as the distilled source's get/getOwn pair.
func (f *metadataFacade) setMeta(t reflect.Type, key string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.keyed[t]
	if !ok {
		m = make(map[string]any)
		f.keyed[t] = m
	}
	m[key] = value
}

func (f *metadataFacade) getMeta(t reflect.Type, key string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	m, ok := f.keyed[t]
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

func (f *metadataFacade) getOwnMeta(t reflect.Type, key string) (any, bool) {
	return f.getMeta(t, key)
}

// paramTypes returns the compile-time parameter type array of a factory
// function — the reflection facade's other required capability per
// spec.md §6.
func paramTypes(factory any) []reflect.Type {
	ft := reflect.TypeOf(factory)
	types := make([]reflect.Type, ft.NumIn())
	for i := range types {
		types[i] = ft.In(i)
	}
	return types
}

// reset clears the process-global metadata registry. It exists for tests
// that need an isolated set of Assemblage registrations; production code
// never calls it.
func reset() {
	facade.mu.Lock()
	defer facade.mu.Unlock()
	facade.classes = make(map[reflect.Type]*definitionRecord)
	facade.keyed = make(map[reflect.Type]map[string]any)
}
