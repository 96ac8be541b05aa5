package assembler

import "reflect"

// Definition is the normalized, user-supplied descriptor of a unit. It is
// the Go equivalent of the distilled source's definition object passed to
// the `@Assemblage` class decorator — here passed directly to [Assemblage]
// — and is also the value delivered to a constructor parameter of type
// Definition (see doc.go's "Parameter markers").
//
// The set of recognized fields is closed by Go's type system: there is no
// way to attach an unrecognized "option" to a Definition, so the runtime
// validation in validateDefinition only needs to check the genuinely dynamic
// parts — tag/event/metadata/global key shapes — rather than guard against
// unknown option names the way the distilled source's validator does.
type Definition struct {
	// Singleton selects the resolution strategy. nil or a pointer to true
	// means singleton (the default); a pointer to false means transient.
	Singleton *bool

	// Inject lists this unit's own registration contributions: dependencies
	// it declares, which are recursively registered the first time this
	// unit is registered.
	Inject []InjectionTuple

	// Use lists object-store and instance-bound registrations this unit
	// contributes alongside Inject.
	Use []UseBinding

	// Tags is the set of strings by which Assembler.Tagged can find this unit.
	Tags []string

	// Events is the set of channel names this unit may emit on.
	Events []string

	// Metadata is an opaque record exposed to the unit via a Definition
	// parameter marker.
	Metadata map[string]any

	// Global is a key/value map of cross-cutting values merged into the
	// assembler's global store when this unit is registered.
	Global map[string]any
}

// isSingleton implements the spec.md §9 fix for the distilled source's
// `definition.singleton || true` bug: only an explicit false disables the
// default singleton strategy.
func (d Definition) isSingleton() bool {
	return d.Singleton == nil || *d.Singleton
}

// forceSingleton returns a Definition identical to d but forced singleton,
// used by the orchestrator to coerce the root unit per spec.md §4.9 step 1.
func (d Definition) forceSingleton() Definition {
	d.Singleton = nil
	return d
}

func validateDefinition(t reflect.Type, d Definition) error {
	seenTags := make(map[string]struct{}, len(d.Tags))
	for _, tag := range d.Tags {
		if tag == "" {
			return ErrInvalidDefinition{Type: t, Option: "tags", Reason: "tag must not be blank"}
		}
		if _, dup := seenTags[tag]; dup {
			return ErrInvalidDefinition{Type: t, Option: "tags", Reason: "duplicate tag " + tag}
		}
		seenTags[tag] = struct{}{}
	}

	seenEvents := make(map[string]struct{}, len(d.Events))
	for _, ch := range d.Events {
		if ch == "" {
			return ErrInvalidDefinition{Type: t, Option: "events", Reason: "channel name must not be blank"}
		}
		if ch == "*" {
			return ErrInvalidDefinition{Type: t, Option: "events", Reason: `"*" is reserved for the implicit wildcard channel`}
		}
		if _, dup := seenEvents[ch]; dup {
			return ErrInvalidDefinition{Type: t, Option: "events", Reason: "duplicate channel " + ch}
		}
		seenEvents[ch] = struct{}{}
	}

	for key := range d.Metadata {
		if key == "" {
			return ErrInvalidDefinition{Type: t, Option: "metadata", Reason: "metadata key must not be blank"}
		}
	}

	for key := range d.Global {
		if key == "" {
			return ErrInvalidDefinition{Type: t, Option: "global", Reason: "global key must not be blank"}
		}
	}

	return nil
}
