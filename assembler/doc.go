// Package assembler is a dependency-injection runtime that composes an
// application from a root unit ("assemblage") by recursively resolving its
// declared dependencies, wiring them into constructor parameters, managing
// their lifetimes (singleton vs. transient), and driving a deterministic
// lifecycle of hooks around construction and teardown. A built-in
// publish/subscribe layer forwards per-unit event channels up to the
// assembler so any unit may subscribe to any other's events.
//
// # Basic Usage
//
// A unit is any struct whose constructor is registered once with
// [Assemblage]. Dependencies are declared on the unit's own [Definition] via
// [Inject] or [InjectAs], not pre-registered by the caller:
//
//	type Logger interface{ Log(string) }
//	type ConsoleLogger struct{}
//	func (l *ConsoleLogger) Log(msg string) { fmt.Println(msg) }
//
//	func init() {
//		assembler.Assemblage[ConsoleLogger](assembler.Definition{}, func() *ConsoleLogger {
//			return &ConsoleLogger{}
//		})
//	}
//
//	type Greeter struct {
//		logger Logger
//	}
//	func NewGreeter(logger Logger) *Greeter { return &Greeter{logger: logger} }
//
//	func init() {
//		assembler.Assemblage[Greeter](assembler.Definition{
//			Inject: []assembler.InjectionTuple{assembler.InjectAs[Logger, ConsoleLogger]()},
//		}, NewGreeter)
//	}
//
//	greeter, err := assembler.Build[*Greeter]()
//
// # Lifetimes
//
// Every unit is a Singleton by default ([Definition.Singleton] is a `*bool`;
// nil or true means singleton). Set it to a pointer to false to make a unit
// Transient: a fresh instance is built on every [Assembler.Require].
//
// # Parameter markers
//
// A constructor parameter typed [Context], [Configuration], [Definition], or
// [Dispose] is supplied automatically by the runtime instead of being
// resolved from the registry — the Go equivalent of the `@Context`,
// `@Configuration`, `@Definition`, and `@Dispose` parameter decorators.
// [UseParam], [GlobalParam], and [OptionalParam] mark a parameter position
// for keyed object-store, global, or optional resolution respectively.
//
// # Lifecycle hooks
//
// [Registrar] attaches a static registration hook, run once at registration
// time before any instance exists. A constructed unit may additionally
// implement any of [Initializer] or [PostInitializer], called during
// [Build] in that order, and [Disposer], called in reverse construction
// order by [Assembler.Dispose].
package assembler
