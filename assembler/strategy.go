package assembler

// strategy is the shared contract Singleton and Transient implement, as
// described by spec.md §9 ("Strategy pluggability"): resolve an Injectable
// into an instance, given a per-resolve configuration override. Additional
// strategies can be added without touching the container.
type strategy interface {
	resolve(a *Assembler, inj *Injectable, config any) (any, error)
}

// singletonStrategy memoizes one instance per identifier: the first
// Require builds it and appends it to the init-queue, every subsequent
// Require for the same identifier returns the cached instance untouched.
type singletonStrategy struct{}

func (singletonStrategy) resolve(a *Assembler, inj *Injectable, config any) (any, error) {
	if inj.singletonInstance != nil {
		return inj.singletonInstance, nil
	}
	instance, err := inj.build(a, config)
	if err != nil {
		return nil, err
	}
	inj.singletonInstance = instance
	return instance, nil
}

// transientStrategy always builds a fresh instance. spec.md §9's documented
// (not fixed) quirk applies here too: build() always appends to the
// init-queue, so a transient instance built outside an active Build call
// (for example from inside another unit's onDispose) is still constructed
// correctly but never receives onInit/onInited, because nothing ever drains
// the init-queue for it.
type transientStrategy struct{}

func (transientStrategy) resolve(a *Assembler, inj *Injectable, config any) (any, error) {
	return inj.build(a, config)
}

var (
	strategySingleton strategy = singletonStrategy{}
	strategyTransient strategy = transientStrategy{}
)

func strategyForInjectable(inj *Injectable) strategy {
	if inj.singleton {
		return strategySingleton
	}
	return strategyTransient
}
