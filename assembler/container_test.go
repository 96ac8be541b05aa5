package assembler_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pegasusheavy/go-assembler/assembler"
)

// =============================================================================
// Basic registration and resolution
// =============================================================================

type greeter struct{}

func (g *greeter) Greet(name string) string { return "Hello, " + name }

func TestBuildSimple(t *testing.T) {
	err := assembler.Assemblage[greeter](assembler.Definition{}, func() *greeter {
		return &greeter{}
	})
	if err != nil {
		t.Fatalf("Assemblage: %v", err)
	}

	g, err := assembler.Build[*greeter]()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Greet("World") != "Hello, World" {
		t.Errorf("unexpected greeting: %q", g.Greet("World"))
	}
}

type Logger interface{ Log(string) }

type consoleLogger struct{ lines []string }

func (l *consoleLogger) Log(msg string) { l.lines = append(l.lines, msg) }

type loggingService struct {
	logger Logger
}

func TestInjectAsAbstractBinding(t *testing.T) {
	err := assembler.Assemblage[consoleLogger](assembler.Definition{}, func() *consoleLogger {
		return &consoleLogger{}
	})
	if err != nil {
		t.Fatalf("Assemblage(consoleLogger): %v", err)
	}

	err = assembler.Assemblage[loggingService](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.InjectAs[Logger, consoleLogger]()},
	}, func(l Logger) *loggingService {
		return &loggingService{logger: l}
	})
	if err != nil {
		t.Fatalf("Assemblage(loggingService): %v", err)
	}

	svc, err := assembler.Build[*loggingService]()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if svc.logger == nil {
		t.Fatal("expected logger to be injected")
	}
	svc.logger.Log("hello")
	if len(svc.logger.(*consoleLogger).lines) != 1 {
		t.Error("expected the injected logger to be usable")
	}
}

// =============================================================================
// Lifetimes
// =============================================================================

func TestSingletonSharedAcrossParents(t *testing.T) {
	type Counter struct{ n int }
	type left struct{ c *Counter }
	type right struct{ c *Counter }
	type root struct {
		left  *left
		right *right
	}

	builds := 0
	err := assembler.Assemblage[Counter](assembler.Definition{}, func() *Counter {
		builds++
		return &Counter{}
	})
	if err != nil {
		t.Fatalf("Assemblage(Counter): %v", err)
	}

	err = assembler.Assemblage[left](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.Inject[Counter]()},
	}, func(c *Counter) *left { return &left{c: c} })
	if err != nil {
		t.Fatalf("Assemblage(left): %v", err)
	}

	err = assembler.Assemblage[right](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.Inject[Counter]()},
	}, func(c *Counter) *right { return &right{c: c} })
	if err != nil {
		t.Fatalf("Assemblage(right): %v", err)
	}

	err = assembler.Assemblage[root](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.Inject[left](), assembler.Inject[right]()},
	}, func(l *left, r *right) *root { return &root{left: l, right: r} })
	if err != nil {
		t.Fatalf("Assemblage(root): %v", err)
	}

	r, err := assembler.Build[*root]()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if builds != 1 {
		t.Errorf("expected Counter to build once, built %d times", builds)
	}
	if r.left.c != r.right.c {
		t.Error("expected left and right to share the same Counter instance")
	}
}

func TestTransientBuildsFreshPerRequest(t *testing.T) {
	type Token struct{ n int }
	type left struct{ t *Token }
	type right struct{ t *Token }
	type root struct {
		left  *left
		right *right
	}

	builds := 0
	transient := false
	err := assembler.Assemblage[Token](assembler.Definition{Singleton: &transient}, func() *Token {
		builds++
		return &Token{n: builds}
	})
	if err != nil {
		t.Fatalf("Assemblage(Token): %v", err)
	}

	err = assembler.Assemblage[left](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.Inject[Token]()},
	}, func(tok *Token) *left { return &left{t: tok} })
	if err != nil {
		t.Fatalf("Assemblage(left): %v", err)
	}

	err = assembler.Assemblage[right](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.Inject[Token]()},
	}, func(tok *Token) *right { return &right{t: tok} })
	if err != nil {
		t.Fatalf("Assemblage(right): %v", err)
	}

	err = assembler.Assemblage[root](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.Inject[left](), assembler.Inject[right]()},
	}, func(l *left, r *right) *root { return &root{left: l, right: r} })
	if err != nil {
		t.Fatalf("Assemblage(root): %v", err)
	}

	r, err := assembler.Build[*root]()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if builds != 2 {
		t.Errorf("expected Token to build twice for a transient dependency, built %d times", builds)
	}
	if r.left.t == r.right.t {
		t.Error("expected distinct transient instances")
	}
}

// =============================================================================
// Object store and globals
// =============================================================================

type Clock interface{ Now() int }

type fakeClock struct{ fixed int }

func (c *fakeClock) Now() int { return c.fixed }

type clockConsumer struct{ clock Clock }

func TestUseInstanceSkipsConstruction(t *testing.T) {
	preBuilt := &fakeClock{fixed: 42}

	err := assembler.Assemblage[clockConsumer](assembler.Definition{
		Use: []assembler.UseBinding{assembler.UseInstance[Clock](preBuilt)},
	}, func(c Clock) *clockConsumer { return &clockConsumer{clock: c} })
	if err != nil {
		t.Fatalf("Assemblage: %v", err)
	}

	c, err := assembler.Build[*clockConsumer]()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.clock.Now() != 42 {
		t.Errorf("expected the pre-built instance to be injected untouched, got Now()=%d", c.clock.Now())
	}
}

func TestUseValueAndUseParam(t *testing.T) {
	type holder struct{ secret string }

	err := assembler.Assemblage[holder](assembler.Definition{
		Use: []assembler.UseBinding{assembler.UseValue("api-key", "s3cr3t")},
	}, func(secret string) *holder { return &holder{secret: secret} },
		assembler.UseParam(0, "api-key"))
	if err != nil {
		t.Fatalf("Assemblage: %v", err)
	}

	h, err := assembler.Build[*holder]()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if h.secret != "s3cr3t" {
		t.Errorf("expected injected secret, got %q", h.secret)
	}
}

func TestGlobalParam(t *testing.T) {
	type consumer struct{ region string }

	err := assembler.Assemblage[consumer](assembler.Definition{
		Global: map[string]any{"region": "eu-west-1"},
	}, func(region string) *consumer { return &consumer{region: region} },
		assembler.GlobalParam(0, "region"))
	if err != nil {
		t.Fatalf("Assemblage: %v", err)
	}

	c, err := assembler.Build[*consumer]()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.region != "eu-west-1" {
		t.Errorf("expected region from global, got %q", c.region)
	}
}

func TestOptionalParamMissingDependency(t *testing.T) {
	type Missing interface{ Absent() }
	type consumer struct{ dep Missing }

	err := assembler.Assemblage[consumer](assembler.Definition{}, func(dep Missing) *consumer {
		return &consumer{dep: dep}
	}, assembler.OptionalParam(0))
	if err != nil {
		t.Fatalf("Assemblage: %v", err)
	}

	c, err := assembler.Build[*consumer]()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.dep != nil {
		t.Error("expected optional dependency to resolve to nil")
	}
}

// =============================================================================
// Tags
// =============================================================================

func TestTaggedReturnsMatchingUnits(t *testing.T) {
	type handlerA struct{}
	type handlerB struct{}
	type handlerC struct{}

	type registry struct {
		handlers []any
	}

	err := assembler.Assemblage[handlerA](assembler.Definition{Tags: []string{"http"}}, func() *handlerA { return &handlerA{} })
	if err != nil {
		t.Fatalf("Assemblage(handlerA): %v", err)
	}
	err = assembler.Assemblage[handlerB](assembler.Definition{Tags: []string{"http", "admin"}}, func() *handlerB { return &handlerB{} })
	if err != nil {
		t.Fatalf("Assemblage(handlerB): %v", err)
	}
	err = assembler.Assemblage[handlerC](assembler.Definition{Tags: []string{"grpc"}}, func() *handlerC { return &handlerC{} })
	if err != nil {
		t.Fatalf("Assemblage(handlerC): %v", err)
	}

	err = assembler.Assemblage[registry](assembler.Definition{
		Inject: []assembler.InjectionTuple{
			assembler.Inject[handlerA](), assembler.Inject[handlerB](), assembler.Inject[handlerC](),
		},
	}, func(ctx assembler.Context) *registry {
		return &registry{handlers: ctx.Tagged("http")}
	})
	if err != nil {
		t.Fatalf("Assemblage(registry): %v", err)
	}

	reg, err := assembler.Build[*registry]()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(reg.handlers) != 2 {
		t.Errorf("expected 2 units tagged 'http', got %d", len(reg.handlers))
	}
}

// =============================================================================
// Errors
// =============================================================================

func TestCircularResolutionDetected(t *testing.T) {
	type ServiceA interface{ A() }
	type ServiceB interface{ B() }
	type implA struct{ b ServiceB }
	type implB struct{ a ServiceA }

	err := assembler.Assemblage[implA](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.InjectAs[ServiceB, implB]()},
	}, func(b ServiceB) *implA { return &implA{b: b} })
	if err != nil {
		t.Fatalf("Assemblage(implA): %v", err)
	}

	err = assembler.Assemblage[implB](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.InjectAs[ServiceA, implA]()},
	}, func(a ServiceA) *implB { return &implB{a: a} })
	if err != nil {
		t.Fatalf("Assemblage(implB): %v", err)
	}

	_, err = assembler.Build[*implA]()
	if err == nil {
		t.Fatal("expected circular resolution error")
	}

	var circErr assembler.ErrCircularResolution
	if !errors.As(err, &circErr) {
		t.Errorf("expected ErrCircularResolution, got %T: %v", err, err)
	}
}

func TestDuplicateRegistrationConflict(t *testing.T) {
	type Shape interface{ Area() float64 }
	type square struct{}
	type circle struct{}
	type consumer struct {
		shapes []Shape
	}

	err := assembler.Assemblage[square](assembler.Definition{}, func() *square { return &square{} })
	if err != nil {
		t.Fatalf("Assemblage(square): %v", err)
	}
	err = assembler.Assemblage[circle](assembler.Definition{}, func() *circle { return &circle{} })
	if err != nil {
		t.Fatalf("Assemblage(circle): %v", err)
	}

	err = assembler.Assemblage[consumer](assembler.Definition{
		Inject: []assembler.InjectionTuple{
			assembler.InjectAs[Shape, square](),
			assembler.InjectAs[Shape, circle](),
		},
	}, func() *consumer { return &consumer{} })
	if err != nil {
		t.Fatalf("Assemblage(consumer): %v", err)
	}

	_, err = assembler.Build[*consumer]()
	if err == nil {
		t.Fatal("expected duplicate registration error")
	}

	var dupErr assembler.ErrDuplicateRegistration
	if !errors.As(err, &dupErr) {
		t.Errorf("expected ErrDuplicateRegistration, got %T: %v", err, err)
	}
}

func TestUnknownDependencyError(t *testing.T) {
	type Missing interface{ Absent() }
	type consumer struct{ dep Missing }

	err := assembler.Assemblage[consumer](assembler.Definition{}, func(dep Missing) *consumer {
		return &consumer{dep: dep}
	})
	if err != nil {
		t.Fatalf("Assemblage: %v", err)
	}

	_, err = assembler.Build[*consumer]()
	if err == nil {
		t.Fatal("expected unknown dependency error")
	}

	var unkErr assembler.ErrUnknownDependency
	if !errors.As(err, &unkErr) {
		t.Errorf("expected ErrUnknownDependency, got %T: %v", err, err)
	}
}

func TestInvalidFactoryNotAFunction(t *testing.T) {
	type broken struct{}

	err := assembler.Assemblage[broken](assembler.Definition{}, "not a function")
	if err == nil {
		t.Fatal("expected error for non-function factory")
	}

	var invErr assembler.ErrInvalidFactory
	if !errors.As(err, &invErr) {
		t.Errorf("expected ErrInvalidFactory, got %T", err)
	}
}

func TestFactoryErrorReturnPropagates(t *testing.T) {
	type broken struct{}

	wantErr := errors.New("construction failed")
	err := assembler.Assemblage[broken](assembler.Definition{}, func() (*broken, error) {
		return nil, wantErr
	})
	if err != nil {
		t.Fatalf("Assemblage: %v", err)
	}

	_, err = assembler.Build[*broken]()
	if err == nil {
		t.Fatal("expected factory error to propagate")
	}
	if !errors.Is(err, wantErr) {
		t.Error("expected Unwrap to reach the original error")
	}
}

func TestBuildWithoutRegistration(t *testing.T) {
	type notRegistered struct{}

	_, err := assembler.Build[*notRegistered]()
	if err == nil {
		t.Fatal("expected error for unregistered root")
	}
}

// =============================================================================
// Lifecycle hooks
// =============================================================================

type hookedUnit struct {
	events []string
}

func (u *hookedUnit) OnInit(assembler.Configuration) error {
	u.events = append(u.events, "init")
	return nil
}

func (u *hookedUnit) OnInited() error {
	u.events = append(u.events, "inited")
	return nil
}

func (u *hookedUnit) OnDispose() error {
	u.events = append(u.events, "dispose")
	return nil
}

func TestLifecycleHookOrder(t *testing.T) {
	var registered bool

	err := assembler.Assemblage[hookedUnit](assembler.Definition{}, func() *hookedUnit {
		return &hookedUnit{}
	}, assembler.Registrar(func(ctx assembler.Context, cfg assembler.Configuration) error {
		registered = true
		return nil
	}))
	if err != nil {
		t.Fatalf("Assemblage: %v", err)
	}

	u, err := assembler.Build[*hookedUnit]()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !registered {
		t.Error("expected Registrar hook to run")
	}
	if len(u.events) != 2 || u.events[0] != "init" || u.events[1] != "inited" {
		t.Errorf("expected [init inited], got %v", u.events)
	}
}

type hookOrderChild struct {
	order *[]string
}

func (c *hookOrderChild) OnInit(assembler.Configuration) error {
	*c.order = append(*c.order, "child:init")
	return nil
}

func (c *hookOrderChild) OnInited() error {
	*c.order = append(*c.order, "child:inited")
	return nil
}

type hookOrderParent struct {
	order *[]string
	child *hookOrderChild
}

func (p *hookOrderParent) OnInit(assembler.Configuration) error {
	*p.order = append(*p.order, "parent:init")
	return nil
}

func (p *hookOrderParent) OnInited() error {
	*p.order = append(*p.order, "parent:inited")
	return nil
}

func TestParentChildHookOrder(t *testing.T) {
	order := &[]string{}

	err := assembler.Assemblage[hookOrderChild](assembler.Definition{}, func() *hookOrderChild {
		return &hookOrderChild{order: order}
	})
	if err != nil {
		t.Fatalf("Assemblage child: %v", err)
	}

	err = assembler.Assemblage[hookOrderParent](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.Inject[hookOrderChild]()},
	}, func(child *hookOrderChild) *hookOrderParent {
		return &hookOrderParent{order: order, child: child}
	})
	if err != nil {
		t.Fatalf("Assemblage parent: %v", err)
	}

	if _, err := assembler.Build[*hookOrderParent](); err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []string{"child:init", "parent:init", "parent:inited", "child:inited"}
	if !reflect.DeepEqual(*order, want) {
		t.Errorf("hook order = %v, want %v", *order, want)
	}
}

// =============================================================================
// Dispose: reverse construction-completion order, post-dispose cleanup
// =============================================================================

type disposeChild struct {
	order *[]string
}

func (c *disposeChild) OnDispose() error {
	*c.order = append(*c.order, "child:dispose")
	return nil
}

type disposeParent struct {
	order *[]string
	child *disposeChild
	ctx   assembler.Context
}

func (p *disposeParent) OnDispose() error {
	*p.order = append(*p.order, "parent:dispose")
	return nil
}

func TestDisposeOrderingAndCleanup(t *testing.T) {
	order := &[]string{}

	err := assembler.Assemblage[disposeChild](assembler.Definition{}, func() *disposeChild {
		return &disposeChild{order: order}
	})
	if err != nil {
		t.Fatalf("Assemblage child: %v", err)
	}

	err = assembler.Assemblage[disposeParent](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.Inject[disposeChild]()},
		Global: map[string]any{"disposeKey": "v"},
	}, func(child *disposeChild, ctx assembler.Context) *disposeParent {
		return &disposeParent{order: order, child: child, ctx: ctx}
	})
	if err != nil {
		t.Fatalf("Assemblage parent: %v", err)
	}

	p, err := assembler.Build[*disposeParent]()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := p.ctx.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}

	want := []string{"parent:dispose", "child:dispose"}
	if !reflect.DeepEqual(*order, want) {
		t.Errorf("dispose order = %v, want %v", *order, want)
	}

	if p.ctx.Has(reflect.TypeOf(disposeChild{})) {
		t.Error("expected registry to be empty after Dispose")
	}
	if _, ok := p.ctx.Global("disposeKey"); ok {
		t.Error("expected global store to be empty after Dispose")
	}
	if err := p.ctx.Dispose(); err != nil {
		t.Errorf("second Dispose should be a no-op, got %v", err)
	}
}

// =============================================================================
// Event bus: per-unit Emitter forwarding to the container scope
// =============================================================================

type pinger struct {
	assembler.Emitter
}

func (p *pinger) Ping(msg string) {
	p.Emit("ping", msg)
}

type pingListener struct {
	received string
}

type eventRoot struct {
	pinger   *pinger
	listener *pingListener
}

func TestEventForwardingToContainerScope(t *testing.T) {
	err := assembler.Assemblage[pinger](assembler.Definition{
		Events: []string{"ping"},
	}, func() *pinger { return &pinger{} })
	if err != nil {
		t.Fatalf("Assemblage(pinger): %v", err)
	}

	err = assembler.Assemblage[pingListener](assembler.Definition{}, func(ctx assembler.Context) *pingListener {
		lu := &pingListener{}
		ctx.On("ping", func(args ...any) {
			if len(args) > 0 {
				lu.received, _ = args[0].(string)
			}
		})
		return lu
	})
	if err != nil {
		t.Fatalf("Assemblage(pingListener): %v", err)
	}

	err = assembler.Assemblage[eventRoot](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.Inject[pinger](), assembler.Inject[pingListener]()},
	}, func(p *pinger, l *pingListener) *eventRoot {
		return &eventRoot{pinger: p, listener: l}
	})
	if err != nil {
		t.Fatalf("Assemblage(eventRoot): %v", err)
	}

	root, err := assembler.Build[*eventRoot]()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	root.pinger.Ping("hello")
	if root.listener.received != "hello" {
		t.Errorf("expected listener to receive %q, got %q", "hello", root.listener.received)
	}
}

type wildcardListener struct {
	channel string
	payload string
}

type wildcardRoot struct {
	pinger   *pinger
	listener *wildcardListener
}

func TestWildcardListenerReceivesChannelName(t *testing.T) {
	err := assembler.Assemblage[pinger](assembler.Definition{
		Events: []string{"ping"},
	}, func() *pinger { return &pinger{} })
	if err != nil {
		t.Fatalf("Assemblage(pinger): %v", err)
	}

	err = assembler.Assemblage[wildcardListener](assembler.Definition{}, func(ctx assembler.Context) *wildcardListener {
		wl := &wildcardListener{}
		ctx.On("*", func(args ...any) {
			if len(args) > 0 {
				wl.channel, _ = args[0].(string)
			}
			if len(args) > 1 {
				wl.payload, _ = args[1].(string)
			}
		})
		return wl
	})
	if err != nil {
		t.Fatalf("Assemblage(wildcardListener): %v", err)
	}

	err = assembler.Assemblage[wildcardRoot](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.Inject[pinger](), assembler.Inject[wildcardListener]()},
	}, func(p *pinger, w *wildcardListener) *wildcardRoot {
		return &wildcardRoot{pinger: p, listener: w}
	})
	if err != nil {
		t.Fatalf("Assemblage(wildcardRoot): %v", err)
	}

	root, err := assembler.Build[*wildcardRoot]()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	root.pinger.Ping("hello")
	if root.listener.channel != "ping" {
		t.Errorf("expected wildcard listener to receive channel name 'ping', got %q", root.listener.channel)
	}
	if root.listener.payload != "hello" {
		t.Errorf("expected wildcard listener to receive payload 'hello', got %q", root.listener.payload)
	}
}
