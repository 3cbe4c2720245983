package container

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// ── Service keys and bindings ─────────────────────────────────────────────────

// ServiceKey names a logical service. Keys are plain strings; define them as
// package-level constants to avoid typos:
//
//	const (
//	    KeyLogger container.ServiceKey = "logger"
//	    KeyClock  container.ServiceKey = "clock"
//	)
type ServiceKey string

// Factory builds a service instance. It receives a Resolver so it can pull
// its own dependencies from the container; resolutions made through it stay
// on the current resolution path, keeping cycle detection intact even when
// the cycle runs through a factory.
type Factory func(r *Resolver) (any, error)

// bindingKind discriminates what a binding's payload is.
type bindingKind int

const (
	kindClass    bindingKind = iota // payload: constructor locator string
	kindInstance                    // payload: ready-made object
	kindFactory                     // payload: Factory func
	kindMock                        // payload: none — pull from the mock registry
)

// binding is one entry in the registration table.
type binding struct {
	kind     bindingKind
	locator  string
	instance any
	factory  Factory
	lifetime Lifetime
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the DI runtime: registration table, lifetime caches, and
// resolver. A root container owns the table, the constructor set, and the
// singleton cache; a scope created via CreateScope shares all of those
// read-through and owns only its scoped-instance cache.
//
// There is no process-wide "current container": every component that needs
// resolution receives a *Container (or *Resolver) explicitly, so a test can
// swap the whole container by passing a different one.
type Container struct {
	parent *Container

	// root-only state; nil on scopes
	mu       sync.RWMutex
	bindings map[ServiceKey]*binding
	aliases  map[ServiceKey]ServiceKey
	ctors    map[string]*Constructor
	mocks    *MockRegistry
	mockUsed map[ServiceKey]bool
	log      logrus.FieldLogger

	singletons *cache // root-only
	scoped     *cache // per container, scopes included
}

// New creates an empty root container. Resolution logs (mock fallbacks,
// verifier probes) are discarded until SetLogger is called.
func New() *Container {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	return &Container{
		bindings:   make(map[ServiceKey]*binding),
		aliases:    make(map[ServiceKey]ServiceKey),
		ctors:      make(map[string]*Constructor),
		mocks:      NewMockRegistry(),
		mockUsed:   make(map[ServiceKey]bool),
		log:        quiet,
		singletons: newCache(),
		scoped:     newCache(),
	}
}

// root walks up to the owning root container.
func (c *Container) root() *Container {
	r := c
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// SetLogger routes the container's diagnostics (mock fallbacks, verifier
// results) through l.
func (c *Container) SetLogger(l logrus.FieldLogger) {
	root := c.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.log = l
}

func (c *Container) logger() logrus.FieldLogger {
	root := c.root()
	root.mu.RLock()
	defer root.mu.RUnlock()
	return root.log
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register binds key to a constructor locator (see RegisterConstructor) with
// the given lifetime. Any existing binding for key is replaced — last write
// wins, which test code uses deliberately to override production bindings.
//
// The registration table lives on the root and is shared: registering
// through a scope writes the same table every container in the tree reads.
// There is no scope-local shadowing.
//
// The locator is not validated here; an unknown locator surfaces as an
// InstantiationError at first resolution, not at registration time.
func (c *Container) Register(key ServiceKey, locator string, lifetime Lifetime) {
	c.put(key, &binding{kind: kindClass, locator: locator, lifetime: lifetime})
}

// RegisterInstance binds a ready-made object. The exact object is returned
// on every resolution; lifetime does not apply to pre-built instances.
func (c *Container) RegisterInstance(key ServiceKey, instance any) {
	c.put(key, &binding{kind: kindInstance, instance: instance, lifetime: Singleton})
}

// RegisterFactory binds a creation function with the given lifetime.
//
//	c.RegisterFactory("report-writer", func(r *container.Resolver) (any, error) {
//	    clock, err := r.Resolve("clock")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewReportWriter(clock.(Clock)), nil
//	}, container.Scoped)
func (c *Container) RegisterFactory(key ServiceKey, factory Factory, lifetime Lifetime) {
	c.put(key, &binding{kind: kindFactory, factory: factory, lifetime: lifetime})
}

// UseMock binds key to whatever stand-in the mock registry holds for it.
// This is the explicit "no real implementation — use mock" state from the
// service manifest; it is distinct from a key that was simply never
// registered, which fails hard on resolution.
func (c *Container) UseMock(key ServiceKey) {
	c.put(key, &binding{kind: kindMock, lifetime: Singleton})
}

// put installs a binding on the root table. Registering a real binding
// clears the key's mock-fallback marker so IsUsingMock reflects the next
// resolution, not history.
func (c *Container) put(key ServiceKey, b *binding) {
	root := c.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	key = root.canonical(key)
	root.bindings[key] = b
	if b.kind != kindMock {
		delete(root.mockUsed, key)
	}
}

// Alias registers an alternative name for key. Lookups of alias behave
// exactly like lookups of key, including cache hits.
func (c *Container) Alias(key ServiceKey, alias ServiceKey) {
	root := c.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	if key == alias {
		panic(fmt.Sprintf("container: %q is aliased to itself", key))
	}
	root.aliases[alias] = root.canonical(key)
}

// canonical resolves an alias to its canonical key (caller holds root.mu).
func (c *Container) canonical(key ServiceKey) ServiceKey {
	if target, ok := c.aliases[key]; ok {
		return target
	}
	return key
}

// IsRegistered reports whether key has a binding in this container's table.
// An explicitly-mocked key counts as registered; the mock-fallback registry
// is never consulted.
func (c *Container) IsRegistered(key ServiceKey) bool {
	root := c.root()
	root.mu.RLock()
	defer root.mu.RUnlock()
	_, ok := root.bindings[root.canonical(key)]
	return ok
}

// lookup canonicalizes key and returns its binding, if any.
func (c *Container) lookup(key ServiceKey) (ServiceKey, *binding, bool) {
	root := c.root()
	root.mu.RLock()
	defer root.mu.RUnlock()
	key = root.canonical(key)
	b, ok := root.bindings[key]
	return key, b, ok
}

// ── Constructor set ───────────────────────────────────────────────────────────

// RegisterConstructor makes ctor available under locator for Class-kind
// bindings. How a locator string is derived is the caller's business — the
// application registers one constructor per implementation it ships.
func (c *Container) RegisterConstructor(locator string, ctor *Constructor) {
	root := c.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.ctors[locator] = ctor
}

func (c *Container) constructor(locator string) (*Constructor, bool) {
	root := c.root()
	root.mu.RLock()
	defer root.mu.RUnlock()
	ctor, ok := root.ctors[locator]
	return ctor, ok
}

// ── Scopes ────────────────────────────────────────────────────────────────────

// CreateScope returns a child container. The scope reads the parent's
// registration table and shares the root singleton cache, but Scoped-lifetime
// instances created through it live in its own cache, invisible to siblings
// and to the parent. Scopes nest. Registration calls made on a scope mutate
// the shared root table — what a scope owns is its cache, never its own
// bindings.
//
// A scope has no teardown hook: discard it when the unit of work ends. If
// scoped instances hold external resources, the owning code must release
// them itself before dropping the scope — the runtime does not track
// disposal. Known limitation.
func (c *Container) CreateScope() *Container {
	return &Container{
		parent: c,
		scoped: newCache(),
	}
}

// ── Reset ─────────────────────────────────────────────────────────────────────

// Reset clears the registration table, aliases, this container's scoped
// cache, and the mock-usage markers. With includeSingletons it also drops
// the root singleton cache. Intended for test teardown.
//
// Reset is the only operation that invalidates caches: re-registering a key
// whose instance is already cached leaves the cache alone, and the stale
// instance keeps winning until Reset. Accepted behavior, not a bug.
//
// Constructors registered via RegisterConstructor survive Reset — they
// describe the code that exists, not the wiring under test. Scopes created
// before Reset keep their scoped caches until discarded.
func (c *Container) Reset(includeSingletons bool) {
	root := c.root()
	root.mu.Lock()
	root.bindings = make(map[ServiceKey]*binding)
	root.aliases = make(map[ServiceKey]ServiceKey)
	root.mockUsed = make(map[ServiceKey]bool)
	root.mu.Unlock()

	root.scoped.clear()
	if includeSingletons {
		root.singletons.clear()
	}
}

// ── Inventory ─────────────────────────────────────────────────────────────────

// BindingInfo is one registration-table entry, as reported by Bindings.
type BindingInfo struct {
	Key       ServiceKey `json:"key"`
	Kind      string     `json:"kind"` // "class" | "instance" | "factory" | "mock"
	Lifetime  string     `json:"lifetime"`
	Locator   string     `json:"locator,omitempty"`
	UsingMock bool       `json:"usingMock"`
}

// Bindings returns a snapshot of the registration table, for diagnostics.
func (c *Container) Bindings() []BindingInfo {
	root := c.root()
	root.mu.RLock()
	defer root.mu.RUnlock()

	out := make([]BindingInfo, 0, len(root.bindings))
	for key, b := range root.bindings {
		info := BindingInfo{
			Key:       key,
			Lifetime:  b.lifetime.String(),
			Locator:   b.locator,
			UsingMock: root.mockUsed[key] || b.kind == kindMock,
		}
		switch b.kind {
		case kindClass:
			info.Kind = "class"
		case kindInstance:
			info.Kind = "instance"
		case kindFactory:
			info.Kind = "factory"
		case kindMock:
			info.Kind = "mock"
		}
		out = append(out, info)
	}
	return out
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// ResolveAs resolves key and type-asserts the result.
//
//	logger, err := container.ResolveAs[Logger](c, "logger")
func ResolveAs[T any](c *Container, key ServiceKey) (T, error) {
	var zero T
	instance, err := c.Resolve(key)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, InstantiationError{
			Key:   key,
			Cause: fmt.Errorf("resolved to %T, want %T", instance, zero),
		}
	}
	return typed, nil
}

// MustResolveAs is ResolveAs for wiring code where a failure is fatal
// anyway; it panics on error.
func MustResolveAs[T any](c *Container, key ServiceKey) T {
	typed, err := ResolveAs[T](c, key)
	if err != nil {
		panic(err)
	}
	return typed
}
