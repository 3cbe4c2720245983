package container

import (
	"fmt"
	"sync"
)

// ── Lifetime cache ────────────────────────────────────────────────────────────

// cache is a key → instance store with double-checked creation: the racing
// loser of two concurrent resolutions of the same key waits on a per-key
// mutex and then observes the winner's instance instead of constructing a
// second one. Distinct keys create under distinct mutexes, so a constructor
// that resolves further not-yet-created dependencies does not self-deadlock.
type cache struct {
	mu        sync.RWMutex
	instances map[ServiceKey]any
	creating  map[ServiceKey]*sync.Mutex
}

func newCache() *cache {
	return &cache{
		instances: make(map[ServiceKey]any),
		creating:  make(map[ServiceKey]*sync.Mutex),
	}
}

func (s *cache) get(key ServiceKey) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[key]
	return inst, ok
}

func (s *cache) getOrCreate(key ServiceKey, build func() (any, error)) (any, error) {
	s.mu.RLock()
	inst, ok := s.instances[key]
	s.mu.RUnlock()
	if ok {
		return inst, nil
	}

	s.mu.Lock()
	if inst, ok := s.instances[key]; ok {
		s.mu.Unlock()
		return inst, nil
	}
	keyMu, ok := s.creating[key]
	if !ok {
		keyMu = &sync.Mutex{}
		s.creating[key] = keyMu
	}
	s.mu.Unlock()

	keyMu.Lock()
	defer keyMu.Unlock()

	// second check: another goroutine may have finished while we waited
	s.mu.RLock()
	inst, ok = s.instances[key]
	s.mu.RUnlock()
	if ok {
		return inst, nil
	}

	inst, err := build()
	if err != nil {
		// Drop the creation mutex so a key that failed once does not pin
		// an entry forever; the next attempt starts fresh.
		s.mu.Lock()
		delete(s.creating, key)
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	// A failed attempt releases the creation mutex, so a recovery retry can
	// race a goroutine still holding the old one. First stored instance
	// wins; everyone observes it.
	if existing, ok := s.instances[key]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	s.instances[key] = inst
	delete(s.creating, key)
	s.mu.Unlock()
	return inst, nil
}

func (s *cache) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances = make(map[ServiceKey]any)
	s.creating = make(map[ServiceKey]*sync.Mutex)
}

// ── Resolver ──────────────────────────────────────────────────────────────────

// Resolver is the container view handed to factories and to Build during one
// top-level Resolve call. It carries the in-progress resolution path, so a
// cycle that runs through caller-supplied factory code is still detected.
// The path is private to the call — unrelated concurrent resolutions can
// never trip each other's cycle detector.
type Resolver struct {
	c    *Container
	path []ServiceKey
}

// Resolve resolves key, continuing the current resolution path.
func (r *Resolver) Resolve(key ServiceKey) (any, error) {
	return r.c.resolve(key, r.path)
}

// Container returns the container (or scope) this resolution runs against.
func (r *Resolver) Container() *Container { return r.c }

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve returns a live instance for key, creating it if absent.
//
// Lookup order: this scope's Scoped cache, the root singleton cache, the
// registration table (walking to the root), and finally the mock-fallback
// registry. A key found nowhere fails with ErrNotRegistered.
func (c *Container) Resolve(key ServiceKey) (any, error) {
	return c.resolve(key, nil)
}

func (c *Container) resolve(key ServiceKey, path []ServiceKey) (any, error) {
	root := c.root()
	key, b, ok := c.lookup(key)

	// fast path — never re-invokes construction
	if inst, hit := c.scoped.get(key); hit {
		return inst, nil
	}
	if inst, hit := root.singletons.get(key); hit {
		return inst, nil
	}

	if !ok {
		// No real binding anywhere. A mock stand-in acts as an implicit
		// instance binding for this resolution only — it is never written
		// into the registration table, so a later real registration takes
		// priority without a restart.
		if inst, found, err := root.fallbackMock(key); found || err != nil {
			return inst, err
		}
		return nil, NotRegisteredError{Key: key}
	}

	if b.kind == kindInstance {
		// Pre-built objects are returned verbatim regardless of declared
		// lifetime; lifetime only governs constructed instances.
		return b.instance, nil
	}

	if b.kind == kindMock {
		return root.explicitMock(key)
	}

	// Cycle check before descending into construction. path is local to the
	// top-level Resolve call, threaded through recursion, never stored on
	// the container.
	for _, inProgress := range path {
		if inProgress == key {
			cycle := make([]ServiceKey, 0, len(path)+1)
			cycle = append(cycle, path...)
			cycle = append(cycle, key)
			return nil, CircularDependencyError{Path: cycle}
		}
	}
	path = append(path, key)

	build := func() (any, error) { return c.construct(key, b, path) }

	switch b.lifetime {
	case Singleton:
		return root.singletons.getOrCreate(key, build)
	case Scoped:
		return c.scoped.getOrCreate(key, build)
	default: // Transient — never populates any cache
		return build()
	}
}

// construct runs the binding's creation strategy. A panic escaping
// caller-supplied factory or constructor code is converted into an
// InstantiationError rather than taking the process down.
func (c *Container) construct(key ServiceKey, b *binding, path []ServiceKey) (inst any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			inst = nil
			err = InstantiationError{Key: key, Cause: fmt.Errorf("panic: %v", rec)}
		}
	}()

	switch b.kind {
	case kindFactory:
		out, ferr := b.factory(&Resolver{c: c, path: path})
		if ferr != nil {
			return nil, InstantiationError{Key: key, Cause: ferr}
		}
		return out, nil

	case kindClass:
		ctor, ok := c.constructor(b.locator)
		if !ok {
			return nil, InstantiationError{
				Key:   key,
				Cause: fmt.Errorf("no constructor registered for locator %q", b.locator),
			}
		}
		out, berr := c.build(ctor, nil, path)
		if berr != nil {
			return nil, InstantiationError{Key: key, Cause: berr}
		}
		return out, nil

	default:
		return nil, InstantiationError{Key: key, Cause: fmt.Errorf("unknown binding kind %d", b.kind)}
	}
}
