package container

import "sync"

// ── Mock-fallback registry ────────────────────────────────────────────────────

// MockFactory builds a stand-in implementation. Mocks should be
// self-evidently fake — tag the data they produce — so that fallback
// behavior reaching production is noticed, not mistaken for the real thing.
type MockFactory func() any

// MockRegistry is the secondary table of built-in stand-ins, populated
// independently of the registration table (typically once at process start
// from a fixed list of interface-name → mock-factory pairs).
//
// It exists to keep the rest of the application runnable while real
// implementations are still being written; business logic must not depend
// on it.
type MockRegistry struct {
	mu        sync.RWMutex
	factories map[ServiceKey]MockFactory
	instances map[ServiceKey]any
}

func NewMockRegistry() *MockRegistry {
	return &MockRegistry{
		factories: make(map[ServiceKey]MockFactory),
		instances: make(map[ServiceKey]any),
	}
}

// Provide registers a stand-in factory and returns the registry for chaining:
//
//	mocks.Provide("mailer", func() any { return &MockMailer{} }).
//	      Provide("ledger", func() any { return &MockLedger{} })
func (m *MockRegistry) Provide(key ServiceKey, factory MockFactory) *MockRegistry {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[key] = factory
	return m
}

// Has reports whether a stand-in exists for key.
func (m *MockRegistry) Has(key ServiceKey) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.factories[key]
	return ok
}

// Keys returns every key that has a stand-in, for diagnostics.
func (m *MockRegistry) Keys() []ServiceKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]ServiceKey, 0, len(m.factories))
	for k := range m.factories {
		keys = append(keys, k)
	}
	return keys
}

// instance returns the stand-in for key, creating it on first use. One
// stand-in per key: a mock behaves like an instance binding, not a
// transient. created reports whether this call built it.
func (m *MockRegistry) instance(key ServiceKey) (inst any, ok bool, created bool) {
	m.mu.RLock()
	inst, hit := m.instances[key]
	m.mu.RUnlock()
	if hit {
		return inst, true, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if inst, hit := m.instances[key]; hit {
		return inst, true, false
	}
	factory, ok := m.factories[key]
	if !ok {
		return nil, false, false
	}
	inst = factory()
	m.instances[key] = inst
	return inst, true, true
}

// ── Container integration ─────────────────────────────────────────────────────

// Mocks returns the root container's mock-fallback registry, for population
// at startup.
func (c *Container) Mocks() *MockRegistry {
	root := c.root()
	root.mu.RLock()
	defer root.mu.RUnlock()
	return root.mocks
}

// SetMockRegistry replaces the root's mock-fallback registry.
func (c *Container) SetMockRegistry(m *MockRegistry) {
	root := c.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.mocks = m
}

// IsUsingMock reports whether resolutions of key are currently served by a
// stand-in — either the key is explicitly bound to its mock via UseMock, or
// it has no real binding and a fallback has occurred. Registering a real
// binding flips this back to false.
func (c *Container) IsUsingMock(key ServiceKey) bool {
	root := c.root()
	root.mu.RLock()
	defer root.mu.RUnlock()
	key = root.canonical(key)
	if b, ok := root.bindings[key]; ok {
		return b.kind == kindMock
	}
	return root.mockUsed[key]
}

// fallbackMock serves key from the mock registry when no real binding
// exists. found is false when the registry has no stand-in either.
func (c *Container) fallbackMock(key ServiceKey) (any, bool, error) {
	root := c.root()
	root.mu.RLock()
	mocks := root.mocks
	root.mu.RUnlock()

	inst, ok, created := mocks.instance(key)
	if !ok {
		return nil, false, nil
	}

	root.mu.Lock()
	root.mockUsed[key] = true
	root.mu.Unlock()

	if created {
		// Loud on purpose: fallback in production means a missing real
		// registration. Logged once per key, when the stand-in is built.
		c.logger().WithFields(map[string]any{
			"key":  string(key),
			"mock": true,
		}).Warn("no binding registered; serving mock stand-in")
	}
	return inst, true, nil
}

// explicitMock serves a key bound via UseMock. Unlike fallbackMock, a
// missing stand-in here is an error: the manifest asked for a mock that
// does not exist.
func (c *Container) explicitMock(key ServiceKey) (any, error) {
	root := c.root()
	root.mu.RLock()
	mocks := root.mocks
	root.mu.RUnlock()

	inst, ok, created := mocks.instance(key)
	if !ok {
		return nil, NoMockError{Key: key}
	}
	if created {
		c.logger().WithFields(map[string]any{
			"key":      string(key),
			"mock":     true,
			"explicit": true,
		}).Info("serving explicitly requested mock stand-in")
	}
	return inst, nil
}
