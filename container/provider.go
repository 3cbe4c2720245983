package container

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider is how the rest of the application feeds bindings into the
// container at startup. Every provider must implement at minimum Register().
// Boot() is called after ALL providers have been registered, making it safe
// to resolve other bindings inside Boot().
//
//	type ReportingProvider struct{ container.BaseProvider }
//
//	func (p *ReportingProvider) Register(c *container.Container) {
//	    c.RegisterFactory("report-writer", func(r *container.Resolver) (any, error) {
//	        clock, err := r.Resolve("clock")
//	        ...
//	    }, container.Scoped)
//	}
//
//	func (p *ReportingProvider) Boot(c *container.Container) {
//	    // safe to resolve anything registered by any provider
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here — use Boot() for that.
	Register(c *Container)

	// Boot is called after all providers are registered.
	// Safe to resolve and use any binding here.
	Boot(c *Container)

	// Provides returns the list of keys this provider registers.
	// Used for deferred (lazy) provider loading.
	// Return nil / empty slice if the provider is always eager.
	Provides() []ServiceKey

	// IsDeferred returns true if this provider should be loaded lazily —
	// only when one of its Provides() keys is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
// Embed it in your provider and only override what you need.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)      {}
func (p *BaseProvider) Provides() []ServiceKey { return nil }
func (p *BaseProvider) IsDeferred() bool       { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	c          *Container
	eager      []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to c.
func NewProviderRegistry(c *Container) *ProviderRegistry {
	return &ProviderRegistry{
		c:          c,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	if r.registered[provider] {
		return
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		r.interceptDeferred(provider)
		return
	}

	provider.Register(r.c)
	r.eager = append(r.eager, provider)

	// If already booted, boot this provider immediately
	if r.booted {
		provider.Boot(r.c)
	}
}

// interceptDeferred installs a transient trampoline binding for each
// deferred key. The first resolution registers the provider for real (which
// overwrites the trampoline, last-write-wins) and then resolves the key
// again as a fresh top-level call against the real binding.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	loaded := false
	for _, key := range provider.Provides() {
		k := key // capture
		r.c.RegisterFactory(k, func(res *Resolver) (any, error) {
			if !loaded {
				loaded = true
				provider.Register(res.Container().root())
				if r.booted {
					provider.Boot(res.Container().root())
				}
			}
			return res.Container().Resolve(k)
		}, Transient)
	}
}

// Boot calls Boot() on all eager providers.
// Must be called after ALL providers have been registered.
func (r *ProviderRegistry) Boot() {
	if r.booted {
		return
	}
	r.booted = true
	for _, provider := range r.eager {
		provider.Boot(r.c)
	}
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }
