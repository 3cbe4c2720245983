// Package container is the application's dependency-injection runtime:
// registration table, lifetime caches, scoping, constructor auto-wiring,
// and the mock-fallback subsystem used while real implementations are
// still being written.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register constructors and bindings (directly or via providers)
//  3. Verify: container.VerifyContainer(c, criticalKeys)
//  4. Resolve at runtime; create scopes per unit of work
//
// # Bindings
//
//	// Class — locator names a registered constructor, auto-wired on demand
//	c.RegisterConstructor("report.CSVWriter", csvWriterCtor)
//	c.Register("report-writer", "report.CSVWriter", container.Scoped)
//
//	// Instance — the exact object is returned on every resolution
//	c.RegisterInstance("config", cfg)
//
//	// Factory — invoked at creation time with a Resolver
//	c.RegisterFactory("clock", func(r *container.Resolver) (any, error) {
//	    return NewSystemClock(), nil
//	}, container.Transient)
//
//	// Explicit mock request — serve the built-in stand-in
//	c.UseMock("mailer")
//
// # Lifetimes
//
// Singleton (the default in manifests) creates once per root container;
// Transient creates on every resolution; Scoped creates once per scope:
//
//	s1 := c.CreateScope()
//	s2 := c.CreateScope()
//	// a Scoped key resolved twice in s1 → same instance
//	// the same key resolved in s2     → a different instance
//	// a Singleton key from c, s1, s2  → one shared instance
//
// # Resolving
//
//	raw, err := c.Resolve("report-writer")
//
//	// Generic (preferred — no type assertion at the call site)
//	w, err := container.ResolveAs[*CSVWriter](c, "report-writer")
//
// Resolution failures are typed: ErrNotRegistered, ErrCircularDependency
// (with the full cycle path), ErrInstantiation (wrapping the cause). The
// resolver is a strict fail-fast boundary; only VerifyContainer downgrades
// failures into a report.
//
// # Auto-wiring
//
// A Constructor carries an explicit dependency manifest instead of runtime
// signature inspection. Parameters the caller does not supply are resolved
// by key; supplied arguments always win:
//
//	w, err := c.Build(csvWriterCtor, container.Args{"logger": testLogger})
//
// # Mock fallback
//
// Resolving a key with no real binding falls back to the MockRegistry when
// it holds a stand-in, logging loudly. c.IsUsingMock(key) distinguishes a
// healthy resolution from a placeholder one.
package container
