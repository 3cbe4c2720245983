package container

// ── Constructor manifests ─────────────────────────────────────────────────────

// Args carries named constructor arguments. An optional parameter that could
// not be resolved is simply absent, letting the constructor apply its own
// default.
type Args map[string]any

// Arg retrieves a typed argument from an Args bag.
//
//	clock, ok := container.Arg[Clock](args, "clock")
func Arg[T any](args Args, name string) (T, bool) {
	var zero T
	raw, ok := args[name]
	if !ok {
		return zero, false
	}
	typed, ok := raw.(T)
	return typed, ok
}

// Param declares one constructor dependency. The manifest is static and
// written by hand (or generated) per implementation — there is no runtime
// signature inspection; what a constructor needs is spelled out once, where
// the compiler can see it.
type Param struct {
	// Name is the constructor parameter's name, used as the Args key.
	Name string

	// Key is the service resolved when the caller does not supply Name.
	// Empty means "derive from Name", i.e. ServiceKey(Name).
	Key ServiceKey

	// Optional marks a parameter with a default. If it is neither supplied
	// nor registered (and has no mock), it is left out of Args instead of
	// failing the build.
	Optional bool
}

// Constructor pairs a dependency manifest with a build function. It is the
// unit a Class-kind binding's locator points at:
//
//	c.RegisterConstructor("report.CSVWriter", &container.Constructor{
//	    Params: []container.Param{
//	        {Name: "logger"},
//	        {Name: "clock", Key: "system-clock"},
//	        {Name: "delimiter", Optional: true},
//	    },
//	    Build: func(args container.Args) (any, error) {
//	        logger, _ := container.Arg[Logger](args, "logger")
//	        ...
//	    },
//	})
type Constructor struct {
	Params []Param
	Build  func(args Args) (any, error)
}

// ── Auto-wiring ───────────────────────────────────────────────────────────────

// Build constructs an instance through ctor, auto-filling every parameter
// the caller left out of supplied by resolving its service key. Supplied
// arguments always win — a supplied parameter is never resolved, even if a
// binding for it exists. Pass supplied as nil to auto-wire everything, or
// skip the container entirely and call ctor.Build yourself with explicit
// test doubles.
func (c *Container) Build(ctor *Constructor, supplied Args) (any, error) {
	return c.build(ctor, supplied, nil)
}

func (c *Container) build(ctor *Constructor, supplied Args, path []ServiceKey) (any, error) {
	args := make(Args, len(ctor.Params))
	for _, p := range ctor.Params {
		if v, ok := supplied[p.Name]; ok {
			args[p.Name] = v
			continue
		}

		key := p.Key
		if key == "" {
			key = ServiceKey(p.Name)
		}

		v, err := c.resolve(key, path)
		if err == nil {
			args[p.Name] = v
			continue
		}
		// Only a missing registration of the parameter's OWN key is
		// skippable for optional params; a cycle or a broken nested
		// constructor is a real fault either way. The check is on the
		// top-level error deliberately: a bare NotRegisteredError can only
		// describe this key, whereas a registered-but-broken dependency
		// arrives wrapped in an InstantiationError and must propagate.
		if _, missing := err.(NotRegisteredError); missing && p.Optional {
			continue
		}
		return nil, UnresolvableDependencyError{Param: p.Name, Key: key, Cause: err}
	}
	return ctor.Build(args)
}
