package container

// Lifetime governs how long a constructed instance is reused.
type Lifetime int

const (
	// Singleton — one instance per root container, shared by every scope.
	Singleton Lifetime = iota

	// Transient — a fresh instance on every resolution; never cached.
	Transient

	// Scoped — one instance per scope. Two resolutions inside the same
	// scope return the same instance; sibling scopes each get their own.
	Scoped
)

// String returns the lowercase name used in manifests and log fields.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	default:
		return "unknown"
	}
}

// ParseLifetime converts a manifest string into a Lifetime.
// The empty string defaults to Singleton, matching Register's default.
func ParseLifetime(s string) (Lifetime, bool) {
	switch s {
	case "", "singleton":
		return Singleton, true
	case "transient":
		return Transient, true
	case "scoped":
		return Scoped, true
	default:
		return Singleton, false
	}
}
