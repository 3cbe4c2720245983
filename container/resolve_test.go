package container_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/km-arc/go-ioc/container"
)

// ── Lifetimes ─────────────────────────────────────────────────────────────────

func TestSingleton_IdenticalAcrossRootAndScopes(t *testing.T) {
	c := container.New()
	c.RegisterFactory("svc", transientWidget(), container.Singleton)

	fromRoot, _ := c.Resolve("svc")
	s1 := c.CreateScope()
	s2 := c.CreateScope()
	fromS1, _ := s1.Resolve("svc")
	fromS2, _ := s2.Resolve("svc")

	if fromRoot != fromS1 || fromRoot != fromS2 {
		t.Error("a Singleton must be one shared instance per root container")
	}
}

func TestTransient_DistinctOnEveryResolution(t *testing.T) {
	c := container.New()
	c.RegisterFactory("svc", transientWidget(), container.Transient)

	a, _ := c.Resolve("svc")
	b, _ := c.Resolve("svc")
	if a == b {
		t.Error("Transient resolutions must return distinct instances")
	}
}

func TestScoped_ReusedWithinScope_IsolatedAcrossScopes(t *testing.T) {
	c := container.New()
	c.RegisterFactory("svc", transientWidget(), container.Scoped)

	s1 := c.CreateScope()
	s2 := c.CreateScope()

	a1, _ := s1.Resolve("svc")
	a2, _ := s1.Resolve("svc")
	b, _ := s2.Resolve("svc")

	if a1 != a2 {
		t.Error("resolving a Scoped key twice in one scope must reuse the instance")
	}
	if a1 == b {
		t.Error("sibling scopes must not share Scoped instances")
	}
}

func TestScoped_NestedScopesHaveOwnCaches(t *testing.T) {
	c := container.New()
	c.RegisterFactory("scoped-svc", transientWidget(), container.Scoped)
	c.RegisterFactory("singleton-svc", transientWidget(), container.Singleton)

	parent := c.CreateScope()
	child := parent.CreateScope()

	fromParent, _ := parent.Resolve("scoped-svc")
	fromChild, _ := child.Resolve("scoped-svc")
	if fromParent == fromChild {
		t.Error("a nested scope must own an independent Scoped cache")
	}

	s1, _ := parent.Resolve("singleton-svc")
	s2, _ := child.Resolve("singleton-svc")
	if s1 != s2 {
		t.Error("nested scopes must share the root singleton cache")
	}
}

// ── Failure modes ─────────────────────────────────────────────────────────────

func TestResolve_UnregisteredKeyIsHardFailure(t *testing.T) {
	c := container.New()

	_, err := c.Resolve("nope")
	if err == nil {
		t.Fatal("resolving an unregistered key must fail, not return nil")
	}
	if !errors.Is(err, container.ErrNotRegistered) {
		t.Errorf("want ErrNotRegistered, got %v", err)
	}
	var nr container.NotRegisteredError
	if !errors.As(err, &nr) || nr.Key != "nope" {
		t.Errorf("error should carry the key, got %#v", err)
	}
}

func TestResolve_FactoryErrorWrappedAsInstantiation(t *testing.T) {
	c := container.New()
	boom := errors.New("boom")
	c.RegisterFactory("svc", func(*container.Resolver) (any, error) { return nil, boom }, container.Singleton)

	_, err := c.Resolve("svc")
	if !errors.Is(err, container.ErrInstantiation) {
		t.Fatalf("want ErrInstantiation, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Error("InstantiationError should wrap the underlying cause")
	}
}

func TestResolve_FactoryPanicRecovered(t *testing.T) {
	c := container.New()
	c.RegisterFactory("svc", func(*container.Resolver) (any, error) { panic("kaboom") }, container.Transient)

	_, err := c.Resolve("svc")
	if !errors.Is(err, container.ErrInstantiation) {
		t.Fatalf("a panicking factory should surface as ErrInstantiation, got %v", err)
	}
}

func TestResolve_UnknownLocatorFailsAtResolutionTime(t *testing.T) {
	c := container.New()
	c.Register("svc", "no.SuchConstructor", container.Singleton)

	// Registration succeeded; the failure belongs to first resolution.
	_, err := c.Resolve("svc")
	if !errors.Is(err, container.ErrInstantiation) {
		t.Errorf("want ErrInstantiation for unknown locator, got %v", err)
	}
}

// ── Cycle detection ───────────────────────────────────────────────────────────

func TestResolve_DirectCycleDetected(t *testing.T) {
	c := container.New()
	c.RegisterFactory("x", func(r *container.Resolver) (any, error) { return r.Resolve("y") }, container.Transient)
	c.RegisterFactory("y", func(r *container.Resolver) (any, error) { return r.Resolve("x") }, container.Transient)

	_, err := c.Resolve("x")
	if !errors.Is(err, container.ErrCircularDependency) {
		t.Fatalf("want ErrCircularDependency, got %v", err)
	}

	var cd container.CircularDependencyError
	if !errors.As(err, &cd) {
		t.Fatalf("want CircularDependencyError in the chain, got %v", err)
	}
	want := []container.ServiceKey{"x", "y", "x"}
	if len(cd.Path) != len(want) {
		t.Fatalf("cycle path %v, want %v", cd.Path, want)
	}
	for i := range want {
		if cd.Path[i] != want[i] {
			t.Fatalf("cycle path %v, want %v", cd.Path, want)
		}
	}
}

func TestResolve_SelfCycleDetected(t *testing.T) {
	c := container.New()
	c.RegisterFactory("x", func(r *container.Resolver) (any, error) { return r.Resolve("x") }, container.Singleton)

	_, err := c.Resolve("x")
	if !errors.Is(err, container.ErrCircularDependency) {
		t.Fatalf("want ErrCircularDependency, got %v", err)
	}
}

func TestResolve_CycleThroughConstructorManifest(t *testing.T) {
	c := container.New()
	c.RegisterConstructor("test.X", &container.Constructor{
		Params: []container.Param{{Name: "y"}},
		Build:  func(container.Args) (any, error) { return &widget{}, nil },
	})
	c.RegisterConstructor("test.Y", &container.Constructor{
		Params: []container.Param{{Name: "x"}},
		Build:  func(container.Args) (any, error) { return &widget{}, nil },
	})
	c.Register("x", "test.X", container.Singleton)
	c.Register("y", "test.Y", container.Singleton)

	_, err := c.Resolve("x")
	if !errors.Is(err, container.ErrCircularDependency) {
		t.Fatalf("want ErrCircularDependency through auto-wiring, got %v", err)
	}
}

func TestResolve_PathIsPerCall_NotSharedAcrossResolutions(t *testing.T) {
	// A diamond (a needs b and c, both need d) is not a cycle; d appearing
	// twice across sibling branches must not trip the detector.
	c := container.New()
	c.RegisterFactory("d", transientWidget(), container.Transient)
	c.RegisterFactory("b", func(r *container.Resolver) (any, error) { return r.Resolve("d") }, container.Transient)
	c.RegisterFactory("c", func(r *container.Resolver) (any, error) { return r.Resolve("d") }, container.Transient)
	c.RegisterFactory("a", func(r *container.Resolver) (any, error) {
		if _, err := r.Resolve("b"); err != nil {
			return nil, err
		}
		return r.Resolve("c")
	}, container.Transient)

	if _, err := c.Resolve("a"); err != nil {
		t.Errorf("diamond dependency should resolve cleanly, got %v", err)
	}
}

// ── Concurrency ───────────────────────────────────────────────────────────────

func TestSingleton_ConcurrentResolutionConstructsOnce(t *testing.T) {
	c := container.New()
	var constructions int32
	c.RegisterFactory("svc", func(*container.Resolver) (any, error) {
		atomic.AddInt32(&constructions, 1)
		time.Sleep(5 * time.Millisecond) // widen the race window
		return &widget{}, nil
	}, container.Singleton)

	const goroutines = 16
	results := make([]any, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inst, err := c.Resolve("svc")
			if err != nil {
				t.Errorf("Resolve: %v", err)
			}
			results[i] = inst
		}(i)
	}
	wg.Wait()

	if n := atomic.LoadInt32(&constructions); n != 1 {
		t.Errorf("singleton constructed %d times, want 1", n)
	}
	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatal("all racing resolutions must observe the same instance")
		}
	}
}

func TestScoped_ConcurrentResolutionWithinScopeConstructsOnce(t *testing.T) {
	c := container.New()
	var constructions int32
	c.RegisterFactory("svc", func(*container.Resolver) (any, error) {
		atomic.AddInt32(&constructions, 1)
		time.Sleep(2 * time.Millisecond)
		return &widget{}, nil
	}, container.Scoped)

	scope := c.CreateScope()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := scope.Resolve("svc"); err != nil {
				t.Errorf("Resolve: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&constructions); n != 1 {
		t.Errorf("scoped instance constructed %d times in one scope, want 1", n)
	}
}

func TestResolve_ConcurrentUnrelatedResolutionsDoNotTripCycleDetector(t *testing.T) {
	c := container.New()
	c.RegisterFactory("slow", func(r *container.Resolver) (any, error) {
		time.Sleep(2 * time.Millisecond)
		return r.Resolve("leaf")
	}, container.Transient)
	c.RegisterFactory("leaf", transientWidget(), container.Transient)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Resolve("slow"); err != nil {
				t.Errorf("unrelated concurrent resolutions interfered: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestSingleton_RecoversAfterFailedConstruction(t *testing.T) {
	// A failing build must not wedge the key: once the underlying fault is
	// gone, the same key constructs normally and caches as usual.
	c := container.New()
	attempts := 0
	c.RegisterFactory("flaky", func(*container.Resolver) (any, error) {
		attempts++
		if attempts < 3 {
			return nil, fmt.Errorf("attempt %d failed", attempts)
		}
		return &widget{id: attempts}, nil
	}, container.Singleton)

	for i := 0; i < 2; i++ {
		if _, err := c.Resolve("flaky"); err == nil {
			t.Fatal("expected the failing attempts to surface errors")
		}
	}

	a, err := c.Resolve("flaky")
	if err != nil {
		t.Fatalf("Resolve after recovery: %v", err)
	}
	b, _ := c.Resolve("flaky")
	if a != b {
		t.Error("the recovered singleton should be cached like any other")
	}
	if attempts != 3 {
		t.Errorf("constructed %d times, want 3 (two failures, one success)", attempts)
	}
}

// ── Nested singleton construction ─────────────────────────────────────────────

func TestSingleton_MayDependOnOtherUncreatedSingletons(t *testing.T) {
	// outer's construction resolves inner while outer's creation lock is
	// held; distinct keys must not deadlock.
	c := container.New()
	c.RegisterFactory("inner", transientWidget(), container.Singleton)
	c.RegisterFactory("outer", func(r *container.Resolver) (any, error) {
		inner, err := r.Resolve("inner")
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("outer(%p)", inner), nil
	}, container.Singleton)

	done := make(chan error, 1)
	go func() {
		_, err := c.Resolve("outer")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("nested singleton construction deadlocked")
	}
}
