package app_test

import (
	"testing"

	"github.com/km-arc/go-ioc/app"
	"github.com/km-arc/go-ioc/container"
)

func newTestApp(t *testing.T) *app.Application {
	t.Helper()
	t.Setenv("APP_ENV", "testing")
	t.Setenv("IOC_MANIFEST", "testdata/services.yaml")
	return app.New("testdata/empty.env")
}

func TestNew_BindsConfigAndLog(t *testing.T) {
	a := newTestApp(t)

	if !a.IsRegistered("config") || !a.IsRegistered("log") {
		t.Error("the kernel should pre-bind config and log")
	}
	if !a.IsTesting() {
		t.Errorf("environment: got %q, want testing", a.Environment())
	}
}

func TestLoadManifest_AppliesWiringAndCriticalKeys(t *testing.T) {
	a := newTestApp(t)
	a.RegisterConstructor("demo.ConsoleLogger", &container.Constructor{
		Build: func(container.Args) (any, error) { return "console-logger", nil },
	})
	a.Mocks().Provide("mailer", func() any { return "MOCK-MAILER" })

	if err := a.LoadManifest(); err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}

	if !a.IsRegistered("logger") {
		t.Error("manifest entries should be registered")
	}
	if len(a.CriticalKeys()) != 2 {
		t.Errorf("critical keys: got %v", a.CriticalKeys())
	}
	if !a.Verify() {
		t.Error("demo wiring should verify cleanly")
	}
}

func TestLoadManifest_MissingFileIsError(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	t.Setenv("IOC_MANIFEST", "testdata/nope.yaml")
	a := app.New("testdata/empty.env")

	if err := a.LoadManifest(); err == nil {
		t.Error("a missing manifest should be a hard error")
	}
}

func TestVerify_ReportsBrokenWiringWithoutPanicking(t *testing.T) {
	a := newTestApp(t)
	a.AddCritical("not-wired")

	if a.Verify() {
		t.Error("Verify should fail for an unregistered critical key")
	}
}

func TestRegisterProvider_BootOrder(t *testing.T) {
	a := newTestApp(t)

	var bootSawBinding bool
	a.RegisterProvider(&probeProvider{onBoot: func(c *container.Container) {
		bootSawBinding = c.IsRegistered("probe-svc")
	}})
	a.Boot()

	if !bootSawBinding {
		t.Error("Boot() should run after all providers registered their bindings")
	}
}

type probeProvider struct {
	container.BaseProvider
	onBoot func(c *container.Container)
}

func (p *probeProvider) Register(c *container.Container) {
	c.RegisterInstance("probe-svc", struct{}{})
}

func (p *probeProvider) Boot(c *container.Container) { p.onBoot(c) }
