// Package app bootstraps the DI runtime: configuration, logging, the root
// container, the service manifest, and the startup verifier.
package app

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-ioc/config"
	"github.com/km-arc/go-ioc/container"
	"github.com/km-arc/go-ioc/diag"
)

// Application is the top-level kernel. It embeds the root Container so
// wiring code can call app.Register(), app.Resolve(), app.CreateScope()
// directly, and carries the provider registry and startup state.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
	Config    *config.Config
	Log       *logrus.Logger

	critical []container.ServiceKey
}

// New creates and bootstraps the kernel. The container starts empty apart
// from the "config" and "log" bindings; wiring comes from providers and
// from LoadManifest.
func New(envFiles ...string) *Application {
	cfg := config.Load(envFiles...)

	log := logrus.New()
	if cfg.App.Debug {
		log.SetLevel(logrus.DebugLevel)
	}
	if cfg.App.Env == "testing" {
		log.SetOutput(io.Discard)
	}

	c := container.New()
	c.SetLogger(log)
	c.RegisterInstance("config", cfg)
	c.RegisterInstance("log", log)

	return &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		Config:    cfg,
		Log:       log,
	}
}

// RegisterProvider adds a ServiceProvider to the application.
func (a *Application) RegisterProvider(p container.ServiceProvider) {
	a.Providers.Register(p)
}

// LoadManifest reads the service manifest named by IOC_MANIFEST, registers
// every entry, and remembers the critical-key probe list for Verify.
func (a *Application) LoadManifest() error {
	m, err := config.LoadManifest(a.Config.App.Manifest)
	if err != nil {
		return err
	}
	m.Apply(a.Container)
	a.critical = m.CriticalKeys()
	a.Log.WithFields(logrus.Fields{
		"manifest": a.Config.App.Manifest,
		"services": len(m.Services),
		"critical": len(m.Critical),
	}).Info("service manifest applied")
	return nil
}

// CriticalKeys returns the verifier probe list (from the manifest, plus any
// added via AddCritical).
func (a *Application) CriticalKeys() []container.ServiceKey { return a.critical }

// AddCritical appends keys to the verifier probe list.
func (a *Application) AddCritical(keys ...container.ServiceKey) {
	a.critical = append(a.critical, keys...)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() {
	a.Providers.Boot()
}

// Verify probes every critical key, logging failures, and reports whether
// the container is healthy. It never panics — broken wiring shows up here
// as a clear startup report instead of deep inside a user workflow.
func (a *Application) Verify() bool {
	ok := container.VerifyContainer(a.Container, a.critical)
	if ok {
		a.Log.WithField("keys", len(a.critical)).Info("container verified")
	} else {
		a.Log.Error("container verification failed; see per-key errors above")
	}
	return ok
}

// Run boots the application (if needed), verifies the container, and — when
// diagnostics are enabled — blocks serving the diag endpoint. The verifier
// outcome is reported, not fatal; callers who want to fail hard on a broken
// container should check Verify themselves.
func (a *Application) Run() error {
	if !a.Providers.Booted() {
		a.Boot()
	}
	a.Verify()

	if !a.Config.Diag.Enabled {
		return nil
	}
	server := diag.New(a.Container, a.critical, a.Log)
	return server.ListenAndServe(a.Config.Diag.Addr)
}

// Environment returns the APP_ENV value.
func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config.App.Debug }
