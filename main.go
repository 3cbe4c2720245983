package main

import (
	"fmt"
	"time"

	"github.com/km-arc/go-ioc/app"
	"github.com/km-arc/go-ioc/container"
)

// Demo wiring: a console logger (Singleton), a per-operation request
// context (Scoped), a system clock (Transient), and a mailer that only
// exists as a mock stand-in.

// ── demo services ─────────────────────────────────────────────────────────────

type Logger interface {
	Info(msg string)
}

type ConsoleLogger struct{}

func (l *ConsoleLogger) Info(msg string) { fmt.Println("[info]", msg) }

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type RequestContext struct {
	Logger  Logger
	Started time.Time
}

type Mailer interface {
	Send(to, body string) error
}

// MockMailer tags everything it does so fallback output is unmistakable.
type MockMailer struct{}

func (m *MockMailer) Send(to, body string) error {
	fmt.Printf("[MOCK] would send to %s: %s\n", to, body)
	return nil
}

// ── wiring ────────────────────────────────────────────────────────────────────

type DemoProvider struct{ container.BaseProvider }

func (p *DemoProvider) Register(c *container.Container) {
	c.RegisterConstructor("demo.ConsoleLogger", &container.Constructor{
		Build: func(container.Args) (any, error) { return &ConsoleLogger{}, nil },
	})
	c.RegisterConstructor("demo.RequestContext", &container.Constructor{
		Params: []container.Param{
			{Name: "logger"},
			{Name: "clock"},
		},
		Build: func(args container.Args) (any, error) {
			logger, _ := container.Arg[Logger](args, "logger")
			clock, _ := container.Arg[Clock](args, "clock")
			return &RequestContext{Logger: logger, Started: clock.Now()}, nil
		},
	})

	c.Register("logger", "demo.ConsoleLogger", container.Singleton)
	c.Register("request-context", "demo.RequestContext", container.Scoped)
	c.RegisterFactory("clock", func(*container.Resolver) (any, error) {
		return SystemClock{}, nil
	}, container.Transient)

	// No real mailer yet — the mock registry keeps the app runnable.
	c.Mocks().Provide("mailer", func() any { return &MockMailer{} })
}

func main() {
	application := app.New() // loads .env automatically
	application.RegisterProvider(&DemoProvider{})
	application.AddCritical("logger", "request-context", "clock", "mailer")
	application.Boot()

	logger := container.MustResolveAs[Logger](application.Container, "logger")
	logger.Info("container booted")

	// Scoped isolation: one context per logical operation.
	s1 := application.CreateScope()
	s2 := application.CreateScope()
	ctxA := container.MustResolveAs[*RequestContext](s1, "request-context")
	ctxB := container.MustResolveAs[*RequestContext](s1, "request-context")
	ctxC := container.MustResolveAs[*RequestContext](s2, "request-context")
	fmt.Printf("same scope reuses:   %v\n", ctxA == ctxB) // true
	fmt.Printf("sibling is distinct: %v\n", ctxA != ctxC) // true

	// Mock fallback: mailer has no real binding.
	mailer := container.MustResolveAs[Mailer](application.Container, "mailer")
	_ = mailer.Send("ops@example.com", "nightly report")
	fmt.Printf("mailer is a mock:    %v\n", application.IsUsingMock("mailer"))

	// Verify + (optionally) serve the diagnostics endpoint.
	if err := application.Run(); err != nil {
		logger.Info("diag server stopped: " + err.Error())
	}
}
