package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/walletmux/component"
	"github.com/kbukum/walletmux/config"
	"github.com/kbukum/walletmux/logger"
)

// mockComponent implements component.Component for testing.
type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	log      *[]string
	mu       sync.Mutex
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(ctx context.Context) error {
	m.record("start " + m.name)
	return m.startErr
}

func (m *mockComponent) Stop(ctx context.Context) error {
	m.record("stop " + m.name)
	return m.stopErr
}

func (m *mockComponent) Health(ctx context.Context) component.Health {
	return m.health
}

func (m *mockComponent) Describe() component.Description {
	return component.Description{Name: m.name, Type: "wallet", Details: "http://node"}
}

func (m *mockComponent) record(s string) {
	if m.log == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.log = append(*m.log, s)
}

func newTestApp(t *testing.T, out *bytes.Buffer) *App {
	t.Helper()
	svc := &config.ServiceConfig{Name: "walletmux-test", Version: "1.2.3"}
	svc.ApplyDefaults()
	return NewApp(svc,
		WithLogger(logger.Nop()),
		WithGracefulTimeout(time.Second),
		WithSummaryOutput(out),
	)
}

func healthy(name string) component.Health {
	return component.Health{Name: name, Status: component.StatusHealthy}
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, &bytes.Buffer{})
	if app.Name != "walletmux-test" || app.Version != "1.2.3" {
		t.Errorf("unexpected identity %s %s", app.Name, app.Version)
	}
	if app.Components == nil || app.Logger == nil || app.Summary == nil {
		t.Fatal("expected registry, logger and summary")
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected 1s graceful timeout, got %s", app.gracefulTimeout)
	}
}

func TestRunTask_Lifecycle(t *testing.T) {
	var out bytes.Buffer
	var order []string
	app := newTestApp(t, &out)

	for _, name := range []string{"hub", "wallet:a", "bridge"} {
		if err := app.RegisterComponent(&mockComponent{name: name, health: healthy(name), log: &order}); err != nil {
			t.Fatal(err)
		}
	}
	app.OnStart(func(context.Context) error { order = append(order, "onStart"); return nil })
	app.OnReady(func(context.Context) error { order = append(order, "onReady"); return nil })
	app.OnStop(func(context.Context) error { order = append(order, "onStop"); return nil })
	app.Summary.Track("active wallet", "Wallet A")

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	want := []string{
		"start hub", "start wallet:a", "start bridge",
		"onStart", "onReady", "task", "onStop",
		"stop bridge", "stop wallet:a", "stop hub",
	}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("unexpected order:\n got %v\nwant %v", order, want)
	}

	summary := out.String()
	for _, s := range []string{"walletmux-test 1.2.3", "wallet:a [wallet]: http://node", "active wallet: Wallet A"} {
		if !strings.Contains(summary, s) {
			t.Errorf("expected summary to contain %q:\n%s", s, summary)
		}
	}
}

func TestRunTask_TaskErrorWins(t *testing.T) {
	app := newTestApp(t, &bytes.Buffer{})
	stopErr := errors.New("stop failed")
	_ = app.RegisterComponent(&mockComponent{name: "c", stopErr: stopErr, health: healthy("c")})

	taskErr := errors.New("task failed")
	err := app.RunTask(context.Background(), func(context.Context) error { return taskErr })
	if !errors.Is(err, taskErr) {
		t.Errorf("expected task error, got %v", err)
	}

	app2 := newTestApp(t, &bytes.Buffer{})
	_ = app2.RegisterComponent(&mockComponent{name: "c", stopErr: stopErr, health: healthy("c")})
	err = app2.RunTask(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, stopErr) {
		t.Errorf("expected stop error, got %v", err)
	}
}

func TestRun_StartFailureUnwinds(t *testing.T) {
	var order []string
	app := newTestApp(t, &bytes.Buffer{})
	_ = app.RegisterComponent(&mockComponent{name: "first", health: healthy("first"), log: &order})
	_ = app.RegisterComponent(&mockComponent{name: "second", startErr: errors.New("boom"), log: &order})

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected start error, got %v", err)
	}
	if order[len(order)-1] != "stop first" {
		t.Errorf("expected started component to be stopped, got %v", order)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	app := newTestApp(t, &bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error { cancel(); return nil })

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t, &bytes.Buffer{})
	_ = app.RegisterComponent(&mockComponent{name: "ok", health: healthy("ok")})
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("expected ready, got %v", err)
	}
	_ = app.RegisterComponent(&mockComponent{name: "node", health: component.Health{
		Name: "node", Status: component.StatusDegraded, Message: "waiting for first poll",
	}})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "node=degraded(waiting for first poll)") {
		t.Errorf("unexpected ready check error: %v", err)
	}
}

func TestHooksStopOnError(t *testing.T) {
	app := newTestApp(t, &bytes.Buffer{})
	ran := false
	app.OnStart(
		func(context.Context) error { return errors.New("nope") },
		func(context.Context) error { ran = true; return nil },
	)
	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "hook 0 failed") {
		t.Errorf("expected hook error, got %v", err)
	}
	if ran {
		t.Error("expected later hooks to be skipped")
	}
}

func TestSummary_NoComponents(t *testing.T) {
	var out bytes.Buffer
	s := NewSummary("walletmux", "")
	s.Write(context.Background(), &out, component.NewRegistry())
	if !strings.Contains(out.String(), "walletmux dev") || !strings.Contains(out.String(), "no components registered") {
		t.Errorf("unexpected summary:\n%s", out.String())
	}
}
