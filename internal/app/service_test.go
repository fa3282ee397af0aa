package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/luxdecor-shop/internal/config"
)

type fakeService struct {
	name     string
	startErr error
	mu       sync.Mutex
	stopped  bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *fakeService) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	healthy := &fakeService{name: "http"}
	broken := &fakeService{name: "worker", startErr: errors.New("redis unreachable")}
	runner := NewRunner(healthy, broken)

	var order []string
	runner.OnStop(func() { order = append(order, "cache") })
	runner.OnStop(func() { order = append(order, "container") })

	err := runner.Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "redis unreachable" {
		t.Fatalf("want start error, got %v", err)
	}
	if !healthy.isStopped() || !broken.isStopped() {
		t.Fatalf("all services should be stopped")
	}
	if len(order) != 2 || order[0] != "container" || order[1] != "cache" {
		t.Fatalf("cleanup should run in reverse order, got %v", order)
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	svc := &fakeService{name: "http"}
	runner := NewRunner(svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
	if !svc.isStopped() {
		t.Fatalf("service should be stopped")
	}
}

func TestBuildRunnerRejectsUnknownMode(t *testing.T) {
	if _, err := BuildRunner(&config.Config{}, "batch"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("nil config should fail")
	}
}

func TestNormalizeOptionsDefaults(t *testing.T) {
	opts := normalizeOptions(Options{})
	if opts.Mode != ModeAll || opts.ShutdownTimeout != 10*time.Second || opts.Logger == nil {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{"": ModeAll, " API ": ModeAPI, "worker": ModeWorker, "all": ModeAll}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) want %s got %s err=%v", raw, want, got, err)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
	if !servesHTTP(ModeAll) || servesHTTP(ModeWorker) || !runsWorker(ModeWorker) || runsWorker(ModeAPI) {
		t.Fatalf("mode helpers mismatch")
	}
}

func TestNewHTTPServiceTimeouts(t *testing.T) {
	svc := NewHTTPService(config.ServerConfig{Host: "127.0.0.1", Port: "9090", WriteTimeoutSeconds: 5}, nil)
	if svc.Addr() != "127.0.0.1:9090" {
		t.Fatalf("addr want 127.0.0.1:9090 got %s", svc.Addr())
	}
	if svc.server.WriteTimeout != 5*time.Second {
		t.Fatalf("write timeout want 5s got %s", svc.server.WriteTimeout)
	}
	if svc.server.ReadTimeout != defaultReadTimeout || svc.server.IdleTimeout != defaultIdleTimeout {
		t.Fatalf("unset timeouts should use defaults")
	}
}
