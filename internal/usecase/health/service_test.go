package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	err   error
	calls int
}

func (m *mockPinger) Ping(context.Context) error {
	m.calls++
	return m.err
}

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{})

	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("expected status %q, got %q", Healthy, report.Status)
	}
	if report.Checks["index"] != CheckOK {
		t.Errorf("expected index check ok, got %q", report.Checks["index"])
	}
	if report.Checks["cache"] != CheckOK {
		t.Errorf("expected cache check ok, got %q", report.Checks["cache"])
	}
	if report.Version == "" {
		t.Error("expected version to be set")
	}
}

func TestCheck_IndexDown_Unhealthy(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("connection refused")}, &mockPinger{})

	report := svc.Check(context.Background())

	if report.Status != Unhealthy {
		t.Errorf("expected status %q, got %q", Unhealthy, report.Status)
	}
	if report.Checks["index"] != CheckError {
		t.Errorf("expected index check error, got %q", report.Checks["index"])
	}
}

func TestCheck_CacheDown_Degraded(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{err: errors.New("timeout")})

	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("expected status %q, got %q", Degraded, report.Status)
	}
	if report.Checks["cache"] != CheckError {
		t.Errorf("expected cache check error, got %q", report.Checks["cache"])
	}
}

func TestCheck_BothDown_Unhealthy(t *testing.T) {
	svc := New(
		&mockPinger{err: errors.New("index down")},
		&mockPinger{err: errors.New("cache down")},
	)

	report := svc.Check(context.Background())

	if report.Status != Unhealthy {
		t.Errorf("expected status %q, got %q", Unhealthy, report.Status)
	}
}

func TestCheck_NilCache_Skipped(t *testing.T) {
	svc := New(&mockPinger{}, nil)

	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("expected status %q, got %q", Healthy, report.Status)
	}
	if _, ok := report.Checks["cache"]; ok {
		t.Error("expected no cache check without a cache")
	}
}
