package backend

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"resumelens/internal/config"
	apperrors "resumelens/internal/errors"
)

func breakerTestConfig(enabled bool) *config.CircuitBreakerConfig {
	return &config.CircuitBreakerConfig{
		Enabled:          enabled,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
}

func TestNewCircuitBreakerDisabled(t *testing.T) {
	cb := NewCircuitBreaker("analyze", breakerTestConfig(false), apperrors.NewLogger(slog.LevelError))

	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}
}

func TestNilCircuitBreakerPassesThrough(t *testing.T) {
	var cb *CircuitBreaker

	result, err := cb.Execute(func() ([]byte, error) {
		return []byte("ok"), nil
	})
	if err != nil {
		t.Fatalf("Execute on nil breaker returned error: %v", err)
	}
	if string(result) != "ok" {
		t.Errorf("Expected passthrough result 'ok', got %q", result)
	}

	wantErr := errors.New("backend down")
	_, err = cb.Execute(func() ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected function error to pass through, got %v", err)
	}

	if !cb.IsHealthy() {
		t.Error("Nil circuit breaker should report healthy")
	}

	stats := cb.GetStats()
	if enabled, ok := stats["enabled"].(bool); !ok || enabled {
		t.Errorf("Nil circuit breaker stats should report enabled=false, got %v", stats["enabled"])
	}
}

func TestCircuitBreakerStats(t *testing.T) {
	cb := NewCircuitBreaker("analyze", breakerTestConfig(true), apperrors.NewLogger(slog.LevelError))
	if cb == nil {
		t.Fatal("Circuit breaker should not be nil when enabled")
	}

	stats := cb.GetStats()

	name, ok := stats["name"].(string)
	if !ok {
		t.Fatal("Circuit breaker name not found")
	}
	if name != "Backend-analyze" {
		t.Errorf("Expected circuit breaker name 'Backend-analyze', got '%s'", name)
	}

	state, ok := stats["state"].(string)
	if !ok {
		t.Fatal("Circuit breaker state not found")
	}
	if state != "closed" {
		t.Errorf("Expected initial state 'closed', got '%s'", state)
	}

	if enabled, ok := stats["enabled"].(bool); !ok || !enabled {
		t.Error("Circuit breaker should report enabled=true")
	}

	if !cb.IsHealthy() {
		t.Error("Circuit breaker should be healthy initially")
	}
}

func TestIndependentCircuitBreakers(t *testing.T) {
	// Failures against one backend must not trip another client's breaker
	primaryCB := NewCircuitBreaker("api", breakerTestConfig(true), apperrors.NewLogger(slog.LevelError))
	secondaryCB := NewCircuitBreaker("api", breakerTestConfig(true), apperrors.NewLogger(slog.LevelError))

	if primaryCB == secondaryCB {
		t.Error("Circuit breakers should be different instances")
	}

	for range 3 {
		_, _ = primaryCB.Execute(func() ([]byte, error) {
			return nil, errors.New("backend unavailable")
		})
	}

	if primaryCB.IsHealthy() {
		t.Error("Circuit breaker should be open after repeated failures")
	}
	if !secondaryCB.IsHealthy() {
		t.Error("Second circuit breaker should be unaffected")
	}
}
