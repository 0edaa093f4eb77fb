package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

// TestCacheKey_Validation tests that only the empty key is rejected.
func TestCacheKey_Validation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", ErrInvalidKey},
		{"valid key", "textures/brick.png", nil},
		{"long key", strings.Repeat("x", 4096), nil},
		{"contains newline", "key\nwith\nnewlines", nil},
		{"contains carriage return", "key\rwith\rreturns", nil},
		{"whitespace only", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateKey(%q) = %v, want nil", tt.key, err)
				}
			} else {
				if err != tt.wantErr {
					t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
				}
			}
		})
	}
}

// TestHooksInterface_CompileCheck verifies the Hooks interface contract.
func TestHooksInterface_CompileCheck(t *testing.T) {
	var _ Hooks = noopHooks{}
	var _ Hooks = (*recordingHooks)(nil)
}

// TestSentinelErrors verifies sentinel errors are distinct and have expected messages.
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrNilFactory", ErrNilFactory, "cache: factory is nil"},
		{"ErrNilResource", ErrNilResource, "cache: factory returned nil resource"},
		{"ErrInvalidKey", ErrInvalidKey, "cache: key is empty"},
	}

	seen := make(map[error]string)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatalf("%s is nil", tt.name)
			}
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("%s.Error() = %q, want %q", tt.name, got, tt.wantMsg)
			}
		})
		if other, dup := seen[tt.err]; dup {
			t.Errorf("%s and %s should be distinct", tt.name, other)
		}
		seen[tt.err] = tt.name
	}
}

func TestStats_HitRatio(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  float64
	}{
		{"no lookups", Stats{}, 0},
		{"all hits", Stats{Hits: 4}, 1},
		{"all misses", Stats{Misses: 3}, 0},
		{"mixed", Stats{Hits: 3, Misses: 1}, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.HitRatio(); got != tt.want {
				t.Errorf("HitRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNoopHooks_DoNotPanic(t *testing.T) {
	ctx := context.Background()
	h := noopHooks{}
	h.OnHit(ctx, "k")
	h.OnMiss(ctx, "k")
	h.OnStale(ctx, "k")
	h.OnConstruct(ctx, "k", time.Millisecond, nil)
}
