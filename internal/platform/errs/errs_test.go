package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	cause := errors.New("connection reset")
	err := &AppError{Kind: ProviderFailed, Message: "provider call failed", Cause: cause}

	if got, want := err.Error(), "provider call failed: connection reset"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}

	bare := &AppError{Kind: Unavailable, Message: "not configured"}
	if got := bare.Error(); got != "not configured" {
		t.Errorf("Error() = %q, want %q", got, "not configured")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: Unknown},
		{name: "plain error", err: errors.New("boom"), want: Unknown},
		{name: "direct", err: &AppError{Kind: InvalidJSON}, want: InvalidJSON},
		{name: "wrapped", err: fmt.Errorf("relay: %w", &AppError{Kind: ProviderBlocked}), want: ProviderBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}
