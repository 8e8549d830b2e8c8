package coreerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindMatchesWrapped(t *testing.T) {
	wrapped := fmt.Errorf("capture device gone: %w", ErrScreenCaptureLost)
	if !errors.Is(Kind(wrapped), ErrScreenCaptureLost) {
		t.Fatalf("expected Kind to resolve to ErrScreenCaptureLost, got %v", Kind(wrapped))
	}
}

func TestKindDefaultsToNetworkTransient(t *testing.T) {
	unknown := errors.New("some random failure")
	if !errors.Is(Kind(unknown), ErrNetworkTransient) {
		t.Fatalf("expected unrecognized error to classify as NetworkTransient, got %v", Kind(unknown))
	}
}

func TestKindNil(t *testing.T) {
	if Kind(nil) != nil {
		t.Fatalf("expected nil in, nil out")
	}
}
