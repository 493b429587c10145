package errs

import (
	"errors"
	"testing"
)

func TestNewError(t *testing.T) {
	e := New(NotFound, "key missing")
	if e.Kind != NotFound {
		t.Fatalf("expected NotFound, got %v", e.Kind)
	}
	if e.Error() != "not_found: key missing" {
		t.Fatalf("unexpected message: %s", e.Error())
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	e := Wrap(Io, "write failed", cause)

	if !errors.Is(e, cause) {
		t.Fatalf("expected errors.Is to find wrapped cause")
	}
	var target *Error
	if !errors.As(e, &target) {
		t.Fatalf("expected errors.As to recover *Error")
	}
	if target.Kind != Io {
		t.Fatalf("expected Io, got %v", target.Kind)
	}
}

func TestIsHelper(t *testing.T) {
	e := New(WouldBlock, "pack not ready")
	if !Is(e, WouldBlock) {
		t.Fatalf("expected Is to match WouldBlock")
	}
	if Is(e, Io) {
		t.Fatalf("expected Is to reject mismatched kind")
	}
	if Is(errors.New("plain"), Io) {
		t.Fatalf("expected Is to reject non-*Error")
	}
}

func TestKindString(t *testing.T) {
	if InvalidArgument.String() != "invalid_argument" {
		t.Fatalf("unexpected kind string: %s", InvalidArgument.String())
	}
}
