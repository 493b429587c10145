package transport

import (
	"bytes"
	"testing"
)

func TestFrameAppendAndPtr(t *testing.T) {
	f := NewFrame()
	defer f.Release()

	f.Append([]byte("hello"))
	f.Append([]byte(" world"))

	if !bytes.Equal(f.Ptr(), []byte("hello world")) {
		t.Fatalf("got %q", f.Ptr())
	}
	if f.Len() != 11 {
		t.Fatalf("got len %d", f.Len())
	}
}

func TestFramePutFirst(t *testing.T) {
	f := NewFrame()
	defer f.Release()

	f.Append([]byte("world"))
	f.PutFirst([]byte("hello "))

	if !bytes.Equal(f.Ptr(), []byte("hello world")) {
		t.Fatalf("got %q", f.Ptr())
	}
}

func TestFrameGetNLastNFirst(t *testing.T) {
	f := NewFrame()
	defer f.Release()
	f.Append([]byte("abcdef"))

	if !bytes.Equal(f.GetNLast(3), []byte("def")) {
		t.Fatalf("got %q", f.GetNLast(3))
	}
	if !bytes.Equal(f.GetNFirst(3), []byte("abc")) {
		t.Fatalf("got %q", f.GetNFirst(3))
	}
	if !bytes.Equal(f.GetNLast(100), []byte("abcdef")) {
		t.Fatalf("clamped GetNLast got %q", f.GetNLast(100))
	}
}

func TestFrameDelFirst(t *testing.T) {
	f := NewFrame()
	defer f.Release()
	f.Append([]byte("abcdef"))
	f.DelFirst(2)

	if !bytes.Equal(f.Ptr(), []byte("cdef")) {
		t.Fatalf("got %q", f.Ptr())
	}
}

func TestFrameDelFirstAll(t *testing.T) {
	f := NewFrame()
	defer f.Release()
	f.Append([]byte("abc"))
	f.DelFirst(100)

	if !f.Empty() {
		t.Fatalf("expected empty frame")
	}
}

func TestFrameEmpty(t *testing.T) {
	f := NewFrame()
	defer f.Release()
	if !f.Empty() {
		t.Fatalf("expected new frame empty")
	}
	f.Append([]byte("x"))
	if f.Empty() {
		t.Fatalf("expected non-empty frame")
	}
}
