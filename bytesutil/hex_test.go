package bytesutil

import (
	"bytes"
	"testing"
)

func TestHexUpper(t *testing.T) {
	cases := map[int]string{0: "0", 15: "F", 255: "FF", 4096: "1000"}
	for n, want := range cases {
		if got := HexUpper(n); got != want {
			t.Fatalf("HexUpper(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestParseHex(t *testing.T) {
	v, n, ok := ParseHex([]byte("1A2B\r\n"))
	if !ok || v != 0x1A2B || n != 4 {
		t.Fatalf("got v=%d n=%d ok=%v", v, n, ok)
	}
}

func TestParseHexNoDigits(t *testing.T) {
	_, _, ok := ParseHex([]byte("\r\n"))
	if ok {
		t.Fatalf("expected ok=false")
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 15, 16, 255, 65535} {
		hex := HexUpper(n)
		v, consumed, ok := ParseHex([]byte(hex))
		if !ok || consumed != len(hex) || v != n {
			t.Fatalf("round trip failed for %d: hex=%q v=%d consumed=%d", n, hex, v, consumed)
		}
	}
}

func TestBase64RoundTrip(t *testing.T) {
	src := []byte("hello world")
	enc := Base64Encode(src)
	dec, err := Base64Decode(enc)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !bytes.Equal(dec, src) {
		t.Fatalf("got %q, want %q", dec, src)
	}
}
