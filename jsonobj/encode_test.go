package jsonobj

import (
	"testing"

	"github.com/adifgo/adif/bytesutil"
)

func TestEncodeEscapesSpecialCharactersInKeysAndValues(t *testing.T) {
	o := New(SepStandard, CommentNone, false)
	raw := `C:\temp\"quote"`
	o.AddString("path", []byte(raw), false)
	out, err := o.Encode()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"path":"` + string(bytesEscapeForTest(raw)) + `"}`
	if string(out) != want {
		t.Fatalf("encode = %s, want %s", out, want)
	}
}

func bytesEscapeForTest(s string) []byte {
	return bytesutil.JSONEscape([]byte(s))
}

func TestEncodeRoundTripsNestedObjectsAndArrays(t *testing.T) {
	input := `{"a":"1","b":{"c":["x","y"]}}`
	o, _, err := Decode(SepStandard, CommentNone, false, []byte(input), false, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, err := o.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != input {
		t.Fatalf("round trip = %s, want %s", out, input)
	}
}

func TestEncodeUsesConfSeparatorsForConfSyntax(t *testing.T) {
	o := New(SepConf, CommentNone, false)
	o.AddString("a", []byte("1"), false)
	o.AddString("b", []byte("2"), false)
	out, err := o.Encode()
	if err != nil {
		t.Fatal(err)
	}
	// Encode always wraps keys/values in JSON-style quotes regardless of
	// syntax; only the separators vary.
	want := `{"a"="1";"b"="2"}`
	if string(out) != want {
		t.Fatalf("encode = %s, want %s", out, want)
	}
}

func TestIterWalksEveryItemAndSiblingValue(t *testing.T) {
	o := New(SepStandard, CommentNone, true)
	o.AddString("tag", []byte("a"), false)
	o.AddString("tag", []byte("b"), false)
	o.AddString("name", []byte("x"), false)

	var got []string
	for i := 0; ; i++ {
		var any bool
		for j := 0; ; j++ {
			key, val, ok := o.Iter(i, j)
			if !ok {
				break
			}
			any = true
			got = append(got, key+"="+string(val.Str))
		}
		if !any {
			break
		}
	}
	want := []string{"tag=a", "tag=b", "name=x"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
