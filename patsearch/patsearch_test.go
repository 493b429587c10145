package patsearch

import "testing"

const haystack = "the quick brown fox jumps over the lazy dog, the dog barks"

func TestKMPVecFind(t *testing.T) {
	v := NewKMPVec([]byte("the dog"))
	if got := v.Find([]byte(haystack)); got != 45 {
		t.Fatalf("got %d, want 45", got)
	}
}

func TestKMPVecNoMatch(t *testing.T) {
	v := NewKMPVec([]byte("zzz"))
	if got := v.Find([]byte(haystack)); got != -1 {
		t.Fatalf("got %d, want -1", got)
	}
}

func TestKMPVecEmptyPattern(t *testing.T) {
	v := NewKMPVec(nil)
	if got := v.Find([]byte(haystack)); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestBMVecFind(t *testing.T) {
	v := NewBMVec([]byte("fox"))
	if got := v.Find([]byte(haystack)); got != 16 {
		t.Fatalf("got %d, want 16", got)
	}
}

func TestBMVecNoMatch(t *testing.T) {
	v := NewBMVec([]byte("cat"))
	if got := v.Find([]byte(haystack)); got != -1 {
		t.Fatalf("got %d, want -1", got)
	}
}

func TestSunVecFind(t *testing.T) {
	v := NewSunVec([]byte("jumps"), false)
	if got := v.Find([]byte(haystack)); got != 20 {
		t.Fatalf("got %d, want 20", got)
	}
}

func TestSunVecRFind(t *testing.T) {
	v := NewSunVec([]byte("the"), true)
	buf := []byte(haystack)
	got := v.RFind(buf, len(buf))
	want := 45
	if got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestBitVecFind(t *testing.T) {
	v := NewBitVec([]byte("lazy"))
	if got := v.Find([]byte(haystack)); got != 35 {
		t.Fatalf("got %d, want 35", got)
	}
}

func TestBitVecTooLong(t *testing.T) {
	pattern := make([]byte, 65)
	for i := range pattern {
		pattern[i] = 'a'
	}
	v := NewBitVec(pattern)
	if got := v.Find([]byte(haystack)); got != -1 {
		t.Fatalf("got %d, want -1", got)
	}
}

func TestRabinKarpFind(t *testing.T) {
	if got := RabinKarpFind([]byte(haystack), []byte("brown")); got != 10 {
		t.Fatalf("got %d, want 10", got)
	}
}

func TestRabinKarpNoMatch(t *testing.T) {
	if got := RabinKarpFind([]byte(haystack), []byte("giraffe")); got != -1 {
		t.Fatalf("got %d, want -1", got)
	}
}

func TestAllAlgorithmsAgree(t *testing.T) {
	patterns := []string{"the", "dog", "quick", "z", "the dog barks"}
	for _, p := range patterns {
		kmp := NewKMPVec([]byte(p)).Find([]byte(haystack))
		bm := NewBMVec([]byte(p)).Find([]byte(haystack))
		sun := NewSunVec([]byte(p), false).Find([]byte(haystack))
		bit := NewBitVec([]byte(p)).Find([]byte(haystack))
		rk := RabinKarpFind([]byte(haystack), []byte(p))
		if kmp != bm || bm != sun || sun != bit || bit != rk {
			t.Fatalf("pattern %q: kmp=%d bm=%d sun=%d bit=%d rk=%d", p, kmp, bm, sun, bit, rk)
		}
	}
}
