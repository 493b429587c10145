package wumanber

import (
	"sort"
	"testing"

	"github.com/adifgo/adif/filecache"
	"github.com/adifgo/adif/mpat/actrie"

	"github.com/adifgo/adif/config"
)

func TestScanBytesFindsAllOccurrences(t *testing.T) {
	s := New(false)
	s.Add([]byte("he"), "he")
	s.Add([]byte("she"), "she")
	s.Add([]byte("his"), "his")
	s.Add([]byte("hers"), "hers")

	var got []string
	s.ScanBytes([]byte("ushers"), func(pos int, pattern []byte, payload any) (int, bool) {
		got = append(got, payload.(string))
		return 0, false
	})

	sort.Strings(got)
	want := []string{"he", "hers", "she"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestWuManberMatchSetEqualsAhoCorasick(t *testing.T) {
	patterns := []string{"he", "she", "his", "hers", "ers"}
	texts := []string{"ushers", "he said she saw his hers", "nomatch", "hehehehe", ""}

	for _, text := range texts {
		tr := actrie.New(false)
		for _, p := range patterns {
			tr.Add([]byte(p), p)
		}
		acMatches := tr.MatchAll([]byte(text))
		acSet := map[[2]int]bool{}
		for _, m := range acMatches {
			acSet[[2]int{m.Pos, m.Len}] = true
		}

		wm := New(false)
		for _, p := range patterns {
			wm.Add([]byte(p), p)
		}
		wmSet := map[[2]int]bool{}
		wm.ScanBytes([]byte(text), func(pos int, pattern []byte, payload any) (int, bool) {
			wmSet[[2]int{pos, len(pattern)}] = true
			return 0, false
		})

		if len(acSet) != len(wmSet) {
			t.Fatalf("text %q: ac found %d matches, wm found %d", text, len(acSet), len(wmSet))
		}
		for k := range acSet {
			if !wmSet[k] {
				t.Fatalf("text %q: wm missed match %v found by ac", text, k)
			}
		}
	}
}

func TestIgnoreCaseMatching(t *testing.T) {
	s := New(true)
	s.Add([]byte("Hello"), 1)

	found := false
	s.ScanBytes([]byte("say hELLo there"), func(pos int, pattern []byte, payload any) (int, bool) {
		found = true
		return 0, false
	})
	if !found {
		t.Fatalf("expected case-insensitive match")
	}
}

func TestReplace(t *testing.T) {
	s := New(false)
	s.Add([]byte("foo"), "foo")
	s.Add([]byte("bar"), "bar")

	out := s.Replace([]byte("a foo and a bar walk in"), func(pos int, pattern []byte, payload any) ([]byte, bool) {
		return []byte("[" + payload.(string) + "]"), true
	})
	want := "a [foo] and a [bar] walk in"
	if string(out) != want {
		t.Fatalf("Replace = %q, want %q", out, want)
	}
}

func TestScanCacheMatchesScanBytes(t *testing.T) {
	text := "the shepherd herds his hers"
	med := filecache.NewMemoryMedium([]byte(text))
	opts := config.DefaultOptions()
	opts.PackSize = 4
	opts.PackNum = 4
	c := filecache.New(med, opts)

	s := New(false)
	s.Add([]byte("he"), "he")
	s.Add([]byte("hers"), "hers")
	s.Add([]byte("his"), "his")

	var cacheHits [][2]int
	if err := s.ScanCache(c, 0, func(pos int, pattern []byte, payload any) (int, bool) {
		cacheHits = append(cacheHits, [2]int{pos, len(pattern)})
		return 0, false
	}); err != nil {
		t.Fatalf("ScanCache: %v", err)
	}

	var byteHits [][2]int
	s.ScanBytes([]byte(text), func(pos int, pattern []byte, payload any) (int, bool) {
		byteHits = append(byteHits, [2]int{pos, len(pattern)})
		return 0, false
	})

	if len(cacheHits) != len(byteHits) {
		t.Fatalf("cache found %d hits, bytes found %d: %v vs %v", len(cacheHits), len(byteHits), cacheHits, byteHits)
	}
	for i := range byteHits {
		if cacheHits[i] != byteHits[i] {
			t.Fatalf("hit %d: cache %v, bytes %v", i, cacheHits[i], byteHits[i])
		}
	}
}
