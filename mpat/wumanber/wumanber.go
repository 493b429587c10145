// Package wumanber implements the Wu-Manber multi-pattern scanner: a
// block-hash shift table lets the scanner skip ahead through the text
// by more than one byte per step, falling back to a short candidate
// list only where a block hash collides with a known pattern suffix.
// Grounded on the original source's mpatwm.c/mpatwm.h.
package wumanber

import (
	"bytes"
	"io"
	"sync"

	"github.com/adifgo/adif/filecache"
)

// entry is one added pattern plus its caller payload.
type entry struct {
	pattern []byte
	payload any
}

// OnMatchFunc is invoked for every candidate pattern confirmed at pos.
// It returns the number of bytes to advance past the match (0 means
// "advance by one byte as usual") and whether the scan should stop.
type OnMatchFunc func(pos int, pattern []byte, payload any) (skip int, stop bool)

// Scanner is a Wu-Manber multi-pattern matcher. The zero value is
// usable: add patterns with Add, then scan; Precalc runs lazily on
// first use and after any further Add.
type Scanner struct {
	mu         sync.Mutex
	ignoreCase bool

	patterns []*entry

	block    int // B: block length, 2 or 3
	minLen   int // m: shortest added pattern
	maxShift int
	shift    map[uint32]int
	prefix   map[uint32][]*entry
	built    bool
}

// New returns an empty Scanner. When ignoreCase is true, both pattern
// registration and scanning are case-insensitive (ASCII only).
func New(ignoreCase bool) *Scanner {
	return &Scanner{ignoreCase: ignoreCase}
}

// Add registers a pattern with an arbitrary caller payload.
func (s *Scanner) Add(pattern []byte, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = append(s.patterns, &entry{pattern: append([]byte(nil), pattern...), payload: payload})
	s.built = false
}

func (s *Scanner) normalize(b byte) byte {
	if s.ignoreCase && b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func (s *Scanner) blockHash(b []byte) uint32 {
	var h uint32
	for _, c := range b {
		h = h*131 + uint32(s.normalize(c))
	}
	return h
}

func (s *Scanner) byteEqual(a, b byte) bool {
	return s.normalize(a) == s.normalize(b)
}

func (s *Scanner) bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !s.byteEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Precalc (re)builds the shift and prefix tables from the currently
// registered patterns. Scan methods call it automatically when stale.
func (s *Scanner) Precalc() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.precalcLocked()
}

func (s *Scanner) precalcLocked() {
	if len(s.patterns) == 0 {
		s.minLen, s.block, s.maxShift = 0, 0, 0
		s.shift, s.prefix = nil, nil
		s.built = true
		return
	}

	minLen := len(s.patterns[0].pattern)
	for _, e := range s.patterns[1:] {
		if len(e.pattern) < minLen {
			minLen = len(e.pattern)
		}
	}

	block := 2
	if len(s.patterns) > 4096 {
		block = 3
	}
	if block > minLen {
		block = minLen
	}
	if block < 1 {
		block = 1
	}

	s.minLen = minLen
	s.block = block
	s.maxShift = minLen - block + 1
	s.shift = make(map[uint32]int)
	s.prefix = make(map[uint32][]*entry)

	for _, e := range s.patterns {
		for j := 0; j+block <= minLen; j++ {
			h := s.blockHash(e.pattern[j : j+block])
			d := minLen - block - j
			if cur, ok := s.shift[h]; !ok || d < cur {
				s.shift[h] = d
			}
		}
		suffixStart := minLen - block
		h := s.blockHash(e.pattern[suffixStart : suffixStart+block])
		s.prefix[h] = append(s.prefix[h], e)
	}
	s.built = true
}

func (s *Scanner) ensureBuilt() {
	s.mu.Lock()
	built := s.built
	s.mu.Unlock()
	if !built {
		s.Precalc()
	}
}

func (s *Scanner) shiftFor(h uint32) int {
	if d, ok := s.shift[h]; ok {
		return d
	}
	return s.maxShift
}

// ScanBytes scans data, reporting every confirmed pattern occurrence
// to onMatch in left-to-right order.
func (s *Scanner) ScanBytes(data []byte, onMatch OnMatchFunc) {
	s.ensureBuilt()
	if s.minLen == 0 {
		return
	}
	pos := 0
	for pos+s.minLen <= len(data) {
		blockStart := pos + s.minLen - s.block
		h := s.blockHash(data[blockStart : blockStart+s.block])
		if shift := s.shiftFor(h); shift > 0 {
			pos += shift
			continue
		}

		advanced := false
		for _, e := range s.prefix[h] {
			plen := len(e.pattern)
			if pos+plen > len(data) {
				continue
			}
			if !s.bytesEqual(data[pos:pos+plen], e.pattern) {
				continue
			}
			skip, stop := onMatch(pos, e.pattern, e.payload)
			if stop {
				return
			}
			if skip > 0 {
				pos += skip
				advanced = true
				break
			}
		}
		if !advanced {
			pos++
		}
	}
}

// ScanReader buffers r fully, then scans it like ScanBytes. Wu-Manber's
// shift table makes true incremental streaming awkward (a shift can
// jump past bytes not yet read); buffering the whole source is the
// simple, correct choice here.
func (s *Scanner) ScanReader(r io.Reader, onMatch OnMatchFunc) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.ScanBytes(data, onMatch)
	return nil
}

// ScanCache scans a filecache.Cache starting at start, pulling each
// byte through the cache's At (its random-access cursor), per the
// scanner's contract that SFC scans use at(pos) rather than pointer
// arithmetic.
func (s *Scanner) ScanCache(c *filecache.Cache, start int64, onMatch OnMatchFunc) error {
	s.ensureBuilt()
	if s.minLen == 0 {
		return nil
	}

	length := c.FileSize()
	pos := start
	window := make([]byte, s.minLen)

	for {
		if length >= 0 && pos+int64(s.minLen) > length {
			return nil
		}
		for i := 0; i < s.minLen; i++ {
			b, err := c.At(pos + int64(i))
			if err != nil {
				return err
			}
			window[i] = b
		}

		h := s.blockHash(window[s.minLen-s.block:])
		if shift := s.shiftFor(h); shift > 0 {
			pos += int64(shift)
			continue
		}

		advanced := false
		for _, e := range s.prefix[h] {
			plen := int64(len(e.pattern))
			if length >= 0 && pos+plen > length {
				continue
			}
			matched := true
			for k := int64(0); k < plen; k++ {
				var b byte
				if k < int64(s.minLen) {
					b = window[k]
				} else {
					bb, err := c.At(pos + k)
					if err != nil {
						matched = false
						break
					}
					b = bb
				}
				if !s.byteEqual(b, e.pattern[k]) {
					matched = false
					break
				}
			}
			if !matched {
				continue
			}
			skip, stop := onMatch(int(pos), e.pattern, e.payload)
			if stop {
				return nil
			}
			if skip > 0 {
				pos += int64(skip)
				advanced = true
				break
			}
		}
		if !advanced {
			pos++
		}
	}
}

// OnReplaceFunc decides the replacement bytes for a confirmed match,
// or declines (ok=false) and leaves the original bytes in place.
type OnReplaceFunc func(pos int, pattern []byte, payload any) (repl []byte, ok bool)

// Replace scans data and builds a new buffer with every match whose
// onReplace accepts swapped for its replacement, growing the output
// incrementally rather than pre-sizing it.
func (s *Scanner) Replace(data []byte, onReplace OnReplaceFunc) []byte {
	var out bytes.Buffer
	last := 0
	s.ScanBytes(data, func(pos int, pattern []byte, payload any) (int, bool) {
		if pos < last {
			return 0, false
		}
		repl, ok := onReplace(pos, pattern, payload)
		if !ok {
			return 0, false
		}
		out.Write(data[last:pos])
		out.Write(repl)
		last = pos + len(pattern)
		return len(pattern), false
	})
	out.Write(data[last:])
	return out.Bytes()
}
