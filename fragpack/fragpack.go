// Package fragpack tracks which byte ranges of a not-yet-complete
// transfer have been received, as a sorted set of non-overlapping
// intervals. It is grounded on the original source's
// fragpack.c/fragpack.h (FragItem/FragPack, frag_pack_add/del/get/gap/
// contain), reworked from its incremental bookkeeping into a plain
// sorted-merge model that produces the same externally observable
// behavior.
package fragpack

import (
	"encoding/binary"
	"io"
	"sync"
)

// Item is one contiguous received range [Offset, Offset+Length).
type Item struct {
	Offset int64
	Length int64
}

func (it Item) end() int64 { return it.Offset + it.Length }

// Pack is the sorted, non-overlapping interval set for a single
// transfer. The zero value is ready to use.
type Pack struct {
	mu       sync.Mutex
	length   int64 // total expected length, 0 if unknown
	items    []Item
	rcvlen   int64
	complete bool
}

// New returns a Pack for a transfer of the given total length (0 if
// not yet known).
func New(length int64) *Pack {
	return &Pack{length: length}
}

// SetLength sets (or updates) the total expected length.
func (p *Pack) SetLength(length int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.length = length
	p.recomputeComplete()
}

// Length returns the total expected length, or 0 if unknown.
func (p *Pack) Length() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.length
}

// Complete reports whether the received ranges cover [0, Length)
// exactly, as a single item.
func (p *Pack) Complete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.complete
}

func (p *Pack) recomputeComplete() {
	p.complete = p.length > 0 && len(p.items) == 1 &&
		p.items[0].Offset == 0 && p.items[0].Length == p.length
}

// RcvLen returns the total bytes received so far and, via fragnum, the
// current number of disjoint items.
func (p *Pack) RcvLen() (rcvlen int64, fragnum int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rcvlen, len(p.items)
}

// CurLen returns offset+length of the last (highest-offset) item, i.e.
// the high-water mark of bytes seen so far.
func (p *Pack) CurLen() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.items) == 0 {
		return 0
	}
	last := p.items[len(p.items)-1]
	return last.end()
}

// Zero clears all received ranges and counters, keeping Length.
func (p *Pack) Zero() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = nil
	p.rcvlen = 0
	p.complete = false
}

// Add records [pos, pos+length) as received, merging it with any
// overlapping or adjacent existing items. It returns false without
// modifying the pack if the transfer is already Complete, the range is
// empty, or the range is already fully covered by a single existing
// item; it returns true whenever new coverage is recorded.
func (p *Pack) Add(pos, length int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.complete {
		return false
	}
	if p.length > 0 {
		if pos > p.length {
			pos = p.length
		}
		if pos+length > p.length {
			length = p.length - pos
		}
	}
	if length <= 0 {
		return false
	}

	lo, hi := pos, pos+length

	// Fully contained in a single existing item: nothing new received.
	for _, it := range p.items {
		if it.Offset <= lo && it.end() >= hi {
			return false
		}
	}

	// Find the insertion window: all items overlapping or touching
	// [lo, hi] get absorbed into the new item.
	start := 0
	for start < len(p.items) && p.items[start].end() < lo {
		start++
	}
	end := start
	for end < len(p.items) && p.items[end].Offset <= hi {
		end++
	}

	for _, it := range p.items[start:end] {
		if it.Offset < lo {
			lo = it.Offset
		}
		if it.end() > hi {
			hi = it.end()
		}
	}

	merged := Item{Offset: lo, Length: hi - lo}
	p.items = append(p.items[:start:start], append([]Item{merged}, p.items[end:]...)...)

	p.recomputeRcvLen()
	p.recomputeComplete()
	return true
}

func (p *Pack) recomputeRcvLen() {
	var sum int64
	for _, it := range p.items {
		sum += it.Length
	}
	p.rcvlen = sum
}

// Del removes [pos, pos+length) from the received set, splitting or
// shrinking items as needed.
func (p *Pack) Del(pos, length int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.length > 0 {
		if pos > p.length {
			pos = p.length
		}
		if pos+length > p.length {
			length = p.length - pos
		}
	}
	if length <= 0 {
		return
	}
	lo, hi := pos, pos+length

	var out []Item
	for _, it := range p.items {
		switch {
		case it.end() <= lo || it.Offset >= hi:
			out = append(out, it)
		case it.Offset >= lo && it.end() <= hi:
			// fully removed
		case it.Offset < lo && it.end() > hi:
			out = append(out, Item{Offset: it.Offset, Length: lo - it.Offset})
			out = append(out, Item{Offset: hi, Length: it.end() - hi})
		case it.Offset < lo:
			out = append(out, Item{Offset: it.Offset, Length: lo - it.Offset})
		default: // it.end() > hi
			out = append(out, Item{Offset: hi, Length: it.end() - hi})
		}
	}
	p.items = out
	p.recomputeRcvLen()
	p.recomputeComplete()
}

// Get returns the item covering pos, or the next item after pos if
// pos falls in a gap. ok reports whether pos itself is covered.
func (p *Pack) Get(pos int64) (item Item, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, it := range p.items {
		if pos >= it.Offset && pos < it.end() {
			return it, true
		}
		if it.Offset > pos {
			return it, false
		}
	}
	return Item{}, false
}

// Gap returns the first unreceived range at or after pos. ok is false
// only if Length is known and [pos, Length) is already received; when
// Length is unknown, the gap after the last item is returned with
// Length -1.
func (p *Pack) Gap(pos int64) (gap Item, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	offset := pos
	for _, it := range p.items {
		if it.end() <= pos {
			continue
		}
		if it.Offset <= offset {
			offset = it.end()
			continue
		}
		return Item{Offset: offset, Length: it.Offset - offset}, true
	}

	if p.length > 0 {
		if offset >= p.length {
			return Item{}, false
		}
		return Item{Offset: offset, Length: p.length - offset}, true
	}
	return Item{Offset: offset, Length: -1}, true
}

// ContainResult classifies how a queried range relates to the
// received set, matching the original's frag_pack_contain return
// codes.
type ContainResult int

const (
	// ContainNone: the queried range is entirely unreceived.
	ContainNone ContainResult = iota
	// ContainRightPartial: only the tail of the queried range has
	// been received.
	ContainRightPartial
	// ContainLeftPartial: only the head of the queried range has
	// been received.
	ContainLeftPartial
	// ContainFull: the entire queried range has been received.
	ContainFull
)

// Contain reports how much of [pos, pos+length) is covered by
// received data, along with the covered sub-range (data) and the
// first following gap.
func (p *Pack) Contain(pos, length int64) (result ContainResult, data Item, gap Item) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.complete {
		return ContainFull, Item{Offset: pos, Length: p.length - pos}, Item{Offset: p.length, Length: 0}
	}

	hi := pos + length
	if length < 0 {
		if p.length > 0 {
			hi = p.length
		} else {
			hi = pos
		}
	}

	for i, it := range p.items {
		if it.end() <= pos {
			continue
		}
		if it.Offset > pos {
			// queried range starts in a gap
			gapLen := it.Offset - pos
			if hi >= it.Offset {
				return ContainRightPartial, Item{Offset: it.Offset, Length: hi - it.Offset}, Item{Offset: pos, Length: gapLen}
			}
			return ContainNone, Item{Offset: pos, Length: 0}, Item{Offset: pos, Length: gapLen}
		}

		// it.Offset <= pos < it.end(): pos is covered.
		nextGapOffset := it.end()
		nextGapLen := p.length - it.end()
		if i+1 < len(p.items) {
			nextGapLen = p.items[i+1].Offset - it.end()
		} else if p.length <= 0 {
			nextGapLen = -1
		}
		g := Item{Offset: nextGapOffset, Length: nextGapLen}

		if hi > it.end() {
			return ContainLeftPartial, Item{Offset: pos, Length: it.end() - pos}, g
		}
		return ContainFull, Item{Offset: pos, Length: length}, g
	}

	gapLen := int64(-1)
	if p.length > 0 {
		gapLen = p.length - pos
	}
	return ContainNone, Item{Offset: pos, Length: 0}, Item{Offset: pos, Length: gapLen}
}

const itemSize = 16 // int64 offset + int64 length, little-endian

// WriteTo serializes the pack's header (length, item byte size) and item list
// as little-endian fixed-width records, matching frag_pack_write's
// on-disk shape (the original writes host-endian; little-endian is
// used here for a portable format, per the layering note in this
// module's design notes).
func (p *Pack) WriteTo(w io.Writer) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var hdr [12]byte
	binary.LittleEndian.PutUint64(hdr[0:8], uint64(p.length))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(p.items)*itemSize))
	if _, err := w.Write(hdr[:]); err != nil {
		return 0, err
	}

	buf := make([]byte, len(p.items)*itemSize)
	for i, it := range p.items {
		binary.LittleEndian.PutUint64(buf[i*itemSize:], uint64(it.Offset))
		binary.LittleEndian.PutUint64(buf[i*itemSize+8:], uint64(it.Length))
	}
	n, err := w.Write(buf)
	return int64(len(hdr)) + int64(n), err
}

// ReadFrom replaces the pack's contents with the header and item list
// decoded from r, written previously by WriteTo.
func (p *Pack) ReadFrom(r io.Reader) (int64, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, err
	}
	length := int64(binary.LittleEndian.Uint64(hdr[0:8]))
	byteLen := binary.LittleEndian.Uint32(hdr[8:12])

	buf := make([]byte, byteLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.length = length
	p.items = p.items[:0]
	p.rcvlen = 0
	num := int(byteLen) / itemSize
	for i := 0; i < num; i++ {
		off := int64(binary.LittleEndian.Uint64(buf[i*itemSize:]))
		ln := int64(binary.LittleEndian.Uint64(buf[i*itemSize+8:]))
		p.items = append(p.items, Item{Offset: off, Length: ln})
		p.rcvlen += ln
	}
	p.recomputeComplete()

	return int64(len(hdr)) + int64(byteLen), nil
}
