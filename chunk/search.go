package chunk

import (
	"github.com/adifgo/adif/bytesutil"
	"github.com/adifgo/adif/patsearch"
)

// MatchResult locates a pattern match both by absolute logical offset
// and by the (entry_index, intra_offset) pair the original reports,
// i.e. which segment the match starts in and how far into it.
type MatchResult struct {
	Offset      int64
	EntryIndex  int
	IntraOffset int64
}

func (c *Chunk) rawRemaining(pos int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	rest := c.rawSize - pos
	if rest < 0 {
		return 0
	}
	return rest
}

// materializeAll reads up to limit raw bytes (or everything remaining,
// if limit < 0) starting at pos into a single contiguous buffer.
func (c *Chunk) materializeAll(pos, limit int64) ([]byte, error) {
	if pos < 0 {
		pos = 0
	}
	rest := c.rawRemaining(pos)
	if limit >= 0 && limit < rest {
		rest = limit
	}
	buf := make([]byte, rest)
	c.mu.Lock()
	n, err := c.readRaw(buf, pos)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (c *Chunk) resultAt(offset int64) MatchResult {
	idx, intra, ok := c.locateRaw(offset)
	if !ok {
		return MatchResult{Offset: offset, EntryIndex: -1}
	}
	return MatchResult{Offset: offset, EntryIndex: idx, IntraOffset: intra}
}

// SunFindBytes searches for pattern starting at logical pos using the
// Sunday quick-search algorithm, mirroring chunk_sun_find_bytes.
func (c *Chunk) SunFindBytes(pos int64, pattern []byte) (MatchResult, bool, error) {
	return c.findBytes(pos, patsearch.NewSunVec(pattern, false))
}

// BmFindBytes searches for pattern starting at logical pos using
// Boyer-Moore, mirroring chunk_bm_find_bytes.
func (c *Chunk) BmFindBytes(pos int64, pattern []byte) (MatchResult, bool, error) {
	return c.findBytes(pos, patsearch.NewBMVec(pattern))
}

// KmpFindBytes searches for pattern starting at logical pos using
// Knuth-Morris-Pratt, mirroring chunk_kmp_find_bytes.
func (c *Chunk) KmpFindBytes(pos int64, pattern []byte) (MatchResult, bool, error) {
	return c.findBytes(pos, patsearch.NewKMPVec(pattern))
}

func (c *Chunk) findBytes(pos int64, searcher patsearch.Searcher) (MatchResult, bool, error) {
	buf, err := c.materializeAll(pos, -1)
	if err != nil {
		return MatchResult{}, false, err
	}
	idx := searcher.Find(buf)
	if idx < 0 {
		return MatchResult{}, false, nil
	}
	return c.resultAt(pos + int64(idx)), true, nil
}

// SkipOver advances from pos while the byte there is a member of
// charset, for at most limit bytes (limit < 0 means to the end of the
// Chunk), crossing segment boundaries as needed.
func (c *Chunk) SkipOver(pos, limit int64, charset []byte) (int64, error) {
	buf, err := c.materializeAll(pos, limit)
	if err != nil {
		return pos, err
	}
	end := bytesutil.SkipOver(buf, 0, -1, charset)
	return pos + int64(end), nil
}

// SkipTo advances from pos until the byte there is a member of
// charset, for at most limit bytes, crossing segment boundaries.
func (c *Chunk) SkipTo(pos, limit int64, charset []byte) (int64, error) {
	buf, err := c.materializeAll(pos, limit)
	if err != nil {
		return pos, err
	}
	end := bytesutil.SkipTo(buf, 0, -1, charset)
	return pos + int64(end), nil
}

// SkipEscTo is SkipTo, but a backslash escapes the byte that follows
// it so an escaped stop character doesn't terminate the scan.
func (c *Chunk) SkipEscTo(pos, limit int64, charset []byte) (int64, error) {
	buf, err := c.materializeAll(pos, limit)
	if err != nil {
		return pos, err
	}
	end := bytesutil.SkipEscTo(buf, 0, -1, charset)
	return pos + int64(end), nil
}

// SkipQuoteTo is SkipTo, but treats a '...' or "..." run as opaque so
// stop characters inside a quoted region never terminate the scan.
func (c *Chunk) SkipQuoteTo(pos, limit int64, charset []byte) (int64, error) {
	buf, err := c.materializeAll(pos, limit)
	if err != nil {
		return pos, err
	}
	end := bytesutil.SkipQuoteTo(buf, 0, -1, charset)
	return pos + int64(end), nil
}

// RSkipOver scans backward from pos (inclusive) while the byte there
// is a member of charset, for at most limit bytes.
func (c *Chunk) RSkipOver(pos, limit int64, charset []byte) (int64, error) {
	buf, start, err := c.materializeBackward(pos, limit)
	if err != nil {
		return pos, err
	}
	rel := bytesutil.RSkipOver(buf, int(pos-start), -1, charset)
	return start + int64(rel), nil
}

// RSkipTo scans backward from pos (inclusive) until the byte there is
// a member of charset, for at most limit bytes.
func (c *Chunk) RSkipTo(pos, limit int64, charset []byte) (int64, error) {
	buf, start, err := c.materializeBackward(pos, limit)
	if err != nil {
		return pos, err
	}
	rel := bytesutil.RSkipTo(buf, int(pos-start), -1, charset)
	return start + int64(rel), nil
}

func (c *Chunk) materializeBackward(pos, limit int64) (buf []byte, start int64, err error) {
	start = 0
	if limit >= 0 {
		s := pos - limit + 1
		if s > 0 {
			start = s
		}
	}
	n := pos - start + 1
	if n <= 0 {
		return nil, start, nil
	}
	tmp := make([]byte, n)
	read, err := c.Read(tmp, start)
	if err != nil {
		return nil, start, err
	}
	return tmp[:read], start, nil
}

// SkipToPeer treats the byte at pos as an opening bracket and scans
// forward tracking nesting depth, returning the logical offset of the
// matching closing byte, or -1 if the brackets never balance.
func (c *Chunk) SkipToPeer(pos int64, open, close byte) (int64, error) {
	buf, err := c.materializeAll(pos, -1)
	if err != nil {
		return -1, err
	}
	rel := bytesutil.SkipToPeer(buf, 0, open, close)
	if rel < 0 {
		return -1, nil
	}
	return pos + int64(rel), nil
}
