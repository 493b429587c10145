package chunk

import (
	"sync"

	"github.com/adifgo/adif/bytesutil"
	"github.com/adifgo/adif/transport"
)

// terminalFramingLen is the length of the terminal "0\r\n\r\n" HTTP
// chunk-framing marker, emitted once Chunk.SetEnd has been called.
const terminalFramingLen = 5

// Chunk is the Chunked Content Buffer. The zero value is not usable;
// use New.
type Chunk struct {
	mu sync.Mutex

	segments []*segment

	rawSize  int64
	ended    bool
	seekPos  int64

	fileCount   int
	bufferCount int

	httpChunk bool

	notify   ProcessNotifyFunc
	notifyCb uint64
}

// ProcessNotifyFunc is invoked after the cursor advances, mirroring
// ProcessNotify; it receives the new offset and the step taken.
type ProcessNotifyFunc func(cbval uint64, offset, step int64) error

// New returns an empty Chunk.
func New() *Chunk {
	return &Chunk{}
}

// SetHTTPChunk toggles whether size/rest_size/startpos/read/etc.
// project through HTTP chunked-transfer framing.
func (c *Chunk) SetHTTPChunk(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpChunk = enabled
}

// SetEnd seals the chunk. Subsequent mutation is undefined, matching
// the original's contract.
func (c *Chunk) SetEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ended = true
}

// Ended reports whether SetEnd has been called.
func (c *Chunk) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

// Free releases every owned segment (OwnedBuffer free functions,
// owned file handles, callback end notifications).
func (c *Chunk) Free() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.segments {
		s.release()
	}
	c.segments = nil
}

// Num returns the number of segments.
func (c *Chunk) Num() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.segments)
}

// HasFile reports whether any segment is file-backed.
func (c *Chunk) HasFile() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fileCount > 0
}

// HasBuf reports whether any segment is buffer-backed (CharArray,
// Buffer or OwnedBuffer).
func (c *Chunk) HasBuf() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bufferCount > 0
}

// IsFile reports whether the Chunk contains exactly one File*
// segment, returning its metadata.
func (c *Chunk) IsFile() (fsize int64, attr transport.FileAttr, path string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fileCount != 1 || len(c.segments) != 1 {
		return 0, transport.FileAttr{}, "", false
	}
	s := c.segments[0]
	if s.file == nil {
		return 0, transport.FileAttr{}, "", false
	}
	return s.length, s.file.attr, s.file.path, true
}

func (c *Chunk) framingOverheadTotal() int64 {
	var total int64
	for _, s := range c.segments {
		total += s.framingOverhead()
	}
	if c.ended {
		total += terminalFramingLen
	}
	return total
}

// Size returns the logical size: raw payload bytes, or (if httpChunk
// was set via SetHTTPChunk) the HTTP-chunk-framed size.
func (c *Chunk) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpChunk {
		return c.rawSize + c.framingOverheadTotal()
	}
	return c.rawSize
}

// RestSize returns Size() minus the current seek position.
func (c *Chunk) RestSize() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	size := c.rawSize
	if c.httpChunk {
		size += c.framingOverheadTotal()
	}
	rest := size - c.seekPos
	if rest < 0 {
		return 0
	}
	return rest
}

// StartPos returns the logical start offset of the first segment. It
// always returns 0: the Chunk does not track bytes removed ahead of its
// first segment.
func (c *Chunk) StartPos() int64 {
	return 0
}

// Seek repositions the logical cursor, clamped to [0, rawSize].
func (c *Chunk) Seek(offset int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if offset < 0 {
		offset = 0
	}
	if offset > c.rawSize {
		offset = c.rawSize
	}
	c.seekPos = offset
	return c.seekPos
}

// SeekPos returns the current logical cursor.
func (c *Chunk) SeekPos() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekPos
}

// OnAdvance installs fn as the process-notify callback invoked after
// GoAhead steps the cursor, mirroring chunk_add_process_notify.
func (c *Chunk) OnAdvance(fn ProcessNotifyFunc, cbval uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = fn
	c.notifyCb = cbval
}

// GoAhead advances the logical cursor by step and invokes the
// installed ProcessNotifyFunc, if any, mirroring chunk_go_ahead.
func (c *Chunk) GoAhead(step int64) error {
	c.mu.Lock()
	newPos := c.seekPos + step
	if newPos < 0 {
		newPos = 0
	}
	if newPos > c.rawSize {
		newPos = c.rawSize
	}
	c.seekPos = newPos
	notify := c.notify
	cbval := c.notifyCb
	c.mu.Unlock()

	if notify != nil {
		return notify(cbval, newPos, step)
	}
	return nil
}

// Attr returns the kind and length of the segment at index.
func (c *Chunk) Attr(index int) (kind Kind, length int64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.segments) {
		return 0, 0, false
	}
	s := c.segments[index]
	return s.kind, s.length, true
}

// locate walks the segment list accumulating logical offsets until
// pos falls within a segment, returning its index and the intra-
// segment offset. httpChunk adds each prior segment's framing
// overhead to the running offset.
func (c *Chunk) locate(pos int64) (index int, intraOffset int64, ok bool) {
	var running int64
	for i, s := range c.segments {
		segStart := running
		if c.httpChunk {
			segStart += int64(len(s.sizeHex)) + 2 // HEX CRLF precedes payload
		}
		segEnd := segStart + s.length
		if pos >= segStart && pos < segEnd {
			return i, pos - segStart, true
		}
		running = segEnd
		if c.httpChunk {
			running += 2 // trailing CRLF
		}
	}
	return len(c.segments), 0, false
}

// At returns the index of the segment containing logical pos.
func (c *Chunk) At(pos int64) (index int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, _, ok := c.locate(pos)
	return i, ok
}

func (c *Chunk) addSegment(s *segment, prepend bool) {
	if s.kind == KindFile || s.kind == KindFilePtr || s.kind == KindFileDesc {
		c.fileCount++
	}
	if s.kind == KindCharArray || s.kind == KindBuffer || s.kind == KindOwnedBuffer {
		c.bufferCount++
	}
	if s.length > 0 {
		c.rawSize += s.length
	}
	if prepend {
		c.segments = append([]*segment{s}, c.segments...)
	} else {
		c.segments = append(c.segments, s)
	}
}

// AddBuffer appends p as a borrowed Buffer segment (p's lifetime must
// outlive the Chunk), or as an inline CharArray segment when p is
// small enough.
func (c *Chunk) AddBuffer(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addSegment(c.newDataSegment(p), false)
}

func (c *Chunk) newDataSegment(p []byte) *segment {
	if len(p) <= inlineCap {
		return newCharArraySegment(p)
	}
	return newBufferSegment(p)
}

// AddBufptr appends an OwnedBuffer segment, calling free(orig) exactly
// once when the segment is later removed or the Chunk freed.
func (c *Chunk) AddBufptr(p []byte, orig any, free FreeFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addSegment(newOwnedBufferSegment(p, orig, free), false)
}

// PrependBufptr inserts an OwnedBuffer segment at the front.
func (c *Chunk) PrependBufptr(p []byte, orig any, free FreeFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addSegment(newOwnedBufferSegment(p, orig, free), true)
}

// AppendBufptr is an alias for AddBufptr (append to the tail),
// matching the original's add/append naming pair.
func (c *Chunk) AppendBufptr(p []byte, orig any, free FreeFunc) {
	c.AddBufptr(p, orig, free)
}

// AddStripBuffer escape-strips p's backslash sequences before storing
// it as a borrowed Buffer/CharArray segment.
func (c *Chunk) AddStripBuffer(p []byte) {
	c.AddBuffer(bytesutil.Strip(p))
}

// PrependStripBuffer is the prepend form of AddStripBuffer, optionally
// marked as a header segment.
func (c *Chunk) PrependStripBuffer(p []byte, isHeader bool) {
	stripped := bytesutil.Strip(p)
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.newDataSegment(stripped)
	s.header = isHeader
	c.addSegment(s, true)
}

// AppendStripBuffer is the append form of AddStripBuffer.
func (c *Chunk) AppendStripBuffer(p []byte) {
	c.AddStripBuffer(p)
}

// RemoveBufptr removes exactly the OwnedBuffer segment whose original
// pointer equals orig, releasing it via its free function.
func (c *Chunk) RemoveBufptr(orig any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.segments {
		if s.kind == KindOwnedBuffer && s.origBuf == orig {
			s.release()
			c.removeAt(i)
			return true
		}
	}
	return false
}

// BufptrPorigFind reports whether an OwnedBuffer segment with the
// given original pointer exists.
func (c *Chunk) BufptrPorigFind(orig any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.segments {
		if s.kind == KindOwnedBuffer && s.origBuf == orig {
			return true
		}
	}
	return false
}

func (c *Chunk) removeAt(i int) {
	s := c.segments[i]
	if s.kind == KindFile || s.kind == KindFilePtr || s.kind == KindFileDesc {
		c.fileCount--
	}
	if s.kind == KindCharArray || s.kind == KindBuffer || s.kind == KindOwnedBuffer {
		c.bufferCount--
	}
	c.rawSize -= s.length
	c.segments = append(c.segments[:i], c.segments[i+1:]...)
}

// AddCbdata installs a Callback segment that lazily yields (ptr,len)
// pairs via fetch and is finalised via end when the Chunk is freed.
// advance is stored with the segment but never called by the Chunk.
func (c *Chunk) AddCbdata(fetch FetchFunc, advance AdvanceFunc, end EndFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addSegment(newCallbackSegment(fetch, advance, end), false)
}

