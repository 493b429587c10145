package chunk

import (
	"io"

	"github.com/adifgo/adif/config"
	"github.com/adifgo/adif/errs"
	"github.com/adifgo/adif/transport"
)

// segRange returns the payload bytes of segment s falling within
// [intraOff, intraOff+n), reading from file storage as needed.
func (s *segment) segRange(intraOff, n int64) ([]byte, error) {
	switch s.kind {
	case KindCharArray, KindBuffer, KindOwnedBuffer:
		p := s.payload()
		if intraOff >= int64(len(p)) {
			return nil, nil
		}
		end := intraOff + n
		if end > int64(len(p)) {
			end = int64(len(p))
		}
		return p[intraOff:end], nil
	case KindFile, KindFilePtr, KindFileDesc:
		if err := s.file.checkStale(); err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		read, err := s.file.nf.ReadAt(buf, s.file.offset+intraOff)
		if err != nil && err != io.EOF {
			return nil, errs.Wrap(errs.Io, "read file segment", err)
		}
		return buf[:read], nil
	case KindCallback:
		if s.fetch == nil {
			return nil, nil
		}
		return s.fetch(s.cbOff+intraOff, n)
	}
	return nil, nil
}

// Read copies up to len(dst) bytes starting at logical pos into dst,
// honoring HTTP-chunk framing when c.httpChunk is set, and returns the
// number of bytes copied.
func (c *Chunk) Read(dst []byte, pos int64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(dst) == 0 {
		return 0, nil
	}

	if !c.httpChunk {
		return c.readRaw(dst, pos)
	}
	return c.readHTTPChunk(dst, pos)
}

func (c *Chunk) readRaw(dst []byte, pos int64) (int, error) {
	if pos < 0 || pos >= c.rawSize {
		return 0, nil
	}
	idx, intra, ok := c.locateRaw(pos)
	if !ok {
		return 0, nil
	}

	total := 0
	for idx < len(c.segments) && total < len(dst) {
		s := c.segments[idx]
		want := int64(len(dst) - total)
		chunk, err := s.segRange(intra, want)
		if err != nil {
			return total, err
		}
		copy(dst[total:], chunk)
		total += len(chunk)
		if int64(len(chunk)) < s.length-intra {
			break // short read (e.g. EOF on a file segment)
		}
		idx++
		intra = 0
	}
	return total, nil
}

// locateRaw is like locate but ignoring HTTP-chunk framing, used by
// Read/ReadPtr/Writev when projecting the raw (non-HTTP) view.
func (c *Chunk) locateRaw(pos int64) (index int, intraOffset int64, ok bool) {
	var running int64
	for i, s := range c.segments {
		if pos >= running && pos < running+s.length {
			return i, pos - running, true
		}
		running += s.length
	}
	return len(c.segments), 0, false
}

func (c *Chunk) readHTTPChunk(dst []byte, pos int64) (int, error) {
	total := 0
	var running int64
	for _, s := range c.segments {
		lineLen := int64(len(s.sizeHex)) + 2
		segStart := running
		segEnd := segStart + lineLen + s.length + 2

		if pos < segEnd && total < len(dst) {
			total += c.copyFramedSegment(s, segStart, pos, dst[total:])
		}
		running = segEnd
		if total >= len(dst) {
			return total, nil
		}
		pos = maxInt64(pos, running)
	}
	if c.ended && total < len(dst) {
		terminal := "0\r\n\r\n"
		termStart := running
		if pos < termStart+terminalFramingLen {
			off := pos - termStart
			if off < 0 {
				off = 0
			}
			n := copy(dst[total:], terminal[off:])
			total += n
		}
	}
	return total, nil
}

// copyFramedSegment copies the HTTP-chunk-framed view of s (starting
// at absolute offset segStart) from absolute offset pos into dst,
// returning the number of bytes written.
func (c *Chunk) copyFramedSegment(s *segment, segStart, pos int64, dst []byte) int {
	lineLen := int64(len(s.sizeHex)) + 2
	written := 0

	line := s.sizeHex + "\r\n"
	if pos < segStart+lineLen {
		off := pos - segStart
		if off < 0 {
			off = 0
		}
		n := copy(dst[written:], line[off:])
		written += n
		pos += int64(n)
	}

	payloadStart := segStart + lineLen
	payloadEnd := payloadStart + s.length
	if pos >= payloadStart && pos < payloadEnd && written < len(dst) {
		chunk, err := s.segRange(pos-payloadStart, int64(len(dst)-written))
		if err == nil {
			n := copy(dst[written:], chunk)
			written += n
			pos += int64(n)
		}
	}

	trailerStart := payloadEnd
	if pos >= trailerStart && pos < trailerStart+2 && written < len(dst) {
		n := copy(dst[written:], "\r\n"[pos-trailerStart:])
		written += n
	}

	return written
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// ReadPtr returns a zero-copy view into the underlying segment storage
// covering up to len bytes at logical pos, where possible (memory
// segments return their slice directly; file segments lazily mmap).
// It does not honor HTTP-chunk framing (framing bytes are never a
// contiguous region of any single segment's storage).
func (c *Chunk) ReadPtr(pos, length int64) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, intra, ok := c.locateRaw(pos)
	if !ok {
		return nil, nil
	}
	s := c.segments[idx]

	avail := s.length - intra
	if length > avail {
		length = avail
	}

	switch s.kind {
	case KindCharArray, KindBuffer, KindOwnedBuffer:
		p := s.payload()
		end := intra + length
		if end > int64(len(p)) {
			end = int64(len(p))
		}
		return p[intra:end], nil
	case KindFile, KindFilePtr, KindFileDesc:
		return c.mmapSegment(s, intra, length)
	case KindCallback:
		return s.fetch(s.cbOff+intra, length)
	}
	return nil, nil
}

func (c *Chunk) mmapSegment(s *segment, intra, length int64) ([]byte, error) {
	if err := s.file.checkStale(); err != nil {
		return nil, err
	}
	absOff := s.file.offset + intra
	needEnd := absOff + length

	fs := s.file
	if fs.mapping == nil || absOff < fs.mapOff || needEnd > fs.mapOff+fs.mapLen {
		if fs.mapping != nil {
			fs.mapping.Close()
			fs.mapping = nil
		}
		mapOff := fs.offset
		mapLen := fs.length
		m, err := fs.nf.Mmap(mapOff, mapLen)
		if err != nil {
			return nil, errs.Wrap(errs.Io, "mmap file segment", err)
		}
		fs.mapping = m
		fs.mapOff = mapOff
		fs.mapLen = mapLen
	}

	data := fs.mapping.Bytes()
	start := absOff - fs.mapOff
	end := start + length
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[start:end], nil
}

// WriteFile copies up to length bytes of Read's view starting at pos
// (HTTP-chunk framed when SetHTTPChunk(true) is in effect) to nf,
// returning the number of bytes written.
func (c *Chunk) WriteFile(nf transport.NativeFile, pos, length int64) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for length > 0 {
		want := int64(len(buf))
		if want > length {
			want = length
		}
		n, err := c.Read(buf[:want], pos+total)
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
		if _, err := nf.Write(buf[:n]); err != nil {
			return total, errs.Wrap(errs.Io, "write file segment", err)
		}
		total += int64(n)
		length -= int64(n)
	}
	return total, nil
}

// WriteFrame copies up to length bytes of Read's view starting at pos
// (HTTP-chunk framed when SetHTTPChunk(true) is in effect) into frm.
func (c *Chunk) WriteFrame(frm *transport.Frame, pos, length int64) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for length > 0 {
		want := int64(len(buf))
		if want > length {
			want = length
		}
		n, err := c.Read(buf[:want], pos+total)
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
		frm.Append(buf[:n])
		total += int64(n)
		length -= int64(n)
	}
	return total, nil
}

// VecType distinguishes the two kinds of vector chunk_vec_t/Vec can
// describe.
type VecType int

const (
	VecUnknown VecType = iota
	VecMemory
	VecFile
)

// Vec is the scatter/gather descriptor produced by VecGet: either up
// to config.Options.MaxIovecs memory slices, or exactly one file
// region.
type Vec struct {
	Type VecType

	Offset int64 // logical offset this vector starts at
	Size   int64 // total bytes described

	Iovecs [][]byte // populated when Type == VecMemory

	File       transport.NativeFile // populated when Type == VecFile
	FileOffset int64
	FileSize   int64
}

// VecGet populates a Vec describing contiguous memory segments
// starting at pos (up to opts.MaxIovecs entries) or, if pos lands in a
// file segment, a single file-region descriptor.
func (c *Chunk) VecGet(pos int64, opts config.Options) (Vec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, intra, ok := c.locateRaw(pos)
	if !ok {
		return Vec{Type: VecUnknown, Offset: pos}, nil
	}

	first := c.segments[idx]
	if first.kind == KindFile || first.kind == KindFilePtr || first.kind == KindFileDesc {
		if err := first.file.checkStale(); err != nil {
			return Vec{}, err
		}
		return Vec{
			Type:       VecFile,
			Offset:     pos,
			Size:       first.length - intra,
			File:       first.file.nf,
			FileOffset: first.file.offset + intra,
			FileSize:   first.length - intra,
		}, nil
	}

	vec := Vec{Type: VecMemory, Offset: pos}
	running := intra
	for i := idx; i < len(c.segments) && len(vec.Iovecs) < opts.MaxIovecs; i++ {
		s := c.segments[i]
		if s.kind == KindFile || s.kind == KindFilePtr || s.kind == KindFileDesc {
			break
		}
		p := s.payload()
		if running >= int64(len(p)) {
			running = 0
			continue
		}
		slice := p[running:]
		vec.Iovecs = append(vec.Iovecs, slice)
		vec.Size += int64(len(slice))
		running = 0
	}
	return vec, nil
}

// Writev writes the vector VecGet builds at pos to nf, returning the
// number of bytes transferred. A memory vector is written with one
// nf.Write call per slice, not as one gathered write; a file vector is
// copied through a 32 KiB buffer with ReadAt/Write pairs.
func (c *Chunk) Writev(nf transport.NativeFile, pos int64, opts config.Options) (int64, error) {
	vec, err := c.VecGet(pos, opts)
	if err != nil {
		return 0, err
	}
	switch vec.Type {
	case VecMemory:
		var total int64
		for _, iov := range vec.Iovecs {
			n, err := nf.Write(iov)
			total += int64(n)
			if err != nil {
				return total, errs.Wrap(errs.Io, "writev", err)
			}
		}
		return total, nil
	case VecFile:
		buf := make([]byte, 32*1024)
		var total int64
		for total < vec.FileSize {
			want := int64(len(buf))
			if rem := vec.FileSize - total; want > rem {
				want = rem
			}
			n, err := vec.File.ReadAt(buf[:want], vec.FileOffset+total)
			if n > 0 {
				if _, werr := nf.Write(buf[:n]); werr != nil {
					return total, errs.Wrap(errs.Io, "writev sendfile fallback", werr)
				}
				total += int64(n)
			}
			if err != nil {
				if err == io.EOF {
					break
				}
				return total, errs.Wrap(errs.Io, "writev sendfile fallback read", err)
			}
		}
		return total, nil
	}
	return 0, nil
}
