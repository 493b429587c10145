// Package chunk implements the Chunked Content Buffer: a logical byte
// stream assembled from heterogeneous segments (inline bytes, borrowed
// or owned buffers, file regions, lazy callback producers) that
// supports HTTP chunked-transfer framing, scatter/gather extraction,
// positional reads, and pattern search across segment boundaries. It
// is grounded on the original source's chunk.c/chunk.h.
package chunk

import (
	"github.com/adifgo/adif/bytesutil"
	"github.com/adifgo/adif/errs"
	"github.com/adifgo/adif/transport"
)

// Kind identifies the sum-type variant of a segment, mirroring the
// original's CKT_* constants.
type Kind int

const (
	KindCharArray Kind = iota
	KindBuffer
	KindOwnedBuffer
	KindFile
	KindFilePtr
	KindFileDesc
	KindCallback
)

// inlineCap is the inline payload capacity of a CharArray segment
// (spec §3, "inline[<=48]").
const inlineCap = 48

// FetchFunc lazily supplies the next (ptr,len) pair for a Callback
// segment, mirroring FetchData.
type FetchFunc func(offset, length int64) ([]byte, error)

// AdvanceFunc is the Callback segment's advance hook, mirroring
// GoAhead. The Chunk stores it with the segment but never invokes it.
type AdvanceFunc func(offset, step int64) error

// EndFunc is invoked with status 0 when a Callback segment is released
// (Chunk.Free), mirroring FetchEnd. Reading the segment to its end does
// not invoke it.
type EndFunc func(status int) error

// FreeFunc releases an OwnedBuffer segment's backing storage exactly
// once, mirroring CKEFree.
type FreeFunc func(orig any)

// fileState holds the fields shared by File, FilePtr and FileDesc
// segments: the (inode,mtime,size) staleness guard and a cached mmap
// window.
type fileState struct {
	nf     transport.NativeFile
	owned  bool // true only for Kind == KindFile (CCB opened the file itself)
	path   string
	offset int64
	length int64

	attr transport.FileAttr // sampled at add-time

	mapping transport.Mapping
	mapOff  int64
	mapLen  int64
}

func (fs *fileState) close() {
	if fs.mapping != nil {
		fs.mapping.Close()
		fs.mapping = nil
	}
	if fs.owned && fs.nf != nil {
		fs.nf.Close()
	}
}

func (fs *fileState) checkStale() error {
	attr, err := fs.nf.Attr()
	if err != nil {
		return errs.Wrap(errs.Io, "stat file segment", err)
	}
	if attr.Size != fs.attr.Size || !attr.Mtime.Equal(fs.attr.Mtime) || attr.Inode != fs.attr.Inode {
		return errs.New(errs.StaleFile, fs.path)
	}
	return nil
}

// segment is one element of the CCB's segment list.
type segment struct {
	kind   Kind
	header bool
	length int64

	// CharArray
	inline    [inlineCap]byte
	inlineLen int

	// Buffer / OwnedBuffer
	buf      []byte
	freeFn   FreeFunc
	origBuf  any

	// File / FilePtr / FileDesc
	file *fileState

	// Callback
	fetch   FetchFunc
	advance AdvanceFunc
	end     EndFunc
	cbOff   int64

	// cached unpadded upper-case hex of length, for HTTP-chunk framing
	sizeHex string
}

func (s *segment) payload() []byte {
	switch s.kind {
	case KindCharArray:
		return s.inline[:s.inlineLen]
	case KindBuffer, KindOwnedBuffer:
		return s.buf
	}
	return nil
}

func (s *segment) computeSizeHex() {
	s.sizeHex = bytesutil.HexUpper(int(s.length))
}

// framingOverhead is the HTTP-chunk overhead this segment contributes:
// HEX(len) + CRLF before the payload, plus CRLF after.
func (s *segment) framingOverhead() int64 {
	return int64(len(s.sizeHex)) + 2 + 2
}

func newCharArraySegment(p []byte) *segment {
	s := &segment{kind: KindCharArray, length: int64(len(p))}
	s.inlineLen = copy(s.inline[:], p)
	s.computeSizeHex()
	return s
}

func newBufferSegment(p []byte) *segment {
	s := &segment{kind: KindBuffer, buf: p, length: int64(len(p))}
	s.computeSizeHex()
	return s
}

func newOwnedBufferSegment(p []byte, orig any, free FreeFunc) *segment {
	s := &segment{kind: KindOwnedBuffer, buf: p, origBuf: orig, freeFn: free, length: int64(len(p))}
	s.computeSizeHex()
	return s
}

func newFileSegmentFromHandle(kind Kind, nf transport.NativeFile, owned bool, path string, offset, length int64, attr transport.FileAttr) *segment {
	s := &segment{
		kind:   kind,
		length: length,
		file: &fileState{
			nf:     nf,
			owned:  owned,
			path:   path,
			offset: offset,
			length: length,
			attr:   attr,
		},
	}
	s.computeSizeHex()
	return s
}

func newCallbackSegment(fetch FetchFunc, advance AdvanceFunc, end EndFunc) *segment {
	return &segment{kind: KindCallback, fetch: fetch, advance: advance, end: end, length: -1}
}

func (s *segment) release() {
	switch s.kind {
	case KindOwnedBuffer:
		if s.freeFn != nil {
			s.freeFn(s.origBuf)
		}
	case KindFile, KindFilePtr, KindFileDesc:
		s.file.close()
	case KindCallback:
		if s.end != nil {
			s.end(0)
		}
	}
}
