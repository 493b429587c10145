// Package filecache implements the Streaming File Cache: a
// fixed-size-pack sliding window over a local file, an in-memory
// buffer, or a caller-supplied remote reader, supporting blocking and
// non-blocking sequential reads, random byte access, and the same
// cross-boundary skip primitives as the CCB. Grounded on the original
// source's filecache.c/filecache.h.
package filecache

import (
	"io"

	"github.com/adifgo/adif/transport"
)

// Medium is the backing store a Cache pulls pack-sized windows from,
// mirroring file_cache_setbuf/setfile/setcdn's three binding kinds.
type Medium interface {
	// ReadAt reads up to len(buf) bytes starting at offset, returning
	// the number of bytes read. A short read (n < len(buf)) signals
	// the medium's end; io.EOF may also be returned.
	ReadAt(offset int64, buf []byte) (int, error)
	// Len returns the medium's total length, or -1 if unknown.
	Len() int64
}

// MemoryMedium serves a Cache directly from an in-memory buffer,
// mirroring file_cache_setbuf.
type MemoryMedium struct {
	data []byte
}

// NewMemoryMedium wraps data as a Medium. data's lifetime must outlive
// the Cache.
func NewMemoryMedium(data []byte) *MemoryMedium {
	return &MemoryMedium{data: data}
}

func (m *MemoryMedium) ReadAt(offset int64, buf []byte) (int, error) {
	if offset < 0 || offset >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(buf, m.data[offset:])
	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemoryMedium) Len() int64 { return int64(len(m.data)) }

// LocalFileMedium serves a Cache from an already-open NativeFile,
// mirroring file_cache_setfile.
type LocalFileMedium struct {
	nf   transport.NativeFile
	base int64
}

// NewLocalFileMedium binds a Cache to [base, base+size) of nf.
func NewLocalFileMedium(nf transport.NativeFile, base int64) *LocalFileMedium {
	return &LocalFileMedium{nf: nf, base: base}
}

func (m *LocalFileMedium) ReadAt(offset int64, buf []byte) (int, error) {
	return m.nf.ReadAt(buf, m.base+offset)
}

func (m *LocalFileMedium) Len() int64 {
	size, err := m.nf.Size()
	if err != nil {
		return -1
	}
	return size - m.base
}

// CallbackReadFunc is the caller-supplied remote-read hook, the
// adapted form of a pluggable backend's ranged Get: repointed from key
// lookups to ranged reads, mirroring file_cache_setcdn's
// cdnread(state,buf,&size,offset) callback.
type CallbackReadFunc func(offset int64, buf []byte) (int, error)

// CallbackMedium serves a Cache from a caller-supplied remote-read
// callback (e.g. a CDN range-GET), mirroring file_cache_setcdn.
type CallbackMedium struct {
	read   CallbackReadFunc
	length int64
}

// NewCallbackMedium wraps read as a Medium reporting the given total
// length (-1 if unknown).
func NewCallbackMedium(read CallbackReadFunc, length int64) *CallbackMedium {
	return &CallbackMedium{read: read, length: length}
}

func (m *CallbackMedium) ReadAt(offset int64, buf []byte) (int, error) {
	return m.read(offset, buf)
}

func (m *CallbackMedium) Len() int64 { return m.length }
