//go:build unix

package transport

import (
	"syscall"

	"golang.org/x/sys/unix"
)

type unixMapping struct {
	data   []byte
	offset int64
}

func (m *unixMapping) Bytes() []byte  { return m.data }
func (m *unixMapping) Offset() int64  { return m.offset }
func (m *unixMapping) Close() error   { return unix.Munmap(m.data) }

// Mmap maps [offset, offset+length) of the file for reading, the
// zero-copy path chunk's File segments use for ReadPtr.
func (o *OSFile) Mmap(offset, length int64) (Mapping, error) {
	data, err := unix.Mmap(int(o.f.Fd()), offset, int(length), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &unixMapping{data: data, offset: offset}, nil
}

func inodeOf(st interface{ Sys() any }) uint64 {
	if sys, ok := st.Sys().(*syscall.Stat_t); ok {
		return sys.Ino
	}
	return 0
}
