// Package bufstage pools staging buffers for segment and pack payloads.
// It is the same pooled-buffer technique the original ngebut used for
// static-file serving. No other package of this module imports it:
// chunk and filecache allocate their buffers directly.
package bufstage

import (
	"github.com/valyala/bytebufferpool"
)

var pool bytebufferpool.Pool

// Get returns a pooled staging buffer, reset to zero length.
func Get() *bytebufferpool.ByteBuffer {
	return pool.Get()
}

// Put returns a staging buffer to the pool. The buffer must not be
// referenced again afterward.
func Put(b *bytebufferpool.ByteBuffer) {
	pool.Put(b)
}

// Clone copies src into a freshly owned byte slice allocated outside the
// pool. Use this when the bytes must outlive the pooled buffer they were
// staged in, e.g. to hand off as a chunk.OwnedBuffer payload.
func Clone(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}

// ReadBufPool pools fixed-size read-ahead buffers, with the buffer size
// chosen per pool rather than one hardcoded constant.
type ReadBufPool struct {
	size int
	pool chan []byte
}

// NewReadBufPool creates a bounded pool of read buffers of the given
// size. depth bounds the number of idle buffers retained.
func NewReadBufPool(size, depth int) *ReadBufPool {
	return &ReadBufPool{
		size: size,
		pool: make(chan []byte, depth),
	}
}

// Get returns a buffer of at least the pool's configured size.
func (p *ReadBufPool) Get() []byte {
	select {
	case b := <-p.pool:
		return b[:p.size]
	default:
		return make([]byte, p.size)
	}
}

// Put returns a buffer to the pool, dropping it if the pool is full.
func (p *ReadBufPool) Put(b []byte) {
	if cap(b) < p.size {
		return
	}
	select {
	case p.pool <- b[:p.size]:
	default:
	}
}
