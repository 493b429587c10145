package transport

import "github.com/valyala/bytebufferpool"

// Frame is a growable byte vector, the staging buffer chunk's
// WriteFrame copies into. It wraps a
// pooled bytebufferpool.ByteBuffer the way the teacher's request/
// response path stages bytes before a socket write.
type Frame struct {
	buf *bytebufferpool.ByteBuffer
}

var framePool bytebufferpool.Pool

// NewFrame returns a Frame backed by a pooled buffer.
func NewFrame() *Frame {
	return &Frame{buf: framePool.Get()}
}

// Release returns the Frame's buffer to the pool. The Frame must not
// be used afterward.
func (f *Frame) Release() {
	framePool.Put(f.buf)
	f.buf = nil
}

// Append appends p to the end of the frame.
func (f *Frame) Append(p []byte) { f.buf.Write(p) }

// PutLast is an alias for Append, matching the original frame
// contract's naming (put_last/put_first).
func (f *Frame) PutLast(p []byte) { f.Append(p) }

// PutFirst prepends p to the frame.
func (f *Frame) PutFirst(p []byte) {
	f.buf.B = append(p[:len(p):len(p)], f.buf.B...)
}

// GetNLast returns the last n bytes of the frame (n clamped to Len()).
func (f *Frame) GetNLast(n int) []byte {
	if n > f.buf.Len() {
		n = f.buf.Len()
	}
	return f.buf.B[f.buf.Len()-n:]
}

// GetNFirst returns the first n bytes of the frame (n clamped to Len()).
func (f *Frame) GetNFirst(n int) []byte {
	if n > f.buf.Len() {
		n = f.buf.Len()
	}
	return f.buf.B[:n]
}

// DelFirst removes the first n bytes of the frame (n clamped to Len()).
func (f *Frame) DelFirst(n int) {
	if n >= f.buf.Len() {
		f.buf.Reset()
		return
	}
	f.buf.B = f.buf.B[:copy(f.buf.B, f.buf.B[n:])]
}

// Empty reports whether the frame holds no bytes.
func (f *Frame) Empty() bool { return f.buf.Len() == 0 }

// Ptr returns a direct view of the frame's bytes.
func (f *Frame) Ptr() []byte { return f.buf.B }

// Len returns the number of bytes currently held.
func (f *Frame) Len() int { return f.buf.Len() }
