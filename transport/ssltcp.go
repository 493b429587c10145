package transport

import (
	"github.com/panjf2000/gnet/v2"

	"github.com/adifgo/adif/errs"
)

// HandshakeState is the result of SSLTcp.Handshake.
type HandshakeState int

const (
	HandshakeOK HandshakeState = iota
	HandshakeWantRead
	HandshakeWantWrite
	HandshakeErr
)

// SSLTcp is the TLS/TCP socket contract for a socket-fed reader; this
// module treats the actual transport as an external collaborator. No
// other package of this module (httpchunk and chunk included) uses it.
type SSLTcp interface {
	// Bind associates the connection with an fd and TLS mode/context.
	Bind(fd int, sslMode bool, ctx any) error
	// Handshake advances the TLS handshake, if any.
	Handshake() (HandshakeState, error)
	// Read fills frm with newly available bytes, reporting the count
	// read or an error.
	Read(frm *Frame) (int, error)
	// Writev performs a scatter write of iovs.
	Writev(iovs [][]byte) (int, error)
	// Sendfile transfers length bytes of fd starting at pos.
	Sendfile(fd int, pos, length int64) (int64, error)
	Close() error
}

// GnetConn is the reference SSLTcp adapter over a gnet.Conn, grounded
// on the teacher's engine.go/server.go connection handling (gnet
// drives the event loop; this type only adapts its Conn to the
// narrower SSLTcp contract).
type GnetConn struct {
	conn gnet.Conn
}

// NewGnetConn wraps an active gnet connection.
func NewGnetConn(conn gnet.Conn) *GnetConn {
	return &GnetConn{conn: conn}
}

func (g *GnetConn) Bind(fd int, sslMode bool, ctx any) error {
	// gnet owns the fd/event-loop registration; nothing to do here.
	return nil
}

func (g *GnetConn) Handshake() (HandshakeState, error) {
	// Plain TCP via gnet; TLS termination, if any, happens above this
	// adapter. Always report the handshake as already complete.
	return HandshakeOK, nil
}

func (g *GnetConn) Read(frm *Frame) (int, error) {
	n := g.conn.InboundBuffered()
	if n == 0 {
		return 0, nil
	}
	buf := make([]byte, n)
	read, err := g.conn.Read(buf)
	if err != nil {
		return read, err
	}
	frm.Append(buf[:read])
	return read, nil
}

func (g *GnetConn) Writev(iovs [][]byte) (int, error) {
	total := 0
	for _, iov := range iovs {
		n, err := g.conn.Write(iov)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Sendfile is not available through gnet's Conn; callers needing a
// zero-copy file transfer over this adapter should fall back to
// Writev with chunk's mmap-backed ReadPtr segments instead.
func (g *GnetConn) Sendfile(fd int, pos, length int64) (int64, error) {
	return 0, errs.New(errs.Protocol, "sendfile unsupported over GnetConn")
}

func (g *GnetConn) Close() error {
	return g.conn.Close()
}
