// Package httpchunk implements a push-style decoder for HTTP's
// Transfer-Encoding: chunked framing, writing decoded payload ranges
// into a chunk.Chunk as they arrive. Grounded on the original source's
// sample/webget/http_chunk.c/.h.
package httpchunk

import (
	"bytes"
	"strconv"
	"sync"

	"github.com/adifgo/adif/chunk"
	"github.com/adifgo/adif/errs"
	"github.com/adifgo/adif/log"
	"github.com/evanphx/wildcat"
)

// State names one stage of the decode state machine.
type State int

const (
	// ExpectSize awaits a chunk-size line (hex digits terminated by CRLF).
	ExpectSize State = iota
	// ExpectBody awaits the remainder of the current chunk's body and trailing CRLF.
	ExpectBody
	// ExpectTrailerCRLF awaits either a bare CRLF (no trailer) or a trailer header block.
	ExpectTrailerCRLF
	// ExpectEntityHeaders awaits the rest of a non-empty trailer header block.
	ExpectEntityHeaders
	// Done means the full chunked body and any trailer have been decoded.
	Done
)

var trailerParserPool = sync.Pool{
	New: func() interface{} { return wildcat.NewHTTPParser() },
}

// Decoder parses a chunked-encoding byte stream pushed incrementally
// via AddBufPtr. It is not safe for concurrent use by multiple
// goroutines without external synchronization beyond its own mutex use
// for bookkeeping reads (ChkNum, GotAll, etc.) against concurrent
// AddBufPtr calls.
type Decoder struct {
	mu  sync.Mutex
	dst *chunk.Chunk
	log log.ILogger

	state    State
	leftover []byte

	curActive   bool
	curChkSize  int64 // full item size: size-line + body + trailing CRLF (size-line only for the terminal item)
	curRecvSize int64 // bytes of the current item accounted for so far

	ChkSize  int64
	ChkLen   int64
	RecvSize int64
	RecvLen  int64
	ChkNum   int

	gotAllBody bool
	gotAll     bool

	trailer []byte
}

// New returns a Decoder that writes decoded chunk payloads into dst.
// A nil logger is replaced with log.NopLogger.
func New(dst *chunk.Chunk, logger log.ILogger) *Decoder {
	if logger == nil {
		logger = log.NopLogger()
	}
	return &Decoder{dst: dst, log: logger, state: ExpectSize}
}

// State returns the decoder's current stage.
func (d *Decoder) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// GotAll reports whether the full chunked body and trailer have been decoded.
func (d *Decoder) GotAll() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gotAll
}

// Trailer returns the raw trailer header block bytes (empty if there
// was none, nil until decoding reaches Done).
func (d *Decoder) Trailer() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.trailer
}

// TrailerHeader looks up a single trailer header's value by name
// (case-sensitive, matching wildcat.HTTPParser.FindHeader), returning
// ok=false if decoding hasn't reached Done or the header isn't present.
func (d *Decoder) TrailerHeader(name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.trailer == nil {
		return "", false
	}
	synthetic := make([]byte, 0, 2+len(d.trailer)+2)
	synthetic = append(synthetic, crlf...)
	synthetic = append(synthetic, d.trailer...)
	synthetic = append(synthetic, crlf...)
	p := trailerParserPool.Get().(*wildcat.HTTPParser)
	defer trailerParserPool.Put(p)
	if _, err := p.Parse(synthetic); err != nil {
		return "", false
	}
	val := p.FindHeader([]byte(name))
	if val == nil {
		return "", false
	}
	return string(val), true
}

// AddBufPtr pushes the next len(buf) bytes of the chunked stream into
// the decoder. copy controls whether payload ranges handed to the
// destination Chunk reference buf directly (copy=false, buf must
// outlive the Chunk) or a private copy (copy=true). It returns the
// number of bytes of buf committed by this push. Bytes not yet
// committed (e.g. an incomplete size line) are kept by the Decoder and
// prepended to the next push, so the caller must not resubmit them.
// It follows the `add_bufptr` contract: a negative-equivalent is
// reported as a non-nil error, 0 consumed with a nil error means
// "waiting for more data", and reaching Done is reported via GotAll
// rather than the return value.
func (d *Decoder) AddBufPtr(buf []byte, copyFlag bool) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(buf) == 0 {
		return 0, nil
	}

	oldLeftover := len(d.leftover)
	var work []byte
	workIsOwn := false
	if oldLeftover == 0 {
		work = buf
	} else {
		work = append(append([]byte(nil), d.leftover...), buf...)
		workIsOwn = true
	}

	consumedWork, err := d.process(work, workIsOwn, copyFlag)

	if consumedWork < len(work) {
		d.leftover = append([]byte(nil), work[consumedWork:]...)
	} else {
		d.leftover = nil
	}

	consumedFromBuf := consumedWork - oldLeftover
	if consumedFromBuf < 0 {
		consumedFromBuf = 0
	}
	if consumedFromBuf > len(buf) {
		consumedFromBuf = len(buf)
	}
	return consumedFromBuf, err
}

// process runs the state machine over work starting at index 0,
// returning how many leading bytes of work were fully committed
// (either to d.dst as payload, absorbed into counters, or recognized
// as the trailer). workIsOwn reports whether work is memory the
// Decoder already owns (a synthesized leftover+buf merge), in which
// case payload slices are always handed to dst as owned regardless of
// the copy flag.
func (d *Decoder) process(work []byte, workIsOwn, copyFlag bool) (int, error) {
	pos := 0
	n := len(work)

	for !d.gotAllBody && pos < n {
		if !d.curActive {
			d.state = ExpectSize
			rel := bytes.Index(work[pos:], crlf)
			if rel < 0 {
				return pos, nil
			}
			sizeLine := work[pos : pos+rel]
			bodyLen, ok := parseChunkSize(sizeLine)
			if !ok {
				return pos, errs.New(errs.Protocol, "malformed chunk-size line")
			}
			sizeLineLen := int64(rel) + 2

			d.ChkNum++
			d.curActive = true
			d.curRecvSize = sizeLineLen
			d.RecvSize += sizeLineLen
			if bodyLen > 0 {
				d.curChkSize = sizeLineLen + bodyLen + 2
			} else {
				d.curChkSize = sizeLineLen + bodyLen
			}
			d.ChkSize += d.curChkSize
			d.ChkLen += bodyLen
			pos += rel + 2

			if bodyLen == 0 {
				d.curActive = false
				d.gotAllBody = true
				d.dst.SetEnd()
				d.state = ExpectTrailerCRLF
				break
			}
			d.state = ExpectBody
		}

		restLen := d.curChkSize - d.curRecvSize
		restNum := int64(n - pos)

		if restNum >= restLen {
			payloadLen := restLen - 2
			if payloadLen > 0 {
				d.commitPayload(work, workIsOwn, copyFlag, pos, int(payloadLen))
			}
			d.RecvSize += restLen
			d.RecvLen += payloadLen
			pos += int(restLen)
			d.curActive = false
		} else {
			payloadLen := restNum
			if payloadLen > 0 {
				d.commitPayload(work, workIsOwn, copyFlag, pos, int(payloadLen))
			}
			d.curRecvSize += restNum
			d.RecvSize += restNum
			if payloadLen > restLen {
				payloadLen = restLen
			}
			d.RecvLen += payloadLen
			pos += int(restNum)
			return pos, nil
		}
	}

	if d.gotAllBody && !d.gotAll {
		d.state = ExpectTrailerCRLF
		if n-pos >= 2 && work[pos] == '\r' && work[pos+1] == '\n' {
			d.trailer = nil
			pos += 2
		} else {
			d.state = ExpectEntityHeaders
			rel := bytes.Index(work[pos:], crlfcrlf)
			if rel < 0 {
				return pos, nil
			}
			end := pos + rel + 4
			d.trailer = append([]byte(nil), work[pos:pos+rel+2]...)
			pos = end
		}
		d.gotAll = true
		d.state = Done
		d.log.Debug().Msgf("http chunk decode complete: chknum=%d chksize=%d chklen=%d", d.ChkNum, d.ChkSize, d.ChkLen)
	}

	return pos, nil
}

func (d *Decoder) commitPayload(work []byte, workIsOwn, copyFlag bool, pos, length int) {
	body := work[pos : pos+length]
	if workIsOwn || copyFlag {
		owned := body
		if !workIsOwn {
			owned = append([]byte(nil), body...)
		}
		d.dst.AddBufptr(owned, nil, nil)
		return
	}
	d.dst.AddBuffer(body)
}

var (
	crlf     = []byte("\r\n")
	crlfcrlf = []byte("\r\n\r\n")
)

// parseChunkSize parses a chunk-size line's leading hex digits
// (ignoring any chunk-extension after ';', per RFC 7230 §4.1.1).
func parseChunkSize(line []byte) (int64, bool) {
	if semi := bytes.IndexByte(line, ';'); semi >= 0 {
		line = line[:semi]
	}
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(string(line), 16, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
