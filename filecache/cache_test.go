package filecache

import (
	"io"
	"testing"

	"github.com/adifgo/adif/config"
	"github.com/adifgo/adif/log"
)

func TestReadAcrossPacksSliding(t *testing.T) {
	med := NewMemoryMedium([]byte("ABCDEFGHIJKL"))
	opts := config.DefaultOptions()
	opts.PackSize = 4
	opts.PackNum = 2
	c := New(med, opts)

	dst := make([]byte, 12)
	n, err := c.Recv(dst, 0)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if n != 12 || string(dst) != "ABCDEFGHIJKL" {
		t.Fatalf("got %q (n=%d)", dst[:n], n)
	}
}

func TestSetLoggerNilFallsBackToNopAndReadStillWorks(t *testing.T) {
	med := NewMemoryMedium([]byte("ABCDEFGH"))
	opts := config.DefaultOptions()
	opts.PackSize = 4
	opts.PackNum = 2
	c := New(med, opts)

	c.SetLogger(nil)
	if c.log == nil {
		t.Fatal("SetLogger(nil) left log nil")
	}

	dst := make([]byte, 8)
	n, err := c.Recv(dst, 0)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if n != 8 || string(dst) != "ABCDEFGH" {
		t.Fatalf("got %q (n=%d)", dst[:n], n)
	}
}

func TestSetLoggerAcceptsCustomLogger(t *testing.T) {
	med := NewMemoryMedium([]byte("ABCD"))
	opts := config.DefaultOptions()
	opts.PackSize = 4
	opts.PackNum = 1
	c := New(med, opts)
	c.SetLogger(log.GetLogger())

	dst := make([]byte, 4)
	if _, err := c.Recv(dst, 0); err != nil {
		t.Fatalf("Recv: %v", err)
	}
}

func TestSeekKeepsPrefix(t *testing.T) {
	data := make([]byte, 100)
	med := NewMemoryMedium(data)
	opts := config.DefaultOptions()
	opts.PackSize = 4
	opts.PackNum = 4
	opts.PrefixRatio = 0.5
	c := New(med, opts)

	c.Seek(40)
	if c.beginPack != 8 {
		t.Fatalf("beginPack = %d, want 8", c.beginPack)
	}
}

func TestBufferingRatio(t *testing.T) {
	med := NewMemoryMedium([]byte("ABCDEFGH"))
	opts := config.DefaultOptions()
	opts.PackSize = 4
	opts.PackNum = 4
	c := New(med, opts)

	if r := c.BufferingRatio(); r != 0 {
		t.Fatalf("initial ratio = %v, want 0", r)
	}

	dst := make([]byte, 8)
	if _, err := c.Recv(dst, 0); err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if r := c.BufferingRatio(); r != 1 {
		t.Fatalf("ratio after full read = %v, want 1", r)
	}
}

func TestAtReadsByte(t *testing.T) {
	med := NewMemoryMedium([]byte("hello world"))
	c := New(med, config.DefaultOptions())

	b, err := c.At(6)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if b != 'w' {
		t.Fatalf("got %q, want 'w'", b)
	}
}

func TestEofAndFileSize(t *testing.T) {
	med := NewMemoryMedium([]byte("abc"))
	c := New(med, config.DefaultOptions())

	if c.FileSize() != 3 {
		t.Fatalf("FileSize() = %d, want 3", c.FileSize())
	}
	if c.Eof() {
		t.Fatalf("expected not eof before reading")
	}
	dst := make([]byte, 3)
	if _, err := c.Recv(dst, 0); err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if !c.Eof() {
		t.Fatalf("expected eof after reading through the end")
	}
}

func TestSkipOverAndToAcrossPacks(t *testing.T) {
	med := NewMemoryMedium([]byte("   hello, world"))
	opts := config.DefaultOptions()
	opts.PackSize = 4
	opts.PackNum = 2
	c := New(med, opts)

	end, err := c.SkipOver(0, -1, []byte(" "))
	if err != nil {
		t.Fatalf("SkipOver: %v", err)
	}
	if end != 3 {
		t.Fatalf("SkipOver end = %d, want 3", end)
	}

	stop, err := c.SkipTo(0, -1, []byte(","))
	if err != nil {
		t.Fatalf("SkipTo: %v", err)
	}
	if stop != 8 {
		t.Fatalf("SkipTo stop = %d, want 8", stop)
	}
}

func TestRSkipOverAcrossPacks(t *testing.T) {
	med := NewMemoryMedium([]byte("value   "))
	opts := config.DefaultOptions()
	opts.PackSize = 4
	opts.PackNum = 2
	c := New(med, opts)

	end, err := c.RSkipOver(7, -1, []byte(" "))
	if err != nil {
		t.Fatalf("RSkipOver: %v", err)
	}
	if end != 4 {
		t.Fatalf("RSkipOver end = %d, want 4", end)
	}
}

// blockingMedium blocks ReadAt until proceed is closed, letting tests
// observe a pack stuck in Receiving deterministically.
type blockingMedium struct {
	data    []byte
	proceed chan struct{}
}

func (m *blockingMedium) ReadAt(offset int64, buf []byte) (int, error) {
	<-m.proceed
	if offset >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(buf, m.data[offset:])
	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}

func (m *blockingMedium) Len() int64 { return int64(len(m.data)) }

func TestReadNonblockingWouldBlock(t *testing.T) {
	med := &blockingMedium{data: []byte("0123456789"), proceed: make(chan struct{})}
	opts := config.DefaultOptions()
	opts.PackSize = 4
	opts.PackNum = 4
	c := New(med, opts)

	dst := make([]byte, 4)
	if _, err := c.Read(dst, true); err == nil {
		t.Fatalf("expected WouldBlock before the medium releases data")
	}

	close(med.proceed)

	n, err := c.Recv(dst, 0)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if n != 4 || string(dst) != "0123" {
		t.Fatalf("got %q (n=%d)", dst[:n], n)
	}
}
