package chunk

import (
	"os"
	"testing"

	"github.com/adifgo/adif/config"
)

func TestAddBufferAndSize(t *testing.T) {
	c := New()
	defer c.Free()

	c.AddBuffer([]byte("hello "))
	c.AddBuffer([]byte("world"))

	if got, want := c.Size(), int64(len("hello world")); got != want {
		t.Fatalf("Size() = %d, want %d", got, want)
	}
	if c.Num() != 2 {
		t.Fatalf("Num() = %d, want 2", c.Num())
	}
	if !c.HasBuf() || c.HasFile() {
		t.Fatalf("HasBuf/HasFile = %v/%v", c.HasBuf(), c.HasFile())
	}
}

func TestReadAcrossSegments(t *testing.T) {
	c := New()
	defer c.Free()

	c.AddBuffer([]byte("ABCDE"))
	c.AddBuffer([]byte("FGHIJ"))
	c.AddBuffer([]byte("KLMNO"))

	dst := make([]byte, 15)
	n, err := c.Read(dst, 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 15 || string(dst) != "ABCDEFGHIJKLMNO" {
		t.Fatalf("Read got %q (n=%d)", dst[:n], n)
	}
}

// TestSunFindBytesAcrossSegments mirrors the three-segment pattern
// search scenario: segments "ABCDE","FGHIJ","KLMNO" searched for
// "EFGH" from pos 0 should land at offset 4 (segment 0, intra 4), and
// "HIJ" from pos 5 should land at offset 7.
func TestSunFindBytesAcrossSegments(t *testing.T) {
	c := New()
	defer c.Free()

	c.AddBuffer([]byte("ABCDE"))
	c.AddBuffer([]byte("FGHIJ"))
	c.AddBuffer([]byte("KLMNO"))

	res, ok, err := c.SunFindBytes(0, []byte("EFGH"))
	if err != nil || !ok {
		t.Fatalf("SunFindBytes: ok=%v err=%v", ok, err)
	}
	if res.Offset != 4 || res.EntryIndex != 0 || res.IntraOffset != 4 {
		t.Fatalf("got %+v, want offset=4 entry=0 intra=4", res)
	}

	res2, ok2, err2 := c.SunFindBytes(5, []byte("HIJ"))
	if err2 != nil || !ok2 {
		t.Fatalf("SunFindBytes(5): ok=%v err=%v", ok2, err2)
	}
	if res2.Offset != 7 || res2.EntryIndex != 1 || res2.IntraOffset != 2 {
		t.Fatalf("got %+v, want offset=7 entry=1 intra=2", res2)
	}
}

func TestBmAndKmpAgreeWithSun(t *testing.T) {
	c := New()
	defer c.Free()
	c.AddBuffer([]byte("the quick "))
	c.AddBuffer([]byte("brown fox"))

	pattern := []byte("brown")
	sun, sunOK, _ := c.SunFindBytes(0, pattern)
	bm, bmOK, _ := c.BmFindBytes(0, pattern)
	kmp, kmpOK, _ := c.KmpFindBytes(0, pattern)

	if !sunOK || !bmOK || !kmpOK {
		t.Fatalf("expected all three to find: sun=%v bm=%v kmp=%v", sunOK, bmOK, kmpOK)
	}
	if sun.Offset != bm.Offset || bm.Offset != kmp.Offset {
		t.Fatalf("disagreement: sun=%d bm=%d kmp=%d", sun.Offset, bm.Offset, kmp.Offset)
	}
}

func TestPatternCrossingSegmentBoundary(t *testing.T) {
	c := New()
	defer c.Free()
	c.AddBuffer([]byte("foo-ba"))
	c.AddBuffer([]byte("r-baz"))

	res, ok, err := c.SunFindBytes(0, []byte("bar"))
	if err != nil || !ok {
		t.Fatalf("expected match crossing boundary, ok=%v err=%v", ok, err)
	}
	if res.Offset != 4 {
		t.Fatalf("got offset %d, want 4", res.Offset)
	}
}

func TestSkipToAndOver(t *testing.T) {
	c := New()
	defer c.Free()
	c.AddBuffer([]byte("   hello"))

	end, err := c.SkipOver(0, -1, []byte(" "))
	if err != nil {
		t.Fatalf("SkipOver: %v", err)
	}
	if end != 3 {
		t.Fatalf("SkipOver end = %d, want 3", end)
	}

	stop, err := c.SkipTo(0, -1, []byte("h"))
	if err != nil {
		t.Fatalf("SkipTo: %v", err)
	}
	if stop != 3 {
		t.Fatalf("SkipTo stop = %d, want 3", stop)
	}
}

func TestSkipQuoteTo(t *testing.T) {
	c := New()
	defer c.Free()
	c.AddBuffer([]byte(`"a,b",c`))

	stop, err := c.SkipQuoteTo(0, -1, []byte(","))
	if err != nil {
		t.Fatalf("SkipQuoteTo: %v", err)
	}
	if stop != 5 {
		t.Fatalf("SkipQuoteTo stop = %d, want 5", stop)
	}
}

func TestSkipToPeer(t *testing.T) {
	c := New()
	defer c.Free()
	c.AddBuffer([]byte("(a(b)c)d"))

	end, err := c.SkipToPeer(0, '(', ')')
	if err != nil {
		t.Fatalf("SkipToPeer: %v", err)
	}
	if end != 6 {
		t.Fatalf("SkipToPeer end = %d, want 6", end)
	}
}

func TestHTTPChunkSizeAndRead(t *testing.T) {
	c := New()
	defer c.Free()
	c.SetHTTPChunk(true)
	c.AddBuffer([]byte("Hello World"))
	c.SetEnd()

	// "B\r\nHello World\r\n0\r\n\r\n"
	want := "B\r\nHello World\r\n0\r\n\r\n"
	if got := c.Size(); got != int64(len(want)) {
		t.Fatalf("Size() = %d, want %d", got, len(want))
	}

	dst := make([]byte, len(want))
	n, err := c.Read(dst, 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(dst[:n]) != want {
		t.Fatalf("Read got %q, want %q", dst[:n], want)
	}
}

func TestAddFileAndStaleDetection(t *testing.T) {
	path := t.TempDir() + "/f.bin"
	if err := os.WriteFile(path, []byte("file payload content"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	c := New()
	defer c.Free()

	if err := c.AddFile(path, 0, -1, false); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if !c.HasFile() {
		t.Fatalf("expected HasFile true")
	}
	fsize, _, fpath, ok := c.IsFile()
	if !ok || fsize != int64(len("file payload content")) || fpath != path {
		t.Fatalf("IsFile() = %d,%q,%v", fsize, fpath, ok)
	}

	dst := make([]byte, fsize)
	n, err := c.Read(dst, 0)
	if err != nil || int64(n) != fsize {
		t.Fatalf("Read: n=%d err=%v", n, err)
	}
	if string(dst) != "file payload content" {
		t.Fatalf("got %q", dst)
	}

	// mutate the file out from under the Chunk; subsequent reads must
	// report staleness rather than silently returning stale bytes.
	if err := os.WriteFile(path, []byte("short"), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}
	if _, err := c.Read(dst, 0); err == nil {
		t.Fatalf("expected staleness error after file mutation")
	}

	c.RemoveFile()
	if c.HasFile() {
		t.Fatalf("expected HasFile false after RemoveFile")
	}
}

func TestVecGetMemoryAndFile(t *testing.T) {
	opts := config.DefaultOptions()

	c := New()
	defer c.Free()
	c.AddBuffer([]byte("one"))
	c.AddBuffer([]byte("two"))

	vec, err := c.VecGet(0, opts)
	if err != nil {
		t.Fatalf("VecGet: %v", err)
	}
	if vec.Type != VecMemory || len(vec.Iovecs) != 2 {
		t.Fatalf("got %+v", vec)
	}

	path := t.TempDir() + "/f.bin"
	if err := os.WriteFile(path, []byte("filedata"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	fc := New()
	defer fc.Free()
	if err := fc.AddFile(path, 0, -1, false); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	fvec, err := fc.VecGet(0, opts)
	if err != nil {
		t.Fatalf("VecGet file: %v", err)
	}
	if fvec.Type != VecFile || fvec.FileSize != 8 {
		t.Fatalf("got %+v", fvec)
	}
}

func TestGoAheadInvokesNotify(t *testing.T) {
	c := New()
	defer c.Free()
	c.AddBuffer([]byte("0123456789"))

	var gotOffset, gotStep int64
	var gotCb uint64
	c.OnAdvance(func(cbval uint64, offset, step int64) error {
		gotCb, gotOffset, gotStep = cbval, offset, step
		return nil
	}, 42)

	if err := c.GoAhead(3); err != nil {
		t.Fatalf("GoAhead: %v", err)
	}
	if gotCb != 42 || gotOffset != 3 || gotStep != 3 {
		t.Fatalf("got cb=%d offset=%d step=%d", gotCb, gotOffset, gotStep)
	}
	if c.SeekPos() != 3 {
		t.Fatalf("SeekPos() = %d, want 3", c.SeekPos())
	}
}

func TestRemoveBufptrCallsFree(t *testing.T) {
	c := New()
	defer c.Free()

	orig := new(int)
	freed := false
	c.AddBufptr([]byte("owned"), orig, func(any) { freed = true })

	if !c.BufptrPorigFind(orig) {
		t.Fatalf("expected BufptrPorigFind true")
	}
	if !c.RemoveBufptr(orig) {
		t.Fatalf("expected RemoveBufptr true")
	}
	if !freed {
		t.Fatalf("expected free function invoked")
	}
	if c.BufptrPorigFind(orig) {
		t.Fatalf("expected BufptrPorigFind false after removal")
	}
}

func TestCopyTo(t *testing.T) {
	src := New()
	defer src.Free()
	src.AddBuffer([]byte("source payload"))

	dst := New()
	defer dst.Free()

	if err := src.CopyTo(dst, 0, -1, nil); err != nil {
		t.Fatalf("CopyTo: %v", err)
	}
	if dst.Size() != src.Size() {
		t.Fatalf("dst size = %d, want %d", dst.Size(), src.Size())
	}
	got := make([]byte, dst.Size())
	if _, err := dst.Read(got, 0); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "source payload" {
		t.Fatalf("got %q", got)
	}
}
