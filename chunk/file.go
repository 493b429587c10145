package chunk

import (
	"github.com/adifgo/adif/errs"
	"github.com/adifgo/adif/transport"
)

// AddFile appends a File segment reading [offset, offset+length) of
// the file at path. The file is opened and owned by the Chunk; its
// (inode,mtime,size) are sampled immediately as the staleness guard.
// merge is accepted for contract compatibility with the original
// (coalescing adjacent same-file segments) but is not required for
// correctness and is currently a no-op.
func (c *Chunk) AddFile(path string, offset, length int64, merge bool) error {
	nf, err := transport.OpenOSFile(path, transport.FlagRead)
	if err != nil {
		return errs.Wrap(errs.Io, "open file segment", err)
	}
	attr, err := nf.Attr()
	if err != nil {
		nf.Close()
		return errs.Wrap(errs.Io, "stat file segment", err)
	}
	if length < 0 {
		length = attr.Size - offset
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.addSegment(newFileSegmentFromHandle(KindFile, nf, true, path, offset, length, attr), false)
	return nil
}

// AddFileHandle appends a FilePtr segment over an already-open,
// caller-owned NativeFile (the CCB never closes it).
func (c *Chunk) AddFileHandle(nf transport.NativeFile, offset, length int64) error {
	attr, err := nf.Attr()
	if err != nil {
		return errs.Wrap(errs.Io, "stat file handle segment", err)
	}
	if length < 0 {
		length = attr.Size - offset
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.addSegment(newFileSegmentFromHandle(KindFilePtr, nf, false, "", offset, length, attr), false)
	return nil
}

// AddFileFd appends a FileDesc segment over a caller-owned NativeFile
// identified by descriptor semantics (kept distinct from FilePtr only
// by Kind, per the original's CKT_FILE_DESC/CKT_FILE_PTR split).
func (c *Chunk) AddFileFd(nf transport.NativeFile, offset, length int64) error {
	attr, err := nf.Attr()
	if err != nil {
		return errs.Wrap(errs.Io, "stat file descriptor segment", err)
	}
	if length < 0 {
		length = attr.Size - offset
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.addSegment(newFileSegmentFromHandle(KindFileDesc, nf, false, "", offset, length, attr), false)
	return nil
}

// RemoveFile removes every file-backed segment, closing any it owns.
func (c *Chunk) RemoveFile() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var kept []*segment
	for _, s := range c.segments {
		if s.kind == KindFile || s.kind == KindFilePtr || s.kind == KindFileDesc {
			s.release()
			c.fileCount--
			c.rawSize -= s.length
			continue
		}
		kept = append(kept, s)
	}
	c.segments = kept
}
