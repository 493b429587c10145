package filecache

import "github.com/adifgo/adif/bytesutil"

const skipWindowInit = 4096

// readRange blocks until it has read up to n bytes starting at pos,
// returning fewer only at the medium's end.
func (c *Cache) readRange(pos, n int64) ([]byte, error) {
	c.Seek(pos)
	buf := make([]byte, n)
	var total int64
	for total < n {
		m, err := c.Recv(buf[total:], 0)
		if err != nil {
			return buf[:total], err
		}
		if m == 0 {
			break
		}
		total += int64(m)
	}
	return buf[:total], nil
}

// materializeForward returns up to limit raw bytes starting at pos
// (limit < 0 means "to the medium's end"), growing the read window
// when the medium's length is unknown.
func (c *Cache) materializeForward(pos, limit int64) ([]byte, error) {
	if limit >= 0 {
		return c.readRange(pos, limit)
	}
	if length := c.FileSize(); length >= 0 {
		return c.readRange(pos, length-pos)
	}
	want := int64(skipWindowInit)
	for {
		buf, err := c.readRange(pos, want)
		if err != nil {
			return buf, err
		}
		if int64(len(buf)) < want {
			return buf, nil
		}
		want *= 2
	}
}

func (c *Cache) materializeBackward(pos, limit int64) (buf []byte, start int64, err error) {
	start = 0
	if limit >= 0 {
		s := pos - limit + 1
		if s > 0 {
			start = s
		}
	}
	n := pos - start + 1
	if n <= 0 {
		return nil, start, nil
	}
	buf, err = c.readRange(start, n)
	return buf, start, err
}

// SkipOver advances from pos while the byte there is a member of
// charset, for at most limit bytes (limit < 0 means to the medium's
// end), crossing pack boundaries as needed.
func (c *Cache) SkipOver(pos, limit int64, charset []byte) (int64, error) {
	buf, err := c.materializeForward(pos, limit)
	if err != nil {
		return pos, err
	}
	end := bytesutil.SkipOver(buf, 0, -1, charset)
	return pos + int64(end), nil
}

// SkipTo advances from pos until the byte there is a member of
// charset, for at most limit bytes.
func (c *Cache) SkipTo(pos, limit int64, charset []byte) (int64, error) {
	buf, err := c.materializeForward(pos, limit)
	if err != nil {
		return pos, err
	}
	end := bytesutil.SkipTo(buf, 0, -1, charset)
	return pos + int64(end), nil
}

// SkipEscTo is SkipTo, but a backslash escapes the byte that follows
// it.
func (c *Cache) SkipEscTo(pos, limit int64, charset []byte) (int64, error) {
	buf, err := c.materializeForward(pos, limit)
	if err != nil {
		return pos, err
	}
	end := bytesutil.SkipEscTo(buf, 0, -1, charset)
	return pos + int64(end), nil
}

// SkipQuoteTo is SkipTo, but treats a '...' or "..." run as opaque.
func (c *Cache) SkipQuoteTo(pos, limit int64, charset []byte) (int64, error) {
	buf, err := c.materializeForward(pos, limit)
	if err != nil {
		return pos, err
	}
	end := bytesutil.SkipQuoteTo(buf, 0, -1, charset)
	return pos + int64(end), nil
}

// RSkipOver scans backward from pos (inclusive) while the byte there
// is a member of charset, for at most limit bytes.
func (c *Cache) RSkipOver(pos, limit int64, charset []byte) (int64, error) {
	buf, start, err := c.materializeBackward(pos, limit)
	if err != nil {
		return pos, err
	}
	rel := bytesutil.RSkipOver(buf, int(pos-start), -1, charset)
	return start + int64(rel), nil
}

// RSkipTo scans backward from pos (inclusive) until the byte there is
// a member of charset, for at most limit bytes.
func (c *Cache) RSkipTo(pos, limit int64, charset []byte) (int64, error) {
	buf, start, err := c.materializeBackward(pos, limit)
	if err != nil {
		return pos, err
	}
	rel := bytesutil.RSkipTo(buf, int(pos-start), -1, charset)
	return start + int64(rel), nil
}
