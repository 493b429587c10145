package chunk

// CopyTo copies raw payload bytes [pos, pos+length) from c into dst as
// a single new OwnedBuffer segment, invoking free(orig) once dst later
// releases it. length < 0 copies through the end of c. Mirrors
// chunk_copy.
func (c *Chunk) CopyTo(dst *Chunk, pos, length int64, free FreeFunc) error {
	if length < 0 {
		length = c.rawRemaining(pos)
	}
	buf := make([]byte, length)
	c.mu.Lock()
	n, err := c.readRaw(buf, pos)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	buf = buf[:n]

	dst.mu.Lock()
	defer dst.mu.Unlock()
	dst.addSegment(newOwnedBufferSegment(buf, &buf, free), false)
	return nil
}
