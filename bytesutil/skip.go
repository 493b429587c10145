// Package bytesutil implements the byte-level scanning and escaping
// primitives shared by chunk, filecache and jsonobj: skip-over/skip-to
// character-class scans, quoted-string and balanced-brace aware
// variants, backslash escape/strip, percent-encoding and HTML
// escaping. These are pure functions operating on logical byte
// positions, grounded on the original source's strutil.c
// (skipOver/skipTo/skipQuoteTo/skipEscTo/skipToPeer/rskipOver/rskipTo).
package bytesutil

// SkipOver advances from pos while buf[pos] is one of charset's bytes,
// for at most limit bytes (limit < 0 means "to the end of buf"). It
// returns the index of the first byte not in charset, or the stopping
// index if limit was exhausted.
func SkipOver(buf []byte, pos, limit int, charset []byte) int {
	end := boundedEnd(len(buf), pos, limit)
	i := pos
	for i < end && indexByte(charset, buf[i]) {
		i++
	}
	return i
}

// SkipTo advances from pos until buf[pos] is one of charset's bytes,
// for at most limit bytes. It returns the index of the first matching
// byte, or the stopping index if none was found.
func SkipTo(buf []byte, pos, limit int, charset []byte) int {
	end := boundedEnd(len(buf), pos, limit)
	i := pos
	for i < end && !indexByte(charset, buf[i]) {
		i++
	}
	return i
}

// SkipEscTo behaves like SkipTo but treats a backslash as escaping the
// byte that follows it, so an escaped stop character does not
// terminate the scan.
func SkipEscTo(buf []byte, pos, limit int, charset []byte) int {
	end := boundedEnd(len(buf), pos, limit)
	i := pos
	for i < end {
		if buf[i] == '\\' {
			i += 2
			continue
		}
		if indexByte(charset, buf[i]) {
			return i
		}
		i++
	}
	if i > end {
		return end
	}
	return i
}

// SkipQuoteTo behaves like SkipTo but treats a '...' or "..." run as
// opaque (honoring backslash escapes inside it), so stop characters
// inside a quoted region never terminate the scan.
func SkipQuoteTo(buf []byte, pos, limit int, charset []byte) int {
	end := boundedEnd(len(buf), pos, limit)
	i := pos
	for i < end {
		if buf[i] == '\\' && i+1 < end {
			i += 2
			continue
		}
		if indexByte(charset, buf[i]) {
			return i
		}
		if buf[i] == '"' || buf[i] == '\'' {
			qlen := quotedLen(buf, i, end)
			i += qlen
			continue
		}
		i++
	}
	return i
}

// quotedLen returns the length, including both quote bytes, of the
// quoted run starting at buf[pos] (buf[pos] is '"' or '\''), honoring
// backslash escapes. If the quote is never closed before end, the
// remainder of [pos,end) is returned.
func quotedLen(buf []byte, pos, end int) int {
	q := buf[pos]
	i := pos + 1
	for i < end {
		if buf[i] == '\\' && i+1 < end {
			i += 2
			continue
		}
		if buf[i] == q {
			return i + 1 - pos
		}
		i++
	}
	return end - pos
}

// RSkipOver scans backward starting at pos (inclusive) while buf[pos]
// is in charset, for at most limit bytes. It returns the index of the
// first byte (scanning backward) not in charset, which is pos itself
// if buf[pos] is not in charset, or stop-1 if the whole range up to
// the limit was consumed (-1 when that range reaches the start of buf).
func RSkipOver(buf []byte, pos, limit int, charset []byte) int {
	stop := boundedStart(pos, limit)
	i := pos
	for i >= stop && indexByte(charset, buf[i]) {
		i--
	}
	return i
}

// RSkipTo scans backward starting at pos (inclusive) until buf[pos] is
// in charset, for at most limit bytes. It returns the index of the
// first matching byte found scanning backward, or stop-1 if none was
// found within the limit.
func RSkipTo(buf []byte, pos, limit int, charset []byte) int {
	stop := boundedStart(pos, limit)
	i := pos
	for i >= stop && !indexByte(charset, buf[i]) {
		i--
	}
	return i
}

// SkipToPeer treats buf[pos] as an opening bracket (open) and scans
// forward tracking nesting depth, returning the index of the matching
// close byte. It returns -1 if the brackets never balance within buf.
func SkipToPeer(buf []byte, pos int, open, close byte) int {
	if pos < 0 || pos >= len(buf) || buf[pos] != open {
		return -1
	}
	depth := 1
	for i := pos + 1; i < len(buf); i++ {
		switch buf[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func boundedEnd(bufLen, pos, limit int) int {
	if limit < 0 || pos+limit > bufLen {
		return bufLen
	}
	return pos + limit
}

func boundedStart(pos, limit int) int {
	if limit < 0 {
		return 0
	}
	stop := pos - limit + 1
	if stop < 0 {
		return 0
	}
	return stop
}

func indexByte(set []byte, b byte) bool {
	for _, c := range set {
		if c == b {
			return true
		}
	}
	return false
}
