package bytesutil

import "encoding/base64"

// HexUpper renders n as unpadded, upper-case hexadecimal, the form
// chunk's HTTP-chunk framing uses for each segment's size line.
func HexUpper(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = hexDigits[n&0xF]
		n >>= 4
	}
	return string(buf[i:])
}

// ParseHex parses an upper- or lower-case hexadecimal byte run,
// returning the value and the number of bytes consumed. It returns
// ok=false if buf does not start with at least one hex digit.
func ParseHex(buf []byte) (value int, consumed int, ok bool) {
	i := 0
	for i < len(buf) {
		v, good := hexVal(buf[i])
		if !good {
			break
		}
		value = value<<4 | v
		i++
	}
	if i == 0 {
		return 0, 0, false
	}
	return value, i, true
}

// Base64Encode and Base64Decode wrap the standard library's encoder
// with the module's []byte-in/[]byte-out convention.
func Base64Encode(src []byte) []byte {
	dst := make([]byte, base64.StdEncoding.EncodedLen(len(src)))
	base64.StdEncoding.Encode(dst, src)
	return dst
}

func Base64Decode(src []byte) ([]byte, error) {
	dst := make([]byte, base64.StdEncoding.DecodedLen(len(src)))
	n, err := base64.StdEncoding.Decode(dst, src)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}
