package jsonobj

import (
	"strings"

	"github.com/adifgo/adif/errs"
	"github.com/adifgo/adif/transport"
	"github.com/valyala/fastjson"
)

const (
	scriptKey      = "script"
	replyScriptKey = "reply_script"
)

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func inSet(b byte, set []byte) bool {
	for _, c := range set {
		if c == b {
			return true
		}
	}
	return false
}

// Decode parses data into o per o's configured syntax, returning the
// number of bytes consumed. Unterminated input stops at EOF and
// returns a non-nil error, but whatever was successfully parsed
// beforehand remains in o (spec.md's "partial results are retained").
func Decode(sep SepType, comment CommentMode, sibCoexist bool, data []byte, findObjBegin bool, strip bool) (*Object, int, error) {
	obj := New(sep, comment, sibCoexist)
	n, err := obj.Decode(data, findObjBegin, strip)
	return obj, n, err
}

// Decode is the Object method form: it parses data into the receiver
// (which may already hold items, e.g. from a prior include), using
// the receiver's own Sep/Comment/SibCoexist configuration.
func (o *Object) Decode(data []byte, findObjBegin bool, strip bool) (int, error) {
	if o.Sep == SepStandard && o.Comment == CommentNone && !findObjBegin {
		if n, ok := o.decodeFast(data); ok {
			return n, nil
		}
	}

	d := &decoder{data: data, strip: strip}
	if findObjBegin {
		for d.pos < len(d.data) && d.data[d.pos] != '{' {
			d.pos++
		}
	}
	if d.pos < len(d.data) && d.data[d.pos] == '{' {
		d.pos++
	} else if findObjBegin {
		return d.pos, errs.New(errs.UnexpectedEof, "no object start found")
	}
	err := d.decodeObjectBody(o)
	return d.pos, err
}

type decoder struct {
	data  []byte
	pos   int
	strip bool
}

func (d *decoder) eof() bool { return d.pos >= len(d.data) }
func (d *decoder) cur() byte { return d.data[d.pos] }

func (d *decoder) skipWS() {
	for !d.eof() && isWhitespace(d.cur()) {
		d.pos++
	}
}

func (d *decoder) hasPrefix(s string) bool {
	return strings.HasPrefix(string(d.data[d.pos:]), s)
}

// decodeObjectBody parses the contents of an object (the caller has
// already consumed the opening '{') up to and including its closing
// '}', populating o.
func (d *decoder) decodeObjectBody(o *Object) error {
	for {
		d.skipWS()
		if d.eof() {
			return errs.New(errs.UnexpectedEof, "unterminated object")
		}
		if d.cur() == '}' {
			d.pos++
			return nil
		}
		if d.cur() == o.Sep.itemSep() {
			d.pos++
			continue
		}

		if handled, err := d.tryComment(o); handled {
			if err != nil {
				return err
			}
			continue
		}

		if handled, err := d.tryTagItem(o); handled {
			if err != nil {
				return err
			}
			continue
		}

		key, ok := d.parseKey(o.Sep)
		if !ok {
			return errs.New(errs.UnexpectedEof, "unterminated key")
		}
		d.skipWS()

		switch {
		case !d.eof() && d.cur() == o.Sep.kvSep():
			d.pos++
			val, err := d.parseValue(o, key)
			if err != nil {
				return err
			}
			o.Add(key, val, false, d.strip)
		case key == "include":
			start := d.pos
			end := d.scanTo(start, []byte("\r\n"))
			end = d.trimToKvEnd(start, end, o.Sep)
			path := strings.TrimSpace(string(d.data[start:end]))
			d.pos = end
			o.includeFile(path)
		default:
			o.Add(key, stringValue(nil), false, false)
		}
	}
}

// trimToKvEnd shortens [start,end) to stop at the first kv-end
// character, so an include path sharing a line with the next item
// isn't swallowed.
func (d *decoder) trimToKvEnd(start, end int, sep SepType) int {
	for i := start; i < end; i++ {
		if inSet(d.data[i], sep.kvEnd()) {
			return i
		}
	}
	return end
}

func (d *decoder) scanTo(pos int, set []byte) int {
	i := pos
	for i < len(d.data) && !inSet(d.data[i], set) {
		i++
	}
	return i
}

// tryComment consumes a '#...' or '/*...*/' comment at the current
// position if comments are enabled, optionally retaining it as a
// pseudo-item.
func (d *decoder) tryComment(o *Object) (bool, error) {
	if o.Comment == CommentNone || d.eof() {
		return false, nil
	}
	switch {
	case d.cur() == '#':
		start := d.pos
		end := d.scanTo(start, []byte("\n"))
		if o.Comment == CommentRetain {
			o.appendRaw(CmtHashKey, stringValue(trimSpace(d.data[start+1:end])))
		}
		d.pos = end
		return true, nil
	case d.hasPrefix("/*"):
		start := d.pos + 2
		rel := strings.Index(string(d.data[start:]), "*/")
		if rel < 0 {
			d.pos = len(d.data)
			return true, errs.New(errs.UnexpectedEof, "unterminated block comment")
		}
		end := start + rel
		if o.Comment == CommentRetain {
			o.appendRaw(CmtBlockKey, stringValue(trimSpace(d.data[start:end])))
		}
		d.pos = end + 2
		return true, nil
	}
	return false, nil
}

func trimSpace(b []byte) []byte {
	return []byte(strings.TrimSpace(string(b)))
}

// tryTagItem recognizes a standalone <script>...</script> or
// <reply_script>...</reply_script> item (not introduced by a key).
func (d *decoder) tryTagItem(o *Object) (bool, error) {
	for _, tag := range []string{scriptKey, replyScriptKey} {
		open := "<" + tag + ">"
		if !d.hasPrefix(open) {
			continue
		}
		closeTag := "</" + tag + ">"
		start := d.pos + len(open)
		rel := strings.Index(string(d.data[start:]), closeTag)
		if rel < 0 {
			d.pos = len(d.data)
			return true, errs.New(errs.UnexpectedEof, "unterminated "+open+" block")
		}
		end := start + rel
		o.Add(tag, stringValue(trimSpace(d.data[start:end])), false, false)
		d.pos = end + len(closeTag)
		return true, nil
	}
	return false, nil
}

// parseKey parses either a quoted key ("..."/'...') or an unquoted
// identifier terminated by sep's key-end set.
func (d *decoder) parseKey(sep SepType) (string, bool) {
	if d.eof() {
		return "", false
	}
	if d.cur() == '"' || d.cur() == '\'' {
		s, ok := d.parseQuoted()
		return string(s), ok
	}
	start := d.pos
	end := d.scanToKeyEnd(start, sep.keyEnd())
	if end == start {
		return "", false
	}
	d.pos = end
	return strings.TrimSpace(string(d.data[start:end])), true
}

func (d *decoder) scanToKeyEnd(pos int, set []byte) int {
	i := pos
	for i < len(d.data) && !inSet(d.data[i], set) && !isWhitespace(d.data[i]) {
		i++
	}
	return i
}

func (d *decoder) parseQuoted() ([]byte, bool) {
	quote := d.cur()
	start := d.pos + 1
	i := start
	for i < len(d.data) {
		if d.data[i] == '\\' && i+1 < len(d.data) {
			i += 2
			continue
		}
		if d.data[i] == quote {
			out := d.data[start:i]
			d.pos = i + 1
			return out, true
		}
		i++
	}
	d.pos = len(d.data)
	return nil, false
}

// parseValue parses the value following a kvsep for key.
func (d *decoder) parseValue(o *Object, key string) (*Value, error) {
	d.skipWS()
	if d.eof() {
		return nil, errs.New(errs.UnexpectedEof, "unterminated value")
	}

	switch {
	case (key == scriptKey || key == replyScriptKey) && d.cur() == '{':
		start := d.pos
		end := skipToPeerBytes(d.data, start, '{', '}')
		d.pos = end + 1
		return stringValue(trimSpace(d.data[start+1 : end])), nil

	case d.cur() == '{':
		d.pos++
		child := New(o.Sep, o.Comment, o.SibCoexist)
		if err := d.decodeObjectBody(child); err != nil {
			return objectValue(child), err
		}
		return objectValue(child), nil

	case d.cur() == '[':
		return d.parseArray(o)

	case d.cur() == '"' || d.cur() == '\'':
		s, ok := d.parseQuoted()
		if !ok {
			return stringValue(s), errs.New(errs.UnexpectedEof, "unterminated quoted value")
		}
		if d.strip {
			s = stripBytes(s)
		}
		return stringValue(s), nil

	default:
		start := d.pos
		end := d.scanValueEnd(start, o.Sep.kvEnd())
		val := trimSpace(d.data[start:end])
		d.pos = end
		if d.strip {
			val = stripBytes(val)
		}
		return stringValue(val), nil
	}
}

func (d *decoder) parseArray(o *Object) (*Value, error) {
	d.pos++ // consume '['
	var values []*Value
	for {
		d.skipWS()
		if d.eof() {
			return arrayValue(values), errs.New(errs.UnexpectedEof, "unterminated array")
		}
		if d.cur() == ']' {
			d.pos++
			return arrayValue(values), nil
		}
		if d.cur() == ',' {
			d.pos++
			continue
		}
		if d.cur() == '{' {
			d.pos++
			child := New(o.Sep, o.Comment, o.SibCoexist)
			if err := d.decodeObjectBody(child); err != nil {
				return arrayValue(values), err
			}
			values = append(values, objectValue(child))
			continue
		}
		if d.cur() == '"' || d.cur() == '\'' {
			s, ok := d.parseQuoted()
			if !ok {
				return arrayValue(values), errs.New(errs.UnexpectedEof, "unterminated quoted array element")
			}
			if d.strip {
				s = stripBytes(s)
			}
			values = append(values, stringValue(s))
			continue
		}

		start := d.pos
		end := d.scanValueEnd(start, o.Sep.arrayEnd())
		val := d.data[start:end]
		d.pos = end
		if d.strip {
			val = stripBytes(val)
		}
		values = append(values, stringValue(val))
	}
}

// scanValueEnd scans forward from pos for the first unquoted byte in
// endSet, treating quoted runs as opaque and tolerating an unbalanced
// "${" by requiring its matching '}' to close before a bare '}' in
// endSet is allowed to terminate the scan.
func (d *decoder) scanValueEnd(pos int, endSet []byte) int {
	i := pos
	braceDepth := 0
	for i < len(d.data) {
		c := d.data[i]
		switch {
		case c == '\\' && i+1 < len(d.data):
			i += 2
			continue
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(d.data) && d.data[j] != c {
				if d.data[j] == '\\' && j+1 < len(d.data) {
					j++
				}
				j++
			}
			i = j + 1
			continue
		case c == '$' && i+1 < len(d.data) && d.data[i+1] == '{':
			braceDepth++
			i += 2
			continue
		case c == '}' && braceDepth > 0:
			braceDepth--
			i++
			continue
		case braceDepth == 0 && inSet(c, endSet):
			return i
		}
		i++
	}
	return len(d.data)
}

// skipToPeerBytes finds the byte matching open's balanced close,
// scanning from an index at the opening byte.
func skipToPeerBytes(data []byte, pos int, open, close byte) int {
	depth := 0
	for i := pos; i < len(data); i++ {
		switch data[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(data)
}

func (o *Object) appendRaw(key string, val *Value) {
	o.items = append(o.items, &Item{Key: key, Values: []*Value{val}})
	o.index[key] = append(o.index[key], len(o.items)-1)
}

// includeFile loads and parses path, merging its top-level items into
// o. A missing or unreadable file is skipped silently (as the
// original's json_decode_file does) without aborting the outer parse.
func (o *Object) includeFile(path string) {
	if path == "" {
		return
	}
	nf, err := transport.OpenOSFile(path, transport.FlagRead)
	if err != nil {
		return
	}
	defer nf.Close()

	size, err := nf.Size()
	if err != nil || size == 0 {
		return
	}
	mapping, err := nf.Mmap(0, size)
	if err != nil {
		return
	}
	defer mapping.Close()

	included := New(o.Sep, o.Comment, o.SibCoexist)
	included.Decode(mapping.Bytes(), true, false)
	for _, it := range included.items {
		for _, v := range it.Values {
			o.Add(it.Key, v, false, false)
		}
	}
}

// decodeFast attempts the valyala/fastjson fast path for strict,
// comment-free JSON input; it returns ok=false whenever the input
// isn't fully consumable as one JSON object, letting the caller fall
// back to the permissive hand-written parser.
func (o *Object) decodeFast(data []byte) (int, bool) {
	trimmed := strings.TrimRight(string(data), " \t\r\n")
	if trimmed == "" {
		return 0, false
	}
	var p fastjson.Parser
	v, err := p.Parse(trimmed)
	if err != nil || v.Type() != fastjson.TypeObject {
		return 0, false
	}
	obj := v.GetObject()
	obj.Visit(func(key []byte, val *fastjson.Value) {
		o.Add(string(key), fastToValue(o, val), false, false)
	})
	return len(trimmed), true
}

func fastToValue(o *Object, val *fastjson.Value) *Value {
	switch val.Type() {
	case fastjson.TypeObject:
		child := New(o.Sep, o.Comment, o.SibCoexist)
		val.GetObject().Visit(func(k []byte, v *fastjson.Value) {
			child.Add(string(k), fastToValue(child, v), false, false)
		})
		return objectValue(child)
	case fastjson.TypeArray:
		arr := val.GetArray()
		values := make([]*Value, len(arr))
		for i, e := range arr {
			values[i] = fastToValue(o, e)
		}
		return arrayValue(values)
	case fastjson.TypeString:
		b, _ := val.StringBytes()
		return stringValue(append([]byte(nil), b...))
	case fastjson.TypeNull:
		return stringValue(nil)
	default:
		return stringValue([]byte(val.String()))
	}
}
