package jsonobj

import (
	"bytes"

	"github.com/adifgo/adif/bytesutil"
	goccyjson "github.com/goccy/go-json"
)

// Encode serializes o to its canonical form using its own configured
// separators (':'/',' for SepStandard, '='/';' for SepConf); string
// values are JSON-escaped regardless of syntax. This is the format
// Decode round-trips through, independent of ToJSON.
func (o *Object) Encode() ([]byte, error) {
	var buf bytes.Buffer
	o.encodeBody(&buf)
	return buf.Bytes(), nil
}

func (o *Object) encodeBody(buf *bytes.Buffer) {
	buf.WriteByte('{')
	for i, it := range o.items {
		if i > 0 {
			buf.WriteByte(o.Sep.itemSep())
		}
		encodeKey(buf, it.Key)
		buf.WriteByte(o.Sep.kvSep())
		encodeValues(buf, it.Values, o.Sep)
	}
	buf.WriteByte('}')
}

func encodeKey(buf *bytes.Buffer, key string) {
	buf.WriteByte('"')
	buf.Write(bytesutil.JSONEscape([]byte(key)))
	buf.WriteByte('"')
}

// encodeValues writes an Item's sibling Values: a lone sibling is
// printed bare, two or more are wrapped as a JSON array (the resolved
// arrflag tri-state: see DESIGN.md's Open Questions).
func encodeValues(buf *bytes.Buffer, values []*Value, sep SepType) {
	if len(values) == 1 {
		encodeValue(buf, values[0], sep)
		return
	}
	buf.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodeValue(buf, v, sep)
	}
	buf.WriteByte(']')
}

func encodeValue(buf *bytes.Buffer, v *Value, sep SepType) {
	switch v.Kind {
	case ValueObject:
		v.Obj.encodeBody(buf)
	case ValueArray:
		buf.WriteByte('[')
		for i, e := range v.Arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeValue(buf, e, sep)
		}
		buf.WriteByte(']')
	default:
		buf.WriteByte('"')
		buf.Write(bytesutil.JSONEscape(v.Str))
		buf.WriteByte('"')
	}
}

// ToJSON flattens o to map[string]interface{}/[]interface{} and
// marshals it with goccy/go-json, giving callers an escape hatch into
// the standard encoding/json ecosystem. Encode, not ToJSON, is the
// format Decode round-trips through.
func (o *Object) ToJSON() ([]byte, error) {
	return goccyjson.Marshal(flattenObject(o))
}

func flattenObject(o *Object) map[string]interface{} {
	m := make(map[string]interface{}, len(o.items))
	for _, it := range o.items {
		if len(it.Values) == 1 {
			m[it.Key] = flattenValue(it.Values[0])
			continue
		}
		arr := make([]interface{}, len(it.Values))
		for i, v := range it.Values {
			arr[i] = flattenValue(v)
		}
		m[it.Key] = arr
	}
	return m
}

func flattenValue(v *Value) interface{} {
	switch v.Kind {
	case ValueObject:
		return flattenObject(v.Obj)
	case ValueArray:
		arr := make([]interface{}, len(v.Arr))
		for i, e := range v.Arr {
			arr[i] = flattenValue(e)
		}
		return arr
	default:
		return string(v.Str)
	}
}
