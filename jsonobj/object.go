// Package jsonobj implements a hierarchical key/value tree — JSON by
// default, but with a configurable "conf"-style separator set,
// optional comment retention, and a dotted-path access contract — used
// both as a permissive JSON decoder and as a general config-file
// format. Grounded on the original source's json.h/json.c.
package jsonobj

import (
	"strings"

	"github.com/adifgo/adif/bytesutil"
)

// SepType selects the key/value and item separators a syntax uses.
type SepType int

const (
	// SepStandard is JSON's own syntax: ':' key/value, ',' item end.
	SepStandard SepType = iota
	// SepConf is the conf-file syntax: '=' key/value, ';' item end.
	SepConf
)

func (s SepType) kvSep() byte {
	if s == SepConf {
		return '='
	}
	return ':'
}

func (s SepType) itemSep() byte {
	if s == SepConf {
		return ';'
	}
	return ','
}

func (s SepType) keyEnd() []byte {
	if s == SepConf {
		return []byte("=;}")
	}
	return []byte(":,}")
}

func (s SepType) arrayEnd() []byte {
	if s == SepConf {
		return []byte(",];}")
	}
	return []byte(",]}")
}

func (s SepType) kvEnd() []byte {
	if s == SepConf {
		return []byte(";}")
	}
	return []byte(",}")
}

// CommentMode controls how '#...' and '/*...*/' comments are handled.
type CommentMode int

const (
	// CommentNone disables comment recognition entirely.
	CommentNone CommentMode = iota
	// CommentSkip silently discards comments.
	CommentSkip
	// CommentRetain stores comments as pseudo-items under keys
	// "cmt#" (line comments) and "cmt*" (block comments).
	CommentRetain
)

// CmtHashKey and CmtBlockKey are the original format's wire-visible
// keys used to retain comments when CommentRetain is configured.
const (
	CmtHashKey  = "cmt#"
	CmtBlockKey = "cmt*"
)

// ValueKind distinguishes the three shapes a Value can hold.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueObject
	ValueArray
)

// Value is one value slot: a raw string, a nested Object, or an array
// of Values (array elements are themselves either objects or strings,
// per the grammar).
type Value struct {
	Kind ValueKind
	Str  []byte
	Obj  *Object
	Arr  []*Value
}

func stringValue(b []byte) *Value { return &Value{Kind: ValueString, Str: b} }
func objectValue(o *Object) *Value { return &Value{Kind: ValueObject, Obj: o} }
func arrayValue(v []*Value) *Value { return &Value{Kind: ValueArray, Arr: v} }

// Item is one key with one or more Values. Multiple Values occur only
// when the Object's sibCoexist policy keeps repeated keys instead of
// overwriting them.
type Item struct {
	Key    string
	Values []*Value
}

// Object is a JHD tree node: an ordered list of Items under a fixed
// syntax configuration. The zero value is not usable; use New.
type Object struct {
	Sep        SepType
	Comment    CommentMode
	SibCoexist bool

	items []*Item
	index map[string][]int // key -> positions in items, preserving insertion order
}

// New returns an empty Object configured with the given syntax.
func New(sep SepType, comment CommentMode, sibCoexist bool) *Object {
	return &Object{Sep: sep, Comment: comment, SibCoexist: sibCoexist, index: make(map[string][]int)}
}

// Add inserts val under key. If isArray is set, val is stored as a
// one-element array even when no sibling yet exists. Repeated Add
// calls for the same key either overwrite (SibCoexist=false) or
// accumulate as siblings (SibCoexist=true), per the syntax policy.
func (o *Object) Add(key string, val *Value, isArray bool, strip bool) {
	if strip && val != nil && val.Kind == ValueString {
		val = stringValue(stripBytes(val.Str))
	}
	if isArray && val != nil && val.Kind != ValueArray {
		val = arrayValue([]*Value{val})
	}

	if idxs, ok := o.index[key]; ok && len(idxs) > 0 {
		if o.SibCoexist {
			o.items[idxs[0]].Values = append(o.items[idxs[0]].Values, val)
			return
		}
		o.items[idxs[len(idxs)-1]].Values = []*Value{val}
		return
	}

	o.items = append(o.items, &Item{Key: key, Values: []*Value{val}})
	o.index[key] = []int{len(o.items) - 1}
}

// AddString is a convenience wrapper over Add for string values.
func (o *Object) AddString(key string, val []byte, strip bool) {
	o.Add(key, stringValue(val), false, strip)
}

// AddObject nests a child Object under key.
func (o *Object) AddObject(key string, child *Object) {
	o.Add(key, objectValue(child), false, false)
}

// Append concatenates val onto every existing string Value stored
// under key. It is a no-op (returns false) if key has no string
// values.
func (o *Object) Append(key string, val []byte, strip bool) bool {
	if strip {
		val = stripBytes(val)
	}
	idxs, ok := o.index[key]
	if !ok {
		return false
	}
	found := false
	for _, pos := range idxs {
		for _, v := range o.items[pos].Values {
			if v.Kind == ValueString {
				v.Str = append(v.Str, val...)
				found = true
			}
		}
	}
	return found
}

// Del removes every Item stored under key, reporting whether any
// existed.
func (o *Object) Del(key string) bool {
	idxs, ok := o.index[key]
	if !ok || len(idxs) == 0 {
		return false
	}
	remove := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		remove[i] = true
	}
	newItems := o.items[:0:0]
	for i, it := range o.items {
		if !remove[i] {
			newItems = append(newItems, it)
		}
	}
	o.items = newItems
	delete(o.index, key)
	o.reindex()
	return true
}

func (o *Object) reindex() {
	o.index = make(map[string][]int, len(o.items))
	for i, it := range o.items {
		o.index[it.Key] = append(o.index[it.Key], i)
	}
}

// Get returns the index'th Value stored under key: across sibling
// Values if the key has more than one (SibCoexist), or into a single
// literal array Value's elements otherwise.
func (o *Object) Get(key string, index int) (*Value, bool) {
	it, ok := o.findItemAll(key)
	if !ok {
		return nil, false
	}
	return resolveIndexed(flattenValues(it), index, true)
}

// resolveIndexed picks the Value a subscript selects from flat: when
// flat holds a single literal array Value, the subscript indexes that
// array's elements; otherwise it indexes across flat itself (sibling
// coexistence). hasIdx=false always selects the first Value.
func resolveIndexed(flat []*Value, idx int, hasIdx bool) (*Value, bool) {
	if len(flat) == 0 {
		return nil, false
	}
	if !hasIdx {
		return flat[0], true
	}
	if len(flat) == 1 && flat[0].Kind == ValueArray {
		arr := flat[0].Arr
		pos := idx
		if pos < 0 {
			pos = len(arr) + pos
		}
		if pos < 0 || pos >= len(arr) {
			return nil, false
		}
		return arr[pos], true
	}
	pos := idx
	if pos < 0 {
		pos = len(flat) + pos
	}
	if pos < 0 || pos >= len(flat) {
		return nil, false
	}
	return flat[pos], true
}

// findItemAll gathers every Item stored under key (siblings included)
// in insertion order.
func (o *Object) findItemAll(key string) ([]*Item, bool) {
	idxs, ok := o.index[key]
	if !ok || len(idxs) == 0 {
		return nil, false
	}
	out := make([]*Item, len(idxs))
	for i, pos := range idxs {
		out[i] = o.items[pos]
	}
	return out, true
}

func flattenValues(items []*Item) []*Value {
	var out []*Value
	for _, it := range items {
		out = append(out, it.Values...)
	}
	return out
}

// GetString returns the string form of Get(key, index)'s Value.
func (o *Object) GetString(key string, index int) (string, bool) {
	v, ok := o.Get(key, index)
	if !ok || v.Kind != ValueString {
		return "", false
	}
	return string(v.Str), true
}

// GetObj returns the child Object under key at the given sibling
// index, if that Value is itself an object.
func (o *Object) GetObj(key string, index int) (*Object, bool) {
	v, ok := o.Get(key, index)
	if !ok || v.Kind != ValueObject {
		return nil, false
	}
	return v.Obj, true
}

// Items returns the Object's items in insertion order. The returned
// slice must not be mutated by the caller.
func (o *Object) Items() []*Item {
	return o.items
}

// Iter returns the valIndex'th Value of the itemIndex'th Item, or
// false once either index runs out.
func (o *Object) Iter(itemIndex, valIndex int) (key string, val *Value, ok bool) {
	if itemIndex < 0 || itemIndex >= len(o.items) {
		return "", nil, false
	}
	it := o.items[itemIndex]
	if valIndex < 0 || valIndex >= len(it.Values) {
		return "", nil, false
	}
	return it.Key, it.Values[valIndex], true
}

// splitDotted splits a dotted path like "a.b[2].c" into segments
// ("a", "b[2]", "c").
func splitDotted(path string) []string {
	return strings.Split(path, ".")
}

// parseSubscript splits "key[n]" into ("key", n, true) or returns
// (key, 0, false) if there is no subscript. n == -1 means "last".
func parseSubscript(seg string) (key string, idx int, hasIdx bool) {
	open := strings.IndexByte(seg, '[')
	if open < 0 || !strings.HasSuffix(seg, "]") {
		return seg, 0, false
	}
	key = seg[:open]
	inner := seg[open+1 : len(seg)-1]
	if inner == "" {
		return key, 0, false
	}
	if inner == "-1" {
		return key, -1, true
	}
	n := 0
	for _, c := range inner {
		if c < '0' || c > '9' {
			return key, 0, false
		}
		n = n*10 + int(c-'0')
	}
	return key, n, true
}

// MGet resolves a dotted path (with optional [n]/[-1] subscripts) to
// a single Value.
func (o *Object) MGet(dotted string) (*Value, bool) {
	segs := splitDotted(dotted)
	cur := o
	for i, seg := range segs {
		key, idx, hasIdx := parseSubscript(seg)
		last := i == len(segs)-1

		it, ok := cur.findItemAll(key)
		if !ok {
			return nil, false
		}
		v, ok := resolveIndexed(flattenValues(it), idx, hasIdx)
		if !ok {
			return nil, false
		}

		if last {
			return v, true
		}
		if v.Kind != ValueObject {
			return nil, false
		}
		cur = v.Obj
	}
	return nil, false
}

// MGetObj is MGet specialized to a child Object.
func (o *Object) MGetObj(dotted string) (*Object, bool) {
	v, ok := o.MGet(dotted)
	if !ok || v.Kind != ValueObject {
		return nil, false
	}
	return v.Obj, true
}

// MDel deletes along a dotted path. A terminal segment with no
// subscript, or an empty "[]" subscript, deletes every sibling stored
// under that key; "[n]"/"[-1]" deletes only that one element.
func (o *Object) MDel(dotted string) bool {
	segs := splitDotted(dotted)
	cur := o
	for i, seg := range segs {
		key, idx, hasIdx := parseSubscript(seg)
		last := i == len(segs)-1

		if last {
			if !hasIdx {
				return cur.Del(key)
			}
			return cur.delOne(key, idx)
		}

		items, ok := cur.findItemAll(key)
		if !ok {
			return false
		}
		v, ok := resolveIndexed(flattenValues(items), idx, hasIdx)
		if !ok || v.Kind != ValueObject {
			return false
		}
		cur = v.Obj
	}
	return false
}

// delOne removes the idx'th element stored under key: an element of a
// single literal array Value if that's what key holds, otherwise the
// idx'th sibling Value.
func (o *Object) delOne(key string, idx int) bool {
	items, ok := o.findItemAll(key)
	if !ok {
		return false
	}
	flat := flattenValues(items)
	if len(flat) == 1 && flat[0].Kind == ValueArray {
		arr := flat[0].Arr
		pos := idx
		if pos < 0 {
			pos = len(arr) + pos
		}
		if pos < 0 || pos >= len(arr) {
			return false
		}
		flat[0].Arr = append(arr[:pos], arr[pos+1:]...)
		return true
	}

	pos := idx
	if pos < 0 {
		pos = len(flat) + pos
	}
	if pos < 0 || pos >= len(flat) {
		return false
	}
	remaining := pos
	for _, it := range items {
		if remaining < len(it.Values) {
			it.Values = append(it.Values[:remaining], it.Values[remaining+1:]...)
			if len(it.Values) == 0 {
				o.Del(key)
			}
			return true
		}
		remaining -= len(it.Values)
	}
	return false
}

func stripBytes(b []byte) []byte {
	return bytesutil.Strip(b)
}
