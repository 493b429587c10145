// Package actrie implements the Aho-Corasick multi-pattern trie: a
// single arena of nodes addressed by index (never by pointer), with
// BFS-built failure links supporting simultaneous multi-pattern
// matching, longest-prefix lookup, and a reverse mode for suffix
// matching. Grounded on the original source's actrie.c/actrie.h.
package actrie

import "sync"

const noChild int32 = -1
const rootIdx int32 = 0

// node is one arena-indexed trie node. parent/fail/children are all
// indices into Trie.nodes, never raw pointers, so the whole trie is a
// single contiguous allocation (spec §9 design note).
type node struct {
	children [256]int32
	parent   int32
	fail     int32
	depth    int

	phraseEnd  bool
	payload    any
	patternLen int
}

func newNode(parent int32, depth int) node {
	n := node{parent: parent, fail: -1, depth: depth}
	for i := range n.children {
		n.children[i] = noChild
	}
	return n
}

// Match describes one pattern occurrence: Pos is the start offset in
// the scanned text, Len its length, Payload the value given to Add.
type Match struct {
	Pos     int
	Len     int
	Payload any
}

// Trie is an Aho-Corasick multi-pattern automaton. The zero value is
// not usable; use New.
type Trie struct {
	mu    sync.Mutex
	nodes []node

	reverse   bool
	failBuilt bool
}

// New returns an empty Trie. When reverse is true, patterns and scan
// input are both matched right-to-left (suffix matching, e.g. domain
// names).
func New(reverse bool) *Trie {
	return &Trie{nodes: []node{newNode(-1, 0)}, reverse: reverse}
}

func reverseBytes(p []byte) []byte {
	out := make([]byte, len(p))
	for i, b := range p {
		out[len(p)-1-i] = b
	}
	return out
}

func (t *Trie) seqFor(p []byte) []byte {
	if t.reverse {
		return reverseBytes(p)
	}
	return p
}

// Add inserts pattern with an arbitrary caller payload, returning the
// index of its terminal node. Re-adding an existing pattern overwrites
// its payload.
func (t *Trie) Add(pattern []byte, payload any) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failBuilt = false

	cur := rootIdx
	seq := t.seqFor(pattern)
	for _, ch := range seq {
		nxt := t.nodes[cur].children[ch]
		if nxt == noChild {
			t.nodes = append(t.nodes, newNode(cur, t.nodes[cur].depth+1))
			nxt = int32(len(t.nodes) - 1)
			t.nodes[cur].children[ch] = nxt
		}
		cur = nxt
	}
	t.nodes[cur].phraseEnd = true
	t.nodes[cur].payload = payload
	t.nodes[cur].patternLen = len(pattern)
	return int(cur)
}

// Del removes pattern's terminal marking (a soft delete: shared prefix
// nodes used by other patterns are never pruned). It reports whether
// pattern had been present.
func (t *Trie) Del(pattern []byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := rootIdx
	seq := t.seqFor(pattern)
	for _, ch := range seq {
		nxt := t.nodes[cur].children[ch]
		if nxt == noChild {
			return false
		}
		cur = nxt
	}
	if !t.nodes[cur].phraseEnd {
		return false
	}
	t.nodes[cur].phraseEnd = false
	t.nodes[cur].payload = nil
	t.nodes[cur].patternLen = 0
	return true
}

// Get performs a longest-key lookup: it walks p from the root
// following exact child transitions and returns the payload of the
// deepest phrase-end node encountered, i.e. the longest previously
// added pattern that is a prefix of p.
func (t *Trie) Get(p []byte) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := rootIdx
	seq := t.seqFor(p)
	var best any
	found := false
	for _, ch := range seq {
		nxt := t.nodes[cur].children[ch]
		if nxt == noChild {
			break
		}
		cur = nxt
		if t.nodes[cur].phraseEnd {
			best = t.nodes[cur].payload
			found = true
		}
	}
	return best, found
}

// FailJump (re)builds the trie's failure links via a BFS from the
// root. Add/Del invalidate the previously built links; Match/
// FwMaxMatch/MatchAll call this automatically if needed.
func (t *Trie) FailJump() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buildFailLocked()
}

func (t *Trie) buildFailLocked() {
	queue := make([]int32, 0, len(t.nodes))
	t.nodes[rootIdx].fail = rootIdx
	for ch := 0; ch < 256; ch++ {
		c := t.nodes[rootIdx].children[ch]
		if c == noChild {
			continue
		}
		t.nodes[c].fail = rootIdx
		queue = append(queue, c)
	}

	for qi := 0; qi < len(queue); qi++ {
		u := queue[qi]
		for ch := 0; ch < 256; ch++ {
			c := t.nodes[u].children[ch]
			if c == noChild {
				continue
			}
			queue = append(queue, c)

			f := t.nodes[u].fail
			for f != rootIdx && t.nodes[f].children[ch] == noChild {
				f = t.nodes[f].fail
			}
			if target := t.nodes[f].children[ch]; target != noChild && target != c {
				t.nodes[c].fail = target
			} else {
				t.nodes[c].fail = rootIdx
			}
		}
	}
	t.failBuilt = true
}

func (t *Trie) ensureFail() {
	t.mu.Lock()
	built := t.failBuilt
	t.mu.Unlock()
	if !built {
		t.FailJump()
	}
}

// MatchAll scans data once and returns every pattern occurrence, in
// the order the automaton completes them: primarily by end position,
// and for several patterns ending at the same position, deepest
// (longest) first, then along the failure chain toward the root.
func (t *Trie) MatchAll(data []byte) []Match {
	t.ensureFail()

	seq := t.seqFor(data)
	var matches []Match
	cur := rootIdx
	for i, ch := range seq {
		for cur != rootIdx && t.nodes[cur].children[ch] == noChild {
			cur = t.nodes[cur].fail
		}
		if nxt := t.nodes[cur].children[ch]; nxt != noChild {
			cur = nxt
		}
		for f := cur; f != rootIdx; f = t.nodes[f].fail {
			if !t.nodes[f].phraseEnd {
				continue
			}
			matches = append(matches, t.matchAt(i, f, len(data)))
		}
		if t.nodes[rootIdx].phraseEnd {
			// the root itself can be phrase-end only for a zero-length
			// pattern, which Add never produces; nothing to do here.
			_ = i
		}
	}
	return matches
}

func (t *Trie) matchAt(scanIdx int, nodeIdx int32, textLen int) Match {
	n := &t.nodes[nodeIdx]
	if t.reverse {
		start := textLen - scanIdx - 1
		return Match{Pos: start, Len: n.patternLen, Payload: n.payload}
	}
	start := scanIdx - n.patternLen + 1
	return Match{Pos: start, Len: n.patternLen, Payload: n.payload}
}

// Match returns the first occurrence the automaton completes while
// scanning data from position 0, or false if none.
func (t *Trie) Match(data []byte) (Match, bool) {
	t.ensureFail()

	seq := t.seqFor(data)
	cur := rootIdx
	for i, ch := range seq {
		for cur != rootIdx && t.nodes[cur].children[ch] == noChild {
			cur = t.nodes[cur].fail
		}
		if nxt := t.nodes[cur].children[ch]; nxt != noChild {
			cur = nxt
		}
		for f := cur; f != rootIdx; f = t.nodes[f].fail {
			if t.nodes[f].phraseEnd {
				return t.matchAt(i, f, len(data)), true
			}
		}
	}
	return Match{}, false
}

// FwMaxMatch scans the whole of data and returns the longest
// occurrence found anywhere, or false if none.
func (t *Trie) FwMaxMatch(data []byte) (Match, bool) {
	var best Match
	found := false
	for _, m := range t.MatchAll(data) {
		if !found || m.Len > best.Len {
			best = m
			found = true
		}
	}
	return best, found
}
