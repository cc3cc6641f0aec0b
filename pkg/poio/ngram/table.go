package ngram

import "encoding/binary"

const idWidth = 4

// Table counts fixed-length id sequences. Entries keep the order in which
// their n-gram was first seen. Count, Len and Total may run concurrently with
// each other; Add and Prune need exclusive access.
type Table struct {
	size    int
	index   map[string]int
	entries []entry
	keyBuf  []byte
}

type entry struct {
	ids   []ID
	count uint64
}

// NewTable creates an empty table for n-grams of the given size.
func NewTable(size int) *Table {
	return &Table{
		size:   size,
		index:  make(map[string]int),
		keyBuf: make([]byte, size*idWidth),
	}
}

// Size returns the n-gram length.
func (t *Table) Size() int {
	return t.size
}

// Len returns the number of distinct n-grams.
func (t *Table) Len() int {
	return len(t.entries)
}

// appendKey appends the encoded ids to dst.
func appendKey(dst []byte, ids []ID) []byte {
	for _, id := range ids {
		dst = binary.BigEndian.AppendUint32(dst, uint32(id))
	}
	return dst
}

// key encodes ids into the table's scratch buffer. Only writers use it.
func (t *Table) key(ids []ID) []byte {
	t.keyBuf = appendKey(t.keyBuf[:0], ids)
	return t.keyBuf
}

// Add increments the count of ids by delta. ids is copied, never retained.
func (t *Table) Add(ids []ID, delta uint64) {
	k := t.key(ids)
	if pos, ok := t.index[string(k)]; ok {
		t.entries[pos].count += delta
		return
	}
	owned := make([]ID, len(ids))
	copy(owned, ids)
	t.index[string(k)] = len(t.entries)
	t.entries = append(t.entries, entry{ids: owned, count: delta})
}

// Count returns the count of ids.
func (t *Table) Count(ids []ID) uint64 {
	if len(ids) != t.size {
		return 0
	}
	var buf [4 * idWidth]byte
	if pos, ok := t.index[string(appendKey(buf[:0], ids))]; ok {
		return t.entries[pos].count
	}
	return 0
}

// Total returns the sum of all counts.
func (t *Table) Total() uint64 {
	var total uint64
	for _, e := range t.entries {
		total += e.count
	}
	return total
}

// Prune removes every entry whose count is below threshold and returns the
// number of removed entries. Surviving entries keep their relative order.
func (t *Table) Prune(threshold uint64) int {
	kept := t.entries[:0]
	for _, e := range t.entries {
		if e.count >= threshold {
			kept = append(kept, e)
		}
	}
	removed := len(t.entries) - len(kept)
	if removed == 0 {
		return 0
	}
	for i := len(kept); i < len(t.entries); i++ {
		t.entries[i] = entry{}
	}
	t.entries = kept

	t.index = make(map[string]int, len(kept))
	for pos, e := range kept {
		t.index[string(t.key(e.ids))] = pos
	}
	return removed
}

// each calls fn for every entry in first-seen order until fn returns false.
func (t *Table) each(fn func(ids []ID, count uint64) bool) {
	for _, e := range t.entries {
		if !fn(e.ids, e.count) {
			return
		}
	}
}
