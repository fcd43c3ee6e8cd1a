package value

import "bytes"

// maxInternLoad is the load factor at which the intern table grows.
const maxInternLoad = 0.75

// tombstoneMarker occupies a deleted slot so probing for a later key never
// stops short at a hole left by a removed entry. Identity, not content,
// marks it: no real ObjString is ever equal to this pointer.
var tombstoneMarker = &ObjString{}

type internEntry struct {
	key *ObjString
}

// InternTable is the VM's string intern set: an open-addressing hash table
// keyed by content (length + cached hash + bytes), queried before any
// *ObjString exists to use as a pointer key. It is a *weak* set for GC
// purposes: membership here never keeps a string alive, and RemoveWhite
// must run between the GC's mark and sweep phases so no dangling pointer
// into a freed string survives.
type InternTable struct {
	entries []internEntry
	count   int // occupied slots, including tombstones
}

// NewInternTable returns an empty intern table.
func NewInternTable() *InternTable { return &InternTable{} }

// FindString looks up chars/hash and returns the canonical ObjString if one
// is already interned, or nil.
func (t *InternTable) FindString(chars []byte, hash uint32) *ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	e := t.probe(t.entries, hash, chars)
	if e.key == nil || e.key == tombstoneMarker {
		return nil
	}
	return e.key
}

// Insert adds s to the table. Callers must have already confirmed (via
// FindString) that no equal-content string is interned.
func (t *InternTable) Insert(s *ObjString) {
	if float64(t.count+1) > float64(len(t.entries))*maxInternLoad {
		t.grow()
	}
	e := t.probe(t.entries, s.Hash, s.Chars)
	isNewSlot := e.key == nil
	if isNewSlot {
		t.count++
	}
	e.key = s
}

// RemoveWhite deletes every entry whose key string is unmarked, i.e. has no
// surviving reference after the GC's mark phase. Must run after mark and
// before sweep: the string is still alive at this point, sweep is what
// will actually free it.
func (t *InternTable) RemoveWhite() {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil && e.key != tombstoneMarker && !e.key.Marked {
			e.key = tombstoneMarker
		}
	}
}

// probe performs the open-addressing walk shared by lookup and insertion:
// linear probing from hash%capacity, skipping over (but remembering) the
// first tombstone seen so insertion can reuse it, stopping at the first
// truly empty slot or an exact content match.
func (t *InternTable) probe(entries []internEntry, hash uint32, chars []byte) *internEntry {
	capacity := len(entries)
	idx := int(hash) % capacity
	var firstTombstone *internEntry
	for {
		e := &entries[idx]
		switch {
		case e.key == nil:
			if firstTombstone != nil {
				return firstTombstone
			}
			return e
		case e.key == tombstoneMarker:
			if firstTombstone == nil {
				firstTombstone = e
			}
		case e.key.Hash == hash && bytes.Equal(e.key.Chars, chars):
			return e
		}
		idx = (idx + 1) % capacity
	}
}

func (t *InternTable) grow() {
	newCap := 8
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	newEntries := make([]internEntry, newCap)
	t.count = 0
	for _, e := range t.entries {
		if e.key == nil || e.key == tombstoneMarker {
			continue
		}
		dst := t.probe(newEntries, e.key.Hash, e.key.Chars)
		dst.key = e.key
		t.count++
	}
	t.entries = newEntries
}
