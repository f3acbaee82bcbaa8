package javaobj

import "fmt"

// Handle identifies a referenceable entity within one stream. Handles are
// assigned sequentially from BaseWireHandle in order of first appearance.
type Handle int32

func (h Handle) String() string {
	return fmt.Sprintf("0x%X", int32(h))
}

// handleTable is the decoder side of the handle mechanism: every string,
// class descriptor, class, object and array is appended in the order it
// appears so later TC_REFERENCE records can resolve to it.
type handleTable struct {
	entries []any
}

func (t *handleTable) next() Handle {
	return BaseWireHandle + Handle(len(t.entries))
}

func (t *handleTable) allocate(v any) Handle {
	h := t.next()
	t.entries = append(t.entries, v)
	return h
}

func (t *handleTable) resolve(h Handle) (any, error) {
	i := int64(h) - int64(BaseWireHandle)
	if i < 0 || i >= int64(len(t.entries)) {
		return nil, fmt.Errorf("%w: %s (%d allocated)", ErrHandleResolution, h, len(t.entries))
	}
	return t.entries[i], nil
}

func (t *handleTable) len() int { return len(t.entries) }

// handleMap is the encoder side: it remembers the handle assigned to each
// entity already written so repeats are emitted as TC_REFERENCE. Pointer
// entities are keyed by identity and strings by value.
type handleMap struct {
	handles map[any]Handle
	n       int
}

func newHandleMap() *handleMap {
	return &handleMap{handles: make(map[any]Handle)}
}

func (m *handleMap) newHandle(v any) Handle {
	h := BaseWireHandle + Handle(m.n)
	m.n++
	m.handles[v] = h
	return h
}

func (m *handleMap) findHandle(v any) (Handle, bool) {
	h, ok := m.handles[v]
	return h, ok
}
