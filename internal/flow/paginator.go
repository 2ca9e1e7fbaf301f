package flow

// Stable-cursor pagination over mutable backend collections. A stored index
// is aspirational: it is clamped against the freshly fetched length on every
// dereference. The contract is positional, not identity-based — when a
// concurrent actor mutates the collection, "the item at index i" may change.

// ClampIndex forces idx into [0, length-1]. length must be positive; empty
// collections are handled before indexing.
func ClampIndex(idx, length int) int {
	if idx < 0 {
		return 0
	}
	if idx > length-1 {
		return length - 1
	}
	return idx
}

// Advance computes idx+dir within a collection of the given length. When the
// step would leave [0, length-1] the cursor does not move and moved is
// false, so the caller can emit a first/last-item notice.
func Advance(idx, dir, length int) (newIdx int, moved bool) {
	idx = ClampIndex(idx, length)
	next := idx + dir
	if next < 0 || next > length-1 {
		return idx, false
	}
	return next, true
}

// AfterDelete resolves the cursor after the currently-viewed item was
// removed. With nothing left the cursor is cleared (ok is false). Otherwise
// the index is clamped to min(idx, newLength-1): the successor slides into
// the vacated slot and is the item shown next.
func AfterDelete(idx, newLength int) (newIdx int, ok bool) {
	if newLength <= 0 {
		return 0, false
	}
	return ClampIndex(idx, newLength), true
}
