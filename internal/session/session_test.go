package session

import "testing"

func TestGetReturnsSnapshot(t *testing.T) {
	s := NewStore()
	key := Key{ChatID: 1, UserID: 2}

	// Unknown key yields a zero state.
	if st := s.Get(key); st.Phase != PhaseNone || st.Cursors != nil {
		t.Fatalf("expected zero state, got %+v", st)
	}

	s.Update(key, func(st *State) {
		st.Phase = PhaseWaitingForTestName
	})

	// Mutating the snapshot must not leak back into the store.
	snap := s.Get(key)
	snap.Phase = PhaseRunningQuiz
	if got := s.Get(key).Phase; got != PhaseWaitingForTestName {
		t.Errorf("snapshot mutation leaked into store: %q", got)
	}
}

func TestUpdateMergesSlots(t *testing.T) {
	s := NewStore()
	key := Key{ChatID: 1, UserID: 2}

	s.Update(key, func(st *State) {
		st.Phase = PhaseEditingTest
		st.Draft = &TestDraft{Name: "Draft"}
	})
	s.Update(key, func(st *State) {
		st.PendingVariant = "variant"
	})

	st := s.Get(key)
	if st.Phase != PhaseEditingTest || st.Draft == nil || st.PendingVariant != "variant" {
		t.Fatalf("expected merged state, got %+v", st)
	}
}

func TestCursorHelpers(t *testing.T) {
	var st State

	if got := st.Cursor(CollectionTests); got != 0 {
		t.Errorf("expected 0 for unset cursor, got %d", got)
	}

	st.SetCursor(CollectionTests, 3)
	st.SetCursor(CollectionUsers, 1)
	if got := st.Cursor(CollectionTests); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}

	st.ClearCursor(CollectionTests)
	if got := st.Cursor(CollectionTests); got != 0 {
		t.Errorf("expected cleared cursor, got %d", got)
	}
	if got := st.Cursor(CollectionUsers); got != 1 {
		t.Errorf("expected other cursor untouched, got %d", got)
	}
}

func TestCursorOnSnapshot(t *testing.T) {
	s := NewStore()
	key := Key{ChatID: 1, UserID: 2}

	s.Update(key, func(st *State) { st.SetCursor(CollectionTests, 2) })

	// Cursor must be callable directly on the value Get returns.
	if got := s.Get(key).Cursor(CollectionTests); got != 2 {
		t.Errorf("expected cursor 2 from snapshot, got %d", got)
	}
}

func TestClearDropsKeyOnly(t *testing.T) {
	s := NewStore()
	a := Key{ChatID: 1, UserID: 1}
	b := Key{ChatID: 2, UserID: 2}

	s.Update(a, func(st *State) { st.Phase = PhaseRunningQuiz })
	s.Update(b, func(st *State) { st.Phase = PhaseWaitingForName })

	s.Clear(a)
	if got := s.Get(a).Phase; got != PhaseNone {
		t.Errorf("expected cleared state for a, got %q", got)
	}
	if got := s.Get(b).Phase; got != PhaseWaitingForName {
		t.Errorf("expected b untouched, got %q", got)
	}
}
