// Package session keeps the per-conversation workflow state that stitches
// independent chat events into multi-step interactions.
package session

import "sync"

// Key identifies one ongoing conversation: a user in a chat.
type Key struct {
	ChatID int64
	UserID int64
}

// Phase names the current step of a multi-step wizard. The phase determines
// which State slots are meaningful; everything else is ignored.
type Phase string

const (
	PhaseNone Phase = ""

	// Registration.
	PhaseWaitingForName    Phase = "waiting_for_name"
	PhaseWaitingForSurname Phase = "waiting_for_surname"

	// Lecture publishing.
	PhaseWaitingForLectureName    Phase = "waiting_for_lecture_name"
	PhaseWaitingForLectureFile    Phase = "waiting_for_lecture_file"
	PhaseWaitingForLectureNewName Phase = "waiting_for_lecture_new_name"
	PhaseWaitingForLectureNewFile Phase = "waiting_for_lecture_new_file"

	// Lab publishing and submission.
	PhaseWaitingForLabName        Phase = "waiting_for_lab_name"
	PhaseWaitingForLabFile        Phase = "waiting_for_lab_file"
	PhaseWaitingForLabDescription Phase = "waiting_for_lab_description"
	PhaseWaitingForLabSubmission  Phase = "waiting_for_lab_submission"

	// Test authoring.
	PhaseWaitingForTestName       Phase = "waiting_for_test_name"
	PhaseEditingTest              Phase = "editing_test"
	PhaseWaitingForQuestionText   Phase = "waiting_for_question_text"
	PhaseWaitingForVariantText    Phase = "waiting_for_variant_text"
	PhaseWaitingForVariantConfirm Phase = "waiting_for_variant_confirm"
	PhaseWaitingForQuestionNumber Phase = "waiting_for_question_number"
	PhaseWaitingForVariantNewText Phase = "waiting_for_variant_new_text"
	PhaseWaitingForTestNewName    Phase = "waiting_for_test_new_name"

	// Quiz delivery.
	PhaseRunningQuiz Phase = "running_quiz"
)

// Collection names a browsable backend collection a cursor can point into.
type Collection string

const (
	CollectionUsers    Collection = "users"
	CollectionRequests Collection = "requests"
	CollectionLectures Collection = "lectures"
	CollectionLabs     Collection = "labs"
	CollectionTests    Collection = "tests"
)

// TestDraft is the in-memory draft of a new test. It exists only between
// the start of the creation wizard and commit or cancel; nothing is
// persisted before commit.
type TestDraft struct {
	Name      string
	Questions []QuestionDraft
}

// QuestionDraft is one drafted question with its answer variants.
type QuestionDraft struct {
	Text     string
	Variants []VariantDraft
}

// VariantDraft is one drafted answer variant.
type VariantDraft struct {
	Text  string
	Right bool
}

// QuizRun is the frozen state of a quiz attempt in progress. CurIdx only
// moves forward; the run is discarded on completion or abandonment.
type QuizRun struct {
	TestID      int64
	QuestionIDs []int64
	CurIdx      int
	Score       int
	Total       int
}

// State is the mutable record of one conversation. Slots are meaningful only
// for the phases that set them; a zero slot outside its phase is absent, not
// a value.
type State struct {
	Phase Phase

	// Cursors holds one aspirational position per browsed collection. An
	// index is re-validated against the freshly fetched collection on every
	// dereference, never trusted from a stale snapshot.
	Cursors map[Collection]int

	// Test authoring. Draft is set only in fresh-draft mode; EditingTestID
	// is set only in persisted-edit mode. EditingQuestionIdx and
	// EditingVariantIdx select positions inside the freshly fetched lists,
	// not identities.
	Draft              *TestDraft
	PendingVariant     string
	EditingTestID      int64
	EditingQuestionIdx int
	EditingVariantIdx  int

	// Quiz delivery.
	Quiz *QuizRun

	// Lecture/lab wizards.
	PendingName      string
	PendingFileID    int64
	EditingLectureID int64
	EditingLabID     int64
	SubmitLabID      int64

	// Registration.
	GivenName string

	// Transient UI bookkeeping: the current instruction prompt, the pinned
	// panel message, and the list of messages to retract on cleanup.
	PromptMsgID int
	PanelMsgID  int
	Tracked     []int
}

// Cursor returns the stored index for a collection, or 0 if none is set.
// Read-only, so it works on State snapshots as well as stored pointers.
func (st State) Cursor(c Collection) int {
	if st.Cursors == nil {
		return 0
	}
	return st.Cursors[c]
}

// SetCursor stores an index for a collection.
func (st *State) SetCursor(c Collection, idx int) {
	if st.Cursors == nil {
		st.Cursors = make(map[Collection]int)
	}
	st.Cursors[c] = idx
}

// ClearCursor drops the stored index for a collection.
func (st *State) ClearCursor(c Collection) {
	delete(st.Cursors, c)
}

// Store holds one State per active conversation key.
//
// The map itself is guarded for cross-key safety, but there is no per-key
// locking: updates for the same key are assumed to be serialized by the chat
// platform's per-chat delivery order. Two rapid taps racing past that
// assumption can interleave read-modify-write cycles; that is an accepted
// limitation. State lives only for the process lifetime: losing a session
// mid-wizard means the user restarts the wizard.
type Store struct {
	mu       sync.Mutex
	sessions map[Key]*State
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[Key]*State)}
}

// Get returns a snapshot of the state for a key, or a zero State if none.
func (s *Store) Get(key Key) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.sessions[key]; ok {
		return *st
	}
	return State{}
}

// Update applies fn to the state for a key, creating it if absent. The
// closure mutates only the slots it names; everything else is kept.
func (s *Store) Update(key Key, fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[key]
	if !ok {
		st = &State{}
		s.sessions[key] = st
	}
	fn(st)
}

// Clear removes all state for a key.
func (s *Store) Clear(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}
