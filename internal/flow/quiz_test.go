package flow

import (
	"fmt"
	"strings"
	"testing"

	"github.com/okunev/studybot/internal/model"
	"github.com/okunev/studybot/internal/session"
	"github.com/okunev/studybot/internal/store"
)

// seedQuiz creates a test with the given questions; each question gets one
// right and one wrong answer. Returns the test id, question ids and the
// right answer id per question.
func seedQuiz(t *testing.T, st *store.Store, name string, questions int) (int64, []int64, []int64) {
	t.Helper()
	testID, err := st.CreateTest(name, nil)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	var qIDs, rightIDs []int64
	for i := 0; i < questions; i++ {
		qID, err := st.CreateQuestion(testID, fmt.Sprintf("question %d", i+1), nil)
		if err != nil {
			t.Fatalf("CreateQuestion: %v", err)
		}
		rightID, err := st.CreateAnswer(qID, "right", true)
		if err != nil {
			t.Fatalf("CreateAnswer: %v", err)
		}
		if _, err := st.CreateAnswer(qID, "wrong", false); err != nil {
			t.Fatalf("CreateAnswer: %v", err)
		}
		qIDs = append(qIDs, qID)
		rightIDs = append(rightIDs, rightID)
	}
	return testID, qIDs, rightIDs
}

func TestQuizRunAndScoring(t *testing.T) {
	e, st, r, ctx := newTestEngine(t)
	student := studentUser(1)
	if _, err := st.CreateUser(model.User{TelegramID: 20, Name: "Student", Role: model.UserRoleStudent, Active: true}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	testID, qIDs, rightIDs := seedQuiz(t, st, "Quiz", 3)

	e.Dispatch(ctx, callbackEvent(fmt.Sprintf("quiz_start:%d", testID), student))
	if got := r.lastShown(); !strings.Contains(got, "question 1") {
		t.Fatalf("expected first question, got %q", got)
	}

	// Right, wrong, right.
	e.Dispatch(ctx, callbackEvent(fmt.Sprintf("quiz_answer:%d:%d", qIDs[0], rightIDs[0]), student))
	if got := r.lastShown(); !strings.Contains(got, "question 2") {
		t.Fatalf("expected second question, got %q", got)
	}
	wrongID := rightIDs[1] + 1
	e.Dispatch(ctx, callbackEvent(fmt.Sprintf("quiz_answer:%d:%d", qIDs[1], wrongID), student))
	e.Dispatch(ctx, callbackEvent(fmt.Sprintf("quiz_answer:%d:%d", qIDs[2], rightIDs[2]), student))

	if got := r.lastShown(); !strings.Contains(got, "2/3 (66.7%)") {
		t.Fatalf("expected score report, got %q", got)
	}

	// Exactly one stat row, one attempt.
	stat, err := st.GetTestStat(student.ID, testID)
	if err != nil {
		t.Fatalf("GetTestStat: %v", err)
	}
	if stat == nil || stat.LastScore != 2 || stat.Attempts != 1 {
		t.Fatalf("expected score 2 attempts 1, got %+v", stat)
	}

	// The run is discarded after completion.
	if s := e.sessions.Get(testKey); s.Quiz != nil || s.Phase != session.PhaseNone {
		t.Errorf("expected cleared session, got %+v", s)
	}
}

func TestQuizStalePressIsIgnored(t *testing.T) {
	e, st, r, ctx := newTestEngine(t)
	student := studentUser(1)
	if _, err := st.CreateUser(model.User{TelegramID: 20, Name: "Student", Role: model.UserRoleStudent, Active: true}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	testID, qIDs, rightIDs := seedQuiz(t, st, "Quiz", 2)

	e.Dispatch(ctx, callbackEvent(fmt.Sprintf("quiz_start:%d", testID), student))
	e.Dispatch(ctx, callbackEvent(fmt.Sprintf("quiz_answer:%d:%d", qIDs[0], rightIDs[0]), student))

	// A second press on the already-answered question: soft notice, no
	// mutation.
	e.Dispatch(ctx, callbackEvent(fmt.Sprintf("quiz_answer:%d:%d", qIDs[0], rightIDs[0]), student))
	if got := r.lastNotice(); got != "This question has already been answered." {
		t.Fatalf("expected stale notice, got %q", got)
	}
	s := e.sessions.Get(testKey)
	if s.Quiz == nil || s.Quiz.CurIdx != 1 || s.Quiz.Score != 1 {
		t.Fatalf("expected run unchanged by stale press, got %+v", s.Quiz)
	}

	// Finishing still counts the stale press only once.
	e.Dispatch(ctx, callbackEvent(fmt.Sprintf("quiz_answer:%d:%d", qIDs[1], rightIDs[1]), student))
	if got := r.lastShown(); !strings.Contains(got, "2/2 (100.0%)") {
		t.Fatalf("expected full score, got %q", got)
	}
	stat, _ := st.GetTestStat(student.ID, testID)
	if stat == nil || stat.Attempts != 1 {
		t.Fatalf("expected a single attempt, got %+v", stat)
	}
}

func TestQuizRefusesEmptyTest(t *testing.T) {
	e, st, r, ctx := newTestEngine(t)
	student := studentUser(1)

	testID, err := st.CreateTest("Empty", nil)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	e.Dispatch(ctx, callbackEvent(fmt.Sprintf("quiz_start:%d", testID), student))
	if got := r.lastNotice(); got != "This test has no questions yet." {
		t.Errorf("expected empty-test notice, got %q", got)
	}
	if s := e.sessions.Get(testKey); s.Quiz != nil {
		t.Errorf("expected no run to start, got %+v", s.Quiz)
	}
}

func TestQuizAbortsWhenAnswerVanishes(t *testing.T) {
	e, st, r, ctx := newTestEngine(t)
	student := studentUser(1)
	testID, qIDs, rightIDs := seedQuiz(t, st, "Quiz", 2)

	e.Dispatch(ctx, callbackEvent(fmt.Sprintf("quiz_start:%d", testID), student))

	// The pressed answer is deleted between render and press: the run stops
	// with a notice instead of stalling.
	if err := st.DeleteAnswer(rightIDs[0]); err != nil {
		t.Fatalf("DeleteAnswer: %v", err)
	}
	e.Dispatch(ctx, callbackEvent(fmt.Sprintf("quiz_answer:%d:%d", qIDs[0], rightIDs[0]), student))

	if got := r.lastNotice(); got != "This test has changed and the run was stopped. Please start it again." {
		t.Fatalf("expected abort notice, got %q", got)
	}
	if s := e.sessions.Get(testKey); s.Quiz != nil || s.Phase != session.PhaseNone {
		t.Errorf("expected cleared session, got %+v", s)
	}
	// An aborted run records nothing.
	if stat, _ := st.GetTestStat(student.ID, testID); stat != nil {
		t.Errorf("expected no recorded attempt, got %+v", stat)
	}
}

func TestQuizAbortsWhenQuestionVanishes(t *testing.T) {
	e, st, r, ctx := newTestEngine(t)
	student := studentUser(1)
	testID, qIDs, rightIDs := seedQuiz(t, st, "Quiz", 2)

	e.Dispatch(ctx, callbackEvent(fmt.Sprintf("quiz_start:%d", testID), student))

	// The next question vanishes mid-run; answering the current one then
	// fails to render it.
	if err := st.DeleteQuestion(qIDs[1]); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	e.Dispatch(ctx, callbackEvent(fmt.Sprintf("quiz_answer:%d:%d", qIDs[0], rightIDs[0]), student))

	if got := r.lastNotice(); got != "This test has changed and the run was stopped. Please start it again." {
		t.Fatalf("expected abort notice, got %q", got)
	}
	if s := e.sessions.Get(testKey); s.Quiz != nil {
		t.Errorf("expected discarded run, got %+v", s.Quiz)
	}
}

func TestQuizAnswerOutsideRun(t *testing.T) {
	e, _, r, ctx := newTestEngine(t)

	e.Dispatch(ctx, callbackEvent("quiz_answer:1:1", studentUser(1)))
	if got := r.lastNotice(); got != "No test is in progress." {
		t.Errorf("expected not-running notice, got %q", got)
	}
}
