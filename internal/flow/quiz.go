package flow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/okunev/studybot/internal/i18n"
	"github.com/okunev/studybot/internal/session"
)

// Quiz delivery freezes the question list at start and then only moves
// forward. An answer press for any question other than the current one is a
// stale action: it gets a soft notice and changes nothing.

func (e *Engine) cbQuizList(ctx context.Context, ev Event) error {
	tests, err := e.store.ListTests()
	if err != nil {
		return err
	}
	if len(tests) == 0 {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "NoTests"))
	}
	var kb Keyboard
	for _, t := range tests {
		kb = append(kb, Row(Button{
			Label: trunc(t.Name, 40),
			Data:  fmt.Sprintf("quiz_start:%d", t.ID),
		}))
	}
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "ChooseTest"), kb)
}

func (e *Engine) cbQuizStart(ctx context.Context, ev Event) error {
	testID, ok := ev.intArg(0)
	if !ok {
		return nil
	}
	questions, err := e.store.ListQuestionsByTest(testID)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "TestEmpty"))
	}
	ids := make([]int64, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		resetWizard(st)
		st.Phase = session.PhaseRunningQuiz
		st.Quiz = &session.QuizRun{TestID: testID, QuestionIDs: ids, Total: len(ids)}
	})
	return e.showQuizQuestion(ctx, ev.Key)
}

// showQuizQuestion renders the current question. The running panel is edited
// in place so the quiz occupies a single message.
func (e *Engine) showQuizQuestion(ctx context.Context, key session.Key) error {
	st := e.sessions.Get(key)
	if st.Quiz == nil {
		return nil
	}
	qID := st.Quiz.QuestionIDs[st.Quiz.CurIdx]
	q, err := e.store.GetQuestion(qID)
	if errors.Is(err, sql.ErrNoRows) {
		// The test was edited out from under the frozen question list.
		return e.abortQuiz(ctx, key)
	}
	if err != nil {
		return err
	}
	answers, err := e.store.ListAnswersByQuestion(qID)
	if err != nil {
		return err
	}
	text := i18n.Td(ctx, "QuizQuestion", map[string]any{
		"Num":   st.Quiz.CurIdx + 1,
		"Total": st.Quiz.Total,
		"Text":  q.Text,
	})
	var kb Keyboard
	for _, a := range answers {
		kb = append(kb, Row(Button{
			Label: trunc(a.Text, 40),
			Data:  fmt.Sprintf("quiz_answer:%d:%d", qID, a.ID),
		}))
	}
	return e.showPanel(ctx, key, text, kb)
}

func (e *Engine) cbQuizAnswer(ctx context.Context, ev Event) error {
	st := e.sessions.Get(ev.Key)
	qID, ok1 := ev.intArg(0)
	aID, ok2 := ev.intArg(1)
	if !ok1 || !ok2 {
		return nil
	}
	if st.Quiz == nil || st.Phase != session.PhaseRunningQuiz {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "QuizNotRunning"))
	}
	// Stale-press guard: only the question currently shown may be answered.
	if qID != st.Quiz.QuestionIDs[st.Quiz.CurIdx] {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "QuizStalePress"))
	}

	answer, err := e.store.GetAnswer(aID)
	if errors.Is(err, sql.ErrNoRows) {
		return e.abortQuiz(ctx, ev.Key)
	}
	if err != nil {
		return err
	}
	correct := answer.QuestionID == qID && answer.Right

	var done bool
	e.sessions.Update(ev.Key, func(st *session.State) {
		if correct {
			st.Quiz.Score++
		}
		st.Quiz.CurIdx++
		done = st.Quiz.CurIdx >= st.Quiz.Total
	})
	if !done {
		return e.showQuizQuestion(ctx, ev.Key)
	}
	return e.finishQuiz(ctx, ev)
}

// abortQuiz discards a run whose questions vanished mid-flight. The student
// gets a notice instead of a silently stalled quiz; nothing is recorded.
func (e *Engine) abortQuiz(ctx context.Context, key session.Key) error {
	e.flushTracked(ctx, key)
	e.sessions.Clear(key)
	return e.render.Notify(ctx, key, i18n.T(ctx, "QuizAborted"))
}

// finishQuiz shows the score report and records the run. Recording failure
// is logged but never hides the report from the student.
func (e *Engine) finishQuiz(ctx context.Context, ev Event) error {
	st := e.sessions.Get(ev.Key)
	quiz := st.Quiz
	if quiz == nil {
		return nil
	}
	percent := float64(quiz.Score) / float64(quiz.Total) * 100
	report := i18n.Td(ctx, "QuizReport", map[string]any{
		"Result": fmt.Sprintf("%d/%d (%.1f%%)", quiz.Score, quiz.Total, percent),
	})

	if err := e.store.UpsertTestStat(ev.User.ID, quiz.TestID, quiz.Score); err != nil {
		slog.Error("failed to record quiz result",
			"user_id", ev.User.ID, "test_id", quiz.TestID, "error", err)
	}

	e.flushTracked(ctx, ev.Key)
	e.sessions.Clear(ev.Key)
	_, err := e.render.ShowPrompt(ctx, ev.Key, report, nil)
	return err
}
