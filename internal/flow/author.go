package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/okunev/studybot/internal/i18n"
	"github.com/okunev/studybot/internal/session"
)

// Test authoring runs in two modes that share prompts but differ in where
// writes land. Fresh-draft mode accumulates the whole test in the session
// and persists nothing until the author finishes. Persisted-edit mode
// operates on an already-stored test: every action resolves its position
// against a fresh fetch and writes immediately.

// trunc shortens s for use as a button label.
func trunc(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// --- fresh-draft mode -------------------------------------------------------

func (e *Engine) cbTestCreate(ctx context.Context, ev Event) error {
	if !e.requirePublisher(ctx, ev) {
		return nil
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		resetWizard(st)
		st.Phase = session.PhaseWaitingForTestName
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterTestName"), nil)
}

func (e *Engine) textTestName(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.cancelWizard(ctx, ev)
	}
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "EmptyTextRetry"), nil)
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseEditingTest
		st.Draft = &session.TestDraft{Name: name}
	})
	return e.showDraftPanel(ctx, ev.Key)
}

// showDraftPanel renders the draft overview: one button per drafted question
// plus the authoring actions. The panel message is edited in place once it
// exists.
func (e *Engine) showDraftPanel(ctx context.Context, key session.Key) error {
	st := e.sessions.Get(key)
	if st.Draft == nil {
		return nil
	}
	text := i18n.Td(ctx, "TestPanel", map[string]any{
		"Name":  st.Draft.Name,
		"Count": len(st.Draft.Questions),
	})
	var kb Keyboard
	for i, q := range st.Draft.Questions {
		kb = append(kb, Row(Button{
			Label: fmt.Sprintf("%d. %s", i+1, trunc(q.Text, 40)),
			Data:  fmt.Sprintf("test_view_question:%d", i),
		}))
	}
	kb = append(kb,
		Row(
			Button{Label: i18n.T(ctx, "BtnAddQuestion"), Data: "test_add_question"},
			Button{Label: i18n.T(ctx, "BtnAddVariant"), Data: "test_add_variant"},
		),
		Row(
			Button{Label: i18n.T(ctx, "BtnFinish"), Data: "test_finish"},
			Button{Label: i18n.T(ctx, "BtnCancel"), Data: "test_cancel"},
		),
	)
	return e.showPanel(ctx, key, text, kb)
}

// showPanel edits the existing panel message or sends a new one.
func (e *Engine) showPanel(ctx context.Context, key session.Key, text string, kb Keyboard) error {
	st := e.sessions.Get(key)
	if st.PanelMsgID != 0 {
		if err := e.render.EditPrompt(ctx, key, st.PanelMsgID, text, kb); err == nil {
			return nil
		}
		// Edit can fail when the panel message was deleted out of band;
		// fall through and send a fresh one.
	}
	id, err := e.render.ShowPrompt(ctx, key, text, kb)
	if err != nil {
		return err
	}
	e.sessions.Update(key, func(st *session.State) {
		st.PanelMsgID = id
		st.Tracked = append(st.Tracked, id)
	})
	return nil
}

func (e *Engine) cbAddQuestion(ctx context.Context, ev Event) error {
	st := e.sessions.Get(ev.Key)
	if st.Draft == nil && st.EditingTestID == 0 {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "NoActiveTest"))
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForQuestionText
		st.EditingQuestionIdx = -1 // new question, not a rename
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterQuestionText"), nil)
}

func (e *Engine) textQuestionText(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.backToPanel(ctx, ev.Key)
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "EmptyTextRetry"), nil)
	}
	st := e.sessions.Get(ev.Key)
	switch {
	case st.Draft != nil:
		e.sessions.Update(ev.Key, func(st *session.State) {
			st.Draft.Questions = append(st.Draft.Questions, session.QuestionDraft{Text: text})
			st.Phase = session.PhaseEditingTest
		})
		return e.showDraftPanel(ctx, ev.Key)
	case st.EditingTestID != 0 && st.EditingQuestionIdx >= 0:
		// Rename: the position is resolved against a fresh fetch.
		questions, err := e.store.ListQuestionsByTest(st.EditingTestID)
		if err != nil {
			return err
		}
		if st.EditingQuestionIdx >= len(questions) {
			_ = e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
			return e.showTestView(ctx, ev.Key, st.EditingTestID)
		}
		if err := e.store.UpdateQuestionText(questions[st.EditingQuestionIdx].ID, text); err != nil {
			return err
		}
		return e.showQuestionPanel(ctx, ev.Key, st.EditingQuestionIdx)
	case st.EditingTestID != 0:
		if _, err := e.store.CreateQuestion(st.EditingTestID, text, nil); err != nil {
			return err
		}
		return e.showTestView(ctx, ev.Key, st.EditingTestID)
	}
	return nil
}

func (e *Engine) cbAddVariant(ctx context.Context, ev Event) error {
	st := e.sessions.Get(ev.Key)
	if st.Draft == nil || len(st.Draft.Questions) == 0 {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "NoQuestionYet"))
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForVariantText
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterVariantText"), nil)
}

func (e *Engine) textVariantText(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.backToPanel(ctx, ev.Key)
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "EmptyTextRetry"), nil)
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForVariantConfirm
		st.PendingVariant = text
	})
	kb := Keyboard{Row(
		Button{Label: i18n.T(ctx, "BtnYes"), Data: "variant_yes"},
		Button{Label: i18n.T(ctx, "BtnNo"), Data: "variant_no"},
	)}
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "VariantIsCorrect"), kb)
}

func (e *Engine) cbVariantYes(ctx context.Context, ev Event) error {
	return e.commitVariant(ctx, ev, true)
}

func (e *Engine) cbVariantNo(ctx context.Context, ev Event) error {
	return e.commitVariant(ctx, ev, false)
}

// commitVariant attaches the pending variant text with its correctness flag.
// In draft mode it goes to the last drafted question; in persisted-edit mode
// the targeted question position is resolved freshly and the answer is
// written to the store at once.
func (e *Engine) commitVariant(ctx context.Context, ev Event, right bool) error {
	st := e.sessions.Get(ev.Key)
	if st.Phase != session.PhaseWaitingForVariantConfirm || st.PendingVariant == "" {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "NothingPending"))
	}
	text := st.PendingVariant
	switch {
	case st.Draft != nil:
		e.sessions.Update(ev.Key, func(st *session.State) {
			last := len(st.Draft.Questions) - 1
			st.Draft.Questions[last].Variants = append(st.Draft.Questions[last].Variants,
				session.VariantDraft{Text: text, Right: right})
			st.PendingVariant = ""
			st.Phase = session.PhaseEditingTest
		})
		return e.showDraftPanel(ctx, ev.Key)
	case st.EditingTestID != 0:
		questions, err := e.store.ListQuestionsByTest(st.EditingTestID)
		if err != nil {
			return err
		}
		if st.EditingQuestionIdx < 0 || st.EditingQuestionIdx >= len(questions) {
			_ = e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
			return e.showTestView(ctx, ev.Key, st.EditingTestID)
		}
		if _, err := e.store.CreateAnswer(questions[st.EditingQuestionIdx].ID, text, right); err != nil {
			return err
		}
		e.sessions.Update(ev.Key, func(st *session.State) {
			st.PendingVariant = ""
			st.Phase = session.PhaseWaitingForQuestionNumber
		})
		return e.showQuestionPanel(ctx, ev.Key, st.EditingQuestionIdx)
	}
	return nil
}

func (e *Engine) cbViewQuestion(ctx context.Context, ev Event) error {
	st := e.sessions.Get(ev.Key)
	if st.Draft == nil {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "NoActiveTest"))
	}
	// Positions come from callback payloads and may be forged or stale;
	// anything outside the draft is rejected the same way.
	idx, ok := ev.intArg(0)
	if !ok || idx < 0 || int(idx) >= len(st.Draft.Questions) {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	q := st.Draft.Questions[idx]
	var b strings.Builder
	b.WriteString(q.Text + "\n")
	for _, v := range q.Variants {
		mark := "✗"
		if v.Right {
			mark = "✓"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, v.Text)
	}
	kb := Keyboard{Row(
		Button{Label: i18n.T(ctx, "BtnDelete"), Data: fmt.Sprintf("test_delete_question:%d", idx)},
		Button{Label: i18n.T(ctx, "BtnBack"), Data: "test_back"},
	)}
	return e.showPanel(ctx, ev.Key, b.String(), kb)
}

func (e *Engine) cbDeleteDraftQuestion(ctx context.Context, ev Event) error {
	idx, ok := ev.intArg(0)
	if !ok {
		return nil
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		if st.Draft == nil || idx < 0 || int(idx) >= len(st.Draft.Questions) {
			return
		}
		st.Draft.Questions = append(st.Draft.Questions[:idx], st.Draft.Questions[idx+1:]...)
	})
	return e.showDraftPanel(ctx, ev.Key)
}

// cbFinish commits the draft. The commit is best effort and does not roll
// back: the test row is required, but a question or variant that fails to
// persist is logged and skipped so the rest of the draft still lands.
func (e *Engine) cbFinish(ctx context.Context, ev Event) error {
	st := e.sessions.Get(ev.Key)
	if st.Draft == nil {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "NoActiveTest"))
	}
	testID, err := e.store.CreateTest(st.Draft.Name, nil)
	if err != nil {
		_ = e.render.Notify(ctx, ev.Key, i18n.T(ctx, "TestSaveFailed"))
		return err
	}
	for qi, q := range st.Draft.Questions {
		qID, err := e.store.CreateQuestion(testID, q.Text, nil)
		if err != nil {
			slog.Error("failed to persist drafted question",
				"test_id", testID, "question", qi, "error", err)
			continue
		}
		for vi, v := range q.Variants {
			if _, err := e.store.CreateAnswer(qID, v.Text, v.Right); err != nil {
				slog.Error("failed to persist drafted variant",
					"question_id", qID, "variant", vi, "error", err)
			}
		}
	}
	e.flushTracked(ctx, ev.Key)
	name := st.Draft.Name
	e.sessions.Clear(ev.Key)
	_, err = e.render.ShowPrompt(ctx, ev.Key,
		i18n.Td(ctx, "TestSaved", map[string]any{"Name": name}), nil)
	return err
}

func (e *Engine) cbCancelAuthoring(ctx context.Context, ev Event) error {
	return e.cancelWizard(ctx, ev)
}

// cancelWizard abandons the current wizard, retracts its messages and drops
// the session.
func (e *Engine) cancelWizard(ctx context.Context, ev Event) error {
	e.flushTracked(ctx, ev.Key)
	e.sessions.Clear(ev.Key)
	return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "Cancelled"))
}

// backToPanel returns to whichever overview the current mode uses.
func (e *Engine) backToPanel(ctx context.Context, key session.Key) error {
	st := e.sessions.Get(key)
	switch {
	case st.Draft != nil:
		e.sessions.Update(key, func(st *session.State) {
			st.Phase = session.PhaseEditingTest
			st.PendingVariant = ""
		})
		return e.showDraftPanel(ctx, key)
	case st.EditingTestID != 0:
		e.sessions.Update(key, func(st *session.State) {
			st.Phase = session.PhaseWaitingForQuestionNumber
			st.PendingVariant = ""
		})
		return e.showTestView(ctx, key, st.EditingTestID)
	}
	return nil
}

func (e *Engine) cbBackToEdit(ctx context.Context, ev Event) error {
	return e.backToPanel(ctx, ev.Key)
}

// --- persisted-edit mode ----------------------------------------------------

func (e *Engine) cbTestEdit(ctx context.Context, ev Event) error {
	if !e.requirePublisher(ctx, ev) {
		return nil
	}
	testID, ok := ev.intArg(0)
	if !ok {
		return nil
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		resetWizard(st)
		st.Phase = session.PhaseWaitingForQuestionNumber
		st.EditingTestID = testID
		st.EditingQuestionIdx = -1
	})
	return e.showTestView(ctx, ev.Key, testID)
}

// showTestView renders the whole stored test with numbered questions and
// marked variants, and waits for a question number to edit.
func (e *Engine) showTestView(ctx context.Context, key session.Key, testID int64) error {
	test, err := e.store.GetTest(testID)
	if err != nil {
		_ = e.render.Notify(ctx, key, i18n.T(ctx, "ItemGone"))
		e.sessions.Clear(key)
		return nil
	}
	questions, err := e.store.ListQuestionsByTest(testID)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(i18n.Td(ctx, "TestEditHeader", map[string]any{"Name": test.Name}) + "\n\n")
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Text)
		answers, err := e.store.ListAnswersByQuestion(q.ID)
		if err != nil {
			return err
		}
		for _, a := range answers {
			mark := "✗"
			if a.Right {
				mark = "✓"
			}
			fmt.Fprintf(&b, "   %s %s\n", mark, a.Text)
		}
	}
	if len(questions) > 0 {
		b.WriteString("\n" + i18n.T(ctx, "EnterQuestionNumber"))
	}

	kb := Keyboard{
		Row(
			Button{Label: i18n.T(ctx, "BtnRenameTest"), Data: fmt.Sprintf("test_rename:%d", testID)},
			Button{Label: i18n.T(ctx, "BtnAddQuestion"), Data: "test_add_question"},
		),
		Row(Button{Label: i18n.T(ctx, "BtnDone"), Data: "test_cancel"}),
	}
	return e.showPanel(ctx, key, b.String(), kb)
}

func (e *Engine) textQuestionNumber(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.cancelWizard(ctx, ev)
	}
	st := e.sessions.Get(ev.Key)
	if st.EditingTestID == 0 {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(ev.Text))
	questions, qerr := e.store.ListQuestionsByTest(st.EditingTestID)
	if qerr != nil {
		return qerr
	}
	if err != nil || n < 1 || n > len(questions) {
		return e.prompt(ctx, ev.Key, i18n.Td(ctx, "BadQuestionNumber",
			map[string]any{"Count": len(questions)}), nil)
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.EditingQuestionIdx = n - 1
	})
	return e.showQuestionPanel(ctx, ev.Key, n-1)
}

// showQuestionPanel renders one stored question with per-variant actions.
// The question and variant positions in the callback payloads are indexes
// into the lists as freshly fetched here; every action re-resolves them.
func (e *Engine) showQuestionPanel(ctx context.Context, key session.Key, qIdx int) error {
	st := e.sessions.Get(key)
	questions, err := e.store.ListQuestionsByTest(st.EditingTestID)
	if err != nil {
		return err
	}
	if qIdx < 0 || qIdx >= len(questions) {
		_ = e.render.Notify(ctx, key, i18n.T(ctx, "ItemGone"))
		return e.showTestView(ctx, key, st.EditingTestID)
	}
	q := questions[qIdx]
	answers, err := e.store.ListAnswersByQuestion(q.ID)
	if err != nil {
		return err
	}

	var kb Keyboard
	for vi, a := range answers {
		mark := "✗"
		if a.Right {
			mark = "✓"
		}
		kb = append(kb, Row(
			Button{Label: fmt.Sprintf("%s %s", mark, trunc(a.Text, 25)),
				Data: fmt.Sprintf("variant_toggle:%d:%d", qIdx, vi)},
			Button{Label: "✏️", Data: fmt.Sprintf("variant_edit:%d:%d", qIdx, vi)},
			Button{Label: "🗑", Data: fmt.Sprintf("variant_del:%d:%d", qIdx, vi)},
		))
	}
	kb = append(kb,
		Row(
			Button{Label: i18n.T(ctx, "BtnAddVariant"), Data: fmt.Sprintf("question_add_variant:%d", qIdx)},
			Button{Label: i18n.T(ctx, "BtnRenameQuestion"), Data: fmt.Sprintf("question_rename:%d", qIdx)},
		),
		Row(Button{Label: i18n.T(ctx, "BtnBack"), Data: "test_back"}),
	)
	e.sessions.Update(key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForQuestionNumber
	})
	return e.showPanel(ctx, key, q.Text, kb)
}

// resolveVariant maps (question position, variant position) from a callback
// payload to a stored answer, re-fetching both lists. ok is false when either
// position no longer exists.
func (e *Engine) resolveVariant(ctx context.Context, key session.Key, ev Event) (answerID int64, qIdx int, ok bool, err error) {
	st := e.sessions.Get(key)
	if st.EditingTestID == 0 {
		return 0, 0, false, nil
	}
	qi, ok1 := ev.intArg(0)
	vi, ok2 := ev.intArg(1)
	if !ok1 || !ok2 || qi < 0 || vi < 0 {
		return 0, 0, false, nil
	}
	questions, err := e.store.ListQuestionsByTest(st.EditingTestID)
	if err != nil {
		return 0, 0, false, err
	}
	if int(qi) >= len(questions) {
		return 0, 0, false, nil
	}
	answers, err := e.store.ListAnswersByQuestion(questions[qi].ID)
	if err != nil {
		return 0, 0, false, err
	}
	if int(vi) >= len(answers) {
		return 0, int(qi), false, nil
	}
	return answers[vi].ID, int(qi), true, nil
}

func (e *Engine) cbVariantToggle(ctx context.Context, ev Event) error {
	id, qIdx, ok, err := e.resolveVariant(ctx, ev.Key, ev)
	if err != nil {
		return err
	}
	if !ok {
		_ = e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
		return e.showQuestionPanel(ctx, ev.Key, qIdx)
	}
	if err := e.store.ToggleAnswerRight(id); err != nil {
		return err
	}
	return e.showQuestionPanel(ctx, ev.Key, qIdx)
}

func (e *Engine) cbVariantDelete(ctx context.Context, ev Event) error {
	id, qIdx, ok, err := e.resolveVariant(ctx, ev.Key, ev)
	if err != nil {
		return err
	}
	if !ok {
		_ = e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
		return e.showQuestionPanel(ctx, ev.Key, qIdx)
	}
	if err := e.store.DeleteAnswer(id); err != nil {
		return err
	}
	return e.showQuestionPanel(ctx, ev.Key, qIdx)
}

func (e *Engine) cbVariantEdit(ctx context.Context, ev Event) error {
	_, qIdx, ok, err := e.resolveVariant(ctx, ev.Key, ev)
	if err != nil {
		return err
	}
	if !ok {
		_ = e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
		return e.showQuestionPanel(ctx, ev.Key, qIdx)
	}
	vi, _ := ev.intArg(1)
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForVariantNewText
		st.EditingQuestionIdx = qIdx
		st.EditingVariantIdx = int(vi)
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterVariantText"), nil)
}

func (e *Engine) textVariantNewText(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.backToPanel(ctx, ev.Key)
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "EmptyTextRetry"), nil)
	}
	st := e.sessions.Get(ev.Key)
	questions, err := e.store.ListQuestionsByTest(st.EditingTestID)
	if err != nil {
		return err
	}
	if st.EditingQuestionIdx < 0 || st.EditingQuestionIdx >= len(questions) {
		_ = e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
		return e.showTestView(ctx, ev.Key, st.EditingTestID)
	}
	answers, err := e.store.ListAnswersByQuestion(questions[st.EditingQuestionIdx].ID)
	if err != nil {
		return err
	}
	if st.EditingVariantIdx < 0 || st.EditingVariantIdx >= len(answers) {
		_ = e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
		return e.showQuestionPanel(ctx, ev.Key, st.EditingQuestionIdx)
	}
	if err := e.store.UpdateAnswerText(answers[st.EditingVariantIdx].ID, text); err != nil {
		return err
	}
	return e.showQuestionPanel(ctx, ev.Key, st.EditingQuestionIdx)
}

func (e *Engine) cbQuestionAddVariant(ctx context.Context, ev Event) error {
	qi, ok := ev.intArg(0)
	if !ok {
		return nil
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForVariantText
		st.EditingQuestionIdx = int(qi)
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterVariantText"), nil)
}

func (e *Engine) cbQuestionRename(ctx context.Context, ev Event) error {
	qi, ok := ev.intArg(0)
	if !ok {
		return nil
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForQuestionText
		st.EditingQuestionIdx = int(qi)
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterQuestionText"), nil)
}

func (e *Engine) cbTestRename(ctx context.Context, ev Event) error {
	if !e.requirePublisher(ctx, ev) {
		return nil
	}
	testID, ok := ev.intArg(0)
	if !ok {
		return nil
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForTestNewName
		st.EditingTestID = testID
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterTestName"), nil)
}

func (e *Engine) textTestNewName(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.backToPanel(ctx, ev.Key)
	}
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "EmptyTextRetry"), nil)
	}
	st := e.sessions.Get(ev.Key)
	if st.EditingTestID == 0 {
		return nil
	}
	if err := e.store.RenameTest(st.EditingTestID, name); err != nil {
		return err
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForQuestionNumber
	})
	return e.showTestView(ctx, ev.Key, st.EditingTestID)
}
