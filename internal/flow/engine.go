// Package flow is the session workflow engine: it turns independent chat
// events into multi-step interactions — paginated browsing of mutable
// collections, the test-authoring wizard and the quiz-delivery loop.
//
// Concurrency: one event is handled at a time per session key; that
// serialization comes from the chat platform's per-chat delivery order, not
// from locks here. The entity store is the only shared mutable resource and
// is re-fetched on every view.
package flow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/okunev/studybot/internal/i18n"
	"github.com/okunev/studybot/internal/session"
	"github.com/okunev/studybot/internal/store"
)

// Engine routes inbound events to their handlers and holds the
// collaborators the handlers work against.
type Engine struct {
	store    *store.Store
	sessions *session.Store
	render   Renderer
}

// New creates a workflow engine over the given collaborators.
func New(st *store.Store, sessions *session.Store, r Renderer) *Engine {
	return &Engine{store: st, sessions: sessions, render: r}
}

// Sessions exposes the session store to the transport adapter.
func (e *Engine) Sessions() *session.Store {
	return e.sessions
}

type handlerFunc func(e *Engine, ctx context.Context, ev Event) error

// textHandlers routes plain messages by the session's current phase. This is
// the explicit (phase, event-kind) table: one wizard step, one handler.
var textHandlers = map[session.Phase]handlerFunc{
	session.PhaseWaitingForName:           (*Engine).textGivenName,
	session.PhaseWaitingForSurname:        (*Engine).textSurname,
	session.PhaseWaitingForLectureName:    (*Engine).textLectureName,
	session.PhaseWaitingForLectureFile:    (*Engine).textLectureFile,
	session.PhaseWaitingForLectureNewName: (*Engine).textLectureNewName,
	session.PhaseWaitingForLectureNewFile: (*Engine).textLectureNewFile,
	session.PhaseWaitingForLabName:        (*Engine).textLabName,
	session.PhaseWaitingForLabFile:        (*Engine).textLabFile,
	session.PhaseWaitingForLabDescription: (*Engine).textLabDescription,
	session.PhaseWaitingForLabSubmission:  (*Engine).textLabSubmission,
	session.PhaseWaitingForTestName:       (*Engine).textTestName,
	session.PhaseWaitingForQuestionText:   (*Engine).textQuestionText,
	session.PhaseWaitingForVariantText:    (*Engine).textVariantText,
	session.PhaseWaitingForQuestionNumber: (*Engine).textQuestionNumber,
	session.PhaseWaitingForVariantNewText: (*Engine).textVariantNewText,
	session.PhaseWaitingForTestNewName:    (*Engine).textTestNewName,
}

// callbackHandlers routes button presses by action name (the payload up to
// the first ':'). Handlers re-validate everything against fresh state; a
// press referencing a position the flow has moved past is a stale action
// and is answered with a soft notice.
var callbackHandlers = map[string]handlerFunc{
	// Registration and approval.
	"register":        (*Engine).cbRegister,
	"requests_browse": (*Engine).cbRequestsBrowse,
	"requests_prev":   (*Engine).cbRequestsPrev,
	"requests_next":   (*Engine).cbRequestsNext,
	"request_approve": (*Engine).cbRequestApprove,
	"request_reject":  (*Engine).cbRequestReject,

	// User administration.
	"users_browse":    (*Engine).cbUsersBrowse,
	"users_prev":      (*Engine).cbUsersPrev,
	"users_next":      (*Engine).cbUsersNext,
	"user_ban":        (*Engine).cbUserBan,
	"user_unban":      (*Engine).cbUserUnban,
	"user_delete":     (*Engine).cbUserDelete,
	"user_delete_yes": (*Engine).cbUserDeleteYes,
	"user_delete_no":  (*Engine).cbDeleteNo,

	// Lectures.
	"lecture_add":        (*Engine).cbLectureAdd,
	"lectures_browse":    (*Engine).cbLecturesBrowse,
	"lectures_prev":      (*Engine).cbLecturesPrev,
	"lectures_next":      (*Engine).cbLecturesNext,
	"lecture_rename":     (*Engine).cbLectureRename,
	"lecture_replace":    (*Engine).cbLectureReplace,
	"lecture_delete":     (*Engine).cbLectureDelete,
	"lecture_delete_yes": (*Engine).cbLectureDeleteYes,
	"lecture_delete_no":  (*Engine).cbDeleteNo,
	"lectures_list":      (*Engine).cbLecturesList,
	"lecture_get":        (*Engine).cbLectureGet,

	// Labs.
	"lab_add":        (*Engine).cbLabAdd,
	"labs_browse":    (*Engine).cbLabsBrowse,
	"labs_prev":      (*Engine).cbLabsPrev,
	"labs_next":      (*Engine).cbLabsNext,
	"lab_rename":     (*Engine).cbLabRename,
	"lab_delete":     (*Engine).cbLabDelete,
	"lab_delete_yes": (*Engine).cbLabDeleteYes,
	"lab_delete_no":  (*Engine).cbDeleteNo,
	"labs_list":      (*Engine).cbLabsList,
	"lab_get":        (*Engine).cbLabGet,
	"lab_submit":     (*Engine).cbLabSubmit,

	// Test authoring.
	"test_create":          (*Engine).cbTestCreate,
	"test_add_question":    (*Engine).cbAddQuestion,
	"test_add_variant":     (*Engine).cbAddVariant,
	"variant_yes":          (*Engine).cbVariantYes,
	"variant_no":           (*Engine).cbVariantNo,
	"test_view_question":   (*Engine).cbViewQuestion,
	"test_delete_question": (*Engine).cbDeleteDraftQuestion,
	"test_finish":          (*Engine).cbFinish,
	"test_cancel":          (*Engine).cbCancelAuthoring,
	"test_back":            (*Engine).cbBackToEdit,
	"tests_browse":         (*Engine).cbTestsBrowse,
	"tests_prev":           (*Engine).cbTestsPrev,
	"tests_next":           (*Engine).cbTestsNext,
	"test_rename":          (*Engine).cbTestRename,
	"test_delete":          (*Engine).cbTestDelete,
	"test_delete_yes":      (*Engine).cbTestDeleteYes,
	"test_delete_no":       (*Engine).cbDeleteNo,
	"test_edit":            (*Engine).cbTestEdit,
	"question_add_variant": (*Engine).cbQuestionAddVariant,
	"question_rename":      (*Engine).cbQuestionRename,
	"variant_del":          (*Engine).cbVariantDelete,
	"variant_edit":         (*Engine).cbVariantEdit,
	"variant_toggle":       (*Engine).cbVariantToggle,

	// Quiz delivery.
	"quiz_list":   (*Engine).cbQuizList,
	"quiz_start":  (*Engine).cbQuizStart,
	"quiz_answer": (*Engine).cbQuizAnswer,
}

// Dispatch routes one event. Errors are logged here; no event outcome may
// take down the handling of other sessions.
func (e *Engine) Dispatch(ctx context.Context, ev Event) {
	var err error
	switch ev.Kind {
	case KindText:
		st := e.sessions.Get(ev.Key)
		h, ok := textHandlers[st.Phase]
		if !ok {
			return // free text outside any wizard; the menu layer owns it
		}
		err = h(e, ctx, ev)
	case KindCallback:
		h, ok := callbackHandlers[ev.action()]
		if !ok {
			slog.Warn("unknown callback action", "action", ev.action())
			return
		}
		err = h(e, ctx, ev)
	}
	if err != nil {
		slog.Error("event handling failed",
			"kind", ev.Kind, "action", ev.action(), "chat_id", ev.Key.ChatID, "error", err)
	}
}

// isCancel reports whether the text is the localized cancel sentinel.
func isCancel(ctx context.Context, text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), i18n.T(ctx, "CancelWord"))
}

// requirePublisher answers with a refusal notice unless the sender may
// publish material. Returns true when the caller should proceed.
func (e *Engine) requirePublisher(ctx context.Context, ev Event) bool {
	if ev.User.Role.CanPublish() {
		return true
	}
	_ = e.render.Notify(ctx, ev.Key, i18n.T(ctx, "NotAllowed"))
	return false
}

// resetWizard drops all wizard slots but keeps browse cursors, so a finished
// or cancelled wizard does not lose the user's place in the lists.
func resetWizard(st *session.State) {
	cursors := st.Cursors
	*st = session.State{Cursors: cursors}
}
