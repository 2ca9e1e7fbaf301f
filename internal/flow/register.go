package flow

import (
	"context"
	"strings"

	"github.com/okunev/studybot/internal/i18n"
	"github.com/okunev/studybot/internal/model"
	"github.com/okunev/studybot/internal/session"
)

// Registration is credential-free: a guest sends their given name and
// surname, which becomes a pending access request for an instructor to
// approve or reject.

func (e *Engine) cbRegister(ctx context.Context, ev Event) error {
	if ev.User.ID != 0 {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "AlreadyRegistered"))
	}
	pending, err := e.store.GetAccessRequestByTelegramID(ev.Key.UserID)
	if err != nil {
		return err
	}
	if pending != nil {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "RequestPending"))
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		resetWizard(st)
		st.Phase = session.PhaseWaitingForName
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterGivenName"), nil)
}

func (e *Engine) textGivenName(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.cancelWizard(ctx, ev)
	}
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "EmptyTextRetry"), nil)
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForSurname
		st.GivenName = name
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterSurname"), nil)
}

func (e *Engine) textSurname(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.cancelWizard(ctx, ev)
	}
	surname := strings.TrimSpace(ev.Text)
	if surname == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "EmptyTextRetry"), nil)
	}
	st := e.sessions.Get(ev.Key)
	if _, err := e.store.CreateAccessRequest(model.AccessRequest{
		TelegramID: ev.Key.UserID,
		Username:   ev.User.Username,
		Name:       st.GivenName,
		Surname:    surname,
	}); err != nil {
		return err
	}
	e.flushTracked(ctx, ev.Key)
	e.sessions.Clear(ev.Key)
	_, err := e.render.ShowPrompt(ctx, ev.Key, i18n.T(ctx, "RequestSubmitted"), nil)
	return err
}
