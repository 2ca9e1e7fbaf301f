package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okunev/studybot/internal/i18n"
	"github.com/okunev/studybot/internal/model"
	"github.com/okunev/studybot/internal/session"
)

// Lab publishing: a three-step wizard (name, document, description) for
// instructors. Students fetch the assignment file and upload solutions;
// uploads after the deadline are accepted only when the lab allows late
// submissions, and are marked late either way.

func (e *Engine) cbLabAdd(ctx context.Context, ev Event) error {
	if !e.requirePublisher(ctx, ev) {
		return nil
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		resetWizard(st)
		st.Phase = session.PhaseWaitingForLabName
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterLabName"), nil)
}

func (e *Engine) textLabName(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.cancelWizard(ctx, ev)
	}
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "EmptyTextRetry"), nil)
	}
	if st := e.sessions.Get(ev.Key); st.EditingLabID != 0 {
		if err := e.store.RenameLabWork(st.EditingLabID, name); err != nil {
			return err
		}
		e.sessions.Update(ev.Key, func(st *session.State) {
			st.Phase = session.PhaseNone
			st.EditingLabID = 0
		})
		return browseShow(e, ctx, ev.Key, e.labsSpec())
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForLabFile
		st.PendingName = name
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "SendLabFile"), nil)
}

func (e *Engine) textLabFile(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.cancelWizard(ctx, ev)
	}
	if ev.DocumentID == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "NeedDocument"), nil)
	}
	fileID, err := e.store.CreateFile(model.File{
		Type:     model.FileTypeLab,
		RemoteID: ev.DocumentID,
	})
	if err != nil {
		return err
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForLabDescription
		st.PendingFileID = fileID
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterLabDescription"), nil)
}

func (e *Engine) textLabDescription(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.cancelWizard(ctx, ev)
	}
	description := strings.TrimSpace(ev.Text)
	if description == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "EmptyTextRetry"), nil)
	}
	st := e.sessions.Get(ev.Key)
	_, err := e.store.CreateLabWork(model.LabWork{
		FileID:      st.PendingFileID,
		Name:        st.PendingName,
		Description: description,
		AllowLate:   true,
	})
	if err != nil {
		return err
	}
	name := st.PendingName
	e.flushTracked(ctx, ev.Key)
	e.sessions.Clear(ev.Key)
	_, err = e.render.ShowPrompt(ctx, ev.Key,
		i18n.Td(ctx, "LabCreated", map[string]any{"Name": name}), nil)
	return err
}

func (e *Engine) cbLabRename(ctx context.Context, ev Event) error {
	l, ok, err := currentItem(e, ev.Key, e.labsSpec())
	if err != nil {
		return err
	}
	if !ok {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForLabName
		st.EditingLabID = l.ID
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterLabName"), nil)
}

// cbLabsList is the student-facing pick list.
func (e *Engine) cbLabsList(ctx context.Context, ev Event) error {
	labs, err := e.store.ListLabWorks()
	if err != nil {
		return err
	}
	if len(labs) == 0 {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "NoLabs"))
	}
	var kb Keyboard
	for _, l := range labs {
		kb = append(kb, Row(Button{
			Label: trunc(l.Name, 40),
			Data:  fmt.Sprintf("lab_get:%d", l.ID),
		}))
	}
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "ChooseLab"), kb)
}

func (e *Engine) cbLabGet(ctx context.Context, ev Event) error {
	id, ok := ev.intArg(0)
	if !ok {
		return nil
	}
	lab, err := e.store.GetLabWork(id)
	if err != nil {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	file, err := e.store.GetFile(lab.FileID)
	if err != nil {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	caption := lab.Name
	if lab.Description != "" {
		caption += "\n" + lab.Description
	}
	kb := Keyboard{Row(Button{
		Label: i18n.T(ctx, "BtnSubmitSolution"),
		Data:  fmt.Sprintf("lab_submit:%d", lab.ID),
	})}
	_, err = e.render.SendFile(ctx, ev.Key,
		FileRef{RemoteID: file.RemoteID, Name: lab.Name}, caption, kb)
	return err
}

func (e *Engine) cbLabSubmit(ctx context.Context, ev Event) error {
	id, ok := ev.intArg(0)
	if !ok {
		return nil
	}
	if _, err := e.store.GetLabWork(id); err != nil {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForLabSubmission
		st.SubmitLabID = id
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "SendSolutionFile"), nil)
}

func (e *Engine) textLabSubmission(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.cancelWizard(ctx, ev)
	}
	if ev.DocumentID == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "NeedDocument"), nil)
	}
	st := e.sessions.Get(ev.Key)
	lab, err := e.store.GetLabWork(st.SubmitLabID)
	if err != nil {
		e.sessions.Clear(ev.Key)
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}

	late := lab.Deadline != nil && time.Now().After(*lab.Deadline)
	if late && !lab.AllowLate {
		e.flushTracked(ctx, ev.Key)
		e.sessions.Clear(ev.Key)
		_, err := e.render.ShowPrompt(ctx, ev.Key, i18n.T(ctx, "DeadlinePassed"), nil)
		return err
	}

	fileID, err := e.store.CreateFile(model.File{
		Type:     model.FileTypeSubmission,
		RemoteID: ev.DocumentID,
		Path:     ev.FileName,
	})
	if err != nil {
		return err
	}
	if _, err := e.store.CreateSubmission(model.Submission{
		UserID: ev.User.ID,
		LabID:  lab.ID,
		FileID: fileID,
		Late:   late,
	}); err != nil {
		return err
	}

	e.flushTracked(ctx, ev.Key)
	e.sessions.Clear(ev.Key)
	msg := "SolutionAccepted"
	if late {
		msg = "SolutionAcceptedLate"
	}
	_, err = e.render.ShowPrompt(ctx, ev.Key, i18n.T(ctx, msg), nil)
	return err
}
