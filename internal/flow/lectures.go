package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/okunev/studybot/internal/i18n"
	"github.com/okunev/studybot/internal/model"
	"github.com/okunev/studybot/internal/session"
)

// Lecture publishing: a two-step wizard (name, then document) for
// instructors, and a pick list with file delivery for students.

func (e *Engine) cbLectureAdd(ctx context.Context, ev Event) error {
	if !e.requirePublisher(ctx, ev) {
		return nil
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		resetWizard(st)
		st.Phase = session.PhaseWaitingForLectureName
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterLectureName"), nil)
}

func (e *Engine) textLectureName(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.cancelWizard(ctx, ev)
	}
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "EmptyTextRetry"), nil)
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForLectureFile
		st.PendingName = name
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "SendLectureFile"), nil)
}

func (e *Engine) textLectureFile(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		return e.cancelWizard(ctx, ev)
	}
	if ev.DocumentID == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "NeedDocument"), nil)
	}
	st := e.sessions.Get(ev.Key)
	fileID, err := e.store.CreateFile(model.File{
		Type:     model.FileTypeLecture,
		RemoteID: ev.DocumentID,
	})
	if err != nil {
		return err
	}
	if _, err := e.store.CreateLecture(st.PendingName, fileID); err != nil {
		return err
	}
	name := st.PendingName
	e.flushTracked(ctx, ev.Key)
	e.sessions.Clear(ev.Key)
	_, err = e.render.ShowPrompt(ctx, ev.Key,
		i18n.Td(ctx, "LectureCreated", map[string]any{"Name": name}), nil)
	return err
}

func (e *Engine) cbLectureRename(ctx context.Context, ev Event) error {
	l, ok, err := currentItem(e, ev.Key, e.lecturesSpec())
	if err != nil {
		return err
	}
	if !ok {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForLectureNewName
		st.EditingLectureID = l.ID
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "EnterLectureName"), nil)
}

func (e *Engine) textLectureNewName(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		e.sessions.Update(ev.Key, func(st *session.State) { st.Phase = session.PhaseNone })
		return browseShow(e, ctx, ev.Key, e.lecturesSpec())
	}
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "EmptyTextRetry"), nil)
	}
	st := e.sessions.Get(ev.Key)
	if err := e.store.RenameLecture(st.EditingLectureID, name); err != nil {
		return err
	}
	e.sessions.Update(ev.Key, func(st *session.State) { st.Phase = session.PhaseNone })
	return browseShow(e, ctx, ev.Key, e.lecturesSpec())
}

func (e *Engine) cbLectureReplace(ctx context.Context, ev Event) error {
	l, ok, err := currentItem(e, ev.Key, e.lecturesSpec())
	if err != nil {
		return err
	}
	if !ok {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	e.sessions.Update(ev.Key, func(st *session.State) {
		st.Phase = session.PhaseWaitingForLectureNewFile
		st.EditingLectureID = l.ID
	})
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "SendLectureFile"), nil)
}

func (e *Engine) textLectureNewFile(ctx context.Context, ev Event) error {
	e.trackMessage(ev.Key, ev.MessageID)
	if isCancel(ctx, ev.Text) {
		e.sessions.Update(ev.Key, func(st *session.State) { st.Phase = session.PhaseNone })
		return browseShow(e, ctx, ev.Key, e.lecturesSpec())
	}
	if ev.DocumentID == "" {
		return e.prompt(ctx, ev.Key, i18n.T(ctx, "NeedDocument"), nil)
	}
	st := e.sessions.Get(ev.Key)
	lecture, err := e.store.GetLecture(st.EditingLectureID)
	if err != nil {
		_ = e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
		e.sessions.Update(ev.Key, func(st *session.State) { st.Phase = session.PhaseNone })
		return browseShow(e, ctx, ev.Key, e.lecturesSpec())
	}
	if err := e.store.UpdateFileRemoteID(lecture.FileID, ev.DocumentID); err != nil {
		return err
	}
	e.sessions.Update(ev.Key, func(st *session.State) { st.Phase = session.PhaseNone })
	return browseShow(e, ctx, ev.Key, e.lecturesSpec())
}

// cbLecturesList is the student-facing pick list: one button per lecture.
func (e *Engine) cbLecturesList(ctx context.Context, ev Event) error {
	lectures, err := e.store.ListLectures()
	if err != nil {
		return err
	}
	if len(lectures) == 0 {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "NoLectures"))
	}
	var kb Keyboard
	for _, l := range lectures {
		kb = append(kb, Row(Button{
			Label: trunc(l.Name, 40),
			Data:  fmt.Sprintf("lecture_get:%d", l.ID),
		}))
	}
	return e.prompt(ctx, ev.Key, i18n.T(ctx, "ChooseLecture"), kb)
}

func (e *Engine) cbLectureGet(ctx context.Context, ev Event) error {
	id, ok := ev.intArg(0)
	if !ok {
		return nil
	}
	lecture, err := e.store.GetLecture(id)
	if err != nil {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	file, err := e.store.GetFile(lecture.FileID)
	if err != nil {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	_, err = e.render.SendFile(ctx, ev.Key,
		FileRef{RemoteID: file.RemoteID, Name: lecture.Name}, lecture.Name, nil)
	return err
}
