package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/okunev/studybot/internal/i18n"
	"github.com/okunev/studybot/internal/model"
	"github.com/okunev/studybot/internal/session"
)

// Collection browsing shows one item at a time with prev/next navigation.
// The cursor is a stored position, not an item identity: every action
// re-fetches the collection, clamps the cursor and acts on whatever item
// now occupies that slot. Deleting the current item shows its successor.

// browseSpec describes how to browse one collection.
type browseSpec[T any] struct {
	collection session.Collection
	fetch      func() ([]T, error)
	// render produces the item card and its action buttons; the navigation
	// row is appended by the browser.
	render   func(ctx context.Context, item T, idx, total int) (string, Keyboard)
	prevData string
	nextData string
	emptyMsg string
}

func browseShow[T any](e *Engine, ctx context.Context, key session.Key, spec browseSpec[T]) error {
	items, err := spec.fetch()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		e.sessions.Update(key, func(st *session.State) { st.ClearCursor(spec.collection) })
		return e.showPanel(ctx, key, i18n.T(ctx, spec.emptyMsg), nil)
	}
	idx := ClampIndex(e.sessions.Get(key).Cursor(spec.collection), len(items))
	e.sessions.Update(key, func(st *session.State) { st.SetCursor(spec.collection, idx) })

	text, kb := spec.render(ctx, items[idx], idx, len(items))
	if len(items) > 1 {
		kb = append(kb, Row(
			Button{Label: "⬅️", Data: spec.prevData},
			Button{Label: fmt.Sprintf("%d/%d", idx+1, len(items)), Data: spec.nextData},
			Button{Label: "➡️", Data: spec.nextData},
		))
	}
	return e.showPanel(ctx, key, text, kb)
}

func browseMove[T any](e *Engine, ctx context.Context, key session.Key, spec browseSpec[T], dir int) error {
	items, err := spec.fetch()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		e.sessions.Update(key, func(st *session.State) { st.ClearCursor(spec.collection) })
		return e.showPanel(ctx, key, i18n.T(ctx, spec.emptyMsg), nil)
	}
	idx := e.sessions.Get(key).Cursor(spec.collection)
	newIdx, moved := Advance(idx, dir, len(items))
	if !moved {
		// Boundary: the view does not move, the user gets a notice.
		msg := "AtLastItem"
		if dir < 0 {
			msg = "AtFirstItem"
		}
		return e.render.Notify(ctx, key, i18n.T(ctx, msg))
	}
	e.sessions.Update(key, func(st *session.State) { st.SetCursor(spec.collection, newIdx) })
	return browseShow(e, ctx, key, spec)
}

// browseDelete removes the item currently under the cursor and shows its
// successor, or the empty notice when nothing is left.
func browseDelete[T any](e *Engine, ctx context.Context, key session.Key, spec browseSpec[T], del func(T) error) error {
	items, err := spec.fetch()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		e.sessions.Update(key, func(st *session.State) { st.ClearCursor(spec.collection) })
		return e.showPanel(ctx, key, i18n.T(ctx, spec.emptyMsg), nil)
	}
	idx := ClampIndex(e.sessions.Get(key).Cursor(spec.collection), len(items))
	if err := del(items[idx]); err != nil {
		return err
	}
	newIdx, ok := AfterDelete(idx, len(items)-1)
	e.sessions.Update(key, func(st *session.State) {
		if ok {
			st.SetCursor(spec.collection, newIdx)
		} else {
			st.ClearCursor(spec.collection)
		}
	})
	return browseShow(e, ctx, key, spec)
}

// confirmDelete swaps the panel for a yes/no confirmation about the current
// item.
func (e *Engine) confirmDelete(ctx context.Context, key session.Key, name, yesData, noData string) error {
	kb := Keyboard{Row(
		Button{Label: i18n.T(ctx, "BtnYes"), Data: yesData},
		Button{Label: i18n.T(ctx, "BtnNo"), Data: noData},
	)}
	return e.showPanel(ctx, key,
		i18n.Td(ctx, "ConfirmDelete", map[string]any{"Name": name}), kb)
}

// cbDeleteNo serves every *_delete_no action: it re-renders the collection
// the action name refers to.
func (e *Engine) cbDeleteNo(ctx context.Context, ev Event) error {
	switch {
	case strings.HasPrefix(ev.action(), "user_"):
		return browseShow(e, ctx, ev.Key, e.usersSpec())
	case strings.HasPrefix(ev.action(), "lecture_"):
		return browseShow(e, ctx, ev.Key, e.lecturesSpec())
	case strings.HasPrefix(ev.action(), "lab_"):
		return browseShow(e, ctx, ev.Key, e.labsSpec())
	case strings.HasPrefix(ev.action(), "test_"):
		return browseShow(e, ctx, ev.Key, e.testsSpec())
	}
	return nil
}

// currentItem fetches the collection and returns the item under the clamped
// cursor.
func currentItem[T any](e *Engine, key session.Key, spec browseSpec[T]) (T, bool, error) {
	var zero T
	items, err := spec.fetch()
	if err != nil {
		return zero, false, err
	}
	if len(items) == 0 {
		return zero, false, nil
	}
	idx := ClampIndex(e.sessions.Get(key).Cursor(spec.collection), len(items))
	return items[idx], true, nil
}

// --- users ------------------------------------------------------------------

func (e *Engine) usersSpec() browseSpec[model.User] {
	return browseSpec[model.User]{
		collection: session.CollectionUsers,
		fetch:      e.store.ListUsers,
		prevData:   "users_prev",
		nextData:   "users_next",
		emptyMsg:   "NoUsers",
		render: func(ctx context.Context, u model.User, idx, total int) (string, Keyboard) {
			var b strings.Builder
			b.WriteString(u.DisplayName() + "\n")
			if u.Username != "" {
				b.WriteString("@" + u.Username + "\n")
			}
			fmt.Fprintf(&b, "%s: %s\n", i18n.T(ctx, "RoleLabel"), string(u.Role))
			if u.Banned {
				b.WriteString(i18n.T(ctx, "BannedLabel") + "\n")
			}
			banAction := Button{Label: i18n.T(ctx, "BtnBan"), Data: "user_ban"}
			if u.Banned {
				banAction = Button{Label: i18n.T(ctx, "BtnUnban"), Data: "user_unban"}
			}
			kb := Keyboard{Row(
				banAction,
				Button{Label: i18n.T(ctx, "BtnDelete"), Data: "user_delete"},
			)}
			return b.String(), kb
		},
	}
}

func (e *Engine) cbUsersBrowse(ctx context.Context, ev Event) error {
	if !e.requirePublisher(ctx, ev) {
		return nil
	}
	return browseShow(e, ctx, ev.Key, e.usersSpec())
}

func (e *Engine) cbUsersPrev(ctx context.Context, ev Event) error {
	return browseMove(e, ctx, ev.Key, e.usersSpec(), -1)
}

func (e *Engine) cbUsersNext(ctx context.Context, ev Event) error {
	return browseMove(e, ctx, ev.Key, e.usersSpec(), +1)
}

func (e *Engine) setCurrentUserBanned(ctx context.Context, ev Event, banned bool) error {
	u, ok, err := currentItem(e, ev.Key, e.usersSpec())
	if err != nil {
		return err
	}
	if !ok {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	if err := e.store.SetUserBanned(u.ID, banned); err != nil {
		return err
	}
	return browseShow(e, ctx, ev.Key, e.usersSpec())
}

func (e *Engine) cbUserBan(ctx context.Context, ev Event) error {
	return e.setCurrentUserBanned(ctx, ev, true)
}

func (e *Engine) cbUserUnban(ctx context.Context, ev Event) error {
	return e.setCurrentUserBanned(ctx, ev, false)
}

func (e *Engine) cbUserDelete(ctx context.Context, ev Event) error {
	u, ok, err := currentItem(e, ev.Key, e.usersSpec())
	if err != nil {
		return err
	}
	if !ok {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	return e.confirmDelete(ctx, ev.Key, u.DisplayName(), "user_delete_yes", "user_delete_no")
}

func (e *Engine) cbUserDeleteYes(ctx context.Context, ev Event) error {
	return browseDelete(e, ctx, ev.Key, e.usersSpec(), func(u model.User) error {
		return e.store.DeleteUser(u.ID)
	})
}

// --- access requests --------------------------------------------------------

func (e *Engine) requestsSpec() browseSpec[model.AccessRequest] {
	return browseSpec[model.AccessRequest]{
		collection: session.CollectionRequests,
		fetch:      e.store.ListAccessRequests,
		prevData:   "requests_prev",
		nextData:   "requests_next",
		emptyMsg:   "NoRequests",
		render: func(ctx context.Context, r model.AccessRequest, idx, total int) (string, Keyboard) {
			var b strings.Builder
			fmt.Fprintf(&b, "%s %s\n", r.Surname, r.Name)
			if r.Username != "" {
				b.WriteString("@" + r.Username + "\n")
			}
			fmt.Fprintf(&b, "%s: %s\n", i18n.T(ctx, "RequestedLabel"),
				r.RequestedAt.Format("2006-01-02 15:04"))
			kb := Keyboard{Row(
				Button{Label: i18n.T(ctx, "BtnApprove"), Data: "request_approve"},
				Button{Label: i18n.T(ctx, "BtnReject"), Data: "request_reject"},
			)}
			return b.String(), kb
		},
	}
}

func (e *Engine) cbRequestsBrowse(ctx context.Context, ev Event) error {
	if !e.requirePublisher(ctx, ev) {
		return nil
	}
	return browseShow(e, ctx, ev.Key, e.requestsSpec())
}

func (e *Engine) cbRequestsPrev(ctx context.Context, ev Event) error {
	return browseMove(e, ctx, ev.Key, e.requestsSpec(), -1)
}

func (e *Engine) cbRequestsNext(ctx context.Context, ev Event) error {
	return browseMove(e, ctx, ev.Key, e.requestsSpec(), +1)
}

func (e *Engine) cbRequestApprove(ctx context.Context, ev Event) error {
	if !e.requirePublisher(ctx, ev) {
		return nil
	}
	return browseDelete(e, ctx, ev.Key, e.requestsSpec(), func(r model.AccessRequest) error {
		_, err := e.store.ApproveAccessRequest(r.ID, model.UserRoleStudent)
		return err
	})
}

func (e *Engine) cbRequestReject(ctx context.Context, ev Event) error {
	if !e.requirePublisher(ctx, ev) {
		return nil
	}
	return browseDelete(e, ctx, ev.Key, e.requestsSpec(), func(r model.AccessRequest) error {
		return e.store.DeleteAccessRequest(r.ID)
	})
}

// --- lectures ---------------------------------------------------------------

func (e *Engine) lecturesSpec() browseSpec[model.Lecture] {
	return browseSpec[model.Lecture]{
		collection: session.CollectionLectures,
		fetch:      e.store.ListLectures,
		prevData:   "lectures_prev",
		nextData:   "lectures_next",
		emptyMsg:   "NoLectures",
		render: func(ctx context.Context, l model.Lecture, idx, total int) (string, Keyboard) {
			kb := Keyboard{
				Row(
					Button{Label: i18n.T(ctx, "BtnRename"), Data: "lecture_rename"},
					Button{Label: i18n.T(ctx, "BtnReplaceFile"), Data: "lecture_replace"},
				),
				Row(Button{Label: i18n.T(ctx, "BtnDelete"), Data: "lecture_delete"}),
			}
			return l.Name, kb
		},
	}
}

func (e *Engine) cbLecturesBrowse(ctx context.Context, ev Event) error {
	if !e.requirePublisher(ctx, ev) {
		return nil
	}
	return browseShow(e, ctx, ev.Key, e.lecturesSpec())
}

func (e *Engine) cbLecturesPrev(ctx context.Context, ev Event) error {
	return browseMove(e, ctx, ev.Key, e.lecturesSpec(), -1)
}

func (e *Engine) cbLecturesNext(ctx context.Context, ev Event) error {
	return browseMove(e, ctx, ev.Key, e.lecturesSpec(), +1)
}

func (e *Engine) cbLectureDelete(ctx context.Context, ev Event) error {
	l, ok, err := currentItem(e, ev.Key, e.lecturesSpec())
	if err != nil {
		return err
	}
	if !ok {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	return e.confirmDelete(ctx, ev.Key, l.Name, "lecture_delete_yes", "lecture_delete_no")
}

func (e *Engine) cbLectureDeleteYes(ctx context.Context, ev Event) error {
	return browseDelete(e, ctx, ev.Key, e.lecturesSpec(), func(l model.Lecture) error {
		return e.store.DeleteLecture(l.ID)
	})
}

// --- labs -------------------------------------------------------------------

func (e *Engine) labsSpec() browseSpec[model.LabWork] {
	return browseSpec[model.LabWork]{
		collection: session.CollectionLabs,
		fetch:      e.store.ListLabWorks,
		prevData:   "labs_prev",
		nextData:   "labs_next",
		emptyMsg:   "NoLabs",
		render: func(ctx context.Context, l model.LabWork, idx, total int) (string, Keyboard) {
			var b strings.Builder
			b.WriteString(l.Name + "\n")
			if l.Description != "" {
				b.WriteString(l.Description + "\n")
			}
			if l.Deadline != nil {
				fmt.Fprintf(&b, "%s: %s\n", i18n.T(ctx, "DeadlineLabel"),
					l.Deadline.Format("2006-01-02 15:04"))
			}
			kb := Keyboard{Row(
				Button{Label: i18n.T(ctx, "BtnRename"), Data: "lab_rename"},
				Button{Label: i18n.T(ctx, "BtnDelete"), Data: "lab_delete"},
			)}
			return b.String(), kb
		},
	}
}

func (e *Engine) cbLabsBrowse(ctx context.Context, ev Event) error {
	if !e.requirePublisher(ctx, ev) {
		return nil
	}
	return browseShow(e, ctx, ev.Key, e.labsSpec())
}

func (e *Engine) cbLabsPrev(ctx context.Context, ev Event) error {
	return browseMove(e, ctx, ev.Key, e.labsSpec(), -1)
}

func (e *Engine) cbLabsNext(ctx context.Context, ev Event) error {
	return browseMove(e, ctx, ev.Key, e.labsSpec(), +1)
}

func (e *Engine) cbLabDelete(ctx context.Context, ev Event) error {
	l, ok, err := currentItem(e, ev.Key, e.labsSpec())
	if err != nil {
		return err
	}
	if !ok {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	return e.confirmDelete(ctx, ev.Key, l.Name, "lab_delete_yes", "lab_delete_no")
}

func (e *Engine) cbLabDeleteYes(ctx context.Context, ev Event) error {
	return browseDelete(e, ctx, ev.Key, e.labsSpec(), func(l model.LabWork) error {
		return e.store.DeleteLabWork(l.ID)
	})
}

// --- tests ------------------------------------------------------------------

func (e *Engine) testsSpec() browseSpec[model.Test] {
	return browseSpec[model.Test]{
		collection: session.CollectionTests,
		fetch:      e.store.ListTests,
		prevData:   "tests_prev",
		nextData:   "tests_next",
		emptyMsg:   "NoTests",
		render: func(ctx context.Context, t model.Test, idx, total int) (string, Keyboard) {
			kb := Keyboard{
				Row(
					Button{Label: i18n.T(ctx, "BtnEdit"), Data: fmt.Sprintf("test_edit:%d", t.ID)},
					Button{Label: i18n.T(ctx, "BtnRename"), Data: fmt.Sprintf("test_rename:%d", t.ID)},
				),
				Row(Button{Label: i18n.T(ctx, "BtnDelete"), Data: "test_delete"}),
			}
			return t.Name, kb
		},
	}
}

func (e *Engine) cbTestsBrowse(ctx context.Context, ev Event) error {
	if !e.requirePublisher(ctx, ev) {
		return nil
	}
	return browseShow(e, ctx, ev.Key, e.testsSpec())
}

func (e *Engine) cbTestsPrev(ctx context.Context, ev Event) error {
	return browseMove(e, ctx, ev.Key, e.testsSpec(), -1)
}

func (e *Engine) cbTestsNext(ctx context.Context, ev Event) error {
	return browseMove(e, ctx, ev.Key, e.testsSpec(), +1)
}

func (e *Engine) cbTestDelete(ctx context.Context, ev Event) error {
	t, ok, err := currentItem(e, ev.Key, e.testsSpec())
	if err != nil {
		return err
	}
	if !ok {
		return e.render.Notify(ctx, ev.Key, i18n.T(ctx, "ItemGone"))
	}
	return e.confirmDelete(ctx, ev.Key, t.Name, "test_delete_yes", "test_delete_no")
}

func (e *Engine) cbTestDeleteYes(ctx context.Context, ev Event) error {
	return browseDelete(e, ctx, ev.Key, e.testsSpec(), func(t model.Test) error {
		return e.store.DeleteTest(t.ID)
	})
}
