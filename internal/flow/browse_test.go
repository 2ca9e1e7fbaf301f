package flow

import (
	"strings"
	"testing"

	"github.com/okunev/studybot/internal/model"
	"github.com/okunev/studybot/internal/session"
)

func TestBrowseNavigationAndBoundaries(t *testing.T) {
	e, st, r, ctx := newTestEngine(t)
	admin := adminUser()

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		if _, err := st.CreateTest(name, nil); err != nil {
			t.Fatalf("CreateTest: %v", err)
		}
	}

	e.Dispatch(ctx, callbackEvent("tests_browse", admin))
	if got := r.lastShown(); got != "Alpha" {
		t.Fatalf("expected first item, got %q", got)
	}

	// Backward at the first item: notice, no movement.
	e.Dispatch(ctx, callbackEvent("tests_prev", admin))
	if got := r.lastNotice(); got != "This is the first item." {
		t.Fatalf("expected first-item notice, got %q", got)
	}
	if idx := e.sessions.Get(testKey).Cursor(session.CollectionTests); idx != 0 {
		t.Fatalf("expected cursor to stay at 0, got %d", idx)
	}

	e.Dispatch(ctx, callbackEvent("tests_next", admin))
	if got := r.lastShown(); got != "Beta" {
		t.Fatalf("expected second item, got %q", got)
	}
	e.Dispatch(ctx, callbackEvent("tests_next", admin))
	if got := r.lastShown(); got != "Gamma" {
		t.Fatalf("expected third item, got %q", got)
	}

	// Forward at the last item: notice, no movement.
	e.Dispatch(ctx, callbackEvent("tests_next", admin))
	if got := r.lastNotice(); got != "This is the last item." {
		t.Fatalf("expected last-item notice, got %q", got)
	}
	if idx := e.sessions.Get(testKey).Cursor(session.CollectionTests); idx != 2 {
		t.Fatalf("expected cursor to stay at 2, got %d", idx)
	}
}

func TestBrowseCursorSurvivesConcurrentShrink(t *testing.T) {
	e, st, r, ctx := newTestEngine(t)
	admin := adminUser()

	var ids []int64
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		id, err := st.CreateTest(name, nil)
		if err != nil {
			t.Fatalf("CreateTest: %v", err)
		}
		ids = append(ids, id)
	}

	e.Dispatch(ctx, callbackEvent("tests_browse", admin))
	e.Dispatch(ctx, callbackEvent("tests_next", admin))
	e.Dispatch(ctx, callbackEvent("tests_next", admin)) // at Gamma, index 2

	// Another actor deletes two items out from under the cursor.
	if err := st.DeleteTest(ids[0]); err != nil {
		t.Fatalf("DeleteTest: %v", err)
	}
	if err := st.DeleteTest(ids[1]); err != nil {
		t.Fatalf("DeleteTest: %v", err)
	}

	// The stale index is clamped against the fresh fetch, not trusted.
	e.Dispatch(ctx, callbackEvent("tests_browse", admin))
	if got := r.lastShown(); got != "Gamma" {
		t.Fatalf("expected clamped view of remaining item, got %q", got)
	}
	if idx := e.sessions.Get(testKey).Cursor(session.CollectionTests); idx != 0 {
		t.Fatalf("expected cursor clamped to 0, got %d", idx)
	}
}

func TestBrowseMiddleItemDeletedConcurrently(t *testing.T) {
	e, st, r, ctx := newTestEngine(t)
	admin := adminUser()

	var ids []int64
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		id, err := st.CreateTest(name, nil)
		if err != nil {
			t.Fatalf("CreateTest: %v", err)
		}
		ids = append(ids, id)
	}

	e.Dispatch(ctx, callbackEvent("tests_browse", admin))
	e.Dispatch(ctx, callbackEvent("tests_next", admin)) // viewing Beta at index 1

	// Beta is removed by another actor; index 1 now holds Gamma.
	if err := st.DeleteTest(ids[1]); err != nil {
		t.Fatalf("DeleteTest: %v", err)
	}
	e.Dispatch(ctx, callbackEvent("tests_browse", admin))
	if got := r.lastShown(); got != "Gamma" {
		t.Fatalf("expected item now at the stored position, got %q", got)
	}
	if idx := e.sessions.Get(testKey).Cursor(session.CollectionTests); idx != 1 {
		t.Fatalf("expected cursor to stay at 1, got %d", idx)
	}
}

func TestBrowseDeleteShowsSuccessor(t *testing.T) {
	e, st, r, ctx := newTestEngine(t)
	admin := adminUser()

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		if _, err := st.CreateTest(name, nil); err != nil {
			t.Fatalf("CreateTest: %v", err)
		}
	}

	e.Dispatch(ctx, callbackEvent("tests_browse", admin))
	e.Dispatch(ctx, callbackEvent("tests_next", admin)) // at Beta

	e.Dispatch(ctx, callbackEvent("test_delete", admin))
	if got := r.lastShown(); !strings.Contains(got, "Beta") {
		t.Fatalf("expected delete confirmation, got %q", got)
	}
	e.Dispatch(ctx, callbackEvent("test_delete_yes", admin))

	// The successor slides into the vacated slot.
	if got := r.lastShown(); got != "Gamma" {
		t.Fatalf("expected successor after delete, got %q", got)
	}
	tests, _ := st.ListTests()
	if len(tests) != 2 {
		t.Fatalf("expected 2 tests left, got %d", len(tests))
	}

	// Deleting the last remaining items empties the view.
	e.Dispatch(ctx, callbackEvent("test_delete", admin))
	e.Dispatch(ctx, callbackEvent("test_delete_yes", admin))
	if got := r.lastShown(); got != "Alpha" {
		t.Fatalf("expected last item after tail delete, got %q", got)
	}
	e.Dispatch(ctx, callbackEvent("test_delete", admin))
	e.Dispatch(ctx, callbackEvent("test_delete_yes", admin))
	if got := r.lastShown(); got != "There are no tests yet." {
		t.Fatalf("expected empty notice, got %q", got)
	}
	if _, ok := e.sessions.Get(testKey).Cursors[session.CollectionTests]; ok {
		t.Error("expected cursor to be cleared for empty collection")
	}
}

func TestRequestApproveAdvances(t *testing.T) {
	e, st, r, ctx := newTestEngine(t)
	admin := adminUser()

	for i, name := range []string{"First", "Second"} {
		if _, err := st.CreateAccessRequest(model.AccessRequest{
			TelegramID: int64(100 + i),
			Name:       name,
			Surname:    "Student",
		}); err != nil {
			t.Fatalf("CreateAccessRequest: %v", err)
		}
	}

	e.Dispatch(ctx, callbackEvent("requests_browse", admin))
	e.Dispatch(ctx, callbackEvent("request_approve", admin))

	// First request approved and removed; the second is shown.
	if got := r.lastShown(); !strings.Contains(got, "Second") {
		t.Fatalf("expected next request, got %q", got)
	}
	u, err := st.GetUserByTelegramID(100)
	if err != nil {
		t.Fatalf("GetUserByTelegramID: %v", err)
	}
	if u == nil || u.Role != model.UserRoleStudent {
		t.Fatalf("expected approved student, got %+v", u)
	}

	e.Dispatch(ctx, callbackEvent("request_reject", admin))
	if got := r.lastShown(); got != "There are no pending requests." {
		t.Fatalf("expected empty notice, got %q", got)
	}
	if u, _ := st.GetUserByTelegramID(101); u != nil {
		t.Errorf("rejected request must not create a user, got %+v", u)
	}
}
