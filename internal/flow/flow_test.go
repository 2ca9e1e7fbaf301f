package flow

import (
	"context"
	"testing"

	"github.com/okunev/studybot/internal/i18n"
	"github.com/okunev/studybot/internal/model"
	"github.com/okunev/studybot/internal/session"
	"github.com/okunev/studybot/internal/store"
)

// fakeRenderer records outbound calls so tests can assert on what the user
// would have seen.
type fakeRenderer struct {
	nextID   int
	shown    []string // prompts and edits in display order
	deleted  []int
	notices  []string
	lastKB   Keyboard
	sentDocs []string
}

func (f *fakeRenderer) ShowPrompt(_ context.Context, _ session.Key, text string, kb Keyboard) (int, error) {
	f.nextID++
	f.shown = append(f.shown, text)
	f.lastKB = kb
	return f.nextID, nil
}

func (f *fakeRenderer) EditPrompt(_ context.Context, _ session.Key, _ int, text string, kb Keyboard) error {
	f.shown = append(f.shown, text)
	f.lastKB = kb
	return nil
}

func (f *fakeRenderer) DeleteMessage(_ context.Context, _ session.Key, messageID int) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeRenderer) SendFile(_ context.Context, _ session.Key, file FileRef, _ string, _ Keyboard) (int, error) {
	f.nextID++
	f.sentDocs = append(f.sentDocs, file.RemoteID)
	return f.nextID, nil
}

func (f *fakeRenderer) Notify(_ context.Context, _ session.Key, text string) error {
	f.notices = append(f.notices, text)
	return nil
}

func (f *fakeRenderer) lastNotice() string {
	if len(f.notices) == 0 {
		return ""
	}
	return f.notices[len(f.notices)-1]
}

// lastShown returns the most recently displayed prompt or panel text.
func (f *fakeRenderer) lastShown() string {
	if len(f.shown) == 0 {
		return ""
	}
	return f.shown[len(f.shown)-1]
}

var testKey = session.Key{ChatID: 10, UserID: 20}

func adminUser() model.User {
	return model.User{ID: 1, TelegramID: 20, Name: "Admin", Role: model.UserRoleAdmin, Active: true}
}

func studentUser(id int64) model.User {
	return model.User{ID: id, TelegramID: 20, Name: "Student", Role: model.UserRoleStudent, Active: true}
}

func newTestEngine(t *testing.T) (*Engine, *store.Store, *fakeRenderer, context.Context) {
	t.Helper()
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	r := &fakeRenderer{}
	e := New(st, session.NewStore(), r)
	ctx := i18n.WithLocalizer(context.Background(), i18n.LocalizerFor("en"))
	return e, st, r, ctx
}

func textEvent(text string, user model.User) Event {
	return Event{Key: testKey, Kind: KindText, Text: text, MessageID: 500, User: user}
}

func callbackEvent(data string, user model.User) Event {
	return Event{Key: testKey, Kind: KindCallback, Data: data, User: user}
}
