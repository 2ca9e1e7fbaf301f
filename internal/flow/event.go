package flow

import (
	"strconv"
	"strings"

	"github.com/okunev/studybot/internal/model"
	"github.com/okunev/studybot/internal/session"
)

// Kind tags an inbound event.
type Kind int

const (
	// KindText is a plain message; it may carry an attached document.
	KindText Kind = iota
	// KindCallback is a button press carrying an opaque payload.
	KindCallback
)

// Event is one inbound chat event, already resolved against the user store
// by the transport adapter. Events are independent and stateless; all
// continuity comes from the session store.
type Event struct {
	Key       session.Key
	Kind      Kind
	Text      string
	Data      string
	MessageID int

	// DocumentID and FileName are set when the message carries a document.
	DocumentID string
	FileName   string

	// User is the sender's stored record; the zero value means guest.
	User model.User
}

// action returns the callback action name: everything before the first ':'.
func (ev Event) action() string {
	if i := strings.IndexByte(ev.Data, ':'); i >= 0 {
		return ev.Data[:i]
	}
	return ev.Data
}

// args returns the ':'-separated payload arguments after the action name.
func (ev Event) args() []string {
	if i := strings.IndexByte(ev.Data, ':'); i >= 0 {
		return strings.Split(ev.Data[i+1:], ":")
	}
	return nil
}

// intArg parses argument n as an integer; ok is false when absent or bad.
func (ev Event) intArg(n int) (int64, bool) {
	args := ev.args()
	if n >= len(args) {
		return 0, false
	}
	v, err := strconv.ParseInt(args[n], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
