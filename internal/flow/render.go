package flow

import (
	"context"

	"github.com/okunev/studybot/internal/session"
)

// Button is one selectable option attached to a prompt. Data is the opaque
// callback payload delivered back as an Event.
type Button struct {
	Label string
	Data  string
}

// Keyboard is rows of buttons. Layout is up to the renderer.
type Keyboard [][]Button

// Row builds one keyboard row.
func Row(buttons ...Button) []Button {
	return buttons
}

// FileRef points at a file already stored on the chat platform.
type FileRef struct {
	RemoteID string
	Name     string
}

// Renderer is the outbound side of the chat platform. Every call is a
// suspension point; failures are reported, never panicked.
type Renderer interface {
	// ShowPrompt sends a new message and returns its id.
	ShowPrompt(ctx context.Context, key session.Key, text string, kb Keyboard) (int, error)
	// EditPrompt replaces the text and keyboard of an existing message.
	EditPrompt(ctx context.Context, key session.Key, messageID int, text string, kb Keyboard) error
	// DeleteMessage retracts a message. Best effort only.
	DeleteMessage(ctx context.Context, key session.Key, messageID int) error
	// SendFile delivers a stored file with a caption and returns the
	// message id.
	SendFile(ctx context.Context, key session.Key, file FileRef, caption string, kb Keyboard) (int, error)
	// Notify shows a short transient notice that is not part of the
	// conversation transcript (a callback answer, toast or equivalent).
	Notify(ctx context.Context, key session.Key, text string) error
}
