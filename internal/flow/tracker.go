package flow

import (
	"context"
	"log/slog"

	"github.com/okunev/studybot/internal/session"
)

// Message lifecycle tracking. Wizards accumulate prompt and echo messages;
// when a flow completes or is cancelled the accumulated messages are
// retracted so the transcript is left clean. Retraction is best effort:
// a message that cannot be deleted is logged and skipped, and the tracked
// list is cleared either way so failures are never retried.

// trackMessage appends a message id to the session's cleanup list.
func (e *Engine) trackMessage(key session.Key, messageID int) {
	if messageID == 0 {
		return
	}
	e.sessions.Update(key, func(st *session.State) {
		st.Tracked = append(st.Tracked, messageID)
	})
}

// flushTracked deletes every tracked message in reverse order (newest
// first), then clears the list.
func (e *Engine) flushTracked(ctx context.Context, key session.Key) {
	st := e.sessions.Get(key)
	for i := len(st.Tracked) - 1; i >= 0; i-- {
		if err := e.render.DeleteMessage(ctx, key, st.Tracked[i]); err != nil {
			slog.Warn("failed to delete tracked message",
				"chat_id", key.ChatID, "message_id", st.Tracked[i], "error", err)
		}
	}
	e.sessions.Update(key, func(st *session.State) {
		st.Tracked = nil
	})
}

// clearPrompts retracts the current instruction prompt and panel message, if
// any, and zeroes the slots.
func (e *Engine) clearPrompts(ctx context.Context, key session.Key) {
	st := e.sessions.Get(key)
	for _, id := range []int{st.PromptMsgID, st.PanelMsgID} {
		if id == 0 {
			continue
		}
		if err := e.render.DeleteMessage(ctx, key, id); err != nil {
			slog.Warn("failed to delete prompt message",
				"chat_id", key.ChatID, "message_id", id, "error", err)
		}
	}
	e.sessions.Update(key, func(st *session.State) {
		st.PromptMsgID = 0
		st.PanelMsgID = 0
	})
}

// prompt sends an instruction message, records it as the current prompt and
// tracks it for cleanup.
func (e *Engine) prompt(ctx context.Context, key session.Key, text string, kb Keyboard) error {
	id, err := e.render.ShowPrompt(ctx, key, text, kb)
	if err != nil {
		return err
	}
	e.sessions.Update(key, func(st *session.State) {
		st.PromptMsgID = id
		st.Tracked = append(st.Tracked, id)
	})
	return nil
}
