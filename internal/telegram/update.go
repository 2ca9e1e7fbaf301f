package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/okunev/studybot/internal/flow"
	"github.com/okunev/studybot/internal/i18n"
	"github.com/okunev/studybot/internal/model"
	"github.com/okunev/studybot/internal/session"
)

// Run consumes updates over long polling until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	slog.Info("listening for updates")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// SetWebhook registers the webhook URL with Telegram.
func (b *Bot) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// WebhookHandler returns an HTTP handler that accepts webhook updates.
func (b *Bot) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		update, err := b.api.HandleUpdate(r)
		if err != nil {
			slog.Warn("bad webhook update", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		go b.handleUpdate(r.Context(), *update)
		w.WriteHeader(http.StatusOK)
	}
}

// handleUpdate translates one update into an engine event. A panic in a
// handler is contained here so one conversation cannot take down the update
// loop.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while handling update", "panic", r)
		}
	}()

	from := update.SentFrom()
	chat := update.FromChat()
	if from == nil || chat == nil {
		return
	}
	key := session.Key{ChatID: chat.ID, UserID: from.ID}

	var user model.User
	if stored, err := b.store.GetUserByTelegramID(from.ID); err != nil {
		slog.Error("user lookup failed", "telegram_id", from.ID, "error", err)
		return
	} else if stored != nil {
		if stored.Banned {
			return
		}
		user = *stored
	}
	if user.Username == "" {
		user.Username = from.UserName
	}

	ctx = i18n.WithLocalizer(ctx, i18n.LocalizerFor(from.LanguageCode))

	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		b.mu.Lock()
		b.lastCallback[key] = cq.ID
		b.mu.Unlock()

		ev := flow.Event{
			Key:  key,
			Kind: flow.KindCallback,
			Data: cq.Data,
			User: user,
		}
		if cq.Message != nil {
			ev.MessageID = cq.Message.MessageID
		}
		b.engine.Dispatch(ctx, ev)
		b.answerLeftoverCallback(key, cq.ID)

	case update.Message != nil:
		msg := update.Message
		if msg.IsCommand() {
			b.handleCommand(ctx, key, user, msg.Command())
			return
		}
		ev := flow.Event{
			Key:       key,
			Kind:      flow.KindText,
			Text:      msg.Text,
			MessageID: msg.MessageID,
			User:      user,
		}
		if msg.Document != nil {
			ev.DocumentID = msg.Document.FileID
			ev.FileName = msg.Document.FileName
			if ev.Text == "" {
				ev.Text = msg.Caption
			}
		}
		b.engine.Dispatch(ctx, ev)
	}
}

// answerLeftoverCallback acknowledges a callback query that no handler
// answered, so the client stops showing its spinner.
func (b *Bot) answerLeftoverCallback(key session.Key, callbackID string) {
	b.mu.Lock()
	_, pending := b.lastCallback[key]
	delete(b.lastCallback, key)
	b.mu.Unlock()
	if !pending {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		slog.Warn("failed to answer callback", "error", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, key session.Key, user model.User, command string) {
	switch command {
	case "start", "menu", "help":
		if err := b.sendMenu(ctx, key, user); err != nil {
			slog.Error("failed to send menu", "chat_id", key.ChatID, "error", err)
		}
	default:
		slog.Debug("ignoring unknown command", "command", command)
	}
}
