// Package telegram adapts the Telegram Bot API to the workflow engine: it
// translates inbound updates into engine events and implements the outbound
// renderer on top of the bot API client.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/okunev/studybot/internal/flow"
	"github.com/okunev/studybot/internal/session"
	"github.com/okunev/studybot/internal/store"
)

// Bot is the Telegram transport. It owns the API client and feeds updates
// into the workflow engine.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *flow.Engine
	store  *store.Store

	// lastCallback remembers the most recent unanswered callback query per
	// conversation so Notify can answer it as a toast instead of sending a
	// message.
	mu           sync.Mutex
	lastCallback map[session.Key]string
}

// Config carries the transport settings.
type Config struct {
	Token string
	Debug bool
}

// New connects to the Bot API and returns the transport. The engine is
// attached separately because engine and renderer reference each other.
func New(cfg Config, st *store.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connect to bot api: %w", err)
	}
	api.Debug = cfg.Debug
	slog.Info("connected to bot api", "username", api.Self.UserName)
	return &Bot{
		api:          api,
		store:        st,
		lastCallback: make(map[session.Key]string),
	}, nil
}

// SetEngine attaches the workflow engine that will receive events.
func (b *Bot) SetEngine(e *flow.Engine) {
	b.engine = e
}

func toMarkup(kb flow.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			r = append(r, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		rows = append(rows, r)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ShowPrompt sends a message with an optional inline keyboard.
func (b *Bot) ShowPrompt(ctx context.Context, key session.Key, text string, kb flow.Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(key.ChatID, text)
	if len(kb) > 0 {
		msg.ReplyMarkup = toMarkup(kb)
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return sent.MessageID, nil
}

// EditPrompt replaces the text and keyboard of an existing message.
func (b *Bot) EditPrompt(ctx context.Context, key session.Key, messageID int, text string, kb flow.Keyboard) error {
	var err error
	if len(kb) > 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(key.ChatID, messageID, text, toMarkup(kb))
		_, err = b.api.Send(edit)
	} else {
		edit := tgbotapi.NewEditMessageText(key.ChatID, messageID, text)
		_, err = b.api.Send(edit)
	}
	if err != nil {
		return fmt.Errorf("edit message %d: %w", messageID, err)
	}
	return nil
}

// DeleteMessage retracts a message.
func (b *Bot) DeleteMessage(ctx context.Context, key session.Key, messageID int) error {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(key.ChatID, messageID)); err != nil {
		return fmt.Errorf("delete message %d: %w", messageID, err)
	}
	return nil
}

// SendFile delivers a document already stored on Telegram by file id.
func (b *Bot) SendFile(ctx context.Context, key session.Key, file flow.FileRef, caption string, kb flow.Keyboard) (int, error) {
	doc := tgbotapi.NewDocument(key.ChatID, tgbotapi.FileID(file.RemoteID))
	doc.Caption = caption
	if len(kb) > 0 {
		doc.ReplyMarkup = toMarkup(kb)
	}
	sent, err := b.api.Send(doc)
	if err != nil {
		return 0, fmt.Errorf("send document: %w", err)
	}
	return sent.MessageID, nil
}

// Notify shows a transient notice. When the event being handled was a button
// press the pending callback query is answered as a toast; otherwise a plain
// message is sent.
func (b *Bot) Notify(ctx context.Context, key session.Key, text string) error {
	b.mu.Lock()
	callbackID, ok := b.lastCallback[key]
	if ok {
		delete(b.lastCallback, key)
	}
	b.mu.Unlock()

	if ok {
		if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
			return fmt.Errorf("answer callback: %w", err)
		}
		return nil
	}
	_, err := b.ShowPrompt(ctx, key, text, nil)
	return err
}
