package telegramsvc

import (
	"context"
	"fmt"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/altedy/core"
)

// Handler consumes decoded chat events. Implemented by dialog.Machine.
type Handler interface {
	Handle(ctx context.Context, ev core.Event)
}

// Bot adapts the Telegram transport to core.ChatClient and pumps incoming
// updates into a Handler.
type Bot struct {
	api    *tgbotapi.BotAPI
	logger core.Logger
}

var _ core.ChatClient = (*Bot)(nil)

func NewBot(logger core.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(core.Conf.GetString("botToken"))
	if err != nil {
		return nil, errors.Wrap(err, "connecting bot")
	}
	api.Debug = core.Conf.GetBool("debug")
	return &Bot{api: api, logger: logger}, nil
}

// Run long-polls for updates until ctx is cancelled. Each update is handled
// in its own goroutine; per-chat ordering is the Handler's concern.
func (b *Bot) Run(ctx context.Context, handler Handler) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	b.logger.Info(fmt.Sprintf("bot online: @%s", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			ev, ok := b.decode(update)
			if !ok {
				continue
			}
			go handler.Handle(ctx, ev)
		}
	}
}

func (b *Bot) SendText(ctx context.Context, chatID int64, text string, kb ...core.Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if len(kb) > 0 {
		msg.ReplyMarkup = markupOf(kb[0])
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, errors.Wrap(err, "sending message")
	}
	return sent.MessageID, nil
}

func (b *Bot) SendDocument(ctx context.Context, chatID int64, filename string, content io.Reader, caption string) (int, error) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{Name: filename, Reader: content})
	doc.Caption = caption
	sent, err := b.api.Send(doc)
	if err != nil {
		return 0, errors.Wrap(err, "sending document")
	}
	return sent.MessageID, nil
}

func (b *Bot) EditText(ctx context.Context, chatID int64, msgID int, text string, kb ...core.Keyboard) error {
	var edit tgbotapi.EditMessageTextConfig
	if len(kb) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, markupOf(kb[0]))
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, msgID, text)
	}
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		return errors.Wrap(err, "editing message")
	}
	return nil
}

func (b *Bot) AnswerCallback(ctx context.Context, callbackID string) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return errors.Wrap(err, "answering callback")
	}
	return nil
}

func (b *Bot) DeleteMessage(ctx context.Context, chatID int64, msgID int) error {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, msgID)); err != nil {
		return errors.Wrap(err, "deleting message")
	}
	return nil
}

func markupOf(kb core.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Callback))
		}
		rows = append(rows, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
