package telegramsvc

import (
	"fmt"
	"io/ioutil"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/trezcool/altedy/core"
)

// decode maps a raw update onto the event union. Updates the dialogue layer
// has no use for (edits, channel posts, ...) are dropped.
func (b *Bot) decode(update tgbotapi.Update) (core.Event, bool) {
	if cb := update.CallbackQuery; cb != nil && cb.Message != nil {
		tag, arg := core.DecodeCallback(cb.Data)
		return core.Event{
			Kind:        core.EventCallback,
			ChatID:      cb.Message.Chat.ID,
			MessageID:   cb.Message.MessageID,
			Username:    cb.From.UserName,
			Callback:    tag,
			CallbackArg: arg,
			CallbackID:  cb.ID,
		}, true
	}

	msg := update.Message
	if msg == nil {
		return core.Event{}, false
	}

	ev := core.Event{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
	}
	if msg.From != nil {
		ev.Username = msg.From.UserName
	}

	switch {
	case msg.IsCommand():
		ev.Kind = core.EventCommand
		ev.Command = msg.Command()

	case msg.Document != nil:
		ev.Kind = core.EventFile
		ev.Text = msg.Caption
		data, err := b.download(msg.Document.FileID)
		if err != nil {
			b.logger.Error(fmt.Sprintf("downloading document %q: %v", msg.Document.FileName, err), err)
			return core.Event{}, false
		}
		ev.File = &core.InboundFile{Name: msg.Document.FileName, Data: data}

	case len(msg.Photo) > 0:
		ev.Kind = core.EventFile
		ev.Text = msg.Caption
		photo := msg.Photo[len(msg.Photo)-1] // highest resolution last
		data, err := b.download(photo.FileID)
		if err != nil {
			b.logger.Error(fmt.Sprintf("downloading photo: %v", err), err)
			return core.Event{}, false
		}
		ev.File = &core.InboundFile{Name: "photo.jpg", Data: data}

	case msg.Text != "":
		ev.Kind = core.EventText
		ev.Text = msg.Text

	default:
		return core.Event{}, false
	}
	return ev, true
}

func (b *Bot) download(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	res, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", res.Status)
	}
	return ioutil.ReadAll(res.Body)
}
