package testutil

import (
	"context"
	"io"
	"io/ioutil"
	"sync"

	"github.com/trezcool/altedy/core"
)

type (
	SentText struct {
		ChatID   int64
		Text     string
		Keyboard core.Keyboard
	}

	SentDocument struct {
		ChatID   int64
		Filename string
		Data     []byte
		Caption  string
	}

	EditedText struct {
		ChatID   int64
		MsgID    int
		Text     string
		Keyboard core.Keyboard
	}

	// ChatRecorder is an in-memory core.ChatClient capturing all outbound
	// traffic for assertions.
	ChatRecorder struct {
		mu        sync.Mutex
		nextMsgID int

		Texts     []SentText
		Documents []SentDocument
		Edits     []EditedText
		Deleted   []int
		Answered  []string

		Err error // when set, every call fails with it
	}
)

var _ core.ChatClient = (*ChatRecorder)(nil)

func (r *ChatRecorder) SendText(ctx context.Context, chatID int64, text string, kb ...core.Keyboard) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	st := SentText{ChatID: chatID, Text: text}
	if len(kb) > 0 {
		st.Keyboard = kb[0]
	}
	r.Texts = append(r.Texts, st)
	r.nextMsgID++
	return r.nextMsgID, nil
}

func (r *ChatRecorder) SendDocument(ctx context.Context, chatID int64, filename string, content io.Reader, caption string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	data, err := ioutil.ReadAll(content)
	if err != nil {
		return 0, err
	}
	r.Documents = append(r.Documents, SentDocument{ChatID: chatID, Filename: filename, Data: data, Caption: caption})
	r.nextMsgID++
	return r.nextMsgID, nil
}

func (r *ChatRecorder) EditText(ctx context.Context, chatID int64, msgID int, text string, kb ...core.Keyboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	et := EditedText{ChatID: chatID, MsgID: msgID, Text: text}
	if len(kb) > 0 {
		et.Keyboard = kb[0]
	}
	r.Edits = append(r.Edits, et)
	return nil
}

func (r *ChatRecorder) AnswerCallback(ctx context.Context, callbackID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Answered = append(r.Answered, callbackID)
	return nil
}

func (r *ChatRecorder) DeleteMessage(ctx context.Context, chatID int64, msgID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Deleted = append(r.Deleted, msgID)
	return nil
}

// LastText returns the most recent text sent to the chat.
func (r *ChatRecorder) LastText(chatID int64) (SentText, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Texts) - 1; i >= 0; i-- {
		if r.Texts[i].ChatID == chatID {
			return r.Texts[i], true
		}
	}
	return SentText{}, false
}

// Logger is a no-op core.Logger.
type Logger struct{}

var _ core.Logger = (*Logger)(nil)

func (Logger) Enable(bool)                  {}
func (Logger) Debug(string, ...interface{}) {}
func (Logger) Info(string, ...interface{})  {}
func (Logger) Warn(string, ...interface{})  {}
func (Logger) Error(string, ...interface{}) {}
func (Logger) Fatal(string, ...interface{}) {}
