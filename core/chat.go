package core

import (
	"context"
	"io"
	"strings"
)

// Inbound chat events, decoded once at the transport boundary into a finite
// set of variants. The dialogue layer never sees raw transport payloads.
type EventKind int

const (
	EventCommand EventKind = iota // /start, /help ...
	EventText
	EventCallback // structured button press
	EventFile     // document/photo, optionally with a text caption
)

// Callback tags carried by EventCallback events.
const (
	CallbackYes             = "callback_yes"
	CallbackNo              = "callback_no"
	CallbackRegister        = "callback_register_1"
	CallbackSignIn          = "callback_signin"
	CallbackIsStudent       = "student"
	CallbackIsTeacher       = "teacher"
	CallbackEmailTrue       = "callback_enable_email_1"
	CallbackEmailFalse      = "callback_enable_email_0"
	CallbackCreateClassroom = "callback_create_classroom"
	CallbackCreateTask      = "callback_create_task"
	CallbackSelectGroup     = "callback_group" // CallbackArg: classroom id
	CallbackSelectTask      = "callback_task"  // CallbackArg: "<classroom id>:<task id>"
)

type (
	InboundFile struct {
		Name string
		Data []byte
	}

	Event struct {
		Kind        EventKind
		ChatID      int64
		MessageID   int
		Username    string
		Command     string // EventCommand: command name without slash
		Text        string // EventText; EventFile: caption
		Callback    string // EventCallback: one of the Callback* tags
		CallbackArg string
		CallbackID  string // opaque transport id for AnswerCallback
		File        *InboundFile
	}

	Button struct {
		Label    string
		Callback string
	}

	// Keyboard is an abstract grid of buttons; actual layout is the
	// transport's concern.
	Keyboard [][]Button

	// ChatClient is the outbound chat transport contract.
	ChatClient interface {
		SendText(ctx context.Context, chatID int64, text string, kb ...Keyboard) (msgID int, err error)
		SendDocument(ctx context.Context, chatID int64, filename string, content io.Reader, caption string) (msgID int, err error)
		EditText(ctx context.Context, chatID int64, msgID int, text string, kb ...Keyboard) error
		AnswerCallback(ctx context.Context, callbackID string) error
		DeleteMessage(ctx context.Context, chatID int64, msgID int) error
	}
)

// EncodeCallback packs a callback tag and its argument into the opaque
// callback-data string carried by a button.
func EncodeCallback(tag, arg string) string {
	if arg == "" {
		return tag
	}
	return tag + ":" + arg
}

// DecodeCallback splits callback data back into (tag, arg).
func DecodeCallback(data string) (tag, arg string) {
	if i := strings.IndexByte(data, ':'); i >= 0 {
		return data[:i], data[i+1:]
	}
	return data, ""
}

// KeyboardOf builds a one-button-per-row keyboard.
func KeyboardOf(buttons ...Button) Keyboard {
	kb := make(Keyboard, 0, len(buttons))
	for _, b := range buttons {
		kb = append(kb, []Button{b})
	}
	return kb
}
