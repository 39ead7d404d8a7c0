package dialog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/araddon/dateparse"

	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/classroom"
	"github.com/trezcool/altedy/core/user"
)

// Machine is the authoritative mapping from (conversation state, inbound
// event) to (side effects, next state). Any event the current state does not
// handle is a no-op that leaves the state unchanged.
type Machine struct {
	chat       core.ChatClient
	users      *user.Service
	classrooms *classroom.Service
	logger     core.Logger

	mu    sync.Mutex
	convs map[int64]*conversation
}

func NewMachine(chat core.ChatClient, users *user.Service, classrooms *classroom.Service, logger core.Logger) *Machine {
	return &Machine{
		chat:       chat,
		users:      users,
		classrooms: classrooms,
		logger:     logger,
		convs:      make(map[int64]*conversation),
	}
}

// Handle interprets one inbound event against the user's current state.
// Events for the same chat are serialized; different chats proceed
// concurrently.
func (m *Machine) Handle(ctx context.Context, ev core.Event) {
	conv := m.conversation(ev.ChatID)
	conv.Lock()
	defer conv.Unlock()

	if err := m.dispatch(ctx, conv, ev); err != nil {
		m.logger.Error(fmt.Sprintf("handling event for chat %d: %v", ev.ChatID, err), err)
		// the in-flight step failed; state is left unchanged so retrying
		// the same input is safe
		m.sendCached(ctx, conv, "Sorry, something went wrong on our side. Please, try again.")
	}
	if ev.Kind == core.EventCallback && ev.CallbackID != "" {
		if err := m.chat.AnswerCallback(ctx, ev.CallbackID); err != nil {
			m.logger.Warn("answering callback", err)
		}
	}
}

func (m *Machine) dispatch(ctx context.Context, conv *conversation, ev core.Event) error {
	usr, err := m.users.Ensure(ctx, ev.ChatID, ev.Username)
	if err != nil {
		return err
	}

	switch ev.Kind {
	case core.EventCommand:
		return m.handleCommand(ctx, conv, usr, ev)
	case core.EventCallback:
		return m.handleCallback(ctx, conv, usr, ev)
	case core.EventText, core.EventFile:
		return m.handleMessage(ctx, conv, usr, ev)
	}
	return nil
}

// region /commands

func (m *Machine) handleCommand(ctx context.Context, conv *conversation, usr user.User, ev core.Event) error {
	switch ev.Command {
	case "start":
		greeting := fmt.Sprintf("Hello, %s! Please, complete registration for further actions.", ev.Username)
		return m.sendLast(ctx, conv, greeting, registerKeyboard())
	case "help":
		m.sendCached(ctx, conv,
			"I connect teachers and students: teachers create classrooms and tasks, "+
				"students join with a classroom ID and submit their answers before the deadline.")
	}
	return nil
}

// endregion

// region Registration

func (m *Machine) handleCallback(ctx context.Context, conv *conversation, usr user.User, ev core.Event) error {
	switch ev.Callback {
	case core.CallbackRegister:
		if err := m.chat.EditText(ctx, conv.chatID, conv.lastMsgID, "Choose working mode:", roleKeyboard()); err != nil {
			m.logger.Warn("editing message", err)
		}
		return m.users.SetStatus(ctx, usr.ID, user.StatusAwaitRole)

	case core.CallbackSignIn:
		conv.cache(conv.lastMsgID)
		m.cleanChat(ctx, conv)
		if !usr.IsRegistered() {
			return m.sendLast(ctx, conv, "Sorry, you're not registered yet.", registerKeyboard())
		}
		m.sendCached(ctx, conv, fmt.Sprintf("Welcome back, %s!", ev.Username), mainMenuKeyboard(usr.Kind))
		return m.users.SetStatus(ctx, usr.ID, user.StatusMainMenu)

	case core.CallbackIsStudent, core.CallbackIsTeacher:
		if usr.Status != user.StatusAwaitRole {
			return nil
		}
		kind := user.KindStudent
		if ev.Callback == core.CallbackIsTeacher {
			kind = user.KindTeacher
		}
		if err := m.users.SetKind(ctx, usr.ID, kind); err != nil {
			return err
		}
		if err := m.chat.EditText(ctx, conv.chatID, conv.lastMsgID,
			"Would you like to share your email to receive notifications?", emailConsentKeyboard()); err != nil {
			m.logger.Warn("editing message", err)
		}
		return m.users.SetStatus(ctx, usr.ID, user.StatusAwaitEmailConsent)

	case core.CallbackEmailTrue:
		if usr.Status != user.StatusAwaitEmailConsent {
			return nil
		}
		// next messages are user text; the consent prompt is no longer needed
		conv.cache(conv.lastMsgID)
		m.sendCached(ctx, conv, "Please, write your email as sample@address.com")
		return m.users.SetStatus(ctx, usr.ID, user.StatusAwaitEmail)

	case core.CallbackEmailFalse:
		if usr.Status != user.StatusAwaitEmailConsent {
			return nil
		}
		conv.cache(conv.lastMsgID)
		return m.askFullName(ctx, conv, usr.ID)

	case core.CallbackCreateClassroom:
		return m.askClassroomName(ctx, conv, usr.ID)

	case core.CallbackSelectGroup:
		return m.selectGroup(ctx, conv, usr, ev)

	case core.CallbackCreateTask:
		return m.beginCreateTask(ctx, conv, usr)

	case core.CallbackSelectTask:
		return m.selectTask(ctx, conv, usr, ev)

	case core.CallbackYes, core.CallbackNo:
		return m.confirmSend(ctx, conv, usr, ev.Callback == core.CallbackYes)

	case menuAddGroup, menuMyTasks, menuCreateGroup, menuManagedGroups:
		// menu buttons carry their label as the callback tag, so a press
		// lands here while a typed label arrives as plain text; both reach
		// the same menu handler
		if usr.Status != user.StatusMainMenu {
			return nil
		}
		typed := ev
		typed.Kind = core.EventText
		typed.Text = ev.Callback
		return m.menuSelected(ctx, conv, usr, typed)
	}
	return nil
}

func (m *Machine) handleMessage(ctx context.Context, conv *conversation, usr user.User, ev core.Event) error {
	conv.cache(ev.MessageID)

	switch usr.Status {
	case user.StatusAwaitEmail:
		return m.emailReceived(ctx, conv, usr, ev)
	case user.StatusAwaitFullName:
		return m.fullNameReceived(ctx, conv, usr, ev)
	case user.StatusAwaitClassroomName:
		return m.classroomNameReceived(ctx, conv, usr, ev)
	case user.StatusAddGroup:
		return m.classroomIDReceived(ctx, conv, usr, ev)
	case user.StatusCreateTask:
		return m.taskContentReceived(ctx, conv, usr, ev)
	case user.StatusAwaitDeadline:
		return m.deadlineReceived(ctx, conv, usr, ev)
	case user.StatusSubmitTask:
		return m.submissionReceived(ctx, conv, usr, ev)
	case user.StatusMainMenu:
		return m.menuSelected(ctx, conv, usr, ev)
	}
	return nil
}

func (m *Machine) emailReceived(ctx context.Context, conv *conversation, usr user.User, ev core.Event) error {
	if ev.Kind != core.EventText {
		return nil
	}
	if err := m.users.SetEmail(ctx, usr.ID, ev.Text); err != nil {
		if core.IsValidationError(err) {
			m.sendCached(ctx, conv,
				"Sorry, the email address you entered seems to be invalid. Please, check it and send one more time.")
			return nil
		}
		return err
	}
	m.cleanChat(ctx, conv)
	return m.askFullName(ctx, conv, usr.ID)
}

func (m *Machine) fullNameReceived(ctx context.Context, conv *conversation, usr user.User, ev core.Event) error {
	if ev.Kind != core.EventText {
		return nil
	}
	if err := m.users.SetFullName(ctx, usr.ID, ev.Text); err != nil {
		if core.IsValidationError(err) {
			m.sendCached(ctx, conv, "Sorry, the name you entered seems to be invalid. Write it as in example below:")
			m.sendCached(ctx, conv, "Ivanov Ivan Ivanovich")
			return nil
		}
		return err
	}
	m.cleanChat(ctx, conv)

	if usr.IsTeacher() {
		return m.askClassroomName(ctx, conv, usr.ID)
	}
	m.sendCached(ctx, conv, "Thanks, now we're ready to go!", mainMenuKeyboard(usr.Kind))
	return m.users.SetStatus(ctx, usr.ID, user.StatusMainMenu)
}

func (m *Machine) askFullName(ctx context.Context, conv *conversation, userID int64) error {
	m.sendCached(ctx, conv, "Now please enter your full name, e.g. John Doe or Ivanov Ivan Ivanovich")
	return m.users.SetStatus(ctx, userID, user.StatusAwaitFullName)
}

// endregion

// region Deadlines

// deadlineLayouts cover the day-first formats the bot itself suggests;
// anything else falls through to lenient parsing.
var deadlineLayouts = []string{
	"2.1.2006 15:04",
	"2.1.2006",
	"2 January 2006 15:04",
	"2 January 2006",
}

// parseDeadline parses free-form date/time text leniently, resolving
// day/month ambiguity day-first.
func parseDeadline(text string) (time.Time, error) {
	text = core.CleanString(text)
	for _, layout := range deadlineLayouts {
		if due, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return due, nil
		}
	}
	return dateparse.ParseIn(
		text,
		time.Local,
		dateparse.PreferMonthFirst(false),
		dateparse.RetryAmbiguousDateWithSwap(true),
	)
}

// endregion

// region Outbound helpers

// sendCached sends a message whose id is queued for later chat cleanup.
// Transport errors are logged and the operation abandoned for that message.
func (m *Machine) sendCached(ctx context.Context, conv *conversation, text string, kb ...core.Keyboard) {
	msgID, err := m.chat.SendText(ctx, conv.chatID, text, kb...)
	if err != nil {
		m.logger.Error(fmt.Sprintf("sending message to chat %d: %v", conv.chatID, err), err)
		return
	}
	conv.cache(msgID)
}

// sendLast sends a message and remembers its id for subsequent edits.
func (m *Machine) sendLast(ctx context.Context, conv *conversation, text string, kb ...core.Keyboard) error {
	msgID, err := m.chat.SendText(ctx, conv.chatID, text, kb...)
	if err != nil {
		m.logger.Error(fmt.Sprintf("sending message to chat %d: %v", conv.chatID, err), err)
		return nil
	}
	conv.lastMsgID = msgID
	return nil
}

// endregion
