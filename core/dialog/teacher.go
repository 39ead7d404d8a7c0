package dialog

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/classroom"
	"github.com/trezcool/altedy/core/user"
)

// region Classroom (creating)

func (m *Machine) askClassroomName(ctx context.Context, conv *conversation, userID int64) error {
	m.sendCached(ctx, conv,
		"Please, enter the name of your classroom. You will be able to create more later. "+
			"The recommended format is like: Data Management 19BI-3")
	return m.users.SetStatus(ctx, userID, user.StatusAwaitClassroomName)
}

func (m *Machine) classroomNameReceived(ctx context.Context, conv *conversation, usr user.User, ev core.Event) error {
	if ev.Kind != core.EventText || ev.Text == "" {
		return nil
	}

	cls, err := m.classrooms.Create(ctx, usr.ID, ev.Text)
	if err != nil {
		return err
	}
	if err := m.users.AddManagedClassroom(ctx, usr.ID, cls.ClassroomID); err != nil {
		return errors.Wrap(err, "registering managed classroom")
	}

	m.sendCached(ctx, conv, fmt.Sprintf(
		"Classroom %s created successfully! Send its ID (message below) to your students.", cls.Name))
	m.sendCached(ctx, conv, fmt.Sprintf("Click on ID to copy: `%s`", cls.ClassroomID), mainMenuKeyboard(usr.Kind))
	return m.users.SetStatus(ctx, usr.ID, user.StatusMainMenu)
}

// endregion

// region Teacher: group actions

func (m *Machine) managedGroups(ctx context.Context, conv *conversation, usr user.User) error {
	kb := make(core.Keyboard, 0, len(usr.ManagedClassrooms))
	for _, id := range usr.ManagedClassrooms {
		cls, err := m.classrooms.Get(ctx, id)
		if err != nil {
			if errors.Is(err, classroom.ErrNotFound) {
				continue
			}
			return err
		}
		kb = append(kb, []core.Button{{Label: cls.Name, Callback: core.EncodeCallback(core.CallbackSelectGroup, cls.ClassroomID)}})
	}
	if len(kb) == 0 {
		m.sendCached(ctx, conv, "You have no classrooms yet. Create one first.", mainMenuKeyboard(usr.Kind))
		return nil
	}

	if err := m.sendLast(ctx, conv, "Here are your managed groups. Select one to view available actions.", kb); err != nil {
		return err
	}
	return m.users.SetStatus(ctx, usr.ID, user.StatusViewGroups)
}

func (m *Machine) selectGroup(ctx context.Context, conv *conversation, usr user.User, ev core.Event) error {
	if usr.Status != user.StatusViewGroups || ev.CallbackArg == "" {
		return nil
	}

	cls, err := m.classrooms.Get(ctx, ev.CallbackArg)
	if err != nil {
		return err
	}
	conv.classroomID = cls.ClassroomID

	if err := m.chat.EditText(ctx, conv.chatID, conv.lastMsgID,
		fmt.Sprintf("Group %s actions:", cls.Name), groupActionsKeyboard()); err != nil {
		m.logger.Warn("editing message", err)
	}
	return m.users.SetStatus(ctx, usr.ID, user.StatusGroupActions)
}

// endregion

// region Teacher: task authoring

func (m *Machine) beginCreateTask(ctx context.Context, conv *conversation, usr user.User) error {
	if usr.Status != user.StatusGroupActions || conv.classroomID == "" {
		return nil
	}
	m.cleanChat(ctx, conv)

	if err := m.sendLast(ctx, conv,
		"Please, send me the task in one of the following forms:\n"+
			"1. Just text message with description\n"+
			"2. File (any format - up to 15MB)\n"+
			"3. Photo\n"+
			"4. Text + photo/file\n"+
			"Use the attachment button to send me photos/files."); err != nil {
		return err
	}
	return m.users.SetStatus(ctx, usr.ID, user.StatusCreateTask)
}

func (m *Machine) taskContentReceived(ctx context.Context, conv *conversation, usr user.User, ev core.Event) error {
	if conv.classroomID == "" {
		return errors.New("no classroom selected for task creation")
	}
	if ev.Text == "" && ev.File == nil {
		return nil
	}

	taskID := classroom.NewTaskID(usr.ID, ev.Text, ev.MessageID)
	draft := m.classrooms.NewTaskDraft(taskID, usr.ID, conv.classroomID)
	if ev.Text != "" {
		draft.AddDescription(ev.Text)
	}
	if ev.File != nil {
		draft.AddFile(ev.File.Name, ev.File.Data)
	}
	if err := draft.Prepare(ctx); err != nil {
		return err
	}
	conv.draft = draft

	m.cleanChat(ctx, conv)
	m.sendCached(ctx, conv,
		"Now send me the deadline for this task in any form, e.g. 26.04.2022 23:59 or 26 april 2022 23:59.")
	return m.users.SetStatus(ctx, usr.ID, user.StatusAwaitDeadline)
}

func (m *Machine) deadlineReceived(ctx context.Context, conv *conversation, usr user.User, ev core.Event) error {
	if ev.Kind != core.EventText {
		return nil
	}
	if conv.draft == nil {
		// flow data lost (eg. restart mid-flow); start over from the menu
		m.sendCached(ctx, conv, "Sorry, I lost track of this task. Please, create it again.", mainMenuKeyboard(usr.Kind))
		return m.users.SetStatus(ctx, usr.ID, user.StatusMainMenu)
	}

	due, err := parseDeadline(ev.Text)
	if err != nil {
		m.sendCached(ctx, conv,
			"Sorry, I couldn't recognize the date format. Try more clear format, e.g. 26.04.2022 23:59")
		return nil
	}
	if err := m.classrooms.SetDeadline(ctx, conv.draft.ClassroomID(), conv.draft.TaskID(), due); err != nil {
		return err
	}

	if err := m.sendLast(ctx, conv, "Your task is ready. Send it to students?", yesNoKeyboard()); err != nil {
		return err
	}
	return m.users.SetStatus(ctx, usr.ID, user.StatusConfirmSend)
}

func (m *Machine) confirmSend(ctx context.Context, conv *conversation, usr user.User, confirmed bool) error {
	if usr.Status != user.StatusConfirmSend || conv.draft == nil {
		return nil
	}
	draft := conv.draft

	// the draft survives until the store settles the outcome, so retrying
	// the confirmation after a failure still finds it
	var text string
	if confirmed {
		switch err := m.classrooms.Distribute(ctx, draft.ClassroomID(), draft.TaskID()); {
		case err == nil:
			text = "Task was successfully sent to students! You'll receive solutions after deadline comes."
		case errors.Is(err, classroom.ErrAlreadyDistributed):
			text = "This task was already sent to students."
		default:
			return err
		}
	} else {
		// kept, not deleted; can be sent/modified later
		if err := m.classrooms.SetActive(ctx, draft.ClassroomID(), draft.TaskID(), false); err != nil {
			return err
		}
		text = "Task was not sent to students. You will be able to send/modify it later in section 'classroom' - 'tasks'."
	}

	conv.draft = nil
	m.cleanChat(ctx, conv)
	m.sendCached(ctx, conv, text, mainMenuKeyboard(usr.Kind))
	return m.users.SetStatus(ctx, usr.ID, user.StatusMainMenu)
}

// endregion
