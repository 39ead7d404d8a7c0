package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/classroom"
	"github.com/trezcool/altedy/core/user"
)

// region Main menu

func (m *Machine) menuSelected(ctx context.Context, conv *conversation, usr user.User, ev core.Event) error {
	if ev.Kind != core.EventText {
		return nil
	}
	switch ev.Text {
	case menuAddGroup:
		if !usr.IsStudent() {
			return nil
		}
		m.cleanChat(ctx, conv)
		m.sendCached(ctx, conv,
			"Please, send me group ID. If you don't have one, ask your teacher or classmates.")
		return m.users.SetStatus(ctx, usr.ID, user.StatusAddGroup)

	case menuMyTasks:
		if !usr.IsStudent() {
			return nil
		}
		return m.myTasks(ctx, conv, usr)

	case menuCreateGroup:
		if !usr.IsTeacher() {
			return nil
		}
		m.cleanChat(ctx, conv)
		return m.askClassroomName(ctx, conv, usr.ID)

	case menuManagedGroups:
		if !usr.IsTeacher() {
			return nil
		}
		m.cleanChat(ctx, conv)
		return m.managedGroups(ctx, conv, usr)
	}
	return nil
}

// endregion

// region Student: joining groups

func (m *Machine) classroomIDReceived(ctx context.Context, conv *conversation, usr user.User, ev core.Event) error {
	if ev.Kind != core.EventText {
		return nil
	}

	classroomID := core.CleanString(ev.Text)
	cls, err := m.classrooms.Join(ctx, usr.ID, classroomID)
	switch {
	case err == nil:
	case errors.Is(err, classroom.ErrNotFound):
		m.sendCached(ctx, conv,
			"Sorry, I couldn't find a classroom with this ID. Please, check it and send one more time.")
		return nil
	case errors.Is(err, classroom.ErrAlreadyJoined):
		m.sendCached(ctx, conv, "You are already a member of this classroom.", mainMenuKeyboard(usr.Kind))
		return m.users.SetStatus(ctx, usr.ID, user.StatusMainMenu)
	default:
		return err
	}

	if err := m.users.AddClassroom(ctx, usr.ID, classroomID); err != nil {
		return errors.Wrap(err, "registering joined classroom")
	}
	m.cleanChat(ctx, conv)
	m.sendCached(ctx, conv,
		fmt.Sprintf("Congratulations, you are now a member of %s!", cls.Name), mainMenuKeyboard(usr.Kind))
	return m.users.SetStatus(ctx, usr.ID, user.StatusMainMenu)
}

// endregion

// region Student: task submission

// myTasks lists distributed active tasks across the student's classrooms.
func (m *Machine) myTasks(ctx context.Context, conv *conversation, usr user.User) error {
	var kb core.Keyboard
	for _, id := range usr.Classrooms {
		cls, err := m.classrooms.Get(ctx, id)
		if err != nil {
			if errors.Is(err, classroom.ErrNotFound) {
				continue
			}
			return err
		}
		for _, t := range cls.Tasks {
			if !t.Active || !t.Distributed {
				continue
			}
			label := fmt.Sprintf("%s: %s", cls.Name, summarize(t.Description))
			kb = append(kb, []core.Button{{
				Label:    label,
				Callback: core.EncodeCallback(core.CallbackSelectTask, cls.ClassroomID+":"+t.ID),
			}})
		}
	}
	if len(kb) == 0 {
		m.sendCached(ctx, conv, "You have no active tasks. Enjoy!", mainMenuKeyboard(usr.Kind))
		return nil
	}
	return m.sendLast(ctx, conv, "Here are your active tasks. Select one to submit your answer.", kb)
}

func (m *Machine) selectTask(ctx context.Context, conv *conversation, usr user.User, ev core.Event) error {
	if usr.Status != user.StatusMainMenu || !usr.IsStudent() {
		return nil
	}
	parts := strings.SplitN(ev.CallbackArg, ":", 2)
	if len(parts) != 2 {
		return nil
	}
	conv.submitClassroomID, conv.submitTaskID = parts[0], parts[1]

	m.sendCached(ctx, conv,
		"Send me your answer in one message: text, file or photo (use the attachment button). "+
			"Sending again replaces your previous answer.")
	return m.users.SetStatus(ctx, usr.ID, user.StatusSubmitTask)
}

func (m *Machine) submissionReceived(ctx context.Context, conv *conversation, usr user.User, ev core.Event) error {
	if conv.submitTaskID == "" {
		m.sendCached(ctx, conv, "Sorry, I lost track of this task. Please, select it again.", mainMenuKeyboard(usr.Kind))
		return m.users.SetStatus(ctx, usr.ID, user.StatusMainMenu)
	}
	if ev.Text == "" && ev.File == nil {
		return nil
	}

	sub := classroom.StudentSubmission{
		TaskID:      conv.submitTaskID,
		StudentID:   usr.ID,
		Description: ev.Text,
	}
	if ev.File != nil {
		sub.Files = []classroom.TaskFile{{Filename: ev.File.Name, Data: ev.File.Data}}
	}

	switch err := m.classrooms.RecordSubmission(ctx, conv.submitClassroomID, sub); {
	case err == nil:
		m.sendCached(ctx, conv, "Your answer was submitted!", mainMenuKeyboard(usr.Kind))
	case errors.Is(err, classroom.ErrTaskArchived):
		m.sendCached(ctx, conv, "Sorry, the deadline for this task has already passed.", mainMenuKeyboard(usr.Kind))
	case errors.Is(err, classroom.ErrTaskNotFound):
		m.sendCached(ctx, conv, "Sorry, this task is no longer available.", mainMenuKeyboard(usr.Kind))
	default:
		return err
	}

	conv.submitClassroomID, conv.submitTaskID = "", ""
	m.cleanChat(ctx, conv)
	return m.users.SetStatus(ctx, usr.ID, user.StatusMainMenu)
}

func summarize(s string) string {
	const max = 30
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// endregion
