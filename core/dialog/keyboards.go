package dialog

import (
	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/user"
)

// Main-menu labels, doubling as button callback tags: a press comes back as
// a callback carrying the label, a typed label as plain text.
const (
	menuAddGroup      = "Add group"
	menuMyTasks       = "My tasks"
	menuCreateGroup   = "Create group"
	menuManagedGroups = "Managed groups"
)

func registerKeyboard() core.Keyboard {
	return core.Keyboard{{
		{Label: "Register", Callback: core.CallbackRegister},
		{Label: "Sign in", Callback: core.CallbackSignIn},
	}}
}

func roleKeyboard() core.Keyboard {
	return core.Keyboard{{
		{Label: "Student", Callback: core.CallbackIsStudent},
		{Label: "Teacher", Callback: core.CallbackIsTeacher},
	}}
}

func emailConsentKeyboard() core.Keyboard {
	return core.Keyboard{{
		{Label: "Yes", Callback: core.CallbackEmailTrue},
		{Label: "No", Callback: core.CallbackEmailFalse},
	}}
}

func yesNoKeyboard() core.Keyboard {
	return core.Keyboard{{
		{Label: "Yes", Callback: core.CallbackYes},
		{Label: "No", Callback: core.CallbackNo},
	}}
}

func groupActionsKeyboard() core.Keyboard {
	return core.KeyboardOf(core.Button{Label: "Create task", Callback: core.CallbackCreateTask})
}

func mainMenuKeyboard(kind user.Kind) core.Keyboard {
	if kind == user.KindTeacher {
		return core.Keyboard{{
			{Label: menuCreateGroup, Callback: menuCreateGroup},
			{Label: menuManagedGroups, Callback: menuManagedGroups},
		}}
	}
	return core.Keyboard{{
		{Label: menuAddGroup, Callback: menuAddGroup},
		{Label: menuMyTasks, Callback: menuMyTasks},
	}}
}
