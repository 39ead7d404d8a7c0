package user

import (
	"time"

	"github.com/trezcool/altedy/core"
)

// Kind discriminates the two working modes a user registers under.
type Kind string

const (
	KindStudent Kind = "student"
	KindTeacher Kind = "teacher"
)

// Status is the per-user conversation state. Exactly one per user at any
// time; transitions are triggered only by the dialogue machine.
type Status string

const (
	StatusNew                Status = ""
	StatusAwaitRole          Status = "await_role"
	StatusAwaitEmailConsent  Status = "await_email_consent"
	StatusAwaitEmail         Status = "await_email"
	StatusAwaitFullName      Status = "await_full_name"
	StatusAwaitClassroomName Status = "await_classroom_name"
	StatusMainMenu           Status = "main_menu"
	StatusAddGroup           Status = "add_group"
	StatusViewGroups         Status = "view_groups"
	StatusGroupActions       Status = "group_actions"
	StatusCreateTask         Status = "create_task"
	StatusAwaitDeadline      Status = "await_deadline"
	StatusConfirmSend        Status = "confirm_send"
	StatusSubmitTask         Status = "submit_task"
)

type User struct {
	ID       int64  `bson:"user_id" json:"user_id"`
	Username string `bson:"username" json:"username"`
	FullName string `bson:"full_name" json:"full_name"`
	Email    string `bson:"email" json:"email"`
	Kind     Kind   `bson:"type" json:"type"`
	Status   Status `bson:"status" json:"status"`

	// classrooms joined (students) or managed (teachers)
	Classrooms        []string `bson:"classrooms" json:"classrooms"`
	ManagedClassrooms []string `bson:"managed_classrooms" json:"managed_classrooms"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"` // UTC
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"` // UTC
}

func (u *User) IsTeacher() bool { return u.Kind == KindTeacher }
func (u *User) IsStudent() bool { return u.Kind == KindStudent }

// IsRegistered reports whether the user completed the registration flow at
// least up to choosing a working mode and providing a name.
func (u *User) IsRegistered() bool {
	return u.Kind != "" && u.FullName != ""
}

// EmailInput is the raw email text received mid-dialogue.
type EmailInput struct {
	Email string `json:"email" validate:"required,email_"`
}

func (in EmailInput) Validate() error {
	if err := core.Validate.Struct(in); err != nil {
		return core.NewValidationError(err)
	}
	return nil
}

// FullNameInput is the raw full-name text received mid-dialogue.
type FullNameInput struct {
	FullName string `json:"full_name" validate:"required,fullname"`
}

func (in FullNameInput) Validate() error {
	if err := core.Validate.Struct(in); err != nil {
		return core.NewValidationError(err)
	}
	return nil
}
