package schedule

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/classroom"
	"github.com/trezcool/altedy/core/deadline"
	"github.com/trezcool/altedy/core/user"
)

// Notifier handles an arrived deadline: packages the submissions, notifies
// every teacher with the package (chat, plus email when shared) and every
// student with a completion notice, then archives the task.
type Notifier struct {
	classrooms *classroom.Service
	users      *user.Service
	chat       core.ChatClient
	mail       core.EmailService
	logger     core.Logger
	scorer     core.Scorer // optional
}

var _ DueHandler = (*Notifier)(nil)

func NewNotifier(
	classrooms *classroom.Service,
	users *user.Service,
	chat core.ChatClient,
	mailSvc core.EmailService,
	logger core.Logger,
) *Notifier {
	return &Notifier{
		classrooms: classrooms,
		users:      users,
		chat:       chat,
		mail:       mailSvc,
		logger:     logger,
	}
}

// WithScorer plugs an automated scoring module in. Scores are advisory
// suggestions next to the grade column, never grades themselves.
func (n *Notifier) WithScorer(scorer core.Scorer) *Notifier {
	n.scorer = scorer
	return n
}

func (n *Notifier) HandleDue(ctx context.Context, d deadline.Deadline) error {
	cls, err := n.classrooms.Get(ctx, d.ClassroomID)
	if err != nil {
		return pkgerrors.Wrap(err, "fetching classroom")
	}
	task, found := cls.Task(d.TaskID)
	if !found {
		// already archived
		return nil
	}

	pkg, err := PackAnswers(cls, task, n.scorer)
	if err != nil {
		return err
	}

	caption := fmt.Sprintf("Deadline arrived for your task in %s. %d answer(s) attached; fill the grade "+
		"column in %s and send it back.", cls.Name, len(pkg.Students), gradesIndexName)
	for _, teacherID := range cls.Teachers {
		if _, err := n.chat.SendDocument(ctx, teacherID, pkg.Filename, bytes.NewReader(pkg.Archive), caption); err != nil {
			n.logger.Error(fmt.Sprintf("sending package to teacher %d: %v", teacherID, err), err)
		}
		n.emailTeacher(ctx, teacherID, caption, pkg)
	}

	notice := fmt.Sprintf("The deadline for a task in %s has arrived. Submissions are closed; "+
		"your teacher will check the answers soon.", cls.Name)
	for _, st := range cls.Students {
		if _, err := n.chat.SendText(ctx, st.ID, notice); err != nil {
			n.logger.Error(fmt.Sprintf("notifying student %d: %v", st.ID, err), err)
		}
	}

	return n.classrooms.Archive(ctx, d.ClassroomID, d.TaskID)
}

// emailTeacher mirrors the package over the email side-channel when the
// teacher shared an address. Fire-and-forget.
func (n *Notifier) emailTeacher(ctx context.Context, teacherID int64, body string, pkg Package) {
	usr, err := n.users.GetByID(ctx, teacherID)
	if err != nil || usr.Email == "" {
		return
	}

	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		Subject: "Task deadline arrived",
		BodyStr: body,
	}
	msg.Attach(pkg.Archive, pkg.Filename, "application/zip")
	n.mail.SendMessages(msg)
}
