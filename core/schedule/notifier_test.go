package schedule

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/classroom"
	"github.com/trezcool/altedy/core/deadline"
	"github.com/trezcool/altedy/core/user"
	dummydb "github.com/trezcool/altedy/storage/database/dummy"
	testutil "github.com/trezcool/altedy/tests"
)

type mailRecorder struct {
	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*mailRecorder)(nil)

func (r *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range messages {
		r.sent = append(r.sent, *msg)
	}
}

func TestNotifier_HandleDue(t *testing.T) {
	ctx := context.Background()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setting up database: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	clsRepo := dummydb.NewClassroomRepository(db)
	chat := &testutil.ChatRecorder{}
	mailSvc := &mailRecorder{}
	usrSvc := user.NewService(usrRepo)
	clsSvc := classroom.NewService(clsRepo, dummydb.NewDeadlineRepository(db), chat, testutil.Logger{})
	n := NewNotifier(clsSvc, usrSvc, chat, mailSvc, testutil.Logger{})

	const teacherID = int64(7)
	const studentA = int64(100)
	const studentB = int64(101)

	testutil.CreateUser(t, usrRepo, teacherID, "t", "Jane Roe", "jane@example.com", user.KindTeacher, user.StatusMainMenu)
	cls := testutil.CreateClassroom(t, clsRepo, "Algebra", teacherID, studentA, studentB)

	taskID := "task-1"
	if _, err := clsRepo.AppendTask(ctx, cls.ClassroomID, classroom.Task{
		ID: taskID, CreatorID: teacherID, ClassroomID: cls.ClassroomID,
		Description: "Essay", Active: true, Distributed: true,
	}); err != nil {
		t.Fatalf("AppendTask() error = %v", err)
	}
	if _, err := clsRepo.AppendSubmission(ctx, cls.ClassroomID, studentA, classroom.StudentSubmission{
		TaskID: taskID, StudentID: studentA, Description: "done",
	}); err != nil {
		t.Fatalf("AppendSubmission() error = %v", err)
	}

	d := deadline.Deadline{TaskID: taskID, ClassroomID: cls.ClassroomID}
	if err := n.HandleDue(ctx, d); err != nil {
		t.Fatalf("HandleDue() error = %v", err)
	}

	// the teacher got the package over chat and email
	if len(chat.Documents) != 1 {
		t.Fatalf("sent %d documents, want 1", len(chat.Documents))
	}
	doc := chat.Documents[0]
	if doc.ChatID != teacherID || doc.Filename != "task_task-1_answers.zip" {
		t.Errorf("document = %+v, want the package for the teacher", doc)
	}
	if !strings.Contains(doc.Caption, "1 answer(s)") {
		t.Errorf("caption = %q, want the answer count in it", doc.Caption)
	}
	if len(mailSvc.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(mailSvc.sent))
	}
	msg := mailSvc.sent[0]
	if msg.To[0].Address != "jane@example.com" || len(msg.Attachments) != 1 {
		t.Errorf("email = %+v, want the package attached for jane@example.com", msg)
	}

	// every student got a completion notice
	var notified []int64
	for _, st := range chat.Texts {
		notified = append(notified, st.ChatID)
	}
	if len(notified) != 2 {
		t.Fatalf("notified %v, want both students", notified)
	}

	// the task moved to the archive
	got, _ := clsSvc.Get(ctx, cls.ClassroomID)
	if _, found := got.Task(taskID); found {
		t.Error("task still active after its deadline")
	}
	if _, found := got.ArchivedTask(taskID); !found {
		t.Error("task missing from the archive")
	}

	// a duplicate fire for an archived task does nothing
	if err := n.HandleDue(ctx, d); err != nil {
		t.Fatalf("HandleDue() error = %v", err)
	}
	if len(chat.Documents) != 1 || len(chat.Texts) != 2 {
		t.Error("duplicate fire re-sent notifications")
	}
}

func TestNotifier_noEmailWithoutConsent(t *testing.T) {
	ctx := context.Background()
	db, _ := dummydb.Open()
	usrRepo := dummydb.NewUserRepository(db)
	clsRepo := dummydb.NewClassroomRepository(db)
	chat := &testutil.ChatRecorder{}
	mailSvc := &mailRecorder{}
	clsSvc := classroom.NewService(clsRepo, dummydb.NewDeadlineRepository(db), chat, testutil.Logger{})
	n := NewNotifier(clsSvc, user.NewService(usrRepo), chat, mailSvc, testutil.Logger{})

	const teacherID = int64(7)
	testutil.CreateUser(t, usrRepo, teacherID, "t", "Jane Roe", "", user.KindTeacher, user.StatusMainMenu)
	cls := testutil.CreateClassroom(t, clsRepo, "Algebra", teacherID)
	if _, err := clsRepo.AppendTask(ctx, cls.ClassroomID, classroom.Task{
		ID: "task-1", ClassroomID: cls.ClassroomID, Description: "Essay", Active: true, Distributed: true,
	}); err != nil {
		t.Fatalf("AppendTask() error = %v", err)
	}

	if err := n.HandleDue(ctx, deadline.Deadline{TaskID: "task-1", ClassroomID: cls.ClassroomID}); err != nil {
		t.Fatalf("HandleDue() error = %v", err)
	}
	if len(chat.Documents) != 1 {
		t.Errorf("sent %d documents, want the chat package regardless of email", len(chat.Documents))
	}
	if len(mailSvc.sent) != 0 {
		t.Errorf("sent %d emails, want none without a shared address", len(mailSvc.sent))
	}
}
