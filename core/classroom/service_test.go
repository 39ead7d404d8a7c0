package classroom_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/altedy/core/classroom"
	"github.com/trezcool/altedy/core/deadline"
	dummydb "github.com/trezcool/altedy/storage/database/dummy"
	testutil "github.com/trezcool/altedy/tests"
)

func setup(t *testing.T) (*classroom.Service, classroom.Repository, deadline.Repository, *testutil.ChatRecorder) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setting up database: %v", err)
	}
	repo := dummydb.NewClassroomRepository(db)
	deadlines := dummydb.NewDeadlineRepository(db)
	chat := &testutil.ChatRecorder{}
	svc := classroom.NewService(repo, deadlines, chat, testutil.Logger{})
	return svc, repo, deadlines, chat
}

func TestNewClassroomID(t *testing.T) {
	id := classroom.NewClassroomID(7, "Algebra")

	if len(id) != 32 {
		t.Errorf("NewClassroomID() = %q, want 32 hex chars", id)
	}
	if got := classroom.NewClassroomID(7, "Algebra"); got != id {
		t.Errorf("NewClassroomID() not deterministic: %q != %q", got, id)
	}
	if got := classroom.NewClassroomID(8, "Algebra"); got == id {
		t.Error("NewClassroomID() must diverge for a different teacher")
	}
	if got := classroom.NewClassroomID(7, "Geometry"); got == id {
		t.Error("NewClassroomID() must diverge for a different name")
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := setup(t)

	cls, err := svc.Create(ctx, 7, "Algebra")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if cls.ClassroomID != classroom.NewClassroomID(7, "Algebra") {
		t.Errorf("Create() id = %q, want derived id", cls.ClassroomID)
	}
	if !cls.HasTeacher(7) {
		t.Error("Create() must record the creating teacher")
	}

	// identical input lands on the same record
	again, err := svc.Create(ctx, 7, "Algebra")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if again.ClassroomID != cls.ClassroomID {
		t.Errorf("Create() id changed on repeat: %q != %q", again.ClassroomID, cls.ClassroomID)
	}
}

func TestService_Join(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := setup(t)
	cls := testutil.CreateClassroom(t, repo, "Algebra", 7, 100)

	tests := []struct {
		name        string
		studentID   int64
		classroomID string
		wantErr     error
	}{
		{name: "unknown classroom", studentID: 101, classroomID: "nope", wantErr: classroom.ErrNotFound},
		{name: "already a member", studentID: 100, classroomID: cls.ClassroomID, wantErr: classroom.ErrAlreadyJoined},
		{name: "ok", studentID: 101, classroomID: cls.ClassroomID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Join(ctx, tt.studentID, tt.classroomID); err != tt.wantErr {
				t.Errorf("Join() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	got, err := svc.Get(ctx, cls.ClassroomID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.HasStudent(101) {
		t.Error("Join() must add the student to the roster")
	}
}

func TestService_Distribute(t *testing.T) {
	ctx := context.Background()
	svc, repo, deadlines, chat := setup(t)
	cls := testutil.CreateClassroom(t, repo, "Algebra", 7, 100, 101)

	due := time.Now().Add(48 * time.Hour).Truncate(time.Minute)
	draft := svc.NewTaskDraft(classroom.NewTaskID(7, "Solve ex. 1-10", 55), 7, cls.ClassroomID)
	draft.AddDescription("Solve ex. 1-10")
	draft.AddFile("worksheet.pdf", []byte("%PDF-1.4 stub"))
	if err := draft.Prepare(ctx); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	taskID := draft.TaskID()

	// no deadline yet
	if err := svc.Distribute(ctx, cls.ClassroomID, taskID); err != classroom.ErrNoDeadline {
		t.Fatalf("Distribute() error = %v, want %v", err, classroom.ErrNoDeadline)
	}

	if err := svc.SetDeadline(ctx, cls.ClassroomID, taskID, due); err != nil {
		t.Fatalf("SetDeadline() error = %v", err)
	}
	if err := svc.Distribute(ctx, cls.ClassroomID, taskID); err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	// every student got the text and the file
	if len(chat.Texts) != 2 {
		t.Fatalf("Distribute() sent %d texts, want 2", len(chat.Texts))
	}
	for _, st := range chat.Texts {
		if !strings.Contains(st.Text, "Solve ex. 1-10") {
			t.Errorf("Distribute() text = %q, want task description in it", st.Text)
		}
	}
	if len(chat.Documents) != 2 {
		t.Fatalf("Distribute() sent %d documents, want 2", len(chat.Documents))
	}
	for _, doc := range chat.Documents {
		if doc.Filename != "worksheet.pdf" || !bytes.Equal(doc.Data, []byte("%PDF-1.4 stub")) {
			t.Errorf("Distribute() document = %q (%d bytes), want worksheet.pdf", doc.Filename, len(doc.Data))
		}
	}

	// flags flipped and the deadline record registered
	got, _ := svc.Get(ctx, cls.ClassroomID)
	task, _ := got.Task(taskID)
	if !task.Active || !task.Distributed {
		t.Errorf("Distribute() task flags = active:%v distributed:%v, want both true", task.Active, task.Distributed)
	}
	dls, err := deadlines.DeadlinesBetween(ctx, due, due.Add(time.Minute))
	if err != nil {
		t.Fatalf("DeadlinesBetween() error = %v", err)
	}
	if len(dls) != 1 || dls[0].TaskID != taskID {
		t.Fatalf("Distribute() deadlines = %+v, want one record for the task", dls)
	}

	// repeated confirmation is refused, nothing is re-sent
	if err := svc.Distribute(ctx, cls.ClassroomID, taskID); err != classroom.ErrAlreadyDistributed {
		t.Fatalf("Distribute() error = %v, want %v", err, classroom.ErrAlreadyDistributed)
	}
	if len(chat.Texts) != 2 {
		t.Errorf("Distribute() re-sent texts: %d, want 2", len(chat.Texts))
	}
}

func TestService_RecordSubmission(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := setup(t)
	cls := testutil.CreateClassroom(t, repo, "Algebra", 7, 100)

	draft := svc.NewTaskDraft(classroom.NewTaskID(7, "Essay", 3), 7, cls.ClassroomID)
	draft.AddDescription("Essay")
	if err := draft.Prepare(ctx); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	taskID := draft.TaskID()

	if err := svc.RecordSubmission(ctx, cls.ClassroomID, classroom.StudentSubmission{
		TaskID: "nope", StudentID: 100,
	}); err != classroom.ErrTaskNotFound {
		t.Fatalf("RecordSubmission() error = %v, want %v", err, classroom.ErrTaskNotFound)
	}

	first := classroom.StudentSubmission{TaskID: taskID, StudentID: 100, Description: "draft one"}
	if err := svc.RecordSubmission(ctx, cls.ClassroomID, first); err != nil {
		t.Fatalf("RecordSubmission() error = %v", err)
	}

	// resubmission replaces, never stacks
	second := classroom.StudentSubmission{TaskID: taskID, StudentID: 100, Description: "final version"}
	if err := svc.RecordSubmission(ctx, cls.ClassroomID, second); err != nil {
		t.Fatalf("RecordSubmission() error = %v", err)
	}

	got, _ := svc.Get(ctx, cls.ClassroomID)
	st := got.Students[0]
	if len(st.Tasks) != 1 {
		t.Fatalf("RecordSubmission() left %d submissions, want 1", len(st.Tasks))
	}
	if sub, _ := st.Submission(taskID); sub.Description != "final version" {
		t.Errorf("RecordSubmission() kept %q, want the latest submission", sub.Description)
	}
	if sub, _ := st.Submission(taskID); sub.SubmittedAt.IsZero() {
		t.Error("RecordSubmission() must stamp SubmittedAt")
	}

	// archived tasks refuse late submissions
	if err := svc.Archive(ctx, cls.ClassroomID, taskID); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	late := classroom.StudentSubmission{TaskID: taskID, StudentID: 100, Description: "too late"}
	if err := svc.RecordSubmission(ctx, cls.ClassroomID, late); err != classroom.ErrTaskArchived {
		t.Errorf("RecordSubmission() error = %v, want %v", err, classroom.ErrTaskArchived)
	}
}

func TestService_Archive(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := setup(t)
	cls := testutil.CreateClassroom(t, repo, "Algebra", 7)

	draft := svc.NewTaskDraft(classroom.NewTaskID(7, "Quiz", 9), 7, cls.ClassroomID)
	draft.AddDescription("Quiz")
	if err := draft.Prepare(ctx); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	taskID := draft.TaskID()

	if err := svc.Archive(ctx, cls.ClassroomID, taskID); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	got, _ := svc.Get(ctx, cls.ClassroomID)
	if _, found := got.Task(taskID); found {
		t.Error("Archive() left the task in the active list")
	}
	if _, found := got.ArchivedTask(taskID); !found {
		t.Error("Archive() did not land the task in the archive")
	}

	// second archive finds nothing to move
	if err := svc.Archive(ctx, cls.ClassroomID, taskID); err != classroom.ErrTaskNotFound {
		t.Errorf("Archive() error = %v, want %v", err, classroom.ErrTaskNotFound)
	}
}
