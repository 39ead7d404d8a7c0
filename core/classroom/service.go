package classroom

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/deadline"
)

var (
	// errors
	ErrNotFound           = errors.New("classroom not found")
	ErrAlreadyJoined      = errors.New("you are already a member of this classroom")
	ErrTaskNotFound       = errors.New("task not found")
	ErrNoDeadline         = errors.New("task has no deadline set")
	ErrAlreadyDistributed = errors.New("task was already sent to students")
	ErrTaskArchived       = errors.New("task deadline has passed")
)

type (
	Repository interface {
		// UpsertClassroom replaces the whole document keyed by classroom id,
		// creating it if absent.
		UpsertClassroom(ctx context.Context, cls Classroom) error
		GetClassroom(ctx context.Context, id string) (Classroom, error)
		// The array operations below return false when no record matched;
		// callers treat that as a logical no-op, never a crash.
		AddStudent(ctx context.Context, classroomID string, st Student) (bool, error)
		AddTeacher(ctx context.Context, classroomID string, teacherID int64) (bool, error)
		AppendTask(ctx context.Context, classroomID string, t Task) (bool, error)
		UpdateTaskFields(ctx context.Context, classroomID, taskID string, fields core.Fields) (bool, error)
		// MoveTaskToArchive moves the task element from the active list to
		// the archived list.
		MoveTaskToArchive(ctx context.Context, classroomID, taskID string) (bool, error)
		RemoveSubmission(ctx context.Context, classroomID string, studentID int64, taskID string) (bool, error)
		AppendSubmission(ctx context.Context, classroomID string, studentID int64, sub StudentSubmission) (bool, error)
	}

	// Service owns the task lifecycle: draft -> pending-deadline ->
	// active(undistributed) -> distributed -> archived.
	Service struct {
		repo      Repository
		deadlines deadline.Repository
		chat      core.ChatClient
		logger    core.Logger
		tempDir   string
		nowFunc   func() time.Time // mockable
	}
)

func NewService(repo Repository, deadlines deadline.Repository, chat core.ChatClient, logger core.Logger) *Service {
	return &Service{
		repo:      repo,
		deadlines: deadlines,
		chat:      chat,
		logger:    logger,
		tempDir:   core.Conf.GetString("tempDir"),
		nowFunc:   time.Now,
	}
}

// Create registers a new classroom owned by the teacher. The id is derived
// from (teacher, name); creating twice with identical input overwrites the
// same record.
func (svc *Service) Create(ctx context.Context, teacherID int64, name string) (Classroom, error) {
	cls := Classroom{
		ClassroomID: NewClassroomID(teacherID, name),
		Name:        core.CleanString(name),
		Teachers:    []int64{teacherID},
	}
	if err := svc.repo.UpsertClassroom(ctx, cls); err != nil {
		return Classroom{}, pkgerrors.Wrap(err, "creating classroom")
	}
	return cls, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Classroom, error) {
	return svc.repo.GetClassroom(ctx, id)
}

// Join adds a student to the classroom roster. A nonexistent id or an
// existing membership is surfaced to the caller; it never silently succeeds.
func (svc *Service) Join(ctx context.Context, studentID int64, classroomID string) (Classroom, error) {
	cls, err := svc.repo.GetClassroom(ctx, classroomID)
	if err != nil {
		return Classroom{}, err
	}
	if cls.HasStudent(studentID) {
		return Classroom{}, ErrAlreadyJoined
	}

	ok, err := svc.repo.AddStudent(ctx, classroomID, Student{ID: studentID})
	if err != nil {
		return Classroom{}, pkgerrors.Wrap(err, "adding student")
	}
	if !ok {
		return Classroom{}, ErrNotFound
	}
	return cls, nil
}

// AddTeacher grants another teacher manager access to the classroom.
func (svc *Service) AddTeacher(ctx context.Context, teacherID int64, classroomID string) error {
	ok, err := svc.repo.AddTeacher(ctx, classroomID, teacherID)
	if err != nil {
		return pkgerrors.Wrap(err, "adding teacher")
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// SetDeadline updates only the task's deadline field, locating the task by
// its logical id within the classroom's task array.
func (svc *Service) SetDeadline(ctx context.Context, classroomID, taskID string, due time.Time) error {
	ok, err := svc.repo.UpdateTaskFields(ctx, classroomID, taskID, core.Fields{"deadline": due})
	if err != nil {
		return pkgerrors.Wrap(err, "setting deadline")
	}
	if !ok {
		return ErrTaskNotFound
	}
	return nil
}

// SetActive toggles distribution eligibility without touching deadline or
// content.
func (svc *Service) SetActive(ctx context.Context, classroomID, taskID string, active bool) error {
	ok, err := svc.repo.UpdateTaskFields(ctx, classroomID, taskID, core.Fields{"active": active})
	if err != nil {
		return pkgerrors.Wrap(err, "toggling task")
	}
	if !ok {
		return ErrTaskNotFound
	}
	return nil
}

// Distribute registers the task's deadline record, marks it active and
// distributed, and fans the task text plus each stored file out to every
// student in the classroom. The distributed flag is checked first so that a
// duplicated confirmation is a logical no-op instead of a double send.
func (svc *Service) Distribute(ctx context.Context, classroomID, taskID string) error {
	cls, err := svc.repo.GetClassroom(ctx, classroomID)
	if err != nil {
		return err
	}
	t, found := cls.Task(taskID)
	if !found {
		return ErrTaskNotFound
	}
	if t.Distributed {
		return ErrAlreadyDistributed
	}
	if t.Deadline == nil {
		return ErrNoDeadline
	}

	ok, err := svc.repo.UpdateTaskFields(ctx, classroomID, taskID, core.Fields{"active": true, "distributed": true})
	if err != nil {
		return pkgerrors.Wrap(err, "marking task distributed")
	}
	if !ok {
		return ErrTaskNotFound
	}

	due := t.Deadline.Local()
	if err := svc.deadlines.SetDeadline(ctx, deadline.Deadline{
		TaskID:      t.ID,
		ClassroomID: cls.ClassroomID,
		Due:         due,
	}); err != nil {
		return pkgerrors.Wrap(err, "registering deadline")
	}

	// re-materialize stored binaries to transient paths; removed on all
	// exit paths including send failure
	paths, cleanup, err := svc.materializeFiles(t.Files)
	if err != nil {
		return pkgerrors.Wrap(err, "writing task files")
	}
	defer cleanup()

	text := fmt.Sprintf("New task in %s:\n\n%s\n\nDeadline: %s", cls.Name, t.Description, due.Format("02.01.2006 15:04"))
	for _, st := range cls.Students {
		if _, err := svc.chat.SendText(ctx, st.ID, text); err != nil {
			svc.logger.Error(fmt.Sprintf("sending task %s to student %d: %v", t.ID, st.ID, err), err)
			continue
		}
		for _, p := range paths {
			if err := svc.sendFile(ctx, st.ID, p); err != nil {
				svc.logger.Error(fmt.Sprintf("sending task file to student %d: %v", st.ID, err), err)
			}
		}
	}
	return nil
}

// Archive moves the task from the active to the archived list. Driven only
// by deadline arrival; must be invoked exactly once per task.
func (svc *Service) Archive(ctx context.Context, classroomID, taskID string) error {
	ok, err := svc.repo.MoveTaskToArchive(ctx, classroomID, taskID)
	if err != nil {
		return pkgerrors.Wrap(err, "archiving task")
	}
	if !ok {
		return ErrTaskNotFound
	}
	return nil
}

// RecordSubmission replaces any prior submission by the student for the same
// task, so at most one submission per (student, task) pair survives.
func (svc *Service) RecordSubmission(ctx context.Context, classroomID string, sub StudentSubmission) error {
	cls, err := svc.repo.GetClassroom(ctx, classroomID)
	if err != nil {
		return err
	}
	if _, found := cls.Task(sub.TaskID); !found {
		if _, archived := cls.ArchivedTask(sub.TaskID); archived {
			return ErrTaskArchived
		}
		return ErrTaskNotFound
	}

	sub.SubmittedAt = svc.nowFunc().UTC()
	if _, err := svc.repo.RemoveSubmission(ctx, classroomID, sub.StudentID, sub.TaskID); err != nil {
		return pkgerrors.Wrap(err, "removing prior submission")
	}
	ok, err := svc.repo.AppendSubmission(ctx, classroomID, sub.StudentID, sub)
	if err != nil {
		return pkgerrors.Wrap(err, "recording submission")
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (svc *Service) sendFile(ctx context.Context, chatID int64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = svc.chat.SendDocument(ctx, chatID, filepath.Base(f.Name()), f, "")
	return err
}

func (svc *Service) materializeFiles(files []TaskFile) ([]string, func(), error) {
	dir := filepath.Join(svc.tempDir, uuid.New().String())
	cleanup := func() { _ = os.RemoveAll(dir) }
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, cleanup, err
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		p := filepath.Join(dir, filepath.Base(f.Filename))
		if err := ioutil.WriteFile(p, f.Data, 0o644); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		paths = append(paths, p)
	}
	return paths, cleanup, nil
}
