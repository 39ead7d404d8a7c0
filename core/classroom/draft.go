package classroom

import (
	"context"

	pkgerrors "github.com/pkg/errors"
)

const defaultDescription = "See attachments"

// TaskDraft assembles an in-progress task. AddFile and AddDescription have
// no persistence side effect until Prepare.
type TaskDraft struct {
	svc  *Service
	task Task
}

func (svc *Service) NewTaskDraft(taskID string, creatorID int64, classroomID string) *TaskDraft {
	return &TaskDraft{
		svc: svc,
		task: Task{
			ID:          taskID,
			CreatorID:   creatorID,
			ClassroomID: classroomID,
			Description: defaultDescription,
		},
	}
}

func (d *TaskDraft) AddFile(filename string, data []byte) {
	d.task.Files = append(d.task.Files, TaskFile{Filename: filename, Data: data})
}

func (d *TaskDraft) AddDescription(description string) {
	d.task.Description = description
}

func (d *TaskDraft) TaskID() string      { return d.task.ID }
func (d *TaskDraft) ClassroomID() string { return d.task.ClassroomID }

// Prepare persists the draft into its classroom's task list. Prepare is not
// idempotent: calling it twice appends two list entries; callers own the
// single-call discipline.
func (d *TaskDraft) Prepare(ctx context.Context) error {
	ok, err := d.svc.repo.AppendTask(ctx, d.task.ClassroomID, d.task)
	if err != nil {
		return pkgerrors.Wrap(err, "preparing task")
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
