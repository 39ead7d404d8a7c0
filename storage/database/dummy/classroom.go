package dummydb

import (
	"context"
	"time"

	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/classroom"
)

type classroomRepository struct {
	db *classroomTable
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{db: db.classrooms}
}

func (repo *classroomRepository) UpsertClassroom(ctx context.Context, cls classroom.Classroom) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[cls.ClassroomID] = &cls
	return nil
}

func (repo *classroomRepository) GetClassroom(ctx context.Context, id string) (classroom.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cls, ok := repo.db.table[id]
	if !ok {
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	return clone(cls), nil
}

func (repo *classroomRepository) AddStudent(ctx context.Context, classroomID string, st classroom.Student) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, ok := repo.db.table[classroomID]
	if !ok {
		return false, nil
	}
	cls.Students = append(cls.Students, st)
	return true, nil
}

func (repo *classroomRepository) AddTeacher(ctx context.Context, classroomID string, teacherID int64) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, ok := repo.db.table[classroomID]
	if !ok {
		return false, nil
	}
	cls.Teachers = append(cls.Teachers, teacherID)
	return true, nil
}

func (repo *classroomRepository) AppendTask(ctx context.Context, classroomID string, t classroom.Task) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, ok := repo.db.table[classroomID]
	if !ok {
		return false, nil
	}
	cls.Tasks = append(cls.Tasks, t)
	return true, nil
}

func (repo *classroomRepository) UpdateTaskFields(ctx context.Context, classroomID, taskID string, fields core.Fields) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, ok := repo.db.table[classroomID]
	if !ok {
		return false, nil
	}
	for i := range cls.Tasks {
		if cls.Tasks[i].ID != taskID {
			continue
		}
		t := &cls.Tasks[i]
		for k, v := range fields {
			switch k {
			case "deadline":
				due := v.(time.Time)
				t.Deadline = &due
			case "active":
				t.Active = v.(bool)
			case "distributed":
				t.Distributed = v.(bool)
			case "description":
				t.Description = v.(string)
			}
		}
		return true, nil
	}
	return false, nil
}

func (repo *classroomRepository) MoveTaskToArchive(ctx context.Context, classroomID, taskID string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, ok := repo.db.table[classroomID]
	if !ok {
		return false, nil
	}
	for i, t := range cls.Tasks {
		if t.ID == taskID {
			cls.Tasks = append(cls.Tasks[:i], cls.Tasks[i+1:]...)
			cls.ArchivedTasks = append(cls.ArchivedTasks, t)
			return true, nil
		}
	}
	return false, nil
}

func (repo *classroomRepository) RemoveSubmission(ctx context.Context, classroomID string, studentID int64, taskID string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, ok := repo.db.table[classroomID]
	if !ok {
		return false, nil
	}
	st := findStudent(cls, studentID)
	if st == nil {
		return false, nil
	}
	for i, sub := range st.Tasks {
		if sub.TaskID == taskID {
			st.Tasks = append(st.Tasks[:i], st.Tasks[i+1:]...)
			break
		}
	}
	return true, nil
}

func (repo *classroomRepository) AppendSubmission(ctx context.Context, classroomID string, studentID int64, sub classroom.StudentSubmission) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, ok := repo.db.table[classroomID]
	if !ok {
		return false, nil
	}
	st := findStudent(cls, studentID)
	if st == nil {
		return false, nil
	}
	st.Tasks = append(st.Tasks, sub)
	return true, nil
}

func findStudent(cls *classroom.Classroom, studentID int64) *classroom.Student {
	for i := range cls.Students {
		if cls.Students[i].ID == studentID {
			return &cls.Students[i]
		}
	}
	return nil
}

// clone copies the document so readers never alias the stored slices.
func clone(cls *classroom.Classroom) classroom.Classroom {
	out := *cls
	out.Teachers = append([]int64(nil), cls.Teachers...)
	out.Tasks = append([]classroom.Task(nil), cls.Tasks...)
	out.ArchivedTasks = append([]classroom.Task(nil), cls.ArchivedTasks...)
	out.Students = make([]classroom.Student, len(cls.Students))
	for i, st := range cls.Students {
		out.Students[i] = classroom.Student{
			ID:    st.ID,
			Tasks: append([]classroom.StudentSubmission(nil), st.Tasks...),
		}
	}
	return out
}
