package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/classroom"
)

const classroomCollection = "classrooms"

type classroomRepository struct {
	c collection
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{c: db.collection(classroomCollection)}
}

func classroomKey(id string) bson.M {
	return bson.M{"classroom_id": id}
}

func (repo *classroomRepository) UpsertClassroom(ctx context.Context, cls classroom.Classroom) error {
	return repo.c.upsert(ctx, classroomKey(cls.ClassroomID), cls)
}

func (repo *classroomRepository) GetClassroom(ctx context.Context, id string) (classroom.Classroom, error) {
	var cls classroom.Classroom
	ok, err := repo.c.findOne(ctx, classroomKey(id), &cls)
	if err != nil {
		return classroom.Classroom{}, err
	}
	if !ok {
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	return cls, nil
}

func (repo *classroomRepository) AddStudent(ctx context.Context, classroomID string, st classroom.Student) (bool, error) {
	return repo.c.arrayAppend(ctx, classroomKey(classroomID), "students", st)
}

func (repo *classroomRepository) AddTeacher(ctx context.Context, classroomID string, teacherID int64) (bool, error) {
	return repo.c.arrayAppend(ctx, classroomKey(classroomID), "teachers", teacherID)
}

func (repo *classroomRepository) AppendTask(ctx context.Context, classroomID string, t classroom.Task) (bool, error) {
	return repo.c.arrayAppend(ctx, classroomKey(classroomID), "tasks", t)
}

// UpdateTaskFields addresses the task by its logical id within the task
// array and $sets only the given fields on it.
func (repo *classroomRepository) UpdateTaskFields(ctx context.Context, classroomID, taskID string, fields core.Fields) (bool, error) {
	key := classroomKey(classroomID)
	key["tasks.id"] = taskID

	set := make(bson.M, len(fields))
	for k, v := range fields {
		set["tasks.$."+k] = v
	}
	return repo.c.updateFields(ctx, key, set)
}

func (repo *classroomRepository) MoveTaskToArchive(ctx context.Context, classroomID, taskID string) (bool, error) {
	return repo.c.moveElement(ctx, classroomKey(classroomID), "tasks", bson.M{"id": taskID}, "archived_tasks")
}

func (repo *classroomRepository) RemoveSubmission(ctx context.Context, classroomID string, studentID int64, taskID string) (bool, error) {
	key := classroomKey(classroomID)
	key["students.id"] = studentID
	return repo.c.arrayRemove(ctx, key, "students.$.tasks", bson.M{"task_id": taskID})
}

func (repo *classroomRepository) AppendSubmission(ctx context.Context, classroomID string, studentID int64, sub classroom.StudentSubmission) (bool, error) {
	key := classroomKey(classroomID)
	key["students.id"] = studentID
	return repo.c.arrayAppend(ctx, key, "students.$.tasks", sub)
}
