package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/altedy/core/classroom"
	"github.com/trezcool/altedy/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	id int64,
	uname, fullName, email string,
	kind user.Kind,
	status user.Status,
) user.User {
	tstamp := time.Now().UTC()
	usr := user.User{
		ID:        id,
		Username:  uname,
		FullName:  fullName,
		Email:     email,
		Kind:      kind,
		Status:    status,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if err := repo.UpsertUser(context.Background(), usr); err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateClassroom(
	t *testing.T,
	repo classroom.Repository,
	name string,
	teacherID int64,
	studentIDs ...int64,
) classroom.Classroom {
	cls := classroom.Classroom{
		ClassroomID: classroom.NewClassroomID(teacherID, name),
		Name:        name,
		Teachers:    []int64{teacherID},
	}
	for _, id := range studentIDs {
		cls.Students = append(cls.Students, classroom.Student{ID: id})
	}
	if err := repo.UpsertClassroom(context.Background(), cls); err != nil {
		t.Fatalf("createClassroom() failed: %v", err)
	}
	return cls
}
