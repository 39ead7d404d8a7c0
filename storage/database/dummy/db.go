package dummydb

import (
	"sync"

	"github.com/trezcool/altedy/core/classroom"
	"github.com/trezcool/altedy/core/deadline"
	"github.com/trezcool/altedy/core/user"
)

type (
	DB struct {
		users      *userTable
		classrooms *classroomTable
		deadlines  *deadlineTable
	}

	userTable struct {
		sync.RWMutex
		table map[int64]*user.User
	}

	classroomTable struct {
		sync.RWMutex
		table map[string]*classroom.Classroom
	}

	deadlineTable struct {
		sync.RWMutex
		table map[string]*deadline.Deadline
	}
)

func Open() (*DB, error) {
	db := &DB{
		users:      &userTable{table: make(map[int64]*user.User)},
		classrooms: &classroomTable{table: make(map[string]*classroom.Classroom)},
		deadlines:  &deadlineTable{table: make(map[string]*deadline.Deadline)},
	}
	return db, nil
}
