package dummydb

import (
	"context"
	"time"

	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.users}
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int64) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpsertUser(ctx context.Context, usr user.User) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[usr.ID] = &usr
	return nil
}

func (repo *userRepository) UpdateUserFields(ctx context.Context, id int64, fields core.Fields) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return false, nil
	}
	for k, v := range fields {
		switch k {
		case "type":
			usr.Kind = v.(user.Kind)
		case "status":
			usr.Status = v.(user.Status)
		case "email":
			usr.Email = v.(string)
		case "full_name":
			usr.FullName = v.(string)
		case "username":
			usr.Username = v.(string)
		case "updated_at":
			usr.UpdatedAt = v.(time.Time)
		}
	}
	return true, nil
}

func (repo *userRepository) AppendClassroom(ctx context.Context, id int64, classroomID string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return false, nil
	}
	usr.Classrooms = append(usr.Classrooms, classroomID)
	return true, nil
}

func (repo *userRepository) AppendManagedClassroom(ctx context.Context, id int64, classroomID string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return false, nil
	}
	usr.ManagedClassrooms = append(usr.ManagedClassrooms, classroomID)
	return true, nil
}
