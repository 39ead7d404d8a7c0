package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/user"
)

const userCollection = "users"

type userRepository struct {
	c collection
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{c: db.collection(userCollection)}
}

func userKey(id int64) bson.M {
	return bson.M{"user_id": id}
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int64) (user.User, error) {
	var usr user.User
	ok, err := repo.c.findOne(ctx, userKey(id), &usr)
	if err != nil {
		return user.User{}, err
	}
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) UpsertUser(ctx context.Context, usr user.User) error {
	return repo.c.upsert(ctx, userKey(usr.ID), usr)
}

func (repo *userRepository) UpdateUserFields(ctx context.Context, id int64, fields core.Fields) (bool, error) {
	return repo.c.updateFields(ctx, userKey(id), bson.M(fields))
}

func (repo *userRepository) AppendClassroom(ctx context.Context, id int64, classroomID string) (bool, error) {
	return repo.c.arrayAppend(ctx, userKey(id), "classrooms", classroomID)
}

func (repo *userRepository) AppendManagedClassroom(ctx context.Context, id int64, classroomID string) (bool, error) {
	return repo.c.arrayAppend(ctx, userKey(id), "managed_classrooms", classroomID)
}
