package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/trezcool/altedy/core/deadline"
)

const deadlineCollection = "deadlines"

type deadlineRepository struct {
	c collection
}

var _ deadline.Repository = (*deadlineRepository)(nil) // interface compliance check

func NewDeadlineRepository(db *DB) deadline.Repository {
	return &deadlineRepository{c: db.collection(deadlineCollection)}
}

func (repo *deadlineRepository) SetDeadline(ctx context.Context, d deadline.Deadline) error {
	return repo.c.upsert(ctx, bson.M{"task_id": d.TaskID}, d)
}

func (repo *deadlineRepository) RemoveDeadline(ctx context.Context, taskID string) (bool, error) {
	return repo.c.removeOne(ctx, bson.M{"task_id": taskID})
}

func (repo *deadlineRepository) DeadlinesBetween(ctx context.Context, from, to time.Time) ([]deadline.Deadline, error) {
	var res []deadline.Deadline
	query := bson.M{"date": bson.M{"$gte": from, "$lt": to}}
	if err := repo.c.find(ctx, query, &res); err != nil {
		return nil, err
	}
	return res, nil
}
