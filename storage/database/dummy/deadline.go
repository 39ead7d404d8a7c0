package dummydb

import (
	"context"
	"time"

	"github.com/trezcool/altedy/core/deadline"
)

type deadlineRepository struct {
	db *deadlineTable
}

var _ deadline.Repository = (*deadlineRepository)(nil) // interface compliance check

func NewDeadlineRepository(db *DB) deadline.Repository {
	return &deadlineRepository{db: db.deadlines}
}

func (repo *deadlineRepository) SetDeadline(ctx context.Context, d deadline.Deadline) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[d.TaskID] = &d
	return nil
}

func (repo *deadlineRepository) RemoveDeadline(ctx context.Context, taskID string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[taskID]; !ok {
		return false, nil
	}
	delete(repo.db.table, taskID)
	return true, nil
}

func (repo *deadlineRepository) DeadlinesBetween(ctx context.Context, from, to time.Time) ([]deadline.Deadline, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var dls []deadline.Deadline
	for _, d := range repo.db.table {
		if !d.Due.Before(from) && d.Due.Before(to) {
			dls = append(dls, *d)
		}
	}
	return dls, nil
}
