package deadline

import (
	"context"
	"errors"
	"time"
)

var (
	// errors
	ErrNotFound = errors.New("deadline not found")
)

// Deadline is a scheduled trigger pairing a task to a due timestamp.
// Created when a task is distributed to students; consumed exactly once by
// the escalation scheduler.
type Deadline struct {
	TaskID      string    `bson:"task_id" json:"task_id"`
	ClassroomID string    `bson:"classroom_id" json:"classroom_id"`
	Due         time.Time `bson:"date" json:"date"`
}

type Repository interface {
	// SetDeadline upserts the record keyed by task id.
	SetDeadline(ctx context.Context, d Deadline) error
	// RemoveDeadline deletes the record; false when it was already gone.
	RemoveDeadline(ctx context.Context, taskID string) (bool, error)
	// DeadlinesBetween returns records with from <= due < to.
	DeadlinesBetween(ctx context.Context, from, to time.Time) ([]Deadline, error)
}
