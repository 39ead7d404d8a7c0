package classroom

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// NewClassroomID derives a classroom id from the creating teacher and the
// classroom name. Deterministic on purpose: repeated identical input by the
// same teacher is idempotent at the storage-key level. Collision risk across
// different (teacher, name) pairs is accepted for simplicity; the hex format
// is relied upon by existing ids and must not change.
func NewClassroomID(teacherID int64, name string) string {
	return hash(fmt.Sprintf("%d-%s", teacherID, name))
}

// NewTaskID derives a task id from the creator, the description text and the
// inbound message id carrying it.
func NewTaskID(creatorID int64, description string, msgID int) string {
	return hash(fmt.Sprintf("%d-%s-%d", creatorID, description, msgID))
}

func hash(value string) string {
	sum := md5.Sum([]byte(value))
	return hex.EncodeToString(sum[:])
}
