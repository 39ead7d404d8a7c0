package classroom

import "time"

type TaskFile struct {
	Filename string `bson:"filename" json:"filename"`
	Data     []byte `bson:"file" json:"file"`
}

type Task struct {
	ID          string     `bson:"id" json:"id"`
	CreatorID   int64      `bson:"creator_id" json:"creator_id"`
	ClassroomID string     `bson:"classroom_id" json:"classroom_id"`
	Description string     `bson:"description" json:"description"`
	Files       []TaskFile `bson:"files" json:"files"`
	Deadline    *time.Time `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Active      bool       `bson:"active" json:"active"`
	Distributed bool       `bson:"distributed" json:"distributed"`
}

// StudentSubmission is a student's answer to a task. At most one current
// submission per (student, task); a resubmission replaces the prior one.
type StudentSubmission struct {
	TaskID      string     `bson:"task_id" json:"task_id"`
	StudentID   int64      `bson:"student_id" json:"student_id"`
	Description string     `bson:"description" json:"description"`
	Files       []TaskFile `bson:"files" json:"files"`
	SubmittedAt time.Time  `bson:"submitted_at" json:"submitted_at"` // UTC
}

type Student struct {
	ID    int64               `bson:"id" json:"id"`
	Tasks []StudentSubmission `bson:"tasks" json:"tasks"`
}

// Submission returns the student's current submission for a task, if any.
func (s *Student) Submission(taskID string) (StudentSubmission, bool) {
	for _, sub := range s.Tasks {
		if sub.TaskID == taskID {
			return sub, true
		}
	}
	return StudentSubmission{}, false
}

// Classroom binds one or more teachers to a roster of students and a set of
// tasks. A task id appears in at most one of Tasks/ArchivedTasks at a time.
type Classroom struct {
	ClassroomID   string    `bson:"classroom_id" json:"classroom_id"`
	Name          string    `bson:"name" json:"name"`
	Teachers      []int64   `bson:"teachers" json:"teachers"`
	Students      []Student `bson:"students" json:"students"`
	Tasks         []Task    `bson:"tasks" json:"tasks"`
	ArchivedTasks []Task    `bson:"archived_tasks" json:"archived_tasks"`
}

func (c *Classroom) Task(id string) (Task, bool) {
	for _, t := range c.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

func (c *Classroom) ArchivedTask(id string) (Task, bool) {
	for _, t := range c.ArchivedTasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

func (c *Classroom) HasStudent(id int64) bool {
	for _, s := range c.Students {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (c *Classroom) HasTeacher(id int64) bool {
	for _, t := range c.Teachers {
		if t == id {
			return true
		}
	}
	return false
}
