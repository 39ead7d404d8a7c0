package schedule

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path"
	"strconv"

	"github.com/klauspost/compress/zip"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/classroom"
)

const (
	gradesIndexName     = "grades.csv"
	descriptionFileName = "description.txt"
)

// Package is one task's submissions bundled for teacher review.
type Package struct {
	Filename string
	Archive  []byte
	Students []int64 // submitting students, in index row order
}

// PackAnswers bundles every current submission for the task into a single
// archive: one sub-path per submitting student holding their description and
// files, plus a grades.csv index (student id, link to the sub-path, empty
// grade cell). Index rows and link targets correspond one-to-one with the
// sub-paths actually written; the teacher fills the grade column in and
// returns the sheet.
//
// When a scorer is plugged in, text answers additionally get a suggested
// score in a separate column; the grade cell itself is always left to the
// teacher.
func PackAnswers(cls classroom.Classroom, task classroom.Task, scorer core.Scorer) (Package, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	header := []string{"student_id", "answers", "grade"}
	if scorer != nil {
		header = append(header, "suggested")
	}
	rows := [][]string{header}
	var students []int64
	for _, st := range cls.Students {
		sub, ok := st.Submission(task.ID)
		if !ok {
			continue
		}
		subDir := strconv.FormatInt(st.ID, 10)
		if err := writeSubmission(zw, subDir, sub); err != nil {
			return Package{}, pkgerrors.Wrapf(err, "packing answers of student %d", st.ID)
		}
		row := []string{subDir, subDir + "/", ""}
		if scorer != nil {
			row = append(row, suggestScore(scorer, sub.Description))
		}
		rows = append(rows, row)
		students = append(students, st.ID)
	}

	w, err := zw.Create(gradesIndexName)
	if err != nil {
		return Package{}, pkgerrors.Wrap(err, "creating grades index")
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return Package{}, pkgerrors.Wrap(err, "writing grades index")
	}
	if err := zw.Close(); err != nil {
		return Package{}, pkgerrors.Wrap(err, "closing archive")
	}

	return Package{
		Filename: fmt.Sprintf("task_%s_answers.zip", task.ID),
		Archive:  buf.Bytes(),
		Students: students,
	}, nil
}

// suggestScore is advisory only; a failing or inapplicable scorer yields an
// empty cell.
func suggestScore(scorer core.Scorer, text string) string {
	if text == "" {
		return ""
	}
	score, err := scorer.Score(text)
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(score, 'f', 1, 64)
}

func writeSubmission(zw *zip.Writer, dir string, sub classroom.StudentSubmission) error {
	// always written, so every indexed sub-path exists even for file-only
	// or text-only answers
	w, err := zw.Create(path.Join(dir, descriptionFileName))
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(sub.Description)); err != nil {
		return err
	}

	for _, f := range sub.Files {
		w, err := zw.Create(path.Join(dir, path.Base(f.Filename)))
		if err != nil {
			return err
		}
		if _, err := w.Write(f.Data); err != nil {
			return err
		}
	}
	return nil
}
