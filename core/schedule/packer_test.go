package schedule

import (
	"bytes"
	"encoding/csv"
	"io/ioutil"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/trezcool/altedy/core/classroom"
)

func TestPackAnswers(t *testing.T) {
	task := classroom.Task{ID: "task-1", Description: "Essay"}
	cls := classroom.Classroom{
		ClassroomID: "c1",
		Name:        "Algebra",
		Students: []classroom.Student{
			{ID: 100, Tasks: []classroom.StudentSubmission{{
				TaskID:      "task-1",
				StudentID:   100,
				Description: "my essay text",
				Files:       []classroom.TaskFile{{Filename: "essay.docx", Data: []byte("words")}},
			}}},
			{ID: 101}, // never submitted
			{ID: 102, Tasks: []classroom.StudentSubmission{{
				TaskID:    "task-1",
				StudentID: 102,
				Files:     []classroom.TaskFile{{Filename: "solution.pdf", Data: []byte("%PDF")}},
			}}},
		},
	}

	pkg, err := PackAnswers(cls, task, nil)
	if err != nil {
		t.Fatalf("PackAnswers() error = %v", err)
	}
	if pkg.Filename != "task_task-1_answers.zip" {
		t.Errorf("Filename = %q", pkg.Filename)
	}
	if len(pkg.Students) != 2 || pkg.Students[0] != 100 || pkg.Students[1] != 102 {
		t.Errorf("Students = %v, want [100 102]", pkg.Students)
	}

	zr, err := zip.NewReader(bytes.NewReader(pkg.Archive), int64(len(pkg.Archive)))
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	contents := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}
		data, err := ioutil.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
		contents[f.Name] = data
	}

	// only submitting students have sub-paths
	want := map[string]string{
		"100/description.txt": "my essay text",
		"100/essay.docx":      "words",
		"102/description.txt": "", // file-only answer still gets the stub
		"102/solution.pdf":    "%PDF",
	}
	for name, data := range want {
		got, ok := contents[name]
		if !ok {
			t.Errorf("archive is missing %s", name)
			continue
		}
		if string(got) != data {
			t.Errorf("%s = %q, want %q", name, got, data)
		}
	}
	for name := range contents {
		if name != gradesIndexName {
			if _, ok := want[name]; !ok {
				t.Errorf("unexpected archive entry %s", name)
			}
		}
	}

	// the index corresponds one-to-one with the sub-paths
	index, ok := contents[gradesIndexName]
	if !ok {
		t.Fatalf("archive is missing %s", gradesIndexName)
	}
	rows, err := csv.NewReader(bytes.NewReader(index)).ReadAll()
	if err != nil {
		t.Fatalf("parsing %s: %v", gradesIndexName, err)
	}
	wantRows := [][]string{
		{"student_id", "answers", "grade"},
		{"100", "100/", ""},
		{"102", "102/", ""},
	}
	if len(rows) != len(wantRows) {
		t.Fatalf("index rows = %v, want %v", rows, wantRows)
	}
	for i, row := range rows {
		for j, cell := range row {
			if cell != wantRows[i][j] {
				t.Errorf("index row %d = %v, want %v", i, row, wantRows[i])
				break
			}
		}
	}
}

func TestPackAnswers_noSubmissions(t *testing.T) {
	cls := classroom.Classroom{Students: []classroom.Student{{ID: 100}}}
	pkg, err := PackAnswers(cls, classroom.Task{ID: "task-1"}, nil)
	if err != nil {
		t.Fatalf("PackAnswers() error = %v", err)
	}
	if len(pkg.Students) != 0 {
		t.Errorf("Students = %v, want none", pkg.Students)
	}

	zr, err := zip.NewReader(bytes.NewReader(pkg.Archive), int64(len(pkg.Archive)))
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != gradesIndexName {
		t.Errorf("archive entries = %d, want only %s", len(zr.File), gradesIndexName)
	}
}

type fixedScorer struct{ score float64 }

func (s fixedScorer) Score(string) (float64, error) { return s.score, nil }

func TestPackAnswers_withScorer(t *testing.T) {
	task := classroom.Task{ID: "task-1"}
	cls := classroom.Classroom{
		Students: []classroom.Student{
			{ID: 100, Tasks: []classroom.StudentSubmission{{
				TaskID: "task-1", StudentID: 100, Description: "my essay text",
			}}},
			{ID: 101, Tasks: []classroom.StudentSubmission{{
				TaskID: "task-1", StudentID: 101, // file-only: nothing to score
				Files: []classroom.TaskFile{{Filename: "solution.pdf", Data: []byte("%PDF")}},
			}}},
		},
	}

	pkg, err := PackAnswers(cls, task, fixedScorer{score: 7.5})
	if err != nil {
		t.Fatalf("PackAnswers() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(pkg.Archive), int64(len(pkg.Archive)))
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	var index []byte
	for _, f := range zr.File {
		if f.Name != gradesIndexName {
			continue
		}
		rc, _ := f.Open()
		index, _ = ioutil.ReadAll(rc)
		rc.Close()
	}
	rows, err := csv.NewReader(bytes.NewReader(index)).ReadAll()
	if err != nil {
		t.Fatalf("parsing %s: %v", gradesIndexName, err)
	}

	wantRows := [][]string{
		{"student_id", "answers", "grade", "suggested"},
		{"100", "100/", "", "7.5"},
		{"101", "101/", "", ""}, // grade stays the teacher's call either way
	}
	if len(rows) != len(wantRows) {
		t.Fatalf("index rows = %v, want %v", rows, wantRows)
	}
	for i, row := range rows {
		for j, cell := range row {
			if cell != wantRows[i][j] {
				t.Errorf("index row %d = %v, want %v", i, row, wantRows[i])
				break
			}
		}
	}
}
