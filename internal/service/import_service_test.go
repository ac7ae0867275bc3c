package service

import (
	"testing"

	"github.com/readtrack/readtrack-backend/internal/model"
)

func TestRowsFromBlocks(t *testing.T) {
	n12 := 12
	blocks := []model.GroupViewBlock{
		{
			GroupName: "Red Robins",
			Lessons: []model.LessonColumn{
				{Index: 0, Label: "Lesson 12", Number: &n12},
				{Index: 1, Label: "Comprehension"},
			},
			Students: []model.StudentViewRow{
				{Name: "Ana Torres", Statuses: []string{"Y", ""}},
				{Name: "Ben Ukwu", Statuses: []string{"", "N"}},
			},
		},
		{GroupName: "Blue Jays"},
	}

	rows := RowsFromBlocks(blocks, false)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (empty cells are skipped)", len(rows))
	}
	want := []model.ImportRow{
		{StudentName: "Ana Torres", LessonLabel: "Lesson 12", Status: "Y"},
		{StudentName: "Ben Ukwu", LessonLabel: "Comprehension", Status: "N"},
	}
	for i, r := range rows {
		if r != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, r, want[i])
		}
	}

	for i, r := range RowsFromBlocks(blocks, true) {
		if !r.IsInitial {
			t.Errorf("row %d IsInitial = false, want true", i)
		}
	}
}
