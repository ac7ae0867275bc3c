package gridview

import (
	"reflect"
	"testing"

	"github.com/readtrack/readtrack-backend/internal/curriculum"
	"github.com/readtrack/readtrack-backend/internal/model"
)

func sampleBlocks() []model.GroupViewBlock {
	n42, n49 := 42, 49
	return []model.GroupViewBlock{
		{
			GroupName: "Red Robins",
			Lessons: []model.LessonColumn{
				{Index: 0, Label: "Lesson 42", Number: &n42},
				{Index: 1, Label: "Lesson 49", Number: &n49},
				{Index: 2, Label: "Comprehension"},
			},
			Students: []model.StudentViewRow{
				{Name: "Ana Torres", Statuses: []string{"Y", "N", ""}},
				{Name: "Li Wei", Statuses: []string{"", "A", "Y"}},
			},
		},
		{
			GroupName: "Blue Jays",
			Lessons: []model.LessonColumn{
				{Index: 0, Label: "L7", Number: intPtr(7)},
			},
			Students: nil,
		},
	}
}

func intPtr(n int) *int { return &n }

func TestRenderScanRoundTrip(t *testing.T) {
	cat := curriculum.Default()
	r := NewRenderer()
	s := NewScanner(cat)

	for _, layout := range []Layout{LayoutHeaderFirst, LayoutTagColumn} {
		blocks := sampleBlocks()
		grid := r.Render(blocks, layout)
		got := s.Scan(grid, layout)

		if len(got) != len(blocks) {
			t.Fatalf("%s: got %d blocks, want %d", layout, len(got), len(blocks))
		}
		for i := range blocks {
			want := blocks[i]
			if got[i].GroupName != want.GroupName {
				t.Errorf("%s: block %d group = %q, want %q", layout, i, got[i].GroupName, want.GroupName)
			}
			if !reflect.DeepEqual(got[i].Lessons, want.Lessons) {
				t.Errorf("%s: block %d lessons = %+v, want %+v", layout, i, got[i].Lessons, want.Lessons)
			}
			if len(got[i].Students) != len(want.Students) {
				t.Fatalf("%s: block %d has %d students, want %d",
					layout, i, len(got[i].Students), len(want.Students))
			}
			for j := range want.Students {
				if got[i].Students[j].Name != want.Students[j].Name {
					t.Errorf("%s: student %d = %q, want %q",
						layout, j, got[i].Students[j].Name, want.Students[j].Name)
				}
				if !reflect.DeepEqual(got[i].Students[j].Statuses, want.Students[j].Statuses) {
					t.Errorf("%s: student %d statuses = %v, want %v",
						layout, j, got[i].Students[j].Statuses, want.Students[j].Statuses)
				}
			}
		}
	}
}

func TestRenderSentinels(t *testing.T) {
	r := NewRenderer()
	grid := r.Render(sampleBlocks(), LayoutHeaderFirst)

	foundHeaderSentinel := false
	foundNoStudents := false
	for row := 0; row < grid.Rows(); row++ {
		switch grid.Cell(row, 0) {
		case SentinelStudentName:
			foundHeaderSentinel = true
		case SentinelNoStudents:
			foundNoStudents = true
		}
	}
	if !foundHeaderSentinel {
		t.Errorf("rendered grid is missing the %q sentinel", SentinelStudentName)
	}
	if !foundNoStudents {
		t.Errorf("rendered grid is missing the %q placeholder", SentinelNoStudents)
	}
}

func TestParseLayout(t *testing.T) {
	if _, err := ParseLayout("header_first"); err != nil {
		t.Errorf("ParseLayout(header_first) error: %v", err)
	}
	if _, err := ParseLayout("tag_column"); err != nil {
		t.Errorf("ParseLayout(tag_column) error: %v", err)
	}
	if _, err := ParseLayout("sideways"); err == nil {
		t.Error("ParseLayout(sideways) did not fail")
	}
}
