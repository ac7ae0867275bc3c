package gridview

import (
	"testing"

	"github.com/readtrack/readtrack-backend/internal/curriculum"
)

func TestScanHeaderFirst(t *testing.T) {
	g := NewSliceGrid([][]string{
		{"Group: Red Robins"},
		{"Student Name"},
		{"", "Lesson 42", "Lesson 43", "Comprehension"},
		{"Ana Torres", "Y", "N", "Y"},
		{"Li Wei", "", "A", ""},
		{},
		{"Group: Blue Jays"},
		{"Student Name"},
		{"", "L7"},
		{"(No students assigned)"},
	})

	s := NewScanner(curriculum.Default())
	blocks := s.Scan(g, LayoutHeaderFirst)

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}

	b := blocks[0]
	if b.GroupName != "Red Robins" {
		t.Errorf("group = %q, want Red Robins", b.GroupName)
	}
	if len(b.Lessons) != 3 {
		t.Fatalf("got %d lesson columns, want 3", len(b.Lessons))
	}
	if b.Lessons[0].Number == nil || *b.Lessons[0].Number != 42 {
		t.Errorf("lesson 0 number = %v, want 42", b.Lessons[0].Number)
	}
	if b.Lessons[2].Number != nil {
		t.Errorf("named lesson resolved to number %d", *b.Lessons[2].Number)
	}
	if len(b.Students) != 2 {
		t.Fatalf("got %d students, want 2", len(b.Students))
	}
	if b.Students[0].Name != "Ana Torres" || b.Students[0].Statuses[0] != "Y" {
		t.Errorf("student 0 = %+v", b.Students[0])
	}
	if b.Students[1].Statuses[1] != "A" || b.Students[1].Statuses[2] != "" {
		t.Errorf("student 1 statuses = %v", b.Students[1].Statuses)
	}

	empty := blocks[1]
	if empty.GroupName != "Blue Jays" || len(empty.Students) != 0 {
		t.Errorf("empty group = %q with %d students", empty.GroupName, len(empty.Students))
	}
}

func TestScanTagColumn(t *testing.T) {
	g := NewSliceGrid([][]string{
		{"Student Name"},
		{"", "Red Robins", "Lesson 42", "Lesson 49"},
		{"Ana Torres", "Red Robins", "Y", "N"},
		{"Stray Row", "Other Group", "Y", "Y"}, // wrong tag: skipped
		{"Li Wei", "Red Robins", "", "A"},
		{},
		{"Student Name"},
		{"", "Blue Jays", "L7"},
		{"(No students assigned)"},
	})

	s := NewScanner(curriculum.Default())
	blocks := s.Scan(g, LayoutTagColumn)

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}

	b := blocks[0]
	if b.GroupName != "Red Robins" {
		t.Errorf("group = %q, want Red Robins", b.GroupName)
	}
	if len(b.Students) != 2 {
		t.Fatalf("got %d students, want 2 (stray row must be skipped)", len(b.Students))
	}
	if b.Students[1].Name != "Li Wei" || b.Students[1].Statuses[1] != "A" {
		t.Errorf("student 1 = %+v", b.Students[1])
	}

	if blocks[1].GroupName != "Blue Jays" || len(blocks[1].Students) != 0 {
		t.Errorf("empty group = %+v", blocks[1])
	}
}

func TestScanSkipsLabelGaps(t *testing.T) {
	g := NewSliceGrid([][]string{
		{"Group: Gappy"},
		{"Student Name"},
		{"", "Lesson 1", "", "Lesson 3"},
		{"Ana Torres", "Y", "", "N"},
	})

	s := NewScanner(curriculum.Default())
	blocks := s.Scan(g, LayoutHeaderFirst)

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	b := blocks[0]
	if len(b.Lessons) != 2 {
		t.Fatalf("got %d lesson columns, want 2 (gap skipped)", len(b.Lessons))
	}
	// Statuses stay aligned with their grid columns across the gap.
	if b.Students[0].Statuses[0] != "Y" || b.Students[0].Statuses[1] != "N" {
		t.Errorf("statuses = %v, want [Y N]", b.Students[0].Statuses)
	}
}

func TestLocateAndPatch(t *testing.T) {
	cat := curriculum.Default()
	g := NewSliceGrid([][]string{
		{"Group: Red Robins"},
		{"Student Name"},
		{"", "Lesson 42", "Lesson 43"},
		{"Ana Torres", "", ""},
		{"Li Wei", "", ""},
	})

	s := NewScanner(cat)
	reg, ok := s.Locate(g, LayoutHeaderFirst, "Red Robins")
	if !ok {
		t.Fatal("block not located")
	}

	patched, found := reg.PatchStatuses(g, cat, "L42", map[string]string{
		"ana torres": "Y",
	})
	if !found {
		t.Fatal("lesson column not found")
	}
	if patched != 1 {
		t.Fatalf("patched %d cells, want 1", patched)
	}
	if got := g.Cell(3, 1); got != "Y" {
		t.Errorf("cell(3,1) = %q, want Y", got)
	}
	if got := g.Cell(4, 1); got != "" {
		t.Errorf("cell(4,1) = %q, want empty", got)
	}

	// A lesson with no column in this block is reported, not written.
	if _, found := reg.PatchStatuses(g, cat, "Lesson 99", map[string]string{"ana torres": "Y"}); found {
		t.Error("patch found a column for a lesson the block does not show")
	}

	// Unknown group is a soft miss.
	if _, ok := s.Locate(g, LayoutHeaderFirst, "No Such Group"); ok {
		t.Error("located a block for an unknown group")
	}
}
