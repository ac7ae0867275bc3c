package model

// LessonColumn is one lesson slot in a group view block. Number is nil
// for named lessons ("Comprehension").
type LessonColumn struct {
	Index  int    `json:"index"`
	Label  string `json:"label"`
	Number *int   `json:"number,omitempty"`
}

// StudentViewRow is one student's row of status cells, index-aligned
// with the block's lesson columns. Empty string means no entry.
type StudentViewRow struct {
	Name     string   `json:"name"`
	Statuses []string `json:"statuses"`
}

// GroupViewBlock is the layout-independent form of one group's grid
// region: the lesson columns and one row of cells per student. Both
// physical layouts scan into this shape and render from it.
type GroupViewBlock struct {
	GroupName string           `json:"group_name"`
	Lessons   []LessonColumn   `json:"lessons"`
	Students  []StudentViewRow `json:"students"`
}

// Cell returns the status cell for a student/lesson pair, by position.
func (b *GroupViewBlock) Cell(studentIdx, lessonIdx int) string {
	if studentIdx < 0 || studentIdx >= len(b.Students) {
		return ""
	}
	row := b.Students[studentIdx]
	if lessonIdx < 0 || lessonIdx >= len(row.Statuses) {
		return ""
	}
	return row.Statuses[lessonIdx]
}

// LessonIndex finds the column whose label resolves to the same key.
func (b *GroupViewBlock) LessonIndex(key string, keyFn func(string) string) (int, bool) {
	for i, col := range b.Lessons {
		if keyFn(col.Label) == key {
			return i, true
		}
	}
	return 0, false
}
