package gridview

import (
	"github.com/readtrack/readtrack-backend/internal/curriculum"
)

// PatchStatuses writes status letters into one lesson column of a
// located block: one cell per student whose normalized name appears in
// byStudent. Students missing from the block are skipped, not an error.
// Returns how many cells were written and whether the lesson column was
// found at all.
func (reg BlockRegion) PatchStatuses(g MutableGrid, cat *curriculum.Catalog, lessonLabel string, byStudent map[string]string) (int, bool) {
	key := cat.Key(lessonLabel)
	col := -1
	for i, label := range reg.Labels {
		if cat.Key(label) == key {
			col = reg.LessonCols[i]
			break
		}
	}
	if col < 0 {
		return 0, false
	}

	patched := 0
	for i, row := range reg.StudentRows {
		status, ok := byStudent[curriculum.NormalizeName(reg.Names[i])]
		if !ok {
			continue
		}
		g.SetCell(row, col, status)
		patched++
	}
	return patched, true
}
