// Package gridview reads and writes group view grids: the spreadsheet
// regions that show one block per group, students down the side and
// lesson columns across. Two physical layouts are in circulation; both
// scan into the same logical block shape and both can be rendered back.
// All cell access goes through the Grid abstraction, never raw offsets
// at call sites.
package gridview

import "fmt"

// Sentinel strings shared with existing sheet consumers. These are wire
// contract and must appear verbatim.
const (
	SentinelStudentName = "Student Name"
	SentinelNoStudents  = "(No students assigned)"
)

// GroupMarker prefixes a header-first block's title cell.
const GroupMarker = "Group:"

// Layout B fixed positions: the tag column carrying the group id and
// the first lesson-label column.
const (
	tagColumn    = 1
	lessonOffset = 2
)

// Layout selects one of the two recognized block grammars.
type Layout string

const (
	// LayoutHeaderFirst is the grammar with a "Group:" title row above
	// the Student Name sentinel row.
	LayoutHeaderFirst Layout = "header_first"
	// LayoutTagColumn is the grammar where every row carries the group
	// id in a fixed tag column.
	LayoutTagColumn Layout = "tag_column"
)

// ParseLayout validates a configured layout key.
func ParseLayout(key string) (Layout, error) {
	switch Layout(key) {
	case LayoutHeaderFirst, LayoutTagColumn:
		return Layout(key), nil
	}
	return "", fmt.Errorf("unknown group view layout %q", key)
}

// Grid is read access to an ordered-rows, ordered-cells surface.
// Out-of-range reads return the empty string.
type Grid interface {
	Rows() int
	Cell(row, col int) string
	RowWidth(row int) int
}

// MutableGrid additionally supports cell writes.
type MutableGrid interface {
	Grid
	SetCell(row, col int, value string)
}

// SliceGrid is the in-memory grid. The zero value is an empty grid.
type SliceGrid struct {
	rows [][]string
}

// NewSliceGrid wraps existing row data.
func NewSliceGrid(rows [][]string) *SliceGrid {
	return &SliceGrid{rows: rows}
}

func (g *SliceGrid) Rows() int { return len(g.rows) }

func (g *SliceGrid) RowWidth(row int) int {
	if row < 0 || row >= len(g.rows) {
		return 0
	}
	return len(g.rows[row])
}

func (g *SliceGrid) Cell(row, col int) string {
	if row < 0 || row >= len(g.rows) {
		return ""
	}
	r := g.rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

func (g *SliceGrid) SetCell(row, col int, value string) {
	for row >= len(g.rows) {
		g.rows = append(g.rows, nil)
	}
	for col >= len(g.rows[row]) {
		g.rows[row] = append(g.rows[row], "")
	}
	g.rows[row][col] = value
}

// AppendRow adds one row at the bottom.
func (g *SliceGrid) AppendRow(cells ...string) {
	g.rows = append(g.rows, cells)
}

// Data exposes the underlying rows for bulk writes.
func (g *SliceGrid) Data() [][]string { return g.rows }

func isBlankRow(g Grid, row int) bool {
	for c := 0; c < g.RowWidth(row); c++ {
		if g.Cell(row, c) != "" {
			return false
		}
	}
	return true
}
