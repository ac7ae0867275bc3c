package gridview

import (
	"strings"

	"github.com/readtrack/readtrack-backend/internal/curriculum"
	"github.com/readtrack/readtrack-backend/internal/model"
)

// Scanner recognizes group blocks in a grid under either layout.
type Scanner struct {
	cat *curriculum.Catalog
}

// NewScanner returns a Scanner bound to the given catalog.
func NewScanner(cat *curriculum.Catalog) *Scanner {
	return &Scanner{cat: cat}
}

// BlockRegion anchors one recognized block to grid coordinates so cells
// can be patched in place.
type BlockRegion struct {
	GroupName   string
	LabelRow    int
	LessonCols  []int
	Labels      []string
	StudentRows []int
	Names       []string
}

// Scan returns every block in the grid as its logical form, in grid
// order.
func (s *Scanner) Scan(g Grid, layout Layout) []model.GroupViewBlock {
	regions := s.Regions(g, layout)
	blocks := make([]model.GroupViewBlock, 0, len(regions))
	for _, reg := range regions {
		blocks = append(blocks, s.blockFromRegion(g, reg))
	}
	return blocks
}

// Regions returns the grid anchors for every block under the layout.
func (s *Scanner) Regions(g Grid, layout Layout) []BlockRegion {
	if layout == LayoutTagColumn {
		return s.tagColumnRegions(g)
	}
	return s.headerFirstRegions(g)
}

// Locate finds one group's block anchors.
func (s *Scanner) Locate(g Grid, layout Layout, groupName string) (BlockRegion, bool) {
	for _, reg := range s.Regions(g, layout) {
		if reg.GroupName == groupName {
			return reg, true
		}
	}
	return BlockRegion{}, false
}

func (s *Scanner) blockFromRegion(g Grid, reg BlockRegion) model.GroupViewBlock {
	block := model.GroupViewBlock{
		GroupName: reg.GroupName,
		Lessons:   make([]model.LessonColumn, 0, len(reg.LessonCols)),
		Students:  make([]model.StudentViewRow, 0, len(reg.StudentRows)),
	}
	for i, label := range reg.Labels {
		col := model.LessonColumn{Index: i, Label: label}
		if n, ok := s.cat.ExtractNumber(label); ok {
			col.Number = &n
		}
		block.Lessons = append(block.Lessons, col)
	}
	for i, row := range reg.StudentRows {
		statuses := make([]string, len(reg.LessonCols))
		for j, c := range reg.LessonCols {
			statuses[j] = g.Cell(row, c)
		}
		block.Students = append(block.Students, model.StudentViewRow{
			Name:     reg.Names[i],
			Statuses: statuses,
		})
	}
	return block
}

// headerFirstRegions walks the header-first grammar: a title cell
// containing the group marker, the Student Name sentinel on the next
// row, lesson labels on the row after, then student rows until a blank
// row, the no-students placeholder, or another header.
func (s *Scanner) headerFirstRegions(g Grid) []BlockRegion {
	var regions []BlockRegion
	for r := 0; r < g.Rows(); r++ {
		name, ok := s.headerAt(g, r)
		if !ok {
			continue
		}
		reg := BlockRegion{GroupName: name, LabelRow: r + 2}
		for c := 1; c < g.RowWidth(reg.LabelRow); c++ {
			label := strings.TrimSpace(g.Cell(reg.LabelRow, c))
			if label == "" {
				continue
			}
			reg.LessonCols = append(reg.LessonCols, c)
			reg.Labels = append(reg.Labels, label)
		}
		row := reg.LabelRow + 1
		for ; row < g.Rows(); row++ {
			if isBlankRow(g, row) || g.Cell(row, 0) == SentinelNoStudents {
				break
			}
			if _, header := s.headerAt(g, row); header {
				break
			}
			studentName := strings.TrimSpace(g.Cell(row, 0))
			if studentName == "" {
				continue
			}
			reg.StudentRows = append(reg.StudentRows, row)
			reg.Names = append(reg.Names, studentName)
		}
		regions = append(regions, reg)
		r = row - 1
	}
	return regions
}

func (s *Scanner) headerAt(g Grid, row int) (string, bool) {
	if g.Cell(row+1, 0) != SentinelStudentName {
		return "", false
	}
	for c := 0; c < g.RowWidth(row); c++ {
		cell := g.Cell(row, c)
		if idx := strings.Index(cell, GroupMarker); idx >= 0 {
			return strings.TrimSpace(cell[idx+len(GroupMarker):]), true
		}
	}
	return "", false
}

// tagColumnRegions walks the tag-column grammar: a Student Name row
// starts a block, the next row carries the group id in the tag column
// and lesson labels from the fixed offset, and student rows carry the
// same tag until a blank row or the next Student Name row.
func (s *Scanner) tagColumnRegions(g Grid) []BlockRegion {
	var regions []BlockRegion
	for r := 0; r < g.Rows(); r++ {
		if g.Cell(r, 0) != SentinelStudentName {
			continue
		}
		labelRow := r + 1
		name := strings.TrimSpace(g.Cell(labelRow, tagColumn))
		if name == "" {
			continue
		}
		reg := BlockRegion{GroupName: name, LabelRow: labelRow}
		for c := lessonOffset; c < g.RowWidth(labelRow); c++ {
			label := strings.TrimSpace(g.Cell(labelRow, c))
			if label == "" {
				continue
			}
			reg.LessonCols = append(reg.LessonCols, c)
			reg.Labels = append(reg.Labels, label)
		}
		row := labelRow + 1
		for ; row < g.Rows(); row++ {
			if isBlankRow(g, row) || g.Cell(row, 0) == SentinelStudentName {
				break
			}
			if g.Cell(row, 0) == SentinelNoStudents {
				continue
			}
			if strings.TrimSpace(g.Cell(row, tagColumn)) != name {
				continue
			}
			studentName := strings.TrimSpace(g.Cell(row, 0))
			if studentName == "" {
				continue
			}
			reg.StudentRows = append(reg.StudentRows, row)
			reg.Names = append(reg.Names, studentName)
		}
		regions = append(regions, reg)
		r = row - 1
	}
	return regions
}
