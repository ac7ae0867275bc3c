package gridview

import (
	"github.com/readtrack/readtrack-backend/internal/model"
)

// Renderer writes logical blocks back into a grid under either layout.
// Rendering then scanning recovers the identical blocks.
type Renderer struct{}

// NewRenderer returns a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render lays out the blocks in order, one blank separator row between
// blocks. Groups without students get the no-students placeholder.
func (r *Renderer) Render(blocks []model.GroupViewBlock, layout Layout) *SliceGrid {
	g := NewSliceGrid(nil)
	for _, b := range blocks {
		if layout == LayoutTagColumn {
			r.renderTagColumn(g, b)
		} else {
			r.renderHeaderFirst(g, b)
		}
		g.AppendRow()
	}
	return g
}

func (r *Renderer) renderHeaderFirst(g *SliceGrid, b model.GroupViewBlock) {
	g.AppendRow(GroupMarker + " " + b.GroupName)
	g.AppendRow(SentinelStudentName)

	labels := make([]string, 1+len(b.Lessons))
	for i, col := range b.Lessons {
		labels[1+i] = col.Label
	}
	g.AppendRow(labels...)

	if len(b.Students) == 0 {
		g.AppendRow(SentinelNoStudents)
		return
	}
	for _, st := range b.Students {
		row := make([]string, 1+len(b.Lessons))
		row[0] = st.Name
		for i := range b.Lessons {
			if i < len(st.Statuses) {
				row[1+i] = st.Statuses[i]
			}
		}
		g.AppendRow(row...)
	}
}

func (r *Renderer) renderTagColumn(g *SliceGrid, b model.GroupViewBlock) {
	g.AppendRow(SentinelStudentName)

	labels := make([]string, lessonOffset+len(b.Lessons))
	labels[tagColumn] = b.GroupName
	for i, col := range b.Lessons {
		labels[lessonOffset+i] = col.Label
	}
	g.AppendRow(labels...)

	if len(b.Students) == 0 {
		g.AppendRow(SentinelNoStudents)
		return
	}
	for _, st := range b.Students {
		row := make([]string, lessonOffset+len(b.Lessons))
		row[0] = st.Name
		row[tagColumn] = b.GroupName
		for i := range b.Lessons {
			if i < len(st.Statuses) {
				row[lessonOffset+i] = st.Statuses[i]
			}
		}
		g.AppendRow(row...)
	}
}
