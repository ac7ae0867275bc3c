package model

// ImportRow is one parsed row of an external progress import.
type ImportRow struct {
	StudentName string `json:"student_name" binding:"required,min=1,max=255"`
	Grade       string `json:"grade" binding:"omitempty,max=16"`
	LessonLabel string `json:"lesson_label" binding:"required,min=1,max=255"`
	Status      string `json:"status" binding:"required,len=1"`
	IsInitial   bool   `json:"is_initial"`
}

// Import issue types.
const (
	IssueUnknownStudent  = "unknown_student"
	IssueUnknownStatus   = "unknown_status"
	IssueBadLesson       = "bad_lesson"
	IssueStudentInactive = "student_inactive"
)

// RowIssue describes one rejected import row. Any issue fails the whole
// import before the first write.
type RowIssue struct {
	Row       int    `json:"row"`
	IssueType string `json:"issue_type"`
	Details   string `json:"details"`
}

// ImportRequest is the JSON import payload.
type ImportRequest struct {
	Rows []ImportRow `json:"rows" binding:"required,min=1,dive"`
}

// ImportReport summarizes a committed import.
type ImportReport struct {
	RowsRead        int        `json:"rows_read"`
	RowsApplied     int        `json:"rows_applied"`
	Duplicates      int        `json:"duplicates_merged"`
	StudentsTouched int        `json:"students_touched"`
	Issues          []RowIssue `json:"issues,omitempty"`
}
