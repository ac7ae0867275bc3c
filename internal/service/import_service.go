package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/readtrack/readtrack-backend/internal/curriculum"
	"github.com/readtrack/readtrack-backend/internal/gridview"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/repository"
	"github.com/readtrack/readtrack-backend/internal/scoring"
)

// ErrImportRejected is returned when validation found issues. The report
// carries them; nothing was written.
var ErrImportRejected = errors.New("import rejected by validation")

// importReporter is the reporter name stamped on ledger events and
// unenrollment logs that originate from a bulk import.
const importReporter = "import"

// ImportService ingests bulk progress data: historical sheets, corrected
// columns, baseline assessments. Validation is all-or-nothing; the apply
// runs in one transaction.
type ImportService struct {
	studentRepo  *repository.StudentRepository
	ledgerRepo   *repository.LedgerRepository
	unenrollRepo *repository.UnenrollmentRepository
	progress     *ProgressService
	pacing       *PacingService
	groupView    *GroupViewService
	events       *EventsService
	pool         *pgxpool.Pool
	cat          *curriculum.Catalog
	log          zerolog.Logger
}

// NewImportService creates a new ImportService.
func NewImportService(
	studentRepo *repository.StudentRepository,
	ledgerRepo *repository.LedgerRepository,
	unenrollRepo *repository.UnenrollmentRepository,
	progress *ProgressService,
	pacing *PacingService,
	groupView *GroupViewService,
	events *EventsService,
	pool *pgxpool.Pool,
	cat *curriculum.Catalog,
	log zerolog.Logger,
) *ImportService {
	return &ImportService{
		studentRepo:  studentRepo,
		ledgerRepo:   ledgerRepo,
		unenrollRepo: unenrollRepo,
		progress:     progress,
		pacing:       pacing,
		groupView:    groupView,
		events:       events,
		pool:         pool,
		cat:          cat,
		log:          log.With().Str("component", "import_service").Logger(),
	}
}

// cellKey addresses one reconciled import cell.
type cellKey struct {
	studentID uuid.UUID
	lessonKey string
	initial   bool
}

// cellValue is the winning row for a cell after duplicate reconciliation.
type cellValue struct {
	status model.Status
	label  string
	number *int
}

// Validate checks every row without writing anything. Row numbers in the
// returned issues are 1-based.
func (s *ImportService) Validate(ctx context.Context, rows []model.ImportRow) ([]model.RowIssue, error) {
	byKey, err := s.loadStudents(ctx)
	if err != nil {
		return nil, err
	}
	return s.validateRows(rows, byKey), nil
}

// Import validates, reconciles and applies a batch of rows. Any validation
// issue rejects the whole batch before the first write; the returned report
// then carries the issues alongside ErrImportRejected.
func (s *ImportService) Import(ctx context.Context, req *model.ImportRequest) (*model.ImportReport, error) {
	report := &model.ImportReport{RowsRead: len(req.Rows)}

	byKey, err := s.loadStudents(ctx)
	if err != nil {
		return nil, err
	}
	if issues := s.validateRows(req.Rows, byKey); len(issues) > 0 {
		report.Issues = issues
		return report, ErrImportRejected
	}

	// Reconcile duplicates: rows targeting the same cell collapse to the
	// highest-priority status. This order is the import rule; the ledger
	// keeps its own chronological-overwrite rule.
	cells := make(map[cellKey]cellValue)
	for _, row := range req.Rows {
		rec := byKey[curriculum.NormalizeName(row.StudentName)]
		key := cellKey{
			studentID: rec.ID,
			lessonKey: s.cat.Key(row.LessonLabel),
			initial:   row.IsInitial,
		}
		status, _ := model.ParseStatus(row.Status)
		if prev, ok := cells[key]; ok {
			report.Duplicates++
			status = scoring.BestStatus(prev.status, status)
		}
		val := cellValue{status: status, label: row.LessonLabel}
		if n, ok := s.cat.ExtractNumber(row.LessonLabel); ok {
			val.number = &n
		}
		cells[key] = val
	}

	now := time.Now().UTC()
	if err := s.apply(ctx, byKey, cells, now, report); err != nil {
		return nil, err
	}

	s.recompute(ctx)
	s.events.Publish(ctx, EventImport, map[string]interface{}{
		"rows_read":        report.RowsRead,
		"rows_applied":     report.RowsApplied,
		"students_touched": report.StudentsTouched,
	})
	s.log.Info().
		Int("rows_read", report.RowsRead).
		Int("rows_applied", report.RowsApplied).
		Int("duplicates", report.Duplicates).
		Int("students", report.StudentsTouched).
		Msg("Import committed")

	return report, nil
}

// ImportWorkbook scans an uploaded workbook and imports its cells.
func (s *ImportService) ImportWorkbook(ctx context.Context, path string, layout gridview.Layout, isInitial bool) (*model.ImportReport, error) {
	blocks, err := s.groupView.ScanUpload(path, layout)
	if err != nil {
		return nil, fmt.Errorf("scan workbook: %w", err)
	}
	rows := RowsFromBlocks(blocks, isInitial)
	if len(rows) == 0 {
		return &model.ImportReport{}, nil
	}
	return s.Import(ctx, &model.ImportRequest{Rows: rows})
}

// RowsFromBlocks flattens scanned grid blocks into import rows, skipping
// empty cells.
func RowsFromBlocks(blocks []model.GroupViewBlock, isInitial bool) []model.ImportRow {
	var rows []model.ImportRow
	for _, block := range blocks {
		for si := range block.Students {
			for li, col := range block.Lessons {
				cell := block.Cell(si, li)
				if cell == "" {
					continue
				}
				rows = append(rows, model.ImportRow{
					StudentName: block.Students[si].Name,
					LessonLabel: col.Label,
					Status:      cell,
					IsInitial:   isInitial,
				})
			}
		}
	}
	return rows
}

func (s *ImportService) loadStudents(ctx context.Context) (map[string]*model.StudentRecord, error) {
	recs, err := s.studentRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load master records: %w", err)
	}
	byKey := make(map[string]*model.StudentRecord, len(recs))
	for i := range recs {
		byKey[recs[i].NameKey] = &recs[i]
	}
	return byKey, nil
}

func (s *ImportService) validateRows(rows []model.ImportRow, byKey map[string]*model.StudentRecord) []model.RowIssue {
	var issues []model.RowIssue
	for i, row := range rows {
		num := i + 1
		nameKey := curriculum.NormalizeName(row.StudentName)
		rec, ok := byKey[nameKey]
		switch {
		case nameKey == "" || !ok:
			details := fmt.Sprintf("no master record for %q", row.StudentName)
			if row.Grade != "" {
				details = fmt.Sprintf("no master record for %q (grade %s)", row.StudentName, row.Grade)
			}
			issues = append(issues, model.RowIssue{Row: num, IssueType: model.IssueUnknownStudent, Details: details})
		case rec.Enrollment != model.EnrollmentActive:
			// An unenrolled vector is frozen. Reactivate through the roster
			// first, then re-run the import.
			issues = append(issues, model.RowIssue{
				Row:       num,
				IssueType: model.IssueStudentInactive,
				Details:   fmt.Sprintf("%q is unenrolled; its vectors are frozen", row.StudentName),
			})
		}
		if _, err := model.ParseStatus(row.Status); err != nil {
			issues = append(issues, model.RowIssue{Row: num, IssueType: model.IssueUnknownStatus, Details: err.Error()})
		}
		if n, bad := s.cat.OutOfRange(row.LessonLabel); bad {
			issues = append(issues, model.RowIssue{
				Row:       num,
				IssueType: model.IssueBadLesson,
				Details:   fmt.Sprintf("lesson %d is outside the curriculum", n),
			})
		}
	}
	return issues
}

// apply writes all reconciled cells in one transaction: vector updates,
// pointer moves and the ledger events that let a rebuild reproduce them.
// Unenrollment diversions run after commit.
func (s *ImportService) apply(
	ctx context.Context,
	byKey map[string]*model.StudentRecord,
	cells map[cellKey]cellValue,
	now time.Time,
	report *model.ImportReport,
) error {
	byID := make(map[uuid.UUID]*model.StudentRecord, len(byKey))
	for _, rec := range byKey {
		byID[rec.ID] = rec
	}

	baselines := make(map[uuid.UUID]model.StatusVector)
	currents := make(map[uuid.UUID]model.StatusVector)
	pointerNum := make(map[uuid.UUID]int)
	pointerLabel := make(map[uuid.UUID]string)
	touched := make(map[uuid.UUID]bool)
	var events []model.CheckinEvent
	var diverted []*model.StudentRecord

	for key, val := range cells {
		rec := byID[key.studentID]

		// A winning U never lands in a vector. On current-data rows it
		// diverts to unenrollment, exactly like a live check-in; on
		// baseline rows it is dropped.
		if !val.status.Recordable() {
			if key.initial {
				s.log.Debug().Str("student", rec.Name).Str("lesson", val.label).Msg("Baseline U skipped")
				continue
			}
			events = append(events, model.CheckinEvent{
				OccurredAt:  now,
				TeacherName: importReporter,
				GroupName:   rec.GroupName,
				StudentName: rec.Name,
				LessonLabel: val.label,
				Status:      val.status,
			})
			diverted = append(diverted, rec)
			touched[rec.ID] = true
			report.RowsApplied++
			continue
		}

		if key.initial {
			vec, ok := baselines[rec.ID]
			if !ok {
				vec = rec.BaselineVector.Clone()
				baselines[rec.ID] = vec
			}
			vec[key.lessonKey] = val.status
		} else {
			vec, ok := currents[rec.ID]
			if !ok {
				vec = rec.StatusVector.Clone()
				currents[rec.ID] = vec
			}
			vec[key.lessonKey] = val.status

			events = append(events, model.CheckinEvent{
				OccurredAt:  now,
				TeacherName: importReporter,
				GroupName:   rec.GroupName,
				StudentName: rec.Name,
				LessonLabel: val.label,
				Status:      val.status,
			})
			if val.number != nil && *val.number > pointerNum[rec.ID] {
				pointerNum[rec.ID] = *val.number
				pointerLabel[rec.ID] = val.label
			}
		}
		touched[rec.ID] = true
		report.RowsApplied++
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for id, vec := range baselines {
		if err := s.studentRepo.SetBaselineVector(ctx, tx, id, vec); err != nil {
			return fmt.Errorf("set baseline vector: %w", err)
		}
	}
	entryIDs := make([]uuid.UUID, 0, len(currents))
	for id, vec := range currents {
		if err := s.studentRepo.SetStatusVector(ctx, tx, id, vec); err != nil {
			return fmt.Errorf("set status vector: %w", err)
		}
		entryIDs = append(entryIDs, id)
	}
	if err := s.studentRepo.TouchLastEntry(ctx, tx, entryIDs, now); err != nil {
		return fmt.Errorf("touch last entry: %w", err)
	}

	// All import events share one timestamp, so on replay the highest
	// imported lesson number wins the pointer tie. Moving it here keeps the
	// live snapshot on the same answer.
	ptrIDs := make([]uuid.UUID, 0, len(pointerNum))
	ptrLabels := make([]string, 0, len(pointerNum))
	ptrNumbers := make([]int, 0, len(pointerNum))
	for id, n := range pointerNum {
		ptrIDs = append(ptrIDs, id)
		ptrLabels = append(ptrLabels, pointerLabel[id])
		ptrNumbers = append(ptrNumbers, n)
	}
	if err := s.studentRepo.BulkSetCurrentLesson(ctx, tx, ptrIDs, ptrLabels, ptrNumbers); err != nil {
		return fmt.Errorf("move lesson pointers: %w", err)
	}

	if err := s.ledgerRepo.AppendBatch(ctx, tx, events); err != nil {
		return fmt.Errorf("append ledger events: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	for _, rec := range diverted {
		if err := s.unenrollImported(ctx, rec.NameKey, now); err != nil {
			s.log.Warn().Err(err).Str("student", rec.Name).Msg("Import unenrollment diversion failed")
		}
	}

	report.StudentsTouched = len(touched)
	return nil
}

// unenrollImported flips a master record after an imported U. The record is
// reloaded so the archive carries the vectors this import just wrote.
func (s *ImportService) unenrollImported(ctx context.Context, nameKey string, at time.Time) error {
	rec, err := s.studentRepo.GetByNameKey(ctx, nameKey)
	if err != nil {
		return fmt.Errorf("load student: %w", err)
	}
	if rec.Enrollment == model.EnrollmentUnenrolled {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.studentRepo.Unenroll(ctx, tx, rec.ID, at); err != nil {
		return fmt.Errorf("unenroll: %w", err)
	}
	entry := &model.UnenrollmentLog{
		StudentID:        rec.ID,
		StudentName:      rec.Name,
		GroupName:        rec.GroupName,
		ReportedBy:       importReporter,
		ReportedAt:       at,
		LessonAtExit:     rec.CurrentLessonLabel,
		ArchivedVector:   rec.StatusVector,
		ArchivedBaseline: rec.BaselineVector,
		Notes:            "unenrolled by bulk import",
	}
	if err := s.unenrollRepo.Insert(ctx, tx, entry); err != nil {
		return fmt.Errorf("archive unenrollment: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.log.Info().Str("student", rec.Name).Str("group", rec.GroupName).Msg("Student unenrolled by import")
	return nil
}

func (s *ImportService) recompute(ctx context.Context) {
	if err := s.progress.RecomputeBenchmarks(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Benchmark recompute failed")
	}
	if err := s.pacing.RecomputeRollups(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Pacing recompute failed")
	}
	if err := s.groupView.RenderAll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Group view render failed")
	}
}
