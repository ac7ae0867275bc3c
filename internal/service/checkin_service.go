package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/readtrack/readtrack-backend/internal/curriculum"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/repository"
	"github.com/readtrack/readtrack-backend/internal/response"
)

// ValidationError carries field-level messages for a submission that
// failed closed. Nothing was written when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// CheckinService handles check-in submissions: ledger append, U
// diversion, queue enqueue, and the optional immediate echo.
type CheckinService struct {
	ledgerRepo   *repository.LedgerRepository
	studentRepo  *repository.StudentRepository
	queueRepo    *repository.QueueRepository
	unenrollRepo *repository.UnenrollmentRepository
	groupView    *GroupViewService
	events       *EventsService
	pool         *pgxpool.Pool
	cat          *curriculum.Catalog
	echo         bool
	log          zerolog.Logger
}

// NewCheckinService creates a new CheckinService.
func NewCheckinService(
	ledgerRepo *repository.LedgerRepository,
	studentRepo *repository.StudentRepository,
	queueRepo *repository.QueueRepository,
	unenrollRepo *repository.UnenrollmentRepository,
	groupView *GroupViewService,
	events *EventsService,
	pool *pgxpool.Pool,
	cat *curriculum.Catalog,
	immediateEcho bool,
	log zerolog.Logger,
) *CheckinService {
	return &CheckinService{
		ledgerRepo:   ledgerRepo,
		studentRepo:  studentRepo,
		queueRepo:    queueRepo,
		unenrollRepo: unenrollRepo,
		groupView:    groupView,
		events:       events,
		pool:         pool,
		cat:          cat,
		echo:         immediateEcho,
		log:          log.With().Str("component", "checkin_service").Logger(),
	}
}

// Submit records one check-in: a lesson column for a group with statuses
// for any subset of its students. The ledger and the sync queue are the
// durable outcome; master records and the workbook only change here when
// the immediate echo is enabled.
func (s *CheckinService) Submit(ctx context.Context, req *model.SubmitCheckinRequest) (*model.SubmitCheckinResult, error) {
	if verr := s.validate(req); verr != nil {
		return nil, verr
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	// Split the marks: Y/N/A go to the queue, U diverts to unenrollment.
	recordable := make([]model.StudentStatusMark, 0, len(req.Statuses))
	unenrolled := append([]string(nil), req.Unenrolled...)
	for _, mark := range req.Statuses {
		if model.Status(mark.Status) == model.StatusUnenrolled {
			unenrolled = append(unenrolled, mark.StudentName)
			continue
		}
		recordable = append(recordable, mark)
	}

	// 1. Ledger first. Every mark becomes an event, U included; the
	//    ledger is what rebuilds replay.
	events := make([]model.CheckinEvent, 0, len(recordable)+len(unenrolled))
	for _, mark := range recordable {
		events = append(events, model.CheckinEvent{
			OccurredAt:  occurredAt,
			TeacherName: req.TeacherName,
			GroupName:   req.GroupName,
			StudentName: mark.StudentName,
			LessonLabel: req.LessonLabel,
			Status:      model.Status(mark.Status),
		})
	}
	for _, name := range unenrolled {
		events = append(events, model.CheckinEvent{
			OccurredAt:  occurredAt,
			TeacherName: req.TeacherName,
			GroupName:   req.GroupName,
			StudentName: name,
			LessonLabel: req.LessonLabel,
			Status:      model.StatusUnenrolled,
		})
	}
	if err := s.ledgerRepo.AppendBatch(ctx, s.pool, events); err != nil {
		return nil, fmt.Errorf("append ledger events: %w", err)
	}

	// 2. Divert unenrollments.
	for _, name := range unenrolled {
		if err := s.unenrollStudent(ctx, name, req, occurredAt); err != nil {
			s.log.Warn().Err(err).Str("student", name).Msg("Unenrollment diversion failed")
		}
	}

	result := &model.SubmitCheckinResult{
		EventsAppended: len(events),
		Unenrolled:     unenrolled,
	}

	// 3. One queue entry for the recordable statuses.
	if len(recordable) > 0 {
		entry := &model.SyncQueueEntry{
			EnqueuedAt:  occurredAt,
			GroupName:   req.GroupName,
			LessonLabel: req.LessonLabel,
			Statuses:    recordable,
		}
		if n, ok := s.cat.ExtractNumber(req.LessonLabel); ok {
			entry.LessonNumber = &n
		}
		if err := s.queueRepo.Enqueue(ctx, entry); err != nil {
			return nil, fmt.Errorf("enqueue sync entry: %w", err)
		}
		result.Enqueued = true
		result.QueueEntryID = entry.ID

		// 4. Optimistic echo. The queue fold re-applies the same values;
		//    the nightly rebuild reconciles any divergence.
		if s.echo {
			s.applyEcho(ctx, entry, occurredAt)
			result.EchoApplied = true
		}
	}

	s.events.Publish(ctx, EventCheckin, map[string]interface{}{
		"group_name":   req.GroupName,
		"lesson_label": req.LessonLabel,
		"events":       len(events),
	})

	return result, nil
}

// validate fails the whole submission closed before any write.
func (s *CheckinService) validate(req *model.SubmitCheckinRequest) *ValidationError {
	fields := make(map[string]string)

	if len(req.Statuses) == 0 && len(req.Unenrolled) == 0 {
		fields["statuses"] = "at least one status or unenrollment is required"
	}
	if n, bad := s.cat.OutOfRange(req.LessonLabel); bad {
		fields["lesson_label"] = "lesson " + strconv.Itoa(n) + " is outside the curriculum"
	}
	for i, mark := range req.Statuses {
		if curriculum.NormalizeName(mark.StudentName) == "" {
			fields["statuses["+strconv.Itoa(i)+"].student_name"] = "student name is blank"
		}
		if _, err := model.ParseStatus(mark.Status); err != nil {
			fields["statuses["+strconv.Itoa(i)+"].status"] = err.Error()
		}
	}
	for i, name := range req.Unenrolled {
		if curriculum.NormalizeName(name) == "" {
			fields["unenrolled["+strconv.Itoa(i)+"]"] = "student name is blank"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// unenrollStudent flips the master record and archives its vectors in one
// transaction. An unknown or already-unenrolled student is not an error;
// the ledger event stands either way.
func (s *CheckinService) unenrollStudent(ctx context.Context, name string, req *model.SubmitCheckinRequest, at time.Time) error {
	rec, err := s.studentRepo.GetByNameKey(ctx, curriculum.NormalizeName(name))
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			s.log.Warn().Str("student", name).Msg("U status for student with no master record")
			return nil
		}
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
		ReportedBy:       req.TeacherName,
		ReportedAt:       at,
		LessonAtExit:     rec.CurrentLessonLabel,
		ArchivedVector:   rec.StatusVector,
		ArchivedBaseline: rec.BaselineVector,
		Notes:            req.Notes,
	}
	if err := s.unenrollRepo.Insert(ctx, tx, entry); err != nil {
		return fmt.Errorf("archive unenrollment: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.log.Info().Str("student", rec.Name).Str("group", rec.GroupName).Msg("Student unenrolled")
	return nil
}

// applyEcho patches master records and the workbook with the submitted
// column. Best-effort: failures log and fall through to the queue fold.
func (s *CheckinService) applyEcho(ctx context.Context, entry *model.SyncQueueEntry, at time.Time) {
	key := s.cat.Key(entry.LessonLabel)
	byStudent := make(map[string]string, len(entry.Statuses))

	for _, mark := range entry.Statuses {
		byStudent[mark.StudentName] = mark.Status

		rec, err := s.studentRepo.GetByNameKey(ctx, curriculum.NormalizeName(mark.StudentName))
		if err != nil {
			s.log.Warn().Err(err).Str("student", mark.StudentName).Msg("Echo skipped a student")
			continue
		}
		if rec.Enrollment != model.EnrollmentActive {
			continue
		}
		if err := s.studentRepo.PatchLessonStatus(ctx, rec.ID, key, model.Status(mark.Status), at); err != nil {
			s.log.Warn().Err(err).Str("student", mark.StudentName).Msg("Echo lesson patch failed")
			continue
		}
		if entry.LessonNumber != nil {
			if err := s.studentRepo.PatchCurrentLesson(ctx, rec.ID, entry.LessonLabel, *entry.LessonNumber); err != nil {
				s.log.Warn().Err(err).Str("student", mark.StudentName).Msg("Echo pointer patch failed")
			}
		}
	}

	if err := s.groupView.PatchColumn(ctx, entry.GroupName, entry.LessonLabel, byStudent); err != nil {
		s.log.Warn().Err(err).Str("group", entry.GroupName).Msg("Echo workbook patch failed")
	}
}

// List returns paginated ledger events.
func (s *CheckinService) List(ctx context.Context, f model.CheckinFilter, page, perPage int) ([]model.CheckinEvent, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}
	if perPage > 200 {
		perPage = 200
	}
	events, total, err := s.ledgerRepo.ListPaginated(ctx, f, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if events == nil {
		events = []model.CheckinEvent{}
	}
	return events, paginationFor(page, perPage, total), nil
}

// Recent returns the latest aggregated (group, lesson) submissions.
func (s *CheckinService) Recent(ctx context.Context, limit int) ([]model.RecentEntry, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.ledgerRepo.Recent(ctx, limit)
}
