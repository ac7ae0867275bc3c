package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/readtrack/readtrack-backend/internal/curriculum"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/repository"
	"github.com/readtrack/readtrack-backend/internal/response"
)

// ErrStudentActive is returned when enrolling a name that already has an
// active master record.
var ErrStudentActive = errors.New("student is already enrolled")

// RosterService manages master records as a roster: enrollment,
// placement changes, listings and the unenrollment review queue. The
// setup tooling that edits groups lives outside the core and calls this
// surface.
type RosterService struct {
	studentRepo  *repository.StudentRepository
	unenrollRepo *repository.UnenrollmentRepository
	log          zerolog.Logger
}

// NewRosterService creates a new RosterService.
func NewRosterService(
	studentRepo *repository.StudentRepository,
	unenrollRepo *repository.UnenrollmentRepository,
	log zerolog.Logger,
) *RosterService {
	return &RosterService{
		studentRepo:  studentRepo,
		unenrollRepo: unenrollRepo,
		log:          log.With().Str("component", "roster_service").Logger(),
	}
}

// Enroll creates a master record with empty vectors. Enrolling a name
// whose record is unenrolled reactivates it in place, keeping its frozen
// vectors; an active duplicate is a conflict.
func (s *RosterService) Enroll(ctx context.Context, req *model.EnrollStudentRequest) (*model.StudentRecord, error) {
	name := strings.TrimSpace(req.Name)
	nameKey := curriculum.NormalizeName(name)
	if nameKey == "" {
		return nil, &ValidationError{Fields: map[string]string{"name": "student name is blank"}}
	}

	rec := &model.StudentRecord{
		Name:           name,
		NameKey:        nameKey,
		Grade:          req.Grade,
		TeacherName:    req.TeacherName,
		GroupName:      req.GroupName,
		Enrollment:     model.EnrollmentActive,
		StatusVector:   model.StatusVector{},
		BaselineVector: model.StatusVector{},
		EnrolledAt:     time.Now().UTC(),
	}

	err := s.studentRepo.Create(ctx, rec)
	if err == nil {
		s.log.Info().Str("student", rec.Name).Str("group", rec.GroupName).Msg("Student enrolled")
		return rec, nil
	}
	if !errors.Is(err, repository.ErrDuplicateStudent) {
		return nil, fmt.Errorf("create master record: %w", err)
	}

	existing, err := s.studentRepo.GetByNameKey(ctx, nameKey)
	if err != nil {
		return nil, fmt.Errorf("load duplicate record: %w", err)
	}
	if existing.Enrollment == model.EnrollmentActive {
		return nil, ErrStudentActive
	}
	return s.reactivate(ctx, existing, req.Grade, req.TeacherName, req.GroupName)
}

// Reactivate flips an unenrolled record back to active without changing
// its placement.
func (s *RosterService) Reactivate(ctx context.Context, id uuid.UUID) (*model.StudentRecord, error) {
	rec, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Enrollment == model.EnrollmentActive {
		return rec, nil
	}
	return s.reactivate(ctx, rec, "", "", "")
}

func (s *RosterService) reactivate(ctx context.Context, rec *model.StudentRecord, grade, teacherName, groupName string) (*model.StudentRecord, error) {
	if err := s.studentRepo.Reactivate(ctx, rec.ID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("reactivate: %w", err)
	}
	if grade != "" || teacherName != "" || groupName != "" {
		if err := s.studentRepo.UpdatePlacement(ctx, rec.ID, grade, teacherName, groupName); err != nil {
			return nil, fmt.Errorf("update placement: %w", err)
		}
	}
	s.log.Info().Str("student", rec.Name).Msg("Student re-enrolled")
	return s.studentRepo.GetByID(ctx, rec.ID)
}

// UpdatePlacement reassigns grade, teacher or group. Blank fields keep
// their current value.
func (s *RosterService) UpdatePlacement(ctx context.Context, id uuid.UUID, req *model.UpdateStudentRequest) (*model.StudentRecord, error) {
	if err := s.studentRepo.UpdatePlacement(ctx, id, req.Grade, req.TeacherName, req.GroupName); err != nil {
		return nil, err
	}
	return s.studentRepo.GetByID(ctx, id)
}

// Get retrieves one master record.
func (s *RosterService) Get(ctx context.Context, id uuid.UUID) (*model.StudentRecord, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// List returns paginated master records.
func (s *RosterService) List(ctx context.Context, f model.StudentFilter, page, perPage int) ([]model.StudentRecord, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}
	if perPage > 200 {
		perPage = 200
	}
	recs, total, err := s.studentRepo.ListPaginated(ctx, f, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if recs == nil {
		recs = []model.StudentRecord{}
	}
	return recs, paginationFor(page, perPage, total), nil
}

// Groups returns the per-group roster summaries.
func (s *RosterService) Groups(ctx context.Context) ([]model.GroupSummary, error) {
	groups, err := s.studentRepo.GroupSummaries(ctx)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []model.GroupSummary{}
	}
	return groups, nil
}

// Unenrollments returns paginated exit logs, optionally by review status.
func (s *RosterService) Unenrollments(ctx context.Context, status model.ExitStatus, page, perPage int) ([]model.UnenrollmentLog, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}
	if perPage > 200 {
		perPage = 200
	}
	logs, total, err := s.unenrollRepo.ListPaginated(ctx, status, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if logs == nil {
		logs = []model.UnenrollmentLog{}
	}
	return logs, paginationFor(page, perPage, total), nil
}

func paginationFor(page, perPage, total int) *response.Pagination {
	return &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
}

// ConfirmUnenrollment marks a pending exit as reviewed and final.
func (s *RosterService) ConfirmUnenrollment(ctx context.Context, logID uuid.UUID) (*model.UnenrollmentLog, error) {
	if err := s.unenrollRepo.SetStatus(ctx, logID, model.ExitConfirmed, ""); err != nil {
		return nil, err
	}
	return s.unenrollRepo.GetByID(ctx, logID)
}

// ResolveUnenrollment closes an exit log because the student returned,
// reactivating the master record.
func (s *RosterService) ResolveUnenrollment(ctx context.Context, logID uuid.UUID, notes string) (*model.UnenrollmentLog, error) {
	entry, err := s.unenrollRepo.GetByID(ctx, logID)
	if err != nil {
		return nil, err
	}

	resolution := ""
	if notes != "" {
		resolution = "Resolution: " + notes
	}
	if err := s.unenrollRepo.SetStatus(ctx, logID, model.ExitResolved, resolution); err != nil {
		return nil, err
	}
	if err := s.studentRepo.Reactivate(ctx, entry.StudentID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("reactivate student: %w", err)
	}

	s.log.Info().Str("student", entry.StudentName).Msg("Unenrollment resolved, student reactivated")
	return s.unenrollRepo.GetByID(ctx, logID)
}
