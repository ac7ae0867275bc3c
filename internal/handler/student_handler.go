package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/repository"
	"github.com/readtrack/readtrack-backend/internal/response"
	"github.com/readtrack/readtrack-backend/internal/service"
	"github.com/readtrack/readtrack-backend/internal/validator"
)

// StudentHandler handles roster management and per-student progress.
type StudentHandler struct {
	rosterService   *service.RosterService
	progressService *service.ProgressService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(
	rosterService *service.RosterService,
	progressService *service.ProgressService,
) *StudentHandler {
	return &StudentHandler{
		rosterService:   rosterService,
		progressService: progressService,
	}
}

// EnrollStudent godoc
// POST /api/v1/students
// Enrolls a student. A name whose record is unenrolled is reactivated
// in place; an active duplicate is a conflict.
func (h *StudentHandler) EnrollStudent(c *gin.Context) {
	var req model.EnrollStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, err := h.rosterService.Enroll(c.Request.Context(), &req)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, verr.Fields)
		case errors.Is(err, service.ErrStudentActive):
			response.Fail(c, http.StatusConflict, response.ErrDuplicateStudent)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": rec})
}

// ListStudents godoc
// GET /api/v1/students
// Master records with pagination, filterable by group, grade and
// enrollment state.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))

	filter := model.StudentFilter{
		GroupName:  c.Query("group"),
		Grade:      c.Query("grade"),
		Enrollment: model.EnrollmentStatus(c.Query("enrollment")),
	}

	recs, pagination, err := h.rosterService.List(c.Request.Context(), filter, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"students": recs}, pagination)
}

// GetStudent godoc
// GET /api/v1/students/:id
// One master record.
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	rec, err := h.rosterService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrStudentNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": rec})
}

// GetStudentProgress godoc
// GET /api/v1/students/:id/progress
// Section breakdown and benchmark metrics, growth suppression applied.
func (h *StudentHandler) GetStudentProgress(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	progress, err := h.progressService.StudentProgress(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrStudentNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"progress": progress})
}

// UpdateStudent godoc
// PUT /api/v1/students/:id
// Reassigns placement fields. Blank fields keep their current value.
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, err := h.rosterService.UpdatePlacement(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrStudentNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": rec})
}

// ReactivateStudent godoc
// POST /api/v1/students/:id/reactivate
// Flips an unenrolled record back to active.
func (h *StudentHandler) ReactivateStudent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	rec, err := h.rosterService.Reactivate(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrStudentNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": rec})
}

// ListUnenrollments godoc
// GET /api/v1/unenrollments
// Exit logs with archived vectors, filterable by review status.
func (h *StudentHandler) ListUnenrollments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))
	status := model.ExitStatus(c.Query("status"))

	logs, pagination, err := h.rosterService.Unenrollments(c.Request.Context(), status, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"unenrollments": logs}, pagination)
}

// ConfirmUnenrollment godoc
// POST /api/v1/unenrollments/:id/confirm
// Marks a pending exit as reviewed and final.
func (h *StudentHandler) ConfirmUnenrollment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	entry, err := h.rosterService.ConfirmUnenrollment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrExitLogNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unenrollment": entry})
}

// ResolveUnenrollmentRequest carries optional notes for a resolution.
type ResolveUnenrollmentRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=2000"`
}

// ResolveUnenrollment godoc
// POST /api/v1/unenrollments/:id/resolve
// Closes an exit log because the student returned; reactivates the record.
func (h *StudentHandler) ResolveUnenrollment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req ResolveUnenrollmentRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	entry, err := h.rosterService.ResolveUnenrollment(c.Request.Context(), id, req.Notes)
	if err != nil {
		if errors.Is(err, repository.ErrExitLogNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unenrollment": entry})
}
