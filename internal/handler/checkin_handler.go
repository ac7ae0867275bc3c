package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/response"
	"github.com/readtrack/readtrack-backend/internal/service"
	"github.com/readtrack/readtrack-backend/internal/validator"
)

// CheckinHandler handles check-in submission and ledger queries.
type CheckinHandler struct {
	checkinService *service.CheckinService
}

// NewCheckinHandler creates a new CheckinHandler.
func NewCheckinHandler(checkinService *service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinService: checkinService}
}

// SubmitCheckin godoc
// POST /api/v1/checkins
// Records one lesson column for a group. Appends to the ledger and
// enqueues the deferred sync entry.
func (h *CheckinHandler) SubmitCheckin(c *gin.Context) {
	var req model.SubmitCheckinRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.checkinService.Submit(c.Request.Context(), &req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, verr.Fields)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"result": result})
}

// ListCheckins godoc
// GET /api/v1/checkins
// Paginated ledger events, filterable by group, student and time range.
func (h *CheckinHandler) ListCheckins(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))

	filter := model.CheckinFilter{
		GroupName:   c.Query("group"),
		StudentName: c.Query("student"),
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		filter.To = &t
	}

	events, pagination, err := h.checkinService.List(c.Request.Context(), filter, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"checkins": events}, pagination)
}

// RecentCheckins godoc
// GET /api/v1/checkins/recent
// Latest aggregated (group, lesson) submissions for the dashboard.
func (h *CheckinHandler) RecentCheckins(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := h.checkinService.Recent(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if entries == nil {
		entries = []model.RecentEntry{}
	}

	response.Success(c, http.StatusOK, gin.H{"entries": entries})
}
