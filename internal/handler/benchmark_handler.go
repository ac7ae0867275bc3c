package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/response"
	"github.com/readtrack/readtrack-backend/internal/service"
)

// BenchmarkHandler serves scored benchmark summaries and rollups.
type BenchmarkHandler struct {
	progressService *service.ProgressService
}

// NewBenchmarkHandler creates a new BenchmarkHandler.
func NewBenchmarkHandler(progressService *service.ProgressService) *BenchmarkHandler {
	return &BenchmarkHandler{progressService: progressService}
}

// ListBenchmarks godoc
// GET /api/v1/benchmarks
// Per-student benchmark summaries, filterable by group and grade.
func (h *BenchmarkHandler) ListBenchmarks(c *gin.Context) {
	summaries, err := h.progressService.ListBenchmarks(c.Request.Context(), c.Query("group"), c.Query("grade"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if summaries == nil {
		summaries = []model.BenchmarkSummary{}
	}

	response.Success(c, http.StatusOK, gin.H{"benchmarks": summaries})
}

// GroupBenchmarks godoc
// GET /api/v1/benchmarks/groups
// Benchmark averages aggregated per group.
func (h *BenchmarkHandler) GroupBenchmarks(c *gin.Context) {
	rollups, err := h.progressService.GroupRollups(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if rollups == nil {
		rollups = []service.GroupProgress{}
	}

	response.Success(c, http.StatusOK, gin.H{"groups": rollups})
}

// GradeBenchmarks godoc
// GET /api/v1/benchmarks/grades
// Benchmark averages aggregated per grade level.
func (h *BenchmarkHandler) GradeBenchmarks(c *gin.Context) {
	rollups, err := h.progressService.GradeRollups(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if rollups == nil {
		rollups = []service.GradeProgress{}
	}

	response.Success(c, http.StatusOK, gin.H{"grades": rollups})
}
