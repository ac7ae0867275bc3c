package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/readtrack/readtrack-backend/internal/config"
	"github.com/readtrack/readtrack-backend/internal/gridview"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/response"
	"github.com/readtrack/readtrack-backend/internal/service"
	"github.com/readtrack/readtrack-backend/internal/validator"
	"github.com/rs/zerolog"
)

// AdminHandler exposes operator endpoints: queue control, rebuilds
// and bulk imports.
type AdminHandler struct {
	syncQueueService *service.SyncQueueService
	rebuildService   *service.RebuildService
	importService    *service.ImportService
	log              zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	syncQueueService *service.SyncQueueService,
	rebuildService *service.RebuildService,
	importService *service.ImportService,
	log zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		syncQueueService: syncQueueService,
		rebuildService:   rebuildService,
		importService:    importService,
		log:              log.With().Str("component", "admin_handler").Logger(),
	}
}

// ProcessQueue godoc
// POST /api/v1/admin/queue/process
// Folds the pending sync queue immediately instead of waiting for the
// worker interval.
func (h *AdminHandler) ProcessQueue(c *gin.Context) {
	report, err := h.syncQueueService.ProcessQueue(c.Request.Context(), config.WorkerKey.ManualRun)
	if err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			response.Fail(c, http.StatusConflict, response.ErrSyncInProgress)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"run": report})
}

// QueueStats godoc
// GET /api/v1/admin/queue
// Pending depth, processed totals and the last run's report.
func (h *AdminHandler) QueueStats(c *gin.Context) {
	stats, lastRun, err := h.syncQueueService.Stats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats, "last_run": lastRun})
}

// Rebuild godoc
// POST /api/v1/admin/rebuild
// Replays the full ledger into fresh master records.
func (h *AdminHandler) Rebuild(c *gin.Context) {
	report, err := h.rebuildService.RebuildAll(c.Request.Context(), config.WorkerKey.ManualRun)
	if err != nil {
		if errors.Is(err, service.ErrRebuildInProgress) {
			response.Fail(c, http.StatusConflict, response.ErrRebuildInProgress)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rebuild": report})
}

// Recompute godoc
// POST /api/v1/admin/recompute
// Re-derives benchmarks, pacing rollups and group views from the
// current master records without touching the ledger.
func (h *AdminHandler) Recompute(c *gin.Context) {
	h.syncQueueService.Recompute(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{"recomputed": true})
}

// Import godoc
// POST /api/v1/admin/import
// Applies a batch of progress rows. One bad row rejects the whole
// batch; the response then carries the per-row issues.
func (h *AdminHandler) Import(c *gin.Context) {
	var req model.ImportRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	report, err := h.importService.Import(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrImportRejected) {
			response.FailWithData(c, http.StatusUnprocessableEntity, response.ErrImportRejected, gin.H{"report": report})
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}

// ValidateImport godoc
// POST /api/v1/admin/import/validate
// Dry-runs a batch: reports the issues a real import would reject on,
// writes nothing.
func (h *AdminHandler) ValidateImport(c *gin.Context) {
	var req model.ImportRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	issues, err := h.importService.Validate(c.Request.Context(), req.Rows)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if issues == nil {
		issues = []model.RowIssue{}
	}

	response.Success(c, http.StatusOK, gin.H{"valid": len(issues) == 0, "issues": issues})
}

// ImportWorkbook godoc
// POST /api/v1/admin/import/workbook
// Accepts an uploaded spreadsheet, scans it with the requested layout
// and imports its cells. ?initial=true loads baseline vectors.
func (h *AdminHandler) ImportWorkbook(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	defer file.Close()

	layout, err := gridview.ParseLayout(c.DefaultQuery("layout", string(gridview.LayoutHeaderFirst)))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	isInitial, _ := strconv.ParseBool(c.DefaultQuery("initial", "false"))

	tmp, err := os.CreateTemp("", "import-*.xlsx")
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if err := tmp.Close(); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	report, err := h.importService.ImportWorkbook(c.Request.Context(), tmp.Name(), layout, isInitial)
	if err != nil {
		if errors.Is(err, service.ErrImportRejected) {
			response.FailWithData(c, http.StatusUnprocessableEntity, response.ErrImportRejected, gin.H{"report": report})
			return
		}
		h.log.Error().Err(err).Msg("Workbook import failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}
