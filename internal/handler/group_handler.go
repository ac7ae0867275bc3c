package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/response"
	"github.com/readtrack/readtrack-backend/internal/service"
)

// GroupHandler serves group rosters, grid views and pacing rollups.
type GroupHandler struct {
	rosterService    *service.RosterService
	groupViewService *service.GroupViewService
	pacingService    *service.PacingService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(
	rosterService *service.RosterService,
	groupViewService *service.GroupViewService,
	pacingService *service.PacingService,
) *GroupHandler {
	return &GroupHandler{
		rosterService:    rosterService,
		groupViewService: groupViewService,
		pacingService:    pacingService,
	}
}

// ListGroups godoc
// GET /api/v1/groups
// All groups with student counts and last-entry times.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.rosterService.Groups(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"groups": groups})
}

// GetGroupView godoc
// GET /api/v1/groups/:name/view
// The rendered grid block for one group: lesson columns, student rows,
// status cells.
func (h *GroupHandler) GetGroupView(c *gin.Context) {
	blocks, err := h.groupViewService.Blocks(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrGroupNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"blocks": blocks})
}

// GetGroupPacing godoc
// GET /api/v1/groups/:name/pacing
// Median lesson, spread and stall count for one group.
func (h *GroupHandler) GetGroupPacing(c *gin.Context) {
	rollup, err := h.pacingService.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrGroupNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"pacing": rollup})
}

// ListPacing godoc
// GET /api/v1/pacing
// Pacing rollups for every group, slowest first.
func (h *GroupHandler) ListPacing(c *gin.Context) {
	rollups, err := h.pacingService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if rollups == nil {
		rollups = []model.PacingRollup{}
	}

	response.Success(c, http.StatusOK, gin.H{"pacing": rollups})
}

// DownloadWorkbook godoc
// GET /api/v1/groupview/workbook
// The rendered spreadsheet as a file download.
func (h *GroupHandler) DownloadWorkbook(c *gin.Context) {
	path := h.groupViewService.WorkbookPath()
	if _, err := os.Stat(path); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrWorkbookMissing)
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}
