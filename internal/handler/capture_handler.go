// internal/handler/capture_handler.go
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"digitizer-service/internal/model"
	"digitizer-service/internal/repository"
	"digitizer-service/internal/service"
	"digitizer-service/internal/utils"
)

// CaptureHandler serves capture records and sample data
type CaptureHandler struct {
	service *service.AcquisitionService
	logger  *utils.ServiceLogger
}

// NewCaptureHandler creates a new capture handler
func NewCaptureHandler(acquisitionService *service.AcquisitionService, logger *zap.Logger) *CaptureHandler {
	return &CaptureHandler{
		service: acquisitionService,
		logger:  utils.NewServiceLogger(logger, "capture-handler"),
	}
}

// RegisterRoutes registers capture routes
func (h *CaptureHandler) RegisterRoutes(router *gin.RouterGroup) {
	captures := router.Group("/captures")
	{
		captures.GET("", h.ListCaptures)
		captures.POST("/purge", h.PurgeCaptures)
		captures.GET("/last", h.GetLastCapture)
		captures.GET("/last/data", h.GetLastCaptureData)
		captures.GET("/:id", h.GetCapture)
	}
}

// ListCaptures lists capture records
// @Summary List captures
// @Tags Captures
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status" Enums(RUNNING, COMPLETED, FAILED)
// @Param model query string false "Filter by model"
// @Param start_date query string false "Created at or after (RFC3339)"
// @Param end_date query string false "Created at or before (RFC3339)"
// @Success 200 {object} utils.APIResponse{data=object{captures=[]model.CaptureRecord,pagination=service.PaginationResult}} "Captures retrieved"
// @Router /captures [get]
func (h *CaptureHandler) ListCaptures(c *gin.Context) {
	filter := &repository.CaptureFilter{Page: 1, PerPage: 20}

	if page := c.Query("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			filter.Page = p
		}
	}
	if perPage := c.Query("per_page"); perPage != "" {
		if pp, err := strconv.Atoi(perPage); err == nil && pp > 0 && pp <= 100 {
			filter.PerPage = pp
		}
	}
	if status := c.Query("status"); status != "" {
		s := model.CaptureStatus(status)
		filter.Status = &s
	}
	if m := c.Query("model"); m != "" {
		filter.Model = &m
	}
	if startDate := c.Query("start_date"); startDate != "" {
		if t, err := time.Parse(time.RFC3339, startDate); err == nil {
			filter.StartDate = &t
		}
	}
	if endDate := c.Query("end_date"); endDate != "" {
		if t, err := time.Parse(time.RFC3339, endDate); err == nil {
			filter.EndDate = &t
		}
	}

	captures, pagination, err := h.service.ListCaptures(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list captures", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list captures", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Captures retrieved", gin.H{
		"captures":   captures,
		"pagination": pagination,
	})
}

// GetCapture retrieves one capture record
// @Summary Get capture
// @Tags Captures
// @Produce json
// @Param id path string true "Capture ID"
// @Success 200 {object} utils.APIResponse{data=model.CaptureRecord} "Capture retrieved"
// @Failure 404 {object} utils.APIResponse "Capture not found"
// @Router /captures/{id} [get]
func (h *CaptureHandler) GetCapture(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid capture ID", err)
		return
	}

	record, err := h.service.GetCapture(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Capture not found", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Capture retrieved", record)
}

// GetLastCapture returns the most recent harvest
// @Summary Last capture
// @Tags Captures
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.CaptureResult} "Capture retrieved"
// @Failure 404 {object} utils.APIResponse "No capture yet"
// @Router /captures/last [get]
func (h *CaptureHandler) GetLastCapture(c *gin.Context) {
	result, err := h.service.LastCapture()
	if err != nil {
		respondError(c, "No capture available", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Capture retrieved", result)
}

// GetLastCaptureData streams the downsampled bytes of the last harvest
// @Summary Last capture data
// @Description Raw signed 8-bit samples, segment-major; segment selects one segment
// @Tags Captures
// @Produce octet-stream
// @Param segment query int false "Segment index"
// @Success 200 {file} binary "Sample bytes"
// @Failure 404 {object} utils.APIResponse "No capture yet"
// @Router /captures/last/data [get]
func (h *CaptureHandler) GetLastCaptureData(c *gin.Context) {
	result, err := h.service.LastCapture()
	if err != nil {
		respondError(c, "No capture available", err)
		return
	}

	data := result.Capture.Data
	if seg := c.Query("segment"); seg != "" {
		i, err := strconv.Atoi(seg)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid segment index", err)
			return
		}
		data = result.Capture.Segment(i)
		if data == nil {
			utils.ErrorResponse(c, http.StatusNotFound, "Segment out of range", nil)
			return
		}
	}

	c.Header("X-Capture-ID", result.Record.ID.String())
	c.Header("X-Capture-Samples", strconv.FormatUint(uint64(result.Capture.Samples), 10))
	c.Header("X-Capture-Segments", strconv.FormatUint(uint64(result.Capture.Segments), 10))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// PurgeCaptures removes records older than the retention period
// @Summary Purge old captures
// @Tags Captures
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{deleted=int}} "Captures purged"
// @Router /captures/purge [post]
func (h *CaptureHandler) PurgeCaptures(c *gin.Context) {
	deleted, err := h.service.PurgeCaptures(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to purge captures", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to purge captures", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Captures purged", gin.H{"deleted": deleted})
}
