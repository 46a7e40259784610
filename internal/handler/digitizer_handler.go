// internal/handler/digitizer_handler.go
package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"digitizer-service/internal/service"
	"digitizer-service/internal/utils"
)

// DigitizerHandler exposes the session operations over HTTP
type DigitizerHandler struct {
	service *service.AcquisitionService
	logger  *utils.ServiceLogger
}

// NewDigitizerHandler creates a new digitizer handler
func NewDigitizerHandler(acquisitionService *service.AcquisitionService, logger *zap.Logger) *DigitizerHandler {
	return &DigitizerHandler{
		service: acquisitionService,
		logger:  utils.NewServiceLogger(logger, "digitizer-handler"),
	}
}

// RegisterRoutes registers digitizer routes
func (h *DigitizerHandler) RegisterRoutes(router *gin.RouterGroup) {
	digitizer := router.Group("/digitizer")
	{
		digitizer.POST("/open", h.Open)
		digitizer.POST("/close", h.Close)
		digitizer.GET("/status", h.Status)

		// Configuration
		digitizer.PUT("/vertical", h.SetVertical)
		digitizer.PUT("/horizontal", h.SetHorizontal)
		digitizer.PUT("/trigger", h.SetTrigger)
		digitizer.PUT("/options", h.ApplyOptions)

		// Capture sequence
		digitizer.POST("/setup", h.SetDigitizer)
		digitizer.POST("/run", h.RunAcquisition)
		digitizer.POST("/wait", h.WaitForAcquisition)
		digitizer.POST("/fetch", h.FetchData)
		digitizer.POST("/capture", h.Capture)

		digitizer.GET("/buffer", h.Buffer)
	}
}

// bindOptional binds a JSON body when one was sent
func bindOptional(c *gin.Context, dst interface{}) (bool, error) {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Open opens the digitizer
// @Summary Open the digitizer
// @Description Acquire the unit and optionally apply an option object
// @Tags Digitizer
// @Accept json
// @Produce json
// @Param request body service.Options false "Options applied after open"
// @Success 200 {object} utils.APIResponse{data=service.StatusInfo} "Digitizer opened"
// @Failure 400 {object} utils.APIResponse "Invalid options"
// @Failure 503 {object} utils.APIResponse "Device unavailable"
// @Router /digitizer/open [post]
func (h *DigitizerHandler) Open(c *gin.Context) {
	var opts service.Options
	present, err := bindOptional(c, &opts)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var optsPtr *service.Options
	if present {
		optsPtr = &opts
	}

	status, err := h.service.Open(c.Request.Context(), optsPtr)
	if err != nil {
		respondError(c, "Failed to open digitizer", err)
		return
	}

	h.logger.Info("Digitizer opened", zap.String("model", status.Model), zap.String("serial", status.Serial))
	utils.SuccessResponse(c, http.StatusOK, "Digitizer opened", status)
}

// Close closes the digitizer
// @Summary Close the digitizer
// @Tags Digitizer
// @Produce json
// @Success 200 {object} utils.APIResponse "Digitizer closed"
// @Router /digitizer/close [post]
func (h *DigitizerHandler) Close(c *gin.Context) {
	if err := h.service.Close(c.Request.Context()); err != nil {
		respondError(c, "Failed to close digitizer", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Digitizer closed", nil)
}

// Status returns the session state
// @Summary Digitizer status
// @Tags Digitizer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.StatusInfo} "Status retrieved"
// @Router /digitizer/status [get]
func (h *DigitizerHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to get status", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Status retrieved", status)
}

// SetVertical sets the front-end range, offset and bandwidth
// @Summary Set vertical configuration
// @Description Coupling is always DC 50R; a limited bandwidth becomes the model's limiter
// @Tags Configuration
// @Accept json
// @Produce json
// @Param request body service.VerticalRequest true "Vertical setting"
// @Success 200 {object} utils.APIResponse{data=acquisition.VerticalConfig} "Vertical configured"
// @Failure 400 {object} utils.APIResponse "Invalid parameter"
// @Router /digitizer/vertical [put]
func (h *DigitizerHandler) SetVertical(c *gin.Context) {
	var req service.VerticalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	v, err := req.Config()
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"vertical": err.Error()})
		return
	}

	applied, err := h.service.SetVertical(c.Request.Context(), v)
	if err != nil {
		respondError(c, "Failed to set vertical configuration", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Vertical configured", applied)
}

// SetHorizontal sets rate, samples and segments
// @Summary Set horizontal configuration
// @Tags Configuration
// @Accept json
// @Produce json
// @Param request body service.HorizontalRequest true "Horizontal setting"
// @Success 200 {object} utils.APIResponse{data=acquisition.HorizontalConfig} "Horizontal configured"
// @Failure 400 {object} utils.APIResponse "Invalid parameter"
// @Router /digitizer/horizontal [put]
func (h *DigitizerHandler) SetHorizontal(c *gin.Context) {
	var req service.HorizontalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	applied, err := h.service.SetHorizontal(c.Request.Context(), req.SampleRateGHz, req.Samples, req.Segments)
	if err != nil {
		respondError(c, "Failed to set horizontal configuration", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Horizontal configured", applied)
}

// SetTrigger sets the trigger delay
// @Summary Set trigger delay
// @Tags Configuration
// @Accept json
// @Produce json
// @Param request body service.TriggerRequest true "Trigger setting"
// @Success 200 {object} utils.APIResponse{data=acquisition.TriggerConfig} "Trigger configured"
// @Failure 400 {object} utils.APIResponse "Invalid parameter"
// @Router /digitizer/trigger [put]
func (h *DigitizerHandler) SetTrigger(c *gin.Context) {
	var req service.TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	applied, err := h.service.SetTrigger(c.Request.Context(), req.Delay)
	if err != nil {
		respondError(c, "Failed to set trigger", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Trigger configured", applied)
}

// ApplyOptions applies an option object
// @Summary Apply option object
// @Description Numeric option object; absent fields keep their value
// @Tags Configuration
// @Accept json
// @Produce json
// @Param request body service.Options true "Option object"
// @Success 200 {object} utils.APIResponse{data=service.StatusInfo} "Options applied"
// @Failure 400 {object} utils.APIResponse "Invalid parameter"
// @Router /digitizer/options [put]
func (h *DigitizerHandler) ApplyOptions(c *gin.Context) {
	var opts service.Options
	if err := c.ShouldBindJSON(&opts); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status, err := h.service.ApplyOptions(c.Request.Context(), &opts)
	if err != nil {
		respondError(c, "Failed to apply options", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Options applied", status)
}

// SetDigitizer programs the instrument
// @Summary Program the digitizer
// @Description Full programming, or with repeat only re-arm the existing program
// @Tags Acquisition
// @Accept json
// @Produce json
// @Param request body service.SetupRequest false "Setup mode"
// @Success 200 {object} utils.APIResponse{data=service.BufferInfo} "Digitizer armed"
// @Failure 502 {object} utils.APIResponse "Hardware call failed"
// @Failure 503 {object} utils.APIResponse "Device unavailable"
// @Router /digitizer/setup [post]
func (h *DigitizerHandler) SetDigitizer(c *gin.Context) {
	var req service.SetupRequest
	if _, err := bindOptional(c, &req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	info, err := h.service.SetDigitizer(c.Request.Context(), req.Repeat)
	if err != nil {
		respondError(c, "Failed to set digitizer", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Digitizer armed", info)
}

// RunAcquisition starts a block run
// @Summary Start acquisition
// @Tags Acquisition
// @Produce json
// @Success 202 {object} utils.APIResponse "Acquisition started"
// @Failure 502 {object} utils.APIResponse "Hardware call failed"
// @Router /digitizer/run [post]
func (h *DigitizerHandler) RunAcquisition(c *gin.Context) {
	if err := h.service.RunAcquisition(c.Request.Context()); err != nil {
		respondError(c, "Failed to start acquisition", err)
		return
	}
	utils.SuccessResponse(c, http.StatusAccepted, "Acquisition started", nil)
}

// WaitForAcquisition blocks until the run completes
// @Summary Wait for acquisition
// @Tags Acquisition
// @Produce json
// @Success 200 {object} utils.APIResponse "Acquisition ready"
// @Failure 504 {object} utils.APIResponse "Wait timed out"
// @Router /digitizer/wait [post]
func (h *DigitizerHandler) WaitForAcquisition(c *gin.Context) {
	if err := h.service.WaitForAcquisition(c.Request.Context()); err != nil {
		respondError(c, "Acquisition not completed", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Acquisition ready", nil)
}

// FetchData harvests the completed run
// @Summary Fetch data
// @Description Harvest the completed run; sample bytes are served by /captures/last/data
// @Tags Acquisition
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.CaptureResult} "Data fetched"
// @Failure 409 {object} utils.APIResponse "Acquisition not ready"
// @Router /digitizer/fetch [post]
func (h *DigitizerHandler) FetchData(c *gin.Context) {
	result, err := h.service.FetchData(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to fetch data", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Data fetched", result)
}

// Capture runs setup, run, wait and fetch
// @Summary Capture
// @Description Run the whole capture sequence and record it
// @Tags Acquisition
// @Accept json
// @Produce json
// @Param request body service.SetupRequest false "Setup mode"
// @Success 200 {object} utils.APIResponse{data=service.CaptureResult} "Capture completed"
// @Failure 504 {object} utils.APIResponse "Wait timed out"
// @Router /digitizer/capture [post]
func (h *DigitizerHandler) Capture(c *gin.Context) {
	var req service.SetupRequest
	if _, err := bindOptional(c, &req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.service.Capture(c.Request.Context(), req.Repeat)
	if err != nil {
		respondError(c, "Capture failed", err)
		return
	}

	h.logger.Info("Capture completed",
		zap.String("capture_id", result.Record.ID.String()),
		zap.Int("bytes", len(result.Capture.Data)),
	)
	utils.SuccessResponse(c, http.StatusOK, "Capture completed", result)
}

// Buffer returns the buffer geometry
// @Summary Buffer geometry
// @Tags Acquisition
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.BufferInfo} "Buffer info retrieved"
// @Router /digitizer/buffer [get]
func (h *DigitizerHandler) Buffer(c *gin.Context) {
	info, err := h.service.Buffer(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to get buffer info", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Buffer info retrieved", info)
}
