// internal/handler/discovery_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"digitizer-service/internal/service"
	"digitizer-service/internal/utils"
)

// DiscoveryHandler handles digitizer discovery requests
type DiscoveryHandler struct {
	discoveryService *service.DiscoveryService
	logger           *utils.ServiceLogger
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(discoveryService *service.DiscoveryService, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryService: discoveryService,
		logger:           utils.NewServiceLogger(logger, "discovery-handler"),
	}
}

// RegisterRoutes registers discovery routes
func (h *DiscoveryHandler) RegisterRoutes(router *gin.RouterGroup) {
	discovery := router.Group("/discovery")
	{
		discovery.GET("/scan", h.ScanDevices)
		discovery.GET("/drivers", h.GetDrivers)
	}
}

// ScanDevices scans for attached digitizers
// @Summary Scan for digitizers
// @Description Enumerate Pico Technology units on USB and the in-process simulator
// @Tags Discovery
// @Produce json
// @Param type query string false "Scan type" Enums(all, usb, simulator) default(all)
// @Param timeout query string false "Scan timeout" default(30s)
// @Success 200 {object} utils.APIResponse{data=object{devices_found=int,devices=[]discovery.DiscoveredDevice}} "Device scan completed"
// @Failure 400 {object} utils.APIResponse "Invalid scan parameters"
// @Router /discovery/scan [get]
func (h *DiscoveryHandler) ScanDevices(c *gin.Context) {
	req := &service.ScanRequest{
		ScanType: c.DefaultQuery("type", "all"),
		Timeout:  c.DefaultQuery("timeout", "30s"),
	}

	devices, err := h.discoveryService.ScanDevices(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("Device scan failed", zap.Error(err))
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to scan devices", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device scan completed", gin.H{
		"devices_found": len(devices),
		"devices":       devices,
	})
}

// GetDrivers lists driver backends and scanners
// @Summary List drivers
// @Tags Discovery
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{drivers=[]service.DriverInfo,scanners=[]string}} "Drivers retrieved"
// @Router /discovery/drivers [get]
func (h *DiscoveryHandler) GetDrivers(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Drivers retrieved", gin.H{
		"drivers":  h.discoveryService.Drivers(),
		"scanners": h.discoveryService.Scanners(),
	})
}
