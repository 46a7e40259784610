// internal/handler/errors.go
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"digitizer-service/internal/acquisition"
	"digitizer-service/internal/repository"
	"digitizer-service/internal/service"
	"digitizer-service/internal/utils"
	"digitizer-service/internal/worker"
)

// Error codes returned in APIError.Code
const (
	CodeInvalidParameter   = "INVALID_PARAMETER"
	CodeNotReady           = "NOT_READY"
	CodeNoCaptures         = "NO_CAPTURES"
	CodeDeviceUnavailable  = "DEVICE_UNAVAILABLE"
	CodeHardwareCallFailed = "HARDWARE_CALL_FAILED"
	CodeTimeout            = "TIMEOUT"
	CodeNotFound           = "NOT_FOUND"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// classify maps a service error to its HTTP status and code
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, acquisition.ErrInvalidParameter):
		return http.StatusBadRequest, CodeInvalidParameter
	case errors.Is(err, acquisition.ErrNotReady):
		return http.StatusConflict, CodeNotReady
	case errors.Is(err, acquisition.ErrNoCaptures):
		return http.StatusConflict, CodeNoCaptures
	case errors.Is(err, acquisition.ErrDeviceUnavailable):
		return http.StatusServiceUnavailable, CodeDeviceUnavailable
	case errors.Is(err, acquisition.ErrHardwareCallFailed):
		return http.StatusBadGateway, CodeHardwareCallFailed
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrNoCapture):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, worker.ErrStopped), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, CodeUnavailable
	}
	return http.StatusInternalServerError, CodeInternal
}

// respondError writes err with the driver status when it carries one
func respondError(c *gin.Context, message string, err error) {
	statusCode, code := classify(err)

	driverStatus := ""
	var aerr *acquisition.Error
	if errors.As(err, &aerr) && !aerr.Status.OK() {
		driverStatus = aerr.Status.String()
	}

	utils.DetailedErrorResponse(c, statusCode, code, message, err, driverStatus)
}
