// internal/acquisition/errors.go
package acquisition

import (
	"errors"
	"fmt"

	"digitizer-service/pkg/driver"
)

// Error kinds returned by session operations. Match with errors.Is.
var (
	ErrDeviceUnavailable  = errors.New("device unavailable")
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrHardwareCallFailed = errors.New("hardware call failed")
	ErrNotReady           = errors.New("acquisition not ready")
	ErrNoCaptures         = errors.New("no captures completed")
)

// Error describes a failed session operation. Status carries the driver's
// code verbatim; for failures detected before reaching the driver it holds
// the closest driver code.
type Error struct {
	Op     string
	Call   string
	Kind   error
	Status driver.Status
	Detail string
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.Call != "" {
		msg += " (" + e.Call + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Status != driver.StatusOK {
		msg += fmt.Sprintf(" [%s]", e.Status)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// StatusOf returns the driver status carried by err, StatusOK for nil and
// StatusUnknownError for errors that did not originate in a session.
func StatusOf(err error) driver.Status {
	if err == nil {
		return driver.StatusOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return driver.StatusUnknownError
}

func callFailed(op, call string, status driver.Status) *Error {
	return &Error{Op: op, Call: call, Kind: ErrHardwareCallFailed, Status: status}
}

func invalidParameter(op, format string, args ...interface{}) *Error {
	return &Error{
		Op:     op,
		Kind:   ErrInvalidParameter,
		Status: driver.StatusInvalidParameter,
		Detail: fmt.Sprintf(format, args...),
	}
}
