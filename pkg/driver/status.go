// pkg/driver/status.go
package driver

import "fmt"

// Status is the result code returned by every driver call
type Status uint32

const (
	StatusOK                       Status = 0x00
	StatusMaxUnitsOpened           Status = 0x01
	StatusMemoryFail               Status = 0x02
	StatusNotFound                 Status = 0x03
	StatusFirmwareFail             Status = 0x04
	StatusOpenOperationInProgress  Status = 0x05
	StatusOperationFailed          Status = 0x06
	StatusNotResponding            Status = 0x07
	StatusConfigFail               Status = 0x08
	StatusKernelDriverTooOld       Status = 0x09
	StatusEEPROMCorrupt            Status = 0x0A
	StatusOSNotSupported           Status = 0x0B
	StatusInvalidHandle            Status = 0x0C
	StatusInvalidParameter         Status = 0x0D
	StatusInvalidTimebase          Status = 0x0E
	StatusInvalidVoltageRange      Status = 0x0F
	StatusInvalidChannel           Status = 0x10
	StatusInvalidTriggerChannel    Status = 0x11
	StatusInvalidConditionChannel  Status = 0x12
	StatusNoSignalGenerator        Status = 0x13
	StatusStreamingFailed          Status = 0x14
	StatusBlockModeFailed          Status = 0x15
	StatusNullParameter            Status = 0x16
	StatusEtsModeSet               Status = 0x17
	StatusDataNotAvailable         Status = 0x18
	StatusStringBufferTooSmall     Status = 0x19
	StatusEtsNotSupported          Status = 0x1A
	StatusAutoTriggerTimeTooShort  Status = 0x1B
	StatusBufferStall              Status = 0x1C
	StatusTooManySamples           Status = 0x1D
	StatusTooManySegments          Status = 0x1E
	StatusPulseWidthQualifier      Status = 0x1F
	StatusDelay                    Status = 0x20
	StatusSourceDetails            Status = 0x21
	StatusConditions               Status = 0x22
	StatusUserCallback             Status = 0x23
	StatusDeviceSampling           Status = 0x24
	StatusNoSamplesAvailable       Status = 0x25
	StatusSegmentOutOfRange        Status = 0x26
	StatusBusy                     Status = 0x27
	StatusStartIndexInvalid        Status = 0x28
	StatusInvalidInfo              Status = 0x29
	StatusInfoUnavailable          Status = 0x2A
	StatusInvalidSampleInterval    Status = 0x2B
	StatusUnknownError             Status = 0xFFFFFFFF
)

var statusNames = map[Status]string{
	StatusOK:                      "PICO_OK",
	StatusMaxUnitsOpened:          "PICO_MAX_UNITS_OPENED",
	StatusMemoryFail:              "PICO_MEMORY_FAIL",
	StatusNotFound:                "PICO_NOT_FOUND",
	StatusFirmwareFail:            "PICO_FW_FAIL",
	StatusOpenOperationInProgress: "PICO_OPEN_OPERATION_IN_PROGRESS",
	StatusOperationFailed:         "PICO_OPERATION_FAILED",
	StatusNotResponding:           "PICO_NOT_RESPONDING",
	StatusConfigFail:              "PICO_CONFIG_FAIL",
	StatusKernelDriverTooOld:      "PICO_KERNEL_DRIVER_TOO_OLD",
	StatusEEPROMCorrupt:           "PICO_EEPROM_CORRUPT",
	StatusOSNotSupported:          "PICO_OS_NOT_SUPPORTED",
	StatusInvalidHandle:           "PICO_INVALID_HANDLE",
	StatusInvalidParameter:        "PICO_INVALID_PARAMETER",
	StatusInvalidTimebase:         "PICO_INVALID_TIMEBASE",
	StatusInvalidVoltageRange:     "PICO_INVALID_VOLTAGE_RANGE",
	StatusInvalidChannel:          "PICO_INVALID_CHANNEL",
	StatusInvalidTriggerChannel:   "PICO_INVALID_TRIGGER_CHANNEL",
	StatusInvalidConditionChannel: "PICO_INVALID_CONDITION_CHANNEL",
	StatusNoSignalGenerator:       "PICO_NO_SIGNAL_GENERATOR",
	StatusStreamingFailed:         "PICO_STREAMING_FAILED",
	StatusBlockModeFailed:         "PICO_BLOCK_MODE_FAILED",
	StatusNullParameter:           "PICO_NULL_PARAMETER",
	StatusEtsModeSet:              "PICO_ETS_MODE_SET",
	StatusDataNotAvailable:        "PICO_DATA_NOT_AVAILABLE",
	StatusStringBufferTooSmall:    "PICO_STRING_BUFFER_TO_SMALL",
	StatusEtsNotSupported:         "PICO_ETS_NOT_SUPPORTED",
	StatusAutoTriggerTimeTooShort: "PICO_AUTO_TRIGGER_TIME_TO_SHORT",
	StatusBufferStall:             "PICO_BUFFER_STALL",
	StatusTooManySamples:          "PICO_TOO_MANY_SAMPLES",
	StatusTooManySegments:         "PICO_TOO_MANY_SEGMENTS",
	StatusPulseWidthQualifier:     "PICO_PULSE_WIDTH_QUALIFIER",
	StatusDelay:                   "PICO_DELAY",
	StatusSourceDetails:           "PICO_SOURCE_DETAILS",
	StatusConditions:              "PICO_CONDITIONS",
	StatusUserCallback:            "PICO_USER_CALLBACK",
	StatusDeviceSampling:          "PICO_DEVICE_SAMPLING",
	StatusNoSamplesAvailable:      "PICO_NO_SAMPLES_AVAILABLE",
	StatusSegmentOutOfRange:       "PICO_SEGMENT_OUT_OF_RANGE",
	StatusBusy:                    "PICO_BUSY",
	StatusStartIndexInvalid:       "PICO_STARTINDEX_INVALID",
	StatusInvalidInfo:             "PICO_INVALID_INFO",
	StatusInfoUnavailable:         "PICO_INFO_UNAVAILABLE",
	StatusInvalidSampleInterval:   "PICO_INVALID_SAMPLE_INTERVAL",
	StatusUnknownError:            "PICO_UNKNOWN_ERROR",
}

// OK reports whether the call succeeded
func (s Status) OK() bool {
	return s == StatusOK
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("PICO_STATUS(0x%08X)", uint32(s))
}
