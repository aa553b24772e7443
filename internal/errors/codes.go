package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrMissingConfig   ErrorCode = "missing_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidTickRate ErrorCode = "invalid_tick_rate"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Resource errors
	ErrResourceNotFound  ErrorCode = "resource_not_found"
	ErrResourceExhausted ErrorCode = "resource_exhausted"

	// Application errors
	ErrInitApp  ErrorCode = "init_app_failed"
	ErrMainLoop ErrorCode = "main_loop_failed"

	// Engine errors
	ErrUnknownScene    ErrorCode = "unknown_scene"
	ErrUnknownEntity   ErrorCode = "unknown_entity"
	ErrDuplicateScene  ErrorCode = "duplicate_scene"
	ErrDuplicateEntity ErrorCode = "duplicate_entity"
	ErrUnknownHazard   ErrorCode = "unknown_hazard"

	// Operation errors
	ErrOperationFailed  ErrorCode = "operation_failed"
	ErrTimeout          ErrorCode = "operation_timeout"
	ErrInvalidOperation ErrorCode = "invalid_operation"

	// Telemetry errors
	ErrInitTelemetry    ErrorCode = "init_telemetry_failed"
	ErrCollectTelemetry ErrorCode = "collect_telemetry_failed"
	ErrCloseTelemetry   ErrorCode = "close_telemetry_failed"

	// Monitor errors
	ErrInitMonitor  ErrorCode = "init_monitor_failed"
	ErrCloseMonitor ErrorCode = "close_monitor_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:          "Internal error occurred",
	ErrInvalidArgument:   "Invalid argument provided",
	ErrUnavailable:       "Service unavailable",
	ErrAlreadyRunning:    "Another instance is already running",
	ErrInvalidConfig:     "Invalid configuration",
	ErrMissingConfig:     "Missing configuration",
	ErrBindFlags:         "Failed to bind flags",
	ErrReadConfig:        "Failed to read configuration",
	ErrInvalidTickRate:   "Invalid tick rate value",
	ErrInvalidLogLevel:   "Invalid log level",
	ErrInitFailed:        "Initialization failed",
	ErrShutdownFailed:    "Shutdown failed",
	ErrResourceNotFound:  "Resource not found",
	ErrResourceExhausted: "Resource exhausted",
	ErrInitApp:           "Failed to initialize application",
	ErrMainLoop:          "Error in main loop",
	ErrUnknownScene:      "Scene is not registered",
	ErrUnknownEntity:     "Entity is not registered",
	ErrDuplicateScene:    "Scene is already registered",
	ErrDuplicateEntity:   "Entity is already registered",
	ErrUnknownHazard:     "Hazard is not registered",
	ErrOperationFailed:   "Operation failed",
	ErrTimeout:           "Operation timed out",
	ErrInvalidOperation:  "Invalid operation",
	ErrInitTelemetry:     "Failed to initialize telemetry",
	ErrCollectTelemetry:  "Failed to collect telemetry data",
	ErrCloseTelemetry:    "Failed to close telemetry connection",
	ErrInitMonitor:       "Failed to initialize monitor endpoint",
	ErrCloseMonitor:      "Failed to close monitor endpoint",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
