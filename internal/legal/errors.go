package legal

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrNotFound covers both missing records and records owned by someone else.
	ErrNotFound = errors.New("legal: record not found")
	// ErrStaleVersion indicates the caller updated from an outdated copy.
	ErrStaleVersion = errors.New("legal: stale version")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("legal: invalid input")
	// ErrClientNotFound is returned when an invoice has no recipient to fall back on.
	ErrClientNotFound = errors.New("legal: client not found for invoice")
	// ErrEmailSendFailed wraps mail delivery failures.
	ErrEmailSendFailed = errors.New("legal: email send failed")

	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	errMissingOwnerID    = errors.New("owner identifier is required")
	noOpLogger           = zap.NewNop()
)

// ServiceError carries a dotted operation code such as "cases.update.query_failed".
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func logError(logger *zap.Logger, operation, reason string, err error, fields ...zap.Field) {
	if logger == nil {
		logger = noOpLogger
	}
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	logger.Error("legal service error", attrs...)
}
