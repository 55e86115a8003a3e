package common

import "errors"

// ErrorCode 服务层错误分类，对应对外的机器可读错误码。
type ErrorCode string

const (
	ErrorCodeValidation           ErrorCode = "validation_error"
	ErrorCodeUnsupportedMediaType ErrorCode = "unsupported_media_type"
	ErrorCodePayloadTooLarge      ErrorCode = "payload_too_large"
	ErrorCodeInvalidDimensions    ErrorCode = "invalid_dimensions"
	ErrorCodeUnauthorized         ErrorCode = "unauthorized"
	ErrorCodeForbidden            ErrorCode = "forbidden"
	ErrorCodeLocked               ErrorCode = "account_locked"
	ErrorCodeConflict             ErrorCode = "conflict"
	ErrorCodeNotFound             ErrorCode = "not_found"
	ErrorCodeRetrieval            ErrorCode = "retrieval_error"
	ErrorCodeInternal             ErrorCode = "internal_error"
)

// ServiceError 带分类码的服务层错误
type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewServiceError(code ErrorCode, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return nil, false
}
