package util

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/config"
	"github.com/fadilmartias/hiring-pipeline/internal/response"
	"github.com/gofiber/fiber/v2"
)

type SuccessResponseFormat struct {
	Code       int
	Message    string
	Data       any
	Pagination *response.Pagination
	Meta       any
}

type OrderedSuccessResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Meta       any                  `json:"meta,omitempty"`
	Pagination *response.Pagination `json:"pagination,omitempty"`
	Data       any                  `json:"data,omitempty"`
}

type ErrorResponseFormat struct {
	Code       int
	Message    string
	Kind       string
	ErrorCode  string
	DevMessage string
	Details    any
	Trace      string
}

type OrderedErrorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Kind       string `json:"kind,omitempty"`
	Code       string `json:"code,omitempty"`
	DevMessage string `json:"dev_message,omitempty"`
	Details    any    `json:"details,omitempty"`
	Trace      string `json:"trace,omitempty"`
}

type FormError struct {
	Errors  map[string]string
	Message string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("form error: %s", e.Message)
}

func NewFormError(message string, errors map[string]string) *FormError {
	return &FormError{
		Message: message,
		Errors:  errors,
	}
}

// SuccessResponse sends the standard success envelope.
func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	response := OrderedSuccessResponse{
		Success:    true,
		Message:    params.Message,
		Data:       params.Data,
		Pagination: params.Pagination,
		Meta:       params.Meta,
	}
	return c.Status(code).JSON(response)
}

// ErrorResponse sends the standard error envelope. Outside production the
// first error is echoed back as dev_message with a stack trace.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, errs ...error) error {
	response := OrderedErrorResponse{
		Success: false,
		Message: params.Message,
		Kind:    params.Kind,
		Code:    params.ErrorCode,
		Details: params.Details,
	}
	if !config.LoadAppConfig().IsProduction() {
		if len(errs) > 0 && errs[0] != nil {
			response.DevMessage = errs[0].Error()
			response.Trace = string(debug.Stack())
		}
		if params.DevMessage != "" {
			response.DevMessage = params.DevMessage
		}
		if params.Trace != "" {
			response.Trace = params.Trace
		}
	}

	errorCode := params.Code
	if params.Code == 0 {
		errorCode = fiber.StatusInternalServerError
	}
	return c.Status(errorCode).JSON(response)
}

// StatusFor maps a failure kind onto an HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindStageBlocked,
		apperror.KindSlotConflict,
		apperror.KindPrematureFeedback,
		apperror.KindOutOfSequence,
		apperror.KindCapacityExceeded:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// AppErrorResponse renders any error returned by a pipeline command. Typed
// failures keep their kind, code and details; anything else is a 500.
func AppErrorResponse(c *fiber.Ctx, message string, err error) error {
	var formErr *FormError
	if errors.As(err, &formErr) {
		return ErrorResponse(c, ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: formErr.Message,
			Kind:    string(apperror.KindValidation),
			Details: formErr.Errors,
		}, err)
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return ErrorResponse(c, ErrorResponseFormat{Message: message}, err)
	}
	params := ErrorResponseFormat{
		Code:      StatusFor(appErr.Kind),
		Message:   appErr.Reason,
		Kind:      string(appErr.Kind),
		ErrorCode: appErr.Code,
		Details:   appErr.Details,
	}
	if appErr.Kind == apperror.KindInvariantViolation {
		params.Message = message
		params.DevMessage = appErr.Reason
	}
	return ErrorResponse(c, params, err)
}
