package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"time"

	"github.com/sirupsen/logrus"
)

// Kind is the closed set of failure classes surfaced to users.
type Kind string

const (
	KindValidation Kind = "validation"
	KindQuota      Kind = "quota"
	KindRateLimit  Kind = "rate_limit"
	KindNotFound   Kind = "not_found"
	KindPermission Kind = "permission"
	KindTemporary  Kind = "temporary"
	KindInternal   Kind = "internal"
)

// ResetTimeLayout formats quota reset times in user-facing messages.
const ResetTimeLayout = "2006-01-02 15:04 MST"

type AppError struct {
	StatusCode  int
	Message     string
	Kind        Kind
	UserMessage string
	Retryable   bool
	RetryAfter  time.Duration
	ResetTime   time.Time
	Err         error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, message string) *AppError {
	kind := kindForStatus(statusCode)
	return &AppError{
		StatusCode:  statusCode,
		Message:     message,
		Kind:        kind,
		UserMessage: message,
		Retryable:   retryable(kind),
	}
}

func NewValidationError(message string) *AppError {
	err := NewAppError(http.StatusBadRequest, message)
	err.UserMessage = "Invalid input provided"
	return err
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func NewQuotaError(resetTime time.Time) *AppError {
	err := NewAppError(http.StatusTooManyRequests, "Quota exceeded")
	err.Kind = KindQuota
	err.Retryable = false
	err.ResetTime = resetTime
	err.UserMessage = "Daily quota exceeded. Resets at " + resetTime.UTC().Format(ResetTimeLayout)
	return err
}

func NewRateLimitError(retryAfter time.Duration) *AppError {
	err := NewAppError(http.StatusTooManyRequests, "Rate limit exceeded")
	err.RetryAfter = retryAfter
	err.UserMessage = fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", Seconds(retryAfter))
	return err
}

func NewUnauthorizedError(message ...string) *AppError {
	if len(message) > 0 {
		return NewAppError(http.StatusUnauthorized, message[0])
	}
	return NewAppError(http.StatusUnauthorized, "Unauthorized")
}

func NewPermissionError(message string) *AppError {
	err := NewAppError(http.StatusForbidden, message)
	err.UserMessage = "Insufficient permissions"
	return err
}

func NewForbiddenError(message string) *AppError {
	return NewAppError(http.StatusForbidden, message)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message)
}

func NewTemporaryError(originalError error, message string) *AppError {
	err := NewAppError(http.StatusServiceUnavailable, message)
	err.UserMessage = "Temporary service unavailable"
	err.Err = originalError
	return err
}

func NewInternalServerError(originalError error, message string) *AppError {
	if originalError != nil {
		logrus.Errorf("[%s] %s", reflect.TypeOf(originalError).String(), originalError)
	}
	err := NewAppError(http.StatusInternalServerError, message)
	err.UserMessage = "Internal server error"
	err.Err = originalError
	return err
}

// From classifies any error into an *AppError. Unknown faults become Internal
// without logging; callers log once with their own context.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewTemporaryError(err, "Operation timed out")
	}
	wrapped := NewAppError(http.StatusInternalServerError, "Internal server error")
	wrapped.Err = err
	return wrapped
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}

func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return From(err).Retryable
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserText renders the single message a user sees for a failed event.
func UserText(err error) string {
	appErr := From(err)
	emoji := "❌"
	if appErr.Retryable {
		emoji = "⚠️"
	}
	return emoji + " " + appErr.UserMessage
}

// Seconds rounds a wait up to whole seconds, never below one.
func Seconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

func kindForStatus(statusCode int) Kind {
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindPermission
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusTooManyRequests:
		return KindRateLimit
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return KindTemporary
	default:
		return KindInternal
	}
}

func retryable(kind Kind) bool {
	switch kind {
	case KindRateLimit, KindTemporary, KindInternal:
		return true
	default:
		return false
	}
}
