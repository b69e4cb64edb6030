package service

import (
	"errors"
	"fmt"

	"github.com/taichu-system/tenancy-management/internal/database"
	"gorm.io/gorm"
)

// ErrorKind 业务错误类别，调用方据此决定如何处理
type ErrorKind string

const (
	KindInvalidCredentials ErrorKind = "InvalidCredentials"
	KindAccountInactive    ErrorKind = "AccountInactive"
	KindSessionInvalid     ErrorKind = "SessionInvalid"
	KindSessionExpired     ErrorKind = "SessionExpired"
	KindForbidden          ErrorKind = "Forbidden"
	KindDuplicateEmail     ErrorKind = "DuplicateEmail"
	KindDuplicateUnitKey   ErrorKind = "DuplicateUnitKey"
	KindUnitNotAvailable   ErrorKind = "UnitNotAvailable"
	KindUnitOccupied       ErrorKind = "UnitOccupied"
	KindUnitNotOccupied    ErrorKind = "UnitNotOccupied"
	KindLeaseNotActive     ErrorKind = "LeaseNotActive"
	KindNotFound           ErrorKind = "NotFound"
	KindValidation         ErrorKind = "Validation"
	KindUnavailable        ErrorKind = "Unavailable"
	KindInternal           ErrorKind = "Internal"
)

// Error 业务错误，errors.Is 按类别比较
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Withf 返回同类别、带具体说明的新错误
func (e *Error) Withf(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Message: fmt.Sprintf(format, args...)}
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrInvalidCredentials = newError(KindInvalidCredentials, "invalid email or password")
	ErrAccountInactive    = newError(KindAccountInactive, "account is deactivated, contact your caretaker")
	ErrSessionInvalid     = newError(KindSessionInvalid, "session is invalid, please log in again")
	ErrSessionExpired     = newError(KindSessionExpired, "session has expired, please log in again")
	ErrForbidden          = newError(KindForbidden, "you do not have permission to perform this action")
	ErrDuplicateEmail     = newError(KindDuplicateEmail, "email is already registered, use a different email")
	ErrDuplicateUnitKey   = newError(KindDuplicateUnitKey, "a unit with this building and unit number already exists")
	ErrUnitNotAvailable   = newError(KindUnitNotAvailable, "unit is not available, choose another unit")
	ErrUnitOccupied       = newError(KindUnitOccupied, "unit is occupied, terminate its lease first")
	ErrUnitNotOccupied    = newError(KindUnitNotOccupied, "unit is not occupied")
	ErrLeaseNotActive     = newError(KindLeaseNotActive, "lease is not active")
	ErrNotFound           = newError(KindNotFound, "resource not found")
	ErrValidation         = newError(KindValidation, "invalid input")
	ErrUnavailable        = newError(KindUnavailable, "storage is temporarily unavailable, retry later")
	ErrInternal           = newError(KindInternal, "internal error")
)

// KindOf 返回错误类别，非业务错误视为 Internal
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func notFound(resource string) *Error {
	return ErrNotFound.Withf("%s not found", resource)
}

func validationError(format string, args ...interface{}) *Error {
	return ErrValidation.Withf(format, args...)
}

// storeError 将存储层错误归类，业务错误原样返回
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Message: "resource not found", Err: err}
	}
	if database.IsConnectionError(err) {
		return &Error{Kind: KindUnavailable, Message: ErrUnavailable.Message, Err: fmt.Errorf("%s: %w", op, err)}
	}
	return &Error{Kind: KindInternal, Message: "failed to " + op, Err: err}
}
