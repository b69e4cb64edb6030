package utils

import "net/http"

const (
	ErrCodeInvalidInput       = 1001
	ErrCodeNotFound           = 1002
	ErrCodeAlreadyExists      = 1003
	ErrCodeInternalError      = 1004
	ErrCodeValidationFailed   = 1005
	ErrCodeUnauthorized       = 1006
	ErrCodeForbidden          = 1007
	ErrCodeConflict           = 1008
	ErrCodeServiceUnavailable = 1010
	ErrCodeAccountInactive    = 1014
	ErrCodeSessionInvalid     = 1015
	ErrCodeSessionExpired     = 1016
	ErrCodeDuplicateEmail     = 1017
	ErrCodeDuplicateUnitKey   = 1018
	ErrCodeUnitNotAvailable   = 1019
	ErrCodeUnitOccupied       = 1020
	ErrCodeUnitNotOccupied    = 1021
	ErrCodeLeaseNotActive     = 1022
)

// kindCodes 业务错误类别到错误码
var kindCodes = map[string]int{
	"InvalidCredentials": ErrCodeUnauthorized,
	"AccountInactive":    ErrCodeAccountInactive,
	"SessionInvalid":     ErrCodeSessionInvalid,
	"SessionExpired":     ErrCodeSessionExpired,
	"Forbidden":          ErrCodeForbidden,
	"DuplicateEmail":     ErrCodeDuplicateEmail,
	"DuplicateUnitKey":   ErrCodeDuplicateUnitKey,
	"UnitNotAvailable":   ErrCodeUnitNotAvailable,
	"UnitOccupied":       ErrCodeUnitOccupied,
	"UnitNotOccupied":    ErrCodeUnitNotOccupied,
	"LeaseNotActive":     ErrCodeLeaseNotActive,
	"NotFound":           ErrCodeNotFound,
	"Validation":         ErrCodeValidationFailed,
	"Unavailable":        ErrCodeServiceUnavailable,
	"Internal":           ErrCodeInternalError,
}

// KindForCode 没有对应类别的错误码返回空字符串
func KindForCode(code int) string {
	for kind, c := range kindCodes {
		if c == code {
			return kind
		}
	}
	return ""
}

// CodeForKind 未知类别按内部错误处理
func CodeForKind(kind string) int {
	if code, ok := kindCodes[kind]; ok {
		return code
	}
	return ErrCodeInternalError
}

func GetHTTPStatusCode(code int) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeUnauthorized, ErrCodeSessionInvalid, ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeAccountInactive:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists, ErrCodeConflict, ErrCodeDuplicateEmail, ErrCodeDuplicateUnitKey,
		ErrCodeUnitNotAvailable, ErrCodeUnitOccupied, ErrCodeUnitNotOccupied, ErrCodeLeaseNotActive:
		return http.StatusConflict
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
