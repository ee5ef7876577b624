package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Aliases
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Lien Module Error Codes
const (
	ErrCodeLienInvalidRule  ErrorCode = "LIEN_001"
	ErrCodeLienInvalidState ErrorCode = "LIEN_002"
	ErrCodeLienInvalidDate  ErrorCode = "LIEN_003"
)

// Notice-of-Intent Module Error Codes
const (
	ErrCodeNOIInvalidRole   ErrorCode = "NOI_001"
	ErrCodeNOIInvalidPolicy ErrorCode = "NOI_002"
	ErrCodeNOIMissingDates  ErrorCode = "NOI_003"
)

// Letter Module Error Codes
const (
	ErrCodeLetterInvalidData          ErrorCode = "LETTER_001"
	ErrCodeLetterUnresolvedPlaceholder ErrorCode = "LETTER_002"
	ErrCodeLetterComposerConflict     ErrorCode = "LETTER_003"
)

// Document Module Error Codes
const (
	ErrCodeDocumentRenderFailed  ErrorCode = "DOC_001"
	ErrCodeDocumentInvalidOption ErrorCode = "DOC_002"
	ErrCodeDocumentWriteFailed   ErrorCode = "DOC_003"
)

// Sequence Module Error Codes
const (
	ErrCodeSequenceInvalidInput      ErrorCode = "SEQ_001"
	ErrCodeSequenceMissingPlaceholder ErrorCode = "SEQ_002"
)

// Storage / Messaging Error Codes
const (
	ErrCodeStorageUploadFailed   ErrorCode = "STORE_001"
	ErrCodeStorageObjectNotFound ErrorCode = "STORE_002"
	ErrCodeStoragePresignFailed  ErrorCode = "STORE_003"
	ErrCodeMessagePublishFailed  ErrorCode = "STORE_004"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusBadRequest,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeLienInvalidRule:  http.StatusInternalServerError,
	ErrCodeLienInvalidState: http.StatusBadRequest,
	ErrCodeLienInvalidDate:  http.StatusBadRequest,

	ErrCodeNOIInvalidRole:   http.StatusBadRequest,
	ErrCodeNOIInvalidPolicy: http.StatusInternalServerError,
	ErrCodeNOIMissingDates:  http.StatusUnprocessableEntity,

	ErrCodeLetterInvalidData:           http.StatusUnprocessableEntity,
	ErrCodeLetterUnresolvedPlaceholder: http.StatusInternalServerError,
	ErrCodeLetterComposerConflict:      http.StatusInternalServerError,

	ErrCodeDocumentRenderFailed:  http.StatusInternalServerError,
	ErrCodeDocumentInvalidOption: http.StatusBadRequest,
	ErrCodeDocumentWriteFailed:   http.StatusInternalServerError,

	ErrCodeSequenceInvalidInput:       http.StatusBadRequest,
	ErrCodeSequenceMissingPlaceholder: http.StatusUnprocessableEntity,

	ErrCodeStorageUploadFailed:   http.StatusBadGateway,
	ErrCodeStorageObjectNotFound: http.StatusNotFound,
	ErrCodeStoragePresignFailed:  http.StatusBadGateway,
	ErrCodeMessagePublishFailed:  http.StatusBadGateway,
}

// ErrorCodeMessage maps error codes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization error",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",

	ErrCodeLienInvalidRule:  "invalid lien rule",
	ErrCodeLienInvalidState: "invalid state code",
	ErrCodeLienInvalidDate:  "invalid date",

	ErrCodeNOIInvalidRole:   "invalid claimant role",
	ErrCodeNOIInvalidPolicy: "invalid notice policy",
	ErrCodeNOIMissingDates:  "last work date and invoice due date are required",

	ErrCodeLetterInvalidData:           "invalid letter data",
	ErrCodeLetterUnresolvedPlaceholder: "letter contains unresolved placeholders",
	ErrCodeLetterComposerConflict:      "composer already registered",

	ErrCodeDocumentRenderFailed:  "document rendering failed",
	ErrCodeDocumentInvalidOption: "invalid render option",
	ErrCodeDocumentWriteFailed:   "failed to write document",

	ErrCodeSequenceInvalidInput:       "invalid sequence input",
	ErrCodeSequenceMissingPlaceholder: "missing placeholder value",

	ErrCodeStorageUploadFailed:   "failed to upload object",
	ErrCodeStorageObjectNotFound: "object not found",
	ErrCodeStoragePresignFailed:  "failed to presign object url",
	ErrCodeMessagePublishFailed:  "failed to publish message",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
