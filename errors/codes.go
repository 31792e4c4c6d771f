package errors

// ErrorCode identifies an application error category
type ErrorCode int32

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_FORBIDDEN         ErrorCode = 1006

	// Webhook ingestion
	ErrorCode_WEBHOOK_UNAUTHORIZED ErrorCode = 2000
	ErrorCode_INVALID_PAYLOAD      ErrorCode = 2001
	ErrorCode_MISSING_EVENT_KIND   ErrorCode = 2002
	ErrorCode_MISSING_MEETING_ID   ErrorCode = 2003
	ErrorCode_DUPLICATE_EVENT      ErrorCode = 2004

	// Resolution
	ErrorCode_RESOLUTION_UNAVAILABLE ErrorCode = 3000
	ErrorCode_RETRY_EXHAUSTED        ErrorCode = 3001
	ErrorCode_TRANSCRIPT_NOT_FOUND   ErrorCode = 3002
	ErrorCode_PROCESSING_FAILED      ErrorCode = 3003

	// Database / integration
	ErrorCode_DB_CONNECTION_FAILED ErrorCode = 4000
	ErrorCode_DB_QUERY_FAILED      ErrorCode = 4001
	ErrorCode_STORAGE_UNAVAILABLE  ErrorCode = 4002
	ErrorCode_INTEGRATION_CACHE_FAILED ErrorCode = 4003
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                  "OK",
	ErrorCode_INTERNAL:                 "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:         "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:           "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:        "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:          "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:                "FORBIDDEN",
	ErrorCode_WEBHOOK_UNAUTHORIZED:     "WEBHOOK_UNAUTHORIZED",
	ErrorCode_INVALID_PAYLOAD:          "INVALID_PAYLOAD",
	ErrorCode_MISSING_EVENT_KIND:       "MISSING_EVENT_KIND",
	ErrorCode_MISSING_MEETING_ID:       "MISSING_MEETING_ID",
	ErrorCode_DUPLICATE_EVENT:          "DUPLICATE_EVENT",
	ErrorCode_RESOLUTION_UNAVAILABLE:   "RESOLUTION_UNAVAILABLE",
	ErrorCode_RETRY_EXHAUSTED:          "RETRY_EXHAUSTED",
	ErrorCode_TRANSCRIPT_NOT_FOUND:     "TRANSCRIPT_NOT_FOUND",
	ErrorCode_PROCESSING_FAILED:        "PROCESSING_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:     "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:          "DB_QUERY_FAILED",
	ErrorCode_STORAGE_UNAVAILABLE:      "STORAGE_UNAVAILABLE",
	ErrorCode_INTEGRATION_CACHE_FAILED: "INTEGRATION_CACHE_FAILED",
}

// String returns the symbolic name of the error code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
