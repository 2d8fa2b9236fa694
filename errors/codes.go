package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Construction and validation errors (never retried)
const (
	// ErrCodeInvalidInput indicates malformed input text.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeValidation indicates a well-formed request that breaks a domain rule.
	ErrCodeValidation ErrorCode = "VALIDATION_FAILED"
)

// Network errors (retried only by explicit retry orchestration)
const (
	// ErrCodeTransport indicates the request could not be delivered or its reply could not be read.
	ErrCodeTransport ErrorCode = "TRANSPORT_FAILED"
	// ErrCodeInvalidResponse indicates the reply was read but cannot be represented.
	ErrCodeInvalidResponse ErrorCode = "RESPONSE_INVALID"
)

// Internal errors
const (
	// ErrCodeInternal indicates a bug or an unexpected condition.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransport:       true,
	ErrCodeInvalidResponse: true,
	ErrCodeInternal:        false,
}

// IsRetryableCode returns true if the error code may succeed on another attempt.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// Transport stages recorded in the "stage" detail of TRANSPORT_FAILED errors.
const (
	StageBuild     = "build"
	StageResolve   = "resolve"
	StageConnect   = "connect"
	StageTLS       = "tls"
	StageHandshake = "handshake"
	StageSend      = "send"
	StageReceive   = "receive"
)
