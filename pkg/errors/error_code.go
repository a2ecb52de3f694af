package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter      ErrorCode = 100
	ErrCodeInvalidConfiguration  ErrorCode = 101
	ErrCodeInvalidFill           ErrorCode = 102
	ErrCodeInvalidSnapshotRecord ErrorCode = 103
	ErrCodeInvalidQuantity       ErrorCode = 104
	ErrCodeInvalidPrice          ErrorCode = 105
	ErrCodeMissingParameter      ErrorCode = 106

	// Data/Decode errors (200-299)
	ErrCodeDataNotFound      ErrorCode = 200
	ErrCodeDecodeFailed      ErrorCode = 201
	ErrCodeUnsupportedFormat ErrorCode = 202
	ErrCodeQueryFailed       ErrorCode = 203
	ErrCodeMissingColumn     ErrorCode = 204

	// Mark price errors (300-399)
	ErrCodeMarkUnavailable ErrorCode = 300
	ErrCodeProviderFailure ErrorCode = 301

	// Ledger errors (500-599)
	ErrCodeInsufficientPosition   ErrorCode = 500
	ErrCodeReconciliationMismatch ErrorCode = 501
	ErrCodeMixedBatch             ErrorCode = 502
	ErrCodeSymbolQuarantined      ErrorCode = 503

	// Configuration/version errors (600-699)
	ErrCodeVersionMismatch  ErrorCode = 600
	ErrCodeInvalidThreshold ErrorCode = 601
)
