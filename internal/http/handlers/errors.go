// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and supplement the human-readable message
// in ErrorResponse.Error. Clients are expected to branch on these codes for
// programmatic error handling.

package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeInvalidData  = "invalid_data"
	ErrCodeNoSuchItem   = "no_such_item"
	ErrCodeNoSuchStore  = "no_such_store"
	ErrCodeListFailed   = "list_failed"
	ErrCodeReportFailed = "report_failed"
	ErrCodeCreateFailed = "create_failed"
)

// Error messages returned for sale validation failures.
const (
	MsgInvalidData = "invalid data"
	MsgNoSuchItem  = "no such item"
	MsgNoSuchStore = "no such store"
)
