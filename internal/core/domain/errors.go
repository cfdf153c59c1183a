// Package domain defines the core domain models for stakewatch.
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DomainError represents a business domain error with a structured error code.
//
// Codes use the form SW-<AREA>-<NNNN>; the first three digits of the numeric
// part are the HTTP status the error maps to.
type DomainError struct {
	Code    string // Error code (e.g., "SW-USER-4040")
	Message string // Human-readable message, sent to clients
	Details string // Optional additional details, never sent to clients
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Status returns the HTTP status encoded in the error code, or 500 when the
// code carries none.
func (e *DomainError) Status() int {
	idx := strings.LastIndex(e.Code, "-")
	if idx < 0 || len(e.Code)-idx-1 < 3 {
		return 500
	}
	status, err := strconv.Atoi(e.Code[idx+1 : idx+4])
	if err != nil || status < 400 || status > 599 {
		return 500
	}
	return status
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// GetErrorCode returns the code of the DomainError in err's chain, or "".
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// StatusOf returns the HTTP status for err; non-domain errors map to 500.
func StatusOf(err error) int {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Status()
	}
	return 500
}

// ============================================================================
// User Errors (USER)
// ============================================================================

var (
	// ErrUserFieldsMissing indicates create input failed validation.
	ErrUserFieldsMissing = NewDomainError("SW-USER-4000", "Missing required fields")

	// ErrUserExists indicates a user already holds the phone number.
	ErrUserExists = NewDomainError("SW-USER-4001", "A user with that phone number already exists")

	// ErrUserPhoneMissing indicates the phone is absent or not 10 characters.
	ErrUserPhoneMissing = NewDomainError("SW-USER-4002", "Missing required field")

	// ErrUserUpdateFieldsMissing indicates no updatable field was supplied.
	ErrUserUpdateFieldsMissing = NewDomainError("SW-USER-4003", "Missing fields to update.")

	// ErrUserUpdatePhoneMissing indicates the update carried no valid phone.
	ErrUserUpdatePhoneMissing = NewDomainError("SW-USER-4004", "Missing required field.")

	// ErrUserUpdateTarget indicates the user to update does not exist.
	ErrUserUpdateTarget = NewDomainError("SW-USER-4005", "Specified user does not exist.")

	// ErrUserDeleteTarget indicates the user to delete does not exist.
	ErrUserDeleteTarget = NewDomainError("SW-USER-4006", "Could not find the specified user.")

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = NewDomainError("SW-USER-4040", "Specified user does not exist.")

	// ErrUserCreate indicates the store rejected the new user.
	ErrUserCreate = NewDomainError("SW-USER-5000", "Could not create the new user")

	// ErrUserUpdate indicates the store rejected an update.
	ErrUserUpdate = NewDomainError("SW-USER-5001", "Could not update the user.")

	// ErrUserDelete indicates the store rejected a delete.
	ErrUserDelete = NewDomainError("SW-USER-5002", "Could not delete the specified user")

	// ErrUserRead indicates the store failed while reading a user.
	ErrUserRead = NewDomainError("SW-USER-5003", "Could not read the specified user.")

	// ErrPasswordHash indicates the password digest could not be computed.
	ErrPasswordHash = NewDomainError("SW-USER-5004", "Could not hash the user's password.")
)

// ============================================================================
// Token Errors (TOKN)
// ============================================================================

var (
	// ErrTokenCredentialsMissing indicates issue input failed validation.
	ErrTokenCredentialsMissing = NewDomainError("SW-TOKN-4000", "Missing required field(s).")

	// ErrTokenUserUnknown indicates the phone in the credentials has no user.
	ErrTokenUserUnknown = NewDomainError("SW-TOKN-4001", "Could not find the specified user.")

	// ErrTokenPasswordMismatch indicates the password digest did not match.
	ErrTokenPasswordMismatch = NewDomainError("SW-TOKN-4002", "Password did not match the specified user's stored password")

	// ErrTokenIDInvalid indicates a missing or malformed token id.
	ErrTokenIDInvalid = NewDomainError("SW-TOKN-4003", "Missing required field, or field invalid")

	// ErrTokenExtendInvalid indicates extend input failed validation.
	ErrTokenExtendInvalid = NewDomainError("SW-TOKN-4004", "Missing required field(s) or field(s) are invalid.")

	// ErrTokenExpired indicates an expired token cannot be extended.
	ErrTokenExpired = NewDomainError("SW-TOKN-4005", "The token has already expired, and cannot be extended.")

	// ErrTokenExtendTarget indicates the token to extend does not exist.
	ErrTokenExtendTarget = NewDomainError("SW-TOKN-4006", "Specified token does not exist.")

	// ErrTokenRevokeTarget indicates the token to revoke does not exist.
	ErrTokenRevokeTarget = NewDomainError("SW-TOKN-4007", "Could not find the specified token.")

	// ErrTokenRevokeIDMissing indicates revoke input carried no valid id.
	ErrTokenRevokeIDMissing = NewDomainError("SW-TOKN-4008", "Missing required field")

	// ErrTokenNotFound indicates the requested token does not exist.
	ErrTokenNotFound = NewDomainError("SW-TOKN-4040", "Specified token does not exist.")

	// ErrTokenCreate indicates the store rejected a new token.
	ErrTokenCreate = NewDomainError("SW-TOKN-5000", "Could not create the new token")

	// ErrTokenUpdate indicates the store rejected an expiry update.
	ErrTokenUpdate = NewDomainError("SW-TOKN-5001", "Could not update the token's expiration.")

	// ErrTokenDelete indicates the store rejected a delete.
	ErrTokenDelete = NewDomainError("SW-TOKN-5002", "Could not delete the specified token")

	// ErrTokenRead indicates the store failed while reading a token.
	ErrTokenRead = NewDomainError("SW-TOKN-5003", "Could not read the specified token.")
)

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrAuthTokenInvalid indicates the token header is missing, unknown,
	// expired or bound to another phone.
	ErrAuthTokenInvalid = NewDomainError("SW-AUTH-4030", "Missing required token in header, or token is invalid.")
)

// ============================================================================
// Validator Snapshot Errors (VALR)
// ============================================================================

var (
	// ErrInvalidQuery indicates a page number below 1 or not a number.
	ErrInvalidQuery = NewDomainError("SW-VALR-4040", "Invalid Query")

	// ErrSnapshotUnavailable indicates the snapshot file is absent.
	ErrSnapshotUnavailable = NewDomainError("SW-VALR-4041", "The validator snapshot is not available.")

	// ErrSnapshotCorrupt indicates the snapshot could not be decoded.
	ErrSnapshotCorrupt = NewDomainError("SW-VALR-5000", "Could not read the validator snapshot.")

	// ErrRebuildFailed indicates a snapshot rebuild did not complete.
	ErrRebuildFailed = NewDomainError("SW-VALR-5001", "Could not rebuild the validator snapshot.")
)

// ============================================================================
// Request Errors (HTTP)
// ============================================================================

var (
	// ErrRouteNotFound indicates no resource is registered for the path.
	ErrRouteNotFound = NewDomainError("SW-HTTP-4040", "not found")

	// ErrMethodNotAllowed indicates the method is outside the allow-list.
	ErrMethodNotAllowed = NewDomainError("SW-HTTP-4050", "method not allowed")

	// ErrBodyUnreadable indicates the request body could not be read.
	ErrBodyUnreadable = NewDomainError("SW-HTTP-4000", "could not read request body")

	// ErrBodyTooLarge indicates the request body exceeded the configured limit.
	ErrBodyTooLarge = NewDomainError("SW-HTTP-4130", "request body too large")

	// ErrRateLimited indicates too many requests from one client.
	ErrRateLimited = NewDomainError("SW-HTTP-4290", "too many requests")

	// ErrInternalServer indicates an unexpected failure.
	ErrInternalServer = NewDomainError("SW-SYS-5000", "internal server error")
)
