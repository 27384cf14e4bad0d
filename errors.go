package flix

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeTokenMalformed   = "token_malformed"
	TextCodeTokenSignature   = "token_signature_invalid"
	TextCodeTokenExpired     = "token_expired"
	TextCodeSubjectMismatch  = "token_subject_mismatch"
	TextCodeBadCredentials   = "credential_mismatch"
	TextCodeDuplicateAccount = "duplicate_registration"
	TextCodeEmptyPassword    = "empty_password"
)

// ErrNoEmptyString is returned when asked to hash an empty password.
var ErrNoEmptyString = errors.New("password cannot be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrTokenMalformed is returned when a token cannot be parsed at all.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenSignature is returned when a token parses but its signature does
// not verify against the configured signing key.
var ErrTokenSignature = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenSignature).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a token is past its exp claim.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrSubjectMismatch is returned when a token is valid but was issued for a
// different subject than the one being checked.
var ErrSubjectMismatch = errors.New("token subject mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeSubjectMismatch).
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the single error login reports for both an
// unknown identifier and a wrong password, so responses cannot be used to
// probe which accounts exist.
var ErrMismatchedHashAndPassword = errors.New("credentials do not match", errors.CategoryAuth).
	WithTextCode(TextCodeBadCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrDuplicateRegistration is returned when registering an email that already
// has an account. Unlike login failures this stays distinguishable, the
// signup form needs to tell the user.
var ErrDuplicateRegistration = errors.New("email is already registered", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateAccount).
	WithCode(errors.CodeConflict)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = stderrors.New("identity not found")

// ErrUnableToFindSession is the error when our request has no cookie
var ErrUnableToFindSession = stderrors.New("unable to find session")

// ErrUnableToDecodeSession unable to decode JWT from session cookie
var ErrUnableToDecodeSession = stderrors.New("unable to decode session")

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = stderrors.New("unable to map claims")

// ErrUnableToParseData parse error
var ErrUnableToParseData = stderrors.New("unable to parse data")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsSignatureError will check for signature verification failures
func IsSignatureError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "signature is invalid")
}

// IsDuplicateError reports whether err is a duplicate registration, either
// our rich error or the unique constraint bubbling up from the database.
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateRegistration) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}
