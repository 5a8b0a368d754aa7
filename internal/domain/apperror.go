package domain

import (
	"errors"
	"net/http"
	"strings"
)

// Error is a domain error with a stable code clients can branch on,
// an HTTP-equivalent status and a user-facing message. Internal layers
// may wrap these with fmt.Errorf("...: %w", ...); the service boundary
// unwraps them into the AuthResult envelope.
type Error struct {
	Code    string `json:"error"`
	Status  int    `json:"statusCode"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Is makes errors.Is match on the stable code rather than pointer identity,
// so a copy carrying Details still matches its catalog entry.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy of the error carrying diagnostic details.
// Details must never contain secrets; they are only exposed to clients
// outside production.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// The closed error taxonomy. Every failure surfaced by the service maps
// to exactly one of these.
var (
	// Validation (400).
	ErrInvalidEmail   = &Error{Code: "invalid_email", Status: http.StatusBadRequest, Message: "Invalid email format"}
	ErrWeakPassword   = &Error{Code: "weak_password", Status: http.StatusBadRequest, Message: "Password must be at least 8 characters and contain a letter and a digit"}
	ErrMissingFields  = &Error{Code: "missing_fields", Status: http.StatusBadRequest, Message: "Required fields are missing"}
	ErrInvalidRequest = &Error{Code: "invalid_request", Status: http.StatusBadRequest, Message: "Invalid request"}

	// Conflict (409).
	ErrEmailAlreadyExists = &Error{Code: "email_already_exists", Status: http.StatusConflict, Message: "An account with this email already exists"}

	// Authentication (401).
	ErrInvalidCredentials    = &Error{Code: "invalid_credentials", Status: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrInvalidToken          = &Error{Code: "invalid_token", Status: http.StatusUnauthorized, Message: "Invalid or already used verification token"}
	ErrInvalidSession        = &Error{Code: "invalid_session", Status: http.StatusUnauthorized, Message: "Session token is invalid or expired"}
	ErrTokenRefreshFailed    = &Error{Code: "token_refresh_failed", Status: http.StatusUnauthorized, Message: "Could not refresh authentication token"}
	ErrMissingAuthHeader     = &Error{Code: "missing_authorization_header", Status: http.StatusUnauthorized, Message: "Authorization header is required"}
	ErrInvalidAuthFormat     = &Error{Code: "invalid_authorization_format", Status: http.StatusUnauthorized, Message: "Authorization header must use the Bearer scheme"}
	ErrMissingToken          = &Error{Code: "missing_token", Status: http.StatusUnauthorized, Message: "Bearer token is empty"}
	ErrTokenValidationFailed = &Error{Code: "token_validation_failed", Status: http.StatusUnauthorized, Message: "Token validation failed"}

	// Authorization (403).
	ErrAccountDisabled  = &Error{Code: "account_disabled", Status: http.StatusForbidden, Message: "This account has been disabled"}
	ErrEmailNotVerified = &Error{Code: "email_not_verified", Status: http.StatusForbidden, Message: "Email address has not been verified"}
	ErrUserNotAnonymous = &Error{Code: "user_not_anonymous", Status: http.StatusForbidden, Message: "Account already has credentials and cannot be linked"}

	// Not found / gone (404, 410).
	ErrUserNotFound         = &Error{Code: "user_not_found", Status: http.StatusNotFound, Message: "User not found"}
	ErrVerificationNotFound = &Error{Code: "verification_not_found", Status: http.StatusNotFound, Message: "Verification record not found"}
	ErrLinkExpired          = &Error{Code: "link_expired", Status: http.StatusGone, Message: "This verification link has expired"}

	// Rate limiting (429).
	ErrTooManyAttempts = &Error{Code: "too_many_attempts", Status: http.StatusTooManyRequests, Message: "Too many attempts, try again later"}

	// Internal (500, 503).
	ErrInternal            = &Error{Code: "internal_error", Status: http.StatusInternalServerError, Message: "An internal error occurred"}
	ErrEmailSendFailed     = &Error{Code: "email_send_failed", Status: http.StatusInternalServerError, Message: "Could not send verification email"}
	ErrProviderUnreachable = &Error{Code: "provider_unreachable", Status: http.StatusServiceUnavailable, Message: "Identity provider is unreachable"}
)

// providerCodes maps identity-provider error codes onto the domain taxonomy.
// Any code not in the table falls through to ErrInternal.
var providerCodes = map[string]*Error{
	"EMAIL_EXISTS":                ErrEmailAlreadyExists,
	"EMAIL_NOT_FOUND":             ErrInvalidCredentials,
	"INVALID_PASSWORD":            ErrInvalidCredentials,
	"INVALID_LOGIN_CREDENTIALS":   ErrInvalidCredentials,
	"INVALID_EMAIL":               ErrInvalidEmail,
	"WEAK_PASSWORD":               ErrWeakPassword,
	"USER_DISABLED":               ErrAccountDisabled,
	"USER_NOT_FOUND":              ErrUserNotFound,
	"INVALID_ID_TOKEN":            ErrInvalidSession,
	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN": ErrInvalidSession,
	"INVALID_CUSTOM_TOKEN":        ErrTokenValidationFailed,
	"CREDENTIAL_MISMATCH":         ErrTokenValidationFailed,
	"INVALID_REFRESH_TOKEN":       ErrTokenRefreshFailed,
	"MISSING_REFRESH_TOKEN":       ErrTokenRefreshFailed,
	"TOKEN_EXPIRED":               ErrTokenRefreshFailed,
	"INVALID_GRANT_TYPE":          ErrTokenRefreshFailed,
	"TOO_MANY_ATTEMPTS_TRY_LATER": ErrTooManyAttempts,
	"OPERATION_NOT_ALLOWED":       ErrInternal,
}

// FromProviderCode translates a raw provider error code into a domain error.
// The provider sometimes suffixes codes with explanatory text
// ("WEAK_PASSWORD : Password should be ..."), so only the leading token is
// matched. The raw code is preserved in Details for non-production debugging.
func FromProviderCode(raw string) *Error {
	code := raw
	if i := strings.IndexAny(code, " :"); i >= 0 {
		code = code[:i]
	}
	if e, ok := providerCodes[code]; ok {
		return e.WithDetails(raw)
	}
	return ErrInternal.WithDetails(raw)
}

// AsError coerces any error into a domain *Error, defaulting to ErrInternal
// for errors that did not originate in the taxonomy.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal.WithDetails(err.Error())
}
