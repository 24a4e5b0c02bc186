package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = errors.New("Email already exists")
	// ErrInvalidEmail is returned when an email cannot be carried in a bearer token.
	ErrInvalidEmail = errors.New("Email must not contain ':'.")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password alike.
	ErrInvalidCredentials = errors.New("Invalid email or password.")

	// ErrMissingCredential is returned when a protected call carries no Authorization header.
	ErrMissingCredential = errors.New("Authorization header missing")
	// ErrMalformedToken is returned when a bearer token cannot be decoded.
	ErrMalformedToken = errors.New("Invalid token format")
	// ErrInvalidCredential is returned when a bearer token was not minted with our secret.
	ErrInvalidCredential = errors.New("Invalid token")
	// ErrCredentialExpired is returned when a bearer token is older than its lifetime.
	ErrCredentialExpired = errors.New("Token expired")
	// ErrUnknownPrincipal is returned when a valid token names a user that does not exist.
	ErrUnknownPrincipal = errors.New("User not found")

	// ErrCaptionRequired is returned when a post is uploaded without a caption.
	ErrCaptionRequired = errors.New("Caption is required.")
	// ErrPostIDRequired is returned when a post id is missing or zero.
	ErrPostIDRequired = errors.New("Post ID is required.")
	// ErrCommentIDRequired is returned when a comment id is missing or zero.
	ErrCommentIDRequired = errors.New("Comment ID is required.")
	// ErrCommentRequired is returned when a comment has no text.
	ErrCommentRequired = errors.New("Comment is required.")
	// ErrAttachmentTooLarge is returned when an uploaded photo exceeds the size limit.
	ErrAttachmentTooLarge = errors.New("Photo is too large.")

	// ErrPostNotFound is returned when a post does not exist.
	ErrPostNotFound = errors.New("Post not found.")
	// ErrCommentNotFound is returned when a comment does not exist.
	ErrCommentNotFound = errors.New("Comment not found.")

	// ErrForbiddenPost is returned when a user tries to delete someone else's post.
	ErrForbiddenPost = errors.New("You are not authorized to delete this post.")
	// ErrForbiddenComment is returned when a user tries to delete someone else's comment.
	ErrForbiddenComment = errors.New("You are not authorized to delete this comment.")
)

// ErrorResponse is the JSON body of every failed call: the user-facing message plus a
// stable machine-readable code.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError is a domain error resolved to the status and code it is reported with.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError builds an HTTPError.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse drops the status, leaving what the client sees.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var mappings = []struct {
	err    error
	status int
	code   string
}{
	{ErrDuplicateEmail, http.StatusBadRequest, "DUPLICATE_EMAIL"},
	{ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL"},
	{ErrCaptionRequired, http.StatusBadRequest, "CAPTION_REQUIRED"},
	{ErrPostIDRequired, http.StatusBadRequest, "POST_ID_REQUIRED"},
	{ErrCommentIDRequired, http.StatusBadRequest, "COMMENT_ID_REQUIRED"},
	{ErrCommentRequired, http.StatusBadRequest, "COMMENT_REQUIRED"},
	{ErrAttachmentTooLarge, http.StatusRequestEntityTooLarge, "ATTACHMENT_TOO_LARGE"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrMissingCredential, http.StatusUnauthorized, "MISSING_CREDENTIAL"},
	{ErrMalformedToken, http.StatusUnauthorized, "MALFORMED_TOKEN"},
	{ErrInvalidCredential, http.StatusUnauthorized, "INVALID_CREDENTIAL"},
	{ErrCredentialExpired, http.StatusUnauthorized, "CREDENTIAL_EXPIRED"},
	{ErrUnknownPrincipal, http.StatusUnauthorized, "UNKNOWN_PRINCIPAL"},
	{ErrForbiddenPost, http.StatusForbidden, "FORBIDDEN"},
	{ErrForbiddenComment, http.StatusForbidden, "FORBIDDEN"},
	{ErrPostNotFound, http.StatusNotFound, "POST_NOT_FOUND"},
	{ErrCommentNotFound, http.StatusNotFound, "COMMENT_NOT_FOUND"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognised becomes a
// generic 500 so store details never reach the caller.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// IsInternal reports whether err maps to a 500 response.
func IsInternal(err error) bool {
	return MapErrorToHTTP(err).StatusCode == http.StatusInternalServerError
}
