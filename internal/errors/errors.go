package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingCredentials is returned when username or password is empty.
	ErrMissingCredentials = errors.New("username and password required")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned for an unknown username or a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned when a request carries no usable session.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrMissingFile is returned when an upload has no file part or an empty filename.
	ErrMissingFile = errors.New("no file uploaded")
	// ErrInvalidFilename is returned when an uploaded filename cannot be made safe.
	ErrInvalidFilename = errors.New("invalid file name")
	// ErrMissingDocumentName is returned when a document name is required but empty.
	ErrMissingDocumentName = errors.New("document_name required")
	// ErrDocumentNotFound is returned when the caller has no document with the given name.
	ErrDocumentNotFound = errors.New("file not found")
	// ErrUnknownEntityType is returned when a classification names an entity type outside the rule table.
	ErrUnknownEntityType = errors.New("unknown entity type")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
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
	{ErrMissingCredentials, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrMissingFile, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrInvalidFilename, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrMissingDocumentName, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrUnknownEntityType, http.StatusBadRequest, "UNKNOWN_ENTITY_TYPE"},
	// Conflicts surface as 400 to match the public contract.
	{ErrUsernameTaken, http.StatusBadRequest, "USERNAME_TAKEN"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
	{ErrDocumentNotFound, http.StatusNotFound, "NOT_FOUND"},
}

// MapErrorToHTTP maps domain errors (wrapped or not) to HTTP errors.
// Anything unrecognised becomes a generic 500 without leaking details.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
