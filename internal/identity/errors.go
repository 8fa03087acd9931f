package identity

import (
	"errors"

	"github.com/aws/smithy-go"
	"github.com/tasklane/apiserver/internal/result"
)

// Classify reports whether err is a recognized identity provider error: an
// API error carrying a code, a message and the HTTP status of the response.
// Anything else (transport failures, cancelled contexts, SDK bugs) is not
// classified and must be treated as unexpected.
func Classify(err error) (result.IdentityError, bool) {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return result.IdentityError{}, false
	}
	var statusErr interface{ HTTPStatusCode() int }
	if !errors.As(err, &statusErr) || statusErr.HTTPStatusCode() == 0 {
		return result.IdentityError{}, false
	}
	return result.IdentityError{
		Message:    apiErr.ErrorMessage(),
		Code:       apiErr.ErrorCode(),
		StatusCode: statusErr.HTTPStatusCode(),
	}, true
}
