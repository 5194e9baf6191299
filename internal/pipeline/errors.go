package pipeline

import "errors"

// Sentinel errors for the pipeline's failure taxonomy. Stage-local
// recoverable conditions (outline fallback, image skip) never escape their
// stage; everything else propagates unchanged to the caller.
var (
	// ErrMissingCredential means no API key was available. Fatal before any
	// model call.
	ErrMissingCredential = errors.New("missing api credential")

	// ErrEmptyResponse means the model returned nothing usable.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrMalformedResponse means the response could not be parsed as JSON
	// even after repair.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrInvalidStructure means the parsed outline failed validation.
	ErrInvalidStructure = errors.New("invalid structure format")

	// ErrEmptyContent means the content call returned no text.
	ErrEmptyContent = errors.New("empty generated content")

	// ErrIncompleteContent means the content body was too short to be a
	// real notebook.
	ErrIncompleteContent = errors.New("incomplete generated content")

	// ErrQuotaExceeded means the provider reported the usage allowance as
	// depleted. Recoverable at the illustrator, fatal elsewhere.
	ErrQuotaExceeded = errors.New("api quota exceeded")
)

// Hint returns a plain-language remediation suggestion for a surfaced error.
// Rendering is the caller's job; the pipeline only classifies.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "set GEMINI_API_KEY (or add it to a .env file) and try again"
	case errors.Is(err, ErrQuotaExceeded):
		return "your API quota is exhausted; wait a while or raise your plan limits"
	case errors.Is(err, ErrEmptyContent), errors.Is(err, ErrIncompleteContent):
		return "the model returned an unusable body; re-run the generation"
	case err != nil:
		return "check your API key and network connection, then try again"
	default:
		return ""
	}
}
