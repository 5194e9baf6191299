package gemini

import (
	"errors"
	"strings"

	"google.golang.org/genai"
)

// ErrorKind classifies a provider error into the categories the pipeline
// reacts to. Classification is structured-first (HTTP code on the API error),
// with message substrings only as a fallback for errors that arrive as bare
// strings.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindAuth covers invalid or rejected API keys.
	KindAuth
	// KindPermission means the caller lacks access to the model.
	KindPermission
	// KindQuota means the usage allowance is depleted or rate limited.
	KindQuota
	// KindRetryable marks transient server-side failures.
	KindRetryable
	// KindInvalidRequest marks malformed requests, not worth retrying.
	KindInvalidRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindPermission:
		return "permission"
	case KindQuota:
		return "quota"
	case KindRetryable:
		return "retryable"
	case KindInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

// Classify maps a provider error to an ErrorKind. This is the single place
// provider error shapes are interpreted; callers must never match on message
// text themselves.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401:
			return KindAuth
		case 403:
			return KindPermission
		case 429:
			return KindQuota
		case 500, 502, 503, 504:
			return KindRetryable
		case 400:
			if containsAny(apiErr.Message, "api key not valid", "api_key_invalid") {
				return KindAuth
			}
			return KindInvalidRequest
		}
	}

	// Fallback: some transports surface only a flat error string.
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "resource_exhausted", "quota", "rate limit", "429"):
		return KindQuota
	case containsAny(msg, "unavailable", "overloaded", "internal error", "deadline exceeded", "503", "500"):
		return KindRetryable
	case containsAny(msg, "permission_denied", "permission denied", "403"):
		return KindPermission
	case containsAny(msg, "api key not valid", "api_key_invalid", "unauthenticated", "401"):
		return KindAuth
	case containsAny(msg, "invalid_argument", "400"):
		return KindInvalidRequest
	default:
		return KindUnknown
	}
}

func containsAny(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
