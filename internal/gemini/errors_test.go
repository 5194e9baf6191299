package gemini

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestClassifyAPIErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		msg  string
		want ErrorKind
	}{
		{"unauthorized", 401, "invalid credentials", KindAuth},
		{"forbidden", 403, "caller does not have permission", KindPermission},
		{"rate limited", 429, "RESOURCE_EXHAUSTED", KindQuota},
		{"internal", 500, "internal error", KindRetryable},
		{"bad gateway", 502, "bad gateway", KindRetryable},
		{"unavailable", 503, "the model is overloaded", KindRetryable},
		{"deadline", 504, "deadline exceeded", KindRetryable},
		{"bad key via 400", 400, "API key not valid. Please pass a valid API key.", KindAuth},
		{"bad request", 400, "invalid argument: contents", KindInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := genai.APIError{Code: tt.code, Message: tt.msg}
			if got := Classify(err); got != tt.want {
				t.Errorf("Classify(code=%d) = %s, want %s", tt.code, got, tt.want)
			}
		})
	}
}

func TestClassifyWrappedAPIError(t *testing.T) {
	err := fmt.Errorf("calling model: %w", genai.APIError{Code: 429, Message: "quota exceeded"})
	if got := Classify(err); got != KindQuota {
		t.Errorf("Classify(wrapped 429) = %s, want %s", got, KindQuota)
	}
}

func TestClassifyMessageFallback(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want ErrorKind
	}{
		{"resource exhausted", "rpc error: RESOURCE_EXHAUSTED: quota exceeded for model", KindQuota},
		{"rate limit wording", "rate limit reached, retry later", KindQuota},
		{"overloaded", "the model is overloaded, try again", KindRetryable},
		{"unavailable", "UNAVAILABLE: service temporarily down", KindRetryable},
		{"permission", "PERMISSION_DENIED: model not enabled", KindPermission},
		{"bad key", "API key not valid", KindAuth},
		{"unauthenticated", "UNAUTHENTICATED: request not authorized", KindAuth},
		{"invalid argument", "INVALID_ARGUMENT: bad schema", KindInvalidRequest},
		{"unrelated", "connection reset by peer", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(errors.New(tt.msg)); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.msg, got, tt.want)
			}
		})
	}
}

func TestClassifyNil(t *testing.T) {
	if got := Classify(nil); got != KindUnknown {
		t.Errorf("Classify(nil) = %s, want %s", got, KindUnknown)
	}
}
