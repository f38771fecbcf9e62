package advisor

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want ErrKind
	}{
		{"api error: Incorrect API key provided", ErrKindCredential},
		{"api request failed with status 401: unauthorized", ErrKindCredential},
		{"api error: You exceeded your current quota", ErrKindQuota},
		{"api request failed with status 429: rate limit reached", ErrKindQuota},
		{"billing hard limit reached", ErrKindQuota},
		{"context deadline exceeded (Client.Timeout exceeded)", ErrKindQuota},
		{"connection refused", ErrKindTransient},
		{"no completion returned", ErrKindTransient},
	}

	for _, tt := range tests {
		if got := Classify(errors.New(tt.msg)); got != tt.want {
			t.Errorf("Classify(%q) = %d, want %d", tt.msg, got, tt.want)
		}
	}
}

func TestFallback_FixedMessages(t *testing.T) {
	if Fallback(ErrKindCredential) != MsgCredential {
		t.Error("credential kind should map to credential message")
	}
	if Fallback(ErrKindQuota) != MsgOverloaded {
		t.Error("quota kind should map to overload message")
	}
	if Fallback(ErrKindTransient) != MsgTryRephrasing {
		t.Error("transient kind should map to rephrase message")
	}
}
