package llm

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestStatusError(t *testing.T) {
	cause := errors.New("upstream said no")
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusTooManyRequests, func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) }},
		{http.StatusRequestTimeout, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
		{http.StatusUnauthorized, func(err error) bool { var e *ErrRequestRejected; return errors.As(err, &e) && e.Status == 401 }},
		{http.StatusNotFound, func(err error) bool { var e *ErrRequestRejected; return errors.As(err, &e) }},
		{http.StatusBadGateway, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) && e.Status == 502 }},
		{0, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
	}

	for _, tt := range tests {
		err := statusError(tt.status, nil, cause)
		if !tt.check(err) {
			t.Errorf("status %d mapped to %T: %v", tt.status, err, err)
		}
		if !errors.Is(err, cause) {
			t.Errorf("status %d: cause not preserved", tt.status)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	header := func(v string) http.Header {
		h := http.Header{}
		h.Set("Retry-After", v)
		return h
	}

	if d := parseRetryAfter(header("12")); d != 12*time.Second {
		t.Errorf("seconds form = %s", d)
	}
	if d := parseRetryAfter(header(time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))); d < 59*time.Minute || d > time.Hour {
		t.Errorf("date form = %s", d)
	}
	for _, v := range []string{"", "soon", "-3", "0", "Mon, 01 Jan 2001 00:00:00 GMT"} {
		if d := parseRetryAfter(header(v)); d != 0 {
			t.Errorf("Retry-After %q = %s, want 0", v, d)
		}
	}
	if d := parseRetryAfter(nil); d != 0 {
		t.Errorf("nil header = %s", d)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ErrRateLimit{Err: errors.New("x")}, "rate limited: x"},
		{&ErrRateLimit{RetryAfter: 2 * time.Second, Err: errors.New("x")}, "rate limited (retry after 2s): x"},
		{&ErrProviderUnavailable{}, "LLM provider unavailable"},
		{&ErrProviderUnavailable{Status: 503, Err: errors.New("x")}, "LLM provider unavailable (HTTP 503): x"},
		{&ErrRequestRejected{Status: 400, Err: errors.New("x")}, "LLM request rejected (HTTP 400): x"},
		{&ErrMaxTokensExceeded{Content: []byte("abc")}, "LLM response truncated after 3 bytes: max tokens exceeded"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); !strings.EqualFold(got, tt.want) {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
