package email

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResendSender(t *testing.T, status int, body string) *ResendSender {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	s := NewResendSender("re_test", "Club <noreply@example.com>", zap.NewNop())
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	s.client.BaseURL = base
	return s
}

func testRequest() SendRequest {
	return SendRequest{To: []string{"ada@example.com"}, Subject: "Hello", HTML: "<p>Hi</p>", Kind: "welcome"}
}

func TestResendSender_Send(t *testing.T) {
	s := newTestResendSender(t, http.StatusOK, `{"id":"msg_123"}`)

	res, err := s.Send(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "msg_123", res.MessageID)
}

func TestResendSender_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		rejected bool
	}{
		{"validation error", http.StatusUnprocessableEntity, `{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`, true},
		{"forbidden sender", http.StatusForbidden, `{"message":"domain not verified"}`, true},
		{"rate limited", http.StatusTooManyRequests, `{"message":"slow down"}`, false},
		{"provider outage", http.StatusInternalServerError, `{"message":"internal"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestResendSender(t, tt.status, tt.body)

			_, err := s.Send(context.Background(), testRequest())
			require.Error(t, err)
			assert.Equal(t, tt.rejected, errors.Is(err, ErrRejected))
		})
	}
}

func TestResendSender_RateLimitKeepsSDKError(t *testing.T) {
	s := newTestResendSender(t, http.StatusTooManyRequests, `{"message":"slow down"}`)

	_, err := s.Send(context.Background(), testRequest())
	assert.ErrorIs(t, err, resend.ErrRateLimit)
}

