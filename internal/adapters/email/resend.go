package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ErrRejected marks a message the provider refused as invalid. Sending it
// again cannot succeed.
var ErrRejected = errors.New("email rejected by provider")

// resendTimeout bounds one API call.
const resendTimeout = 10 * time.Second

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	log    *zap.Logger
}

// NewResendSender creates a new ResendSender with the given API key and default from address.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
// POST: Returns a ready-to-use sender
func NewResendSender(apiKey, from string, log *zap.Logger) *ResendSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResendSender{
		client: resend.NewCustomClient(&http.Client{
			Timeout:   resendTimeout,
			Transport: statusTransport{base: http.DefaultTransport},
		}, apiKey),
		from:   from,
		log:    log,
	}
}

func (s *ResendSender) params(req SendRequest) *resend.SendEmailRequest {
	from := req.From
	if from == "" {
		from = s.from
	}
	p := &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
	if req.ReplyTo != "" {
		p.ReplyTo = req.ReplyTo
	}
	return p
}

// Send sends a single email via Resend.
// PRE: req has at least one recipient and a subject
// POST: Email is queued for delivery; returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	ctx, status := withStatusRecorder(ctx)
	sent, err := s.client.Emails.SendWithContext(ctx, s.params(req))
	if err != nil {
		s.log.Error("resend_send_failed", zap.Error(err), zap.Strings("to", req.To),
			zap.String("kind", req.Kind), zap.Int("status", status.code))
		if rejected(err, status.code) {
			return SendResult{}, fmt.Errorf("resend send failed: %w: %w", ErrRejected, err)
		}
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}

	s.log.Info("resend_sent", zap.String("message_id", sent.Id), zap.Strings("to", req.To), zap.String("kind", req.Kind))
	return SendResult{
		MessageID: sent.Id,
		SentAt:    time.Now(),
	}, nil
}

// rejected reports whether a failed call was refused for its content: a 4xx
// other than 429, or a request the client would not build.
func rejected(err error, status int) bool {
	var missing *resend.MissingRequiredFieldsError
	if errors.As(err, &missing) {
		return true
	}
	if errors.Is(err, resend.ErrRateLimit) {
		return false
	}
	return status >= 400 && status < 500 && status != http.StatusTooManyRequests
}

type statusRecorderKey struct{}

type statusRecorder struct{ code int }

func withStatusRecorder(ctx context.Context) (context.Context, *statusRecorder) {
	rec := &statusRecorder{}
	return context.WithValue(ctx, statusRecorderKey{}, rec), rec
}

// statusTransport stores the response status in the request's recorder, since
// the Resend client reports most API errors without it.
type statusTransport struct {
	base http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if resp != nil {
		if rec, ok := req.Context().Value(statusRecorderKey{}).(*statusRecorder); ok {
			rec.code = resp.StatusCode
		}
	}
	return resp, err
}
