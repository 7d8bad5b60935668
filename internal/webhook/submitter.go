// Package webhook posts embed documents to a webhook endpoint and interprets
// the response. It never retries; callers decide what to do with a
// RateLimited or TransportFailure outcome.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
	"github.com/dpshade/pocket-embed/internal/validation"
	"github.com/dpshade/pocket-embed/internal/wire"
)

// DefaultTimeout bounds a whole submission
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a response body is kept
const maxBodyBytes = 64 << 10

// Kind classifies a submission outcome
type Kind int

const (
	Delivered Kind = iota
	ClientRejected
	RateLimited
	TransportFailure
)

func (k Kind) String() string {
	switch k {
	case Delivered:
		return "delivered"
	case ClientRejected:
		return "client_rejected"
	case RateLimited:
		return "rate_limited"
	case TransportFailure:
		return "transport_failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the interpreted result of one submission
type Outcome struct {
	Kind       Kind
	StatusCode int
	Body       string

	// Message is the platform's error message, when the body carried one
	Message string

	// RetryAfterRaw is the Retry-After header as received
	RetryAfterRaw string
	RetryAfter    time.Duration

	Cause error
}

// Delivered reports whether the platform accepted the message
func (o *Outcome) Delivered() bool {
	return o.Kind == Delivered
}

// Err converts a failed outcome to an AppError; nil when delivered
func (o *Outcome) Err() *errors.AppError {
	switch o.Kind {
	case Delivered:
		return nil
	case ClientRejected:
		msg := o.Message
		if msg == "" {
			msg = http.StatusText(o.StatusCode)
		}
		return errors.NewAppError(errors.ErrCodeClientRejected, fmt.Sprintf("Webhook rejected the message (%d): %s", o.StatusCode, msg)).
			WithDetails(o.Body).
			WithContext("status", o.StatusCode)
	case RateLimited:
		appErr := errors.NewAppError(errors.ErrCodeRateLimited, "Webhook is rate limited").
			WithContext("status", o.StatusCode).
			WithContext("retry_after", o.RetryAfterRaw)
		if o.RetryAfter > 0 {
			appErr.WithDetails(fmt.Sprintf("Retry after %s", o.RetryAfter))
		}
		return appErr
	default:
		if o.Cause != nil {
			return errors.Wrap(o.Cause, errors.ErrCodeTransportFailure, "Failed to reach webhook")
		}
		return errors.NewAppError(errors.ErrCodeTransportFailure, fmt.Sprintf("Webhook returned unexpected status %d", o.StatusCode)).
			WithDetails(o.Body).
			WithContext("status", o.StatusCode)
	}
}

// Record returns the persisted form of the outcome for history
func (o *Outcome) Record() models.DeliveryOutcome {
	if o.Delivered() {
		return models.DeliveryOutcome{Status: models.OutcomeSuccess, StatusCode: o.StatusCode}
	}
	return models.DeliveryOutcome{
		Status:     models.OutcomeFailure,
		Reason:     o.Err().Error(),
		StatusCode: o.StatusCode,
	}
}

// Submitter posts documents over HTTP
type Submitter struct {
	client    *http.Client
	logger    *slog.Logger
	userAgent string
}

type Option func(*Submitter)

// WithTimeout sets the overall request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(s *Submitter) {
		if timeout > 0 {
			s.client.Timeout = timeout
		}
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger.With("component", "webhook")
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(s *Submitter) {
		s.client = client
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(s *Submitter) {
		s.userAgent = ua
	}
}

// NewSubmitter creates a submitter on a pooled transport without retries
func NewSubmitter(options ...Option) *Submitter {
	s := &Submitter{
		client: &http.Client{
			Transport: cleanhttp.DefaultPooledTransport(),
			Timeout:   DefaultTimeout,
		},
		logger:    slog.Default().With("component", "webhook"),
		userAgent: "pocket-embed",
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Submit posts doc to webhookURL with the given profile overrides. The
// returned error is reserved for violated preconditions; anything that
// happens once the request is attempted is reported in the Outcome.
func (s *Submitter) Submit(ctx context.Context, webhookURL string, doc *wire.Document, overrides wire.Overrides) (*Outcome, error) {
	webhookURL = strings.TrimSpace(webhookURL)
	if !validation.IsValidURL(webhookURL) {
		return nil, errors.InvalidURLError("webhook_url", webhookURL)
	}
	if doc == nil || !doc.Sendable() {
		return nil, errors.ValidationError("Only a validated embed can be sent").
			WithDetails("Run the embed through Validate before sending")
	}

	body, err := doc.WithOverrides(overrides).Marshal()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.InvalidURLError("webhook_url", webhookURL)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	host := hostOf(webhookURL)
	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		s.logger.Warn("webhook request failed", "host", host, "error", err, "duration", time.Since(start))
		return &Outcome{Kind: TransportFailure, Cause: err}, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		s.logger.Warn("failed to read webhook response", "host", host, "status", resp.StatusCode, "error", err)
	}

	outcome := classify(resp, raw)
	if outcome.Delivered() {
		s.logger.Info("webhook delivered", "host", host, "status", resp.StatusCode, "duration", time.Since(start))
	} else {
		s.logger.Warn("webhook not delivered", "host", host, "status", resp.StatusCode, "outcome", outcome.Kind.String(), "message", outcome.Message)
	}
	return outcome, nil
}

// errorBody is the platform's JSON error shape
type errorBody struct {
	Message    string          `json:"message"`
	Code       int             `json:"code"`
	RetryAfter float64         `json:"retry_after"`
	Errors     json.RawMessage `json:"errors"`
}

func classify(resp *http.Response, raw []byte) *Outcome {
	o := &Outcome{StatusCode: resp.StatusCode, Body: string(raw)}

	var eb errorBody
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &eb)
	}
	o.Message = eb.Message

	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		o.Kind = Delivered
	case code == http.StatusTooManyRequests:
		o.Kind = RateLimited
		o.RetryAfterRaw = resp.Header.Get("Retry-After")
		o.RetryAfter = parseRetryAfter(o.RetryAfterRaw, time.Now())
		if o.RetryAfter == 0 && eb.RetryAfter > 0 {
			o.RetryAfter = secondsToDuration(eb.RetryAfter)
		}
	case code >= 400 && code < 500:
		o.Kind = ClientRejected
	default:
		o.Kind = TransportFailure
	}
	return o
}

// parseRetryAfter accepts delta-seconds (fractions allowed) or an HTTP date
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return secondsToDuration(secs)
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func secondsToDuration(secs float64) time.Duration {
	if secs <= 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
