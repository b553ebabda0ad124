package trackjs

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Credentials identify the account and application a report belongs to.
// They are never validated locally; the capture service is the authority.
type Credentials struct {
	// Token is the account's capture token.
	Token string
	// Application distinguishes projects under one account.
	Application string
	// CodeVersion is the deployed code revision, typically a commit hash.
	CodeVersion string
}

// Scope describes where in the application reports originate. Every field
// is optional; zero values are sent as-is.
type Scope struct {
	SessionID      string
	UserID         string
	StartTime      time.Time
	OriginalURL    string
	Referrer       string
	UserAgent      string
	ViewportHeight int
	ViewportWidth  int
}

// ReporterOptions configure a Reporter. Zero values fall back to the
// production capture endpoint and the service's documented retry budget.
type ReporterOptions struct {
	Credentials Credentials
	Scope       Scope

	// BaseURL overrides the capture endpoint. Intended for tests.
	BaseURL string
	// MaxAttempts bounds the total tries for rate limited requests.
	// Defaults to 60.
	MaxAttempts int
	// RetryDelay is the fixed pause between rate limited attempts.
	// Defaults to one second.
	RetryDelay time.Duration
	// HTTPClient overrides the client used for capture requests. The
	// default client imposes no timeout; bound calls with the context.
	HTTPClient *http.Client
}

// Validate checks required options and fills defaults for the rest.
func (o *ReporterOptions) Validate() error {
	if o.Credentials.Token == "" {
		return errors.New("capture token must be set")
	}
	if o.BaseURL == "" {
		o.BaseURL = defaultCaptureBaseURL
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = defaultRetryDelay
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	return nil
}

// Reporter submits reports to the capture service. It binds credentials and
// scope once at construction; all bound state is read-only afterward, so a
// single Reporter is safe for concurrent use.
type Reporter struct {
	creds   Credentials
	scope   Scope
	baseURL string
	client  *http.Client
	retry   utility.RetryOptions
	now     func() time.Time
}

// NewReporter returns a Reporter bound to the given credentials and scope.
func NewReporter(opts ReporterOptions) (*Reporter, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid reporter options")
	}
	return &Reporter{
		creds:   opts.Credentials,
		scope:   opts.Scope,
		baseURL: opts.BaseURL,
		client:  opts.HTTPClient,
		retry: utility.RetryOptions{
			MaxAttempts: opts.MaxAttempts,
			MinDelay:    opts.RetryDelay,
			MaxDelay:    opts.RetryDelay,
		},
		now: time.Now,
	}, nil
}

// Report submits one report at the given severity and returns its
// correlation identifier. The identifier is derived before transmission, so
// a failed submission still reports which identifier it would have carried.
//
// The service silently drops payloads over its size limit and requests past
// its throttle without a distinguishing status, so such drops are
// indistinguishable from success here.
func (r *Reporter) Report(ctx context.Context, severity Severity, message string, metadata map[string]string) (uuid.UUID, error) {
	if err := severity.validate(); err != nil {
		return uuid.Nil, err
	}

	now := r.now()
	id := correlationID(r.creds, severity, message, metadata, now)
	body, err := json.Marshal(newCapturePayload(r.creds, r.scope, severity, message, metadata, id, now))
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "encoding capture payload")
	}

	if err := r.send(ctx, body); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Error submits an error-severity report.
func (r *Reporter) Error(ctx context.Context, message string, metadata map[string]string) (uuid.UUID, error) {
	return r.Report(ctx, SeverityError, message, metadata)
}

// Warn submits a warning-severity report.
func (r *Reporter) Warn(ctx context.Context, message string, metadata map[string]string) (uuid.UUID, error) {
	return r.Report(ctx, SeverityWarn, message, metadata)
}

// Info submits an info-severity report.
func (r *Reporter) Info(ctx context.Context, message string, metadata map[string]string) (uuid.UUID, error) {
	return r.Report(ctx, SeverityInfo, message, metadata)
}

// Debug submits a debug-severity report.
func (r *Reporter) Debug(ctx context.Context, message string, metadata map[string]string) (uuid.UUID, error) {
	return r.Report(ctx, SeverityDebug, message, metadata)
}

// Log submits a log-severity report.
func (r *Reporter) Log(ctx context.Context, message string, metadata map[string]string) (uuid.UUID, error) {
	return r.Report(ctx, SeverityLog, message, metadata)
}
