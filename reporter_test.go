package trackjs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method      string
	contentType string
	query       map[string]string
	payload     capturePayload
}

func newRecordingServer(t *testing.T, recorded *[]recordedRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload capturePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		query := map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		*recorded = append(*recorded, recordedRequest{
			method:      r.Method,
			contentType: r.Header.Get("Content-Type"),
			query:       query,
			payload:     payload,
		})
		w.WriteHeader(http.StatusOK)
	}))
}

func TestReportSendsPayloadAndReturnsIdentifier(t *testing.T) {
	var recorded []recordedRequest
	server := newRecordingServer(t, &recorded)
	defer server.Close()

	reporter, err := NewReporter(ReporterOptions{
		Credentials: Credentials{Token: "abc123", Application: "checkout", CodeVersion: "4f5c9a1"},
		Scope:       Scope{SessionID: "session-1", UserID: "user-1"},
		BaseURL:     server.URL,
	})
	require.NoError(t, err)

	id, err := reporter.Report(context.Background(), SeverityError, "Auth failed", map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	require.Len(t, recorded, 1)
	req := recorded[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "application/json", req.contentType)
	assert.Equal(t, "abc123", req.query["token"])
	assert.Equal(t, AgentVersion, req.query["v"])

	assert.Equal(t, "Auth failed", req.payload.Message)
	assert.Equal(t, id.String(), req.payload.Customer.CorrelationID)
	assert.Equal(t, "abc123", req.payload.Customer.Token)
	assert.Equal(t, "session-1", req.payload.Customer.SessionID)
	require.Len(t, req.payload.Metadata, 1)
	assert.Equal(t, metadataEntry{Key: "k", Value: "v"}, req.payload.Metadata[0])
}

func TestSeverityHelpersSetConsoleSeverity(t *testing.T) {
	var recorded []recordedRequest
	server := newRecordingServer(t, &recorded)
	defer server.Close()

	reporter, err := NewReporter(ReporterOptions{
		Credentials: Credentials{Token: "abc123"},
		BaseURL:     server.URL,
	})
	require.NoError(t, err)

	ctx := context.Background()
	calls := []struct {
		op       func(context.Context, string, map[string]string) (uuid.UUID, error)
		severity string
	}{
		{reporter.Error, "error"},
		{reporter.Warn, "warn"},
		{reporter.Info, "info"},
		{reporter.Debug, "debug"},
		{reporter.Log, "log"},
	}
	for _, call := range calls {
		_, err := call.op(ctx, "msg", nil)
		require.NoError(t, err)
	}

	require.Len(t, recorded, len(calls))
	for i, call := range calls {
		console := recorded[i].payload.Console
		require.Len(t, console, 1)
		assert.Equal(t, call.severity, console[0].Severity)
	}
}

func TestReportRejectsUnknownSeverity(t *testing.T) {
	reporter, err := NewReporter(ReporterOptions{Credentials: Credentials{Token: "abc123"}})
	require.NoError(t, err)

	_, err = reporter.Report(context.Background(), Severity("fatal"), "msg", nil)
	assert.Error(t, err)
}

func TestNewReporterRequiresToken(t *testing.T) {
	_, err := NewReporter(ReporterOptions{})
	assert.Error(t, err)
}

func TestReporterOptionsDefaults(t *testing.T) {
	opts := ReporterOptions{Credentials: Credentials{Token: "abc123"}}
	require.NoError(t, opts.Validate())

	assert.Equal(t, defaultCaptureBaseURL, opts.BaseURL)
	assert.Equal(t, defaultMaxAttempts, opts.MaxAttempts)
	assert.Equal(t, time.Second, opts.RetryDelay)
	assert.NotNil(t, opts.HTTPClient)
}

func TestReportSurfacesClassifiedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	reporter, err := NewReporter(ReporterOptions{
		Credentials: Credentials{Token: "abc123"},
		BaseURL:     server.URL,
	})
	require.NoError(t, err)

	id, err := reporter.Report(context.Background(), SeverityError, "msg", nil)
	assert.Equal(t, uuid.Nil, id)
	require.Error(t, err)
	assert.False(t, IsRateLimited(err))
	assert.False(t, IsRetriesExhausted(err))
}

func TestParseSeverity(t *testing.T) {
	for name, expected := range map[string]Severity{
		"error":   SeverityError,
		"ERROR":   SeverityError,
		"warn":    SeverityWarn,
		"warning": SeverityWarn,
		"info":    SeverityInfo,
		"debug":   SeverityDebug,
		"log":     SeverityLog,
	} {
		severity, err := ParseSeverity(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, severity, name)
	}

	_, err := ParseSeverity("fatal")
	assert.Error(t, err)
}
