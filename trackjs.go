// Package trackjs is a client for the TrackJS error capture service. A
// Reporter binds an account's credentials and scope once and submits one
// report per call, retrying on the service's rolling rate limit.
package trackjs

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// AgentVersion is this agent's version, sent in the capture URL and
	// payload so the service can track client adoption.
	AgentVersion = "3.10.4"

	agentPlatform = "browser"
	entryDirect   = "direct"

	defaultCaptureBaseURL = "https://capture.trackjs.com/capture"

	// The capture endpoint enforces a rolling per-minute quota. Retrying
	// once per second for up to a minute gives a throttled request a
	// chance to land in the next window.
	defaultMaxAttempts = 60
	defaultRetryDelay  = time.Second

	timestampFormat = "2006-01-02T15:04:05.000Z07:00"
)

// Severity classifies the importance of a report. The values are the wire
// strings the capture service accepts.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
	SeverityInfo  Severity = "info"
	SeverityDebug Severity = "debug"
	SeverityLog   Severity = "log"
)

func (s Severity) validate() error {
	switch s {
	case SeverityError, SeverityWarn, SeverityInfo, SeverityDebug, SeverityLog:
		return nil
	default:
		return errors.Errorf("invalid severity '%s'", string(s))
	}
}

// ParseSeverity converts a severity name to its wire value. It accepts the
// wire strings themselves plus the common long forms ("warning").
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(name) {
	case "error":
		return SeverityError, nil
	case "warn", "warning":
		return SeverityWarn, nil
	case "info":
		return SeverityInfo, nil
	case "debug":
		return SeverityDebug, nil
	case "log":
		return SeverityLog, nil
	default:
		return "", errors.Errorf("unrecognized severity '%s'", name)
	}
}
