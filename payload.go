package trackjs

import (
	"time"

	"github.com/google/uuid"
)

// capturePayload is the JSON document the capture endpoint accepts. The
// nav, network, and visitor telemetry categories plus the stack, url, file,
// and bind fields are part of the schema but not collected by this agent;
// they are emitted as empty placeholders so the service accepts the
// payload.
type capturePayload struct {
	AgentPlatform string          `json:"agentPlatform"`
	Version       string          `json:"version"`
	Console       []consoleEntry  `json:"console"`
	Customer      customerInfo    `json:"customer"`
	Entry         string          `json:"entry"`
	Environment   environmentInfo `json:"environment"`
	Message       string          `json:"message"`
	Metadata      []metadataEntry `json:"metadata"`
	Nav           []interface{}   `json:"nav"`
	Network       []interface{}   `json:"network"`
	URL           string          `json:"url"`
	Stack         string          `json:"stack"`
	Throttled     int             `json:"throttled"`
	Timestamp     string          `json:"timestamp"`
	Visitor       []interface{}   `json:"visitor"`
	BindStack     *string         `json:"bindStack"`
	BindTime      *string         `json:"bindTime"`
	File          string          `json:"file"`
}

type consoleEntry struct {
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	Timestamp string `json:"timestamp"`
}

type customerInfo struct {
	Application   string `json:"application"`
	CorrelationID string `json:"correlationId"`
	SessionID     string `json:"sessionId"`
	Token         string `json:"token"`
	UserID        string `json:"userId"`
	Version       string `json:"version"`
}

type environmentInfo struct {
	Age            int64             `json:"age"`
	Dependencies   map[string]string `json:"dependencies"`
	OriginalURL    string            `json:"originalUrl"`
	Referrer       string            `json:"referrer"`
	UserAgent      string            `json:"userAgent"`
	ViewportHeight int               `json:"viewportHeight"`
	ViewportWidth  int               `json:"viewportWidth"`
}

type metadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// newCapturePayload maps one report onto the wire schema. Pure function:
// the same inputs always produce the same document.
func newCapturePayload(creds Credentials, scope Scope, severity Severity, message string, metadata map[string]string, id uuid.UUID, now time.Time) capturePayload {
	timestamp := now.UTC().Format(timestampFormat)

	var age int64
	if !scope.StartTime.IsZero() {
		age = now.Sub(scope.StartTime).Milliseconds()
	}

	return capturePayload{
		AgentPlatform: agentPlatform,
		Version:       AgentVersion,
		Console: []consoleEntry{{
			Message:   message,
			Severity:  string(severity),
			Timestamp: timestamp,
		}},
		Customer: customerInfo{
			Application:   creds.Application,
			CorrelationID: id.String(),
			SessionID:     scope.SessionID,
			Token:         creds.Token,
			UserID:        scope.UserID,
			Version:       creds.CodeVersion,
		},
		Entry: entryDirect,
		Environment: environmentInfo{
			Age:            age,
			Dependencies:   map[string]string{},
			OriginalURL:    scope.OriginalURL,
			Referrer:       scope.Referrer,
			UserAgent:      scope.UserAgent,
			ViewportHeight: scope.ViewportHeight,
			ViewportWidth:  scope.ViewportWidth,
		},
		Message:   message,
		Metadata:  sortedMetadata(metadata),
		Nav:       []interface{}{},
		Network:   []interface{}{},
		Timestamp: timestamp,
		Visitor:   []interface{}{},
	}
}

func sortedMetadata(metadata map[string]string) []metadataEntry {
	entries := make([]metadataEntry, 0, len(metadata))
	for _, k := range sortedKeys(metadata) {
		entries = append(entries, metadataEntry{Key: k, Value: metadata[k]})
	}
	return entries
}
