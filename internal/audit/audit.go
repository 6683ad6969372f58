// Package audit emits structured audit events for security-relevant actions:
// token issuance, entry creation and report exports.
package audit

import (
	"context"

	"github.com/sirupsen/logrus"

	"fieldtrack.org/internal/auth"
	"fieldtrack.org/internal/obs"
)

// Event is one audit record. Fields holds action-specific attributes.
type Event struct {
	Action    string
	RequestID string
	Fields    map[string]interface{}
}

var logger *logrus.Logger

// Logger returns the sink for audit lines, defaulting to the shared
// structured logger.
func Logger() *logrus.Logger {
	if logger == nil {
		logger = obs.Logger()
	}
	return logger
}

// SetLoggerForTests swaps the audit sink. Pass nil to restore the default.
func SetLoggerForTests(l *logrus.Logger) {
	logger = l
}

// LogEvent writes one audit line, enriched with the caller identity when the
// context carries one.
func LogEvent(ctx context.Context, ev Event) {
	fields := logrus.Fields{
		"audit":  true,
		"action": ev.Action,
	}
	if ev.RequestID != "" {
		fields["request_id"] = ev.RequestID
	}
	if id, ok := auth.IdentityFromContext(ctx); ok {
		fields["actor_id"] = id.UserID
		fields["actor_role"] = string(id.Role)
		if id.OrganizationID != "" {
			fields["actor_org"] = id.OrganizationID
		}
	}
	for k, v := range ev.Fields {
		fields[k] = v
	}
	Logger().WithFields(fields).Info("audit event")
}
