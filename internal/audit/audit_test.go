package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"

	"fieldtrack.org/internal/auth"
)

func TestLogEventCarriesIdentityAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	SetLoggerForTests(l)
	t.Cleanup(func() { SetLoggerForTests(nil) })

	ctx := auth.ContextWithIdentity(context.Background(), auth.Identity{
		UserID:         "u-1",
		Role:           auth.RoleAdmin,
		OrganizationID: "org-1",
	})
	LogEvent(ctx, Event{
		Action:    "report.export",
		RequestID: "req-42",
		Fields:    map[string]interface{}{"report": "regional-summary"},
	})

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal audit line: %v", err)
	}
	if line["action"] != "report.export" || line["audit"] != true {
		t.Fatalf("unexpected line: %v", line)
	}
	if line["actor_id"] != "u-1" || line["actor_role"] != "ADMIN" || line["actor_org"] != "org-1" {
		t.Fatalf("identity not enriched: %v", line)
	}
	if line["request_id"] != "req-42" || line["report"] != "regional-summary" {
		t.Fatalf("fields missing: %v", line)
	}
}

func TestLogEventWithoutIdentity(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	SetLoggerForTests(l)
	t.Cleanup(func() { SetLoggerForTests(nil) })

	LogEvent(context.Background(), Event{Action: "auth.token_issued"})

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal audit line: %v", err)
	}
	if _, ok := line["actor_id"]; ok {
		t.Fatalf("unexpected actor on anonymous event: %v", line)
	}
}
