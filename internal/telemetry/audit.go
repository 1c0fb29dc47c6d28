package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"social-service/internal/events"
	"social-service/internal/observability"
)

const AuditRoutingKey = "social-service.audit"

const auditSchemaVersion = 1

const (
	LevelInfo  = "INFO"
	LevelError = "ERROR"
)

// Envelope matches the log-collector audit_log schema.
type Envelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventID       string       `json:"event_id"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	TraceID       string       `json:"trace_id,omitempty"`
	UserID        *int64       `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

// AuditPayload is the payload for audit_log events.
type AuditPayload struct {
	Level string `json:"level"`
	Text  string `json:"text"`
	Code  string `json:"code,omitempty"`
}

type AuditEmitter struct {
	publisher   events.Publisher
	service     string
	environment string
	now         func() time.Time
}

func NewAuditEmitter(publisher events.Publisher, service, environment string) *AuditEmitter {
	return &AuditEmitter{publisher: publisher, service: service, environment: environment, now: time.Now}
}

// EmitAudit publishes an audit envelope; failures are logged and never surface to the caller.
func (e *AuditEmitter) EmitAudit(ctx context.Context, level, text, code, requestID string, userID *int64) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := Envelope{
		SchemaVersion: auditSchemaVersion,
		EventID:       uuid.NewString(),
		EventType:     "audit_log",
		OccurredAt:    e.now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Payload: AuditPayload{
			Level: level,
			Text:  text,
			Code:  code,
		},
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		envelope.TraceID = sc.TraceID().String()
	}

	if err := e.publisher.Publish(ctx, AuditRoutingKey, envelope); err != nil {
		log.Printf("warning: failed to publish audit log: %v", err)
		return
	}
	observability.IncAuditEventPublished(level)
}
