package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-service/internal/mocks"
	"social-service/internal/telemetry"
)

func TestEmitBuildsEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.social", "social-service", "test")

	userID := "user-1"
	publisher.On("Publish", mock.Anything, "audit.social", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(telemetry.AuditEnvelope)
		if !ok {
			return false
		}
		return envelope.SchemaVersion == 1 &&
			envelope.EventType == "audit_log" &&
			envelope.Service == "social-service" &&
			envelope.Environment == "test" &&
			envelope.RequestID == "req-1" &&
			envelope.UserID != nil && *envelope.UserID == "user-1" &&
			envelope.Payload.Action == "message_sent" &&
			envelope.Payload.Level == "info" &&
			envelope.Payload.Text == "message 1 sent"
	})).Return(nil).Once()

	emitter.Emit(context.Background(), "message_sent", "info", "message 1 sent", "req-1", &userID)

	publisher.AssertExpectations(t)
}

func TestEmitNilEmitterIsNoop(t *testing.T) {
	var emitter *telemetry.AuditEmitter
	require.NotPanics(t, func() {
		emitter.Emit(context.Background(), "noop", "info", "ignored", "req-1", nil)
	})
}

func TestEmitSwallowsPublishError(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.social", "social-service", "test")

	publisher.On("Publish", mock.Anything, "audit.social", mock.Anything).Return(assert.AnError).Once()

	require.NotPanics(t, func() {
		emitter.Emit(context.Background(), "message_sent", "info", "text", "req-1", nil)
	})
	publisher.AssertExpectations(t)
}
