package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

func TestStartNotificationWorkerSubscribesHandlers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	notifications := service.NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{})

	StartNotificationWorker(notifications, nil, dispatcher)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketCreated,
		TicketID: "TKT-001",
		ActorID:  "req-1",
	}))
	entries := logs.FilterMessage("TicketCreated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "TKT-001", entries[0].ContextMap()["ticket_id"])
}

func TestStartNotificationWorkerToleratesMissingParts(t *testing.T) {
	assert.NotPanics(t, func() {
		StartNotificationWorker(nil, nil, nil)
		StartNotificationWorker(nil, events.NewRedisPublisher(nil, "events"), nil)
	})
}
