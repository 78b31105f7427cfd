package notification

import (
	"context"
	"errors"
	"testing"

	"leadcapture_backend/internal/email"
	"leadcapture_backend/internal/events"
	"leadcapture_backend/internal/scheduler"
	"leadcapture_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeEnqueuer struct {
	payloads []scheduler.LeadNotificationPayload
	err      error
}

func (f *fakeEnqueuer) EnqueueLeadNotification(_ context.Context, payload scheduler.LeadNotificationPayload) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

type fakeSender struct {
	sent []email.NewLeadEmailData
	to   []string
	err  error
}

func (f *fakeSender) SendNewLeadEmail(_ context.Context, toEmail string, data email.NewLeadEmailData) error {
	f.to = append(f.to, toEmail)
	f.sent = append(f.sent, data)
	return f.err
}

func publishCreated(t *testing.T, bus events.Bus, tenantID uuid.UUID) {
	t.Helper()
	err := bus.PublishSync(context.Background(), events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		TenantID:  tenantID,
		Name:      "Ana Lima",
		Email:     "ana@example.com",
		Source:    "form",
		Score:     80,
		Category:  "hot",
		Capital:   200_000,
	})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
}

func TestSubscriberEnqueuesOnLeadCreated(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	enqueuer := &fakeEnqueuer{}
	NewSubscriber(enqueuer, nil, "", log).Register(bus)

	tenantID := uuid.New()
	publishCreated(t, bus, tenantID)

	if len(enqueuer.payloads) != 1 {
		t.Fatalf("enqueued %d payloads, want 1", len(enqueuer.payloads))
	}
	p := enqueuer.payloads[0]
	if p.TenantID != tenantID.String() || p.Score != 80 || p.Category != "hot" || p.CapitalAvailable != 200_000 {
		t.Errorf("payload = %+v", p)
	}
}

func TestSubscriberSwallowsEnqueueFailure(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	NewSubscriber(&fakeEnqueuer{err: errors.New("redis down")}, nil, "", log).Register(bus)

	// PublishSync surfaces handler errors; the subscriber must not return one.
	publishCreated(t, bus, uuid.New())
}

func TestSubscriberSendsInlineWithoutQueue(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	sender := &fakeSender{}
	NewSubscriber(nil, sender, "sales@example.com", log).Register(bus)

	publishCreated(t, bus, uuid.New())

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	if sender.to[0] != "sales@example.com" {
		t.Errorf("recipient = %q", sender.to[0])
	}
	data := sender.sent[0]
	if data.LeadName != "Ana Lima" || data.Category != "hot" {
		t.Errorf("email data = %+v", data)
	}
	if data.CapitalFormatted != "R$ 200.000" {
		t.Errorf("CapitalFormatted = %q, want R$ 200.000", data.CapitalFormatted)
	}
}

func TestSubscriberSwallowsInlineSendFailure(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	NewSubscriber(nil, &fakeSender{err: errors.New("smtp timeout")}, "sales@example.com", log).Register(bus)

	publishCreated(t, bus, uuid.New())
}
