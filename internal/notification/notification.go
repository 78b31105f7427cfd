// Package notification turns lead events into email notifications. With a
// queue configured delivery runs in the worker process; without one the
// subscriber sends inline. Either way a delivery failure is logged and
// swallowed so the intake pipeline never fails because of notifications.
package notification

import (
	"context"

	"leadcapture_backend/internal/email"
	"leadcapture_backend/internal/events"
	"leadcapture_backend/internal/scheduler"
	"leadcapture_backend/platform/logger"
)

type Subscriber struct {
	enqueuer   scheduler.NotificationEnqueuer
	sender     email.Sender
	notifyAddr string
	log        *logger.Logger
}

// NewSubscriber builds a subscriber that enqueues through enqueuer when it is
// non-nil, and falls back to sending through sender otherwise. Both may be
// nil, in which case lead events are dropped.
func NewSubscriber(enqueuer scheduler.NotificationEnqueuer, sender email.Sender, notifyAddr string, log *logger.Logger) *Subscriber {
	return &Subscriber{enqueuer: enqueuer, sender: sender, notifyAddr: notifyAddr, log: log}
}

// Register subscribes to lead creation events.
func (s *Subscriber) Register(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(s.onLeadCreated))
}

func (s *Subscriber) onLeadCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(events.LeadCreated)
	if !ok {
		return nil
	}

	if s.enqueuer != nil {
		err := s.enqueuer.EnqueueLeadNotification(ctx, scheduler.LeadNotificationPayload{
			LeadID:           created.LeadID.String(),
			TenantID:         created.TenantID.String(),
			Name:             created.Name,
			Email:            created.Email,
			Source:           created.Source,
			Score:            created.Score,
			Category:         created.Category,
			CapitalAvailable: created.Capital,
		})
		if err != nil {
			s.log.Error("enqueue lead notification failed",
				"lead_id", created.LeadID.String(),
				"error", err.Error(),
			)
		}
		return nil
	}

	if s.sender == nil || s.notifyAddr == "" {
		return nil
	}

	err := s.sender.SendNewLeadEmail(ctx, s.notifyAddr, email.NewLeadEmailData{
		LeadName:         created.Name,
		LeadEmail:        created.Email,
		Source:           created.Source,
		Score:            created.Score,
		Category:         created.Category,
		CapitalFormatted: email.FormatCurrencyBRL(created.Capital),
	})
	if err != nil {
		s.log.Error("inline lead notification failed",
			"lead_id", created.LeadID.String(),
			"error", err.Error(),
		)
	}
	return nil
}
