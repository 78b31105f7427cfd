package scheduler

import (
	"context"
	"fmt"

	"leadcapture_backend/internal/email"
	"leadcapture_backend/platform/config"
	"leadcapture_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// WorkerConfig combines the config surfaces the worker needs.
type WorkerConfig interface {
	config.RedisConfig
	config.EmailConfig
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sender email.Sender
	notify string
	log    *logger.Logger
}

func NewWorker(cfg WorkerConfig, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		sender: sender,
		notify: cfg.GetNotifyAddress(),
		log:    log,
	}

	mux.HandleFunc(TaskLeadNotification, w.handleLeadNotification)

	return w, nil
}

// Run blocks processing tasks until Shutdown.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleLeadNotification(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadNotificationPayload(task)
	if err != nil {
		return fmt.Errorf("parse lead notification payload: %w", err)
	}

	if w.sender == nil || w.notify == "" {
		w.log.Debug("email delivery disabled, dropping lead notification", "lead_id", payload.LeadID)
		return nil
	}

	err = w.sender.SendNewLeadEmail(ctx, w.notify, email.NewLeadEmailData{
		LeadName:         payload.Name,
		LeadEmail:        payload.Email,
		Source:           payload.Source,
		Score:            payload.Score,
		Category:         payload.Category,
		CapitalFormatted: email.FormatCurrencyBRL(payload.CapitalAvailable),
	})
	if err != nil {
		return fmt.Errorf("send new lead email: %w", err)
	}

	w.log.Info("lead notification sent",
		"lead_id", payload.LeadID,
		"tenant_id", payload.TenantID,
		"category", payload.Category,
	)
	return nil
}
