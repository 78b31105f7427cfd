package main

import (
	"os"
	"os/signal"
	"syscall"

	"leadcapture_backend/internal/email"
	"leadcapture_backend/internal/scheduler"
	"leadcapture_backend/platform/config"
	"leadcapture_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.AsynqQueueName)

	var sender email.Sender
	if cfg.EmailEnabled {
		sender = email.NewSMTPSender(
			cfg.SMTPHost, cfg.SMTPPort,
			cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.EmailFromAddress, cfg.EmailFromName,
		)
	} else {
		log.Warn("EMAIL_ENABLED is false; notifications will be dropped")
	}

	worker, err := scheduler.NewWorker(cfg, sender, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := worker.Run(); err != nil {
			log.Error("worker stopped", "error", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("shutdown signal received, stopping worker")
	worker.Shutdown()
	<-done
}
