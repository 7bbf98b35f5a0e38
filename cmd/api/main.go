package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/safar/printshop/internal/api"
	"github.com/safar/printshop/internal/auth"
	"github.com/safar/printshop/internal/config"
	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/events"
	"github.com/safar/printshop/internal/logging"
	"github.com/safar/printshop/internal/mailer"
	"github.com/safar/printshop/internal/payment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("").Fatalf("Load config: %v", err)
	}

	log := logging.New(cfg.Env)

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	log.Info("Connected to database successfully")

	var sender mailer.Sender = mailer.LogSender{Log: log}
	if cfg.Mail.SMTPHost != "" {
		sender = mailer.NewSMTPSender(cfg.Mail)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrderStatusTopic)
		log.WithField("brokers", cfg.Kafka.Brokers).Info("Publishing order status events to Kafka")
	}
	defer publisher.Close()

	if cfg.Payment.StripeSecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set, payment endpoints will return 503")
	}

	srv := api.NewServer(
		db,
		auth.NewManager(cfg.Auth),
		payment.NewStripeGateway(cfg.Payment.StripeSecretKey),
		sender,
		publisher,
		log,
		api.Options{
			DefaultCurrency: cfg.Payment.DefaultCurrency,
			ContactInbox:    cfg.Mail.ContactInbox,
			AllowedOrigin:   cfg.Server.AllowedOrigin,
		},
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("Server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
