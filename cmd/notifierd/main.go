package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/config"
	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/logging"
	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/mail"
	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/metrics"
	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/notify"
	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/report"
	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/worker"
)

func main() {
	// 1. Define ALL flags at the top
	cfgFile := flag.String("config", "", "Path to config file")
	timeout := flag.Duration("deliver-timeout", 0, "Per-request delivery timeout (overrides config)")

	// Send-test mode: deliver one test notification directly and exit
	sendTest := flag.String("send-test", "", "Send a test notification to this email address and exit")
	testPhone := flag.String("test-phone", "", "Phone number for send-test SMS fallback")

	// 2. Parse ONCE
	flag.Parse()

	cfg := config.DefaultConfig()
	// load from file if provided (overrides defaults)
	if *cfgFile != "" {
		c, err := config.LoadConfigFromFile(*cfgFile)
		if err != nil {
			log.Fatalf("failed loading config: %v", err)
		}
		cfg = c
	}

	// apply env var overrides (overrides file/defaults)
	if err := config.ApplyEnvOverrides(cfg); err != nil {
		log.Fatalf("invalid environment configuration: %v", err)
	}

	// CLI flags should have highest precedence (override env/file/defaults)
	if *timeout > 0 {
		cfg.DeliverTimeout = *timeout
	}

	// initialize logging
	cleanup := initLogging()
	defer cleanup()

	for _, w := range cfg.Validate() {
		logging.Get().Warn().Msg("config: " + w)
	}

	// start metrics & influx if configured
	initMetricsAndInflux(cfg)

	ctx := context.Background()
	dispatcher, closeReporter := buildDispatcherOrFatal(ctx, cfg)
	defer closeReporter()

	// 3. Check for send-test mode before touching the queue
	if *sendTest != "" {
		runSendTest(ctx, dispatcher, cfg, *sendTest, *testPhone)
		return
	}

	startWorkerAndWait(ctx, cfg, dispatcher)
}

// buildDispatcherOrFatal wires the delivery chain from config. The returned
// closer releases the Postgres pool when one was opened.
func buildDispatcherOrFatal(ctx context.Context, cfg *config.Config) (*notify.Dispatcher, func()) {
	transport := mail.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, mail.TLSMode(cfg.SMTPTLSMode))

	var reporter notify.Reporter = report.Log{}
	closer := func() {}
	if cfg.PostgresDSN != "" {
		pg, err := report.NewPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			logging.Get().Fatal().Err(err).Msg("failed to open outcome store")
		}
		reporter = report.Multi{report.Log{}, pg}
		closer = pg.Close
	}

	return notify.NewDispatcher(&notify.Relay{}, transport, reporter), closer
}

// runSendTest delivers one test notification synchronously and prints the trail
func runSendTest(ctx context.Context, d *notify.Dispatcher, cfg *config.Config, email, phone string) {
	ctx, cancel := context.WithTimeout(ctx, cfg.DeliverTimeout)
	defer cancel()

	res, err := d.Deliver(ctx,
		notify.RecipientProfile{Email: email, Phone: phone},
		notify.Payload{
			Title:    "BuildMate test notification",
			Body:     "If you can read this, notification delivery is working.",
			Category: notify.CategoryTest,
		})
	if err != nil {
		logging.Get().Fatal().Err(err).Msg("send-test rejected")
	}
	fmt.Printf("delivery %s succeeded=%v\n%s\n", res.ID, res.Succeeded, res.Trail())
}

// initLogging initializes log subsystem from env and returns a cleanup func
func initLogging() func() {
	logLevel := os.Getenv("BUILDMATE_LOG_LEVEL")
	logFile := os.Getenv("BUILDMATE_LOG_FILE")
	cleanup, err := logging.Init(logFile, logLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	return cleanup
}

// initMetricsAndInflux starts optional metrics server and Influx pusher
func initMetricsAndInflux(cfg *config.Config) {
	if cfg.MetricsEnabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.PromHandler())
			mux.Handle("/status", metrics.JSONHandler())
			addr := fmt.Sprintf(":%d", cfg.MetricsPort)
			logging.Get().Info().Str("addr", addr).Msg("starting metrics server")
			_ = http.ListenAndServe(addr, mux)
		}()
	}
	if cfg.InfluxURL != "" {
		go metrics.StartInfluxPusher(context.Background(), cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket, cfg.InfluxInterval)
	}
}

// startWorkerAndWait connects to NATS, starts the worker and waits for shutdown
func startWorkerAndWait(ctx context.Context, cfg *config.Config, dispatcher *notify.Dispatcher) {
	nc, err := nats.Connect(cfg.NATSURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		logging.Get().Fatal().Err(err).Str("url", cfg.NATSURL).Msg("failed to connect to queue")
	}
	defer nc.Close()

	w := worker.New(dispatcher, cfg.DeliverTimeout)
	if err := w.Start(nc); err != nil {
		logging.Get().Fatal().Err(err).Msg("failed to start delivery worker")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	// Graceful shutdown: give in-flight deliveries a chance to finish
	logging.Get().Info().Msg("shutdown signal received, draining delivery worker")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.DeliverTimeout)
	defer cancel()
	if err := w.Stop(shutdownCtx); err != nil {
		logging.Get().Warn().Err(err).Msg("worker did not drain cleanly")
	}
}
