package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/pingmon/internal/alert"
	"github.com/hamed0406/pingmon/internal/config"
	"github.com/hamed0406/pingmon/internal/domain"
	"github.com/hamed0406/pingmon/internal/engine"
	"github.com/hamed0406/pingmon/internal/httpapi"
	"github.com/hamed0406/pingmon/internal/logging"
	"github.com/hamed0406/pingmon/internal/notify"
	"github.com/hamed0406/pingmon/internal/probe"
	"github.com/hamed0406/pingmon/internal/resolve"
)

func main() {
	env := config.FromEnv()

	logger, err := logging.NewLogger(env.LogDir, os.Getenv("DEBUG") != "")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	cfg, err := config.LoadPath(env.ConfigPath, env.ConfigPathSet)
	if err != nil {
		logger.Error("config_load_failed", zap.String("path", env.ConfigPath), zap.Error(err))
		log.Fatal(err)
	}
	for _, w := range cfg.Warnings() {
		logger.Warn("config_warning", zap.String("detail", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := engine.New(
		engine.Config{
			Interval:    cfg.Ping.Interval(),
			Timeout:     cfg.Ping.Timeout(),
			HistorySize: cfg.Ping.HistorySize,
		},
		cfg.DomainHosts(),
		probe.NewICMP(cfg.Ping.PacketSize, cfg.Ping.Privileged),
		resolve.New(),
		logger,
	)
	if err := eng.Start(ctx); err != nil {
		logger.Error("engine_start_failed", zap.Error(err))
		log.Fatal(err)
	}

	// Second event consumer besides the aggregator: a per-probe debug log.
	go logEvents(eng, logger)

	if slack := notify.NewSlack(env.SlackWebhook); slack != nil {
		watcher := alert.NewWatcher(eng, notify.Multi{slack}, logger, alert.Config{
			PollInterval:    10 * time.Second,
			Cooldown:        env.AlertCooldown,
			AlertOnRecovery: env.AlertOnRecovery,
		})
		go watcher.Run(ctx)
	}

	api := httpapi.NewServer(logger, eng)
	srv := &http.Server{Addr: env.Addr, Handler: api.Router()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen", zap.String("addr", env.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("api_serve_failed", zap.Error(err))
	}

	if err := eng.Close(); err != nil {
		logger.Warn("engine_close_error", zap.Error(err))
	}
}

func logEvents(eng *engine.Engine, logger *zap.Logger) {
	events, unsub := eng.Subscribe(256)
	defer unsub()

	for ev := range events {
		fields := []zap.Field{
			zap.String("host", ev.HostName),
			zap.String("host_id", string(ev.HostID)),
			zap.Uint16("seq", ev.Outcome.Seq),
			zap.String("kind", ev.Outcome.Kind.String()),
		}
		switch ev.Outcome.Kind {
		case domain.OutcomeSuccess:
			fields = append(fields, zap.Duration("rtt", ev.Outcome.RTT))
		case domain.OutcomeError:
			fields = append(fields, zap.String("error", ev.Outcome.Err))
		}
		logger.Debug("probe_result", fields...)
	}
}
