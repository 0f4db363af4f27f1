package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/signalsfoundry/groundtrack-estimator/internal/capture"
	"github.com/signalsfoundry/groundtrack-estimator/internal/config"
	"github.com/signalsfoundry/groundtrack-estimator/internal/exifsrc"
	"github.com/signalsfoundry/groundtrack-estimator/internal/logging"
	"github.com/signalsfoundry/groundtrack-estimator/internal/observability"
	"github.com/signalsfoundry/groundtrack-estimator/internal/publish"
	"github.com/signalsfoundry/groundtrack-estimator/internal/run"
	"github.com/signalsfoundry/groundtrack-estimator/internal/store"
	"github.com/signalsfoundry/groundtrack-estimator/model"
)

// exifSource adapts the EXIF decoder over an image directory to the
// runner's FixSource.
type exifSource struct {
	decoder *exifsrc.Decoder
	dir     string
}

func (s exifSource) Fixes(ctx context.Context) ([]*model.PositionFix, error) {
	return s.decoder.FixSequence(ctx, s.dir)
}

func (s exifSource) Name() string { return "exif" }

func main() {
	// Local overrides for bench runs; absence of a .env file is normal.
	_ = godotenv.Load()

	skipCapture := flag.Bool("skip-capture", false, "estimate from the existing image directory without capturing")
	cameraBinary := flag.String("camera-binary", "", "override the stills binary (default libcamera-still)")
	flag.Parse()

	log := logging.NewFromEnv()
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewRunCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(cfg.MetricsAddr, collector, log)

	opts := []run.Option{}

	if cfg.HistoryDBPath != "" {
		history, err := store.OpenHistory(cfg.HistoryDBPath)
		if err != nil {
			log.Error(ctx, "failed to open run history", logging.String("path", cfg.HistoryDBPath), logging.String("error", err.Error()))
			os.Exit(1)
		}
		defer history.Close()
		opts = append(opts, run.WithHistory(history))
	}

	if cfg.MQTTBroker != "" {
		publisher, err := publish.Connect(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic, log)
		if err != nil {
			// The estimate still lands in the result artifact; keep going.
			log.Warn(ctx, "mqtt unavailable; continuing without publishing", logging.String("error", err.Error()))
		} else {
			defer publisher.Close()
			opts = append(opts, run.WithPublisher(publisher))
		}
	}

	runner := run.NewRunner(cfg, collector, log, opts...)

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if !*skipCapture {
		controller := capture.NewController(
			capture.LibCameraStill{Binary: *cameraBinary},
			capture.SystemClock{},
			log,
			cfg.ImageDir,
			capture.Limits{
				Interval:        cfg.CaptureInterval,
				MaxImages:       cfg.MaxImages,
				MaxStorageBytes: cfg.MaxStorageBytes,
				MaxDuration:     cfg.MaxCaptureTime,
			},
		)

		paths, err := controller.Run(stopCtx)
		if err != nil {
			log.Error(stopCtx, "capture session failed", logging.String("error", err.Error()))
			if len(paths) == 0 {
				os.Exit(1)
			}
			log.Warn(stopCtx, "estimating from partial capture", logging.Int("images", len(paths)))
		}

		if _, err := controller.Prune(stopCtx, paths, cfg.RetainImages); err != nil {
			log.Warn(stopCtx, "image pruning failed", logging.String("error", err.Error()))
		}
	}

	source := exifSource{decoder: exifsrc.NewDecoder(log), dir: cfg.ImageDir}
	estimate, err := runner.Execute(ctx, source)
	if err != nil {
		log.Error(ctx, "estimation run failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	if !estimate.Meaningful(cfg.MinSampleCount) {
		log.Warn(ctx, "run produced no meaningful estimate",
			logging.Int("sample_count", estimate.SampleCount),
			logging.Int("min_sample_count", cfg.MinSampleCount),
		)
	} else {
		log.Info(ctx, "run complete",
			logging.Float64("average_speed_km_per_sec", estimate.AverageSpeedKmPerSec),
			logging.Int("sample_count", estimate.SampleCount),
			logging.String("result_path", cfg.ResultPath),
		)
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func serveMetrics(addr string, collector *observability.RunCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
