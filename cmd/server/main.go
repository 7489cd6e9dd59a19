package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopstate/internal/app"
	"github.com/Skotchmaster/shopstate/internal/broadcast"
	"github.com/Skotchmaster/shopstate/internal/httpserver"
	"github.com/Skotchmaster/shopstate/internal/metrics"
	"github.com/Skotchmaster/shopstate/internal/mykafka"
	"github.com/Skotchmaster/shopstate/internal/notify"
	"github.com/Skotchmaster/shopstate/internal/order"
	"github.com/Skotchmaster/shopstate/internal/search"
	"github.com/Skotchmaster/shopstate/internal/store"
	"github.com/Skotchmaster/shopstate/pkg/config"
	pkgdb "github.com/Skotchmaster/shopstate/pkg/db"
	"github.com/Skotchmaster/shopstate/pkg/logging"
	"github.com/Skotchmaster/shopstate/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/shopstate/pkg/middleware/logging"
)

const pgChannel = "storage_events"

func main() {
	config.LoadDotenv(".env")
	cfg := config.Load()
	config.MustOneOf(cfg.SyncDriver, "SYNC_DRIVER", "hub", "kafka", "pg")

	cancelMode, err := order.ParseCancelMode(cfg.CancelMode)
	if err != nil {
		log.Fatalf("CANCEL_MODE: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	backend, err := store.NewGormBackend(initCtx, db, cfg.ServiceName)
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	origin := uuid.NewString()
	runner, err := newRunner(cfg, db, origin)
	if err != nil {
		log.Fatalf("sync init: %v", err)
	}

	opt := app.Options{
		Origin:                origin,
		Backend:               backend,
		Metrics:               m,
		EventsTopic:           cfg.KafkaEventsTopic,
		ShippingCost:          cfg.ShippingCost,
		FreeShippingThreshold: &cfg.FreeShippingThreshold,
		TaxRate:               &cfg.TaxRate,
		CancelMode:            cancelMode,
	}
	if runner != nil {
		opt.Broadcaster = runner
	} else {
		opt.Broadcaster = notify.NewHub()
	}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		opt.Publisher = producer
	}

	var index *search.Index
	if cfg.ESURL != "" {
		es, err := search.NewClient(initCtx, search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		index = &search.Index{ES: es, Name: cfg.ESIndex}
		opt.Indexer = index
	}

	st, err := app.New(opt)
	if err != nil {
		log.Fatalf("app init: %v", err)
	}
	defer st.Close()

	if index != nil {
		all, err := st.Catalog.ListAll(initCtx)
		if err == nil {
			err = index.Reindex(initCtx, all)
		}
		if err != nil {
			logger.Warn("reindex_error", "error", err)
		}
	}

	bg, stopBg := context.WithCancel(logging.IntoContext(context.Background(), logger))
	defer stopBg()

	if runner != nil {
		go func() {
			if err := runner.Run(bg); err != nil {
				logger.Error("sync_run_error", "driver", cfg.SyncDriver, "error", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.DefaultConfig()))
	}

	httpserver.Register(e, &httpserver.Deps{
		CartHandler:     &httpserver.CartHTTP{State: st},
		CatalogHandler:  &httpserver.CatalogHTTP{State: st, Search: index},
		WishlistHandler: &httpserver.WishlistHTTP{State: st},
		OrderHandler:    &httpserver.OrderHTTP{State: st, Background: bg},
		UserHandler:     &httpserver.UserHTTP{State: st},
		Gatherer:        reg,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr, "sync_driver", cfg.SyncDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	stopBg()

	if runner != nil {
		if err := runner.Close(); err != nil {
			logger.Warn("sync_close_error", "error", err)
		}
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("producer_close_error", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Warn("db_close_error", "error", err)
	}

	logger.Info("stopped")
}

// newRunner builds the cross-instance channel for SYNC_DRIVER. The hub driver
// keeps changes inside this process and needs no runner.
func newRunner(cfg config.Config, db *gorm.DB, origin string) (broadcast.Runner, error) {
	switch cfg.SyncDriver {
	case "kafka":
		config.MustNonEmptyList(cfg.KafkaBrokers, "KAFKA_BROKERS")
		return broadcast.NewKafka(cfg.KafkaBrokers, cfg.KafkaSyncTopic, origin)
	case "pg":
		if !pkgdb.IsPostgres(cfg.DatabaseURL) {
			return nil, errors.New("SYNC_DRIVER=pg needs a postgres DATABASE_URL")
		}
		return broadcast.NewPGNotify(db, cfg.DatabaseURL, pgChannel)
	}
	return nil, nil
}
