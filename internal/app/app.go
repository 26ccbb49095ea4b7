package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/cohort-backend/internal/data/db"
	"github.com/yungbote/cohort-backend/internal/http"
	"github.com/yungbote/cohort-backend/internal/jobs/scheduler"
	"github.com/yungbote/cohort-backend/internal/observability"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
	"github.com/yungbote/cohort-backend/internal/realtime"
	"github.com/yungbote/cohort-backend/internal/services"
)

type App struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Router    *gin.Engine
	Cfg       Config
	Repos     Repos
	Services  Services
	Clients   Clients
	SSEHub    *realtime.SSEHub
	Scheduler *scheduler.Scheduler

	dbService    *db.Service
	server       *http.Server
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// NewLogger builds the process logger from LOG_MODE (default development).
func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDB connects with cfg.DB and runs AutoMigrate.
func OpenDB(log *logger.Logger, cfg Config) (*db.Service, error) {
	svc, err := db.NewService(log, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return svc, nil
}

func New() (*App, error) {
	log, err := NewLogger()
	if err != nil {
		return nil, err
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Otel)

	dbService, err := OpenDB(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	theDB := dbService.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	ssehub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, reposet, &services.BusEmitter{Bus: clients.Bus, Log: log})

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched, err = scheduler.New(log, cfg.TaskPublishCron, serviceset.Task)
		if err != nil {
			_ = clients.Close()
			_ = dbService.Close()
			log.Sync()
			return nil, err
		}
	}

	handlerset := wireHandlers(log, theDB, serviceset, ssehub)
	middleware := wireMiddleware(log, cfg)
	router := wireRouter(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       ssehub,
		Scheduler:    sched,
		dbService:    dbService,
		server:       http.WrapEngine(router),
		otelShutdown: otelShutdown,
	}, nil
}

// Start runs the bus forwarder and the scheduler in the background.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := startForwarder(ctx, a.Clients.Bus, a.SSEHub); err != nil {
		return fmt.Errorf("start bus forwarder: %w", err)
	}
	if a.Scheduler != nil {
		a.Scheduler.Start(ctx)
	}
	return nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "addr", addr)
	return a.server.Run(addr)
}

// Close drains the HTTP server, stops background work and releases clients.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.Log.Warn("HTTP shutdown failed", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if err := a.Clients.Close(); err != nil {
		a.Log.Warn("Closing clients failed", "error", err)
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("Closing database failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
