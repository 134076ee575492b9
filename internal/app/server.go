package app

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bx-casino/internal/cache"
	"bx-casino/internal/casino"
	"bx-casino/internal/config"
	"bx-casino/internal/db"
	"bx-casino/internal/event"
	"bx-casino/internal/jobs"
	"bx-casino/internal/ledger"
	"bx-casino/internal/monitoring"
	"bx-casino/internal/security"
	"bx-casino/internal/ws"
)

type Server struct {
	app     *fiber.App
	cfg     *config.Config
	log     *zap.Logger
	jobs    *jobs.Manager
	closers []func() error
}

func NewServer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	s := &Server{cfg: cfg, log: log, jobs: jobs.New()}

	store, err := s.openStore(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}

	bus := event.NewBus()
	hub := ws.NewHub()
	board := casino.NewLeaderboard()
	casino.RegisterConsumers(bus, board, hub, log)

	service := casino.NewService(store, bus, log, casino.Defaults{
		StartingBalance: cfg.StartingBalance,
		Blackjack:       ledger.Limits{Min: cfg.BlackjackMinBet, Max: cfg.BlackjackMaxBet},
		Roulette:        ledger.Limits{Min: cfg.RouletteMinBet, Max: cfg.RouletteMaxBet},
		Slots:           ledger.Limits{Min: cfg.SlotsMinBet, Max: cfg.SlotsMaxBet},
	})
	s.jobs.Register(casino.NewSweeper(service, board, cfg.SessionTTL, cfg.SweepInterval, log))

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.Production()})
	app.Use(countRequests)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "store": cfg.SessionStore})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	app.Get("/ws", websocket.New(hub.Handler))

	api := app.Group("/api", security.APIKeyGuard(cfg.APIKey))
	casino.RegisterRoutes(api, service, board)

	s.app = app
	return s, nil
}

func (s *Server) openStore(ctx context.Context) (casino.Store, error) {
	switch s.cfg.SessionStore {
	case config.StoreSQLite:
		database, err := db.Open(s.cfg.DBPath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, database.Close)
		return db.NewSessionStore(database), nil
	case config.StoreRedis:
		rdb, err := cache.New(ctx, s.cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, rdb.Close)
		return cache.NewSessionStore(rdb, "bx-casino:", s.cfg.SessionTTL), nil
	case config.StoreMemory:
		return casino.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: session store %q", config.ErrInvalidConfig, s.cfg.SessionStore)
	}
}

func countRequests(c *fiber.Ctx) error {
	err := c.Next()
	monitoring.HttpRequests.WithLabelValues(c.Method(), c.Route().Path).Inc()
	return err
}

func (s *Server) App() *fiber.App { return s.app }

// Start runs the background jobs and serves HTTP until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.jobs.Start(ctx)

	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			s.log.Error("shutdown", zap.Error(err))
		}
	}()

	s.log.Info("listening", zap.String("port", s.cfg.Port), zap.String("store", s.cfg.SessionStore), zap.Strings("jobs", s.jobs.Names()))
	return s.app.Listen(":" + s.cfg.Port)
}

func (s *Server) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
