package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bellavista/internal/config"
	httpctrl "bellavista/internal/controllers/http"
	mmysql "bellavista/internal/infra/mysql"
	"bellavista/internal/infra/rabbitmq"
	"bellavista/internal/logging"
	"bellavista/internal/repository"
	mysqlrepo "bellavista/internal/repository/mysql"
	redisrepo "bellavista/internal/repository/redis"
	"bellavista/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	logging.Init("bellavista", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	var redisClient *redis.Client
	if cfg.StoreDriver == config.DriverRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Host + ":6379",
			DB:           cfg.Redis.DB,
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: ping: %w", err)
		}
	}

	store, err := openStore(cfg, redisClient)
	if err != nil {
		return err
	}

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		defer p.Close()
		publisher = p
	} else {
		slog.Info("RABBITMQ_URL not set, order events disabled")
	}

	sessions := services.NewSessionManager(store, cfg.JWTSecret, cfg.JWTTTL)
	accounts := services.NewAccountService(store, sessions)
	catalog := services.NewCatalogService(store)
	orders := services.NewOrderService(store, accounts, publisher)
	orders.SetLocation(cfg.Location)
	builder := services.NewBuilderService(store)
	contact := services.NewContactService(store)
	carts := services.NewCartService(catalog, orders, cfg.CartIdleTTL)

	for _, l := range []interface{ Load(context.Context) error }{sessions, accounts, catalog, orders, builder, contact} {
		if err := l.Load(ctx); err != nil {
			return fmt.Errorf("load: %w", err)
		}
	}

	handler := httpctrl.NewHandler(httpctrl.Services{
		Sessions:  sessions,
		Accounts:  accounts,
		Catalog:   catalog,
		Orders:    orders,
		Carts:     carts,
		Dashboard: services.NewDashboardService(orders, catalog, accounts),
		Customers: services.NewCustomerService(accounts, orders),
		Builder:   builder,
		Contact:   contact,
	}, redisClient)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), httpctrl.RequestLogger())
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting bellavista", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return carts.RunSweeper(gctx, time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down")
		err := srv.Shutdown(shutdownCtx)
		orders.Wait()
		return err
	})
	return g.Wait()
}

func openStore(cfg *config.Config, redisClient *redis.Client) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		slog.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), nil
	case config.DriverRedis:
		return redisrepo.NewRecordStore(redisClient, cfg.Redis.KeyPrefix), nil
	case config.DriverMySQL:
		db, err := mmysql.NewMySQL(cfg.MySQL)
		if err != nil {
			return nil, fmt.Errorf("db: connect: %w", err)
		}
		return mysqlrepo.NewRecordStore(db), nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
