package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/linemk/proshop/internal/config"
	security "github.com/linemk/proshop/internal/jwt-new"
	"github.com/linemk/proshop/internal/service"
	"github.com/linemk/proshop/internal/storage"
	"github.com/linemk/proshop/internal/storage/redisstore"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
	Redis  *redis.Client
	Router http.Handler
}

// NewApp создаёт новый экземпляр App: подключения к БД (и redis, если нужен) и собранный роутер
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.NewApp"

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
	}

	var blacklist storage.TokenBlacklist
	switch cfg.TokenBlacklist.Driver {
	case config.BlacklistRedis:
		app.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := app.Redis.Ping(ctx).Err(); err != nil {
			app.Close()
			return nil, fmt.Errorf("%s: failed to ping redis: %w", op, err)
		}
		blacklist = redisstore.NewTokenBlacklist(app.Redis)
	default:
		blacklist = storage.NewTokenBlacklistRepository(db)
	}
	log.Info("token blacklist configured", slog.String("driver", cfg.TokenBlacklist.Driver))

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(db)
	productRepo := storage.NewProductRepository(db)
	cartRepo := storage.NewCartRepository(db)
	orderRepo := storage.NewOrderRepository(db)

	tokens := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL())

	app.Router = NewRouter(log, tokens, Services{
		Auth:     service.NewAuthService(log, userRepo, tokens, blacklist),
		Catalog:  service.NewCatalogService(log, productRepo),
		Cart:     service.NewCartService(log, cartRepo, productRepo),
		Checkout: service.NewCheckoutService(log, db, cartRepo, orderRepo),
	})

	return app, nil
}

// Close закрывает подключения к БД и redis
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("failed to close redis", slog.Any("error", err))
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("failed to close database", slog.Any("error", err))
	}
}
