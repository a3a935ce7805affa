package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"marketplace/internal/config"
	"marketplace/internal/handler"
	"marketplace/internal/infra/db"
	"marketplace/internal/infra/lock"
	"marketplace/internal/infra/memstore"
	"marketplace/internal/infra/mongostore"
	infraRepo "marketplace/internal/infra/repository"
	repo "marketplace/internal/repository"
	"marketplace/internal/server"
	"marketplace/internal/usecase"
	auth "marketplace/internal/usecase/auth_usecase"

	"github.com/shopspring/decimal"
)

// 選んだドライバのリポジトリ一式
type stores struct {
	users     repo.UserRepository
	carts     repo.CartRepository
	orders    repo.OrderRepository
	listings  repo.ListingRepository
	auditLogs repo.AuditLogRepository
	tx        repo.TransactionManager
	close     func(ctx context.Context) error
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.App.SlogLevel()}))
	slog.SetDefault(logger)

	// 金額はJSONで数値として返す
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//ストア
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			logger.Error("close store", slog.Any("error", err))
		}
	}()

	//ロック（Redisがあればプロセス間で共有）
	var locker usecase.IdentityLocker
	if cfg.Redis.Addr != "" {
		client, err := lock.NewRedisClient(ctx, lock.RedisLockerConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = client.Close() }()
		locker = lock.NewRedisLocker(client, cfg.Redis.LockTTL)
		logger.Info("using redis locker", slog.String("addr", cfg.Redis.Addr))
	} else {
		locker = lock.NewKeyedMutex()
	}

	//usecaseに渡す部品
	idGen := auth.UUIDGenerator{}
	clock := auth.SystemClock{}
	hasher := auth.NewBcryptPasswordHasher(cfg.Auth.BcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()
	tokens := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL)

	if cfg.Admin.Enabled() {
		bootstrap := auth.NewBootstrapAdminUsecase(st.users, st.auditLogs, hasher, idGen, clock)
		admin, created, err := bootstrap.Execute(ctx, auth.BootstrapAdminInput{
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
			Name:     cfg.Admin.Name,
		})
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		logger.Info("admin ready", slog.String("user_id", admin.ID), slog.Bool("created", created))
	}

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(st.users, hasher, tokens, idGen, clock)
	loginUC := auth.NewLoginUsecase(st.users, verifier, tokens, clock)
	gate := usecase.NewAccessGate(tokens, st.users)
	cartUC := usecase.NewCartUsecase(st.carts, st.listings, locker, idGen, clock)
	orderUC := usecase.NewOrderUsecase(st.tx, st.orders, locker, idGen, clock)
	listingUC := usecase.NewListingUsecase(st.tx, st.listings, idGen, clock)
	adminOrderUC := usecase.NewAdminOrderUsecase(st.tx, st.orders, idGen, clock)
	auditUC := usecase.NewAuditLogUsecase(st.auditLogs)

	//Handler生成
	srv := server.New(cfg.Server, logger, gate, server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		Product:      handler.NewProductHandler(listingUC),
		AdminProduct: handler.NewAdminProductHandler(listingUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC, auditUC),
	})

	//Server起動
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started",
			slog.String("addr", cfg.Server.Address()),
			slog.String("store", cfg.Store.Driver),
		)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := db.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &stores{
			users:     infraRepo.NewUserGormRepository(pg.DB),
			carts:     infraRepo.NewCartGormRepository(pg.DB),
			orders:    infraRepo.NewOrderGormRepository(pg.DB),
			listings:  infraRepo.NewListingGormRepository(pg.DB),
			auditLogs: infraRepo.NewAuditLogGormRepository(pg.DB),
			tx:        infraRepo.NewTxManagerGorm(pg.DB),
			close:     func(context.Context) error { return pg.Close() },
		}, nil

	case config.StoreDriverMongo:
		client, database, err := db.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		ms := mongostore.New(client, database)
		if err := ms.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &stores{
			users:     ms.Users(),
			carts:     ms.Carts(),
			orders:    ms.Orders(),
			listings:  ms.Listings(),
			auditLogs: ms.AuditLogs(),
			tx:        ms.TxManager(),
			close:     client.Disconnect,
		}, nil

	default:
		mem := memstore.New()
		return &stores{
			users:     mem.Users(),
			carts:     mem.Carts(),
			orders:    mem.Orders(),
			listings:  mem.Listings(),
			auditLogs: mem.AuditLogs(),
			tx:        mem.TxManager(),
			close:     func(context.Context) error { return nil },
		}, nil
	}
}
