package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/domain/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Postgres はgormとその下のpgxプールをまとめて持つ。
type Postgres struct {
	DB   *gorm.DB
	pool *pgxpool.Pool
	sql  *sql.DB
}

// Connect はDBに接続して *gorm.DB を返す。
// 接続はpgxpoolで張り、database/sql経由でgormに渡す。
func Connect(ctx context.Context, cfg config.PostgresConfig) (*Postgres, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pcfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		// 一意制約違反を gorm.ErrDuplicatedKey に変換
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		_ = sqlDB.Close()
		pool.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	return &Postgres{DB: gormDB, pool: pool, sql: sqlDB}, nil
}

// テーブル作成
func (p *Postgres) Migrate(ctx context.Context) error {
	return p.DB.WithContext(ctx).AutoMigrate(
		&model.User{},
		&model.Cart{},
		&model.CartItem{},
		&model.Listing{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	)
}

func (p *Postgres) Close() error {
	err := p.sql.Close()
	p.pool.Close()
	return err
}
