package repository

import (
	"context"
	"os"
	"testing"

	"marketplace/internal/config"
	"marketplace/internal/infra/db"
	"marketplace/internal/repository/repotest"

	"github.com/stretchr/testify/require"
)

// TEST_DATABASE_URL があるときだけ実行
func TestGorm_Contract(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()

	pg, err := db.Connect(ctx, config.PostgresConfig{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Close() })
	require.NoError(t, pg.Migrate(ctx))

	repotest.Run(t, repotest.Stores{
		Users:     NewUserGormRepository(pg.DB),
		Carts:     NewCartGormRepository(pg.DB),
		Orders:    NewOrderGormRepository(pg.DB),
		Listings:  NewListingGormRepository(pg.DB),
		AuditLogs: NewAuditLogGormRepository(pg.DB),
		Tx:        NewTxManagerGorm(pg.DB),
	})
}
