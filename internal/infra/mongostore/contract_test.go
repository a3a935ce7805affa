package mongostore

import (
	"context"
	"os"
	"testing"

	"marketplace/internal/config"
	"marketplace/internal/infra/db"
	"marketplace/internal/repository/repotest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TEST_MONGO_URL があるときだけ実行（トランザクションのためレプリカセット必須）
func TestMongo_Contract(t *testing.T) {
	url := os.Getenv("TEST_MONGO_URL")
	if url == "" {
		t.Skip("TEST_MONGO_URL is not set")
	}
	ctx := context.Background()

	client, database, err := db.ConnectMongo(ctx, config.MongoConfig{URL: url, Database: "marketplace_test_" + uuid.NewString()[:8]})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	s := New(client, database)
	require.NoError(t, s.EnsureIndexes(ctx))

	repotest.Run(t, repotest.Stores{
		Users:     s.Users(),
		Carts:     s.Carts(),
		Orders:    s.Orders(),
		Listings:  s.Listings(),
		AuditLogs: s.AuditLogs(),
		Tx:        s.TxManager(),
	})
}
