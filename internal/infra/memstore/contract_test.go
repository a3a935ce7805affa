package memstore

import (
	"testing"

	"marketplace/internal/repository/repotest"
)

func TestMemstore_Contract(t *testing.T) {
	s := New()
	repotest.Run(t, repotest.Stores{
		Users:     s.Users(),
		Carts:     s.Carts(),
		Orders:    s.Orders(),
		Listings:  s.Listings(),
		AuditLogs: s.AuditLogs(),
		Tx:        s.TxManager(),
	})
}
