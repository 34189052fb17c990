package inventory

import (
	"context"
	"testing"
	"time"

	"bakery-backend/internal/database"
	"bakery-backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestLedger(db *gorm.DB, chunk int) *Ledger {
	return NewLedger(db, LedgerOptions{
		ChunkSize: chunk,
		Location:  time.UTC,
		Now:       func() time.Time { return testNow },
	})
}

func seedProducts(t *testing.T, db *gorm.DB, names ...string) []models.Product {
	t.Helper()
	products := make([]models.Product, 0, len(names))
	for i, name := range names {
		p := models.Product{Name: name, Order: i + 1}
		require.NoError(t, db.Create(&p).Error)
		products = append(products, p)
	}
	return products
}

func intp(v int) *int { return &v }

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDay(s)
	require.NoError(t, err)
	return d
}

type memCache struct {
	products    []models.Product
	hit         bool
	gets        int
	invalidated int
}

func (m *memCache) Get(context.Context) ([]models.Product, bool) {
	m.gets++
	return m.products, m.hit
}

func (m *memCache) Set(_ context.Context, products []models.Product) {
	m.products = products
	m.hit = true
}

func (m *memCache) Invalidate(context.Context) {
	m.invalidated++
	m.products = nil
	m.hit = false
}
