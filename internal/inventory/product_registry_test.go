package inventory

import (
	"context"
	"testing"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productNames(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestParseNames(t *testing.T) {
	assert.Equal(t, []string{"Croissant", "Baguette"}, ParseNames(" Croissant , ,Baguette,Croissant,"))
	assert.Empty(t, ParseNames(" , ,"))
}

func TestBulkCreateSkipsExistingNames(t *testing.T) {
	db := newTestDB(t)
	reg := NewRegistry(db, RegistryOptions{})
	ctx := context.Background()

	n, err := reg.BulkCreate(ctx, "Croissant, Baguette, Croissant")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = reg.BulkCreate(ctx, "Baguette, Tarte")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = reg.BulkCreate(ctx, "Croissant, Baguette, Tarte")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	products, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Croissant", "Baguette", "Tarte"}, productNames(products))
}

func TestBulkCreateRejectsEmptyList(t *testing.T) {
	reg := NewRegistry(newTestDB(t), RegistryOptions{})

	_, err := reg.BulkCreate(context.Background(), " , ")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestListOrdersByOrderThenName(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&[]models.Product{
		{Name: "Tarte", Order: 2},
		{Name: "Pain", Order: 1},
		{Name: "Brioche", Order: 2},
	}).Error)

	products, err := NewRegistry(db, RegistryOptions{}).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Pain", "Brioche", "Tarte"}, productNames(products))
}

func TestRename(t *testing.T) {
	db := newTestDB(t)
	seeded := seedProducts(t, db, "Croissant", "Baguette")
	reg := NewRegistry(db, RegistryOptions{})
	ctx := context.Background()

	p, err := reg.Rename(ctx, seeded[0].ID, "  Pain au chocolat ")
	require.NoError(t, err)
	assert.Equal(t, "Pain au chocolat", p.Name)
	assert.Equal(t, 1, p.Order)

	_, err = reg.Rename(ctx, seeded[0].ID, "Baguette")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	_, err = reg.Rename(ctx, 999, "Brioche")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	_, err = reg.Rename(ctx, seeded[0].ID, "   ")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestReorderSingle(t *testing.T) {
	db := newTestDB(t)
	seeded := seedProducts(t, db, "Croissant")
	reg := NewRegistry(db, RegistryOptions{})

	p, err := reg.Reorder(context.Background(), seeded[0].ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Order)

	_, err = reg.Reorder(context.Background(), seeded[0].ID, -1)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = reg.Update(context.Background(), seeded[0].ID, UpdateProduct{})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestBulkReorder(t *testing.T) {
	db := newTestDB(t)
	seeded := seedProducts(t, db, "A", "B", "C")
	reg := NewRegistry(db, RegistryOptions{ReorderChunkSize: 2})
	ctx := context.Background()

	out, err := reg.BulkReorder(ctx, []uint{seeded[2].ID, seeded[0].ID, seeded[1].ID})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"C", "A", "B"}, productNames(out))
	for i, p := range out {
		assert.Equal(t, i+1, p.Order)
	}

	listed, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, productNames(listed))
}

func TestBulkReorderMissingIDsChangesNothing(t *testing.T) {
	db := newTestDB(t)
	seeded := seedProducts(t, db, "A", "B")
	reg := NewRegistry(db, RegistryOptions{})
	ctx := context.Background()

	_, err := reg.BulkReorder(ctx, []uint{seeded[1].ID, 42, seeded[0].ID, 43})
	require.Error(t, err)
	typed := apperr.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperr.CodeNotFound, typed.Code())
	assert.Equal(t, []uint{42, 43}, typed.Details()["missingIds"])

	listed, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, productNames(listed))
}

func TestBulkReorderRejectsDuplicatesAndEmpty(t *testing.T) {
	reg := NewRegistry(newTestDB(t), RegistryOptions{})

	_, err := reg.BulkReorder(context.Background(), nil)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = reg.BulkReorder(context.Background(), []uint{1, 1})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestDeleteBlockedByRecordsUnlessForced(t *testing.T) {
	db := newTestDB(t)
	seeded := seedProducts(t, db, "Croissant", "Baguette")
	reg := NewRegistry(db, RegistryOptions{})
	ledger := newTestLedger(db, 20)
	ctx := context.Background()

	batch := ledger.Upsert(ctx, []Entry{
		{ProductID: seeded[0].ID, Date: "2026-10-16", Remaining: intp(1)},
		{ProductID: seeded[0].ID, Date: "2026-10-17", Remaining: intp(2)},
		{ProductID: seeded[1].ID, Date: "2026-10-17", Remaining: intp(3)},
	})
	require.Empty(t, batch.Failed())

	_, err := reg.Delete(ctx, seeded[0].ID, false)
	require.Error(t, err)
	typed := apperr.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperr.CodeConflict, typed.Code())
	assert.Equal(t, true, typed.Details()["canForceDelete"])
	assert.Equal(t, int64(2), typed.Details()["inventoryCount"])

	res, err := reg.Delete(ctx, seeded[0].ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.CascadedRecords)

	listed, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Baguette"}, productNames(listed))

	records, err := ledger.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, seeded[1].ID, records[0].ProductID)
}

func TestDeleteWithoutRecords(t *testing.T) {
	db := newTestDB(t)
	seeded := seedProducts(t, db, "Croissant")
	reg := NewRegistry(db, RegistryOptions{})

	res, err := reg.Delete(context.Background(), seeded[0].ID, false)
	require.NoError(t, err)
	assert.Zero(t, res.CascadedRecords)

	_, err = reg.Delete(context.Background(), seeded[0].ID, false)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestRegistryCacheReadThroughAndInvalidation(t *testing.T) {
	db := newTestDB(t)
	cache := &memCache{}
	reg := NewRegistry(db, RegistryOptions{Cache: cache})
	ctx := context.Background()

	_, err := reg.BulkCreate(ctx, "Croissant")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	first, err := reg.List(ctx)
	require.NoError(t, err)
	require.True(t, cache.hit)

	// cache doluyken veritabanındaki değişiklik görünmez
	require.NoError(t, db.Create(&models.Product{Name: "Hidden", Order: 9}).Error)
	second, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, productNames(first), productNames(second))

	_, err = reg.Rename(ctx, first[0].ID, "Croissant beurre")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.invalidated)

	third, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Croissant beurre", "Hidden"}, productNames(third))
}
