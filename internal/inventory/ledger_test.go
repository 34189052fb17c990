package inventory

import (
	"context"
	"encoding/json"
	"testing"

	"bakery-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertOverwritesWithoutAdditionMode(t *testing.T) {
	db := newTestDB(t)
	p := seedProducts(t, db, "Croissant")[0]
	ledger := newTestLedger(db, 20)
	ctx := context.Background()

	for _, produced := range []int{5, 3} {
		batch := ledger.Upsert(ctx, []Entry{
			{ProductID: p.ID, Date: "2026-10-17", Produced: intp(produced), Remaining: intp(1)},
		})
		require.Empty(t, batch.Failed())
	}

	rec, err := ledger.Get(ctx, p.ID, mustDay(t, "2026-10-17"))
	require.NoError(t, err)
	require.NotNil(t, rec.Produced)
	assert.Equal(t, 3, *rec.Produced)
	assert.Equal(t, 1, rec.Remaining)
}

func TestUpsertAdditionModeAccumulates(t *testing.T) {
	db := newTestDB(t)
	p := seedProducts(t, db, "Croissant")[0]
	ledger := newTestLedger(db, 20)
	ctx := context.Background()

	for _, produced := range []int{5, 3} {
		batch := ledger.Upsert(ctx, []Entry{
			{ProductID: p.ID, Date: "2026-10-17", Produced: intp(produced), AdditionMode: true},
		})
		require.Empty(t, batch.Failed())
	}

	rec, err := ledger.Get(ctx, p.ID, mustDay(t, "2026-10-17"))
	require.NoError(t, err)
	require.NotNil(t, rec.Produced)
	assert.Equal(t, 8, *rec.Produced)
}

func TestUpsertAdditionModeOnNullProduced(t *testing.T) {
	db := newTestDB(t)
	p := seedProducts(t, db, "Croissant")[0]
	ledger := newTestLedger(db, 20)
	ctx := context.Background()

	require.Empty(t, ledger.Upsert(ctx, []Entry{
		{ProductID: p.ID, Date: "2026-10-17", Remaining: intp(4)},
	}).Failed())
	require.Empty(t, ledger.Upsert(ctx, []Entry{
		{ProductID: p.ID, Date: "2026-10-17", Produced: intp(6), AdditionMode: true},
	}).Failed())

	rec, err := ledger.Get(ctx, p.ID, mustDay(t, "2026-10-17"))
	require.NoError(t, err)
	require.NotNil(t, rec.Produced)
	assert.Equal(t, 6, *rec.Produced)
	assert.Equal(t, 4, rec.Remaining)
}

func TestUpsertKeepsUnsuppliedFields(t *testing.T) {
	db := newTestDB(t)
	p := seedProducts(t, db, "Croissant")[0]
	ledger := newTestLedger(db, 20)
	ctx := context.Background()

	require.Empty(t, ledger.Upsert(ctx, []Entry{
		{ProductID: p.ID, Date: "2026-10-17", Remaining: intp(4), Produced: intp(10)},
	}).Failed())
	batch := ledger.Upsert(ctx, []Entry{
		{ProductID: p.ID, Date: "2026-10-17", Planned: intp(7)},
	})
	require.Empty(t, batch.Failed())

	rec := batch.Succeeded()[0]
	assert.Equal(t, 4, rec.Remaining)
	require.NotNil(t, rec.Produced)
	assert.Equal(t, 10, *rec.Produced)
	require.NotNil(t, rec.Planned)
	assert.Equal(t, 7, *rec.Planned)
	assert.Equal(t, "Croissant", rec.Product.Name)
}

func TestUpsertForecastOnlyDefaultsRemainingToZero(t *testing.T) {
	db := newTestDB(t)
	p := seedProducts(t, db, "Croissant")[0]
	ledger := newTestLedger(db, 20)

	batch := ledger.Upsert(context.Background(), []Entry{
		{ProductID: p.ID, Date: "2026-10-19", Planned: intp(12)},
	})
	require.Empty(t, batch.Failed())

	rec := batch.Succeeded()[0]
	assert.Equal(t, 0, rec.Remaining)
	assert.Nil(t, rec.Produced)
	require.NotNil(t, rec.Planned)
	assert.Equal(t, 12, *rec.Planned)
}

func TestUpsertDefaultsDateToToday(t *testing.T) {
	db := newTestDB(t)
	p := seedProducts(t, db, "Croissant")[0]
	ledger := newTestLedger(db, 20)

	batch := ledger.Upsert(context.Background(), []Entry{{ProductID: p.ID, Remaining: intp(2)}})
	require.Empty(t, batch.Failed())
	assert.Equal(t, "2026-10-18", FormatDay(batch.Succeeded()[0].Date))
}

func TestUpsertAcceptsRFC3339Date(t *testing.T) {
	db := newTestDB(t)
	p := seedProducts(t, db, "Croissant")[0]
	ledger := newTestLedger(db, 20)

	batch := ledger.Upsert(context.Background(), []Entry{
		{ProductID: p.ID, Date: "2026-10-17T18:45:00+02:00", Remaining: intp(2)},
	})
	require.Empty(t, batch.Failed())
	assert.Equal(t, "2026-10-17", FormatDay(batch.Succeeded()[0].Date))
}

func TestUpsertPartialFailure(t *testing.T) {
	db := newTestDB(t)
	products := seedProducts(t, db, "Croissant", "Baguette")
	ledger := newTestLedger(db, 20)

	entries := []Entry{
		{ProductID: products[0].ID, Date: "2026-10-17", Remaining: intp(3)},
		{ProductID: products[1].ID, Date: "2026-10-17", Remaining: intp(-1)},
		{ProductID: 999, Date: "2026-10-17", Remaining: intp(1)},
		{ProductID: products[1].ID, Date: "17/10/2026", Remaining: intp(1)},
		DecodeEntry(json.RawMessage(`{"productId":"abc"}`)),
		{Date: "2026-10-17", Remaining: intp(1)},
		{ProductID: products[1].ID, Date: "2026-10-17", Produced: intp(9)},
	}
	batch := ledger.Upsert(context.Background(), entries)

	require.Len(t, batch.Results, len(entries))
	for i, r := range batch.Results {
		assert.Equal(t, i, r.Index)
	}
	assert.True(t, batch.Results[0].OK())
	assert.True(t, apperr.Is(batch.Results[1].Err, apperr.CodeValidation))
	assert.True(t, apperr.Is(batch.Results[2].Err, apperr.CodeNotFound))
	assert.True(t, apperr.Is(batch.Results[3].Err, apperr.CodeValidation))
	assert.True(t, apperr.Is(batch.Results[4].Err, apperr.CodeValidation))
	assert.True(t, apperr.Is(batch.Results[5].Err, apperr.CodeValidation))
	assert.True(t, batch.Results[6].OK())

	assert.Len(t, batch.Succeeded(), 2)
	assert.Len(t, batch.Failed(), 5)

	records, err := ledger.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestUpsertChunks(t *testing.T) {
	db := newTestDB(t)
	products := seedProducts(t, db, "A", "B", "C", "D", "E")
	ledger := newTestLedger(db, 2)

	entries := make([]Entry, 0, len(products))
	for i, p := range products {
		entries = append(entries, Entry{ProductID: p.ID, Date: "2026-10-17", Remaining: intp(i)})
	}
	batch := ledger.Upsert(context.Background(), entries)

	assert.Equal(t, 3, batch.Chunks)
	assert.Len(t, batch.Succeeded(), 5)
	assert.Empty(t, batch.Failed())
}

func TestUpsertEmptyBatch(t *testing.T) {
	ledger := newTestLedger(newTestDB(t), 20)

	batch := ledger.Upsert(context.Background(), nil)
	assert.Zero(t, batch.Chunks)
	assert.Empty(t, batch.Results)
}

func TestListOrderingAndFilters(t *testing.T) {
	db := newTestDB(t)
	products := seedProducts(t, db, "Croissant", "Baguette")
	ledger := newTestLedger(db, 20)
	ctx := context.Background()

	require.Empty(t, ledger.Upsert(ctx, []Entry{
		{ProductID: products[1].ID, Date: "2026-10-16", Remaining: intp(1)},
		{ProductID: products[0].ID, Date: "2026-10-16", Remaining: intp(2)},
		{ProductID: products[1].ID, Date: "2026-10-17", Remaining: intp(3)},
		{ProductID: products[0].ID, Date: "2026-10-17", Remaining: intp(4)},
	}).Failed())

	all, err := ledger.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	got := make([]int, len(all))
	for i, r := range all {
		got[i] = r.Remaining
	}
	assert.Equal(t, []int{4, 3, 2, 1}, got)
	assert.Equal(t, "Croissant", all[0].Product.Name)

	day := mustDay(t, "2026-10-16")
	byDate, err := ledger.List(ctx, ListFilter{Date: &day})
	require.NoError(t, err)
	require.Len(t, byDate, 2)
	assert.Equal(t, 2, byDate[0].Remaining)

	byProduct, err := ledger.List(ctx, ListFilter{ProductID: products[1].ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, byProduct, 1)
	assert.Equal(t, 3, byProduct[0].Remaining)
}

func TestGetMissingRecord(t *testing.T) {
	ledger := newTestLedger(newTestDB(t), 20)

	_, err := ledger.Get(context.Background(), 1, mustDay(t, "2026-10-17"))
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestDecodeEntry(t *testing.T) {
	e := DecodeEntry(json.RawMessage(`{"productId":3,"date":"2026-10-17","produced":4,"additionMode":true}`))
	require.NoError(t, e.decodeErr)
	assert.Equal(t, uint(3), e.ProductID)
	require.NotNil(t, e.Produced)
	assert.Equal(t, 4, *e.Produced)
	assert.Nil(t, e.Remaining)
	assert.True(t, e.AdditionMode)

	bad := DecodeEntry(json.RawMessage(`[1,2]`))
	assert.Error(t, bad.decodeErr)
}
