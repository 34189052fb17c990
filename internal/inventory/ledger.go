package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/logger"
	"bakery-backend/internal/metrics"
	"bakery-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultChunkSize = 20
	defaultTxTimeout = 15 * time.Second
)

// Entry tek bir (ürün, gün) girişidir. Verilmeyen miktarlar mevcut kayıtta korunur.
type Entry struct {
	ProductID    uint   `json:"productId"`
	Date         string `json:"date,omitempty"`
	Remaining    *int   `json:"remaining,omitempty"`
	Produced     *int   `json:"produced,omitempty"`
	Planned      *int   `json:"planned,omitempty"`
	AdditionMode bool   `json:"additionMode,omitempty"`

	decodeErr error
}

// DecodeEntry bozuk bir girişi toplu işlemi durdurmadan hatalı olarak işaretler.
func DecodeEntry(raw json.RawMessage) Entry {
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{decodeErr: apperr.Validationf("Geçersiz giriş: %v", err)}
	}
	return e
}

// EntryResult her girişin sonucudur: Record ya da Err doludur.
type EntryResult struct {
	Index     int
	ProductID uint
	Record    *models.InventoryRecord
	Err       error
}

func (r EntryResult) OK() bool { return r.Err == nil && r.Record != nil }

type BatchResult struct {
	Results  []EntryResult
	Chunks   int
	Duration time.Duration
}

func (b BatchResult) Succeeded() []models.InventoryRecord {
	out := make([]models.InventoryRecord, 0, len(b.Results))
	for _, r := range b.Results {
		if r.OK() {
			out = append(out, *r.Record)
		}
	}
	return out
}

func (b BatchResult) Failed() []EntryResult {
	out := make([]EntryResult, 0)
	for _, r := range b.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

type ListFilter struct {
	Date      *time.Time
	ProductID uint
	Limit     int
}

// Ledger günlük stok kayıtlarını tutar.
type Ledger struct {
	db        *gorm.DB
	log       *logger.Logger
	metrics   *metrics.Metrics
	chunkSize int
	txTimeout time.Duration
	loc       *time.Location
	now       func() time.Time
}

type LedgerOptions struct {
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
	ChunkSize int
	TxTimeout time.Duration
	Location  *time.Location
	Now       func() time.Time
}

func NewLedger(db *gorm.DB, opts LedgerOptions) *Ledger {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.TxTimeout <= 0 {
		opts.TxTimeout = defaultTxTimeout
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Ledger{
		db:        db,
		log:       opts.Logger.With("component", "ledger"),
		metrics:   opts.Metrics,
		chunkSize: opts.ChunkSize,
		txTimeout: opts.TxTimeout,
		loc:       opts.Location,
		now:       opts.Now,
	}
}

// Today yapılandırılmış saat dilimine göre bugünün tarihini verir.
func (l *Ledger) Today() time.Time {
	return Day(l.now().In(l.loc))
}

// Upsert girişleri parçalar halinde işler. Bir girişin hatası diğerlerini
// etkilemez; her parça kendi transaction'ı ve zaman aşımı ile çalışır.
func (l *Ledger) Upsert(ctx context.Context, entries []Entry) BatchResult {
	start := time.Now()
	results := make([]EntryResult, len(entries))
	chunks := (len(entries) + l.chunkSize - 1) / l.chunkSize

	for c := 0; c < chunks; c++ {
		from := c * l.chunkSize
		to := min(from+l.chunkSize, len(entries))
		l.runChunk(ctx, entries[from:to], results[from:to], from)
		l.log.Debug().Int("chunk", c+1).Int("chunks", chunks).Msg("Stok parçası işlendi")
	}

	batch := BatchResult{Results: results, Chunks: chunks, Duration: time.Since(start)}
	succeeded := len(batch.Succeeded())
	failed := len(entries) - succeeded
	l.metrics.ObserveBatch(batch.Duration, succeeded, failed)
	l.log.Info().
		Int("entries", len(entries)).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Int("chunks", chunks).
		Dur("duration", batch.Duration).
		Int("records_per_second", metrics.RecordsPerSecond(succeeded, batch.Duration)).
		Msg("Stok girişi tamamlandı")
	return batch
}

func (l *Ledger) runChunk(ctx context.Context, entries []Entry, out []EntryResult, offset int) {
	txCtx, cancel := context.WithTimeout(ctx, l.txTimeout)
	defer cancel()

	err := l.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		for i, e := range entries {
			out[i] = EntryResult{Index: offset + i, ProductID: e.ProductID}

			day, err := l.validate(e)
			if err != nil {
				out[i].Err = err
				continue
			}

			var product models.Product
			if err := tx.Select("id").First(&product, "id = ?", e.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					out[i].Err = apperr.Newf(apperr.CodeNotFound, "Ürün bulunamadı (ID: %d)", e.ProductID)
					continue
				}
				return err
			}

			sp := fmt.Sprintf("entry_%d", i)
			if err := tx.SavePoint(sp).Error; err != nil {
				return err
			}
			rec, err := l.upsertOne(tx, e, day)
			if err != nil {
				if rbErr := tx.RollbackTo(sp).Error; rbErr != nil {
					return rbErr
				}
				l.log.Error().Err(err).Uint("product_id", e.ProductID).Msg("Stok kaydı yazılamadı")
				out[i].Err = apperr.Wrap(apperr.CodeInternal, err,
					fmt.Sprintf("Ürün %d: kayıt sırasında hata", e.ProductID))
				continue
			}
			out[i].Record = &rec
		}
		return nil
	})
	if err != nil {
		l.log.Error().Err(err).Int("offset", offset).Int("size", len(entries)).Msg("Stok parçası geri alındı")
		for i := range out {
			if out[i].Err != nil {
				continue
			}
			out[i].Record = nil
			out[i].Err = apperr.Wrap(apperr.CodeInternal, err,
				fmt.Sprintf("Ürün %d: toplu kayıt tamamlanamadı, tekrar deneyin", entries[i].ProductID))
		}
	}
}

func (l *Ledger) validate(e Entry) (time.Time, error) {
	if e.decodeErr != nil {
		return time.Time{}, e.decodeErr
	}
	if e.ProductID == 0 {
		return time.Time{}, apperr.Validation("productId zorunlu")
	}
	for _, q := range []*int{e.Remaining, e.Produced, e.Planned} {
		if q != nil && *q < 0 {
			return time.Time{}, apperr.Validationf("Ürün %d: miktarlar negatif olamaz", e.ProductID)
		}
	}
	if e.Date == "" {
		return l.Today(), nil
	}
	day, err := ParseDay(e.Date)
	if err != nil {
		return time.Time{}, apperr.Validationf("Ürün %d: %s", e.ProductID, apperr.As(err).Message())
	}
	return day, nil
}

// upsertOne tek ifade ile ekler ya da sadece verilen alanları günceller.
// Ekleme modunda üretim, veritabanında atomik olarak mevcut değerin üstüne eklenir.
func (l *Ledger) upsertOne(tx *gorm.DB, e Entry, day time.Time) (models.InventoryRecord, error) {
	rec := models.InventoryRecord{
		ProductID: e.ProductID,
		Date:      day,
		Produced:  e.Produced,
		Planned:   e.Planned,
	}
	set := map[string]any{"updated_at": l.now()}
	if e.Remaining != nil {
		rec.Remaining = *e.Remaining
		set["remaining"] = *e.Remaining
	}
	if e.Planned != nil {
		set["planned"] = *e.Planned
	}
	if e.Produced != nil {
		if e.AdditionMode {
			set["produced"] = gorm.Expr("COALESCE(inventory_records.produced, 0) + ?", *e.Produced)
		} else {
			set["produced"] = *e.Produced
		}
	}

	if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(set),
	}).Create(&rec).Error; err != nil {
		return models.InventoryRecord{}, err
	}

	var stored models.InventoryRecord
	if err := tx.Preload("Product").
		Where("product_id = ? AND date = ?", e.ProductID, day).
		First(&stored).Error; err != nil {
		return models.InventoryRecord{}, err
	}
	return stored, nil
}

// Get (ürün, gün) kaydını döndürür.
func (l *Ledger) Get(ctx context.Context, productID uint, day time.Time) (models.InventoryRecord, error) {
	var rec models.InventoryRecord
	err := l.db.WithContext(ctx).
		Preload("Product").
		Where("product_id = ? AND date = ?", productID, Day(day)).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rec, apperr.NotFound("Stok kaydı bulunamadı")
		}
		return rec, fmt.Errorf("stok kaydı okunamadı: %w", err)
	}
	return rec, nil
}

// List kayıtları tarih azalan, sonra ürün sırası ve adına göre döndürür.
func (l *Ledger) List(ctx context.Context, f ListFilter) ([]models.InventoryRecord, error) {
	q := l.db.WithContext(ctx).
		Model(&models.InventoryRecord{}).
		Joins("JOIN products ON products.id = inventory_records.product_id").
		Preload("Product")

	if f.Date != nil {
		q = q.Where("inventory_records.date = ?", Day(*f.Date))
	}
	if f.ProductID != 0 {
		q = q.Where("inventory_records.product_id = ?", f.ProductID)
	}

	q = q.Order("inventory_records.date DESC").
		Order("products.display_order ASC").
		Order("products.name ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var records []models.InventoryRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("stok kayıtları listelenemedi: %w", err)
	}
	return records, nil
}
