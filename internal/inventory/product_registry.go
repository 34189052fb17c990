package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/logger"
	"bakery-backend/internal/metrics"
	"bakery-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultReorderChunkSize = 25

// Registry ürün kataloğunu yönetir: toplu ekleme, isim/sıra değişikliği, silme.
type Registry struct {
	db           *gorm.DB
	cache        ProductCache
	log          *logger.Logger
	metrics      *metrics.Metrics
	reorderChunk int
}

type RegistryOptions struct {
	Cache            ProductCache
	Logger           *logger.Logger
	Metrics          *metrics.Metrics
	ReorderChunkSize int
}

func NewRegistry(db *gorm.DB, opts RegistryOptions) *Registry {
	if opts.Cache == nil {
		opts.Cache = noopCache{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.ReorderChunkSize <= 0 {
		opts.ReorderChunkSize = defaultReorderChunkSize
	}
	return &Registry{
		db:           db,
		cache:        opts.Cache,
		log:          opts.Logger.With("component", "registry"),
		metrics:      opts.Metrics,
		reorderChunk: opts.ReorderChunkSize,
	}
}

// UpdateProduct alanlarından en az biri dolu olmalı.
type UpdateProduct struct {
	Name  *string
	Order *int
}

type DeleteResult struct {
	ProductID       uint
	CascadedRecords int64
}

// ParseNames virgülle ayrılmış isimleri temizler; boşlar ve tekrarlar atılır.
func ParseNames(csv string) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, part := range strings.Split(csv, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// BulkCreate yeni ürünleri listenin sonuna ekler, var olan isimleri sessizce atlar.
func (r *Registry) BulkCreate(ctx context.Context, csv string) (int64, error) {
	names := ParseNames(csv)
	if len(names) == 0 {
		return 0, apperr.Validation("Geçerli ürün adı verilmedi")
	}

	var created int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxOrder int
		if err := tx.Model(&models.Product{}).
			Select("COALESCE(MAX(display_order), 0)").
			Scan(&maxOrder).Error; err != nil {
			return err
		}

		products := make([]models.Product, 0, len(names))
		for i, name := range names {
			products = append(products, models.Product{Name: name, Order: maxOrder + i + 1})
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&products)
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("ürünler eklenemedi: %w", err)
	}

	r.cache.Invalidate(ctx)
	r.log.Info().Int("requested", len(names)).Int64("created", created).Msg("Ürünler eklendi")
	return created, nil
}

// List ürünleri sıra, sonra isim ile döndürür.
func (r *Registry) List(ctx context.Context) ([]models.Product, error) {
	if cached, ok := r.cache.Get(ctx); ok {
		return cached, nil
	}

	var products []models.Product
	if err := r.db.WithContext(ctx).
		Order("display_order asc").
		Order("name asc").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("ürünler listelenemedi: %w", err)
	}

	r.cache.Set(ctx, products)
	return products, nil
}

func (r *Registry) Get(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return p, apperr.NotFound("Ürün bulunamadı")
		}
		return p, fmt.Errorf("ürün okunamadı: %w", err)
	}
	return p, nil
}

func (r *Registry) Rename(ctx context.Context, id uint, newName string) (models.Product, error) {
	return r.Update(ctx, id, UpdateProduct{Name: &newName})
}

func (r *Registry) Reorder(ctx context.Context, id uint, newOrder int) (models.Product, error) {
	return r.Update(ctx, id, UpdateProduct{Order: &newOrder})
}

func (r *Registry) Update(ctx context.Context, id uint, upd UpdateProduct) (models.Product, error) {
	if upd.Name == nil && upd.Order == nil {
		return models.Product{}, apperr.Validation("Değiştirilecek veri yok")
	}

	var p models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Ürün bulunamadı")
			}
			return err
		}

		changes := map[string]any{}
		if upd.Name != nil {
			name := strings.TrimSpace(*upd.Name)
			if name == "" {
				return apperr.Validation("İsim boş olamaz")
			}
			var count int64
			if err := tx.Model(&models.Product{}).
				Where("name = ? AND id <> ?", name, id).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperr.Conflict("Bu isimde bir ürün zaten var").WithDetail("name", name)
			}
			changes["name"] = name
		}
		if upd.Order != nil {
			if *upd.Order < 0 {
				return apperr.Validation("Sıra negatif olamaz")
			}
			changes["display_order"] = *upd.Order
		}

		if err := tx.Model(&p).Updates(changes).Error; err != nil {
			return err
		}
		return tx.First(&p, "id = ?", id).Error
	})
	if err != nil {
		if apperr.As(err) != nil {
			return models.Product{}, err
		}
		return models.Product{}, fmt.Errorf("ürün güncellenemedi: %w", err)
	}

	r.cache.Invalidate(ctx)
	return p, nil
}

// BulkReorder orderedIDs[i] ürününe i+1 sırasını verir. Tüm güncellemeler tek
// transaction içinde yapılır; parçalar sadece ifade sayısını sınırlar.
func (r *Registry) BulkReorder(ctx context.Context, orderedIDs []uint) ([]models.Product, error) {
	if len(orderedIDs) == 0 {
		return nil, apperr.Validation("Yeni sıralama boş olamaz")
	}
	seen := make(map[uint]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := seen[id]; ok {
			return nil, apperr.Validationf("Ürün %d birden fazla kez verildi", id)
		}
		seen[id] = struct{}{}
	}

	start := time.Now()
	var result []models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []uint
		if err := tx.Model(&models.Product{}).
			Where("id IN ?", orderedIDs).
			Pluck("id", &existing).Error; err != nil {
			return err
		}
		if len(existing) != len(orderedIDs) {
			found := make(map[uint]struct{}, len(existing))
			for _, id := range existing {
				found[id] = struct{}{}
			}
			missing := make([]uint, 0)
			for _, id := range orderedIDs {
				if _, ok := found[id]; !ok {
					missing = append(missing, id)
				}
			}
			return apperr.Newf(apperr.CodeNotFound, "Ürünler bulunamadı: %s", joinIDs(missing)).
				WithDetail("missingIds", missing)
		}

		chunks := (len(orderedIDs) + r.reorderChunk - 1) / r.reorderChunk
		for c := 0; c < chunks; c++ {
			from := c * r.reorderChunk
			to := min(from+r.reorderChunk, len(orderedIDs))
			for i := from; i < to; i++ {
				if err := tx.Model(&models.Product{}).
					Where("id = ?", orderedIDs[i]).
					Update("display_order", i+1).Error; err != nil {
					return err
				}
			}
			r.log.Debug().Int("chunk", c+1).Int("chunks", chunks).Msg("Sıralama parçası tamamlandı")
		}

		return tx.Where("id IN ?", orderedIDs).Order("display_order asc").Find(&result).Error
	})
	if err != nil {
		if apperr.As(err) != nil {
			return nil, err
		}
		return nil, fmt.Errorf("sıralama kaydedilemedi: %w", err)
	}

	elapsed := time.Since(start)
	r.metrics.ObserveReorder(elapsed, len(result))
	r.cache.Invalidate(ctx)
	r.log.Info().Int("products", len(result)).Dur("duration", elapsed).Msg("Sıralama tamamlandı")
	return result, nil
}

// Delete bağlı stok kaydı varsa force olmadan reddeder; force ile önce kayıtları siler.
func (r *Registry) Delete(ctx context.Context, id uint, force bool) (DeleteResult, error) {
	res := DeleteResult{ProductID: id}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Ürün bulunamadı")
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.InventoryRecord{}).Where("product_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			if !force {
				return apperr.Conflict("Bu ürüne ait stok kayıtları var").
					WithDetail("canForceDelete", true).
					WithDetail("inventoryCount", count)
			}
			if err := tx.Where("product_id = ?", id).Delete(&models.InventoryRecord{}).Error; err != nil {
				return err
			}
			res.CascadedRecords = count
		}

		return tx.Delete(&p).Error
	})
	if err != nil {
		if apperr.As(err) != nil {
			return DeleteResult{}, err
		}
		return DeleteResult{}, fmt.Errorf("ürün silinemedi: %w", err)
	}

	r.cache.Invalidate(ctx)
	r.log.Info().Uint("product_id", id).Int64("cascaded", res.CascadedRecords).Msg("Ürün silindi")
	return res, nil
}

// sortByOrder sıralamayı List ile aynı kurala göre yapar.
func sortByOrder(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Order != products[j].Order {
			return products[i].Order < products[j].Order
		}
		return products[i].Name < products[j].Name
	})
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
