package inventory

import (
	"context"
	"fmt"
	"io"
	"strings"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

type OrderImportResult struct {
	Products  []models.Product
	Matched   int
	Unmatched []string
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func isHeaderCell(cell string) bool {
	switch normalizeName(cell) {
	case "produit", "produits", "product", "products", "ürün", "ürün adı", "nom", "name":
		return true
	}
	return false
}

// ReadOrderSheet ilk sayfanın ilk kolonundaki ürün adlarını sırayla okur.
// Başlık satırı varsa atlanır, boş satırlar yok sayılır.
func ReadOrderSheet(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, err, "Excel dosyası okunamadı")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Validation("Excel dosyasında sayfa bulunamadı")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, err, "Sayfa okunamadı")
	}

	names := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		if i == 0 && isHeaderCell(name) {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, apperr.Validation("Excel dosyası boş")
	}
	return names, nil
}

// ImportOrder sayfadaki isimleri katalogla eşleştirir. Eşleşenler sayfa
// sırasıyla başa, eşleşmeyen katalog ürünleri mevcut sıralarıyla sona gelir.
func (r *Registry) ImportOrder(ctx context.Context, names []string) (OrderImportResult, error) {
	products, err := r.List(ctx)
	if err != nil {
		return OrderImportResult{}, err
	}
	sortByOrder(products)

	byName := make(map[string]uint, len(products))
	for _, p := range products {
		byName[normalizeName(p.Name)] = p.ID
	}

	placed := make(map[uint]struct{}, len(products))
	ordered := make([]uint, 0, len(products))
	unmatched := make([]string, 0)
	for _, name := range names {
		id, ok := byName[normalizeName(name)]
		if !ok {
			unmatched = append(unmatched, name)
			continue
		}
		if _, dup := placed[id]; dup {
			continue
		}
		placed[id] = struct{}{}
		ordered = append(ordered, id)
	}
	matched := len(ordered)
	if matched == 0 {
		return OrderImportResult{Unmatched: unmatched}, apperr.Validation("Hiçbir ürün eşleşmedi").
			WithDetail("unmatched", unmatched)
	}

	for _, p := range products {
		if _, ok := placed[p.ID]; !ok {
			ordered = append(ordered, p.ID)
		}
	}

	reordered, err := r.BulkReorder(ctx, ordered)
	if err != nil {
		return OrderImportResult{}, err
	}
	return OrderImportResult{Products: reordered, Matched: matched, Unmatched: unmatched}, nil
}

// POST /products/reorder/import (yetkili, multipart "file")
func ImportProductOrderHandler(reg *Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return apperr.Wrap(apperr.CodeValidation, err, "Dosya yüklenemedi")
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return apperr.Validation("Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Dosya açılamadı")
		}
		defer file.Close()

		names, err := ReadOrderSheet(file)
		if err != nil {
			return err
		}

		res, err := reg.ImportOrder(c.UserContext(), names)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"message":   fmt.Sprintf("%d ürün sıralaması kaydedildi. %d isim eşleşmedi.", res.Matched, len(res.Unmatched)),
			"matched":   res.Matched,
			"unmatched": res.Unmatched,
			"data":      res.Products,
		})
	}
}
