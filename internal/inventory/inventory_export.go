package inventory

import (
	"bytes"
	"fmt"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Inventaire"

var exportHeader = []any{"Date", "Produit", "Restant", "Produit (qté)", "Vendu", "Prévu"}

// WriteInventoryWorkbook kayıtları tek sayfalık bir xlsx olarak yazar.
// Satılan miktar max(0, üretilen - kalan) olarak hesaplanır.
func WriteInventoryWorkbook(records []models.InventoryRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	for i, r := range records {
		produced := 0
		if r.Produced != nil {
			produced = *r.Produced
		}
		row := []any{
			FormatDay(r.Date),
			r.Product.Name,
			r.Remaining,
			optional(r.Produced),
			max(0, produced-r.Remaining),
			optional(r.Planned),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func optional(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

// GET /inventory/export?date=&productId=&limit=
func ExportInventoryHandler(ledger *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseListFilter(c)
		if err != nil {
			return err
		}

		records, err := ledger.List(c.UserContext(), f)
		if err != nil {
			return err
		}

		buf, err := WriteInventoryWorkbook(records)
		if err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Excel dosyası oluşturulamadı")
		}

		name := "inventaire.xlsx"
		if f.Date != nil {
			name = fmt.Sprintf("inventaire-%s.xlsx", FormatDay(*f.Date))
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
		return c.Send(buf.Bytes())
	}
}
