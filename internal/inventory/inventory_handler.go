package inventory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type UpsertInventoryRequest struct {
	Inventories []json.RawMessage `json:"inventories"`
}

type ProductRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type RecordResponse struct {
	ID        uint       `json:"id"`
	ProductID uint       `json:"productId"`
	Date      string     `json:"date"`
	Remaining int        `json:"remaining"`
	Produced  *int       `json:"produced"`
	Planned   *int       `json:"planned"`
	Product   ProductRef `json:"product"`
	UpdatedAt string     `json:"updatedAt"`
}

type EntryOutcome struct {
	Index     int             `json:"index"`
	ProductID uint            `json:"productId"`
	OK        bool            `json:"ok"`
	Error     string          `json:"error,omitempty"`
	Record    *RecordResponse `json:"record,omitempty"`
}

func ToRecordResponse(r models.InventoryRecord) RecordResponse {
	return RecordResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		Date:      FormatDay(r.Date),
		Remaining: r.Remaining,
		Produced:  r.Produced,
		Planned:   r.Planned,
		Product: ProductRef{
			ID:    r.Product.ID,
			Name:  r.Product.Name,
			Order: r.Product.Order,
		},
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
}

func errorText(err error) string {
	if typed := apperr.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}

// POST /inventory  {"inventories": [{productId, date?, remaining?, produced?, planned?, additionMode?}]}
func UpsertInventoryHandler(ledger *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpsertInventoryRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Wrap(apperr.CodeValidation, err, "Geçersiz format. Beklenen: { inventories: [...] }")
		}
		if body.Inventories == nil {
			return apperr.Validation("Geçersiz format. Beklenen: { inventories: [...] }")
		}

		entries := make([]Entry, len(body.Inventories))
		for i, raw := range body.Inventories {
			entries[i] = DecodeEntry(raw)
		}

		batch := ledger.Upsert(c.UserContext(), entries)

		data := make([]RecordResponse, 0, len(batch.Results))
		outcomes := make([]EntryOutcome, 0, len(batch.Results))
		var errs []string
		for _, r := range batch.Results {
			out := EntryOutcome{Index: r.Index, ProductID: r.ProductID, OK: r.OK()}
			if r.OK() {
				rec := ToRecordResponse(*r.Record)
				data = append(data, rec)
				out.Record = &rec
			} else {
				out.Error = errorText(r.Err)
				errs = append(errs, out.Error)
			}
			outcomes = append(outcomes, out)
		}

		resp := fiber.Map{
			"message":     fmt.Sprintf("%d stok kaydı işlendi", len(data)),
			"success":     len(data),
			"data":        data,
			"results":     outcomes,
			"performance": newPerformance(len(data), batch.Duration, batch.Chunks),
		}
		if len(errs) > 0 {
			resp["errors"] = errs
		}
		return c.JSON(resp)
	}
}

// parseListFilter ?date=YYYY-MM-DD&productId=1&limit=50
func parseListFilter(c *fiber.Ctx) (ListFilter, error) {
	var f ListFilter
	if s := c.Query("date"); s != "" {
		day, err := ParseDay(s)
		if err != nil {
			return f, err
		}
		f.Date = &day
	}
	if s := c.Query("productId"); s != "" {
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil || id == 0 {
			return f, apperr.Validation("Geçersiz productId")
		}
		f.ProductID = uint(id)
	}
	if s := c.Query("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			return f, apperr.Validation("Geçersiz limit")
		}
		f.Limit = limit
	}
	return f, nil
}

// GET /inventory/:productId/:date
func GetInventoryHandler(ledger *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pid, err := c.ParamsInt("productId")
		if err != nil || pid <= 0 {
			return apperr.Validation("Geçersiz productId")
		}
		day, err := ParseDay(c.Params("date"))
		if err != nil {
			return err
		}

		rec, err := ledger.Get(c.UserContext(), uint(pid), day)
		if err != nil {
			return err
		}
		return c.JSON(ToRecordResponse(rec))
	}
}

// GET /inventory
func ListInventoryHandler(ledger *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseListFilter(c)
		if err != nil {
			return err
		}

		records, err := ledger.List(c.UserContext(), f)
		if err != nil {
			return err
		}

		resp := make([]RecordResponse, 0, len(records))
		for _, r := range records {
			resp = append(resp, ToRecordResponse(r))
		}
		return c.JSON(resp)
	}
}
