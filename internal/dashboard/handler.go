package dashboard

import (
	"strconv"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/inventory"

	"github.com/gofiber/fiber/v2"
)

const defaultDays = 30

func parseLimit(c *fiber.Ctx) (int, error) {
	s := c.Query("limit")
	if s == "" {
		return defaultDays, nil
	}
	limit, err := strconv.Atoi(s)
	if err != nil || limit < 0 {
		return 0, apperr.Validation("Geçersiz limit")
	}
	return limit, nil
}

// GET /dashboard/summary?limit=30
func SummaryHandler(ledger *inventory.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := parseLimit(c)
		if err != nil {
			return err
		}

		records, err := ledger.List(c.UserContext(), inventory.ListFilter{})
		if err != nil {
			return err
		}
		return c.JSON(Summaries(records, limit))
	}
}

// GET /dashboard/summary/:date
func DateSummaryHandler(ledger *inventory.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		day, err := inventory.ParseDay(c.Params("date"))
		if err != nil {
			return err
		}

		records, err := ledger.List(c.UserContext(), inventory.ListFilter{Date: &day})
		if err != nil {
			return err
		}

		summary := PerDateSummary(records)
		summary.Date = inventory.FormatDay(day)
		return c.JSON(fiber.Map{
			"summary":  summary,
			"products": ProductLines(records),
			"forecast": ForecastAccuracy(records),
		})
	}
}

// GET /dashboard/forecast?limit=30
func ForecastHandler(ledger *inventory.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := parseLimit(c)
		if err != nil {
			return err
		}

		records, err := ledger.List(c.UserContext(), inventory.ListFilter{})
		if err != nil {
			return err
		}
		return c.JSON(ForecastByDate(records, limit))
	}
}
