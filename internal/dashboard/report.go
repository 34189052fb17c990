package dashboard

import (
	"math"
	"sort"
	"time"

	"bakery-backend/internal/inventory"
	"bakery-backend/internal/models"
)

type DateSummary struct {
	Date           string `json:"date"`
	ProductCount   int    `json:"productCount"`
	TotalProduced  int    `json:"totalProduced"`
	TotalSold      int    `json:"totalSold"`
	SellThroughPct int    `json:"sellThroughPct"`
}

type ProductLine struct {
	ProductID      uint   `json:"productId"`
	Name           string `json:"name"`
	Order          int    `json:"order"`
	Remaining      int    `json:"remaining"`
	Produced       *int   `json:"produced"`
	Planned        *int   `json:"planned"`
	Sold           int    `json:"sold"`
	SellThroughPct int    `json:"sellThroughPct"`
}

type Accuracy struct {
	TotalPlanned  int `json:"totalPlanned"`
	TotalProduced int `json:"totalProduced"`
	PrecisionPct  int `json:"precisionPct"`
}

type ProductAccuracy struct {
	ProductID    uint   `json:"productId"`
	Name         string `json:"name"`
	Planned      int    `json:"planned"`
	Produced     int    `json:"produced"`
	PrecisionPct int    `json:"precisionPct"`
}

type DateAccuracy struct {
	Date string `json:"date"`
	Accuracy
	Products []ProductAccuracy `json:"products"`
}

// Percent round(100 * part / whole), whole <= 0 ise 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}

func produced(r models.InventoryRecord) int {
	if r.Produced == nil {
		return 0
	}
	return *r.Produced
}

// Sold max(0, üretilen - kalan). Üretim girilmemişse 0 sayılır.
func Sold(r models.InventoryRecord) int {
	return max(0, produced(r)-r.Remaining)
}

// PerDateSummary aynı güne ait kayıtları özetler.
func PerDateSummary(records []models.InventoryRecord) DateSummary {
	var s DateSummary
	if len(records) > 0 {
		s.Date = inventory.FormatDay(records[0].Date)
	}
	s.ProductCount = len(records)
	for _, r := range records {
		s.TotalProduced += produced(r)
		s.TotalSold += Sold(r)
	}
	s.SellThroughPct = Percent(s.TotalSold, s.TotalProduced)
	return s
}

func ProductLines(records []models.InventoryRecord) []ProductLine {
	lines := make([]ProductLine, 0, len(records))
	for _, r := range records {
		sold := Sold(r)
		lines = append(lines, ProductLine{
			ProductID:      r.ProductID,
			Name:           r.Product.Name,
			Order:          r.Product.Order,
			Remaining:      r.Remaining,
			Produced:       r.Produced,
			Planned:        r.Planned,
			Sold:           sold,
			SellThroughPct: Percent(sold, produced(r)),
		})
	}
	return lines
}

// ForecastAccuracy planlanan miktarı olan kayıtlarda üretilen / planlanan oranı.
// Planı olmayan kayıtlar hesaba katılmaz.
func ForecastAccuracy(records []models.InventoryRecord) Accuracy {
	var a Accuracy
	for _, r := range records {
		if r.Planned == nil {
			continue
		}
		a.TotalPlanned += *r.Planned
		a.TotalProduced += produced(r)
	}
	a.PrecisionPct = Percent(a.TotalProduced, a.TotalPlanned)
	return a
}

// RecordPrecision tek kayıt için round(100 * üretilen / planlanan).
func RecordPrecision(r models.InventoryRecord) (int, bool) {
	if r.Planned == nil {
		return 0, false
	}
	return Percent(produced(r), *r.Planned), true
}

// GroupByDate kayıtları güne göre gruplar, en yeni gün önce gelir.
// Gün içindeki sıra korunur.
func GroupByDate(records []models.InventoryRecord) [][]models.InventoryRecord {
	idx := make(map[time.Time]int)
	groups := make([][]models.InventoryRecord, 0)
	for _, r := range records {
		day := inventory.Day(r.Date)
		i, ok := idx[day]
		if !ok {
			i = len(groups)
			idx[day] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i][0].Date.After(groups[j][0].Date)
	})
	return groups
}

func Summaries(records []models.InventoryRecord, limit int) []DateSummary {
	groups := GroupByDate(records)
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	out := make([]DateSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, PerDateSummary(g))
	}
	return out
}

func ForecastByDate(records []models.InventoryRecord, limit int) []DateAccuracy {
	planned := make([]models.InventoryRecord, 0, len(records))
	for _, r := range records {
		if r.Planned != nil {
			planned = append(planned, r)
		}
	}

	groups := GroupByDate(planned)
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	out := make([]DateAccuracy, 0, len(groups))
	for _, g := range groups {
		da := DateAccuracy{
			Date:     inventory.FormatDay(g[0].Date),
			Accuracy: ForecastAccuracy(g),
			Products: make([]ProductAccuracy, 0, len(g)),
		}
		for _, r := range g {
			pct, _ := RecordPrecision(r)
			da.Products = append(da.Products, ProductAccuracy{
				ProductID:    r.ProductID,
				Name:         r.Product.Name,
				Planned:      *r.Planned,
				Produced:     produced(r),
				PrecisionPct: pct,
			})
		}
		out = append(out, da)
	}
	return out
}
