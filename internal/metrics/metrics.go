package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics toplu stok kaydı ve sıralama işlemlerinin süre/adet bilgisini tutar.
// nil bir *Metrics ile tüm metotlar güvenle çağrılabilir.
type Metrics struct {
	batchDuration   prometheus.Histogram
	entries         *prometheus.CounterVec
	reorderDuration prometheus.Histogram
	reorderedTotal  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bakery_inventory_batch_duration_seconds",
			Help:    "Duration of inventory upsert batches.",
			Buckets: prometheus.DefBuckets,
		}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bakery_inventory_entries_total",
			Help: "Inventory entries processed, by outcome.",
		}, []string{"outcome"}),
		reorderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bakery_product_reorder_duration_seconds",
			Help:    "Duration of bulk product reorders.",
			Buckets: prometheus.DefBuckets,
		}),
		reorderedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bakery_products_reordered_total",
			Help: "Products whose position was reassigned.",
		}),
	}
	reg.MustRegister(m.batchDuration, m.entries, m.reorderDuration, m.reorderedTotal)
	return m
}

func (m *Metrics) ObserveBatch(d time.Duration, succeeded, failed int) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(d.Seconds())
	m.entries.WithLabelValues("success").Add(float64(succeeded))
	m.entries.WithLabelValues("failure").Add(float64(failed))
}

func (m *Metrics) ObserveReorder(d time.Duration, count int) {
	if m == nil {
		return
	}
	m.reorderDuration.Observe(d.Seconds())
	m.reorderedTotal.Add(float64(count))
}

// RecordsPerSecond süre sıfırsa adet kadar döner.
func RecordsPerSecond(count int, d time.Duration) int {
	if d <= 0 {
		return count
	}
	return int(float64(count)/d.Seconds() + 0.5)
}
