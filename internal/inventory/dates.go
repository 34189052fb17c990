package inventory

import (
	"strings"
	"time"

	"bakery-backend/internal/apperr"
)

const dateLayout = "2006-01-02"

// Day saat bilgisini atar; kayıtlar gün bazında UTC gece yarısı olarak saklanır.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay "YYYY-MM-DD" ya da RFC 3339 kabul eder, sadece tarih kısmını tutar.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Day(t), nil
	}
	return time.Time{}, apperr.Validationf("Tarih formatı 'YYYY-MM-DD' olmalı: %q", s)
}

func FormatDay(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
