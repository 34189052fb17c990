package models

import "time"

type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Order     int       `gorm:"column:display_order;not null;default:0;index" json:"order"` // ekran ve giriş sırası, benzersiz değil
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
