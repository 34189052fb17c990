package models

import "time"

// InventoryRecord: bir ürünün bir günlük kaydı. (product_id, date) benzersizdir.
// Remaining satıcıların gün sonu girdiği kalan miktar, Produced o gün üretilen,
// Planned ise ertesi gün için planlanan miktardır (yarının tarihine yazılır).
type InventoryRecord struct {
	ID        uint      `gorm:"primaryKey"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_inventory_product_date,priority:1"`
	Product   Product   `gorm:"constraint:OnDelete:RESTRICT"`
	Date      time.Time `gorm:"type:date;not null;index;uniqueIndex:idx_inventory_product_date,priority:2"`
	Remaining int       `gorm:"not null;default:0"`
	Produced  *int
	Planned   *int
	CreatedAt time.Time
	UpdatedAt time.Time
}
