package inventory

import (
	"fmt"
	"time"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/metrics"
	"bakery-backend/internal/request"

	"github.com/gofiber/fiber/v2"
)

type CreateProductsRequest struct {
	Names string `json:"names" validate:"required"`
}

type UpdateProductRequest struct {
	ID           uint    `json:"id" validate:"required"`
	NewName      *string `json:"newName"`
	NewOrder     *int    `json:"newOrder"`
	SecurityCode string  `json:"securityCode"`
}

type DeleteProductRequest struct {
	ID           uint   `json:"id" validate:"required"`
	Force        bool   `json:"force"`
	SecurityCode string `json:"securityCode"`
}

type ReorderProductsRequest struct {
	NewOrder     []uint `json:"newOrder" validate:"required,min=1"`
	SecurityCode string `json:"securityCode"`
}

type Performance struct {
	Duration         string `json:"duration"`
	RecordsPerSecond int    `json:"recordsPerSecond"`
	Chunks           int    `json:"chunks,omitempty"`
}

func newPerformance(count int, d time.Duration, chunks int) Performance {
	return Performance{
		Duration:         fmt.Sprintf("%dms", d.Milliseconds()),
		RecordsPerSecond: metrics.RecordsPerSecond(count, d),
		Chunks:           chunks,
	}
}

// GET /products
func ListProductsHandler(reg *Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := reg.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(products)
	}
}

// GET /products/:id
func GetProductHandler(reg *Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.Validation("Geçersiz ürün id")
		}
		p, err := reg.Get(c.UserContext(), uint(id))
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// POST /products  {"names": "Croissant, Baguette, Tarte"}
func CreateProductsHandler(reg *Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductsRequest
		if err := request.ParseBody(c, &body); err != nil {
			return err
		}

		count, err := reg.BulkCreate(c.UserContext(), body.Names)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": fmt.Sprintf("%d ürün eklendi", count),
			"count":   count,
		})
	}
}

// PUT /products (yetkili)
func UpdateProductHandler(reg *Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateProductRequest
		if err := request.ParseBody(c, &body); err != nil {
			return err
		}

		p, err := reg.Update(c.UserContext(), body.ID, UpdateProduct{Name: body.NewName, Order: body.NewOrder})
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// DELETE /products (yetkili)
func DeleteProductHandler(reg *Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DeleteProductRequest
		if err := request.ParseBody(c, &body); err != nil {
			return err
		}

		res, err := reg.Delete(c.UserContext(), body.ID, body.Force)
		if err != nil {
			return err
		}

		msg := "Ürün silindi"
		if res.CascadedRecords > 0 {
			msg = fmt.Sprintf("Ürün ve %d stok kaydı silindi", res.CascadedRecords)
		}
		return c.JSON(fiber.Map{
			"message":               msg,
			"deletedInventoryCount": res.CascadedRecords,
		})
	}
}

// PUT /products/reorder (yetkili)
func ReorderProductsHandler(reg *Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReorderProductsRequest
		if err := request.ParseBody(c, &body); err != nil {
			return err
		}

		start := time.Now()
		products, err := reg.BulkReorder(c.UserContext(), body.NewOrder)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		return c.JSON(fiber.Map{
			"message":     fmt.Sprintf("%d ürün yeniden sıralandı", len(products)),
			"success":     len(products),
			"data":        products,
			"performance": newPerformance(len(products), elapsed, 0),
		})
	}
}
