package auth

import (
	"crypto/subtle"
	"encoding/json"
	"strings"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/config"
	"bakery-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"
)

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

func JWTMiddleware(cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, ok := bearerToken(c)
		if !ok {
			return apperr.New(apperr.CodeUnauthorized, "Authorization formatı 'Bearer <token>' olmalı")
		}

		claims, err := ParseToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return apperr.Wrap(apperr.CodeUnauthorized, err, "Geçersiz veya süresi dolmuş token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)
		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return apperr.Forbidden("Rol bilgisi alınamadı")
		}
		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return apperr.Forbidden("Bu işlem için yetkiniz yok")
	}
}

// RequirePrivileged ürün yönetimi gibi yetkili işlemleri korur. Yönetici
// rolündeki bir token yeterlidir. Güvenlik kodu yapılandırılmışsa, gövdede ya da
// multipart formda gönderilen eşleşen kod da kabul edilir. Kontrol diğer tüm
// doğrulamalardan önce yapılır.
func RequirePrivileged(cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenStr, ok := bearerToken(c); ok {
			if claims, err := ParseToken(cfg.JWTSecret, tokenStr); err == nil {
				c.Locals(CtxUserIDKey, claims.UserID)
				c.Locals(CtxUserRoleKey, claims.Role)
				if claims.Role == models.RoleManager {
					return c.Next()
				}
			}
		}

		if cfg.SecurityCode != "" {
			code := securityCodeFrom(c)
			if code != "" && subtle.ConstantTimeCompare([]byte(code), []byte(cfg.SecurityCode)) == 1 {
				return c.Next()
			}
		}

		return apperr.Forbidden("Güvenlik kodu hatalı veya yetki yok")
	}
}

func securityCodeFrom(c *fiber.Ctx) string {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return c.FormValue("securityCode")
	}
	var body struct {
		SecurityCode string `json:"securityCode"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return ""
	}
	return body.SecurityCode
}
