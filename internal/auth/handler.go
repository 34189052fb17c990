package auth

import (
	"errors"
	"strings"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/config"
	"bakery-backend/internal/models"
	"bakery-backend/internal/request"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type CreateUserRequest struct {
	Name     string          `json:"name" validate:"required,max=100"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	Role     models.UserRole `json:"role" validate:"required,oneof=seller baker manager"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func createUser(db *gorm.DB, name, email, password string, role models.UserRole) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return models.User{}, err
	}
	if count > 0 {
		return models.User{}, apperr.Conflict("Bu email zaten kayıtlı")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.CodeInternal, err, "Şifre hashlenemedi")
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// POST /auth/register-manager
// Sadece hiç yönetici yokken ilk yöneticiyi oluşturur.
func RegisterManagerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := request.ParseBody(c, &body); err != nil {
			return err
		}

		var count int64
		if err := db.WithContext(c.UserContext()).Model(&models.User{}).
			Where("role = ?", models.RoleManager).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Forbidden("Zaten bir yönetici var")
		}

		user, err := createUser(db.WithContext(c.UserContext()), body.Name, body.Email, body.Password, models.RoleManager)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
	}
}

// POST /users (yönetici)
func CreateUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := request.ParseBody(c, &body); err != nil {
			return err
		}

		user, err := createUser(db.WithContext(c.UserContext()), body.Name, body.Email, body.Password, body.Role)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
	}
}

// POST /auth/login
func LoginHandler(cfg config.AuthConfig, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := request.ParseBody(c, &body); err != nil {
			return err
		}
		email := strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := db.WithContext(c.UserContext()).Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.CodeUnauthorized, "Email veya şifre hatalı")
			}
			return err
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return apperr.New(apperr.CodeUnauthorized, "Email veya şifre hatalı")
		}

		token, err := GenerateToken(cfg.JWTSecret, cfg.JWTTTL, &user)
		if err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Token oluşturulamadı")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  toUserResponse(user),
		})
	}
}

// GET /auth/me
func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(CtxUserIDKey).(uint)
		if !ok {
			return apperr.New(apperr.CodeUnauthorized, "Kullanıcı bilgisi alınamadı")
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Kullanıcı bulunamadı")
			}
			return err
		}
		return c.JSON(toUserResponse(user))
	}
}
