package request

import (
	"fmt"
	"reflect"
	"strings"

	"bakery-backend/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// ParseBody gövdeyi çözer ve validate etiketlerini uygular.
func ParseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return apperr.Wrap(apperr.CodeValidation, err, "Geçersiz istek gövdesi")
	}
	return Validate(dest)
}

func Validate(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Wrap(apperr.CodeValidation, err, "Geçersiz veri")
	}
	fields := make(map[string]string, len(errs))
	names := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = validationMessage(fe)
		names = append(names, fe.Field())
	}
	return apperr.Validationf("Geçersiz alanlar: %s", strings.Join(names, ", ")).
		WithDetail("fields", fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "zorunlu"
	case "min":
		return fmt.Sprintf("en az %s olmalı", fe.Param())
	case "max":
		return fmt.Sprintf("en fazla %s olmalı", fe.Param())
	case "email":
		return "geçerli bir email olmalı"
	case "oneof":
		return fmt.Sprintf("şunlardan biri olmalı: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("%s veya daha büyük olmalı", fe.Param())
	default:
		return "geçersiz"
	}
}
