package dto

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

// NewValidator returns a validator with the placement-specific rules registered:
// "department" (one of the nine codes) and "grade" (decimal between 0 and 100).
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return models.ValidDepartment(fl.Field().String())
	})
	_ = v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		raw := strings.TrimSpace(fl.Field().String())
		if raw == "" {
			return true
		}
		g, err := strconv.ParseFloat(raw, 64)
		return err == nil && !math.IsNaN(g) && g >= 0 && g <= 100
	})
	return v
}
