package utils

import (
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/taqueria-app/models"
)

var (
	kitchenCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)
	registerOnce       sync.Once
)

// NormalizeKitchenCode trims and upper-cases user input before lookup.
func NormalizeKitchenCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsKitchenCode reports whether code, once normalized, has the pairing code shape.
func IsKitchenCode(code string) bool {
	return kitchenCodePattern.MatchString(NormalizeKitchenCode(code))
}

// RegisterValidators adds the custom binding tags used by request structs.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			ErrorLogger.Error("gin validator engine is not go-playground/validator")
			return
		}

		registerRules(v, map[string]validator.Func{
			"kitchen_code": func(fl validator.FieldLevel) bool {
				return IsKitchenCode(fl.Field().String())
			},
			"product_category": func(fl validator.FieldLevel) bool {
				return models.ProductCategory(fl.Field().String()).Valid()
			},
			"table_status": func(fl validator.FieldLevel) bool {
				return models.TableStatus(fl.Field().String()).Valid()
			},
			"staff_role": func(fl validator.FieldLevel) bool {
				return models.Role(fl.Field().String()).Valid()
			},
		})
	})
}

// registerRules adds each rule to v, logging and counting the rejected ones.
func registerRules(v *validator.Validate, rules map[string]validator.Func) int {
	failed := 0
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			ErrorLogger.WithError(err).Errorf("failed to register %q validator", tag)
			failed++
		}
	}
	return failed
}
