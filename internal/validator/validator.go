// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("movement_type", validateMovementType)
		_ = v.RegisterValidation("debt_type", validateDebtType)
	}
}

func validateMovementType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "entrada", "saida":
		return true
	}
	return false
}

func validateDebtType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "unico", "fixo":
		return true
	}
	return false
}
