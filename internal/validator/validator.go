// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"ledger/internal/models"
	"ledger/internal/money"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("transaction_status", validateTransactionStatus)
	}
}

// decimalValue exposes decimals to the validator as their canonical string.
func decimalValue(field reflect.Value) interface{} {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		return d.String()
	case decimal.NullDecimal:
		if d.Valid {
			return d.Decimal.String()
		}
	}
	return nil
}

// validateMoney accepts positive amounts with at most two decimal places
// that fit in minor units.
func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil || !d.IsPositive() {
		return false
	}
	_, err = money.ToMinor(d)
	return err == nil
}

func validateCategoryType(fl validator.FieldLevel) bool {
	return models.CategoryType(fl.Field().String()).Valid()
}

func validateTransactionStatus(fl validator.FieldLevel) bool {
	return models.TransactionStatus(fl.Field().String()).Valid()
}
