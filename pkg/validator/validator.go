package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()

	// event_kind: the value is one of the integration's known event kinds
	_ = v.RegisterValidation("event_kind", func(fl validator.FieldLevel) bool {
		return entities.IsKnownEventKind(entities.EventKind(fl.Field().String()))
	})

	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
