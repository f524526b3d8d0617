package infrastructures

import (
	"github.com/go-playground/validator/v10"
	"github.com/safatanc/hypergiga-core/internal/app/errors"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

func (v *Validator) Validate(i interface{}) error {
	if i == nil {
		return errors.NewValidationError("Invalid request body")
	}

	err := v.validate.Struct(i)
	if err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}

// ValidateVar checks a single value against a tag such as "url".
func (v *Validator) ValidateVar(value any, tag string) error {
	if err := v.validate.Var(value, tag); err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}
