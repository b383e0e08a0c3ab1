// Package validation holds the single validation routine shared by the
// single-record store operations and the bulk CSV importer, so the two
// paths cannot silently diverge.
package validation

import (
	"fmt"
	"strings"
	"time"

	errors "github.com/frahmantamala/expense-ledger/internal"
	"github.com/shopspring/decimal"
)

const (
	MaxCategoryNameLength = 100
	MaxNotesLength        = 500
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{fields: make([]FieldValidator, 0)}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) NotBlank(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if s, ok := value.(string); ok {
			if strings.TrimSpace(s) == "" {
				return errors.NewValidationError(fmt.Sprintf("%s cannot be empty", fv.FieldName), code)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if s, ok := value.(string); ok {
			if len(s) > max {
				return errors.NewValidationError(
					fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max),
					errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Positive(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if d, ok := value.(decimal.Decimal); ok {
			if !d.IsPositive() {
				return errors.NewValidationError("amount must be greater than 0", code)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) NotFuture(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if t, ok := value.(time.Time); ok {
			if t.After(time.Now()) {
				return errors.NewValidationError(
					fmt.Sprintf("%s cannot be in the future", fv.FieldName), code)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) NotZeroTime(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if t, ok := value.(time.Time); ok {
			if t.IsZero() {
				return errors.NewValidationError(
					fmt.Sprintf("%s is required", fv.FieldName), code)
			}
		}
		return nil
	})
	return fv
}

// Validate runs all validators and returns the first failure, keeping
// messages short enough for direct display.
func (v *ValidationBuilder) Validate() *errors.AppError {
	for _, field := range v.fields {
		for _, validator := range field.Validators {
			if err := validator(field.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func ValidateCategoryName(name string) *errors.AppError {
	validator := NewValidator()
	validator.Field("category name", name).
		NotBlank(errors.ErrCodeInvalidName).
		MaxLength(MaxCategoryNameLength)
	return validator.Validate()
}

func ValidateExpenseAmount(amount decimal.Decimal) *errors.AppError {
	validator := NewValidator()
	validator.Field("amount", amount).
		Positive(errors.ErrCodeInvalidAmount)
	return validator.Validate()
}

func ValidateExpenseDate(date time.Time) *errors.AppError {
	validator := NewValidator()
	validator.Field("expense date", date).
		NotZeroTime(errors.ErrCodeInvalidDate).
		NotFuture(errors.ErrCodeInvalidDate)
	return validator.Validate()
}

// NormalizeNotes trims notes and silently truncates them to the maximum
// length. Over-length notes are never an error.
func NormalizeNotes(notes string) string {
	notes = strings.TrimSpace(notes)
	if len(notes) > MaxNotesLength {
		notes = notes[:MaxNotesLength]
	}
	return notes
}
