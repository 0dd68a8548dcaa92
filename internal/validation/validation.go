package validation

import (
	"fmt"
	"net/mail"
	"time"
	"unicode"

	"github.com/adeputra/pharmacy-inventory/internal"
)

type ValidatorFunc func(any) string

type FieldValidator struct {
	FieldName  string
	Value      any
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{}
}

func (v *ValidationBuilder) Field(name string, value any) *FieldValidator {
	fv := &FieldValidator{FieldName: name, Value: value}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value any) string {
		switch v := value.(type) {
		case string:
			if v == "" {
				return fmt.Sprintf("%s is required", fv.FieldName)
			}
		case *string:
			if v == nil || *v == "" {
				return fmt.Sprintf("%s is required", fv.FieldName)
			}
		case nil:
			return fmt.Sprintf("%s is required", fv.FieldName)
		}
		return ""
	})
	return fv
}

func (fv *FieldValidator) MinInt(min int64) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value any) string {
		if v, ok := value.(int64); ok && v < min {
			return fmt.Sprintf("%s must be at least %d", fv.FieldName, min)
		}
		return ""
	})
	return fv
}

func (fv *FieldValidator) MinFloat(min float64) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value any) string {
		if v, ok := value.(float64); ok && v < min {
			return fmt.Sprintf("%s must be at least %v", fv.FieldName, min)
		}
		return ""
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value any) string {
		switch v := value.(type) {
		case string:
			if len(v) > max {
				return fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max)
			}
		case *string:
			if v != nil && len(*v) > max {
				return fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max)
			}
		}
		return ""
	})
	return fv
}

func (fv *FieldValidator) OneOf(allowed ...string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value any) string {
		v, ok := value.(string)
		if !ok || v == "" {
			return ""
		}
		for _, a := range allowed {
			if v == a {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of %v", fv.FieldName, allowed)
	})
	return fv
}

func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value any) string {
		var addr string
		switch v := value.(type) {
		case string:
			addr = v
		case *string:
			if v == nil {
				return ""
			}
			addr = *v
		}
		if addr == "" {
			return ""
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Sprintf("%s must be a valid email address", fv.FieldName)
		}
		return ""
	})
	return fv
}

// Date validates a Y-m-d formatted string; empty values pass.
func (fv *FieldValidator) Date() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value any) string {
		v, ok := value.(string)
		if !ok || v == "" {
			return ""
		}
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fv.FieldName)
		}
		return ""
	})
	return fv
}

func (fv *FieldValidator) Custom(validator ValidatorFunc) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs all field rules and folds the failures into a single
// bad-request error, one message per failed rule.
func (v *ValidationBuilder) Validate() *internal.AppError {
	var messages []string

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			if msg := validator(field.Value); msg != "" {
				messages = append(messages, msg)
			}
		}
	}

	if len(messages) > 0 {
		return internal.NewBadRequestError(messages...)
	}
	return nil
}

// ValidatePassword enforces the account password policy: 8-72 characters
// with at least one lowercase letter, one uppercase letter, one digit, and
// one special character.
func ValidatePassword(password string) *internal.AppError {
	if len(password) < 8 || len(password) > 72 {
		return internal.NewPasswordNotValidError()
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasLower || !hasUpper || !hasDigit || !hasSpecial {
		return internal.NewPasswordNotValidError()
	}
	return nil
}
