// ABOUTME: Shared data-shape validation for records, drafts and sign-up passwords
// ABOUTME: Wraps go-playground/validator and reports failures as crmerr validation errors
package models

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/harperreed/keyaccounts/crmerr"
)

// PasswordSpecials is the set of characters that satisfy the special-character rule.
const PasswordSpecials = `!@#$%^&*(),.?":{}|<>`

const MinPasswordLength = 8

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = validate.RegisterValidation("enum", validateEnum)
}

type enumValue interface {
	Valid() bool
}

func validateEnum(fl validator.FieldLevel) bool {
	v, ok := fl.Field().Interface().(enumValue)
	if !ok {
		return false
	}
	return v.Valid()
}

// Validate checks a record or draft against its struct tags. The first failing
// field is reported.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return crmerr.Wrap(crmerr.KindValidation, "validate", err.Error(), err)
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return crmerr.Validation(field, "%s is required", field)
	case "email":
		return crmerr.Validation(field, "%s must be a valid email address", field)
	case "enum":
		return crmerr.Validation(field, "unrecognized %s %q", field, fe.Value())
	case "gte", "lte":
		return crmerr.Validation(field, "%s must be %s %s", field, boundWord(fe.Tag()), fe.Param())
	case "gtefield":
		return crmerr.Validation(field, "%s must not be before %s", field, fe.Param())
	default:
		return crmerr.Validation(field, "%s failed %s validation", field, fe.Tag())
	}
}

func boundWord(tag string) string {
	if tag == "gte" {
		return "at least"
	}
	return "at most"
}

// ValidatePassword applies the sign-up password policy.
func ValidatePassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return crmerr.Validation("password", "Password must be at least %d characters long", MinPasswordLength)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}

	switch {
	case !upper:
		return crmerr.Validation("password", "Password must contain at least one uppercase letter")
	case !lower:
		return crmerr.Validation("password", "Password must contain at least one lowercase letter")
	case !digit:
		return crmerr.Validation("password", "Password must contain at least one number")
	case !special:
		return crmerr.Validation("password", "Password must contain at least one special character")
	}

	if password != confirm {
		return crmerr.Validation("confirmPassword", "Passwords do not match")
	}
	return nil
}
