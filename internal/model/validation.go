// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

// custom validation tags
const (
	notBlankTag   = "notblank"
	roleTag       = "role"
	departmentTag = "department"
	yearTag       = "year"
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(validate, translator)

	// Report JSON field names instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
		return Role(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation(departmentTag, func(fl validator.FieldLevel) bool {
		return slices.Contains(Departments, fl.Field().String())
	})
	_ = validate.RegisterValidation(yearTag, func(fl validator.FieldLevel) bool {
		return slices.Contains(Years, fl.Field().String())
	})
	validate.RegisterStructValidation(studentYearValidation, User{})

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, roleTag, departmentTag, yearTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustomTag)
	}
}

func translateCustomTag(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case roleTag:
		return "unknown role"
	case departmentTag:
		return "unknown department"
	case yearTag:
		if fe.Value() == "" {
			return "year is required for students"
		}
		return "unknown year of study"
	default:
		return fe.Error()
	}
}

// studentYearValidation requires a year of study for students only.
func studentYearValidation(sl validator.StructLevel) {
	u := sl.Current().Interface().(User)
	if u.Role == RoleStudent && u.Year == "" {
		sl.ReportError(u.Year, "year", "Year", yearTag, "")
	}
}

// FieldError describes a validation failure of a single field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when a record fails validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message recorded for name, or "".
func (e *ValidationError) Field(name string) string {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message
		}
	}
	return ""
}

// Validate checks a record against its struct tags.
// The returned error is a *ValidationError when the record is invalid.
func Validate(record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: fe.Translate(translator),
		})
	}
	return out
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
