// utils/validation.go
package utils

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	indexPattern = regexp.MustCompile(`\[(\d+)\]`)
)

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	return phonePattern.MatchString(cleaned)
}

// SetupValidator makes gin's validator report json field names and adds the phone tag
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidatePhone(fl.Field().String())
	})
}

// FieldErrors maps a json field path to its messages
type FieldErrors map[string][]string

// Add appends a message for field
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// First returns the message of the alphabetically first field
func (f FieldErrors) First() string {
	if len(f) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return f[keys[0]][0]
}

// BindingErrors converts errors from ShouldBind* into field errors.
// The second result is false for errors that are not about a field.
func BindingErrors(err error) (FieldErrors, bool) {
	fields := FieldErrors{}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			path := fieldPath(e.Namespace())
			fields.Add(path, validationMessage(path, e))
		}
		return fields, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields.Add(typeErr.Field, "The "+label(typeErr.Field)+" field has an invalid type.")
		return fields, true
	}

	return nil, false
}

// fieldPath turns "RegisterInput.company.name" into "company.name"
// and "SaleInput.items[0].quantity" into "items.0.quantity"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

func label(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		path = path[i+1:]
	}
	return strings.ReplaceAll(path, "_", " ")
}

func validationMessage(path string, e validator.FieldError) string {
	name := label(path)
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "The " + name + " field is required."
	case "email":
		return "The " + name + " field must be a valid email address."
	case "min", "gte":
		if e.Kind() == reflect.Slice {
			return "The " + name + " field must have at least " + e.Param() + " items."
		}
		if isString {
			return "The " + name + " field must be at least " + e.Param() + " characters."
		}
		return "The " + name + " field must be at least " + e.Param() + "."
	case "max", "lte":
		if isString {
			return "The " + name + " field must not be greater than " + e.Param() + " characters."
		}
		return "The " + name + " field must not be greater than " + e.Param() + "."
	case "oneof":
		return "The selected " + name + " is invalid."
	case "eqfield":
		return "The " + name + " field confirmation does not match."
	case "datetime":
		return "The " + name + " field must be a valid date."
	case "phone":
		return "The " + name + " field must be a valid phone number."
	default:
		return "The " + name + " field is invalid."
	}
}
