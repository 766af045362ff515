// Package validation checks request payloads against the rules declared in
// their struct tags and collects every failure per field, so a single 422
// response can list all of them.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var messages = map[string]string{
	"required":  "The %s field is required.",
	"string":    "The %s field must be a string.",
	"numeric":   "The %s field must be a number.",
	"integer":   "The %s field must be an integer.",
	"array":     "The %s field must be an array.",
	"max_items": "The %s field must not have more than %s items.",
	"max":       "The %s field must not be greater than %s characters.",
	"max_kb":    "The %s field must not be greater than %s kilobytes.",
	"gte":       "The %s field must be at least %s.",
	"lte":       "The %s field must not be greater than %s.",
	"exists":    "The selected %s is invalid.",
	"image":     "The %s field must be an image.",
	"json":      "The %s must be valid JSON.",
}

// Errors maps a request field (dotted for nested items, e.g.
// "products.2.price") to the messages of every rule it failed.
type Errors map[string][]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether key already failed a rule.
func (e Errors) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Fail records that key failed rule. param is substituted into messages
// that take one (max, gte, max_kb).
func (e Errors) Fail(key, rule, param string) {
	format, ok := messages[rule]
	if !ok {
		format = "The %s field is invalid."
	}
	attr := strings.ReplaceAll(key, "_", " ")
	var msg string
	if strings.Count(format, "%s") == 2 {
		msg = fmt.Sprintf(format, attr, param)
	} else {
		msg = fmt.Sprintf(format, attr)
	}
	e[key] = append(e[key], msg)
}

// Err returns e as an error, or nil when nothing failed.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	return v
}

func decimalValue(v reflect.Value) any {
	if d, ok := v.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// Check validates v against its `validate` tags and records failures in errs
// under prefix+field. Fields that already carry an error are left alone.
func Check(v any, prefix string, errs Errors) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fe := range fieldErrs {
		key := prefix + fe.Field()
		if errs.Has(key) {
			continue
		}
		errs.Fail(key, fe.Tag(), fe.Param())
	}
	return nil
}
