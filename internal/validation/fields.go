package validation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Fields holds the raw members of one request object keyed by field name.
// JSON bodies and form bodies are both turned into Fields so they bind the
// same way.
type Fields map[string]json.RawMessage

// ParseObject decodes a JSON object body. An empty body yields empty Fields.
func ParseObject(body []byte) (Fields, error) {
	fields := Fields{}
	if len(bytes.TrimSpace(body)) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = Fields{}
	}
	return fields, nil
}

// FieldsFromForm converts form values into Fields; every value becomes a
// JSON string.
func FieldsFromForm(values map[string]string) Fields {
	fields := make(Fields, len(values))
	for k, v := range values {
		raw, _ := json.Marshal(v)
		fields[k] = raw
	}
	return fields
}

// Items splits a JSON array into one Fields per element. Elements that are
// not objects become empty Fields so their required rules fail. ok is false
// when raw is missing or not an array.
func Items(raw json.RawMessage) ([]Fields, bool) {
	if isNull(raw) {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	items := make([]Fields, len(elems))
	for i, elem := range elems {
		f := Fields{}
		if err := json.Unmarshal(elem, &f); err != nil || f == nil {
			f = Fields{}
		}
		items[i] = f
	}
	return items, true
}

// Mismatches records fields whose raw value had the wrong type, keyed by
// field name, valued by the rule that failed.
type Mismatches map[string]string

// Report adds one error per mismatch to errs under prefix+field.
func (m Mismatches) Report(prefix string, errs Errors) {
	for field, rule := range m {
		errs.Fail(prefix+field, rule, "")
	}
}

// Binder reads typed values out of Fields. Missing, null and blank values
// read as absent; values of the wrong type are remembered as mismatches.
type Binder struct {
	fields     Fields
	mismatches Mismatches
}

func Bind(fields Fields) *Binder {
	return &Binder{fields: fields, mismatches: Mismatches{}}
}

func (b *Binder) Mismatches() Mismatches {
	return b.mismatches
}

// String returns the trimmed string value of name.
func (b *Binder) String(name string) string {
	raw, ok := b.fields[name]
	if !ok || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		b.mismatches[name] = "string"
		return ""
	}
	return strings.TrimSpace(s)
}

// Decimal accepts a JSON number or a numeric string.
func (b *Binder) Decimal(name string) *decimal.Decimal {
	s, ok := b.scalar(name)
	if !ok {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		b.mismatches[name] = "numeric"
		return nil
	}
	return &d
}

// Int accepts a JSON integer or an integer string.
func (b *Binder) Int(name string) *int64 {
	s, ok := b.scalar(name)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		b.mismatches[name] = "integer"
		return nil
	}
	return &n
}

// Present reports whether name holds a value other than null or a blank
// string.
func (b *Binder) Present(name string) bool {
	raw, ok := b.fields[name]
	if !ok || isNull(raw) {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// List returns the elements of an array member. A present value that is not
// an array is recorded as a mismatch.
func (b *Binder) List(name string) []Fields {
	raw, ok := b.fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	items, ok := Items(raw)
	if !ok {
		b.mismatches[name] = "array"
		return nil
	}
	return items
}

// scalar returns the textual form of a number or string member. ok is false
// when the member is absent, null or blank.
func (b *Binder) scalar(name string) (string, bool) {
	raw, ok := b.fields[name]
	if !ok || isNull(raw) {
		return "", false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	return string(raw), true
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
