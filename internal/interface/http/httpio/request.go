// Package httpio holds the request binding and error rendering shared by the
// catalog's fiber handlers.
package httpio

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/catalog-backend/internal/validation"
)

// MaxFormIndex bounds the item index accepted in bracketed form keys such as
// products[7][name].
const MaxFormIndex = 999

// Body is one decoded request body.
type Body struct {
	Fields validation.Fields
	// Files holds uploaded files keyed by their form field name, e.g.
	// "image" or "products[0][image]".
	Files map[string]*multipart.FileHeader
}

// File returns the upload stored under key, or nil.
func (b Body) File(key string) *multipart.FileHeader {
	if b.Files == nil {
		return nil
	}
	return b.Files[key]
}

// ReadBody decodes JSON, urlencoded and multipart bodies into Fields.
// Bracketed form keys (items[0][name]) become arrays of objects, so bulk
// requests bind the same way whichever encoding the client used. A body that
// is not valid JSON is reported as a validation error on "body".
func ReadBody(c *fiber.Ctx) (Body, error) {
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))

	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return Body{}, fmt.Errorf("failed to parse multipart form: %w", err)
		}
		values := make(map[string]string, len(form.Value))
		for k, v := range form.Value {
			if len(v) > 0 {
				values[k] = v[0]
			}
		}
		files := make(map[string]*multipart.FileHeader, len(form.File))
		for k, v := range form.File {
			if len(v) > 0 {
				files[k] = v[0]
			}
		}
		fields, err := nestForm(values, files)
		if err != nil {
			return Body{}, err
		}
		return Body{Fields: fields, Files: files}, nil

	case strings.HasPrefix(ct, fiber.MIMEApplicationForm):
		values := map[string]string{}
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			values[string(k)] = string(v)
		})
		fields, err := nestForm(values, nil)
		if err != nil {
			return Body{}, err
		}
		return Body{Fields: fields}, nil

	default:
		fields, err := validation.ParseObject(c.Body())
		if err != nil {
			errs := validation.Errors{}
			errs.Fail("body", "json", "")
			return Body{}, errs
		}
		return Body{Fields: fields}, nil
	}
}

var bracketKey = regexp.MustCompile(`^(\w+)\[(\d+)\]\[(\w+)\]$`)

// nestForm turns flat form values into Fields. Plain keys become strings;
// keys like products[2][name] are collected into a "products" array whose
// element 2 has a "name" member. Bracketed file keys count towards the length
// of their list, so an item sent only as a file still shows up as an (empty)
// element. Missing indexes become empty objects. An index above MaxFormIndex
// is a validation error on the list.
func nestForm(values map[string]string, files map[string]*multipart.FileHeader) (validation.Fields, error) {
	plain := map[string]string{}
	nested := map[string]map[int]map[string]string{}
	errs := validation.Errors{}

	item := func(key string) (map[string]string, string, bool) {
		m := bracketKey.FindStringSubmatch(key)
		if m == nil {
			return nil, "", false
		}
		idx, err := strconv.Atoi(m[2])
		if err != nil || idx > MaxFormIndex {
			if !errs.Has(m[1]) {
				errs.Fail(m[1], "max_items", strconv.Itoa(MaxFormIndex+1))
			}
			return nil, "", true
		}
		if nested[m[1]] == nil {
			nested[m[1]] = map[int]map[string]string{}
		}
		if nested[m[1]][idx] == nil {
			nested[m[1]][idx] = map[string]string{}
		}
		return nested[m[1]][idx], m[3], true
	}

	for k, v := range values {
		obj, field, ok := item(k)
		if !ok {
			plain[k] = v
			continue
		}
		if obj != nil {
			obj[field] = v
		}
	}
	for k := range files {
		item(k)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	fields := validation.FieldsFromForm(plain)
	for name, items := range nested {
		fields[name] = encodeItems(items)
	}
	return fields, nil
}

func encodeItems(items map[int]map[string]string) json.RawMessage {
	indexes := make([]int, 0, len(items))
	for i := range items {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	out := make([]map[string]string, indexes[len(indexes)-1]+1)
	for i := range out {
		out[i] = map[string]string{}
	}
	for _, i := range indexes {
		out[i] = items[i]
	}
	raw, _ := json.Marshal(out)
	return raw
}

// ItemFileKey is the form key of a file belonging to item i of a bulk upload.
func ItemFileKey(list string, i int, field string) string {
	return fmt.Sprintf("%s[%d][%s]", list, i, field)
}

// ReadFile loads an uploaded file into memory.
func ReadFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

// ParseID reads the :id route parameter. ok is false unless it is a positive
// integer.
func ParseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
