package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Name       string           `json:"name" validate:"required,max=5"`
	Price      *decimal.Decimal `json:"price" validate:"required,gte=0"`
	CategoryID *int64           `json:"category_id" validate:"required"`
	Note       string           `json:"-"`
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func int64Ptr(n int64) *int64 { return &n }

func TestCheck_CollectsEveryField(t *testing.T) {
	errs := Errors{}
	err := Check(samplePayload{}, "", errs)
	require.NoError(t, err)

	assert.Equal(t, []string{"The name field is required."}, errs["name"])
	assert.Equal(t, []string{"The price field is required."}, errs["price"])
	assert.Equal(t, []string{"The category id field is required."}, errs["category_id"])
	assert.Len(t, errs, 3)
}

func TestCheck_ZeroPriceIsPresent(t *testing.T) {
	errs := Errors{}
	p := samplePayload{Name: "lamp", Price: decimalPtr("0"), CategoryID: int64Ptr(0)}
	require.NoError(t, Check(p, "", errs))
	assert.Empty(t, errs)
}

func TestCheck_BoundsAndPrefix(t *testing.T) {
	errs := Errors{}
	p := samplePayload{Name: "toolong", Price: decimalPtr("-0.01"), CategoryID: int64Ptr(1)}
	require.NoError(t, Check(p, "products.3.", errs))

	assert.Equal(t, []string{"The products.3.name field must not be greater than 5 characters."}, errs["products.3.name"])
	assert.Equal(t, []string{"The products.3.price field must be at least 0."}, errs["products.3.price"])
}

func TestCheck_MaxCountsRunes(t *testing.T) {
	errs := Errors{}
	p := samplePayload{Name: "ขนมแมว", Price: decimalPtr("1"), CategoryID: int64Ptr(1)}
	require.NoError(t, Check(p, "", errs))
	assert.True(t, errs.Has("name"), "six runes must exceed max=5")

	errs = Errors{}
	p.Name = "ขนมแม"
	require.NoError(t, Check(p, "", errs))
	assert.False(t, errs.Has("name"))
}

func TestCheck_SkipsFieldsThatAlreadyFailed(t *testing.T) {
	errs := Errors{}
	Mismatches{"price": "numeric"}.Report("", errs)
	require.NoError(t, Check(samplePayload{Name: "a", CategoryID: int64Ptr(1)}, "", errs))

	assert.Equal(t, []string{"The price field must be a number."}, errs["price"])
}

func TestErrors_ErrAndAs(t *testing.T) {
	assert.NoError(t, Errors{}.Err())

	errs := Errors{}
	errs.Fail("name", "required", "")
	err := errs.Err()
	require.Error(t, err)

	var target Errors
	require.True(t, errors.As(err, &target))
	assert.Contains(t, err.Error(), "name: The name field is required.")
}

func TestBinder_TypesAndBlanks(t *testing.T) {
	fields, err := ParseObject([]byte(`{"name":"  Lamp ","price":"19.99","category_id":"3","qty":1.5,"title":7,"blank":"   "}`))
	require.NoError(t, err)

	b := Bind(fields)
	assert.Equal(t, "Lamp", b.String("name"))
	assert.True(t, b.Decimal("price").Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(3), *b.Int("category_id"))
	assert.Nil(t, b.Int("qty"))
	assert.Equal(t, "", b.String("title"))
	assert.Nil(t, b.Decimal("blank"))
	assert.Nil(t, b.Decimal("missing"))
	assert.True(t, b.Present("title"))
	assert.False(t, b.Present("blank"))
	assert.False(t, b.Present("missing"))

	assert.Equal(t, Mismatches{"qty": "integer", "title": "string"}, b.Mismatches())
}

func TestBinder_JSONNumbers(t *testing.T) {
	fields, err := ParseObject([]byte(`{"price":19.99,"category_id":1,"bad":true}`))
	require.NoError(t, err)

	b := Bind(fields)
	assert.Equal(t, "19.99", b.Decimal("price").String())
	assert.Equal(t, int64(1), *b.Int("category_id"))
	assert.Nil(t, b.Decimal("bad"))
	assert.Equal(t, "numeric", b.Mismatches()["bad"])
}

func TestFieldsFromForm(t *testing.T) {
	b := Bind(FieldsFromForm(map[string]string{"name": "Desk", "price": "5", "category_id": ""}))
	assert.Equal(t, "Desk", b.String("name"))
	assert.Equal(t, "5", b.Decimal("price").String())
	assert.Nil(t, b.Int("category_id"))
	assert.Empty(t, b.Mismatches())
}

func TestItems(t *testing.T) {
	items, ok := Items([]byte(`[{"name":"A"},"oops",null]`))
	require.True(t, ok)
	require.Len(t, items, 3)
	assert.Equal(t, "A", Bind(items[0]).String("name"))
	assert.Empty(t, items[1])
	assert.Empty(t, items[2])

	_, ok = Items([]byte(`{"name":"A"}`))
	assert.False(t, ok)
	_, ok = Items(nil)
	assert.False(t, ok)
}

func TestParseObject(t *testing.T) {
	fields, err := ParseObject(nil)
	require.NoError(t, err)
	assert.Empty(t, fields)

	fields, err = ParseObject([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, fields)

	_, err = ParseObject([]byte(`{"name":`))
	assert.Error(t, err)
}

func TestImage(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

	errs := Errors{}
	Image("image", png, 2048, errs)
	assert.Empty(t, errs)

	ct, ok := DetectImage(png)
	assert.True(t, ok)
	assert.Equal(t, "image/png", ct)

	errs = Errors{}
	Image("image", []byte("just some text"), 2048, errs)
	assert.Equal(t, []string{"The image field must be an image."}, errs["image"])

	errs = Errors{}
	big := append([]byte("GIF89a"), make([]byte, 2048)...)
	Image("products.0.image", big, 1, errs)
	assert.Equal(t, []string{"The products.0.image field must not be greater than 1 kilobytes."}, errs["products.0.image"])
}

func TestBinder_List(t *testing.T) {
	fields, err := ParseObject([]byte(`{"items":[{"name":"a"},3],"single":"x"}`))
	require.NoError(t, err)

	b := Bind(fields)
	items := b.List("items")
	require.Len(t, items, 2)
	assert.Empty(t, items[1])
	assert.Nil(t, b.List("missing"))
	assert.Nil(t, b.List("single"))
	assert.Equal(t, Mismatches{"single": "array"}, b.Mismatches())
}
