package cart

import (
	"encoding/json"
	"testing"

	"github.com/ariefcatur/storefront/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, price string) catalog.Product {
	return catalog.Product{ID: id, Name: "p", Price: decimal.RequireFromString(price)}
}

func decodeCart(t *testing.T, s string) Cart {
	t.Helper()
	var c Cart
	require.NoError(t, json.Unmarshal([]byte(s), &c))
	return c
}

var testCatalog = []catalog.Product{
	product(1, "18.00"),
	product(2, "14.99"),
	product(7, "12.50"),
	product(8, "0.125"),
	product(9, "0.135"),
}

func TestNormalize_SingleLine(t *testing.T) {
	n, err := Normalize(decodeCart(t, `{"7": 2}`), testCatalog)
	require.NoError(t, err)

	require.Len(t, n.Lines, 1)
	assert.Equal(t, int64(7), n.Lines[0].Product.ID)
	assert.Equal(t, 2, n.Lines[0].Quantity)
	assert.Equal(t, int64(1250), n.Lines[0].UnitMinor)
	assert.Equal(t, int64(2500), n.TotalMinor)
}

func TestNormalize_OnlyUnknownProducts(t *testing.T) {
	for _, in := range []string{`{}`, `{"100": 1}`, `{"100": 1, "200": 3}`, `{"abc": 2}`, `{"07": 1, " 7": 1}`} {
		_, err := Normalize(decodeCart(t, in), testCatalog)
		assert.ErrorIs(t, err, ErrEmptyCart, in)
	}
}

func TestNormalize_DropsBadQuantities(t *testing.T) {
	c := decodeCart(t, `{"1": 0, "2": -3, "7": 1.5, "8": "x", "9": null, "100": 4}`)
	_, err := Normalize(c, testCatalog)
	assert.ErrorIs(t, err, ErrEmptyCart)

	c = decodeCart(t, `{"1": 2.0, "2": true, "7": 3, "8": 99999999999}`)
	n, err := Normalize(c, testCatalog)
	require.NoError(t, err)
	require.Len(t, n.Lines, 2)
	assert.Equal(t, int64(1), n.Lines[0].Product.ID)
	assert.Equal(t, 2, n.Lines[0].Quantity)
	assert.Equal(t, int64(7), n.Lines[1].Product.ID)
}

func TestNormalize_OrderedAndTotalIsSumOfLines(t *testing.T) {
	n, err := Normalize(decodeCart(t, `{"9": 3, "2": 5, "1": 1, "8": 7}`), testCatalog)
	require.NoError(t, err)

	var ids []int64
	var sum int64
	for _, l := range n.Lines {
		ids = append(ids, l.Product.ID)
		sum += l.UnitMinor * int64(l.Quantity)
	}
	assert.Equal(t, []int64{1, 2, 8, 9}, ids)
	assert.Equal(t, sum, n.TotalMinor)
	// 1800 + 5*1499 + 7*12 + 3*14
	assert.Equal(t, int64(1800+7495+84+42), n.TotalMinor)
}

func TestToMinor_BankersRounding(t *testing.T) {
	cases := map[string]int64{
		"12.50":  1250,
		"0.125":  12,
		"0.135":  14,
		"0.1251": 13,
		"19.995": 2000,
		"0":      0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ToMinor(decimal.RequireFromString(in)), in)
	}
}
