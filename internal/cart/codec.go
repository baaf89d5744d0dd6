// Package cart validates client-held carts against the catalog.
package cart

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strconv"

	"github.com/ariefcatur/storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// minorExponent is the number of decimal places in one major currency unit.
const minorExponent = 2

// Cart is the wire form: product id -> quantity. Values stay raw so that
// strings, fractions and garbage can be dropped individually.
type Cart map[string]json.RawMessage

type Line struct {
	Product   catalog.Product
	Quantity  int
	UnitMinor int64
}

func (l Line) SubtotalMinor() int64 { return l.UnitMinor * int64(l.Quantity) }

// Normalized is a validated cart ordered by product id.
type Normalized struct {
	Lines      []Line
	TotalMinor int64
}

// ToMinor converts a decimal amount to minor units, rounding half to even.
func ToMinor(amount decimal.Decimal) int64 {
	return amount.Shift(minorExponent).RoundBank(0).IntPart()
}

// Normalize drops unknown products and non-positive or non-integer
// quantities, and totals the remaining lines. Each unit price is rounded to
// minor units once and then multiplied by quantity, so the total always
// equals the sum of the line subtotals that get persisted.
func Normalize(c Cart, products []catalog.Product) (Normalized, error) {
	idx := catalog.Index(products)
	var n Normalized
	for key, raw := range c {
		// only canonical ids, so "7" and "07" cannot yield two lines
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || strconv.FormatInt(id, 10) != key {
			continue
		}
		p, ok := idx[id]
		if !ok {
			continue
		}
		qty, ok := parseQuantity(raw)
		if !ok {
			continue
		}
		n.Lines = append(n.Lines, Line{Product: p, Quantity: qty, UnitMinor: ToMinor(p.Price)})
	}
	if len(n.Lines) == 0 {
		return Normalized{}, ErrEmptyCart
	}
	sort.Slice(n.Lines, func(i, j int) bool { return n.Lines[i].Product.ID < n.Lines[j].Product.ID })
	for _, l := range n.Lines {
		n.TotalMinor += l.SubtotalMinor()
	}
	return n, nil
}

func parseQuantity(raw json.RawMessage) (int, bool) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, false
	}
	d, err := decimal.NewFromString(num.String())
	if err != nil || !d.IsInteger() || !d.IsPositive() {
		return 0, false
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, false
	}
	return int(d.IntPart()), true
}
