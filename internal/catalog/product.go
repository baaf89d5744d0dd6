package catalog

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product is owned by the catalog; orders snapshot name and price at checkout.
type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Img   string          `json:"img"`
	Desc  string          `json:"desc,omitempty"`
}

// MarshalJSON keeps price a JSON number, which is what the storefront reads.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		Price json.Number `json:"price"`
	}{alias: alias(p), Price: json.Number(p.Price.String())})
}

type Source interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// Index maps product ids to products. Later duplicates win.
func Index(ps []Product) map[int64]Product {
	out := make(map[int64]Product, len(ps))
	for _, p := range ps {
		out[p.ID] = p
	}
	return out
}
