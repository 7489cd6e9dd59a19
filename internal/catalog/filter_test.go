package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/shopstate/internal/models"
)

func sample() []models.Product {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	sale := d("40")
	r1, r2 := 4.8, 3.9
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Product{
		{ID: "1", Name: "denim jacket", Price: d("90"), SalePrice: &sale, Category: "clothing", Sizes: []string{"M", "L"}, Colors: []string{"Blue"}, Rating: &r1, CreatedAt: &older},
		{ID: "2", Name: "Ankle Boots", Price: d("60"), Category: "shoes", Sizes: []string{"L"}, Colors: []string{"Black"}, Tags: []string{"leather"}, Featured: true},
		{ID: "3", Name: "Wireless Earbuds", Description: "Noise cancelling", Price: d("120"), Category: "electronics", Rating: &r2, CreatedAt: &newer},
	}
}

func productIDs(ps []models.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	t.Parallel()
	min50 := decimal.NewFromInt(50)
	max100 := decimal.NewFromInt(100)

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"default sorts by name", Query{}, []string{"2", "1", "3"}},
		{"search name", Query{Search: "DENIM"}, []string{"1"}},
		{"search description", Query{Search: "noise"}, []string{"3"}},
		{"search tags", Query{Search: "leath"}, []string{"2"}},
		{"category", Query{Categories: []string{"shoes", "electronics"}}, []string{"2", "3"}},
		{"size", Query{Sizes: []string{"M"}}, []string{"1"}},
		{"color", Query{Colors: []string{"Black", "Blue"}}, []string{"2", "1"}},
		{"price uses sale price", Query{MinPrice: &min50, MaxPrice: &max100}, []string{"2"}},
		{"featured", Query{Featured: true}, []string{"2"}},
		{"price low", Query{Sort: SortPriceLow}, []string{"1", "2", "3"}},
		{"price high", Query{Sort: SortPriceHigh}, []string{"3", "2", "1"}},
		{"rating", Query{Sort: SortRating}, []string{"1", "3", "2"}},
		{"newest", Query{Sort: SortNewest}, []string{"3", "1", "2"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Filter(sample(), tt.q)
			assert.Equal(t, tt.want, productIDs(got))
		})
	}
}

func TestFilter_DoesNotReorderInput(t *testing.T) {
	t.Parallel()

	in := sample()
	_ = Filter(in, Query{Sort: SortPriceHigh})
	assert.Equal(t, []string{"1", "2", "3"}, productIDs(in))
}

func TestBuildFacets(t *testing.T) {
	t.Parallel()

	f := BuildFacets(sample())
	assert.Equal(t, []string{"clothing", "electronics", "shoes"}, f.Categories)
	assert.Equal(t, []string{"M", "L"}, f.Sizes)
	assert.Equal(t, []string{"Blue", "Black"}, f.Colors)
	assert.Equal(t, "120", f.MaxPrice.String())
}
