package catalog

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopstate/internal/models"
)

type SortOption string

const (
	SortName      SortOption = "name"
	SortPriceLow  SortOption = "price_low"
	SortPriceHigh SortOption = "price_high"
	SortRating    SortOption = "rating"
	SortNewest    SortOption = "newest"
)

type Query struct {
	Search     string
	Categories []string
	Sizes      []string
	Colors     []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Featured   bool
	Sort       SortOption
}

// Filter returns the products matching q, sorted. The input is not modified.
// Size and color filters match when the product offers any of the values.
func Filter(products []models.Product, q Query) []models.Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if len(q.Categories) > 0 && !slices.Contains(q.Categories, p.Category) {
			continue
		}
		if len(q.Sizes) > 0 && !anyOf(p.Sizes, q.Sizes) {
			continue
		}
		if len(q.Colors) > 0 && !anyOf(p.Colors, q.Colors) {
			continue
		}
		price := p.DisplayPrice()
		if q.MinPrice != nil && price.LessThan(*q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && price.GreaterThan(*q.MaxPrice) {
			continue
		}
		if q.Featured && !p.Featured {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, q.Sort)
	return out
}

func matchesSearch(p models.Product, s string) bool {
	if strings.Contains(strings.ToLower(p.Name), s) || strings.Contains(strings.ToLower(p.Description), s) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), s) {
			return true
		}
	}
	return false
}

func anyOf(have, want []string) bool {
	for _, h := range have {
		if slices.Contains(want, h) {
			return true
		}
	}
	return false
}

func sortProducts(ps []models.Product, by SortOption) {
	var less func(a, b models.Product) bool
	switch by {
	case SortPriceLow:
		less = func(a, b models.Product) bool { return a.DisplayPrice().LessThan(b.DisplayPrice()) }
	case SortPriceHigh:
		less = func(a, b models.Product) bool { return a.DisplayPrice().GreaterThan(b.DisplayPrice()) }
	case SortRating:
		less = func(a, b models.Product) bool { return a.RatingValue() > b.RatingValue() }
	case SortNewest:
		less = func(a, b models.Product) bool { return created(a).After(created(b)) }
	default:
		less = func(a, b models.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	}
	sort.SliceStable(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
}

func created(p models.Product) time.Time {
	if p.CreatedAt == nil {
		return time.Time{}
	}
	return *p.CreatedAt
}

// Facets lists the filter values available across products.
type Facets struct {
	Categories []string        `json:"categories"`
	Sizes      []string        `json:"sizes"`
	Colors     []string        `json:"colors"`
	MaxPrice   decimal.Decimal `json:"max_price"`
}

func BuildFacets(products []models.Product) Facets {
	f := Facets{MaxPrice: decimal.Zero}
	for _, p := range products {
		f.Categories = appendUnique(f.Categories, p.Category)
		for _, s := range p.Sizes {
			f.Sizes = appendUnique(f.Sizes, s)
		}
		for _, c := range p.Colors {
			f.Colors = appendUnique(f.Colors, c)
		}
		if p.Price.GreaterThan(f.MaxPrice) {
			f.MaxPrice = p.Price
		}
	}
	sort.Strings(f.Categories)
	return f
}

func appendUnique(list []string, v string) []string {
	if v == "" || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
