package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/weiwei-tsao/gold-catalog/pkg/model"
)

// ErrInvalidCriteria is returned when a filter input is not a finite number.
var ErrInvalidCriteria = errors.New("invalid filter criteria")

// Criteria holds the optional filter bounds. Nil fields fall back to the catalog
// price range and zero stars.
type Criteria struct {
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	MinStars *float64 `json:"minStars,omitempty"`
}

// ParseCriteria reads raw form inputs. Blank inputs stay unset.
func ParseCriteria(minPrice, maxPrice, minStars string) (Criteria, error) {
	var c Criteria
	var err error
	if c.MinPrice, err = parseBound("minPrice", minPrice); err != nil {
		return Criteria{}, err
	}
	if c.MaxPrice, err = parseBound("maxPrice", maxPrice); err != nil {
		return Criteria{}, err
	}
	if c.MinStars, err = parseBound("minStars", minStars); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

func parseBound(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidCriteria, field, raw)
	}
	return &v, nil
}

// Validate rejects non-finite bounds set programmatically or decoded from JSON.
func (c Criteria) Validate() error {
	for field, v := range map[string]*float64{"minPrice": c.MinPrice, "maxPrice": c.MaxPrice, "minStars": c.MinStars} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidCriteria, field)
		}
	}
	return nil
}

// Bounds are the effective limits a filter applies.
type Bounds struct {
	MinPrice float64 `json:"minPrice"`
	MaxPrice float64 `json:"maxPrice"`
	MinStars float64 `json:"minStars"`
}

// Resolve fills unset criteria from the price range.
func (c Criteria) Resolve(r model.PriceRange) Bounds {
	b := Bounds{MinPrice: r.Min, MaxPrice: r.Max}
	if c.MinPrice != nil {
		b.MinPrice = *c.MinPrice
	}
	if c.MaxPrice != nil {
		b.MaxPrice = *c.MaxPrice
	}
	if c.MinStars != nil {
		b.MinStars = *c.MinStars
	}
	return b
}

// Filter keeps the products whose display price lies within the bounds and whose
// star rating reaches the minimum. Catalog order is preserved.
func Filter(catalog []model.Product, unitPrice float64, c Criteria) []model.Product {
	idx := FilterIndexes(catalog, unitPrice, c)
	out := make([]model.Product, 0, len(idx))
	for _, i := range idx {
		out = append(out, catalog[i])
	}
	return out
}

// FilterIndexes is Filter returning catalog positions instead of products.
func FilterIndexes(catalog []model.Product, unitPrice float64, c Criteria) []int {
	b := c.Resolve(Range(catalog, unitPrice))
	out := make([]int, 0, len(catalog))
	for i, p := range catalog {
		if b.Match(p, unitPrice) {
			out = append(out, i)
		}
	}
	return out
}

// Match reports whether a product passes the bounds at the given unit price.
func (b Bounds) Match(p model.Product, unitPrice float64) bool {
	price := DisplayPrice(p, unitPrice)
	return price >= b.MinPrice && price <= b.MaxPrice && StarRating(p.PopularityScore) >= b.MinStars
}

// Float is a convenience for building Criteria literals.
func Float(v float64) *float64 { return &v }
