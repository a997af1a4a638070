// Package pricing derives display prices and star ratings from catalog products
// and filters a catalog by price and rating.
package pricing

import (
	"math"
	"strconv"

	"github.com/weiwei-tsao/gold-catalog/pkg/model"
)

// MaxStars is the top of the star scale.
const MaxStars = 5

// DisplayPrice is popularity plus weight times the unit price. The two terms are
// summed, not scaled against each other. NaN inputs yield NaN.
func DisplayPrice(p model.Product, unitPrice float64) float64 {
	return p.PopularityScore + p.Weight*unitPrice
}

// StarRating quantizes a popularity score to the nearest half star, rounding halves up.
// Scores outside [0,1] are not clamped.
func StarRating(popularityScore float64) float64 {
	return math.Floor(popularityScore*MaxStars*2+0.5) / 2
}

// StarCounts is how many full, half and empty stars to draw for a rating.
type StarCounts struct {
	Full  int `json:"full"`
	Half  int `json:"half"`
	Empty int `json:"empty"`
}

// Stars splits a rating into drawable stars. The total is always MaxStars.
func Stars(rating float64) StarCounts {
	if math.IsNaN(rating) || rating < 0 {
		return StarCounts{Empty: MaxStars}
	}
	full := MaxStars
	if rating < MaxStars {
		full = int(math.Floor(rating))
	}
	half := 0
	if full < MaxStars && math.Mod(rating, 1) >= 0.5 {
		half = 1
	}
	return StarCounts{Full: full, Half: half, Empty: MaxStars - full - half}
}

// Range returns the floor of the lowest and the ceiling of the highest display
// price in the catalog. An empty catalog yields {0, 0}.
func Range(catalog []model.Product, unitPrice float64) model.PriceRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range catalog {
		price := DisplayPrice(p, unitPrice)
		if price < lo {
			lo = price
		}
		if price > hi {
			hi = price
		}
	}
	if math.IsInf(lo, 1) || math.IsInf(hi, -1) {
		return model.PriceRange{}
	}
	return model.PriceRange{Min: math.Floor(lo), Max: math.Ceil(hi)}
}

// Summarize aggregates a priced catalog.
func Summarize(catalog []model.Product, unitPrice float64) model.CatalogStats {
	stats := model.CatalogStats{
		TotalProducts: len(catalog),
		Range:         Range(catalog, unitPrice),
		ByStars:       make(map[string]int),
	}

	var priceSum float64
	for _, p := range catalog {
		priceSum += DisplayPrice(p, unitPrice)
		stats.TotalWeight += p.Weight
		stats.ByStars[FormatRating(StarRating(p.PopularityScore))]++
	}
	if len(catalog) > 0 {
		stats.AvgPrice = priceSum / float64(len(catalog))
	}
	return stats
}

// FormatRating renders a rating without trailing zeros, e.g. "3" or "3.5".
func FormatRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64)
}

// FormatPrice renders a display price with two decimals.
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64)
}
