package model

import (
	"errors"
	"fmt"
	"strings"
)

// Color is one of the fixed metal color variants a product is photographed in.
type Color string

const (
	ColorYellow Color = "yellow"
	ColorRose   Color = "rose"
	ColorWhite  Color = "white"
)

// Swatch pairs a color with the hex value used for its selector button.
type Swatch struct {
	Color Color
	Hex   string
}

// Swatches lists the selectable colors in display order.
var Swatches = []Swatch{
	{Color: ColorYellow, Hex: "#E6CA97"},
	{Color: ColorWhite, Hex: "#D9D9D9"},
	{Color: ColorRose, Hex: "#E1A4A9"},
}

// ErrUnknownColor is returned when a color name is not one of the three variants.
var ErrUnknownColor = errors.New("unknown color")

// ParseColor maps a color name to a Color.
func ParseColor(s string) (Color, error) {
	switch c := Color(strings.ToLower(strings.TrimSpace(s))); c {
	case ColorYellow, ColorRose, ColorWhite:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
}

// ProductImages holds one image reference per color variant.
type ProductImages struct {
	Yellow string `json:"yellow" firestore:"yellow"`
	Rose   string `json:"rose" firestore:"rose"`
	White  string `json:"white" firestore:"white"`
}

// For returns the image reference for the given color.
func (i ProductImages) For(c Color) string {
	switch c {
	case ColorRose:
		return i.Rose
	case ColorWhite:
		return i.White
	default:
		return i.Yellow
	}
}

// Product is a catalog entry. Its identity is its position in the catalog.
type Product struct {
	Name            string        `json:"name" firestore:"name"`
	PopularityScore float64       `json:"popularityScore" firestore:"popularityScore"`
	Weight          float64       `json:"weight" firestore:"weight"`
	Images          ProductImages `json:"images" firestore:"images"`
}

// Validate checks the fields a product cannot be displayed without.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	var missing []string
	for _, s := range Swatches {
		if strings.TrimSpace(p.Images.For(s.Color)) == "" {
			missing = append(missing, string(s.Color))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("product %q missing images: %s", p.Name, strings.Join(missing, ", "))
	}
	return nil
}

// PriceRange is the rounded span of display prices across a catalog.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CatalogStats summarizes a priced catalog.
type CatalogStats struct {
	TotalProducts int            `json:"totalProducts"`
	Range         PriceRange     `json:"range"`
	AvgPrice      float64        `json:"avgPrice"`
	TotalWeight   float64        `json:"totalWeight"`
	ByStars       map[string]int `json:"byStars,omitempty"`
}
