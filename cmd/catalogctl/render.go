package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/weiwei-tsao/gold-catalog/internal/business/catalog"
	"github.com/weiwei-tsao/gold-catalog/pkg/model"
	"github.com/weiwei-tsao/gold-catalog/pkg/pricing"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E6CA97"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	starStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

func renderStars(s pricing.StarCounts) string {
	return starStyle.Render(strings.Repeat("★", s.Full)+strings.Repeat("⯪", s.Half)) +
		mutedStyle.Render(strings.Repeat("☆", s.Empty))
}

func renderProducts(w io.Writer, snap catalog.Snapshot, stats model.CatalogStats) error {
	unit := 0.0
	if snap.UnitPrice != nil {
		unit = *snap.UnitPrice
	}
	if _, err := fmt.Fprintf(w, "%s  %s\n\n",
		titleStyle.Render("Product List"),
		mutedStyle.Render(fmt.Sprintf("gold %s USD/g, prices %s to %s",
			pricing.FormatPrice(unit), pricing.FormatRating(snap.Range.Min), pricing.FormatRating(snap.Range.Max)))); err != nil {
		return err
	}

	if len(snap.Cards) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No products match the filter."))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("#"),
		headerStyle.Render("Name"),
		headerStyle.Render("Price"),
		headerStyle.Render("Rating")); err != nil {
		return err
	}
	for _, card := range snap.Cards {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t$%s USD\t%s %s/5\n",
			card.Position+1, card.Name, card.PriceLabel, renderStars(card.Stars), card.RatingLabel); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s\n", mutedStyle.Render(fmt.Sprintf("%d of %d products, average $%s USD",
		len(snap.Cards), stats.TotalProducts, pricing.FormatPrice(stats.AvgPrice))))
	return err
}
