package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/weiwei-tsao/gold-catalog/internal/business/catalog"
	"github.com/weiwei-tsao/gold-catalog/internal/web"
	"github.com/weiwei-tsao/gold-catalog/pkg/pricing"
)

type productsOptions struct {
	minPrice string
	maxPrice string
	minStars string
	file     string
	site     string
	asJSON   bool
}

func productsCmd() *cobra.Command {
	var opts productsOptions
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List priced products",
		Long: `Load the gold price and the catalog, compute every display price and
star rating, and print the products that pass the filter in catalog order.

Blank bounds default to the catalog's price range and zero stars.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProducts(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.minPrice, "min-price", "", "lowest display price to keep")
	cmd.Flags().StringVar(&opts.maxPrice, "max-price", "", "highest display price to keep")
	cmd.Flags().StringVar(&opts.minStars, "min-stars", "", "lowest star rating to keep (0-5)")
	cmd.Flags().StringVar(&opts.file, "catalog", "", "catalog JSON file (default: built-in catalog)")
	cmd.Flags().StringVar(&opts.site, "site", "", "load both sources from a running server, e.g. http://127.0.0.1:8080")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func runProducts(cmd *cobra.Command, opts productsOptions) error {
	criteria, err := pricing.ParseCriteria(opts.minPrice, opts.maxPrice, opts.minStars)
	if err != nil {
		return err
	}

	prices, products := sources(opts)
	view := catalog.NewView("catalogctl", prices, products)
	if err := view.Load(cmd.Context()); err != nil {
		return err
	}
	if err := view.ApplyFilter(criteria); err != nil {
		return err
	}
	stats, err := view.Summary()
	if err != nil {
		return err
	}
	snap := view.Snapshot()

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"view": snap, "stats": stats})
	}
	return renderProducts(cmd.OutOrStdout(), snap, stats)
}

func sources(opts productsOptions) (catalog.PriceSource, catalog.CatalogSource) {
	if opts.site != "" {
		fetcher := catalog.NewHTTPFetcher(requestTimeout())
		return catalog.NewHTTPPriceSource(fetcher, opts.site), catalog.NewHTTPCatalogSource(fetcher, opts.site)
	}

	prices := catalog.NewQuotePriceSource(newQuoteService())
	if opts.file == "" {
		return prices, catalog.NewFileCatalogSource(web.Catalog(), web.CatalogFile)
	}
	return prices, catalog.NewFileCatalogSource(os.DirFS(filepath.Dir(opts.file)), filepath.Base(opts.file))
}
