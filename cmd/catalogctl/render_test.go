package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwei-tsao/gold-catalog/internal/business/catalog"
	"github.com/weiwei-tsao/gold-catalog/internal/web"
	"github.com/weiwei-tsao/gold-catalog/pkg/model"
	"github.com/weiwei-tsao/gold-catalog/pkg/pricing"
)

type fixedPrice float64

func (p fixedPrice) FetchUnitPrice(context.Context) (float64, error) { return float64(p), nil }

func loadedView(t *testing.T, criteria pricing.Criteria) (catalog.Snapshot, model.CatalogStats) {
	t.Helper()
	v := catalog.NewView("test", fixedPrice(60), catalog.NewFileCatalogSource(web.Catalog(), web.CatalogFile))
	require.NoError(t, v.Load(context.Background()))
	require.NoError(t, v.ApplyFilter(criteria))
	stats, err := v.Summary()
	require.NoError(t, err)
	return v.Snapshot(), stats
}

func TestRenderProducts(t *testing.T) {
	snap, stats := loadedView(t, pricing.Criteria{})

	var buf bytes.Buffer
	require.NoError(t, renderProducts(&buf, snap, stats))
	out := buf.String()
	assert.Contains(t, out, "Product List")
	assert.Contains(t, out, "gold 60.00 USD/g")
	// 0.85 + 2.1*60
	assert.Contains(t, out, "Engagement Ring 1")
	assert.Contains(t, out, "$126.85 USD")
	assert.Contains(t, out, "4.5/5")
	assert.Contains(t, out, "8 of 8 products")
}

func TestRenderProductsEmpty(t *testing.T) {
	snap, stats := loadedView(t, pricing.Criteria{MinPrice: pricing.Float(100000)})

	var buf bytes.Buffer
	require.NoError(t, renderProducts(&buf, snap, stats))
	assert.Contains(t, buf.String(), "No products match the filter.")
}

func TestRenderStars(t *testing.T) {
	assert.Contains(t, renderStars(pricing.StarCounts{Full: 3, Half: 1, Empty: 1}), "★★★⯪")
}
