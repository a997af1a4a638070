package catalog

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwei-tsao/gold-catalog/pkg/model"
	"github.com/weiwei-tsao/gold-catalog/pkg/pricing"
)

type priceFunc func(ctx context.Context) (float64, error)

func (f priceFunc) FetchUnitPrice(ctx context.Context) (float64, error) { return f(ctx) }

type catalogFunc func(ctx context.Context) ([]model.Product, error)

func (f catalogFunc) FetchCatalog(ctx context.Context) ([]model.Product, error) { return f(ctx) }

func fixedPrice(p float64) priceFunc {
	return func(context.Context) (float64, error) { return p, nil }
}

func fixedCatalog(ps ...model.Product) catalogFunc {
	return func(context.Context) ([]model.Product, error) { return append([]model.Product{}, ps...), nil }
}

func ring(name string, score, weight float64) model.Product {
	return model.Product{
		Name:            name,
		PopularityScore: score,
		Weight:          weight,
		Images:          model.ProductImages{Yellow: name + "-y.jpg", Rose: name + "-r.jpg", White: name + "-w.jpg"},
	}
}

func TestViewLoadReady(t *testing.T) {
	v := NewView("v1", fixedPrice(60), fixedCatalog(ring("Ring", 0.62, 2), ring("Band", 0.3, 1)))
	assert.Equal(t, PhaseInitial, v.Phase())

	require.NoError(t, v.Load(context.Background()))
	assert.Equal(t, PhaseReady, v.Phase())

	snap := v.Snapshot()
	assert.False(t, snap.Loading())
	require.NotNil(t, snap.UnitPrice)
	assert.Equal(t, 60.0, *snap.UnitPrice)
	assert.Equal(t, model.PriceRange{Min: 60, Max: 121}, snap.Range)
	require.Len(t, snap.Cards, 2)

	card := snap.Cards[0]
	assert.Equal(t, 0, card.Position)
	assert.InDelta(t, 120.62, card.Price, 1e-9)
	assert.Equal(t, "120.62", card.PriceLabel)
	assert.Equal(t, 3.0, card.Rating)
	assert.Equal(t, "3", card.RatingLabel)
	assert.Equal(t, pricing.StarCounts{Full: 3, Empty: 2}, card.Stars)
	assert.Equal(t, model.ColorYellow, card.Color)
	assert.Equal(t, "Ring-y.jpg", card.Image)

	assert.ErrorIs(t, v.Load(context.Background()), ErrAlreadyLoaded)
}

func TestViewLoadRunsSourcesConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)
	// Each source waits for the other to start; a sequential load would deadlock.
	barrier := func() { wg.Done(); wg.Wait() }

	v := NewView("v1",
		priceFunc(func(context.Context) (float64, error) { barrier(); return 60, nil }),
		catalogFunc(func(context.Context) ([]model.Product, error) { barrier(); return []model.Product{}, nil }),
	)
	require.NoError(t, v.Load(context.Background()))
	assert.Equal(t, PhaseReady, v.Phase())
}

func TestViewFailureIsTerminalAndIndependent(t *testing.T) {
	release := make(chan struct{})
	priceErr := errors.New("failed to fetch gold price: HTTP Status Error: 404")

	v := NewView("v1",
		priceFunc(func(context.Context) (float64, error) { return 0, priceErr }),
		catalogFunc(func(context.Context) ([]model.Product, error) {
			<-release
			return []model.Product{ring("Ring", 0.5, 1)}, nil
		}),
	)

	loadErr := make(chan error, 1)
	go func() { loadErr <- v.Load(context.Background()) }()

	require.Eventually(t, func() bool { return v.Phase() == PhaseFailed }, time2s, tick)
	snap := v.Snapshot()
	assert.Equal(t, SourceFailed, snap.Price.State)
	assert.Contains(t, snap.Price.Error, "404")
	assert.True(t, snap.Catalog.Loading(), "catalog flag clears on its own completion")
	assert.Nil(t, snap.UnitPrice, "no partial price on failure")
	assert.Empty(t, snap.Cards)

	close(release)
	assert.ErrorIs(t, <-loadErr, priceErr)

	snap = v.Snapshot()
	assert.Equal(t, PhaseFailed, snap.Phase)
	assert.Equal(t, SourceReady, snap.Catalog.State)
	assert.ErrorIs(t, v.ApplyFilter(pricing.Criteria{}), ErrNotReady)
}

func TestViewNilCatalogFails(t *testing.T) {
	v := NewView("v1", fixedPrice(60), catalogFunc(func(context.Context) ([]model.Product, error) { return nil, nil }))
	require.NoError(t, v.Load(context.Background()))
	assert.Equal(t, PhaseFailed, v.Phase())
}

func TestViewApplyFilterDoesNotRefetch(t *testing.T) {
	priceCalls, catalogCalls := 0, 0
	v := NewView("v1",
		priceFunc(func(context.Context) (float64, error) { priceCalls++; return 100, nil }),
		catalogFunc(func(context.Context) ([]model.Product, error) {
			catalogCalls++
			return []model.Product{ring("A", 0.85, 2.1), ring("B", 0.51, 3.4), ring("C", 0.96, 2.5)}, nil
		}),
	)
	assert.ErrorIs(t, v.ApplyFilter(pricing.Criteria{}), ErrNotReady)
	require.NoError(t, v.Load(context.Background()))

	require.NoError(t, v.ApplyFilter(pricing.Criteria{MinStars: pricing.Float(4.5)}))
	snap := v.Snapshot()
	require.Len(t, snap.Cards, 2)
	assert.Equal(t, []int{0, 2}, []int{snap.Cards[0].Position, snap.Cards[1].Position})
	assert.Equal(t, 3, snap.Total)
	require.NotNil(t, snap.Criteria.MinStars)

	require.NoError(t, v.ApplyFilter(pricing.Criteria{MaxPrice: pricing.Float(300)}))
	snap = v.Snapshot()
	assert.Len(t, snap.Cards, 2)
	assert.Equal(t, "A", snap.Cards[0].Name)
	assert.Equal(t, "C", snap.Cards[1].Name)

	require.NoError(t, v.ApplyFilter(pricing.Criteria{}))
	assert.Len(t, v.Snapshot().Cards, 3)

	assert.Equal(t, 1, priceCalls)
	assert.Equal(t, 1, catalogCalls)
}

func TestViewSelectColor(t *testing.T) {
	v := NewView("v1", fixedPrice(60), fixedCatalog(ring("Ring", 0.62, 2), ring("Band", 0.3, 1)))
	assert.ErrorIs(t, v.SelectColor(0, model.ColorRose), ErrNotReady)
	require.NoError(t, v.Load(context.Background()))

	require.NoError(t, v.SelectColor(1, model.ColorRose))
	snap := v.Snapshot()
	assert.Equal(t, model.ColorYellow, snap.Cards[0].Color)
	assert.Equal(t, model.ColorRose, snap.Cards[1].Color)
	assert.Equal(t, "Band-r.jpg", snap.Cards[1].Image)

	assert.ErrorIs(t, v.SelectColor(2, model.ColorWhite), ErrProductIndex)
	assert.ErrorIs(t, v.SelectColor(-1, model.ColorWhite), ErrProductIndex)
}

func TestViewEmptyCatalog(t *testing.T) {
	v := NewView("v1", fixedPrice(93.45), fixedCatalog())
	require.NoError(t, v.Load(context.Background()))

	require.NoError(t, v.ApplyFilter(pricing.Criteria{MinPrice: pricing.Float(10)}))
	snap := v.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Equal(t, model.PriceRange{}, snap.Range)
	assert.Empty(t, snap.Cards)

	stats, err := v.Summary()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalProducts)
}

func TestViewRejectsNonFiniteCriteria(t *testing.T) {
	v := NewView("v1", fixedPrice(60), fixedCatalog(ring("Ring", 0.62, 2)))
	require.NoError(t, v.Load(context.Background()))
	nan := math.NaN()
	assert.ErrorIs(t, v.ApplyFilter(pricing.Criteria{MinPrice: &nan}), pricing.ErrInvalidCriteria)
}
