package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/weiwei-tsao/gold-catalog/pkg/model"
	"github.com/weiwei-tsao/gold-catalog/pkg/pricing"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotReady is returned by actions that need both sources loaded.
	ErrNotReady = errors.New("view is not ready")
	// ErrAlreadyLoaded is returned when Load is called a second time.
	ErrAlreadyLoaded = errors.New("view already loaded")
	// ErrProductIndex is returned for a card position outside the catalog.
	ErrProductIndex = errors.New("product index out of range")
)

// Phase is the overall state of a view.
type Phase string

const (
	PhaseInitial Phase = "initial"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// SourceState is the load state of one source.
type SourceState string

const (
	SourceIdle    SourceState = "idle"
	SourceLoading SourceState = "loading"
	SourceReady   SourceState = "ready"
	SourceFailed  SourceState = "failed"
)

// SourceStatus reports one source's state and, when failed, why.
type SourceStatus struct {
	State SourceState `json:"state"`
	Error string      `json:"error,omitempty"`
}

// Loading reports whether the source's fetch is in flight.
func (s SourceStatus) Loading() bool { return s.State == SourceLoading }

// View holds the state of one page load: both sources, the filter criteria,
// the visible cards and each card's selected color.
type View struct {
	id      string
	prices  PriceSource
	catalog CatalogSource

	mu        sync.RWMutex
	started   bool
	priceSt   SourceStatus
	catalogSt SourceStatus
	unitPrice float64
	products  []model.Product
	criteria  pricing.Criteria
	visible   []int
	colors    []model.Color
	createdAt time.Time
	done      chan struct{}
}

// NewView creates a view in the initial phase.
func NewView(id string, prices PriceSource, catalog CatalogSource) *View {
	return &View{
		id:        id,
		prices:    prices,
		catalog:   catalog,
		priceSt:   SourceStatus{State: SourceIdle},
		catalogSt: SourceStatus{State: SourceIdle},
		createdAt: time.Now().UTC(),
		done:      make(chan struct{}),
	}
}

func (v *View) ID() string { return v.id }

// Done is closed once both sources have settled.
func (v *View) Done() <-chan struct{} { return v.done }

// Load fetches the unit price and the catalog concurrently. Each source's
// status is recorded on its own completion; the first error is returned.
func (v *View) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.started {
		v.mu.Unlock()
		return ErrAlreadyLoaded
	}
	v.started = true
	v.priceSt = SourceStatus{State: SourceLoading}
	v.catalogSt = SourceStatus{State: SourceLoading}
	v.mu.Unlock()
	defer close(v.done)

	var g errgroup.Group
	g.Go(func() error {
		price, err := v.prices.FetchUnitPrice(ctx)
		v.finishPrice(price, err)
		return err
	})
	g.Go(func() error {
		products, err := v.catalog.FetchCatalog(ctx)
		v.finishCatalog(products, err)
		return err
	})
	return g.Wait()
}

func (v *View) finishPrice(price float64, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.priceSt = SourceStatus{State: SourceFailed, Error: err.Error()}
		return
	}
	v.unitPrice = price
	v.priceSt = SourceStatus{State: SourceReady}
}

func (v *View) finishCatalog(products []model.Product, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err == nil && products == nil {
		err = fmt.Errorf("failed to get products: %w", ErrMalformedResponse)
	}
	if err != nil {
		v.catalogSt = SourceStatus{State: SourceFailed, Error: err.Error()}
		return
	}
	v.products = products
	v.visible = make([]int, len(products))
	v.colors = make([]model.Color, len(products))
	for i := range products {
		v.visible[i] = i
		v.colors[i] = model.ColorYellow
	}
	v.catalogSt = SourceStatus{State: SourceReady}
}

// Phase derives the view phase from the two sources. A failure on either side
// is terminal even while the other is still loading.
func (v *View) Phase() Phase {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.phaseLocked()
}

func (v *View) phaseLocked() Phase {
	switch {
	case v.priceSt.State == SourceFailed || v.catalogSt.State == SourceFailed:
		return PhaseFailed
	case v.priceSt.State == SourceReady && v.catalogSt.State == SourceReady:
		return PhaseReady
	case v.priceSt.State == SourceIdle && v.catalogSt.State == SourceIdle:
		return PhaseInitial
	default:
		return PhaseLoading
	}
}

// ApplyFilter re-runs the filter over the loaded catalog. Nothing is re-fetched.
func (v *View) ApplyFilter(c pricing.Criteria) error {
	if err := c.Validate(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.phaseLocked() != PhaseReady {
		return ErrNotReady
	}
	v.criteria = c
	v.visible = pricing.FilterIndexes(v.products, v.unitPrice, c)
	return nil
}

// SelectColor switches the image variant shown on one card.
func (v *View) SelectColor(index int, color model.Color) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.catalogSt.State != SourceReady {
		return ErrNotReady
	}
	if index < 0 || index >= len(v.products) {
		return fmt.Errorf("%w: %d", ErrProductIndex, index)
	}
	v.colors[index] = color
	return nil
}

// Card is one rendered product.
type Card struct {
	Position    int                 `json:"position"`
	Name        string              `json:"name"`
	Price       float64             `json:"price"`
	PriceLabel  string              `json:"priceLabel"`
	Rating      float64             `json:"rating"`
	RatingLabel string              `json:"ratingLabel"`
	Stars       pricing.StarCounts  `json:"stars"`
	Color       model.Color         `json:"color"`
	Image       string              `json:"image"`
	Images      model.ProductImages `json:"images"`
}

// Snapshot is a point-in-time copy of a view, safe to render.
type Snapshot struct {
	ID        string           `json:"id"`
	Phase     Phase            `json:"phase"`
	Price     SourceStatus     `json:"price"`
	Catalog   SourceStatus     `json:"catalog"`
	UnitPrice *float64         `json:"unitPrice,omitempty"`
	Range     model.PriceRange `json:"range"`
	Criteria  pricing.Criteria `json:"criteria"`
	Total     int              `json:"total"`
	Cards     []Card           `json:"cards"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Loading reports whether the page should keep showing the loading indicator.
func (s Snapshot) Loading() bool {
	return s.Phase == PhaseInitial || s.Phase == PhaseLoading
}

// Snapshot copies the current state. Cards are only present once ready.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	snap := Snapshot{
		ID:        v.id,
		Phase:     v.phaseLocked(),
		Price:     v.priceSt,
		Catalog:   v.catalogSt,
		Criteria:  v.criteria,
		Total:     len(v.products),
		Cards:     []Card{},
		CreatedAt: v.createdAt,
	}
	if v.priceSt.State == SourceReady {
		price := v.unitPrice
		snap.UnitPrice = &price
	}
	if snap.Phase != PhaseReady {
		return snap
	}

	snap.Range = pricing.Range(v.products, v.unitPrice)
	snap.Cards = make([]Card, 0, len(v.visible))
	for _, i := range v.visible {
		p := v.products[i]
		price := pricing.DisplayPrice(p, v.unitPrice)
		rating := pricing.StarRating(p.PopularityScore)
		snap.Cards = append(snap.Cards, Card{
			Position:    i,
			Name:        p.Name,
			Price:       price,
			PriceLabel:  pricing.FormatPrice(price),
			Rating:      rating,
			RatingLabel: pricing.FormatRating(rating),
			Stars:       pricing.Stars(rating),
			Color:       v.colors[i],
			Image:       p.Images.For(v.colors[i]),
			Images:      p.Images,
		})
	}
	return snap
}

// Summary aggregates the whole loaded catalog at the loaded unit price.
func (v *View) Summary() (model.CatalogStats, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.phaseLocked() != PhaseReady {
		return model.CatalogStats{}, ErrNotReady
	}
	return pricing.Summarize(v.products, v.unitPrice), nil
}
