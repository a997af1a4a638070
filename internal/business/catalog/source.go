package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"strconv"
	"strings"

	"github.com/weiwei-tsao/gold-catalog/internal/business/quote"
	"github.com/weiwei-tsao/gold-catalog/pkg/model"
)

// Paths of the two resources a view loads, relative to the site base URL.
const (
	GoldPath    = "/api/getGold"
	CatalogPath = "/localJson/products.json"
)

// PriceSource yields the unit price (per gram) driving all display prices.
type PriceSource interface {
	FetchUnitPrice(ctx context.Context) (float64, error)
}

// CatalogSource yields the ordered product catalog.
type CatalogSource interface {
	FetchCatalog(ctx context.Context) ([]model.Product, error)
}

// HTTPPriceSource reads the unit price from the internal gold endpoint.
type HTTPPriceSource struct {
	fetcher Fetcher
	url     string
}

func NewHTTPPriceSource(fetcher Fetcher, baseURL string) *HTTPPriceSource {
	return &HTTPPriceSource{fetcher: fetcher, url: strings.TrimRight(baseURL, "/") + GoldPath}
}

func (s *HTTPPriceSource) FetchUnitPrice(ctx context.Context) (float64, error) {
	body, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch gold price: %w", err)
	}
	price, err := decodeUnitPrice(body)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch gold price: %w", err)
	}
	return price, nil
}

// numeric accepts a JSON number or a string holding one.
type numeric float64

func (n *numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		*n = numeric(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = numeric(v)
	return nil
}

func decodeUnitPrice(body []byte) (float64, error) {
	var payload struct {
		PricePerGram *numeric `json:"pricePerGram"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(body), &payload); err != nil {
		return 0, fmt.Errorf("%w: decode gold price: %w", ErrMalformedResponse, err)
	}
	if payload.PricePerGram == nil {
		return 0, fmt.Errorf("%w: pricePerGram missing", ErrMalformedResponse)
	}
	v := float64(*payload.PricePerGram)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: pricePerGram is not finite", ErrMalformedResponse)
	}
	return v, nil
}

// HTTPCatalogSource reads the static catalog resource.
type HTTPCatalogSource struct {
	fetcher Fetcher
	url     string
}

func NewHTTPCatalogSource(fetcher Fetcher, baseURL string) *HTTPCatalogSource {
	return &HTTPCatalogSource{fetcher: fetcher, url: strings.TrimRight(baseURL, "/") + CatalogPath}
}

func (s *HTTPCatalogSource) FetchCatalog(ctx context.Context) ([]model.Product, error) {
	body, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	products, err := DecodeCatalog(body)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// DecodeCatalog parses a JSON array of products and validates every entry.
func DecodeCatalog(body []byte) ([]model.Product, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return nil, fmt.Errorf("%w: catalog must be a JSON array", ErrMalformedResponse)
	}
	var products []model.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %w", ErrMalformedResponse, err)
	}
	if err := validateCatalog(products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func validateCatalog(products []model.Product) error {
	for i, p := range products {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: product %d: %w", ErrMalformedResponse, i, err)
		}
	}
	return nil
}

// FileCatalogSource reads the catalog from a file system, e.g. the embedded default.
type FileCatalogSource struct {
	fsys fs.FS
	name string
}

func NewFileCatalogSource(fsys fs.FS, name string) *FileCatalogSource {
	return &FileCatalogSource{fsys: fsys, name: name}
}

func (s *FileCatalogSource) FetchCatalog(ctx context.Context) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := fs.ReadFile(s.fsys, s.name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	products, err := DecodeCatalog(body)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// CatalogLister is the read side of the Firestore catalog repository.
type CatalogLister interface {
	List(ctx context.Context) ([]model.Product, error)
}

// RepositoryCatalogSource reads the catalog from a repository.
type RepositoryCatalogSource struct {
	repo CatalogLister
}

func NewRepositoryCatalogSource(repo CatalogLister) *RepositoryCatalogSource {
	return &RepositoryCatalogSource{repo: repo}
}

func (s *RepositoryCatalogSource) FetchCatalog(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w: %w", ErrUpstreamUnavailable, err)
	}
	if err := validateCatalog(products); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// QuotePriceSource reads the unit price in process from the quote service,
// going through the same two-decimal string the gold endpoint returns.
type QuotePriceSource struct {
	quotes *quote.Service
}

func NewQuotePriceSource(quotes *quote.Service) *QuotePriceSource {
	return &QuotePriceSource{quotes: quotes}
}

func (s *QuotePriceSource) FetchUnitPrice(ctx context.Context) (float64, error) {
	perGram, err := s.quotes.PricePerGram(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch gold price: %w", err)
	}
	v, err := quote.ParsePerGram(perGram)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch gold price: %w: %w", ErrMalformedResponse, err)
	}
	return v, nil
}
