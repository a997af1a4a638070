package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwei-tsao/gold-catalog/internal/business/quote"
	"github.com/weiwei-tsao/gold-catalog/pkg/model"
)

const catalogJSON = `[
	{"name":"Engagement Ring 1","popularityScore":0.85,"weight":2.1,
	 "images":{"yellow":"y1.jpg","rose":"r1.jpg","white":"w1.jpg"}},
	{"name":"Engagement Ring 2","popularityScore":0.51,"weight":3.4,
	 "images":{"yellow":"y2.jpg","rose":"r2.jpg","white":"w2.jpg"}}
]`

func newSite(t *testing.T, gold func(w http.ResponseWriter), products func(w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(GoldPath, func(w http.ResponseWriter, r *http.Request) { gold(w) })
	mux.HandleFunc(CatalogPath, func(w http.ResponseWriter, r *http.Request) { products(w) })
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestHTTPPriceSource(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{"string encoded", `{"pricePerGram":"93.45"}`, 93.45},
		{"number", `{"pricePerGram":60}`, 60},
		{"zero", `{"pricePerGram":"0.00"}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newSite(t, writeJSON(http.StatusOK, tt.body), writeJSON(http.StatusOK, `[]`))
			got, err := NewHTTPPriceSource(NewHTTPFetcher(time.Second), srv.URL).FetchUnitPrice(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPPriceSourceFailures(t *testing.T) {
	t.Run("404", func(t *testing.T) {
		srv := newSite(t, writeJSON(http.StatusNotFound, `{"error":"not here"}`), writeJSON(http.StatusOK, `[]`))
		got, err := NewHTTPPriceSource(NewHTTPFetcher(time.Second), srv.URL).FetchUnitPrice(context.Background())
		require.Error(t, err)
		assert.Zero(t, got)
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Equal(t, "not here", statusErr.Detail)
		assert.Contains(t, err.Error(), "failed to fetch gold price")
	})

	for name, body := range map[string]string{
		"not json":      `<html>`,
		"missing field": `{"price":1}`,
		"not numeric":   `{"pricePerGram":"abc"}`,
		"nan":           `{"pricePerGram":"NaN"}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := newSite(t, writeJSON(http.StatusOK, body), writeJSON(http.StatusOK, `[]`))
			_, err := NewHTTPPriceSource(NewHTTPFetcher(time.Second), srv.URL).FetchUnitPrice(context.Background())
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestHTTPPriceSourceTransportError(t *testing.T) {
	srv := newSite(t, writeJSON(http.StatusOK, `{}`), writeJSON(http.StatusOK, `[]`))
	url := srv.URL
	srv.Close()

	_, err := NewHTTPPriceSource(NewHTTPFetcher(time.Second), url).FetchUnitPrice(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestHTTPCatalogSource(t *testing.T) {
	srv := newSite(t, writeJSON(http.StatusOK, `{}`), writeJSON(http.StatusOK, catalogJSON))

	products, err := NewHTTPCatalogSource(NewHTTPFetcher(time.Second), srv.URL+"/").FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Engagement Ring 1", products[0].Name)
	assert.Equal(t, "r2.jpg", products[1].Images.Rose)
}

func TestHTTPCatalogSourceFailures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := newSite(t, writeJSON(http.StatusOK, `{}`), writeJSON(http.StatusInternalServerError, `oops`))
		_, err := NewHTTPCatalogSource(NewHTTPFetcher(time.Second), srv.URL).FetchCatalog(context.Background())
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.Contains(t, err.Error(), "failed to fetch products")
	})

	for name, body := range map[string]string{
		"object":         `{"products":[]}`,
		"truncated":      `[{"name":"Ring"`,
		"missing images": `[{"name":"Ring","popularityScore":0.5,"weight":2,"images":{"yellow":"y"}}]`,
		"missing name":   `[{"popularityScore":0.5,"weight":2,"images":{"yellow":"y","rose":"r","white":"w"}}]`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := newSite(t, writeJSON(http.StatusOK, `{}`), writeJSON(http.StatusOK, body))
			products, err := NewHTTPCatalogSource(NewHTTPFetcher(time.Second), srv.URL).FetchCatalog(context.Background())
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Nil(t, products)
		})
	}
}

func TestDecodeCatalogEmpty(t *testing.T) {
	products, err := DecodeCatalog([]byte(` [] `))
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestFileCatalogSource(t *testing.T) {
	fsys := fstest.MapFS{"localJson/products.json": {Data: []byte(catalogJSON)}}

	products, err := NewFileCatalogSource(fsys, "localJson/products.json").FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)

	_, err = NewFileCatalogSource(fsys, "missing.json").FetchCatalog(context.Background())
	assert.Error(t, err)
}

type listerFunc func(ctx context.Context) ([]model.Product, error)

func (f listerFunc) List(ctx context.Context) ([]model.Product, error) { return f(ctx) }

func TestRepositoryCatalogSource(t *testing.T) {
	ring := model.Product{Name: "Ring", PopularityScore: 0.5, Weight: 2, Images: model.ProductImages{Yellow: "y", Rose: "r", White: "w"}}

	got, err := NewRepositoryCatalogSource(listerFunc(func(context.Context) ([]model.Product, error) {
		return []model.Product{ring}, nil
	})).FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Product{ring}, got)

	_, err = NewRepositoryCatalogSource(listerFunc(func(context.Context) ([]model.Product, error) {
		return nil, errors.New("permission denied")
	})).FetchCatalog(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

type ounceQuoter float64

func (q ounceQuoter) PricePerOunce(context.Context) (float64, error) { return float64(q), nil }

func TestQuotePriceSource(t *testing.T) {
	src := NewQuotePriceSource(quote.NewService(ounceQuoter(2906.5), nil, 0))
	got, err := src.FetchUnitPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 93.45, got)
}
