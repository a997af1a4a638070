package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/weiwei-tsao/gold-catalog/internal/business/catalog"
	"github.com/weiwei-tsao/gold-catalog/internal/platform/goldapi"
	"github.com/weiwei-tsao/gold-catalog/internal/web"
	"github.com/weiwei-tsao/gold-catalog/pkg/model"
	"github.com/weiwei-tsao/gold-catalog/pkg/pricing"
)

// GoldQuoter answers the internal gold endpoint.
type GoldQuoter interface {
	PricePerGram(ctx context.Context) (string, error)
}

// Options configures the router.
type Options struct {
	AllowedOrigins string
	// CatalogFile overrides the embedded catalog served at /localJson/products.json.
	CatalogFile string
	// Templates overrides the embedded page templates.
	Templates *template.Template
}

// Router wires HTTP handlers.
type Router struct {
	quotes      GoldQuoter
	views       *catalog.Manager
	catalogFile string
}

func NewRouter(quotes GoldQuoter, views *catalog.Manager, opts Options) (*gin.Engine, error) {
	r := &Router{
		quotes:      quotes,
		views:       views,
		catalogFile: opts.CatalogFile,
	}

	corsMiddleware, err := newCORS(opts.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	tmpl := opts.Templates
	if tmpl == nil {
		if tmpl, err = web.Templates(); err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Logger(), gin.Recovery(), corsMiddleware)
	router.SetHTMLTemplate(tmpl)
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": fmt.Sprintf("Method %s Not Allowed", c.Request.Method)})
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET(catalog.CatalogPath, r.serveCatalog)

	router.GET("/", r.newPage)
	pages := router.Group("/views/:id")
	{
		pages.GET("", r.showPage)
		pages.POST("/filter", r.filterPage)
		pages.POST("/products/:index/color", r.selectColorPage)
	}

	api := router.Group("/api")
	{
		api.GET("/getGold", r.getGold)
		api.GET("/products", r.listProducts)
		api.POST("/views", r.createView)
		api.GET("/views/:id", r.getView)
		api.POST("/views/:id/filter", r.filterView)
		api.DELETE("/views/:id", r.deleteView)
	}

	return router, nil
}

func newCORS(allowedOrigins string) (gin.HandlerFunc, error) {
	var origins []string
	allowAll := false
	for _, o := range strings.Split(allowedOrigins, ",") {
		t := strings.TrimSpace(o)
		if t == "" {
			continue
		}
		if t == "*" {
			allowAll = true
		}
		origins = append(origins, t)
	}

	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	if allowAll || len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cors config: %w", err)
	}
	return cors.New(cfg), nil
}

func (r *Router) getGold(c *gin.Context) {
	perGram, err := r.quotes.PricePerGram(c.Request.Context())
	if err != nil {
		status, msg := goldError(err)
		slog.Warn("gold quote failed", "status", status, "error", err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pricePerGram": perGram})
}

func goldError(err error) (int, string) {
	var statusErr *goldapi.StatusError
	switch {
	case errors.Is(err, goldapi.ErrMissingAPIKey):
		return http.StatusInternalServerError, "API key not set"
	case errors.As(err, &statusErr):
		return statusErr.StatusCode, "Failed to fetch gold price"
	default:
		return http.StatusInternalServerError, "Internal Server Error: " + err.Error()
	}
}

func (r *Router) serveCatalog(c *gin.Context) {
	if r.catalogFile != "" {
		c.File(r.catalogFile)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", web.CatalogBytes())
}

func (r *Router) createView(c *gin.Context) {
	v := r.views.Create()
	c.Header("Location", "/api/views/"+v.ID())
	c.JSON(http.StatusAccepted, v.Snapshot())
}

func (r *Router) getView(c *gin.Context) {
	v, ok := r.lookupJSON(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, v.Snapshot())
}

func (r *Router) filterView(c *gin.Context) {
	v, ok := r.lookupJSON(c)
	if !ok {
		return
	}
	var criteria pricing.Criteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := v.ApplyFilter(criteria); err != nil {
		c.JSON(actionStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v.Snapshot())
}

func (r *Router) deleteView(c *gin.Context) {
	if !r.views.Close(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": catalog.ErrViewNotFound.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) listProducts(c *gin.Context) {
	criteria, err := pricing.ParseCriteria(c.Query("minPrice"), c.Query("maxPrice"), c.Query("minStars"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, err := r.views.Once(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if err := v.ApplyFilter(criteria); err != nil {
		c.JSON(actionStatus(err), gin.H{"error": err.Error()})
		return
	}
	stats, err := v.Summary()
	if err != nil {
		c.JSON(actionStatus(err), gin.H{"error": err.Error()})
		return
	}

	snap := v.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"unitPrice": snap.UnitPrice,
		"range":     snap.Range,
		"criteria":  snap.Criteria,
		"items":     snap.Cards,
		"total":     snap.Total,
		"stats":     stats,
	})
}

func (r *Router) lookupJSON(c *gin.Context) (*catalog.View, bool) {
	v, err := r.views.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return v, true
}

// actionStatus maps view action errors to HTTP statuses.
func actionStatus(err error) int {
	switch {
	case errors.Is(err, pricing.ErrInvalidCriteria),
		errors.Is(err, model.ErrUnknownColor),
		errors.Is(err, catalog.ErrProductIndex):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotReady):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
