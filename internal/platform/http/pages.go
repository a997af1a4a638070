package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/weiwei-tsao/gold-catalog/internal/business/catalog"
	"github.com/weiwei-tsao/gold-catalog/pkg/model"
	"github.com/weiwei-tsao/gold-catalog/pkg/pricing"
)

// viewPage is the data behind view.html.
type viewPage struct {
	Refresh  bool
	View     catalog.Snapshot
	Swatches []model.Swatch
	Error    string
	// Raw filter inputs, echoed back when they fail to parse.
	MinPrice string
	MaxPrice string
	MinStars string
}

func pagePath(id string) string { return "/views/" + id }

func (r *Router) newPage(c *gin.Context) {
	v := r.views.Create()
	c.Redirect(http.StatusSeeOther, pagePath(v.ID()))
}

func (r *Router) showPage(c *gin.Context) {
	v, ok := r.lookupPage(c)
	if !ok {
		return
	}
	r.renderPage(c, http.StatusOK, v, viewPage{})
}

func (r *Router) filterPage(c *gin.Context) {
	v, ok := r.lookupPage(c)
	if !ok {
		return
	}
	page := viewPage{
		MinPrice: c.PostForm("minPrice"),
		MaxPrice: c.PostForm("maxPrice"),
		MinStars: c.PostForm("minStars"),
	}
	criteria, err := pricing.ParseCriteria(page.MinPrice, page.MaxPrice, page.MinStars)
	if err == nil {
		err = v.ApplyFilter(criteria)
	}
	if err != nil {
		page.Error = err.Error()
		r.renderPage(c, actionStatus(err), v, page)
		return
	}
	c.Redirect(http.StatusSeeOther, pagePath(v.ID()))
}

func (r *Router) selectColorPage(c *gin.Context) {
	v, ok := r.lookupPage(c)
	if !ok {
		return
	}
	err := selectColor(v, c.Param("index"), c.PostForm("color"))
	if err != nil {
		r.renderPage(c, actionStatus(err), v, viewPage{Error: err.Error()})
		return
	}
	c.Redirect(http.StatusSeeOther, pagePath(v.ID()))
}

func selectColor(v *catalog.View, rawIndex, rawColor string) error {
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		return catalog.ErrProductIndex
	}
	color, err := model.ParseColor(rawColor)
	if err != nil {
		return err
	}
	return v.SelectColor(index, color)
}

func (r *Router) renderPage(c *gin.Context, status int, v *catalog.View, page viewPage) {
	page.View = v.Snapshot()
	page.Refresh = page.View.Loading()
	page.Swatches = model.Swatches
	c.HTML(status, "view.html", page)
}

func (r *Router) lookupPage(c *gin.Context) (*catalog.View, bool) {
	v, err := r.views.Get(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusNotFound, "missing.html", viewPage{})
		return nil, false
	}
	return v, true
}
