// Package web holds the embedded page templates and the default catalog file.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"

	"github.com/weiwei-tsao/gold-catalog/pkg/pricing"
)

// CatalogFile is the embedded default catalog, at the same path it is served under.
const CatalogFile = "localJson/products.json"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed localJson/products.json
var catalogFS embed.FS

// Catalog returns the file system holding CatalogFile.
func Catalog() fs.FS { return catalogFS }

// CatalogBytes returns the embedded default catalog.
func CatalogBytes() []byte {
	data, err := catalogFS.ReadFile(CatalogFile)
	if err != nil {
		// embedded at build time
		panic(err)
	}
	return data
}

// Funcs are the helpers available to the page templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"seq": func(n int) []int {
			if n <= 0 {
				return nil
			}
			return make([]int, n)
		},
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"bound": func(v *float64) string {
			if v == nil {
				return ""
			}
			return pricing.FormatRating(*v)
		},
		"rangeLabel": func(v float64) string {
			return pricing.FormatRating(v)
		},
	}
}

// Templates parses the page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
}
