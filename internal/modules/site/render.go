package site

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/forexfactory/site/internal/pkg/htmlsafe"
	"github.com/forexfactory/site/internal/pkg/view"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("Jan 2, 2006") },
	"filesize": func(n int64) string {
		const unit = 1024
		if n < unit {
			return fmt.Sprintf("%d B", n)
		}
		div, exp := int64(unit), 0
		for v := n / unit; v >= unit; v /= unit {
			div *= unit
			exp++
		}
		return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
	},
	"money": func(v any) string {
		switch n := v.(type) {
		case float64:
			return fmt.Sprintf("$%.2f", n)
		case *float64:
			if n != nil {
				return fmt.Sprintf("$%.2f", *n)
			}
		}
		return ""
	},
	"excerpt": htmlsafe.Excerpt,
	"tags":    splitTags,
}

func parseTemplates() (*view.Set, error) {
	return view.Parse(templateFS, "templates/*.html",
		[]string{"templates/layout.html", "templates/partials.html"}, funcs)
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// errorPage is the last resort when the error template itself fails.
func errorPage(c *gin.Context) {
	c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("Internal Server Error"))
}
