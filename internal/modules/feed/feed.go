// Package feed publishes the latest blogs as RSS and Atom.
package feed

import (
	"context"
	"encoding/xml"
	"net/http"
	"strconv"
	"time"

	"github.com/forexfactory/site/internal/config"
	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/modules/blog"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const itemLimit = 20

type Handler struct {
	blogs *blog.Service
	site  config.SiteConfig
	log   *zap.Logger
}

func NewHandler(blogs *blog.Service, site config.SiteConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{blogs: blogs, site: site, log: log.Named("feed")}
}

// RegisterRoutes mounts the feed endpoints at the site root.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/feed", func(c *gin.Context) {
		h.render(c, c.DefaultQuery("type", "rss"))
	})
	r.GET("/feed.xml", func(c *gin.Context) { h.render(c, "rss") })
	r.GET("/atom.xml", func(c *gin.Context) { h.render(c, "atom") })
}

type item struct {
	Title   string
	Link    string
	GUID    string
	PubDate time.Time
	Summary string
	Content string
}

func (h *Handler) render(c *gin.Context, kind string) {
	items, err := h.items(c.Request.Context())
	if err != nil {
		h.log.Error("load feed items", zap.Error(err))
		c.String(http.StatusInternalServerError, "feed unavailable")
		return
	}

	var (
		body  []byte
		ctype string
	)
	switch kind {
	case "atom":
		body, err = buildAtom(h.site, items, time.Now())
		ctype = "application/atom+xml; charset=utf-8"
	default:
		body, err = buildRSS(h.site, items, time.Now())
		ctype = "application/rss+xml; charset=utf-8"
	}
	if err != nil {
		h.log.Error("encode feed", zap.String("type", kind), zap.Error(err))
		c.String(http.StatusInternalServerError, "feed unavailable")
		return
	}
	c.Data(http.StatusOK, ctype, body)
}

func (h *Handler) items(ctx context.Context) ([]item, error) {
	blogs, err := h.blogs.Published(ctx, blog.Filter{Limit: itemLimit})
	if err != nil {
		return nil, err
	}
	out := make([]item, len(blogs))
	for i := range blogs {
		out[i] = toItem(h.site.URL, &blogs[i])
	}
	return out, nil
}

func toItem(base string, b *models.Blog) item {
	ref := b.SeoSlug
	if ref == "" {
		ref = strconv.FormatUint(uint64(b.ID), 10)
	}
	link := base + "/blog/" + ref
	return item{
		Title:   b.Title,
		Link:    link,
		GUID:    link,
		PubDate: b.CreatedAt,
		Summary: b.Excerpt,
		Content: b.Content,
	}
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description cdata  `xml:"description"`
}

type cdata struct {
	Text string `xml:",cdata"`
}

// buildRSS encodes items as an RSS 2.0 document.
func buildRSS(site config.SiteConfig, items []item, now time.Time) ([]byte, error) {
	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:         site.Name,
			Link:          site.URL,
			Description:   site.Name + " blog",
			LastBuildDate: now.Format(time.RFC1123Z),
			Items:         make([]rssItem, len(items)),
		},
	}
	for i, it := range items {
		desc := it.Summary
		if desc == "" {
			desc = it.Content
		}
		doc.Channel.Items[i] = rssItem{
			Title:       it.Title,
			Link:        it.Link,
			GUID:        it.GUID,
			PubDate:     it.PubDate.Format(time.RFC1123Z),
			Description: cdata{Text: desc},
		}
	}
	return marshal(doc)
}

type atomDoc struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Title   string      `xml:"title"`
	Link    atomLink    `xml:"link"`
	Updated string      `xml:"updated"`
	ID      string      `xml:"id"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

type atomEntry struct {
	Title   string      `xml:"title"`
	Link    atomLink    `xml:"link"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Content atomContent `xml:"content"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",cdata"`
}

// buildAtom encodes items as an Atom 1.0 document.
func buildAtom(site config.SiteConfig, items []item, now time.Time) ([]byte, error) {
	doc := atomDoc{
		Title:   site.Name,
		Link:    atomLink{Href: site.URL},
		Updated: now.Format(time.RFC3339),
		ID:      site.URL + "/",
		Entries: make([]atomEntry, len(items)),
	}
	for i, it := range items {
		doc.Entries[i] = atomEntry{
			Title:   it.Title,
			Link:    atomLink{Href: it.Link},
			ID:      it.GUID,
			Updated: it.PubDate.Format(time.RFC3339),
			Content: atomContent{Type: "html", Body: it.Content},
		}
	}
	return marshal(doc)
}

func marshal(doc any) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
