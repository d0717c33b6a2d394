package controller

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	apperrors "github.com/ikkim/catalogo-backend/internal/errors"
	"github.com/ikkim/catalogo-backend/internal/middleware"
	"github.com/ikkim/catalogo-backend/pkg/whatsapp"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type SEOController struct {
	catalogService service.CatalogService
	siteURL        string
	production     bool
}

func NewSEOController(catalogService service.CatalogService, siteURL string, production bool) *SEOController {
	return &SEOController{
		catalogService: catalogService,
		siteURL:        strings.TrimRight(siteURL, "/"),
		production:     production,
	}
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap lists the home page and every published product
// GET /sitemap.xml
func (ctrl *SEOController) Sitemap(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	set := sitemapURLSet{Xmlns: sitemapNamespace, URLs: []sitemapURL{}}
	if ctrl.production {
		entries, err := ctrl.catalogService.SitemapEntries()
		if err != nil {
			log.Error("Failed to build sitemap", err)
			apperrors.InternalError(c, "")
			return
		}

		set.URLs = append(set.URLs, sitemapURL{
			Loc:        ctrl.siteURL + "/",
			LastMod:    time.Now().UTC().Format(time.RFC3339),
			ChangeFreq: "daily",
			Priority:   1,
		})
		for _, e := range entries {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        whatsapp.ProductURL(ctrl.siteURL, e.Slug),
				LastMod:    e.UpdatedAt.UTC().Format(time.RFC3339),
				ChangeFreq: "weekly",
				Priority:   0.7,
			})
		}
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		log.Error("Failed to encode sitemap", err)
		apperrors.InternalError(c, "")
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), body...))
}

// Robots allows crawling only in production
// GET /robots.txt
func (ctrl *SEOController) Robots(c *gin.Context) {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	if ctrl.production {
		b.WriteString("Allow: /\n")
		b.WriteString("Disallow: /admin\n")
		b.WriteString("Disallow: /admin/\n")
		b.WriteString("\nSitemap: " + ctrl.siteURL + "/sitemap.xml\n")
	} else {
		b.WriteString("Disallow: /\n")
	}
	c.String(http.StatusOK, b.String())
}
