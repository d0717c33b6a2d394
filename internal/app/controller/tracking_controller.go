package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	"github.com/ikkim/catalogo-backend/internal/middleware"
	"github.com/ikkim/catalogo-backend/pkg/utm"
)

type TrackingController struct {
	trackingService service.TrackingService
	cookieTTL       time.Duration
	secureCookies   bool
}

func NewTrackingController(trackingService service.TrackingService, cookieTTL time.Duration, secureCookies bool) *TrackingController {
	return &TrackingController{
		trackingService: trackingService,
		cookieTTL:       cookieTTL,
		secureCookies:   secureCookies,
	}
}

// PersistUTMRequest is the attribution posted by the storefront.
type PersistUTMRequest struct {
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
	Ref         string `json:"ref"`
}

func attributionCookie(c *gin.Context) *utm.Attribution {
	raw, err := c.Cookie(utm.CookieName)
	if err != nil {
		return nil
	}
	return utm.Parse(raw)
}

// WhatsAppRedirect records the click and forwards to the chat deep link
// GET /w?pid&vid&src&pslug&pname&vlabel
func (ctrl *TrackingController) WhatsAppRedirect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	link := ctrl.trackingService.TrackClick(service.ClickInput{
		ProductID:    queryUint(c, "pid"),
		VariantID:    queryUint(c, "vid"),
		Source:       c.Query("src"),
		ProductSlug:  c.Query("pslug"),
		ProductName:  c.Query("pname"),
		VariantLabel: c.Query("vlabel"),
		Attribution:  attributionCookie(c),
		ClientIP:     middleware.ClientIP(c),
		UserAgent:    c.Request.UserAgent(),
	})

	log.Debug("Redirecting click-to-chat", map[string]interface{}{
		"pid": c.Query("pid"),
		"src": c.Query("src"),
	})
	c.Redirect(http.StatusFound, link)
}

// PersistUTM stores the first-touch attribution cookie
// POST /api/utm/persist
func (ctrl *TrackingController) PersistUTM(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PersistUTMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("Ignoring unreadable attribution body", map[string]interface{}{
			"error": err.Error(),
		})
		req = PersistUTMRequest{}
	}

	decision := ctrl.trackingService.DecideAttribution(attributionCookie(c), utm.Attribution{
		Source:   req.UTMSource,
		Medium:   req.UTMMedium,
		Campaign: req.UTMCampaign,
		Ref:      req.Ref,
	}, time.Now())

	if decision.Status == service.AttributionSet {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(utm.CookieName, decision.Value, int(ctrl.cookieTTL.Seconds()), "/", "", ctrl.secureCookies, true)
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"status": decision.Status,
	})
}
