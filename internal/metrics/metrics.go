package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsCreated counts products created through the admin API.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalogo_products_created_total",
		Help: "The total number of products created",
	})

	// ProductsDeleted counts products deleted through the admin API.
	ProductsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalogo_products_deleted_total",
		Help: "The total number of products deleted",
	})

	// ImportRows counts processed import rows by outcome (ok, fail).
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalogo_import_rows_total",
		Help: "The total number of catalog import rows processed",
	}, []string{"outcome"})

	// WhatsAppClicks counts click-to-chat redirects by source tag and
	// whether the click event could be stored.
	WhatsAppClicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalogo_whatsapp_clicks_total",
		Help: "The total number of click-to-chat redirects",
	}, []string{"src", "recorded"})

	// ImagesUploaded counts stored product images.
	ImagesUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalogo_images_uploaded_total",
		Help: "The total number of product images uploaded",
	})

	// HTTPRequestDuration observes request latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalogo_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveImport records the outcome counts of one import run.
func ObserveImport(ok, fail int) {
	ImportRows.WithLabelValues("ok").Add(float64(ok))
	ImportRows.WithLabelValues("fail").Add(float64(fail))
}

// ObserveClick records one click-to-chat redirect.
func ObserveClick(src string, recorded bool) {
	if src == "" {
		src = "unknown"
	}
	WhatsAppClicks.WithLabelValues(src, strconv.FormatBool(recorded)).Inc()
}
