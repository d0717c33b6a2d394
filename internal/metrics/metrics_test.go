package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveImport(t *testing.T) {
	okBefore := testutil.ToFloat64(ImportRows.WithLabelValues("ok"))
	failBefore := testutil.ToFloat64(ImportRows.WithLabelValues("fail"))

	ObserveImport(3, 1)

	assert.Equal(t, okBefore+3, testutil.ToFloat64(ImportRows.WithLabelValues("ok")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(ImportRows.WithLabelValues("fail")))
}

func TestObserveClick_DefaultsSource(t *testing.T) {
	before := testutil.ToFloat64(WhatsAppClicks.WithLabelValues("unknown", "false"))
	ObserveClick("", false)
	assert.Equal(t, before+1, testutil.ToFloat64(WhatsAppClicks.WithLabelValues("unknown", "false")))
}
