package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billzy/internal/receipt"
)

func TestObserveParse(t *testing.T) {
	m := New()

	m.ObserveParse(receipt.Parse("Coffee 3.50\nBagel$2.25\nServer: Amy\nTOTAL 5.75"))
	m.ObserveParse(receipt.Parse("123 456"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.receipts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.items.WithLabelValues("certain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.items.WithLabelValues("uncertain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lines.WithLabelValues("total")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lines.WithLabelValues("metadata")))
	// per-item uncertain + aggregate uncertain + no items
	assert.Equal(t, 3.0, testutil.ToFloat64(m.warnings))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveParse(receipt.Parse("Coffee 3.50"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `billzy_receipt_items_total{confidence="certain"} 1`)
	assert.Contains(t, string(body), "billzy_receipts_parsed_total 1")
}
