package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_nil_is_noop(t *testing.T) {
	var m *Manager

	assert.NotPanics(t, func() {
		m.NotificationShown("info")
		m.SetNotificationsLive(3)
		m.ModalOpened("login")
		m.SetModalsOpen(1)
		m.ObserveSearch(SearchHit)
		m.ObserveRank(time.Millisecond, 2)
		m.UpsellClicked()
	})
	assert.Nil(t, m.Registry())
}

func TestManager_counts(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewManager(WithRegistry(registry), WithNamespace("test"))

	m.NotificationShown("success")
	m.NotificationShown("success")
	m.ObserveSearch(SearchMiss)
	m.ObserveSearch(SearchHit)
	m.ObserveSearch(SearchHit)
	m.UpsellClicked()

	assert.InDelta(t, 2, testutil.ToFloat64(m.notificationsShown.WithLabelValues("success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.upsellSearches.WithLabelValues(SearchHit)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.upsellSearches.WithLabelValues(SearchMiss)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.upsellClicks), 0)
}

func TestManager_Handler_exposes_registry(t *testing.T) {
	m := NewManager()
	m.ModalOpened("checkout")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `frogshop_modal_opens_total{key="checkout"} 1`))
}
