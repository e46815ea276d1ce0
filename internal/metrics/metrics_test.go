package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignup("created")
	c.RecordSignup("created")
	c.RecordSignup("deferred")
	c.RecordOrphanedIdentity()
	c.RecordRoleUpdate("updated")
	c.RecordHTTPStatus(http.StatusBadRequest)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.signups.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.signups.WithLabelValues("deferred")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.orphanedIdentity))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.roleUpdates.WithLabelValues("updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpStatus.WithLabelValues("400")))
}

func TestHandler_Exposes(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg).RecordSignup("existing")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `afriglobal_signups_total{outcome="existing"} 1`))
}
