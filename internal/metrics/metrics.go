// Package metrics exposes Prometheus counters for signup and role reconciliation.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by the account service and HTTP layer.
type Recorder interface {
	RecordSignup(outcome string)
	RecordOrphanedIdentity()
	RecordRoleUpdate(outcome string)
	RecordHTTPStatus(statusCode int)
}

// Collector records metrics into a Prometheus registry.
type Collector struct {
	signups          *prometheus.CounterVec
	orphanedIdentity prometheus.Counter
	roleUpdates      *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "afriglobal_signups_total",
			Help: "Signup attempts by outcome.",
		}, []string{"outcome"}),
		orphanedIdentity: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "afriglobal_orphaned_identities_total",
			Help: "Identity accounts created without a matching local profile.",
		}),
		roleUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "afriglobal_role_updates_total",
			Help: "Role updates by outcome.",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "afriglobal_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(c.signups, c.orphanedIdentity, c.roleUpdates, c.httpStatus)
	return c
}

func (c *Collector) RecordSignup(outcome string) {
	c.signups.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordOrphanedIdentity() {
	c.orphanedIdentity.Inc()
}

func (c *Collector) RecordRoleUpdate(outcome string) {
	c.roleUpdates.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordSignup(string)     {}
func (Nop) RecordOrphanedIdentity() {}
func (Nop) RecordRoleUpdate(string) {}
func (Nop) RecordHTTPStatus(int)    {}
