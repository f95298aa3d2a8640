// Package metrics agrupa los collectors Prometheus del servicio.
// Cada instancia usa su propio registry para que los tests no choquen con el global.
package metrics

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInflight prometheus.Gauge

	// AuthEvents: op=signup|login|forgot_password|..., result=ok|<código de error>
	AuthEvents  *prometheus.CounterVec
	RateLimited *prometheus.CounterVec
	EmailsSent  *prometheus.CounterVec
	ChatSyncs   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo",
		}),
		AuthEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tandem_auth_events_total",
			Help: "Operaciones de auth por resultado",
		}, []string{"op", "result"}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tandem_rate_limited_total",
			Help: "Requests rechazadas por rate limit",
		}, []string{"rule"}),
		EmailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tandem_emails_total",
			Help: "E-mails enviados por tipo y resultado",
		}, []string{"kind", "result"}),
		ChatSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tandem_chat_syncs_total",
			Help: "Upserts de perfil en el chat por resultado",
		}, []string{"result"}),
	}
	m.reg.MustRegister(
		m.HTTPRequests, m.HTTPDuration, m.HTTPInflight,
		m.AuthEvents, m.RateLimited, m.EmailsSent, m.ChatSyncs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry expone el registry para tests o collectors extra.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// RegisterPool agrega gauges del pgxpool. Duplicados se ignoran.
func (m *Metrics) RegisterPool(pool *pgxpool.Pool) error {
	if pool == nil {
		return nil
	}
	if err := m.reg.Register(newPoolCollector(pool)); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

type poolCollector struct {
	pool         *pgxpool.Pool
	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newPoolCollector(pool *pgxpool.Pool) *poolCollector {
	return &poolCollector{
		pool:         pool,
		acquiredDesc: prometheus.NewDesc("pg_pool_acquired", "Conexiones adquiridas", nil, nil),
		idleDesc:     prometheus.NewDesc("pg_pool_idle", "Conexiones inactivas", nil, nil),
		totalDesc:    prometheus.NewDesc("pg_pool_total", "Conexiones totales", nil, nil),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()))
}

// Helpers nil-safe: los tests de controllers corren sin métricas.

func (m *Metrics) AuthEvent(op, result string) {
	if m != nil {
		m.AuthEvents.WithLabelValues(op, result).Inc()
	}
}

func (m *Metrics) Limited(rule string) {
	if m != nil {
		m.RateLimited.WithLabelValues(rule).Inc()
	}
}

func (m *Metrics) Email(kind string, err error) {
	if m != nil {
		m.EmailsSent.WithLabelValues(kind, resultOf(err)).Inc()
	}
}

func (m *Metrics) ChatSync(result string) {
	if m != nil {
		m.ChatSyncs.WithLabelValues(result).Inc()
	}
}

func resultOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
