package relay

import "github.com/prometheus/client_golang/prometheus"

type serverMetrics struct {
	published prometheus.Counter
	delivered prometheus.Counter
	mailboxes prometheus.Gauge
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &serverMetrics{
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peerlink_relay_published_total",
			Help: "Signaling items accepted into mailboxes.",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peerlink_relay_delivered_total",
			Help: "Items handed out to pollers, counting re-deliveries.",
		}),
		mailboxes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "peerlink_relay_mailboxes",
			Help: "Current number of live mailboxes.",
		}),
	}
	reg.MustRegister(m.published, m.delivered, m.mailboxes)
	return m
}
