package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tilecast/internal/core/domain"
	"tilecast/internal/core/ports"
)

// Collector exposes grid presentation metrics to prometheus.
type Collector struct {
	participants *prometheus.GaugeVec
	speaking     *prometheus.GaugeVec
	overflow     *prometheus.GaugeVec

	reconcilesTotal prometheus.Counter
	bindsTotal      prometheus.Counter
	unbindsTotal    prometheus.Counter
}

func NewCollector() *Collector {
	return &Collector{
		participants: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tilecast_grid_participants",
			Help: "Number of displayed participants per call",
		}, []string{"call_id"}),

		speaking: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tilecast_grid_speaking",
			Help: "Number of participants currently flagged as speaking per call",
		}, []string{"call_id"}),

		overflow: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tilecast_grid_overflow",
			Help: "Number of remote participants hidden by the visibility cap per call",
		}, []string{"call_id"}),

		reconcilesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tilecast_reconciles_total",
			Help: "Total number of reconciliation passes",
		}),

		bindsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tilecast_track_binds_total",
			Help: "Total number of successful track bindings",
		}),

		unbindsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tilecast_track_unbinds_total",
			Help: "Total number of track unbindings",
		}),
	}
}

var _ ports.MetricsSink = (*Collector)(nil)

func (c *Collector) RecordReconcile(callID domain.CallID, participants, speaking, overflow int) {
	c.reconcilesTotal.Inc()
	c.participants.WithLabelValues(string(callID)).Set(float64(participants))
	c.speaking.WithLabelValues(string(callID)).Set(float64(speaking))
	c.overflow.WithLabelValues(string(callID)).Set(float64(overflow))
}

func (c *Collector) RecordBind() {
	c.bindsTotal.Inc()
}

func (c *Collector) RecordUnbind() {
	c.unbindsTotal.Inc()
}

func (c *Collector) RecordCallEnded(callID domain.CallID) {
	c.participants.DeleteLabelValues(string(callID))
	c.speaking.DeleteLabelValues(string(callID))
	c.overflow.DeleteLabelValues(string(callID))
}
