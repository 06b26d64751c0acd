// Package metrics instruments the pipeline with Prometheus counters and a
// connected-clients gauge (github.com/prometheus/client_golang), implementing
// capability.Observer so it can be composed with, or substituted for, the
// logging observer without changing the coordinator's wiring.
package metrics

import (
	"strconv"

	"github.com/n0call/aprsmodem/internal/ax25"
	"github.com/prometheus/client_golang/prometheus"
)

// Observer is a capability.Observer backed by Prometheus collectors. Zero
// value is not usable; construct with New.
type Observer struct {
	packetsReceived   *prometheus.CounterVec
	transmitsStarted  prometheus.Counter
	transmitsComplete prometheus.Counter
	clientsConnected  prometheus.Gauge
	faults            *prometheus.CounterVec
	commands          *prometheus.CounterVec
}

// New registers the observer's collectors with reg and returns the
// Observer. Pass prometheus.NewRegistry() (or prometheus.DefaultRegisterer
// wrapped as a Registerer) for reg.
func New(reg prometheus.Registerer) *Observer {
	o := &Observer{
		packetsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aprsmodem_packets_received_total",
			Help: "AX.25 packets successfully decoded from a transport client.",
		}, []string{"client"}),
		transmitsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aprsmodem_transmits_started_total",
			Help: "Transmit attempts begun by the modem driver.",
		}),
		transmitsComplete: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aprsmodem_transmits_completed_total",
			Help: "Transmit attempts that completed without a fault.",
		}),
		clientsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aprsmodem_clients_connected",
			Help: "Currently connected transport clients.",
		}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aprsmodem_faults_total",
			Help: "Pipeline faults by stage.",
		}, []string{"stage"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aprsmodem_kiss_commands_total",
			Help: "Non-data KISS command frames received, by command nibble.",
		}, []string{"cmd"}),
	}
	reg.MustRegister(o.packetsReceived, o.transmitsStarted, o.transmitsComplete, o.clientsConnected, o.faults, o.commands)
	return o
}

func (o *Observer) OnPacketReceived(clientID string, _ ax25.Frame) {
	o.packetsReceived.WithLabelValues(clientID).Inc()
}

func (o *Observer) OnTransmitStarted(ax25.Frame) {
	o.transmitsStarted.Inc()
}

func (o *Observer) OnTransmitCompleted(ax25.Frame) {
	o.transmitsComplete.Inc()
}

func (o *Observer) OnClientConnected(string) {
	o.clientsConnected.Inc()
}

func (o *Observer) OnClientDisconnected(string) {
	o.clientsConnected.Dec()
}

func (o *Observer) OnCommand(_ string, cmd int, _ []byte) {
	o.commands.WithLabelValues(strconv.Itoa(cmd)).Inc()
}

func (o *Observer) OnFault(stage string, _ error) {
	o.faults.WithLabelValues(stage).Inc()
}

func (o *Observer) OnRecovered(string) {}
