package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	framesReceivedCounter       prometheus.Counter
	protocolViolationCounter    prometheus.Counter
	unknownKindCounter          prometheus.Counter
	redundantFactCounter        prometheus.Counter
	desyncCounter               prometheus.Counter
	presentationTaskCounter     prometheus.Counter
	presentationFailureCounter  prometheus.Counter
	rejectedActionCounter       prometheus.Counter
	actionsSentCounter          prometheus.Counter
	presentationQueueDepthGauge prometheus.Gauge
}

func (m *metrics) FrameReceived() {
	m.framesReceivedCounter.Inc()
}

func (m *metrics) ProtocolViolation() {
	m.protocolViolationCounter.Inc()
}

func (m *metrics) UnknownKind() {
	m.unknownKindCounter.Inc()
}

func (m *metrics) RedundantFact() {
	m.redundantFactCounter.Inc()
}

func (m *metrics) Desync() {
	m.desyncCounter.Inc()
}

func (m *metrics) PresentationTaskRun() {
	m.presentationTaskCounter.Inc()
}

func (m *metrics) PresentationFailure() {
	m.presentationFailureCounter.Inc()
}

func (m *metrics) ActionRejected() {
	m.rejectedActionCounter.Inc()
}

func (m *metrics) ActionSent() {
	m.actionsSentCounter.Inc()
}

func (m *metrics) SetPresentationQueueDepth(depth int) {
	m.presentationQueueDepthGauge.Set(float64(depth))
}

var Metrics = &metrics{
	framesReceivedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardclient_frames_received_total",
		Help: "Total number of frames received from the table server",
	}),
	protocolViolationCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardclient_protocol_violations_total",
		Help: "Total number of frames dropped because they could not be decoded",
	}),
	unknownKindCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardclient_unknown_kinds_total",
		Help: "Total number of messages dropped because their kind is not known",
	}),
	redundantFactCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardclient_redundant_facts_total",
		Help: "Total number of one-time facts (id, hand, seats) delivered more than once",
	}),
	desyncCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardclient_desync_total",
		Help: "Total number of events referencing a card or player unknown to the local model",
	}),
	presentationTaskCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardclient_presentation_tasks_total",
		Help: "Total number of presentation tasks executed",
	}),
	presentationFailureCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardclient_presentation_failures_total",
		Help: "Total number of presentation tasks that returned an error or panicked",
	}),
	rejectedActionCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardclient_rejected_actions_total",
		Help: "Total number of outbound actions refused locally",
	}),
	actionsSentCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardclient_actions_sent_total",
		Help: "Total number of outbound actions sent to the table server",
	}),
	presentationQueueDepthGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cardclient_presentation_queue_depth",
		Help: "Number of presentation tasks waiting to run",
	}),
}
