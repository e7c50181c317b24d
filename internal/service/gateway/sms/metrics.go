package sms

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var _ Client = (*MetricsClient)(nil)

// MetricsClient decorates a Client with Prometheus counters and latency.
type MetricsClient struct {
	client        Client
	sendCounter   *prometheus.CounterVec
	sendDuration  *prometheus.SummaryVec
	lookupCounter *prometheus.CounterVec
	gatewayName   string
}

func NewMetricsClient(gatewayName string, client Client) *MetricsClient {
	sendCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_gateway_send_total",
			Help: "SMS gateway send attempts by outcome",
		},
		[]string{"gateway", "outcome"},
	)
	sendDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "sms_gateway_send_duration_seconds",
			Help:       "SMS gateway send latency in seconds",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			MaxAge:     time.Minute * 5,
		},
		[]string{"gateway", "outcome"},
	)
	lookupCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_gateway_lookup_total",
			Help: "SMS capability lookups by outcome",
		},
		[]string{"gateway", "outcome"},
	)
	prometheus.MustRegister(sendCounter, sendDuration, lookupCounter)

	return &MetricsClient{
		client:        client,
		sendCounter:   sendCounter,
		sendDuration:  sendDuration,
		lookupCounter: lookupCounter,
		gatewayName:   gatewayName,
	}
}

func (m *MetricsClient) Send(ctx context.Context, req SendReq) (SendResp, error) {
	start := time.Now()
	resp, err := m.client.Send(ctx, req)
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.sendCounter.WithLabelValues(m.gatewayName, outcome).Inc()
	m.sendDuration.WithLabelValues(m.gatewayName, outcome).Observe(time.Since(start).Seconds())
	return resp, err
}

func (m *MetricsClient) Lookup(ctx context.Context, number string) (bool, error) {
	capable, err := m.client.Lookup(ctx, number)
	outcome := "capable"
	switch {
	case err != nil:
		outcome = "error"
	case !capable:
		outcome = "incapable"
	}
	m.lookupCounter.WithLabelValues(m.gatewayName, outcome).Inc()
	return capable, err
}
