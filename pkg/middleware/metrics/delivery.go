package metrics

import "time"

// ObserveDelivery records one sink delivery outcome.
func ObserveDelivery(protocol, channel, outcome string, took time.Duration) {
	relayDeliveries.WithLabelValues(protocol, channel, outcome).Inc()
	relayDeliverySeconds.WithLabelValues(protocol).Observe(took.Seconds())
}
