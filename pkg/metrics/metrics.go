package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	reservationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_reservation_duration_seconds",
		Help:    "Duration of booking creation attempts",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	redemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_redemptions_total",
		Help: "Instrument redemptions by instrument and result",
	}, []string{"instrument", "result"})

	lifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_lifecycle_transitions_total",
		Help: "Booking status transitions by target status and result",
	}, []string{"to", "result"})

	waitlistEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_waitlist_events_total",
		Help: "Waitlist cascade events",
	}, []string{"event"})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_notifications_total",
		Help: "Outbound notifications by kind and result",
	}, []string{"kind", "result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveReservation records a CreateBooking attempt. result is "created" or
// the error kind.
func ObserveReservation(result string, duration time.Duration) {
	reservationDuration.WithLabelValues(result).Observe(duration.Seconds())
}

func ObserveRedemption(instrument, result string) {
	redemptions.WithLabelValues(instrument, result).Inc()
}

func ObserveTransition(to, result string) {
	lifecycleTransitions.WithLabelValues(to, result).Inc()
}

func ObserveWaitlist(event string) {
	waitlistEvents.WithLabelValues(event).Inc()
}

func ObserveNotification(kind, result string) {
	notificationsTotal.WithLabelValues(kind, result).Inc()
}
