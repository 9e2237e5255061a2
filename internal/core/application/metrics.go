package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "seedcheck",
		Name:      "sessions_started_total",
		Help:      "Number of validation sessions started.",
	})
	sessionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seedcheck",
		Name:      "sessions_completed_total",
		Help:      "Number of validation sessions completed, by result.",
	}, []string{"result"})
	sessionsReset = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "seedcheck",
		Name:      "sessions_reset_total",
		Help:      "Number of validation sessions reset for a new attempt.",
	})
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "seedcheck",
		Name:      "sessions_active",
		Help:      "Number of validation sessions currently kept in memory.",
	})
)
