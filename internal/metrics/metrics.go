// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CaptureActions counts workflow actions by action name and outcome.
	CaptureActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_capture_actions_total",
		Help: "Capture workflow actions by action and outcome.",
	}, []string{"action", "outcome"})

	// RecordsLogged counts attendance records written to the store.
	RecordsLogged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_records_logged_total",
		Help: "Attendance records written to the store.",
	})

	// ClassifierVerdicts counts face classification calls by verdict.
	ClassifierVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_classifier_verdicts_total",
		Help: "Face classification calls by verdict.",
	}, []string{"verdict"})
)
