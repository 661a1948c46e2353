package service

import "github.com/prometheus/client_golang/prometheus"

var (
	complaintsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaints_created_total",
			Help: "Complaints submitted, by category",
		},
		[]string{"category"},
	)
	statusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_status_updates_total",
			Help: "Status changes applied by admins, by new status",
		},
		[]string{"status"},
	)
	complaintsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "complaints_deleted_total",
			Help: "Complaints removed by their owners",
		},
	)
	uploadsCompensated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "complaint_uploads_compensated_total",
			Help: "Stored images removed because the complaint insert failed",
		},
	)
)

func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(complaintsCreated, statusUpdates, complaintsDeleted, uploadsCompensated)
}
