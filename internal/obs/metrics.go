package obs

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	ConfirmTotal        *prometheus.CounterVec // result=confirmed|capacity_exceeded|rejected
	ReservationsCreated prometheus.Counter
	SweepTotal          prometheus.Counter
	TripsRetired        *prometheus.CounterVec // status=completed|expired
	GuardBusyTotal      prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		ConfirmTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripshare_confirm_total",
				Help: "Confirmation outcomes by result",
			},
			[]string{"result"},
		),
		ReservationsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tripshare_reservations_created_total",
				Help: "Reservations created",
			},
		),
		SweepTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tripshare_sweep_total",
				Help: "Lifecycle sweeper passes",
			},
		),
		TripsRetired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripshare_trips_retired_total",
				Help: "Trips retired by the sweeper, by terminal status",
			},
			[]string{"status"},
		),
		GuardBusyTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tripshare_guard_busy_total",
				Help: "Per-trip guard acquisitions that timed out",
			},
		),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		m.ConfirmTotal,
		m.ReservationsCreated,
		m.SweepTotal,
		m.TripsRetired,
		m.GuardBusyTotal,
	)
}
