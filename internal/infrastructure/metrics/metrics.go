package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	JournalEntriesCreated prometheus.Counter
	PostingsCreated       prometheus.Counter
	JournalEntryDuration  prometheus.Histogram
	LedgerImbalances      prometheus.Counter

	// Adjustment metrics
	AdjustmentsCreated *prometheus.CounterVec
	AdjustmentAmount   prometheus.Histogram

	// Network message metrics
	AuthorizationsApproved prometheus.Counter
	AuthorizationsDeclined *prometheus.CounterVec
	SettlementsPosted      prometheus.Counter
	DuplicateMessages      prometheus.Counter
	MessageDuration        *prometheus.HistogramVec

	// Hold metrics
	HoldsCreated  prometheus.Counter
	HoldsReleased prometheus.Counter
	HoldsCaptured prometheus.Counter

	// Allocation metrics
	Reallocations prometheus.Counter

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBErrors      *prometheus.CounterVec
	DBConnections prometheus.Gauge

	// Cache metrics
	BalanceCacheHits   prometheus.Counter
	BalanceCacheMisses prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		JournalEntriesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_journal_entries_created_total",
			Help: "Total number of journal entries committed",
		}),
		PostingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_postings_created_total",
			Help: "Total number of postings committed",
		}),
		JournalEntryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardledger_journal_entry_duration_seconds",
			Help:    "Duration of journal entry commits",
			Buckets: prometheus.DefBuckets,
		}),
		LedgerImbalances: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_ledger_imbalances_total",
			Help: "Total number of rejected unbalanced journal entries",
		}),

		AdjustmentsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_adjustments_created_total",
				Help: "Total number of adjustments created by type",
			},
			[]string{"type"},
		),
		AdjustmentAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardledger_adjustment_amount",
			Help:    "Absolute adjustment amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		AuthorizationsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_authorizations_approved_total",
			Help: "Total number of approved authorizations",
		}),
		AuthorizationsDeclined: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_authorizations_declined_total",
				Help: "Total number of declined authorizations by reason",
			},
			[]string{"reason"},
		),
		SettlementsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_settlements_posted_total",
			Help: "Total number of clearing events posted to the ledger",
		}),
		DuplicateMessages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_duplicate_messages_total",
			Help: "Total number of network messages answered from the idempotency record",
		}),
		MessageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardledger_network_message_duration_seconds",
				Help:    "Duration of network message processing",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),

		HoldsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_holds_created_total",
			Help: "Total number of authorization holds created",
		}),
		HoldsReleased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_holds_released_total",
			Help: "Total number of holds released without capture",
		}),
		HoldsCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_holds_captured_total",
			Help: "Total number of holds captured at settlement",
		}),

		Reallocations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_reallocations_total",
			Help: "Total number of allocation-to-allocation fund moves",
		}),

		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cardledger_db_connections",
			Help: "Current number of database connections",
		}),

		BalanceCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_balance_cache_hits_total",
			Help: "Total balance cache hits",
		}),
		BalanceCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_balance_cache_misses_total",
			Help: "Total balance cache misses",
		}),
	}
}
