// Package metrics exposes planner counters on a dedicated Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pantry_planner"

var (
	Registry = prometheus.NewRegistry()

	ShoppingListsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shopping_lists_generated_total",
		Help:      "Shopping list generation attempts by outcome.",
	}, []string{"outcome"})

	CandidatesDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidates_dropped_total",
		Help:      "Proposed items removed by the allocator, by reason.",
	}, []string{"reason"})

	ProposerDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "proposer_request_duration_seconds",
		Help:      "Latency of candidate proposer calls, including retries.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
	})

	PurchasesConfirmed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_confirmed_total",
		Help:      "Shopping lists reconciled into the pantry.",
	})

	PantryItemsAdded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pantry_items_added_total",
		Help:      "Pantry items created, by source.",
	}, []string{"source"})

	WasteRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "waste_records_total",
		Help:      "Food waste records written, by reason.",
	}, []string{"reason"})

	WasteSweepFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "waste_sweep_item_failures_total",
		Help:      "Pantry items skipped by a waste sweep because applying them failed.",
	})

	RecipeSuggestionRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recipe_suggestion_requests_total",
		Help:      "Recipe suggestion requests by outcome.",
	}, []string{"outcome"})

	BudgetsOverspent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "budgets_overspent_total",
		Help:      "Budget syncs that left a negative remaining amount.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		ShoppingListsGenerated,
		CandidatesDropped,
		ProposerDuration,
		PurchasesConfirmed,
		PantryItemsAdded,
		WasteRecorded,
		WasteSweepFailures,
		RecipeSuggestionRequests,
		BudgetsOverspent,
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
