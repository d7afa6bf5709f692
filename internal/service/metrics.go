package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the domain counters exported on /metrics. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	recipesCreated      prometheus.Counter
	membershipChanges   *prometheus.CounterVec
	shoppingListExports prometheus.Counter
	subscriptions       *prometheus.CounterVec
}

// NewMetrics registers the counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		recipesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "foodgram_recipes_created_total",
			Help: "Total number of recipes created.",
		}),
		membershipChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "foodgram_membership_changes_total",
			Help: "Favorites and shopping list additions and removals.",
		}, []string{"set", "action"}),
		shoppingListExports: factory.NewCounter(prometheus.CounterOpts{
			Name: "foodgram_shopping_list_exports_total",
			Help: "Total number of shopping list downloads.",
		}),
		subscriptions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "foodgram_subscriptions_total",
			Help: "Follow and unfollow actions.",
		}, []string{"action"}),
	}
}

func (m *Metrics) recipeCreated() {
	if m == nil {
		return
	}
	m.recipesCreated.Inc()
}

func (m *Metrics) membershipChanged(kind SetKind, action string) {
	if m == nil {
		return
	}
	m.membershipChanges.WithLabelValues(kind.String(), action).Inc()
}

func (m *Metrics) shoppingListExported() {
	if m == nil {
		return
	}
	m.shoppingListExports.Inc()
}

func (m *Metrics) subscriptionChanged(action string) {
	if m == nil {
		return
	}
	m.subscriptions.WithLabelValues(action).Inc()
}
