// Package metrics exposes counters for the long-running sync agent.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UnreadFetches counts authoritative unread-count fetches actually issued.
	UnreadFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hrpulse_unread_fetches_total",
		Help: "Unread-count fetches issued against the backend.",
	})
	// CoalescedTriggers counts refresh triggers absorbed by an in-flight
	// fetch or the debounce window.
	CoalescedTriggers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hrpulse_coalesced_triggers_total",
		Help: "Refresh triggers coalesced into an existing or recent fetch.",
	})
	// PushEvents counts foreground push messages received.
	PushEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hrpulse_push_events_total",
		Help: "Foreground push messages delivered by the transport.",
	})
	// Registrations counts token registration attempts by outcome.
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrpulse_token_registrations_total",
		Help: "Token registration attempts against the backend.",
	}, []string{"outcome"})
)
