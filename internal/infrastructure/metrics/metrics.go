package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistryCommands tracks commands sent to the registry by verb and result code
	RegistryCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registrar_registry_commands_total",
		Help: "Total number of registry protocol commands sent",
	}, []string{"command", "result"})

	// StateTransitions tracks lifecycle transitions by name and outcome
	StateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registrar_state_transitions_total",
		Help: "Total number of domain lifecycle transitions attempted",
	}, []string{"transition", "result"})

	// NameserverOps tracks per-host reconciliation operations
	NameserverOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registrar_nameserver_ops_total",
		Help: "Total number of host create/update/delete operations applied",
	}, []string{"op", "result"})

	// ContactOps tracks singleton-contact reconciliation outcomes
	ContactOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registrar_contact_ops_total",
		Help: "Total number of contact reconciliation operations",
	}, []string{"role", "result"})

	// CacheFetches tracks registry info fetches triggered by cache misses
	CacheFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registrar_cache_fetches_total",
		Help: "Total number of full cache fetches from the registry",
	}, []string{"result"})
)
