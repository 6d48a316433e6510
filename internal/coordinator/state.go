// SPDX-License-Identifier: MPL-2.0

package coordinator

import "github.com/ksearch/ksearch/internal/worker"

// State is a stage of a coordinated run. States are entered strictly in
// declaration order; a run never revisits a state.
type State int

const (
	// Enumerating builds the file list.
	Enumerating State = iota
	// Partitioned has computed one shard per worker.
	Partitioned
	// Executing has started the workers.
	Executing
	// Synchronizing waits at the barrier for every worker's result.
	Synchronizing
	// Aggregated holds the global result.
	Aggregated
	// Reported has written the summary.
	Reported
)

type (
	// Observer receives progress events of a run. OnMatch and OnWorkerDone
	// are called from worker goroutines and must be safe for concurrent use.
	Observer interface {
		OnState(State)
		OnMatch(worker.Match)
		OnWorkerDone(worker.LocalResult)
	}

	// ObserverFuncs adapts optional functions to the Observer interface.
	ObserverFuncs struct {
		State      func(State)
		Match      func(worker.Match)
		WorkerDone func(worker.LocalResult)
	}

	nopObserver struct{}
)

var stateNames = [...]string{
	Enumerating:   "enumerating",
	Partitioned:   "partitioned",
	Executing:     "executing",
	Synchronizing: "synchronizing",
	Aggregated:    "aggregated",
	Reported:      "reported",
}

// String returns the lowercase state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// OnState implements Observer.
func (o ObserverFuncs) OnState(s State) {
	if o.State != nil {
		o.State(s)
	}
}

// OnMatch implements Observer.
func (o ObserverFuncs) OnMatch(m worker.Match) {
	if o.Match != nil {
		o.Match(m)
	}
}

// OnWorkerDone implements Observer.
func (o ObserverFuncs) OnWorkerDone(r worker.LocalResult) {
	if o.WorkerDone != nil {
		o.WorkerDone(r)
	}
}

func (nopObserver) OnState(State)                   {}
func (nopObserver) OnMatch(worker.Match)            {}
func (nopObserver) OnWorkerDone(worker.LocalResult) {}
