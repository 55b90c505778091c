package rpc

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
)

// ParseAlgorithm validates an algorithm name. Empty means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case "":
		return AlgorithmFastest, nil
	case AlgorithmFastest, AlgorithmRoundRobin, AlgorithmFailover:
		return a, nil
	default:
		return "", fmt.Errorf("unknown RPC algorithm %q (fastest, round-robin, failover)", s)
	}
}

// Endpoint is one RPC URL with its measured attributes.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Healthy reports whether the endpoint answered the ping.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// Picker selects an endpoint from a benchmarked list. It keeps the
// round-robin cursor between calls, so the server can hold one per network.
type Picker struct {
	algo Algorithm

	mu      sync.Mutex
	rrIndex int
}

// NewPicker creates a Picker with the given algorithm.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo}
}

// Pick selects an endpoint according to the algorithm. Endpoints that failed
// their ping, or lag the best block by more than a few blocks, are skipped.
func (p *Picker) Pick(endpoints []Endpoint) (Endpoint, error) {
	live := fresh(endpoints)
	if len(live) == 0 {
		return Endpoint{}, ErrNoHealthyRPC
	}

	switch p.algo {
	case AlgorithmRoundRobin:
		p.mu.Lock()
		defer p.mu.Unlock()
		e := live[p.rrIndex%len(live)]
		p.rrIndex = (p.rrIndex + 1) % len(live)
		return e, nil
	case AlgorithmFailover:
		// Configuration order is the priority order.
		return live[0], nil
	default:
		sorted := append([]Endpoint(nil), live...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Latency < sorted[j].Latency
		})
		return sorted[0], nil
	}
}

// fresh keeps healthy endpoints that are close to the chain head, in input order.
func fresh(endpoints []Endpoint) []Endpoint {
	var best uint64
	for _, e := range endpoints {
		if e.Healthy() && e.BlockNumber > best {
			best = e.BlockNumber
		}
	}
	out := make([]Endpoint, 0, len(endpoints))
	for _, e := range endpoints {
		if !e.Healthy() {
			continue
		}
		if best > 0 && best-e.BlockNumber > staleBlockThreshold {
			continue
		}
		out = append(out, e)
	}
	return out
}
