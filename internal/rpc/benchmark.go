package rpc

import (
	"context"
	"slices"
	"sync"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/logging"
	"github.com/sirupsen/logrus"
)

// Benchmark pings all URLs in parallel. Results keep the input order.
func Benchmark(ctx context.Context, urls []string, log logrus.FieldLogger) []Endpoint {
	log = logging.OrDiscard(log)
	results := make([]Endpoint, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			results[idx] = ping(ctx, u)
			if err := results[idx].Err; err != nil {
				log.WithError(err).WithField("rpc", u).Debug("endpoint unreachable")
				return
			}
			log.WithFields(logrus.Fields{
				"rpc":     u,
				"latency": results[idx].Latency,
				"block":   results[idx].BlockNumber,
			}).Debug("endpoint benchmarked")
		}(i, url)
	}

	wg.Wait()
	return results
}

func ping(ctx context.Context, url string) Endpoint {
	c, err := chain.Dial(ctx, url)
	if err != nil {
		return Endpoint{URL: url, Err: err}
	}
	defer c.Close()
	latency, block, err := c.Ping(ctx)
	return Endpoint{URL: url, Latency: latency, BlockNumber: block, Err: err}
}

// URLs lists the endpoints to consider for a network: custom URLs first, in
// the order they were added, then the registry defaults. Duplicates are
// dropped.
func URLs(network *chain.Network, custom []string) []string {
	out := make([]string, 0, len(custom)+len(network.RPCs))
	for _, u := range slices.Concat(custom, network.RPCs) {
		if u != "" && !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	return out
}

// Best benchmarks the URLs and picks one. A single URL is returned untested.
func Best(ctx context.Context, urls []string, algo Algorithm, log logrus.FieldLogger) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	winner, err := NewPicker(algo).Pick(Benchmark(ctx, urls, log))
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
