package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/neoburger/burgerctl/internal/chain"
)

// BenchmarkResult holds the result of a single endpoint benchmark.
type BenchmarkResult struct {
	URL     string
	Latency time.Duration
	Height  uint32
	Err     error
}

// Benchmark pings all urls in parallel. Results keep the order of urls.
func Benchmark(ctx context.Context, urls []string) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			latency, height, err := chain.New(url, url).Ping(ctx)
			results[i] = BenchmarkResult{URL: url, Latency: latency, Height: height, Err: err}
		}()
	}
	wg.Wait()
	return results
}

// ResultsToEndpoints converts benchmark results to checked endpoints.
func ResultsToEndpoints(results []BenchmarkResult) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:     r.URL,
			Latency: r.Latency,
			Height:  r.Height,
			Healthy: r.Err == nil,
			Checked: true,
		})
	}
	return endpoints
}

// Order picks the primary endpoint among urls with algo and returns it
// with the fallback: the first other healthy endpoint in configured order,
// or the primary itself when there is none. A single url is returned as
// both without any network call.
func Order(ctx context.Context, urls []string, algo Algorithm) (primary, fallback string, err error) {
	switch len(urls) {
	case 0:
		return "", "", ErrNoHealthyRPC
	case 1:
		return urls[0], urls[0], nil
	}
	endpoints := ResultsToEndpoints(Benchmark(ctx, urls))
	winner, err := NewPicker(algo).Pick(endpoints)
	if err != nil {
		return "", "", err
	}
	primary, fallback = winner.URL, winner.URL
	for _, e := range endpoints {
		if e.URL != primary && e.Healthy {
			fallback = e.URL
			break
		}
	}
	return primary, fallback, nil
}
