package rpc

import (
	"context"

	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/config"
)

// HealthCheck pings a single endpoint. A node is healthy when it answers
// within the select timeout and is at most staleBlockThreshold blocks
// behind bestHeight (0 skips the recency check).
func HealthCheck(ctx context.Context, url string, bestHeight uint32) (Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()

	latency, height, err := chain.New(url, url).Ping(ctx)
	ep := Endpoint{
		URL:     url,
		Latency: latency,
		Height:  height,
		Healthy: err == nil,
		Checked: true,
	}
	if err == nil && stale(&ep, bestHeight) {
		ep.Healthy = false
	}
	return ep, err
}
