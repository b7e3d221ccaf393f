package burger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/config"
	"github.com/neoburger/burgerctl/internal/neo"
)

// ErrNotEnoughHistory is returned when the chain is too short for a
// statistics window.
var ErrNotEnoughHistory = errors.New("chain too short for statistics window")

const secondsPerYear = 60 * 60 * 24 * 365

// Amount is an integer that the statistics blobs render either as a JSON
// number or as a string.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*a = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount %s: %w", data, err)
	}
	*a = Amount(n.String())
	return nil
}

// Decimal parses the amount. Empty amounts are zero.
func (a Amount) Decimal() decimal.Decimal {
	d, err := decimal.NewFromString(string(a))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// BlockInfo is the protocol snapshot published for one block height.
type BlockInfo struct {
	Timestamp    int64  `json:"timestamp"` // unix milliseconds
	RPS          Amount `json:"rps"`
	TotalSupply  Amount `json:"total_supply"`
	BalanceOfTEE Amount `json:"balance_of_TEE"`
	BalanceOfDAO Amount `json:"balance_of_DAO"`
}

// Day renders the snapshot date as MM-DD.
func (b *BlockInfo) Day() string {
	if b == nil || b.Timestamp == 0 {
		return ""
	}
	return time.UnixMilli(b.Timestamp).UTC().Format("01-02")
}

// Point is one sample of a time series.
type Point struct {
	X string
	Y string
}

// TreasuryPoint is one day of treasury balances, in bNEO.
type TreasuryPoint struct {
	X   string
	TEE string
	DAO string
}

// TotalSupply returns the bNEO supply.
func (r *Reader) TotalSupply(ctx context.Context) (string, error) {
	v, err := r.integer(ctx, r.contracts.BNEO, "totalSupply")
	if err != nil {
		return "", err
	}
	return neo.ShiftedBy(v, -8), nil
}

// UnclaimedGAS returns the GAS address can claim from bNEO.
func (r *Reader) UnclaimedGAS(ctx context.Context, address string) (string, error) {
	hash, err := neo.ScriptHashFromAddress(address)
	if err != nil {
		return "", err
	}
	v, err := r.integer(ctx, r.contracts.BNEO, "reward", neo.Hash160(hash))
	if err != nil {
		return "", err
	}
	return neo.ShiftedBy(v, -8), nil
}

// RewardsPerNEO returns the raw accumulated GAS reward per NEO.
func (r *Reader) RewardsPerNEO(ctx context.Context) (string, error) {
	return r.integer(ctx, r.contracts.BNEO, "rPS")
}

// BalanceOf returns the raw balance of the account hash in asset.
func (r *Reader) BalanceOf(ctx context.Context, asset, hash string) (string, error) {
	return r.integer(ctx, asset, "balanceOf", neo.Hash160(hash))
}

// BlockInfo fetches the snapshot for height. The primary store is tried
// three times, then the mirror once.
func (r *Reader) BlockInfo(ctx context.Context, height uint32) (*BlockInfo, error) {
	info, err := retry.DoWithData(
		func() (*BlockInfo, error) { return r.blob(ctx, fmt.Sprintf(r.blobURL, height)) },
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		return info, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	r.log.Warn().Err(err).Uint32("height", height).Msg("statistics store failed, trying mirror")
	info, err = r.blob(ctx, fmt.Sprintf(r.mirrorURL, height))
	if err != nil {
		return nil, fmt.Errorf("block %d: %w: %v", height, chain.ErrNoResult, err)
	}
	return info, nil
}

func (r *Reader) blob(ctx context.Context, url string) (*BlockInfo, error) {
	var info BlockInfo
	if err := r.getJSON(ctx, url, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *Reader) getJSON(ctx context.Context, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s: %w", url, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing %s: %w", url, err)
	}
	return nil
}

// GASPerNEOPerSecond returns the raw GAS reward rate per NEO per second,
// measured over the statistics window ending StatsLag blocks ago.
func (r *Reader) GASPerNEOPerSecond(ctx context.Context) (decimal.Decimal, error) {
	height, err := r.chain.BlockCount(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if height < config.StatsLag+config.StatsWindow {
		return decimal.Zero, ErrNotEnoughHistory
	}
	var x, y *BlockInfo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		x, err = r.BlockInfo(gctx, height-config.StatsLag)
		return err
	})
	g.Go(func() (err error) {
		y, err = r.BlockInfo(gctx, height-config.StatsLag-config.StatsWindow)
		return err
	})
	if err := g.Wait(); err != nil {
		return decimal.Zero, err
	}
	dt := x.Timestamp - y.Timestamp
	if dt <= 0 {
		return decimal.Zero, fmt.Errorf("statistics timestamps out of order: %d <= %d", x.Timestamp, y.Timestamp)
	}
	return x.RPS.Decimal().Sub(y.RPS.Decimal()).Mul(decimal.NewFromInt(1000)).Div(decimal.NewFromInt(dt)), nil
}

// APR is the yearly return in percent of holding bNEO, given the reward
// rate and the NEO and GAS prices. ok is false when prices are missing.
func APR(gasPerNEOPerSecond, neoPrice, gasPrice decimal.Decimal) (apr decimal.Decimal, ok bool) {
	if neoPrice.IsZero() || gasPrice.IsZero() {
		return decimal.Zero, false
	}
	return gasPerNEOPerSecond.Shift(-8).
		Mul(decimal.NewFromInt(secondsPerYear)).
		Mul(gasPrice.Div(neoPrice)).
		Mul(decimal.NewFromInt(100)).
		Round(2), true
}

// snapshots fetches the blobs days ago for each day in days, keyed by day.
// Missing snapshots are left out.
func (r *Reader) snapshots(ctx context.Context, height uint32, days []int) map[int]*BlockInfo {
	var mu sync.Mutex
	out := make(map[int]*BlockInfo, len(days))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, d := range days {
		back := uint32(d) * config.BlocksPerDay
		if back > height {
			continue
		}
		g.Go(func() error {
			info, err := r.BlockInfo(gctx, height-back)
			if err != nil {
				r.log.Debug().Err(err).Int("day", d).Msg("snapshot unavailable")
				return nil
			}
			mu.Lock()
			out[d] = info
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// SupplySeries returns the daily bNEO supply for the last n days, oldest
// first. Days without a snapshot have an empty Y.
func (r *Reader) SupplySeries(ctx context.Context, n int) ([]Point, error) {
	height, err := r.chain.BlockCount(ctx)
	if err != nil {
		return nil, err
	}
	snaps := r.snapshots(ctx, height, dayRange(0, n))
	out := make([]Point, n)
	for d := 0; d < n; d++ {
		info := snaps[d]
		p := Point{X: info.Day()}
		if info != nil && info.TotalSupply != "" {
			p.Y = info.TotalSupply.Decimal().Shift(-8).String()
		}
		out[n-1-d] = p
	}
	return out, nil
}

// RewardSeries returns the GAS earned per NEO on each of the last n days,
// oldest first. Today runs from the latest snapshot to the live rPS.
func (r *Reader) RewardSeries(ctx context.Context, n int) ([]Point, error) {
	height, err := r.chain.BlockCount(ctx)
	if err != nil {
		return nil, err
	}
	snaps := r.snapshots(ctx, height, dayRange(1, n+1))
	live, err := r.RewardsPerNEO(ctx)
	if err != nil {
		r.log.Debug().Err(err).Msg("live rPS unavailable")
	}
	out := make([]Point, n)
	for d := 0; d < n; d++ {
		p := Point{Y: "0"}
		var cur Amount
		if d == 0 {
			cur = Amount(live)
			p.X = r.now().UTC().Format("01-02")
		} else if info := snaps[d]; info != nil {
			cur = info.RPS
			p.X = info.Day()
		}
		if prev := snaps[d+1]; cur != "" && prev != nil && prev.RPS != "" {
			p.Y = cur.Decimal().Sub(prev.RPS.Decimal()).Shift(-8).String()
		}
		out[n-1-d] = p
	}
	return out, nil
}

// TreasurySeries returns the daily TEE and DAO bNEO balances for the last
// n days, oldest first.
func (r *Reader) TreasurySeries(ctx context.Context, n int) ([]TreasuryPoint, error) {
	height, err := r.chain.BlockCount(ctx)
	if err != nil {
		return nil, err
	}
	snaps := r.snapshots(ctx, height, dayRange(0, n))
	out := make([]TreasuryPoint, n)
	for d := 0; d < n; d++ {
		info := snaps[d]
		p := TreasuryPoint{X: info.Day()}
		if info != nil {
			if info.BalanceOfTEE != "" {
				p.TEE = info.BalanceOfTEE.Decimal().Shift(-8).String()
			}
			if info.BalanceOfDAO != "" {
				p.DAO = info.BalanceOfDAO.Decimal().Shift(-8).String()
			}
		}
		out[n-1-d] = p
	}
	return out, nil
}

func dayRange(from, to int) []int {
	out := make([]int, 0, to-from)
	for d := from; d < to; d++ {
		out = append(out, d)
	}
	return out
}
