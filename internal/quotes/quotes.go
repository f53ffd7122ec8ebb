// Package quotes fetches live prices and merges them into the stored
// price table.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tally-dev/tally/internal/model"
)

// Quoter returns the current price of one ticker.
type Quoter interface {
	Quote(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// QuoterFunc adapts a function to the Quoter interface.
type QuoterFunc func(ctx context.Context, ticker string) (decimal.Decimal, error)

func (f QuoterFunc) Quote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	return f(ctx, ticker)
}

// ErrRefreshInProgress is returned when Refresh is called while another
// refresh on the same Refresher has not finished.
var ErrRefreshInProgress = errors.New("price refresh already in progress")

// BatchError names the tickers whose quote could not be fetched.
type BatchError struct {
	Failed []string
	Errs   map[string]error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("failed to fetch prices for: %s", strings.Join(e.Failed, ", "))
}

// Refresher fetches quotes for a batch of tickers concurrently.
type Refresher struct {
	quoter  Quoter
	logger  *log.Logger
	pending atomic.Bool
}

// NewRefresher returns a Refresher backed by q. A nil logger discards output.
func NewRefresher(q Quoter, logger *log.Logger) *Refresher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Refresher{quoter: q, logger: logger}
}

// Refresh requests every unique ticker at once and waits for all of them.
// The returned map is current with successful quotes written over it;
// tickers that failed keep their previous value. When any ticker failed the
// error is a *BatchError and the map is still valid.
func (r *Refresher) Refresh(ctx context.Context, tickers []string, current model.PriceMap) (model.PriceMap, error) {
	if !r.pending.CompareAndSwap(false, true) {
		return nil, ErrRefreshInProgress
	}
	defer r.pending.Store(false)

	unique := uniqueTickers(tickers)
	merged := current.Clone()
	if len(unique) == 0 {
		return merged, nil
	}

	var (
		mu     sync.Mutex
		fresh  = make(map[string]decimal.Decimal, len(unique))
		failed = make(map[string]error)
	)

	var g errgroup.Group
	for _, ticker := range unique {
		g.Go(func() error {
			price, err := r.quoter.Quote(ctx, ticker)
			if err == nil && !price.IsPositive() {
				err = fmt.Errorf("no price returned")
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[ticker] = err
				r.logger.Warn("quote failed", "ticker", ticker, "err", err)
				return nil
			}
			fresh[ticker] = price
			r.logger.Debug("quote", "ticker", ticker, "price", price)
			return nil
		})
	}
	// Workers never return an error; failures are collected per ticker.
	_ = g.Wait()

	for ticker, price := range fresh {
		merged[ticker] = price
	}
	if len(failed) == 0 {
		return merged, nil
	}

	be := &BatchError{Errs: failed}
	for ticker := range failed {
		be.Failed = append(be.Failed, ticker)
	}
	sort.Strings(be.Failed)
	return merged, be
}

func uniqueTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	var out []string
	for _, t := range tickers {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
