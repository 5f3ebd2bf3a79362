package portfolio

import (
	"fmt"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
)

// Cost-basis tracking. Pure functions over Position so the incremental path
// (one trade at a time) and the replay path (full ledger rebuild) share the
// exact same arithmetic.
//
// Cost basis uses the raw execution price. Fees and taxes reduce realized
// P&L on the sell side but are never folded into the average cost.

// applyBuy folds a buy into a position using weighted average cost.
func applyBuy(p Position, e LedgerEntry) Position {
	cost := float64(e.Shares) * e.Price

	p.TotalShares += e.Shares
	p.TotalCost += cost
	p.AvgCost = p.TotalCost / float64(p.TotalShares)
	p.BuyCount++
	if p.FirstBuyAt == 0 || e.ExecutedAt < p.FirstBuyAt {
		p.FirstBuyAt = e.ExecutedAt
	}
	if e.ExecutedAt > p.LastTradeAt {
		p.LastTradeAt = e.ExecutedAt
	}
	if e.StockName != "" {
		p.StockName = e.StockName
	}
	return p
}

// applySell folds a sell into a position and returns the realized P&L for
// that sell: (price - avg cost) x shares - fee - tax. Selling more than the
// position holds is rejected, the caller decides whether that surfaces as an
// input error or a replay integrity error.
func applySell(p Position, e LedgerEntry) (Position, float64, error) {
	if e.Shares > p.TotalShares {
		return p, 0, fmt.Errorf("%w: sell %d shares of %s, holding %d",
			domain.ErrInsufficientShares, e.Shares, e.Symbol, p.TotalShares)
	}

	realized := (e.Price-p.AvgCost)*float64(e.Shares) - float64(e.Fee) - float64(e.Tax)

	p.TotalShares -= e.Shares
	if p.TotalShares == 0 {
		// Closed out: cost basis resets, cumulative realized P&L survives
		p.TotalCost = 0
		p.AvgCost = 0
	} else {
		p.TotalCost = p.AvgCost * float64(p.TotalShares)
	}
	p.RealizedPnL += realized
	p.SellCount++
	if e.ExecutedAt > p.LastTradeAt {
		p.LastTradeAt = e.ExecutedAt
	}
	return p, realized, nil
}

// apply dispatches one ledger entry. The realized pointer is nil for buys.
func apply(p Position, e LedgerEntry) (Position, *float64, error) {
	switch e.Action {
	case domain.ActionBuy:
		return applyBuy(p, e), nil, nil
	case domain.ActionSell:
		next, realized, err := applySell(p, e)
		if err != nil {
			return p, nil, err
		}
		return next, &realized, nil
	default:
		return p, nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidTradeInput, e.Action)
	}
}

// ReplayLedger rebuilds all positions from a chronological list of ledger
// entries and returns the realized P&L of each entry (nil for buys), so
// callers can rewrite stored per-trade values after edits. An oversell
// mid-replay means the ledger itself is inconsistent (edited or deleted
// rows), which is reported as ErrLedgerReplay rather than clamped.
func ReplayLedger(entries []LedgerEntry) (map[string]Position, []*float64, error) {
	positions := make(map[string]Position)
	realized := make([]*float64, len(entries))

	for i, e := range entries {
		p, ok := positions[e.Symbol]
		if !ok {
			p = Position{Symbol: e.Symbol, StockName: e.StockName}
		}

		next, r, err := apply(p, e)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: entry %d (%s %s %d @ %v): %v",
				domain.ErrLedgerReplay, i, e.Symbol, e.Action, e.Shares, e.Price, err)
		}
		positions[e.Symbol] = next
		realized[i] = r
	}

	return positions, realized, nil
}
