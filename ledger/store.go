// Package ledger persists the market snapshot. Stores are whole-snapshot:
// Load rebuilds everything, Save replaces everything. There are no partial
// updates, which keeps every backend write-all-or-fail.
package ledger

import "github.com/moneyhub/classmarket/market"

type Store interface {
	Load() (market.State, error)
	Save(market.State) error
}
