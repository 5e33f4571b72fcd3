package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moneyhub/classmarket/market"
)

func sampleState() market.State {
	return market.State{
		Accounts: []*market.Account{
			{
				Name: "alice",
				Cash: 9500,
				Positions: map[string]*market.Position{
					"AAPL": {Qty: 5, EntryPrice: 100},
					"OLD":  {Qty: 0, EntryPrice: 77},
				},
			},
			{
				Name:      "bob",
				Cash:      10500,
				Positions: map[string]*market.Position{"AAPL": {Qty: -5, EntryPrice: 100}},
				PnL:       12.5,
			},
		},
		Offers: []*market.Offer{
			{ID: "01A", Submitter: "alice", Ticker: "AAPL", Direction: market.Sell, Price: 100, Quantity: 5, Matched: true},
			{ID: "01B", Submitter: "bob", Ticker: "TSLA", Direction: market.Buy, Price: 700, Quantity: 2},
		},
		ClosedTrades: []market.ClosedTrade{
			{ID: "01C", Account: "alice", Ticker: "NVDA", Qty: 3, EntryPrice: 400, ExitPrice: 410, PnL: 30, Direction: market.Long, Timestamp: "2026-08-30 10:00:00"},
		},
	}
}

func TestJSONStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewJSONStore(t.TempDir())
	assert.NoError(t, err)

	want := sampleState()
	assert.NoError(t, s.Save(want))

	got, err := s.Load()
	assert.NoError(t, err)

	assert.Len(t, got.Accounts, 2)
	alice := got.Account("alice")
	assert.NotNil(t, alice)
	assert.Equal(t, 9500.0, alice.Cash)
	assert.Equal(t, int64(5), alice.Positions["AAPL"].Qty)
	assert.Equal(t, int64(0), alice.Positions["OLD"].Qty)
	bob := got.Account("bob")
	assert.Equal(t, 12.5, bob.PnL)

	assert.Equal(t, want.Offers[0].ID, got.Offers[0].ID)
	assert.True(t, got.Offers[0].Matched)
	assert.False(t, got.Offers[1].Matched)
	assert.Equal(t, want.ClosedTrades, got.ClosedTrades)
}

func TestJSONStoreEmptyDirLoadsEmpty(t *testing.T) {
	t.Parallel()

	s, err := NewJSONStore(t.TempDir())
	assert.NoError(t, err)

	st, err := s.Load()
	assert.NoError(t, err)
	assert.Empty(t, st.Accounts)
	assert.Empty(t, st.Offers)
	assert.Empty(t, st.ClosedTrades)
}

func TestJSONStoreWritesWholeFilesNoTempLeftovers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewJSONStore(dir)
	assert.NoError(t, err)
	assert.NoError(t, s.Save(sampleState()))

	names, err := os.ReadDir(dir)
	assert.NoError(t, err)
	for _, e := range names {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), e.Name())
	}

	// users.json keeps the established file shape: name -> record with
	// the legacy pnl field always present.
	data, err := os.ReadFile(filepath.Join(dir, "users.json"))
	assert.NoError(t, err)
	var users map[string]map[string]any
	assert.NoError(t, json.Unmarshal(data, &users))
	assert.Contains(t, users, "alice")
	assert.Contains(t, users["alice"], "cash")
	assert.Contains(t, users["alice"], "positions")
	assert.Contains(t, users["alice"], "pnl")
}

func TestJSONStoreSaveReplacesWholesale(t *testing.T) {
	t.Parallel()

	s, err := NewJSONStore(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, s.Save(sampleState()))
	assert.NoError(t, s.Save(market.NewState()))

	st, err := s.Load()
	assert.NoError(t, err)
	assert.Empty(t, st.Accounts)
	assert.Empty(t, st.Offers)
	assert.Empty(t, st.ClosedTrades)
}
