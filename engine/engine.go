// Package engine implements the trade-matching and position-accounting rules
// of the classroom market. All state lives in memory behind one mutex; every
// action reads the current snapshot, mutates a clone, persists it through the
// ledger store, and only then swaps the clone in. A failed save therefore
// rejects the whole action with no state change.
package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/moneyhub/classmarket/internal/id"
	"github.com/moneyhub/classmarket/ledger"
	"github.com/moneyhub/classmarket/market"
	"github.com/moneyhub/classmarket/pricing"
)

// Options carries the tunable market parameters. Zero values fall back to
// the classroom defaults.
type Options struct {
	StartingCash    float64 // cash granted on first appearance (default 10000)
	JitterLow       float64 // oracle band (default 0.95 / 1.05)
	JitterHigh      float64
	LeaderboardSeed uint64  // seed for the per-round price table (default 42)
	FallbackPrice   float64 // price for tickers absent from the table (default 100)
	Admin           string  // account allowed to reset (default "teacher")
}

const DefaultStartingCash = 10000

func (o Options) withDefaults() Options {
	if o.StartingCash == 0 {
		o.StartingCash = DefaultStartingCash
	}
	if o.JitterLow == 0 && o.JitterHigh == 0 {
		o.JitterLow, o.JitterHigh = pricing.DefaultLow, pricing.DefaultHigh
	}
	if o.LeaderboardSeed == 0 {
		o.LeaderboardSeed = pricing.LeaderboardSeed
	}
	if o.FallbackPrice == 0 {
		o.FallbackPrice = pricing.FallbackPrice
	}
	if o.Admin == "" {
		o.Admin = "teacher"
	}
	return o
}

// Match reports the two sides of an executed fill.
type Match struct {
	Offer  market.Offer
	Buyer  string
	Seller string
	Total  float64
}

// PositionView is one open-position row marked with a fresh oracle draw.
type PositionView struct {
	Ticker     string
	Qty        int64
	EntryPrice float64
	Mark       float64
	Unrealized float64
}

// Portfolio is one account's valuation snapshot. NetWorth is cash plus the
// marked value of every open position; because marks are fresh draws, two
// snapshots of the same account will rarely agree.
type Portfolio struct {
	Name      string
	Cash      float64
	NetWorth  float64
	Positions []PositionView
	History   []market.ClosedTrade
}

// Rank is one leaderboard row. Badge is set for the top three and is purely
// cosmetic.
type Rank struct {
	Name   string
	Equity float64
	Badge  string
}

type Engine struct {
	mu     sync.Mutex
	store  ledger.Store
	oracle *pricing.Oracle
	opts   Options
	state  market.State
	now    func() time.Time
}

// New loads the current snapshot from store and returns an engine over it.
// The engine is the single writer: the store is not consulted again except
// to persist.
func New(store ledger.Store, oracle *pricing.Oracle, opts Options) (*Engine, error) {
	st, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return &Engine{
		store:  store,
		oracle: oracle,
		opts:   opts.withDefaults(),
		state:  st,
		now:    time.Now,
	}, nil
}

// SubmitOffer records a new unmatched offer. Holdings are deliberately not
// checked: offering to sell shares you do not own is how short positions
// arise in this market.
func (e *Engine) SubmitOffer(submitter, ticker string, direction market.Direction, price float64, quantity int64) (market.Offer, error) {
	submitter = strings.TrimSpace(submitter)
	ticker = market.NormalizeTicker(ticker)

	switch {
	case submitter == "":
		return market.Offer{}, fmt.Errorf("submit offer: submitter name is required")
	case ticker == "":
		return market.Offer{}, fmt.Errorf("submit offer: ticker is required")
	case !direction.Valid():
		return market.Offer{}, fmt.Errorf("submit offer: direction must be %s or %s", market.Buy, market.Sell)
	case price <= 0:
		return market.Offer{}, fmt.Errorf("submit offer: price must be positive")
	case quantity <= 0:
		return market.Offer{}, fmt.Errorf("submit offer: quantity must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.Clone()
	ensureAccount(&next, submitter, e.opts.StartingCash)

	offer := &market.Offer{
		ID:        id.New(),
		Submitter: submitter,
		Ticker:    ticker,
		Direction: direction,
		Price:     price,
		Quantity:  quantity,
	}
	next.Offers = append(next.Offers, offer)

	if err := e.commit(next); err != nil {
		return market.Offer{}, fmt.Errorf("submit offer: %w", err)
	}
	return *offer, nil
}

// OpenOffers returns the offers viewer may accept: unmatched and submitted
// by someone else, in submission order. The slice is recomputed from current
// state on every call.
func (e *Engine) OpenOffers(viewer string) []market.Offer {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []market.Offer
	for _, o := range e.state.Offers {
		if o.Matched || o.Submitter == viewer {
			continue
		}
		out = append(out, *o)
	}
	return out
}

// AcceptOffer executes a match: accepter takes the opposite side of the
// offer, cash moves from buyer to seller, and both positions are updated.
// The action applies fully or not at all.
func (e *Engine) AcceptOffer(offerID, accepter string) (Match, error) {
	accepter = strings.TrimSpace(accepter)
	if accepter == "" {
		return Match{}, fmt.Errorf("accept offer: accepter name is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.Clone()

	offer := next.Offer(offerID)
	if offer == nil {
		return Match{}, fmt.Errorf("accept offer %s: %w", offerID, market.ErrOfferNotFound)
	}
	if offer.Matched {
		return Match{}, fmt.Errorf("accept offer %s: %w", offerID, market.ErrAlreadyMatched)
	}
	if offer.Submitter == accepter {
		return Match{}, fmt.Errorf("accept offer %s: %w", offerID, market.ErrSelfMatch)
	}

	ensureAccount(&next, accepter, e.opts.StartingCash)

	// The accepter takes the counter-direction: accepting a Sell makes
	// the accepter the buyer, accepting a Buy makes them the seller.
	var buyerName, sellerName string
	if offer.Direction.Opposite() == market.Buy {
		buyerName, sellerName = accepter, offer.Submitter
	} else {
		buyerName, sellerName = offer.Submitter, accepter
	}

	buyer := next.Account(buyerName)
	seller := next.Account(sellerName)

	total := offer.Price * float64(offer.Quantity)
	if buyer.Cash < total {
		return Match{}, fmt.Errorf("accept offer %s: buyer %s needs %.2f: %w",
			offerID, buyerName, total, market.ErrInsufficientFunds)
	}

	buyer.Cash -= total
	seller.Cash += total
	applyBuy(buyer, offer.Ticker, offer.Quantity, offer.Price)
	applySell(seller, offer.Ticker, offer.Quantity, offer.Price)
	offer.Matched = true

	if err := e.commit(next); err != nil {
		return Match{}, fmt.Errorf("accept offer %s: %w", offerID, err)
	}
	return Match{Offer: *offer, Buyer: buyerName, Seller: sellerName, Total: total}, nil
}

// ClosePosition flattens the account's entire position in ticker at one
// fresh oracle draw and realizes the PnL. Partial closes are not supported.
func (e *Engine) ClosePosition(account, ticker string) (market.ClosedTrade, error) {
	ticker = market.NormalizeTicker(ticker)

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.Clone()

	acct := next.Account(account)
	if acct == nil {
		return market.ClosedTrade{}, fmt.Errorf("close %s for %s: %w", ticker, account, market.ErrNoOpenPosition)
	}
	pos := acct.Position(ticker)
	if pos == nil || pos.Qty == 0 {
		return market.ClosedTrade{}, fmt.Errorf("close %s for %s: %w", ticker, account, market.ErrNoOpenPosition)
	}

	mark := e.oracle.Quote(pos.EntryPrice)
	pnl := float64(pos.Qty) * (mark - pos.EntryPrice)

	// Settle the full notional, not just the gain: a long was debited its
	// cost at entry, a short (negative qty) pays to buy back here.
	acct.Cash += float64(pos.Qty) * mark

	side := market.Long
	if pos.Qty < 0 {
		side = market.Short
	}

	ct := market.ClosedTrade{
		ID:         id.New(),
		Account:    account,
		Ticker:     ticker,
		Qty:        pos.Qty,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  mark,
		PnL:        pnl,
		Direction:  side,
		Timestamp:  e.now().Format(market.TimestampFormat),
	}
	next.ClosedTrades = append(next.ClosedTrades, ct)

	// The record stays with qty 0; its entry price is stale from here on
	// and no consumer reads it while flat.
	pos.Qty = 0

	if err := e.commit(next); err != nil {
		return market.ClosedTrade{}, fmt.Errorf("close %s for %s: %w", ticker, account, err)
	}
	return ct, nil
}

// Portfolio values one account with fresh independent draws per position.
// An unknown name is created with starting cash first; first appearance is
// how accounts come to exist.
func (e *Engine) Portfolio(name string) (Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Portfolio{}, fmt.Errorf("portfolio: account name is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Account(name) == nil {
		next := e.state.Clone()
		ensureAccount(&next, name, e.opts.StartingCash)
		if err := e.commit(next); err != nil {
			return Portfolio{}, fmt.Errorf("portfolio: %w", err)
		}
	}

	acct := e.state.Account(name)
	p := Portfolio{Name: name, Cash: acct.Cash, NetWorth: acct.Cash}

	for _, ticker := range sortedTickers(acct.Positions) {
		pos := acct.Positions[ticker]
		if pos.Qty == 0 {
			continue
		}
		mark := e.oracle.Quote(pos.EntryPrice)
		p.Positions = append(p.Positions, PositionView{
			Ticker:     ticker,
			Qty:        pos.Qty,
			EntryPrice: pos.EntryPrice,
			Mark:       mark,
			Unrealized: float64(pos.Qty) * (mark - pos.EntryPrice),
		})
		p.NetWorth += float64(pos.Qty) * mark
	}

	p.History = e.closedTradesLocked(name)
	return p, nil
}

// ClosedTrades returns the account's trade history in close order.
func (e *Engine) ClosedTrades(account string) []market.ClosedTrade {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closedTradesLocked(account)
}

func (e *Engine) closedTradesLocked(account string) []market.ClosedTrade {
	var out []market.ClosedTrade
	for _, ct := range e.state.ClosedTrades {
		if ct.Account == account {
			out = append(out, ct)
		}
	}
	return out
}

// Leaderboard ranks every account by equity: cash plus open positions valued
// against one seeded price table, so every holder of a ticker is marked at
// the same price within this round. Sorting is stable; equal equities keep
// account insertion order.
func (e *Engine) Leaderboard() []Rank {
	e.mu.Lock()
	defer e.mu.Unlock()

	// One entry price per ticker feeds the table. When several accounts
	// hold the same ticker at different entries the last one in account
	// order wins.
	entries := map[string]float64{}
	for _, a := range e.state.Accounts {
		for _, ticker := range sortedTickers(a.Positions) {
			if pos := a.Positions[ticker]; pos.Qty != 0 {
				entries[ticker] = pos.EntryPrice
			}
		}
	}
	table := pricing.NewTable(e.opts.LeaderboardSeed, e.opts.JitterLow, e.opts.JitterHigh, e.opts.FallbackPrice, entries)

	ranks := make([]Rank, 0, len(e.state.Accounts))
	for _, a := range e.state.Accounts {
		equity := a.Cash
		for ticker, pos := range a.Positions {
			if pos.Qty == 0 {
				continue
			}
			equity += float64(pos.Qty) * table.Price(ticker)
		}
		ranks = append(ranks, Rank{Name: a.Name, Equity: equity})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Equity > ranks[j].Equity
	})

	badges := []string{"\U0001F947", "\U0001F948", "\U0001F949"}
	for i := range ranks {
		if i < len(badges) {
			ranks[i].Badge = badges[i]
		}
	}
	return ranks
}

// ResetAll wipes accounts, offers and closed trades. Only the admin account
// name ("teacher" by default, case-insensitive) may do this.
func (e *Engine) ResetAll(actor string) error {
	if !strings.EqualFold(strings.TrimSpace(actor), e.opts.Admin) {
		return fmt.Errorf("reset by %s: %w", actor, market.ErrNotAuthorized)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.commit(market.NewState()); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// commit persists next and, only on success, makes it the live state.
func (e *Engine) commit(next market.State) error {
	if err := e.store.Save(next); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	e.state = next
	return nil
}

func ensureAccount(st *market.State, name string, startingCash float64) *market.Account {
	if a := st.Account(name); a != nil {
		return a
	}
	a := &market.Account{
		Name:      name,
		Cash:      startingCash,
		Positions: make(map[string]*market.Position),
	}
	st.Accounts = append(st.Accounts, a)
	return a
}

// applyBuy adds quantity to the buyer's position. Adding blends the entry
// price as a volume-weighted average over the combined signed quantity,
// even across a short: covering moves the blended reference price, which is
// economically odd but kept for compatibility with existing data files.
// A fill that nets the position to exactly zero leaves qty 0 with a stale
// entry price rather than dividing by zero.
func applyBuy(acct *market.Account, ticker string, quantity int64, price float64) {
	pos, ok := acct.Positions[ticker]
	if !ok {
		acct.Positions[ticker] = &market.Position{Qty: quantity, EntryPrice: price}
		return
	}
	newQty := pos.Qty + quantity
	if newQty == 0 {
		pos.Qty = 0
		return
	}
	pos.EntryPrice = (pos.EntryPrice*float64(pos.Qty) + price*float64(quantity)) / float64(newQty)
	pos.Qty = newQty
}

// applySell subtracts quantity from the seller's position without repricing:
// reducing or flipping never changes the entry price, only same-direction
// adds do. A seller with no position goes short at the offer price.
func applySell(acct *market.Account, ticker string, quantity int64, price float64) {
	pos, ok := acct.Positions[ticker]
	if !ok {
		acct.Positions[ticker] = &market.Position{Qty: -quantity, EntryPrice: price}
		return
	}
	pos.Qty -= quantity
}

func sortedTickers(positions map[string]*market.Position) []string {
	tickers := make([]string, 0, len(positions))
	for t := range positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}
