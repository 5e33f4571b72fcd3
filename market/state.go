package market

// State is the whole persisted snapshot: every account, every offer ever
// submitted, and the append-only closed-trade history. Stores load and save
// it wholesale; there are no partial updates.
//
// Accounts is a slice, not a map, so insertion order survives round-trips.
// Leaderboard ties break on that order.
type State struct {
	Accounts     []*Account
	Offers       []*Offer
	ClosedTrades []ClosedTrade
}

func NewState() State {
	return State{}
}

// Account returns the account with the given name, or nil.
func (s *State) Account(name string) *Account {
	for _, a := range s.Accounts {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Offer returns the offer with the given id, or nil.
func (s *State) Offer(id string) *Offer {
	for _, o := range s.Offers {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// Clone deep-copies the snapshot. The engine mutates a clone and swaps it in
// only after the store accepts it, so a failed save leaves the live state
// untouched.
func (s State) Clone() State {
	out := State{}

	if s.Accounts != nil {
		out.Accounts = make([]*Account, 0, len(s.Accounts))
		for _, a := range s.Accounts {
			c := &Account{
				Name:      a.Name,
				Cash:      a.Cash,
				PnL:       a.PnL,
				Positions: make(map[string]*Position, len(a.Positions)),
			}
			for t, p := range a.Positions {
				cp := *p
				c.Positions[t] = &cp
			}
			out.Accounts = append(out.Accounts, c)
		}
	}

	if s.Offers != nil {
		out.Offers = make([]*Offer, 0, len(s.Offers))
		for _, o := range s.Offers {
			co := *o
			out.Offers = append(out.Offers, &co)
		}
	}

	if s.ClosedTrades != nil {
		out.ClosedTrades = append([]ClosedTrade(nil), s.ClosedTrades...)
	}

	return out
}
