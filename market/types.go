package market

import "strings"

// Direction is the side of an open offer.
type Direction string

const (
	Buy  Direction = "Buy"
	Sell Direction = "Sell"
)

// Opposite returns the counter-direction an accepter takes.
func (d Direction) Opposite() Direction {
	if d == Buy {
		return Sell
	}
	return Buy
}

func (d Direction) Valid() bool {
	return d == Buy || d == Sell
}

// Side labels a closed trade as long or short.
type Side string

const (
	Long  Side = "Long"
	Short Side = "Short"
)

// TimestampFormat is the wall-clock format recorded on closed trades.
const TimestampFormat = "2006-01-02 15:04:05"

// NormalizeTicker uppercases and trims a free-text ticker symbol.
// Tickers are not required to be real exchange symbols.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// Position is an account's net signed holding in one ticker.
// Qty > 0 is long, Qty < 0 is short, Qty == 0 is flat. A flat position keeps
// its record; EntryPrice is stale once Qty hits 0 and must not be read again
// until a new fill re-opens the position.
type Position struct {
	Qty        int64   `json:"qty"`
	EntryPrice float64 `json:"entry_price"`
}

// Account is one participant. Name is the unique, case-sensitive key;
// it is carried on the struct for ordering but serialized as the map key.
//
// PnL is a legacy field carried in the data files. It is persisted on
// every save so old files stay readable, but the engine never reads it.
type Account struct {
	Name      string
	Cash      float64
	Positions map[string]*Position
	PnL       float64
}

// Position returns the account's position in ticker, or nil.
func (a *Account) Position(ticker string) *Position {
	return a.Positions[ticker]
}

// Offer is an open proposal to buy or sell quantity of ticker at price.
// Matched flips to true exactly once; a matched offer is immutable and is
// excluded from all future listings.
type Offer struct {
	ID        string    `json:"id"`
	Submitter string    `json:"user"`
	Ticker    string    `json:"ticker"`
	Direction Direction `json:"direction"`
	Price     float64   `json:"price"`
	Quantity  int64     `json:"quantity"`
	Matched   bool      `json:"matched"`
}

// ClosedTrade is the immutable record appended when a position is flattened.
type ClosedTrade struct {
	ID         string  `json:"id"`
	Account    string  `json:"user"`
	Ticker     string  `json:"ticker"`
	Qty        int64   `json:"qty"`
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`
	PnL        float64 `json:"pnl"`
	Direction  Side    `json:"direction"`
	Timestamp  string  `json:"timestamp"`
}
