package pricing

import (
	"math"
	"math/rand/v2"
	"sort"
	"time"
)

const (
	// DefaultLow and DefaultHigh bound the uniform jitter applied to an
	// entry price when simulating a current market price.
	DefaultLow  = 0.95
	DefaultHigh = 1.05

	// LeaderboardSeed seeds the one shared price table drawn per
	// leaderboard round.
	LeaderboardSeed = 42

	// FallbackPrice values a ticker that has no drawn price this round.
	FallbackPrice = 100
)

// Oracle simulates live market prices by perturbing a position's entry price
// with a uniform factor in [low, high]. There is no price history: every
// Quote is an independent draw, so two renders of the same position will
// usually disagree. That jitter is the point of the simulation.
type Oracle struct {
	rng  *rand.Rand
	low  float64
	high float64
}

// New returns an oracle over the given jitter band, seeded from the clock.
func New(low, high float64) *Oracle {
	now := uint64(time.Now().UnixNano())
	return &Oracle{
		rng:  rand.New(rand.NewPCG(now, now>>32)),
		low:  low,
		high: high,
	}
}

// NewSeeded returns a deterministic oracle for tests and seeded rounds.
func NewSeeded(low, high float64, seed uint64) *Oracle {
	return &Oracle{
		rng:  rand.New(rand.NewPCG(seed, 0)),
		low:  low,
		high: high,
	}
}

// Quote draws a fresh simulated market price from an entry price,
// rounded to cents.
func (o *Oracle) Quote(entry float64) float64 {
	u := o.low + o.rng.Float64()*(o.high-o.low)
	return round2(entry * u)
}

// Table is one round's consistent price per ticker. Every consumer of a
// round reads the same table, so two accounts holding the same ticker are
// valued at the same price within that round.
type Table struct {
	prices   map[string]float64
	fallback float64
}

// NewTable draws exactly one price per ticker from a source seeded with seed.
// entries maps ticker to the entry price its draw perturbs; tickers are
// drawn in sorted order so a given seed and entry set always yields the
// same table.
func NewTable(seed uint64, low, high, fallback float64, entries map[string]float64) Table {
	tickers := make([]string, 0, len(entries))
	for t := range entries {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	o := NewSeeded(low, high, seed)
	prices := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		prices[t] = o.Quote(entries[t])
	}
	return Table{prices: prices, fallback: fallback}
}

// Price returns the round's price for ticker, or the fallback constant if
// no draw was made for it.
func (t Table) Price(ticker string) float64 {
	if p, ok := t.prices[ticker]; ok {
		return p
	}
	return t.fallback
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
