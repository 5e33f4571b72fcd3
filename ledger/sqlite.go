package ledger

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/moneyhub/classmarket/market"
)

// SQLite stores the snapshot in a single database file. Save replaces every
// table wholesale inside one transaction, which keeps the same
// all-or-nothing contract as the JSON files. The seq columns preserve
// insertion order across round-trips.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Save(st market.State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"accounts", "positions", "offers", "closed_trades"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	for i, a := range st.Accounts {
		if _, err := tx.Exec(`
			INSERT INTO accounts (name, cash, pnl, seq)
			VALUES (?, ?, ?, ?)`,
			a.Name, a.Cash, a.PnL, i,
		); err != nil {
			return err
		}
		for ticker, p := range a.Positions {
			if _, err := tx.Exec(`
				INSERT INTO positions (account, ticker, qty, entry_price)
				VALUES (?, ?, ?, ?)`,
				a.Name, ticker, p.Qty, p.EntryPrice,
			); err != nil {
				return err
			}
		}
	}

	for i, o := range st.Offers {
		if _, err := tx.Exec(`
			INSERT INTO offers (id, submitter, ticker, direction, price, quantity, matched, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.Submitter, o.Ticker, string(o.Direction), o.Price, o.Quantity, o.Matched, i,
		); err != nil {
			return err
		}
	}

	for i, ct := range st.ClosedTrades {
		if _, err := tx.Exec(`
			INSERT INTO closed_trades (id, account, ticker, qty, entry_price, exit_price, pnl, direction, ts, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ct.ID, ct.Account, ct.Ticker, ct.Qty, ct.EntryPrice, ct.ExitPrice, ct.PnL, string(ct.Direction), ct.Timestamp, i,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLite) Load() (market.State, error) {
	st := market.NewState()

	rows, err := s.db.Query(`SELECT name, cash, pnl FROM accounts ORDER BY seq ASC`)
	if err != nil {
		return market.State{}, err
	}
	byName := map[string]*market.Account{}
	for rows.Next() {
		a := &market.Account{Positions: make(map[string]*market.Position)}
		if err := rows.Scan(&a.Name, &a.Cash, &a.PnL); err != nil {
			rows.Close()
			return market.State{}, err
		}
		st.Accounts = append(st.Accounts, a)
		byName[a.Name] = a
	}
	if err := closeRows(rows); err != nil {
		return market.State{}, err
	}

	rows, err = s.db.Query(`SELECT account, ticker, qty, entry_price FROM positions`)
	if err != nil {
		return market.State{}, err
	}
	for rows.Next() {
		var account, ticker string
		p := &market.Position{}
		if err := rows.Scan(&account, &ticker, &p.Qty, &p.EntryPrice); err != nil {
			rows.Close()
			return market.State{}, err
		}
		a, ok := byName[account]
		if !ok {
			rows.Close()
			return market.State{}, fmt.Errorf("position for unknown account %q", account)
		}
		a.Positions[ticker] = p
	}
	if err := closeRows(rows); err != nil {
		return market.State{}, err
	}

	rows, err = s.db.Query(`
		SELECT id, submitter, ticker, direction, price, quantity, matched
		FROM offers ORDER BY seq ASC`)
	if err != nil {
		return market.State{}, err
	}
	for rows.Next() {
		o := &market.Offer{}
		var dir string
		if err := rows.Scan(&o.ID, &o.Submitter, &o.Ticker, &dir, &o.Price, &o.Quantity, &o.Matched); err != nil {
			rows.Close()
			return market.State{}, err
		}
		o.Direction = market.Direction(dir)
		st.Offers = append(st.Offers, o)
	}
	if err := closeRows(rows); err != nil {
		return market.State{}, err
	}

	rows, err = s.db.Query(`
		SELECT id, account, ticker, qty, entry_price, exit_price, pnl, direction, ts
		FROM closed_trades ORDER BY seq ASC`)
	if err != nil {
		return market.State{}, err
	}
	for rows.Next() {
		var ct market.ClosedTrade
		var dir string
		if err := rows.Scan(&ct.ID, &ct.Account, &ct.Ticker, &ct.Qty, &ct.EntryPrice, &ct.ExitPrice, &ct.PnL, &dir, &ct.Timestamp); err != nil {
			rows.Close()
			return market.State{}, err
		}
		ct.Direction = market.Side(dir)
		st.ClosedTrades = append(st.ClosedTrades, ct)
	}
	if err := closeRows(rows); err != nil {
		return market.State{}, err
	}

	return st, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}
