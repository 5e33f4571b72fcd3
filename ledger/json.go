package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/moneyhub/classmarket/market"
)

const (
	usersFile        = "users.json"
	offersFile       = "offers.json"
	closedTradesFile = "closed_trades.json"
)

// JSONStore keeps the snapshot in three JSON files under a data directory:
// users.json, offers.json and closed_trades.json. Each save rewrites a file
// completely, via a temp file renamed into place, so a crash mid-write never
// leaves a half-written snapshot behind.
type JSONStore struct {
	dir string
}

func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &JSONStore{dir: dir}, nil
}

// accountRecord is the on-disk shape of one account. The file holds a
// mapping from name to record, so Name lives on the map key.
type accountRecord struct {
	Cash      float64                     `json:"cash"`
	Positions map[string]*market.Position `json:"positions"`
	PnL       float64                     `json:"pnl"`
}

func (s *JSONStore) Load() (market.State, error) {
	st := market.NewState()

	var users map[string]accountRecord
	if err := s.readFile(usersFile, &users); err != nil {
		return market.State{}, err
	}
	// JSON objects carry no order; sort by name so reloads are stable.
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rec := users[name]
		positions := rec.Positions
		if positions == nil {
			positions = make(map[string]*market.Position)
		}
		st.Accounts = append(st.Accounts, &market.Account{
			Name:      name,
			Cash:      rec.Cash,
			Positions: positions,
			PnL:       rec.PnL,
		})
	}

	if err := s.readFile(offersFile, &st.Offers); err != nil {
		return market.State{}, err
	}
	if err := s.readFile(closedTradesFile, &st.ClosedTrades); err != nil {
		return market.State{}, err
	}
	return st, nil
}

func (s *JSONStore) Save(st market.State) error {
	users := make(map[string]accountRecord, len(st.Accounts))
	for _, a := range st.Accounts {
		users[a.Name] = accountRecord{
			Cash:      a.Cash,
			Positions: a.Positions,
			PnL:       a.PnL,
		}
	}

	if err := s.writeFile(usersFile, users); err != nil {
		return err
	}
	offers := st.Offers
	if offers == nil {
		offers = []*market.Offer{}
	}
	if err := s.writeFile(offersFile, offers); err != nil {
		return err
	}
	trades := st.ClosedTrades
	if trades == nil {
		trades = []market.ClosedTrade{}
	}
	return s.writeFile(closedTradesFile, trades)
}

// readFile unmarshals one snapshot file into v. A missing file is an empty
// collection, not an error; first run starts from nothing.
func (s *JSONStore) readFile(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// writeFile marshals v to a temp file in the same directory and renames it
// over the target. Rename is atomic on the same filesystem.
func (s *JSONStore) writeFile(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
