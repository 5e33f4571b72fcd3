package ledger

import "github.com/moneyhub/classmarket/market"

// Memory is an in-process Store for tests. SaveErr, when set, makes every
// Save fail so callers can exercise the no-partial-write path.
type Memory struct {
	state   market.State
	Saves   int
	SaveErr error
}

func NewMemory() *Memory {
	return &Memory{state: market.NewState()}
}

func (m *Memory) Load() (market.State, error) {
	return m.state.Clone(), nil
}

func (m *Memory) Save(st market.State) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.state = st.Clone()
	m.Saves++
	return nil
}
