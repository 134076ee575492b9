package slots

import (
	"github.com/shopspring/decimal"

	"bx-casino/internal/fairness"
	"bx-casino/internal/ledger"
)

// GridDraw is the outcome a spin consumes. It keeps the plain modulo
// reduction that published slot verifiers use.
var GridDraw = fairness.Draw{Count: GridCells, Range: len(Palette)}

// Machine holds one player's slot state between spins. Auto-spin is just the
// caller invoking Spin again after a result.
type Machine struct {
	Ledger      ledger.Ledger[ledger.Stake] `json:"ledger"`
	Fairness    fairness.Session            `json:"fairness"`
	Bet         decimal.Decimal             `json:"bet"`
	ActiveLines int                         `json:"active_lines"`
}

type SpinResult struct {
	Grid    Grid             `json:"grid"`
	Win     Win              `json:"win"`
	Wagered decimal.Decimal  `json:"wagered"`
	Outcome fairness.Outcome `json:"outcome"`
}

func NewMachine(l ledger.Ledger[ledger.Stake], s fairness.Session, bet decimal.Decimal) Machine {
	return Machine{Ledger: l, Fairness: s, Bet: bet, ActiveLines: len(Paylines)}
}

func (m Machine) SetBet(bet decimal.Decimal) Machine {
	m.Bet = bet
	return m
}

// SetActiveLines clamps n to the available paylines.
func (m Machine) SetActiveLines(n int) Machine {
	switch {
	case n < 1:
		n = 1
	case n > len(Paylines):
		n = len(Paylines)
	}
	m.ActiveLines = n
	return m
}

func (m Machine) WithClientSeed(seed string) (Machine, error) {
	s, err := m.Fairness.WithClientSeed(seed)
	if err != nil {
		return m, err
	}
	m.Fairness = s
	return m, nil
}

// Spin debits the bet, derives the grid from the next outcome and credits the
// payline wins. On any error the machine is returned unchanged.
func (m Machine) Spin() (Machine, SpinResult, error) {
	l, err := m.Ledger.Place(ledger.Stake{Amount: m.Bet})
	if err != nil {
		return m, SpinResult{}, err
	}

	out, seeds, err := m.Fairness.Next(GridDraw)
	if err != nil {
		return m, SpinResult{}, err
	}
	grid, err := GridFromOutcome(out.Values)
	if err != nil {
		return m, SpinResult{}, err
	}

	win := Resolve(grid, Paylines, m.ActiveLines, m.Bet)
	l, _, err = l.Settle(func([]ledger.Stake) decimal.Decimal { return win.Total })
	if err != nil {
		return m, SpinResult{}, err
	}

	next := m
	next.Ledger = l
	next.Fairness = seeds
	return next, SpinResult{
		Grid:    grid,
		Win:     win,
		Wagered: m.Bet,
		Outcome: out,
	}, nil
}

// VerifyGrid recomputes the grid for revealed seeds.
func VerifyGrid(seeds fairness.Seeds, nonce uint64, g Grid) bool {
	out, err := fairness.Generate(seeds, nonce, GridDraw)
	if err != nil {
		return false
	}
	want, err := GridFromOutcome(out.Values)
	if err != nil {
		return false
	}
	return want == g
}
