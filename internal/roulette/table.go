package roulette

import (
	"errors"

	"github.com/shopspring/decimal"

	"bx-casino/internal/fairness"
	"bx-casino/internal/ledger"
)

var ErrNoBets = errors.New("no bets on the table")

// recentLimit is how many past numbers the table keeps for display.
const recentLimit = 10

// WheelDraw takes one pocket per digest with rejection sampling, so every
// pocket is exactly equally likely.
var WheelDraw = fairness.Draw{Count: 1, Range: Pockets, Unbiased: true}

// Spin resolves the next wheel number from the session's seeds.
func Spin(s fairness.Session) (int, fairness.Outcome, fairness.Session, error) {
	out, next, err := s.Next(WheelDraw)
	if err != nil {
		return 0, fairness.Outcome{}, s, err
	}
	return out.Values[0], out, next, nil
}

// Table is one player's roulette layout: pending chips, the seed state that
// decides the next spin, and the last numbers drawn.
type Table struct {
	Ledger   ledger.Ledger[Bet] `json:"ledger"`
	Fairness fairness.Session   `json:"fairness"`
	Recent   []int              `json:"recent"`
}

type SpinResult struct {
	Number   int              `json:"number"`
	Pocket   PocketInfo       `json:"pocket"`
	Bets     []Bet            `json:"bets"`
	Wagered  decimal.Decimal  `json:"wagered"`
	Winnings decimal.Decimal  `json:"winnings"`
	Payout   decimal.Decimal  `json:"payout"`
	Outcome  fairness.Outcome `json:"outcome"`
}

func NewTable(l ledger.Ledger[Bet], s fairness.Session) Table {
	return Table{Ledger: l, Fairness: s}
}

// PlaceBet validates b before it reaches the ledger, so a malformed bet never
// touches the balance.
func (t Table) PlaceBet(b Bet) (Table, error) {
	if err := b.Validate(); err != nil {
		return t, err
	}
	l, err := t.Ledger.Place(b)
	if err != nil {
		return t, err
	}
	next := t
	next.Ledger = l
	return next, nil
}

func (t Table) ClearBets() (Table, decimal.Decimal) {
	next := t
	var refund decimal.Decimal
	next.Ledger, refund = t.Ledger.Clear()
	return next, refund
}

func (t Table) Spin() (Table, SpinResult, error) {
	bets := t.Ledger.Pending()
	if len(bets) == 0 {
		return t, SpinResult{}, ErrNoBets
	}

	number, out, seeds, err := Spin(t.Fairness)
	if err != nil {
		return t, SpinResult{}, err
	}

	l, credit, err := t.Ledger.Settle(func(ws []Bet) decimal.Decimal {
		return Settlement(ws, number)
	})
	if err != nil {
		return t, SpinResult{}, err
	}

	recent := append([]int{number}, t.Recent...)
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	next := Table{Ledger: l, Fairness: seeds, Recent: recent}
	return next, SpinResult{
		Number:   number,
		Pocket:   Pocket(number),
		Bets:     bets,
		Wagered:  t.Ledger.PendingTotal(),
		Winnings: Resolve(bets, number),
		Payout:   credit,
		Outcome:  out,
	}, nil
}
