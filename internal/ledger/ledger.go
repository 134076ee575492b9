package ledger

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidBet          = errors.New("bet amount must be positive")
	ErrMinBet              = errors.New("bet below table minimum")
	ErrMaxBet              = errors.New("bet exceeds table maximum")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNegativeBalance     = errors.New("balance cannot be negative")
	ErrNegativePayout      = errors.New("payout cannot be negative")
)

// Wager is anything that locks an amount of the balance while it is pending.
type Wager interface {
	Stake() decimal.Decimal
}

// Stake is the plain wager used by games whose bets carry no extra data.
type Stake struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s Stake) Stake() decimal.Decimal { return s.Amount }

// Limits bound a single placement. A zero Max means no upper bound.
type Limits struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Ledger tracks a balance and the wagers debited from it that have not been
// settled yet. Every operation returns a new Ledger and leaves the receiver
// untouched, so callers decide when a change is committed.
type Ledger[W Wager] struct {
	balance decimal.Decimal
	pending []W
	limits  Limits
}

func New[W Wager](balance decimal.Decimal, limits Limits) (Ledger[W], error) {
	if balance.IsNegative() {
		return Ledger[W]{}, ErrNegativeBalance
	}
	return Ledger[W]{balance: balance, limits: limits}, nil
}

func (l Ledger[W]) Balance() decimal.Decimal { return l.balance }

func (l Ledger[W]) Limits() Limits { return l.limits }

// Pending returns a copy of the unsettled wagers in placement order.
func (l Ledger[W]) Pending() []W {
	out := make([]W, len(l.pending))
	copy(out, l.pending)
	return out
}

func (l Ledger[W]) PendingTotal() decimal.Decimal {
	total := decimal.Zero
	for _, w := range l.pending {
		total = total.Add(w.Stake())
	}
	return total
}

// Place debits the wager's stake. A rejected wager leaves the ledger as it was.
func (l Ledger[W]) Place(w W) (Ledger[W], error) {
	amount := w.Stake()

	if !amount.IsPositive() {
		return l, ErrInvalidBet
	}
	if amount.LessThan(l.limits.Min) {
		return l, ErrMinBet
	}
	if l.limits.Max.IsPositive() && l.PendingTotal().Add(amount).GreaterThan(l.limits.Max) {
		return l, ErrMaxBet
	}
	if amount.GreaterThan(l.balance) {
		return l, ErrInsufficientBalance
	}

	next := l.clone()
	next.balance = next.balance.Sub(amount)
	next.pending = append(next.pending, w)
	return next, nil
}

// Clear refunds every pending wager and returns the refunded amount.
func (l Ledger[W]) Clear() (Ledger[W], decimal.Decimal) {
	refund := l.PendingTotal()

	next := l.clone()
	next.balance = next.balance.Add(refund)
	next.pending = nil
	return next, refund
}

// Settle credits whatever payout computes for the pending wagers and drops
// them. The credited amount is returned for observability.
func (l Ledger[W]) Settle(payout func([]W) decimal.Decimal) (Ledger[W], decimal.Decimal, error) {
	credit := payout(l.Pending())
	if credit.IsNegative() {
		return l, decimal.Zero, ErrNegativePayout
	}

	next := l.clone()
	next.balance = next.balance.Add(credit)
	next.pending = nil
	return next, credit, nil
}

func (l Ledger[W]) clone() Ledger[W] {
	next := l
	next.pending = l.Pending()
	return next
}

// Reason maps a placement error to the code surfaced to API clients.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrMaxBet):
		return "exceeds_max"
	case errors.Is(err, ErrMinBet):
		return "below_min"
	case errors.Is(err, ErrInvalidBet):
		return "invalid_amount"
	default:
		return ""
	}
}

type snapshot[W Wager] struct {
	Balance decimal.Decimal `json:"balance"`
	Pending []W             `json:"pending"`
	Limits  Limits          `json:"limits"`
}

func (l Ledger[W]) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot[W]{
		Balance: l.balance,
		Pending: l.pending,
		Limits:  l.limits,
	})
}

func (l *Ledger[W]) UnmarshalJSON(data []byte) error {
	var s snapshot[W]
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	l.balance = s.Balance
	l.pending = s.Pending
	l.limits = s.Limits
	return nil
}
