package blackjack

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"bx-casino/internal/cards"
	"bx-casino/internal/ledger"
)

var (
	ErrWrongPhase   = errors.New("action not allowed in current phase")
	ErrNoBet        = errors.New("no bet placed")
	ErrCannotDouble = errors.New("double not available")
)

type Phase string

const (
	Betting    Phase = "betting"
	PlayerTurn Phase = "player_turn"
	DealerTurn Phase = "dealer_turn"
	GameOver   Phase = "game_over"
)

type Result string

const (
	NoResult  Result = ""
	PlayerWin Result = "player_win"
	DealerWin Result = "dealer_win"
	Push      Result = "push"
)

// Table is one seat of blackjack: the round in progress and the ledger that
// funds it. Methods return the next Table and never modify the receiver.
type Table struct {
	Phase     Phase                       `json:"phase"`
	Result    Result                      `json:"result"`
	Deck      cards.Deck                  `json:"deck"`
	Player    []cards.Card                `json:"player"`
	Dealer    []cards.Card                `json:"dealer"`
	CanDouble bool                        `json:"can_double"`
	Wagered   decimal.Decimal             `json:"wagered"`
	Payout    decimal.Decimal             `json:"payout"`
	Ledger    ledger.Ledger[ledger.Stake] `json:"ledger"`
}

func NewTable(l ledger.Ledger[ledger.Stake]) Table {
	return Table{Phase: Betting, Ledger: l}
}

func (t Table) PlayerHand() Hand { return Evaluate(t.Player) }

func (t Table) DealerHand() Hand { return Evaluate(t.Dealer) }

func (t Table) Stake() decimal.Decimal { return t.Ledger.PendingTotal() }

// DealerUpCards is the dealer hand as the player may see it.
func (t Table) DealerUpCards() []cards.Card {
	out := make([]cards.Card, len(t.Dealer))
	for i, c := range t.Dealer {
		out[i] = c.Masked()
	}
	return out
}

func (t Table) clone() Table {
	next := t
	next.Deck = append(cards.Deck(nil), t.Deck...)
	next.Player = append([]cards.Card(nil), t.Player...)
	next.Dealer = append([]cards.Card(nil), t.Dealer...)
	return next
}

// reset returns a finished table to betting, keeping only the ledger.
func (t Table) reset() Table {
	return Table{Phase: Betting, Ledger: t.Ledger}
}

func (t Table) Bet(amount decimal.Decimal) (Table, error) {
	if t.Phase == GameOver {
		t = t.reset()
	}
	if t.Phase != Betting {
		return t, ErrWrongPhase
	}

	l, err := t.Ledger.Place(ledger.Stake{Amount: amount})
	if err != nil {
		return t, err
	}
	next := t.clone()
	next.Ledger = l
	return next, nil
}

func (t Table) ClearBet() (Table, decimal.Decimal, error) {
	if t.Phase == GameOver {
		t = t.reset()
	}
	if t.Phase != Betting {
		return t, decimal.Zero, ErrWrongPhase
	}

	next := t.clone()
	var refund decimal.Decimal
	next.Ledger, refund = t.Ledger.Clear()
	return next, refund, nil
}

// Deal shuffles a fresh deck for the round and deals two cards each, the
// dealer's second face down. A player blackjack stands immediately.
func (t Table) Deal(src cards.Source) (Table, error) {
	if t.Phase == GameOver {
		t = t.reset()
	}
	if t.Phase != Betting {
		return t, ErrWrongPhase
	}

	stake := t.Stake()
	if stake.IsZero() {
		return t, ErrNoBet
	}
	if stake.LessThan(t.Ledger.Limits().Min) {
		return t, ledger.ErrMinBet
	}

	deck, err := cards.NewShuffledDeck(src)
	if err != nil {
		return t, err
	}
	player, deck, err := cards.Deal(deck, 2, true)
	if err != nil {
		return t, err
	}
	dealer, deck, err := cards.Deal(deck, 2, true)
	if err != nil {
		return t, err
	}
	dealer[1] = dealer[1].Flip(false)

	next := t.clone()
	next.Deck = deck
	next.Player = player
	next.Dealer = dealer
	next.Phase = PlayerTurn
	next.Result = NoResult
	next.Wagered = decimal.Zero
	next.Payout = decimal.Zero
	next.CanDouble = next.Ledger.Balance().GreaterThanOrEqual(stake)

	if IsBlackjack(player) {
		return next.Stand()
	}
	return next, nil
}

func (t Table) Hit() (Table, error) {
	if t.Phase != PlayerTurn {
		return t, ErrWrongPhase
	}

	next, err := t.drawPlayer()
	if err != nil {
		return next, err
	}
	next.CanDouble = false

	if IsBusted(next.Player) {
		return next.settle(DealerWin)
	}
	return next, nil
}

// Double matches the stake, draws exactly one card and ends the player turn.
func (t Table) Double() (Table, error) {
	if t.Phase != PlayerTurn {
		return t, ErrWrongPhase
	}
	if !t.CanDouble {
		return t, ErrCannotDouble
	}

	l, err := t.Ledger.Place(ledger.Stake{Amount: t.Stake()})
	if err != nil {
		return t, err
	}
	next := t.clone()
	next.Ledger = l
	next.CanDouble = false

	next, err = next.drawPlayer()
	if err != nil {
		return next, err
	}
	if IsBusted(next.Player) {
		return next.settle(DealerWin)
	}
	return next.Stand()
}

// Stand reveals the hole card and hands the turn to the dealer.
func (t Table) Stand() (Table, error) {
	if t.Phase != PlayerTurn {
		return t, ErrWrongPhase
	}

	next := t.clone()
	for i := range next.Dealer {
		next.Dealer[i] = next.Dealer[i].Flip(true)
	}
	next.Phase = DealerTurn
	next.CanDouble = false
	return next, nil
}

// DealerStep advances the dealer by one transition: it either draws a card
// or, once the dealer stands or busts, settles the round. Callers pace the
// steps; PlayDealer runs them back to back with the same result.
func (t Table) DealerStep() (Table, error) {
	if t.Phase != DealerTurn {
		return t, ErrWrongPhase
	}

	if !DealerShouldHit(t.DealerHand()) {
		return t.settle(t.compare())
	}

	drawn, deck, err := cards.Deal(t.Deck, 1, true)
	if err != nil {
		return t.void(err)
	}
	next := t.clone()
	next.Deck = deck
	next.Dealer = append(next.Dealer, drawn...)

	if IsBusted(next.Dealer) {
		return next.settle(PlayerWin)
	}
	return next, nil
}

func (t Table) PlayDealer() (Table, error) {
	var err error
	for t.Phase == DealerTurn {
		if t, err = t.DealerStep(); err != nil {
			return t, err
		}
	}
	return t, nil
}

func (t Table) drawPlayer() (Table, error) {
	drawn, deck, err := cards.Deal(t.Deck, 1, true)
	if err != nil {
		return t.void(err)
	}
	next := t.clone()
	next.Deck = deck
	next.Player = append(next.Player, drawn...)
	return next, nil
}

func (t Table) compare() Result {
	player, dealer := Value(t.Player), Value(t.Dealer)
	switch {
	case dealer > target || player > dealer:
		return PlayerWin
	case dealer > player:
		return DealerWin
	default:
		return Push
	}
}

// Credit is what settlement pays back on stake: twice the stake on a win, the
// stake itself on a push.
func Credit(r Result, stake decimal.Decimal) decimal.Decimal {
	switch r {
	case PlayerWin:
		return stake.Mul(decimal.NewFromInt(2))
	case Push:
		return stake
	default:
		return decimal.Zero
	}
}

func (t Table) settle(r Result) (Table, error) {
	wagered := t.Stake()
	l, credit, err := t.Ledger.Settle(func([]ledger.Stake) decimal.Decimal {
		return Credit(r, wagered)
	})
	if err != nil {
		return t, err
	}

	next := t.clone()
	next.Ledger = l
	next.Result = r
	next.Wagered = wagered
	next.Payout = credit
	next.Phase = GameOver
	next.CanDouble = false
	return next, nil
}

// void abandons the round after deck exhaustion: stakes are refunded and the
// table is back to betting. The returned table must replace the old one.
func (t Table) void(cause error) (Table, error) {
	next := t.reset()
	next.Ledger, _ = t.Ledger.Clear()
	return next, fmt.Errorf("round voided: %w", cause)
}
