package blackjack

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bx-casino/internal/cards"
	"bx-casino/internal/ledger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTable(t *testing.T, balance string) Table {
	t.Helper()
	l, err := ledger.New[ledger.Stake](d(balance), ledger.Limits{Min: d("1"), Max: d("100")})
	require.NoError(t, err)
	return NewTable(l)
}

// rotateSource always swaps with index 0, which turns the ordered deck into
// a left rotation by one: 2♥ 3♥ 4♥ 5♥ 6♥ ... A♥.
type rotateSource struct{}

func (rotateSource) IntN(int) (int, error) { return 0, nil }

// naturalSource leaves the ordered deck alone except for moving K♥ into the
// second slot, so the player is dealt A♥ K♥ and the dealer 3♥ 4♥.
type naturalSource struct{}

func (naturalSource) IntN(n int) (int, error) {
	if n == 13 {
		return 1, nil
	}
	return n - 1, nil
}

type failingSource struct{ err error }

func (s failingSource) IntN(int) (int, error) { return 0, s.err }

// seated puts the table into the player's turn with hand-picked cards.
func seated(t *testing.T, stake string, player, dealer []cards.Card, deck cards.Deck) Table {
	t.Helper()
	tbl, err := newTable(t, "100").Bet(d(stake))
	require.NoError(t, err)
	tbl.Phase = PlayerTurn
	tbl.Player = player
	tbl.Dealer = dealer
	tbl.Deck = deck
	return tbl
}

func hole(r cards.Rank) cards.Card {
	return cards.Card{Suit: cards.Clubs, Rank: r}
}

func TestDealRequiresBet(t *testing.T) {
	tbl := newTable(t, "100")

	_, err := tbl.Deal(rotateSource{})
	assert.ErrorIs(t, err, ErrNoBet)
}

func TestDealSourceFailureKeepsTable(t *testing.T) {
	tbl, err := newTable(t, "100").Bet(d("10"))
	require.NoError(t, err)

	readErr := errors.New("entropy pool closed")
	next, err := tbl.Deal(failingSource{err: readErr})
	assert.ErrorIs(t, err, readErr)
	assert.Equal(t, Betting, next.Phase)
	assert.Empty(t, next.Player)
	assert.True(t, next.Stake().Equal(d("10")))
	assert.True(t, next.Ledger.Balance().Equal(d("90")))
}

func TestBetOnlyWhileBetting(t *testing.T) {
	tbl, err := newTable(t, "100").Bet(d("10"))
	require.NoError(t, err)
	tbl, err = tbl.Deal(rotateSource{})
	require.NoError(t, err)

	_, err = tbl.Bet(d("5"))
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, _, err = tbl.ClearBet()
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestBetRejectionLeavesTable(t *testing.T) {
	tbl := newTable(t, "100")

	next, err := tbl.Bet(d("150"))
	assert.ErrorIs(t, err, ledger.ErrMaxBet)
	assert.True(t, next.Ledger.Balance().Equal(d("100")))

	next, err = tbl.Bet(d("-3"))
	assert.ErrorIs(t, err, ledger.ErrInvalidBet)
	assert.True(t, next.Stake().IsZero())
}

func TestClearBetRefunds(t *testing.T) {
	tbl, err := newTable(t, "100").Bet(d("25"))
	require.NoError(t, err)
	tbl, err = tbl.Bet(d("5"))
	require.NoError(t, err)

	tbl, refund, err := tbl.ClearBet()
	require.NoError(t, err)
	assert.True(t, refund.Equal(d("30")))
	assert.True(t, tbl.Ledger.Balance().Equal(d("100")))
}

func TestFullRound(t *testing.T) {
	tbl, err := newTable(t, "100").Bet(d("10"))
	require.NoError(t, err)

	tbl, err = tbl.Deal(rotateSource{})
	require.NoError(t, err)
	assert.Equal(t, PlayerTurn, tbl.Phase)
	assert.Equal(t, 5, tbl.PlayerHand().Value)
	assert.Equal(t, 4, tbl.DealerHand().Value, "hole card hidden")
	assert.Equal(t, cards.Card{}, tbl.DealerUpCards()[1])
	assert.Len(t, tbl.Deck, 48)
	assert.True(t, tbl.CanDouble)

	tbl, err = tbl.Hit()
	require.NoError(t, err)
	assert.Equal(t, 11, tbl.PlayerHand().Value)
	assert.False(t, tbl.CanDouble)

	tbl, err = tbl.Hit()
	require.NoError(t, err)
	assert.Equal(t, 18, tbl.PlayerHand().Value)

	tbl, err = tbl.Stand()
	require.NoError(t, err)
	assert.Equal(t, DealerTurn, tbl.Phase)
	assert.Equal(t, 9, tbl.DealerHand().Value)

	tbl, err = tbl.PlayDealer()
	require.NoError(t, err)
	assert.Equal(t, GameOver, tbl.Phase)
	assert.Equal(t, 17, tbl.DealerHand().Value)
	assert.Equal(t, PlayerWin, tbl.Result)
	assert.True(t, tbl.Payout.Equal(d("20")))
	assert.True(t, tbl.Wagered.Equal(d("10")))
	assert.True(t, tbl.Ledger.Balance().Equal(d("110")))
	assert.True(t, tbl.Stake().IsZero())
}

func TestDouble(t *testing.T) {
	tbl, err := newTable(t, "100").Bet(d("10"))
	require.NoError(t, err)
	tbl, err = tbl.Deal(rotateSource{})
	require.NoError(t, err)

	tbl, err = tbl.Double()
	require.NoError(t, err)
	assert.Equal(t, DealerTurn, tbl.Phase)
	assert.Len(t, tbl.Player, 3)
	assert.True(t, tbl.Stake().Equal(d("20")))
	assert.True(t, tbl.Ledger.Balance().Equal(d("80")))

	tbl, err = tbl.PlayDealer()
	require.NoError(t, err)
	assert.True(t, tbl.DealerHand().IsBusted)
	assert.Equal(t, PlayerWin, tbl.Result)
	assert.True(t, tbl.Ledger.Balance().Equal(d("120")))
}

func TestDoubleNotAvailable(t *testing.T) {
	tbl, err := newTable(t, "15").Bet(d("10"))
	require.NoError(t, err)
	tbl, err = tbl.Deal(rotateSource{})
	require.NoError(t, err)
	assert.False(t, tbl.CanDouble)

	_, err = tbl.Double()
	assert.ErrorIs(t, err, ErrCannotDouble)
}

func TestDoubleAboveMaxRejected(t *testing.T) {
	tbl, err := newTable(t, "500").Bet(d("60"))
	require.NoError(t, err)
	tbl, err = tbl.Deal(rotateSource{})
	require.NoError(t, err)

	next, err := tbl.Double()
	assert.ErrorIs(t, err, ledger.ErrMaxBet)
	assert.Equal(t, tbl, next)
}

func TestPlayerBust(t *testing.T) {
	tbl := seated(t, "10",
		up(cards.Ten, cards.Six),
		[]cards.Card{up(cards.Nine)[0], hole(cards.Nine)},
		cards.Deck(up(cards.King)),
	)

	tbl, err := tbl.Hit()
	require.NoError(t, err)
	assert.Equal(t, GameOver, tbl.Phase)
	assert.Equal(t, DealerWin, tbl.Result)
	assert.True(t, tbl.Payout.IsZero())
	assert.True(t, tbl.Ledger.Balance().Equal(d("90")))
}

func TestPush(t *testing.T) {
	tbl := seated(t, "10",
		up(cards.Ten, cards.Eight),
		[]cards.Card{up(cards.Ten)[0], hole(cards.Eight)},
		nil,
	)

	tbl, err := tbl.Stand()
	require.NoError(t, err)
	tbl, err = tbl.PlayDealer()
	require.NoError(t, err)

	assert.Equal(t, Push, tbl.Result)
	assert.True(t, tbl.Ledger.Balance().Equal(d("100")))
}

func TestDealerWins(t *testing.T) {
	tbl := seated(t, "10",
		up(cards.Ten, cards.Seven),
		[]cards.Card{up(cards.Ten)[0], hole(cards.Nine)},
		nil,
	)

	tbl, err := tbl.Stand()
	require.NoError(t, err)
	tbl, err = tbl.PlayDealer()
	require.NoError(t, err)

	assert.Equal(t, DealerWin, tbl.Result)
	assert.True(t, tbl.Ledger.Balance().Equal(d("90")))
}

func TestNaturalStandsImmediately(t *testing.T) {
	tbl, err := newTable(t, "100").Bet(d("10"))
	require.NoError(t, err)

	tbl, err = tbl.Deal(naturalSource{})
	require.NoError(t, err)
	assert.True(t, tbl.PlayerHand().IsBlackjack)
	assert.Equal(t, DealerTurn, tbl.Phase)

	tbl, err = tbl.PlayDealer()
	require.NoError(t, err)
	assert.Equal(t, 18, tbl.DealerHand().Value)
	assert.Equal(t, PlayerWin, tbl.Result)
}

func TestDeckExhaustionVoidsRound(t *testing.T) {
	tbl := seated(t, "10",
		up(cards.Two, cards.Three),
		[]cards.Card{up(cards.Nine)[0], hole(cards.Nine)},
		nil,
	)

	next, err := tbl.Hit()
	require.ErrorIs(t, err, cards.ErrDeckExhausted)
	assert.Equal(t, Betting, next.Phase)
	assert.Empty(t, next.Player)
	assert.True(t, next.Ledger.Balance().Equal(d("100")))
	assert.True(t, next.Stake().IsZero())
}

func TestDealerExhaustionVoidsRound(t *testing.T) {
	tbl := seated(t, "10",
		up(cards.Ten, cards.Nine),
		[]cards.Card{up(cards.Two)[0], hole(cards.Three)},
		nil,
	)
	tbl, err := tbl.Stand()
	require.NoError(t, err)

	next, err := tbl.PlayDealer()
	require.ErrorIs(t, err, cards.ErrDeckExhausted)
	assert.Equal(t, Betting, next.Phase)
	assert.True(t, next.Ledger.Balance().Equal(d("100")))
}

func TestWrongPhase(t *testing.T) {
	tbl := newTable(t, "100")

	_, err := tbl.Hit()
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = tbl.Stand()
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = tbl.Double()
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = tbl.DealerStep()
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestNextRoundAfterGameOver(t *testing.T) {
	tbl := seated(t, "10",
		up(cards.Ten, cards.Six),
		[]cards.Card{up(cards.Nine)[0], hole(cards.Nine)},
		cards.Deck(up(cards.King)),
	)
	tbl, err := tbl.Hit()
	require.NoError(t, err)
	require.Equal(t, GameOver, tbl.Phase)

	tbl, err = tbl.Bet(d("5"))
	require.NoError(t, err)
	assert.Equal(t, Betting, tbl.Phase)
	assert.Empty(t, tbl.Player)
	assert.Equal(t, NoResult, tbl.Result)
	assert.True(t, tbl.Ledger.Balance().Equal(d("85")))
}

func TestDealerStepMatchesPlayDealer(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		tbl, err := newTable(t, "100").Bet(d("10"))
		require.NoError(t, err)
		tbl, err = tbl.Deal(cards.NewSeededSource(seed))
		require.NoError(t, err)
		if tbl.Phase == PlayerTurn {
			tbl, err = tbl.Stand()
			require.NoError(t, err)
		}

		eager, err := tbl.PlayDealer()
		require.NoError(t, err)

		stepped := tbl
		var trail []Hand
		for stepped.Phase == DealerTurn {
			trail = append(trail, stepped.DealerHand())
			stepped, err = stepped.DealerStep()
			require.NoError(t, err)
		}

		assert.Equal(t, eager, stepped, "seed %d", seed)
		for i := 1; i < len(trail); i++ {
			assert.Len(t, trail[i].Cards, len(trail[i-1].Cards)+1, "one card per step")
		}
		assert.Equal(t, GameOver, stepped.Phase)
		assert.False(t, DealerShouldHit(stepped.DealerHand()))
	}
}

func TestDealerStepDoesNotMutateReceiver(t *testing.T) {
	tbl := seated(t, "10",
		up(cards.Ten, cards.Nine),
		[]cards.Card{up(cards.Two)[0], hole(cards.Three)},
		cards.Deck(up(cards.Four, cards.Five, cards.Six)),
	)
	tbl, err := tbl.Stand()
	require.NoError(t, err)
	before := tbl.clone()

	_, err = tbl.DealerStep()
	require.NoError(t, err)
	assert.Equal(t, before, tbl)
}
