package roulette

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bx-casino/internal/fairness"
	"bx-casino/internal/ledger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustBet(t *testing.T, c Category, amount string, numbers ...int) Bet {
	t.Helper()
	b, err := NewBet(c, d(amount), numbers...)
	require.NoError(t, err)
	return b
}

func TestPartitions(t *testing.T) {
	assert.Equal(t, 18, Red.Len())
	assert.Equal(t, 18, Black.Len())
	assert.Equal(t, 18, Even.Len())
	assert.Equal(t, 18, Odd.Len())
	assert.Equal(t, 18, Low.Len())
	assert.Equal(t, 18, High.Len())
	assert.Zero(t, Red&Black)
	assert.Equal(t, Red|Black, Even|Odd)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 12, Dozens[i].Len())
		assert.Equal(t, 12, Columns[i].Len())
	}
	assert.Equal(t, []int{1, 4, 7, 10, 13, 16, 19, 22, 25, 28, 31, 34}, Columns[0].Numbers())
	assert.Equal(t, []int{13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24}, Dozens[1].Numbers())

	for _, s := range []NumberSet{Red, Black, Even, Odd, Low, High, Dozens[0], Columns[0]} {
		assert.False(t, s.Contains(0), "zero belongs to no outside bet")
	}
}

func TestWheelOrderCoversEveryPocket(t *testing.T) {
	seen := SetOf(WheelOrder[:]...)
	assert.Equal(t, Pockets, seen.Len())
}

func TestPocket(t *testing.T) {
	assert.Equal(t, PocketInfo{Number: 0, Colour: ColourGreen}, Pocket(0))
	assert.Equal(t, PocketInfo{Number: 17, Colour: ColourBlack, Low: true, Dozen: 2, Column: 2}, Pocket(17))
	assert.Equal(t, PocketInfo{Number: 36, Colour: ColourRed, Even: true, Dozen: 3, Column: 3}, Pocket(36))
}

func TestResolveStraight(t *testing.T) {
	bet, err := Straight(17, d("10"))
	require.NoError(t, err)

	assert.True(t, Resolve([]Bet{bet}, 17).Equal(d("350")))
	assert.True(t, Resolve([]Bet{bet}, 18).IsZero())
	assert.True(t, Settlement([]Bet{bet}, 17).Equal(d("360")))
	assert.True(t, Settlement([]Bet{bet}, 18).IsZero())
}

func TestResolveMultipliers(t *testing.T) {
	dozen, err := Dozen(2, d("10"))
	require.NoError(t, err)
	column, err := Column(1, d("10"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		bet     Bet
		outcome int
		want    string
	}{
		{"split", mustBet(t, BetSplit, "10", 17, 20), 20, "170"},
		{"street", mustBet(t, BetStreet, "10", 16, 17, 18), 16, "110"},
		{"corner", mustBet(t, BetCorner, "10", 13, 14, 16, 17), 14, "80"},
		{"line", mustBet(t, BetLine, "10", 13, 14, 15, 16, 17, 18), 18, "50"},
		{"dozen", dozen, 24, "20"},
		{"column", column, 34, "20"},
		{"red", mustBet(t, BetRed, "10"), 1, "10"},
		{"black", mustBet(t, BetBlack, "10"), 2, "10"},
		{"even", mustBet(t, BetEven, "10"), 2, "10"},
		{"odd", mustBet(t, BetOdd, "10"), 3, "10"},
		{"low", mustBet(t, BetLow, "10"), 18, "10"},
		{"high", mustBet(t, BetHigh, "10"), 19, "10"},
		{"red on zero", mustBet(t, BetRed, "10"), 0, "0"},
		{"even on zero", mustBet(t, BetEven, "10"), 0, "0"},
		{"straight zero", mustBet(t, BetStraight, "1", 0), 0, "35"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve([]Bet{tt.bet}, tt.outcome)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestResolveSumsWinnersOnly(t *testing.T) {
	bets := []Bet{
		mustBet(t, BetStraight, "5", 7),
		mustBet(t, BetRed, "10"),
		mustBet(t, BetEven, "20"),
	}
	// 7 is red and odd.
	assert.True(t, Resolve(bets, 7).Equal(d("185")))
	assert.True(t, Settlement(bets, 7).Equal(d("200")))
}

func TestNewBetValidation(t *testing.T) {
	tests := []struct {
		name    string
		c       Category
		numbers []int
		wantErr error
	}{
		{"straight out of range", BetStraight, []int{37}, ErrInvalidNumbers},
		{"split not adjacent", BetSplit, []int{1, 5}, ErrInvalidNumbers},
		{"split across rows", BetSplit, []int{3, 4}, ErrInvalidNumbers},
		{"vertical split", BetSplit, []int{1, 4}, nil},
		{"zero split", BetSplit, []int{0, 2}, nil},
		{"street misaligned", BetStreet, []int{2, 3, 4}, ErrInvalidNumbers},
		{"zero trio", BetStreet, []int{0, 1, 2}, nil},
		{"corner not square", BetCorner, []int{1, 2, 3, 4}, ErrInvalidNumbers},
		{"first four", BetCorner, []int{0, 1, 2, 3}, nil},
		{"line", BetLine, []int{31, 32, 33, 34, 35, 36}, nil},
		{"line past end", BetLine, []int{34, 35, 36}, ErrInvalidNumbers},
		{"red with wrong numbers", BetRed, []int{1, 2}, ErrInvalidNumbers},
		{"duplicate numbers", BetSplit, []int{1, 1, 2}, ErrInvalidNumbers},
		{"unknown", Category("basket"), []int{0, 1, 2, 3}, ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBet(tt.c, d("1"), tt.numbers...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNamedConstructors(t *testing.T) {
	split, err := Split(17, 20, d("1"))
	require.NoError(t, err)
	assert.Equal(t, SetOf(17, 20), split.Numbers)

	_, err = Street(4, 5, 6, d("1"))
	assert.NoError(t, err)
	_, err = Corner([4]int{1, 2, 4, 5}, d("1"))
	assert.NoError(t, err)
	_, err = Line([6]int{1, 2, 3, 4, 5, 6}, d("1"))
	assert.NoError(t, err)

	red, err := Outside(BetRed, d("1"))
	require.NoError(t, err)
	assert.Equal(t, Red, red.Numbers)

	_, err = Outside(BetStraight, d("1"))
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestDozenColumnRange(t *testing.T) {
	_, err := Dozen(0, d("1"))
	assert.ErrorIs(t, err, ErrInvalidNumbers)
	_, err = Column(4, d("1"))
	assert.ErrorIs(t, err, ErrInvalidNumbers)
}

func TestIndexedAndListedDozenColumn(t *testing.T) {
	tests := []struct {
		category Category
		index    int
		numbers  NumberSet
	}{
		{BetDozen, 1, Dozens[0]},
		{BetDozen, 3, Dozens[2]},
		{BetColumn, 2, Columns[1]},
		{BetColumn, 3, Columns[2]},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %d", tt.category, tt.index), func(t *testing.T) {
			byIndex, err := Indexed(tt.category, tt.index, d("5"))
			require.NoError(t, err)
			assert.Equal(t, tt.numbers, byIndex.Numbers)
			assert.Equal(t, tt.category, byIndex.Category)

			listed, err := NewBet(tt.category, d("5"), tt.numbers.Numbers()...)
			require.NoError(t, err)
			assert.Equal(t, byIndex.Category, listed.Category)
			assert.Equal(t, byIndex.Numbers, listed.Numbers)
		})
	}

	_, err := NewBet(BetDozen, d("5"))
	assert.ErrorIs(t, err, ErrInvalidNumbers)
	_, err = Indexed(BetRed, 1, d("5"))
	assert.ErrorIs(t, err, ErrUnknownCategory)
	_, err = Indexed(BetDozen, 4, d("5"))
	assert.ErrorIs(t, err, ErrInvalidNumbers)
}

func TestNumberSetJSON(t *testing.T) {
	data, err := json.Marshal(SetOf(17, 20))
	require.NoError(t, err)
	assert.JSONEq(t, `[17,20]`, string(data))

	var back NumberSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, SetOf(17, 20), back)
}

func newTable(t *testing.T) Table {
	t.Helper()
	l, err := ledger.New[Bet](d("1000"), ledger.Limits{Min: d("1"), Max: d("1000")})
	require.NoError(t, err)
	return NewTable(l, fairness.Session{ServerSeed: "s", ClientSeed: "c"})
}

func TestSpinKnownSeeds(t *testing.T) {
	number, out, next, err := Spin(fairness.Session{ServerSeed: "s", ClientSeed: "c"})
	require.NoError(t, err)
	assert.Equal(t, 34, number)
	assert.Equal(t, "s", out.Server)
	assert.Equal(t, uint64(1), next.Nonce)
	assert.True(t, fairness.Verify(out.Seeds, out.Nonce, WheelDraw, []int{number}))
}

func TestTableSpinSettles(t *testing.T) {
	tbl := newTable(t)

	tbl, err := tbl.PlaceBet(mustBet(t, BetStraight, "10", 34))
	require.NoError(t, err)
	tbl, err = tbl.PlaceBet(mustBet(t, BetRed, "20"))
	require.NoError(t, err)
	assert.True(t, tbl.Ledger.Balance().Equal(d("970")))

	tbl, res, err := tbl.Spin()
	require.NoError(t, err)

	// 34 is red: 10*35+10 back on the straight, 20*1+20 back on red.
	assert.Equal(t, 34, res.Number)
	assert.True(t, res.Wagered.Equal(d("30")))
	assert.True(t, res.Winnings.Equal(d("370")))
	assert.True(t, res.Payout.Equal(d("400")))
	assert.True(t, tbl.Ledger.Balance().Equal(d("1370")))
	assert.Empty(t, tbl.Ledger.Pending())
	assert.Equal(t, []int{34}, tbl.Recent)
	assert.Equal(t, uint64(1), tbl.Fairness.Nonce)
}

func TestTableSpinLosingBet(t *testing.T) {
	tbl := newTable(t)
	tbl, err := tbl.PlaceBet(mustBet(t, BetStraight, "10", 18))
	require.NoError(t, err)

	tbl, res, err := tbl.Spin()
	require.NoError(t, err)
	assert.True(t, res.Payout.IsZero())
	assert.True(t, tbl.Ledger.Balance().Equal(d("990")))
}

func TestTableSpinWithoutBets(t *testing.T) {
	_, _, err := newTable(t).Spin()
	assert.ErrorIs(t, err, ErrNoBets)
}

func TestTableRejectsMalformedBet(t *testing.T) {
	tbl := newTable(t)

	_, err := tbl.PlaceBet(Bet{Category: BetSplit, Amount: d("5"), Numbers: SetOf(1, 9)})
	assert.ErrorIs(t, err, ErrInvalidNumbers)

	_, err = tbl.PlaceBet(Bet{Category: BetRed, Amount: d("-5"), Numbers: Red})
	assert.ErrorIs(t, err, ledger.ErrInvalidBet)

	_, err = tbl.PlaceBet(Bet{Category: BetRed, Amount: d("5000"), Numbers: Red})
	assert.ErrorIs(t, err, ledger.ErrMaxBet)
}

func TestTableClearBets(t *testing.T) {
	tbl := newTable(t)
	tbl, err := tbl.PlaceBet(mustBet(t, BetOdd, "25"))
	require.NoError(t, err)

	tbl, refund := tbl.ClearBets()
	assert.True(t, refund.Equal(d("25")))
	assert.True(t, tbl.Ledger.Balance().Equal(d("1000")))
}

func TestRecentIsCapped(t *testing.T) {
	tbl := newTable(t)
	for i := 0; i < recentLimit+5; i++ {
		var err error
		tbl, err = tbl.PlaceBet(mustBet(t, BetLow, "1"))
		require.NoError(t, err)
		tbl, _, err = tbl.Spin()
		require.NoError(t, err)
	}
	assert.Len(t, tbl.Recent, recentLimit)
	assert.Equal(t, uint64(recentLimit+5), tbl.Fairness.Nonce)
}
