package roulette

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownCategory = errors.New("unknown bet category")
	ErrInvalidNumbers  = errors.New("numbers do not form a valid bet of this category")
)

type Category string

const (
	BetStraight Category = "straight"
	BetSplit    Category = "split"
	BetStreet   Category = "street"
	BetCorner   Category = "corner"
	BetLine     Category = "line"
	BetDozen    Category = "dozen"
	BetColumn   Category = "column"
	BetRed      Category = "red"
	BetBlack    Category = "black"
	BetEven     Category = "even"
	BetOdd      Category = "odd"
	BetLow      Category = "1-18"
	BetHigh     Category = "19-36"
)

// multipliers are winnings per unit staked, excluding the returned stake.
var multipliers = map[Category]int64{
	BetStraight: 35,
	BetSplit:    17,
	BetStreet:   11,
	BetCorner:   8,
	BetLine:     5,
	BetDozen:    2,
	BetColumn:   2,
	BetRed:      1,
	BetBlack:    1,
	BetEven:     1,
	BetOdd:      1,
	BetLow:      1,
	BetHigh:     1,
}

func Multiplier(c Category) (int64, bool) {
	m, ok := multipliers[c]
	return m, ok
}

// valid holds every number set a category accepts, built once from the
// layout.
var valid = buildValid()

func buildValid() map[Category]map[NumberSet]bool {
	v := map[Category]map[NumberSet]bool{}
	allow := func(c Category, s NumberSet) {
		if v[c] == nil {
			v[c] = map[NumberSet]bool{}
		}
		v[c][s] = true
	}

	for n := MinNumber; n <= MaxNumber; n++ {
		allow(BetStraight, SetOf(n))
	}
	for n := 1; n <= MaxNumber; n++ {
		if col(n) < 2 {
			allow(BetSplit, SetOf(n, n+1))
		}
		if n+3 <= MaxNumber {
			allow(BetSplit, SetOf(n, n+3))
		}
		if col(n) < 2 && n+4 <= MaxNumber {
			allow(BetCorner, SetOf(n, n+1, n+3, n+4))
		}
	}
	for z := 1; z <= 3; z++ {
		allow(BetSplit, SetOf(0, z))
	}
	for r := 0; r < 12; r++ {
		allow(BetStreet, SetOf(3*r+1, 3*r+2, 3*r+3))
		if r < 11 {
			allow(BetLine, SetOf(3*r+1, 3*r+2, 3*r+3, 3*r+4, 3*r+5, 3*r+6))
		}
	}
	allow(BetStreet, SetOf(0, 1, 2))
	allow(BetStreet, SetOf(0, 2, 3))
	allow(BetCorner, SetOf(0, 1, 2, 3))

	for i := 0; i < 3; i++ {
		allow(BetDozen, Dozens[i])
		allow(BetColumn, Columns[i])
	}
	for c, s := range outside {
		allow(c, s)
	}
	return v
}

// outside maps the categories whose numbers are implied by the category
// alone.
var outside = map[Category]NumberSet{
	BetRed:   Red,
	BetBlack: Black,
	BetEven:  Even,
	BetOdd:   Odd,
	BetLow:   Low,
	BetHigh:  High,
}

type Bet struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Numbers  NumberSet       `json:"numbers"`
}

func (b Bet) Stake() decimal.Decimal { return b.Amount }

func (b Bet) Validate() error {
	set, ok := valid[b.Category]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, b.Category)
	}
	if !set[b.Numbers] {
		return fmt.Errorf("%w: %s %v", ErrInvalidNumbers, b.Category, b.Numbers.Numbers())
	}
	return nil
}

// NewBet builds and validates a bet. Outside bets may omit numbers.
func NewBet(c Category, amount decimal.Decimal, numbers ...int) (Bet, error) {
	b := Bet{Category: c, Amount: amount, Numbers: SetOf(numbers...)}
	if s, ok := outside[c]; ok && len(numbers) == 0 {
		b.Numbers = s
	}
	if len(numbers) != b.Numbers.Len() && len(numbers) > 0 {
		return Bet{}, fmt.Errorf("%w: duplicate or out of range numbers %v", ErrInvalidNumbers, numbers)
	}
	if err := b.Validate(); err != nil {
		return Bet{}, err
	}
	return b, nil
}

func Straight(n int, amount decimal.Decimal) (Bet, error) {
	return NewBet(BetStraight, amount, n)
}

func Split(a, b int, amount decimal.Decimal) (Bet, error) {
	return NewBet(BetSplit, amount, a, b)
}

func Street(a, b, c int, amount decimal.Decimal) (Bet, error) {
	return NewBet(BetStreet, amount, a, b, c)
}

func Corner(numbers [4]int, amount decimal.Decimal) (Bet, error) {
	return NewBet(BetCorner, amount, numbers[:]...)
}

func Line(numbers [6]int, amount decimal.Decimal) (Bet, error) {
	return NewBet(BetLine, amount, numbers[:]...)
}

// Outside covers the even-money categories, whose numbers are fixed.
func Outside(c Category, amount decimal.Decimal) (Bet, error) {
	if _, ok := outside[c]; !ok {
		return Bet{}, fmt.Errorf("%w: %q is not an outside bet", ErrUnknownCategory, c)
	}
	return NewBet(c, amount)
}

// Dozen bets on 1-12, 13-24 or 25-36 for i = 1, 2, 3.
func Dozen(i int, amount decimal.Decimal) (Bet, error) {
	if i < 1 || i > 3 {
		return Bet{}, ErrInvalidNumbers
	}
	return Bet{Category: BetDozen, Amount: amount, Numbers: Dozens[i-1]}, nil
}

// Column bets on the column starting at i = 1, 2, 3.
func Column(i int, amount decimal.Decimal) (Bet, error) {
	if i < 1 || i > 3 {
		return Bet{}, ErrInvalidNumbers
	}
	return Bet{Category: BetColumn, Amount: amount, Numbers: Columns[i-1]}, nil
}

// Indexed builds a dozen or column bet from its 1-based index, the form a
// client sends when it does not list the twelve numbers.
func Indexed(c Category, i int, amount decimal.Decimal) (Bet, error) {
	switch c {
	case BetDozen:
		return Dozen(i, amount)
	case BetColumn:
		return Column(i, amount)
	default:
		return Bet{}, fmt.Errorf("%w: %q takes no index", ErrUnknownCategory, c)
	}
}

// Resolve returns the winnings of bets for outcome. Losing bets add nothing.
func Resolve(bets []Bet, outcome int) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bets {
		if !b.Numbers.Contains(outcome) {
			continue
		}
		total = total.Add(b.Amount.Mul(decimal.NewFromInt(multipliers[b.Category])))
	}
	return total
}

// Settlement is the amount credited back at settlement: winnings plus the
// stake of every winning bet. Losing stakes stay with the house.
func Settlement(bets []Bet, outcome int) decimal.Decimal {
	total := Resolve(bets, outcome)
	for _, b := range bets {
		if b.Numbers.Contains(outcome) {
			total = total.Add(b.Amount)
		}
	}
	return total
}
