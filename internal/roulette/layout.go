package roulette

import (
	"encoding/json"
	"math/bits"
)

const (
	MinNumber = 0
	MaxNumber = 36
	Pockets   = MaxNumber + 1
)

// NumberSet is a bitset over the pockets 0..36.
type NumberSet uint64

func SetOf(numbers ...int) NumberSet {
	var s NumberSet
	for _, n := range numbers {
		if n >= MinNumber && n <= MaxNumber {
			s |= 1 << uint(n)
		}
	}
	return s
}

func (s NumberSet) Contains(n int) bool {
	if n < MinNumber || n > MaxNumber {
		return false
	}
	return s&(1<<uint(n)) != 0
}

func (s NumberSet) Len() int { return bits.OnesCount64(uint64(s)) }

func (s NumberSet) Numbers() []int {
	out := make([]int, 0, s.Len())
	for n := MinNumber; n <= MaxNumber; n++ {
		if s.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

var redNumbers = []int{1, 3, 5, 7, 9, 12, 14, 16, 18, 19, 21, 23, 25, 27, 30, 32, 34, 36}

func (s NumberSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Numbers())
}

func (s *NumberSet) UnmarshalJSON(data []byte) error {
	var ns []int
	if err := json.Unmarshal(data, &ns); err != nil {
		return err
	}
	*s = SetOf(ns...)
	return nil
}

// Partitions of 1..36, computed once. Zero belongs to none of them.
var (
	Red   = SetOf(redNumbers...)
	Black = matching(func(n int) bool { return !Red.Contains(n) })
	Even  = matching(func(n int) bool { return n%2 == 0 })
	Odd   = matching(func(n int) bool { return n%2 == 1 })
	Low   = matching(func(n int) bool { return n <= 18 })
	High  = matching(func(n int) bool { return n > 18 })

	Dozens = [3]NumberSet{
		matching(func(n int) bool { return (n-1)/12 == 0 }),
		matching(func(n int) bool { return (n-1)/12 == 1 }),
		matching(func(n int) bool { return (n-1)/12 == 2 }),
	}
	Columns = [3]NumberSet{
		matching(func(n int) bool { return col(n) == 0 }),
		matching(func(n int) bool { return col(n) == 1 }),
		matching(func(n int) bool { return col(n) == 2 }),
	}
)

func matching(pred func(n int) bool) NumberSet {
	var s NumberSet
	for n := 1; n <= MaxNumber; n++ {
		if pred(n) {
			s |= SetOf(n)
		}
	}
	return s
}

// WheelOrder is the pocket sequence of a single-zero wheel, clockwise from 0.
var WheelOrder = [Pockets]int{
	0, 32, 15, 19, 4, 21, 2, 25, 17, 34, 6, 27, 13, 36,
	11, 30, 8, 23, 10, 5, 24, 16, 33, 1, 20, 14, 31, 9,
	22, 18, 29, 7, 28, 12, 35, 3, 26,
}

// col is the layout column (0..2) of a number in 1..36.
func col(n int) int { return (n - 1) % 3 }

type Colour string

const (
	ColourGreen Colour = "green"
	ColourRed   Colour = "red"
	ColourBlack Colour = "black"
)

// PocketInfo describes a wheel result the way a table display needs it.
type PocketInfo struct {
	Number int    `json:"number"`
	Colour Colour `json:"colour"`
	Even   bool   `json:"even"`
	Low    bool   `json:"low"`
	Dozen  int    `json:"dozen"`
	Column int    `json:"column"`
}

func Pocket(n int) PocketInfo {
	p := PocketInfo{Number: n, Colour: ColourGreen}
	if n < 1 || n > MaxNumber {
		return p
	}
	if Red.Contains(n) {
		p.Colour = ColourRed
	} else {
		p.Colour = ColourBlack
	}
	p.Even = Even.Contains(n)
	p.Low = Low.Contains(n)
	p.Dozen = (n-1)/12 + 1
	p.Column = col(n) + 1
	return p
}
