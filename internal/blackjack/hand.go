package blackjack

import (
	"strconv"

	"bx-casino/internal/cards"
)

const (
	target       = 21
	dealerStands = 17
)

// Hand is derived from its cards and never stored on its own.
type Hand struct {
	Cards       []cards.Card `json:"cards"`
	Value       int          `json:"value"`
	Soft        bool         `json:"soft"`
	IsBusted    bool         `json:"is_busted"`
	IsBlackjack bool         `json:"is_blackjack"`
}

func rankValue(r cards.Rank) int {
	switch r {
	case cards.Ace:
		return 11
	case cards.King, cards.Queen, cards.Jack:
		return 10
	}
	v, _ := strconv.Atoi(string(r))
	return v
}

// score returns the best total of the face-up cards and whether an Ace is
// still counted as 11.
func score(cs []cards.Card) (int, bool) {
	total, aces := 0, 0
	for _, c := range cs {
		if !c.FaceUp {
			continue
		}
		if c.Rank == cards.Ace {
			aces++
		}
		total += rankValue(c.Rank)
	}
	for total > target && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0
}

// Value counts face-up cards only; a hole card adds nothing until flipped.
func Value(cs []cards.Card) int {
	v, _ := score(cs)
	return v
}

func IsBlackjack(cs []cards.Card) bool {
	return len(cs) == 2 && Value(cs) == target
}

func IsBusted(cs []cards.Card) bool {
	return Value(cs) > target
}

func Evaluate(cs []cards.Card) Hand {
	v, soft := score(cs)
	own := make([]cards.Card, len(cs))
	copy(own, cs)
	return Hand{
		Cards:       own,
		Value:       v,
		Soft:        soft,
		IsBusted:    v > target,
		IsBlackjack: len(cs) == 2 && v == target,
	}
}

// DealerShouldHit applies "dealer stands on all 17s".
func DealerShouldHit(h Hand) bool {
	return h.Value < dealerStands
}
