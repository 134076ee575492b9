package cards

import "errors"

var (
	ErrDeckExhausted = errors.New("not enough cards left in deck")
	ErrInvalidCount  = errors.New("card count must be non-negative")
	ErrEntropy       = errors.New("shuffle source failed")
)

type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	}
	return "?"
}

type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// Card identity is its position in a deck; two cards with the same suit and
// rank never appear in one deck.
type Card struct {
	Suit   Suit `json:"suit"`
	Rank   Rank `json:"rank"`
	FaceUp bool `json:"face_up"`
}

func (c Card) Flip(faceUp bool) Card {
	c.FaceUp = faceUp
	return c
}

func (c Card) String() string {
	if !c.FaceUp {
		return "??"
	}
	return string(c.Rank) + c.Suit.Symbol()
}

// Masked hides suit and rank of a face-down card so it can be shown to a
// player.
func (c Card) Masked() Card {
	if c.FaceUp {
		return c
	}
	return Card{}
}
