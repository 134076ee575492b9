package cards

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
)

const DeckSize = 52

// Deck is consumed from the front and never refilled during a round.
type Deck []Card

// Source picks a uniform integer in [0, n).
type Source interface {
	IntN(n int) (int, error)
}

// CryptoSource draws from crypto/rand. Its entropy is not bounded by a PRNG
// state, so every ordering of a 52-card deck stays reachable.
type CryptoSource struct{}

func (CryptoSource) IntN(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEntropy, err)
	}
	return int(v.Int64()), nil
}

type seededSource struct {
	rng *mrand.Rand
}

func (s seededSource) IntN(n int) (int, error) {
	return s.rng.IntN(n), nil
}

// NewSeededSource returns a reproducible source for tests and simulations.
func NewSeededSource(seed uint64) Source {
	return seededSource{rng: mrand.New(mrand.NewPCG(seed, 0))}
}

// NewOrderedDeck returns the 52 cards face up, suit by suit.
func NewOrderedDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r, FaceUp: true})
		}
	}
	return deck
}

// Shuffle returns a Fisher–Yates permutation of deck; the input is not
// modified. A failing source aborts the shuffle with no partial deck.
func Shuffle(deck Deck, src Source) (Deck, error) {
	out := make(Deck, len(deck))
	copy(out, deck)
	for i := len(out) - 1; i > 0; i-- {
		j, err := src.IntN(i + 1)
		if err != nil {
			return nil, err
		}
		if j < 0 || j > i {
			return nil, fmt.Errorf("%w: index %d outside [0, %d]", ErrEntropy, j, i)
		}
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func NewShuffledDeck(src Source) (Deck, error) {
	return Shuffle(NewOrderedDeck(), src)
}

// Deal takes the first n cards, turned to faceUp, and returns them with the
// rest of the deck.
func Deal(deck Deck, n int, faceUp bool) ([]Card, Deck, error) {
	if n < 0 {
		return nil, deck, ErrInvalidCount
	}
	if n > len(deck) {
		return nil, deck, ErrDeckExhausted
	}

	dealt := make([]Card, n)
	for i := range dealt {
		dealt[i] = deck[i].Flip(faceUp)
	}
	rest := make(Deck, len(deck)-n)
	copy(rest, deck[n:])
	return dealt, rest, nil
}
