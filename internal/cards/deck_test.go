package cards

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	s Suit
	r Rank
}

func assertFullDeck(t *testing.T, deck Deck) {
	t.Helper()
	require.Len(t, deck, DeckSize)

	seen := make(map[pair]bool, DeckSize)
	for _, c := range deck {
		key := pair{c.Suit, c.Rank}
		assert.False(t, seen[key], "duplicate %v", key)
		seen[key] = true
		assert.True(t, c.FaceUp)
	}
	assert.Len(t, seen, DeckSize)
}

func TestNewOrderedDeck(t *testing.T) {
	deck := NewOrderedDeck()
	assertFullDeck(t, deck)
	assert.Equal(t, Card{Suit: Hearts, Rank: Ace, FaceUp: true}, deck[0])
	assert.Equal(t, Card{Suit: Spades, Rank: King, FaceUp: true}, deck[51])
}

func shuffled(t *testing.T, src Source) Deck {
	t.Helper()
	deck, err := NewShuffledDeck(src)
	require.NoError(t, err)
	return deck
}

func TestNewShuffledDeck(t *testing.T) {
	assertFullDeck(t, shuffled(t, CryptoSource{}))

	for seed := uint64(0); seed < 20; seed++ {
		assertFullDeck(t, shuffled(t, NewSeededSource(seed)))
	}
}

func TestShuffleReproducible(t *testing.T) {
	a := shuffled(t, NewSeededSource(42))
	b := shuffled(t, NewSeededSource(42))
	c := shuffled(t, NewSeededSource(43))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestShuffleDoesNotModifyInput(t *testing.T) {
	deck := NewOrderedDeck()
	_, err := Shuffle(deck, NewSeededSource(1))
	require.NoError(t, err)
	assert.Equal(t, NewOrderedDeck(), deck)
}

// fixedSource always picks the lowest index, which makes Fisher–Yates a
// known rotation: every position i swaps with 0 walking down from the end.
type fixedSource struct{}

func (fixedSource) IntN(int) (int, error) { return 0, nil }

func TestShuffleFixedSource(t *testing.T) {
	deck := Deck{
		{Rank: Ace}, {Rank: Two}, {Rank: Three}, {Rank: Four},
	}
	got, err := Shuffle(deck, fixedSource{})
	require.NoError(t, err)
	assert.Equal(t, Deck{{Rank: Two}, {Rank: Three}, {Rank: Four}, {Rank: Ace}}, got)
}

// brokenSource fails after a number of successful draws.
type brokenSource struct {
	left *int
	err  error
}

func (s brokenSource) IntN(int) (int, error) {
	if *s.left == 0 {
		return 0, s.err
	}
	*s.left--
	return 0, nil
}

type outOfRangeSource struct{}

func (outOfRangeSource) IntN(n int) (int, error) { return n, nil }

func TestShuffleSourceFailure(t *testing.T) {
	readErr := errors.New("entropy pool closed")
	left := 10

	deck, err := NewShuffledDeck(brokenSource{left: &left, err: readErr})
	assert.ErrorIs(t, err, readErr)
	assert.Nil(t, deck)

	deck, err = NewShuffledDeck(outOfRangeSource{})
	assert.ErrorIs(t, err, ErrEntropy)
	assert.Nil(t, deck)
}

func TestShuffleFirstCardRoughlyUniform(t *testing.T) {
	src := NewSeededSource(7)
	counts := make(map[pair]int)
	const rounds = 52 * 200

	for i := 0; i < rounds; i++ {
		c := shuffled(t, src)[0]
		counts[pair{c.Suit, c.Rank}]++
	}

	require.Len(t, counts, DeckSize)
	for k, n := range counts {
		assert.InDelta(t, 200, n, 80, "card %v", k)
	}
}

func TestDeal(t *testing.T) {
	deck := NewOrderedDeck()

	dealt, rest, err := Deal(deck, 2, false)
	require.NoError(t, err)
	require.Len(t, dealt, 2)
	assert.Len(t, rest, 50)
	assert.False(t, dealt[0].FaceUp)
	assert.Equal(t, deck[2], rest[0])
	assert.True(t, deck[0].FaceUp, "source deck untouched")

	dealt, rest, err = Deal(rest, 50, true)
	require.NoError(t, err)
	assert.Len(t, dealt, 50)
	assert.Empty(t, rest)
}

func TestDealErrors(t *testing.T) {
	deck := NewOrderedDeck()[:3]

	_, rest, err := Deal(deck, 4, true)
	assert.ErrorIs(t, err, ErrDeckExhausted)
	assert.Len(t, rest, 3)

	_, _, err = Deal(deck, -1, true)
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "A♠", Card{Suit: Spades, Rank: Ace, FaceUp: true}.String())
	assert.Equal(t, "10♥", Card{Suit: Hearts, Rank: Ten, FaceUp: true}.String())
	assert.Equal(t, "??", Card{Suit: Hearts, Rank: Ten}.String())
}
