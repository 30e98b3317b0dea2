// internal/game/rules_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doppelkopf/internal/deck"
)

func hand(types ...int) []deck.Card {
	cards := make([]deck.Card, len(types))
	for i, t := range types {
		cards[i] = deck.ByType(t)
	}
	return cards
}

func lead(t int) *deck.Card {
	c := deck.ByType(t)
	return &c
}

func TestFeedbackFor(t *testing.T) {
	// Type ids: 0 = 10♥ (highest trump), 1 = Q♣, 13 = A♣ (plain clubs),
	// 17 = A♠ (plain spades), 21 = A♥ (plain hearts), 23 = 9♥ (plain hearts).
	tests := []struct {
		name     string
		cardType int
		hand     []deck.Card
		lead     *deck.Card
		want     Feedback
	}{
		{"leading allows anything held", 13, hand(13, 0), nil, Ok},
		{"not in hand", 5, hand(13, 0), nil, NotInHand},
		{"not in hand wins over legality checks", 17, hand(13, 0), lead(21), NotInHand},
		{"must follow trump with trump", 0, hand(0, 13), lead(12), Ok},
		{"plain card against trump lead refused", 13, hand(0, 13), lead(12), NotAllowed},
		{"must follow plain suit", 21, hand(21, 13), lead(23), Ok},
		{"off-suit refused while suit held", 13, hand(21, 13), lead(23), NotAllowed},
		{"trump refused while lead suit held", 0, hand(0, 21), lead(23), NotAllowed},
		{"free play when unable to follow", 13, hand(13, 17), lead(23), OkCouldNotFollowSuit},
		{"trump is free play against unheld suit", 0, hand(0, 17), lead(23), OkCouldNotFollowSuit},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FeedbackFor(tc.cardType, tc.hand, tc.lead))
		})
	}
}

func TestFeedbackForIsTotal(t *testing.T) {
	// Every card type against every possible lead yields exactly one of the
	// four verdicts, never a panic.
	h := hand(0, 1, 13, 17, 21, 23)
	leads := []*deck.Card{nil}
	for i := 0; i < deck.NumTypes; i++ {
		leads = append(leads, lead(i))
	}
	for _, ld := range leads {
		for typ := 0; typ < deck.NumTypes; typ++ {
			fb := FeedbackFor(typ, h, ld)
			assert.Contains(t, []Feedback{NotInHand, NotAllowed, Ok, OkCouldNotFollowSuit}, fb)
		}
	}
}

func TestTrickWinner(t *testing.T) {
	tests := []struct {
		name  string
		stack []deck.Card
		want  int
	}{
		{"lower trump rank wins", hand(12, 0, 11, 10), 1},
		{"lead suit decides among plain cards", hand(23, 21, 22, 23), 1},
		{"off-suit plain card never wins", hand(23, 17, 13, 18), 0},
		{"any trump beats all plain cards", hand(13, 14, 12, 15), 2},
		{"first copy of equal cards stands", hand(21, 21, 23, 22), 0},
		{"single card", hand(16), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TrickWinner(tc.stack)
			require.GreaterOrEqual(t, got, 0)
			require.Less(t, got, len(tc.stack))
			assert.Equal(t, tc.want, got)
		})
	}
	assert.Equal(t, -1, TrickWinner(nil))
}

func TestTrickWinnerRotationInvariant(t *testing.T) {
	// Rotating which seat is "first" while preserving relative play order
	// and the lead card must keep pointing at the same physical card.
	stack := hand(23, 21, 3, 22) // 9♥ led, A♥, Q♥ (trump), K♥
	winner := TrickWinner(stack)
	require.Equal(t, 2, winner)

	// The same cards arriving in the same relative order, regardless of
	// which absolute seat index played first, resolve identically: the
	// winner is an offset into the play order, not a seat number.
	for leader := 0; leader < NumSeats; leader++ {
		order := PlayOrder(leader)
		winningSeat := order[winner]
		assert.Equal(t, (leader+2)%NumSeats, winningSeat)
	}
}

func TestHighestTrumpAlwaysWinsItsTricks(t *testing.T) {
	// A seat leading the 10 of Hearts (type 0, trump rank 1) must win any
	// trick it starts, whatever the others throw at it.
	others := [][]deck.Card{
		hand(0, 1, 9),    // second copy of 10♥, Q♣, A♦
		hand(13, 17, 21), // plain aces
		hand(12, 16, 23), // low cards
	}
	for _, replies := range others {
		for _, reply := range replies {
			stack := []deck.Card{deck.ByType(0), reply, deck.ByType(15), deck.ByType(19)}
			assert.Equal(t, 0, TrickWinner(stack), "10♥ lost against %s", reply)
		}
	}
}

func TestTrickValue(t *testing.T) {
	assert.Equal(t, 0, TrickValue(nil))
	// A♦ (11) + 10♥ (10) + Q♣ (3) + 9♥ (0)
	assert.Equal(t, 24, TrickValue(hand(9, 0, 1, 23)))
}

func TestValidDeal(t *testing.T) {
	both := hand(deck.QueenOfClubs, deck.QueenOfClubs, 5, 6)
	split := [][]deck.Card{hand(deck.QueenOfClubs, 5), hand(deck.QueenOfClubs, 6), hand(7, 8), hand(9, 10)}

	assert.True(t, ValidDeal(split))
	assert.False(t, ValidDeal([][]deck.Card{both, hand(7), hand(8), hand(9)}))
	assert.True(t, ValidDeal([][]deck.Card{hand(5, 6), hand(7), hand(8), hand(9)}))
}

func TestPlayableMask(t *testing.T) {
	h := hand(0, 13, 17)

	// Leading: exactly the held types are playable.
	mask := PlayableMask(nil, h)
	for typ := 0; typ < deck.NumTypes; typ++ {
		assert.Equal(t, typ == 0 || typ == 13 || typ == 17, mask[typ], "type %d", typ)
	}

	// Hearts led, no plain hearts held: free play over the whole hand.
	mask = PlayableMask(lead(23), h)
	assert.True(t, mask[0])
	assert.True(t, mask[13])
	assert.True(t, mask[17])

	// Clubs led while holding clubs: only the club is playable.
	mask = PlayableMask(lead(16), h)
	assert.False(t, mask[0])
	assert.True(t, mask[13])
	assert.False(t, mask[17])
}
