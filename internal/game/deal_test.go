// internal/game/deal_test.go
package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doppelkopf/internal/deck"
)

func TestDealShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	re, kontra := NewTeams()
	players := NewPlayers()

	for round := 0; round < 50; round++ {
		Deal(rng, players, re, kontra)

		counts := map[int]int{}
		for _, p := range players {
			require.Len(t, p.Hand, CardsPerSeat)
			for _, c := range p.Hand {
				counts[c.Type]++
			}
		}
		require.Len(t, counts, deck.NumTypes)
		for typ, n := range counts {
			assert.Equal(t, deck.CopiesPerType, n, "type %d", typ)
		}

		// The team-defining card is never doubled in one hand.
		hands := make([][]deck.Card, len(players))
		for i, p := range players {
			hands[i] = p.Hand
		}
		assert.True(t, ValidDeal(hands))

		// Exactly two seats hold a queen each, so teams are 2 vs 2.
		assert.Len(t, re.Members, 2)
		assert.Len(t, kontra.Members, 2)
		for _, p := range players {
			assert.NotEqual(t, TeamUnknown, p.Team)
		}
	}
}

// TestFullGameScoresSumToPool deals and plays complete games with only legal
// moves and checks the invariant the server asserts at game end.
func TestFullGameScoresSumToPool(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	re, kontra := NewTeams()
	players := NewPlayers()

	for round := 0; round < 20; round++ {
		Deal(rng, players, re, kontra)

		leader := rng.Intn(NumSeats)
		for trick := 0; trick < TricksPerGame; trick++ {
			order := PlayOrder(leader)
			stack := make([]deck.Card, 0, CardsPerTrick)
			for _, seat := range order {
				var lead *deck.Card
				if len(stack) > 0 {
					lead = &stack[0]
				}
				played := playFirstLegal(t, players[seat], lead)
				stack = append(stack, played)
			}
			winner := order[TrickWinner(stack)]
			if players[winner].Team == TeamRe {
				re.AddTrick(stack)
			} else {
				kontra.AddTrick(stack)
			}
			leader = winner
		}

		for _, p := range players {
			assert.Empty(t, p.Hand, "all hands exhausted after 12 tricks")
		}
		assert.Equal(t, TotalPoints, re.Score()+kontra.Score())
		assert.True(t, re.Score() > HalfPoints || kontra.Score() >= HalfPoints,
			"one team must reach the majority threshold")
	}
}

func playFirstLegal(t *testing.T, p *Player, lead *deck.Card) deck.Card {
	t.Helper()
	for _, c := range p.Hand {
		if p.FeedbackFor(c.Type, lead).Accepted() {
			require.True(t, p.RemoveFirst(c.Type))
			return c
		}
	}
	t.Fatalf("seat %d has no legal card, hand %v", p.Index, p.Hand)
	return deck.Card{}
}
