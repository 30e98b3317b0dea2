// internal/game/deal.go
package game

import (
	"math/rand"

	"doppelkopf/internal/deck"
)

// ResetForGame clears all per-game state on the seats and teams.
func ResetForGame(players []*Player, re, kontra *Team) {
	re.Reset()
	kontra.Reset()
	for _, p := range players {
		p.Reset()
	}
}

// Deal shuffles a full deck and hands 12 cards to every seat. A deal that
// puts both Queens of Clubs in one hand is discarded and redealt; the loop
// converges almost surely and is never surfaced to clients. Team membership
// is assigned as a side effect of handing out the cards.
func Deal(rng *rand.Rand, players []*Player, re, kontra *Team) {
	cards := deck.New()
	for {
		ResetForGame(players, re, kontra)
		rng.Shuffle(len(cards), func(i, j int) {
			cards[i], cards[j] = cards[j], cards[i]
		})
		if dealOnce(cards, players, re, kontra) {
			return
		}
	}
}

func dealOnce(cards []deck.Card, players []*Player, re, kontra *Team) bool {
	perSeat := len(cards) / len(players)
	for i, p := range players {
		hand := cards[perSeat*i : perSeat*(i+1)]
		if p.TakeCards(hand, re, kontra) == deck.CopiesPerType {
			return false
		}
	}
	return true
}
