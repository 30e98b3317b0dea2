// internal/client/agent.go
package client

import (
	"doppelkopf/internal/deck"
	"doppelkopf/internal/game"
)

// Agent is the decision boundary between a client session and whatever picks
// its cards. Every method is required; a consumer that does not care about a
// notification implements it empty rather than leaving a callback unset.
type Agent interface {
	// PickCard chooses a card type for the decision point in state. Types in
	// excluded were already rejected for this decision and must not be
	// proposed again.
	PickCard(state *game.Snapshot, excluded []int) int
	// OnCardAccepted reports that the last proposed card was accepted.
	OnCardAccepted(card deck.Card)
	// OnCardRejected reports that the last proposed card was refused.
	OnCardRejected(reason game.Feedback, trick int)
	// OnTrickCompleted reports the personalized trick result.
	OnTrickCompleted(won, teammateWon bool, value int)
	// OnGameCompleted reports the personalized game result and the final
	// score of the observer's team.
	OnGameCompleted(won bool, score int)
}

// Stats are the session's running counters. They exist for external
// reporting only and have no effect on protocol behavior.
type Stats struct {
	CardsPicked    int
	CardsAccepted  int
	NotInHand      int
	NotAllowed     int
	GamesCompleted int
	GamesWon       int
	GamesLost      int
}
