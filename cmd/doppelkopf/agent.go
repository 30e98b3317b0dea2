// cmd/doppelkopf/agent.go
package main

import (
	"doppelkopf/internal/deck"
	"doppelkopf/internal/game"
)

// firstCardAgent plays the first legal card the playable mask offers. It
// exists so the binary is runnable on its own; real move selection lives
// outside this repository, behind the client.Agent interface.
type firstCardAgent struct{}

func (a *firstCardAgent) PickCard(state *game.Snapshot, excluded []int) int {
	mask := game.PlayableMask(state.Lead(), state.Hand)
	for t := 0; t < deck.NumTypes; t++ {
		if mask[t] && !in(excluded, t) {
			return t
		}
	}
	// Nothing legal left untried; propose anything not yet rejected so the
	// retry loop keeps moving.
	for _, c := range state.Hand {
		if !in(excluded, c.Type) {
			return c.Type
		}
	}
	return 0
}

func (a *firstCardAgent) OnCardAccepted(deck.Card) {}

func (a *firstCardAgent) OnCardRejected(game.Feedback, int) {}

func (a *firstCardAgent) OnTrickCompleted(bool, bool, int) {}

func (a *firstCardAgent) OnGameCompleted(bool, int) {}

func in(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
