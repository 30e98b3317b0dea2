// internal/game/player.go
package game

import (
	"fmt"

	"doppelkopf/internal/deck"
)

// Player is one seat's game entity. Seats form a fixed ring; neighbours are
// computed from the index, never stored.
//
// Perceived holds this player's private belief about every seat's team. The
// own entry is always the true team; other entries start TeamUnknown and are
// filled in by revealed signals and elimination. Beliefs are per-observer and
// may lag behind the objective truth until enough Queens of Clubs have been
// seen. Reports about "my teammate won" consult only these beliefs.
type Player struct {
	Index     int
	Name      string
	Hand      []deck.Card
	Team      TeamID
	Perceived [NumSeats]TeamID
}

// NewPlayer returns the fresh entity for a seat.
func NewPlayer(index int) *Player {
	return &Player{Index: index, Name: SeatNames[index]}
}

// NewPlayers returns all four seat entities in ring order.
func NewPlayers() []*Player {
	players := make([]*Player, NumSeats)
	for i := range players {
		players[i] = NewPlayer(i)
	}
	return players
}

// Next returns the seat to this player's left.
func (p *Player) Next() int { return NextSeat(p.Index) }

// Reset clears the hand, team and beliefs between games.
func (p *Player) Reset() {
	p.Hand = p.Hand[:0]
	p.Team = TeamUnknown
	for i := range p.Perceived {
		p.Perceived[i] = TeamUnknown
	}
}

// TakeCards hands a fresh deal to the player. Holding at least one Queen of
// Clubs puts the seat on team Re, otherwise Kontra; membership is recorded on
// the matching team. Returns how many Queens of Clubs the hand holds so the
// dealer can reject a deal that doubles them up.
func (p *Player) TakeCards(cards []deck.Card, re, kontra *Team) int {
	p.Hand = append(p.Hand[:0], cards...)
	queens := 0
	for _, c := range p.Hand {
		if c.Type == deck.QueenOfClubs {
			queens++
		}
	}
	team := kontra
	if queens > 0 {
		team = re
	}
	p.Team = team.ID
	team.AddMember(p.Index)
	for i := range p.Perceived {
		p.Perceived[i] = TeamUnknown
	}
	p.Perceived[p.Index] = p.Team
	return queens
}

// HasType reports whether the hand holds at least one copy of cardType.
func (p *Player) HasType(cardType int) bool {
	return holdsType(p.Hand, cardType)
}

// RemoveFirst removes the first copy of cardType from the hand. Reports
// false, and removes nothing, when the hand holds no such card.
func (p *Player) RemoveFirst(cardType int) bool {
	for i, c := range p.Hand {
		if c.Type == cardType {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// FeedbackFor judges a proposed card against this hand and the trick's lead.
func (p *Player) FeedbackFor(cardType int, lead *deck.Card) Feedback {
	return FeedbackFor(cardType, p.Hand, lead)
}

// PerceiveTeam records a revealed team affiliation for another seat.
func (p *Player) PerceiveTeam(seat int, team TeamID) {
	if seat == p.Index {
		return
	}
	p.Perceived[seat] = team
}

// ResolveByElimination fills in every still-unknown belief once one team's
// full membership is known to this observer. The own seat counts toward the
// tally: a player always knows its own team. Called when both Queens of
// Clubs have been seen by this observer.
func (p *Player) ResolveByElimination() {
	var reCount, kontraCount int
	for _, t := range p.Perceived {
		switch t {
		case TeamRe:
			reCount++
		case TeamKontra:
			kontraCount++
		}
	}
	var fill TeamID
	switch {
	case reCount == 2:
		fill = TeamKontra
	case kontraCount == 2:
		fill = TeamRe
	default:
		return
	}
	for i, t := range p.Perceived {
		if t == TeamUnknown {
			p.Perceived[i] = fill
		}
	}
}

// IsTeammate reports whether this player currently believes the other seat is
// on its own team. An objectively allied seat whose affiliation has not been
// perceived yet is not a teammate from this observer's point of view.
func (p *Player) IsTeammate(seat int) bool {
	if seat == p.Index {
		return false
	}
	return p.Perceived[seat] != TeamUnknown && p.Perceived[seat] == p.Team
}

func (p *Player) String() string {
	return fmt.Sprintf("%s (%s) holding %d cards", p.Name, p.Team, len(p.Hand))
}
