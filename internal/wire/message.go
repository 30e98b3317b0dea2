// internal/wire/message.go
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"doppelkopf/internal/deck"
)

// Type discriminates every message that may cross the wire. The catalog is
// closed: a received type outside it is a connection-fatal protocol error.
type Type uint8

const (
	TypeDisconnect Type = iota
	TypeReady
	TypeNotReady
	TypeSeatAssignment
	TypeSeatRoster
	TypeTeamRoster
	TypeHandDeal
	TypeGameState
	TypeChosenCard
	TypeCardFeedback
	TypeTrickCompleted
	TypeTeamReveal
	TypeGameCompleted

	numTypes
)

var typeNames = [...]string{
	"Disconnect", "Ready", "NotReady", "SeatAssignment", "SeatRoster",
	"TeamRoster", "HandDeal", "GameState", "ChosenCard", "CardFeedback",
	"TrickCompleted", "TeamReveal", "GameCompleted",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Valid reports whether t belongs to the catalog.
func (t Type) Valid() bool {
	return t < numTypes
}

// Envelope is the typed wrapper around every payload. The payload stays
// opaque at this layer; senders and receivers agree on its shape through the
// type discriminant alone.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SeatAssignment tells a freshly connected client which seat it occupies.
type SeatAssignment struct {
	Seat      int       `json:"seat"`
	Name      string    `json:"name"`
	SessionID uuid.UUID `json:"sessionId"`
}

// SeatRoster lists all four seat names in ring order.
type SeatRoster struct {
	Names [4]string `json:"names"`
}

// TeamRoster names the two hidden teams of the table.
type TeamRoster struct {
	Re     string `json:"re"`
	Kontra string `json:"kontra"`
}

// HandDeal carries a freshly dealt hand to its seat.
type HandDeal struct {
	Cards []deck.Card `json:"cards"`
}

// ChosenCard is a client's proposed move.
type ChosenCard struct {
	CardType int `json:"cardType"`
}

// CardFeedback is the server's verdict on the last proposed move. The value
// is the rule engine's Feedback enum carried as its integer form.
type CardFeedback struct {
	Verdict int `json:"verdict"`
}

// TeamReveal tells every non-acting seat whether the accepted move was the
// team-defining card, plus the running count of its played copies this game.
type TeamReveal struct {
	WasQueen   bool `json:"wasQueen"`
	QueenCount int  `json:"queenCount"`
}

// TrickCompleted is the per-seat personalized trick result. TeammateWon is
// true only when the observer currently perceives the winner as a teammate.
type TrickCompleted struct {
	Won         bool `json:"won"`
	TeammateWon bool `json:"teammateWon"`
	Value       int  `json:"value"`
}

// GameCompleted is the per-seat personalized game result; Score is the final
// score of the observer's own team.
type GameCompleted struct {
	Won   bool `json:"won"`
	Score int  `json:"score"`
}
