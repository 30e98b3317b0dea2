// internal/game/state.go
package game

import "doppelkopf/internal/deck"

// Snapshot is the per-recipient view of one decision point. The server builds
// up to four snapshots for the same logical moment, identical except for the
// observer's hand; it is immutable once sent and has no life after the client
// consumes it.
type Snapshot struct {
	// Index numbers decision points monotonically within a game; the four
	// per-seat snapshots of one moment share it.
	Index int `json:"index"`
	// Hand is the observer's own cards. Never another seat's.
	Hand []deck.Card `json:"hand"`
	// TrickStack holds the cards played so far this trick, in play order.
	TrickStack []deck.Card `json:"trickStack"`
	// CurrentSeat is the seat expected to act.
	CurrentSeat int `json:"currentSeat"`
	// Supply counts the remaining unplayed copies per card type.
	Supply deck.Supply `json:"supply"`
	// TeamVector marks, per play-order position, whether that seat is the
	// observer itself or a seat the observer perceives as a teammate.
	TeamVector [NumSeats]uint8 `json:"teamVector"`
	// IsTerminal marks the completed-trick snapshot.
	IsTerminal bool `json:"isTerminal"`
}

// NewSnapshot builds the view of one decision point for a single observer.
// Hand and stack are copied so later mutation of the live game cannot reach
// a snapshot already sent.
func NewSnapshot(index int, observer *Player, stack []deck.Card, supply deck.Supply, currentSeat int, playOrder [NumSeats]int, terminal bool) *Snapshot {
	s := &Snapshot{
		Index:       index,
		Hand:        append([]deck.Card(nil), observer.Hand...),
		TrickStack:  append([]deck.Card(nil), stack...),
		CurrentSeat: currentSeat,
		Supply:      supply,
		TeamVector:  teamVector(observer, playOrder),
		IsTerminal:  terminal,
	}
	return s
}

// teamVector encodes the observer's belief about each play-order position:
// 1 for the observer itself and for perceived teammates, 0 for opponents and
// seats whose affiliation is still unknown to the observer.
func teamVector(observer *Player, playOrder [NumSeats]int) [NumSeats]uint8 {
	var v [NumSeats]uint8
	for i, seat := range playOrder {
		if seat == observer.Index || observer.IsTeammate(seat) {
			v[i] = 1
		}
	}
	return v
}

// MyTurn reports whether the snapshot asks the given seat to act.
func (s *Snapshot) MyTurn(seat int) bool {
	return !s.IsTerminal && s.CurrentSeat == seat
}

// Lead returns the trick's lead card, or nil when the observer would lead.
func (s *Snapshot) Lead() *deck.Card {
	if len(s.TrickStack) == 0 {
		return nil
	}
	return &s.TrickStack[0]
}

// Valid checks the snapshot's internal consistency: no card type may appear
// more often across hand and stack than physical copies exist.
func (s *Snapshot) Valid() bool {
	var counts [deck.NumTypes]int
	for _, c := range s.Hand {
		counts[c.Type]++
	}
	for _, c := range s.TrickStack {
		counts[c.Type]++
	}
	for _, n := range counts {
		if n > deck.CopiesPerType {
			return false
		}
	}
	return true
}
